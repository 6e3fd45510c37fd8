package commands

import (
	"errors"
	"log/slog"
	"os"

	"cardstorm-backend/internal/components/configutil"
	"cardstorm-backend/internal/components/db"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/fetch"
	"cardstorm-backend/internal/scrapers/mtgtop8"
	"cardstorm-backend/internal/scrapers/scryfall"
)

const defaultConfigName = "cardstorm.json5"

type ImagesConfig struct {
	// Dir is where images are written, "db" keeps them in the store.
	Dir string `json:"dir"`
}

type Config struct {
	DB        db.Config            `json:"db"`
	Fetch     fetch.Config         `json:"fetch"`
	Mtgtop8   mtgtop8.Config       `json:"mtgtop8"`
	Scryfall  scryfall.Config      `json:"scryfall"`
	Images    ImagesConfig         `json:"images"`
	Telemetry telemetry.OtlpConfig `json:"telemetry"`
}

var defaultConfig = Config{
	Images: ImagesConfig{Dir: "images"},
}

// loadConfig reads --config when given, otherwise the nearest
// cardstorm.json5 up from the working directory. Without any file the
// defaults are used as is.
func loadConfig() (Config, error) {
	var (
		cfg Config
		err error
	)
	if configPath != "" {
		cfg, err = configutil.ReadConfig[Config](configPath)
	} else {
		cfg, err = configutil.ReadRecursively[Config](defaultConfigName)
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no config file found, using defaults")
			err = nil
		}
	}
	if err != nil {
		return Config{}, err
	}

	err = configutil.Merge(&cfg, defaultConfig)
	if err != nil {
		return Config{}, err
	}
	cfg.DB.ApplyEnv()
	return cfg, nil
}
