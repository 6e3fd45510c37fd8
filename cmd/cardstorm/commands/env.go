package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cardstorm-backend/internal/components/chrono"
	"cardstorm-backend/internal/components/db"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/fetch"

	"github.com/jedib0t/go-pretty/v6/table"
)

// env is what every command works with, built from the config.
type env struct {
	config  Config
	tel     telemetry.API
	store   *db.Store
	fetcher *fetch.Fetcher
	otel    telemetry.Otel
}

func setup(ctx context.Context, name string) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	otel, err := telemetry.SetupOtel(ctx, name, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("setup otel: %w", err)
	}

	tel := telemetry.SlogAPI{}
	store, err := db.Open(ctx, cfg.DB, tel)
	if err != nil {
		otel.Shutdown(context.Background())
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &env{
		config:  cfg,
		tel:     tel,
		store:   store,
		fetcher: fetch.New(cfg.Fetch, chrono.NewStandardImpl(), tel),
		otel:    otel,
	}, nil
}

func (e *env) Close() {
	err := e.store.Close()
	if err != nil {
		slog.Warn("close store", "err", err)
	}
	err = e.otel.Shutdown(context.Background())
	if err != nil {
		slog.Warn("shutdown otel", "err", err)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
