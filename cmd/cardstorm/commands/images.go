package commands

import (
	"fmt"
	"log/slog"

	"cardstorm-backend/internal/catalog"
	"cardstorm-backend/internal/components/chrono"
	"cardstorm-backend/internal/components/serviceutil"
	"cardstorm-backend/internal/scrapers/scryfall"

	"github.com/spf13/cobra"
)

var imagesForce bool

func init() {
	imagesCmd.Flags().BoolVar(&imagesForce, "force", false, "Refetch images that were already downloaded.")
	rootCmd.AddCommand(imagesCmd)
}

var imagesCmd = &cobra.Command{
	Use:   "images [--force]",
	Short: "Downloads the image of every catalog card.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		e, err := setup(ctx, "cardstorm-images")
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer e.Close()

		client, err := scryfall.NewClient(e.config.Scryfall, e.fetcher, e.tel)
		if err != nil {
			serviceutil.Fatal("failed to create catalog client", err)
		}

		var sink catalog.ImageSink
		if e.config.Images.Dir == "db" {
			sink = catalog.NewStoreSink(e.store.Queries(), chrono.NewStandardImpl())
		} else {
			sink, err = catalog.NewDirSink(e.config.Images.Dir)
			if err != nil {
				serviceutil.Fatal("failed to create image directory", err)
			}
		}

		pipeline := catalog.NewImagePipeline(e.store.Queries(), client, sink, e.tel)
		stats, err := pipeline.Run(ctx, imagesForce)
		slog.Info(
			"image download finished",
			"cards", stats.Cards,
			"present", stats.Present,
			"failed", stats.Failed,
		)
		fmt.Printf("images fetched: %d\n", stats.Fetched)
		if err != nil {
			serviceutil.Fatal("image download stopped", err)
		}
	},
}
