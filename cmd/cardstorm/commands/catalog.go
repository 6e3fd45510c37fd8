package commands

import (
	"fmt"
	"log/slog"

	"cardstorm-backend/internal/catalog"
	"cardstorm-backend/internal/components/serviceutil"
	"cardstorm-backend/internal/scrapers/scryfall"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Loads the card catalog, only cards missing from the store are inserted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		e, err := setup(ctx, "cardstorm-catalog")
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer e.Close()

		client, err := scryfall.NewClient(e.config.Scryfall, e.fetcher, e.tel)
		if err != nil {
			serviceutil.Fatal("failed to create catalog client", err)
		}
		session, err := e.store.NewSession(ctx)
		if err != nil {
			serviceutil.Fatal("failed to acquire store session", err)
		}
		defer session.Close()

		stats, err := catalog.NewLoader(client, session, e.tel).Load(ctx)
		slog.Info(
			"catalog load finished",
			"pages", stats.Pages,
			"skipped", stats.Skipped,
			"rejected", stats.Rejected,
			"resets", session.Resets(),
		)
		fmt.Printf("cards inserted: %d\n", stats.Inserted)
		if err != nil {
			serviceutil.Fatal("catalog load stopped", err)
		}
	},
}
