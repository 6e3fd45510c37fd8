package commands

import (
	"cardstorm-backend/internal/components/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints what the store holds.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		e, err := setup(ctx, "cardstorm-stats")
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer e.Close()
		qry := e.store.Queries()

		layouts, err := qry.CountCardsByLayout(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count cards", err)
		}
		cards, err := qry.CountCards(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count cards", err)
		}
		decks, err := qry.CountDecks(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count decks", err)
		}
		facts, err := qry.CountFacts(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count facts", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Layout", "Cards"})
		for _, layout := range layouts {
			t.AppendRow(table.Row{layout.Layout, layout.Count})
		}
		t.AppendFooter(table.Row{"Total", cards})
		t.Render()

		t = newTable()
		t.AppendHeader(table.Row{"Decks", "Facts"})
		t.AppendRow(table.Row{decks, facts})
		t.Render()
	},
}
