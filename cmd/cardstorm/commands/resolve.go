package commands

import (
	"fmt"

	"cardstorm-backend/internal/components/serviceutil"
	"cardstorm-backend/internal/decklist"
	"cardstorm-backend/internal/resolver"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <name...>",
	Short: "Prints the catalog id of each card name, or the closest catalog name.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		e, err := setup(ctx, "cardstorm-resolve")
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer e.Close()

		r, err := resolver.Build(ctx, e.store.Queries(), e.tel)
		if err != nil {
			serviceutil.Fatal("failed to load catalog", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Id", "Suggestion"})
		for _, name := range args {
			id, ok := r.Resolve(decklist.LookupKey(name))
			if ok {
				t.AppendRow(table.Row{name, id, ""})
				continue
			}
			suggestion, score := r.Suggest(name)
			t.AppendRow(table.Row{name, "-", fmt.Sprintf("%s (%.2f)", suggestion, score)})
		}
		t.Render()
	},
}
