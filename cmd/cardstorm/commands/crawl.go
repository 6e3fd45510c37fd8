package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"cardstorm-backend/internal/components/chrono"
	"cardstorm-backend/internal/components/serviceutil"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/ingest"
	"cardstorm-backend/internal/resolver"
	"cardstorm-backend/internal/scrapers/mtgtop8"

	"github.com/spf13/cobra"
)

var (
	crawlPages    string
	crawlSchedule string
)

func init() {
	crawlCmd.Flags().StringVar(&crawlPages, "pages", "0-9", "Front pages to crawl, like \"0-9\" or \"0-2,7\".")
	crawlCmd.Flags().StringVar(&crawlSchedule, "schedule", "", "Cron spec to crawl on repeatedly instead of once.")
	rootCmd.AddCommand(crawlCmd)
}

// parsePages expands a list of page indices and inclusive ranges.
func parsePages(raw string) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		if start < 0 || end < start {
			return nil, fmt.Errorf("invalid page range %q", part)
		}
		for page := start; page <= end; page++ {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages in %q", raw)
	}
	return pages, nil
}

func crawl(ctx context.Context, e *env, pages []int) (ingest.Summary, error) {
	session, err := e.store.NewSession(ctx)
	if err != nil {
		return ingest.Summary{}, err
	}
	defer session.Close()

	r, err := resolver.Build(ctx, session.Queries(), e.tel)
	if err != nil {
		return ingest.Summary{}, err
	}
	if r.Len() == 0 {
		slog.Warn("the catalog is empty, run `cardstorm catalog` first")
	}

	traverser, err := mtgtop8.NewTraverser(e.config.Mtgtop8, e.fetcher, e.tel)
	if err != nil {
		return ingest.Summary{}, err
	}
	coordinator, err := ingest.NewCoordinator(traverser, r, session, e.tel)
	if err != nil {
		return ingest.Summary{}, err
	}
	return coordinator.Run(ctx, pages)
}

func printSummary(summary ingest.Summary) {
	slog.Info(
		"crawl finished",
		"run_id", summary.RunID,
		"pages", summary.Walk.Pages,
		"pages_failed", summary.Walk.PagesFailed,
		"events", summary.Walk.Events,
		"events_failed", summary.Walk.EventsFailed,
		"decks", summary.Walk.Decks,
		"persisted", summary.Persisted,
		"skipped", summary.Skipped,
		"skipped_empty", summary.SkippedEmpty,
		"fetch_failed", summary.FetchFailed,
		"conflicts", summary.Conflicts,
		"failed", summary.Failed,
		"unresolved", summary.Unresolved,
		"facts_total", summary.FactsTotal,
	)
	fmt.Printf("facts ingested: %d\n", summary.FactsWritten)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--pages <from>-<to>] [--schedule <cron spec>]",
	Short: "Crawls tournament front pages and stores the deck lists not ingested yet.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		pages, err := parsePages(crawlPages)
		if err != nil {
			serviceutil.Fatal("failed to parse --pages", err)
		}

		e, err := setup(ctx, "cardstorm-crawl")
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer e.Close()

		telemetry.InstrumentPerfStats(ctx)

		if crawlSchedule == "" {
			summary, err := crawl(ctx, e, pages)
			if err != nil {
				slog.Error("crawl stopped", "err", err)
			}
			printSummary(summary)
			return
		}

		cron := chrono.NewStandardCron(e.tel)
		err = cron.Cron(crawlSchedule, func() {
			summary, err := crawl(ctx, e, pages)
			if err != nil {
				slog.Error("crawl stopped", "err", err)
			}
			printSummary(summary)
		})
		if err != nil {
			serviceutil.Fatal("failed to parse --schedule", err)
		}
		slog.Info("crawling on schedule", "schedule", crawlSchedule)

		<-ctx.Done()
		cron.Stop()
	},
}
