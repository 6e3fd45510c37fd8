// Package ingest runs the resumable crawl: every deck discovered on the
// tournament site that the store does not have yet is fetched, parsed,
// resolved against the catalog and written in its own transaction.
package ingest

import (
	"context"
	"fmt"

	"cardstorm-backend/internal/components/assert"
	"cardstorm-backend/internal/components/db"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/decklist"
	"cardstorm-backend/internal/scrapers/mtgtop8"

	random "github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("cardstorm.internal.ingest")
	meter  = otel.Meter("cardstorm.internal.ingest")
)

const (
	report_coordinator_run     = "coordinator.run"
	report_coordinator_fetch   = "coordinator.fetch"
	report_coordinator_resolve = "coordinator.resolve"
	report_coordinator_persist = "coordinator.persist"
)

// Outcome is where a discovered deck ended up.
type Outcome string

const (
	OutcomePersisted    Outcome = "persisted"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeSkippedEmpty Outcome = "skipped_empty"
	OutcomeFetchFailed  Outcome = "fetch_failed"
	OutcomeConflict     Outcome = "conflict"
	OutcomeFailed       Outcome = "failed"
)

// DeckSource discovers decks and serves their text.
type DeckSource interface {
	Walk(ctx context.Context, pages []int, visit func(ctx context.Context, ref mtgtop8.DeckRef) error) (mtgtop8.WalkStats, error)
	FetchDeckText(ctx context.Context, ref mtgtop8.DeckRef) (string, error)
}

type Resolver interface {
	Resolve(raw string) (int64, bool)
	Suggest(raw string) (string, float64)
}

type Summary struct {
	RunID string
	Walk  mtgtop8.WalkStats

	Persisted    int
	Skipped      int
	SkippedEmpty int
	FetchFailed  int
	Conflicts    int
	Failed       int
	// Unresolved counts deck list entries whose name is not in the catalog.
	Unresolved int

	FactsWritten int64
	// FactsTotal is the number of facts in the store after the run.
	FactsTotal int64
}

func (s *Summary) count(outcome Outcome) {
	switch outcome {
	case OutcomePersisted:
		s.Persisted++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeSkippedEmpty:
		s.SkippedEmpty++
	case OutcomeFetchFailed:
		s.FetchFailed++
	case OutcomeConflict:
		s.Conflicts++
	case OutcomeFailed:
		s.Failed++
	}
}

// Coordinator owns the store session it writes through. Runs are
// sequential, a Coordinator must not be used by two goroutines at once.
type Coordinator struct {
	source   DeckSource
	resolver Resolver
	session  *db.Session
	tel      telemetry.API
	decks    metric.Int64Counter
}

func NewCoordinator(source DeckSource, resolver Resolver, session *db.Session, tel telemetry.API) (*Coordinator, error) {
	assert.NotNil(source)
	assert.NotNil(resolver)
	assert.NotNil(session)
	assert.NotNil(tel)

	decks, err := meter.Int64Counter(
		"ingest.decks",
		metric.WithDescription("Decks discovered by the crawl, by outcome."),
	)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		source:   source,
		resolver: resolver,
		session:  session,
		tel:      telemetry.NewScopedAPI("ingest", tel),
		decks:    decks,
	}, nil
}

// Run crawls the given front pages in order. Failures of a single page,
// event or deck are counted and the run continues, only ctx or a store
// that cannot be reached at all end it early.
func (c *Coordinator) Run(ctx context.Context, pages []int) (Summary, error) {
	ctx, span := tracer.Start(ctx, "coordinator:run")
	defer span.End()

	var summary Summary
	runID, err := random.String(8)
	if err != nil {
		return summary, err
	}
	summary.RunID = runID
	span.SetAttributes(attribute.String("run_id", runID))

	state, err := LoadCrawlState(ctx, c.session.Queries())
	if err != nil {
		c.tel.ReportBroken(report_coordinator_run, err, runID)
		return summary, err
	}
	c.tel.ReportDebug("crawl state loaded", runID, state.Len())

	walk, err := c.source.Walk(ctx, pages, func(ctx context.Context, ref mtgtop8.DeckRef) error {
		outcome, written, unresolved, err := c.deck(ctx, state, ref)
		if err != nil {
			return err
		}
		summary.count(outcome)
		summary.FactsWritten += written
		summary.Unresolved += unresolved
		c.decks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
		return nil
	})
	summary.Walk = walk
	if err != nil {
		return summary, err
	}

	total, err := c.session.Queries().CountFacts(ctx)
	if err != nil {
		c.tel.ReportBroken(report_coordinator_run, err, runID)
		return summary, fmt.Errorf("count facts: %w", err)
	}
	summary.FactsTotal = total

	c.tel.ReportCount(report_coordinator_run, summary.FactsWritten)
	return summary, nil
}

// deck takes one discovered deck through fetch, parse, resolve and
// persist. Only a cancelled ctx is returned as an error.
func (c *Coordinator) deck(ctx context.Context, state CrawlState, ref mtgtop8.DeckRef) (outcome Outcome, written int64, unresolved int, err error) {
	if state.Has(ref.DeckID) {
		return OutcomeSkipped, 0, 0, nil
	}

	ctx, span := tracer.Start(ctx, "coordinator:deck")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("event_id", ref.EventID),
		attribute.Int64("deck_id", ref.DeckID),
	)

	text, err := c.source.FetchDeckText(ctx, ref)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", 0, 0, ctxErr
	}
	if err != nil {
		c.tel.ReportWarning(report_coordinator_fetch, err, ref.EventID, ref.DeckID)
		return OutcomeFetchFailed, 0, 0, nil
	}

	entries := decklist.Parse(text)
	facts, unresolved := c.resolve(ref, entries)
	if len(facts) == 0 {
		reason := "empty deck list"
		if len(entries) > 0 {
			reason = "no card resolved"
		}
		c.tel.ReportDebug("deck skipped", ref.DeckID, reason)
		state.Add(ref.DeckID)
		return OutcomeSkippedEmpty, 0, unresolved, nil
	}

	outcome, written, err = c.persist(ctx, facts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", 0, unresolved, ctxErr
		}
		if outcome == OutcomeConflict {
			c.tel.ReportDebug("deck already ingested", ref.DeckID, err)
		} else {
			c.tel.ReportWarning(report_coordinator_persist, err, ref.EventID, ref.DeckID)
		}
		err = c.session.Reset(ctx)
		if err != nil {
			c.tel.ReportBroken(report_coordinator_persist, err)
			return "", 0, unresolved, err
		}
	}
	if outcome != OutcomeFailed {
		state.Add(ref.DeckID)
	}
	return outcome, written, unresolved, nil
}

// resolve turns deck list entries into facts. Names missing from the
// catalog are dropped, entries resolving to the same card are merged.
func (c *Coordinator) resolve(ref mtgtop8.DeckRef, entries []decklist.Entry) ([]db.DeckFact, int) {
	facts := make([]db.DeckFact, 0, len(entries))
	index := make(map[int64]int, len(entries))
	unresolved := 0

	for _, entry := range entries {
		id, ok := c.resolver.Resolve(decklist.LookupKey(entry.Name))
		if !ok {
			unresolved++
			suggestion, score := c.resolver.Suggest(entry.Name)
			c.tel.ReportWarning(
				report_coordinator_resolve,
				fmt.Errorf("unresolved card name %q", entry.Name),
				ref.DeckID, suggestion, score,
			)
			continue
		}
		if i, seen := index[id]; seen {
			facts[i].Count += entry.Count
			continue
		}
		index[id] = len(facts)
		facts = append(facts, db.DeckFact{
			EventID: ref.EventID,
			DeckID:  ref.DeckID,
			CardID:  id,
			RawName: entry.Name,
			Count:   entry.Count,
		})
	}
	return facts, unresolved
}

// persist writes all facts of a deck in one transaction. A non-nil error
// means the transaction was rolled back and the session needs a reset.
func (c *Coordinator) persist(ctx context.Context, facts []db.DeckFact) (Outcome, int64, error) {
	tx, discard, commit, err := c.session.Tx(ctx)
	if err != nil {
		return OutcomeFailed, 0, fmt.Errorf("begin: %w", err)
	}

	written, err := tx.InsertDeckFacts(ctx, facts)
	if err == nil {
		err = commit()
		if err == nil {
			return OutcomePersisted, written, nil
		}
	} else {
		discardErr := discard()
		if discardErr != nil {
			c.tel.ReportDebug("discard deck transaction", discardErr)
		}
	}

	if db.IsUniqueViolation(err) {
		return OutcomeConflict, 0, err
	}
	return OutcomeFailed, 0, err
}
