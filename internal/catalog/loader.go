package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cardstorm-backend/internal/components/assert"
	"cardstorm-backend/internal/components/db"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/scrapers/scryfall"
)

const (
	report_loader_load      = "loader.load"
	report_loader_normalize = "loader.normalize"
	report_loader_upload    = "loader.upload"
)

const DefaultPageRetries = 3

// Source is the paginated catalog the loader reads.
type Source interface {
	SearchURL() string
	Page(ctx context.Context, endpoint string) (scryfall.Page, error)
}

// cardWriter is the part of a store session the loader writes through.
type cardWriter interface {
	InsertCard(ctx context.Context, arg db.InsertCardParams) (int64, error)
	Reset(ctx context.Context) error
}

type sessionWriter struct {
	session *db.Session
}

func (w sessionWriter) InsertCard(ctx context.Context, arg db.InsertCardParams) (int64, error) {
	return w.session.Queries().InsertCard(ctx, arg)
}

func (w sessionWriter) Reset(ctx context.Context) error {
	return w.session.Reset(ctx)
}

type LoadStats struct {
	Pages    int
	Inserted int
	// Skipped counts cards the store already had.
	Skipped int
	// Rejected counts cards that could not be normalized.
	Rejected int
}

// Loader walks the whole catalog and inserts every card the store does not
// have yet, running it again only fills in what is missing.
type Loader struct {
	source Source
	writer cardWriter
	tel    telemetry.API

	// PageRetries bounds how many times a page is retried after the store
	// failed in a way other than a duplicate.
	PageRetries int
}

func NewLoader(source Source, session *db.Session, tel telemetry.API) *Loader {
	assert.NotNil(source)
	assert.NotNil(session)
	assert.NotNil(tel)

	return &Loader{
		source:      source,
		writer:      sessionWriter{session: session},
		tel:         telemetry.NewScopedAPI("catalog", tel),
		PageRetries: DefaultPageRetries,
	}
}

func (l *Loader) Load(ctx context.Context) (LoadStats, error) {
	var stats LoadStats

	endpoint := l.source.SearchURL()
	for endpoint != "" {
		page, err := l.source.Page(ctx, endpoint)
		if err != nil {
			l.tel.ReportBroken(report_loader_load, err, stats.Pages)
			return stats, fmt.Errorf("load catalog page %d: %w", stats.Pages, err)
		}
		stats.Pages++

		cards := l.normalizePage(page.Data, &stats)
		err = l.uploadPage(ctx, cards, &stats)
		if err != nil {
			return stats, err
		}
		l.tel.ReportDebug("catalog page", stats.Pages, len(cards))

		if !page.HasMore {
			break
		}
		endpoint = page.NextPage
	}

	l.tel.ReportCount(report_loader_load, int64(stats.Inserted))
	return stats, nil
}

func (l *Loader) normalizePage(data []json.RawMessage, stats *LoadStats) []Card {
	cards := make([]Card, 0, len(data))
	for _, item := range data {
		var raw RawCard
		err := json.Unmarshal(item, &raw)
		if err != nil {
			stats.Rejected++
			l.tel.ReportWarning(report_loader_normalize, fmt.Errorf("decode: %w", err))
			continue
		}
		card, err := Normalize(raw)
		if err != nil {
			stats.Rejected++
			l.tel.ReportWarning(report_loader_normalize, err, raw.ID)
			continue
		}
		cards = append(cards, card)
	}
	return cards
}

// uploadPage inserts cards one at a time. A duplicate is skipped, any
// other failure resets the session and resumes with the card that failed.
func (l *Loader) uploadPage(ctx context.Context, cards []Card, stats *LoadStats) error {
	retries := 0
	for i := 0; i < len(cards); {
		_, err := l.writer.InsertCard(ctx, cards[i].Params())
		switch {
		case err == nil:
			stats.Inserted++
			i++
			continue
		case errors.Is(err, db.ErrConflict):
			stats.Skipped++
			l.tel.ReportDebug("duplicate card", cards[i].Name)
			i++
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		retries++
		if retries > l.PageRetries {
			l.tel.ReportBroken(report_loader_upload, err, cards[i].SourceID)
			return fmt.Errorf("upload %s after %d retries: %w", cards[i].SourceID, l.PageRetries, err)
		}
		l.tel.ReportWarning(report_loader_upload, err, cards[i].SourceID, retries)
		resetErr := l.writer.Reset(ctx)
		if resetErr != nil {
			l.tel.ReportBroken(report_loader_upload, resetErr)
			return resetErr
		}
	}
	return nil
}
