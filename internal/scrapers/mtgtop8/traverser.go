// Package mtgtop8 walks the tournament site: format front pages list
// events, event pages list decks, and every deck has a plain text export.
package mtgtop8

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"cardstorm-backend/internal/components/assert"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/fetch"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_traverser_event_ids = "traverser.event-ids"
	report_traverser_deck_ids  = "traverser.deck-ids"
	report_traverser_deck_text = "traverser.deck-text"
)

// ErrUnavailable is returned when a page stayed non-200 after every retry.
var ErrUnavailable = errors.New("mtgtop8: page unavailable")

const (
	DefaultBaseURL = "https://www.mtgtop8.com"
	DefaultFormat  = "MO"
	DefaultMeta    = "44"
)

type Config struct {
	BaseURL string `json:"base_url"`
	// Format is the site's format code, "MO" is modern.
	Format string `json:"format"`
	// Meta selects the metagame period shown on the front page.
	Meta string `json:"meta"`
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.Meta == "" {
		c.Meta = DefaultMeta
	}
	return c
}

// DeckRef locates a deck discovered by Walk.
type DeckRef struct {
	Page    int
	EventID int64
	DeckID  int64
}

type WalkStats struct {
	Pages       int
	PagesFailed int
	Events      int
	// EventsFailed counts events that contributed no decks because their
	// page was unavailable or unreadable.
	EventsFailed int
	Decks        int
}

type Traverser struct {
	base    *url.URL
	config  Config
	fetcher fetch.API
	tel     telemetry.API
}

func NewTraverser(config Config, fetcher fetch.API, tel telemetry.API) (*Traverser, error) {
	assert.NotNil(fetcher)
	assert.NotNil(tel)

	config = config.withDefaults()
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse mtgtop8 base url: %w", err)
	}

	return &Traverser{
		base:    base,
		config:  config,
		fetcher: fetcher,
		tel:     telemetry.NewScopedAPI("mtgtop8", tel),
	}, nil
}

func (t *Traverser) endpoint(path string, query url.Values) string {
	u := t.base.JoinPath(path)
	u.RawQuery = query.Encode()
	return u.String()
}

func (t *Traverser) FrontPageURL(page int) string {
	return t.endpoint("format", url.Values{
		"f":    {t.config.Format},
		"meta": {t.config.Meta},
		"cp":   {strconv.Itoa(page)},
	})
}

func (t *Traverser) EventURL(eventID int64) string {
	return t.endpoint("event", url.Values{
		"e": {strconv.FormatInt(eventID, 10)},
	})
}

func (t *Traverser) DeckURL(deckID int64) string {
	return t.endpoint("mtgo", url.Values{
		"d": {strconv.FormatInt(deckID, 10)},
	})
}

func (t *Traverser) document(ctx context.Context, endpoint, referer string) (*goquery.Document, error) {
	var headers map[string]string
	if referer != "" {
		headers = map[string]string{"referer": referer}
	}
	res, err := t.fetcher.Fetch(ctx, endpoint, headers)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, fmt.Errorf("%w: %s answered %d", ErrUnavailable, endpoint, res.Status)
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body))
}

// EventIDs fetches a front page and lists its events.
func (t *Traverser) EventIDs(ctx context.Context, page int) ([]int64, error) {
	doc, err := t.document(ctx, t.FrontPageURL(page), "")
	if err != nil {
		return nil, err
	}
	return ListEventIDs(ctx, doc)
}

// DeckIDs fetches an event page and lists its decks.
func (t *Traverser) DeckIDs(ctx context.Context, eventID int64) ([]int64, error) {
	doc, err := t.document(ctx, t.EventURL(eventID), t.base.String())
	if err != nil {
		return nil, err
	}
	return ListDeckIDs(ctx, doc)
}

// FetchDeckText returns the plain text export of a deck.
func (t *Traverser) FetchDeckText(ctx context.Context, ref DeckRef) (string, error) {
	endpoint := t.DeckURL(ref.DeckID)
	res, err := t.fetcher.Fetch(ctx, endpoint, map[string]string{
		"referer": t.EventURL(ref.EventID),
	})
	if err != nil {
		t.tel.ReportWarning(report_traverser_deck_text, err, ref.DeckID)
		return "", err
	}
	if !res.OK() {
		err := fmt.Errorf("%w: %s answered %d", ErrUnavailable, endpoint, res.Status)
		t.tel.ReportWarning(report_traverser_deck_text, err, ref.DeckID)
		return "", err
	}
	return string(res.Body), nil
}

// Walk visits every deck reachable from the given front pages, one request
// at a time in discovery order. A page or event that cannot be read is
// reported and skipped, only ctx or an error from visit stops the walk.
func (t *Traverser) Walk(ctx context.Context, pages []int, visit func(ctx context.Context, ref DeckRef) error) (WalkStats, error) {
	var stats WalkStats

	for _, page := range pages {
		events, err := t.EventIDs(ctx, page)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}
		stats.Pages++
		if err != nil {
			stats.PagesFailed++
			t.report(report_traverser_event_ids, err, page)
			continue
		}
		t.tel.ReportDebug("front page", page, len(events))

		for _, eventID := range events {
			decks, err := t.DeckIDs(ctx, eventID)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Events++
			if err != nil {
				stats.EventsFailed++
				t.report(report_traverser_deck_ids, err, eventID)
				continue
			}
			t.tel.ReportDebug("event", eventID, len(decks))

			for _, deckID := range decks {
				stats.Decks++
				err := visit(ctx, DeckRef{
					Page:    page,
					EventID: eventID,
					DeckID:  deckID,
				})
				if err != nil {
					return stats, err
				}
			}
		}
	}

	return stats, nil
}

// report treats markup changes as broken and everything else as a
// degradation of a single page.
func (t *Traverser) report(id string, err error, params ...any) {
	params = append([]any{err}, params...)
	if errors.Is(err, ErrStructureMismatch) {
		t.tel.ReportBroken(id, params...)
		return
	}
	t.tel.ReportWarning(id, params...)
}
