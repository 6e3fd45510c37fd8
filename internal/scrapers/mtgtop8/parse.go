package mtgtop8

import (
	"context"
	"errors"
	"fmt"

	"cardstorm-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ErrStructureMismatch means the markup no longer has the region the ids
// are read from, the site most likely changed its layout.
var ErrStructureMismatch = errors.New("mtgtop8: page structure mismatch")

// ListEventIDs reads the "last events" table of a format front page: the
// third table, the cell after its first cell, the second table nested in
// that cell. Ids are returned in page order without repeats.
func ListEventIDs(ctx context.Context, doc *goquery.Document) ([]int64, error) {
	tables := doc.Find("table")
	if tables.Length() < 3 {
		return nil, fmt.Errorf("%w: front page has %d tables", ErrStructureMismatch, tables.Length())
	}
	column := tables.Eq(2).Find("td").First().Next()
	if column.Length() == 0 {
		return nil, fmt.Errorf("%w: front page events column is missing", ErrStructureMismatch)
	}
	events := column.Find("table").Eq(1)
	if events.Length() == 0 {
		return nil, fmt.Errorf("%w: front page events table is missing", ErrStructureMismatch)
	}

	var ids []int64
	seen := map[int64]struct{}{}
	for _, a := range htmlutil.GetAnchors(ctx, nil, events.Find("a")) {
		id, ok := a.QueryInt("e")
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListDeckIDs reads the deck links out of the fourth table of an event
// page. Only links carrying both an event and a deck parameter are decks,
// the rest of the table links to archetypes and players.
func ListDeckIDs(ctx context.Context, doc *goquery.Document) ([]int64, error) {
	tables := doc.Find("table")
	if tables.Length() < 4 {
		return nil, fmt.Errorf("%w: event page has %d tables", ErrStructureMismatch, tables.Length())
	}

	var ids []int64
	seen := map[int64]struct{}{}
	for _, a := range htmlutil.GetAnchors(ctx, nil, tables.Eq(3).Find("a")) {
		if !a.HasQuery("e", "d") {
			continue
		}
		id, ok := a.QueryInt("d")
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
