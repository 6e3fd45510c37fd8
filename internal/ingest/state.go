package ingest

import (
	"context"
	"fmt"
)

type deckIDLister interface {
	ListIngestedDeckIDs(ctx context.Context) ([]int64, error)
}

// CrawlState is the set of deck ids that already have facts in the store.
// It is derived from the store at the start of every run and only kept in
// memory afterwards, so it can never disagree with what is durable.
type CrawlState struct {
	decks map[int64]struct{}
}

func LoadCrawlState(ctx context.Context, qry deckIDLister) (CrawlState, error) {
	ids, err := qry.ListIngestedDeckIDs(ctx)
	if err != nil {
		return CrawlState{}, fmt.Errorf("load ingested decks: %w", err)
	}
	state := CrawlState{decks: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		state.decks[id] = struct{}{}
	}
	return state, nil
}

func (s CrawlState) Has(deckID int64) bool {
	_, ok := s.decks[deckID]
	return ok
}

func (s CrawlState) Add(deckID int64) {
	s.decks[deckID] = struct{}{}
}

func (s CrawlState) Len() int {
	return len(s.decks)
}
