// Package testutil holds the fixtures shared by package tests: an
// in-memory store, a fake clock and stand-ins for the remote sites.
package testutil

import (
	"context"
	"testing"
	"time"

	"cardstorm-backend/internal/components/chrono"
	"cardstorm-backend/internal/components/db"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/fetch"
)

// OpenMemoryStore opens a migrated in-memory sqlite store that is closed
// with the test.
func OpenMemoryStore(t testing.TB) *db.Store {
	t.Helper()
	store, err := db.Open(context.Background(), db.Config{File: ":memory:"}, telemetry.NewRecorder())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func NewClock() *chrono.Fake {
	return chrono.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
}

// NewFetcher returns a fetcher whose backoff never actually sleeps.
func NewFetcher(clock chrono.API, tel telemetry.API) *fetch.Fetcher {
	return fetch.New(fetch.Config{Attempts: 3}, clock, tel)
}
