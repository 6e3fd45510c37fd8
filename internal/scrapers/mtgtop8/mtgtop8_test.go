package mtgtop8

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/testutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestListEventIDs(t *testing.T) {
	doc := parse(t, testutil.FrontPageHTML([]int64{101, 102, 101, 103}))
	ids, err := ListEventIDs(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, []int64{101, 102, 103}, ids)
}

func TestListEventIDsStructureMismatch(t *testing.T) {
	testCases := []string{
		`<html><body><p>maintenance</p></body></html>`,
		`<html><body><table></table><table></table><table><tr><td>only one cell</td></tr></table></body></html>`,
		`<html><body><table></table><table></table><table><tr><td>a</td><td><table></table></td></tr></table></body></html>`,
	}
	for _, markup := range testCases {
		_, err := ListEventIDs(context.Background(), parse(t, markup))
		require.ErrorIs(t, err, ErrStructureMismatch)
	}
}

func TestListDeckIDs(t *testing.T) {
	doc := parse(t, testutil.EventPageHTML(7, []int64{5001, 5002}))
	ids, err := ListDeckIDs(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, []int64{5001, 5002}, ids)

	_, err = ListDeckIDs(context.Background(), parse(t, `<html><body><table></table></body></html>`))
	require.ErrorIs(t, err, ErrStructureMismatch)
}

type fixture struct {
	site      *testutil.Site
	traverser *Traverser
	tel       *telemetry.Recorder
}

func newFixture(t testing.TB) fixture {
	site := testutil.NewSite(t)
	tel := telemetry.NewRecorder()
	traverser, err := NewTraverser(
		Config{BaseURL: site.URL()},
		testutil.NewFetcher(testutil.NewClock(), tel),
		tel,
	)
	require.NoError(t, err)
	return fixture{site: site, traverser: traverser, tel: tel}
}

func collect(t testing.TB, traverser *Traverser, pages []int) ([]DeckRef, WalkStats) {
	t.Helper()
	var refs []DeckRef
	stats, err := traverser.Walk(context.Background(), pages, func(_ context.Context, ref DeckRef) error {
		refs = append(refs, ref)
		return nil
	})
	require.NoError(t, err)
	return refs, stats
}

func TestWalkOrder(t *testing.T) {
	f := newFixture(t)
	f.site.Pages[0] = []int64{1, 2}
	f.site.Pages[1] = []int64{3}
	f.site.Events[1] = []int64{11, 12}
	f.site.Events[2] = []int64{21}
	f.site.Events[3] = []int64{31}

	refs, stats := collect(t, f.traverser, []int{0, 1})

	expected := []DeckRef{
		{Page: 0, EventID: 1, DeckID: 11},
		{Page: 0, EventID: 1, DeckID: 12},
		{Page: 0, EventID: 2, DeckID: 21},
		{Page: 1, EventID: 3, DeckID: 31},
	}
	if diff := cmp.Diff(expected, refs); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, WalkStats{Pages: 2, Events: 3, Decks: 4}, stats)
	require.Equal(t, 0, f.site.Hits("/mtgo?d=11"))
}

func TestWalkUnavailableEventDegrades(t *testing.T) {
	f := newFixture(t)
	f.site.Pages[0] = []int64{1, 2}
	f.site.Events[1] = []int64{11}
	f.site.Events[2] = []int64{21}
	f.site.Broken["/event?e=1"] = true

	refs, stats := collect(t, f.traverser, []int{0})

	require.Equal(t, []DeckRef{{Page: 0, EventID: 2, DeckID: 21}}, refs)
	require.Equal(t, 1, stats.EventsFailed)
	require.Equal(t, 3, f.site.Hits("/event?e=1"))
	require.NotEmpty(t, f.tel.Find("warning", report_traverser_deck_ids))
	require.Empty(t, f.tel.Find("broken", report_traverser_deck_ids))
}

func TestWalkStructureMismatchAbortsOnlyThatBranch(t *testing.T) {
	f := newFixture(t)
	f.site.Pages[0] = []int64{1}
	f.site.Pages[1] = []int64{2, 3}
	f.site.Events[1] = []int64{11}
	f.site.Events[2] = []int64{21}
	f.site.Events[3] = []int64{31}
	f.site.Malformed["/format?cp=0"] = true
	f.site.Malformed["/event?e=2"] = true

	refs, stats := collect(t, f.traverser, []int{0, 1})

	require.Equal(t, []DeckRef{{Page: 1, EventID: 3, DeckID: 31}}, refs)
	require.Equal(t, 1, stats.PagesFailed)
	require.Equal(t, 1, stats.EventsFailed)
	require.Len(t, f.tel.Find("broken", report_traverser_event_ids), 1)
	require.Len(t, f.tel.Find("broken", report_traverser_deck_ids), 1)
}

func TestWalkVisitErrorStops(t *testing.T) {
	f := newFixture(t)
	f.site.Pages[0] = []int64{1}
	f.site.Events[1] = []int64{11, 12}

	stop := errors.New("stop")
	visited := 0
	_, err := f.traverser.Walk(context.Background(), []int{0}, func(context.Context, DeckRef) error {
		visited++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, visited)
}

func TestFetchDeckText(t *testing.T) {
	f := newFixture(t)
	f.site.Decks[11] = "4 Lightning Bolt\r\n"

	text, err := f.traverser.FetchDeckText(context.Background(), DeckRef{EventID: 1, DeckID: 11})
	require.NoError(t, err)
	require.Equal(t, "4 Lightning Bolt\r\n", text)

	_, err = f.traverser.FetchDeckText(context.Background(), DeckRef{EventID: 1, DeckID: 12})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestURLs(t *testing.T) {
	traverser, err := NewTraverser(Config{}, testutil.NewFetcher(testutil.NewClock(), telemetry.NewRecorder()), telemetry.NewRecorder())
	require.NoError(t, err)
	require.Equal(t, "https://www.mtgtop8.com/format?cp=3&f=MO&meta=44", traverser.FrontPageURL(3))
	require.Equal(t, "https://www.mtgtop8.com/event?e=12", traverser.EventURL(12))
	require.Equal(t, "https://www.mtgtop8.com/mtgo?d=34", traverser.DeckURL(34))
}
