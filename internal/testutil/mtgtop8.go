package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Site is an httptest stand-in for the tournament site. Pages map a front
// page index to its events, Events map an event to its decks and Decks
// hold the text export of each deck. Any id listed in Broken answers 503.
type Site struct {
	Pages  map[int][]int64
	Events map[int64][]int64
	Decks  map[int64]string
	// Broken holds request paths with their query, like "/event?e=2".
	Broken map[string]bool
	// Malformed holds front pages or events served without their tables.
	Malformed map[string]bool

	Server *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func NewSite(t testing.TB) *Site {
	s := &Site{
		Pages:     map[int][]int64{},
		Events:    map[int64][]int64{},
		Decks:     map[int64]string{},
		Broken:    map[string]bool{},
		Malformed: map[string]bool{},
		hits:      map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *Site) URL() string {
	return s.Server.URL
}

// Hits returns how many requests were made for key, a key looks like
// "/mtgo?d=5001".
func (s *Site) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var key string
	switch r.URL.Path {
	case "/format":
		key = "/format?cp=" + query.Get("cp")
	case "/event":
		key = "/event?e=" + query.Get("e")
	case "/mtgo":
		key = "/mtgo?d=" + query.Get("d")
	default:
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.hits[key]++
	s.mu.Unlock()

	if s.Broken[key] {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if s.Malformed[key] {
		fmt.Fprint(w, "<html><body><p>maintenance</p></body></html>")
		return
	}

	switch r.URL.Path {
	case "/format":
		page, _ := strconv.Atoi(query.Get("cp"))
		fmt.Fprint(w, FrontPageHTML(s.Pages[page]))
	case "/event":
		id, _ := strconv.ParseInt(query.Get("e"), 10, 64)
		fmt.Fprint(w, EventPageHTML(id, s.Events[id]))
	case "/mtgo":
		id, _ := strconv.ParseInt(query.Get("d"), 10, 64)
		text, ok := s.Decks[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("content-type", "text/plain")
		fmt.Fprint(w, text)
	}
}

// FrontPageHTML renders a format page whose "last events" table links
// to the given events.
func FrontPageHTML(events []int64) string {
	var rows strings.Builder
	for _, id := range events {
		fmt.Fprintf(&rows, `<tr><td class="S14"><a href="event?e=%d&f=MO">Event %d</a></td><td>5 players</td></tr>`, id, id)
	}
	return fmt.Sprintf(`<html><body>
<table><tr><td><a href="/">home</a></td><td><a href="/search">search</a></td></tr></table>
<table><tr><td><a href="format?f=MO">Modern</a></td></tr></table>
<table><tr>
<td><a href="archetype?a=1&f=MO">Burn</a></td>
<td>
<table><tr><td><a href="event?e=1&f=MO">Major events</a></td></tr></table>
<table>%s</table>
</td>
</tr></table>
</body></html>`, rows.String())
}

// EventPageHTML renders an event page whose fourth table links to every
// deck twice, once by archetype and once by player, next to links that
// are not decks.
func EventPageHTML(eventID int64, decks []int64) string {
	var rows strings.Builder
	for _, id := range decks {
		fmt.Fprintf(
			&rows,
			`<tr><td><a href="?e=%d&d=%d&f=MO">Deck %d</a></td><td><a href="?e=%d&d=%d&f=MO">Player</a></td><td><a href="search?player=%d">profile</a></td></tr>`,
			eventID, id, id, eventID, id, id,
		)
	}
	return fmt.Sprintf(`<html><body>
<table><tr><td><a href="/">home</a></td></tr></table>
<table><tr><td>Modern Challenge</td></tr></table>
<table><tr><td><a href="format?f=MO">back</a></td></tr></table>
<table>%s</table>
</body></html>`, rows.String())
}
