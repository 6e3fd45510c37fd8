package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Catalog is an httptest stand-in for the card catalog API. Pages holds
// the raw card objects of each search page, Images the image of a card
// by its catalog id.
type Catalog struct {
	Pages  [][]json.RawMessage
	Images map[string][]byte
	// BrokenPages answer 503.
	BrokenPages map[int]bool

	Server *httptest.Server

	mu        sync.Mutex
	pageHits  map[int]int
	imageHits map[string]int
	queries   []string
}

func NewCatalog(t testing.TB) *Catalog {
	c := &Catalog{
		Images:      map[string][]byte{},
		BrokenPages: map[int]bool{},
		pageHits:    map[int]int{},
		imageHits:   map[string]int{},
	}
	c.Server = httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.Server.Close)
	return c
}

func (c *Catalog) URL() string {
	return c.Server.URL
}

func (c *Catalog) PageHits(page int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageHits[page]
}

func (c *Catalog) ImageHits(sourceID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.imageHits[sourceID]
}

// Queries returns the search query of every first-page request.
func (c *Catalog) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

func (c *Catalog) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/cards/search" {
		c.serveSearch(w, r)
		return
	}

	sourceID, ok := strings.CutPrefix(r.URL.Path, "/cards/")
	if !ok || r.URL.Query().Get("format") != "image" {
		http.NotFound(w, r)
		return
	}
	c.mu.Lock()
	c.imageHits[sourceID]++
	c.mu.Unlock()

	image, ok := c.Images[sourceID]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("content-type", "image/jpeg")
	w.Write(image)
}

func (c *Catalog) serveSearch(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, _ = strconv.Atoi(raw)
	}

	c.mu.Lock()
	c.pageHits[page]++
	if page == 0 {
		c.queries = append(c.queries, r.URL.Query().Get("q"))
	}
	c.mu.Unlock()

	if c.BrokenPages[page] {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if page >= len(c.Pages) {
		http.NotFound(w, r)
		return
	}

	body := map[string]any{
		"object":   "list",
		"data":     c.Pages[page],
		"has_more": page+1 < len(c.Pages),
	}
	if page+1 < len(c.Pages) {
		body["next_page"] = fmt.Sprintf("%s/cards/search?q=%s&page=%d", c.URL(), url.QueryEscape(r.URL.Query().Get("q")), page+1)
	}
	w.Header().Set("content-type", "application/json")
	json.NewEncoder(w).Encode(body)
}
