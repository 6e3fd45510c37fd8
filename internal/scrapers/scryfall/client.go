// Package scryfall reads the card catalog API: paginated card searches and
// per-card images.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"cardstorm-backend/internal/components/assert"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/fetch"
)

const (
	report_client_page  = "client.page"
	report_client_image = "client.image"
)

// ErrUnavailable is returned when an endpoint stayed non-200 after every retry.
var ErrUnavailable = errors.New("scryfall: endpoint unavailable")

const (
	DefaultBaseURL = "https://api.scryfall.com"
	DefaultQuery   = "format:modern"
)

type Config struct {
	BaseURL string `json:"base_url"`
	// Query is the search the catalog is loaded from.
	Query string `json:"query"`
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Query == "" {
		c.Query = DefaultQuery
	}
	return c
}

// Page is one page of search results. Cards are left undecoded so a single
// malformed card does not lose the rest of the page.
type Page struct {
	Data     []json.RawMessage `json:"data"`
	HasMore  bool              `json:"has_more"`
	NextPage string            `json:"next_page"`
}

type Image struct {
	ContentType string
	Bytes       []byte
}

type Client struct {
	base    *url.URL
	config  Config
	fetcher fetch.API
	tel     telemetry.API
}

func NewClient(config Config, fetcher fetch.API, tel telemetry.API) (*Client, error) {
	assert.NotNil(fetcher)
	assert.NotNil(tel)

	config = config.withDefaults()
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse scryfall base url: %w", err)
	}
	return &Client{
		base:    base,
		config:  config,
		fetcher: fetcher,
		tel:     telemetry.NewScopedAPI("scryfall", tel),
	}, nil
}

// SearchURL is the first page of the configured search.
func (c *Client) SearchURL() string {
	u := c.base.JoinPath("cards", "search")
	u.RawQuery = url.Values{"q": {c.config.Query}}.Encode()
	return u.String()
}

func (c *Client) ImageURL(sourceID string) string {
	u := c.base.JoinPath("cards", sourceID)
	u.RawQuery = url.Values{"format": {"image"}}.Encode()
	return u.String()
}

// Page fetches one page of search results, endpoint is either SearchURL
// or the NextPage of the previous page.
func (c *Client) Page(ctx context.Context, endpoint string) (Page, error) {
	res, err := c.fetcher.Fetch(ctx, endpoint, map[string]string{"accept": "application/json"})
	if err != nil {
		return Page{}, err
	}
	if !res.OK() {
		err := fmt.Errorf("%w: %s answered %d", ErrUnavailable, endpoint, res.Status)
		c.tel.ReportWarning(report_client_page, err)
		return Page{}, err
	}

	var page Page
	err = json.Unmarshal(res.Body, &page)
	if err != nil {
		c.tel.ReportBroken(report_client_page, fmt.Errorf("decode: %w", err), endpoint)
		return Page{}, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if page.HasMore && page.NextPage == "" {
		err := fmt.Errorf("page %s has more results but no next_page", endpoint)
		c.tel.ReportBroken(report_client_page, err)
		return Page{}, err
	}
	return page, nil
}

// Image fetches the image of a card by its catalog id.
func (c *Client) Image(ctx context.Context, sourceID string) (Image, error) {
	endpoint := c.ImageURL(sourceID)
	res, err := c.fetcher.Fetch(ctx, endpoint, nil)
	if err != nil {
		return Image{}, err
	}
	if !res.OK() {
		err := fmt.Errorf("%w: %s answered %d", ErrUnavailable, endpoint, res.Status)
		c.tel.ReportWarning(report_client_image, err)
		return Image{}, err
	}
	return Image{
		ContentType: http.DetectContentType(res.Body),
		Bytes:       res.Body,
	}, nil
}
