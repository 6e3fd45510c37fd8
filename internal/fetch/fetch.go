// Package fetch wraps outbound GET requests with bounded retries and a
// jittered pause after every request, the only throttle the crawl has.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"cardstorm-backend/internal/components/assert"
	"cardstorm-backend/internal/components/chrono"
	"cardstorm-backend/internal/components/configutil"
	"cardstorm-backend/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_fetcher_fetch   = "fetcher.fetch"
	report_fetcher_attempt = "fetcher.attempt"
)

const (
	DefaultAttempts  = 5
	DefaultFloor     = 2 * time.Second
	DefaultJitter    = time.Second
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "cardstorm-crawler (+https://github.com/cardstorm)"
)

type Config struct {
	Attempts int                 `json:"attempts"`
	Floor    configutil.Duration `json:"floor"`
	Jitter   configutil.Duration `json:"jitter"`
	// RPS caps outbound requests per second, 0 disables the limiter.
	RPS              float64             `json:"rps"`
	Timeout          configutil.Duration `json:"timeout"`
	UserAgent        string              `json:"user_agent"`
	CloudflareBypass bool                `json:"cloudflare_bypass"`
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = DefaultAttempts
	}
	if c.Floor == 0 {
		c.Floor = configutil.Duration(DefaultFloor)
	}
	if c.Jitter == 0 {
		c.Jitter = configutil.Duration(DefaultJitter)
	}
	if c.Timeout == 0 {
		c.Timeout = configutil.Duration(DefaultTimeout)
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// Response is whatever the last attempt received, callers check Status.
type Response struct {
	URL    string
	Status int
	Body   []byte
	// Attempts is the number of requests made to produce this response.
	Attempts int
}

func (r Response) OK() bool {
	return r.Status == http.StatusOK
}

// API is what crawling code depends on.
//
// note: fault injection point
type API interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (Response, error)
}

type Fetcher struct {
	http   *resty.Client
	config Config
	clock  chrono.API
	tel    telemetry.API
	// jitter returns a value in [0, 1)
	jitter func() float64
}

func New(config Config, clock chrono.API, tel telemetry.API) *Fetcher {
	assert.NotNil(clock)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("fetch", tel)
	config = config.withDefaults()

	client := resty.New()
	client.SetTimeout(config.Timeout.Std())
	client.SetHeader("user-agent", config.UserAgent)
	if config.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if config.RPS > 0 {
		// max burst >= 1 just means that no requests will be dropped
		limiter := rate.NewLimiter(rate.Limit(config.RPS), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}
	telemetry.InstrumentResty(client, tel)

	return &Fetcher{
		http:   client,
		config: config,
		clock:  clock,
		tel:    tel,
		jitter: rand.Float64,
	}
}

// Backoff is the pause taken after every attempt, successful or not: the
// floor plus a uniform fraction of the jitter window.
func (f *Fetcher) Backoff() time.Duration {
	return f.config.Floor.Std() + time.Duration(f.jitter()*float64(f.config.Jitter.Std()))
}

// Fetch GETs url until it answers 200 or the attempts run out, pausing for
// Backoff after each request. Once the attempts run out, the last response
// received is returned as is with a nil error.
// An error is only returned when no attempt got a response at all or
// when ctx is done.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string) (Response, error) {
	var (
		last    *Response
		lastErr error
	)

	for attempt := 1; attempt <= f.config.Attempts; attempt++ {
		res, err := f.http.R().
			SetContext(ctx).
			SetHeaders(headers).
			Get(url)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, ctxErr
		}

		var received *Response
		if err != nil {
			lastErr = err
			f.tel.ReportDebug(report_fetcher_attempt, url, attempt, err)
		} else {
			received = &Response{
				URL:      url,
				Status:   res.StatusCode(),
				Body:     res.Body(),
				Attempts: attempt,
			}
			if !received.OK() {
				last = received
				f.tel.ReportDebug(report_fetcher_attempt, url, attempt, received.Status)
			}
		}

		err = f.clock.Sleep(ctx, f.Backoff())
		if err != nil {
			return Response{}, err
		}
		if received != nil && received.OK() {
			return *received, nil
		}
	}

	if last != nil {
		last.Attempts = f.config.Attempts
		f.tel.ReportWarning(
			report_fetcher_fetch,
			fmt.Errorf("status %d after %d attempts", last.Status, f.config.Attempts),
			url,
		)
		return *last, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	f.tel.ReportWarning(report_fetcher_fetch, lastErr, url)
	return Response{}, fmt.Errorf("fetch %s: %w", url, lastErr)
}
