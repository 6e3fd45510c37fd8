package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cardstorm-backend/internal/components/chrono"
	"cardstorm-backend/internal/components/configutil"
	"cardstorm-backend/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestFetcher(t testing.TB, config Config) (*Fetcher, *chrono.Fake, *telemetry.Recorder) {
	t.Helper()
	clock := chrono.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	tel := telemetry.NewRecorder()
	f := New(config, clock, tel)
	f.jitter = func() float64 { return 0.5 }
	return f, clock, tel
}

// flaky answers 503 for the first `failures` requests and 200 afterwards.
func flaky(failures int64) (*httptest.Server, *atomic.Int64) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("try again"))
			return
		}
		w.Write([]byte("4 Lightning Bolt"))
	}))
	return srv, &calls
}

func TestFetchRetriesUntilOK(t *testing.T) {
	srv, calls := flaky(4)
	defer srv.Close()

	f, clock, _ := newTestFetcher(t, Config{})
	res, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.Status)
	require.Equal(t, "4 Lightning Bolt", string(res.Body))
	require.Equal(t, 5, res.Attempts)
	require.Equal(t, int64(5), calls.Load())

	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 5)
	for _, s := range sleeps {
		require.Equal(t, 2500*time.Millisecond, s)
	}
}

func TestFetchPausesAfterEveryRequest(t *testing.T) {
	srv, calls := flaky(0)
	defer srv.Close()

	f, clock, _ := newTestFetcher(t, Config{})
	start := clock.Now()
	for i := 0; i < 20; i++ {
		res, err := f.Fetch(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		require.True(t, res.OK())
		require.Equal(t, 1, res.Attempts)
	}
	require.Equal(t, int64(20), calls.Load())

	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 20)
	for _, s := range sleeps {
		require.Equal(t, 2500*time.Millisecond, s)
	}
	require.Equal(t, 50*time.Second, clock.Now().Sub(start))
}

func TestFetchReturnsLastResponseWhenExhausted(t *testing.T) {
	srv, calls := flaky(100)
	defer srv.Close()

	f, clock, tel := newTestFetcher(t, Config{})
	res, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, res.Status)
	require.Equal(t, "try again", string(res.Body))
	require.Equal(t, int64(DefaultAttempts), calls.Load())
	require.Len(t, clock.Sleeps(), DefaultAttempts)
	require.Len(t, tel.Find("warning", report_fetcher_fetch), 1)
}

func TestFetchConfiguredBackoff(t *testing.T) {
	srv, calls := flaky(100)
	defer srv.Close()

	f, clock, _ := newTestFetcher(t, Config{
		Attempts: 2,
		Floor:    configutil.Duration(100 * time.Millisecond),
		Jitter:   configutil.Duration(200 * time.Millisecond),
	})
	_, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), calls.Load())
	require.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond}, clock.Sleeps())
}

func TestBackoffStaysInWindow(t *testing.T) {
	f := New(Config{}, chrono.NewFake(time.Time{}), telemetry.NewRecorder())
	for i := 0; i < 100; i++ {
		d := f.Backoff()
		require.GreaterOrEqual(t, d, DefaultFloor)
		require.Less(t, d, DefaultFloor+DefaultJitter)
	}
}

func TestFetchTransportErrors(t *testing.T) {
	srv, _ := flaky(0)
	url := srv.URL
	srv.Close()

	f, clock, _ := newTestFetcher(t, Config{Attempts: 3})
	_, err := f.Fetch(context.Background(), url, nil)
	require.Error(t, err)
	require.Len(t, clock.Sleeps(), 3)
}

func TestFetchCancelled(t *testing.T) {
	srv, _ := flaky(100)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, _, _ := newTestFetcher(t, Config{})
	_, err := f.Fetch(ctx, srv.URL, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchHeaders(t *testing.T) {
	var userAgent, accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("user-agent")
		accept = r.Header.Get("accept")
	}))
	defer srv.Close()

	f, _, _ := newTestFetcher(t, Config{UserAgent: "Getting some deck lists"})
	_, err := f.Fetch(context.Background(), srv.URL, map[string]string{"accept": "text/plain"})
	require.NoError(t, err)
	require.Equal(t, "Getting some deck lists", userAgent)
	require.Equal(t, "text/plain", accept)
}
