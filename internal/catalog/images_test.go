package catalog

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/scrapers/scryfall"
	"cardstorm-backend/internal/testutil"

	"github.com/stretchr/testify/require"
)

const (
	boltID         = "e3285e6b-3e79-4d7c-bf96-d920f973b80d"
	counterspellID = "1920dae4-fb92-4f19-ae4b-eb3276b8dac7"
)

var jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestImagePipeline(t *testing.T) {
	ctx := context.Background()
	store := testutil.OpenMemoryStore(t)
	tel := telemetry.NewRecorder()

	catalog := testutil.NewCatalog(t)
	catalog.Pages = [][]json.RawMessage{{testutil.LightningBolt, testutil.Counterspell}}
	// counterspell has no image and answers 404
	catalog.Images[boltID] = jpeg

	client, err := scryfall.NewClient(
		scryfall.Config{BaseURL: catalog.URL()},
		testutil.NewFetcher(testutil.NewClock(), tel),
		tel,
	)
	require.NoError(t, err)

	session, err := store.NewSession(ctx)
	require.NoError(t, err)
	_, err = NewLoader(client, session, tel).Load(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Close())

	clock := testutil.NewClock()
	pipeline := NewImagePipeline(store.Queries(), client, NewStoreSink(store.Queries(), clock), tel)

	stats, err := pipeline.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, ImageStats{Cards: 2, Fetched: 1, Failed: 1}, stats)
	require.NotEmpty(t, tel.Find("warning", report_images_run))

	sources, err := store.Queries().ListCardSources(ctx)
	require.NoError(t, err)
	var boltInternal int64
	for _, s := range sources {
		if s.SourceID == boltID {
			boltInternal = s.InternalID
		}
	}
	image, err := store.Queries().GetCardImage(ctx, boltInternal)
	require.NoError(t, err)
	require.Equal(t, jpeg, image.Bytes)
	require.Equal(t, "image/jpeg", image.ContentType)
	require.Equal(t, clock.Now().Unix(), image.FetchedAt)

	stats, err = pipeline.Run(ctx, false)
	require.NoError(t, err)
	require.Equal(t, ImageStats{Cards: 2, Present: 1, Failed: 1}, stats)
	require.Equal(t, 1, catalog.ImageHits(boltID))

	stats, err = pipeline.Run(ctx, true)
	require.NoError(t, err)
	require.Equal(t, ImageStats{Cards: 2, Fetched: 1, Failed: 1}, stats)
	require.Equal(t, 2, catalog.ImageHits(boltID))
}

func TestDirSink(t *testing.T) {
	ctx := context.Background()
	sink, err := NewDirSink(t.TempDir())
	require.NoError(t, err)

	has, err := sink.Has(ctx, 7)
	require.NoError(t, err)
	require.False(t, has)

	err = sink.Put(ctx, 7, scryfall.Image{ContentType: "image/jpeg", Bytes: jpeg})
	require.NoError(t, err)

	has, err = sink.Has(ctx, 7)
	require.NoError(t, err)
	require.True(t, has)

	written, err := os.ReadFile(sink.Path(7))
	require.NoError(t, err)
	require.Equal(t, jpeg, written)

	entries, err := os.ReadDir(sink.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
