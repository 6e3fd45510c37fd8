package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"cardstorm-backend/internal/components/assert"
	"cardstorm-backend/internal/components/chrono"
	"cardstorm-backend/internal/components/db"
	"cardstorm-backend/internal/components/telemetry"
	"cardstorm-backend/internal/scrapers/scryfall"
)

const (
	report_images_run = "images.run"
	report_images_put = "images.put"
)

type ImageSource interface {
	Image(ctx context.Context, sourceID string) (scryfall.Image, error)
}

// ImageSink stores one image per card, keyed by internal id.
type ImageSink interface {
	Has(ctx context.Context, internalID int64) (bool, error)
	Put(ctx context.Context, internalID int64, image scryfall.Image) error
}

// DirSink writes images to <dir>/<internal id>.jpg.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) (DirSink, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return DirSink{}, err
	}
	return DirSink{dir: dir}, nil
}

func (s DirSink) Path(internalID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(internalID, 10)+".jpg")
}

func (s DirSink) Has(_ context.Context, internalID int64) (bool, error) {
	_, err := os.Stat(s.Path(internalID))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (s DirSink) Put(_ context.Context, internalID int64, image scryfall.Image) error {
	path := s.Path(internalID)
	tmp, err := os.CreateTemp(s.dir, ".image-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(image.Bytes)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// StoreSink keeps images in the card_images table.
type StoreSink struct {
	qry   *db.Queries
	clock chrono.API
}

func NewStoreSink(qry *db.Queries, clock chrono.API) StoreSink {
	assert.NotNil(qry)
	assert.NotNil(clock)
	return StoreSink{qry: qry, clock: clock}
}

func (s StoreSink) Has(ctx context.Context, internalID int64) (bool, error) {
	return s.qry.HasCardImage(ctx, internalID)
}

func (s StoreSink) Put(ctx context.Context, internalID int64, image scryfall.Image) error {
	return s.qry.UpsertCardImage(ctx, db.CardImage{
		InternalID:  internalID,
		ContentType: image.ContentType,
		Bytes:       image.Bytes,
		FetchedAt:   s.clock.Now().Unix(),
	})
}

type ImageStats struct {
	Cards int
	// Present counts cards whose image was already in the sink.
	Present int
	Fetched int
	Failed  int
}

// ImagePipeline downloads the image of every catalog card into a sink. It
// is not part of the crawl and can be rerun on its own at any time.
type ImagePipeline struct {
	qry    *db.Queries
	source ImageSource
	sink   ImageSink
	tel    telemetry.API
}

func NewImagePipeline(qry *db.Queries, source ImageSource, sink ImageSink, tel telemetry.API) *ImagePipeline {
	assert.NotNil(qry)
	assert.NotNil(source)
	assert.NotNil(sink)
	assert.NotNil(tel)

	return &ImagePipeline{
		qry:    qry,
		source: source,
		sink:   sink,
		tel:    telemetry.NewScopedAPI("images", tel),
	}
}

// Run fetches every missing image, force refetches images the sink
// already has. Images the source cannot provide are reported and skipped.
func (p *ImagePipeline) Run(ctx context.Context, force bool) (ImageStats, error) {
	var stats ImageStats

	cards, err := p.qry.ListCardSources(ctx)
	if err != nil {
		p.tel.ReportBroken(report_images_run, err)
		return stats, fmt.Errorf("list catalog: %w", err)
	}
	stats.Cards = len(cards)

	for _, card := range cards {
		if !force {
			has, err := p.sink.Has(ctx, card.InternalID)
			if err != nil {
				p.tel.ReportBroken(report_images_put, err, card.InternalID)
				return stats, err
			}
			if has {
				stats.Present++
				continue
			}
		}

		image, err := p.source.Image(ctx, card.SourceID)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}
		if err != nil {
			stats.Failed++
			p.tel.ReportWarning(report_images_run, err, card.InternalID)
			continue
		}

		err = p.sink.Put(ctx, card.InternalID, image)
		if err != nil {
			p.tel.ReportBroken(report_images_put, err, card.InternalID)
			return stats, fmt.Errorf("store image of %d: %w", card.InternalID, err)
		}
		stats.Fetched++
	}

	p.tel.ReportCount(report_images_run, int64(stats.Fetched))
	return stats, nil
}
