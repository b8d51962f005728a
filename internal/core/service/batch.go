package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"whalegen/internal/core/domain"
	"whalegen/internal/core/port"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Settings struct {
	ImageBucket    string
	MetadataBucket string
	ImageBaseURI   string
	Policy         domain.FailurePolicy
	Workers        int
}

// Batch drives discovered source images through fetch, pixelation, descriptor synthesis, local persistence and
// upload, assigning each one the sequence index of its list position.
type Batch struct {
	discoverer port.Discoverer
	fetcher    port.Fetcher
	converter  port.ImageConverter
	storage    port.LocalStorage
	uploader   port.Uploader
	sender     port.SummarySender
	settings   Settings
}

// NewBatch wires the orchestrator. sender may be nil when no summary should be published.
func NewBatch(discoverer port.Discoverer,
	fetcher port.Fetcher,
	converter port.ImageConverter,
	storage port.LocalStorage,
	uploader port.Uploader,
	sender port.SummarySender,
	settings Settings) *Batch {
	if settings.Policy == "" {
		settings.Policy = domain.Continue
	}
	if settings.Workers < 1 {
		settings.Workers = 1
	}

	return &Batch{discoverer: discoverer,
		fetcher:   fetcher,
		converter: converter,
		storage:   storage,
		uploader:  uploader,
		sender:    sender,
		settings:  settings}
}

// RunDiscovered asks the discoverer for source URLs and runs the batch over them. A discovery failure aborts
// before any item is processed.
func (b *Batch) RunDiscovered(ctx context.Context, start int) (*domain.BatchSummary, error) {
	urls, err := b.discoverer.Discover(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrDiscovery) {
			err = fmt.Errorf("%w: %w", domain.ErrDiscovery, err)
		}
		log.Error().Err(err).Msg("could not discover source images")
		return nil, err
	}

	log.Info().Int("sources", len(urls)).Msg("discovered source images")

	return b.Run(ctx, urls, start)
}

// Run processes urls starting at sequence index start. The returned summary is always populated; the error is
// non-nil when the run was cut short, either by the Abort policy or by ctx.
func (b *Batch) Run(ctx context.Context, urls []string, start int) (*domain.BatchSummary, error) {
	if start < 0 {
		return nil, fmt.Errorf("start index must not be negative, got %d", start)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("error generating run id: %w", err)
	}

	tracker := NewRunTracker(id.String(), start, urls)
	l := log.With().Str("runId", tracker.RunID()).Logger()

	l.Info().
		Int("items", len(urls)).
		Int("start", start).
		Str("policy", string(b.settings.Policy)).
		Int("workers", b.settings.Workers).
		Msg("starting batch")

	if b.settings.Workers == 1 {
		err = b.runSequential(ctx, tracker, urls, start)
	} else {
		err = b.runConcurrent(ctx, tracker, urls, start)
	}

	summary := tracker.Summary(b.settings.Policy)

	l.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("notAttempted", summary.NotAttempted).
		Int("uploadFailures", summary.UploadFailures).
		Int("nextIndex", summary.NextIndex).
		Dur("elapsed", summary.Elapsed).
		Msg("batch finished")

	b.notify(ctx, summary)

	return summary, err
}

func (b *Batch) runSequential(ctx context.Context, tracker *RunTracker, urls []string, start int) error {
	for pos, url := range urls {
		if err := ctx.Err(); err != nil {
			log.Warn().Str("runId", tracker.RunID()).Msg("interrupted")
			return err
		}

		err := b.processItem(ctx, tracker, pos, start+pos, url)
		if err != nil && b.settings.Policy == domain.Abort {
			return err
		}
	}

	return nil
}

// runConcurrent assigns indices from list positions before dispatch, so the position to index mapping does not
// depend on completion order.
func (b *Batch) runConcurrent(ctx context.Context, tracker *RunTracker, urls []string, start int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.settings.Workers)

	for pos, url := range urls {
		if gctx.Err() != nil {
			break
		}

		index := start + pos
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			err := b.processItem(gctx, tracker, pos, index, url)
			if err != nil && b.settings.Policy == domain.Abort {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

func (b *Batch) processItem(ctx context.Context, tracker *RunTracker, pos, index int, url string) error {
	l := log.With().
		Str("runId", tracker.RunID()).
		Int("index", index).
		Str("url", url).
		Logger()

	l.Info().Msg("processing item")

	fail := func(state domain.ItemState, err error) error {
		tracker.Fail(pos, state, err)
		l.Error().Err(err).Str("state", string(state)).Msg("item failed")
		return &domain.ItemError{Index: index, URL: url, State: state, Err: err}
	}

	tracker.Advance(pos, domain.Fetching)
	src, err := b.acquire(ctx, index, url)
	if err != nil {
		return fail(domain.Fetching, err)
	}

	tracker.Advance(pos, domain.Transforming)
	img, err := b.converter.Pixelate(ctx, src)
	if err != nil {
		return fail(domain.Transforming, err)
	}

	tracker.Advance(pos, domain.Synthesizing)
	descriptor := domain.NewDescriptor(index, domain.ImageURI(b.settings.ImageBaseURI, index, img.Format))
	md, err := json.Marshal(descriptor)
	if err != nil {
		return fail(domain.Synthesizing, fmt.Errorf("error encoding descriptor: %w", err))
	}

	tracker.Advance(pos, domain.Persisting)
	imagePath := domain.ImagePath(index, img.Format)
	descriptorPath := domain.DescriptorPath(index)
	if err := b.storage.PersistLocal(img.Data, imagePath); err != nil {
		return fail(domain.Persisting, err)
	}
	if err := b.storage.PersistLocal(md, descriptorPath); err != nil {
		return fail(domain.Persisting, err)
	}

	tracker.Advance(pos, domain.Uploading)
	imageUploaded := b.uploader.Upload(ctx, imagePath, b.settings.ImageBucket)
	descriptorUploaded := b.uploader.Upload(ctx, descriptorPath, b.settings.MetadataBucket)
	tracker.Complete(pos, imageUploaded, descriptorUploaded)

	logUploadOutcome(l, imageUploaded, descriptorUploaded)

	l.Info().
		Str("image", imagePath).
		Int("width", img.Width).
		Int("height", img.Height).
		Msg("item done")

	return nil
}

// acquire downloads the source, validates its format and keeps the raw bytes next to the derived artifacts.
func (b *Batch) acquire(ctx context.Context, index int, url string) (domain.SourceImage, error) {
	data, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		return domain.SourceImage{}, err
	}

	format, err := domain.DetectFormat(data)
	if err != nil {
		return domain.SourceImage{}, err
	}

	if err := b.storage.PersistLocal(data, domain.SourcePath(index, format)); err != nil {
		return domain.SourceImage{}, err
	}

	return domain.SourceImage{Index: index, URL: url, Data: data, Format: format}, nil
}

func (b *Batch) notify(ctx context.Context, summary *domain.BatchSummary) {
	if b.sender == nil {
		return
	}

	if err := b.sender.SendSummary(context.WithoutCancel(ctx), summary); err != nil {
		log.Warn().Err(err).Str("runId", summary.RunID).Msg("could not publish batch summary")
	}
}

func logUploadOutcome(l zerolog.Logger, imageUploaded, descriptorUploaded bool) {
	if imageUploaded && descriptorUploaded {
		return
	}

	l.Warn().
		Bool("imageUploaded", imageUploaded).
		Bool("descriptorUploaded", descriptorUploaded).
		Msg("upload incomplete, artifacts kept locally")
}
