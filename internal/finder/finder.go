package finder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"codeberg.org/snonux/flickfinder/internal/flickr"
	"codeberg.org/snonux/flickfinder/internal/logging"
	"codeberg.org/snonux/flickfinder/internal/query"
)

// Searcher is the part of the Flickr client the pipeline needs
type Searcher interface {
	Search(ctx context.Context, params query.Parameters) (*flickr.SearchResponse, error)
	FetchImage(ctx context.Context, imageURL string) (*flickr.Image, error)
}

// Result is a successfully found photo
type Result struct {
	RequestID   string
	PhotoID     string
	Title       string
	Image       []byte
	ContentType string
	SourceURL   string
	Page        int
	TotalPages  int
	Elapsed     time.Duration
}

// Finder runs searches against Flickr
type Finder struct {
	builder  *query.Builder
	client   Searcher
	rnd      Rand
	logger   logrus.FieldLogger
	dispatch Dispatch
}

// Option configures a Finder
type Option func(*Finder)

// WithRand sets the random source for page and photo selection
func WithRand(rnd Rand) Option {
	return func(f *Finder) {
		if rnd != nil {
			f.rnd = rnd
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDispatch sets how reporter callbacks are delivered by Start
func WithDispatch(dispatch Dispatch) Option {
	return func(f *Finder) {
		if dispatch != nil {
			f.dispatch = dispatch
		}
	}
}

// New creates a Finder
func New(builder *query.Builder, client Searcher, opts ...Option) *Finder {
	f := &Finder{
		builder:  builder,
		client:   client,
		rnd:      globalRand{},
		logger:   logging.Discard(),
		dispatch: Inline,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find runs one search: validate and build the query, request it once to
// learn the page count, request a random page, pick a random photo and
// download it. Invalid criteria fail before any network call. Errors
// carry a *failure.Error.
func (f *Finder) Find(ctx context.Context, criteria query.Criteria) (*Result, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := f.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"criteria":   criteria.String(),
	})
	ctx = logging.NewContext(ctx, log)

	params, err := f.builder.Build(criteria)
	if err != nil {
		log.WithError(err).Debug("Rejected search criteria")
		return nil, err
	}

	log.Info("Searching Flickr")
	meta, err := f.client.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("metadata request: %w", err)
	}

	page := ChoosePage(meta.TotalPages, f.rnd)
	log.WithFields(logrus.Fields{"pages": meta.TotalPages, "page": page}).Debug("Chose result page")

	resp, err := f.client.Search(ctx, params.WithPage(page))
	if err != nil {
		return nil, fmt.Errorf("page %d request: %w", page, err)
	}

	photo, err := PickPhoto(resp.Photos, f.rnd)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}

	imageURL, err := ImageURLOf(photo)
	if err != nil {
		return nil, err
	}

	img, err := f.client.FetchImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("photo %s: %w", photo.ID, err)
	}

	result := &Result{
		RequestID:   requestID,
		PhotoID:     photo.ID,
		Title:       TitleOf(photo),
		Image:       img.Data,
		ContentType: img.ContentType,
		SourceURL:   imageURL,
		Page:        page,
		TotalPages:  meta.TotalPages,
		Elapsed:     time.Since(start),
	}
	log.WithFields(logrus.Fields{
		"photo_id": result.PhotoID,
		"title":    result.Title,
		"elapsed":  result.Elapsed,
	}).Info("Found photo")
	return result, nil
}
