// Package store holds the authoritative building list for a session. The list
// is fetched exactly once from a Source and never changes afterwards.
package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"campusmap/internal/enrich"
	"campusmap/internal/models"

	"go.uber.org/zap"
)

// Source performs the single network request that yields the building list.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Building, error)
}

// FetchError is the terminal failure of the initial load.
type FetchError struct {
	Source string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch buildings from %s: %s", e.Source, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// LoadObserver receives the outcome of the load. metrics.Recorder implements it.
type LoadObserver interface {
	LoadFinished(d time.Duration, count int, err error)
}

type Store struct {
	source   Source
	logger   *zap.Logger
	observer LoadObserver

	once      sync.Once
	buildings []models.Building
	places    []models.Place
	err       error
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithObserver(o LoadObserver) Option {
	return func(s *Store) { s.observer = o }
}

func New(source Source, opts ...Option) *Store {
	s := &Store{source: source, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the building list. Only the first call touches the source; later
// calls return the same result, failures included.
func (s *Store) Load(ctx context.Context) ([]models.Building, error) {
	s.once.Do(func() {
		start := time.Now()
		s.buildings, s.err = s.fetch(ctx)
		if s.err == nil {
			s.places = prepare(ctx, s.logger, s.buildings)
		}
		if s.observer != nil {
			s.observer.LoadFinished(time.Since(start), len(s.buildings), s.err)
		}
		if s.err != nil {
			s.logger.Error("building load failed", zap.String("source", s.source.Name()), zap.Error(s.err))
			return
		}
		s.logger.Info("buildings loaded",
			zap.String("source", s.source.Name()),
			zap.Int("count", len(s.buildings)),
			zap.Duration("took", time.Since(start)))
	})
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.buildings), nil
}

func (s *Store) fetch(ctx context.Context) ([]models.Building, error) {
	records, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, &FetchError{Source: s.source.Name(), Reason: err.Error(), Err: err}
	}
	return records, nil
}

// All returns a copy of the loaded buildings, or nil before a successful load.
func (s *Store) All() []models.Building {
	return slices.Clone(s.buildings)
}

// Places returns the loaded buildings prepared for display, in feed order.
func (s *Store) Places() []models.Place {
	return slices.Clone(s.places)
}

// prepare runs each record through the enrichment pipeline: coordinate parsing
// and the folded search key are independent so they share a stage; the
// position check needs the parsed coordinates.
func prepare(ctx context.Context, logger *zap.Logger, buildings []models.Building) []models.Place {
	items := make([]*models.Place, len(buildings))
	for i, b := range buildings {
		items[i] = &models.Place{Building: b}
	}
	pipeline := enrich.NewPipeline(logger,
		enrich.NewStage(parsePosition, foldName).Named("parse"),
		enrich.NewStage(checkPosition).Named("check"),
	)
	if unmapped := pipeline.Run(ctx, items); unmapped > 0 {
		logger.Info("some buildings cannot be placed on the map", zap.Int("count", unmapped))
	}

	places := make([]models.Place, len(items))
	for i, p := range items {
		places[i] = *p
	}
	return places
}

func parsePosition(_ context.Context, p *models.Place) error {
	p.Position = p.Building.Position()
	return nil
}

// checkPosition flags records whose marker will not render. They stay in the
// list and remain filterable.
func checkPosition(_ context.Context, p *models.Place) error {
	if !p.Position.Valid() {
		return fmt.Errorf("building %q has no usable position (%q, %q)", p.Name, p.Latitude, p.Longitude)
	}
	return nil
}

func foldName(_ context.Context, p *models.Place) error {
	p.SearchKey = strings.ToLower(p.Name)
	return nil
}
