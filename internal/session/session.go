// Package session wires a loaded building store to a rendering surface and
// owns the goroutine on which all display state changes happen.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"campusmap/internal/display"
	"campusmap/internal/models"
	"campusmap/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRenderTargetMissing means the rendering surface could not be created.
// Like a fetch failure it ends the session.
var ErrRenderTargetMissing = errors.New("render target missing")

// State is the snapshot handed to subscribers after every change.
type State struct {
	Filter    string
	Visible   []models.Building
	MenuShown bool
}

// OpenSurface builds the rendering surface once the buildings are loaded.
type OpenSurface func(s *Session) (display.Surface, error)

// EventPublisher receives session events. kafkaclient.KafkaProducer implements it.
type EventPublisher interface {
	Publish(key, value []byte) bool
}

type Session struct {
	id        string
	store     *store.Store
	logger    *zap.Logger
	metrics   display.Metrics
	publisher EventPublisher
	highlight time.Duration

	loop  chan func()
	done  chan struct{}
	ready chan struct{}

	mu            sync.Mutex
	pendingFilter *string
	state         State
	subs          map[int]func(State)
	nextSub       int

	// owned by the loop goroutine
	sync      *display.Sync
	menuShown bool
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithMetrics(m display.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Session) { s.publisher = p }
}

// WithHighlight sets how long an activated marker bounces. Zero keeps the
// highlight until the marker is activated again.
func WithHighlight(d time.Duration) Option {
	return func(s *Session) { s.highlight = d }
}

func New(st *store.Store, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		store:     st,
		logger:    zap.NewNop(),
		highlight: display.DefaultHighlight,
		loop:      make(chan func(), 64),
		done:      make(chan struct{}),
		ready:     make(chan struct{}),
		subs:      make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	return s
}

func (s *Session) ID() string { return s.id }

// Ready is closed once the display exists and input is accepted.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run loads the buildings, opens the surface and processes events until ctx is
// canceled. A load failure returns the *store.FetchError before the surface is
// opened; a surface failure returns an error wrapping ErrRenderTargetMissing.
func (s *Session) Run(ctx context.Context, open OpenSurface) error {
	defer close(s.done)

	if _, err := s.store.Load(ctx); err != nil {
		return err
	}

	surface, err := open(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRenderTargetMissing, err)
	}
	if surface == nil {
		return fmt.Errorf("%w: no surface", ErrRenderTargetMissing)
	}

	opts := []display.Option{
		display.WithLogger(s.logger),
		display.WithHighlight(s.highlight, s),
	}
	if s.metrics != nil {
		opts = append(opts, display.WithMetrics(s.metrics))
	}
	s.sync = display.New(surface, s.store.Places(), opts...)
	s.notify()
	close(s.ready)
	s.logger.Info("session ready", zap.Int("buildings", len(s.sync.Visible())))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session ended")
			return nil
		case fn := <-s.loop:
			fn()
		}
	}
}

// Dispatch queues fn to run on the session goroutine. It drops fn once the
// session has ended.
func (s *Session) Dispatch(fn func()) {
	select {
	case s.loop <- fn:
	case <-s.done:
	}
}

// SetFilter requests a new filter. Requests that arrive before the previous
// one was applied replace it, so only the latest text is ever applied.
func (s *Session) SetFilter(text string) {
	s.mu.Lock()
	scheduled := s.pendingFilter != nil
	s.pendingFilter = &text
	s.mu.Unlock()
	if !scheduled {
		s.Dispatch(s.applyPendingFilter)
	}
}

func (s *Session) applyPendingFilter() {
	s.mu.Lock()
	pending := s.pendingFilter
	s.pendingFilter = nil
	s.mu.Unlock()
	if pending == nil {
		return
	}
	s.sync.SetFilter(*pending)
	s.emit(Event{Type: EventFilterApplied, Filter: s.sync.Filter(), Visible: len(s.sync.Visible())})
	s.notify()
}

// Activate selects a building by name, from a list click or a marker click.
func (s *Session) Activate(name string) {
	s.Dispatch(func() {
		found := s.sync.ActivateMarker(name)
		s.emit(Event{Type: EventMarkerActivated, Building: name, Found: found, Highlighted: s.sync.Highlighted(name)})
	})
}

// ToggleMenu flips the side list visibility.
func (s *Session) ToggleMenu() {
	s.Dispatch(func() {
		s.menuShown = !s.menuShown
		s.notify()
	})
}

// State returns the latest published snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called on the session goroutine after every
// change. fn must not block. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	st := State{
		Filter:    s.sync.Filter(),
		Visible:   s.sync.Visible(),
		MenuShown: s.menuShown,
	}
	s.mu.Lock()
	s.state = st
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

// AfterFunc implements display.Scheduler. fn runs on the session goroutine
// unless canceled first; cancel must also be called from that goroutine.
func (s *Session) AfterFunc(d time.Duration, fn func()) func() {
	canceled := false
	t := time.AfterFunc(d, func() {
		s.Dispatch(func() {
			if !canceled {
				fn()
			}
		})
	})
	return func() {
		canceled = true
		t.Stop()
	}
}
