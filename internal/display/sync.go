// Package display keeps the markers on a map surface in step with a name
// filter over a fixed list of buildings.
//
// A Sync is not safe for concurrent use. The owning session drives it from a
// single goroutine, and surfaces must deliver marker clicks and scheduled
// callbacks on that same goroutine.
package display

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"campusmap/internal/models"

	"go.uber.org/zap"
)

// DefaultHighlight is how long a marker bounces after activation.
const DefaultHighlight = 1400 * time.Millisecond

type marker struct {
	handle      Handle
	place       models.Place
	highlighted bool
	cancelClear func()
}

// Sync owns the display state: the filter text, the visible subsequence of
// buildings and one marker per visible building.
type Sync struct {
	surface Surface
	all     []models.Place

	filter  string
	visible []models.Place
	markers map[string]*marker

	highlight time.Duration
	scheduler Scheduler
	metrics   Metrics
	logger    *zap.Logger
}

type Option func(*Sync)

func WithLogger(l *zap.Logger) Option {
	return func(s *Sync) { s.logger = l }
}

func WithMetrics(m Metrics) Option {
	return func(s *Sync) { s.metrics = m }
}

// WithHighlight makes an activated marker stop bouncing on its own after d.
// A zero duration or nil scheduler leaves the highlight on until the marker is
// activated again.
func WithHighlight(d time.Duration, sched Scheduler) Option {
	return func(s *Sync) {
		s.highlight = d
		s.scheduler = sched
	}
}

// New builds a Sync over places and applies the empty filter, so every
// building starts with a marker.
func New(surface Surface, places []models.Place, opts ...Option) *Sync {
	s := &Sync{
		surface: surface,
		all:     places,
		markers: make(map[string]*marker, len(places)),
		metrics: nopMetrics{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if dups := duplicateNames(places); len(dups) > 0 {
		s.logger.Warn("building names are not unique, duplicates share one marker", zap.Strings("names", dups))
	}
	s.SetFilter("")
	return s
}

// SetFilter recomputes the visible set for text and reconciles markers.
// Markers of buildings that stay visible keep their handle; calling it again
// with the same text makes no surface calls.
func (s *Sync) SetFilter(text string) {
	s.filter = strings.ToLower(text)
	s.visible = Match(s.all, s.filter)
	created, removed := s.reconcile()
	s.metrics.FilterApplied(len(s.visible))
	s.logger.Debug("filter applied",
		zap.String("filter", s.filter),
		zap.Int("visible", len(s.visible)),
		zap.Int("created", created),
		zap.Int("removed", removed))
	if err := s.CheckInvariant(); err != nil {
		s.logger.DPanic("marker set out of sync", zap.Error(err))
	}
}

func (s *Sync) reconcile() (created, removed int) {
	want := make(map[string]struct{}, len(s.visible))
	for _, p := range s.visible {
		want[p.Name] = struct{}{}
	}

	// walk in feed order so surface calls are deterministic
	for _, p := range s.all {
		m, ok := s.markers[p.Name]
		if !ok {
			continue
		}
		if _, keep := want[p.Name]; keep {
			continue
		}
		s.drop(p.Name, m)
		removed++
	}
	for _, p := range s.visible {
		if _, ok := s.markers[p.Name]; ok {
			continue
		}
		s.markers[p.Name] = s.create(p)
		created++
	}

	if created > 0 {
		s.metrics.MarkersCreated(created)
	}
	if removed > 0 {
		s.metrics.MarkersRemoved(removed)
	}
	return created, removed
}

func (s *Sync) create(p models.Place) *marker {
	h := s.surface.CreateMarker(p.Position, p.Name)
	if !p.Position.Valid() {
		s.logger.Debug("marker has no renderable position", zap.String("building", p.Name))
	}
	name := p.Name
	s.surface.OnMarkerClick(h, func() { s.ActivateMarker(name) })
	return &marker{handle: h, place: p}
}

func (s *Sync) drop(name string, m *marker) {
	if m.cancelClear != nil {
		m.cancelClear()
		m.cancelClear = nil
	}
	s.surface.RemoveMarker(m.handle)
	delete(s.markers, name)
}

// ActivateMarker toggles the highlight on the named building's marker and opens
// its info window. It reports false, doing nothing, when the building has no
// marker, which happens when it has been filtered out since it was clicked.
func (s *Sync) ActivateMarker(name string) bool {
	m, ok := s.markers[name]
	s.metrics.MarkerActivated(ok)
	if !ok {
		s.logger.Debug("activation ignored, building not visible", zap.String("building", name))
		return false
	}
	if m.highlighted {
		s.clearHighlight(m)
	} else {
		s.setHighlight(name, m)
	}
	s.surface.OpenInfoWindow(m.handle, InfoFor(m.place.Building))
	return true
}

func (s *Sync) setHighlight(name string, m *marker) {
	m.highlighted = true
	s.surface.StartBounce(m.handle)
	if s.highlight <= 0 || s.scheduler == nil {
		return
	}
	m.cancelClear = s.scheduler.AfterFunc(s.highlight, func() {
		// the marker may have been removed and recreated since
		if cur, ok := s.markers[name]; ok && cur == m && m.highlighted {
			m.cancelClear = nil
			s.clearHighlight(m)
		}
	})
}

func (s *Sync) clearHighlight(m *marker) {
	if m.cancelClear != nil {
		m.cancelClear()
		m.cancelClear = nil
	}
	m.highlighted = false
	s.surface.StopBounce(m.handle)
}

// Filter returns the normalized filter text.
func (s *Sync) Filter() string { return s.filter }

// Visible returns the buildings currently shown, in feed order.
func (s *Sync) Visible() []models.Building {
	out := make([]models.Building, len(s.visible))
	for i, p := range s.visible {
		out[i] = p.Building
	}
	return out
}

// Markers returns a copy of the name to handle mapping.
func (s *Sync) Markers() map[string]Handle {
	out := make(map[string]Handle, len(s.markers))
	for name, m := range s.markers {
		out[name] = m.handle
	}
	return out
}

// Highlighted reports whether the named building's marker is bouncing.
func (s *Sync) Highlighted(name string) bool {
	m, ok := s.markers[name]
	return ok && m.highlighted
}

// CheckInvariant verifies that there is exactly one marker per visible
// building. A failure is a bug in this package.
func (s *Sync) CheckInvariant() error {
	want := make(map[string]struct{}, len(s.visible))
	for _, p := range s.visible {
		want[p.Name] = struct{}{}
	}
	var missing, stale []string
	for name := range want {
		if _, ok := s.markers[name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range s.markers {
		if _, ok := want[name]; !ok {
			stale = append(stale, name)
		}
	}
	if len(missing) == 0 && len(stale) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(stale)
	return fmt.Errorf("markers desynced: missing %v, stale %v", missing, stale)
}

func duplicateNames(places []models.Place) []string {
	seen := make(map[string]int, len(places))
	var dups []string
	for _, p := range places {
		seen[p.Name]++
		if seen[p.Name] == 2 {
			dups = append(dups, p.Name)
		}
	}
	return dups
}
