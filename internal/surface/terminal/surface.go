// Package terminal renders the map as a character grid with bubbletea.
package terminal

import (
	"maps"
	"slices"
	"sync"

	"campusmap/internal/display"
	"campusmap/internal/models"
	"campusmap/internal/session"
	"campusmap/pkg/geo"

	tea "github.com/charmbracelet/bubbletea"
)

// Surface implements display.Surface for the terminal. The session goroutine
// writes to it; the bubbletea program reads frames after each change signal.
type Surface struct {
	mu        sync.Mutex
	next      display.Handle
	markers   map[display.Handle]*mark
	clicks    map[display.Handle]func()
	info      *infoView
	state     session.State
	ready     bool
	fatal     string
	bounds    geo.Bounds
	hasBounds bool

	changed   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type mark struct {
	Handle   display.Handle
	Title    string
	Pos      models.Coordinates
	Bouncing bool
}

type infoView struct {
	Handle display.Handle
	Info   display.Info
}

// frame is an immutable copy of the surface for one render.
type frame struct {
	Markers   []mark
	Info      *infoView
	State     session.State
	Ready     bool
	Fatal     string
	Bounds    geo.Bounds
	HasBounds bool
}

type changedMsg struct{}

func NewSurface() *Surface {
	return &Surface{
		markers: make(map[display.Handle]*mark),
		clicks:  make(map[display.Handle]func()),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Open is a session.OpenSurface that subscribes the surface to state changes.
func (s *Surface) Open(sess *session.Session) (display.Surface, error) {
	sess.Subscribe(s.Publish)
	return s, nil
}

func (s *Surface) CreateMarker(pos models.Coordinates, title string) display.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.markers[s.next] = &mark{Handle: s.next, Title: title, Pos: pos}
	// the extent only grows so the map does not rescale while filtering
	if pos.Valid() {
		if s.hasBounds {
			s.bounds = s.bounds.Extend(pos)
		} else {
			s.bounds, s.hasBounds = geo.BoundsOf([]models.Coordinates{pos})
		}
	}
	s.signal()
	return s.next
}

func (s *Surface) RemoveMarker(h display.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, h)
	delete(s.clicks, h)
	if s.info != nil && s.info.Handle == h {
		s.info = nil
	}
	s.signal()
}

func (s *Surface) OpenInfoWindow(h display.Handle, info display.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[h]; !ok {
		return
	}
	s.info = &infoView{Handle: h, Info: info}
	s.signal()
}

func (s *Surface) OnMarkerClick(h display.Handle, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[h]; ok {
		s.clicks[h] = fn
	}
}

func (s *Surface) StartBounce(h display.Handle) { s.setBounce(h, true) }
func (s *Surface) StopBounce(h display.Handle)  { s.setBounce(h, false) }

func (s *Surface) setBounce(h display.Handle, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.markers[h]; ok {
		m.Bouncing = on
		s.signal()
	}
}

// Publish records a session snapshot.
func (s *Surface) Publish(st session.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.ready = true
	s.signal()
}

// Fail replaces the map with a notice.
func (s *Surface) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fatal = err.Error()
	s.signal()
}

// click returns the handler bound to h, or nil.
func (s *Surface) click(h display.Handle) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks[h]
}

func (s *Surface) frame() frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := frame{
		Info:      s.info,
		State:     s.state,
		Ready:     s.ready,
		Fatal:     s.fatal,
		Bounds:    s.bounds,
		HasBounds: s.hasBounds,
	}
	for _, h := range slices.Sorted(maps.Keys(s.markers)) {
		f.Markers = append(f.Markers, *s.markers[h])
	}
	return f
}

// signal coalesces: one pending wake-up covers any number of changes.
func (s *Surface) signal() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Close releases a pending wait once the program has exited.
func (s *Surface) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// wait is a tea.Cmd that resolves on the next change.
func (s *Surface) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.changed:
			return changedMsg{}
		case <-s.done:
			return nil
		}
	}
}
