package terminal

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"campusmap/internal/display"
	"campusmap/internal/models"
	"campusmap/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

type recordingController struct {
	calls []string
}

func (r *recordingController) Dispatch(fn func())    { r.calls = append(r.calls, "dispatch"); fn() }
func (r *recordingController) SetFilter(text string) { r.calls = append(r.calls, "filter:"+text) }
func (r *recordingController) Activate(name string)  { r.calls = append(r.calls, "activate:"+name) }
func (r *recordingController) ToggleMenu()           { r.calls = append(r.calls, "toggle") }

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func campusSurface() *Surface {
	s := NewSurface()
	s.CreateMarker(models.Coordinates{Lat: 33.772, Lon: -84.394}, "Tech Tower")
	s.CreateMarker(models.Coordinates{Lat: 33.774, Lon: -84.396}, "Clough Commons")
	s.Publish(session.State{Visible: []models.Building{{Name: "Tech Tower"}, {Name: "Clough Commons"}}})
	return s
}

func TestModel_TypingSetsFilter(t *testing.T) {
	ctrl := &recordingController{}
	m := NewModel(ctrl, campusSurface())

	m = update(t, m, keys("c"))
	m = update(t, m, keys("l"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	want := []string{"filter:c", "filter:cl", "filter:c", "filter:"}
	if diff := cmp.Diff(want, ctrl.calls); diff != "" {
		t.Errorf("controller calls mismatch (-want +got):\n%s", diff)
	}
	if m.filter.Value() != "" {
		t.Errorf("filter input = %q after esc", m.filter.Value())
	}
}

func TestModel_ToggleMenu(t *testing.T) {
	ctrl := &recordingController{}
	m := NewModel(ctrl, campusSurface())

	update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if diff := cmp.Diff([]string{"toggle"}, ctrl.calls); diff != "" {
		t.Errorf("controller calls mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_ListActivates(t *testing.T) {
	ctrl := &recordingController{}
	surface := campusSurface()
	m := NewModel(ctrl, surface)

	// list is skipped while hidden
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusMap {
		t.Fatalf("focus = %d with list hidden; want map", m.focus)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	st := surface.frame().State
	st.MenuShown = true
	surface.Publish(st)
	m = update(t, m, changedMsg{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusList {
		t.Fatalf("focus = %d; want list", m.focus)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if diff := cmp.Diff([]string{"activate:Clough Commons"}, ctrl.calls); diff != "" {
		t.Errorf("controller calls mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_HidingListMovesFocus(t *testing.T) {
	surface := campusSurface()
	surface.Publish(session.State{MenuShown: true, Visible: []models.Building{{Name: "Tech Tower"}}})
	m := NewModel(&recordingController{}, surface)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusList {
		t.Fatalf("focus = %d; want list", m.focus)
	}

	surface.Publish(session.State{})
	m = update(t, m, changedMsg{})
	if m.focus != focusFilter || m.cursor != 0 {
		t.Fatalf("focus = %d cursor = %d after list hidden", m.focus, m.cursor)
	}
}

func TestModel_MapClickGoesThroughDispatch(t *testing.T) {
	ctrl := &recordingController{}
	surface := campusSurface()
	var clicked []string
	surface.OnMarkerClick(1, func() { clicked = append(clicked, "Tech Tower") })
	surface.OnMarkerClick(2, func() { clicked = append(clicked, "Clough Commons") })
	m := NewModel(ctrl, surface)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.selected != 1 {
		t.Fatalf("selected = %d; want first marker", m.selected)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if diff := cmp.Diff([]string{"Clough Commons", "Tech Tower"}, clicked); diff != "" {
		t.Errorf("clicks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"dispatch", "dispatch"}, ctrl.calls); diff != "" {
		t.Errorf("controller calls mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_View(t *testing.T) {
	cases := []struct {
		name     string
		setup    func(s *Surface)
		contains []string
	}{
		{
			"loading",
			func(*Surface) {},
			[]string{"Loading"},
		},
		{
			"ready",
			func(s *Surface) {
				h := s.CreateMarker(models.Coordinates{Lat: 33.772, Lon: -84.394}, "Tech Tower")
				s.Publish(session.State{Visible: []models.Building{{Name: "Tech Tower"}}})
				s.OpenInfoWindow(h, display.Info{Name: "Tech Tower", Address: "225 North Ave NW", Phone: "404-894-2000"})
			},
			[]string{"Campus Map", "225 North Ave NW", "404-894-2000", "1 buildings"},
		},
		{
			"list shown",
			func(s *Surface) {
				s.Publish(session.State{MenuShown: true, Visible: []models.Building{{Name: "Student Center"}}})
			},
			[]string{"Student Center"},
		},
		{
			"failed",
			func(s *Surface) { s.Fail(errors.New("fetch https://example.test: status 503")) },
			[]string{"unavailable", "status 503"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSurface()
			tc.setup(s)
			m := NewModel(&recordingController{}, s)
			m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
			view := m.View()
			for _, want := range tc.contains {
				if !strings.Contains(view, want) {
					t.Errorf("View() missing %q:\n%s", want, view)
				}
			}
		})
	}
}

func TestModel_IgnoresInputWhileLoading(t *testing.T) {
	ctrl := &recordingController{}
	surface := NewSurface()
	m := NewModel(ctrl, surface)

	for _, k := range []tea.KeyMsg{keys("c"), {Type: tea.KeyCtrlL}, {Type: tea.KeyTab}, {Type: tea.KeyEsc}} {
		m = update(t, m, k)
	}
	if len(ctrl.calls) != 0 || m.filter.Value() != "" || m.focus != focusFilter {
		t.Fatalf("input acted before the map was ready: calls=%v filter=%q focus=%d", ctrl.calls, m.filter.Value(), m.focus)
	}

	surface.Publish(session.State{})
	m = update(t, m, changedMsg{})
	update(t, m, keys("c"))
	if diff := cmp.Diff([]string{"filter:c"}, ctrl.calls); diff != "" {
		t.Errorf("controller calls mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_FatalQuits(t *testing.T) {
	s := NewSurface()
	s.Fail(errors.New("render target missing"))
	m := NewModel(&recordingController{}, s)

	_, cmd := m.Update(keys("q"))
	if cmd == nil {
		t.Fatal("q did not quit on the failure notice")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not return tea.Quit")
	}
}

func TestSurface_Frame(t *testing.T) {
	s := NewSurface()
	a := s.CreateMarker(models.Coordinates{Lat: 1, Lon: 1}, "A")
	b := s.CreateMarker(models.Coordinates{Lat: 3, Lon: 5}, "B")
	s.CreateMarker(models.Coordinates{Lat: math.NaN(), Lon: 9}, "C")
	s.OpenInfoWindow(b, display.Info{Name: "B"})
	s.StartBounce(a)

	f := s.frame()
	if len(f.Markers) != 3 || !f.Markers[0].Bouncing || f.Info == nil {
		t.Fatalf("unexpected frame %+v", f)
	}

	s.RemoveMarker(b)
	f = s.frame()
	if f.Info != nil {
		t.Error("info window survived its marker")
	}
	if f.Bounds.MaxLat != 3 || f.Bounds.MaxLon != 5 {
		t.Errorf("bounds shrank after removal: %+v", f.Bounds)
	}
	if s.click(b) != nil {
		t.Error("click handler survived its marker")
	}
}

func TestSurface_WaitCoalescesAndCloses(t *testing.T) {
	s := NewSurface()
	s.CreateMarker(models.Coordinates{Lat: 1, Lon: 1}, "A")
	s.StartBounce(1)

	if _, ok := s.wait()().(changedMsg); !ok {
		t.Fatal("wait did not report the change")
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- s.wait()() }()
	s.Close()
	select {
	case msg := <-done:
		if msg != nil {
			t.Fatalf("wait after Close = %T; want nil", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("wait blocked after Close")
	}
}
