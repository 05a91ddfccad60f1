package terminal

import (
	"fmt"
	"strings"

	"campusmap/internal/display"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller receives keyboard input. *session.Session implements it.
type Controller interface {
	Dispatch(fn func())
	SetFilter(text string)
	Activate(name string)
	ToggleMenu()
}

type focusArea int

const (
	focusFilter focusArea = iota
	focusList
	focusMap
)

const listWidth = 32

type Styles struct {
	Title    lipgloss.Style
	Border   lipgloss.Style
	Marker   lipgloss.Style
	Bouncing lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Muted    lipgloss.Style
	Fatal    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B3A369")),
		Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#003057")),
		Marker:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1F77B4")),
		Bouncing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4F00")),
		Selected: lipgloss.NewStyle().Reverse(true),
		Cursor:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B3A369")),
		Muted:    lipgloss.NewStyle().Faint(true),
		Fatal:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")).Padding(1, 2),
	}
}

// Model is the bubbletea model for the terminal map.
type Model struct {
	ctrl    Controller
	surface *Surface
	styles  Styles

	filter   textinput.Model
	focus    focusArea
	cursor   int
	selected display.Handle

	width  int
	height int
	frame  frame
}

func NewModel(ctrl Controller, surface *Surface) Model {
	fi := textinput.New()
	fi.Placeholder = "Filter buildings..."
	fi.Prompt = "/ "
	fi.CharLimit = 64
	fi.Width = 40
	fi.Focus()

	return Model{
		ctrl:    ctrl,
		surface: surface,
		styles:  DefaultStyles(),
		filter:  fi,
		width:   80,
		height:  24,
		frame:   surface.frame(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.surface.wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case changedMsg:
		m.frame = m.surface.frame()
		m.clamp()
		return m, m.surface.wait()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.frame.Fatal != "" {
			if msg.String() == "q" || msg.String() == "esc" {
				return m, tea.Quit
			}
			return m, nil
		}
		// nothing to filter or select until the buildings are drawn
		if !m.frame.Ready {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+l":
			m.ctrl.ToggleMenu()
			return m, nil
		case "tab":
			m.cycleFocus()
			return m, nil
		}
		switch m.focus {
		case focusFilter:
			return m.updateFilter(msg)
		case focusList:
			m.updateList(msg)
		case focusMap:
			m.updateMap(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.focus == focusFilter && m.frame.Ready {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.filter.SetValue("")
	}
	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if msg.String() == "esc" || m.filter.Value() != before {
		m.ctrl.SetFilter(m.filter.Value())
	}
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) {
	visible := m.frame.State.Visible
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(visible) {
			m.ctrl.Activate(visible[m.cursor].Name)
		}
	}
}

func (m *Model) updateMap(msg tea.KeyMsg) {
	markers := m.frame.Markers
	if len(markers) == 0 {
		return
	}
	i := m.selectedIndex()
	switch msg.String() {
	case "left", "h", "up", "k":
		i = (i - 1 + len(markers)) % len(markers)
		m.selected = markers[i].Handle
	case "right", "l", "down", "j":
		i = (i + 1) % len(markers)
		m.selected = markers[i].Handle
	case "enter", " ":
		if i < 0 {
			return
		}
		if fn := m.surface.click(markers[i].Handle); fn != nil {
			m.ctrl.Dispatch(fn)
		}
	}
}

// selectedIndex returns the position of the selected marker, or -1.
func (m Model) selectedIndex() int {
	for i, mk := range m.frame.Markers {
		if mk.Handle == m.selected {
			return i
		}
	}
	return -1
}

func (m *Model) cycleFocus() {
	next := m.focus
	for {
		next = (next + 1) % 3
		if next != focusList || m.frame.State.MenuShown {
			break
		}
	}
	m.focus = next
	if m.focus == focusFilter {
		m.filter.Focus()
	} else {
		m.filter.Blur()
	}
	if m.focus == focusMap && m.selectedIndex() < 0 && len(m.frame.Markers) > 0 {
		m.selected = m.frame.Markers[0].Handle
	}
}

// clamp keeps the cursor and focus valid after the frame changed.
func (m *Model) clamp() {
	if n := len(m.frame.State.Visible); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.focus == focusList && !m.frame.State.MenuShown {
		m.focus = focusFilter
		m.filter.Focus()
	}
}

func (m Model) View() string {
	if m.frame.Fatal != "" {
		return m.styles.Fatal.Render("Campus map unavailable\n\n"+m.frame.Fatal) + "\n" +
			m.styles.Muted.Render("press q to quit")
	}
	if !m.frame.Ready {
		return m.styles.Muted.Render("Loading buildings...")
	}

	header := m.styles.Title.Render("Campus Map") + "  " + m.filter.View()

	mapWidth := m.width - 2
	if m.frame.State.MenuShown {
		mapWidth -= listWidth + 2
	}
	mapHeight := m.height - 10
	grid := m.styles.Border.Render(m.renderGrid(max(mapWidth, 10), max(mapHeight, 4)))
	body := grid
	if m.frame.State.MenuShown {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Border.Render(m.renderList(max(mapHeight, 4))), grid)
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.renderInfo())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf(
		"%d buildings  tab: focus  ctrl+l: list  arrows: move  enter: select  ctrl+c: quit",
		len(m.frame.State.Visible))))
	return sb.String()
}

func (m Model) renderGrid(width, height int) string {
	cells := make([][]string, height)
	for y := range cells {
		cells[y] = make([]string, width)
		for x := range cells[y] {
			cells[y][x] = " "
		}
	}
	if m.frame.HasBounds {
		for _, mk := range m.frame.Markers {
			x, y, ok := m.frame.Bounds.Project(mk.Pos, width, height)
			if !ok {
				continue
			}
			glyph := m.styles.Marker.Render("o")
			if mk.Bouncing {
				glyph = m.styles.Bouncing.Render("O")
			}
			if mk.Handle == m.selected && m.focus == focusMap {
				glyph = m.styles.Selected.Render(glyph)
			}
			cells[y][x] = glyph
		}
	}
	rows := make([]string, height)
	for y, row := range cells {
		rows[y] = strings.Join(row, "")
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderList(height int) string {
	visible := m.frame.State.Visible
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	var rows []string
	for i := start; i < len(visible) && len(rows) < height; i++ {
		name := truncate(visible[i].Name, listWidth-2)
		if i == m.cursor && m.focus == focusList {
			rows = append(rows, m.styles.Cursor.Render("> "+name))
		} else {
			rows = append(rows, "  "+name)
		}
	}
	return lipgloss.NewStyle().Width(listWidth).Height(height).Render(strings.Join(rows, "\n"))
}

func (m Model) renderInfo() string {
	if m.frame.Info != nil {
		return m.frame.Info.Info.Text()
	}
	if i := m.selectedIndex(); i >= 0 && m.focus == focusMap {
		return m.styles.Muted.Render(m.frame.Markers[i].Title)
	}
	return m.styles.Muted.Render("select a building to see its details")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
