// Package web renders the map in a browser. The Hub implements
// display.Surface by mirroring marker state to every connected websocket and
// turns browser input into session calls.
package web

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"campusmap/internal/display"
	"campusmap/internal/models"
	"campusmap/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sendBuffer = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Controller receives browser input. *session.Session implements it.
type Controller interface {
	Dispatch(fn func())
	SetFilter(text string)
	Activate(name string)
	ToggleMenu()
}

type Hub struct {
	ctrl   Controller
	view   View
	logger *zap.Logger

	mu      sync.Mutex
	next    display.Handle
	markers map[display.Handle]*Marker
	clicks  map[display.Handle]func()
	info    *InfoWindow
	state   *StateView
	fatal   *Fatal
	clients map[*client]struct{}
	closed  bool
}

func NewHub(ctrl Controller, view View, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		ctrl:    ctrl,
		view:    view,
		logger:  logger,
		markers: make(map[display.Handle]*Marker),
		clicks:  make(map[display.Handle]func()),
		clients: make(map[*client]struct{}),
	}
}

// Open is a session.OpenSurface that subscribes the hub to state changes.
func (h *Hub) Open(s *session.Session) (display.Surface, error) {
	s.Subscribe(h.Publish)
	return h, nil
}

func (h *Hub) CreateMarker(pos models.Coordinates, title string) display.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	m := &Marker{Handle: h.next, Title: title, Initial: h.state == nil}
	if pos.Valid() {
		lat, lon := pos.Lat, pos.Lon
		m.Lat, m.Lon = &lat, &lon
	}
	h.markers[m.Handle] = m
	h.broadcastLocked(MessageTypeMarkerCreated, *m)
	return m.Handle
}

func (h *Hub) RemoveMarker(handle display.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.markers[handle]; !ok {
		return
	}
	delete(h.markers, handle)
	delete(h.clicks, handle)
	if h.info != nil && h.info.Handle == handle {
		h.info = nil
	}
	h.broadcastLocked(MessageTypeMarkerRemoved, MarkerRef{Handle: handle})
}

func (h *Hub) OpenInfoWindow(handle display.Handle, info display.Info) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.markers[handle]; !ok {
		h.logger.Debug("info window for unknown marker", zap.Uint64("handle", uint64(handle)))
		return
	}
	h.info = &InfoWindow{Handle: handle, Info: info}
	h.broadcastLocked(MessageTypeInfoWindow, *h.info)
}

func (h *Hub) OnMarkerClick(handle display.Handle, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.markers[handle]; ok {
		h.clicks[handle] = fn
	}
}

func (h *Hub) StartBounce(handle display.Handle) { h.setBounce(handle, true) }
func (h *Hub) StopBounce(handle display.Handle)  { h.setBounce(handle, false) }

func (h *Hub) setBounce(handle display.Handle, on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.markers[handle]
	if !ok || m.Bouncing == on {
		return
	}
	m.Bouncing = on
	t := MessageTypeBounceStop
	if on {
		t = MessageTypeBounceStart
	}
	h.broadcastLocked(t, MarkerRef{Handle: handle})
}

// Publish mirrors a session snapshot. Only markers sent before the first
// snapshot are flagged as initial.
func (h *Hub) Publish(st session.State) {
	names := make([]string, len(st.Visible))
	for i, b := range st.Visible {
		names[i] = b.Name
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == nil {
		// browsers that connect from now on see the first draw as settled
		for _, m := range h.markers {
			m.Initial = false
		}
	}
	h.state = &StateView{Filter: st.Filter, MenuShown: st.MenuShown, Buildings: names}
	h.broadcastLocked(MessageTypeState, *h.state)
}

// Fail shows a blocking notice in every browser, current and future.
func (h *Hub) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fatal = &Fatal{Message: err.Error()}
	h.broadcastLocked(MessageTypeFatal, *h.fatal)
}

// Status is "failed", "ready" or "loading".
func (h *Hub) Status() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case h.fatal != nil:
		return "failed"
	case h.state != nil:
		return "ready"
	default:
		return "loading"
	}
}

// Close disconnects every browser and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// ServeWS upgrades the request and sends the current snapshot before any
// later update.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan WSMessage, sendBuffer),
		id:   uuid.NewString(),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	c.send <- WSMessage{Type: MessageTypeSnapshot, Data: h.snapshotLocked(), Timestamp: time.Now()}
	h.mu.Unlock()

	h.logger.Debug("browser connected", zap.String("client", c.id))
	go c.writePump()
	go c.readPump()
}

func (h *Hub) snapshotLocked() Snapshot {
	snap := Snapshot{View: h.view, Info: h.info, State: h.state, Fatal: h.fatal}
	snap.Markers = make([]Marker, 0, len(h.markers))
	for _, handle := range slices.Sorted(maps.Keys(h.markers)) {
		snap.Markers = append(snap.Markers, *h.markers[handle])
	}
	return snap
}

func (h *Hub) handle(msg ClientMessage) error {
	switch msg.Type {
	case MessageTypeSetFilter, MessageTypeListClick, MessageTypeToggleMenu, MessageTypeMarkerClick:
	default:
		return fmt.Errorf("unknown message type: %q", msg.Type)
	}
	// the filter, list and markers do not exist until the first state
	if status := h.Status(); status != "ready" {
		return fmt.Errorf("map is not ready: %s", status)
	}

	switch msg.Type {
	case MessageTypeSetFilter:
		h.ctrl.SetFilter(msg.Filter)
	case MessageTypeListClick:
		h.ctrl.Activate(msg.Name)
	case MessageTypeToggleMenu:
		h.ctrl.ToggleMenu()
	case MessageTypeMarkerClick:
		h.mu.Lock()
		fn := h.clicks[msg.Handle]
		h.mu.Unlock()
		if fn == nil {
			return fmt.Errorf("unknown marker %d", msg.Handle)
		}
		h.ctrl.Dispatch(fn)
	}
	return nil
}

func (h *Hub) reply(c *client, msg WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.sendLocked(c, msg)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) broadcastLocked(t MessageType, data any) {
	msg := WSMessage{Type: t, Data: data, Timestamp: time.Now()}
	for c := range h.clients {
		h.sendLocked(c, msg)
	}
}

// sendLocked never blocks the session goroutine; a browser that cannot keep
// up is disconnected.
func (h *Hub) sendLocked(c *client, msg WSMessage) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("dropping slow browser", zap.String("client", c.id))
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
