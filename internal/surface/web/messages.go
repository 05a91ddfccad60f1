package web

import (
	"time"

	"campusmap/internal/display"
	"campusmap/internal/models"
)

type MessageType string

// Server to browser.
const (
	MessageTypeSnapshot      MessageType = "snapshot"
	MessageTypeMarkerCreated MessageType = "marker_created"
	MessageTypeMarkerRemoved MessageType = "marker_removed"
	MessageTypeBounceStart   MessageType = "bounce_start"
	MessageTypeBounceStop    MessageType = "bounce_stop"
	MessageTypeInfoWindow    MessageType = "info_window"
	MessageTypeState         MessageType = "state"
	MessageTypeFatal         MessageType = "fatal"
	MessageTypeError         MessageType = "error"
)

// Browser to server.
const (
	MessageTypeSetFilter   MessageType = "set_filter"
	MessageTypeMarkerClick MessageType = "marker_click"
	MessageTypeListClick   MessageType = "list_click"
	MessageTypeToggleMenu  MessageType = "toggle_menu"
)

type WSMessage struct {
	Type      MessageType `json:"type"`
	Data      any         `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is everything the browser can send; fields unused by a
// message type are left empty.
type ClientMessage struct {
	Type   MessageType    `json:"type"`
	Filter string         `json:"filter,omitempty"`
	Handle display.Handle `json:"handle,omitempty"`
	Name   string         `json:"name,omitempty"`
}

// View is the initial map viewport.
type View struct {
	Center models.Coordinates `json:"center"`
	Zoom   int                `json:"zoom"`
}

// Marker is the browser's copy of one marker. Lat and Lon are null for a
// building whose coordinates did not parse; the browser skips it.
type Marker struct {
	Handle   display.Handle `json:"handle"`
	Title    string         `json:"title"`
	Lat      *float64       `json:"lat"`
	Lon      *float64       `json:"lon"`
	Initial  bool           `json:"initial,omitempty"`
	Bouncing bool           `json:"bouncing,omitempty"`
}

type MarkerRef struct {
	Handle display.Handle `json:"handle"`
}

type InfoWindow struct {
	Handle display.Handle `json:"handle"`
	display.Info
}

type StateView struct {
	Filter    string   `json:"filter"`
	MenuShown bool     `json:"menuShown"`
	Buildings []string `json:"buildings"`
}

type Fatal struct {
	Message string `json:"message"`
}

type Snapshot struct {
	View    View        `json:"view"`
	Markers []Marker    `json:"markers"`
	Info    *InfoWindow `json:"info,omitempty"`
	State   *StateView  `json:"state,omitempty"`
	Fatal   *Fatal      `json:"fatal,omitempty"`
}
