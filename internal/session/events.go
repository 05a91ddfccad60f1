package session

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

type EventType string

const (
	EventFilterApplied   EventType = "filter_applied"
	EventMarkerActivated EventType = "marker_activated"
)

// Event is the JSON record published for each user action.
type Event struct {
	Session     string    `json:"session"`
	Type        EventType `json:"type"`
	At          time.Time `json:"at"`
	Filter      string    `json:"filter,omitempty"`
	Visible     int       `json:"visible,omitempty"`
	Building    string    `json:"building,omitempty"`
	Found       bool      `json:"found,omitempty"`
	Highlighted bool      `json:"highlighted,omitempty"`
}

func (s *Session) emit(e Event) {
	if s.publisher == nil {
		return
	}
	e.Session = s.id
	e.At = time.Now().UTC()
	data, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn("encode event", zap.Error(err))
		return
	}
	s.publisher.Publish([]byte(s.id), data)
}
