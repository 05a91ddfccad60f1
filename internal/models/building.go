package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Building is a single record from the campus buildings feed. Records are
// read-only once loaded; Name is unique within a load and is the key used to
// correlate a building with its marker.
type Building struct {
	Name      string `json:"name"`
	Latitude  Degree `json:"latitude"`
	Longitude Degree `json:"longitude"`
	Address   string `json:"address"`
	PhoneNum  string `json:"phone_num"`
}

// Position parses the building's coordinates. Unparseable values come back as
// NaN rather than an error.
func (b Building) Position() Coordinates {
	return Coordinates{Lat: b.Latitude.Float(), Lon: b.Longitude.Float()}
}

// Degree is a decimal-degree value as delivered by the feed. The feed sends
// strings, some mirrors send numbers; both are kept verbatim.
type Degree string

// UnmarshalJSON keeps strings and numbers verbatim. Any other JSON value
// (null, bool, array, object) decodes to an empty Degree so the record still
// loads and its marker is simply not placed.
func (d *Degree) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*d = ""
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("degree: %w", err)
		}
		*d = Degree(s)
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("degree: %w", err)
		}
		*d = Degree(n.String())
	default:
		*d = ""
	}
	return nil
}

// Float returns the parsed value or NaN.
func (d Degree) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(d)), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
