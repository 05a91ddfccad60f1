package display

import (
	"html"
	"strings"

	"campusmap/internal/models"
)

// Handle identifies a marker on a Surface. Surfaces allocate handles; a handle
// is never reused within a session.
type Handle uint64

// Surface is the rendering side of the map. All methods are called from the
// session loop.
type Surface interface {
	CreateMarker(pos models.Coordinates, title string) Handle
	RemoveMarker(h Handle)
	OpenInfoWindow(h Handle, info Info)
	OnMarkerClick(h Handle, fn func())
	StartBounce(h Handle)
	StopBounce(h Handle)
}

// Info is the popup content for a building. Fields are plain text.
type Info struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func InfoFor(b models.Building) Info {
	return Info{Name: b.Name, Address: b.Address, Phone: b.PhoneNum}
}

// HTML renders the popup as three paragraphs with every field escaped.
func (i Info) HTML() string {
	var sb strings.Builder
	for _, s := range []string{i.Name, i.Address, i.Phone} {
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(s))
		sb.WriteString("</p>")
	}
	return sb.String()
}

// Text renders the popup as newline separated lines.
func (i Info) Text() string {
	return strings.Join([]string{i.Name, i.Address, i.Phone}, "\n")
}
