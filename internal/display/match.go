package display

import (
	"strings"

	"campusmap/internal/models"
)

// Match returns the places whose name contains text, ignoring case, in their
// original order. An empty text matches everything.
func Match(all []models.Place, text string) []models.Place {
	needle := strings.ToLower(text)
	out := make([]models.Place, 0, len(all))
	for _, p := range all {
		key := p.SearchKey
		if key == "" {
			key = strings.ToLower(p.Name)
		}
		if strings.Contains(key, needle) {
			out = append(out, p)
		}
	}
	return out
}
