package mapview

import (
	"html"

	"medassist-ai/internal/geo"
	"medassist-ai/internal/places"
)

const DefaultZoom = 13

type MarkerKind string

const (
	KindHome     MarkerKind = "home"
	KindFacility MarkerKind = "facility"
)

// Map is a renderer-neutral description of the nearby-hospitals map. The
// browser draws it with Leaflet; the bot turns facility markers into venues.
type Map struct {
	Center  geo.Location `json:"center"`
	Zoom    int          `json:"zoom"`
	Markers []Marker     `json:"markers"`
}

type Marker struct {
	Kind       MarkerKind `json:"kind"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Title      string     `json:"title"`
	Subtitle   string     `json:"subtitle,omitempty"`
	PopupHTML  string     `json:"popup_html"`
	Color      string     `json:"color"`
	Icon       string     `json:"icon"`
	IconPrefix string     `json:"icon_prefix"`
}

// Render places the user first, then one marker per facility in the given
// order.
func Render(user geo.Location, facilities []places.Facility) Map {
	markers := make([]Marker, 0, len(facilities)+1)
	markers = append(markers, Marker{
		Kind:       KindHome,
		Lat:        user.Lat,
		Lon:        user.Lon,
		Title:      "Your Location",
		PopupHTML:  "Your Location",
		Color:      "red",
		Icon:       "home",
		IconPrefix: "glyphicon",
	})

	for _, f := range facilities {
		markers = append(markers, Marker{
			Kind:       KindFacility,
			Lat:        f.Lat,
			Lon:        f.Lon,
			Title:      f.Name,
			Subtitle:   f.Address,
			PopupHTML:  facilityPopup(f),
			Color:      "blue",
			Icon:       "hospital-o",
			IconPrefix: "fa",
		})
	}

	return Map{
		Center:  user,
		Zoom:    DefaultZoom,
		Markers: markers,
	}
}

func facilityPopup(f places.Facility) string {
	popup := "<b>" + html.EscapeString(f.Name) + "</b>"
	if f.Address != "" {
		popup += "<br>" + html.EscapeString(f.Address)
	}
	return popup
}

func (m Map) Facilities() []Marker {
	var out []Marker
	for _, mk := range m.Markers {
		if mk.Kind == KindFacility {
			out = append(out, mk)
		}
	}
	return out
}
