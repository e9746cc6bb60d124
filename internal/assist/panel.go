package assist

import (
	"medassist-ai/internal/geo"
	"medassist-ai/internal/places"
)

const NotAvailable = "Not available"

// Panel is the expandable per-facility detail view.
type Panel struct {
	Title   string `json:"title"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	MapsURL string `json:"maps_url"`
}

func NewPanel(f places.Facility) Panel {
	p := Panel{
		Title:   f.Name,
		Address: orNotAvailable(f.Address),
		Phone:   NotAvailable,
		Email:   NotAvailable,
		Website: orNotAvailable(f.Website),
		MapsURL: geo.MapsSearchURL(f.Lat, f.Lon),
	}
	if f.HasContact {
		p.Phone = orNotAvailable(f.Phone)
		p.Email = orNotAvailable(f.Email)
	}
	return p
}

func NewPanels(facilities []places.Facility) []Panel {
	out := make([]Panel, 0, len(facilities))
	for _, f := range facilities {
		out = append(out, NewPanel(f))
	}
	return out
}

func orNotAvailable(v string) string {
	if v == "" {
		return NotAvailable
	}
	return v
}
