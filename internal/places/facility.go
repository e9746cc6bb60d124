package places

import (
	"net/url"
	"strings"
)

const unnamedFacility = "Unnamed facility"

// Facility is one healthcare location returned by a lookup. Empty strings
// mean the service did not provide the field.
type Facility struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`

	// HasContact reports whether the service sent a contact block at all.
	HasContact bool   `json:"has_contact"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Website    string `json:"website,omitempty"`
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
}

type properties struct {
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	AddressLine1   string   `json:"address_line1"`
	AddressLine2   string   `json:"address_line2"`
	Contact        *contact `json:"contact"`
	ContactWebsite string   `json:"contact:website"`
	Website        string   `json:"website"`
}

type contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (p properties) toFacility() (Facility, bool) {
	if p.Lat == nil || p.Lon == nil {
		return Facility{}, false
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = strings.TrimSpace(p.AddressLine1)
	}
	if name == "" {
		name = unnamedFacility
	}

	f := Facility{
		Name:    name,
		Lat:     *p.Lat,
		Lon:     *p.Lon,
		Address: strings.TrimSpace(p.AddressLine2),
		Website: resolveWebsite(p),
	}
	if p.Contact != nil {
		f.HasContact = true
		f.Phone = strings.TrimSpace(p.Contact.Phone)
		f.Email = strings.TrimSpace(p.Contact.Email)
	}
	return f, true
}

// resolveWebsite prefers the contact:website tag over the plain website tag.
// Values that are not usable web links are skipped.
func resolveWebsite(p properties) string {
	for _, raw := range []string{p.ContactWebsite, p.Website} {
		if w := webURL(raw); w != "" {
			return w
		}
	}
	return ""
}

// webURL returns raw as an absolute http or https URL, or "" when it is
// anything else. A bare host gets an https scheme.
func webURL(raw string) string {
	w := strings.TrimSpace(raw)
	if w == "" {
		return ""
	}
	if !strings.Contains(w, "://") {
		// javascript:, mailto: and the like.
		if i := strings.IndexByte(w, ':'); i >= 0 && !strings.Contains(w[:i], ".") {
			return ""
		}
		w = "https://" + w
	}

	u, err := url.Parse(w)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
