package mapview

import (
	"testing"

	"medassist-ai/internal/geo"
	"medassist-ai/internal/places"
)

func TestRender(t *testing.T) {
	user := geo.Location{Lat: 40, Lon: -74}
	facilities := []places.Facility{
		{Name: "City General", Lat: 40.01, Lon: -74.02, Address: "1 Main St"},
		{Name: "Tom & Jerry <Clinic>", Lat: 40.03, Lon: -74.05},
	}

	m := Render(user, facilities)

	if m.Center != user || m.Zoom != DefaultZoom {
		t.Errorf("center/zoom = %+v/%d", m.Center, m.Zoom)
	}
	if len(m.Markers) != 3 {
		t.Fatalf("markers = %d, want 3", len(m.Markers))
	}

	home := m.Markers[0]
	if home.Kind != KindHome || home.Lat != 40 || home.Lon != -74 || home.PopupHTML != "Your Location" || home.Color != "red" {
		t.Errorf("home marker = %+v", home)
	}

	if got := m.Markers[1].PopupHTML; got != "<b>City General</b><br>1 Main St" {
		t.Errorf("popup with address = %q", got)
	}
	if got := m.Markers[2].PopupHTML; got != "<b>Tom &amp; Jerry &lt;Clinic&gt;</b>" {
		t.Errorf("popup without address = %q", got)
	}
	if m.Markers[2].Icon != "hospital-o" || m.Markers[2].IconPrefix != "fa" {
		t.Errorf("facility icon = %+v", m.Markers[2])
	}

	if n := len(m.Facilities()); n != 2 {
		t.Errorf("Facilities() = %d, want 2", n)
	}
}

func TestRenderNoFacilities(t *testing.T) {
	m := Render(geo.Location{Lat: 1, Lon: 2}, nil)
	if len(m.Markers) != 1 || m.Markers[0].Kind != KindHome {
		t.Fatalf("markers = %+v", m.Markers)
	}
}
