package geo

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		lat     string
		lon     string
		want    *Location
		wantErr bool
	}{
		{"unresolved", "", "", nil, false},
		{"whitespace unresolved", "  ", " ", nil, false},
		{"valid", "40.0", "-74.0", &Location{Lat: 40, Lon: -74}, false},
		{"missing longitude", "40.0", "", nil, true},
		{"malformed", "forty", "-74", nil, true},
		{"latitude out of range", "91", "0", nil, true},
		{"longitude out of range", "0", "181", nil, true},
		{"nan", "NaN", "NaN", nil, true},
		{"nan longitude", "10", "nan", nil, true},
		{"infinite", "+Inf", "0", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.lat, tc.lon)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidCoordinates) {
					t.Fatalf("err = %v, want ErrInvalidCoordinates", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("Parse = %v, want %v", got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Errorf("Parse = %+v, want %+v", *got, *tc.want)
			}
		})
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	cases := []Location{
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.NaN()},
		{Lat: math.Inf(1), Lon: 0},
		{Lat: 0, Lon: math.Inf(-1)},
	}
	for _, loc := range cases {
		if err := loc.Validate(); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("Validate(%v, %v) = %v, want ErrInvalidCoordinates", loc.Lat, loc.Lon, err)
		}
	}
}

func TestMapsSearchURL(t *testing.T) {
	got := MapsSearchURL(40.7128, -74.006)
	want := "https://www.google.com/maps/search/?api=1&query=40.7128%2C-74.006"
	if got != want {
		t.Errorf("MapsSearchURL = %q, want %q", got, want)
	}
}

func TestString(t *testing.T) {
	if got := (Location{Lat: 40, Lon: -74.5}).String(); got != "40, -74.5" {
		t.Errorf("String = %q", got)
	}
}
