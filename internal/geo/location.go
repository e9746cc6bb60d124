package geo

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Location is a resolved user position. An unresolved position is
// represented by a nil *Location.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (l Location) Validate() error {
	if !finite(l.Lat) || !finite(l.Lon) {
		return fmt.Errorf("%w: coordinates must be finite numbers", ErrInvalidCoordinates)
	}
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinates, l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinates, l.Lon)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (l Location) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(l.Lon, 'f', -1, 64)
}

// Parse builds a Location from form values. Both values blank means the
// browser did not grant a position and yields (nil, nil); one blank value or
// a malformed number is an error.
func Parse(lat, lon string) (*Location, error) {
	lat = strings.TrimSpace(lat)
	lon = strings.TrimSpace(lon)
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, fmt.Errorf("%w: both latitude and longitude are required", ErrInvalidCoordinates)
	}

	latV, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinates, lat)
	}
	lonV, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinates, lon)
	}

	loc := Location{Lat: latV, Lon: lonV}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return &loc, nil
}

// MapsSearchURL links to a Google Maps search for the coordinate.
func MapsSearchURL(lat, lon float64) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))
	return "https://www.google.com/maps/search/?" + q.Encode()
}
