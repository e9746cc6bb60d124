package assist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"medassist-ai/internal/geo"
	"medassist-ai/internal/llm"
	"medassist-ai/internal/mapview"
	"medassist-ai/internal/places"
)

var ErrModeDisabled = errors.New("mode is disabled")

const Disclaimer = "Remember: Always consult with a healthcare professional for accurate diagnosis and treatment."

const (
	msgLocationUnresolved   = "Unable to retrieve location information for nearby hospital recommendations."
	msgHospitalsNone        = "No nearby hospitals found."
	msgHospitalsUnavailable = "Nearby hospital search is unavailable right now. Please try again later."
)

type PlacesFinder interface {
	FindNearby(ctx context.Context, lat, lon float64) ([]places.Facility, error)
}

type Options struct {
	Generator  llm.Generator
	Places     PlacesFinder
	EnableChat bool
	Logger     *slog.Logger
}

// Service is the single orchestration flow behind every front-end.
type Service struct {
	gen    llm.Generator
	places PlacesFinder
	modes  []Mode
	logger *slog.Logger
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	modes := []Mode{ModeImageAnalysis}
	if opts.EnableChat {
		modes = append(modes, ModeChat)
	}

	return &Service{
		gen:    opts.Generator,
		places: opts.Places,
		modes:  modes,
		logger: logger,
	}
}

func (s *Service) Modes() []Mode {
	out := make([]Mode, len(s.modes))
	copy(out, s.modes)
	return out
}

func (s *Service) Enabled(m Mode) bool {
	for _, mode := range s.modes {
		if mode == m {
			return true
		}
	}
	return false
}

type AnalysisRequest struct {
	Image    []byte
	MimeType string
}

type LocationStatus string

const (
	LocationResolved   LocationStatus = "resolved"
	LocationUnresolved LocationStatus = "unresolved"
)

type HospitalsStatus string

const (
	HospitalsSkipped     HospitalsStatus = "skipped"
	HospitalsFound       HospitalsStatus = "found"
	HospitalsNone        HospitalsStatus = "none"
	HospitalsUnavailable HospitalsStatus = "unavailable"
)

type AnalysisResult struct {
	Text             string
	Disclaimer       string
	Location         *geo.Location
	LocationStatus   LocationStatus
	LocationMessage  string
	HospitalsStatus  HospitalsStatus
	HospitalsMessage string
	Map              *mapview.Map
	Panels           []Panel
}

// Analyze runs the image analysis and, when loc is known, the nearby
// hospital lookup. Only a generation failure fails the call; a places
// failure is reported through HospitalsStatus.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest, loc *geo.Location) (*AnalysisResult, error) {
	image, err := llm.NormalizeImage(req.Image, req.MimeType)
	if err != nil {
		return nil, err
	}

	var (
		text       string
		facilities []places.Facility
		placesErr  error
	)

	start := time.Now()
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var genErr error
		text, genErr = s.gen.AnalyzeImage(egCtx, image)
		return genErr
	})
	if loc != nil {
		eg.Go(func() error {
			facilities, placesErr = s.places.FindNearby(egCtx, loc.Lat, loc.Lon)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("analyze image: %w", err)
	}

	res := &AnalysisResult{
		Text:       text,
		Disclaimer: Disclaimer,
		Location:   loc,
	}

	if loc == nil {
		res.LocationStatus = LocationUnresolved
		res.LocationMessage = msgLocationUnresolved
		res.HospitalsStatus = HospitalsSkipped
		s.logger.Info("image analyzed", "location", false, "dur_ms", time.Since(start).Milliseconds())
		return res, nil
	}

	res.LocationStatus = LocationResolved
	res.LocationMessage = "Location retrieved: " + loc.String()

	switch {
	case placesErr != nil:
		s.logger.Warn("nearby hospital lookup failed", "err", placesErr)
		res.HospitalsStatus = HospitalsUnavailable
		res.HospitalsMessage = msgHospitalsUnavailable
	case len(facilities) == 0:
		res.HospitalsStatus = HospitalsNone
		res.HospitalsMessage = msgHospitalsNone
	default:
		m := mapview.Render(*loc, facilities)
		res.HospitalsStatus = HospitalsFound
		res.Map = &m
		res.Panels = NewPanels(facilities)
	}

	s.logger.Info("image analyzed",
		"location", true,
		"hospitals", string(res.HospitalsStatus),
		"count", len(res.Panels),
		"dur_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
