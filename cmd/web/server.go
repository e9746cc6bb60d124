package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"medassist-ai/internal/assist"
	"medassist-ai/internal/geo"
	"medassist-ai/internal/llm"
	"medassist-ai/internal/logger"
	"medassist-ai/internal/mapview"
	"medassist-ai/internal/markdown"
	"medassist-ai/internal/session"
)

//go:embed static/*
var staticFS embed.FS

const (
	sessionCookie   = "medassist_session"
	maxChatBodySize = 64 << 10
)

type assistant interface {
	Analyze(ctx context.Context, req assist.AnalysisRequest, loc *geo.Location) (*assist.AnalysisResult, error)
	Chat(ctx context.Context, history []assist.Turn, text string) ([]assist.Turn, string, error)
	Modes() []assist.Mode
	Enabled(m assist.Mode) bool
}

type serverOptions struct {
	Assistant      assistant
	Sessions       *session.Store
	Title          string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

type server struct {
	assistant      assistant
	sessions       *session.Store
	title          string
	maxUploadBytes int64
	requestTimeout time.Duration
	logger         *slog.Logger
}

func newServer(opts serverOptions) *server {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &server{
		assistant:      opts.Assistant,
		sessions:       opts.Sessions,
		title:          opts.Title,
		maxUploadBytes: maxUpload,
		requestTimeout: timeout,
		logger:         log,
	}
}

func (s *server) routes() (http.Handler, error) {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.Handle("/", http.FileServer(http.FS(staticSub)))

	return withLogging(mux, s.logger), nil
}

type apiError struct {
	Error string `json:"error"`
}

type modeInfo struct {
	ID    assist.Mode `json:"id"`
	Label string      `json:"label"`
}

type configResponse struct {
	Title string      `json:"title"`
	Modes []modeInfo  `json:"modes"`
	Mode  assist.Mode `json:"mode"`
}

func (s *server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	id := s.sessionID(w, r)
	resp := configResponse{Title: s.title, Mode: s.currentMode(id)}
	for _, m := range s.assistant.Modes() {
		resp.Modes = append(resp.Modes, modeInfo{ID: m, Label: m.Label()})
	}
	writeJSON(w, http.StatusOK, resp)
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	var req modeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}
	mode, err := assist.ParseMode(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if !s.assistant.Enabled(mode) {
		writeJSON(w, http.StatusForbidden, apiError{Error: mode.Label() + " is disabled"})
		return
	}

	s.sessions.SetMode(s.sessionID(w, r), mode)
	writeJSON(w, http.StatusOK, map[string]assist.Mode{"mode": mode})
}

type analyzeResponse struct {
	Analysis         string         `json:"analysis"`
	AnalysisHTML     string         `json:"analysis_html"`
	Disclaimer       string         `json:"disclaimer"`
	Location         *geo.Location  `json:"location,omitempty"`
	LocationStatus   string         `json:"location_status"`
	LocationMessage  string         `json:"location_message"`
	HospitalsStatus  string         `json:"hospitals_status"`
	HospitalsMessage string         `json:"hospitals_message,omitempty"`
	Map              *mapview.Map   `json:"map,omitempty"`
	Panels           []assist.Panel `json:"panels"`
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "image is too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read image"})
		return
	}

	id := s.sessionID(w, r)
	loc, err := geo.Parse(r.FormValue("lat"), r.FormValue("lon"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	// A request without coordinates means the browser withheld them, so the
	// session forgets any earlier position.
	s.sessions.SetLocation(id, loc)

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	res, err := s.assistant.Analyze(ctx, assist.AnalysisRequest{
		Image:    data,
		MimeType: header.Header.Get("Content-Type"),
	}, loc)
	if err != nil {
		s.writeUpstreamError(w, "image analysis failed", err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis:         res.Text,
		AnalysisHTML:     markdown.ToHTML(res.Text),
		Disclaimer:       res.Disclaimer,
		Location:         res.Location,
		LocationStatus:   string(res.LocationStatus),
		LocationMessage:  res.LocationMessage,
		HospitalsStatus:  string(res.HospitalsStatus),
		HospitalsMessage: res.HospitalsMessage,
		Map:              res.Map,
		Panels:           res.Panels,
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatTurn struct {
	Role        assist.Role `json:"role"`
	Content     string      `json:"content"`
	ContentHTML string      `json:"content_html"`
}

type chatResponse struct {
	Reply   string     `json:"reply,omitempty"`
	History []chatTurn `json:"history"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	if !s.assistant.Enabled(assist.ModeChat) {
		writeJSON(w, http.StatusForbidden, apiError{Error: "chat is disabled"})
		return
	}

	id := s.sessionID(w, r)
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, chatResponse{History: renderHistory(s.sessions.History(id))})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	var history []assist.Turn
	var reply string
	err := s.sessions.UpdateHistory(id, func(prev []assist.Turn) ([]assist.Turn, error) {
		var err error
		history, reply, err = s.assistant.Chat(ctx, prev, req.Message)
		return history, err
	})
	switch {
	case errors.Is(err, assist.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, apiError{Error: "message is empty"})
		return
	case err != nil:
		s.writeUpstreamError(w, "chat failed", err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, History: renderHistory(history)})
}

func renderHistory(history []assist.Turn) []chatTurn {
	out := make([]chatTurn, 0, len(history))
	for _, t := range history {
		out = append(out, chatTurn{Role: t.Role, Content: t.Content, ContentHTML: markdown.ToHTML(t.Content)})
	}
	return out
}

func (s *server) writeUpstreamError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, llm.ErrUnsupportedImage):
		writeJSON(w, http.StatusUnsupportedMediaType, apiError{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn(msg, logger.Err(err))
		writeJSON(w, http.StatusGatewayTimeout, apiError{Error: "the model took too long to respond, please try again"})
	default:
		s.logger.Error(msg, logger.Err(err))
		writeJSON(w, http.StatusBadGateway, apiError{Error: "the model could not process the request, please try again"})
	}
}

func (s *server) currentMode(id string) assist.Mode {
	mode := s.sessions.Mode(id)
	if !s.assistant.Enabled(mode) {
		return assist.ModeImageAnalysis
	}
	return mode
}

// sessionID returns the caller's session, issuing a new cookie when the
// request carries none or a malformed one.
func (s *server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// Later lookups within the same request must see the issued id.
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: id})
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", logger.Err(err))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"dur_ms", time.Since(start).Milliseconds(),
		)
	})
}
