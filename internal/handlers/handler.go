package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"medassist-ai/internal/assist"
	"medassist-ai/internal/geo"
	"medassist-ai/internal/mediagroup"
	"medassist-ai/internal/session"
	"medassist-ai/internal/telegram"
)

// Messenger is the subset of the Telegram client the handlers talk to.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendTyping(chatID int64)
	RequestLocation(chatID int64, text, button string) error
	RemoveKeyboard(chatID int64, text string) error
	SendVenue(chatID int64, title, address string, lat, lon float64) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, string, error)
}

type Assistant interface {
	Analyze(ctx context.Context, req assist.AnalysisRequest, loc *geo.Location) (*assist.AnalysisResult, error)
	Chat(ctx context.Context, history []assist.Turn, text string) ([]assist.Turn, string, error)
	Enabled(m assist.Mode) bool
}

type Options struct {
	Telegram  Messenger
	Assistant Assistant
	Sessions  *session.Store
	Logger    *slog.Logger
}

type Handler struct {
	tg         Messenger
	assistant  Assistant
	sessions   *session.Store
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Handler{
		tg:        opts.Telegram,
		assistant: opts.Assistant,
		sessions:  opts.Sessions,
		logger:    logger,
	}
}

// SetMediaGroupAggregator routes album photos through ag so an album is
// analyzed once.
func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID

	switch {
	case msg.IsCommand():
		return h.handleCommand(chatID, msg.Command())
	case msg.Location != nil:
		return h.handleLocation(chatID, msg.Location.Latitude, msg.Location.Longitude)
	case len(msg.Photo) > 0:
		photo := msg.Photo[len(msg.Photo)-1]
		return h.handleImage(ctx, chatID, msg.MediaGroupID, photo.FileID, "")
	case msg.Document != nil:
		if !isImageDocument(msg.Document.MimeType, msg.Document.FileName) {
			return h.tg.SendText(chatID, msgUnsupportedImage)
		}
		return h.handleImage(ctx, chatID, msg.MediaGroupID, msg.Document.FileID, msg.Document.MimeType)
	case strings.TrimSpace(msg.Text) != "":
		return h.handleText(ctx, chatID, msg.Text)
	}
	return nil
}

// HandleMediaGroup analyzes the first image of an album.
func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	first := group.First()
	if len(group.Items) > 1 {
		if err := h.tg.SendText(group.ChatID, msgAlbumFirstOnly); err != nil {
			h.logger.Warn("album notice send failed", "chat_id", group.ChatID, "err", err)
		}
	}
	if err := h.analyze(ctx, group.ChatID, first.FileID, first.MimeType); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Error("album analysis failed", "chat_id", group.ChatID, "err", err)
	}
}

func (h *Handler) handleCommand(chatID int64, command string) error {
	id := sessionID(chatID)

	switch command {
	case "start":
		h.sessions.SetMode(id, assist.ModeImageAnalysis)
		return h.tg.RequestLocation(chatID, welcomeText(h.assistant.Enabled(assist.ModeChat)), buttonShareLocation)
	case "help":
		return h.tg.SendText(chatID, helpText(h.assistant.Enabled(assist.ModeChat)))
	case "analyze":
		h.sessions.SetMode(id, assist.ModeImageAnalysis)
		return h.tg.SendText(chatID, msgAnalyzeMode)
	case "chat":
		if !h.assistant.Enabled(assist.ModeChat) {
			return h.tg.SendText(chatID, msgChatDisabled)
		}
		h.sessions.SetMode(id, assist.ModeChat)
		return h.tg.SendText(chatID, msgChatMode)
	case "location":
		return h.tg.RequestLocation(chatID, msgShareLocation, buttonShareLocation)
	default:
		return h.tg.SendText(chatID, msgUnknownCommand)
	}
}

func (h *Handler) handleLocation(chatID int64, lat, lon float64) error {
	loc := geo.Location{Lat: lat, Lon: lon}
	if err := loc.Validate(); err != nil {
		return h.tg.SendText(chatID, msgBadLocation)
	}
	h.sessions.SetLocation(sessionID(chatID), &loc)
	return h.tg.RemoveKeyboard(chatID, "Location retrieved: "+loc.String())
}

func (h *Handler) handleImage(ctx context.Context, chatID int64, mediaGroupID, fileID, mimeType string) error {
	if mediaGroupID != "" && h.aggregator != nil {
		added := h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			MediaGroupID: mediaGroupID,
			FileID:       fileID,
			MimeType:     mimeType,
		})
		if added {
			return nil
		}
	}
	return h.analyze(ctx, chatID, fileID, mimeType)
}

func (h *Handler) handleText(ctx context.Context, chatID int64, text string) error {
	id := sessionID(chatID)
	if h.sessions.Mode(id) != assist.ModeChat {
		return h.tg.SendText(chatID, msgSendImage)
	}

	h.tg.SendTyping(chatID)

	var reply string
	err := h.sessions.UpdateHistory(id, func(prev []assist.Turn) ([]assist.Turn, error) {
		history, r, err := h.assistant.Chat(ctx, prev, text)
		reply = r
		return history, err
	})
	switch {
	case errors.Is(err, assist.ErrModeDisabled):
		return h.tg.SendText(chatID, msgChatDisabled)
	case errors.Is(err, assist.ErrEmptyMessage):
		return nil
	case err != nil:
		h.logger.Error("chat failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, msgGenerationFailed)
	}

	return h.tg.SendText(chatID, reply)
}

func sessionID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}
