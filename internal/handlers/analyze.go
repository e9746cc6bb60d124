package handlers

import (
	"context"
	"errors"
	"time"

	"medassist-ai/internal/assist"
	"medassist-ai/internal/llm"
)

func (h *Handler) analyze(ctx context.Context, chatID int64, fileID, mimeType string) error {
	h.tg.SendTyping(chatID)
	start := time.Now()

	data, servedType, err := h.tg.DownloadFile(ctx, fileID)
	if err != nil {
		h.logger.Error("image download failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, msgDownloadFailed)
	}
	if mimeType == "" {
		mimeType = servedType
	}

	res, err := h.assistant.Analyze(ctx, assist.AnalysisRequest{Image: data, MimeType: mimeType}, h.sessions.Location(sessionID(chatID)))
	switch {
	case errors.Is(err, llm.ErrUnsupportedImage):
		return h.tg.SendText(chatID, msgUnsupportedImage)
	case err != nil:
		h.logger.Error("image analysis failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, msgGenerationFailed)
	}

	h.logger.Info("analysis delivered",
		"chat_id", chatID,
		"hospitals", string(res.HospitalsStatus),
		"dur_ms", time.Since(start).Milliseconds(),
	)
	return h.deliver(chatID, res)
}

// deliver sends the analysis, then the location outcome, then the nearby
// facilities as venues followed by their details.
func (h *Handler) deliver(chatID int64, res *assist.AnalysisResult) error {
	if err := h.tg.SendText(chatID, formatAnalysis(res)); err != nil {
		return err
	}
	if err := h.tg.SendText(chatID, formatLocationOutcome(res)); err != nil {
		return err
	}
	if res.Map == nil {
		return nil
	}

	for _, mk := range res.Map.Facilities() {
		address := mk.Subtitle
		if address == "" {
			address = assist.NotAvailable
		}
		if err := h.tg.SendVenue(chatID, mk.Title, address, mk.Lat, mk.Lon); err != nil {
			h.logger.Warn("venue send failed", "chat_id", chatID, "err", err)
			break
		}
	}

	return h.tg.SendText(chatID, formatPanels(res.Panels))
}
