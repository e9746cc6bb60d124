package handlers

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"medassist-ai/internal/assist"
)

const (
	buttonShareLocation = "📍 Share location"

	msgShareLocation    = "Share your location so I can suggest nearby hospitals with your next analysis."
	msgAnalyzeMode      = "Image Analysis: send a JPG or PNG photo of the affected area."
	msgChatMode         = "Chat with MedAssist: ask me a medical question."
	msgChatDisabled     = "Chat is not available in this deployment. Send a photo to analyze instead."
	msgSendImage        = "Send a JPG or PNG photo to analyze it, or use /chat to ask a question."
	msgUnknownCommand   = "Unknown command. Use /help."
	msgBadLocation      = "That location looks invalid. Please share it again."
	msgUnsupportedImage = "Please upload a JPG, JPEG or PNG image."
	msgDownloadFailed   = "I couldn't download that image. Please try again."
	msgGenerationFailed = "Something went wrong while contacting the model. Please try again."
	msgAlbumFirstOnly   = "You sent several images. I'll analyze the first one."
)

func welcomeText(chatEnabled bool) string {
	var b strings.Builder
	b.WriteString("🩺 MedAssist AI\n\n")
	b.WriteString("Send me a photo of a visible symptom and I'll describe what I see.\n")
	b.WriteString("Share your location first to also get the closest hospitals.\n\n")
	b.WriteString(commandList(chatEnabled))
	return b.String()
}

func helpText(chatEnabled bool) string {
	return "How to use MedAssist AI\n\n" + commandList(chatEnabled) + "\n\n" + assist.Disclaimer
}

func commandList(chatEnabled bool) string {
	lines := []string{
		"/analyze - " + assist.ModeImageAnalysis.Label(),
	}
	if chatEnabled {
		lines = append(lines, "/chat - "+assist.ModeChat.Label())
	}
	lines = append(lines,
		"/location - Share your location",
		"/help - Show this message",
	)
	return strings.Join(lines, "\n")
}

func formatAnalysis(res *assist.AnalysisResult) string {
	return strings.TrimSpace(res.Text) + "\n\n⚠️ " + res.Disclaimer
}

func formatLocationOutcome(res *assist.AnalysisResult) string {
	if res.LocationStatus == assist.LocationUnresolved {
		return res.LocationMessage + " Use /location to share it."
	}

	switch res.HospitalsStatus {
	case assist.HospitalsFound:
		return fmt.Sprintf("%s\nNearby hospitals (%d):", res.LocationMessage, len(res.Panels))
	default:
		return res.LocationMessage + "\n" + res.HospitalsMessage
	}
}

func formatPanels(panels []assist.Panel) string {
	var b strings.Builder
	for i, p := range panels {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "🏥 %s\n", p.Title)
		fmt.Fprintf(&b, "Address: %s\n", p.Address)
		fmt.Fprintf(&b, "Phone: %s\n", p.Phone)
		fmt.Fprintf(&b, "Email: %s\n", p.Email)
		fmt.Fprintf(&b, "Website: %s\n", p.Website)
		fmt.Fprintf(&b, "Google Maps: %s", p.MapsURL)
	}
	return b.String()
}

// isImageDocument accepts documents Telegram labels as images, or whose
// name has an image extension when the label is missing.
func isImageDocument(mimeType, fileName string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType != "" && mimeType != "application/octet-stream" {
		return strings.HasPrefix(mimeType, "image/")
	}
	byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	return strings.HasPrefix(byExt, "image/")
}
