package assist

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeImageAnalysis Mode = "image_analysis"
	ModeChat          Mode = "chat"
)

func (m Mode) Label() string {
	switch m {
	case ModeImageAnalysis:
		return "Image Analysis"
	case ModeChat:
		return "Chat with MedAssist"
	default:
		return string(m)
	}
}

func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "image", "analysis", string(ModeImageAnalysis):
		return ModeImageAnalysis, nil
	case string(ModeChat):
		return ModeChat, nil
	default:
		return "", fmt.Errorf("unknown mode %q", value)
	}
}
