package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyMessage = errors.New("message is empty")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation. Turns are never modified once
// appended to a history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chat answers text and returns a new history with the user turn and the
// assistant turn appended. The given history is only read: it is not sent
// to the model and its backing array is never written. On error the
// original history is returned as is.
func (s *Service) Chat(ctx context.Context, history []Turn, text string) ([]Turn, string, error) {
	if !s.Enabled(ModeChat) {
		return history, "", ErrModeDisabled
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return history, "", ErrEmptyMessage
	}

	reply, err := s.gen.Answer(ctx, text)
	if err != nil {
		return history, "", fmt.Errorf("answer: %w", err)
	}

	next := make([]Turn, 0, len(history)+2)
	next = append(next, history...)
	next = append(next,
		Turn{Role: RoleUser, Content: text},
		Turn{Role: RoleAssistant, Content: reply},
	)

	s.logger.Debug("chat answered", "turns", len(next))
	return next, reply, nil
}
