// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"outreach-call-harness/internal/domain"
	"outreach-call-harness/internal/domain/model"
	"outreach-call-harness/internal/domain/ports/adapter"
	"outreach-call-harness/internal/report"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	CreateSession(ctx context.Context) (*model.ChatSession, error)
	SendMessage(ctx context.Context, session *model.ChatSession, text string) (string, error)
}

type chatUC struct {
	api adapter.ChatAPI
	rep *report.Reporter
	log *zerolog.Logger
}

func NewChatUseCase(api adapter.ChatAPI, rep *report.Reporter, logger *zerolog.Logger) *chatUC {
	return &chatUC{api: api, rep: rep, log: logger}
}

func (c *chatUC) CreateSession(ctx context.Context) (*model.ChatSession, error) {
	s, err := c.api.CreateChatSession(ctx)
	if err != nil {
		return nil, err
	}
	c.rep.Successf("Chat session created!")
	c.rep.Infof("User ID: %s", s.UserID)
	c.rep.Infof("Session ID: %s", s.SessionID)
	return s, nil
}

// SendMessage sends one message and returns the agent's reply. An empty
// reply comes back as domain.ErrEmptyReply so the flow controller can
// downgrade it to a warning.
func (c *chatUC) SendMessage(ctx context.Context, session *model.ChatSession, text string) (string, error) {
	reply, err := c.api.SendChatMessage(ctx, session.UserID, session.SessionID, text)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", domain.E(domain.KindValidation, "chat_message", domain.ErrEmptyReply)
	}
	c.rep.Successf("Received AI reply!")
	c.rep.Infof("Agent: %s", reply)
	return reply, nil
}
