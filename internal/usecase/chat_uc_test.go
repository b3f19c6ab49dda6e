// File: internal/usecase/chat_uc_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"outreach-call-harness/internal/domain"
	"outreach-call-harness/internal/domain/model"
)

func TestCreateSessionReportsIdentifiers(t *testing.T) {
	api := &fakeBackend{
		sessionFn: func(context.Context) (*model.ChatSession, error) {
			return &model.ChatSession{UserID: "U1", SessionID: "S1"}, nil
		},
	}
	rep, out := testReporter()
	uc := NewChatUseCase(api, rep, testLogger(t))

	s, err := uc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if s.UserID != "U1" || s.SessionID != "S1" {
		t.Fatalf("session = %+v", s)
	}
	if !strings.Contains(out.String(), "U1") || !strings.Contains(out.String(), "S1") {
		t.Errorf("identifiers missing from output:\n%s", out.String())
	}
}

func TestCreateSessionPropagatesFailure(t *testing.T) {
	api := &fakeBackend{
		sessionFn: func(context.Context) (*model.ChatSession, error) {
			return nil, domain.Ef(domain.KindValidation, "chat_session", "missing sessionId or userId")
		},
	}
	rep, _ := testReporter()
	uc := NewChatUseCase(api, rep, testLogger(t))

	if _, err := uc.CreateSession(context.Background()); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSendMessageReturnsReply(t *testing.T) {
	api := &fakeBackend{
		messageFn: func(_ context.Context, userID, sessionID, message string) (string, error) {
			if userID != "U1" || sessionID != "S1" {
				t.Errorf("ids = %q/%q", userID, sessionID)
			}
			return "There is a shelter on J Street.", nil
		},
	}
	rep, out := testReporter()
	uc := NewChatUseCase(api, rep, testLogger(t))

	reply, err := uc.SendMessage(context.Background(), &model.ChatSession{UserID: "U1", SessionID: "S1"}, "hello")
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	if reply == "" {
		t.Fatal("empty reply")
	}
	if !strings.Contains(out.String(), "shelter") {
		t.Errorf("reply missing from output:\n%s", out.String())
	}
}

func TestSendMessageEmptyReplyIsValidationError(t *testing.T) {
	for _, reply := range []string{"", "   ", "\n"} {
		api := &fakeBackend{
			messageFn: func(context.Context, string, string, string) (string, error) {
				return reply, nil
			},
		}
		rep, _ := testReporter()
		uc := NewChatUseCase(api, rep, testLogger(t))

		_, err := uc.SendMessage(context.Background(), &model.ChatSession{UserID: "U1", SessionID: "S1"}, "hello")
		if !errors.Is(err, domain.ErrEmptyReply) {
			t.Errorf("reply %q: expected empty-reply error, got %v", reply, err)
		}
		if domain.KindOf(err) != domain.KindValidation {
			t.Errorf("reply %q: kind = %v", reply, domain.KindOf(err))
		}
	}
}
