package adapter

import (
	"context"
	"encoding/json"

	"outreach-call-harness/internal/domain/model"
)

// AuthAPI is the authentication surface of the target service.
type AuthAPI interface {
	// Health probes GET /health.
	Health(ctx context.Context) error
	// SignInURL fetches the provider consent URL from the target service.
	SignInURL(ctx context.Context) (string, error)
	// ExchangeToken posts an ID token to /auth/google. The HTTP status is
	// returned alongside so probes can assert on rejection codes.
	ExchangeToken(ctx context.Context, idToken string) (*model.AuthResult, int, error)
	// AuthReady polls the readiness endpoint used by the remote-driven flow.
	AuthReady(ctx context.Context) (bool, json.RawMessage, error)
	// Me polls the session-state endpoint used by the remote-driven flow.
	Me(ctx context.Context) (bool, json.RawMessage, error)
}

// CallAPI is the call life-cycle surface of the target service.
type CallAPI interface {
	InitiateCall(ctx context.Context, phoneNumber string) (*model.CallJob, error)
	CallStatus(ctx context.Context, callID string) (*model.CallJob, error)
	Conversations(ctx context.Context) ([]model.ConversationSummary, error)
	Transcript(ctx context.Context, conversationID string) (*model.ConversationTranscript, error)
}

// ChatAPI is the chat surface of the target service.
type ChatAPI interface {
	CreateChatSession(ctx context.Context) (*model.ChatSession, error)
	SendChatMessage(ctx context.Context, userID, sessionID, message string) (string, error)
}

// BackendAPI is the full HTTP surface the harness drives.
type BackendAPI interface {
	AuthAPI
	CallAPI
	ChatAPI
}
