// File: internal/usecase/harness_test.go
package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"outreach-call-harness/internal/domain/model"
	"outreach-call-harness/internal/domain/ports/adapter"
	"outreach-call-harness/internal/report"
)

// fakeBackend scripts the target service per test. Every method counts its
// invocations so tests can assert that a failed step short-circuits the run.
type fakeBackend struct {
	healthFn    func(ctx context.Context) error
	signInURLFn func(ctx context.Context) (string, error)
	exchangeFn  func(ctx context.Context, idToken string) (*model.AuthResult, int, error)
	authReadyFn func(ctx context.Context) (bool, json.RawMessage, error)
	meFn        func(ctx context.Context) (bool, json.RawMessage, error)
	initiateFn  func(ctx context.Context, phoneNumber string) (*model.CallJob, error)
	statusFn    func(ctx context.Context, callID string) (*model.CallJob, error)
	listFn      func(ctx context.Context) ([]model.ConversationSummary, error)
	scriptFn    func(ctx context.Context, conversationID string) (*model.ConversationTranscript, error)
	sessionFn   func(ctx context.Context) (*model.ChatSession, error)
	messageFn   func(ctx context.Context, userID, sessionID, message string) (string, error)

	requests int // total calls across all endpoints
}

var _ adapter.BackendAPI = (*fakeBackend)(nil)

var errUnscripted = errors.New("endpoint not scripted")

func (f *fakeBackend) Health(ctx context.Context) error {
	f.requests++
	if f.healthFn == nil {
		return nil
	}
	return f.healthFn(ctx)
}

func (f *fakeBackend) SignInURL(ctx context.Context) (string, error) {
	f.requests++
	if f.signInURLFn == nil {
		return "", errUnscripted
	}
	return f.signInURLFn(ctx)
}

func (f *fakeBackend) ExchangeToken(ctx context.Context, idToken string) (*model.AuthResult, int, error) {
	f.requests++
	if f.exchangeFn == nil {
		return nil, 0, errUnscripted
	}
	return f.exchangeFn(ctx, idToken)
}

func (f *fakeBackend) AuthReady(ctx context.Context) (bool, json.RawMessage, error) {
	f.requests++
	if f.authReadyFn == nil {
		return false, nil, errUnscripted
	}
	return f.authReadyFn(ctx)
}

func (f *fakeBackend) Me(ctx context.Context) (bool, json.RawMessage, error) {
	f.requests++
	if f.meFn == nil {
		return false, nil, errUnscripted
	}
	return f.meFn(ctx)
}

func (f *fakeBackend) InitiateCall(ctx context.Context, phoneNumber string) (*model.CallJob, error) {
	f.requests++
	if f.initiateFn == nil {
		return nil, errUnscripted
	}
	return f.initiateFn(ctx, phoneNumber)
}

func (f *fakeBackend) CallStatus(ctx context.Context, callID string) (*model.CallJob, error) {
	f.requests++
	if f.statusFn == nil {
		return nil, errUnscripted
	}
	return f.statusFn(ctx, callID)
}

func (f *fakeBackend) Conversations(ctx context.Context) ([]model.ConversationSummary, error) {
	f.requests++
	if f.listFn == nil {
		return nil, errUnscripted
	}
	return f.listFn(ctx)
}

func (f *fakeBackend) Transcript(ctx context.Context, conversationID string) (*model.ConversationTranscript, error) {
	f.requests++
	if f.scriptFn == nil {
		return nil, errUnscripted
	}
	return f.scriptFn(ctx, conversationID)
}

func (f *fakeBackend) CreateChatSession(ctx context.Context) (*model.ChatSession, error) {
	f.requests++
	if f.sessionFn == nil {
		return nil, errUnscripted
	}
	return f.sessionFn(ctx)
}

func (f *fakeBackend) SendChatMessage(ctx context.Context, userID, sessionID, message string) (string, error) {
	f.requests++
	if f.messageFn == nil {
		return "", errUnscripted
	}
	return f.messageFn(ctx, userID, sessionID, message)
}

// fakePrompter feeds canned interactive answers.
type fakePrompter struct {
	confirm    bool
	confirmErr error
	line       string
	lineErr    error
}

var _ adapter.Prompter = (*fakePrompter)(nil)

func (p *fakePrompter) Confirm(string) (bool, error) { return p.confirm, p.confirmErr }
func (p *fakePrompter) Line(string) (string, error)  { return p.line, p.lineErr }

// fakeBrowser records the URL it was asked to open.
type fakeBrowser struct {
	opened string
}

var _ adapter.BrowserOpener = (*fakeBrowser)(nil)

func (b *fakeBrowser) Open(url string) error {
	b.opened = url
	return nil
}

func testReporter() (*report.Reporter, *bytes.Buffer) {
	var buf bytes.Buffer
	return report.New(&buf), &buf
}

func testLogger(t *testing.T) *zerolog.Logger {
	t.Helper()
	logger := zerolog.Nop()
	return &logger
}
