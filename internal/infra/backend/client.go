// Package backend is the HTTP client adapter for the target service. One
// client (and one cookie context) exists per run and is discarded at exit.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"outreach-call-harness/internal/domain"
	"outreach-call-harness/internal/domain/model"
	"outreach-call-harness/internal/domain/ports/adapter"
	"outreach-call-harness/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.BackendAPI = (*Client)(nil)

const (
	healthTimeout  = 5 * time.Second
	defaultTimeout = 10 * time.Second
	chatTimeout    = 30 * time.Second
)

type Client struct {
	base   string
	client *http.Client
	log    *zerolog.Logger
}

func NewClient(baseURL string, logger *zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base url empty")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Jar: jar},
		log:    logger,
	}, nil
}

// do issues one JSON request with a per-call timeout and normalizes the
// outcome: transport failures are TransportErrors, everything else comes
// back as (status, body) for the caller to classify.
func (c *Client) do(ctx context.Context, endpoint, method, path string, timeout time.Duration, body any) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, domain.E(domain.KindProtocol, endpoint, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, nil, domain.E(domain.KindProtocol, endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncHTTPRequest(endpoint, "transport_error")
		c.log.Debug().Str("endpoint", endpoint).Err(err).Msg("request failed")
		return 0, nil, domain.E(domain.KindTransport, endpoint, normalizeTransportError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncHTTPRequest(endpoint, "transport_error")
		return resp.StatusCode, nil, domain.E(domain.KindTransport, endpoint, err)
	}

	metrics.IncHTTPRequest(endpoint, fmt.Sprintf("http_%d", resp.StatusCode))
	c.log.Debug().Str("endpoint", endpoint).Int("status", resp.StatusCode).Msg("response")
	return resp.StatusCode, raw, nil
}

func normalizeTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}

// ---- auth surface ----

func (c *Client) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, "health", http.MethodGet, "/health", healthTimeout, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return domain.Ef(domain.KindProtocol, "health", "unexpected status %d", status)
	}
	return nil
}

func (c *Client) SignInURL(ctx context.Context) (string, error) {
	status, raw, err := c.do(ctx, "auth_url", http.MethodGet, "/auth/google/url", defaultTimeout, nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", domain.Ef(domain.KindProtocol, "auth_url", "unexpected status %d", status)
	}
	var payload struct {
		AuthURL string `json:"authUrl"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", domain.E(domain.KindProtocol, "auth_url", err)
	}
	if payload.AuthURL == "" {
		return "", domain.Ef(domain.KindValidation, "auth_url", "response missing authUrl")
	}
	return payload.AuthURL, nil
}

func (c *Client) ExchangeToken(ctx context.Context, idToken string) (*model.AuthResult, int, error) {
	body := map[string]string{}
	if idToken != "" {
		body["idToken"] = idToken
	}
	status, raw, err := c.do(ctx, "auth_google", http.MethodPost, "/auth/google", defaultTimeout, body)
	if err != nil {
		return nil, 0, err
	}
	if status != http.StatusOK {
		// Rejection bodies carry {error}; surface the message for probes.
		var rejection struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &rejection)
		return &model.AuthResult{Error: rejection.Error}, status, nil
	}
	if err := validateAuthResult(raw); err != nil {
		return nil, status, domain.E(domain.KindValidation, "auth_google", err)
	}
	var result model.AuthResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, status, domain.E(domain.KindProtocol, "auth_google", err)
	}
	return &result, status, nil
}

func (c *Client) AuthReady(ctx context.Context) (bool, json.RawMessage, error) {
	status, raw, err := c.do(ctx, "get_auth", http.MethodGet, "/auth/get-auth", defaultTimeout, nil)
	if err != nil {
		return false, nil, err
	}
	if status != http.StatusOK {
		return false, nil, domain.Ef(domain.KindProtocol, "get_auth", "unexpected status %d", status)
	}
	var payload struct {
		Ready bool            `json:"ready"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false, nil, domain.E(domain.KindProtocol, "get_auth", err)
	}
	return payload.Ready, payload.Data, nil
}

func (c *Client) Me(ctx context.Context) (bool, json.RawMessage, error) {
	status, raw, err := c.do(ctx, "auth_me", http.MethodGet, "/auth/me", defaultTimeout, nil)
	if err != nil {
		return false, nil, err
	}
	if status != http.StatusOK {
		return false, nil, domain.Ef(domain.KindProtocol, "auth_me", "unexpected status %d", status)
	}
	var payload struct {
		Authenticated bool            `json:"authenticated"`
		User          json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false, nil, domain.E(domain.KindProtocol, "auth_me", err)
	}
	return payload.Authenticated, payload.User, nil
}

// ---- call surface ----

func (c *Client) InitiateCall(ctx context.Context, phoneNumber string) (*model.CallJob, error) {
	body := map[string]string{"phoneNumber": phoneNumber}
	status, raw, err := c.do(ctx, "call_initiate", http.MethodPost, "/call", defaultTimeout, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domain.Ef(domain.KindProtocol, "call_initiate", "unexpected status %d", status)
	}
	var payload struct {
		CallID         string `json:"callId"`
		ConversationID string `json:"conversationId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.E(domain.KindProtocol, "call_initiate", err)
	}
	if payload.CallID == "" || payload.ConversationID == "" {
		return nil, domain.Ef(domain.KindValidation, "call_initiate", "response missing callId or conversationId")
	}
	return &model.CallJob{CallID: payload.CallID, ConversationID: payload.ConversationID}, nil
}

func (c *Client) CallStatus(ctx context.Context, callID string) (*model.CallJob, error) {
	status, raw, err := c.do(ctx, "call_status", http.MethodGet, "/call/"+callID+"/status", defaultTimeout, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domain.Ef(domain.KindProtocol, "call_status", "unexpected status %d", status)
	}
	var payload struct {
		Status   string `json:"status"`
		Duration int    `json:"duration"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.E(domain.KindProtocol, "call_status", err)
	}
	return &model.CallJob{
		CallID:   callID,
		Status:   model.CallStatus(payload.Status),
		Duration: payload.Duration,
	}, nil
}

func (c *Client) Conversations(ctx context.Context) ([]model.ConversationSummary, error) {
	status, raw, err := c.do(ctx, "conversations", http.MethodGet, "/conversations", defaultTimeout, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domain.Ef(domain.KindProtocol, "conversations", "unexpected status %d", status)
	}
	var payload struct {
		Conversations []model.ConversationSummary `json:"conversations"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.E(domain.KindProtocol, "conversations", err)
	}
	return payload.Conversations, nil
}

func (c *Client) Transcript(ctx context.Context, conversationID string) (*model.ConversationTranscript, error) {
	status, raw, err := c.do(ctx, "transcript", http.MethodGet, "/conversation/"+conversationID+"/transcript", defaultTimeout, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domain.Ef(domain.KindProtocol, "transcript", "unexpected status %d", status)
	}
	if err := validateTranscript(raw); err != nil {
		return nil, domain.E(domain.KindProtocol, "transcript", err)
	}
	var payload struct {
		Transcript []model.TranscriptMessage `json:"transcript"`
		Metadata   model.TranscriptMetadata  `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.E(domain.KindProtocol, "transcript", err)
	}
	return &model.ConversationTranscript{
		ConversationID: conversationID,
		Messages:       payload.Transcript,
		Metadata:       payload.Metadata,
	}, nil
}

// ---- chat surface ----

func (c *Client) CreateChatSession(ctx context.Context) (*model.ChatSession, error) {
	status, raw, err := c.do(ctx, "chat_session", http.MethodPost, "/chat/session", defaultTimeout, map[string]string{})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domain.Ef(domain.KindProtocol, "chat_session", "unexpected status %d", status)
	}
	var payload struct {
		SessionID string `json:"sessionId"`
		UserID    string `json:"userId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.E(domain.KindProtocol, "chat_session", err)
	}
	// Both fields or nothing: partial presence is never a partial success.
	if payload.SessionID == "" || payload.UserID == "" {
		return nil, domain.Ef(domain.KindValidation, "chat_session", "response missing sessionId or userId")
	}
	return &model.ChatSession{UserID: payload.UserID, SessionID: payload.SessionID}, nil
}

func (c *Client) SendChatMessage(ctx context.Context, userID, sessionID, message string) (string, error) {
	body := map[string]string{"userId": userID, "sessionId": sessionID, "message": message}
	status, raw, err := c.do(ctx, "chat_message", http.MethodPost, "/chat/message", chatTimeout, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", domain.Ef(domain.KindProtocol, "chat_message", "unexpected status %d", status)
	}
	var payload struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", domain.E(domain.KindProtocol, "chat_message", err)
	}
	return payload.Reply, nil
}
