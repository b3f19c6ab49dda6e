// Package oauth implements the delegated local-callback Google sign-in flow:
// an ephemeral listener receives the provider redirect, and the authorization
// code is exchanged for an ID token. The token is passed through to the
// target service; its claims are never interpreted here.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"outreach-call-harness/internal/domain"
	"outreach-call-harness/internal/domain/ports/adapter"
)

const (
	defaultAuthEndpoint  = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenEndpoint = "https://oauth2.googleapis.com/token"
)

var scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

type Config struct {
	ClientID     string
	ClientSecret string
	ListenAddr   string // e.g. 127.0.0.1:8181

	// Endpoint overrides for tests; empty means Google's endpoints.
	AuthEndpoint  string
	TokenEndpoint string
}

// Flow runs one interactive sign-in. It owns the local listener for the
// duration of the flow and releases it on every exit path.
type Flow struct {
	cfg     Config
	browser adapter.BrowserOpener
	client  *http.Client
	log     *zerolog.Logger
}

func NewFlow(cfg Config, browser adapter.BrowserOpener, logger *zerolog.Logger) (*Flow, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, domain.E(domain.KindConfiguration, "oauth", domain.ErrMissingCredentials)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8181"
	}
	if cfg.AuthEndpoint == "" {
		cfg.AuthEndpoint = defaultAuthEndpoint
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = defaultTokenEndpoint
	}
	return &Flow{
		cfg:     cfg,
		browser: browser,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}, nil
}

type callbackPayload struct {
	code  string
	state string
	err   string
}

// SignIn blocks until the provider redirects back or ctx is canceled, then
// exchanges the authorization code for an ID token.
func (f *Flow) SignIn(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", f.cfg.ListenAddr)
	if err != nil {
		return "", domain.E(domain.KindConfiguration, "oauth", fmt.Errorf("listen %s: %w", f.cfg.ListenAddr, err))
	}

	redirectURI := fmt.Sprintf("http://%s/", ln.Addr().String())
	state := uuid.NewString()
	results := make(chan callbackPayload, 1)

	r := chi.NewRouter()
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		p := callbackPayload{code: q.Get("code"), state: q.Get("state"), err: q.Get("error")}
		renderResult(w, p.err == "" && p.code != "")
		select {
		case results <- p:
		default:
		}
	})

	srv := &http.Server{Handler: r}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	consentURL := f.consentURL(redirectURI, state)
	f.log.Info().Str("url", consentURL).Msg("opening browser for Google sign-in")
	if err := f.browser.Open(consentURL); err != nil {
		f.log.Warn().Err(err).Msg("could not open browser; visit the URL manually")
	}

	var payload callbackPayload
	select {
	case <-ctx.Done():
		return "", domain.E(domain.KindCanceled, "oauth", domain.ErrCanceled)
	case payload = <-results:
	}

	switch {
	case payload.err == "access_denied":
		return "", domain.E(domain.KindCanceled, "oauth", domain.ErrCanceled)
	case payload.err != "":
		return "", domain.Ef(domain.KindProtocol, "oauth", "provider returned error %q", payload.err)
	case payload.state != state:
		return "", domain.Ef(domain.KindProtocol, "oauth", "state mismatch in callback")
	case payload.code == "":
		return "", domain.Ef(domain.KindProtocol, "oauth", "callback carried no authorization code")
	}

	return f.exchange(ctx, payload.code, redirectURI)
}

func (f *Flow) consentURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", f.cfg.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", strings.Join(scopes, " "))
	q.Set("state", state)
	return f.cfg.AuthEndpoint + "?" + q.Encode()
}

func (f *Flow) exchange(ctx context.Context, code, redirectURI string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", f.cfg.ClientID)
	form.Set("client_secret", f.cfg.ClientSecret)
	form.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", domain.E(domain.KindProtocol, "oauth.exchange", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", domain.E(domain.KindCanceled, "oauth.exchange", domain.ErrCanceled)
		}
		return "", domain.E(domain.KindTransport, "oauth.exchange", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.Ef(domain.KindProtocol, "oauth.exchange", "token endpoint returned %d", resp.StatusCode)
	}
	var payload struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", domain.E(domain.KindProtocol, "oauth.exchange", err)
	}
	if payload.IDToken == "" {
		return "", domain.E(domain.KindValidation, "oauth.exchange", domain.ErrNoIDToken)
	}
	return payload.IDToken, nil
}

var resultPage = template.Must(template.New("cb").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Sign-In {{if .OK}}Complete{{else}}Result{{end}}</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.ok{color:#057a55} .fail{color:#b00020}
</style>
</head>
<body>
<div class="card">
  <h2 class="{{if .OK}}ok{{else}}fail{{end}}">{{if .OK}}Sign-in complete{{else}}Sign-in not completed{{end}}</h2>
  <p>You can close this tab and return to the terminal.</p>
</div>
</body>
</html>`))

func renderResult(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = resultPage.Execute(w, struct{ OK bool }{OK: ok})
}
