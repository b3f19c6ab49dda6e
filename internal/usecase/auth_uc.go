// File: internal/usecase/auth_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"outreach-call-harness/internal/domain"
	"outreach-call-harness/internal/domain/model"
	"outreach-call-harness/internal/domain/ports/adapter"
	"outreach-call-harness/internal/infra/metrics"
	"outreach-call-harness/internal/report"
	"outreach-call-harness/internal/retry"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// Shared policy for both remote-completion polling strategies.
var defaultAuthBudget = retry.Budget{Attempts: 30, Interval: time.Second}

type AuthUseCase interface {
	// ProbeMissingToken asserts the backend rejects an absent idToken with 400.
	ProbeMissingToken(ctx context.Context) error
	// ProbeInvalidToken asserts the backend rejects a fabricated token with 401/500.
	ProbeInvalidToken(ctx context.Context) error
	// SignIn obtains an ID token via the configured strategy.
	SignIn(ctx context.Context) (string, error)
	// Authenticate exchanges a real ID token and validates the response shape.
	Authenticate(ctx context.Context, idToken string) (*model.AuthResult, error)
}

type authUC struct {
	api      adapter.AuthAPI
	flow     adapter.SignInFlow // nil when client credentials are absent
	browser  adapter.BrowserOpener
	prompter adapter.Prompter
	detect   string // get-auth | me | manual
	budget   retry.Budget
	rep      *report.Reporter
	log      *zerolog.Logger
}

func NewAuthUseCase(
	api adapter.AuthAPI,
	flow adapter.SignInFlow,
	browser adapter.BrowserOpener,
	prompter adapter.Prompter,
	detect string,
	budget retry.Budget,
	rep *report.Reporter,
	logger *zerolog.Logger,
) *authUC {
	if budget.Attempts <= 0 {
		budget = defaultAuthBudget
	}
	if detect == "" {
		detect = "get-auth"
	}
	return &authUC{
		api:      api,
		flow:     flow,
		browser:  browser,
		prompter: prompter,
		detect:   detect,
		budget:   budget,
		rep:      rep,
		log:      logger,
	}
}

func (a *authUC) ProbeMissingToken(ctx context.Context) error {
	a.rep.Infof("Testing /auth/google with no idToken...")
	res, status, err := a.api.ExchangeToken(ctx, "")
	if err != nil {
		return err
	}
	if status != http.StatusBadRequest {
		return domain.Ef(domain.KindProtocol, "auth.probe_missing", "expected 400, got %d", status)
	}
	if res == nil || !strings.Contains(res.Error, "Missing idToken") {
		return domain.Ef(domain.KindProtocol, "auth.probe_missing", "wrong error message")
	}
	a.rep.Successf("Correctly rejected missing token")
	return nil
}

func (a *authUC) ProbeInvalidToken(ctx context.Context) error {
	a.rep.Infof("Testing /auth/google with fake token...")
	token, err := fabricateToken()
	if err != nil {
		return domain.E(domain.KindConfiguration, "auth.probe_invalid", err)
	}
	_, status, err := a.api.ExchangeToken(ctx, token)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized && status != http.StatusInternalServerError {
		return domain.Ef(domain.KindProtocol, "auth.probe_invalid", "expected 401 or 500, got %d", status)
	}
	a.rep.Successf("Correctly rejected invalid token")
	return nil
}

// fabricateToken mints a well-formed JWT over a throwaway HMAC key. It must
// parse everywhere and verify nowhere.
func fabricateToken() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "harness-probe",
		Issuer:    "outreach-call-harness",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// SignIn prefers the delegated local-callback flow when client credentials
// were configured, otherwise drives the remote flow and detects completion
// per the configured strategy.
func (a *authUC) SignIn(ctx context.Context) (string, error) {
	if a.flow != nil {
		a.rep.Infof("Starting local sign-in flow; your browser will open for Google sign-in")
		token, err := a.flow.SignIn(ctx)
		if err != nil {
			return "", err
		}
		a.rep.Successf("Successfully obtained ID token!")
		a.rep.Infof("Token preview: %s...", preview(token, 50))
		return token, nil
	}
	return "", a.remoteSignIn(ctx)
}

// remoteSignIn never yields a token locally: the target service is the
// source of truth for completion.
func (a *authUC) remoteSignIn(ctx context.Context) error {
	authURL, err := a.api.SignInURL(ctx)
	if err != nil {
		return err
	}
	a.rep.Infof("Opening sign-in URL: %s", authURL)
	if err := a.browser.Open(authURL); err != nil {
		a.log.Warn().Err(err).Msg("could not open browser; visit the URL manually")
	}

	switch a.detect {
	case "me":
		return a.pollCompletion(ctx, "auth_me", func(ctx context.Context) (bool, error) {
			ok, _, err := a.api.Me(ctx)
			return ok, err
		})
	case "manual":
		return a.manualCallback(ctx)
	default: // get-auth
		return a.pollCompletion(ctx, "get_auth", func(ctx context.Context) (bool, error) {
			ok, _, err := a.api.AuthReady(ctx)
			return ok, err
		})
	}
}

func (a *authUC) pollCompletion(ctx context.Context, loop string, check func(ctx context.Context) (bool, error)) error {
	a.rep.Infof("Waiting for sign-in to complete (%d attempts, %s apart)...",
		a.budget.Attempts, a.budget.Interval)
	_, err := retry.Poll(ctx, a.budget, func(ctx context.Context) (struct{}, bool, error) {
		metrics.IncPollAttempt(loop)
		ok, err := check(ctx)
		if err != nil {
			// Not ready this attempt; the remote side may still be processing.
			a.log.Warn().Err(err).Str("loop", loop).Msg("completion poll failed")
			return struct{}{}, false, err
		}
		return struct{}{}, ok, nil
	})
	if err != nil {
		return err
	}
	a.rep.Successf("Sign-in detected by the target service")
	return nil
}

func (a *authUC) manualCallback(ctx context.Context) error {
	raw, err := a.prompter.Line("Paste the callback URL here: ")
	if err != nil {
		return domain.E(domain.KindCanceled, "auth.manual", domain.ErrCanceled)
	}

	result := model.ParseCallback(raw)
	switch result.Kind {
	case model.CallbackError:
		return domain.Ef(domain.KindProtocol, "auth.manual", "sign-in failed: %s", result.Message)
	case model.CallbackSuccessUser:
		a.rep.Successf("Sign-in succeeded with user payload")
		if len(result.User) > 0 {
			a.rep.Infof("User: %s", result.User)
		}
		if len(result.Profile) > 0 {
			a.rep.Infof("Profile: %s", result.Profile)
		}
		return nil
	case model.CallbackSessionBased:
		a.rep.Successf("Sign-in succeeded (session established server-side)")
		return nil
	default:
		// Reported, not fatal: the server may still have completed the flow.
		a.rep.Warnf("Unrecognized callback URL; could not determine the outcome")
		return nil
	}
}

func (a *authUC) Authenticate(ctx context.Context, idToken string) (*model.AuthResult, error) {
	a.rep.Infof("Testing /auth/google with real token...")
	res, status, err := a.api.ExchangeToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, domain.Ef(domain.KindProtocol, "auth.exchange", "authentication failed: %d", status)
	}
	a.rep.Successf("Authentication successful!")
	a.rep.Infof("User ID: %s", res.Profile.UID)
	a.rep.Infof("Email: %s", res.Profile.Email)
	a.rep.Infof("Name: %s", res.Profile.Name)
	a.rep.Infof("Is New User: %t", res.IsNewUser)
	return res, nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
