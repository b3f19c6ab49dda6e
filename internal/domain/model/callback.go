package model

import (
	"encoding/json"
	"net/url"
)

// CallbackKind discriminates the outcome carried by an OAuth callback URL.
type CallbackKind string

const (
	CallbackError        CallbackKind = "error"
	CallbackSuccessUser  CallbackKind = "success-with-user"
	CallbackSessionBased CallbackKind = "success-session-based"
	CallbackUnrecognized CallbackKind = "unrecognized"
)

// CallbackResult is the parsed outcome of a provider redirect. Unrecognized
// callbacks are reported, not fatal, so parsing never fails outright.
type CallbackResult struct {
	Kind    CallbackKind
	Message string          // set for CallbackError
	User    json.RawMessage // set for CallbackSuccessUser when present
	Profile json.RawMessage // set for CallbackSuccessUser when present
}

// ParseCallback interprets the query parameters of a pasted or received
// callback URL. Query values arrive URL-encoded; user/profile carry JSON.
func ParseCallback(rawURL string) CallbackResult {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CallbackResult{Kind: CallbackUnrecognized}
	}
	q := u.Query()

	switch q.Get("auth") {
	case "error":
		return CallbackResult{Kind: CallbackError, Message: q.Get("message")}
	case "success":
		if !q.Has("user") && !q.Has("profile") {
			return CallbackResult{Kind: CallbackSessionBased}
		}
		user, okUser := decodeJSONParam(q.Get("user"))
		profile, okProfile := decodeJSONParam(q.Get("profile"))
		if !okUser || !okProfile {
			return CallbackResult{Kind: CallbackUnrecognized}
		}
		return CallbackResult{Kind: CallbackSuccessUser, User: user, Profile: profile}
	}
	return CallbackResult{Kind: CallbackUnrecognized}
}

func decodeJSONParam(s string) (json.RawMessage, bool) {
	if s == "" {
		return nil, true
	}
	raw := json.RawMessage(s)
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}
