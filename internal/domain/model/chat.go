package model

// ChatSession identifies one chat conversation on the remote service. Both
// fields are required; a response carrying only one of them is invalid.
type ChatSession struct {
	UserID    string
	SessionID string
}

// AuthProfile is the user profile the backend returns after a successful
// token exchange.
type AuthProfile struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResult is the backend's answer to POST /auth/google. Error carries the
// diagnostic message on rejection responses.
type AuthResult struct {
	Success   bool        `json:"success"`
	IsNewUser bool        `json:"isNewUser"`
	Profile   AuthProfile `json:"profile"`
	Error     string      `json:"error,omitempty"`
}
