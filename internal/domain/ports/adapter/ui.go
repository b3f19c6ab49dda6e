package adapter

import "context"

// Prompter is the harness's only source of interactive input. Blocking
// prompts are explicit suspension points so tests can feed canned answers.
type Prompter interface {
	// Confirm asks a yes/no question; false means the user canceled.
	Confirm(prompt string) (bool, error)
	// Line reads one line of input, e.g. a pasted callback URL.
	Line(prompt string) (string, error)
}

// BrowserOpener opens a URL in the user's browser. Failures are non-fatal;
// the URL is always printed as a fallback.
type BrowserOpener interface {
	Open(url string) error
}

// SignInFlow is an interactive flow that yields a provider ID token, e.g.
// the local-callback Google flow.
type SignInFlow interface {
	SignIn(ctx context.Context) (string, error)
}
