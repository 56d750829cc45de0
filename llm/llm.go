package llm

import "context"

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

// Request is one text-completion call to the backend. Model may be empty to
// use the client's default.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Client is the text-completion backend. Callers must pass a context with a
// deadline; a call already issued cannot be cancelled, only abandoned.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
