package llm

import "context"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Request contains the parameters for a completion call.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Response contains the result of a completion call.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Client defines the interface every generation backend implements.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req Request) (*Response, error)
	// Name returns the name of this backend.
	Name() string
}
