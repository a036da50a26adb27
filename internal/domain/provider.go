package domain

import "context"

// Provider is the chat-completion collaborator. Implementations make exactly
// one upstream call per Chat.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Healthy(ctx context.Context) error
}

type ChatRequest struct {
	Messages    []Message
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

type ChatResponse struct {
	Content      string
	FinishReason string // stop | length | content_filter
	Usage        Usage
	LatencyMs    int64
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
