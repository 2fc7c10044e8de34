package service

import (
	"context"

	"travelsearch/internal/model"
)

// AIClient is the interface for AI service providers
type AIClient interface {
	// ExtractIntentWithAI turns a conversation into a structured travel intent (non-streaming)
	ExtractIntentWithAI(ctx context.Context, messages []model.Message) (*AIIntentResponse, error)

	// ExtractIntentWithAIStream does the same with streaming support.
	// The callback receives (thinkingContent, regularContent) for each chunk
	ExtractIntentWithAIStream(ctx context.Context, messages []model.Message, callback func(thinking, content string) error) (*AIIntentResponse, error)

	// CreateEmbeddings generates embeddings for texts
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// IsEnabled returns whether the AI client is configured and ready
	IsEnabled() bool
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}

// AIIntentResponse is the raw JSON object the model answers with. Dates stay
// strings here; the parser decides what it can use.
type AIIntentResponse struct {
	ServiceType         *string  `json:"service_type,omitempty"`
	FromLocation        *string  `json:"from_location,omitempty"`
	ToLocation          *string  `json:"to_location,omitempty"`
	DateStart           *string  `json:"date_start,omitempty"`
	DateEnd             *string  `json:"date_end,omitempty"`
	Passengers          *int     `json:"passengers,omitempty"`
	Budget              *float64 `json:"budget,omitempty"`
	Pets                *int     `json:"pets,omitempty"`
	SpecialRequirements *string  `json:"special_requirements,omitempty"`
	ConfidenceScore     *float64 `json:"confidence_score,omitempty"`
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
