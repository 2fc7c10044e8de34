package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"travelsearch/internal/model"
)

// ErrExtractorDisabled is returned when no chat model is configured
var ErrExtractorDisabled = errors.New("intent extraction is not enabled")

// IntentExtractor produces a first-pass intent from a conversation. Callers
// treat it as unreliable and always sanitize the result.
type IntentExtractor interface {
	ExtractIntent(ctx context.Context, messages []model.Message) (*model.Intent, error)
}

// StreamingIntentExtractor also relays the model's output while it is generated
type StreamingIntentExtractor interface {
	IntentExtractor
	ExtractIntentStream(ctx context.Context, messages []model.Message, callback func(thinking, content string) error) (*model.Intent, error)
}

// IntentParser extracts travel intents with a chat model
type IntentParser struct {
	aiClient AIClient
}

// NewIntentParser creates a new intent parser
func NewIntentParser(aiClient AIClient) *IntentParser {
	return &IntentParser{
		aiClient: aiClient,
	}
}

func (p *IntentParser) enabled() bool {
	return p.aiClient != nil && p.aiClient.IsEnabled()
}

// ExtractIntent asks the model for the structured request in messages
func (p *IntentParser) ExtractIntent(ctx context.Context, messages []model.Message) (*model.Intent, error) {
	if !p.enabled() {
		return nil, ErrExtractorDisabled
	}

	aiResult, err := p.aiClient.ExtractIntentWithAI(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("OpenAI parsing error: %w", err)
	}
	return toIntent(aiResult), nil
}

// ExtractIntentStream is ExtractIntent with streaming progress updates
func (p *IntentParser) ExtractIntentStream(ctx context.Context, messages []model.Message, callback func(thinking, content string) error) (*model.Intent, error) {
	if !p.enabled() {
		return nil, ErrExtractorDisabled
	}

	aiResult, err := p.aiClient.ExtractIntentWithAIStream(ctx, messages, callback)
	if err != nil {
		return nil, fmt.Errorf("OpenAI streaming parsing error: %w", err)
	}

	intent := toIntent(aiResult)
	log.Printf("[intent] extracted type=%q from=%q to=%q confidence=%.0f",
		intent.ServiceType, deref(intent.FromLocation), deref(intent.ToLocation), intent.ConfidenceScore)
	return intent, nil
}

// toIntent maps the model's answer onto an intent. Values the model got
// wrong (unparseable dates, unknown categories) are dropped here and left
// for the sanitizer to recover from the raw text.
func toIntent(r *AIIntentResponse) *model.Intent {
	intent := &model.Intent{}
	if r == nil {
		return intent
	}

	if r.ServiceType != nil {
		st := model.ServiceType(normalizeServiceType(*r.ServiceType))
		if st.Known() {
			intent.ServiceType = st
		}
	}

	intent.FromLocation = r.FromLocation
	intent.ToLocation = r.ToLocation
	intent.DateStart = lenientDate(r.DateStart)
	intent.DateEnd = lenientDate(r.DateEnd)
	intent.Passengers = r.Passengers
	intent.Budget = r.Budget
	intent.Pets = r.Pets
	intent.SpecialRequirements = r.SpecialRequirements
	if r.ConfidenceScore != nil {
		intent.ConfidenceScore = *r.ConfidenceScore
	}
	return intent
}

// normalizeServiceType turns "Empty Legs" or "empty-legs" into "empty_legs"
func normalizeServiceType(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func lenientDate(s *string) *model.Date {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	d, err := model.ParseDate(*s)
	if err != nil {
		log.Printf("[intent] ignoring unparseable date %q", *s)
		return nil
	}
	return &d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
