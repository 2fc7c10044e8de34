package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"travelsearch/internal/metrics"
	"travelsearch/internal/model"
)

var (
	// ErrEmptyQuery is returned for a blank query
	ErrEmptyQuery = errors.New("query is empty")
	// ErrInvalidHistory is returned when a history message has an unknown role or no content
	ErrInvalidHistory = errors.New("invalid conversation history")
	// ErrSuperseded is returned to a search cancelled by a newer one of the same session
	ErrSuperseded = errors.New("search superseded by a newer search in the same session")
)

const defaultWidenDays = 7

// SearchEventCallback is called for streaming search events
type SearchEventCallback func(event string, data any) error

// SearchOptions wires the collaborators of a SearchService. Extractor, Audit
// and Sessions may be nil; Now and NewID default to the wall clock and UUIDs.
type SearchOptions struct {
	Extractor  IntentExtractor
	Adapters   []*Adapter
	Normalizer *Normalizer
	Audit      *AuditRecorder
	Sessions   *SessionRegistry
	WidenDays  int
	Now        func() time.Time
	NewID      func() string
}

// SearchService turns a free-text request into federated inventory results
type SearchService struct {
	extractor  IntentExtractor
	sanitizer  *Sanitizer
	resolver   *DateResolver
	validator  *Validator
	adapters   []*Adapter
	normalizer *Normalizer
	audit      *AuditRecorder
	sessions   *SessionRegistry
	widenDays  int
	now        func() time.Time
	newID      func() string
}

// NewSearchService creates a new search service
func NewSearchService(opts SearchOptions) *SearchService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Sessions == nil {
		opts.Sessions = NewSessionRegistry()
	}
	if opts.Normalizer == nil {
		opts.Normalizer = NewNormalizer(model.DefaultSchema(), "")
	}
	if opts.WidenDays <= 0 {
		opts.WidenDays = defaultWidenDays
	}

	resolver := NewDateResolver(opts.Now)
	return &SearchService{
		extractor:  opts.Extractor,
		sanitizer:  NewSanitizer(),
		resolver:   resolver,
		validator:  NewValidator(resolver),
		adapters:   opts.Adapters,
		normalizer: opts.Normalizer,
		audit:      opts.Audit,
		sessions:   opts.Sessions,
		widenDays:  opts.WidenDays,
		now:        opts.Now,
		newID:      opts.NewID,
	}
}

// Search performs a complete search: intent resolution, federated queries,
// the empty-leg fallback cascade, normalization and audit
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	return s.run(ctx, req, nil)
}

// SearchStream performs a search with streaming progress events:
// parsing, thinking, content, intent, searching, fallback
func (s *SearchService) SearchStream(ctx context.Context, req *model.SearchRequest, callback SearchEventCallback) (*model.SearchResponse, error) {
	if callback == nil {
		callback = func(string, any) error { return nil }
	}
	return s.run(ctx, req, callback)
}

// ParseIntent resolves and validates the intent without searching
func (s *SearchService) ParseIntent(ctx context.Context, req *model.SearchRequest) (*model.IntentResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	resolved, err := s.resolveIntent(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	return resolved.response(), nil
}

// resolvedIntent is the outcome of extraction, sanitizing, date resolution and validation
type resolvedIntent struct {
	intent     *model.Intent
	window     *model.DateRange
	validation model.ValidationResult
	messages   []model.Message
}

func (r *resolvedIntent) response() *model.IntentResponse {
	return &model.IntentResponse{
		Intent:     r.intent,
		DateRange:  r.window,
		Validation: r.validation,
	}
}

func (s *SearchService) run(ctx context.Context, req *model.SearchRequest, callback SearchEventCallback) (*model.SearchResponse, error) {
	startTime := s.now()

	if err := validateRequest(req); err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ctx, session := s.sessions.Begin(ctx, req.SessionID)
	defer s.sessions.End(session)

	emit := func(event string, data any) error {
		if callback == nil {
			return nil
		}
		return callback(event, data)
	}

	if err := emit("parsing", map[string]any{"status": "Understanding your request..."}); err != nil {
		return nil, err
	}

	resolved, err := s.resolveIntent(ctx, req, callback)
	if err != nil {
		return nil, err
	}

	if err := emit("intent", resolved.response()); err != nil {
		return nil, err
	}
	if err := emit("searching", map[string]any{"status": "Searching inventory..."}); err != nil {
		return nil, err
	}

	in := AdapterInput{Intent: resolved.intent, Window: resolved.window}
	results := s.fanOut(ctx, in)

	tier, err := s.emptyLegFallback(ctx, in, results, emit)
	if err != nil {
		return nil, err
	}

	if session.Superseded() {
		metrics.SearchesTotal.WithLabelValues("superseded").Inc()
		log.Printf("[search] session %s: search superseded, discarding results", req.SessionID)
		return nil, ErrSuperseded
	}

	searchID := s.newID()
	total := results.Total()

	if err := ctx.Err(); err != nil {
		// the caller went away; the row still records what was asked
		s.recordAudit(searchID, resolved, results, true)
		metrics.SearchesTotal.WithLabelValues("interrupted").Inc()
		log.Printf("[search] %s interrupted: %v", searchID, err)
		return nil, err
	}

	resp := &model.SearchResponse{
		SearchID:       searchID,
		Intent:         resolved.intent,
		DateRange:      resolved.window,
		Results:        *results,
		Tabs:           s.normalizer.Normalize(results),
		FallbackTier:   tier,
		NeedsMoreInfo:  resolved.intent.ServiceType.Known() && !resolved.validation.Complete,
		MissingFields:  resolved.validation.MissingFields,
		FollowUpPrompt: resolved.validation.FollowUpPrompt,
	}

	s.recordAudit(searchID, resolved, results, false)

	took := s.now().Sub(startTime)
	resp.Took = took.Milliseconds()
	metrics.SearchDuration.Observe(took.Seconds())
	if total > 0 {
		metrics.SearchesTotal.WithLabelValues("results").Inc()
	} else {
		metrics.SearchesTotal.WithLabelValues("no_results").Inc()
	}

	log.Printf("[search] %s type=%q total=%d tier=%d needs_more_info=%v took=%dms",
		searchID, resolved.intent.ServiceType, total, tier, resp.NeedsMoreInfo, resp.Took)
	return resp, nil
}

func (s *SearchService) recordAudit(searchID string, resolved *resolvedIntent, results *model.SearchResults, interrupted bool) {
	if s.audit == nil {
		return
	}
	total := results.Total()
	s.audit.Record(model.AuditRecord{
		ID:             searchID,
		Intent:         *resolved.intent.Clone(),
		HasResults:     total > 0,
		ResultsCount:   total,
		ResultsSummary: results.Summary(),
		Conversation:   resolved.messages,
		Interrupted:    interrupted,
		CreatedAt:      s.now(),
	})
}

// resolveIntent runs extraction (best-effort), sanitizing, date resolution
// and validation. With a callback the extractor's output is relayed as
// thinking and content events.
func (s *SearchService) resolveIntent(ctx context.Context, req *model.SearchRequest, callback SearchEventCallback) (*resolvedIntent, error) {
	query := strings.TrimSpace(req.Query)

	messages := make([]model.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, model.Message{Role: model.RoleUser, Content: query})

	extracted, err := s.extract(ctx, messages, callback)
	if err != nil {
		return nil, err
	}
	extracted.RawQuery = query

	intent := s.sanitizer.Sanitize(extracted)
	window := s.resolver.Resolve(intent, query)
	if window != nil && intent.DateStart == nil {
		from := window.From
		intent.DateStart = &from
		if window.To != nil && intent.DateEnd == nil {
			to := *window.To
			intent.DateEnd = &to
		}
	}

	return &resolvedIntent{
		intent:     intent,
		window:     window,
		validation: s.validator.Validate(intent),
		messages:   messages,
	}, nil
}

// extract calls the extractor and falls back to an empty intent when it is
// missing, disabled or fails. Only a failing callback is returned as an error.
func (s *SearchService) extract(ctx context.Context, messages []model.Message, callback SearchEventCallback) (*model.Intent, error) {
	if s.extractor == nil {
		metrics.ExtractionTotal.WithLabelValues("disabled").Inc()
		return &model.Intent{}, nil
	}

	var (
		intent      *model.Intent
		err         error
		callbackErr error
	)

	streaming, ok := s.extractor.(StreamingIntentExtractor)
	if callback != nil && ok {
		intent, err = streaming.ExtractIntentStream(ctx, messages, func(thinking, content string) error {
			if thinking != "" {
				callbackErr = callback("thinking", map[string]any{"content": thinking})
			} else if content != "" {
				callbackErr = callback("content", map[string]any{"content": content})
			}
			return callbackErr
		})
	} else {
		intent, err = s.extractor.ExtractIntent(ctx, messages)
	}

	if callbackErr != nil {
		return nil, callbackErr
	}

	switch {
	case errors.Is(err, ErrExtractorDisabled):
		metrics.ExtractionTotal.WithLabelValues("disabled").Inc()
		return &model.Intent{}, nil
	case err != nil:
		log.Printf("[search] intent extraction failed, using local heuristics: %v", err)
		metrics.ExtractionTotal.WithLabelValues("fallback").Inc()
		return &model.Intent{}, nil
	case intent == nil:
		metrics.ExtractionTotal.WithLabelValues("fallback").Inc()
		return &model.Intent{}, nil
	}

	metrics.ExtractionTotal.WithLabelValues("ok").Inc()
	return intent, nil
}

// fanOut queries every adapter concurrently and waits for all of them.
// Each goroutine writes only its own slot.
func (s *SearchService) fanOut(ctx context.Context, in AdapterInput) *model.SearchResults {
	rows := make([][]model.Record, len(s.adapters))

	var wg sync.WaitGroup
	for i, adapter := range s.adapters {
		wg.Add(1)
		go func(i int, adapter *Adapter) {
			defer wg.Done()
			rows[i] = adapter.Query(ctx, in)
		}(i, adapter)
	}
	wg.Wait()

	results := &model.SearchResults{}
	for _, st := range model.ServiceTypes {
		results.Set(st, nil)
	}
	for i, adapter := range s.adapters {
		results.Set(adapter.ServiceType(), rows[i])
	}
	return results
}

// emptyLegFallback relaxes the empty-leg query until it returns rows:
// tier 2 drops the destination, tier 3 also widens the date window.
// The first non-empty tier replaces the empty-leg list.
func (s *SearchService) emptyLegFallback(ctx context.Context, in AdapterInput, results *model.SearchResults, emit func(string, any) error) (model.FallbackTier, error) {
	tier := model.TierExact
	defer func() {
		metrics.FallbackTierTotal.WithLabelValues(strconv.Itoa(int(tier))).Inc()
	}()

	if len(results.EmptyLegs) > 0 {
		return tier, nil
	}

	adapter := s.adapterFor(model.ServiceEmptyLegs)
	if adapter == nil || ctx.Err() != nil {
		tier = model.TierExhausted
		return tier, nil
	}

	withoutDestination := in.Intent.Clone()
	withoutDestination.ToLocation = nil

	steps := []struct {
		tier  model.FallbackTier
		skip  bool
		input AdapterInput
	}{
		{
			tier:  model.TierNoDestination,
			skip:  !model.HasText(in.Intent.ToLocation),
			input: AdapterInput{Intent: withoutDestination, Window: in.Window},
		},
		{
			tier:  model.TierWidenedWindow,
			skip:  in.Window == nil,
			input: AdapterInput{Intent: withoutDestination, Window: widen(in.Window, s.widenDays)},
		},
	}

	for _, step := range steps {
		if step.skip {
			continue
		}
		if err := emit("fallback", map[string]any{"tier": step.tier}); err != nil {
			return tier, err
		}
		rows := adapter.Query(ctx, step.input)
		if len(rows) > 0 {
			tier = step.tier
			results.Set(model.ServiceEmptyLegs, rows)
			return tier, nil
		}
	}

	tier = model.TierExhausted
	return tier, nil
}

func (s *SearchService) adapterFor(st model.ServiceType) *Adapter {
	for _, a := range s.adapters {
		if a.ServiceType() == st {
			return a
		}
	}
	return nil
}

func widen(r *model.DateRange, days int) *model.DateRange {
	if r == nil {
		return nil
	}
	return r.Widen(days)
}

// validateRequest rejects blank queries and malformed history
func validateRequest(req *model.SearchRequest) error {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}
	for i, m := range req.History {
		switch m.Role {
		case model.RoleUser, model.RoleAssistant, model.RoleSystem:
		default:
			return fmt.Errorf("%w: message %d has unknown role %q", ErrInvalidHistory, i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("%w: message %d is empty", ErrInvalidHistory, i)
		}
	}
	return nil
}
