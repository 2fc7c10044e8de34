package model

import (
	"encoding/json"
	"time"
)

// SearchRequest represents a free-text search with its conversation
type SearchRequest struct {
	Query     string    `json:"query" binding:"required"`
	History   []Message `json:"history,omitempty"`
	SessionID string    `json:"session_id,omitempty"` // a newer search in the same session supersedes older ones
}

// InventoryFilter is the category-independent filter an adapter hands to the store.
// Nil fields are not applied.
type InventoryFilter struct {
	Origin        *string
	Destination   *string
	Location      *string
	Window        *DateRange
	MinCapacity   *int
	MaxPrice      *float64
	AvailableOnly bool
	OrderBy       Field // ascending; empty means store order
	Limit         int
}

// FallbackTier reports which relaxation step produced the empty-leg results
type FallbackTier int

const (
	TierExact         FallbackTier = 1 // every available filter
	TierNoDestination FallbackTier = 2 // destination dropped
	TierWidenedWindow FallbackTier = 3 // destination dropped, window widened
	TierExhausted     FallbackTier = 4 // nothing found
)

// SearchResults holds the raw rows of every category
type SearchResults struct {
	EmptyLegs   []Record `json:"empty_legs"`
	Jets        []Record `json:"jets"`
	Helicopters []Record `json:"helicopters"`
	Cars        []Record `json:"cars"`
	Yachts      []Record `json:"yachts"`
	Experiences []Record `json:"experiences"`
	Transfers   []Record `json:"transfers"`
}

// For returns the rows of one category
func (r *SearchResults) For(t ServiceType) []Record {
	switch t {
	case ServiceEmptyLegs:
		return r.EmptyLegs
	case ServiceJets:
		return r.Jets
	case ServiceHelicopters:
		return r.Helicopters
	case ServiceCars:
		return r.Cars
	case ServiceYachts:
		return r.Yachts
	case ServiceExperiences:
		return r.Experiences
	case ServiceTransfers:
		return r.Transfers
	}
	return nil
}

// Set replaces the rows of one category
func (r *SearchResults) Set(t ServiceType, rows []Record) {
	if rows == nil {
		rows = []Record{}
	}
	switch t {
	case ServiceEmptyLegs:
		r.EmptyLegs = rows
	case ServiceJets:
		r.Jets = rows
	case ServiceHelicopters:
		r.Helicopters = rows
	case ServiceCars:
		r.Cars = rows
	case ServiceYachts:
		r.Yachts = rows
	case ServiceExperiences:
		r.Experiences = rows
	case ServiceTransfers:
		r.Transfers = rows
	}
}

// Total is always the sum of the seven list lengths
func (r *SearchResults) Total() int {
	total := 0
	for _, t := range ServiceTypes {
		total += len(r.For(t))
	}
	return total
}

// Summary returns the per-category counts
func (r *SearchResults) Summary() map[string]int {
	summary := make(map[string]int, len(ServiceTypes))
	for _, t := range ServiceTypes {
		summary[string(t)] = len(r.For(t))
	}
	return summary
}

// MarshalJSON adds total_results, computed from the lists at encode time
func (r SearchResults) MarshalJSON() ([]byte, error) {
	type plain SearchResults
	return json.Marshal(struct {
		plain
		TotalResults int `json:"total_results"`
	}{plain: plain(r), TotalResults: r.Total()})
}

// DetailField is one ordered key/value line of a display item
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DisplayItem is the uniform card shape shared by every category
type DisplayItem struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Subtitle     string        `json:"subtitle"`
	Price        *float64      `json:"price"`
	Currency     string        `json:"currency"`
	PriceUnit    string        `json:"price_unit,omitempty"`
	Details      []DetailField `json:"details"`
	Availability bool          `json:"availability"`
	ImageURL     string        `json:"image_url,omitempty"`
}

// DisplayTab groups the items of one non-empty category
type DisplayTab struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Count int           `json:"count"`
	Items []DisplayItem `json:"items"`
}

// SearchResponse is what a caller receives for every valid search
type SearchResponse struct {
	SearchID       string        `json:"search_id"`
	Intent         *Intent       `json:"intent"`
	DateRange      *DateRange    `json:"date_range,omitempty"`
	Results        SearchResults `json:"results"`
	Tabs           []DisplayTab  `json:"tabs"`
	FallbackTier   FallbackTier  `json:"fallback_tier"`
	NeedsMoreInfo  bool          `json:"needs_more_info"`
	MissingFields  []string      `json:"missing_fields"`
	FollowUpPrompt string        `json:"follow_up_prompt"`
	Took           int64         `json:"took_ms"` // Response time in milliseconds
}

// IntentResponse is the result of intent resolution without a search
type IntentResponse struct {
	Intent     *Intent          `json:"intent"`
	DateRange  *DateRange       `json:"date_range,omitempty"`
	Validation ValidationResult `json:"validation"`
}

// AuditRecord is the immutable log row written once per search
type AuditRecord struct {
	ID             string         `json:"id"`
	Intent         Intent         `json:"intent"`
	HasResults     bool           `json:"has_results"`
	ResultsCount   int            `json:"results_count"`
	ResultsSummary map[string]int `json:"results_summary"`
	Conversation   []Message      `json:"conversation_context"`
	QueryEmbedding []float32      `json:"-"`
	Interrupted    bool           `json:"interrupted"` // the caller disconnected before results were returned
	CreatedAt      time.Time      `json:"created_at"`
}
