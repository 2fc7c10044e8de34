package model

import "strings"

// ServiceType identifies one of the seven inventory categories
type ServiceType string

const (
	ServiceEmptyLegs   ServiceType = "empty_legs"
	ServiceJets        ServiceType = "jets"
	ServiceHelicopters ServiceType = "helicopters"
	ServiceCars        ServiceType = "cars"
	ServiceYachts      ServiceType = "yachts"
	ServiceExperiences ServiceType = "experiences"
	ServiceTransfers   ServiceType = "transfers"
)

// ServiceTypes lists every category in display order
var ServiceTypes = []ServiceType{
	ServiceEmptyLegs,
	ServiceJets,
	ServiceHelicopters,
	ServiceCars,
	ServiceYachts,
	ServiceExperiences,
	ServiceTransfers,
}

// Known reports whether s is one of the seven categories
func (s ServiceType) Known() bool {
	for _, t := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Label returns the human wording used in follow-up prompts
func (s ServiceType) Label() string {
	switch s {
	case ServiceEmptyLegs:
		return "empty leg flights"
	case ServiceJets:
		return "private jets"
	case ServiceHelicopters:
		return "helicopter charters"
	case ServiceCars:
		return "luxury cars"
	case ServiceYachts:
		return "yacht charters"
	case ServiceExperiences:
		return "experiences"
	case ServiceTransfers:
		return "transfers"
	}
	return string(s)
}

// Intent represents the structured travel request derived from free text
type Intent struct {
	RawQuery            string      `json:"raw_query"`
	ServiceType         ServiceType `json:"service_type,omitempty"`
	FromLocation        *string     `json:"from_location"`
	ToLocation          *string     `json:"to_location"`
	DateStart           *Date       `json:"date_start"`
	DateEnd             *Date       `json:"date_end"`
	Passengers          *int        `json:"passengers"`
	Budget              *float64    `json:"budget"`
	Pets                *int        `json:"pets"`
	SpecialRequirements *string     `json:"special_requirements"`
	ConfidenceScore     float64     `json:"confidence_score"`
}

// Clone returns a deep copy so callers can mutate it freely
func (i *Intent) Clone() *Intent {
	if i == nil {
		return &Intent{}
	}
	out := *i
	out.FromLocation = cloneString(i.FromLocation)
	out.ToLocation = cloneString(i.ToLocation)
	out.SpecialRequirements = cloneString(i.SpecialRequirements)
	if i.DateStart != nil {
		d := *i.DateStart
		out.DateStart = &d
	}
	if i.DateEnd != nil {
		d := *i.DateEnd
		out.DateEnd = &d
	}
	if i.Passengers != nil {
		v := *i.Passengers
		out.Passengers = &v
	}
	if i.Pets != nil {
		v := *i.Pets
		out.Pets = &v
	}
	if i.Budget != nil {
		v := *i.Budget
		out.Budget = &v
	}
	return &out
}

// PlaceHint returns the destination if known, otherwise the origin.
// Single-location categories (cars, yachts, experiences) search around it.
func (i *Intent) PlaceHint() *string {
	if HasText(i.ToLocation) {
		return i.ToLocation
	}
	if HasText(i.FromLocation) {
		return i.FromLocation
	}
	return nil
}

// HasText reports whether s is set to a non-blank value
func HasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Message is one turn of the conversation that led to a query
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles accepted in conversation history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ValidationResult describes what is still missing to search a category precisely
type ValidationResult struct {
	Complete       bool     `json:"complete"`
	MissingFields  []string `json:"missing_fields"`
	FollowUpPrompt string   `json:"follow_up_prompt"`
}
