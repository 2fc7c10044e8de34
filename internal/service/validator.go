package service

import (
	"fmt"
	"strings"

	"travelsearch/internal/model"
)

type requirement int

const (
	requireOrigin requirement = iota
	requireDestination
	requireDate
	requirePassengers
	requireLocation
)

var requirementLabels = map[requirement]string{
	requireOrigin:      "departure location",
	requireDestination: "destination",
	requireDate:        "date",
	requirePassengers:  "passenger count",
	requireLocation:    "location",
}

// requiredFields lists, per category, what a precise priced search needs
var requiredFields = map[model.ServiceType][]requirement{
	model.ServiceEmptyLegs:   {requireOrigin, requireDestination, requireDate},
	model.ServiceJets:        {requireOrigin, requireDestination, requireDate, requirePassengers},
	model.ServiceHelicopters: {requireOrigin, requireDestination, requireDate, requirePassengers},
	model.ServiceCars:        {requireLocation, requireDate},
	model.ServiceYachts:      {requireLocation, requireDate, requirePassengers},
	model.ServiceExperiences: {requireDestination},
	model.ServiceTransfers:   {requireOrigin, requireDestination, requireDate},
}

// Validator reports which fields an intent still lacks. The result is
// advisory and never blocks a search.
type Validator struct {
	resolver *DateResolver
}

// NewValidator creates a validator; the resolver decides whether a date
// phrase in the raw query counts as a date
func NewValidator(resolver *DateResolver) *Validator {
	return &Validator{resolver: resolver}
}

// Validate checks intent against the required fields of its category.
// An unknown category is always complete.
func (v *Validator) Validate(intent *model.Intent) model.ValidationResult {
	result := model.ValidationResult{Complete: true, MissingFields: []string{}}
	if intent == nil {
		return result
	}

	for _, req := range requiredFields[intent.ServiceType] {
		if !v.satisfied(intent, req) {
			result.MissingFields = append(result.MissingFields, requirementLabels[req])
		}
	}

	if len(result.MissingFields) > 0 {
		result.Complete = false
		result.FollowUpPrompt = fmt.Sprintf("To find priced options for %s, please share your %s.",
			intent.ServiceType.Label(), joinLabels(result.MissingFields))
	}
	return result
}

func (v *Validator) satisfied(intent *model.Intent, req requirement) bool {
	switch req {
	case requireOrigin:
		return model.HasText(intent.FromLocation)
	case requireDestination:
		return model.HasText(intent.ToLocation)
	case requireLocation:
		return intent.PlaceHint() != nil
	case requirePassengers:
		return intent.Passengers != nil && *intent.Passengers > 0
	case requireDate:
		if intent.DateStart != nil || intent.DateEnd != nil {
			return true
		}
		return v.resolver != nil && v.resolver.ResolvePhrase(intent.RawQuery) != nil
	}
	return true
}

// joinLabels renders "a", "a and b", "a, b and c"
func joinLabels(labels []string) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
}
