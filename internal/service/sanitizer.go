package service

import (
	"regexp"
	"strconv"
	"strings"

	"travelsearch/internal/model"
)

// serviceKeywords is scanned in order; the first category with a match wins
var serviceKeywords = []struct {
	serviceType model.ServiceType
	pattern     *regexp.Regexp
}{
	{model.ServiceEmptyLegs, regexp.MustCompile(`(?i)\b(empty[\s-]?legs?|repositioning)\b`)},
	{model.ServiceJets, regexp.MustCompile(`(?i)\b(private\s+jets?|jets?|private\s+(plane|flight)s?|charter\s+flights?)\b`)},
	{model.ServiceHelicopters, regexp.MustCompile(`(?i)\b(helicopters?|heli|choppers?)\b`)},
	{model.ServiceYachts, regexp.MustCompile(`(?i)\b(yachts?|superyachts?|catamarans?|boats?|sailing)\b`)},
	{model.ServiceCars, regexp.MustCompile(`(?i)\b(cars?|supercars?|car\s+rentals?|ferrari|lamborghini|rolls[\s-]royce|bentley|porsche)\b`)},
	{model.ServiceTransfers, regexp.MustCompile(`(?i)\b(transfers?|chauffeurs?|shuttles?|pick[\s-]?ups?)\b`)},
	{model.ServiceExperiences, regexp.MustCompile(`(?i)\b(experiences?|tours?|excursions?|safaris?|tastings?|adventures?)\b`)},
}

// A capture ends at one of these words, at sentence punctuation or at the end
// of the query. A comma only ends it when a date, count or clause follows, so
// "Nice, France" stays whole.
const captureEnd = `(?:\s+(?:in|on|at|for|by|this|next|the)\b` +
	`|,\s*(?:$|\d|(?:in|on|at|for|by|this|next|the|with|and|we|i|my|our|please|around|departing|leaving|returning|` +
	`january|february|march|april|may|june|july|august|september|october|november|december)\b)` +
	`|[.;!?]|$)`

// abbreviationDot stands in for the period of abbreviations like "St." while the
// route patterns run, so the period is not read as the end of a sentence
const abbreviationDot = "\uE000"

var abbreviationPattern = regexp.MustCompile(`(?i)\b(st|ste|mt|ft|pt)\.`)

var (
	passengersPattern = regexp.MustCompile(`(?i)\bfor\s+(\d+)\s+(?:passengers?|pax|people)\b`)
	fromToPattern     = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+?)` + captureEnd)
	fromPattern       = regexp.MustCompile(`(?i)\bfrom\s+(.+?)` + captureEnd)
	toPattern         = regexp.MustCompile(`(?i)\bto\s+(.+?)` + captureEnd)
	toWordPattern     = regexp.MustCompile(`(?i)\bto\s+`)
	leadingCapture    = regexp.MustCompile(`(?i)^(.+?)` + captureEnd)
	wordPattern       = regexp.MustCompile(`[\p{L}\p{N}'.\x{E000}-]+`)
)

// routeStopWords never belong to a place name in the loose "<A> to <B>" form
var routeStopWords = map[string]bool{
	"a": true, "an": true, "i": true, "we": true, "me": true, "us": true, "my": true,
	"need": true, "want": true, "would": true, "like": true, "looking": true, "book": true,
	"get": true, "go": true, "going": true, "fly": true, "flying": true, "travel": true,
	"trip": true, "flight": true, "flights": true, "private": true, "jet": true, "jets": true,
	"empty": true, "leg": true, "legs": true, "helicopter": true, "helicopters": true,
	"transfer": true, "transfers": true, "car": true, "cars": true, "yacht": true, "yachts": true,
	"please": true, "and": true, "or": true, "then": true, "charter": true, "ride": true,
	"in": true, "on": true, "at": true, "for": true, "by": true, "this": true, "next": true, "the": true,
	"from": true, "to": true, "people": true, "passengers": true, "pax": true, "guests": true,
}

const maxLooseOriginWords = 3

// Sanitizer repairs and completes an extracted intent with deterministic
// heuristics over the raw query. It only fills unset fields, except for the
// repairs listed on Sanitize.
type Sanitizer struct{}

// NewSanitizer creates a sanitizer
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize returns a repaired copy of in; in is not modified.
//
// Repairs: blank strings become nil, non-positive passenger counts and
// negative budgets or pet counts are dropped, confidence is clamped to
// 0-100, reversed dates are swapped.
func (s *Sanitizer) Sanitize(in *model.Intent) *model.Intent {
	out := in.Clone()
	raw := out.RawQuery

	out.FromLocation = trimmed(out.FromLocation)
	out.ToLocation = trimmed(out.ToLocation)
	out.SpecialRequirements = trimmed(out.SpecialRequirements)

	if out.Passengers != nil && *out.Passengers <= 0 {
		out.Passengers = nil
	}
	if out.Budget != nil && *out.Budget < 0 {
		out.Budget = nil
	}
	if out.Pets != nil && *out.Pets < 0 {
		out.Pets = nil
	}
	switch {
	case out.ConfidenceScore < 0:
		out.ConfidenceScore = 0
	case out.ConfidenceScore > 100:
		out.ConfidenceScore = 100
	}
	if out.DateStart != nil && out.DateEnd != nil && out.DateEnd.Before(*out.DateStart) {
		out.DateStart, out.DateEnd = out.DateEnd, out.DateStart
	}

	if !out.ServiceType.Known() {
		out.ServiceType = DetectServiceType(raw)
	}

	if out.Passengers == nil {
		if m := passengersPattern.FindStringSubmatch(raw); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				out.Passengers = &n
			}
		}
	}

	s.fillRoute(out, raw)
	return out
}

// DetectServiceType scans text for category keywords in priority order.
// Returns "" when nothing matches.
func DetectServiceType(text string) model.ServiceType {
	for _, kw := range serviceKeywords {
		if kw.pattern.MatchString(text) {
			return kw.serviceType
		}
	}
	return ""
}

func (s *Sanitizer) fillRoute(out *model.Intent, raw string) {
	raw = abbreviationPattern.ReplaceAllString(raw, "${1}"+abbreviationDot)
	if out.FromLocation == nil || out.ToLocation == nil {
		from, to := extractRoute(raw)
		if out.FromLocation == nil {
			out.FromLocation = from
		}
		if out.ToLocation == nil {
			out.ToLocation = to
		}
	}

	if out.FromLocation != nil && out.ToLocation != nil && strings.EqualFold(*out.FromLocation, *out.ToLocation) {
		if alt := secondDestination(raw); alt != nil && !strings.EqualFold(*alt, *out.FromLocation) {
			out.ToLocation = alt
		}
	}
}

// extractRoute tries "from A to B", then the loose "A to B", then "from A"
func extractRoute(raw string) (from, to *string) {
	if m := fromToPattern.FindStringSubmatch(raw); m != nil {
		from, to = nonBlank(m[1]), nonBlank(m[2])
		if from != nil && to != nil {
			return from, to
		}
	}

	if from, to = looseRoute(raw); from != nil && to != nil {
		return from, to
	}

	if m := fromPattern.FindStringSubmatch(raw); m != nil {
		return nonBlank(m[1]), nil
	}
	return nil, nil
}

// looseRoute handles "Geneva to Nice". The origin is the run of up to three
// words right before "to" that are not filler or category words.
func looseRoute(raw string) (from, to *string) {
	for _, loc := range toPattern.FindAllStringSubmatchIndex(raw, -1) {
		dest := nonBlank(raw[loc[2]:loc[3]])
		if dest == nil {
			continue
		}

		words := wordPattern.FindAllString(raw[:loc[0]], -1)
		var origin []string
		for i := len(words) - 1; i >= 0 && len(origin) < maxLooseOriginWords; i-- {
			if routeStopWords[strings.ToLower(words[i])] || isNumber(words[i]) {
				break
			}
			origin = append([]string{words[i]}, origin...)
		}
		if len(origin) == 0 {
			continue
		}
		return nonBlank(strings.Join(origin, " ")), dest
	}
	return nil, nil
}

// secondDestination returns the place after the second "to" of the query
func secondDestination(raw string) *string {
	locs := toWordPattern.FindAllStringIndex(raw, -1)
	if len(locs) < 2 {
		return nil
	}
	m := leadingCapture.FindStringSubmatch(raw[locs[1][1]:])
	if m == nil {
		return nil
	}
	return nonBlank(m[1])
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func nonBlank(s string) *string {
	s = strings.TrimSpace(strings.ReplaceAll(s, abbreviationDot, "."))
	if s == "" {
		return nil
	}
	return &s
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return nonBlank(*s)
}
