package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"travelsearch/internal/model"
)

const monthNames = `(january|february|march|april|may|june|july|august|september|october|november|december)`

var (
	// "second week of October [2025]"
	ordinalWeekPattern = regexp.MustCompile(`(?i)\b(first|second|third|fourth|fifth)\s+week\s+of\s+` + monthNames + `(?:\s+(\d{4}))?\b`)
	// "week of October 14th[, 2025]"
	weekOfPattern = regexp.MustCompile(`(?i)\bweek\s+of\s+` + monthNames + `\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	// "mid October [2025]", "late-March"
	partOfMonthPattern = regexp.MustCompile(`(?i)\b(early|mid|late)[\s-]*` + monthNames + `(?:\s+(\d{4}))?\b`)
	// "October 2025"
	monthYearPattern = regexp.MustCompile(`(?i)\b` + monthNames + `\s+(\d{4})\b`)
)

var ordinals = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5}

// DateResolver turns explicit intent dates or fuzzy date phrases into a
// concrete window of civil days
type DateResolver struct {
	now func() time.Time
}

// NewDateResolver creates a resolver. now supplies the default year; nil
// means time.Now.
func NewDateResolver(now func() time.Time) *DateResolver {
	if now == nil {
		now = time.Now
	}
	return &DateResolver{now: now}
}

// Resolve returns the intent's own dates when it has any, otherwise the
// window named by a date phrase in rawQuery, otherwise nil
func (r *DateResolver) Resolve(intent *model.Intent, rawQuery string) *model.DateRange {
	if intent != nil {
		switch {
		case intent.DateStart != nil && intent.DateEnd != nil:
			from, to := *intent.DateStart, *intent.DateEnd
			if to.Before(from) {
				from, to = to, from
			}
			return model.Span(from, to)
		case intent.DateStart != nil:
			return model.SingleDay(*intent.DateStart)
		case intent.DateEnd != nil:
			return model.SingleDay(*intent.DateEnd)
		}
	}
	return r.ResolvePhrase(rawQuery)
}

// ResolvePhrase matches the supported English date phrasings in order.
// A phrase naming a day the month does not have is skipped.
func (r *DateResolver) ResolvePhrase(text string) *model.DateRange {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	for _, match := range []func(string) *model.DateRange{
		r.ordinalWeek,
		r.weekOf,
		r.partOfMonth,
		r.monthYear,
	} {
		if dr := match(text); dr != nil {
			return dr
		}
	}
	return nil
}

func (r *DateResolver) ordinalWeek(text string) *model.DateRange {
	m := ordinalWeekPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n := ordinals[strings.ToLower(m[1])]
	year, month := r.year(m[3]), parseMonth(m[2])

	start := (n-1)*7 + 1
	return r.window(year, month, start, start+6)
}

func (r *DateResolver) weekOf(text string) *model.DateRange {
	m := weekOfPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 {
		return nil
	}
	return r.window(r.year(m[3]), parseMonth(m[1]), day, day+6)
}

func (r *DateResolver) partOfMonth(text string) *model.DateRange {
	m := partOfMonthPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	year, month := r.year(m[3]), parseMonth(m[2])

	switch strings.ToLower(m[1]) {
	case "early":
		return r.window(year, month, 1, 10)
	case "mid":
		return r.window(year, month, 11, 20)
	default:
		return r.window(year, month, 21, model.DaysIn(year, month))
	}
}

func (r *DateResolver) monthYear(text string) *model.DateRange {
	m := monthYearPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	year, month := r.year(m[2]), parseMonth(m[1])
	return r.window(year, month, 1, model.DaysIn(year, month))
}

// window clamps the end to the month length; nil when the start day does
// not exist in the month
func (r *DateResolver) window(year int, month time.Month, startDay, endDay int) *model.DateRange {
	last := model.DaysIn(year, month)
	if startDay > last {
		return nil
	}
	if endDay > last {
		endDay = last
	}
	return model.Span(model.NewDate(year, month, startDay), model.NewDate(year, month, endDay))
}

func (r *DateResolver) year(s string) int {
	if y, err := strconv.Atoi(s); err == nil {
		return y
	}
	return r.now().Year()
}

func parseMonth(name string) time.Month {
	name = strings.ToLower(name)
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()) == name {
			return m
		}
	}
	return 0
}
