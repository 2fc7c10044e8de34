package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelsearch/internal/model"
)

func TestResolvePhrase(t *testing.T) {
	resolver := NewDateResolver(fixedClock())

	tests := []struct {
		name     string
		query    string
		wantFrom string
		wantTo   string
	}{
		{"Second week", "second week of October 2025", "2025-10-08", "2025-10-14"},
		{"Mid month", "mid October 2025", "2025-10-11", "2025-10-20"},
		{"Early month", "early October 2025", "2025-10-01", "2025-10-10"},
		{"Late month uses month length", "late February 2024", "2024-02-21", "2024-02-29"},
		{"Hyphenated part of month", "jet in late-March 2026", "2026-03-21", "2026-03-31"},
		{"Fifth week clamped", "fifth week of October 2025", "2025-10-29", "2025-10-31"},
		{"Week of a day", "the week of October 14th, 2025", "2025-10-14", "2025-10-20"},
		{"Week of clamped to month end", "week of December 28 2025", "2025-12-28", "2025-12-31"},
		{"Month and year", "yacht in Monaco August 2026", "2026-08-01", "2026-08-31"},
		{"Year defaults to clock", "mid November", "2025-11-11", "2025-11-20"},
		{"Case insensitive", "SECOND WEEK OF OCTOBER 2025", "2025-10-08", "2025-10-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.ResolvePhrase(tt.query)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantFrom, got.From.String())
			assert.Equal(t, tt.wantTo, got.End().String())
		})
	}
}

func TestResolvePhraseNoMatch(t *testing.T) {
	resolver := NewDateResolver(fixedClock())

	for _, q := range []string{"", "private jet next week", "tomorrow to Nice", "October"} {
		assert.Nil(t, resolver.ResolvePhrase(q), q)
	}
}

func TestResolvePhraseSkipsImpossibleDay(t *testing.T) {
	resolver := NewDateResolver(fixedClock())

	// February 2025 has 28 days, so the fifth week does not exist and the
	// bare month-year phrase is used instead
	got := resolver.ResolvePhrase("fifth week of February 2025")
	require.NotNil(t, got)
	assert.Equal(t, "2025-02-01", got.From.String())
	assert.Equal(t, "2025-02-28", got.End().String())

	assert.Nil(t, resolver.ResolvePhrase("fifth week of February"))

	// a leap year has a one-day fifth week
	leap := resolver.ResolvePhrase("fifth week of February 2028")
	require.NotNil(t, leap)
	assert.Equal(t, "2028-02-29", leap.From.String())
	assert.Equal(t, "2028-02-29", leap.End().String())
}

func TestResolveExplicitDates(t *testing.T) {
	resolver := NewDateResolver(fixedClock())
	oct1 := model.NewDate(2025, time.October, 1)
	oct5 := model.NewDate(2025, time.October, 5)

	t.Run("Both dates", func(t *testing.T) {
		got := resolver.Resolve(&model.Intent{DateStart: &oct1, DateEnd: &oct5}, "mid December 2025")
		require.NotNil(t, got)
		assert.Equal(t, oct1, got.From)
		assert.Equal(t, oct5, got.End())
	})

	t.Run("Reversed dates", func(t *testing.T) {
		got := resolver.Resolve(&model.Intent{DateStart: &oct5, DateEnd: &oct1}, "")
		require.NotNil(t, got)
		assert.Equal(t, oct1, got.From)
		assert.Equal(t, oct5, got.End())
	})

	t.Run("Start only", func(t *testing.T) {
		got := resolver.Resolve(&model.Intent{DateStart: &oct1}, "")
		require.NotNil(t, got)
		assert.Nil(t, got.To)
		assert.Equal(t, oct1, got.From)
	})

	t.Run("End only becomes a single day", func(t *testing.T) {
		got := resolver.Resolve(&model.Intent{DateEnd: &oct5}, "")
		require.NotNil(t, got)
		assert.Nil(t, got.To)
		assert.Equal(t, oct5, got.From)
	})

	t.Run("No dates falls back to the phrase", func(t *testing.T) {
		got := resolver.Resolve(&model.Intent{}, "early October 2025")
		require.NotNil(t, got)
		assert.Equal(t, "2025-10-01", got.From.String())
	})
}
