// Package notify delivers the best-effort "no results found" signal raised
// after a search came back empty.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travelsearch/internal/metrics"
	"travelsearch/internal/model"
)

// EventNoResults is the event type carried on every channel
const EventNoResults = "SEARCH_NO_RESULTS"

// Event is the payload of a no-results notification
type Event struct {
	Type      string       `json:"type"`
	SearchID  string       `json:"searchId"`
	Intent    model.Intent `json:"intent"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewEvent builds a no-results event for a search
func NewEvent(searchID string, intent model.Intent, at time.Time) Event {
	return Event{Type: EventNoResults, SearchID: searchID, Intent: intent, CreatedAt: at}
}

// Notifier delivers no-results events to one channel
type Notifier interface {
	Name() string
	NotifyNoResults(ctx context.Context, ev Event) error
}

// Multi fans an event out to every configured channel. One failing channel
// does not stop the others.
type Multi []Notifier

// Name implements Notifier
func (m Multi) Name() string { return "multi" }

// NotifyNoResults implements Notifier
func (m Multi) NotifyNoResults(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyNoResults(ctx, ev); err != nil {
			metrics.NotificationsTotal.WithLabelValues(n.Name(), "error").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(n.Name(), "ok").Inc()
	}
	return errors.Join(errs...)
}
