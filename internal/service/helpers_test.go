package service

import (
	"context"
	"sync"
	"time"

	"travelsearch/internal/model"
	"travelsearch/internal/notify"
)

func strPtr(s string) *string          { return &s }
func intPtr(v int) *int                { return &v }
func float64Ptr(v float64) *float64    { return &v }
func datePtr(d model.Date) *model.Date { return &d }

// fixedClock returns a clock frozen at 2025-09-01 noon UTC
func fixedClock() func() time.Time {
	t := time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

type storeCall struct {
	table  string
	filter model.InventoryFilter
}

// fakeStore answers QueryInventory through a per-call function and records every call
type fakeStore struct {
	mu    sync.Mutex
	calls []storeCall
	query func(table string, filter model.InventoryFilter) ([]model.Record, error)
}

func (f *fakeStore) QueryInventory(ctx context.Context, category model.CategorySchema, filter model.InventoryFilter) ([]model.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, storeCall{table: category.Table, filter: filter})
	f.mu.Unlock()

	if f.query == nil {
		return nil, nil
	}
	return f.query(category.Table, filter)
}

func (f *fakeStore) callsFor(table string) []storeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storeCall
	for _, c := range f.calls {
		if c.table == table {
			out = append(out, c)
		}
	}
	return out
}

// fakeExtractor returns a fixed intent or error
type fakeExtractor struct {
	intent   *model.Intent
	err      error
	messages []model.Message
}

func (f *fakeExtractor) ExtractIntent(_ context.Context, messages []model.Message) (*model.Intent, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.intent.Clone(), nil
}

// fakeStreamingExtractor emits chunks before answering
type fakeStreamingExtractor struct {
	fakeExtractor
	thinking []string
	content  []string
}

func (f *fakeStreamingExtractor) ExtractIntentStream(ctx context.Context, messages []model.Message, callback func(thinking, content string) error) (*model.Intent, error) {
	for _, t := range f.thinking {
		if err := callback(t, ""); err != nil {
			return nil, err
		}
	}
	for _, c := range f.content {
		if err := callback("", c); err != nil {
			return nil, err
		}
	}
	return f.ExtractIntent(ctx, messages)
}

type fakeAuditStore struct {
	mu      sync.Mutex
	records []model.AuditRecord
	err     error
}

func (f *fakeAuditStore) InsertAudit(_ context.Context, rec *model.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeAuditStore) all() []model.AuditRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.AuditRecord(nil), f.records...)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) NotifyNoResults(_ context.Context, ev notify.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakeNotifier) all() []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Event(nil), f.events...)
}
