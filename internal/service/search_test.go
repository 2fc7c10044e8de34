package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelsearch/internal/model"
)

type testService struct {
	*SearchService
	store    *fakeStore
	audit    *fakeAuditStore
	notifier *fakeNotifier
	recorder *AuditRecorder
}

func newTestService(t *testing.T, store InventoryStore, extractor IntentExtractor) *testService {
	t.Helper()
	auditStore := &fakeAuditStore{}
	notifier := &fakeNotifier{}
	recorder := NewAuditRecorder(auditStore, notifier, nil)
	t.Cleanup(recorder.Wait)

	var ids atomic.Int64
	svc := NewSearchService(SearchOptions{
		Extractor:  extractor,
		Adapters:   NewAdapters(store, model.DefaultSchema(), 20),
		Normalizer: NewNormalizer(model.DefaultSchema(), "USD"),
		Audit:      recorder,
		WidenDays:  7,
		Now:        fixedClock(),
		NewID:      func() string { return fmt.Sprintf("search-%d", ids.Add(1)) },
	})

	ts := &testService{SearchService: svc, audit: auditStore, notifier: notifier, recorder: recorder}
	if fs, ok := store.(*fakeStore); ok {
		ts.store = fs
	}
	return ts
}

func rowsOf(n int, prefix string) []model.Record {
	rows := make([]model.Record, n)
	for i := range rows {
		rows[i] = model.Record{"id": fmt.Sprintf("%s-%d", prefix, i)}
	}
	return rows
}

func TestSearchGenevaToNice(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, nil)

	resp, err := svc.Search(context.Background(), &model.SearchRequest{
		Query: "private jet from Geneva to Nice in mid October 2025 for 4 passengers",
	})
	require.NoError(t, err)

	intent := resp.Intent
	assert.Equal(t, model.ServiceJets, intent.ServiceType)
	assert.Equal(t, "Geneva", *intent.FromLocation)
	assert.Equal(t, "Nice", *intent.ToLocation)
	assert.Equal(t, 4, *intent.Passengers)

	require.NotNil(t, resp.DateRange)
	assert.Equal(t, "2025-10-11", resp.DateRange.From.String())
	assert.Equal(t, "2025-10-20", resp.DateRange.End().String())
	assert.Equal(t, "2025-10-11", intent.DateStart.String())
	assert.Equal(t, "2025-10-20", intent.DateEnd.String())

	assert.False(t, resp.NeedsMoreInfo)
	assert.Empty(t, resp.MissingFields)
	assert.Empty(t, resp.FollowUpPrompt)
	assert.Equal(t, "search-1", resp.SearchID)
}

func TestSearchEmptyLegsFromZurich(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, nil)

	resp, err := svc.Search(context.Background(), &model.SearchRequest{Query: "empty legs from Zurich"})
	require.NoError(t, err)

	assert.Equal(t, model.ServiceEmptyLegs, resp.Intent.ServiceType)
	assert.Equal(t, "Zurich", *resp.Intent.FromLocation)
	assert.True(t, resp.NeedsMoreInfo)
	assert.Equal(t, []string{"destination", "date"}, resp.MissingFields)
	assert.NotEmpty(t, resp.FollowUpPrompt)
	assert.Nil(t, resp.DateRange)
}

func TestSearchUnknownTypeNeverNeedsMoreInfo(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, nil)

	resp, err := svc.Search(context.Background(), &model.SearchRequest{Query: "somewhere warm"})
	require.NoError(t, err)
	assert.False(t, resp.NeedsMoreInfo)
	assert.Empty(t, resp.MissingFields)
}

func TestSearchTotalIsSumOfCategories(t *testing.T) {
	counts := map[string]int{
		"empty_legs": 2, "jets": 3, "helicopters": 0, "luxury_cars": 1,
		"yachts": 4, "experiences": 0, "transfers": 5,
	}
	store := &fakeStore{query: func(table string, _ model.InventoryFilter) ([]model.Record, error) {
		return rowsOf(counts[table], table), nil
	}}
	svc := newTestService(t, store, nil)

	resp, err := svc.Search(context.Background(), &model.SearchRequest{Query: "jet from Geneva to Nice"})
	require.NoError(t, err)

	sum := 0
	for _, st := range model.ServiceTypes {
		sum += len(resp.Results.For(st))
	}
	assert.Equal(t, 15, sum)
	assert.Equal(t, sum, resp.Results.Total())
	assert.Equal(t, model.TierExact, resp.FallbackTier)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded struct {
		Results struct {
			TotalResults int `json:"total_results"`
		} `json:"results"`
		Tabs []model.DisplayTab `json:"tabs"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, sum, decoded.Results.TotalResults)

	// empty categories get no tab
	require.Len(t, decoded.Tabs, 5)
	assert.Equal(t, []string{"empty_legs", "jets", "cars", "yachts", "transfers"}, []string{
		decoded.Tabs[0].ID, decoded.Tabs[1].ID, decoded.Tabs[2].ID, decoded.Tabs[3].ID, decoded.Tabs[4].ID,
	})
}

func TestSearchFaultIsolation(t *testing.T) {
	store := &fakeStore{query: func(table string, _ model.InventoryFilter) ([]model.Record, error) {
		switch table {
		case "jets":
			panic("driver bug")
		case "yachts":
			return nil, errors.New("relation \"yachts\" does not exist")
		}
		return rowsOf(1, table), nil
	}}
	svc := newTestService(t, store, nil)

	resp, err := svc.Search(context.Background(), &model.SearchRequest{Query: "trip from Geneva to Nice"})
	require.NoError(t, err)

	assert.Empty(t, resp.Results.Jets)
	assert.Empty(t, resp.Results.Yachts)
	assert.NotNil(t, resp.Results.Jets)
	for _, st := range []model.ServiceType{
		model.ServiceEmptyLegs, model.ServiceHelicopters, model.ServiceCars,
		model.ServiceExperiences, model.ServiceTransfers,
	} {
		assert.Len(t, resp.Results.For(st), 1, st)
	}
	assert.Equal(t, 5, resp.Results.Total())
}

func TestSearchEmptyLegFallback(t *testing.T) {
	const query = "empty legs from Geneva to Nice in mid October 2025"
	widenedFrom := model.NewDate(2025, time.October, 4)
	tier2Rows := rowsOf(2, "tier2")
	tier3Rows := rowsOf(3, "tier3")

	tests := []struct {
		name      string
		query     string
		rows      func(model.InventoryFilter) []model.Record
		wantTier  model.FallbackTier
		wantRows  []model.Record
		wantCalls int
	}{
		{
			name:      "Exact match",
			query:     query,
			rows:      func(model.InventoryFilter) []model.Record { return rowsOf(1, "exact") },
			wantTier:  model.TierExact,
			wantRows:  rowsOf(1, "exact"),
			wantCalls: 1,
		},
		{
			name:  "Destination dropped",
			query: query,
			rows: func(f model.InventoryFilter) []model.Record {
				if f.Destination == nil {
					return tier2Rows
				}
				return nil
			},
			wantTier:  model.TierNoDestination,
			wantRows:  tier2Rows,
			wantCalls: 2,
		},
		{
			name:  "Window widened",
			query: query,
			rows: func(f model.InventoryFilter) []model.Record {
				if f.Destination == nil && f.Window != nil && f.Window.From == widenedFrom {
					return tier3Rows
				}
				return nil
			},
			wantTier:  model.TierWidenedWindow,
			wantRows:  tier3Rows,
			wantCalls: 3,
		},
		{
			name:      "Exhausted",
			query:     query,
			rows:      func(model.InventoryFilter) []model.Record { return nil },
			wantTier:  model.TierExhausted,
			wantRows:  []model.Record{},
			wantCalls: 3,
		},
		{
			name:  "No destination skips tier 2",
			query: "empty legs from Geneva in mid October 2025",
			rows: func(f model.InventoryFilter) []model.Record {
				if f.Window != nil && f.Window.From == widenedFrom {
					return tier3Rows
				}
				return nil
			},
			wantTier:  model.TierWidenedWindow,
			wantRows:  tier3Rows,
			wantCalls: 2,
		},
		{
			name:      "No window skips tier 3",
			query:     "empty legs from Geneva to Nice",
			rows:      func(model.InventoryFilter) []model.Record { return nil },
			wantTier:  model.TierExhausted,
			wantRows:  []model.Record{},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{query: func(table string, f model.InventoryFilter) ([]model.Record, error) {
				if table != "empty_legs" {
					return nil, nil
				}
				return tt.rows(f), nil
			}}
			svc := newTestService(t, store, nil)

			resp, err := svc.Search(context.Background(), &model.SearchRequest{Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, resp.FallbackTier)
			assert.Equal(t, tt.wantRows, resp.Results.EmptyLegs)
			assert.Len(t, store.callsFor("empty_legs"), tt.wantCalls)
		})
	}
}

func TestSearchWidenedWindow(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store, nil)

	_, err := svc.Search(context.Background(), &model.SearchRequest{
		Query: "empty legs from Geneva to Nice in mid October 2025",
	})
	require.NoError(t, err)

	calls := store.callsFor("empty_legs")
	require.Len(t, calls, 3)
	last := calls[2].filter
	assert.Nil(t, last.Destination)
	assert.Equal(t, "Geneva", *last.Origin)
	assert.Equal(t, "2025-10-04", last.Window.From.String())
	assert.Equal(t, "2025-10-27", last.Window.End().String())
}

func TestSearchInvalidInput(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, nil)

	tests := []struct {
		name string
		req  *model.SearchRequest
		want error
	}{
		{"Nil request", nil, ErrEmptyQuery},
		{"Blank query", &model.SearchRequest{Query: "  "}, ErrEmptyQuery},
		{"Unknown role", &model.SearchRequest{
			Query:   "jet to Nice",
			History: []model.Message{{Role: "robot", Content: "hello"}},
		}, ErrInvalidHistory},
		{"Empty history content", &model.SearchRequest{
			Query:   "jet to Nice",
			History: []model.Message{{Role: model.RoleAssistant, Content: " "}},
		}, ErrInvalidHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)

			_, err = svc.ParseIntent(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, svc.store.calls)
}

func TestSearchUsesExtractor(t *testing.T) {
	extractor := &fakeExtractor{intent: &model.Intent{
		ServiceType: model.ServiceYachts,
		ToLocation:  strPtr("Monaco"),
		Passengers:  intPtr(8),
	}}
	store := &fakeStore{}
	svc := newTestService(t, store, extractor)

	history := []model.Message{
		{Role: model.RoleUser, Content: "I want a yacht in Monaco"},
		{Role: model.RoleAssistant, Content: "How many guests?"},
	}
	resp, err := svc.Search(context.Background(), &model.SearchRequest{
		Query:   "8 guests, late August 2026",
		History: history,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ServiceYachts, resp.Intent.ServiceType)
	assert.Equal(t, "8 guests, late August 2026", resp.Intent.RawQuery)
	assert.Equal(t, "2026-08-21", resp.DateRange.From.String())
	assert.False(t, resp.NeedsMoreInfo)

	require.Len(t, extractor.messages, 3)
	assert.Equal(t, model.Message{Role: model.RoleUser, Content: "8 guests, late August 2026"}, extractor.messages[2])

	yachtCalls := store.callsFor("yachts")
	require.Len(t, yachtCalls, 1)
	assert.Equal(t, "Monaco", *yachtCalls[0].filter.Location)
	assert.Equal(t, 8, *yachtCalls[0].filter.MinCapacity)
}

func TestSearchExtractorFailureFallsBack(t *testing.T) {
	for _, err := range []error{errors.New("model overloaded"), ErrExtractorDisabled} {
		svc := newTestService(t, &fakeStore{}, &fakeExtractor{err: err})

		resp, searchErr := svc.Search(context.Background(), &model.SearchRequest{
			Query: "private jet from Geneva to Nice in mid October 2025 for 4 passengers",
		})
		require.NoError(t, searchErr)
		assert.Equal(t, model.ServiceJets, resp.Intent.ServiceType)
		assert.Equal(t, "Nice", *resp.Intent.ToLocation)
	}
}

func TestSearchRecordsAudit(t *testing.T) {
	store := &fakeStore{query: func(table string, _ model.InventoryFilter) ([]model.Record, error) {
		if table == "jets" {
			return rowsOf(2, "jet"), nil
		}
		return nil, nil
	}}
	svc := newTestService(t, store, nil)

	history := []model.Message{{Role: model.RoleUser, Content: "hello"}}
	resp, err := svc.Search(context.Background(), &model.SearchRequest{Query: "jet from Geneva to Nice", History: history})
	require.NoError(t, err)
	svc.recorder.Wait()

	records := svc.audit.all()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, resp.SearchID, rec.ID)
	assert.True(t, rec.HasResults)
	assert.Equal(t, 2, rec.ResultsCount)
	assert.Equal(t, 2, rec.ResultsSummary["jets"])
	assert.Equal(t, "jet from Geneva to Nice", rec.Intent.RawQuery)
	assert.Len(t, rec.Conversation, 2)
	assert.Empty(t, svc.notifier.all())
}

func TestSearchNoResultsNotifies(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, nil)

	resp, err := svc.Search(context.Background(), &model.SearchRequest{Query: "helicopter from Nice to Courchevel"})
	require.NoError(t, err)
	svc.recorder.Wait()

	records := svc.audit.all()
	require.Len(t, records, 1)
	assert.False(t, records[0].HasResults)

	events := svc.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, resp.SearchID, events[0].SearchID)
}

// blockingStore holds queries until their context is cancelled while block is set
type blockingStore struct {
	block   atomic.Bool
	started chan struct{}
	once    sync.Once
}

func (b *blockingStore) QueryInventory(ctx context.Context, _ model.CategorySchema, _ model.InventoryFilter) ([]model.Record, error) {
	if !b.block.Load() {
		return nil, nil
	}
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSearchSupersededBySameSession(t *testing.T) {
	store := &blockingStore{started: make(chan struct{})}
	store.block.Store(true)
	svc := newTestService(t, store, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Search(context.Background(), &model.SearchRequest{Query: "jet to Nice", SessionID: "s-1"})
		firstErr <- err
	}()

	select {
	case <-store.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first search never reached the store")
	}
	store.block.Store(false)

	resp, err := svc.Search(context.Background(), &model.SearchRequest{Query: "jet to Monaco", SessionID: "s-1"})
	require.NoError(t, err)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("first search did not finish")
	}

	svc.recorder.Wait()
	records := svc.audit.all()
	require.Len(t, records, 1)
	assert.Equal(t, resp.SearchID, records[0].ID)
}

func TestSearchCancelledContext(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Search(ctx, &model.SearchRequest{Query: "jet to Nice"})
	assert.ErrorIs(t, err, context.Canceled)

	// still audited, but a disconnect is not a demand gap
	svc.recorder.Wait()
	records := svc.audit.all()
	require.Len(t, records, 1)
	assert.True(t, records[0].Interrupted)
	assert.Equal(t, "jet to Nice", records[0].Intent.RawQuery)
	assert.Empty(t, svc.notifier.all())
}

func TestSearchStreamEvents(t *testing.T) {
	extractor := &fakeStreamingExtractor{
		fakeExtractor: fakeExtractor{intent: &model.Intent{ServiceType: model.ServiceEmptyLegs}},
		thinking:      []string{"Looking for a repositioning flight"},
		content:       []string{`{"service_type":`, `"empty_legs"}`},
	}
	svc := newTestService(t, &fakeStore{}, extractor)

	var events []string
	resp, err := svc.SearchStream(context.Background(), &model.SearchRequest{
		Query: "empty legs from Geneva to Nice in mid October 2025",
	}, func(event string, _ any) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.TierExhausted, resp.FallbackTier)
	assert.Equal(t, []string{
		"parsing", "thinking", "content", "content", "intent", "searching", "fallback", "fallback",
	}, events)
}

func TestSearchStreamCallbackErrorAborts(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store, nil)
	stop := errors.New("client disconnected")

	_, err := svc.SearchStream(context.Background(), &model.SearchRequest{Query: "jet to Nice"}, func(event string, _ any) error {
		if event == "intent" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Empty(t, store.calls)
}

func TestParseIntent(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store, nil)

	resp, err := svc.ParseIntent(context.Background(), &model.SearchRequest{
		Query: "private jet from Geneva to Nice in the second week of October 2025",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ServiceJets, resp.Intent.ServiceType)
	assert.Equal(t, "2025-10-08", resp.DateRange.From.String())
	assert.Equal(t, "2025-10-14", resp.DateRange.End().String())
	assert.False(t, resp.Validation.Complete)
	assert.Equal(t, []string{"passenger count"}, resp.Validation.MissingFields)
	assert.Empty(t, store.calls)
}
