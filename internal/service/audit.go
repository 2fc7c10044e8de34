package service

import (
	"context"
	"log"
	"strings"
	"sync"

	"travelsearch/internal/metrics"
	"travelsearch/internal/model"
	"travelsearch/internal/notify"
)

// AuditStore appends audit records
type AuditStore interface {
	InsertAudit(ctx context.Context, rec *model.AuditRecord) error
}

// QueryEmbedder turns texts into vectors
type QueryEmbedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// AuditRecorder persists one audit record per search off the request path
// and raises a notification when the search found nothing
type AuditRecorder struct {
	store    AuditStore
	notifier notify.Notifier
	embedder QueryEmbedder
	wg       sync.WaitGroup
}

// NewAuditRecorder creates a recorder. notifier and embedder may be nil.
func NewAuditRecorder(store AuditStore, notifier notify.Notifier, embedder QueryEmbedder) *AuditRecorder {
	return &AuditRecorder{store: store, notifier: notifier, embedder: embedder}
}

// Record dispatches the write and returns immediately
func (a *AuditRecorder) Record(rec model.AuditRecord) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.record(context.Background(), &rec)
	}()
}

// Wait blocks until every dispatched record has been handled
func (a *AuditRecorder) Wait() {
	a.wg.Wait()
}

func (a *AuditRecorder) record(ctx context.Context, rec *model.AuditRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[audit] panic while recording %s: %v", rec.ID, r)
			metrics.AuditWritesTotal.WithLabelValues("error").Inc()
		}
	}()

	if a.embedder != nil && strings.TrimSpace(rec.Intent.RawQuery) != "" {
		vectors, err := a.embedder.CreateEmbeddings(ctx, []string{rec.Intent.RawQuery})
		if err != nil {
			log.Printf("[audit] query embedding failed for %s: %v", rec.ID, err)
		} else if len(vectors) == 1 {
			rec.QueryEmbedding = vectors[0]
		}
	}

	if a.store != nil {
		if err := a.store.InsertAudit(ctx, rec); err != nil {
			log.Printf("[audit] failed to persist %s: %v", rec.ID, err)
			metrics.AuditWritesTotal.WithLabelValues("error").Inc()
		} else {
			metrics.AuditWritesTotal.WithLabelValues("ok").Inc()
		}
	}

	if !rec.HasResults && !rec.Interrupted && a.notifier != nil {
		ev := notify.NewEvent(rec.ID, rec.Intent, rec.CreatedAt)
		if err := a.notifier.NotifyNoResults(ctx, ev); err != nil {
			log.Printf("[audit] no-results notification failed for %s: %v", rec.ID, err)
		}
	}
}
