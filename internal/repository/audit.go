package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"travelsearch/internal/model"
)

// InsertAudit appends one search audit row. Rows are never updated.
func (r *PostgresRepository) InsertAudit(ctx context.Context, rec *model.AuditRecord) error {
	intentJSON, err := json.Marshal(rec.Intent)
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}
	summaryJSON, err := json.Marshal(rec.ResultsSummary)
	if err != nil {
		return fmt.Errorf("failed to encode results summary: %w", err)
	}
	conversation := rec.Conversation
	if conversation == nil {
		conversation = []model.Message{}
	}
	conversationJSON, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}

	var serviceType interface{}
	if rec.Intent.ServiceType != "" {
		serviceType = string(rec.Intent.ServiceType)
	}

	var embedding interface{}
	if len(rec.QueryEmbedding) > 0 {
		embedding = pgvector.NewVector(rec.QueryEmbedding)
	}

	query := `
		INSERT INTO search_audit (
			id, raw_query, service_type, intent, has_results, results_count,
			results_summary, conversation_context, query_embedding, interrupted, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Intent.RawQuery,
		serviceType,
		intentJSON,
		rec.HasResults,
		rec.ResultsCount,
		summaryJSON,
		conversationJSON,
		embedding,
		rec.Interrupted,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}
