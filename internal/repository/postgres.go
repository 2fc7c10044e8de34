package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"travelsearch/internal/model"
	"travelsearch/internal/utils"
)

// PostgresRepository handles inventory reads and audit writes
type PostgresRepository struct {
	db *sqlx.DB

	mu      sync.RWMutex
	columns map[string]map[string]bool // table -> lowercase column names
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresRepositoryWithDB(db), nil
}

// NewPostgresRepositoryWithDB wraps an existing connection pool
func NewPostgresRepositoryWithDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		columns: make(map[string]map[string]bool),
	}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// QueryInventory runs a read-only filtered query against one category table.
// Only alias columns that actually exist in the table are referenced.
func (r *PostgresRepository) QueryInventory(ctx context.Context, category model.CategorySchema, filter model.InventoryFilter) ([]model.Record, error) {
	existing, err := r.tableColumns(ctx, category.Table)
	if err != nil {
		return nil, err
	}

	query, args := buildInventoryQuery(category, existing, filter)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", category.Table, err)
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		rec := model.Record{}
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", category.Table, err)
		}
		records = append(records, rec.Normalize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", category.Table, err)
	}

	return records, nil
}

// tableColumns returns the column set of a table, reading information_schema
// once per table
func (r *PostgresRepository) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	r.mu.RLock()
	cols, ok := r.columns[table]
	r.mu.RUnlock()
	if ok {
		return cols, nil
	}

	var names []string
	query := `SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1`
	if err := r.db.SelectContext(ctx, &names, query, table); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	cols = make(map[string]bool, len(names))
	for _, n := range names {
		cols[strings.ToLower(n)] = true
	}

	r.mu.Lock()
	r.columns[table] = cols
	r.mu.Unlock()

	return cols, nil
}

// buildInventoryQuery renders the SELECT for one category. A filter whose
// field has no existing column is not applied.
func buildInventoryQuery(category model.CategorySchema, existing map[string]bool, filter model.InventoryFilter) (string, []interface{}) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	columns := func(f model.Field) []string {
		return utils.PresentColumns(category.Columns(f), existing)
	}

	addText := func(f model.Field, value *string) {
		if !model.HasText(value) {
			return
		}
		cond := utils.FuzzyColumnMatch(columns(f), fmt.Sprintf("%%s ILIKE $%d", argIndex))
		if cond == "" {
			return
		}
		whereClauses = append(whereClauses, cond)
		args = append(args, utils.LikePattern(*value))
		argIndex++
	}

	addText(model.FieldOrigin, filter.Origin)
	addText(model.FieldDestination, filter.Destination)
	addText(model.FieldLocation, filter.Location)

	if filter.Window != nil {
		cond := utils.FuzzyColumnMatch(columns(model.FieldDeparture), fmt.Sprintf("(%%s)::date BETWEEN $%d AND $%d", argIndex, argIndex+1))
		if cond != "" {
			whereClauses = append(whereClauses, cond)
			args = append(args, filter.Window.From, filter.Window.End())
			argIndex += 2
		}
	}

	if filter.MinCapacity != nil {
		if cond := utils.FuzzyColumnMatch(columns(model.FieldCapacity), fmt.Sprintf("%%s >= $%d", argIndex)); cond != "" {
			whereClauses = append(whereClauses, cond)
			args = append(args, *filter.MinCapacity)
			argIndex++
		}
	}

	if filter.MaxPrice != nil {
		if cond := utils.FuzzyColumnMatch(columns(model.FieldPrice), fmt.Sprintf("%%s <= $%d", argIndex)); cond != "" {
			whereClauses = append(whereClauses, cond)
			args = append(args, *filter.MaxPrice)
			argIndex++
		}
	}

	if filter.AvailableOnly {
		if cond := utils.FuzzyColumnMatch(columns(model.FieldAvailable), "%s = true"); cond != "" {
			whereClauses = append(whereClauses, cond)
		}
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", pq.QuoteIdentifier(category.Table), strings.Join(whereClauses, " AND "))

	if filter.OrderBy != "" {
		if order := columns(filter.OrderBy); len(order) > 0 {
			query += fmt.Sprintf(" ORDER BY %s ASC NULLS LAST", pq.QuoteIdentifier(order[0]))
		}
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	return query, args
}
