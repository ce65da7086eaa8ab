package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"hookboard/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var columns = []string{
	"id", "action", "author", "from_branch", "to_branch",
	"received_at", "repository", "event_type", "raw_payload",
}

// BaseStorage provides common SQL storage implementations
type BaseStorage struct {
	db        *sql.DB
	dialect   SQLDialect
	tableName string
	// Use squirrel's placeholder format based on dialect
	builder sq.StatementBuilderType
}

// NewBaseStorage creates a new BaseStorage
func NewBaseStorage(db *sql.DB, dialect SQLDialect, tableName string) *BaseStorage {
	// Choose placeholder format based on dialect
	var builder sq.StatementBuilderType
	if dialect.PlaceholderFormat() == "?" {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	} else {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	return &BaseStorage{
		db:        db,
		dialect:   dialect,
		tableName: tableName,
		builder:   builder,
	}
}

// StoreEvent inserts a webhook event under a new time-ordered ID. Events are
// never updated once stored.
func (s *BaseStorage) StoreEvent(ctx context.Context, event *storage.Event) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating event id: %w", err)
	}

	query := s.builder.Insert(s.tableName).
		Columns(columns...).
		Values(
			id.String(),
			string(event.Action),
			event.Author,
			event.FromBranch,
			event.ToBranch,
			event.Timestamp.UTC(),
			event.Repository,
			event.EventType,
			string(event.RawPayload),
		)

	if _, err := query.RunWith(s.db).ExecContext(ctx); err != nil {
		return "", fmt.Errorf("inserting event: %w", err)
	}

	event.ID = id.String()
	return event.ID, nil
}

// ListEvents lists webhook events newest first
func (s *BaseStorage) ListEvents(ctx context.Context, opts storage.QueryOptions) ([]*storage.Event, error) {
	query := s.builder.Select(columns...).From(s.tableName)
	query = s.addQueryConditions(query, opts)

	// IDs are UUIDv7, so id order is insertion order for equal timestamps
	query = query.OrderBy("received_at DESC", "id DESC")

	limit, offset := opts.Limit, opts.Offset
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 && offset > 0 {
		// SQLite and MySQL reject OFFSET without LIMIT
		limit = math.MaxInt64
	}
	if limit > 0 {
		//nolint:gosec // Values are guaranteed to be non-negative
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		//nolint:gosec // Values are guaranteed to be non-negative
		query = query.Offset(uint64(offset))
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	events := make([]*storage.Event, 0)
	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning row: %w", scanErr)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// CountEvents returns the total number of events matching the given options
func (s *BaseStorage) CountEvents(ctx context.Context, opts storage.QueryOptions) (int, error) {
	query := s.builder.Select("COUNT(*)").From(s.tableName)
	query = s.addQueryConditions(query, opts)

	var count int
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}

	return count, nil
}

// GetStats returns event counts by action
func (s *BaseStorage) GetStats(ctx context.Context, since time.Time) (map[string]int64, error) {
	query := s.builder.
		Select("action", "COUNT(*) as count").
		From(s.tableName).
		GroupBy("action")

	if !since.IsZero() {
		query = query.Where(sq.GtOrEq{"received_at": since.UTC()})
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var (
			action string
			count  int64
		)
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		stats[action] = count
	}

	return stats, rows.Err()
}

// GetEvent returns a single event by ID
func (s *BaseStorage) GetEvent(ctx context.Context, id string) (*storage.Event, error) {
	query := s.builder.
		Select(columns...).
		From(s.tableName).
		Where(sq.Eq{"id": id}).
		Limit(1)

	event, err := scanEvent(query.RunWith(s.db).QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEventNotFound
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	return event, nil
}

// addQueryConditions adds WHERE conditions based on query options
func (s *BaseStorage) addQueryConditions(query sq.SelectBuilder, opts storage.QueryOptions) sq.SelectBuilder {
	if !opts.Since.IsZero() {
		query = query.Where(sq.GtOrEq{"received_at": opts.Since.UTC()})
	}
	return query
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*storage.Event, error) {
	var (
		event   storage.Event
		action  string
		payload []byte
	)
	err := row.Scan(
		&event.ID,
		&action,
		&event.Author,
		&event.FromBranch,
		&event.ToBranch,
		&event.Timestamp,
		&event.Repository,
		&event.EventType,
		&payload,
	)
	if err != nil {
		return nil, err
	}

	event.Action = storage.Action(action)
	event.Timestamp = event.Timestamp.UTC()
	event.RawPayload = json.RawMessage(payload)
	return &event, nil
}
