package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pomodoro/zenpomo/internal/model"
)

// HistoryRepository stores completion records.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const historyColumns = `id, name, date, total_focus_sessions,
		        focus_duration_seconds, short_break_duration_seconds, long_break_duration_seconds,
		        focus_reps_per_block, long_break_count, created_at`

// Save inserts a new record. Saving the same id twice fails.
func (r *HistoryRepository) Save(ctx context.Context, record model.CompletionRecord) error {
	if err := insertRecord(ctx, r.db, record, false); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Import upserts records by id in a single transaction.
func (r *HistoryRepository) Import(ctx context.Context, records []model.CompletionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, record := range records {
		if err := insertRecord(ctx, tx, record, true); err != nil {
			return fmt.Errorf("import record %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Get(ctx context.Context, id string) (*model.CompletionRecord, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+historyColumns+`
		 FROM completion_records WHERE id = ?`,
		id,
	)
	return scanCompletionRecord(row)
}

// GetAll returns every record, oldest first.
func (r *HistoryRepository) GetAll(ctx context.Context) ([]model.CompletionRecord, error) {
	return r.query(ctx,
		`SELECT `+historyColumns+`
		 FROM completion_records
		 ORDER BY created_at ASC, id ASC`,
	)
}

// List returns the newest records first.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]model.CompletionRecord, error) {
	return r.query(ctx,
		`SELECT `+historyColumns+`
		 FROM completion_records
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// ListBetween returns records whose date falls within [from, to].
func (r *HistoryRepository) ListBetween(ctx context.Context, from, to string) ([]model.CompletionRecord, error) {
	return r.query(ctx,
		`SELECT `+historyColumns+`
		 FROM completion_records
		 WHERE date >= ? AND date <= ?
		 ORDER BY date ASC, created_at ASC`,
		from,
		to,
	)
}

func (r *HistoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM completion_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *HistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM completion_records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	return nil
}

func (r *HistoryRepository) query(ctx context.Context, query string, args ...interface{}) ([]model.CompletionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]model.CompletionRecord, 0)
	for rows.Next() {
		record, scanErr := scanCompletionRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertRecord(ctx context.Context, db execer, record model.CompletionRecord, upsert bool) error {
	query := `INSERT INTO completion_records (` + historyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += ` ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			total_focus_sessions = excluded.total_focus_sessions,
			focus_duration_seconds = excluded.focus_duration_seconds,
			short_break_duration_seconds = excluded.short_break_duration_seconds,
			long_break_duration_seconds = excluded.long_break_duration_seconds,
			focus_reps_per_block = excluded.focus_reps_per_block,
			long_break_count = excluded.long_break_count,
			created_at = excluded.created_at`
	}

	cfg := record.Configuration
	_, err := db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Name,
		record.Date,
		record.TotalFocusSessionsCompleted,
		cfg.FocusDurationSeconds,
		cfg.ShortBreakDurationSeconds,
		cfg.LongBreakDurationSeconds,
		cfg.FocusRepsPerBlock,
		cfg.LongBreakCount,
		formatTime(record.CreatedAt),
	)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCompletionRecord(s scanner) (*model.CompletionRecord, error) {
	record := model.CompletionRecord{}
	var createdAt string
	err := s.Scan(
		&record.ID,
		&record.Name,
		&record.Date,
		&record.TotalFocusSessionsCompleted,
		&record.Configuration.FocusDurationSeconds,
		&record.Configuration.ShortBreakDurationSeconds,
		&record.Configuration.LongBreakDurationSeconds,
		&record.Configuration.FocusRepsPerBlock,
		&record.Configuration.LongBreakCount,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse record created_at: %w", err)
	}
	record.CreatedAt = parsedCreatedAt
	return &record, nil
}
