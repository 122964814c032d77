package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pomodoro/zenpomo/internal/model"
)

// TaskRepository stores planned tasks, each with its own configuration.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Save inserts the task or replaces an existing one with the same id.
func (r *TaskRepository) Save(ctx context.Context, task *model.PlannedTask) error {
	cfg := task.Configuration
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO planned_tasks (
			id, name, focus_duration_seconds, short_break_duration_seconds,
			long_break_duration_seconds, focus_reps_per_block, long_break_count,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			focus_duration_seconds = excluded.focus_duration_seconds,
			short_break_duration_seconds = excluded.short_break_duration_seconds,
			long_break_duration_seconds = excluded.long_break_duration_seconds,
			focus_reps_per_block = excluded.focus_reps_per_block,
			long_break_count = excluded.long_break_count,
			updated_at = excluded.updated_at`,
		task.ID,
		task.Name,
		cfg.FocusDurationSeconds,
		cfg.ShortBreakDurationSeconds,
		cfg.LongBreakDurationSeconds,
		cfg.FocusRepsPerBlock,
		cfg.LongBreakCount,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*model.PlannedTask, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, name, focus_duration_seconds, short_break_duration_seconds,
		        long_break_duration_seconds, focus_reps_per_block, long_break_count,
		        created_at, updated_at
		 FROM planned_tasks WHERE id = ?`,
		id,
	)
	return scanPlannedTask(row)
}

func (r *TaskRepository) GetAll(ctx context.Context) ([]model.PlannedTask, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, name, focus_duration_seconds, short_break_duration_seconds,
		        long_break_duration_seconds, focus_reps_per_block, long_break_count,
		        created_at, updated_at
		 FROM planned_tasks
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.PlannedTask, 0)
	for rows.Next() {
		task, scanErr := scanPlannedTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM planned_tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
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

func scanPlannedTask(s scanner) (*model.PlannedTask, error) {
	task := model.PlannedTask{}
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&task.ID,
		&task.Name,
		&task.Configuration.FocusDurationSeconds,
		&task.Configuration.ShortBreakDurationSeconds,
		&task.Configuration.LongBreakDurationSeconds,
		&task.Configuration.FocusRepsPerBlock,
		&task.Configuration.LongBreakCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse task created_at: %w", err)
	}
	task.CreatedAt = parsedCreatedAt

	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse task updated_at: %w", err)
	}
	task.UpdatedAt = parsedUpdatedAt
	return &task, nil
}
