package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "pomodoro/zenpomo/internal/errors"
	"pomodoro/zenpomo/internal/model"
	"pomodoro/zenpomo/internal/repository"
)

type TaskService struct {
	repo     *repository.TaskRepository
	pomodoro *PomodoroService
	now      func() time.Time
}

type SaveTaskInput struct {
	ID            string
	Name          string
	Configuration model.Configuration
}

func NewTaskService(repo *repository.TaskRepository, pomodoro *PomodoroService) *TaskService {
	return &TaskService{repo: repo, pomodoro: pomodoro, now: time.Now}
}

// Save creates a task when input.ID is empty and replaces it otherwise.
func (s *TaskService) Save(ctx context.Context, input SaveTaskInput) (*model.PlannedTask, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("invalid_task_name", "task name must not be empty")
	}
	if err := input.Configuration.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task := &model.PlannedTask{
		ID:            input.ID,
		Name:          name,
		Configuration: input.Configuration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	} else {
		existing, err := s.repo.Get(ctx, task.ID)
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("task_not_found", "planned task not found")
		}
		if err != nil {
			return nil, apperrors.Internal("failed to get task")
		}
		task.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, apperrors.Internal("failed to save task")
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*model.PlannedTask, error) {
	task, err := s.repo.Get(ctx, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("task_not_found", "planned task not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get task")
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context) ([]model.PlannedTask, error) {
	tasks, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list tasks")
	}
	return tasks, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("task_not_found", "planned task not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete task")
	}
	return nil
}

// StartTask replaces the current plan with one built from the task's
// configuration and starts its first focus session.
func (s *TaskService) StartTask(ctx context.Context, id string) (*StateView, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.pomodoro.StartPlan(ctx, task.Configuration, task.Name)
}
