package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saurabh-eg/Tasksync/internal/cache"
	apperrors "github.com/saurabh-eg/Tasksync/internal/errors"
	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/repository"
)

// listLimit is the hard cap on List results. There is no pagination beyond it.
const listLimit = 1000

const statsCacheTTL = 30 * time.Second

// sortFields is the whitelist for ListTasks ordering. Anything else silently
// falls back to created_at.
var sortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"title":      true,
}

// TaskListOptions carries the optional List query parameters.
type TaskListOptions struct {
	Completed *bool
	Search    string
	SortBy    string
	Order     string
}

// TaskPatch is a partial update: only non-nil fields are applied.
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   *bool      `json:"completed"`
}

// TaskStats aggregates per-user task counters.
type TaskStats struct {
	TotalTasks     int64 `json:"total_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	PendingTasks   int64 `json:"pending_tasks"`
	DueToday       int64 `json:"due_today"`
	Overdue        int64 `json:"overdue"`
}

// TaskService exposes owner-scoped task operations. The owner id must come
// from the authentication gate; task ids arrive as raw path strings and a
// malformed id is reported exactly like a missing task.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, title, description string, dueDate *time.Time) (*model.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID, opts TaskListOptions) ([]model.Task, error)
	GetTask(ctx context.Context, ownerID uuid.UUID, taskID string) (*model.Task, error)
	UpdateTask(ctx context.Context, ownerID uuid.UUID, taskID string, patch TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, ownerID uuid.UUID, taskID string) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error)
}

type taskService struct {
	repo  repository.TaskRepository
	cache *cache.Client
}

// NewTaskService builds a TaskService with repository and cache.
func NewTaskService(repo repository.TaskRepository, cache *cache.Client) TaskService {
	return &taskService{repo: repo, cache: cache}
}

func (s *taskService) statsCacheKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("task_stats:%s", ownerID)
}

// CreateTask inserts a new task owned by ownerID.
func (s *taskService) CreateTask(ctx context.Context, ownerID uuid.UUID, title, description string, dueDate *time.Time) (*model.Task, error) {
	task := &model.Task{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Completed:   false,
		UserID:      ownerID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	_ = s.cache.Delete(ctx, s.statsCacheKey(ownerID))
	return task, nil
}

// ListTasks returns up to listLimit of the owner's tasks.
func (s *taskService) ListTasks(ctx context.Context, ownerID uuid.UUID, opts TaskListOptions) ([]model.Task, error) {
	sortBy := opts.SortBy
	if !sortFields[sortBy] {
		sortBy = "created_at"
	}
	dir := "asc"
	if opts.Order == "" || opts.Order == "desc" {
		dir = "desc"
	}

	filter := repository.TaskFilter{
		Completed: opts.Completed,
		Search:    opts.Search,
	}
	tasks, err := s.repo.List(ctx, ownerID, filter, sortBy, dir, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask fetches a single task scoped to its owner.
func (s *taskService) GetTask(ctx context.Context, ownerID uuid.UUID, taskID string) (*model.Task, error) {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, apperrors.ErrTaskNotFound
	}

	task, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// UpdateTask applies the non-nil patch fields and always refreshes updated_at,
// then returns the post-update record.
func (s *taskService) UpdateTask(ctx context.Context, ownerID uuid.UUID, taskID string, patch TaskPatch) (*model.Task, error) {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, apperrors.ErrTaskNotFound
	}

	fields := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.DueDate != nil {
		fields["due_date"] = *patch.DueDate
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}

	matched, err := s.repo.UpdateFields(ctx, id, ownerID, fields)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if matched == 0 {
		return nil, apperrors.ErrTaskNotFound
	}

	_ = s.cache.Delete(ctx, s.statsCacheKey(ownerID))

	task, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task scoped to its owner. Deleting a task that does not
// exist (or belongs to someone else) fails with not found; repeating a delete
// is the same failure, not an error state.
func (s *taskService) DeleteTask(ctx context.Context, ownerID uuid.UUID, taskID string) error {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return apperrors.ErrTaskNotFound
	}

	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if deleted == 0 {
		return apperrors.ErrTaskNotFound
	}

	_ = s.cache.Delete(ctx, s.statsCacheKey(ownerID))
	return nil
}

// Stats computes the per-user counters. pending is derived from total and
// completed so the three are consistent by construction; due_today and overdue
// use the local calendar day. Results are cached briefly and the cache is
// invalidated on every mutation.
func (s *taskService) Stats(ctx context.Context, ownerID uuid.UUID) (*TaskStats, error) {
	key := s.statsCacheKey(ownerID)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached TaskStats
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	total, err := s.repo.Count(ctx, ownerID, repository.TaskCountFilter{})
	if err != nil {
		return nil, fmt.Errorf("count total: %w", err)
	}

	completedFlag := true
	completed, err := s.repo.Count(ctx, ownerID, repository.TaskCountFilter{Completed: &completedFlag})
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	pendingFlag := false

	dueToday, err := s.repo.Count(ctx, ownerID, repository.TaskCountFilter{
		Completed: &pendingFlag,
		DueFrom:   &todayStart,
		DueBefore: &todayEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("count due today: %w", err)
	}

	overdue, err := s.repo.Count(ctx, ownerID, repository.TaskCountFilter{
		Completed: &pendingFlag,
		DueBefore: &todayStart,
	})
	if err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}

	stats := &TaskStats{
		TotalTasks:     total,
		CompletedTasks: completed,
		PendingTasks:   total - completed,
		DueToday:       dueToday,
		Overdue:        overdue,
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, key, payload, statsCacheTTL)
	}
	return stats, nil
}
