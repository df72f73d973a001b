package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

// TaskFilter narrows List results. The zero value matches everything the
// owner has.
type TaskFilter struct {
	Completed *bool
	Search    string // case-insensitive substring match on title OR description
}

// TaskCountFilter narrows Count results. Due bounds are half-open:
// DueFrom is inclusive, DueBefore exclusive.
type TaskCountFilter struct {
	Completed *bool
	DueFrom   *time.Time
	DueBefore *time.Time
}

// TaskRepository defines task store persistence operations. It performs no
// authorization of its own: every method takes the owner id and callers are
// responsible for passing the authenticated user's.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter, sortField, order string, limit int) ([]model.Task, error)
	UpdateFields(ctx context.Context, id, ownerID uuid.UUID, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) (int64, error)
	Count(ctx context.Context, ownerID uuid.UUID, filter TaskCountFilter) (int64, error)
}

// likeEscaper neutralizes LIKE wildcards so a search term matches literally;
// without it a search for "100%" matches every task.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository builds a GORM-backed repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter, sortField, order string, limit int) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	var tasks []model.Task
	err := q.Order(sortField + " " + order).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) UpdateFields(ctx context.Context, id, ownerID uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *taskRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.Task{})
	return res.RowsAffected, res.Error
}

func (r *taskRepository) Count(ctx context.Context, ownerID uuid.UUID, filter TaskCountFilter) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).Where("user_id = ?", ownerID)
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.DueFrom != nil {
		q = q.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueBefore != nil {
		q = q.Where("due_date < ?", *filter.DueBefore)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
