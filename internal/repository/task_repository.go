package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-manager/internal/model"
)

// Scope narrows a task query. Scopes passed together are combined with AND.
type Scope = func(*gorm.DB) *gorm.DB

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Status").
		Preload("Assignee").
		Preload("Labels", func(db *gorm.DB) *gorm.DB { return db.Order("labels.id ASC") })
}

// Create inserts the task and its label links. Status, assignee and labels
// must already exist; they are referenced, never upserted.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit("Status", "Assignee", "Labels.*").Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", translate(err))
	}
	return nil
}

// Save updates the task's own columns, including clearing the assignee.
// Label links are left alone; use ReplaceLabels for those.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", translate(err))
	}
	return nil
}

// ReplaceLabels makes labels the task's complete label set.
func (r *TaskRepository) ReplaceLabels(ctx context.Context, task *model.Task, labels []model.Label) error {
	assoc := r.db.WithContext(ctx).Model(task).Association("Labels")
	var err error
	if len(labels) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(labels)
	}
	if err != nil {
		return fmt.Errorf("replace task labels: %w", translate(err))
	}
	task.Labels = labels
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.withRefs(ctx).First(&task, id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// List returns tasks matching every scope, ordered by id.
func (r *TaskRepository) List(ctx context.Context, scopes ...Scope) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.withRefs(ctx).Scopes(scopes...).Order("tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, statusID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("status_id = ?", statusID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks by status: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) CountByAssignee(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("assignee_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks by assignee: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) CountByLabel(ctx context.Context, labelID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Table("task_labels").Where("label_id = ?", labelID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks by label: %w", err)
	}
	return n, nil
}

// Delete removes a task and its label links. The labels themselves stay.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	task := model.Task{ID: id}
	if err := r.db.WithContext(ctx).Model(&task).Association("Labels").Clear(); err != nil {
		return fmt.Errorf("delete task labels: %w", err)
	}
	res := r.db.WithContext(ctx).Delete(&task)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
