package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// TaskStatusRepository manages task statuses.
type TaskStatusRepository struct {
	db *gorm.DB
}

func NewTaskStatusRepository(db *gorm.DB) *TaskStatusRepository {
	return &TaskStatusRepository{db: db}
}

func (r *TaskStatusRepository) Create(ctx context.Context, status *model.TaskStatus) error {
	if err := r.db.WithContext(ctx).Create(status).Error; err != nil {
		return fmt.Errorf("create task status: %w", translate(err))
	}
	return nil
}

func (r *TaskStatusRepository) Save(ctx context.Context, status *model.TaskStatus) error {
	if err := r.db.WithContext(ctx).Save(status).Error; err != nil {
		return fmt.Errorf("save task status: %w", translate(err))
	}
	return nil
}

func (r *TaskStatusRepository) FindByID(ctx context.Context, id uint) (*model.TaskStatus, error) {
	var status model.TaskStatus
	if err := r.db.WithContext(ctx).First(&status, id).Error; err != nil {
		return nil, translate(err)
	}
	return &status, nil
}

func (r *TaskStatusRepository) FindBySlug(ctx context.Context, slug string) (*model.TaskStatus, error) {
	var status model.TaskStatus
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&status).Error; err != nil {
		return nil, translate(err)
	}
	return &status, nil
}

func (r *TaskStatusRepository) FindByName(ctx context.Context, name string) (*model.TaskStatus, error) {
	var status model.TaskStatus
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error; err != nil {
		return nil, translate(err)
	}
	return &status, nil
}

func (r *TaskStatusRepository) ListAll(ctx context.Context) ([]model.TaskStatus, error) {
	var statuses []model.TaskStatus
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *TaskStatusRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.TaskStatus{}, id).Error; err != nil {
		return fmt.Errorf("delete task status: %w", translate(err))
	}
	return nil
}
