package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// LabelRepository manages labels.
type LabelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) Create(ctx context.Context, label *model.Label) error {
	if err := r.db.WithContext(ctx).Create(label).Error; err != nil {
		return fmt.Errorf("create label: %w", translate(err))
	}
	return nil
}

func (r *LabelRepository) Save(ctx context.Context, label *model.Label) error {
	if err := r.db.WithContext(ctx).Save(label).Error; err != nil {
		return fmt.Errorf("save label: %w", translate(err))
	}
	return nil
}

func (r *LabelRepository) FindByID(ctx context.Context, id uint) (*model.Label, error) {
	var label model.Label
	if err := r.db.WithContext(ctx).First(&label, id).Error; err != nil {
		return nil, translate(err)
	}
	return &label, nil
}

func (r *LabelRepository) FindByName(ctx context.Context, name string) (*model.Label, error) {
	var label model.Label
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&label).Error; err != nil {
		return nil, translate(err)
	}
	return &label, nil
}

// FindByIDs returns the labels among ids that exist, ordered by id.
// Missing ids are simply absent from the result.
func (r *LabelRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Label, error) {
	var labels []model.Label
	if len(ids) == 0 {
		return labels, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *LabelRepository) ListAll(ctx context.Context) ([]model.Label, error) {
	var labels []model.Label
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *LabelRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Label{}, id).Error; err != nil {
		return fmt.Errorf("delete label: %w", translate(err))
	}
	return nil
}
