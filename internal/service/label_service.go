package service

import (
	"context"
	"errors"
	"log/slog"

	"task-manager/internal/model"
	"task-manager/internal/optional"
	"task-manager/internal/repository"
)

// LabelCreate is the payload for a new label.
type LabelCreate struct {
	Name string `json:"name"`
}

// LabelUpdate is a label change-set.
type LabelUpdate struct {
	Name optional.Field[string] `json:"name"`
}

// LabelService manages labels.
type LabelService struct {
	store *repository.Store
	guard *DeleteGuard
	log   *slog.Logger
}

func NewLabelService(store *repository.Store, log *slog.Logger) *LabelService {
	return &LabelService{store: store, guard: NewDeleteGuard(store, log), log: log}
}

func (s *LabelService) List(ctx context.Context) ([]model.Label, error) {
	return s.store.Labels.ListAll(ctx)
}

func (s *LabelService) Get(ctx context.Context, id uint) (*model.Label, error) {
	label, err := s.store.Labels.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(KindLabel, id)
	}
	return label, err
}

// GetByName returns the label with the given name.
func (s *LabelService) GetByName(ctx context.Context, name string) (*model.Label, error) {
	label, err := s.store.Labels.FindByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ReferenceNotFoundError{Kind: KindLabel, Key: name}
	}
	return label, err
}

func (s *LabelService) Create(ctx context.Context, in LabelCreate) (*model.Label, error) {
	var v validator
	v.length("name", in.Name, labelNameMin, labelNameMax)
	if err := v.err(); err != nil {
		return nil, err
	}

	label := model.Label{Name: in.Name}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureUnique(ctx, tx.Labels.FindByName, in.Name, 0, "label"); err != nil {
			return err
		}
		return duplicate(tx.Labels.Create(ctx, &label), "label")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("label created", "id", label.ID, "name", label.Name)
	return &label, nil
}

func (s *LabelService) Update(ctx context.Context, id uint, in LabelUpdate) (*model.Label, error) {
	var updated model.Label
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Labels.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(KindLabel, id)
		}
		if err != nil {
			return err
		}

		var v validator
		present(&v, "name", in.Name, func(name string) {
			v.length("name", name, labelNameMin, labelNameMax)
		})
		if err := v.err(); err != nil {
			return err
		}

		updated = mergeLabel(*current, in)
		if updated == *current {
			return nil
		}
		if err := ensureUnique(ctx, tx.Labels.FindByName, updated.Name, id, "label"); err != nil {
			return err
		}
		return duplicate(tx.Labels.Save(ctx, &updated), "label")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("label updated", "id", id)
	return &updated, nil
}

// Delete removes the label unless a task carries it.
func (s *LabelService) Delete(ctx context.Context, id uint) error {
	if err := s.guard.Delete(ctx, KindLabel, id); err != nil {
		return err
	}
	s.log.Info("label deleted", "id", id)
	return nil
}

// mergeLabel applies a validated change-set.
func mergeLabel(label model.Label, in LabelUpdate) model.Label {
	if name, ok := in.Name.Get(); ok {
		label.Name = name
	}
	return label
}
