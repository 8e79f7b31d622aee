package service

import (
	"context"
	"errors"
	"log/slog"

	"task-manager/internal/model"
	"task-manager/internal/optional"
	"task-manager/internal/repository"
)

// TaskStatusCreate is the payload for a new status.
type TaskStatusCreate struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TaskStatusUpdate is a status change-set.
type TaskStatusUpdate struct {
	Name optional.Field[string] `json:"name"`
	Slug optional.Field[string] `json:"slug"`
}

// TaskStatusService manages task statuses.
type TaskStatusService struct {
	store *repository.Store
	guard *DeleteGuard
	log   *slog.Logger
}

func NewTaskStatusService(store *repository.Store, log *slog.Logger) *TaskStatusService {
	return &TaskStatusService{store: store, guard: NewDeleteGuard(store, log), log: log}
}

func (s *TaskStatusService) List(ctx context.Context) ([]model.TaskStatus, error) {
	return s.store.Statuses.ListAll(ctx)
}

func (s *TaskStatusService) Get(ctx context.Context, id uint) (*model.TaskStatus, error) {
	status, err := s.store.Statuses.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(KindStatus, id)
	}
	return status, err
}

// GetBySlug returns the status with the given slug.
func (s *TaskStatusService) GetBySlug(ctx context.Context, slug string) (*model.TaskStatus, error) {
	return NewResolver(s.store).Status(ctx, slug)
}

func (s *TaskStatusService) Create(ctx context.Context, in TaskStatusCreate) (*model.TaskStatus, error) {
	var v validator
	v.required("name", in.Name)
	v.required("slug", in.Slug)
	if err := v.err(); err != nil {
		return nil, err
	}

	status := model.TaskStatus{Name: in.Name, Slug: in.Slug}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureUnique(ctx, tx.Statuses.FindByName, in.Name, 0, "task status name"); err != nil {
			return err
		}
		if err := ensureUnique(ctx, tx.Statuses.FindBySlug, in.Slug, 0, "task status slug"); err != nil {
			return err
		}
		return duplicate(tx.Statuses.Create(ctx, &status), "task status")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task status created", "id", status.ID, "slug", status.Slug)
	return &status, nil
}

func (s *TaskStatusService) Update(ctx context.Context, id uint, in TaskStatusUpdate) (*model.TaskStatus, error) {
	var updated model.TaskStatus
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Statuses.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(KindStatus, id)
		}
		if err != nil {
			return err
		}

		var v validator
		present(&v, "name", in.Name, func(name string) { v.required("name", name) })
		present(&v, "slug", in.Slug, func(slug string) { v.required("slug", slug) })
		if err := v.err(); err != nil {
			return err
		}

		updated = mergeTaskStatus(*current, in)
		if updated == *current {
			return nil
		}
		if updated.Name != current.Name {
			if err := ensureUnique(ctx, tx.Statuses.FindByName, updated.Name, id, "task status name"); err != nil {
				return err
			}
		}
		if updated.Slug != current.Slug {
			if err := ensureUnique(ctx, tx.Statuses.FindBySlug, updated.Slug, id, "task status slug"); err != nil {
				return err
			}
		}
		return duplicate(tx.Statuses.Save(ctx, &updated), "task status")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task status updated", "id", id)
	return &updated, nil
}

// Delete removes the status unless a task is in it.
func (s *TaskStatusService) Delete(ctx context.Context, id uint) error {
	if err := s.guard.Delete(ctx, KindStatus, id); err != nil {
		return err
	}
	s.log.Info("task status deleted", "id", id)
	return nil
}

func mergeTaskStatus(status model.TaskStatus, in TaskStatusUpdate) model.TaskStatus {
	if name, ok := in.Name.Get(); ok {
		status.Name = name
	}
	if slug, ok := in.Slug.Get(); ok {
		status.Slug = slug
	}
	return status
}
