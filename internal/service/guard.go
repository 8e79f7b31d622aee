package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"task-manager/internal/repository"
)

// DeleteGuard refuses to delete statuses, labels and users that tasks still
// reference. Tasks are leaves and are never guarded.
type DeleteGuard struct {
	store *repository.Store
	log   *slog.Logger
}

func NewDeleteGuard(store *repository.Store, log *slog.Logger) *DeleteGuard {
	return &DeleteGuard{store: store, log: log}
}

// CanDelete reports whether no task references the entity.
func (g *DeleteGuard) CanDelete(ctx context.Context, kind Kind, id uint) (bool, error) {
	var (
		n   int64
		err error
	)
	switch kind {
	case KindStatus:
		n, err = g.store.Tasks.CountByStatus(ctx, id)
	case KindLabel:
		n, err = g.store.Tasks.CountByLabel(ctx, id)
	case KindUser:
		n, err = g.store.Tasks.CountByAssignee(ctx, id)
	case KindTask:
		return true, nil
	default:
		return false, fmt.Errorf("delete guard: unknown kind %q", kind)
	}
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Delete checks and deletes inside one transaction. The transaction holds the
// write lock from BEGIN, so no task can start referencing the entity between
// the check and the delete. The store's restrict foreign keys back this up.
func (g *DeleteGuard) Delete(ctx context.Context, kind Kind, id uint) error {
	return g.store.Transaction(ctx, func(tx *repository.Store) error {
		guard := &DeleteGuard{store: tx, log: g.log}

		if err := guard.exists(ctx, kind, id); err != nil {
			return err
		}

		ok, err := guard.CanDelete(ctx, kind, id)
		if err != nil {
			return err
		}
		if !ok {
			g.log.Warn("delete refused", "kind", kind, "id", id)
			return conflict("%s with id %d is referenced by active task(s)", kind, id)
		}

		err = guard.remove(ctx, kind, id)
		if errors.Is(err, repository.ErrReferenced) {
			return conflict("%s with id %d is referenced by active task(s)", kind, id)
		}
		return err
	})
}

func (g *DeleteGuard) exists(ctx context.Context, kind Kind, id uint) error {
	var err error
	switch kind {
	case KindStatus:
		_, err = g.store.Statuses.FindByID(ctx, id)
	case KindLabel:
		_, err = g.store.Labels.FindByID(ctx, id)
	case KindUser:
		_, err = g.store.Users.FindByID(ctx, id)
	case KindTask:
		_, err = g.store.Tasks.FindByID(ctx, id)
	default:
		return fmt.Errorf("delete guard: unknown kind %q", kind)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(kind, id)
	}
	return err
}

func (g *DeleteGuard) remove(ctx context.Context, kind Kind, id uint) error {
	switch kind {
	case KindStatus:
		return g.store.Statuses.Delete(ctx, id)
	case KindLabel:
		return g.store.Labels.Delete(ctx, id)
	case KindUser:
		return g.store.Users.Delete(ctx, id)
	case KindTask:
		return g.store.Tasks.Delete(ctx, id)
	default:
		return fmt.Errorf("delete guard: unknown kind %q", kind)
	}
}
