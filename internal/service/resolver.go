package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// Resolver turns the identifiers a task payload carries into stored rows.
// It only reads; callers resolve everything before writing anything.
type Resolver struct {
	store *repository.Store
}

func NewResolver(store *repository.Store) *Resolver {
	return &Resolver{store: store}
}

// Status looks a status up by slug.
func (r *Resolver) Status(ctx context.Context, slug string) (*model.TaskStatus, error) {
	status, err := r.store.Statuses.FindBySlug(ctx, slug)
	switch {
	case err == nil:
		return status, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, &ReferenceNotFoundError{Kind: KindStatus, Key: slug}
	default:
		return nil, fmt.Errorf("resolve status: %w", err)
	}
}

// Assignee looks a user up by id. Zero means no assignee and yields nil.
func (r *Resolver) Assignee(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, nil
	}
	user, err := r.store.Users.FindByID(ctx, id)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, &ReferenceNotFoundError{Kind: KindUser, Key: strconv.FormatUint(uint64(id), 10)}
	default:
		return nil, fmt.Errorf("resolve assignee: %w", err)
	}
}

// Labels resolves every id or none. Duplicates collapse; the result is
// ordered by id. The first missing id, in ascending order, is reported.
func (r *Resolver) Labels(ctx context.Context, ids []uint) ([]model.Label, error) {
	if len(ids) == 0 {
		return []model.Label{}, nil
	}

	wanted := slices.Clone(ids)
	slices.Sort(wanted)
	wanted = slices.Compact(wanted)

	labels, err := r.store.Labels.FindByIDs(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("resolve labels: %w", err)
	}
	if len(labels) == len(wanted) {
		return labels, nil
	}

	found := make(map[uint]struct{}, len(labels))
	for _, l := range labels {
		found[l.ID] = struct{}{}
	}
	for _, id := range wanted {
		if _, ok := found[id]; !ok {
			return nil, &ReferenceNotFoundError{Kind: KindLabel, Key: strconv.FormatUint(uint64(id), 10)}
		}
	}
	return labels, nil
}
