package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"task-manager/internal/filter"
	"task-manager/internal/model"
	"task-manager/internal/optional"
	"task-manager/internal/repository"
)

// TaskCreate represents data required to create a task.
type TaskCreate struct {
	Index       *int   `json:"index"`
	AssigneeID  uint   `json:"assignee_id"`
	Name        string `json:"title"`
	Description string `json:"content"`
	Status      string `json:"status"`
	LabelIDs    []uint `json:"taskLabelIds"`
}

// TaskUpdate is a task change-set. Index, Description and AssigneeID accept
// an explicit null to clear them; a null LabelIDs detaches every label.
// Present LabelIDs replace the whole label set.
type TaskUpdate struct {
	Index       optional.Field[int]    `json:"index"`
	AssigneeID  optional.Field[uint]   `json:"assignee_id"`
	Name        optional.Field[string] `json:"title"`
	Description optional.Field[string] `json:"content"`
	Status      optional.Field[string] `json:"status"`
	LabelIDs    optional.Field[[]uint] `json:"taskLabelIds"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	store *repository.Store
	guard *DeleteGuard
	log   *slog.Logger
}

func NewTaskService(store *repository.Store, log *slog.Logger) *TaskService {
	return &TaskService{store: store, guard: NewDeleteGuard(store, log), log: log}
}

// ListTasks returns the tasks matching every supplied criterion.
func (s *TaskService) ListTasks(ctx context.Context, params filter.TaskParams) ([]model.Task, error) {
	spec := filter.Build(params)
	s.log.Debug("list tasks", "criteria", spec.Names())
	return s.store.Tasks.List(ctx, spec.Scopes()...)
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.store.Tasks.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(KindTask, id)
	}
	return task, err
}

func (s *TaskService) CreateTask(ctx context.Context, in TaskCreate) (*model.Task, error) {
	var v validator
	v.required("title", in.Name)
	v.required("status", in.Status)
	if err := v.err(); err != nil {
		return nil, err
	}

	var created *model.Task
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		resolver := NewResolver(tx)
		status, err := resolver.Status(ctx, in.Status)
		if err != nil {
			return err
		}
		assignee, err := resolver.Assignee(ctx, in.AssigneeID)
		if err != nil {
			return err
		}
		labels, err := resolver.Labels(ctx, in.LabelIDs)
		if err != nil {
			return err
		}

		task := model.Task{
			Name:        in.Name,
			Index:       in.Index,
			Description: in.Description,
			StatusID:    status.ID,
			Status:      *status,
			Labels:      labels,
		}
		if assignee != nil {
			task.AssigneeID = &assignee.ID
			task.Assignee = assignee
		}
		if err := tx.Tasks.Create(ctx, &task); err != nil {
			return err
		}

		created, err = tx.Tasks.FindByID(ctx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task created", "id", created.ID, "status", created.Status.Slug)
	return created, nil
}

// UpdateTask loads the task, validates the change-set, resolves every
// reference it names and only then writes.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, in TaskUpdate) (*model.Task, error) {
	var updated *model.Task
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Tasks.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(KindTask, id)
		}
		if err != nil {
			return err
		}

		if err := in.validate(); err != nil {
			return err
		}

		refs, err := resolveTaskRefs(ctx, NewResolver(tx), in)
		if err != nil {
			return err
		}

		merged := mergeTask(*current, in, refs)
		if err := tx.Tasks.Save(ctx, &merged); err != nil {
			return err
		}
		if refs.labelsSet {
			if err := tx.Tasks.ReplaceLabels(ctx, &merged, refs.labels); err != nil {
				return err
			}
		}

		updated, err = tx.Tasks.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task updated", "id", id)
	return updated, nil
}

// DeleteTask removes a task. Tasks are never referenced, so there is no guard.
func (s *TaskService) DeleteTask(ctx context.Context, id uint) error {
	if err := s.guard.Delete(ctx, KindTask, id); err != nil {
		return err
	}
	s.log.Info("task deleted", "id", id)
	return nil
}

func (in TaskUpdate) validate() error {
	var v validator
	present(&v, "title", in.Name, func(name string) { v.required("title", name) })
	present(&v, "status", in.Status, func(slug string) { v.required("status", slug) })
	return v.err()
}

// taskRefs holds the references a change-set resolved to. A nil assignee
// with assigneeSet means the assignee is cleared.
type taskRefs struct {
	status      *model.TaskStatus
	assignee    *model.User
	assigneeSet bool
	labels      []model.Label
	labelsSet   bool
}

func resolveTaskRefs(ctx context.Context, r *Resolver, in TaskUpdate) (taskRefs, error) {
	var refs taskRefs

	if slug, ok := in.Status.Get(); ok {
		status, err := r.Status(ctx, slug)
		if err != nil {
			return taskRefs{}, err
		}
		refs.status = status
	}

	if in.AssigneeID.IsSet() {
		assignee, err := r.Assignee(ctx, in.AssigneeID.OrElse(0))
		if err != nil {
			return taskRefs{}, err
		}
		refs.assignee, refs.assigneeSet = assignee, true
	}

	if in.LabelIDs.IsSet() {
		labels, err := r.Labels(ctx, in.LabelIDs.OrElse(nil))
		if err != nil {
			return taskRefs{}, fmt.Errorf("task labels: %w", err)
		}
		refs.labels, refs.labelsSet = labels, true
	}

	return refs, nil
}

// mergeTask applies a validated change-set and its resolved references to a
// copy of task. Fields the change-set does not carry keep their value.
func mergeTask(task model.Task, in TaskUpdate, refs taskRefs) model.Task {
	task.Labels = slices.Clone(task.Labels)

	if name, ok := in.Name.Get(); ok {
		task.Name = name
	}
	if in.Index.IsSet() {
		if idx, ok := in.Index.Get(); ok {
			task.Index = &idx
		} else {
			task.Index = nil
		}
	}
	if in.Description.IsSet() {
		task.Description = in.Description.OrElse("")
	}
	if refs.status != nil {
		task.StatusID = refs.status.ID
		task.Status = *refs.status
	}
	if refs.assigneeSet {
		if refs.assignee != nil {
			task.AssigneeID = &refs.assignee.ID
			task.Assignee = refs.assignee
		} else {
			task.AssigneeID = nil
			task.Assignee = nil
		}
	}
	if refs.labelsSet {
		task.Labels = slices.Clone(refs.labels)
	}
	return task
}
