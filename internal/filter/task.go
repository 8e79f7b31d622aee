// Package filter builds the task list query from optional criteria.
//
// Each criterion is a Predicate carrying two equivalent forms: a gorm scope
// that the store evaluates, and a Go match function over a loaded task. The
// builder starts from an empty conjunction (matches every task) and appends
// one predicate per criterion the caller supplied.
package filter

import (
	"strings"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// TaskParams are the optional criteria of a task listing. Zero values mean
// the criterion is not applied.
type TaskParams struct {
	TitleCont  string `json:"titleCont"`
	AssigneeID uint   `json:"assigneeId"`
	Status     string `json:"status"`
	LabelID    uint   `json:"labelId"`
}

// Predicate is one criterion.
type Predicate struct {
	Name  string
	scope func(*gorm.DB) *gorm.DB
	match func(*model.Task) bool
}

// Scope returns the predicate as a gorm scope.
func (p Predicate) Scope(db *gorm.DB) *gorm.DB { return p.scope(db) }

// Match evaluates the predicate against a task with its status and labels loaded.
func (p Predicate) Match(t *model.Task) bool { return p.match(t) }

// Spec is a conjunction of predicates. The empty Spec matches everything.
type Spec []Predicate

// And returns a new Spec with p appended.
func (s Spec) And(p Predicate) Spec {
	out := make(Spec, 0, len(s)+1)
	out = append(out, s...)
	return append(out, p)
}

// Scopes returns the gorm scopes of every predicate.
func (s Spec) Scopes() []func(*gorm.DB) *gorm.DB {
	scopes := make([]func(*gorm.DB) *gorm.DB, 0, len(s))
	for _, p := range s {
		scopes = append(scopes, p.scope)
	}
	return scopes
}

// Match reports whether t satisfies every predicate.
func (s Spec) Match(t *model.Task) bool {
	for _, p := range s {
		if !p.match(t) {
			return false
		}
	}
	return true
}

// Names lists the applied criteria, in order.
func (s Spec) Names() []string {
	names := make([]string, 0, len(s))
	for _, p := range s {
		names = append(names, p.Name)
	}
	return names
}

// Build turns params into a Spec.
func Build(params TaskParams) Spec {
	var spec Spec
	if params.TitleCont != "" {
		spec = spec.And(TitleContains(params.TitleCont))
	}
	if params.AssigneeID != 0 {
		spec = spec.And(AssigneeIs(params.AssigneeID))
	}
	if params.Status != "" {
		spec = spec.And(StatusIs(params.Status))
	}
	if params.LabelID != 0 {
		spec = spec.And(HasLabel(params.LabelID))
	}
	return spec
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// titleLike folds both the column and the pattern with the store's
// Unicode-aware lower function, matching strings.ToLower in Go.
var titleLike = repository.LowerFunc + `(tasks.name) LIKE ` + repository.LowerFunc + `(?) ESCAPE '\'`

// TitleContains matches tasks whose name contains sub, ignoring case.
func TitleContains(sub string) Predicate {
	needle := strings.ToLower(sub)
	pattern := "%" + likeEscaper.Replace(sub) + "%"
	return Predicate{
		Name: "titleCont",
		scope: func(db *gorm.DB) *gorm.DB {
			return db.Where(titleLike, pattern)
		},
		match: func(t *model.Task) bool {
			return strings.Contains(strings.ToLower(t.Name), needle)
		},
	}
}

// AssigneeIs matches tasks assigned to the user with the given id.
func AssigneeIs(id uint) Predicate {
	return Predicate{
		Name: "assigneeId",
		scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("tasks.assignee_id = ?", id)
		},
		match: func(t *model.Task) bool {
			return t.AssigneeID != nil && *t.AssigneeID == id
		},
	}
}

// StatusIs matches tasks whose status slug equals slug exactly.
func StatusIs(slug string) Predicate {
	return Predicate{
		Name: "status",
		scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("tasks.status_id IN (SELECT id FROM task_statuses WHERE slug = ?)", slug)
		},
		match: func(t *model.Task) bool {
			return t.Status.Slug == slug
		},
	}
}

// HasLabel matches tasks carrying the label with the given id.
func HasLabel(id uint) Predicate {
	return Predicate{
		Name: "labelId",
		scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("EXISTS (SELECT 1 FROM task_labels WHERE task_labels.task_id = tasks.id AND task_labels.label_id = ?)", id)
		},
		match: func(t *model.Task) bool {
			return t.HasLabel(id)
		},
	}
}
