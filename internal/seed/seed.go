// Package seed loads reference data from YAML and applies it through the
// services so the same validation and uniqueness rules hold.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

//go:embed default.yaml
var defaultData []byte

// Data is the seed document.
type Data struct {
	Statuses []Status `yaml:"statuses"`
	Labels   []string `yaml:"labels"`
	Admin    *Admin   `yaml:"admin"`
}

type Status struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type Admin struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
}

// Default returns the embedded seed document.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Load reads the seed document at path, or the embedded one when path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &data, nil
}

// StatusTarget creates statuses and finds them by slug.
type StatusTarget interface {
	GetBySlug(ctx context.Context, slug string) (*model.TaskStatus, error)
	Create(ctx context.Context, in service.TaskStatusCreate) (*model.TaskStatus, error)
}

// LabelTarget creates labels and finds them by name.
type LabelTarget interface {
	GetByName(ctx context.Context, name string) (*model.Label, error)
	Create(ctx context.Context, in service.LabelCreate) (*model.Label, error)
}

// UserTarget creates users and finds them by email.
type UserTarget interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, in service.UserCreate) (*model.User, error)
}

// Targets are the services seed rows are written through.
type Targets struct {
	Statuses StatusTarget
	Labels   LabelTarget
	Users    UserTarget
}

// Result counts what Apply did.
type Result struct {
	Created int
	Skipped int
}

// Apply creates every row in data that does not exist yet. A row is skipped
// only when a row with its own key (status slug, label name, user email)
// already exists, so running Apply twice changes nothing. Any other conflict,
// such as a new slug whose name is taken by another status, is an error.
func Apply(ctx context.Context, data *Data, to Targets, log *slog.Logger) (Result, error) {
	var res Result

	// step looks the row up by its key and creates it when the lookup misses.
	step := func(kind, key string, lookup func() error, create func() error) error {
		err := lookup()
		switch {
		case err == nil:
			res.Skipped++
			log.Debug("seed row exists", "kind", kind, "key", key)
			return nil
		case !errors.Is(err, service.ErrReferenceNotFound):
			return fmt.Errorf("seed %s %q: %w", kind, key, err)
		}

		if err := create(); err != nil {
			if errors.Is(err, service.ErrConstraintViolation) {
				log.Warn("seed row conflicts with existing data", "kind", kind, "key", key, "error", err)
			}
			return fmt.Errorf("seed %s %q: %w", kind, key, err)
		}
		res.Created++
		log.Info("seed row created", "kind", kind, "key", key)
		return nil
	}

	for _, s := range data.Statuses {
		err := step("status", s.Slug,
			func() error { _, err := to.Statuses.GetBySlug(ctx, s.Slug); return err },
			func() error {
				_, err := to.Statuses.Create(ctx, service.TaskStatusCreate{Name: s.Name, Slug: s.Slug})
				return err
			})
		if err != nil {
			return res, err
		}
	}

	for _, name := range data.Labels {
		err := step("label", name,
			func() error { _, err := to.Labels.GetByName(ctx, name); return err },
			func() error {
				_, err := to.Labels.Create(ctx, service.LabelCreate{Name: name})
				return err
			})
		if err != nil {
			return res, err
		}
	}

	if a := data.Admin; a != nil && to.Users != nil {
		err := step("user", a.Email,
			func() error { _, err := to.Users.GetByEmail(ctx, a.Email); return err },
			func() error {
				_, err := to.Users.Create(ctx, service.UserCreate{
					FirstName: a.FirstName,
					LastName:  a.LastName,
					Email:     a.Email,
					Password:  a.Password,
				})
				return err
			})
		if err != nil {
			return res, err
		}
	}

	return res, nil
}
