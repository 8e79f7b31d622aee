package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"task-manager/internal/optional"
	"task-manager/internal/repository"
)

// Validation reasons reported in FieldError.Reason.
const (
	ReasonBlank  = "blank"
	ReasonLength = "length"
	ReasonFormat = "format"
	ReasonNull   = "null"
)

const (
	labelNameMin   = 3
	labelNameMax   = 1000
	passwordMinLen = 3
)

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func (v *validator) required(field, value string) {
	if isBlank(value) {
		v.fail(field, ReasonBlank)
	}
}

func (v *validator) length(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min || (max > 0 && n > max) {
		v.fail(field, ReasonLength)
	}
}

func (v *validator) email(field, value string) {
	if isBlank(value) {
		v.fail(field, ReasonBlank)
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.fail(field, ReasonFormat)
	}
}

// present runs check on f's value when one was sent, and rejects an explicit
// null for fields that cannot be cleared.
func present[T any](v *validator, field string, f optional.Field[T], check func(T)) {
	if f.IsNull() {
		v.fail(field, ReasonNull)
		return
	}
	if val, ok := f.Get(); ok {
		check(val)
	}
}

type identified interface {
	GetID() uint
}

// ensureUnique fails with a constraint violation when key already belongs to
// a row other than selfID. The unique index stays the final authority; this
// check only turns the common case into a clear message.
func ensureUnique[T identified](ctx context.Context, find func(context.Context, string) (T, error), key string, selfID uint, what string) error {
	found, err := find(ctx, key)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check %s: %w", what, err)
	case found.GetID() == selfID:
		return nil
	default:
		return conflict("%s %q already exists", what, key)
	}
}

// duplicate maps a unique-index failure from the store onto a constraint violation.
func duplicate(err error, what string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return conflict("%s already exists", what)
	}
	return err
}
