package service

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names an entity collection.
type Kind string

const (
	KindUser   Kind = "user"
	KindStatus Kind = "status"
	KindLabel  Kind = "label"
	KindTask   Kind = "task"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrReferenceNotFound   = errors.New("reference not found")
	ErrValidation          = errors.New("validation failed")
	ErrConstraintViolation = errors.New("constraint violation")
)

// NotFoundError reports that the entity an operation targets does not exist.
type NotFoundError struct {
	Kind Kind
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ReferenceNotFoundError reports a payload identifier that resolves to nothing.
// Key is the slug or id as sent by the caller.
type ReferenceNotFoundError struct {
	Kind Kind
	Key  string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *ReferenceNotFoundError) Is(target error) bool { return target == ErrReferenceNotFound }

// FieldError is one failed constraint on one field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError carries every field failure of a single request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Has reports whether field failed with reason.
func (e *ValidationError) Has(field, reason string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Reason == reason {
			return true
		}
	}
	return false
}

// ConstraintViolationError reports a uniqueness conflict or a refused delete.
type ConstraintViolationError struct {
	Reason string
}

func (e *ConstraintViolationError) Error() string { return e.Reason }

func (e *ConstraintViolationError) Is(target error) bool { return target == ErrConstraintViolation }

// validator accumulates field failures so a request is judged as a whole.
type validator struct {
	fields []FieldError
}

func (v *validator) fail(field, reason string) {
	v.fields = append(v.fields, FieldError{Field: field, Reason: reason})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

func notFound(kind Kind, id uint) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func conflict(format string, args ...any) error {
	return &ConstraintViolationError{Reason: fmt.Sprintf(format, args...)}
}
