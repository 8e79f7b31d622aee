// Package optional holds the tri-state field used by partial updates.
//
// A Field is unset (the caller did not send it), null (the caller sent an
// explicit clear) or set to a value. The zero Field is unset, so a change-set
// struct literal only names the fields it touches.
package optional

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	unset state = iota
	null
	present
)

// Field is a value that may be absent, explicitly null, or present.
type Field[T any] struct {
	value T
	state state
}

// Of returns a present field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{value: v, state: present}
}

// Null returns a field that was sent as an explicit clear.
func Null[T any]() Field[T] {
	return Field[T]{state: null}
}

// IsSet reports whether the field was sent at all, as a value or as null.
func (f Field[T]) IsSet() bool { return f.state != unset }

// IsNull reports whether the field was sent as an explicit clear.
func (f Field[T]) IsNull() bool { return f.state == null }

// Get returns the value and whether one is present. Null fields report false.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == present
}

// OrElse returns the value when present and def otherwise.
func (f Field[T]) OrElse(def T) T {
	if f.state == present {
		return f.value
	}
	return def
}

// UnmarshalJSON is only called for keys present in the document, which is
// what separates an omitted field from one sent as null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.value, f.state = zero, null
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.value, f.state = v, present
	return nil
}

// MarshalJSON writes null for unset and null fields.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != present {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
