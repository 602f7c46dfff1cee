// Package optional provides a JSON field that distinguishes an absent key
// from an explicit null, for partial updates.
package optional

import (
	"bytes"
	"encoding/json"
)

// Field is absent (zero value), null, or set to a value.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Of returns a field carrying v.
func Of[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// Null returns a field that clears the target column.
func Null[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

// FromPtr maps nil to null and anything else to a value.
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Null[T]()
	}
	return Of(*p)
}

// Ptr returns the value as a pointer, nil when the field is null or absent.
func (f Field[T]) Ptr() *T {
	if !f.Present || f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// IsZero lets `json:",omitzero"` drop absent fields when encoding.
func (f Field[T]) IsZero() bool {
	return !f.Present
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}
