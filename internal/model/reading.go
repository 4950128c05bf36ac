package model

import "encoding/json"

// Reading is an indicator outcome: either a present value or insufficient data.
// The zero value is insufficient data.
type Reading[T any] struct {
	value T
	ok    bool
}

// Present wraps a computed indicator value.
func Present[T any](v T) Reading[T] {
	return Reading[T]{value: v, ok: true}
}

// Insufficient is the abstaining outcome for a series shorter than the indicator needs.
func Insufficient[T any]() Reading[T] {
	return Reading[T]{}
}

// Get returns the value and whether it is present.
func (r Reading[T]) Get() (T, bool) {
	return r.value, r.ok
}

// Ok reports whether the reading holds a value.
func (r Reading[T]) Ok() bool { return r.ok }

// MarshalJSON renders the value, or null when the indicator abstained.
func (r Reading[T]) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON accepts either null or a value.
func (r *Reading[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Reading[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Present(v)
	return nil
}
