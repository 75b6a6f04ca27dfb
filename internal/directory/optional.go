package directory

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a JSON field was sent and whether it was null.
// A patch applies a field only when it is Present.
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

// Some returns a present, non-null value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Null returns a field that was sent as JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// Present reports whether the field was sent with a non-null value.
func (o Optional[T]) Present() bool { return o.set && !o.null }

// Value returns the wrapped value; the zero value unless Present.
func (o Optional[T]) Value() T { return o.value }

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func putIfPresent[T any](doc map[string]any, field string, o Optional[T]) {
	if o.Present() {
		doc[field] = o.value
	}
}
