package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Optional holds a value that is either Present or Absent. The zero value is Absent.
// JSON null and a missing key both decode to Absent; Absent encodes as null.
type Optional[T any] struct {
	value   T
	present bool
}

// Present wraps a known value.
func Present[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Absent returns an Optional with no value.
func Absent[T any]() Optional[T] {
	return Optional[T]{}
}

// OptionalFromPtr converts a nullable pointer.
func OptionalFromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Absent[T]()
	}
	return Present(*p)
}

func (o Optional[T]) IsPresent() bool { return o.present }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if !o.present {
		return def
	}
	return o.value
}

// Ptr returns nil when absent, for database/sql parameters.
func (o Optional[T]) Ptr() *T {
	if !o.present {
		return nil
	}
	v := o.value
	return &v
}

func (o Optional[T]) String() string {
	if !o.present {
		return "Absent"
	}
	return fmt.Sprintf("Present(%v)", o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Absent[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Present(v)
	return nil
}
