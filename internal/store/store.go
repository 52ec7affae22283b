// Package store gives path-addressed access to the variables and attributes
// of a hierarchical (group-structured) scientific data file.
package store

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

var (
	// ErrNotFound is returned for groups, variables and attributes that
	// don't exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported is returned for variables whose values can't be
	// represented as a numeric array.
	ErrUnsupported = errors.New("unsupported variable")
)

// Store retrieves variables and attributes by "/"-delimited path, e.g.
// "data/calibration/toa_brightness_temperature".
type Store interface {
	// Variable returns the variable at path.
	Variable(path string) (*Variable, error)

	// Attribute returns the attribute key of the group or variable at path.
	// An empty path or "/" addresses the root group.
	Attribute(path, key string) (Attr, error)

	// Close releases the underlying file.
	Close()
}

// Variable is a raw array read from a store.
type Variable struct {
	Path  string
	Dims  []string
	Shape []int
	// Data holds the raw values in row-major order.
	Data  []float64
	Attrs Attrs
}

// Len returns the number of elements in the variable.
func (v *Variable) Len() int {
	return len(v.Data)
}

// Attrs holds the attributes of a group or variable.
type Attrs map[string]any

// Get looks up the attribute key.
func (a Attrs) Get(key string) Attr {
	v, ok := a[key]
	return Attr{key: key, val: v, ok: ok}
}

// Attr is the result of an attribute lookup. It is either present with a
// value or absent; the accessors fail on an absent attribute, so callers
// have to check Present for optional ones.
type Attr struct {
	key string
	val any
	ok  bool
}

// Present reports whether the attribute exists.
func (a Attr) Present() bool {
	return a.ok
}

// Key returns the attribute name.
func (a Attr) Key() string {
	return a.key
}

// Value returns the raw attribute value, or nil if absent.
func (a Attr) Value() any {
	return a.val
}

// Float64 returns the attribute as a float64.
func (a Attr) Float64() (float64, error) {
	if !a.ok {
		return 0, fmt.Errorf("attribute %q: %w", a.key, ErrNotFound)
	}
	f, err := cast.ToFloat64E(scalar(a.val))
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", a.key, err)
	}
	return f, nil
}

// Int64 returns the attribute as an int64.
func (a Attr) Int64() (int64, error) {
	if !a.ok {
		return 0, fmt.Errorf("attribute %q: %w", a.key, ErrNotFound)
	}
	i, err := cast.ToInt64E(scalar(a.val))
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", a.key, err)
	}
	return i, nil
}

// String returns the attribute as a string.
func (a Attr) String() (string, error) {
	if !a.ok {
		return "", fmt.Errorf("attribute %q: %w", a.key, ErrNotFound)
	}
	s, err := cast.ToStringE(scalar(a.val))
	if err != nil {
		return "", fmt.Errorf("attribute %q: %w", a.key, err)
	}
	return s, nil
}

// scalar unwraps single element slices, which is how some writers store
// scalar attributes.
func scalar(v any) any {
	if _, ok := v.([]byte); ok {
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Len() == 1 {
		return rv.Index(0).Interface()
	}
	return v
}
