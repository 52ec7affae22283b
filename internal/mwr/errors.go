package mwr

import (
	"errors"
	"fmt"

	"github.com/rtm0/mwr/internal/store"
)

var (
	// ErrNotFound is returned for datasets without a path mapping and for
	// paths absent from the file. It is the same value as store.ErrNotFound.
	ErrNotFound = store.ErrNotFound

	// ErrShapeMismatch is returned when the members of a geolocation group
	// disagree in shape or dimensions.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrMalformedAttributes is returned when an attribute required for
	// decoding is absent or not numeric.
	ErrMalformedAttributes = errors.New("malformed attributes")
)

// DatasetError identifies the dataset a failed call was about.
type DatasetError struct {
	Name string
	Path string
	Err  error
}

func (e *DatasetError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dataset %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("dataset %q (%s): %v", e.Name, e.Path, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}
