package mwr

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Field is a decoded array in physical units. Invalid samples are NaN.
type Field struct {
	Name  string
	Path  string
	Dims  []string
	Shape []int
	// Data holds the values in row-major order.
	Data  []float64
	Attrs map[string]any
}

// Len returns the number of samples.
func (f *Field) Len() int {
	return len(f.Data)
}

// At returns the sample at the given index, one coordinate per dimension.
func (f *Field) At(idx ...int) float64 {
	return f.Data[f.offset(idx)]
}

// Valid reports whether the sample at idx is valid.
func (f *Field) Valid(idx ...int) bool {
	return !math.IsNaN(f.At(idx...))
}

func (f *Field) offset(idx []int) int {
	if len(idx) != len(f.Shape) {
		panic(fmt.Sprintf("mwr: %d indices for %d dimensions", len(idx), len(f.Shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= f.Shape[i] {
			panic(fmt.Sprintf("mwr: index %d out of range [0,%d) in dimension %s", x, f.Shape[i], f.Dims[i]))
		}
		off = off*f.Shape[i] + x
	}
	return off
}

// Axis returns the position of the named dimension, or -1.
func (f *Field) Axis(dim string) int {
	return slices.Index(f.Dims, dim)
}

// Select returns a new field holding position i of dimension dim. The
// dimension is dropped from the result.
func (f *Field) Select(dim string, i int) (*Field, error) {
	axis := f.Axis(dim)
	if axis < 0 {
		return nil, fmt.Errorf("field %s has no dimension %q: %w", f.Name, dim, ErrNotFound)
	}
	if i < 0 || i >= f.Shape[axis] {
		return nil, fmt.Errorf("field %s: index %d out of range for %s of length %d: %w", f.Name, i, dim, f.Shape[axis], ErrNotFound)
	}
	// outer: product of dims before axis, inner: product of dims after it.
	outer, inner := 1, 1
	for _, n := range f.Shape[:axis] {
		outer *= n
	}
	for _, n := range f.Shape[axis+1:] {
		inner *= n
	}
	stride := f.Shape[axis] * inner
	data := make([]float64, 0, outer*inner)
	for o := 0; o < outer; o++ {
		start := o*stride + i*inner
		data = append(data, f.Data[start:start+inner]...)
	}
	return &Field{
		Name:  f.Name,
		Path:  f.Path,
		Dims:  slices.Delete(slices.Clone(f.Dims), axis, axis+1),
		Shape: slices.Delete(slices.Clone(f.Shape), axis, axis+1),
		Data:  data,
		Attrs: maps.Clone(f.Attrs),
	}, nil
}

// SameGrid reports whether f and o have identical dimensions and shape.
func (f *Field) SameGrid(o *Field) bool {
	return slices.Equal(f.Dims, o.Dims) && slices.Equal(f.Shape, o.Shape)
}

// Stats summarizes the valid samples of a field.
type Stats struct {
	Valid int
	Min   float64
	Max   float64
}

// Stats returns the number of valid samples and their range. Min and Max are
// NaN when no sample is valid.
func (f *Field) Stats() Stats {
	valid := make([]float64, 0, len(f.Data))
	for _, v := range f.Data {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return Stats{Min: math.NaN(), Max: math.NaN()}
	}
	return Stats{
		Valid: len(valid),
		Min:   floats.Min(valid),
		Max:   floats.Max(valid),
	}
}
