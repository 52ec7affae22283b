package mwr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/rtm0/mwr/internal/store"
)

// Attributes that describe the integer encoding of a variable. They are
// consumed by decoding and not copied to the decoded field.
const (
	attrScaleFactor  = "scale_factor"
	attrAddOffset    = "add_offset"
	attrMissingValue = "missing_value"
	attrFillValue    = "_FillValue"
	attrValidMin     = "valid_min"
	attrValidMax     = "valid_max"
)

var encodingAttrs = []string{
	attrScaleFactor,
	attrAddOffset,
	attrMissingValue,
	attrFillValue,
	attrValidMin,
	attrValidMax,
}

// Scaling is a linear decoding, physical = raw*Scale + Offset.
type Scaling struct {
	Scale  float64
	Offset float64
}

// Decode converts a raw integer variable into physical units. The variable
// must carry a scale_factor attribute.
func Decode(v *store.Variable) (*Field, error) {
	return decode(v, nil)
}

// DecodeWith is like Decode but falls back to the given scaling when the
// variable has no scale_factor. Attributes always take precedence.
func DecodeWith(v *store.Variable, fallback Scaling) (*Field, error) {
	return decode(v, &fallback)
}

func decode(v *store.Variable, fallback *Scaling) (*Field, error) {
	sc, err := scaling(v.Attrs, fallback)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v.Path, err)
	}

	data := make([]float64, len(v.Data))
	floats.ScaleTo(data, sc.Scale, v.Data)
	if sc.Offset != 0 {
		floats.AddConst(sc.Offset, data)
	}

	// Masks are applied to the raw values, before scaling.
	for _, key := range []string{attrMissingValue, attrFillValue} {
		a := v.Attrs.Get(key)
		if !a.Present() {
			continue
		}
		sentinel, err := a.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", v.Path, ErrMalformedAttributes, err)
		}
		for i, raw := range v.Data {
			if raw == sentinel {
				data[i] = math.NaN()
			}
		}
	}
	lo, hi := math.Inf(-1), math.Inf(1)
	if a := v.Attrs.Get(attrValidMin); a.Present() {
		if lo, err = a.Float64(); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", v.Path, ErrMalformedAttributes, err)
		}
	}
	if a := v.Attrs.Get(attrValidMax); a.Present() {
		if hi, err = a.Float64(); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", v.Path, ErrMalformedAttributes, err)
		}
	}
	for i, raw := range v.Data {
		if raw < lo || raw > hi {
			data[i] = math.NaN()
		}
	}

	attrs := make(map[string]any, len(v.Attrs))
	for k, val := range v.Attrs {
		attrs[k] = val
	}
	for _, k := range encodingAttrs {
		delete(attrs, k)
	}
	return &Field{
		Path:  v.Path,
		Dims:  append([]string(nil), v.Dims...),
		Shape: append([]int(nil), v.Shape...),
		Data:  data,
		Attrs: attrs,
	}, nil
}

func scaling(attrs store.Attrs, fallback *Scaling) (Scaling, error) {
	sf := attrs.Get(attrScaleFactor)
	if !sf.Present() {
		if fallback == nil {
			return Scaling{}, fmt.Errorf("%w: no %s", ErrMalformedAttributes, attrScaleFactor)
		}
		sc := *fallback
		if off := attrs.Get(attrAddOffset); off.Present() {
			var err error
			if sc.Offset, err = off.Float64(); err != nil {
				return Scaling{}, fmt.Errorf("%w: %v", ErrMalformedAttributes, err)
			}
		}
		return sc, nil
	}
	var (
		sc  Scaling
		err error
	)
	if sc.Scale, err = sf.Float64(); err != nil {
		return Scaling{}, fmt.Errorf("%w: %v", ErrMalformedAttributes, err)
	}
	if off := attrs.Get(attrAddOffset); off.Present() {
		if sc.Offset, err = off.Float64(); err != nil {
			return Scaling{}, fmt.Errorf("%w: %v", ErrMalformedAttributes, err)
		}
	}
	return sc, nil
}
