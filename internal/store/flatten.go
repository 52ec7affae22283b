package store

import (
	"fmt"
	"reflect"
)

// flatten converts the nested slices returned by the netCDF reader (e.g.
// [][][]int32) into a row-major float64 slice and its shape. A scalar has an
// empty shape and one value. The rank comes from the type, so an empty array
// keeps all of its dimensions; lengths that can't be read below a zero-length
// dimension are 0.
func flatten(values any) ([]float64, []int, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("%w: no values", ErrUnsupported)
	}
	var shape []int
	for t := rv.Type(); t.Kind() == reflect.Slice || t.Kind() == reflect.Array; t = t.Elem() {
		shape = append(shape, 0)
	}
	v := rv
	for i := range shape {
		shape[i] = v.Len()
		if v.Len() == 0 {
			break
		}
		v = v.Index(0)
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	data := make([]float64, 0, n)
	data, err := appendValues(data, rv, shape)
	if err != nil {
		return nil, nil, err
	}
	return data, shape, nil
}

func appendValues(dst []float64, rv reflect.Value, shape []int) ([]float64, error) {
	if len(shape) > 0 {
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("%w: expected %d more dimensions, got %s", ErrUnsupported, len(shape), rv.Kind())
		}
		if rv.Len() != shape[0] {
			return nil, fmt.Errorf("%w: ragged array (%d != %d)", ErrUnsupported, rv.Len(), shape[0])
		}
		var err error
		for i := 0; i < rv.Len(); i++ {
			dst, err = appendValues(dst, rv.Index(i), shape[1:])
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append(dst, float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return append(dst, float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return append(dst, rv.Float()), nil
	}
	return nil, fmt.Errorf("%w: element kind %s", ErrUnsupported, rv.Kind())
}
