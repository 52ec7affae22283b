package mwr_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/rtm0/mwr/internal/mwr"
	"github.com/rtm0/mwr/internal/mwr/mwrtest"
	"github.com/rtm0/mwr/internal/store"
)

func closeTo(got, want float64) bool {
	if want == 0 {
		return math.Abs(got) < 1e-9
	}
	return math.Abs(got-want) <= 1e-6*math.Abs(want)
}

func TestDecodeFixture(t *testing.T) {
	s := mwrtest.Store(mwrtest.L1B(true))
	defer s.Close()
	v, err := s.Variable("data/calibration/toa_brightness_temperature")
	if err != nil {
		t.Fatal(err)
	}
	f, err := mwr.Decode(v)
	if err != nil {
		t.Fatal(err)
	}

	if want := []int{10, 145, 19}; !reflect.DeepEqual(f.Shape, want) {
		t.Errorf("shape: got %v, want %v", f.Shape, want)
	}
	if want := []string{"n_scans", "n_fovs", "n_channels"}; !reflect.DeepEqual(f.Dims, want) {
		t.Errorf("dims: got %v, want %v", f.Dims, want)
	}
	for _, idx := range [][]int{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}} {
		if f.Valid(idx...) {
			t.Errorf("%v: got %v, want invalid", idx, f.At(idx...))
		}
	}

	raw := mwrtest.BrightnessTemperature()
	invalid := 0
	for scan := range raw {
		for fov := range raw[scan] {
			for c, r := range raw[scan][fov] {
				if scan < 3 && fov == 0 && c == 0 {
					invalid++
					continue
				}
				if got, want := f.At(scan, fov, c), float64(r)*0.001; !closeTo(got, want) {
					t.Fatalf("[%d,%d,%d]: got %v, want %v", scan, fov, c, got, want)
				}
			}
		}
	}
	if st := f.Stats(); st.Valid != f.Len()-invalid {
		t.Errorf("valid samples: got %d, want %d", st.Valid, f.Len()-invalid)
	}
}

func TestDecodeMissingValue(t *testing.T) {
	for _, sc := range []mwr.Scaling{
		{Scale: 1, Offset: 0},
		{Scale: 0.001, Offset: 0},
		{Scale: 1e-4, Offset: -180},
		{Scale: -2, Offset: 1e9},
	} {
		v := &store.Variable{
			Path:  "tb",
			Dims:  []string{"x"},
			Shape: []int{4},
			Data:  []float64{-2147483648, 0, 42, -2147483648},
			Attrs: store.Attrs{
				"scale_factor":  sc.Scale,
				"add_offset":    sc.Offset,
				"missing_value": int32(-2147483648),
			},
		}
		f, err := mwr.Decode(v)
		if err != nil {
			t.Fatal(err)
		}
		for i, want := range []bool{false, true, true, false} {
			if f.Valid(i) != want {
				t.Errorf("%+v: sample %d valid = %v, want %v", sc, i, f.Valid(i), want)
			}
		}
		if got, want := f.At(2), 42*sc.Scale+sc.Offset; !closeTo(got, want) {
			t.Errorf("%+v: got %v, want %v", sc, got, want)
		}
	}
}

func TestDecodeValidRange(t *testing.T) {
	tests := []struct {
		name  string
		attrs store.Attrs
		valid []bool
	}{
		{
			name:  "both bounds",
			attrs: store.Attrs{"valid_min": 0, "valid_max": 100},
			valid: []bool{false, true, true, true, false},
		},
		{
			name:  "valid_min only",
			attrs: store.Attrs{"valid_min": int16(0)},
			valid: []bool{false, true, true, true, true},
		},
		{
			name:  "valid_max only",
			attrs: store.Attrs{"valid_max": 100.0},
			valid: []bool{true, true, true, true, false},
		},
		{
			name:  "no bounds",
			attrs: store.Attrs{},
			valid: []bool{true, true, true, true, true},
		},
	}
	for _, tc := range tests {
		tc.attrs["scale_factor"] = 0.5
		v := &store.Variable{
			Path:  "tb",
			Dims:  []string{"x"},
			Shape: []int{5},
			Data:  []float64{-10, 0, 50, 100, 110},
			Attrs: tc.attrs,
		}
		f, err := mwr.Decode(v)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		for i, want := range tc.valid {
			if f.Valid(i) != want {
				t.Errorf("%s: sample %d valid = %v, want %v", tc.name, i, f.Valid(i), want)
			}
			if want && f.At(i) != v.Data[i]*0.5 {
				t.Errorf("%s: sample %d = %v, want %v", tc.name, i, f.At(i), v.Data[i]*0.5)
			}
		}
	}
}

func TestDecodeFillValue(t *testing.T) {
	v := &store.Variable{
		Path:  "tb",
		Dims:  []string{"x"},
		Shape: []int{3},
		Data:  []float64{-1, 1, 2},
		Attrs: store.Attrs{"scale_factor": 1.0, "_FillValue": int32(-1)},
	}
	f, err := mwr.Decode(v)
	if err != nil {
		t.Fatal(err)
	}
	if f.Valid(0) || !f.Valid(1) || !f.Valid(2) {
		t.Errorf("got %v, want [NaN 1 2]", f.Data)
	}
}

func TestDecodeMalformedAttributes(t *testing.T) {
	for _, attrs := range []store.Attrs{
		{},
		{"add_offset": 0.0},
		{"scale_factor": "a lot"},
		{"scale_factor": 1.0, "add_offset": "none"},
		{"scale_factor": 1.0, "missing_value": "none"},
		{"scale_factor": 1.0, "valid_max": []float64{1, 2}},
	} {
		v := &store.Variable{Path: "tb", Dims: []string{"x"}, Shape: []int{1}, Data: []float64{1}, Attrs: attrs}
		if _, err := mwr.Decode(v); !errors.Is(err, mwr.ErrMalformedAttributes) {
			t.Errorf("%v: got %v, want ErrMalformedAttributes", attrs, err)
		}
	}
}

func TestDecodeWithFallback(t *testing.T) {
	fallback := mwr.Scaling{Scale: 1e-4}
	tests := []struct {
		name  string
		attrs store.Attrs
		want  float64
	}{
		{"no attributes", store.Attrs{}, 90},
		{"scale attribute wins", store.Attrs{"scale_factor": 1e-3}, 900},
		{"offset attribute", store.Attrs{"add_offset": -180.0}, -90},
	}
	for _, tc := range tests {
		v := &store.Variable{Path: "lat", Dims: []string{"x"}, Shape: []int{1}, Data: []float64{900000}, Attrs: tc.attrs}
		f, err := mwr.DecodeWith(v, fallback)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !closeTo(f.At(0), tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, f.At(0), tc.want)
		}
	}
}

func TestDecodeAttributes(t *testing.T) {
	v := &store.Variable{
		Path:  "tb",
		Dims:  []string{"x"},
		Shape: []int{1},
		Data:  []float64{1},
		Attrs: store.Attrs{
			"scale_factor":  1.0,
			"add_offset":    0.0,
			"missing_value": -1,
			"valid_min":     0,
			"valid_max":     2,
			"long_name":     "brightness temperature",
		},
	}
	f, err := mwr.Decode(v)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"long_name": "brightness temperature"}
	if !reflect.DeepEqual(f.Attrs, want) {
		t.Errorf("got %v, want %v", f.Attrs, want)
	}
	// The source variable is left untouched.
	if len(v.Attrs) != 6 || v.Data[0] != 1 {
		t.Error("decoding modified its input")
	}
}
