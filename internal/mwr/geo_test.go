package mwr_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rtm0/mwr/internal/mwr"
	"github.com/rtm0/mwr/internal/mwr/mwrtest"
)

var l1cDims = []string{"n_scans", "n_fovs"}

func l1bDims(v mwr.Variant) []string {
	return []string{"n_scans", "n_fovs", v.Naming().FeedhornDim}
}

func TestAssembleGeolocationL1B(t *testing.T) {
	for _, tc := range []struct {
		epsSterna bool
		variant   mwr.Variant
	}{
		{true, mwr.Primary},
		{false, mwr.CrossCalibration},
	} {
		s := mwrtest.Store(mwrtest.L1B(tc.epsSterna))
		g, err := mwr.AssembleGeolocation(s, tc.variant.Naming(), l1bDims(tc.variant), mwr.DefaultGeoScaling)
		s.Close()
		if err != nil {
			t.Fatalf("%v: %v", tc.variant, err)
		}
		want := []int{10, 145, 4}
		for _, f := range g.Fields() {
			if !reflect.DeepEqual(f.Shape, want) || !reflect.DeepEqual(f.Dims, l1bDims(tc.variant)) {
				t.Errorf("%v: %s has dims %v shape %v", tc.variant, f.Name, f.Dims, f.Shape)
			}
			if !f.SameGrid(g.Longitude) {
				t.Errorf("%v: %s is not on the longitude grid", tc.variant, f.Name)
			}
		}

		// Raw longitude 900000 at scale 1e-4.
		if got := g.Longitude.At(2, 72, 2); !closeTo(got, 90) {
			t.Errorf("%v: longitude = %v, want 90", tc.variant, got)
		}
		// Latitude has no scale attributes and falls back to 1e-4.
		if got := g.Latitude.At(0, 0, 0); !closeTo(got, -90) {
			t.Errorf("%v: latitude = %v, want -90", tc.variant, got)
		}
		// Angles are degrees*100.
		if got := g.SolarZenith.At(9, 144, 3); !closeTo(got, 359.93) {
			t.Errorf("%v: solar zenith = %v, want 359.93", tc.variant, got)
		}
		if got := g.SatelliteAzimuth.Attrs["units"]; got != "degrees" {
			t.Errorf("%v: units = %v, want degrees", tc.variant, got)
		}
	}
}

func TestAssembleGeolocationL1C(t *testing.T) {
	s := mwrtest.Store(mwrtest.L1C())
	defer s.Close()
	g, err := mwr.AssembleGeolocation(s, mwr.CrossCalibration.Naming(), l1cDims, mwr.DefaultGeoScaling)
	if err != nil {
		t.Fatal(err)
	}
	lons := mwrtest.Longitudes(10 * 145)
	for _, f := range g.Fields() {
		if !reflect.DeepEqual(f.Shape, []int{10, 145}) {
			t.Errorf("%s: shape %v, want [10 145]", f.Name, f.Shape)
		}
	}
	for scan := 0; scan < 10; scan++ {
		for fov := 0; fov < 145; fov++ {
			want := float64(lons[scan*145+fov]) * 1e-4
			if got := g.Longitude.At(scan, fov); !closeTo(got, want) {
				t.Fatalf("longitude[%d,%d] = %v, want %v", scan, fov, got, want)
			}
		}
	}
}

func TestAssembleGeolocationCustomScaling(t *testing.T) {
	s := mwrtest.Store(mwrtest.L1C())
	defer s.Close()
	sc := mwr.GeoScaling{
		LonLat: mwr.Scaling{Scale: 1e-4},
		Angle:  mwr.Scaling{Scale: 1},
	}
	g, err := mwr.AssembleGeolocation(s, mwr.CrossCalibration.Naming(), l1cDims, sc)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := g.SolarAzimuth.At(9, 144), float64(mwrtest.Angles(1450)[1449]); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAssembleGeolocationShapeMismatch(t *testing.T) {
	dims := []string{"n_scans", "n_fovs"}
	tests := []struct {
		name   string
		mutate func(*mwrtest.Group)
		field  string
	}{
		{
			name: "short angle",
			mutate: func(g *mwrtest.Group) {
				g.AddVar("data/navigation/aws_solar_zenith_angle", make([][]int32, 10), dims)
			},
			field: mwr.SolarZenith,
		},
		{
			name: "fewer scans",
			mutate: func(g *mwrtest.Group) {
				lat := make([][]int32, 9)
				for i := range lat {
					lat[i] = make([]int32, 145)
				}
				g.AddVar("data/navigation/aws_lat", lat, dims)
			},
			field: mwr.Latitude,
		},
		{
			name: "renamed dimension",
			mutate: func(g *mwrtest.Group) {
				sat := make([][]int32, 10)
				for i := range sat {
					sat[i] = make([]int32, 145)
				}
				g.AddVar("data/navigation/aws_satellite_zenith_angle", sat, []string{"n_scans", "x"})
			},
			field: mwr.SatelliteZenith,
		},
		{
			name: "horn axis",
			mutate: func(g *mwrtest.Group) {
				lon := make([][][]int32, 10)
				for i := range lon {
					lon[i] = make([][]int32, 145)
					for j := range lon[i] {
						lon[i][j] = make([]int32, 4)
					}
				}
				g.AddVar("data/navigation/aws_lon", lon, []string{"n_scans", "n_fovs", "n_geo_groups"})
			},
			field: mwr.Longitude,
		},
	}
	for _, tc := range tests {
		g := mwrtest.L1C()
		tc.mutate(g)
		s := mwrtest.Store(g)
		_, err := mwr.AssembleGeolocation(s, mwr.CrossCalibration.Naming(), l1cDims, mwr.DefaultGeoScaling)
		s.Close()
		if !errors.Is(err, mwr.ErrShapeMismatch) {
			t.Errorf("%s: got %v, want ErrShapeMismatch", tc.name, err)
			continue
		}
		var de *mwr.DatasetError
		if !errors.As(err, &de) || de.Name != tc.field {
			t.Errorf("%s: got %v, want an error about %s", tc.name, err, tc.field)
		}
	}
}

func TestAssembleGeolocationMissingVariable(t *testing.T) {
	g := mwrtest.L1B(true)
	g.RemoveVar("data/navigation/satellite_azimuth_angle")
	s := mwrtest.Store(g)
	defer s.Close()
	_, err := mwr.AssembleGeolocation(s, mwr.Primary.Naming(), l1bDims(mwr.Primary), mwr.DefaultGeoScaling)
	if !errors.Is(err, mwr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	var de *mwr.DatasetError
	if !errors.As(err, &de) || de.Path != "data/navigation/satellite_azimuth_angle" {
		t.Errorf("got %v, want an error naming the missing path", err)
	}
}
