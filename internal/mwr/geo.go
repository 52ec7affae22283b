package mwr

import (
	"fmt"
	"slices"

	"github.com/rtm0/mwr/internal/store"
)

// GeoScaling holds the decodings used for navigation variables that carry
// no scale_factor attribute.
type GeoScaling struct {
	// LonLat applies to longitude and latitude, stored as degrees*1e4.
	LonLat Scaling
	// Angle applies to the solar and satellite angles, stored as
	// degrees*100.
	Angle Scaling
}

// DefaultGeoScaling is the encoding of the MWR navigation group.
var DefaultGeoScaling = GeoScaling{
	LonLat: Scaling{Scale: 1e-4},
	Angle:  Scaling{Scale: 0.01},
}

// GeoGroup is the geolocation of one file. All members share dimensions and
// shape.
type GeoGroup struct {
	Longitude        *Field
	Latitude         *Field
	SolarAzimuth     *Field
	SolarZenith      *Field
	SatelliteAzimuth *Field
	SatelliteZenith  *Field
}

// Fields returns the members of the group in a fixed order.
func (g *GeoGroup) Fields() []*Field {
	return []*Field{
		g.Longitude,
		g.Latitude,
		g.SolarAzimuth,
		g.SolarZenith,
		g.SatelliteAzimuth,
		g.SatelliteZenith,
	}
}

// Dims returns the dimensions shared by the group.
func (g *GeoGroup) Dims() []string {
	return g.Longitude.Dims
}

// Shape returns the shape shared by the group.
func (g *GeoGroup) Shape() []int {
	return g.Longitude.Shape
}

// geoDims returns the geolocation dimensions of a level-1B file
// (horn-resolved) or a level-1C file (horn-aggregated).
func geoDims(level Level, n Naming) []string {
	if level == L1B {
		return []string{"n_scans", "n_fovs", n.FeedhornDim}
	}
	return []string{"n_scans", "n_fovs"}
}

// AssembleGeolocation reads and decodes the six navigation variables and
// checks that they all have the dimensions dims.
func AssembleGeolocation(s store.Store, n Naming, dims []string, sc GeoScaling) (*GeoGroup, error) {
	var g GeoGroup
	for _, m := range []struct {
		name     string
		dst      **Field
		fallback Scaling
	}{
		{Longitude, &g.Longitude, sc.LonLat},
		{Latitude, &g.Latitude, sc.LonLat},
		{SolarAzimuth, &g.SolarAzimuth, sc.Angle},
		{SolarZenith, &g.SolarZenith, sc.Angle},
		{SatelliteAzimuth, &g.SatelliteAzimuth, sc.Angle},
		{SatelliteZenith, &g.SatelliteZenith, sc.Angle},
	} {
		f, err := readNavigation(s, n, m.name, m.fallback)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(f.Dims, dims) {
			return nil, &DatasetError{
				Name: m.name,
				Path: f.Path,
				Err:  fmt.Errorf("%w: dimensions %v, want %v", ErrShapeMismatch, f.Dims, dims),
			}
		}
		if len(f.Shape) != len(dims) {
			return nil, &DatasetError{
				Name: m.name,
				Path: f.Path,
				Err:  fmt.Errorf("%w: rank %d, want %d", ErrShapeMismatch, len(f.Shape), len(dims)),
			}
		}
		if g.Longitude != nil && !slices.Equal(f.Shape, g.Longitude.Shape) {
			return nil, &DatasetError{
				Name: m.name,
				Path: f.Path,
				Err:  fmt.Errorf("%w: shape %v, %s has %v", ErrShapeMismatch, f.Shape, Longitude, g.Longitude.Shape),
			}
		}
		*m.dst = f
	}
	return &g, nil
}

func readNavigation(s store.Store, n Naming, name string, fallback Scaling) (*Field, error) {
	path, ok := n.Path(name)
	if !ok {
		return nil, &DatasetError{Name: name, Err: ErrNotFound}
	}
	v, err := s.Variable(path)
	if err != nil {
		return nil, &DatasetError{Name: name, Path: path, Err: err}
	}
	f, err := DecodeWith(v, fallback)
	if err != nil {
		return nil, &DatasetError{Name: name, Path: path, Err: err}
	}
	f.Name = name
	f.Attrs["units"] = "degrees"
	return f, nil
}
