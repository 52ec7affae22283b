package mwr

import (
	"errors"
	"fmt"
	"time"

	"github.com/rtm0/mwr/internal/store"
)

// Layouts accepted for the sensing_*_time_utc attributes.
var sensingTimeLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	time.RFC3339Nano,
}

const satelliteGroup = "status/satellite/"

type metadataSource struct {
	path string
	key  string
}

// Metadata keys and where they live in the file. Global attributes have
// an empty path; sub-satellite points are scalar variables.
var metadataSources = map[string]metadataSource{
	"instrument":             {key: "instrument"},
	"orbit_start":            {key: "orbit_start"},
	"orbit_end":              {key: "orbit_end"},
	"sensing_start_time_utc": {key: "sensing_start_time_utc"},
	"sensing_end_time_utc":   {key: "sensing_end_time_utc"},
	"subsat_latitude_start":  {path: satelliteGroup + "subsat_latitude_start"},
	"subsat_longitude_start": {path: satelliteGroup + "subsat_longitude_start"},
	"subsat_latitude_end":    {path: satelliteGroup + "subsat_latitude_end"},
	"subsat_longitude_end":   {path: satelliteGroup + "subsat_longitude_end"},
}

// LonLat is a ground position in degrees.
type LonLat struct {
	Lon float64
	Lat float64
}

// Metadata holds the scalar attributes of a file.
type Metadata struct {
	Instrument   string
	OrbitStart   int64
	OrbitEnd     int64
	SensingStart time.Time
	SensingEnd   time.Time
	// Sub-satellite points are nil in files without a status group, such
	// as level-1C files.
	SubSatStart *LonLat
	SubSatEnd   *LonLat
}

// readMetadataValue returns the raw value of a metadata key.
func readMetadataValue(s store.Store, key string) (any, error) {
	src, ok := metadataSources[key]
	if !ok {
		return nil, &DatasetError{Name: key, Err: ErrNotFound}
	}
	if src.path != "" {
		v, err := s.Variable(src.path)
		if err != nil {
			return nil, &DatasetError{Name: key, Path: src.path, Err: err}
		}
		if v.Len() != 1 {
			return nil, &DatasetError{Name: key, Path: src.path, Err: fmt.Errorf("%w: %d values, want a scalar", ErrShapeMismatch, v.Len())}
		}
		return v.Data[0], nil
	}
	a, err := s.Attribute("/", src.key)
	if err != nil {
		return nil, &DatasetError{Name: key, Path: "/", Err: err}
	}
	return a.Value(), nil
}

func readMetadata(s store.Store) (*Metadata, error) {
	var md Metadata
	root := func(key string, conv func(store.Attr) error) error {
		a, err := s.Attribute("/", key)
		if err == nil {
			err = conv(a)
		}
		if err != nil {
			return &DatasetError{Name: key, Path: "/", Err: err}
		}
		return nil
	}
	err := root("instrument", func(a store.Attr) (err error) {
		md.Instrument, err = a.String()
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, o := range []struct {
		key string
		dst *int64
	}{
		{"orbit_start", &md.OrbitStart},
		{"orbit_end", &md.OrbitEnd},
	} {
		err := root(o.key, func(a store.Attr) (err error) {
			*o.dst, err = a.Int64()
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	for _, t := range []struct {
		key string
		dst *time.Time
	}{
		{"sensing_start_time_utc", &md.SensingStart},
		{"sensing_end_time_utc", &md.SensingEnd},
	} {
		err := root(t.key, func(a store.Attr) error {
			str, err := a.String()
			if err != nil {
				return err
			}
			*t.dst, err = parseSensingTime(str)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	for _, p := range []struct {
		lat, lon string
		dst      **LonLat
	}{
		{"subsat_latitude_start", "subsat_longitude_start", &md.SubSatStart},
		{"subsat_latitude_end", "subsat_longitude_end", &md.SubSatEnd},
	} {
		lat, err := readMetadataValue(s, p.lat)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		lon, err := readMetadataValue(s, p.lon)
		if err != nil {
			return nil, err
		}
		*p.dst = &LonLat{Lon: lon.(float64), Lat: lat.(float64)}
	}
	return &md, nil
}

func parseSensingTime(s string) (time.Time, error) {
	var err error
	for _, layout := range sensingTimeLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: sensing time %q: %v", ErrMalformedAttributes, s, err)
}
