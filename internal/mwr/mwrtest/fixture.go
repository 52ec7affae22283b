package mwrtest

import (
	"time"

	"github.com/rtm0/mwr/internal/fname"
	"github.com/rtm0/mwr/internal/store"
)

// Dimensions of the fixture files.
const (
	NumScans    = 10
	NumFOVs     = 145
	NumChannels = 19
	NumHorns    = 4
)

// Encoding of the fixture brightness temperatures.
const (
	MissingValue = -2147483648
	ValidMin     = 0
	ValidMax     = 700000
	TbScale      = 0.001
	LonLatScale  = 1e-4
)

const sensingTimeLayout = "2006-01-02 15:04:05.000000"

var (
	SensingStart   = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	SensingEnd     = time.Date(2024, 9, 1, 12, 15, 0, 0, time.UTC)
	ProcessingTime = time.Date(2024, 11, 21, 8, 59, 11, 0, time.UTC)
)

// Sub-satellite points of the level-1B fixtures.
const (
	SubSatLatStart = 55.41
	SubSatLonStart = 304.79
	SubSatLatEnd   = 22.39
	SubSatLonEnd   = 296.79
)

// BrightnessTemperature returns the raw brightness temperature cube,
// (n_scans, n_fovs, n_channels). Three samples are invalid: [0][0][0] is the
// missing value, [1][0][0] is above valid_max and [2][0][0] below valid_min.
// Every other sample is in range.
func BrightnessTemperature() [][][]int32 {
	tb := make([][][]int32, NumScans)
	for s := range tb {
		tb[s] = make([][]int32, NumFOVs)
		for f := range tb[s] {
			tb[s][f] = make([]int32, NumChannels)
			for c := range tb[s][f] {
				i := (s*NumFOVs+f)*NumChannels + c
				tb[s][f][c] = int32(i * 7919 % (ValidMax + 1))
			}
		}
	}
	tb[0][0][0] = MissingValue
	tb[1][0][0] = ValidMax + 10
	tb[2][0][0] = -10
	return tb
}

// ramp returns n values i*maxval/n - shift, truncated to int32.
func ramp(n int, maxval, shift float64) []int32 {
	r := make([]int32, n)
	for i := range r {
		r[i] = int32(float64(i)*maxval/float64(n) - shift)
	}
	return r
}

func reshape3(flat []int32, a, b, c int) [][][]int32 {
	out := make([][][]int32, a)
	for i := range out {
		out[i] = make([][]int32, b)
		for j := range out[i] {
			k := (i*b + j) * c
			out[i][j] = flat[k : k+c : k+c]
		}
	}
	return out
}

func reshape2(flat []int32, a, b int) [][]int32 {
	out := make([][]int32, a)
	for i := range out {
		out[i] = flat[i*b : (i+1)*b : (i+1)*b]
	}
	return out
}

// Longitudes returns the raw longitudes of n geolocation samples: a ramp
// over [0, 3600000), i.e. [0, 360) degrees at scale 1e-4.
func Longitudes(n int) []int32 {
	return ramp(n, 3600000, 0)
}

// Latitudes returns the raw latitudes of n geolocation samples: a ramp
// over [-900000, 900000).
func Latitudes(n int) []int32 {
	return ramp(n, 1800000, 900000)
}

// Angles returns the raw angles of n geolocation samples: a ramp over
// [0, 36000), i.e. degrees*100.
func Angles(n int) []int32 {
	return ramp(n, 36000, 0)
}

func addGlobals(g *Group) {
	g.SetAttr("sensing_start_time_utc", SensingStart.Format(sensingTimeLayout))
	g.SetAttr("sensing_end_time_utc", SensingEnd.Format(sensingTimeLayout))
	g.SetAttr("instrument", "MWR")
	g.SetAttr("orbit_start", int64(9991))
	g.SetAttr("orbit_end", int64(9992))
}

func addBrightnessTemperature(g *Group, path string) {
	g.AddVar(path, BrightnessTemperature(), []string{"n_scans", "n_fovs", "n_channels"},
		Attr{"scale_factor", TbScale},
		Attr{"add_offset", 0.0},
		Attr{"missing_value", int64(MissingValue)},
		Attr{"valid_min", int64(ValidMin)},
		Attr{"valid_max", int64(ValidMax)},
	)
}

// L1B builds a level-1B file. epsSterna selects the EPS-Sterna naming,
// otherwise the AWS naming with "aws_" prefixes is used.
func L1B(epsSterna bool) *Group {
	feedhorns, prefix, lon, lat := "n_feedhorns", "", "longitude", "latitude"
	if !epsSterna {
		feedhorns, prefix, lon, lat = "n_geo_groups", "aws_", "aws_lon", "aws_lat"
	}
	dims := []string{"n_scans", "n_fovs", feedhorns}
	n := NumScans * NumFOVs * NumHorns

	g := NewGroup()
	addGlobals(g)
	addBrightnessTemperature(g, "data/calibration/"+prefix+"toa_brightness_temperature")
	g.AddVar("data/navigation/"+lon, reshape3(Longitudes(n), NumScans, NumFOVs, NumHorns), dims,
		Attr{"scale_factor", LonLatScale},
		Attr{"add_offset", 0.0},
	)
	g.AddVar("data/navigation/"+lat, reshape3(Latitudes(n), NumScans, NumFOVs, NumHorns), dims)
	for _, name := range []string{"solar_azimuth_angle", "solar_zenith_angle", "satellite_azimuth_angle", "satellite_zenith_angle"} {
		g.AddVar("data/navigation/"+prefix+name, reshape3(Angles(n), NumScans, NumFOVs, NumHorns), dims)
	}
	g.AddVar("status/satellite/subsat_latitude_end", SubSatLatEnd, nil)
	g.AddVar("status/satellite/subsat_longitude_start", SubSatLonStart, nil)
	g.AddVar("status/satellite/subsat_latitude_start", SubSatLatStart, nil)
	g.AddVar("status/satellite/subsat_longitude_end", SubSatLonEnd, nil)
	return g
}

// L1C builds a level-1C file. Level-1C files use the AWS naming and have no
// feedhorn axis.
func L1C() *Group {
	dims := []string{"n_scans", "n_fovs"}
	n := NumScans * NumFOVs

	g := NewGroup()
	addGlobals(g)
	addBrightnessTemperature(g, "data/calibration/aws_toa_brightness_temperature")
	g.AddVar("data/navigation/aws_lon", reshape2(Longitudes(n), NumScans, NumFOVs), dims,
		Attr{"scale_factor", LonLatScale},
		Attr{"add_offset", 0.0},
	)
	g.AddVar("data/navigation/aws_lat", reshape2(Latitudes(n), NumScans, NumFOVs), dims)
	for _, name := range []string{"solar_azimuth_angle", "solar_zenith_angle", "satellite_azimuth_angle", "satellite_zenith_angle"} {
		g.AddVar("data/navigation/aws_"+name, reshape2(Angles(n), NumScans, NumFOVs), dims)
	}
	return g
}

// Store wraps g in a store.
func Store(g *Group) *store.NetCDF {
	return store.New(g)
}

// FilenameInfo returns the file name fields of a fixture file. level is
// "1B" or "1C".
func FilenameInfo(level string, epsSterna bool) fname.Info {
	info := fname.Info{
		Country:         "SE",
		Organisation:    "SMHI",
		Location:        "Norrkoping",
		PlatformName:    "AWS1",
		ProcessingLevel: level,
		Originator:      "SMHI",
		ProcessingTime:  ProcessingTime,
		StartTime:       SensingStart,
		EndTime:         SensingEnd,
		Disposition:     "B",
	}
	if epsSterna {
		info.Country = "XX"
		info.Organisation = "EUMETSAT"
		info.Location = "Darmstadt"
		info.Originator = "EUMT"
	}
	return info
}

// Filename returns the file name of a fixture file.
func Filename(level string, epsSterna bool) string {
	return fname.Compose(FilenameInfo(level, epsSterna))
}
