package mwr

import (
	"fmt"
	"strings"
)

// Variant selects one of the two naming conventions of the MWR file family.
type Variant int

const (
	// Primary is the EPS-Sterna naming.
	Primary Variant = iota
	// CrossCalibration is the AWS naming, with "aws_" prefixed variables.
	CrossCalibration
)

func (v Variant) String() string {
	switch v {
	case Primary:
		return "primary"
	case CrossCalibration:
		return "cross-calibration"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// VariantFor returns the variant of a file type such as "eps_sterna_mwr_l1b"
// or "aws1_mwr_l1b".
func VariantFor(fileType string) Variant {
	if strings.HasPrefix(fileType, "eps_sterna") {
		return Primary
	}
	return CrossCalibration
}

// Naming is the set of physical names a variant uses.
type Naming struct {
	FeedhornDim string
	Prefix      string
	Longitude   string
	Latitude    string
}

var namings = map[Variant]Naming{
	Primary: {
		FeedhornDim: "n_feedhorns",
		Prefix:      "",
		Longitude:   "longitude",
		Latitude:    "latitude",
	},
	CrossCalibration: {
		FeedhornDim: "n_geo_groups",
		Prefix:      "aws_",
		Longitude:   "aws_lon",
		Latitude:    "aws_lat",
	},
}

// Naming returns the naming of v. It panics for values other than Primary
// and CrossCalibration.
func (v Variant) Naming() Naming {
	n, ok := namings[v]
	if !ok {
		panic(fmt.Sprintf("mwr: unknown variant %d", int(v)))
	}
	return n
}

// Logical dataset names.
const (
	BrightnessTemperature = "toa_brightness_temperature"
	Longitude             = "longitude"
	Latitude              = "latitude"
	SolarAzimuth          = "solar_azimuth_angle"
	SolarZenith           = "solar_zenith_angle"
	SatelliteAzimuth      = "satellite_azimuth_angle"
	SatelliteZenith       = "satellite_zenith_angle"
)

const (
	calibrationGroup = "data/calibration/"
	navigationGroup  = "data/navigation/"
)

// Path maps a logical dataset name to its physical path.
func (n Naming) Path(logical string) (string, bool) {
	switch logical {
	case BrightnessTemperature:
		return calibrationGroup + n.Prefix + BrightnessTemperature, true
	case Longitude:
		return navigationGroup + n.Longitude, true
	case Latitude:
		return navigationGroup + n.Latitude, true
	case SolarAzimuth, SolarZenith, SatelliteAzimuth, SatelliteZenith:
		return navigationGroup + n.Prefix + logical, true
	}
	return "", false
}
