package mwr

// Record is one brightness temperature reading of one channel at a given
// geo location at a given time.
type Record struct {
	// Dimensions
	Timestamp int64
	Scan      int
	FOV       int
	Channel   int
	Horn      int
	Latitude  float64
	Longitude float64

	// Metrics
	BrightnessTemperature float64
	SolarZenith           float64
	SatelliteZenith       float64
}
