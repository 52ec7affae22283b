// Package mwr reads level-1B and level-1C files of the MWR microwave
// radiometer flown on AWS and EPS-Sterna. It decodes calibrated brightness
// temperatures and geolocation into physical units.
package mwr

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/rtm0/mwr/internal/fname"
	"github.com/rtm0/mwr/internal/store"
)

// Sensor is the sensor name attached to every dataset.
const Sensor = "mwr"

// ErrClosed is returned by calls on a closed handler.
var ErrClosed = errors.New("handler is closed")

// Level is the processing level of a file.
type Level int

const (
	// L1B files hold horn-resolved geolocation.
	L1B Level = iota
	// L1C files hold horn-aggregated geolocation.
	L1C
)

func (l Level) String() string {
	switch l {
	case L1B:
		return "1B"
	case L1C:
		return "1C"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel parses a processing level as written in file names ("1B", "1C").
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "1B":
		return L1B, nil
	case "1C":
		return L1C, nil
	}
	return 0, fmt.Errorf("unsupported processing level %q", s)
}

// Options configure a Handler. The zero value is usable.
type Options struct {
	// Logger receives debug records of every read. Nil discards them.
	Logger *slog.Logger
	// Scaling is used for navigation variables without scale attributes.
	// The zero value selects DefaultGeoScaling.
	Scaling GeoScaling
}

// DatasetID names a dataset. Horn ("1" to "4") selects one feedhorn of a
// level-1B navigation dataset; empty keeps all of them.
type DatasetID struct {
	Name string
	Horn string
}

func (id DatasetID) String() string {
	if id.Horn == "" {
		return id.Name
	}
	return id.Name + "/horn" + id.Horn
}

// Handler reads one MWR file. It owns the store it was created with.
type Handler struct {
	store    store.Store
	info     fname.Info
	fileType string
	level    Level
	variant  Variant
	naming   Naming
	scaling  GeoScaling
	logger   *slog.Logger

	// Orbital parameters are read once; the file doesn't change.
	orbitRead bool
	orbit     map[string]float64
	orbitErr  error
}

// NewL1B returns a handler for a level-1B file. fileType (e.g.
// "eps_sterna_mwr_l1b", "aws1_mwr_l1b") selects the naming variant.
func NewL1B(s store.Store, info fname.Info, fileType string, opts Options) *Handler {
	return newHandler(s, info, fileType, L1B, opts)
}

// NewL1C returns a handler for a level-1C file.
func NewL1C(s store.Store, info fname.Info, fileType string, opts Options) *Handler {
	return newHandler(s, info, fileType, L1C, opts)
}

func newHandler(s store.Store, info fname.Info, fileType string, level Level, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	scaling := opts.Scaling
	if scaling == (GeoScaling{}) {
		scaling = DefaultGeoScaling
	}
	variant := VariantFor(fileType)
	return &Handler{
		store:    s,
		info:     info,
		fileType: fileType,
		level:    level,
		variant:  variant,
		naming:   variant.Naming(),
		scaling:  scaling,
		logger:   logger.With("file_type", fileType, "level", level.String()),
	}
}

// Open opens the MWR file at filePath. The level is taken from the file
// name.
func Open(filePath, fileType string, opts Options) (*Handler, error) {
	info, err := fname.Parse(filePath)
	if err != nil {
		return nil, err
	}
	level, err := ParseLevel(info.ProcessingLevel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	s, err := store.Open(filePath)
	if err != nil {
		return nil, err
	}
	return newHandler(s, info, fileType, level, opts), nil
}

// Close releases the underlying store. It is safe to call more than once.
func (h *Handler) Close() {
	if h.store != nil {
		h.store.Close()
		h.store = nil
	}
}

// Level returns the processing level of the file.
func (h *Handler) Level() Level {
	return h.level
}

// Variant returns the naming variant of the file.
func (h *Handler) Variant() Variant {
	return h.variant
}

// FileType returns the file type the handler was created with.
func (h *Handler) FileType() string {
	return h.fileType
}

// PlatformName returns the platform, as given by the file name.
func (h *Handler) PlatformName() string {
	return h.info.PlatformName
}

// StartTime returns the start of the observation, as given by the file name.
func (h *Handler) StartTime() time.Time {
	return h.info.StartTime
}

// EndTime returns the end of the observation, as given by the file name.
func (h *Handler) EndTime() time.Time {
	return h.info.EndTime
}

// Dataset reads and decodes a dataset. Names are the channel numbers "1" to
// "19", BrightnessTemperature for the full cube, and the navigation names
// Longitude, Latitude, SolarAzimuth, SolarZenith, SatelliteAzimuth and
// SatelliteZenith.
func (h *Handler) Dataset(id DatasetID) (*Field, error) {
	if h.store == nil {
		return nil, &DatasetError{Name: id.String(), Err: ErrClosed}
	}
	var (
		f   *Field
		err error
	)
	if ch, ok := channelIndex(id.Name); ok {
		f, err = h.channel(id, ch)
	} else {
		switch id.Name {
		case BrightnessTemperature:
			if id.Horn != "" {
				return nil, &DatasetError{Name: id.String(), Err: ErrNotFound}
			}
			f, err = h.brightnessTemperature()
		case Longitude, Latitude:
			f, err = h.navigation(id, h.scaling.LonLat)
		case SolarAzimuth, SolarZenith, SatelliteAzimuth, SatelliteZenith:
			f, err = h.navigation(id, h.scaling.Angle)
		default:
			return nil, &DatasetError{Name: id.String(), Err: ErrNotFound}
		}
	}
	if err != nil {
		return nil, err
	}
	h.annotate(f)
	h.logger.Debug("Read dataset", "name", id.String(), "path", f.Path, "shape", f.Shape)
	return f, nil
}

func (h *Handler) brightnessTemperature() (*Field, error) {
	path, _ := h.naming.Path(BrightnessTemperature)
	v, err := h.store.Variable(path)
	if err != nil {
		return nil, &DatasetError{Name: BrightnessTemperature, Path: path, Err: err}
	}
	f, err := Decode(v)
	if err != nil {
		return nil, &DatasetError{Name: BrightnessTemperature, Path: path, Err: err}
	}
	f.Name = BrightnessTemperature
	f.Attrs["units"] = "K"
	return f, nil
}

func (h *Handler) channel(id DatasetID, ch int) (*Field, error) {
	horn := channelHorns[ch]
	if id.Horn != "" && id.Horn != fmt.Sprint(horn) {
		return nil, &DatasetError{Name: id.String(), Err: fmt.Errorf("channel %s is on horn %d: %w", id.Name, horn, ErrNotFound)}
	}
	bt, err := h.brightnessTemperature()
	if err != nil {
		return nil, err
	}
	f, err := bt.Select(dimChannels, ch)
	if err != nil {
		return nil, &DatasetError{Name: id.String(), Path: bt.Path, Err: err}
	}
	f.Name = id.Name
	f.Attrs["channel"] = ch + 1
	f.Attrs["horn"] = horn
	return f, nil
}

func (h *Handler) navigation(id DatasetID, fallback Scaling) (*Field, error) {
	if h.level == L1C && id.Horn != "" {
		return nil, &DatasetError{Name: id.String(), Err: fmt.Errorf("level-1C geolocation has no horns: %w", ErrNotFound)}
	}
	f, err := readNavigation(h.store, h.naming, id.Name, fallback)
	if err != nil {
		return nil, err
	}
	if id.Horn == "" {
		return f, nil
	}
	i, ok := hornIndex(id.Horn)
	if !ok {
		return nil, &DatasetError{Name: id.String(), Err: fmt.Errorf("unknown horn %q: %w", id.Horn, ErrNotFound)}
	}
	sel, err := f.Select(h.naming.FeedhornDim, i)
	if err != nil {
		return nil, &DatasetError{Name: id.String(), Path: f.Path, Err: err}
	}
	sel.Attrs["horn"] = i + 1
	return sel, nil
}

// Geolocation reads the navigation group. Level-1B members have the
// dimensions (n_scans, n_fovs, feedhorn), level-1C members (n_scans, n_fovs).
func (h *Handler) Geolocation() (*GeoGroup, error) {
	if h.store == nil {
		return nil, &DatasetError{Name: "geolocation", Err: ErrClosed}
	}
	g, err := AssembleGeolocation(h.store, h.naming, geoDims(h.level, h.naming), h.scaling)
	if err != nil {
		return nil, err
	}
	for _, f := range g.Fields() {
		h.annotate(f)
	}
	h.logger.Debug("Assembled geolocation", "dims", g.Dims(), "shape", g.Shape())
	return g, nil
}

// Metadata reads the scalar metadata of the file.
func (h *Handler) Metadata() (*Metadata, error) {
	if h.store == nil {
		return nil, &DatasetError{Name: "metadata", Err: ErrClosed}
	}
	return readMetadata(h.store)
}

// MetadataValue returns one scalar of the file metadata, e.g. "orbit_start"
// or "subsat_latitude_end".
func (h *Handler) MetadataValue(key string) (any, error) {
	if h.store == nil {
		return nil, &DatasetError{Name: key, Err: ErrClosed}
	}
	return readMetadataValue(h.store, key)
}

// OrbitalParameters returns the sub-satellite points at the start and end
// of the observation.
func (h *Handler) OrbitalParameters() (map[string]float64, error) {
	if !h.orbitRead {
		if h.store == nil {
			return nil, &DatasetError{Name: "orbital_parameters", Err: ErrClosed}
		}
		h.orbit, h.orbitErr = h.readOrbitalParameters()
		h.orbitRead = true
	}
	if h.orbitErr != nil {
		return nil, h.orbitErr
	}
	return maps.Clone(h.orbit), nil
}

func (h *Handler) readOrbitalParameters() (map[string]float64, error) {
	params := map[string]float64{}
	for _, p := range []struct{ key, name string }{
		{"subsat_latitude_start", "sub_satellite_latitude_start"},
		{"subsat_longitude_start", "sub_satellite_longitude_start"},
		{"subsat_latitude_end", "sub_satellite_latitude_end"},
		{"subsat_longitude_end", "sub_satellite_longitude_end"},
	} {
		v, err := readMetadataValue(h.store, p.key)
		if err != nil {
			return nil, err
		}
		params[p.name] = v.(float64)
	}
	return params, nil
}

func (h *Handler) annotate(f *Field) {
	if f.Attrs == nil {
		f.Attrs = map[string]any{}
	}
	f.Attrs["platform_name"] = h.info.PlatformName
	f.Attrs["sensor"] = Sensor
	f.Attrs["start_time"] = h.info.StartTime
	f.Attrs["end_time"] = h.info.EndTime
	f.Attrs["file_type"] = h.fileType
	params, err := h.OrbitalParameters()
	if err != nil {
		h.logger.Debug("No orbital parameters", "err", err)
		return
	}
	f.Attrs["orbital_parameters"] = params
}
