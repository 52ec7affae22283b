package mwr

import (
	"fmt"
	"math"
	"time"
)

// Scanner retrieves brightness temperature records from a file one scan
// line at a time.
type Scanner struct {
	h      *Handler
	bt     *Field
	geo    *GeoGroup
	ts     []int64
	nFOVs  int
	nChans int
	total  int
	pos    int
	recs   []Record
}

// NewScanner creates a new scanner over the file read by h. The handler
// must stay open while the scanner is used.
func NewScanner(h *Handler) (*Scanner, error) {
	bt, err := h.Dataset(DatasetID{Name: BrightnessTemperature})
	if err != nil {
		return nil, err
	}
	if len(bt.Shape) != 3 || bt.Axis(dimScans) != 0 || bt.Axis(dimFOVs) != 1 || bt.Axis(dimChannels) != 2 {
		return nil, &DatasetError{Name: BrightnessTemperature, Path: bt.Path,
			Err: fmt.Errorf("%w: dimensions %v, want [%s %s %s]", ErrShapeMismatch, bt.Dims, dimScans, dimFOVs, dimChannels)}
	}
	geo, err := h.Geolocation()
	if err != nil {
		return nil, err
	}
	if geo.Shape()[0] != bt.Shape[0] || geo.Shape()[1] != bt.Shape[1] {
		return nil, &DatasetError{Name: "geolocation", Path: geo.Longitude.Path,
			Err: fmt.Errorf("%w: geolocation grid %v, brightness temperature grid %v", ErrShapeMismatch, geo.Shape()[:2], bt.Shape[:2])}
	}
	if h.level == L1B && geo.Shape()[2] != NumHorns {
		return nil, &DatasetError{Name: "geolocation", Path: geo.Longitude.Path,
			Err: fmt.Errorf("%w: %d horns, want %d", ErrShapeMismatch, geo.Shape()[2], NumHorns)}
	}
	if bt.Shape[2] > NumChannels {
		return nil, &DatasetError{Name: BrightnessTemperature, Path: bt.Path,
			Err: fmt.Errorf("%w: %d channels, want at most %d", ErrShapeMismatch, bt.Shape[2], NumChannels)}
	}

	s := &Scanner{
		h:      h,
		bt:     bt,
		geo:    geo,
		nFOVs:  bt.Shape[1],
		nChans: bt.Shape[2],
	}
	s.ts = scanTimes(h.info.StartTime, h.info.EndTime, bt.Shape[0])
	if md, err := h.Metadata(); err == nil {
		s.ts = scanTimes(md.SensingStart, md.SensingEnd, bt.Shape[0])
	}
	for scan := 0; scan < bt.Shape[0]; scan++ {
		for fov := 0; fov < s.nFOVs; fov++ {
			for ch := 0; ch < s.nChans; ch++ {
				if _, ok := s.record(scan, fov, ch); ok {
					s.total++
				}
			}
		}
	}
	return s, nil
}

// scanTimes spreads n scan times in milliseconds evenly between start and
// end.
func scanTimes(start, end time.Time, n int) []int64 {
	ts := make([]int64, n)
	step := time.Duration(0)
	if n > 1 {
		step = end.Sub(start) / time.Duration(n-1)
	}
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * step).UnixMilli()
	}
	return ts
}

// Summary returns the summary information about the file suitable for
// logging.
func (s *Scanner) Summary() []any {
	st := s.bt.Stats()
	return []any{
		"platform", s.h.PlatformName(),
		"level", s.h.level.String(),
		"variant", s.h.variant.String(),
		"dims", s.bt.Dims,
		"scanCnt", len(s.ts),
		"fovCnt", s.nFOVs,
		"channelCnt", s.nChans,
		"validTb", st.Valid,
		"minTb", st.Min,
		"maxTb", st.Max,
		"totalRecCnt", s.TotalRecCount(),
	}
}

// TotalRecCount returns the number of records the scanner emits: one per
// valid brightness temperature with a valid location.
func (s *Scanner) TotalRecCount() int {
	return s.total
}

// Scan builds the records of the next scan line.
func (s *Scanner) Scan() bool {
	if s.pos >= len(s.ts) {
		return false
	}
	s.recs = make([]Record, 0, s.nFOVs*s.nChans)
	for fov := 0; fov < s.nFOVs; fov++ {
		for ch := 0; ch < s.nChans; ch++ {
			if r, ok := s.record(s.pos, fov, ch); ok {
				s.recs = append(s.recs, r)
			}
		}
	}
	s.pos++
	return true
}

// record returns the record for one sample, or false if the sample or its
// location is invalid.
func (s *Scanner) record(scan, fov, ch int) (Record, bool) {
	tb := s.bt.At(scan, fov, ch)
	if math.IsNaN(tb) {
		return Record{}, false
	}
	horn := channelHorns[ch]
	at := func(f *Field) float64 {
		if s.h.level == L1B {
			return f.At(scan, fov, horn-1)
		}
		return f.At(scan, fov)
	}
	r := Record{
		Timestamp:             s.ts[scan],
		Scan:                  scan,
		FOV:                   fov,
		Channel:               ch + 1,
		Horn:                  horn,
		Latitude:              at(s.geo.Latitude),
		Longitude:             at(s.geo.Longitude),
		BrightnessTemperature: tb,
		SolarZenith:           at(s.geo.SolarZenith),
		SatelliteZenith:       at(s.geo.SatelliteZenith),
	}
	if math.IsNaN(r.Latitude) || math.IsNaN(r.Longitude) {
		return Record{}, false
	}
	return r, true
}

// Records returns the records that have been read by the last Scan() operation.
// The function transfers ownership of records to the caller and the subsequent
// calls to this function without prior invocation of Scan() will return nil.
func (s *Scanner) Records() []Record {
	recs := s.recs
	s.recs = nil
	return recs
}

