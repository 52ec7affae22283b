// Package fname parses and composes the names of EUMETSAT MWR level-1
// product files, e.g.
//
//	W_XX-EUMETSAT-Darmstadt,SAT,AWS1-MWR-1B-RAD_C_EUMT_20241121085911_G_D_20241109234502_20241110004559_T_B____.nc
package fname

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

const timeLayout = "20060102150405"

// ErrNoMatch is returned for names that are not MWR product names.
var ErrNoMatch = errors.New("file name does not match the MWR naming pattern")

var nameRE = regexp.MustCompile(`^W_([A-Za-z]{2})-([^-,]+)-([^,]+),SAT,([^-]+)-MWR-([^-]+)-RAD_C_(.{4})_(\d{14})_G_D_(\d{14})_(\d{14})_T_([A-Z])____\.nc$`)

// Info holds the fields encoded in a product file name.
type Info struct {
	Country         string
	Organisation    string
	Location        string
	PlatformName    string
	ProcessingLevel string
	Originator      string
	ProcessingTime  time.Time
	StartTime       time.Time
	EndTime         time.Time
	Disposition     string
}

// Parse extracts the fields of the base name of filePath.
func Parse(filePath string) (Info, error) {
	base := filepath.Base(filePath)
	m := nameRE.FindStringSubmatch(base)
	if m == nil {
		return Info{}, fmt.Errorf("%q: %w", base, ErrNoMatch)
	}
	info := Info{
		Country:         m[1],
		Organisation:    m[2],
		Location:        m[3],
		PlatformName:    m[4],
		ProcessingLevel: m[5],
		Originator:      m[6],
		Disposition:     m[10],
	}
	for _, f := range []struct {
		dst *time.Time
		s   string
	}{
		{&info.ProcessingTime, m[7]},
		{&info.StartTime, m[8]},
		{&info.EndTime, m[9]},
	} {
		t, err := time.ParseInLocation(timeLayout, f.s, time.UTC)
		if err != nil {
			return Info{}, fmt.Errorf("%q: %w", base, err)
		}
		*f.dst = t
	}
	return info, nil
}

// Compose builds a file name from info. An empty disposition is written as
// "B".
func Compose(info Info) string {
	disp := info.Disposition
	if disp == "" {
		disp = "B"
	}
	return fmt.Sprintf("W_%s-%s-%s,SAT,%s-MWR-%s-RAD_C_%s_%s_G_D_%s_%s_T_%s____.nc",
		info.Country,
		info.Organisation,
		info.Location,
		info.PlatformName,
		info.ProcessingLevel,
		info.Originator,
		info.ProcessingTime.UTC().Format(timeLayout),
		info.StartTime.UTC().Format(timeLayout),
		info.EndTime.UTC().Format(timeLayout),
		disp,
	)
}
