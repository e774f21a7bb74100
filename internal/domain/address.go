package domain

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the kind of Mesonet file a request targets.
type Mode int

const (
	// Snapshot files hold every station for one five-minute instant.
	Snapshot Mode = iota
	// TimeSeries files hold one station for a whole UTC day.
	TimeSeries
)

// Tag returns the directory tag and file extension for the mode.
func (m Mode) Tag() string {
	if m == TimeSeries {
		return "mts"
	}
	return "mdf"
}

func (m Mode) String() string {
	if m == TimeSeries {
		return "timeseries"
	}
	return "snapshot"
}

// ResourceAddress locates one file on the provider.
type ResourceAddress struct {
	Mode     Mode
	Dir      string // e.g. "/mdf/2008/11/20/"
	Filename string // e.g. "200811201405.mdf"
	Time     time.Time
}

// BuildAddress computes the file address for t. An empty stationID selects a
// network snapshot; otherwise the station's time-series file is addressed.
func BuildAddress(t time.Time, stationID string) ResourceAddress {
	if stationID == "" {
		// minute%5 <= minute, so flooring never crosses an hour boundary.
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%5, 0, 0, t.Location())
		return ResourceAddress{
			Mode:     Snapshot,
			Dir:      dirFor(Snapshot, t),
			Filename: t.Format("200601021504") + "." + Snapshot.Tag(),
			Time:     t,
		}
	}

	return ResourceAddress{
		Mode:     TimeSeries,
		Dir:      dirFor(TimeSeries, t),
		Filename: t.Format("20060102") + strings.ToLower(stationID) + "." + TimeSeries.Tag(),
		Time:     t,
	}
}

func dirFor(m Mode, t time.Time) string {
	return fmt.Sprintf("/%s/%d/%d/%d/", m.Tag(), t.Year(), int(t.Month()), t.Day())
}

// Path returns the directory joined with the filename.
func (a ResourceAddress) Path() string {
	return a.Dir + a.Filename
}

// URL assembles the provider download URL. The provider expects dir and
// filename unescaped.
func (a ResourceAddress) URL(baseURL string) string {
	return baseURL + "?dir=" + a.Path() + "&filename=" + a.Filename
}

// BaseDate returns 00 UTC of the file's date, the origin of the TIME column.
func (a ResourceAddress) BaseDate() time.Time {
	return time.Date(a.Time.Year(), a.Time.Month(), a.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a request date given as YYYYMMDD or YYYYMMDDHHMM, in UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"20060102", "200601021504"} {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYYMMDD or YYYYMMDDHHMM", s)
}
