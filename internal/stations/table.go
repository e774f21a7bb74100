// Package stations loads the Mesonet site table (geomeso.csv) and resolves
// station identifiers to coordinates.
package stations

import (
	"cmp"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/mesonet-etl/internal/domain"
)

// ErrNoHeader is returned when the site table has no "stnm" header row.
var ErrNoHeader = errors.New("stations: header row not found")

// Table is an immutable site table sorted by station id.
// It implements domain.StationLocator.
type Table struct {
	stations []domain.Station
}

// Load reads a site table from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a site table. Lines before the header row (the one starting
// with "stnm") are preamble and ignored.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var cols map[string]int
	var out []domain.Station
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read station table line %d: %w", line, err)
		}

		if cols == nil {
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "stnm") {
				cols = headerIndex(rec)
				if err := requireColumns(cols, "stnm", "stid", "nlat", "elon"); err != nil {
					return nil, err
				}
			}
			continue
		}

		st, err := parseStation(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("station table line %d: %w", line, err)
		}
		out = append(out, st)
	}
	if cols == nil {
		return nil, ErrNoHeader
	}

	slices.SortFunc(out, func(a, b domain.Station) int { return cmp.Compare(a.ID, b.ID) })
	return &Table{stations: out}, nil
}

func headerIndex(rec []string) map[string]int {
	m := make(map[string]int, len(rec))
	for i, h := range rec {
		m[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return m
}

func requireColumns(cols map[string]int, names ...string) error {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return fmt.Errorf("stations: missing column %q", n)
		}
	}
	return nil
}

func parseStation(rec []string, cols map[string]int) (domain.Station, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	num, err := strconv.Atoi(field("stnm"))
	if err != nil {
		return domain.Station{}, fmt.Errorf("stnm: %w", err)
	}
	lat, err := strconv.ParseFloat(field("nlat"), 64)
	if err != nil {
		return domain.Station{}, fmt.Errorf("nlat: %w", err)
	}
	lon, err := strconv.ParseFloat(field("elon"), 64)
	if err != nil {
		return domain.Station{}, fmt.Errorf("elon: %w", err)
	}
	id := strings.ToUpper(field("stid"))
	if id == "" {
		return domain.Station{}, errors.New("empty stid")
	}

	return domain.Station{
		ID:     id,
		Number: num,
		Name:   field("name"),
		Geo:    domain.Geo{Lat: lat, Lon: lon},
	}, nil
}

// Lookup finds a station by id, ignoring case.
func (t *Table) Lookup(_ context.Context, stationID string) (domain.Station, bool) {
	id := strings.ToUpper(strings.TrimSpace(stationID))
	i, ok := slices.BinarySearchFunc(t.stations, id, func(s domain.Station, id string) int {
		return cmp.Compare(s.ID, id)
	})
	if !ok {
		return domain.Station{}, false
	}
	return t.stations[i], true
}

// Len returns the number of stations in the table.
func (t *Table) Len() int { return len(t.stations) }

// IDs returns every station id in sorted order.
func (t *Table) IDs() []string {
	out := make([]string, len(t.stations))
	for i, s := range t.stations {
		out[i] = s.ID
	}
	return out
}
