package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Observation is one station's row of a Mesonet file.
type Observation struct {
	ID            string              `json:"id"`
	StationID     string              `json:"station_id"`
	StationNumber int                 `json:"station_number"`
	ObservedAt    time.Time           `json:"observed_at"`
	Values        map[string]*float64 `json:"values"` // nil marks a missing value
	Geo           *Geo                `json:"geo,omitempty"`
	Source        string              `json:"source"`
	ProcessedAt   time.Time           `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// identity columns are carried as Observation fields rather than values.
var identityColumns = map[string]bool{"STID": true, "STNM": true, "TIME": true}

// ParseObservations converts raw file contents into one Observation per row.
// Unlike ParseTable the STID column is kept as text. fields limits the
// measured variables recorded in Values; empty keeps them all.
func ParseObservations(raw []byte, addr ResourceAddress, fields []string) ([]Observation, error) {
	names, cols, err := resolveSelection(fields)
	if err != nil {
		return nil, err
	}

	stnmCol, _ := ResolveVariable("STNM")
	timeCol, _ := ResolveVariable("TIME")
	base := addr.BaseDate()

	var out []Observation
	err = scanRows(bytes.NewReader(raw), func(row, line int, tokens []string) error {
		malformed := func(format string, args ...any) error {
			return &MalformedRecordError{Row: row, Line: line, Reason: fmt.Sprintf(format, args...)}
		}

		stnm, err := strconv.Atoi(tokens[stnmCol])
		if err != nil {
			return malformed("STNM %q is not an integer", tokens[stnmCol])
		}
		minutes, err := strconv.ParseFloat(tokens[timeCol], 64)
		if err != nil || IsMissing(minutes) {
			return malformed("TIME %q is not a valid minute offset", tokens[timeCol])
		}

		obs := Observation{
			StationID:     strings.ToUpper(tokens[0]),
			StationNumber: stnm,
			ObservedAt:    base.Add(time.Duration(minutes) * time.Minute),
			Values:        make(map[string]*float64, len(cols)),
			Source:        addr.Filename,
		}
		for i, c := range cols {
			if identityColumns[names[i]] {
				continue
			}
			v, err := strconv.ParseFloat(tokens[c], 64)
			if err != nil {
				return malformed("column %s: %q is not numeric", names[i], tokens[c])
			}
			if IsMissing(v) {
				obs.Values[names[i]] = nil
				continue
			}
			obs.Values[names[i]] = &v
		}
		obs.ID = generateID(obs.StationID, obs.ObservedAt)
		out = append(out, obs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// generateID produces a deterministic ID so replays of the same file yield
// the same keys downstream.
func generateID(stationID string, observedAt time.Time) string {
	input := fmt.Sprintf("%s|%s", stationID, observedAt.UTC().Format(time.RFC3339))
	hash := sha256.Sum256([]byte(input))
	return strings.ToLower(stationID) + "-" + hex.EncodeToString(hash[:8])
}

// StampObservation sets ProcessedAt from the package clock.
func StampObservation(o Observation) Observation {
	o.ProcessedAt = clock.Now().UTC()
	return o
}

// SerializeObservation marshals an observation into an OutputEvent keyed by
// station so that a station's observations stay ordered within a partition.
func SerializeObservation(o Observation) (OutputEvent, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize observation: %w", err)
	}
	return OutputEvent{
		Key:   []byte(o.StationID),
		Value: data,
		Headers: map[string]string{
			"station":     o.StationID,
			"observed_at": o.ObservedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
