package domain

import (
	"context"
	"log/slog"
)

// Station is one entry of the Mesonet site table.
type Station struct {
	ID     string
	Number int
	Name   string
	Geo    Geo
}

// StationLocator resolves station identifiers to site metadata.
type StationLocator interface {
	// Lookup returns the station and whether it was found.
	Lookup(ctx context.Context, stationID string) (Station, bool)
}

// EnrichWithStation attaches site coordinates to an observation. A nil
// locator or an unknown station leaves the observation unchanged.
func EnrichWithStation(ctx context.Context, o Observation, locator StationLocator, logger *slog.Logger) Observation {
	if locator == nil {
		return o
	}
	st, ok := locator.Lookup(ctx, o.StationID)
	if !ok {
		logger.Debug("station not in site table", "station", o.StationID, "source", o.Source)
		return o
	}
	geo := st.Geo
	o.Geo = &geo
	return o
}
