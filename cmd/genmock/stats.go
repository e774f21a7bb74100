package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/couchcryptid/mesonet-etl/internal/domain"
)

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	total         int
	stationCounts map[string]int
	missingCounts map[string]int
	withGeo       int
	first, last   time.Time
}

func collectStats(observations []domain.Observation) statsResult {
	s := statsResult{
		total:         len(observations),
		stationCounts: map[string]int{},
		missingCounts: map[string]int{},
	}
	for i := range observations {
		o := &observations[i]
		s.stationCounts[o.StationID]++
		for name, v := range o.Values {
			if v == nil {
				s.missingCounts[name]++
			}
		}
		if o.Geo != nil {
			s.withGeo++
		}
		if s.first.IsZero() || o.ObservedAt.Before(s.first) {
			s.first = o.ObservedAt
		}
		if o.ObservedAt.After(s.last) {
			s.last = o.ObservedAt
		}
	}
	return s
}

type nameCount struct {
	name  string
	count int
}

// sortedCounts orders by descending count, then name.
func sortedCounts(m map[string]int) []nameCount {
	out := make([]nameCount, 0, len(m))
	for k, v := range m {
		out = append(out, nameCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func printStats(w io.Writer, observations []domain.Observation) {
	stats := collectStats(observations)

	fmt.Fprintln(w, "\n=== Stats for updating test assertions ===")
	fmt.Fprintf(w, "Total: %d\n", stats.total)
	fmt.Fprintf(w, "With coordinates: %d\n", stats.withGeo)
	if stats.total > 0 {
		fmt.Fprintf(w, "Observed: %s .. %s\n", stats.first.Format(time.RFC3339), stats.last.Format(time.RFC3339))
	}

	stationCounts := sortedCounts(stats.stationCounts)
	fmt.Fprintf(w, "Stations (%d):", len(stationCounts))
	for _, c := range stationCounts {
		fmt.Fprintf(w, " %s=%d", c.name, c.count)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "Missing values:")
	for _, c := range sortedCounts(stats.missingCounts) {
		fmt.Fprintf(w, " %s=%d", c.name, c.count)
	}
	fmt.Fprintln(w)
}
