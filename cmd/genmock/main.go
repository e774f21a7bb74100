// Command genmock converts Mesonet MTS/MDF files into the observation JSON
// fixture consumed by downstream test suites. It runs the same domain parsing
// and station enrichment as the service so fixtures match pipeline output.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -stations data/geomeso.csv \
//	  -out data/mock/observations_20081120.json \
//	  data/mock/20081120nrmn.mts data/mock/200811201400.mdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/mesonet-etl/internal/config"
	"github.com/couchcryptid/mesonet-etl/internal/domain"
	"github.com/couchcryptid/mesonet-etl/internal/stations"
	"github.com/jonboulle/clockwork"
)

// processedAt is the fixed stamp for reproducible fixtures.
var processedAt = time.Date(2008, time.November, 21, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the observation JSON fixture")
	stationsFile := flag.String("stations", "", "optional geomeso.csv for coordinates")
	fields := flag.String("fields", "", "comma-separated variables to keep (empty keeps all)")
	flag.Parse()

	if *out == "" || flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("missing required -out flag or input files")
	}

	var locator domain.StationLocator
	if *stationsFile != "" {
		table, err := stations.Load(*stationsFile)
		if err != nil {
			return err
		}
		locator = table
	}

	domain.SetClock(clockwork.NewFakeClockAt(processedAt))
	defer domain.SetClock(nil)

	var all []domain.Observation
	for _, path := range flag.Args() {
		obs, err := convert(path, config.ParseFields(*fields), locator)
		if err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}
		log.Printf("%s: %d observations", filepath.Base(path), len(obs))
		all = append(all, obs...)
	}

	if err := writeJSON(*out, all); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d observations)", *out, len(all))

	printStats(os.Stdout, all)
	return nil
}

func convert(path string, fields []string, locator domain.StationLocator) ([]domain.Observation, error) {
	addr, err := addressFromName(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	obs, err := domain.ParseObservations(raw, addr, fields)
	if err != nil {
		return nil, err
	}
	quiet := slog.New(slog.DiscardHandler)
	for i, o := range obs {
		o = domain.EnrichWithStation(context.Background(), o, locator, quiet)
		if locator != nil && o.Geo == nil {
			log.Printf("warning: station %s not in site table", o.StationID)
		}
		obs[i] = domain.StampObservation(o)
	}
	return obs, nil
}

// addressFromName recovers the resource address from a provider filename
// (YYYYMMDDHHMM.mdf or YYYYMMDD<stid>.mts).
func addressFromName(name string) (domain.ResourceAddress, error) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	var addr domain.ResourceAddress
	switch filepath.Ext(name) {
	case ".mdf":
		t, err := domain.ParseDate(stem)
		if err != nil {
			return addr, err
		}
		addr = domain.BuildAddress(t, "")
	case ".mts":
		if len(stem) <= 8 {
			return addr, fmt.Errorf("%s: missing station id", name)
		}
		t, err := domain.ParseDate(stem[:8])
		if err != nil {
			return addr, err
		}
		addr = domain.BuildAddress(t, stem[8:])
	default:
		return addr, fmt.Errorf("%s: want .mdf or .mts", name)
	}

	if addr.Filename != strings.ToLower(name) {
		return addr, fmt.Errorf("%s: not a provider filename (want %s)", name, addr.Filename)
	}
	return addr, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
