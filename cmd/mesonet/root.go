package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/mesonet-etl/internal/adapter/mesonet"
	"github.com/couchcryptid/mesonet-etl/internal/config"
	"github.com/couchcryptid/mesonet-etl/internal/domain"
	"github.com/couchcryptid/mesonet-etl/internal/observability"
	"github.com/couchcryptid/mesonet-etl/internal/retrieval"
	"github.com/spf13/cobra"
)

const defaultFields = "time,relh,tair,wspd,pres"

type options struct {
	fields    string
	transpose bool
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "mesonet",
		Short:         "Retrieve and print Oklahoma Mesonet observation tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.fields, "fields", defaultFields, "comma-separated variables to keep (empty keeps all)")
	root.PersistentFlags().BoolVar(&opts.transpose, "transpose", false, "print one row per observation instead of one row per field")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newFetchCmd(opts), newReadCmd(opts), newVariablesCmd())
	return root
}

func newFetchCmd(opts *options) *cobra.Command {
	var (
		site    string
		date    string
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a file from the Mesonet provider and print it.",
		Long: `Download a station time-series (--site) or, with --site "", a network
snapshot. --date accepts YYYYMMDD or YYYYMMDDHHMM; the default is now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := retrieval.Request{
				Station: site,
				Fields:  config.ParseFields(opts.fields),
				Unpack:  !opts.transpose,
			}
			if date != "" {
				t, err := domain.ParseDate(date)
				if err != nil {
					return err
				}
				req.Time = t
			}

			logger := observability.NewTextLogger(cmd.ErrOrStderr(), opts.logLevel)
			// Unregistered: the CLI has no /metrics endpoint.
			metrics := observability.NewMetricsForTesting()
			fetcher := retrieval.NewFetcher(mesonet.NewClient(timeout, metrics, logger), baseURL, logger, metrics)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := fetcher.Fetch(ctx, req)
			if err != nil {
				return err
			}
			logger.Info("fetched", "path", res.Address.Path())
			return printTable(cmd.OutOrStdout(), res.Table)
		},
	}
	cmd.Flags().StringVar(&site, "site", "nrmn", "station id; empty fetches the network snapshot")
	cmd.Flags().StringVar(&date, "date", "", "YYYYMMDD or YYYYMMDDHHMM (UTC); default now")
	cmd.Flags().StringVar(&baseURL, "base-url", mesonet.DefaultBaseURL, "provider download endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	return cmd
}

func newReadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "read FILE",
		Short: "Parse a local MTS or MDF file and print it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			table, err := domain.ReadFromText(f, config.ParseFields(opts.fields), !opts.transpose)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return printTable(cmd.OutOrStdout(), table)
		},
	}
}

func newVariablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variables",
		Short: "List the variable names in file column order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range domain.VariableNames() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// printTable writes t as tab-aligned text. Field-major tables print one line
// per field prefixed with its name; observation-major tables print a header
// line of field names followed by one line per observation.
func printTable(w io.Writer, t domain.MaskedTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	rows, cols := t.Dims()

	// Masked cells become NaN; m is nil only when there are no cells.
	m := t.Filled(math.NaN())
	cell := func(i, j int) string {
		v := m.At(i, j)
		if math.IsNaN(v) {
			return "--"
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	if t.FieldMajor {
		for i := range rows {
			fmt.Fprint(tw, t.Fields[i])
			for j := range cols {
				fmt.Fprint(tw, "\t", cell(i, j))
			}
			fmt.Fprintln(tw, "\t")
		}
		return tw.Flush()
	}

	for j, name := range t.Fields {
		if j > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, name)
	}
	fmt.Fprintln(tw, "\t")
	for i := range rows {
		for j := range cols {
			if j > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell(i, j))
		}
		fmt.Fprintln(tw, "\t")
	}
	return tw.Flush()
}
