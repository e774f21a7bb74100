package domain

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HeaderLines is the number of lines preceding the first data row.
const HeaderLines = 3

// ParseTable parses raw Mesonet file contents into a MaskedTable holding the
// requested fields in request order. An empty selection keeps every variable.
// With unpack set the table is field-major (one row per field); otherwise it
// has one row per observation.
//
// Unknown fields fail with ErrUnknownVariable before any row is read. A row
// with the wrong number of tokens, or a selected token that is not numeric,
// fails with a *MalformedRecordError and no table is returned.
func ParseTable(raw []byte, fields []string, unpack bool) (MaskedTable, error) {
	return ReadFromText(bytes.NewReader(raw), fields, unpack)
}

// ReadFromText is ParseTable over a reader, e.g. a local file.
func ReadFromText(r io.Reader, fields []string, unpack bool) (MaskedTable, error) {
	names, cols, err := resolveSelection(fields)
	if err != nil {
		return MaskedTable{}, err
	}

	var obs [][]float64
	err = scanRows(r, func(row, line int, tokens []string) error {
		vals := make([]float64, len(cols))
		for i, c := range cols {
			v, err := strconv.ParseFloat(tokens[c], 64)
			if err != nil {
				return &MalformedRecordError{
					Row:    row,
					Line:   line,
					Reason: fmt.Sprintf("column %s: %q is not numeric", variables[c], tokens[c]),
				}
			}
			vals[i] = v
		}
		obs = append(obs, vals)
		return nil
	})
	if err != nil {
		return MaskedTable{}, err
	}

	return newMaskedTable(names, obs, unpack), nil
}

// scanRows skips the header and calls fn with the tokens of each non-blank
// data row. Token counts are checked against the catalog before fn runs.
func scanRows(r io.Reader, fn func(row, line int, tokens []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line, row := 0, 0
	for scanner.Scan() {
		line++
		if line <= HeaderLines {
			continue
		}

		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != NumVariables {
			return &MalformedRecordError{
				Row:    row,
				Line:   line,
				Reason: fmt.Sprintf("got %d values, want %d", len(tokens), NumVariables),
			}
		}
		if err := fn(row, line, tokens); err != nil {
			return err
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read mesonet table: %w", err)
	}
	return nil
}
