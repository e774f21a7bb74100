package domain

import (
	"fmt"
	"strings"
)

// variables lists every column of a Mesonet data file in file order.
var variables = [...]string{
	"STID", "STNM", "TIME", "RELH", "TAIR", "WSPD", "WVEC", "WDIR",
	"WDSD", "WSSD", "WMAX", "RAIN", "PRES", "SRAD", "TA9M", "WS2M", "TS10",
	"TB10", "TS05", "TB05", "TS30", "TR05", "TR25", "TR60", "TR75",
}

// columnIndex maps an upper-case variable name to its column position.
var columnIndex = func() map[string]int {
	m := make(map[string]int, len(variables))
	for i, v := range variables {
		m[v] = i
	}
	return m
}()

// NumVariables is the number of columns in every data row.
const NumVariables = len(variables)

// VariableNames returns the catalog in column order.
func VariableNames() []string {
	out := make([]string, len(variables))
	copy(out, variables[:])
	return out
}

// ResolveVariable returns the zero-based column of name, ignoring case.
func ResolveVariable(name string) (int, error) {
	col, ok := columnIndex[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	return col, nil
}

// resolveSelection maps requested names to columns, keeping order and
// duplicates. An empty selection means every variable.
func resolveSelection(fields []string) ([]string, []int, error) {
	if len(fields) == 0 {
		cols := make([]int, len(variables))
		for i := range cols {
			cols[i] = i
		}
		return VariableNames(), cols, nil
	}

	names := make([]string, len(fields))
	cols := make([]int, len(fields))
	for i, f := range fields {
		col, err := ResolveVariable(f)
		if err != nil {
			return nil, nil, err
		}
		names[i] = variables[col]
		cols[i] = col
	}
	return names, cols, nil
}
