package domain

import (
	"strconv"
	"strings"
	"testing"
)

const testHeader = "  101 ! (c) 2008 Oklahoma Climatological Survey - all rights reserved\n" +
	" 2008 11 20 00 00 00\n" +
	" STID  STNM  TIME   RELH   TAIR   WSPD   WVEC  WDIR   WDSD   WSSD   WMAX    RAIN     PRES  SRAD   TA9M   WS2M   TS10   TB10   TS05   TB05   TS30   TR05   TR25   TR60   TR75\n"

// testRow builds a data row whose value in column i is i, then applies
// overrides keyed by variable name.
func testRow(t *testing.T, overrides map[string]string) string {
	t.Helper()
	tokens := make([]string, NumVariables)
	for i := range tokens {
		tokens[i] = strconv.Itoa(i)
	}
	for name, v := range overrides {
		col, err := ResolveVariable(name)
		if err != nil {
			t.Fatalf("bad override %q: %v", name, err)
		}
		tokens[col] = v
	}
	return " " + strings.Join(tokens, "  ") + "\n"
}

func testTable(rows ...string) []byte {
	return []byte(testHeader + strings.Join(rows, ""))
}
