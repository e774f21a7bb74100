package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numericRow(t *testing.T, overrides map[string]string) string {
	t.Helper()
	o := map[string]string{"STID": "140"}
	for k, v := range overrides {
		o[k] = v
	}
	return testRow(t, o)
}

func tableRows(tbl MaskedTable) [][]float64 {
	rows, _ := tbl.Dims()
	out := make([][]float64, rows)
	for i := range rows {
		out[i] = tbl.Row(i)
	}
	return out
}

func TestParseTable_SelectionOrder(t *testing.T) {
	raw := testTable(numericRow(t, map[string]string{"TAIR": "20.0", "RELH": "55.0"}))

	tbl, err := ParseTable(raw, []string{"TAIR", "RELH"}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"TAIR", "RELH"}, tbl.Fields)
	assert.Equal(t, []float64{20.0, 55.0}, tbl.Row(0))
}

func TestParseTable_CaseInsensitiveAndDuplicates(t *testing.T) {
	raw := testTable(
		numericRow(t, map[string]string{"TIME": "0", "PRES": "970.5"}),
		numericRow(t, map[string]string{"TIME": "5", "PRES": "970.6"}),
	)

	tbl, err := ParseTable(raw, []string{"pres", "Time", "PRES"}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"PRES", "TIME", "PRES"}, tbl.Fields)
	rows, cols := tbl.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []float64{970.5, 970.6}, tbl.Row(0))
	assert.Equal(t, []float64{0, 5}, tbl.Row(1))
	assert.Equal(t, tbl.Row(0), tbl.Row(2))
}

func TestParseTable_AllFieldsMatchesExplicitCatalog(t *testing.T) {
	raw := testTable(
		numericRow(t, map[string]string{"TAIR": "-996"}),
		numericRow(t, map[string]string{"RELH": "61"}),
	)

	implicit, err := ParseTable(raw, nil, true)
	require.NoError(t, err)
	explicit, err := ParseTable(raw, VariableNames(), true)
	require.NoError(t, err)

	assert.Equal(t, VariableNames(), implicit.Fields)
	if diff := cmp.Diff(tableRows(explicit), tableRows(implicit)); diff != "" {
		t.Fatalf("selection of every variable differs (-explicit +implicit):\n%s", diff)
	}
	assert.Equal(t, explicit.MaskRow(4), implicit.MaskRow(4))
}

func TestParseTable_UnpackIsTranspose(t *testing.T) {
	raw := testTable(
		numericRow(t, map[string]string{"TIME": "0", "TAIR": "10.5", "WSPD": "-998"}),
		numericRow(t, map[string]string{"TIME": "5", "TAIR": "10.7", "WSPD": "3.2"}),
		numericRow(t, map[string]string{"TIME": "10", "TAIR": "-999", "WSPD": "3.4"}),
	)
	fields := []string{"time", "tair", "wspd"}

	unpacked, err := ParseTable(raw, fields, true)
	require.NoError(t, err)
	packed, err := ParseTable(raw, fields, false)
	require.NoError(t, err)

	assert.True(t, unpacked.FieldMajor)
	assert.False(t, packed.FieldMajor)
	r, c := unpacked.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)

	transposed := unpacked.Transpose()
	assert.Equal(t, tableRows(packed), tableRows(transposed))
	for i := range 3 {
		assert.Equal(t, packed.MaskRow(i), transposed.MaskRow(i))
	}
	assert.Equal(t, tableRows(unpacked), tableRows(transposed.Transpose()))
}

func TestParseTable_Mask(t *testing.T) {
	raw := testTable(numericRow(t, map[string]string{
		"RELH": "-990",
		"TAIR": "-990.01",
		"WSPD": "-996",
		"PRES": "-999",
		"SRAD": "0",
	}))

	tbl, err := ParseTable(raw, []string{"RELH", "TAIR", "WSPD", "PRES", "SRAD"}, false)
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true, true, true, false}, tbl.MaskRow(0))
	// Masked payload is preserved.
	assert.Equal(t, []float64{-990, -990.01, -996, -999, 0}, tbl.Row(0))

	v, ok := tbl.Value(0, 2)
	assert.False(t, ok)
	assert.Equal(t, -996.0, v)
	v, ok = tbl.Value(0, 0)
	assert.True(t, ok)
	assert.Equal(t, -990.0, v)
}

func TestParseTable_UnknownVariable(t *testing.T) {
	raw := testTable(numericRow(t, nil))

	tbl, err := ParseTable(raw, []string{"TAIR", "BOGUS"}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownVariable)
	assert.Contains(t, err.Error(), "BOGUS")
	assert.Empty(t, tbl.Fields)
	r, c := tbl.Dims()
	assert.Zero(t, r)
	assert.Zero(t, c)
}

func TestParseTable_UnknownVariableBeforeMalformedRows(t *testing.T) {
	raw := testTable("not a row\n")

	_, err := ParseTable(raw, []string{"BOGUS"}, true)
	assert.ErrorIs(t, err, ErrUnknownVariable)
	assert.NotErrorIs(t, err, ErrMalformedRecord)
}

func TestParseTable_ShortRow(t *testing.T) {
	good := numericRow(t, nil)
	short := " 140 140 0 55\n"
	raw := testTable(good, good, short, good)

	_, err := ParseTable(raw, []string{"RELH"}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	var rec *MalformedRecordError
	require.True(t, errors.As(err, &rec))
	assert.Equal(t, 2, rec.Row)
	assert.Equal(t, 6, rec.Line)
	assert.Contains(t, rec.Reason, "got 4 values")
}

func TestParseTable_LongRow(t *testing.T) {
	raw := testTable(strings.TrimSuffix(numericRow(t, nil), "\n") + " 99\n")

	_, err := ParseTable(raw, nil, true)
	var rec *MalformedRecordError
	require.ErrorAs(t, err, &rec)
	assert.Equal(t, 0, rec.Row)
}

func TestParseTable_NonNumericToken(t *testing.T) {
	raw := testTable(
		numericRow(t, nil),
		numericRow(t, map[string]string{"TAIR": "abc"}),
	)

	_, err := ParseTable(raw, []string{"tair"}, true)
	var rec *MalformedRecordError
	require.ErrorAs(t, err, &rec)
	assert.Equal(t, 1, rec.Row)
	assert.Contains(t, rec.Reason, "TAIR")
}

func TestParseTable_StationIDOnlyFailsWhenSelected(t *testing.T) {
	raw := testTable(testRow(t, map[string]string{"STID": "NRMN", "TAIR": "12.5"}))

	tbl, err := ParseTable(raw, []string{"TAIR"}, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5}, tbl.Row(0))

	_, err = ParseTable(raw, nil, true)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseTable_EmptyDataSection(t *testing.T) {
	for name, raw := range map[string][]byte{
		"header only":     []byte(testHeader),
		"trailing blanks": []byte(testHeader + "\n   \n\n"),
		"short header":    []byte("one line\n"),
		"no input":        nil,
	} {
		t.Run(name, func(t *testing.T) {
			tbl, err := ParseTable(raw, []string{"TAIR", "RELH"}, true)
			require.NoError(t, err)
			r, c := tbl.Dims()
			assert.Equal(t, 2, r)
			assert.Equal(t, 0, c)
			assert.Equal(t, 0, tbl.NumObservations())
			assert.Nil(t, tbl.Matrix())
			assert.Empty(t, tbl.Row(1))

			packed, err := ParseTable(raw, []string{"TAIR", "RELH"}, false)
			require.NoError(t, err)
			r, c = packed.Dims()
			assert.Equal(t, 0, r)
			assert.Equal(t, 2, c)
		})
	}
}

func TestParseTable_SkipsExactlyThreeLines(t *testing.T) {
	// A numeric first data row must not be swallowed as header.
	raw := []byte("a\nb\nc\n" + numericRow(t, map[string]string{"TAIR": "1.5"}))
	tbl, err := ParseTable(raw, []string{"TAIR"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.NumObservations())

	// Blank header lines still count.
	raw = []byte("\n\n" + numericRow(t, nil) + numericRow(t, map[string]string{"TAIR": "2.5"}))
	tbl, err = ParseTable(raw, []string{"TAIR"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.NumObservations())
	assert.Equal(t, 2.5, tbl.At(0, 0))
}

func TestParseTable_CRLF(t *testing.T) {
	raw := strings.ReplaceAll(string(testTable(numericRow(t, map[string]string{"TAIR": "7.25"}))), "\n", "\r\n")
	tbl, err := ParseTable([]byte(raw), []string{"TAIR"}, true)
	require.NoError(t, err)
	assert.Equal(t, 7.25, tbl.At(0, 0))
}

func TestReadFromText(t *testing.T) {
	raw := testTable(numericRow(t, map[string]string{"WSPD": "4.1"}))
	tbl, err := ReadFromText(strings.NewReader(string(raw)), []string{"WSPD"}, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{4.1}, tbl.Row(0))
}
