package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sampleTable(t *testing.T, unpack bool) MaskedTable {
	t.Helper()
	raw := testTable(
		numericRow(t, map[string]string{"TIME": "0", "TAIR": "10.5", "RELH": "80"}),
		numericRow(t, map[string]string{"TIME": "5", "TAIR": "-996", "RELH": "81"}),
	)
	tbl, err := ParseTable(raw, []string{"TIME", "TAIR", "RELH"}, unpack)
	require.NoError(t, err)
	return tbl
}

func TestMaskedTable_Field(t *testing.T) {
	for _, unpack := range []bool{true, false} {
		tbl := sampleTable(t, unpack)

		vals, mask, err := tbl.Field("tair")
		require.NoError(t, err)
		assert.Equal(t, []float64{10.5, -996}, vals)
		assert.Equal(t, []bool{false, true}, mask)

		_, _, err = tbl.Field("WSPD")
		assert.ErrorIs(t, err, ErrUnknownVariable)
		_, _, err = tbl.Field("BOGUS")
		assert.ErrorIs(t, err, ErrUnknownVariable)
	}
}

func TestMaskedTable_Matrix(t *testing.T) {
	tbl := sampleTable(t, true)

	m := tbl.Matrix()
	require.NotNil(t, m)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.True(t, mat.Equal(m, mat.NewDense(3, 2, []float64{0, 5, 10.5, -996, 80, 81})))

	// The matrix is a copy.
	m.Set(0, 0, 42)
	assert.Equal(t, 0.0, tbl.At(0, 0))
}

func TestMaskedTable_Filled(t *testing.T) {
	tbl := sampleTable(t, false)

	m := tbl.Filled(math.NaN())
	require.NotNil(t, m)
	assert.True(t, math.IsNaN(m.At(1, 1)))
	assert.Equal(t, 10.5, m.At(0, 1))
	assert.Equal(t, -996.0, tbl.At(1, 1), "source payload untouched")
}

func TestMaskedTable_IndexOutOfRange(t *testing.T) {
	tbl := sampleTable(t, true)
	assert.Panics(t, func() { tbl.At(3, 0) })
	assert.Panics(t, func() { tbl.Masked(0, -1) })
}

func TestMaskedTable_MarshalJSON(t *testing.T) {
	tbl := sampleTable(t, false)

	data, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fields": ["TIME", "TAIR", "RELH"],
		"field_major": false,
		"rows": 2,
		"cols": 3,
		"data": [[0, 10.5, 80], [5, null, 81]]
	}`, string(data))
}

func TestIsMissing(t *testing.T) {
	assert.False(t, IsMissing(-990))
	assert.True(t, IsMissing(-990.0001))
	assert.True(t, IsMissing(-999))
	assert.False(t, IsMissing(0))
	assert.False(t, IsMissing(math.Inf(1)))
}
