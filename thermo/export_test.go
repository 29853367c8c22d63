package thermo_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/katalvlaran/tfa/thermo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportMIP_Layout(t *testing.T) {
	m, _ := abcModel(t)
	ex, err := m.ExportMIP()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"R1", "R1_reverse", "R2", "R2_reverse",
		"indicator_R1", "indicator_R1_reverse", "indicator_R2", "indicator_R2_reverse",
		"G_r_R1", "G_r_R1_reverse", "G_r_R2", "G_r_R2_reverse",
		"lnc_A", "lnc_B", "lnc_C",
		"met_A", "met_B", "met_C",
	}, ex.Names)

	assert.Equal(t, []string{
		"mass_A", "mass_B", "mass_C",
		"directionality_R1", "directionality_R1_reverse", "ind_R1", "ind_R1_reverse", "delG_R1", "delG_R1_reverse",
		"directionality_R2", "directionality_R2_reverse", "ind_R2", "ind_R2_reverse", "delG_R2", "delG_R2_reverse",
	}, ex.Rows)

	E, L := thermo.SenseEqual, thermo.SenseLess
	assert.Equal(t, []thermo.Sense{E, E, E, L, L, L, L, E, E, L, L, L, L, E, E}, ex.Sense)

	rows, cols := ex.Dims()
	assert.Equal(t, 15, rows)
	assert.Equal(t, 18, cols)
	r, c := ex.LHS.Rows(), ex.LHS.Cols()
	assert.Equal(t, rows, r)
	assert.Equal(t, cols, c)

	// delG_R1 row: G_r_R1 + RT·lnc_A − RT·lnc_B + met_A − met_B
	rt := thermo.R * thermo.DefaultTemperature
	at := func(row, col int) float64 {
		v, err := ex.LHS.At(row, col)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, 1.0, at(7, 8))
	assert.InDelta(t, rt, at(7, 12), 1e-12)
	assert.InDelta(t, -rt, at(7, 13), 1e-12)
	assert.Equal(t, 1.0, at(7, 15))
	assert.Equal(t, -1.0, at(7, 16))
	assert.Equal(t, 0.0, at(7, 0))

	// directionality_R1: R1 − Vmax·indicator_R1 ≤ 0
	assert.Equal(t, 1.0, at(3, 0))
	assert.Equal(t, -thermo.DefaultVmax, at(3, 4))
	assert.Equal(t, 0.0, ex.RHS[3])

	assert.InDelta(t, -9.8, ex.Lower[15], 1e-12)
	assert.InDelta(t, math.Log(thermo.DefaultMaxConcentration), ex.Upper[12], 1e-12)
}

func TestExportMIP_FeasibilityMatchesProblem(t *testing.T) {
	m, _ := abcModel(t)
	ex, err := m.ExportMIP()
	require.NoError(t, err)
	p, err := m.Problem()
	require.NoError(t, err)

	point := make(map[string]float64, len(ex.Names))
	for _, name := range ex.Names {
		point[name] = 0
	}
	for _, id := range []string{"A", "B", "C"} {
		point[thermo.ConcentrationVar(id)] = -7
	}

	ok, violated := p.Feasible(point, 1e-9)
	require.True(t, ok, violated)
	assert.True(t, ex.Feasible(point, 1e-9))

	point["G_r_R1"] = 5
	ok, _ = p.Feasible(point, 1e-9)
	assert.False(t, ok)
	assert.False(t, ex.Feasible(point, 1e-9))

	point["G_r_R1"] = 0
	point["lnc_A"] = 0 // above log(0.02)
	ok, _ = p.Feasible(point, 1e-9)
	assert.False(t, ok)
	assert.False(t, ex.Feasible(point, 1e-9))
}

func TestExportMIP_RangedRowsSplit(t *testing.T) {
	m, _ := abcModel(t)
	require.NoError(t, m.ConcentrationRatio("A", "B", -1, 2))

	ex, err := m.ExportMIP()
	require.NoError(t, err)
	n := len(ex.Rows)
	require.Equal(t, 17, n)
	assert.Equal(t, []string{"ratio_A_B_lower", "ratio_A_B_upper"}, ex.Rows[n-2:])
	assert.Equal(t, []float64{1, 2}, ex.RHS[n-2:])

	lower := n - 2
	a, _ := ex.LHS.At(lower, 12)
	b, _ := ex.LHS.At(lower, 13)
	assert.Equal(t, -1.0, a)
	assert.Equal(t, 1.0, b)
	a, _ = ex.LHS.At(lower+1, 12)
	assert.Equal(t, 1.0, a)
}

func TestExportMIP_SkipsSphereVariables(t *testing.T) {
	net := chain(t, "X", "Y")
	est := thermo.NewStaticEstimates().Set("X", 0, 30).Set("Y", 0, 35).SetCorrelation("X", "Y", 0.9)
	m, err := thermo.New(net, nil, est, thermo.WithLogger(discard()))
	require.NoError(t, err)

	ex, err := m.ExportMIP()
	require.NoError(t, err)
	for _, name := range ex.Names {
		assert.NotContains(t, name, thermo.PrefixSphere)
	}
	for _, row := range ex.Rows {
		assert.NotContains(t, row, thermo.PrefixRelation)
	}
}

func TestExport_JSON(t *testing.T) {
	m, _ := abcModel(t)
	ex, err := m.ExportMIP()
	require.NoError(t, err)

	raw, err := json.Marshal(ex)
	require.NoError(t, err)

	var back struct {
		Names []string `json:"names"`
		Sense []string `json:"sense"`
		Rows  []string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ex.Names, back.Names)
	assert.Equal(t, []string{"E", "E", "E", "L"}, back.Sense[:4])
	assert.NotContains(t, string(raw), "LHS")
}
