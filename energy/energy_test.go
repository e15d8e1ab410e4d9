package energy

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/crdb/errors"
	"github.com/teranos/crdb/table"
)

func TestSolarSystemComposition(t *testing.T) {
	comp := SolarSystemComposition()

	assert.NotContains(t, comp, "H-bar")
	assert.Equal(t, []Isotope{{1, 2.431e10}, {2, 4.716e5}}, comp["H"])
	assert.Equal(t, []Isotope{{6, 4.21}, {7, 51.26}}, comp["Li"])
	assert.Equal(t, []Isotope{{235, 0.000067}, {238, 0.009238}}, comp["U"])
}

func TestSolarSystemCompositionCopies(t *testing.T) {
	comp := SolarSystemComposition()
	comp["H"][0].A = 99
	assert.Equal(t, 1, SolarSystemComposition()["H"][0].A)
}

func TestConversionNumbers(t *testing.T) {
	ecn := ConversionNumbers()

	assert.Equal(t, 1, ecn["H"].Z)
	assert.InDelta(t, 1.000019, ecn["H"].A, 1e-6)
	assert.False(t, ecn["H"].Exact)

	assert.Equal(t, 2, ecn["He"].Z)
	assert.InDelta(t, 3.999834, ecn["He"].A, 1e-6)

	for _, k := range []string{"e-", "e+", "e-+e+"} {
		assert.Equal(t, 1, ecn[k].Z, k)
		assert.True(t, math.IsNaN(ecn[k].A), k)
	}

	// No stable isotopes in the composition table.
	assert.Equal(t, 43, ecn["Tc"].Z)
	assert.True(t, math.IsNaN(ecn["Tc"].A))
	assert.Equal(t, 99, ecn["Es"].Z)
}

func TestConversionNumbersIsotopes(t *testing.T) {
	ecn := ConversionNumbers()
	assert.Equal(t, Numbers{Z: 6, A: 12, Exact: true}, ecn["12C"])
	assert.Equal(t, Numbers{Z: 4, A: 10, Exact: true}, ecn["10Be"])
	assert.Equal(t, Numbers{Z: 1, A: 2, Exact: true}, ecn["2H"])
	assert.NotContains(t, ecn, "B/C")
	assert.NotContains(t, ecn, "9Be+10Be")
}

func TestAntimatterInherits(t *testing.T) {
	ecn := ConversionNumbers()
	opts := cmpopts.EquateNaNs()
	for _, name := range []string{"H", "He", "C", "1H", "4He", "12C"} {
		bar, ok := ecn[name+"-bar"]
		require.True(t, ok, name)
		assert.True(t, cmp.Equal(ecn[name], bar, opts), name)
	}
	assert.NotContains(t, ecn, "Zgeq1-bar")
}

func row(q, eType string, e, value float64) table.Measurement {
	return table.Measurement{
		Quantity: q,
		SubExp:   "X(1)",
		EType:    eType,
		E:        e,
		EBin:     [2]float64{e * 0.9, e * 1.1},
		Value:    value,
		ErrSta:   [2]float64{value * 0.1, value * 0.1},
		ErrSys:   [2]float64{value * 0.2, value * 0.2},
	}
}

func TestConvertFactor(t *testing.T) {
	// 4He has Z=2 and A=4 exactly.
	got, err := Convert(table.Table{row("4He", R, 10, 3)}, EKN, false)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, EKN, got[0].EType)
	assert.InDelta(t, 5, got[0].E, 1e-12)
	assert.InDelta(t, 4.5, got[0].EBin[0], 1e-12)
	assert.InDelta(t, 5.5, got[0].EBin[1], 1e-12)
	assert.InDelta(t, 6, got[0].Value, 1e-12)
	assert.InDelta(t, 0.6, got[0].ErrSta[0], 1e-12)
	assert.InDelta(t, 1.2, got[0].ErrSys[1], 1e-12)
}

func TestConvertTable(t *testing.T) {
	n := Numbers{Z: 2, A: 4}
	tests := []struct {
		from, to string
		want     float64
	}{
		{R, EK, 2},
		{R, EKN, 0.5},
		{EK, R, 0.5},
		{EK, EKN, 0.25},
		{EKN, R, 2},
		{EKN, EK, 4},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			f, _, ok := factor(tt.from, tt.to, n)
			require.True(t, ok)
			assert.InDelta(t, tt.want, f, 1e-12)
		})
	}
	_, _, ok := factor("ETOT", EK, n)
	assert.False(t, ok)
}

func TestConvertHydrogenRigidityToEK(t *testing.T) {
	got, err := Convert(table.Table{row("H", R, 10, 7)}, EK, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 10.0, got[0].E)
	assert.Equal(t, 7.0, got[0].Value)
}

func TestConvertIdempotent(t *testing.T) {
	tab := table.Table{
		row("H", EKN, 1, 2),
		row("B/C", EKN, 3, 0.3),
		row("e+", EKN, 4, 5),
	}
	got, err := Convert(tab, EKN, true)
	require.NoError(t, err)
	assert.Equal(t, tab, got)

	again, err := Convert(got, EKN, true)
	require.NoError(t, err)
	assert.Equal(t, tab, again)
}

func TestConvertDrops(t *testing.T) {
	tab := table.Table{
		row("H", R, 10, 1),      // kept, approximate A
		row("e-", R, 10, 1),     // lepton has no A
		row("B/C", R, 10, 1),    // ratio has no numbers
		row("H", "ETOT", 10, 1), // not convertible
		row("Tc", R, 10, 1),     // no isotope data
		row("H", EKN, 1, math.NaN()),
	}
	got, err := Convert(tab, EKN, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "H", got[0].Quantity)
	assert.InDelta(t, 10/1.000019, got[0].E, 1e-4)
}

func TestConvertExactOnly(t *testing.T) {
	tab := table.Table{
		row("He", R, 10, 1),   // mean A
		row("4He", R, 10, 1),  // exact A
		row("He", EKN, 10, 1), // already in target
	}
	got, err := Convert(tab, EKN, false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "4He", got[0].Quantity)
	assert.Equal(t, "He", got[1].Quantity)

	// Z-only conversions do not need A.
	got, err = Convert(table.Table{row("He", R, 10, 1)}, EK, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 20.0, got[0].E)
}

func TestConvertLeptonToRigidity(t *testing.T) {
	got, err := Convert(table.Table{row("e+", EK, 3, 1)}, R, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3.0, got[0].E)
}

func TestConvertInvalidTarget(t *testing.T) {
	_, err := Convert(nil, "ETOT", true)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidOption(err))
}

func TestConvertDoesNotMutate(t *testing.T) {
	tab := table.Table{row("4He", R, 10, 3)}
	_, err := Convert(tab, EKN, true)
	require.NoError(t, err)
	assert.Equal(t, 10.0, tab[0].E)
	assert.Equal(t, R, tab[0].EType)
}

func TestUnits(t *testing.T) {
	assert.Equal(t, 1e3*GeV, TeV)
	assert.Equal(t, 1e-3*GV, MV)
	assert.InDelta(t, 0.000511, ElectronMass, 1e-6)
	assert.InDelta(t, 0.93892, NucleonMass, 1e-5)
}
