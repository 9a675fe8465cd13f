package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAmpacityColumn(t *testing.T) {
	cases := []struct {
		ins  Insulation
		env  Environment
		want AmpacityColumn
	}{
		{TW, Indoor, ColumnTW},
		{THW, Indoor, ColumnTHW},
		{VinanelNylon, Indoor, ColumnVinanel},
		{Vinanel900, Indoor, ColumnVinanel},
		{THW, Outdoor, ColumnTHWOutdoor},
		{TW, Outdoor, ColumnVinanelOutdoor},
		{VinanelNylon, Outdoor, ColumnVinanelOutdoor},
		{Vinanel900, Outdoor, ColumnVinanelOutdoor},
	}
	for _, tc := range cases {
		got, ok := SelectAmpacityColumn(tc.ins, tc.env)
		require.True(t, ok, "%s/%s", tc.ins, tc.env)
		assert.Equal(t, tc.want, got, "%s/%s", tc.ins, tc.env)
	}

	_, ok := SelectAmpacityColumn("XHHW", Indoor)
	assert.False(t, ok)
	_, ok = SelectAmpacityColumn(THW, "subterranea")
	assert.False(t, ok)
}

func TestGaugeByAmpacity_FirstSufficient(t *testing.T) {
	// THW indoors: 14 carries 25 A, 12 carries 30 A.
	assert.Equal(t, found("14"), GaugeByAmpacity(25, THW, Indoor))
	assert.Equal(t, found("12"), GaugeByAmpacity(25.01, THW, Indoor))
	assert.Equal(t, found("500 MCM"), GaugeByAmpacity(660, TW, Outdoor))
	assert.False(t, GaugeByAmpacity(661, TW, Outdoor).Found)
	assert.False(t, GaugeByAmpacity(10, "XHHW", Indoor).Found)
}

func TestGaugeBySection(t *testing.T) {
	assert.Equal(t, found("0"), GaugeBySection(54.65, Cables))
	assert.Equal(t, found("8"), GaugeBySection(8.35, Wires))
	assert.False(t, GaugeBySection(8.36, Wires).Found)
	assert.False(t, GaugeBySection(413.3, Cables).Found)
}

func TestBundleArea(t *testing.T) {
	cases := []struct {
		gauge string
		count int
		ins   Insulation
		kind  ConductorKind
		want  float64
	}{
		{"12", 1, THW, Cables, 12.32},
		{"12", 1, VinanelNylon, Cables, 9.29},
		{"12", 3, VinanelNylon, Cables, 27.87},
		{"10", 6, TW, Wires, 83.94},
		{"250 MCM", 2, THW, Cables, 597.30},
		{"0", 0, THW, Cables, 143.99},
	}
	for _, tc := range cases {
		got := BundleArea(tc.gauge, tc.count, tc.ins, tc.kind)
		require.True(t, got.Found, "%s x%d", tc.gauge, tc.count)
		assert.Equal(t, tc.want, got.Value, "%s x%d", tc.gauge, tc.count)
	}
}

func TestBundleArea_Misses(t *testing.T) {
	// 350 MCM has an ampacity but no area entry.
	assert.False(t, BundleArea("350 MCM", 1, THW, Cables).Found)
	// Solid wires stop at gauge 8.
	assert.False(t, BundleArea("6", 1, THW, Wires).Found)
	assert.False(t, BundleArea("12", 7, THW, Cables).Found)
}

func TestConduitFor(t *testing.T) {
	assert.Equal(t, "1/2 (13 mm)", ConduitFor(12.32, ThinWall40).Value.String())
	assert.Equal(t, "1/2 (13 mm)", ConduitFor(78, ThinWall40).Value.String())
	assert.Equal(t, "1 (25 mm)", ConduitFor(143.99, ThinWall40).Value.String())
	assert.Equal(t, "3/4 (19 mm)", ConduitFor(143.99, ThickWall40).Value.String())
}

func TestConduitFor_SkipsUnavailableSizes(t *testing.T) {
	// Thin wall has no 2 1/2 or 3 inch conduit; the scan moves on to 4 inch.
	got := ConduitFor(1000, ThinWall40)
	require.True(t, got.Found)
	assert.Equal(t, Conduit{Inches: "4", Millimeters: 102}, got.Value)

	// Thick wall does have 2 1/2 inch.
	got = ConduitFor(1000, ThickWall40)
	require.True(t, got.Found)
	assert.Equal(t, "2 1/2", got.Value.Inches)
}

func TestConduitFor_Misses(t *testing.T) {
	assert.False(t, ConduitFor(9000.5, ThinWall40).Found)
	assert.False(t, ConduitFor(10, "pvc").Found)
}

func TestBreakerFor(t *testing.T) {
	cases := []struct {
		name string
		ip   float64
		sys  SystemType
		want string
	}{
		{"exact rating", 30, SinglePhase, "1 X 30A"},
		{"lower within 3A", 32.53, SinglePhase, "1 X 30A"},
		{"lower beyond 3A", 34.2, SinglePhase, "1 X 40A"},
		{"53A prefers 50A", 52.3, SplitPhase, "2 X 50A"},
		{"54A takes 70A", 53.1, SplitPhase, "2 X 70A"},
		{"below smallest", 3, ThreePhase, "3 X 15A"},
		{"three pole", 36.45, ThreePhase, "3 X 40A"},
		{"over the top", 60, SinglePhase, "1 X 50A (máximo disponible)"},
		{"over three pole", 700, ThreePhase, "3 X 600A (máximo disponible)"},
		{"unknown system", 30, "hexafasico", NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BreakerFor(tc.ip, tc.sys).String())
		})
	}
}

func TestBreakerFor_MaxAvailableFlag(t *testing.T) {
	b := BreakerFor(60, SinglePhase)
	assert.True(t, b.Found)
	assert.True(t, b.MaxAvailable)
	assert.Equal(t, 50, b.Amperes)
	assert.Equal(t, "UN POLO", b.Label)
}

func TestTablesAreOrdered(t *testing.T) {
	for _, set := range breakerTable {
		for i := 1; i < len(set.Ratings); i++ {
			assert.Less(t, set.Ratings[i-1], set.Ratings[i], set.Label)
		}
	}
	for i := 1; i < len(ampacityTable); i++ {
		assert.LessOrEqual(t, ampacityTable[i-1].THW, ampacityTable[i].THW)
	}
}
