package calc

import (
	"fmt"
	"math"
)

// NotFound is the display value of a lookup with no satisfying table entry.
const NotFound = "No encontrado"

// Lookup is the outcome of a table scan. Found is false when no entry
// satisfied the requirement; Value is then the zero value.
type Lookup[T any] struct {
	Value T    `json:"value"`
	Found bool `json:"found"`
}

func found[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v, Found: true}
}

// AmpacityColumn selects a column of the ampacity table.
type AmpacityColumn int

const (
	ColumnTW AmpacityColumn = iota
	ColumnTHW
	ColumnVinanel
	ColumnTHWOutdoor
	ColumnVinanelOutdoor
)

func (c AmpacityColumn) of(r AmpacityRow) float64 {
	switch c {
	case ColumnTW:
		return r.TW
	case ColumnTHW:
		return r.THW
	case ColumnVinanel:
		return r.Vinanel
	case ColumnTHWOutdoor:
		return r.THWOutdoor
	case ColumnVinanelOutdoor:
		return r.VinanelOutdoor
	}
	return math.NaN()
}

// SelectAmpacityColumn maps an insulation type and environment to the
// ampacity column to scan. Outdoors only THW has its own column; every
// other insulation uses the Vinanel-Nylon / Nylon 9000 one.
func SelectAmpacityColumn(ins Insulation, env Environment) (AmpacityColumn, bool) {
	switch env {
	case Outdoor:
		switch ins {
		case THW:
			return ColumnTHWOutdoor, true
		case TW, VinanelNylon, Vinanel900:
			return ColumnVinanelOutdoor, true
		}
	case Indoor:
		switch ins {
		case TW:
			return ColumnTW, true
		case THW:
			return ColumnTHW, true
		case VinanelNylon, Vinanel900:
			return ColumnVinanel, true
		}
	}
	return 0, false
}

// GaugeByAmpacity returns the first gauge whose ampacity in the selected
// column is at least current.
func GaugeByAmpacity(current float64, ins Insulation, env Environment) Lookup[string] {
	col, ok := SelectAmpacityColumn(ins, env)
	if !ok {
		return Lookup[string]{}
	}
	for _, row := range ampacityTable {
		if col.of(row) >= current {
			return found(row.Gauge)
		}
	}
	return Lookup[string]{}
}

// GaugeBySection returns the first gauge of Table No. 7 whose copper area
// is at least section mm².
func GaugeBySection(section float64, kind ConductorKind) Lookup[string] {
	for _, row := range table7.Rows(kind) {
		if row.CopperArea >= section {
			return found(row.Gauge)
		}
	}
	return Lookup[string]{}
}

// areaTableFor returns Table No. 7 for Vinanel-Nylon and Table No. 6 otherwise.
func areaTableFor(ins Insulation) AreaTable {
	if ins == VinanelNylon {
		return table7
	}
	return table6
}

// BundleArea returns the total area of count conductors of the given gauge.
// A single conductor uses the per-conductor total area; 2 to 6 use the
// grouped columns. Gauges absent from the table and counts above 6 miss.
func BundleArea(gauge string, count int, ins Insulation, kind ConductorKind) Lookup[float64] {
	for _, row := range areaTableFor(ins).Rows(kind) {
		if row.Gauge != gauge {
			continue
		}
		area, ok := row.GroupArea(count)
		if !ok {
			return Lookup[float64]{}
		}
		return found(area)
	}
	return Lookup[float64]{}
}

// Conduit is a nominal conduit size.
type Conduit struct {
	Inches      string `json:"inches"`
	Millimeters int    `json:"mm"`
}

func (c Conduit) String() string {
	return fmt.Sprintf("%s (%d mm)", c.Inches, c.Millimeters)
}

// ConduitFor returns the first conduit, in table order, whose capacity for
// the conduit type is at least area. Sizes without a value for that type
// are skipped.
func ConduitFor(area float64, t ConduitType) Lookup[Conduit] {
	for _, row := range conduitTable {
		capacity, ok := row.Capacity(t)
		if !ok {
			continue
		}
		if capacity >= area {
			return found(Conduit{Inches: row.Inches, Millimeters: row.Millimeters})
		}
	}
	return Lookup[Conduit]{}
}

// Breaker is a thermomagnetic breaker specification.
type Breaker struct {
	Poles        int    `json:"poles"`
	Amperes      int    `json:"amperes"`
	MaxAvailable bool   `json:"maxAvailable"` // largest rating, still below the protection current
	Found        bool   `json:"found"`
	Label        string `json:"label"`
}

func (b Breaker) String() string {
	switch {
	case !b.Found:
		return NotFound
	case b.MaxAvailable:
		return fmt.Sprintf("%d X %dA (máximo disponible)", b.Poles, b.Amperes)
	}
	return fmt.Sprintf("%d X %dA", b.Poles, b.Amperes)
}

// breakerMargin is how far, in amperes, the rounded protection current may
// exceed the next lower rating before that rating is rejected.
const breakerMargin = 3

// BreakerFor selects a breaker for the protection current. The pole count
// follows the system type. The smallest rating at or above ceil(ip) is
// chosen unless the next lower rating is within breakerMargin of ceil(ip),
// in which case the lower one wins. When no rating is large enough the
// largest one is returned with MaxAvailable set.
func BreakerFor(ip float64, sys SystemType) Breaker {
	set, ok := breakerTable[sys]
	if !ok {
		return Breaker{}
	}
	b := Breaker{Poles: set.Poles, Label: set.Label, Found: true}

	rounded := math.Ceil(ip)
	lower := -1
	for _, amp := range set.Ratings {
		a := float64(amp)
		if a < rounded {
			lower = amp
			continue
		}
		if a >= rounded {
			if lower >= 0 && rounded-float64(lower) <= breakerMargin {
				b.Amperes = lower
			} else {
				b.Amperes = amp
			}
			return b
		}
	}

	b.Amperes = set.Ratings[len(set.Ratings)-1]
	b.MaxAvailable = true
	return b
}
