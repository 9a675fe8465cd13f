package calc

import (
	"fmt"
	"math"
)

// protectionFactor scales the corrected current to the protection current.
const protectionFactor = 1.25

// ConductorInput is the input of the conductor sizing calculator. Power is
// in watts, voltage in volts, length in meters and VoltageDrop in percent.
type ConductorInput struct {
	System       SystemType    `json:"systemType"`
	Method       Method        `json:"method"`
	Load         LoadType      `json:"loadType"`
	Power        float64       `json:"power"`
	Voltage      float64       `json:"voltage"`
	PowerFactor  float64       `json:"powerFactor"`
	DemandFactor float64       `json:"demandFactor"`
	Efficiency   float64       `json:"efficiency"` // η, inductive three-phase loads
	Length       float64       `json:"length"`
	VoltageDrop  float64       `json:"voltageDrop"`
	Insulation   Insulation    `json:"insulation"`
	Environment  Environment   `json:"environment"`
	Conduit      ConduitType   `json:"conduitType"`
	Kind         ConductorKind `json:"conductorKind"`
	Conductors   int           `json:"conductors"`
}

// DefaultConductorInput returns the form defaults: a single-phase circuit
// sized by current with THW cable indoors.
func DefaultConductorInput() ConductorInput {
	return ConductorInput{
		System:       SinglePhase,
		Method:       ByCurrent,
		Load:         GeneralLoad,
		PowerFactor:  0.9,
		DemandFactor: 0.85,
		Efficiency:   1,
		VoltageDrop:  3,
		Insulation:   THW,
		Environment:  Indoor,
		Conduit:      ThinWall40,
		Kind:         Cables,
		Conductors:   1,
	}
}

// ConductorResult holds every quantity derived by the conductor calculator.
// Section is only computed by the voltage-drop method.
type ConductorResult struct {
	Input             ConductorInput  `json:"input"`
	Current           float64         `json:"current"`
	CorrectedCurrent  float64         `json:"correctedCurrent"`
	ProtectionCurrent float64         `json:"protectionCurrent"`
	Section           float64         `json:"section"`
	Gauge             Lookup[string]  `json:"gauge"`
	BundleArea        Lookup[float64] `json:"bundleArea"`
	Conduit           Lookup[Conduit] `json:"conduit"`
	Breaker           Breaker         `json:"breaker"`
	Formulas          []string        `json:"formulas"`
}

// GaugeLabel returns the gauge, or NotFound.
func (r ConductorResult) GaugeLabel() string {
	if !r.Gauge.Found {
		return NotFound
	}
	return r.Gauge.Value
}

// ConduitLabel returns the conduit as "1/2 (13 mm)", or NotFound.
func (r ConductorResult) ConduitLabel() string {
	if !r.Conduit.Found {
		return NotFound
	}
	return r.Conduit.Value.String()
}

// CalculateConductor sizes a branch circuit: current, gauge, conduit and
// breaker. A gauge miss leaves the bundle area and conduit unresolved; the
// breaker only depends on the protection current and is always resolved.
func CalculateConductor(in ConductorInput) ConductorResult {
	r := ConductorResult{Input: in}

	var formula string
	r.Current, formula = circuitCurrent(in)
	if formula != "" {
		r.Formulas = append(r.Formulas, formula)
	}

	r.CorrectedCurrent = r.Current * in.DemandFactor
	r.Formulas = append(r.Formulas, fmt.Sprintf(`I_c = %s \times %s = %s\,A`,
		Fixed(r.Current, 2), Num(in.DemandFactor), Fixed(r.CorrectedCurrent, 2)))
	r.ProtectionCurrent = r.CorrectedCurrent * protectionFactor

	switch in.Method {
	case ByVoltageDrop:
		k := dropConstant(in.System)
		r.Section = k * in.Length * r.CorrectedCurrent / (in.Voltage * (in.VoltageDrop / 100))
		r.Formulas = append(r.Formulas, fmt.Sprintf(`S = \frac{%s \times %s \times %s}{%s \times %s\%%} = %s\,\text{mm}^2`,
			Num(k), Num(in.Length), Fixed(r.CorrectedCurrent, 2), Num(in.Voltage), Num(in.VoltageDrop), Fixed(r.Section, 2)))
		r.Gauge = GaugeBySection(r.Section, in.Kind)
	default:
		r.Formulas = append(r.Formulas, fmt.Sprintf(`I_p = %s \times 1.25 = %s\,A`,
			Fixed(r.CorrectedCurrent, 2), Fixed(r.ProtectionCurrent, 2)))
		r.Gauge = GaugeByAmpacity(r.CorrectedCurrent, in.Insulation, in.Environment)
	}

	if r.Gauge.Found {
		r.BundleArea = BundleArea(r.Gauge.Value, in.Conductors, in.Insulation, in.Kind)
	}
	if r.BundleArea.Found {
		r.Conduit = ConduitFor(r.BundleArea.Value, in.Conduit)
	}
	r.Breaker = BreakerFor(r.ProtectionCurrent, in.System)
	return r
}

// circuitCurrent returns the line current for the topology and load type
// together with its formula. Unknown system types yield NaN.
func circuitCurrent(in ConductorInput) (float64, string) {
	p, v, cos := in.Power, in.Voltage, in.PowerFactor
	switch in.System {
	case SinglePhase:
		i := p / (v * cos)
		return i, fmt.Sprintf(`I = \frac{%s}{%s \times %s} = %s\,A`, Num(p), Num(v), Num(cos), Fixed(i, 2))
	case SplitPhase:
		i := p / (2 * v * cos)
		return i, fmt.Sprintf(`I = \frac{%s}{2 \times %s \times %s} = %s\,A`, Num(p), Num(v), Num(cos), Fixed(i, 2))
	case ThreePhase:
		switch in.Load {
		case ResistiveLoad:
			i := p / (math.Sqrt(3) * v)
			return i, fmt.Sprintf(`I = \frac{%s}{\sqrt{3} \times %s} = %s\,A`, Num(p), Num(v), Fixed(i, 2))
		case InductiveLoad:
			eta := in.Efficiency
			i := p / (math.Sqrt(3) * cos * v * eta)
			return i, fmt.Sprintf(`I = \frac{%s}{\sqrt{3} \times %s \times %s \times %s} = %s\,A`,
				Num(p), Num(cos), Num(v), Num(eta), Fixed(i, 2))
		default:
			i := p / (math.Sqrt(3) * v * cos)
			return i, fmt.Sprintf(`I = \frac{%s}{\sqrt{3} \times %s \times %s} = %s\,A`, Num(p), Num(v), Num(cos), Fixed(i, 2))
		}
	}
	return math.NaN(), ""
}

// dropConstant is the voltage-drop constant: 4 for two-wire single phase
// circuits, 2 for the rest.
func dropConstant(sys SystemType) float64 {
	if sys == SinglePhase {
		return 4
	}
	return 2
}

// Finite reports whether every derived quantity is a finite number.
func (r ConductorResult) Finite() bool {
	return allFinite(r.Current, r.CorrectedCurrent, r.ProtectionCurrent, r.Section, r.BundleArea.Value)
}
