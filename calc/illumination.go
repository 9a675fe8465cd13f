package calc

import (
	"fmt"
	"math"
)

// Layout is the split of a fixture count into rows across the width and
// along the length of the room.
type Layout struct {
	WidthExact  float64 `json:"widthExact"`
	LengthExact float64 `json:"lengthExact"`
	Width       float64 `json:"width"`  // max(1, round(WidthExact))
	Length      float64 `json:"length"` // max(1, round(LengthExact))
}

// layoutFor distributes n fixtures so that the ratio between the rows
// matches the ratio between the room sides.
func layoutFor(width, length, n float64) Layout {
	w := math.Sqrt(width * n / length)
	l := w * (length / width)
	return Layout{
		WidthExact:  w,
		LengthExact: l,
		Width:       math.Max(1, RoundHalfUp(w)),
		Length:      math.Max(1, RoundHalfUp(l)),
	}
}

// CUPoints are two points of a manufacturer utilization table bracketing
// the room ratio. The coefficient is interpolated between them.
type CUPoints struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Reflectances of the room surfaces, between 0 and 1. They are used to
// pick the CU table entries and are carried through for reports only.
type Reflectances struct {
	Ceiling float64 `json:"ceiling"`
	Walls   float64 `json:"walls"`
	Floor   float64 `json:"floor"`
}

// CavityInput is the input of the cavity-ratio method. Lengths are in
// meters, illuminance in lux and flux in lumens.
type CavityInput struct {
	Length              float64      `json:"length"`
	Width               float64      `json:"width"`
	TotalHeight         float64      `json:"totalHeight"`
	CeilingCavityHeight float64      `json:"ceilingCavityHeight"`
	FloorCavityHeight   float64      `json:"floorCavityHeight"`
	WorkPlaneHeight     float64      `json:"workPlaneHeight"`
	CU                  CUPoints     `json:"cu"`
	Reflectances        Reflectances `json:"reflectances"`
	Illuminance         float64      `json:"illuminance"`
	LuminousFlux        float64      `json:"luminousFlux"`
	LampsPerFixture     float64      `json:"lampsPerFixture"`
	MaintenanceFactor   float64      `json:"maintenanceFactor"`
}

// DefaultCavityInput returns the worked example of the cavity-ratio method.
func DefaultCavityInput() CavityInput {
	return CavityInput{
		Length:              12,
		Width:               6,
		TotalHeight:         3,
		CeilingCavityHeight: 0.5,
		FloorCavityHeight:   0.8,
		WorkPlaneHeight:     0.8,
		CU:                  CUPoints{X1: 2, Y1: 0.59, X2: 3, Y2: 0.52},
		Reflectances:        Reflectances{Ceiling: 0.7, Walls: 0.5, Floor: 0.2},
		Illuminance:         500,
		LuminousFlux:        2900,
		LampsPerFixture:     1,
		MaintenanceFactor:   0.64,
	}
}

// CavityResult holds every quantity derived by the cavity-ratio method.
type CavityResult struct {
	Input              CavityInput `json:"input"`
	CavityHeight       float64     `json:"cavityHeight"`
	RoomCavityRatio    float64     `json:"roomCavityRatio"`
	CeilingCavityRatio float64     `json:"ceilingCavityRatio"`
	FloorCavityRatio   float64     `json:"floorCavityRatio"`
	Area               float64     `json:"area"`
	CU                 float64     `json:"cu"`
	FixturesExact      float64     `json:"fixturesExact"`
	Fixtures           float64     `json:"fixtures"`
	Layout             Layout      `json:"layout"`
	Formulas           []string    `json:"formulas"`
}

// CalculateCavity sizes a lighting installation with the cavity-ratio
// (zonal cavity) method.
func CalculateCavity(in CavityInput) CavityResult {
	r := CavityResult{Input: in}

	h := in.TotalHeight - in.WorkPlaneHeight - in.CeilingCavityHeight
	r.CavityHeight = h
	r.RoomCavityRatio = 5 * h * (in.Length + in.Width) / (in.Length * in.Width)
	r.CeilingCavityRatio = r.RoomCavityRatio * (in.CeilingCavityHeight / h)
	r.FloorCavityRatio = r.RoomCavityRatio * (in.FloorCavityHeight / h)
	r.Area = in.Length * in.Width

	r.CU = Interpolate(in.CU.X1, in.CU.Y1, in.CU.X2, in.CU.Y2, r.RoomCavityRatio)

	r.FixturesExact = in.Illuminance * r.Area /
		(in.LuminousFlux * in.LampsPerFixture * r.CU * in.MaintenanceFactor)
	r.Fixtures = math.Ceil(r.FixturesExact)
	r.Layout = layoutFor(in.Width, in.Length, r.FixturesExact)

	r.Formulas = []string{
		fmt.Sprintf(`H = %s - %s - %s = %s`,
			Num(in.TotalHeight), Num(in.WorkPlaneHeight), Num(in.CeilingCavityHeight), Fixed(h, 3)),
		fmt.Sprintf(`RCL = \frac{5 \times %s \times (%s + %s)}{%s \times %s} = %s`,
			Fixed(h, 3), Num(in.Length), Num(in.Width), Num(in.Length), Num(in.Width), Fixed(r.RoomCavityRatio, 3)),
		fmt.Sprintf(`RCT = %s \times \frac{%s}{%s} = %s`,
			Fixed(r.RoomCavityRatio, 3), Num(in.CeilingCavityHeight), Fixed(h, 3), Fixed(r.CeilingCavityRatio, 3)),
		fmt.Sprintf(`RCP = %s \times \frac{%s}{%s} = %s`,
			Fixed(r.RoomCavityRatio, 3), Num(in.FloorCavityHeight), Fixed(h, 3), Fixed(r.FloorCavityRatio, 3)),
		fmt.Sprintf(`S = %s \times %s = %s\, m^2`, Num(in.Length), Num(in.Width), Short(r.Area, 2)),
		fmt.Sprintf(`CU = %s + \frac{(%s - %s)}{(%s - %s)} \times (%s - %s) = %s`,
			Num(in.CU.Y1), Num(in.CU.Y2), Num(in.CU.Y1), Num(in.CU.X2), Num(in.CU.X1),
			Fixed(r.RoomCavityRatio, 3), Num(in.CU.X1), Fixed(r.CU, 4)),
		fmt.Sprintf(`N = \frac{%s \times %s}{%s \times %s \times %s \times %s} = %s \Rightarrow %s`,
			Num(in.Illuminance), Short(r.Area, 2), Num(in.LuminousFlux), Num(in.LampsPerFixture),
			Fixed(r.CU, 4), Fixed(in.MaintenanceFactor, 4), FormatSig3(r.FixturesExact), Num(r.Fixtures)),
		fmt.Sprintf(`N_{ancho} = \sqrt{\frac{%s \times %s}{%s}} = %s \Rightarrow %s`,
			Num(in.Width), FormatSig3(r.FixturesExact), Num(in.Length), FormatSig3(r.Layout.WidthExact), Num(r.Layout.Width)),
		fmt.Sprintf(`N_{largo} = %s \times \frac{%s}{%s} = %s \Rightarrow %s`,
			FormatSig3(r.Layout.WidthExact), Num(in.Length), Num(in.Width), FormatSig3(r.Layout.LengthExact), Num(r.Layout.Length)),
	}
	return r
}

// FluxInput is the input of the total-flux (lumen) method. Width and
// Length are the room sides a and b.
type FluxInput struct {
	Length            float64        `json:"length"`
	Width             float64        `json:"width"`
	TotalHeight       float64        `json:"totalHeight"`
	WorkPlaneHeight   float64        `json:"workPlaneHeight"`
	SuspensionHeight  float64        `json:"suspensionHeight"`
	Illuminance       float64        `json:"illuminance"`
	System            LightingSystem `json:"system"`
	Reflectances      Reflectances   `json:"reflectances"`
	LampType          string         `json:"lampType"`
	FluxPerFixture    float64        `json:"fluxPerFixture"`
	CU                CUPoints       `json:"cu"`
	MaintenanceFactor float64        `json:"maintenanceFactor"`
}

// DefaultFluxInput returns the worked example of the total-flux method.
func DefaultFluxInput() FluxInput {
	return FluxInput{
		Length:            10,
		Width:             8,
		TotalHeight:       3.2,
		WorkPlaneHeight:   0.8,
		SuspensionHeight:  0.3,
		Illuminance:       300,
		System:            SemiIndirect,
		Reflectances:      Reflectances{Ceiling: 0.8, Walls: 0.5, Floor: 0.2},
		LampType:          "LED panel 40W",
		FluxPerFixture:    4000,
		CU:                CUPoints{X1: 0.75, Y1: 0.54, X2: 1.5, Y2: 0.68},
		MaintenanceFactor: 0.64,
	}
}

// FluxResult holds every quantity derived by the total-flux method.
type FluxResult struct {
	Input             FluxInput `json:"input"`
	Area              float64   `json:"area"`
	CalculationHeight float64   `json:"calculationHeight"`
	RoomIndex         float64   `json:"roomIndex"`
	CU                float64   `json:"cu"`
	TotalFlux         float64   `json:"totalFlux"`
	FixturesExact     float64   `json:"fixturesExact"`
	Fixtures          float64   `json:"fixtures"`
	Layout            Layout    `json:"layout"`
	Formulas          []string  `json:"formulas"`
}

// CalculateTotalFlux sizes a lighting installation with the total-flux
// method. Indirect systems measure the height from the work plane to the
// ceiling; the rest subtract the suspension length as well.
func CalculateTotalFlux(in FluxInput) FluxResult {
	r := FluxResult{Input: in}
	a, b := in.Width, in.Length
	indirect := in.System.IsIndirect()

	r.Area = a * b
	if indirect {
		r.CalculationHeight = in.TotalHeight - in.WorkPlaneHeight
		r.RoomIndex = 3 * a * b / (2 * r.CalculationHeight * (a + b))
	} else {
		r.CalculationHeight = in.TotalHeight - in.WorkPlaneHeight - in.SuspensionHeight
		r.RoomIndex = a * b / (r.CalculationHeight * (a + b))
	}

	r.CU = Interpolate(in.CU.X1, in.CU.Y1, in.CU.X2, in.CU.Y2, r.RoomIndex)
	r.TotalFlux = in.Illuminance * r.Area / (r.CU * in.MaintenanceFactor)
	r.FixturesExact = r.TotalFlux / in.FluxPerFixture
	r.Fixtures = math.Ceil(r.FixturesExact)
	r.Layout = layoutFor(a, b, r.FixturesExact)

	h := Short(r.CalculationHeight, 2)
	f := []string{
		fmt.Sprintf(`S = %s \times %s = %s\, m^2`, Short(a, 2), Short(b, 2), Short(r.Area, 2)),
	}
	if indirect {
		f = append(f,
			fmt.Sprintf(`H = %s - %s = %s\, m`, Short(in.TotalHeight, 2), Short(in.WorkPlaneHeight, 2), h),
			fmt.Sprintf(`K = \frac{3 \times %s \times %s}{2 \times %s \times (%s + %s)} = %s`,
				Short(a, 2), Short(b, 2), h, Short(a, 2), Short(b, 2), Short(r.RoomIndex, 4)),
		)
	} else {
		f = append(f,
			fmt.Sprintf(`h = %s - %s - %s = %s\, m`,
				Short(in.TotalHeight, 2), Short(in.WorkPlaneHeight, 2), Short(in.SuspensionHeight, 2), h),
			fmt.Sprintf(`K = \frac{%s \times %s}{%s \times (%s + %s)} = %s`,
				Short(a, 2), Short(b, 2), h, Short(a, 2), Short(b, 2), Short(r.RoomIndex, 4)),
		)
	}
	f = append(f,
		fmt.Sprintf(`CU = %s + \frac{(%s - %s) \cdot (%s - %s)}{%s - %s} = %s`,
			Short(in.CU.Y1, 3), Short(r.RoomIndex, 4), Short(in.CU.X1, 3), Short(in.CU.Y2, 3), Short(in.CU.Y1, 3),
			Short(in.CU.X2, 3), Short(in.CU.X1, 3), Short(r.CU, 4)),
		fmt.Sprintf(`\Phi_{tot} = \frac{E \cdot S}{CU \cdot FPT} = \frac{%s \times %s}{%s \times %s} = %s\, lm`,
			Num(in.Illuminance), Short(r.Area, 2), Short(r.CU, 4), Num(in.MaintenanceFactor), Short(r.TotalFlux, 4)),
		fmt.Sprintf(`N_{tot} = \frac{\Phi_{tot}}{\Phi_l} = \frac{%s}{%s} = %s \Rightarrow %s`,
			Short(r.TotalFlux, 4), Num(in.FluxPerFixture), Short(r.FixturesExact, 2), Num(r.Fixtures)),
		fmt.Sprintf(`N_{ancho} = \sqrt{a \cdot \frac{N_{tot}}{b}} = \sqrt{%s \cdot \frac{%s}{%s}} = %s`,
			Num(a), Short(r.FixturesExact, 2), Num(b), Short(r.Layout.WidthExact, 2)),
		fmt.Sprintf(`N_{largo} = N_{ancho} \cdot \frac{b}{a} = %s \cdot \frac{%s}{%s} = %s`,
			Short(r.Layout.WidthExact, 2), Num(b), Num(a), Short(r.Layout.LengthExact, 2)),
	)
	r.Formulas = f
	return r
}

// Finite reports whether every derived quantity is a finite number.
func (r CavityResult) Finite() bool {
	return allFinite(r.CavityHeight, r.RoomCavityRatio, r.CeilingCavityRatio, r.FloorCavityRatio,
		r.Area, r.CU, r.FixturesExact, r.Layout.WidthExact, r.Layout.LengthExact)
}

// Finite reports whether every derived quantity is a finite number.
func (r FluxResult) Finite() bool {
	return allFinite(r.Area, r.CalculationHeight, r.RoomIndex, r.CU, r.TotalFlux,
		r.FixturesExact, r.Layout.WidthExact, r.Layout.LengthExact)
}
