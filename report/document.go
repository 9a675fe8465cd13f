// Package report renders calculator results as PDF, HTML, Markdown, plain
// text and CSV documents.
package report

import (
	"fmt"
	"time"

	"github.com/esime/ielec/calc"
	"github.com/esime/ielec/history"
)

// Titles per calculator.
const (
	CavityTitle    = "Método de Cavidades"
	FluxTitle      = "Calculadora de Luminarias - Método del Flujo Total"
	ConductorTitle = "Cálculo de Conductores Eléctricos"
)

// Row is a labelled value.
type Row struct {
	Label string
	Value string
}

// Room carries what the fixture layout plot needs.
type Room struct {
	Width  float64 // side a, across the rows
	Length float64 // side b
	Layout calc.Layout
}

// Document is the format-independent content of a report.
type Document struct {
	Calculator history.Calculator
	Title      string
	Date       time.Time
	Inputs     []Row
	Results    []Row
	Formulas   []string // TeX, one step per entry
	Note       string
	Room       *Room
}

// New builds the document for a calculator result. result must be one of
// calc.CavityResult, calc.FluxResult or calc.ConductorResult (or a pointer
// to one).
func New(result any, date time.Time, loc *Locale) (*Document, error) {
	switch r := result.(type) {
	case calc.CavityResult:
		return Cavity(r, date, loc), nil
	case *calc.CavityResult:
		return Cavity(*r, date, loc), nil
	case calc.FluxResult:
		return Flux(r, date, loc), nil
	case *calc.FluxResult:
		return Flux(*r, date, loc), nil
	case calc.ConductorResult:
		return Conductor(r, date, loc), nil
	case *calc.ConductorResult:
		return Conductor(*r, date, loc), nil
	}
	return nil, fmt.Errorf("unsupported result type %T", result)
}

// Cavity builds the cavity-ratio method document.
func Cavity(r calc.CavityResult, date time.Time, loc *Locale) *Document {
	loc = orDefault(loc)
	in := r.Input
	n := loc.Number
	return &Document{
		Calculator: history.Cavity,
		Title:      CavityTitle,
		Date:       date,
		Inputs: []Row{
			{"Largo (m)", n(in.Length, 2)},
			{"Ancho (m)", n(in.Width, 2)},
			{"Altura total (m)", n(in.TotalHeight, 2)},
			{"HT - Cavidad techo (m)", n(in.CeilingCavityHeight, 2)},
			{"HS - Cavidad suelo (m)", n(in.FloorCavityHeight, 2)},
			{"PT - Plano trabajo (m)", n(in.WorkPlaneHeight, 2)},
			{"RCL 1 (X₁) / CU 1 (Y₁)", n(in.CU.X1, 3) + " / " + n(in.CU.Y1, 4)},
			{"RCL 2 (X₂) / CU 2 (Y₂)", n(in.CU.X2, 3) + " / " + n(in.CU.Y2, 4)},
			{"Nivel de iluminación (lux)", n(in.Illuminance, 0)},
			{"Reflexión techo / paredes / piso", reflectances(in.Reflectances, loc)},
			{"Flujo luminoso (lm)", n(in.LuminousFlux, 0)},
			{"Lámparas por luminaria", n(in.LampsPerFixture, 0)},
			{"Factor de pérdidas (FPT)", n(in.MaintenanceFactor, 4)},
		},
		Results: []Row{
			{"Área del local (S)", n(r.Area, 2) + " m²"},
			{"Altura cavidad local (H)", n(r.CavityHeight, 3) + " m"},
			{"Relación cavidad local (RCL)", n(r.RoomCavityRatio, 3)},
			{"Relación cavidad techo (RCT)", n(r.CeilingCavityRatio, 3)},
			{"Relación cavidad suelo (RCP)", n(r.FloorCavityRatio, 3)},
			{"Coeficiente de utilización (CU)", n(r.CU, 4)},
			{"Luminarias (N)", calc.FormatSig3(r.FixturesExact) + " ⇒ " + n(r.Fixtures, 0)},
			{"Distribución (ancho × largo)", layoutText(r.Layout, loc)},
		},
		Formulas: r.Formulas,
		Note:     "Nota: La distribución redondea cada fila al entero más cercano; verifica que el total cubra el número de luminarias requerido.",
		Room:     &Room{Width: in.Width, Length: in.Length, Layout: r.Layout},
	}
}

// Flux builds the total-flux method document.
func Flux(r calc.FluxResult, date time.Time, loc *Locale) *Document {
	loc = orDefault(loc)
	in := r.Input
	n := loc.Number
	height := "Altura de cálculo (h)"
	if in.System.IsIndirect() {
		height = "Altura de cálculo (H)"
	}
	return &Document{
		Calculator: history.Flux,
		Title:      FluxTitle,
		Date:       date,
		Inputs: []Row{
			{"Largo b (m)", n(in.Length, 2)},
			{"Ancho a (m)", n(in.Width, 2)},
			{"Altura total Htotal (m)", n(in.TotalHeight, 2)},
			{"Altura plano trabajo HpT (m)", n(in.WorkPlaneHeight, 2)},
			{"Altura suspensión Hsusp (m)", n(in.SuspensionHeight, 2)},
			{"Sistema de alumbrado", string(in.System)},
			{"Reflexión techo / paredes / piso", reflectances(in.Reflectances, loc)},
			{"Nivel de iluminación E (lux)", n(in.Illuminance, 0)},
			{"FPT (factor de pérdidas)", n(in.MaintenanceFactor, 2)},
			{"Tipo de lámpara", in.LampType},
			{"Flujo por luminaria (lm)", n(in.FluxPerFixture, 0)},
			{"RCL X1 (=K₁) / CU Y1", n(in.CU.X1, 3) + " / " + n(in.CU.Y1, 3)},
			{"RCL X2 (=K₂) / CU Y2", n(in.CU.X2, 3) + " / " + n(in.CU.Y2, 3)},
		},
		Results: []Row{
			{"Área (S)", n(r.Area, 2) + " m²"},
			{height, n(r.CalculationHeight, 2) + " m"},
			{"Índice del local (K)", n(r.RoomIndex, 4)},
			{"Coeficiente de utilización (CU)", n(r.CU, 4)},
			{"Flujo total (Φtot)", n(r.TotalFlux, 2) + " lm"},
			{"Luminarias (Ntot)", n(r.FixturesExact, 2) + " ⇒ " + n(r.Fixtures, 0)},
			{"Distribución (ancho × largo)", layoutText(r.Layout, loc)},
		},
		Formulas: r.Formulas,
		Note:     "Nota: El coeficiente de utilización se interpola entre los dos puntos de la tabla del fabricante que rodean al índice del local.",
		Room:     &Room{Width: in.Width, Length: in.Length, Layout: r.Layout},
	}
}

// Conductor builds the branch-circuit conductor document.
func Conductor(r calc.ConductorResult, date time.Time, loc *Locale) *Document {
	loc = orDefault(loc)
	in := r.Input
	n := loc.Number
	inputs := []Row{
		{"Sistema", in.System.Label()},
		{"Potencia total (Wtot)", n(in.Power, 0) + " W"},
		{"Tensión (En)", n(in.Voltage, 0) + " V"},
		{"Factor de potencia (Cosθ)", calc.Num(in.PowerFactor)},
		{"Factor de demanda (FD)", calc.Num(in.DemandFactor)},
	}
	if in.Method == calc.ByVoltageDrop {
		inputs = append(inputs,
			Row{"Longitud (L)", n(in.Length, 2) + " m"},
			Row{"Caída de tensión permitida (e%)", calc.Num(in.VoltageDrop) + "%"},
		)
	}
	inputs = append(inputs,
		Row{"Tipo de aislamiento", string(in.Insulation)},
		Row{"Tipo de instalación", in.Environment.Label()},
		Row{"Número de conductores", fmt.Sprintf("%d", in.Conductors)},
		Row{"Tipo de tubería", in.Conduit.Label()},
	)

	results := []Row{
		{"Corriente (I)", n(r.Current, 2) + " A"},
		{"Corriente corregida (Ic)", n(r.CorrectedCurrent, 2) + " A"},
	}
	note := "Nota: Este cálculo determina la corriente y protección necesaria. Para dimensionamiento completo del conductor, considera también la caída de tensión."
	if in.Method == calc.ByVoltageDrop {
		results = append(results, Row{"Sección del conductor (S)", n(r.Section, 2) + " mm²"})
		note = "Nota: Este cálculo considera la caída de tensión máxima permitida. Verifica también la capacidad de corriente del conductor seleccionado."
	} else {
		results = append(results, Row{"Corriente de protección (Ip)", n(r.ProtectionCurrent, 2) + " A"})
	}
	area := calc.NotFound
	if r.BundleArea.Found {
		area = n(r.BundleArea.Value, 2) + " mm²"
	}
	results = append(results,
		Row{"Calibre AWG recomendado", r.GaugeLabel()},
		Row{"Área total conductores", area},
		Row{"Tubería recomendada", r.ConduitLabel()},
		Row{"Interruptor termomagnético", r.Breaker.String()},
	)

	return &Document{
		Calculator: history.Conductor,
		Title:      ConductorTitle,
		Date:       date,
		Inputs:     inputs,
		Results:    results,
		Formulas:   r.Formulas,
		Note:       note,
	}
}

func orDefault(loc *Locale) *Locale {
	if loc == nil {
		return MustLocale(DefaultLocale)
	}
	return loc
}

func reflectances(r calc.Reflectances, loc *Locale) string {
	return loc.Number(r.Ceiling, 2) + " / " + loc.Number(r.Walls, 2) + " / " + loc.Number(r.Floor, 2)
}

func layoutText(l calc.Layout, loc *Locale) string {
	return loc.Integer(l.Width) + " × " + loc.Integer(l.Length)
}
