package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/esime/ielec/calc"
	"github.com/esime/ielec/history"
)

var conductorCSVHeader = []string{
	"Tipo", "Fecha", "Potencia (W)", "Tensión (V)", "Factor de potencia", "Factor de demanda",
	"Aislamiento", "Instalación", "Conductores", "Tubería",
	"Corriente (A)", "Corriente corregida (A)",
	"Longitud (m)", "Caída de tensión (%)", "Sección (mm²)",
	"AWG", "Área (mm²)", "Tubería Recomendada", "Corriente protección (A)",
}

// WriteConductorCSV writes conductor history records as the calculation
// sheet spreadsheet users import. Columns that do not apply to a record's
// method hold "-". Records of other calculators are skipped.
func WriteConductorCSV(w io.Writer, records []*history.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(conductorCSVHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Calculator != history.Conductor {
			continue
		}
		var r calc.ConductorResult
		if err := json.Unmarshal(rec.Result, &r); err != nil {
			return fmt.Errorf("decoding record %s: %w", rec.ID, err)
		}
		if err := cw.Write(conductorRow(rec, r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func conductorRow(rec *history.Record, r calc.ConductorResult) []string {
	in := r.Input
	area := calc.NotFound
	if r.BundleArea.Found {
		area = calc.Fixed(r.BundleArea.Value, 2)
	}
	length, drop, section, protection := "-", "-", "-", "-"
	if in.Method == calc.ByVoltageDrop {
		length = calc.Num(in.Length)
		drop = calc.Num(in.VoltageDrop)
		section = calc.Fixed(r.Section, 2)
	} else {
		protection = calc.Fixed(r.ProtectionCurrent, 2)
	}
	return []string{
		string(in.System),
		rec.CreatedAt.Format("2006-01-02 15:04:05"),
		calc.Num(in.Power),
		calc.Num(in.Voltage),
		calc.Num(in.PowerFactor),
		calc.Num(in.DemandFactor),
		string(in.Insulation),
		string(in.Environment),
		strconv.Itoa(in.Conductors),
		string(in.Conduit),
		calc.Fixed(r.Current, 2),
		calc.Fixed(r.CorrectedCurrent, 2),
		length,
		drop,
		section,
		r.GaugeLabel(),
		area,
		r.ConduitLabel(),
		protection,
	}
}
