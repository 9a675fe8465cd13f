// Package evaluate decodes calculator inputs and runs the calculators. The
// HTTP server and the CLI share it.
package evaluate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/esime/ielec/calc"
	"github.com/esime/ielec/history"
	"github.com/esime/ielec/metrics"
	"github.com/esime/ielec/report"
)

// ErrInvalidInput wraps every problem with a calculator request body.
var ErrInvalidInput = errors.New("invalid input")

// Evaluation is one calculator run.
type Evaluation struct {
	Calculator history.Calculator
	Input      any
	Result     any
	Finite     bool
}

// Document builds the report document for the run.
func (e *Evaluation) Document(date time.Time, loc *report.Locale) (*report.Document, error) {
	return report.New(e.Result, date, loc)
}

// Run decodes a calculator input and runs the calculator. Unknown
// fields are rejected. Conductor inputs start from the form defaults, so
// omitted selectors keep their default option; lighting inputs start from
// zero.
func Run(c history.Calculator, data []byte) (*Evaluation, error) {
	switch c {
	case history.Cavity:
		var in calc.CavityInput
		if err := decodeStrict(data, &in); err != nil {
			return nil, err
		}
		r := calc.CalculateCavity(in)
		return &Evaluation{Calculator: c, Input: in, Result: r, Finite: r.Finite()}, nil

	case history.Flux:
		var in calc.FluxInput
		if err := decodeStrict(data, &in); err != nil {
			return nil, err
		}
		if in.System != "" && !in.System.Valid() {
			return nil, fmt.Errorf("%w: unknown lighting system %q", ErrInvalidInput, in.System)
		}
		r := calc.CalculateTotalFlux(in)
		return &Evaluation{Calculator: c, Input: in, Result: r, Finite: r.Finite()}, nil

	case history.Conductor:
		in := calc.DefaultConductorInput()
		if err := decodeStrict(data, &in); err != nil {
			return nil, err
		}
		if err := validateConductor(in); err != nil {
			return nil, err
		}
		r := calc.CalculateConductor(in)
		observeLookups(r)
		return &Evaluation{Calculator: c, Input: in, Result: r, Finite: r.Finite()}, nil
	}
	return nil, fmt.Errorf("%w: unknown calculator %q", ErrInvalidInput, c)
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func validateConductor(in calc.ConductorInput) error {
	var problems []string
	if !in.System.Valid() {
		problems = append(problems, fmt.Sprintf("systemType %q", in.System))
	}
	if !in.Method.Valid() {
		problems = append(problems, fmt.Sprintf("method %q", in.Method))
	}
	if !in.Load.Valid() {
		problems = append(problems, fmt.Sprintf("loadType %q", in.Load))
	}
	if !in.Insulation.Valid() {
		problems = append(problems, fmt.Sprintf("insulation %q", in.Insulation))
	}
	if !in.Environment.Valid() {
		problems = append(problems, fmt.Sprintf("environment %q", in.Environment))
	}
	if !in.Conduit.Valid() {
		problems = append(problems, fmt.Sprintf("conduitType %q", in.Conduit))
	}
	if !in.Kind.Valid() {
		problems = append(problems, fmt.Sprintf("conductorKind %q", in.Kind))
	}
	if in.Conductors < 1 {
		problems = append(problems, fmt.Sprintf("conductors %d", in.Conductors))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: unsupported %v", ErrInvalidInput, problems)
	}
	return nil
}

// observeLookups counts table misses of a conductor run. A gauge miss
// leaves the conduit unresolved too, which is not counted again.
func observeLookups(r calc.ConductorResult) {
	switch {
	case !r.Gauge.Found:
		metrics.ObserveLookupMiss("gauge")
	case !r.BundleArea.Found:
		metrics.ObserveLookupMiss("bundle_area")
	case !r.Conduit.Found:
		metrics.ObserveLookupMiss("conduit")
	}
	if !r.Breaker.Found {
		metrics.ObserveLookupMiss("breaker")
	}
}

// DecodeResult turns a stored result back into its calculator type.
func DecodeResult(rec *history.Record) (any, error) {
	var (
		v   any
		err error
	)
	switch rec.Calculator {
	case history.Cavity:
		var out calc.CavityResult
		err = json.Unmarshal(rec.Result, &out)
		v = out
	case history.Flux:
		var out calc.FluxResult
		err = json.Unmarshal(rec.Result, &out)
		v = out
	case history.Conductor:
		var out calc.ConductorResult
		err = json.Unmarshal(rec.Result, &out)
		v = out
	default:
		return nil, fmt.Errorf("unknown calculator %q", rec.Calculator)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", rec.Calculator, err)
	}
	return v, nil
}
