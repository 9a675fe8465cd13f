package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// WriteJSON writes records as an indented JSON array, the format ReadJSON
// imports.
func WriteJSON(w io.Writer, records []*Record) error {
	if records == nil {
		records = []*Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ReadJSON parses a history file. Records without an ID or date are given
// one when saved through Replace.
func ReadJSON(r io.Reader) ([]*Record, error) {
	var records []*Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("reading history file: entry %d is null", i)
		}
		if rec.Calculator != "" && !rec.Calculator.Valid() {
			return nil, fmt.Errorf("reading history file: entry %d has unknown calculator %q", i, rec.Calculator)
		}
		if len(rec.Input) == 0 || len(rec.Result) == 0 {
			return nil, fmt.Errorf("reading history file: entry %d lacks inputs or resultados", i)
		}
	}
	return records, nil
}

// WriteCSV writes one row per record. Inputs and results stay as compact
// JSON in their own columns.
func WriteCSV(w io.Writer, records []*Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "calculator", "label", "created_at", "inputs", "results"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID,
			string(r.Calculator),
			r.Label,
			r.CreatedAt.UTC().Format(time.RFC3339),
			string(r.Input),
			string(r.Result),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
