// Package history stores past calculations per user and calculator.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// Calculator names a calculator whose runs are recorded.
type Calculator string

const (
	Cavity    Calculator = "cavity"
	Flux      Calculator = "flux"
	Conductor Calculator = "conductor"
)

// Calculators lists every calculator in display order.
var Calculators = []Calculator{Cavity, Flux, Conductor}

// Valid reports whether c is a known calculator.
func (c Calculator) Valid() bool {
	return slices.Contains(Calculators, c)
}

// CalculatorNames returns the calculator names in display order.
func CalculatorNames() []string {
	names := make([]string, len(Calculators))
	for i, c := range Calculators {
		names[i] = string(c)
	}
	return names
}

var (
	// ErrNotFound is returned when a record does not exist for the user.
	ErrNotFound = errors.New("history record not found")
	// ErrDuplicateID is returned when a record ID is already stored.
	ErrDuplicateID = errors.New("duplicate history record id")
	// ErrInvalidImport is returned for an imported record that does not
	// fit the target calculator.
	ErrInvalidImport = errors.New("invalid history import")
)

// Record is one saved calculation. Input and Result hold the calculator's
// own JSON documents. The JSON names match the exported history files.
type Record struct {
	ID         string          `json:"id"`
	UserID     string          `json:"-"`
	Calculator Calculator      `json:"calculator"`
	Label      string          `json:"label,omitempty"`
	Input      json.RawMessage `json:"inputs"`
	Result     json.RawMessage `json:"resultados"`
	CreatedAt  time.Time       `json:"fechaISO"`
}

// NewRecord builds a record with a fresh ID, marshalling input and result.
func NewRecord(userID string, calc Calculator, label string, input, result any) (*Record, error) {
	in, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding input: %w", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		Calculator: calc,
		Label:      label,
		Input:      in,
		Result:     out,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Filter narrows a listing. Zero values match everything.
type Filter struct {
	Calculator Calculator
	Since      time.Time
	Until      time.Time
	Limit      int
}

// Match reports whether r passes the filter, ignoring Limit.
func (f Filter) Match(r *Record) bool {
	if f.Calculator != "" && r.Calculator != f.Calculator {
		return false
	}
	if !f.Since.IsZero() && r.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.CreatedAt.After(f.Until) {
		return false
	}
	return true
}

// ParseFilter reads calculator, since, until and limit query parameters.
// Dates are accepted in any format dateparse recognizes ("2025-03-01",
// "01/03/2025 10:00", RFC 3339...).
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	if c := q.Get("calculator"); c != "" {
		f.Calculator = Calculator(c)
		if !f.Calculator.Valid() {
			return f, fmt.Errorf("unknown calculator %q", c)
		}
	}
	if s := q.Get("since"); s != "" {
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return f, fmt.Errorf("invalid since date %q: %w", s, err)
		}
		f.Since = t
	}
	if s := q.Get("until"); s != "" {
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return f, fmt.Errorf("invalid until date %q: %w", s, err)
		}
		f.Until = t
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit %q", s)
		}
		f.Limit = n
	}
	return f, nil
}

// Repository persists records. Implementations keep at most a configured
// number of records per user and calculator, dropping the oldest.
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, userID, id string) (*Record, error)
	List(ctx context.Context, userID string, f Filter) ([]*Record, error)
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string, calc Calculator) (int, error)
	// Replace atomically swaps the user's records for calc with records,
	// given oldest first. Imported IDs held by other users are reissued.
	Replace(ctx context.Context, userID string, calc Calculator, records []*Record) error
}

// Replace swaps a user's records for one calculator with the given set,
// the way importing a history file works. The records are checked before
// anything is removed, and the repository applies the swap atomically.
func Replace(ctx context.Context, repo Repository, userID string, calc Calculator, records []*Record) error {
	prepared, err := PrepareImport(userID, calc, records)
	if err != nil {
		return err
	}
	return repo.Replace(ctx, userID, calc, prepared)
}

// PrepareImport assigns imported records to userID and returns them oldest
// first, so trimming keeps the newest. Missing IDs and dates are filled in.
func PrepareImport(userID string, calc Calculator, records []*Record) ([]*Record, error) {
	seen := make(map[string]bool, len(records))
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		cp := *r
		cp.UserID = userID
		if cp.Calculator == "" {
			cp.Calculator = calc
		}
		if cp.Calculator != calc {
			return nil, fmt.Errorf("%w: record %s belongs to %q, not %q", ErrInvalidImport, cp.ID, cp.Calculator, calc)
		}
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		if seen[cp.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, cp.ID)
		}
		seen[cp.ID] = true
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now().UTC()
		}
		out = append(out, &cp)
	}
	sortOldestFirst(out)
	return out, nil
}

// newest returns the last n records of an oldest-first slice.
func newest(records []*Record, n int) []*Record {
	if n > 0 && len(records) > n {
		return records[len(records)-n:]
	}
	return records
}

func sortOldestFirst(records []*Record) {
	slices.SortStableFunc(records, func(a, b *Record) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
