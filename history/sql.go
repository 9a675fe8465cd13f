package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/esime/ielec/database"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func idTaken(ctx context.Context, q queryer, rebind func(string) string, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, rebind("SELECT COUNT(*) FROM history WHERE id = ?"), id).Scan(&n)
	return n > 0, err
}

// SQL stores records in the shared database.
type SQL struct {
	db         *database.DB
	maxPerUser int
}

// NewSQL creates a repository on an open database. maxPerUser <= 0 means
// unlimited.
func NewSQL(db *database.DB, maxPerUser int) *SQL {
	return &SQL{db: db, maxPerUser: maxPerUser}
}

const recordColumns = "id, user_id, calculator, label, input, result, created_at"

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	r := &Record{}
	var label sql.NullString
	var input, result string
	if err := row.Scan(&r.ID, &r.UserID, &r.Calculator, &label, &input, &result, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Label = label.String
	r.Input = []byte(input)
	r.Result = []byte(result)
	return r, nil
}

func (s *SQL) Save(ctx context.Context, r *Record) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO history ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.UserID, string(r.Calculator), database.NullString(r.Label),
		string(r.Input), string(r.Result), r.CreatedAt.UTC(),
	)
	if err != nil {
		if taken, _ := idTaken(ctx, s.db.SQL(), s.db.Rebind, r.ID); taken {
			return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		return fmt.Errorf("saving history record: %w", err)
	}
	if s.maxPerUser > 0 {
		return s.trim(ctx, r.UserID, r.Calculator)
	}
	return nil
}

// trim deletes everything past the newest maxPerUser records.
func (s *SQL) trim(ctx context.Context, userID string, calc Calculator) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM history WHERE user_id = ? AND calculator = ? ORDER BY created_at DESC",
		userID, string(calc),
	)
	if err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}
	var stale []string
	n := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("trimming history: %w", err)
		}
		n++
		if n > s.maxPerUser {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range stale {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id); err != nil {
			return fmt.Errorf("trimming history: %w", err)
		}
	}
	return nil
}

func (s *SQL) Get(ctx context.Context, userID, id string) (*Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM history WHERE user_id = ? AND id = ?", userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting history record: %w", err)
	}
	return r, nil
}

func (s *SQL) List(ctx context.Context, userID string, f Filter) ([]*Record, error) {
	query := "SELECT " + recordColumns + " FROM history WHERE user_id = ?"
	args := []any{userID}
	if f.Calculator != "" {
		query += " AND calculator = ?"
		args = append(args, string(f.Calculator))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	// Date bounds are applied here: TIMESTAMP text comparison differs
	// between dialects.
	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		if !f.Match(r) {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, rows.Err()
}

func (s *SQL) Delete(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM history WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("deleting history record: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) Clear(ctx context.Context, userID string, calc Calculator) (int, error) {
	query := "DELETE FROM history WHERE user_id = ?"
	args := []any{userID}
	if calc != "" {
		query += " AND calculator = ?"
		args = append(args, string(calc))
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

func (s *SQL) Replace(ctx context.Context, userID string, calc Calculator, records []*Record) error {
	tx, err := s.db.SQL().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("importing history: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind("DELETE FROM history WHERE user_id = ? AND calculator = ?"),
		userID, string(calc)); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	insert := s.db.Rebind("INSERT INTO history (" + recordColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	for _, r := range newest(records, s.maxPerUser) {
		taken, err := idTaken(ctx, tx, s.db.Rebind, r.ID)
		if err != nil {
			return fmt.Errorf("importing history: %w", err)
		}
		if taken {
			r.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, insert,
			r.ID, userID, string(calc), database.NullString(r.Label),
			string(r.Input), string(r.Result), r.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("importing history record %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
