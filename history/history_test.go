package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esime/ielec/database"
)

func repositories(t *testing.T, maxPerUser int) map[string]Repository {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return map[string]Repository{
		"memory": NewMemory(maxPerUser),
		"sql":    NewSQL(db, maxPerUser),
	}
}

func record(t *testing.T, user string, calc Calculator, at time.Time) *Record {
	t.Helper()
	r, err := NewRecord(user, calc, "", map[string]float64{"power": 3500}, map[string]string{"gauge": "12"})
	require.NoError(t, err)
	r.CreatedAt = at
	return r
}

func TestRepository_SaveListDelete(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t, 0) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			older := record(t, "ana", Conductor, base)
			newer := record(t, "ana", Conductor, base.Add(time.Hour))
			other := record(t, "luis", Conductor, base)
			flux := record(t, "ana", Flux, base.Add(2*time.Hour))
			for _, r := range []*Record{older, newer, other, flux} {
				require.NoError(t, repo.Save(ctx, r))
			}

			list, err := repo.List(ctx, "ana", Filter{Calculator: Conductor})
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, newer.ID, list[0].ID, "newest first")
			assert.JSONEq(t, `{"power":3500}`, string(list[0].Input))

			all, err := repo.List(ctx, "ana", Filter{})
			require.NoError(t, err)
			assert.Len(t, all, 3)

			got, err := repo.Get(ctx, "ana", older.ID)
			require.NoError(t, err)
			assert.Equal(t, Conductor, got.Calculator)

			_, err = repo.Get(ctx, "luis", older.ID)
			assert.ErrorIs(t, err, ErrNotFound, "records are private to their user")

			require.NoError(t, repo.Delete(ctx, "ana", older.ID))
			assert.ErrorIs(t, repo.Delete(ctx, "ana", older.ID), ErrNotFound)

			n, err := repo.Clear(ctx, "ana", "")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			left, _ := repo.List(ctx, "luis", Filter{})
			assert.Len(t, left, 1)
		})
	}
}

func TestRepository_KeepsNewestPerUser(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 12; i++ {
				require.NoError(t, repo.Save(ctx, record(t, "ana", Conductor, base.Add(time.Duration(i)*time.Minute))))
			}
			require.NoError(t, repo.Save(ctx, record(t, "ana", Cavity, base)))

			list, err := repo.List(ctx, "ana", Filter{Calculator: Conductor})
			require.NoError(t, err)
			require.Len(t, list, 10)
			assert.True(t, list[0].CreatedAt.Equal(base.Add(11*time.Minute)))
			assert.True(t, list[9].CreatedAt.Equal(base.Add(2*time.Minute)))

			cavity, _ := repo.List(ctx, "ana", Filter{Calculator: Cavity})
			assert.Len(t, cavity, 1, "limit applies per calculator")
		})
	}
}

func TestRepository_DateFilter(t *testing.T) {
	for name, repo := range repositories(t, 0) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for day := 1; day <= 5; day++ {
				repo.Save(ctx, record(t, "ana", Flux, time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC)))
			}

			f, err := ParseFilter(url.Values{"since": {"2025-03-02"}, "until": {"2025-03-04"}})
			require.NoError(t, err)
			list, err := repo.List(ctx, "ana", f)
			require.NoError(t, err)
			assert.Len(t, list, 2, "days 2 and 3 (day 4 is after midnight of the 4th)")

			list, _ = repo.List(ctx, "ana", Filter{Limit: 1})
			assert.Len(t, list, 1)
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	_, err := ParseFilter(url.Values{"calculator": {"pendulum"}})
	assert.Error(t, err)
	_, err = ParseFilter(url.Values{"since": {"not a date"}})
	assert.Error(t, err)
	_, err = ParseFilter(url.Values{"limit": {"-1"}})
	assert.Error(t, err)
}

func TestReplaceFromJSON(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory(10)
	repo.Save(ctx, record(t, "ana", Flux, time.Now().UTC()))

	file := `[
	  {"id": "a1", "fechaISO": "2025-03-01T10:00:00Z", "inputs": {"largo": 10}, "resultados": {"numeroLuminarias": 11}},
	  {"id": "a2", "fechaISO": "2025-03-02T10:00:00Z", "inputs": {"largo": 12}, "resultados": {"numeroLuminarias": 14}}
	]`
	records, err := ReadJSON(strings.NewReader(file))
	require.NoError(t, err)
	require.NoError(t, Replace(ctx, repo, "ana", Flux, records))

	list, _ := repo.List(ctx, "ana", Filter{Calculator: Flux})
	require.Len(t, list, 2, "import replaces the existing history")
	assert.Equal(t, "a2", list[0].ID)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, list))
	again, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Len(t, again, 2)
}

func TestReplace_RejectsOtherCalculator(t *testing.T) {
	records, err := ReadJSON(strings.NewReader(`[{"calculator":"cavity","inputs":{},"resultados":{}}]`))
	require.NoError(t, err)
	err = Replace(context.Background(), NewMemory(0), "ana", Flux, records)
	assert.Error(t, err)
}

func TestRepository_SaveRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t, 0) {
		t.Run(name, func(t *testing.T) {
			r := record(t, "ana", Conductor, time.Now().UTC())
			require.NoError(t, repo.Save(ctx, r))

			again := *r
			again.UserID = "luis"
			assert.ErrorIs(t, repo.Save(ctx, &again), ErrDuplicateID)
		})
	}
}

func TestRepository_ReplaceAcrossUsers(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t, 3) {
		t.Run(name, func(t *testing.T) {
			shared := record(t, "ana", Conductor, base)
			require.NoError(t, repo.Save(ctx, shared))
			require.NoError(t, repo.Save(ctx, record(t, "luis", Conductor, base)))
			require.NoError(t, repo.Save(ctx, record(t, "luis", Flux, base)))

			// luis imports a file holding ana's record plus four more.
			file := []*Record{shared}
			for i := 1; i <= 4; i++ {
				file = append(file, record(t, "ana", Conductor, base.Add(time.Duration(i)*time.Hour)))
			}
			require.NoError(t, Replace(ctx, repo, "luis", Conductor, file))

			got, err := repo.List(ctx, "luis", Filter{Calculator: Conductor})
			require.NoError(t, err)
			require.Len(t, got, 3, "imports keep the newest records")
			assert.Equal(t, base.Add(4*time.Hour), got[0].CreatedAt.UTC())

			flux, _ := repo.List(ctx, "luis", Filter{Calculator: Flux})
			assert.Len(t, flux, 1, "other calculators are untouched")

			own, err := repo.Get(ctx, "ana", shared.ID)
			require.NoError(t, err)
			assert.Equal(t, "ana", own.UserID)
		})
	}
}

func TestReplace_DuplicateIDsKeepHistory(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t, 0) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Save(ctx, record(t, "luis", Conductor, time.Now().UTC())))
			require.NoError(t, repo.Save(ctx, record(t, "luis", Conductor, time.Now().UTC())))

			r := record(t, "ana", Conductor, time.Now().UTC())
			err := Replace(ctx, repo, "luis", Conductor, []*Record{r, r})
			assert.ErrorIs(t, err, ErrDuplicateID)

			got, _ := repo.List(ctx, "luis", Filter{})
			assert.Len(t, got, 2)
		})
	}
}

func TestRepository_ReplaceReissuesTakenIDs(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t, 0) {
		t.Run(name, func(t *testing.T) {
			a := record(t, "luis", Conductor, time.Now().UTC())
			b := *a
			require.NoError(t, repo.Replace(ctx, "luis", Conductor, []*Record{a, &b}))

			got, err := repo.List(ctx, "luis", Filter{})
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.NotEqual(t, got[0].ID, got[1].ID)
		})
	}
}

func TestReadJSON_Invalid(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"not":"an array"}`))
	assert.Error(t, err)
	_, err = ReadJSON(strings.NewReader(`[{"id":"x"}]`))
	assert.Error(t, err, "entries need inputs and results")
}

func TestWriteCSV(t *testing.T) {
	r := record(t, "ana", Conductor, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	r.Label = "Taller, planta baja"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*Record{r}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "calculator", "label", "created_at", "inputs", "results"}, rows[0])
	assert.Equal(t, "Taller, planta baja", rows[1][2])
	assert.Equal(t, "2025-03-01T10:00:00Z", rows[1][3])
	assert.Equal(t, `{"power":3500}`, rows[1][4])
}

func TestCalculators(t *testing.T) {
	assert.Equal(t, []string{"cavity", "flux", "conductor"}, CalculatorNames())
	for _, c := range Calculators {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Calculator("ohm").Valid())
	assert.False(t, Calculator("").Valid())
}
