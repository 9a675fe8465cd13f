package history

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process repository, selected with history.store: memory.
type Memory struct {
	mu         sync.RWMutex
	records    []*Record // newest first
	maxPerUser int
}

// NewMemory creates an empty repository. maxPerUser <= 0 means unlimited.
func NewMemory(maxPerUser int) *Memory {
	return &Memory{maxPerUser: maxPerUser}
}

func (m *Memory) Save(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idTaken(r.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
	}
	m.insert(r)
	m.trim(r.UserID, r.Calculator)
	return nil
}

func (m *Memory) idTaken(id string) bool {
	return slices.ContainsFunc(m.records, func(e *Record) bool { return e.ID == id })
}

func (m *Memory) insert(r *Record) {
	cp := *r
	i, _ := slices.BinarySearchFunc(m.records, cp.CreatedAt, func(e *Record, t time.Time) int {
		return t.Compare(e.CreatedAt)
	})
	m.records = slices.Insert(m.records, i, &cp)
}

func (m *Memory) trim(userID string, calc Calculator) {
	if m.maxPerUser <= 0 {
		return
	}
	n := 0
	m.records = slices.DeleteFunc(m.records, func(e *Record) bool {
		if e.UserID != userID || e.Calculator != calc {
			return false
		}
		n++
		return n > m.maxPerUser
	})
}

func (m *Memory) Get(_ context.Context, userID, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.records {
		if e.UserID == userID && e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) List(_ context.Context, userID string, f Filter) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Record
	for _, e := range m.records {
		if e.UserID != userID || !f.Match(e) {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.records)
	m.records = slices.DeleteFunc(m.records, func(e *Record) bool {
		return e.UserID == userID && e.ID == id
	})
	if len(m.records) == before {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) Clear(_ context.Context, userID string, calc Calculator) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.records)
	m.records = slices.DeleteFunc(m.records, func(e *Record) bool {
		return e.UserID == userID && (calc == "" || e.Calculator == calc)
	})
	return before - len(m.records), nil
}

func (m *Memory) Replace(_ context.Context, userID string, calc Calculator, records []*Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.DeleteFunc(m.records, func(e *Record) bool {
		return e.UserID == userID && e.Calculator == calc
	})
	for _, r := range newest(records, m.maxPerUser) {
		if m.idTaken(r.ID) {
			r.ID = uuid.NewString()
		}
		cp := *r
		cp.UserID = userID
		cp.Calculator = calc
		m.insert(&cp)
	}
	return nil
}
