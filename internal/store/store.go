// Package store holds the in-memory expense collection. Records live for the
// lifetime of the process; only the configured spreadsheet id is durable.
package store

import (
	"sort"
	"sync"
	"time"

	"spendtrack/internal/core"
)

type MemoryStore struct {
	mu       sync.Mutex
	expenses map[int64]core.Expense
	nextID   int64
	now      func() time.Time
}

func New() *MemoryStore {
	return &MemoryStore{
		expenses: make(map[int64]core.Expense),
		nextID:   1,
		now:      time.Now,
	}
}

// NewWithClock returns a store using the given clock for creation timestamps.
func NewWithClock(now func() time.Time) *MemoryStore {
	s := New()
	s.now = now
	return s
}

// Create assigns the next id and the creation timestamp. Input validation
// happens upstream in the orchestrator; the store accepts what it is given.
func (s *MemoryStore) Create(in core.ExpenseInput) core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := core.Expense{
		ID:               s.nextID,
		Amount:           in.Amount,
		Type:             in.Type,
		Remarks:          in.Remarks,
		Date:             s.now(),
		Month:            in.Month,
		Year:             in.Year,
		GoogleSheetsSync: false,
	}
	s.nextID++
	s.expenses[e.ID] = e
	return e
}

// List returns all expenses, most recent first.
func (s *MemoryStore) List() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByDateDesc(s.collect(func(core.Expense) bool { return true }))
}

// ListByPeriod returns expenses filed under the given (month, year) bucket,
// most recent first.
func (s *MemoryStore) ListByPeriod(month, year int) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByDateDesc(s.collect(func(e core.Expense) bool {
		return e.Month == month && e.Year == year
	}))
}

// ListUnsynced returns expenses whose spreadsheet append has not been
// confirmed, oldest first so retries preserve row order.
func (s *MemoryStore) ListUnsynced() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.collect(func(e core.Expense) bool { return !e.GoogleSheetsSync })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) Get(id int64) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	return e, ok
}

// SetSyncFlag updates the sync flag on the matching record. An unknown id is
// signalled with ok=false, never an error.
func (s *MemoryStore) SetSyncFlag(id int64, synced bool) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, false
	}
	e.GoogleSheetsSync = synced
	s.expenses[id] = e
	return e, true
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expenses)
}

func (s *MemoryStore) collect(keep func(core.Expense) bool) []core.Expense {
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func sortedByDateDesc(out []core.Expense) []core.Expense {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		// Same timestamp: newer id first.
		return out[i].ID > out[j].ID
	})
	return out
}
