package store

import (
	"testing"
	"time"

	"spendtrack/internal/core"
)

func input(month, year int) core.ExpenseInput {
	return core.ExpenseInput{Amount: 10, Type: "food", Month: month, Year: year}
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	s := New()
	for want := int64(1); want <= 5; want++ {
		e := s.Create(input(6, 2024))
		if e.ID != want {
			t.Fatalf("id = %d, want %d", e.ID, want)
		}
		if e.GoogleSheetsSync {
			t.Fatal("new expense must start unsynced")
		}
		if e.Date.IsZero() {
			t.Fatal("creation date must be set")
		}
	}
	if s.Len() != 5 {
		t.Fatalf("Len = %d, want 5", s.Len())
	}
}

func TestListOrderedByDateDesc(t *testing.T) {
	base := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	tick := 0
	s := NewWithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	first := s.Create(input(6, 2024))
	second := s.Create(input(6, 2024))
	third := s.Create(input(7, 2024))

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != third.ID || got[1].ID != second.ID || got[2].ID != first.ID {
		t.Fatalf("unexpected order: %d, %d, %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestListSameTimestampNewestIDFirst(t *testing.T) {
	fixed := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return fixed })
	s.Create(input(6, 2024))
	s.Create(input(6, 2024))

	got := s.List()
	if got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("unexpected tie-break order: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestListByPeriodFiltersExactly(t *testing.T) {
	s := New()
	s.Create(input(6, 2024))
	s.Create(input(6, 2024))
	s.Create(input(7, 2024))
	s.Create(input(6, 2025))

	got := s.ListByPeriod(6, 2024)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, e := range got {
		if e.Month != 6 || e.Year != 2024 {
			t.Fatalf("record %d outside period: %d/%d", e.ID, e.Month, e.Year)
		}
	}
	if got := s.ListByPeriod(1, 2000); len(got) != 0 {
		t.Fatalf("empty period returned %d records", len(got))
	}
}

func TestSetSyncFlag(t *testing.T) {
	s := New()
	e := s.Create(input(6, 2024))

	updated, ok := s.SetSyncFlag(e.ID, true)
	if !ok || !updated.GoogleSheetsSync {
		t.Fatalf("SetSyncFlag = (%+v, %v)", updated, ok)
	}
	if stored, _ := s.Get(e.ID); !stored.GoogleSheetsSync {
		t.Fatal("flag not persisted")
	}

	if _, ok := s.SetSyncFlag(999, true); ok {
		t.Fatal("unknown id must signal absence")
	}
}

func TestListUnsynced(t *testing.T) {
	s := New()
	a := s.Create(input(6, 2024))
	b := s.Create(input(6, 2024))
	c := s.Create(input(6, 2024))
	s.SetSyncFlag(b.ID, true)

	got := s.ListUnsynced()
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != a.ID || got[1].ID != c.ID {
		t.Fatalf("unexpected unsynced order: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestGetUnknown(t *testing.T) {
	s := New()
	if _, ok := s.Get(1); ok {
		t.Fatal("Get on empty store must report absence")
	}
}
