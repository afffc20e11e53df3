package sheets_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/sheets"
	"spendtrack/internal/sheets/memory"
)

func TestWorksheetTitle(t *testing.T) {
	cases := []struct {
		month, year int
		want        string
	}{
		{1, 2024, "January 2024"},
		{6, 2024, "June 2024"},
		{12, 2100, "December 2100"},
	}
	for _, tc := range cases {
		if got := sheets.WorksheetTitle(tc.month, tc.year); got != tc.want {
			t.Errorf("WorksheetTitle(%d, %d) = %q, want %q", tc.month, tc.year, got, tc.want)
		}
	}
}

func TestResolveCreatesWithHeader(t *testing.T) {
	store := memory.New()
	doc := store.Seed("sheet-1", "Budget")

	opened, err := store.Open(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ws, err := sheets.Resolve(context.Background(), opened, 6, 2024)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ws.Title() != "June 2024" {
		t.Fatalf("title = %q", ws.Title())
	}
	if got := doc.SheetTitles(); len(got) != 1 || got[0] != "June 2024" {
		t.Fatalf("sheet titles = %v", got)
	}

	created, _ := opened.SheetByTitle("June 2024")
	header := created.(*memory.Worksheet).Header
	if !reflect.DeepEqual(header, []string{"Date", "Amount", "Type", "Remarks"}) {
		t.Fatalf("header = %v", header)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	store := memory.New()
	doc := store.Seed("sheet-1", "Budget")
	opened, _ := store.Open(context.Background(), "sheet-1")

	first, err := sheets.Resolve(context.Background(), opened, 6, 2024)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := sheets.Resolve(context.Background(), opened, 6, 2024)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if first.Title() != second.Title() {
		t.Fatalf("titles differ: %q vs %q", first.Title(), second.Title())
	}
	if got := doc.SheetTitles(); len(got) != 1 {
		t.Fatalf("second resolve created a duplicate: %v", got)
	}
}

func TestResolvePropagatesCreateFailure(t *testing.T) {
	store := memory.New()
	store.Seed("sheet-1", "Budget")
	store.AddSheetErr = errors.New("quota exceeded")
	opened, _ := store.Open(context.Background(), "sheet-1")

	if _, err := sheets.Resolve(context.Background(), opened, 6, 2024); err == nil {
		t.Fatal("expected error from failed creation")
	}
}

func TestExpenseRow(t *testing.T) {
	e := core.Expense{
		ID:      1,
		Amount:  250.5,
		Type:    "food",
		Remarks: "lunch",
		Date:    time.Date(2024, 6, 5, 15, 4, 5, 0, time.UTC),
		Month:   12, // period differs from the creation date on purpose
		Year:    2023,
	}
	got := sheets.ExpenseRow(e)
	want := []string{"2024-06-05", "250.5", "Food", "lunch"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpenseRow = %v, want %v", got, want)
	}
}

func TestExpenseRowEmptyRemarks(t *testing.T) {
	e := core.Expense{Amount: 9, Type: "Travel", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	got := sheets.ExpenseRow(e)
	if got[2] != "Travel" {
		t.Fatalf("already capitalized type mangled: %q", got[2])
	}
	if got[3] != "" {
		t.Fatalf("remarks column = %q, want empty", got[3])
	}
	if got[1] != "9" {
		t.Fatalf("whole amount = %q, want 9", got[1])
	}
}

func TestExpenseRowCapitalizesNonASCII(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"übrig", "Übrig"},
		{"étranger", "Étranger"},
		{"食費", "食費"},
		{"", ""},
	}
	for _, tc := range cases {
		e := core.Expense{Amount: 1, Type: tc.in, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
		if got := sheets.ExpenseRow(e)[2]; got != tc.want {
			t.Errorf("type %q formatted as %q, want %q", tc.in, got, tc.want)
		}
	}
}
