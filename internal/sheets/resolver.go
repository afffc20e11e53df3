package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"unicode"

	"spendtrack/internal/core"
)

// HeaderRow is the fixed header of every period worksheet.
var HeaderRow = []string{"Date", "Amount", "Type", "Remarks"}

// WorksheetTitle derives the worksheet name for a period bucket,
// e.g. "June 2024".
func WorksheetTitle(month, year int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

// Resolve finds the worksheet for (month, year) in doc, creating it with the
// standard header row when absent. Creation is find-or-create by title; two
// concurrent resolvers racing on a brand-new title are left to the remote
// service's own semantics.
func Resolve(ctx context.Context, doc Document, month, year int) (Worksheet, error) {
	title := WorksheetTitle(month, year)
	if ws, ok := doc.SheetByTitle(title); ok {
		return ws, nil
	}
	ws, err := doc.AddSheet(ctx, title, HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("create worksheet %q: %w", title, err)
	}
	return ws, nil
}

// ExpenseRow formats an expense for appending: the Date column carries the
// creation timestamp's calendar date, not the period fields the worksheet is
// named after.
func ExpenseRow(e core.Expense) []string {
	return []string{
		e.Date.Format("2006-01-02"),
		strconv.FormatFloat(e.Amount, 'f', -1, 64),
		capitalize(e.Type),
		e.Remarks,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
