package core

import (
	"errors"
	"strings"
	"time"
)

const (
	MinYear = 2000
	MaxYear = 2100
)

type (
	// Expense is a locally persisted expense record. Month and Year are the
	// period the user filed the expense under; Date is the creation
	// timestamp and may fall outside that period.
	Expense struct {
		ID               int64     `json:"id"`
		Amount           float64   `json:"amount"`
		Type             string    `json:"type"`
		Remarks          string    `json:"remarks,omitempty"`
		Date             time.Time `json:"date"`
		Month            int       `json:"month"`
		Year             int       `json:"year"`
		GoogleSheetsSync bool      `json:"googleSheetsSync"`
	}

	// ExpenseInput is the user-supplied part of an expense. ID, Date and the
	// sync flag are assigned by the store.
	ExpenseInput struct {
		Amount  float64 `json:"amount"`
		Type    string  `json:"type"`
		Remarks string  `json:"remarks,omitempty"`
		Month   int     `json:"month"`
		Year    int     `json:"year"`
	}
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrEmptyType     = errors.New("expense type is required")
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
	ErrInvalidYear   = errors.New("year must be between 2000 and 2100")
)

func (in ExpenseInput) Validate() error {
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(in.Type) == "" {
		return ErrEmptyType
	}
	if in.Month < 1 || in.Month > 12 {
		return ErrInvalidMonth
	}
	if in.Year < MinYear || in.Year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// ValidPeriod reports whether (month, year) is an acceptable period bucket.
func ValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= MinYear && year <= MaxYear
}
