package sync

import "fmt"

// ValidationError rejects malformed input before any side effect.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// NotConnectedError means no working spreadsheet target exists; the expense
// was not persisted.
type NotConnectedError struct {
	Month, Year int
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("Please connect to Google Sheets first for month %d/%d expenses.", e.Month, e.Year)
}

// SyncError means the remote append or worksheet resolution failed after the
// expense was persisted locally. The local record survives unsynced.
type SyncError struct {
	Month, Year int
	Err         error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("Failed to add expense to Google Sheets for month %d/%d. Please try again.", e.Month, e.Year)
}

func (e *SyncError) Unwrap() error { return e.Err }
