package sync

import (
	"context"
	"log/slog"

	"spendtrack/internal/core"
	"spendtrack/internal/sheets"
	"spendtrack/internal/store"
)

// EventPublisher receives a notification after an expense has been confirmed
// in the spreadsheet. Optional; a nil publisher disables notifications.
type EventPublisher interface {
	PublishExpenseSynced(ctx context.Context, e core.Expense) error
}

// Orchestrator runs the create-expense workflow: validate, gate on the
// remote connection, persist locally, append to the period worksheet, and
// reconcile the sync flag.
type Orchestrator struct {
	store  *store.MemoryStore
	conns  *ConnectionManager
	events EventPublisher
}

func NewOrchestrator(st *store.MemoryStore, conns *ConnectionManager, events EventPublisher) *Orchestrator {
	return &Orchestrator{store: st, conns: conns, events: events}
}

// Create runs the full workflow. Error taxonomy:
//   - *ValidationError: bad input, nothing persisted;
//   - *NotConnectedError: no remote target, nothing persisted — an expense
//     that cannot be mirrored is refused outright;
//   - *SyncError: the record IS persisted locally but the remote append
//     failed. The caller only sees the error; the sweeper retries the record
//     later.
func (o *Orchestrator) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, &ValidationError{Err: err}
	}

	if state := o.conns.Verify(ctx); !state.Connected {
		return core.Expense{}, &NotConnectedError{Month: in.Month, Year: in.Year}
	}

	e := o.store.Create(in)

	if err := o.appendToSheet(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Expense sync failed after local persist",
			"id", e.ID, "month", e.Month, "year", e.Year, "error", err)
		return core.Expense{}, &SyncError{Month: e.Month, Year: e.Year, Err: err}
	}

	synced, _ := o.store.SetSyncFlag(e.ID, true)

	if o.events != nil {
		if err := o.events.PublishExpenseSynced(ctx, synced); err != nil {
			slog.WarnContext(ctx, "Failed to publish expense synced event", "id", synced.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Expense created and synced",
		"id", synced.ID, "amount", synced.Amount, "month", synced.Month, "year", synced.Year)
	return synced, nil
}

// appendToSheet mirrors one expense into its period worksheet. The worksheet
// is addressed by the user-supplied (month, year); the row's Date column
// carries the creation timestamp regardless.
func (o *Orchestrator) appendToSheet(ctx context.Context, e core.Expense) error {
	doc, err := o.conns.OpenCurrent(ctx)
	if err != nil {
		return err
	}
	ws, err := sheets.Resolve(ctx, doc, e.Month, e.Year)
	if err != nil {
		return err
	}
	return ws.AppendRow(ctx, sheets.ExpenseRow(e))
}

// ResyncPending retries the spreadsheet append for up to limit unsynced
// records, flipping their sync flag on success. Returns how many were
// reconciled.
func (o *Orchestrator) ResyncPending(ctx context.Context, limit int) int {
	if state := o.conns.State(); !state.Connected {
		return 0
	}

	pending := o.store.ListUnsynced()
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	reconciled := 0
	for _, e := range pending {
		if ctx.Err() != nil {
			return reconciled
		}
		if err := o.appendToSheet(ctx, e); err != nil {
			slog.WarnContext(ctx, "Retry sync failed", "id", e.ID, "error", err)
			continue
		}
		synced, ok := o.store.SetSyncFlag(e.ID, true)
		if !ok {
			continue
		}
		reconciled++
		if o.events != nil {
			if err := o.events.PublishExpenseSynced(ctx, synced); err != nil {
				slog.WarnContext(ctx, "Failed to publish expense synced event", "id", synced.ID, "error", err)
			}
		}
	}
	return reconciled
}
