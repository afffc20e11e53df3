package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/sheets/memory"
	"spendtrack/internal/store"
)

type recordingEvents struct {
	synced []int64
	err    error
}

func (r *recordingEvents) PublishExpenseSynced(_ context.Context, e core.Expense) error {
	if r.err != nil {
		return r.err
	}
	r.synced = append(r.synced, e.ID)
	return nil
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *store.MemoryStore, *memory.Store, *memory.Document) {
	t.Helper()
	remote := memory.New()
	doc := remote.Seed("sheet-1", "Budget")
	conns := NewConnectionManager(remote, newFakeSettings())
	conns.Connect(context.Background(), "sheet-1")
	st := store.New()
	return NewOrchestrator(st, conns, nil), st, remote, doc
}

func foodInput() core.ExpenseInput {
	return core.ExpenseInput{Amount: 250.5, Type: "food", Remarks: "lunch", Month: 6, Year: 2024}
}

func TestCreateSuccess(t *testing.T) {
	orch, st, _, doc := newTestOrchestrator(t)

	e, err := orch.Create(context.Background(), foodInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.ID != 1 || !e.GoogleSheetsSync {
		t.Fatalf("expense = %+v", e)
	}

	stored, ok := st.Get(e.ID)
	if !ok || !stored.GoogleSheetsSync {
		t.Fatalf("stored = (%+v, %v)", stored, ok)
	}

	titles := doc.SheetTitles()
	if len(titles) != 1 || titles[0] != "June 2024" {
		t.Fatalf("worksheets = %v", titles)
	}
	ws, _ := doc.SheetByTitle("June 2024")
	rows := ws.(*memory.Worksheet).Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	wantDate := e.Date.Format("2006-01-02")
	if rows[0][0] != wantDate || rows[0][1] != "250.5" || rows[0][2] != "Food" || rows[0][3] != "lunch" {
		t.Fatalf("row = %v", rows[0])
	}
}

func TestCreateValidationFailureHasNoSideEffects(t *testing.T) {
	orch, st, _, doc := newTestOrchestrator(t)

	in := foodInput()
	in.Amount = -1
	_, err := orch.Create(context.Background(), in)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if st.Len() != 0 {
		t.Fatal("validation failure must not create a record")
	}
	if len(doc.SheetTitles()) != 0 {
		t.Fatal("validation failure must not touch the spreadsheet")
	}
}

func TestCreateRefusedWhenDisconnected(t *testing.T) {
	orch, st, remote, _ := newTestOrchestrator(t)
	remote.OpenErr = errors.New("network down") // next Verify call disconnects

	_, err := orch.Create(context.Background(), foodInput())

	var nce *NotConnectedError
	if !errors.As(err, &nce) {
		t.Fatalf("error = %v, want NotConnectedError", err)
	}
	want := "Please connect to Google Sheets first for month 6/2024 expenses."
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
	if st.Len() != 0 {
		t.Fatal("no record may be created while disconnected")
	}
}

func TestCreateAppendFailureKeepsLocalRecord(t *testing.T) {
	orch, st, remote, _ := newTestOrchestrator(t)
	remote.AppendErr = errors.New("rate limited")

	_, err := orch.Create(context.Background(), foodInput())

	var serr *SyncError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want SyncError", err)
	}
	want := "Failed to add expense to Google Sheets for month 6/2024. Please try again."
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}

	// The no-rollback asymmetry: the caller got an error, the record stays.
	if st.Len() != 1 {
		t.Fatalf("store size = %d, want 1", st.Len())
	}
	stored, _ := st.Get(1)
	if stored.GoogleSheetsSync {
		t.Fatal("failed append must leave the record unsynced")
	}
}

func TestCreateWorksheetResolutionFailure(t *testing.T) {
	orch, st, remote, _ := newTestOrchestrator(t)
	remote.AddSheetErr = errors.New("permission denied")

	_, err := orch.Create(context.Background(), foodInput())

	var serr *SyncError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want SyncError", err)
	}
	if st.Len() != 1 {
		t.Fatalf("store size = %d, want 1", st.Len())
	}
}

func TestCreatePublishesSyncedEvent(t *testing.T) {
	remote := memory.New()
	remote.Seed("sheet-1", "Budget")
	conns := NewConnectionManager(remote, newFakeSettings())
	conns.Connect(context.Background(), "sheet-1")
	events := &recordingEvents{}
	orch := NewOrchestrator(store.New(), conns, events)

	e, err := orch.Create(context.Background(), foodInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(events.synced) != 1 || events.synced[0] != e.ID {
		t.Fatalf("published events = %v", events.synced)
	}
}

func TestCreateSucceedsWhenPublishFails(t *testing.T) {
	remote := memory.New()
	remote.Seed("sheet-1", "Budget")
	conns := NewConnectionManager(remote, newFakeSettings())
	conns.Connect(context.Background(), "sheet-1")
	orch := NewOrchestrator(store.New(), conns, &recordingEvents{err: errors.New("broker down")})

	if _, err := orch.Create(context.Background(), foodInput()); err != nil {
		t.Fatalf("publish failure must not fail the create: %v", err)
	}
}

func TestResyncPending(t *testing.T) {
	orch, st, remote, doc := newTestOrchestrator(t)

	// Two records stranded by a transient append failure.
	remote.AppendErr = errors.New("rate limited")
	orch.Create(context.Background(), foodInput())
	orch.Create(context.Background(), foodInput())
	remote.AppendErr = nil

	if n := orch.ResyncPending(context.Background(), 10); n != 2 {
		t.Fatalf("reconciled = %d, want 2", n)
	}
	if got := st.ListUnsynced(); len(got) != 0 {
		t.Fatalf("still unsynced: %v", got)
	}
	ws, _ := doc.SheetByTitle("June 2024")
	if rows := ws.(*memory.Worksheet).Rows(); len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}

func TestResyncPendingHonorsBatchLimit(t *testing.T) {
	orch, st, remote, _ := newTestOrchestrator(t)

	remote.AppendErr = errors.New("rate limited")
	for i := 0; i < 3; i++ {
		orch.Create(context.Background(), foodInput())
	}
	remote.AppendErr = nil

	if n := orch.ResyncPending(context.Background(), 2); n != 2 {
		t.Fatalf("reconciled = %d, want 2", n)
	}
	if got := st.ListUnsynced(); len(got) != 1 {
		t.Fatalf("unsynced after limited sweep = %d, want 1", len(got))
	}
}

func TestResyncPendingSkipsWhenDisconnected(t *testing.T) {
	orch, _, remote, _ := newTestOrchestrator(t)

	remote.AppendErr = errors.New("rate limited")
	orch.Create(context.Background(), foodInput())
	remote.AppendErr = nil

	remote.OpenErr = errors.New("network down")
	orch.conns.Verify(context.Background()) // drops the connection

	if n := orch.ResyncPending(context.Background(), 10); n != 0 {
		t.Fatalf("reconciled = %d while disconnected, want 0", n)
	}
}

func TestSweeperLifecycle(t *testing.T) {
	orch, st, remote, _ := newTestOrchestrator(t)

	remote.AppendErr = errors.New("rate limited")
	orch.Create(context.Background(), foodInput())
	remote.AppendErr = nil

	sweeper := NewSweeper(orch, SweeperConfig{PollInterval: 10 * time.Millisecond, BatchSize: 10})
	ctx := context.Background()
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sweeper.Start(ctx); err == nil {
		t.Fatal("second Start must fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(st.ListUnsynced()) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper never reconciled the stranded record")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := sweeper.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if sweeper.IsRunning() {
		t.Fatal("sweeper still marked running after Stop")
	}
	// Stopping again is a no-op.
	if err := sweeper.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestSweeperConcurrentStop(t *testing.T) {
	orch, _, _, _ := newTestOrchestrator(t)

	sweeper := NewSweeper(orch, SweeperConfig{PollInterval: time.Hour, BatchSize: 10})
	ctx := context.Background()
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var wg stdsync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sweeper.Stop(ctx); err != nil {
				t.Errorf("Stop: %v", err)
			}
		}()
	}
	wg.Wait()

	if sweeper.IsRunning() {
		t.Fatal("sweeper still marked running after concurrent Stops")
	}
}
