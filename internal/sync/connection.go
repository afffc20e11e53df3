// Package sync owns the Google Sheets connection state and the workflow that
// mirrors locally persisted expenses into period worksheets.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"

	"spendtrack/internal/settings"
	"spendtrack/internal/sheets"
)

// SpreadsheetIDKey is the settings row holding the last successfully
// connected spreadsheet id.
const SpreadsheetIDKey = "google_sheets_spreadsheet_id"

// SettingsStore is the durable key/value collaborator behind the connection
// manager. *settings.Store satisfies it.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ConnectionState is the process-wide record of whether a spreadsheet target
// is currently configured and reachable. Only SpreadsheetID is ever
// persisted; Connected and ErrorMessage are recomputed after every attempt.
type ConnectionState struct {
	Connected     bool    `json:"connected"`
	SpreadsheetID *string `json:"spreadsheetId"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
}

// ConnectionManager mediates every remote access and serializes mutation of
// the connection state. It is constructed once at startup and injected into
// the handlers; there is no package-level singleton.
type ConnectionManager struct {
	opener   sheets.Opener
	settings SettingsStore

	mu    stdsync.Mutex
	state ConnectionState
}

func NewConnectionManager(opener sheets.Opener, store SettingsStore) *ConnectionManager {
	return &ConnectionManager{opener: opener, settings: store}
}

// State returns a snapshot of the current connection state.
func (m *ConnectionManager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect attempts to open the spreadsheet and, on success, persists its id
// for the next startup. Failures never propagate: they land in ErrorMessage.
func (m *ConnectionManager) Connect(ctx context.Context, spreadsheetID string) ConnectionState {
	doc, err := m.opener.Open(ctx, spreadsheetID)
	if err != nil {
		slog.ErrorContext(ctx, "Google Sheets connect failed", "spreadsheet_id", spreadsheetID, "error", err)
		return m.setDisconnected(err)
	}

	state := m.setConnected(spreadsheetID)

	// The connection stands even if persisting the id fails; the worst case
	// is re-entering the id after a restart.
	if err := m.settings.Set(ctx, SpreadsheetIDKey, spreadsheetID); err != nil {
		slog.WarnContext(ctx, "Failed to persist spreadsheet id", "error", err)
	}

	slog.InfoContext(ctx, "Connected to spreadsheet", "spreadsheet_id", spreadsheetID, "title", doc.Title())
	return state
}

// Verify re-opens the remote document when the manager believes it is
// connected. A verification failure is treated exactly like a disconnect:
// the configured id is dropped until the next Connect.
func (m *ConnectionManager) Verify(ctx context.Context) ConnectionState {
	m.mu.Lock()
	connected, id := m.state.Connected, m.state.SpreadsheetID
	m.mu.Unlock()

	if !connected || id == nil {
		return m.State()
	}

	if _, err := m.opener.Open(ctx, *id); err != nil {
		slog.ErrorContext(ctx, "Google Sheets connection verification failed", "spreadsheet_id", *id, "error", err)
		return m.setDisconnected(err)
	}
	return m.State()
}

// Restore runs once at startup: it re-establishes the connection from the
// persisted spreadsheet id, if any. Reports whether a connection came up.
func (m *ConnectionManager) Restore(ctx context.Context) bool {
	id, err := m.settings.Get(ctx, SpreadsheetIDKey)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			slog.WarnContext(ctx, "Failed to load persisted spreadsheet id", "error", err)
		}
		return false
	}

	if _, err := m.opener.Open(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to reconnect with saved spreadsheet id", "spreadsheet_id", id, "error", err)
		return false
	}

	// Already persisted, so no settings write here.
	m.setConnected(id)
	slog.InfoContext(ctx, "Reconnected with saved spreadsheet id", "spreadsheet_id", id)
	return true
}

// OpenCurrent opens the currently configured document for an append.
func (m *ConnectionManager) OpenCurrent(ctx context.Context) (sheets.Document, error) {
	m.mu.Lock()
	connected, id := m.state.Connected, m.state.SpreadsheetID
	m.mu.Unlock()

	if !connected || id == nil {
		return nil, errors.New("not connected to Google Sheets")
	}
	doc, err := m.opener.Open(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", *id, err)
	}
	return doc, nil
}

func (m *ConnectionManager) setConnected(spreadsheetID string) ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := spreadsheetID
	m.state = ConnectionState{Connected: true, SpreadsheetID: &id}
	return m.state
}

func (m *ConnectionManager) setDisconnected(cause error) ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := "Unknown error connecting to Google Sheets"
	if cause != nil {
		msg = cause.Error()
	}
	m.state = ConnectionState{Connected: false, SpreadsheetID: nil, ErrorMessage: msg}
	return m.state
}
