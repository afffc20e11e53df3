package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendtrack/internal/core"
	applog "spendtrack/internal/log"
	appsync "spendtrack/internal/sync"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses := s.store.List()
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleFilterExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := parsePeriodParam(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	year, err := parsePeriodParam(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, core.ErrInvalidMonth.Error())
		return
	}
	if year < core.MinYear || year > core.MaxYear {
		writeError(w, http.StatusBadRequest, core.ErrInvalidYear.Error())
		return
	}

	expenses := s.store.ListByPeriod(month, year)
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func parsePeriodParam(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, errors.New(name + " is required")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return n, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())

	var in core.ExpenseInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense, err := s.orchestrator.Create(r.Context(), in)
	if err != nil {
		var validationErr *appsync.ValidationError
		var notConnectedErr *appsync.NotConnectedError
		var syncErr *appsync.SyncError

		switch {
		case errors.As(err, &validationErr),
			errors.As(err, &notConnectedErr),
			errors.As(err, &syncErr):
			expenseCreateFailures.Inc()
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			fields := applog.NewFields().
				WithOperation(applog.OpCreate).
				WithError(err)
			fields[applog.FieldMonth] = in.Month
			fields[applog.FieldYear] = in.Year
			logger.ErrorContext(r.Context(), "Expense creation failed", fields.ToSlice()...)
			expenseCreateFailures.Inc()
			writeError(w, http.StatusInternalServerError, "Failed to create expense")
		}
		return
	}

	expensesCreated.Inc()
	fields := applog.NewFields().
		WithOperation(applog.OpCreate).
		WithExpense(expense.ID, expense.Amount, expense.Type, expense.Month, expense.Year)
	logger.InfoContext(r.Context(), "Expense created", fields.ToSlice()...)
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleSheetsStatus(w http.ResponseWriter, r *http.Request) {
	state := s.connections.Verify(r.Context())
	writeJSON(w, http.StatusOK, state)
}

type connectRequest struct {
	SpreadsheetID string `json:"spreadsheetId"`
}

func (s *Server) handleSheetsConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SpreadsheetID) == "" {
		writeError(w, http.StatusBadRequest, "spreadsheetId is required")
		return
	}

	// Connection failures are reported in the state body, not the status code.
	state := s.connections.Connect(r.Context(), req.SpreadsheetID)

	fields := applog.NewFields().WithOperation(applog.OpConnect)
	fields[applog.FieldSuccess] = state.Connected
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Google Sheets connect attempted", fields.ToSlice()...)

	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{
		"store": map[string]any{
			"expenses": s.store.Len(),
			"status":   "ok",
		},
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.ActiveClients(),
			"status":         "ok",
		},
		"google_sheets": map[string]any{
			"connected": s.connections.State().Connected,
		},
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	return dec.Decode(v)
}
