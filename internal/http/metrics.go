package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	expensesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spendtrack_expenses_created_total",
		Help: "Expenses created and synced to the spreadsheet.",
	})

	expenseCreateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spendtrack_expense_create_failures_total",
		Help: "Expense creation requests that were rejected or failed.",
	})
)
