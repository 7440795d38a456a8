package handler

import (
	"net/http"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboard & Treasury Handlers
// ============================================================

func dashboardHandler(svc *service.ViewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dashboard")
		defer span.End()

		dash, err := svc.Dashboard(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, dash)
	}
}

// financeHandler serves the treasury page. Each ledger side carries its own
// search term and visible count in the query string. A view that also sends
// the term its counter belongs to (incomePrevSearch, expensePrevSearch) gets
// that side reset to the first page whenever the term changed; without it the
// counter is taken as is.
func financeHandler(svc *service.ViewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /finance")
		defer span.End()

		q := r.URL.Query()
		fin, err := svc.Finance(ctx, service.FinanceQuery{
			IncomeSearch:      q.Get("incomeSearch"),
			IncomePrevSearch:  queryOptional(r, "incomePrevSearch"),
			IncomeVisible:     queryInt(r, "incomeVisible"),
			ExpenseSearch:     q.Get("expenseSearch"),
			ExpensePrevSearch: queryOptional(r, "expensePrevSearch"),
			ExpenseVisible:    queryInt(r, "expenseVisible"),
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, fin)
	}
}

func listTransactionsHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /transactions")
		defer span.End()

		txs, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, txs)
	}
}

func recordIncomeHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /transactions/income")
		defer span.End()

		var draft domain.IncomeDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeBodyError(w, err)
			return
		}
		txs, err := svc.RecordIncome(ctx, draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, txs)
	}
}

func recordExpenseHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /transactions/expense")
		defer span.End()

		var draft domain.ExpenseDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeBodyError(w, err)
			return
		}
		txs, err := svc.RecordExpense(ctx, draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, txs)
	}
}

func treasuryStatsHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /transactions/stats")
		defer span.End()

		stats, err := svc.Stats(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func monthlyStatsHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /transactions/monthly-stats")
		defer span.End()

		monthly, err := svc.MonthlyStats(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, monthly)
	}
}
