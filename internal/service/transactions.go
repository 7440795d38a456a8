package service

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/port"
)

var txTracer = otel.Tracer("service/transactions")

const transactionsPath = "/transactions"

// TransactionService synchronizes the treasury ledger. The ledger has no
// edit flow; balances are always read from the backend.
type TransactionService struct {
	api     port.API
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewTransactionService creates a new ledger synchronizer.
func NewTransactionService(api port.API, metrics *observability.Metrics, logger *zap.Logger) *TransactionService {
	return &TransactionService{api: api, metrics: metrics, logger: logger}
}

// List fetches the whole ledger.
func (s *TransactionService) List(ctx context.Context) ([]domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.List")
	defer span.End()

	var txs []domain.Transaction
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: transactionsPath}, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// RecordIncome posts a "recette" and returns the refreshed ledger.
func (s *TransactionService) RecordIncome(ctx context.Context, d domain.IncomeDraft) ([]domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.RecordIncome")
	defer span.End()

	if err := validate(s.metrics, "transactions", d); err != nil {
		return nil, err
	}
	return s.create(ctx, d.Transaction())
}

// RecordExpense posts a "dépense" and returns the refreshed ledger.
func (s *TransactionService) RecordExpense(ctx context.Context, d domain.ExpenseDraft) ([]domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.RecordExpense")
	defer span.End()

	if err := validate(s.metrics, "transactions", d); err != nil {
		return nil, err
	}
	return s.create(ctx, d.Transaction())
}

func (s *TransactionService) create(ctx context.Context, tx domain.Transaction) ([]domain.Transaction, error) {
	if err := s.api.Call(ctx, port.Call{Method: http.MethodPost, Path: transactionsPath, Body: tx}, nil); err != nil {
		return nil, err
	}
	s.logger.Info("transaction recorded",
		zap.String("type", tx.Type),
		zap.String("account", tx.Account),
		zap.Float64("amount", tx.Amount),
	)
	return s.List(ctx)
}

// Stats fetches the server-computed treasury figures.
func (s *TransactionService) Stats(ctx context.Context) (*domain.TreasuryStats, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Stats")
	defer span.End()

	var stats domain.TreasuryStats
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: transactionsPath + "/stats"}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// MonthlyStats fetches the income/expense series for the dashboard chart.
func (s *TransactionService) MonthlyStats(ctx context.Context) ([]domain.MonthlyStat, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.MonthlyStats")
	defer span.End()

	var series []domain.MonthlyStat
	if err := s.api.Call(ctx, port.Call{Method: http.MethodGet, Path: transactionsPath + "/monthly-stats"}, &series); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("series.len", len(series)))
	return series, nil
}
