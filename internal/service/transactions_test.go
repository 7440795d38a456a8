package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/infra/observability"
	"github.com/apedo/eglise-console/internal/service"
)

func TestTransactions_NonPositiveAmountRejectedLocally(t *testing.T) {
	for _, amount := range []float64{0, -250} {
		api := newMockAPI()
		m := observability.NewMetrics()
		svc := service.NewTransactionService(api, m, zap.NewNop())

		_, err := svc.RecordIncome(context.Background(), domain.IncomeDraft{
			Date: "2024-05-01", Category: "Dîme", Amount: amount, Account: "Caisse",
		})

		var ve *domain.ErrValidation
		if !errors.As(err, &ve) {
			t.Fatalf("amount %v: expected ErrValidation, got %v", amount, err)
		}
		if len(api.seen()) != 0 {
			t.Errorf("amount %v: nothing may be sent", amount)
		}
	}
}

func TestTransactions_RecordExpense(t *testing.T) {
	api := newMockAPI().
		on(http.MethodPost, "/transactions", nil, nil).
		on(http.MethodGet, "/transactions", []domain.Transaction{{ID: 1, Type: domain.TransactionExpense, Amount: 300}}, nil)
	svc := service.NewTransactionService(api, observability.NewMetrics(), zap.NewNop())

	txs, err := svc.RecordExpense(context.Background(), domain.ExpenseDraft{
		Date: "2024-05-01", Category: "Loyer", Amount: 300, Account: "Banque", Description: "Loyer mai",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("expected refetched ledger, got %+v", txs)
	}

	sent := api.seen()[0].Body.(domain.Transaction)
	if sent.Type != domain.TransactionExpense || sent.Account != domain.AccountBanque {
		t.Errorf("unexpected wire transaction %+v", sent)
	}
}

func TestTransactions_Stats(t *testing.T) {
	api := newMockAPI().on(http.MethodGet, "/transactions/stats", map[string]any{
		"totalIncome":          90000,
		"totalExpense":         20000,
		"soldeCaisseAnterieur": 0,
		"soldeBanqueAnterieur": 0,
		"currentCaisseBalance": 50000,
		"currentBanqueBalance": 20000,
		"totalBalance":         70000,
	}, nil)
	svc := service.NewTransactionService(api, observability.NewMetrics(), zap.NewNop())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.CurrentCaisseBalance != 50000 || stats.CurrentBanqueBalance != 20000 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
