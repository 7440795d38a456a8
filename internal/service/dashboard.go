package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apedo/eglise-console/internal/domain"
	"github.com/apedo/eglise-console/internal/view"
)

var viewTracer = otel.Tracer("service/views")

// ViewService assembles the dashboard and finance pages from the synchronizers.
type ViewService struct {
	members      *MemberService
	events       *EventService
	transactions *TransactionService
	logger       *zap.Logger
	now          func() time.Time
}

// NewViewService creates a new view assembler.
func NewViewService(members *MemberService, events *EventService, transactions *TransactionService, logger *zap.Logger) *ViewService {
	return &ViewService{
		members:      members,
		events:       events,
		transactions: transactions,
		logger:       logger,
		now:          time.Now,
	}
}

// Dashboard fetches members, events and treasury figures concurrently. Any
// of the three failing fails the view; the monthly series is optional and
// comes back empty when its endpoint fails.
func (s *ViewService) Dashboard(ctx context.Context) (*domain.DashboardView, error) {
	ctx, span := viewTracer.Start(ctx, "ViewService.Dashboard")
	defer span.End()

	var (
		members []domain.Member
		events  []domain.Event
		stats   *domain.TreasuryStats
		monthly []domain.MonthlyStat
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.members.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.events.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.transactions.Stats(gctx)
		return err
	})
	g.Go(func() error {
		series, err := s.transactions.MonthlyStats(gctx)
		if err != nil {
			s.logger.Warn("monthly stats unavailable", zap.Error(err))
			return nil
		}
		monthly = series
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if monthly == nil {
		monthly = []domain.MonthlyStat{}
	}
	now := s.now()
	return &domain.DashboardView{
		Members:      view.Demographics(members, now),
		TotalEvents:  len(events),
		TotalIncome:  stats.TotalIncome,
		TotalExpense: stats.TotalExpense,
		TotalBalance: stats.TotalBalance,
		Monthly:      monthly,
		GeneratedAt:  now,
	}, nil
}

// FinanceQuery carries the per-side search terms and page counters.
// The Prev fields hold the term the counter was reached with; when set and
// different from the current term the side goes back to its first page.
type FinanceQuery struct {
	IncomeSearch      string
	IncomePrevSearch  *string
	IncomeVisible     int
	ExpenseSearch     string
	ExpensePrevSearch *string
	ExpenseVisible    int
}

// Finance fetches the ledger and stats concurrently and applies each side's
// filter and pagination.
func (s *ViewService) Finance(ctx context.Context, q FinanceQuery) (*domain.FinanceView, error) {
	ctx, span := viewTracer.Start(ctx, "ViewService.Finance")
	defer span.End()

	var (
		txs   []domain.Transaction
		stats *domain.TreasuryStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactions.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.transactions.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	incomes := restoreLedger(domain.TransactionIncome, q.IncomeSearch, q.IncomePrevSearch, q.IncomeVisible)
	expenses := restoreLedger(domain.TransactionExpense, q.ExpenseSearch, q.ExpensePrevSearch, q.ExpenseVisible)

	return &domain.FinanceView{
		Stats:          *stats,
		TotalAvailable: view.TotalBalance(*stats),
		Incomes:        incomes.Page(txs),
		Expenses:       expenses.Page(txs),
	}, nil
}

// restoreLedger rebuilds a ledger side as the view left it, then applies the
// current term so a changed search resets the page counter.
func restoreLedger(kind, search string, prev *string, visible int) *view.LedgerList {
	was := search
	if prev != nil {
		was = *prev
	}
	l := view.NewLedgerList(kind)
	l.SetSearch(was)
	l.SetVisible(visible)
	l.SetSearch(search)
	return l
}
