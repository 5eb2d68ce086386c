package report

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_pos/internal/backend"
	"github.com/fjod/go_pos/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	orderPageSize    = 500
	financePageSize  = 500
	itemFetchWorkers = 8
)

// Service loads report data from the backend.
type Service struct {
	sales    backend.SalesProvider
	finance  backend.FinanceAPI
	branchID string
	loc      *time.Location
	log      *zap.Logger

	now func() time.Time
}

func NewService(sales backend.SalesProvider, finance backend.FinanceAPI, branchID string, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{sales: sales, finance: finance, branchID: branchID, loc: loc, log: log, now: time.Now}
}

func (s *Service) Location() *time.Location { return s.loc }

type Query struct {
	// Finance defaults to today.
	Finance  Range
	TopMenus TopMenuFilter
	Custom   Range
}

func (s *Service) Dashboard(ctx context.Context, q Query) (Dashboard, error) {
	now := s.now().In(s.loc)
	if q.Finance.Start.IsZero() {
		q.Finance, _ = PeriodRange(PeriodDay, now)
	}
	in := Input{Now: now, Finance: q.Finance, TopMenus: q.TopMenus, Custom: q.Custom}

	// Enough history for yesterday and the best sellers filter.
	from, _ := PeriodRange(PeriodDay, now.AddDate(0, 0, -1))
	window := Range{Start: from.Start, End: now}
	if tr := topMenuRange(in); tr.Start.Before(window.Start) {
		window.Start = tr.Start
	}
	if q.TopMenus == TopMenusCustom && q.Custom.End.After(window.End) {
		window.End = q.Custom.End
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := s.Orders(gctx, window)
		in.Orders = orders
		return err
	})
	g.Go(func() error {
		expenses, err := s.finance.GetExpenses(gctx, financePageSize)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		in.Expenses = expenses
		return nil
	})
	g.Go(func() error {
		income, err := s.finance.GetIncome(gctx, financePageSize)
		if err != nil {
			return fmt.Errorf("load income: %w", err)
		}
		in.Income = income
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	in.Items = s.orderItems(ctx, paidWithin(in.Orders, topMenuRange(in)))
	return BuildDashboard(in), nil
}

// Orders lists the orders created within r.
func (s *Service) Orders(ctx context.Context, r Range) ([]domain.Order, error) {
	var all []domain.Order
	for offset := 0; ; offset += orderPageSize {
		page, err := s.sales.GetOrdersPage(ctx, backend.PageQuery{
			Limit:  orderPageSize,
			Offset: offset,
			From:   r.Start,
			To:     r.End,
		})
		if err != nil {
			return nil, fmt.Errorf("load orders: %w", err)
		}
		all = append(all, page...)
		if len(page) < orderPageSize {
			return all, nil
		}
	}
}

// MenuSales ranks every menu item sold within r.
func (s *Service) MenuSales(ctx context.Context, r Range) ([]MenuStat, error) {
	orders, err := s.Orders(ctx, r)
	if err != nil {
		return nil, err
	}
	paid := paidWithin(orders, r)
	return TopMenus(paid, s.orderItems(ctx, paid), 0), nil
}

// orderItems fetches the items of each order. An order whose items cannot
// be loaded is left out of the best sellers.
func (s *Service) orderItems(ctx context.Context, orders []domain.Order) []domain.OrderItem {
	perOrder := make([][]domain.OrderItem, len(orders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(itemFetchWorkers)
	for i, o := range orders {
		i, o := i, o
		g.Go(func() error {
			items, err := s.sales.GetOrderItems(gctx, o.ID)
			if err != nil {
				s.log.Warn("order items unavailable", zap.String("order_id", o.ID), zap.Error(err))
				return nil
			}
			perOrder[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.OrderItem
	for _, items := range perOrder {
		out = append(out, items...)
	}
	return out
}

func (s *Service) RecordExpense(ctx context.Context, in EntryInput) (*domain.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := in.expense(s.branchID)
	e.CreatedAt = s.now()
	created, err := s.finance.CreateExpense(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return created, nil
}

func (s *Service) RecordIncome(ctx context.Context, in EntryInput) (*domain.Income, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	i := in.income(s.branchID)
	i.CreatedAt = s.now()
	created, err := s.finance.CreateIncome(ctx, i)
	if err != nil {
		return nil, fmt.Errorf("create income: %w", err)
	}
	return created, nil
}
