package report

import (
	"testing"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func order(id, method, grand string, created time.Time) domain.Order {
	return domain.Order{
		ID:              id,
		OrderNo:         "ORD-" + id,
		Status:          domain.OrderStatusPaid,
		PaymentMethodID: method,
		Subtotal:        dec(grand),
		GrandTotal:      dec(grand),
		CreatedAt:       created,
	}
}

func item(orderID, menuID, name string, qty int, total string) domain.OrderItem {
	return domain.OrderItem{OrderID: orderID, MenuItemID: menuID, Name: name, Quantity: qty, LineTotal: dec(total)}
}

func TestBuildDashboard(t *testing.T) {
	now := at(2025, time.March, 10, 18, 0)
	today := Range{Start: at(2025, time.March, 10, 0, 0), End: at(2025, time.March, 10, 23, 59)}

	voided := order("x", "pm_cash", "999", now)
	voided.Status = "void"

	in := Input{
		Now: now,
		Orders: []domain.Order{
			order("a", "pm_cash", "100", at(2025, time.March, 10, 9, 0)),
			order("b", "pm_qr", "50", at(2025, time.March, 10, 12, 0)),
			order("c", "pm_cash", "30", at(2025, time.March, 10, 13, 0)),
			order("d", "", "20", at(2025, time.March, 10, 14, 0)),
			order("y", "pm_cash", "80", at(2025, time.March, 9, 20, 0)),
			voided,
		},
		Items: []domain.OrderItem{
			item("a", "m1", "ชาไทย", 2, "90"),
			item("b", "m2", "กาแฟ", 1, "50"),
			item("c", "m1", "ชาไทย", 1, "30"),
			item("y", "m3", "ข้าวผัด", 9, "450"),
			item("x", "m3", "ข้าวผัด", 50, "999"),
		},
		Expenses: []domain.Expense{
			{Description: "ice", Amount: dec("40"), CreatedAt: at(2025, time.March, 10, 8, 0)},
			{Description: "old", Amount: dec("500"), CreatedAt: at(2025, time.March, 1, 8, 0)},
		},
		Income: []domain.Income{
			{Description: "tips", Amount: dec("10"), CreatedAt: at(2025, time.March, 10, 8, 0)},
		},
		Finance:  today,
		TopMenus: TopMenusToday,
	}

	d := BuildDashboard(in)

	assertDec(t, "200", d.TodaySales)
	assert.Equal(t, 4, d.TodayOrders)
	assertDec(t, "50", d.AvgOrderValue)
	assertDec(t, "80", d.YesterdaySales)
	assert.Equal(t, 1, d.YesterdayOrders)
	assertDec(t, "80", d.YesterdayAvgOrderValue)

	assertDec(t, "40", d.TotalExpenses)
	assertDec(t, "10", d.TotalIncome)
	assertDec(t, "170", d.NetProfit)
	assertDec(t, "85", d.ProfitMargin)
	assert.Len(t, d.Expenses, 1)

	require.Len(t, d.PaymentMethods, 3)
	assert.Equal(t, "pm_cash", d.PaymentMethods[0].Method)
	assert.Equal(t, "เงินสด", d.PaymentMethods[0].Name)
	assert.Equal(t, 2, d.PaymentMethods[0].Count)
	assertDec(t, "130", d.PaymentMethods[0].Amount)
	assert.Equal(t, "พร้อมเพย์", MethodName("promptpay"))
	assert.Equal(t, domain.UnknownMethodName, d.PaymentMethods[2].Method)
	assert.Equal(t, domain.UnknownMethodName, d.PaymentMethods[2].Name)

	require.Len(t, d.TopMenus, 2)
	assert.Equal(t, "m1", d.TopMenus[0].MenuItemID)
	assert.Equal(t, 3, d.TopMenus[0].Quantity)
	assertDec(t, "120", d.TopMenus[0].Revenue)
	assert.Equal(t, "m2", d.TopMenus[1].MenuItemID)
}

func TestBuildDashboard_NoSales(t *testing.T) {
	now := at(2025, time.March, 10, 18, 0)
	d := BuildDashboard(Input{
		Now:      now,
		Expenses: []domain.Expense{{Amount: dec("40"), CreatedAt: now}},
		Finance:  DayRange(now, now),
	})

	assert.True(t, d.AvgOrderValue.IsZero())
	assert.True(t, d.ProfitMargin.IsZero())
	assertDec(t, "-40", d.NetProfit)
	assert.Empty(t, d.TopMenus)
	assert.NotNil(t, d.PaymentMethods)
	assert.NotNil(t, d.Income)
}

func TestBuildDashboard_TopMenuFilters(t *testing.T) {
	now := at(2025, time.March, 10, 18, 0)
	orders := []domain.Order{
		order("today", "pm_cash", "10", at(2025, time.March, 10, 9, 0)),
		order("week", "pm_cash", "10", at(2025, time.March, 5, 9, 0)),
		order("month", "pm_cash", "10", at(2025, time.March, 1, 9, 0)),
		order("old", "pm_cash", "10", at(2025, time.February, 1, 9, 0)),
	}
	items := []domain.OrderItem{
		item("today", "t", "t", 1, "10"),
		item("week", "w", "w", 2, "10"),
		item("month", "m", "m", 3, "10"),
		item("old", "o", "o", 4, "10"),
	}

	ids := func(f TopMenuFilter, custom Range) []string {
		d := BuildDashboard(Input{Now: now, Orders: orders, Items: items, TopMenus: f, Custom: custom})
		var out []string
		for _, s := range d.TopMenus {
			out = append(out, s.MenuItemID)
		}
		return out
	}

	assert.Equal(t, []string{"t"}, ids(TopMenusToday, Range{}))
	assert.Equal(t, []string{"w", "t"}, ids(TopMenusThisWeek, Range{}))
	assert.Equal(t, []string{"m", "w", "t"}, ids(TopMenusThisMonth, Range{}))
	assert.Equal(t, []string{"o"}, ids(TopMenusCustom, DayRange(at(2025, time.February, 1, 0, 0), at(2025, time.February, 2, 0, 0))))
}

func TestTopMenus_LimitAndTieBreak(t *testing.T) {
	orders := []domain.Order{{ID: "o"}}
	var items []domain.OrderItem
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		items = append(items, item("o", id, id, 1, decimal.NewFromInt(int64(i)).String()))
	}
	items = append(items, domain.OrderItem{OrderID: "o", MenuItemID: "g", Quantity: 5})

	top := TopMenus(orders, items, 5)
	require.Len(t, top, 5)
	assert.Equal(t, "g", top[0].MenuItemID)
	assert.Equal(t, domain.UnknownMethodName, top[0].Name)
	assert.Equal(t, "f", top[1].MenuItemID)
	assert.Equal(t, "c", top[4].MenuItemID)
}

func TestSummarize(t *testing.T) {
	r, _ := PeriodRange(PeriodMonth, at(2025, time.March, 10, 0, 0))
	s := Summarize([]domain.Order{
		order("a", "pm_cash", "10.50", at(2025, time.March, 1, 0, 0)),
		order("b", "pm_cash", "20", at(2025, time.March, 31, 23, 59)),
		order("c", "pm_cash", "99", at(2025, time.April, 1, 0, 0)),
	}, r)
	assert.Equal(t, 2, s.Count)
	assertDec(t, "30.5", s.Total)
}
