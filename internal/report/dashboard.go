package report

import (
	"sort"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
)

// TopMenuFilter selects which orders feed the best sellers list.
type TopMenuFilter string

const (
	TopMenusToday     TopMenuFilter = "today"
	TopMenusThisWeek  TopMenuFilter = "thisWeek"
	TopMenusThisMonth TopMenuFilter = "thisMonth"
	TopMenusCustom    TopMenuFilter = "custom"
)

const topMenuLimit = 5

var hundred = decimal.NewFromInt(100)

type Input struct {
	Now      time.Time
	Orders   []domain.Order
	Items    []domain.OrderItem
	Expenses []domain.Expense
	Income   []domain.Income
	// Finance limits the expenses and income that count toward profit.
	Finance Range

	TopMenus TopMenuFilter
	// Custom is used when TopMenus is TopMenusCustom.
	Custom Range
}

type MethodStat struct {
	Method string          `json:"method"`
	Name   string          `json:"name"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type MenuStat struct {
	MenuItemID string          `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"qty"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type Dashboard struct {
	TodaySales             decimal.Decimal  `json:"today_sales"`
	YesterdaySales         decimal.Decimal  `json:"yesterday_sales"`
	TodayOrders            int              `json:"today_orders"`
	YesterdayOrders        int              `json:"yesterday_orders"`
	AvgOrderValue          decimal.Decimal  `json:"avg_order_value"`
	YesterdayAvgOrderValue decimal.Decimal  `json:"yesterday_avg_order_value"`
	TotalExpenses          decimal.Decimal  `json:"total_expenses"`
	TotalIncome            decimal.Decimal  `json:"total_income"`
	NetProfit              decimal.Decimal  `json:"net_profit"`
	ProfitMargin           decimal.Decimal  `json:"profit_margin"`
	PaymentMethods         []MethodStat     `json:"payment_methods"`
	TopMenus               []MenuStat       `json:"top_menus"`
	Expenses               []domain.Expense `json:"expenses"`
	Income                 []domain.Income  `json:"income"`
}

// BuildDashboard computes the dashboard figures. Only paid orders count as
// sales. Profit is today's sales minus expenses plus other income in the
// finance range.
func BuildDashboard(in Input) Dashboard {
	today, _ := PeriodRange(PeriodDay, in.Now)
	yesterday, _ := PeriodRange(PeriodDay, in.Now.AddDate(0, 0, -1))

	todayOrders := paidWithin(in.Orders, today)
	yesterdayOrders := paidWithin(in.Orders, yesterday)

	d := Dashboard{
		TodayOrders:     len(todayOrders),
		YesterdayOrders: len(yesterdayOrders),
		TodaySales:      sumGrand(todayOrders),
		YesterdaySales:  sumGrand(yesterdayOrders),
		Expenses:        []domain.Expense{},
		Income:          []domain.Income{},
	}
	d.AvgOrderValue = average(d.TodaySales, d.TodayOrders)
	d.YesterdayAvgOrderValue = average(d.YesterdaySales, d.YesterdayOrders)

	for _, e := range in.Expenses {
		if in.Finance.Contains(e.CreatedAt) {
			d.Expenses = append(d.Expenses, e)
			d.TotalExpenses = d.TotalExpenses.Add(e.Amount)
		}
	}
	for _, i := range in.Income {
		if in.Finance.Contains(i.CreatedAt) {
			d.Income = append(d.Income, i)
			d.TotalIncome = d.TotalIncome.Add(i.Amount)
		}
	}
	d.NetProfit = d.TodaySales.Sub(d.TotalExpenses).Add(d.TotalIncome)
	if d.TodaySales.IsPositive() {
		d.ProfitMargin = d.NetProfit.Div(d.TodaySales).Mul(hundred).Round(2)
	}

	d.PaymentMethods = methodBreakdown(todayOrders)
	d.TopMenus = TopMenus(paidWithin(in.Orders, topMenuRange(in)), in.Items, topMenuLimit)
	return d
}

func topMenuRange(in Input) Range {
	switch in.TopMenus {
	case TopMenusThisWeek:
		return Range{Start: in.Now.AddDate(0, 0, -7), End: in.Now}
	case TopMenusThisMonth:
		month, _ := PeriodRange(PeriodMonth, in.Now)
		return Range{Start: month.Start, End: in.Now}
	case TopMenusCustom:
		return in.Custom
	default:
		r, _ := PeriodRange(PeriodDay, in.Now)
		return r
	}
}

// Summary is the sales total of a period.
type Summary struct {
	Range Range           `json:"range"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func Summarize(orders []domain.Order, r Range) Summary {
	paid := paidWithin(orders, r)
	return Summary{Range: r, Total: sumGrand(paid), Count: len(paid)}
}

// TopMenus ranks menu items sold in the given orders by quantity, then
// revenue, and keeps the first limit.
func TopMenus(orders []domain.Order, items []domain.OrderItem, limit int) []MenuStat {
	ids := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		ids[o.ID] = struct{}{}
	}

	stats := map[string]*MenuStat{}
	var order []string
	for _, it := range items {
		if _, ok := ids[it.OrderID]; !ok {
			continue
		}
		s, ok := stats[it.MenuItemID]
		if !ok {
			name := it.Name
			if name == "" {
				name = domain.UnknownMethodName
			}
			s = &MenuStat{MenuItemID: it.MenuItemID, Name: name}
			stats[it.MenuItemID] = s
			order = append(order, it.MenuItemID)
		}
		s.Quantity += it.Quantity
		s.Revenue = s.Revenue.Add(it.LineTotal)
	}

	out := make([]MenuStat, 0, len(order))
	for _, id := range order {
		out = append(out, *stats[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var methodNames = map[string]string{
	"pm_cash":   "เงินสด",
	"pm_credit": "บัตรเครดิต",
	"pm_debit":  "บัตรเดบิต",
	"pm_qr":     "QR Payment",
	"cash":      "เงินสด",
	"transfer":  "โอนเงิน",
	"promptpay": "พร้อมเพย์",
}

// MethodName is the display name of a payment method id.
func MethodName(id string) string {
	if n, ok := methodNames[id]; ok {
		return n
	}
	if id == "" {
		return domain.UnknownMethodName
	}
	return id
}

func methodBreakdown(orders []domain.Order) []MethodStat {
	byMethod := map[string]*MethodStat{}
	var keys []string
	for _, o := range orders {
		key := o.PaymentMethodID
		if key == "" {
			key = domain.UnknownMethodName
		}
		s, ok := byMethod[key]
		if !ok {
			s = &MethodStat{Method: key, Name: MethodName(o.PaymentMethodID)}
			byMethod[key] = s
			keys = append(keys, key)
		}
		s.Count++
		s.Amount = s.Amount.Add(o.GrandTotal)
	}
	out := make([]MethodStat, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byMethod[k])
	}
	return out
}

func paidWithin(orders []domain.Order, r Range) []domain.Order {
	var out []domain.Order
	for _, o := range orders {
		if o.Status == domain.OrderStatusPaid && r.Contains(o.CreatedAt.In(r.Start.Location())) {
			out = append(out, o)
		}
	}
	return out
}

func sumGrand(orders []domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.GrandTotal)
	}
	return total
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}
