package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/report"
	"github.com/fjod/go_pos/pkg/logger"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Reports is the part of report.Service the handlers use.
type Reports interface {
	Dashboard(ctx context.Context, q report.Query) (report.Dashboard, error)
	Orders(ctx context.Context, r report.Range) ([]domain.Order, error)
	MenuSales(ctx context.Context, r report.Range) ([]report.MenuStat, error)
	RecordExpense(ctx context.Context, in report.EntryInput) (*domain.Expense, error)
	RecordIncome(ctx context.Context, in report.EntryInput) (*domain.Income, error)
	Location() *time.Location
}

type ReportHandler struct {
	reports Reports
	timeout time.Duration
	now     func() time.Time
}

func NewReportHandler(reports Reports, timeout time.Duration) *ReportHandler {
	return &ReportHandler{reports: reports, timeout: timeout, now: time.Now}
}

// GET /api/v1/reports/dashboard?top_menus=&from=&to=&finance_from=&finance_to=
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	loc := h.reports.Location()
	query := report.Query{TopMenus: report.TopMenusToday}
	if f := q.Get("top_menus"); f != "" {
		query.TopMenus = report.TopMenuFilter(f)
	}
	switch query.TopMenus {
	case report.TopMenusToday, report.TopMenusThisWeek, report.TopMenusThisMonth:
	case report.TopMenusCustom:
		custom, err := dateRange(q.Get("from"), q.Get("to"), loc)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_range", err.Error())
			return
		}
		query.Custom = custom
	default:
		respondError(w, http.StatusBadRequest, "invalid_filter", fmt.Sprintf("unknown top_menus filter %q", query.TopMenus))
		return
	}
	if q.Get("finance_from") != "" || q.Get("finance_to") != "" {
		finance, err := dateRange(q.Get("finance_from"), q.Get("finance_to"), loc)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_range", err.Error())
			return
		}
		query.Finance = finance
	}

	dash, err := h.reports.Dashboard(ctx, query)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dash)
}

// GET /api/v1/reports/sales.csv?period=&date= or ?from=&to=
func (h *ReportHandler) ExportSales(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "sales", func(ctx context.Context, out io.Writer, rng report.Range) error {
		orders, err := h.reports.Orders(ctx, rng)
		if err != nil {
			return err
		}
		return report.SalesCSV(out, orders, h.reports.Location())
	})
}

// GET /api/v1/reports/menu-sales.csv?period=&date= or ?from=&to=
func (h *ReportHandler) ExportMenuSales(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "menu-sales", func(ctx context.Context, out io.Writer, rng report.Range) error {
		stats, err := h.reports.MenuSales(ctx, rng)
		if err != nil {
			return err
		}
		return report.MenuSalesCSV(out, stats)
	})
}

// POST /api/v1/finance/expenses
func (h *ReportHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req report.EntryInput
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.reports.RecordExpense(ctx, req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// POST /api/v1/finance/income
func (h *ReportHandler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req report.EntryInput
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.reports.RecordIncome(ctx, req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// export streams the CSV. Errors before the first byte still get a JSON
// body.
func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request, name string, write func(context.Context, io.Writer, report.Range) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	rng, err := h.exportRange(r)
	if err != nil {
		handleError(w, err)
		return
	}

	rec := &deferredWriter{w: w, name: fmt.Sprintf("%s-%s.csv", name, rng.Start.Format(dateLayout))}
	if err := write(ctx, rec, rng); err != nil {
		if !rec.started {
			handleError(w, err)
			return
		}
		logger.With(r.Context(), zap.L()).Warn("csv export interrupted", zap.String("export", name), zap.Error(err))
	}
}

func (h *ReportHandler) exportRange(r *http.Request) (report.Range, error) {
	q := r.URL.Query()
	loc := h.reports.Location()
	if q.Get("from") != "" || q.Get("to") != "" {
		return dateRange(q.Get("from"), q.Get("to"), loc)
	}

	ref := h.now().In(loc)
	if d := q.Get("date"); d != "" {
		t, err := time.ParseInLocation(dateLayout, d, loc)
		if err != nil {
			return report.Range{}, fmt.Errorf("%w: date must be YYYY-MM-DD", errBadQuery)
		}
		ref = t
	}
	period := report.PeriodDay
	if p := q.Get("period"); p != "" {
		period = report.Period(p)
	}
	return report.PeriodRange(period, ref)
}

// dateRange parses two YYYY-MM-DD dates into whole days. A missing end
// means the start day alone.
func dateRange(from, to string, loc *time.Location) (report.Range, error) {
	if from == "" {
		return report.Range{}, fmt.Errorf("%w: from is required", errBadQuery)
	}
	start, err := time.ParseInLocation(dateLayout, from, loc)
	if err != nil {
		return report.Range{}, fmt.Errorf("%w: from must be YYYY-MM-DD", errBadQuery)
	}
	end := start
	if to != "" {
		if end, err = time.ParseInLocation(dateLayout, to, loc); err != nil {
			return report.Range{}, fmt.Errorf("%w: to must be YYYY-MM-DD", errBadQuery)
		}
	}
	if end.Before(start) {
		return report.Range{}, fmt.Errorf("%w: to is before from", errBadQuery)
	}
	return report.DayRange(start, end), nil
}

// deferredWriter sets the CSV headers on the first write.
type deferredWriter struct {
	w       http.ResponseWriter
	name    string
	started bool
}

func (d *deferredWriter) Write(p []byte) (int, error) {
	if !d.started {
		d.started = true
		d.w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		d.w.Header().Set("Content-Disposition", `attachment; filename="`+d.name+`"`)
		d.w.WriteHeader(http.StatusOK)
	}
	return d.w.Write(p)
}
