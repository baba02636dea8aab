// Package report builds tenant sales analytics.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/flownest/flownest-server/internal/metrics"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

const topServiceLimit = 10

// Source is the read-only slice of storage the reporter needs
type Source interface {
	ListInvoices(ctx context.Context, filters storage.InvoiceFilters) ([]*models.Invoice, error)
	PhoneVisitCounts(ctx context.Context, tenantID uuid.UUID) (map[string]int, error)
	ListExpenses(ctx context.Context, filters storage.ExpenseFilters) ([]*models.Expense, error)
}

// Dashboard is the statistics payload for one tenant and window
type Dashboard struct {
	Range             Range          `json:"range"`
	From              time.Time      `json:"from"`
	To                time.Time      `json:"to"`
	TotalRevenue      float64        `json:"totalRevenue"`
	TotalTransactions int            `json:"totalTransactions"`
	TodayRevenue      float64        `json:"todayRevenue"`
	TodayTransactions int            `json:"todayTransactions"`
	TopServices       []ServiceUsage `json:"topServices"`
	Series            []SeriesPoint  `json:"revenueSeries"`
	PaymentBreakdown  []MethodAmount `json:"paymentBreakdown"`
	RepeatRate        int            `json:"repeatCustomerRate"`
	CostOfGoods       float64        `json:"costOfGoods"`
	TotalExpenses     float64        `json:"totalExpenses"`
	NetProfit         float64        `json:"netProfit"`
}

// ServiceUsage is one row of the top services table
type ServiceUsage struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// SeriesPoint is one bucket of the revenue series
type SeriesPoint struct {
	Label        string  `json:"label"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
}

// MethodAmount is revenue taken through one payment method
type MethodAmount struct {
	Method models.PaymentMethod `json:"name"`
	Amount float64              `json:"amount"`
}

// Reporter builds dashboards from storage
type Reporter struct {
	source  Source
	now     func() time.Time
	loc     *time.Location
	metrics *metrics.Metrics
}

// NewReporter creates a reporter. A nil clock means time.Now and a nil
// location means time.Local.
func NewReporter(source Source, now func() time.Time, loc *time.Location, m *metrics.Metrics) *Reporter {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Reporter{source: source, now: now, loc: loc, metrics: m}
}

// Dashboard loads the window's invoices and expenses together with the
// all-time phone counts, then summarizes them.
func (r *Reporter) Dashboard(ctx context.Context, tenantID uuid.UUID, rng Range) (*Dashboard, error) {
	defer r.metrics.ObserveDashboard(time.Now())

	now := r.now()
	w := NewWindow(now, r.loc, rng)

	var (
		invoices []*models.Invoice
		expenses []*models.Expense
		phones   map[string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = r.source.ListInvoices(gctx, storage.InvoiceFilters{
			TenantID: tenantID, StartTime: &w.From, EndTime: &w.To,
		})
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		approved := models.ExpenseApproved
		var err error
		expenses, err = r.source.ListExpenses(gctx, storage.ExpenseFilters{
			TenantID: tenantID, Status: &approved, StartTime: &w.From, EndTime: &w.To,
		})
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		phones, err = r.source.PhoneVisitCounts(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("count phone visits: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Summarize(now, r.loc, w, invoices, expenses, phones), nil
}

// Summarize computes a dashboard from already-loaded records. Invoices and
// expenses outside the window are ignored; expenses that are not approved
// are ignored.
func Summarize(now time.Time, loc *time.Location, w Window, invoices []*models.Invoice, expenses []*models.Expense, phones map[string]int) *Dashboard {
	d := &Dashboard{Range: w.Range, From: w.From, To: w.To}
	today := StartOfDay(now, loc)

	revenue := decimal.Zero
	todayRevenue := decimal.Zero
	cogs := decimal.Zero

	bucketIndex := make(map[string]int, len(w.Buckets))
	bucketRevenue := make([]decimal.Decimal, len(w.Buckets))
	bucketCount := make([]int, len(w.Buckets))
	for i, b := range w.Buckets {
		bucketIndex[w.Label(b)] = i
		bucketRevenue[i] = decimal.Zero
	}

	type usage struct {
		qty     int
		revenue decimal.Decimal
		order   int
	}
	services := make(map[string]*usage)
	byMethod := make(map[models.PaymentMethod]decimal.Decimal)

	for _, inv := range invoices {
		if inv.CreatedAt.Before(w.From) || !inv.CreatedAt.Before(w.To) {
			continue
		}
		total := decimal.NewFromFloat(inv.TotalAmount)
		revenue = revenue.Add(total)
		d.TotalTransactions++

		if !inv.CreatedAt.Before(today) {
			todayRevenue = todayRevenue.Add(total)
			d.TodayTransactions++
		}

		if i, ok := bucketIndex[w.labelFor(inv.CreatedAt, loc)]; ok {
			bucketRevenue[i] = bucketRevenue[i].Add(total)
			bucketCount[i]++
		}

		byMethod[inv.PaymentMethod] = byMethod[inv.PaymentMethod].Add(total)

		for _, item := range inv.Items {
			qty := item.Quantity
			if qty <= 0 {
				qty = 1
			}
			q := decimal.NewFromInt(int64(qty))
			cogs = cogs.Add(decimal.NewFromFloat(item.OriginalPrice).Mul(q))

			u, ok := services[item.Name]
			if !ok {
				u = &usage{revenue: decimal.Zero, order: len(services)}
				services[item.Name] = u
			}
			u.qty += qty
			u.revenue = u.revenue.Add(decimal.NewFromFloat(item.Price).Mul(q))
		}
	}

	expenseTotal := decimal.Zero
	for _, exp := range expenses {
		if exp.Status != models.ExpenseApproved {
			continue
		}
		if exp.Date.Before(w.From) || !exp.Date.Before(w.To) {
			continue
		}
		expenseTotal = expenseTotal.Add(decimal.NewFromFloat(exp.Amount))
	}

	d.TotalRevenue = revenue.InexactFloat64()
	d.TodayRevenue = todayRevenue.InexactFloat64()
	d.CostOfGoods = cogs.InexactFloat64()
	d.TotalExpenses = expenseTotal.InexactFloat64()
	d.NetProfit = revenue.Sub(cogs).Sub(expenseTotal).InexactFloat64()
	d.RepeatRate = RepeatRate(phones)

	d.Series = make([]SeriesPoint, len(w.Buckets))
	for i, b := range w.Buckets {
		d.Series[i] = SeriesPoint{
			Label:        w.Label(b),
			Revenue:      bucketRevenue[i].InexactFloat64(),
			Transactions: bucketCount[i],
		}
	}

	d.TopServices = make([]ServiceUsage, 0, len(services))
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := services[names[i]], services[names[j]]
		if a.qty != b.qty {
			return a.qty > b.qty
		}
		return a.order < b.order
	})
	for _, name := range names {
		if len(d.TopServices) == topServiceLimit {
			break
		}
		u := services[name]
		d.TopServices = append(d.TopServices, ServiceUsage{Name: name, Quantity: u.qty, Revenue: u.revenue.InexactFloat64()})
	}

	d.PaymentBreakdown = MethodBreakdown(byMethod)
	return d
}

// RepeatRate is the rounded percentage of distinct non-empty phone numbers
// that appear on two or more invoices.
func RepeatRate(phones map[string]int) int {
	distinct, repeat := 0, 0
	for phone, n := range phones {
		if phone == "" || n <= 0 {
			continue
		}
		distinct++
		if n >= 2 {
			repeat++
		}
	}
	if distinct == 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(repeat * 100)).
		Div(decimal.NewFromInt(int64(distinct))).
		Round(0).
		IntPart())
}

// MethodBreakdown lists non-zero totals in the canonical method order.
func MethodBreakdown(byMethod map[models.PaymentMethod]decimal.Decimal) []MethodAmount {
	out := []MethodAmount{}
	for _, m := range models.PaymentMethods {
		amount, ok := byMethod[m]
		if !ok || !amount.IsPositive() {
			continue
		}
		out = append(out, MethodAmount{Method: m, Amount: amount.InexactFloat64()})
	}
	return out
}
