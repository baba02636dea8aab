package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

var reportNow = time.Date(2026, 5, 14, 15, 0, 0, 0, time.UTC)

func invoice(at time.Time, phone string, method models.PaymentMethod, items ...models.InvoiceItem) *models.Invoice {
	inv := &models.Invoice{CustomerPhone: phone, PaymentMethod: method, Items: items}
	inv.CreatedAt = at
	for _, it := range items {
		inv.TotalAmount += it.Price * float64(it.Quantity)
	}
	return inv
}

func item(name string, price, original float64, qty int) models.InvoiceItem {
	return models.InvoiceItem{Name: name, Price: price, OriginalPrice: original, Quantity: qty}
}

func TestRepeatRate(t *testing.T) {
	// A,A,B,C,C,C
	assert.Equal(t, 67, RepeatRate(map[string]int{"A": 2, "B": 1, "C": 3}))
	assert.Equal(t, 0, RepeatRate(nil))
	assert.Equal(t, 0, RepeatRate(map[string]int{"": 5}))
	assert.Equal(t, 100, RepeatRate(map[string]int{"A": 2}))
	assert.Equal(t, 50, RepeatRate(map[string]int{"A": 2, "B": 1, "": 9}))
}

func TestSummarizeTotalsAndProfit(t *testing.T) {
	w := NewWindow(reportNow, time.UTC, RangeWeek)
	invoices := []*models.Invoice{
		invoice(reportNow.Add(-time.Hour), "A", models.PaymentCash, item("Cut", 100, 40, 2)),
		invoice(reportNow.AddDate(0, 0, -2), "B", models.PaymentUPI, item("Shave", 50, 10, 1)),
		// outside window
		invoice(reportNow.AddDate(0, 0, -10), "A", models.PaymentCard, item("Cut", 100, 40, 1)),
	}
	expenses := []*models.Expense{
		{Amount: 30, Status: models.ExpenseApproved, Date: reportNow.AddDate(0, 0, -1)},
		{Amount: 999, Status: models.ExpensePending, Date: reportNow.AddDate(0, 0, -1)},
		{Amount: 500, Status: models.ExpenseApproved, Date: reportNow.AddDate(0, 0, -20)},
	}

	d := Summarize(reportNow, time.UTC, w, invoices, expenses, map[string]int{"A": 2, "B": 1})

	assert.Equal(t, RangeWeek, d.Range)
	assert.InDelta(t, 250, d.TotalRevenue, 0.001)
	assert.Equal(t, 2, d.TotalTransactions)
	assert.InDelta(t, 200, d.TodayRevenue, 0.001)
	assert.Equal(t, 1, d.TodayTransactions)
	assert.InDelta(t, 90, d.CostOfGoods, 0.001)
	assert.InDelta(t, 30, d.TotalExpenses, 0.001)
	assert.InDelta(t, 130, d.NetProfit, 0.001)
	assert.Equal(t, 50, d.RepeatRate)

	require.Len(t, d.PaymentBreakdown, 2)
	assert.Equal(t, models.PaymentCash, d.PaymentBreakdown[0].Method)
	assert.Equal(t, models.PaymentUPI, d.PaymentBreakdown[1].Method)
}

func TestSummarizeSeriesZeroFilled(t *testing.T) {
	w := NewWindow(reportNow, time.UTC, RangeWeek)
	invoices := []*models.Invoice{
		invoice(reportNow, "", models.PaymentCash, item("Cut", 100, 0, 1)),
		invoice(reportNow.AddDate(0, 0, -6), "", models.PaymentCash, item("Cut", 20, 0, 1)),
	}

	d := Summarize(reportNow, time.UTC, w, invoices, nil, nil)

	require.Len(t, d.Series, 7)
	assert.Equal(t, "2026-05-08", d.Series[0].Label)
	assert.InDelta(t, 20, d.Series[0].Revenue, 0.001)
	assert.Equal(t, 1, d.Series[0].Transactions)
	for _, p := range d.Series[1:6] {
		assert.Zero(t, p.Revenue)
		assert.Zero(t, p.Transactions)
	}
	assert.Equal(t, "2026-05-14", d.Series[6].Label)
	assert.InDelta(t, 100, d.Series[6].Revenue, 0.001)
}

func TestSummarizeYearBuckets(t *testing.T) {
	w := NewWindow(reportNow, time.UTC, RangeYear)
	invoices := []*models.Invoice{
		invoice(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), "", models.PaymentCash, item("Cut", 10, 0, 1)),
		invoice(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "", models.PaymentCash, item("Cut", 10, 0, 1)),
		invoice(time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), "", models.PaymentCash, item("Cut", 5, 0, 1)),
	}

	d := Summarize(reportNow, time.UTC, w, invoices, nil, nil)

	require.Len(t, d.Series, 12)
	assert.Equal(t, "2025-06", d.Series[0].Label)
	assert.InDelta(t, 10, d.Series[0].Revenue, 0.001)
	assert.Equal(t, "2026-05", d.Series[11].Label)
	assert.InDelta(t, 15, d.Series[11].Revenue, 0.001)
	assert.Equal(t, 2, d.Series[11].Transactions)
}

func TestSummarizeTopServices(t *testing.T) {
	w := NewWindow(reportNow, time.UTC, RangeDay)
	var items []models.InvoiceItem
	for i := 0; i < 12; i++ {
		items = append(items, item(fmt.Sprintf("svc-%02d", i), 1, 0, i+1))
	}
	invoices := []*models.Invoice{invoice(reportNow, "", models.PaymentCash, items...)}

	d := Summarize(reportNow, time.UTC, w, invoices, nil, nil)

	require.Len(t, d.TopServices, 10)
	assert.Equal(t, "svc-11", d.TopServices[0].Name)
	assert.Equal(t, 12, d.TopServices[0].Quantity)
	assert.Equal(t, "svc-02", d.TopServices[9].Name)
}

func TestSummarizeEmpty(t *testing.T) {
	w := NewWindow(reportNow, time.UTC, RangeMonth)
	d := Summarize(reportNow, time.UTC, w, nil, nil, nil)

	assert.Zero(t, d.TotalRevenue)
	assert.Zero(t, d.NetProfit)
	assert.Len(t, d.Series, 30)
	assert.Empty(t, d.TopServices)
	assert.NotNil(t, d.PaymentBreakdown)
}

func TestReporterDashboard(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	tenantID := uuid.New()

	for _, inv := range []*models.Invoice{
		invoice(reportNow.Add(-2*time.Hour), "A", models.PaymentCash, item("Cut", 100, 30, 1)),
		invoice(reportNow.AddDate(0, -3, 0), "A", models.PaymentCash, item("Cut", 100, 30, 1)),
		invoice(reportNow.Add(-time.Hour), "B", models.PaymentCard, item("Color", 300, 120, 1)),
	} {
		inv.TenantID = tenantID
		require.NoError(t, store.CreateInvoice(ctx, inv))
	}
	exp := &models.Expense{Title: "rent", Amount: 50, Status: models.ExpenseApproved, Date: reportNow.Add(-time.Hour)}
	exp.TenantID = tenantID
	require.NoError(t, store.CreateExpense(ctx, exp))

	r := NewReporter(store, func() time.Time { return reportNow }, time.UTC, nil)
	d, err := r.Dashboard(ctx, tenantID, RangeWeek)
	require.NoError(t, err)

	assert.InDelta(t, 400, d.TotalRevenue, 0.001)
	assert.Equal(t, 2, d.TotalTransactions)
	assert.InDelta(t, 400-150-50, d.NetProfit, 0.001)
	// the three-month-old visit still counts towards the all-time rate
	assert.Equal(t, 50, d.RepeatRate)
}

type failingSource struct{ storage.Store }

func (failingSource) ListInvoices(context.Context, storage.InvoiceFilters) ([]*models.Invoice, error) {
	return nil, errors.New("boom")
}

func (failingSource) PhoneVisitCounts(context.Context, uuid.UUID) (map[string]int, error) {
	return map[string]int{}, nil
}

func (failingSource) ListExpenses(context.Context, storage.ExpenseFilters) ([]*models.Expense, error) {
	return nil, nil
}

func TestReporterDashboardError(t *testing.T) {
	r := NewReporter(failingSource{}, nil, nil, nil)
	_, err := r.Dashboard(context.Background(), uuid.New(), RangeDay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list invoices")
}
