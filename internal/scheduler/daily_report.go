// Package scheduler runs the periodic jobs of the worker process.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/integration"
	"github.com/flownest/flownest-server/internal/metrics"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/report"
	"github.com/flownest/flownest-server/internal/storage"
)

// Store is the storage the daily report reads
type Store interface {
	ListUsers(ctx context.Context, filters storage.UserFilters) ([]*models.User, error)
	ListInvoices(ctx context.Context, filters storage.InvoiceFilters) ([]*models.Invoice, error)
}

// Notifier delivers the finished report
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
	Mail(ctx context.Context, msg integration.Message) error
}

// RunResult counts what one run did
type RunResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// DailyReport sends every owner a summary of the day's sales
type DailyReport struct {
	store    Store
	notifier Notifier
	now      func() time.Time
	loc      *time.Location
	metrics  *metrics.Metrics
}

// NewDailyReport creates the job. A nil clock means time.Now and a nil
// location means time.Local.
func NewDailyReport(store Store, notifier Notifier, now func() time.Time, loc *time.Location, m *metrics.Metrics) *DailyReport {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &DailyReport{store: store, notifier: notifier, now: now, loc: loc, metrics: m}
}

// RunOnce reports on today for every owner. One owner's failure never
// stops the others; only a failure to list owners is returned.
func (r *DailyReport) RunOnce(ctx context.Context) (RunResult, error) {
	var res RunResult

	role := models.RoleOwner
	owners, err := r.store.ListUsers(ctx, storage.UserFilters{Role: &role})
	if err != nil {
		return res, fmt.Errorf("list owners: %w", err)
	}

	now := r.now()
	from := report.StartOfDay(now, r.loc)
	to := from.AddDate(0, 0, 1)

	log.Info().
		Int("owners", len(owners)).
		Time("day", from).
		Msg("Running daily sales report")

	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		sent, err := r.reportOwner(ctx, owner, from, to)
		switch {
		case err != nil:
			res.Failed++
			r.metrics.DailyReport("failed")
			log.Error().
				Err(err).
				Str("owner", owner.Email).
				Msg("Daily report failed")
		case !sent:
			res.Skipped++
			r.metrics.DailyReport("skipped")
		default:
			res.Sent++
			r.metrics.DailyReport("sent")
		}
	}

	log.Info().
		Int("sent", res.Sent).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("Daily sales report finished")

	return res, nil
}

func (r *DailyReport) reportOwner(ctx context.Context, owner *models.User, from, to time.Time) (bool, error) {
	if !owner.HasTenant() {
		log.Debug().Str("owner", owner.Email).Msg("Owner has no tenant, skipping report")
		return false, nil
	}

	invoices, err := r.store.ListInvoices(ctx, storage.InvoiceFilters{
		TenantID:  *owner.TenantID,
		StartTime: &from,
		EndTime:   &to,
	})
	if err != nil {
		return false, fmt.Errorf("list invoices: %w", err)
	}
	if len(invoices) == 0 {
		log.Debug().Str("owner", owner.Email).Msg("No sales today, skipping report")
		return false, nil
	}

	summary := report.SummarizeDay(invoices)
	summary.OwnerID = owner.ID
	summary.TenantID = *owner.TenantID
	summary.Date = from

	var errs []error

	msg, err := integration.DailyReportEmail(owner.Email, owner.Name, summary)
	if err == nil {
		err = r.notifier.Mail(ctx, msg)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("email: %w", err))
	}

	breakdown := make(models.Variables, len(summary.MethodBreakdown))
	for _, m := range summary.MethodBreakdown {
		breakdown[string(m.Method)] = m.Amount
	}
	n := &models.Notification{
		RecipientID: owner.ID,
		Title:       "Daily Sales Report Ready",
		Message:     summary.Headline(),
		Type:        models.NotificationInfo,
		Details: models.Variables{
			"date":              from.Format("2006-01-02"),
			"totalRevenue":      summary.TotalRevenue,
			"totalTransactions": summary.TotalTransactions,
			"methodBreakdown":   breakdown,
		},
	}
	if err := r.notifier.Notify(ctx, n); err != nil {
		errs = append(errs, fmt.Errorf("notification: %w", err))
	}

	return true, errors.Join(errs...)
}
