package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flownest/flownest-server/internal/models"
)

// DailySummary is one owner's end-of-day sales report
type DailySummary struct {
	OwnerID           uuid.UUID      `json:"ownerId"`
	TenantID          uuid.UUID      `json:"tenantId"`
	Date              time.Time      `json:"date"`
	TotalRevenue      float64        `json:"totalRevenue"`
	TotalTransactions int            `json:"totalTransactions"`
	MethodBreakdown   []MethodAmount `json:"methodBreakdown"`
}

// SummarizeDay totals a day's invoices.
func SummarizeDay(invoices []*models.Invoice) DailySummary {
	var s DailySummary
	revenue := decimal.Zero
	byMethod := make(map[models.PaymentMethod]decimal.Decimal)

	for _, inv := range invoices {
		total := decimal.NewFromFloat(inv.TotalAmount)
		revenue = revenue.Add(total)
		byMethod[inv.PaymentMethod] = byMethod[inv.PaymentMethod].Add(total)
	}

	s.TotalRevenue = revenue.InexactFloat64()
	s.TotalTransactions = len(invoices)
	s.MethodBreakdown = MethodBreakdown(byMethod)
	return s
}

// Headline is the one-line text used for the in-app notification.
func (s DailySummary) Headline() string {
	return fmt.Sprintf("Your report for today is ready. Total Revenue: ₹%s across %d transactions.",
		decimal.NewFromFloat(s.TotalRevenue).StringFixed(2), s.TotalTransactions)
}
