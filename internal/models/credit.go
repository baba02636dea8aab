package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditStatus is the settlement state of a credit note
type CreditStatus string

const (
	CreditOpen   CreditStatus = "open"
	CreditClosed CreditStatus = "closed"
)

var (
	ErrCreditClosed   = errors.New("credit already closed")
	ErrInvalidPayment = errors.New("payment amount must be positive")
)

// CreditPayment is one repayment against a credit note
type CreditPayment struct {
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	RecordedBy uuid.UUID `json:"recordedBy"`
}

// CreditPayments is stored as a JSONB array on the credit row
type CreditPayments []CreditPayment

// Value implements driver.Valuer interface
func (p CreditPayments) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface
func (p *CreditPayments) Scan(value interface{}) error {
	if value == nil {
		*p = CreditPayments{}
		return nil
	}
	return scanJSON(value, p)
}

// Credit records money a customer owes the business
type Credit struct {
	TenantModel
	CustomerName    string         `json:"customerName" db:"customer_name"`
	CustomerPhone   string         `json:"customerPhone,omitempty" db:"customer_phone"`
	TotalAmount     float64        `json:"totalAmount" db:"total_amount"`
	RemainingAmount float64        `json:"remainingAmount" db:"remaining_amount"`
	Status          CreditStatus   `json:"status" db:"status"`
	Notes           string         `json:"notes,omitempty" db:"notes"`
	AddedBy         uuid.UUID      `json:"addedBy" db:"added_by"`
	ClosedBy        *uuid.UUID     `json:"closedBy,omitempty" db:"closed_by"`
	Payments        CreditPayments `json:"payments" db:"payments"`
}

// RecordPayment applies a repayment. The credit closes once nothing
// remains, and the remaining amount never goes below zero.
func (c *Credit) RecordPayment(amount float64, by uuid.UUID, at time.Time) error {
	if amount <= 0 {
		return ErrInvalidPayment
	}
	if c.Status == CreditClosed {
		return ErrCreditClosed
	}

	c.Payments = append(c.Payments, CreditPayment{Amount: amount, Date: at, RecordedBy: by})
	remaining := decimal.NewFromFloat(c.RemainingAmount).Sub(decimal.NewFromFloat(amount))
	c.RemainingAmount = remaining.InexactFloat64()
	if !remaining.IsPositive() {
		c.RemainingAmount = 0
		c.Status = CreditClosed
		closer := by
		c.ClosedBy = &closer
	}
	return nil
}
