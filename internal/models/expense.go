package models

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseStatus tracks owner approval of an expense
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
)

// Expense is money spent by the business
type Expense struct {
	TenantModel
	AddedBy     uuid.UUID     `json:"addedBy" db:"added_by"`
	AddedByName string        `json:"addedByName,omitempty" db:"-"`
	Title       string        `json:"title" db:"title"`
	Amount      float64       `json:"amount" db:"amount"`
	Category    string        `json:"category" db:"category"`
	Status      ExpenseStatus `json:"status" db:"status"`
	Date        time.Time     `json:"date" db:"date"`
}
