package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// PaymentMethod is how an invoice was settled
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCard PaymentMethod = "Card"
)

// PaymentMethods lists the accepted methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentUPI, PaymentCard}

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// InvoiceItem is one line of an invoice
type InvoiceItem struct {
	ServiceID     *uuid.UUID `json:"serviceId,omitempty"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	OriginalPrice float64    `json:"originalPrice"`
	Quantity      int        `json:"quantity"`
}

// InvoiceItems is stored as a JSONB array on the invoice row
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer interface
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface
func (items *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*items = InvoiceItems{}
		return nil
	}
	return scanJSON(value, items)
}

// Invoice is a completed sale
type Invoice struct {
	TenantModel
	CustomerName  string        `json:"customerName" db:"customer_name"`
	CustomerPhone string        `json:"customerPhone,omitempty" db:"customer_phone"`
	Items         InvoiceItems  `json:"services" db:"items"`
	TotalAmount   float64       `json:"totalAmount" db:"total_amount"`
	PaymentMethod PaymentMethod `json:"paymentMethod" db:"payment_method"`
	CreatedBy     uuid.UUID     `json:"createdBy" db:"created_by"`
}
