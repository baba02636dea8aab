package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditRecordPayment(t *testing.T) {
	by := uuid.New()
	at := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	c := &Credit{TotalAmount: 100, RemainingAmount: 100, Status: CreditOpen}

	require.NoError(t, c.RecordPayment(30, by, at))
	assert.Equal(t, 70.0, c.RemainingAmount)
	assert.Equal(t, CreditOpen, c.Status)
	assert.Nil(t, c.ClosedBy)

	require.NoError(t, c.RecordPayment(100, by, at))
	assert.Equal(t, 0.0, c.RemainingAmount)
	assert.Equal(t, CreditClosed, c.Status)
	require.NotNil(t, c.ClosedBy)
	assert.Equal(t, by, *c.ClosedBy)
	assert.Len(t, c.Payments, 2)

	assert.ErrorIs(t, c.RecordPayment(5, by, at), ErrCreditClosed)
	assert.Len(t, c.Payments, 2)
}

func TestCreditSettlesFractionalPayments(t *testing.T) {
	by := uuid.New()
	c := &Credit{TotalAmount: 0.3, RemainingAmount: 0.3, Status: CreditOpen}

	require.NoError(t, c.RecordPayment(0.1, by, time.Now()))
	assert.Equal(t, 0.2, c.RemainingAmount)
	assert.Equal(t, CreditOpen, c.Status)

	require.NoError(t, c.RecordPayment(0.2, by, time.Now()))
	assert.Equal(t, 0.0, c.RemainingAmount)
	assert.Equal(t, CreditClosed, c.Status)
}

func TestCreditRejectsNonPositivePayment(t *testing.T) {
	c := &Credit{TotalAmount: 100, RemainingAmount: 100, Status: CreditOpen}
	assert.ErrorIs(t, c.RecordPayment(0, uuid.New(), time.Now()), ErrInvalidPayment)
	assert.ErrorIs(t, c.RecordPayment(-5, uuid.New(), time.Now()), ErrInvalidPayment)
	assert.Empty(t, c.Payments)
}

func TestAttendanceClose(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	a := &Attendance{CheckIn: in}
	assert.True(t, a.Open())

	a.Close(in.Add(7*time.Hour+20*time.Minute), 150)
	assert.False(t, a.Open())
	assert.Equal(t, 7.33, a.TotalHours)
	assert.Equal(t, 1099.5, a.SalaryEarned)

	b := &Attendance{CheckIn: in}
	b.Close(in.Add(-time.Minute), 100)
	assert.Zero(t, b.TotalHours)
	assert.Zero(t, b.SalaryEarned)
}

func TestInvoiceItemsValuer(t *testing.T) {
	v, err := InvoiceItems(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	var items InvoiceItems
	require.NoError(t, items.Scan([]byte(`[{"name":"Cut","price":200,"originalPrice":50,"quantity":2}]`)))
	require.Len(t, items, 1)
	assert.Equal(t, "Cut", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.False(t, Role("manager").Valid())
	assert.True(t, PaymentUPI.Valid())
	assert.False(t, PaymentMethod("Cheque").Valid())
}
