package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flownest/flownest-server/internal/events"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/report"
	"github.com/flownest/flownest-server/internal/storage"
)

// ========== Invoice handlers ==========

type invoiceItemRequest struct {
	ServiceID     string   `json:"serviceId"`
	Name          string   `json:"name" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitempty,gte=0"`
	Quantity      int      `json:"quantity" validate:"gte=0"`
}

// HandleCreateInvoice records a sale
func (s *RESTServer) HandleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName  string               `json:"customerName" validate:"max=200"`
		Phone         string               `json:"phone" validate:"max=30"`
		Services      []invoiceItemRequest `json:"services" validate:"required,min=1,dive"`
		TotalAmount   float64              `json:"totalAmount" validate:"gte=0"`
		PaymentMethod string               `json:"paymentMethod" validate:"omitempty,payment_method"`
	}
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := r.Context()
	tid := tenantID(ctx)
	user := principal(ctx)

	items := make(models.InvoiceItems, 0, len(req.Services))
	sum := decimal.Zero
	for _, in := range req.Services {
		item := models.InvoiceItem{
			Name:     in.Name,
			Price:    in.Price,
			Quantity: in.Quantity,
		}
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if in.OriginalPrice != nil {
			item.OriginalPrice = *in.OriginalPrice
		}

		// Catalogue lines carry the catalogue's cost price.
		if id, err := uuid.Parse(in.ServiceID); err == nil {
			svc, err := s.store.GetService(ctx, tid, id)
			switch {
			case err == nil:
				item.ServiceID = &svc.ID
				item.OriginalPrice = svc.OriginalPrice
			case !errors.Is(err, storage.ErrNotFound):
				s.writeError(w, r, err)
				return
			}
		}

		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, item)
	}

	invoice := &models.Invoice{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.Phone,
		Items:         items,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: models.PaymentMethod(firstNonEmpty(req.PaymentMethod, string(models.PaymentCash))),
		CreatedBy:     user.ID,
	}
	if invoice.TotalAmount == 0 {
		invoice.TotalAmount = sum.InexactFloat64()
	}
	invoice.TenantID = tid
	invoice.CreatedAt = s.now()

	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		s.writeError(w, r, err)
		return
	}

	e := events.New(events.InvoiceCreated, invoice.CreatedAt, models.Variables{
		"invoiceId":     invoice.ID.String(),
		"customerName":  invoice.CustomerName,
		"totalAmount":   invoice.TotalAmount,
		"paymentMethod": string(invoice.PaymentMethod),
	})
	e.TenantID = &tid
	e.ActorID = &user.ID
	if t := admittedTenant(ctx); t != nil && t.OwnerID != nil {
		e.RecipientID = t.OwnerID
	}
	s.publish(r, e)

	s.respondJSON(w, http.StatusCreated, invoice)
}

// HandleListInvoices lists invoices, newest first
func (s *RESTServer) HandleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.ListInvoices(r.Context(), storage.InvoiceFilters{
		TenantID: tenantID(r.Context()),
		Limit:    queryInt(r, "limit", 0),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, invoices)
}

// HandleInvoiceStats returns the sales dashboard
func (s *RESTServer) HandleInvoiceStats(w http.ResponseWriter, r *http.Request) {
	rng := report.ParseRange(r.URL.Query().Get("range"))

	dashboard, err := s.reporter.Dashboard(r.Context(), tenantID(r.Context()), rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, dashboard)
}
