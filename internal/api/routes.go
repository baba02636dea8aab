package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/flownest/flownest-server/internal/auth"
)

// setupAPIRoutes sets up /api routes. Middleware order on protected
// routes is authenticate, role allow-set, tenant resolution, then the
// subscription gate.
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.HandleRegister)
		r.Post("/login", s.HandleLogin)
		r.Post("/logout", s.HandleLogout)
		r.Get("/logout", s.HandleLogout)
		r.With(s.authMiddleware).Get("/me", s.HandleMe)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		// Tenant profile, ungated so an expired owner can submit proof
		r.Route("/tenants", func(r chi.Router) {
			r.With(s.requireRoles(auth.AnyRole), s.tenantScope).Get("/me", s.HandleGetTenant)
			r.Group(func(r chi.Router) {
				r.Use(s.requireRoles(auth.OwnerOnly), s.tenantScope)
				r.Put("/me", s.HandleUpdateTenant)
				r.Post("/proof", s.HandleSubmitProof)
			})
		})

		// Service catalogue
		r.Route("/services", func(r chi.Router) {
			r.With(s.requireRoles(auth.AnyRole), s.tenantScope).Get("/", s.HandleListServices)
			r.Group(func(r chi.Router) {
				r.Use(s.requireRoles(auth.OwnerOnly), s.tenantScope, s.subscriptionGate)
				r.Post("/", s.HandleCreateService)
				r.Put("/{id}", s.HandleUpdateService)
				r.Delete("/{id}", s.HandleDeleteService)
			})
		})

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.With(s.requireRoles(auth.TenantMembers), s.tenantScope).Get("/stats", s.HandleInvoiceStats)
			r.Group(func(r chi.Router) {
				r.Use(s.requireRoles(auth.TenantMembers), s.tenantScope, s.subscriptionGate)
				r.Post("/", s.HandleCreateInvoice)
				r.Get("/", s.HandleListInvoices)
			})
			r.With(s.requireRoles(auth.OwnerOnly), s.tenantScope, s.subscriptionGate).Get("/export", s.HandleExportInvoices)
		})

		// Staff
		r.Route("/staff", func(r chi.Router) {
			r.Use(s.requireRoles(auth.OwnerOnly), s.tenantScope, s.subscriptionGate)
			r.Get("/", s.HandleListStaff)
			r.Post("/", s.HandleCreateStaff)
			r.Put("/{id}", s.HandleUpdateStaff)
			r.Delete("/{id}", s.HandleDeleteStaff)
		})

		// Attendance
		r.Route("/attendance", func(r chi.Router) {
			r.Use(s.requireRoles(auth.TenantMembers), s.tenantScope, s.subscriptionGate)
			r.Post("/check-in", s.HandleCheckIn)
			r.Post("/check-out", s.HandleCheckOut)
			r.Get("/", s.HandleListAttendance)
		})

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.requireRoles(auth.AnyRole), s.delegatedTenantScope, s.subscriptionGate)
				r.Get("/", s.HandleListExpenses)
				r.Post("/", s.HandleCreateExpense)
			})
			r.With(s.requireRoles(auth.OwnerOrAdmin), s.delegatedTenantScope, s.subscriptionGate).
				Patch("/{id}/status", s.HandleUpdateExpenseStatus)
		})

		// Credits
		r.Route("/credits", func(r chi.Router) {
			r.Use(s.requireRoles(auth.TenantMembers), s.tenantScope, s.subscriptionGate)
			r.Get("/", s.HandleListCredits)
			r.Post("/", s.HandleCreateCredit)
			r.Patch("/{id}/payment", s.HandleCreditPayment)
		})

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Use(s.requireRoles(auth.AnyRole))
			r.Get("/", s.HandleListNotifications)
			r.Patch("/{id}/read", s.HandleMarkNotificationRead)
		})

		// Platform administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireRoles(auth.SuperadminOnly))
			r.Get("/tenants", s.HandleAdminListTenants)
			r.Route("/tenants/{id}", func(r chi.Router) {
				r.Post("/approve", s.HandleAdminApprove)
				r.Patch("/terminate", s.HandleAdminTerminate)
				r.Patch("/expire", s.HandleAdminExpire)
				r.Patch("/subscription", s.HandleAdminExtend)
				r.Delete("/", s.HandleAdminDeleteTenant)
			})
			r.Post("/message", s.HandleAdminMessage)
		})
	})
}
