package api

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/flownest/flownest-server/internal/events"
	"github.com/flownest/flownest-server/internal/integration"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/report"
)

// ========== Services ==========

func (s *APITestSuite) TestServiceCatalogue() {
	owner := s.register("owner@example.com")

	rec := s.do(http.MethodPost, "/api/services", owner.token, map[string]interface{}{"name": "Facial"})
	s.assertError(rec, http.StatusBadRequest, codeValidationFailed)

	// price is accepted in place of sellPrice
	rec = s.do(http.MethodPost, "/api/services", owner.token, map[string]interface{}{
		"name": "Facial", "price": 300, "originalPrice": 100,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var svc models.Service
	s.decode(rec, &svc)
	s.Equal(300.0, svc.SellPrice)
	s.Equal(models.DefaultCategory, svc.Category)

	rec = s.do(http.MethodPut, "/api/services/"+svc.ID.String(), owner.token, map[string]interface{}{"sellPrice": 350})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &svc)
	s.Equal(350.0, svc.SellPrice)
	s.Equal("Facial", svc.Name)
	s.Equal(100.0, svc.OriginalPrice)

	var list []models.Service
	s.decode(s.do(http.MethodGet, "/api/services", owner.token, nil), &list)
	s.Len(list, 1)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/api/services/"+svc.ID.String(), owner.token, nil).Code)
	s.assertError(s.do(http.MethodDelete, "/api/services/"+svc.ID.String(), owner.token, nil), http.StatusNotFound, codeNotFound)
}

func (s *APITestSuite) TestServicesAreTenantScoped() {
	a := s.register("a@example.com")
	b := s.register("b@example.com")

	rec := s.do(http.MethodPost, "/api/services", a.token, map[string]interface{}{"name": "Facial", "sellPrice": 300})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var svc models.Service
	s.decode(rec, &svc)

	var list []models.Service
	s.decode(s.do(http.MethodGet, "/api/services", b.token, nil), &list)
	s.Empty(list)
	s.assertError(s.do(http.MethodDelete, "/api/services/"+svc.ID.String(), b.token, nil), http.StatusNotFound, codeNotFound)
}

// ========== Invoices ==========

func (s *APITestSuite) TestCreateInvoiceUsesCatalogueCost() {
	owner := s.register("owner@example.com")

	rec := s.do(http.MethodPost, "/api/services", owner.token, map[string]interface{}{
		"name": "Facial", "sellPrice": 300, "originalPrice": 100,
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var svc models.Service
	s.decode(rec, &svc)

	rec = s.createInvoice(owner.token, map[string]interface{}{
		"customerName":  "Meera",
		"phone":         "9811111111",
		"paymentMethod": "UPI",
		"services": []map[string]interface{}{
			{"serviceId": svc.ID.String(), "name": "Facial", "price": 300, "originalPrice": 5, "quantity": 2},
			{"serviceId": "custom", "name": "Wax", "price": 200, "originalPrice": 50},
		},
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var inv models.Invoice
	s.decode(rec, &inv)
	s.Equal(800.0, inv.TotalAmount)
	s.Equal(models.PaymentUPI, inv.PaymentMethod)
	s.Equal(owner.tenantID, inv.TenantID)
	s.Equal(owner.userID, inv.CreatedBy)
	s.Require().Len(inv.Items, 2)
	s.Require().NotNil(inv.Items[0].ServiceID)
	s.Equal(svc.ID, *inv.Items[0].ServiceID)
	s.Equal(100.0, inv.Items[0].OriginalPrice)
	s.Nil(inv.Items[1].ServiceID)
	s.Equal(50.0, inv.Items[1].OriginalPrice)
	s.Equal(1, inv.Items[1].Quantity)

	// an explicit total wins and Cash is the default method
	rec = s.createInvoice(owner.token, map[string]interface{}{
		"customerName": "Walk-in",
		"totalAmount":  150,
		"services":     []map[string]interface{}{{"name": "Threading", "price": 200}},
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.decode(rec, &inv)
	s.Equal(150.0, inv.TotalAmount)
	s.Equal(models.PaymentCash, inv.PaymentMethod)

	var list []models.Invoice
	s.decode(s.do(http.MethodGet, "/api/invoices", owner.token, nil), &list)
	s.Len(list, 2)
	s.decode(s.do(http.MethodGet, "/api/invoices?limit=1", owner.token, nil), &list)
	s.Len(list, 1)
}

func (s *APITestSuite) TestCreateInvoiceValidation() {
	owner := s.register("owner@example.com")

	s.assertError(s.createInvoice(owner.token, map[string]interface{}{"customerName": "Meera"}), http.StatusBadRequest, codeValidationFailed)
	s.assertError(s.createInvoice(owner.token, map[string]interface{}{
		"services": []map[string]interface{}{{"price": 10}},
	}), http.StatusBadRequest, codeValidationFailed)
	s.assertError(s.createInvoice(owner.token, map[string]interface{}{
		"paymentMethod": "Cheque",
		"services":      []map[string]interface{}{{"name": "Cut", "price": 10}},
	}), http.StatusBadRequest, codeValidationFailed)
}

func (s *APITestSuite) TestInvoiceStats() {
	owner := s.register("owner@example.com")

	s.Require().Equal(http.StatusCreated, s.createInvoice(owner.token, map[string]interface{}{
		"customerName":  "Meera",
		"phone":         "9811111111",
		"paymentMethod": "Card",
		"services": []map[string]interface{}{
			{"name": "Facial", "price": 300, "originalPrice": 100, "quantity": 2},
		},
	}).Code)
	s.Require().Equal(http.StatusCreated, s.createInvoice(owner.token, map[string]interface{}{
		"customerName": "Meera",
		"phone":        "9811111111",
		"services":     []map[string]interface{}{{"name": "Haircut", "price": 200}},
	}).Code)
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/expenses", owner.token, map[string]interface{}{
		"title": "Rent", "amount": 100,
	}).Code)

	rec := s.do(http.MethodGet, "/api/invoices/stats?range=day", owner.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var d report.Dashboard
	s.decode(rec, &d)
	s.Equal(report.RangeDay, d.Range)
	s.Equal(800.0, d.TotalRevenue)
	s.Equal(2, d.TotalTransactions)
	s.Equal(800.0, d.TodayRevenue)
	s.Equal(200.0, d.CostOfGoods)
	s.Equal(100.0, d.TotalExpenses)
	s.Equal(500.0, d.NetProfit)
	s.Equal(100, d.RepeatRate)
	s.Require().Len(d.TopServices, 2)
	s.Equal("Facial", d.TopServices[0].Name)
	s.Require().Len(d.Series, 1)
	s.Equal(2, d.Series[0].Transactions)
	s.Equal([]report.MethodAmount{
		{Method: models.PaymentCash, Amount: 200},
		{Method: models.PaymentCard, Amount: 600},
	}, d.PaymentBreakdown)

	// the dashboard is readable after expiry
	s.advance(8 * 24 * time.Hour)
	rec = s.do(http.MethodGet, "/api/invoices/stats?range=month", owner.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &d)
	s.Equal(0.0, d.TodayRevenue)
	s.Equal(800.0, d.TotalRevenue)
	s.Len(d.Series, 30)
}

func (s *APITestSuite) TestExportInvoices() {
	owner := s.register("owner@example.com")
	s.Require().Equal(http.StatusCreated, s.createInvoice(owner.token, map[string]interface{}{
		"customerName": "Meera",
		"phone":        "9811111111",
		"services": []map[string]interface{}{
			{"name": "Facial", "price": 300, "quantity": 2},
			{"name": "Wax", "price": 200},
		},
	}).Code)

	rec := s.do(http.MethodGet, "/api/invoices/export?format=csv", owner.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("text/csv", rec.Header().Get("Content-Type"))
	s.Contains(rec.Header().Get("Content-Disposition"), ".csv")

	rows, err := csv.NewReader(rec.Body).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(invoiceExportHeader, rows[0])
	s.Equal("Meera", rows[1][2])
	s.Equal("Facial x2; Wax x1", rows[1][4])
	s.Equal("800.00", rows[1][6])

	rec = s.do(http.MethodGet, "/api/invoices/export?format=xlsx", owner.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	s.Require().NoError(err)
	defer f.Close()
	sheetRows, err := f.GetRows("Invoices")
	s.Require().NoError(err)
	s.Require().Len(sheetRows, 2)
	s.Equal("Date", sheetRows[0][0])
	s.Equal("Meera", sheetRows[1][2])

	rec = s.do(http.MethodGet, "/api/invoices/export", owner.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.True(strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "["))

	s.assertError(s.do(http.MethodGet, "/api/invoices/export?format=pdf", owner.token, nil), http.StatusBadRequest, codeValidationFailed)
	s.assertError(s.do(http.MethodGet, "/api/invoices/export?from=10-03-2025", owner.token, nil), http.StatusBadRequest, codeValidationFailed)
}

func (s *APITestSuite) TestExportDateRange() {
	owner := s.register("owner@example.com")
	s.Require().Equal(http.StatusCreated, s.createInvoice(owner.token, simpleInvoice()).Code)
	s.advance(2 * 24 * time.Hour)
	s.Require().Equal(http.StatusCreated, s.createInvoice(owner.token, simpleInvoice()).Code)

	var list []models.Invoice
	rec := s.do(http.MethodGet, "/api/invoices/export?from=2025-03-10&to=2025-03-10", owner.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &list)
	s.Len(list, 1)

	s.decode(s.do(http.MethodGet, "/api/invoices/export?from=2025-03-11", owner.token, nil), &list)
	s.Len(list, 1)
}

// ========== Staff ==========

func (s *APITestSuite) TestStaffManagement() {
	owner := s.register("owner@example.com")
	_, staffID := s.staff(owner, "ravi@example.com", 120)

	stored, err := s.store.GetUser(s.ctx, staffID)
	s.Require().NoError(err)
	s.Equal(models.RoleStaff, stored.Role)
	s.Require().NotNil(stored.TenantID)
	s.Equal(owner.tenantID, *stored.TenantID)
	s.NotEqual("staffpass", stored.PasswordHash)

	rec := s.do(http.MethodPost, "/api/staff", owner.token, map[string]interface{}{
		"name": "Dup", "email": "ravi@example.com", "password": "staffpass", "role": "owner",
	})
	s.assertError(rec, http.StatusConflict, codeConflict)

	var list []models.User
	s.decode(s.do(http.MethodGet, "/api/staff", owner.token, nil), &list)
	s.Require().Len(list, 1)
	s.Equal(120.0, list[0].HourlyRate)

	rec = s.do(http.MethodPut, "/api/staff/"+staffID.String(), owner.token, map[string]interface{}{"hourlyRate": 150})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var member models.User
	s.decode(rec, &member)
	s.Equal(150.0, member.HourlyRate)
	s.Equal("Ravi", member.Name)

	// another tenant cannot touch the member, and owners are not staff
	other := s.register("other@example.com")
	s.assertError(s.do(http.MethodDelete, "/api/staff/"+staffID.String(), other.token, nil), http.StatusNotFound, codeNotFound)
	s.assertError(s.do(http.MethodDelete, "/api/staff/"+owner.userID.String(), owner.token, nil), http.StatusNotFound, codeNotFound)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/api/staff/"+staffID.String(), owner.token, nil).Code)
	s.decode(s.do(http.MethodGet, "/api/staff", owner.token, nil), &list)
	s.Empty(list)
}

// ========== Attendance ==========

func (s *APITestSuite) TestAttendanceShift() {
	owner := s.register("owner@example.com")
	staffToken, staffID := s.staff(owner, "ravi@example.com", 100)

	s.assertError(s.do(http.MethodPost, "/api/attendance/check-out", staffToken, nil), http.StatusBadRequest, codeValidationFailed)

	rec := s.do(http.MethodPost, "/api/attendance/check-in", staffToken, nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	s.assertError(s.do(http.MethodPost, "/api/attendance/check-in", staffToken, nil), http.StatusBadRequest, codeValidationFailed)

	s.advance(2*time.Hour + 30*time.Minute)
	rec = s.do(http.MethodPost, "/api/attendance/check-out", staffToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var shift models.Attendance
	s.decode(rec, &shift)
	s.Equal(2.5, shift.TotalHours)
	s.Equal(250.0, shift.SalaryEarned)
	s.NotNil(shift.CheckOut)

	// a closed shift still counts for today
	s.assertError(s.do(http.MethodPost, "/api/attendance/check-in", staffToken, nil), http.StatusBadRequest, codeValidationFailed)

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/attendance/check-in", owner.token, nil).Code)

	var list []models.Attendance
	s.decode(s.do(http.MethodGet, "/api/attendance", staffToken, nil), &list)
	s.Require().Len(list, 1)
	s.Equal(staffID, list[0].StaffID)
	s.Equal("Ravi", list[0].StaffName)

	s.decode(s.do(http.MethodGet, "/api/attendance", owner.token, nil), &list)
	s.Len(list, 2)

	s.advance(24 * time.Hour)
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/attendance/check-in", staffToken, nil).Code)
}

// ========== Expenses ==========

func (s *APITestSuite) TestExpenseApproval() {
	owner := s.register("owner@example.com")
	staffToken, _ := s.staff(owner, "ravi@example.com", 100)

	s.assertError(s.do(http.MethodPost, "/api/expenses", staffToken, map[string]interface{}{"amount": 50}), http.StatusBadRequest, codeValidationFailed)

	rec := s.do(http.MethodPost, "/api/expenses", staffToken, map[string]interface{}{"reason": "Tea", "amount": 50})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var exp models.Expense
	s.decode(rec, &exp)
	s.Equal(models.ExpensePending, exp.Status)
	s.Equal("Tea", exp.Title)
	s.True(exp.Date.Equal(s.now))

	rec = s.do(http.MethodPost, "/api/expenses", owner.token, map[string]interface{}{"title": "Rent", "amount": 5000})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var ownerExp models.Expense
	s.decode(rec, &ownerExp)
	s.Equal(models.ExpenseApproved, ownerExp.Status)

	path := "/api/expenses/" + exp.ID.String() + "/status"
	s.assertError(s.do(http.MethodPatch, path, staffToken, map[string]string{"status": "approved"}), http.StatusForbidden, codeForbidden)
	s.assertError(s.do(http.MethodPatch, path, owner.token, map[string]string{"status": "pending"}), http.StatusBadRequest, codeValidationFailed)

	rec = s.do(http.MethodPatch, path, owner.token, map[string]string{"status": "rejected"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &exp)
	s.Equal(models.ExpenseRejected, exp.Status)

	var list []models.Expense
	s.decode(s.do(http.MethodGet, "/api/expenses?status=approved", owner.token, nil), &list)
	s.Require().Len(list, 1)
	s.Equal("Rent", list[0].Title)
}

func (s *APITestSuite) TestSuperadminReviewsExpenses() {
	owner := s.register("owner@example.com")
	staffToken, _ := s.staff(owner, "ravi@example.com", 100)
	adminToken, _ := s.superadmin()

	rec := s.do(http.MethodPost, "/api/expenses", staffToken, map[string]interface{}{"title": "Towels", "amount": 300})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var exp models.Expense
	s.decode(rec, &exp)
	s.Equal(models.ExpensePending, exp.Status)

	path := "/api/expenses/" + exp.ID.String() + "/status"
	s.assertError(s.do(http.MethodPatch, path, adminToken, map[string]string{"status": "approved"}), http.StatusBadRequest, codeTenantUnresolved)
	s.assertError(s.do(http.MethodPatch, path+"?tenantId=nope", adminToken, map[string]string{"status": "approved"}), http.StatusBadRequest, codeValidationFailed)
	s.assertError(s.do(http.MethodPatch, path+"?tenantId="+uuid.NewString(), adminToken, map[string]string{"status": "approved"}), http.StatusNotFound, codeNotFound)

	scoped := "?tenantId=" + owner.tenantID.String()
	rec = s.do(http.MethodPatch, path+scoped, adminToken, map[string]string{"status": "approved"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &exp)
	s.Equal(models.ExpenseApproved, exp.Status)

	rec = s.do(http.MethodPost, "/api/expenses"+scoped, adminToken, map[string]interface{}{"title": "Audit fee", "amount": 200})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var adminExp models.Expense
	s.decode(rec, &adminExp)
	s.Equal(models.ExpenseApproved, adminExp.Status)
	s.Equal(owner.tenantID, adminExp.TenantID)

	var list []models.Expense
	s.decode(s.do(http.MethodGet, "/api/expenses"+scoped+"&status=approved", adminToken, nil), &list)
	s.Len(list, 2)

	// the parameter carries no weight for tenant members
	other := s.register("other@example.com")
	s.decode(s.do(http.MethodGet, "/api/expenses?tenantId="+owner.tenantID.String(), other.token, nil), &list)
	s.Empty(list)
}

// ========== Credits ==========

func (s *APITestSuite) TestCreditRepayment() {
	owner := s.register("owner@example.com")
	staffToken, staffID := s.staff(owner, "ravi@example.com", 100)

	s.assertError(s.do(http.MethodPost, "/api/credits", owner.token, map[string]interface{}{"customerName": "Meera"}), http.StatusBadRequest, codeValidationFailed)

	rec := s.do(http.MethodPost, "/api/credits", owner.token, map[string]interface{}{"customerName": "Meera", "totalAmount": 100})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var credit models.Credit
	s.decode(rec, &credit)
	s.Equal(100.0, credit.RemainingAmount)
	s.Equal(models.CreditOpen, credit.Status)

	path := "/api/credits/" + credit.ID.String() + "/payment"
	s.assertError(s.do(http.MethodPatch, path, owner.token, map[string]float64{"amount": 0}), http.StatusBadRequest, codeValidationFailed)

	rec = s.do(http.MethodPatch, path, owner.token, map[string]float64{"amount": 40})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &credit)
	s.Equal(60.0, credit.RemainingAmount)
	s.Equal(models.CreditOpen, credit.Status)

	rec = s.do(http.MethodPatch, path, staffToken, map[string]float64{"amount": 70})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &credit)
	s.Equal(0.0, credit.RemainingAmount)
	s.Equal(models.CreditClosed, credit.Status)
	s.Require().NotNil(credit.ClosedBy)
	s.Equal(staffID, *credit.ClosedBy)
	s.Len(credit.Payments, 2)

	s.assertError(s.do(http.MethodPatch, path, owner.token, map[string]float64{"amount": 10}), http.StatusBadRequest, codeValidationFailed)
	s.assertError(s.do(http.MethodPatch, "/api/credits/"+uuid.NewString()+"/payment", owner.token, map[string]float64{"amount": 10}), http.StatusNotFound, codeNotFound)
}

// ========== Tenant profile ==========

func (s *APITestSuite) TestUpdateTenantProfile() {
	owner := s.register("owner@example.com")
	s.register("taken@example.com")

	rec := s.do(http.MethodPut, "/api/tenants/me", owner.token, map[string]string{
		"address":   "MG Road",
		"ownerName": "Asha K",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var tenant models.Tenant
	s.decode(rec, &tenant)
	s.Equal("Glow Salon", tenant.Name)
	s.Equal("MG Road", tenant.Address)
	s.Require().NotNil(tenant.Owner)
	s.Equal("Asha K", tenant.Owner.Name)

	rec = s.do(http.MethodPut, "/api/tenants/me", owner.token, map[string]string{"ownerEmail": "taken@example.com"})
	s.assertError(rec, http.StatusConflict, codeConflict)
}

// ========== Notifications ==========

func (s *APITestSuite) TestProofNotifiesSuperadmins() {
	dispatcher := integration.NewDispatcher(s.store, integration.LogMailer{}, nil)
	pub := events.NewInlinePublisher(dispatcher, nil)
	s.opts = []Option{WithPublisher(pub)}
	s.build()

	owner := s.register("owner@example.com")
	adminToken, _ := s.superadmin()

	rec := s.do(http.MethodPost, "/api/tenants/proof", owner.token, map[string]string{
		"paymentProof":    "https://cdn.example.com/proof.png",
		"referenceNumber": "UTR123",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("Proof submitted successfully", s.body(rec)["message"])
	pub.Wait()

	tenant, err := s.store.GetTenant(s.ctx, owner.tenantID)
	s.Require().NoError(err)
	s.Equal("UTR123", tenant.PaymentReferenceNumber)
	s.False(tenant.PaymentApproved)

	var list []models.Notification
	s.decode(s.do(http.MethodGet, "/api/notifications", adminToken, nil), &list)
	s.Require().Len(list, 1)
	s.Equal("New Payment Proof Submitted", list[0].Title)
	s.Contains(list[0].Message, "UTR123")
}

func (s *APITestSuite) TestAdminMessage() {
	owner := s.register("owner@example.com")
	adminToken, admin := s.superadmin()

	s.assertError(s.do(http.MethodPost, "/api/admin/message", adminToken, map[string]string{
		"recipientId": uuid.NewString(), "title": "Hi", "message": "Hello",
	}), http.StatusNotFound, codeNotFound)

	rec := s.do(http.MethodPost, "/api/admin/message", adminToken, map[string]string{
		"recipientId": owner.userID.String(),
		"title":       "Maintenance",
		"message":     "Downtime tonight",
		"type":        "warning",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var list []models.Notification
	s.decode(s.do(http.MethodGet, "/api/notifications", owner.token, nil), &list)
	s.Require().Len(list, 1)
	n := list[0]
	s.Equal("Maintenance", n.Title)
	s.Equal(models.NotificationWarning, n.Type)
	s.False(n.Read)
	s.Require().NotNil(n.SenderID)
	s.Equal(admin.ID, *n.SenderID)

	// only the recipient can mark it read
	s.assertError(s.do(http.MethodPatch, "/api/notifications/"+n.ID.String()+"/read", adminToken, nil), http.StatusNotFound, codeNotFound)
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/notifications/"+n.ID.String()+"/read", owner.token, nil).Code)

	s.decode(s.do(http.MethodGet, "/api/notifications", owner.token, nil), &list)
	s.True(list[0].Read)
}
