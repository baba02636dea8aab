package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
)

// invoiceExportHeader is the column order of csv and xlsx exports
var invoiceExportHeader = []string{
	"Date",
	"Invoice ID",
	"Customer",
	"Phone",
	"Services",
	"Payment Method",
	"Total Amount",
}

// HandleExportInvoices exports invoices as json, csv or xlsx
func (s *RESTServer) HandleExportInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := s.config.Report.Location()

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}

	from, err := queryDate(r, "from", loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to", loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if to != nil {
		// inclusive end date
		end := to.AddDate(0, 0, 1)
		to = &end
	}

	invoices, err := s.store.ListInvoices(ctx, storage.InvoiceFilters{
		TenantID:  tenantID(ctx),
		StartTime: from,
		EndTime:   to,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("invoices_%s", s.now().In(loc).Format("20060102"))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

		writer := csv.NewWriter(w)
		defer writer.Flush()

		if err := writer.Write(invoiceExportHeader); err != nil {
			return
		}
		for _, inv := range invoices {
			if err := writer.Write(invoiceRow(inv, loc)); err != nil {
				return
			}
		}

	case "xlsx":
		data, err := invoicesWorkbook(invoices, loc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
		w.Write(data)

	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.json\"", filename))
		json.NewEncoder(w).Encode(invoices)

	default:
		s.writeError(w, r, badRequest("Unsupported format, use json, csv or xlsx"))
	}
}

// invoiceRow flattens an invoice into export columns
func invoiceRow(inv *models.Invoice, loc *time.Location) []string {
	lines := make([]string, 0, len(inv.Items))
	for _, it := range inv.Items {
		lines = append(lines, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return []string{
		inv.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		inv.ID.String(),
		inv.CustomerName,
		inv.CustomerPhone,
		strings.Join(lines, "; "),
		string(inv.PaymentMethod),
		strconv.FormatFloat(inv.TotalAmount, 'f', 2, 64),
	}
}

// invoicesWorkbook renders invoices into a single-sheet workbook
func invoicesWorkbook(invoices []*models.Invoice, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := make([]interface{}, len(invoiceExportHeader))
	for i, h := range invoiceExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(invoiceExportHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, inv := range invoices {
		cols := invoiceRow(inv, loc)
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = c
		}
		// keep the amount numeric so spreadsheets can sum it
		row[len(row)-1] = inv.TotalAmount

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	widths := []float64{18, 38, 24, 16, 40, 16, 14}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
