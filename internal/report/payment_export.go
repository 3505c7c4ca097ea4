package report

import (
	"fmt"
	"io"

	"shramik-backend/internal/model"

	"github.com/xuri/excelize/v2"
)

const paymentSheet = "Payments"

var paymentHeaders = []string{
	"Payment ID", "Work Period", "Job", "Employer ID", "Worker ID",
	"Work Days", "Daily Rate", "Amount", "Method", "Gateway Payment ID", "Paid At",
}

// WritePayments renders payment history as an XLSX workbook with a totals row.
func WritePayments(w io.Writer, payments []model.PaymentRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(paymentSheet)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, header := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(paymentSheet, cell, header)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(paymentHeaders), 1)
	f.SetCellStyle(paymentSheet, "A1", lastCol, bold)

	var total int64
	row := 2
	for _, p := range payments {
		values := []interface{}{
			p.ID, p.WorkPeriod, p.JobTitle, p.EmployerID, p.WorkerID,
			p.WorkDays, p.DailyRate, p.Amount, string(p.PaymentMethod), p.GatewayPaymentID,
			p.PaidAt.Format("02-01-2006 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(paymentSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		total += p.Amount
		row++
	}

	f.SetCellValue(paymentSheet, fmt.Sprintf("G%d", row), "Total")
	f.SetCellValue(paymentSheet, fmt.Sprintf("H%d", row), total)
	f.SetCellStyle(paymentSheet, fmt.Sprintf("G%d", row), fmt.Sprintf("H%d", row), bold)
	f.SetColWidth(paymentSheet, "A", "A", 38)
	f.SetColWidth(paymentSheet, "B", "C", 20)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
