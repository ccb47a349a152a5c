package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Summary"
	lowStockSheet  = "Low Stock"
	reportDateForm = "2006-01-02 15:04:05"
)

// ExportFinancialReport lays the snapshot out as a two sheet workbook.
func ExportFinancialReport(report *FinancialReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	rows := [][]any{
		{"From", report.FromDate.Format(reportDateForm)},
		{"To", report.ToDate.Format(reportDateForm)},
		{},
		{"Total Sales", report.Financials.TotalSales.InexactFloat64()},
		{"Total Purchases", report.Financials.TotalPurchases.InexactFloat64()},
		{"Total Expenses", report.Financials.TotalExpenses.InexactFloat64()},
		{"Net Profit", report.Financials.NetProfit.InexactFloat64()},
		{"Invoices", report.Financials.InvoiceCount},
		{"Purchases", report.Financials.PurchaseCount},
		{"Expenses", report.Financials.ExpenseCount},
		{},
		{"Total Products", report.Inventory.TotalProducts},
		{"Low Stock", report.Inventory.LowStockCount},
		{"Out Of Stock", report.Inventory.OutOfStockCount},
	}
	if len(report.ExpensesByCategory) > 0 {
		rows = append(rows, []any{}, []any{"Expense Category", "Amount"})
		for _, c := range report.ExpensesByCategory {
			rows = append(rows, []any{string(c.Category), c.Amount.InexactFloat64()})
		}
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(lowStockSheet); err != nil {
		return nil, err
	}
	header := []any{"Product", "SKU", "Stock", "Threshold"}
	if err := f.SetSheetRow(lowStockSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, item := range report.Inventory.LowStockItems {
		row := []any{item.Name, item.Sku, item.StockQuantity, item.LowStockThreshold}
		if err := f.SetSheetRow(lowStockSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}
