package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

type FinancialSummary struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	InvoiceCount   int             `json:"invoice_count"`
	PurchaseCount  int             `json:"purchase_count"`
	ExpenseCount   int             `json:"expense_count"`
}

type ExpenseCategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Amount   decimal.Decimal        `json:"amount"`
}

type LowStockItem struct {
	ProductId         string `json:"product_id"`
	Name              string `json:"name"`
	Sku               string `json:"sku"`
	StockQuantity     int    `json:"stock_quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// InventorySummary reflects current product state; the report window does not apply.
type InventorySummary struct {
	TotalProducts   int             `json:"total_products"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	LowStockItems   []*LowStockItem `json:"low_stock_items"`
}

type FinancialReport struct {
	FromDate           time.Time               `json:"from_date"`
	ToDate             time.Time               `json:"to_date"`
	Financials         FinancialSummary        `json:"financials"`
	ExpensesByCategory []*ExpenseCategoryTotal `json:"expenses_by_category"`
	Inventory          InventorySummary        `json:"inventory"`
}

// ReportWindow resolves the inclusive window. A missing bound falls back to
// the current month in REPORT_TIMEZONE.
func ReportWindow(from *time.Time, to *time.Time) (time.Time, time.Time, error) {
	start, end := utils.GetThisMonthRange()
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, utils.NewValidationError(utils.ErrInvalidWindow, "from")
	}
	return start, end, nil
}

// GetFinancialReport builds the snapshot for the caller's business. Any
// failed read aborts the whole report.
func GetFinancialReport(ctx context.Context, store *models.Store, from *time.Time, to *time.Time) (*FinancialReport, error) {
	started := time.Now()
	defer func() { config.ReportDuration.Observe(time.Since(started).Seconds()) }()

	start, end, err := ReportWindow(from, to)
	if err != nil {
		return nil, err
	}

	invoices, err := models.ListInvoices(ctx, store, &start, &end)
	if err != nil {
		return nil, err
	}
	purchases, err := models.ListPurchases(ctx, store, &start, &end)
	if err != nil {
		return nil, err
	}
	expenses, err := models.ListExpenses(ctx, store, &start, &end)
	if err != nil {
		return nil, err
	}
	products, err := models.ListProducts(ctx, store)
	if err != nil {
		return nil, err
	}

	sales := decimal.Zero
	for _, inv := range invoices {
		sales = sales.Add(inv.TotalAmount)
	}
	bought := decimal.Zero
	for _, p := range purchases {
		bought = bought.Add(p.TotalAmount)
	}
	spent := decimal.Zero
	byCategory := make(map[models.ExpenseCategory]decimal.Decimal)
	for _, e := range expenses {
		spent = spent.Add(e.Amount)
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
	}

	report := &FinancialReport{
		FromDate: start,
		ToDate:   end,
		Financials: FinancialSummary{
			TotalSales:     utils.Round2(sales),
			TotalPurchases: utils.Round2(bought),
			TotalExpenses:  utils.Round2(spent),
			NetProfit:      utils.Round2(sales.Sub(bought).Sub(spent)),
			InvoiceCount:   len(invoices),
			PurchaseCount:  len(purchases),
			ExpenseCount:   len(expenses),
		},
		ExpensesByCategory: make([]*ExpenseCategoryTotal, 0),
		Inventory:          summarizeInventory(products, config.LowStockListLimit()),
	}
	for _, c := range models.ExpenseCategories() {
		if amount, ok := byCategory[c]; ok {
			report.ExpensesByCategory = append(report.ExpensesByCategory, &ExpenseCategoryTotal{Category: c, Amount: utils.Round2(amount)})
		}
	}
	return report, nil
}

func summarizeInventory(products []*models.Product, limit int) InventorySummary {
	summary := InventorySummary{
		TotalProducts: len(products),
		LowStockItems: make([]*LowStockItem, 0),
	}
	for _, p := range products {
		switch {
		case p.IsOutOfStock():
			summary.OutOfStockCount++
		case p.IsLowStock():
			summary.LowStockCount++
			if len(summary.LowStockItems) < limit {
				summary.LowStockItems = append(summary.LowStockItems, &LowStockItem{
					ProductId:         p.ID,
					Name:              p.Name,
					Sku:               p.Sku,
					StockQuantity:     p.StockQuantity,
					LowStockThreshold: p.LowStockThreshold,
				})
			}
		}
	}
	return summary
}
