package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

// BuildInvoice validates input and returns the write-ready header and items.
// An empty id means a new document. Totals always come from the line data.
func BuildInvoice(businessId string, id string, input *NewInvoice) (*Invoice, []*InvoiceItem, error) {
	if input == nil || len(input.Items) == 0 {
		return nil, nil, utils.NewValidationError(utils.ErrEmptyItems, "items")
	}
	number := strings.TrimSpace(input.InvoiceNumber)
	if number == "" {
		return nil, nil, utils.NewValidationError(utils.ErrMissingDocumentNumber, "invoice_number")
	}
	status := input.PaymentStatus
	if status == "" {
		status = PaymentStatusPending
	}
	if !status.IsValid() {
		return nil, nil, utils.NewValidationError(utils.ErrInvalidStatus, "payment_status")
	}

	ts := now()
	if id == "" {
		id = uuid.NewString()
	}
	items := make([]*InvoiceItem, 0, len(input.Items))
	amounts := make([]utils.LineAmount, 0, len(input.Items))
	for i, line := range input.Items {
		if line == nil {
			return nil, nil, utils.NewValidationError(utils.ErrInvalidQuantity, fmt.Sprintf("items[%d].quantity", i))
		}
		price := decimalOrZero(line.Price)
		rate := decimalOrZero(line.GstRate)
		if err := validateLine(i, line.Quantity, price, "price", &rate); err != nil {
			return nil, nil, err
		}
		amount := utils.CalculateLineAmounts(utils.LineKindSales, price, line.Quantity, rate)
		amounts = append(amounts, amount)
		items = append(items, &InvoiceItem{
			ID:         uuid.NewString(),
			BusinessId: businessId,
			InvoiceId:  id,
			Position:   i,
			ProductId:  utils.NilIfEmpty(utils.DereferencePtr(line.ProductId)),
			Quantity:   line.Quantity,
			Price:      price,
			GstRate:    rate,
			Total:      amount.Total,
			CreatedAt:  ts,
		})
	}
	totals := utils.AggregateLineAmounts(amounts)

	invoice := &Invoice{
		ID:            id,
		BusinessId:    businessId,
		CustomerId:    utils.NilIfEmpty(utils.DereferencePtr(input.CustomerId)),
		InvoiceNumber: number,
		PaymentStatus: status,
		Subtotal:      totals.Subtotal,
		GstTotal:      totals.TaxTotal,
		TotalAmount:   totals.Total,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	return invoice, items, nil
}

// BuildPurchase is BuildInvoice for supplier bills: no tax and the supplier is required.
func BuildPurchase(businessId string, id string, input *NewPurchase) (*Purchase, []*PurchaseItem, error) {
	if input == nil || len(input.Items) == 0 {
		return nil, nil, utils.NewValidationError(utils.ErrEmptyItems, "items")
	}
	supplierId := utils.NilIfEmpty(utils.DereferencePtr(input.SupplierId))
	if supplierId == nil {
		return nil, nil, utils.NewValidationError(utils.ErrMissingCounterparty, "supplier_id")
	}
	number := strings.TrimSpace(input.PurchaseNumber)
	if number == "" {
		return nil, nil, utils.NewValidationError(utils.ErrMissingDocumentNumber, "purchase_number")
	}

	ts := now()
	if id == "" {
		id = uuid.NewString()
	}
	items := make([]*PurchaseItem, 0, len(input.Items))
	amounts := make([]utils.LineAmount, 0, len(input.Items))
	for i, line := range input.Items {
		if line == nil {
			return nil, nil, utils.NewValidationError(utils.ErrInvalidQuantity, fmt.Sprintf("items[%d].quantity", i))
		}
		cost := decimalOrZero(line.CostPrice)
		if err := validateLine(i, line.Quantity, cost, "cost_price", nil); err != nil {
			return nil, nil, err
		}
		amount := utils.CalculateLineAmounts(utils.LineKindPurchase, cost, line.Quantity, decimal.Zero)
		amounts = append(amounts, amount)
		items = append(items, &PurchaseItem{
			ID:         uuid.NewString(),
			BusinessId: businessId,
			PurchaseId: id,
			Position:   i,
			ProductId:  utils.NilIfEmpty(utils.DereferencePtr(line.ProductId)),
			Quantity:   line.Quantity,
			CostPrice:  cost,
			Total:      amount.Total,
			CreatedAt:  ts,
		})
	}
	totals := utils.AggregateLineAmounts(amounts)

	purchase := &Purchase{
		ID:             id,
		BusinessId:     businessId,
		SupplierId:     supplierId,
		PurchaseNumber: number,
		Subtotal:       totals.Subtotal,
		TotalAmount:    totals.Total,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	return purchase, items, nil
}

func validateLine(index int, quantity int, price decimal.Decimal, priceField string, rate *decimal.Decimal) error {
	if quantity < 1 {
		return utils.NewValidationError(utils.ErrInvalidQuantity, fmt.Sprintf("items[%d].quantity", index))
	}
	if price.IsNegative() {
		return utils.NewValidationError(utils.ErrNegativePrice, fmt.Sprintf("items[%d].%s", index, priceField))
	}
	if rate != nil && rate.IsNegative() {
		return utils.NewValidationError(utils.ErrNegativeTaxRate, fmt.Sprintf("items[%d].gst_rate", index))
	}
	return nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ResolveInvoiceSnapshots checks that the customer and every referenced
// product belong to the caller, then fills in the price and gst rate of lines
// that name a product but did not carry them.
func ResolveInvoiceSnapshots(ctx context.Context, store *Store, businessId string, input *NewInvoice) error {
	if input == nil {
		return nil
	}
	if customerId := utils.DereferencePtr(input.CustomerId); customerId != "" {
		if err := validateResourceId(ctx, store.Customers, businessId, customerId, "customer_id", "find_customers"); err != nil {
			return err
		}
	}
	var ids []string
	for _, line := range input.Items {
		if line != nil && utils.DereferencePtr(line.ProductId) != "" {
			ids = append(ids, *line.ProductId)
		}
	}
	products, err := loadProducts(ctx, store, businessId, ids)
	if err != nil {
		return err
	}
	for i, line := range input.Items {
		if line == nil || utils.DereferencePtr(line.ProductId) == "" {
			continue
		}
		product, ok := products[*line.ProductId]
		if !ok {
			return utils.NewValidationError(utils.ErrUnknownProduct, fmt.Sprintf("items[%d].product_id", i))
		}
		if line.Price == nil {
			price := product.SellingPrice
			line.Price = &price
		}
		if line.GstRate == nil {
			rate := product.GstRate
			line.GstRate = &rate
		}
	}
	return nil
}

// ResolvePurchaseSnapshots checks the supplier and products like
// ResolveInvoiceSnapshots and fills in missing cost prices from the product's
// purchase price.
func ResolvePurchaseSnapshots(ctx context.Context, store *Store, businessId string, input *NewPurchase) error {
	if input == nil {
		return nil
	}
	if supplierId := utils.DereferencePtr(input.SupplierId); supplierId != "" {
		if err := validateResourceId(ctx, store.Suppliers, businessId, supplierId, "supplier_id", "find_suppliers"); err != nil {
			return err
		}
	}
	var ids []string
	for _, line := range input.Items {
		if line != nil && utils.DereferencePtr(line.ProductId) != "" {
			ids = append(ids, *line.ProductId)
		}
	}
	products, err := loadProducts(ctx, store, businessId, ids)
	if err != nil {
		return err
	}
	for i, line := range input.Items {
		if line == nil || utils.DereferencePtr(line.ProductId) == "" {
			continue
		}
		product, ok := products[*line.ProductId]
		if !ok {
			return utils.NewValidationError(utils.ErrUnknownProduct, fmt.Sprintf("items[%d].product_id", i))
		}
		if line.CostPrice == nil {
			cost := product.PurchasePrice
			line.CostPrice = &cost
		}
	}
	return nil
}

// validateResourceId rejects an id that is missing or owned by another business.
func validateResourceId[T Row](ctx context.Context, table Table[T], businessId string, id string, field string, op string) error {
	rows, err := table.Find(ctx, ById(businessId, id))
	if err != nil {
		return utils.WrapStoreError(op, err)
	}
	if len(rows) == 0 {
		return utils.NewValidationError(utils.ErrUnknownCounterparty, field)
	}
	return nil
}

func loadProducts(ctx context.Context, store *Store, businessId string, ids []string) (map[string]*Product, error) {
	result := make(map[string]*Product)
	ids = utils.UniqueSlice(ids)
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := store.Products.Find(ctx, Filter{BusinessId: businessId, Ids: ids})
	if err != nil {
		return nil, utils.WrapStoreError("find_products", err)
	}
	for _, p := range rows {
		result[p.ID] = p
	}
	return result, nil
}
