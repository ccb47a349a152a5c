package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("store unavailable")

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func sp(s string) *string {
	return &s
}

func ownerCtx(businessId string) context.Context {
	return utils.SetBusinessIdInContext(context.Background(), businessId)
}

func newWriter(store *models.Store, policy config.StockReversalPolicy) *models.DocumentWriter {
	return models.NewDocumentWriter(store, models.WithStockReversal(policy), models.WithAtomicWrites(false))
}

// failingTable passes everything through to Table except the operations told to fail.
type failingTable[T models.Row] struct {
	models.Table[T]
	failFind   bool
	failInsert bool
	failUpdate bool
	failDelete bool
}

func (f *failingTable[T]) Find(ctx context.Context, filter models.Filter) ([]*T, error) {
	if f.failFind {
		return nil, errStoreDown
	}
	return f.Table.Find(ctx, filter)
}

func (f *failingTable[T]) Insert(ctx context.Context, rows ...*T) ([]*T, error) {
	if f.failInsert {
		return nil, errStoreDown
	}
	return f.Table.Insert(ctx, rows...)
}

func (f *failingTable[T]) Update(ctx context.Context, filter models.Filter, patch *T, columns ...string) (*T, error) {
	if f.failUpdate {
		return nil, errStoreDown
	}
	return f.Table.Update(ctx, filter, patch, columns...)
}

func (f *failingTable[T]) Delete(ctx context.Context, filter models.Filter) (int64, error) {
	if f.failDelete {
		return 0, errStoreDown
	}
	return f.Table.Delete(ctx, filter)
}

type failingLedger struct{}

func (failingLedger) AdjustStock(ctx context.Context, businessId string, productId string, delta int) error {
	return errStoreDown
}

type recordingPublisher struct {
	events []models.DocumentEvent
	err    error
}

func (p *recordingPublisher) PublishDocumentEvent(ctx context.Context, event models.DocumentEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func mustCreateProduct(t *testing.T, ctx context.Context, store *models.Store, name string, stock int) *models.Product {
	t.Helper()
	p, err := models.CreateProduct(ctx, store, &models.NewProduct{
		Name:              name,
		PurchasePrice:     d("6.00"),
		SellingPrice:      d("10.00"),
		GstRate:           d("18"),
		StockQuantity:     stock,
		LowStockThreshold: 5,
	})
	if err != nil {
		t.Fatalf("CreateProduct(%s): %v", name, err)
	}
	return p
}

func mustCreateSupplier(t *testing.T, ctx context.Context, store *models.Store, name string) *models.Supplier {
	t.Helper()
	s, err := models.CreateSupplier(ctx, store, &models.NewSupplier{Name: name})
	if err != nil {
		t.Fatalf("CreateSupplier(%s): %v", name, err)
	}
	return s
}

func mustCreateCustomer(t *testing.T, ctx context.Context, store *models.Store, name string) *models.Customer {
	t.Helper()
	c, err := models.CreateCustomer(ctx, store, &models.NewCustomer{Name: name})
	if err != nil {
		t.Fatalf("CreateCustomer(%s): %v", name, err)
	}
	return c
}

func productStock(t *testing.T, ctx context.Context, store *models.Store, id string) int {
	t.Helper()
	p, err := models.GetProduct(ctx, store, id)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	return p.StockQuantity
}

func scenarioAInvoice() *models.NewInvoice {
	return &models.NewInvoice{
		InvoiceNumber: "INV-001",
		Items: []*models.NewInvoiceItem{
			{Quantity: 2, Price: dp("10.00"), GstRate: dp("10")},
			{Quantity: 1, Price: dp("5.00"), GstRate: dp("0")},
		},
	}
}

func countItems(t *testing.T, ctx context.Context, store *models.Store, businessId string, invoiceId string) int {
	t.Helper()
	items, err := store.InvoiceItems.Find(ctx, models.ByParent(businessId, invoiceId))
	if err != nil {
		t.Fatalf("find items: %v", err)
	}
	return len(items)
}
