package models_test

import (
	"errors"
	"testing"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

func TestCreateInvoice_ComputesTotalsAndMovesStock(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	pen := mustCreateProduct(t, ctx, store, "Pen", 20)
	pub := &recordingPublisher{}
	w := models.NewDocumentWriter(store, models.WithStockReversal(config.StockReversalNone), models.WithAtomicWrites(false), models.WithEventPublisher(pub))

	input := scenarioAInvoice()
	input.Items[0].ProductId = sp(pen.ID)
	inv, err := w.CreateInvoice(ctx, input)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if !inv.Subtotal.Equal(d("25.00")) || !inv.GstTotal.Equal(d("2.00")) || !inv.TotalAmount.Equal(d("27.00")) {
		t.Fatalf("totals = %s/%s/%s, want 25.00/2.00/27.00", inv.Subtotal, inv.GstTotal, inv.TotalAmount)
	}
	if inv.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("status = %q, want pending", inv.PaymentStatus)
	}

	got, err := models.GetInvoice(ctx, store, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Position != 0 || !got.Items[0].Total.Equal(d("22.00")) {
		t.Fatalf("first item = pos %d total %s", got.Items[0].Position, got.Items[0].Total)
	}
	if n := productStock(t, ctx, store, pen.ID); n != 18 {
		t.Fatalf("stock = %d, want 18", n)
	}
	if len(pub.events) != 1 || pub.events[0].Action != models.DocumentActionCreated || pub.events[0].DocumentId != inv.ID {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestCreatePurchase_NoTaxAndAddsStock(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	pen := mustCreateProduct(t, ctx, store, "Pen", 3)
	supplier := mustCreateSupplier(t, ctx, store, "Acme")
	w := newWriter(store, config.StockReversalNone)

	p, err := w.CreatePurchase(ctx, &models.NewPurchase{
		SupplierId:     sp(supplier.ID),
		PurchaseNumber: "PO-1",
		TotalAmount:    d("999"),
		Items: []*models.NewPurchaseItem{
			{ProductId: sp(pen.ID), Quantity: 4, CostPrice: dp("3.50")},
			{Quantity: 10, CostPrice: dp("1.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if !p.TotalAmount.Equal(d("24.00")) || !p.Subtotal.Equal(d("24.00")) {
		t.Fatalf("total = %s, want 24.00", p.TotalAmount)
	}
	if n := productStock(t, ctx, store, pen.ID); n != 7 {
		t.Fatalf("stock = %d, want 7", n)
	}
}

func TestCreateInvoice_IgnoresClientTotals(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	w := newWriter(store, config.StockReversalNone)

	input := scenarioAInvoice()
	input.Subtotal = d("1")
	input.GstTotal = d("1")
	input.TotalAmount = d("1")
	input.Items[0].Total = d("1000")
	inv, err := w.CreateInvoice(ctx, input)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if !inv.TotalAmount.Equal(d("27.00")) || !inv.Items[0].Total.Equal(d("22.00")) {
		t.Fatalf("client totals leaked: total %s item %s", inv.TotalAmount, inv.Items[0].Total)
	}
}

func TestCreateInvoice_ResolvesProductSnapshot(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	pen := mustCreateProduct(t, ctx, store, "Pen", 10)
	w := newWriter(store, config.StockReversalNone)

	inv, err := w.CreateInvoice(ctx, &models.NewInvoice{
		InvoiceNumber: "INV-2",
		Items:         []*models.NewInvoiceItem{{ProductId: sp(pen.ID), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if !inv.Items[0].Price.Equal(d("10.00")) || !inv.Items[0].GstRate.Equal(d("18")) {
		t.Fatalf("snapshot = %s @ %s", inv.Items[0].Price, inv.Items[0].GstRate)
	}
	if !inv.TotalAmount.Equal(d("11.80")) {
		t.Fatalf("total = %s, want 11.80", inv.TotalAmount)
	}

	// repricing the product leaves the stored line alone
	if _, err := models.UpdateProduct(ctx, store, pen.ID, &models.NewProduct{Name: "Pen", SellingPrice: d("99")}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	got, err := models.GetInvoice(ctx, store, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if !got.Items[0].Price.Equal(d("10.00")) {
		t.Fatalf("stored price changed to %s", got.Items[0].Price)
	}

	_, err = w.CreateInvoice(ctx, &models.NewInvoice{
		InvoiceNumber: "INV-3",
		Items:         []*models.NewInvoiceItem{{ProductId: sp("missing"), Quantity: 1}},
	})
	if !errors.Is(err, utils.ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}
}

func TestCreateInvoice_ValidationWritesNothing(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	w := newWriter(store, config.StockReversalNone)

	_, err := w.CreateInvoice(ctx, &models.NewInvoice{InvoiceNumber: "INV-1"})
	if !errors.Is(err, utils.ErrValidationFailed) || !errors.Is(err, utils.ErrEmptyItems) {
		t.Fatalf("err = %v, want empty items validation", err)
	}
	rows, _ := models.ListInvoices(ctx, store, nil, nil)
	if len(rows) != 0 {
		t.Fatalf("invoices = %d, want 0", len(rows))
	}
}

func TestCreateInvoice_MissingIdentity(t *testing.T) {
	w := newWriter(models.NewMemoryStore(), config.StockReversalNone)
	_, err := w.CreateInvoice(ownerCtx(""), scenarioAInvoice())
	if !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestCreateInvoice_ItemInsertFailureIsPartial(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	store.InvoiceItems = &failingTable[models.InvoiceItem]{Table: store.InvoiceItems, failInsert: true}
	pub := &recordingPublisher{}
	w := models.NewDocumentWriter(store, models.WithAtomicWrites(false), models.WithEventPublisher(pub))

	_, err := w.CreateInvoice(ctx, scenarioAInvoice())
	var partial *utils.PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialWriteError", err)
	}
	if partial.Step != utils.StepInsertItems || partial.DocumentId == "" {
		t.Fatalf("partial = %+v", partial)
	}
	// the header stays behind for reconciliation
	if _, err := models.GetInvoice(ctx, store, partial.DocumentId); err != nil {
		t.Fatalf("header missing after partial write: %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("published %d events for a failed write", len(pub.events))
	}
}

func TestCreateInvoice_StockFailureIsPartial(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	pen := mustCreateProduct(t, ctx, store, "Pen", 5)
	store.Stock = failingLedger{}
	w := newWriter(store, config.StockReversalNone)

	input := scenarioAInvoice()
	input.Items[0].ProductId = sp(pen.ID)
	_, err := w.CreateInvoice(ctx, input)
	var partial *utils.PartialWriteError
	if !errors.As(err, &partial) || partial.Step != utils.StepAdjustStock {
		t.Fatalf("err = %v, want partial adjust_stock", err)
	}
}

func TestCreateInvoice_HeaderFailureIsStoreError(t *testing.T) {
	store := models.NewMemoryStore()
	store.Invoices = &failingTable[models.Invoice]{Table: store.Invoices, failInsert: true}
	w := newWriter(store, config.StockReversalNone)

	_, err := w.CreateInvoice(ownerCtx("biz-1"), scenarioAInvoice())
	var storeErr *utils.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want StoreError", err)
	}
	var partial *utils.PartialWriteError
	if errors.As(err, &partial) {
		t.Fatalf("header failure reported as partial write")
	}
}

func TestUpdateInvoice_ReplacesItems(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	w := newWriter(store, config.StockReversalNone)

	inv, err := w.CreateInvoice(ctx, scenarioAInvoice())
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	updated, err := w.UpdateInvoice(ctx, inv.ID, &models.NewInvoice{
		InvoiceNumber: "INV-001",
		PaymentStatus: models.PaymentStatusPaid,
		Items:         []*models.NewInvoiceItem{{Quantity: 3, Price: dp("4.00")}},
	})
	if err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}
	if !updated.TotalAmount.Equal(d("12.00")) || updated.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("updated = %s %s", updated.TotalAmount, updated.PaymentStatus)
	}
	if !updated.CreatedAt.Equal(inv.CreatedAt) {
		t.Fatalf("created_at moved from %v to %v", inv.CreatedAt, updated.CreatedAt)
	}
	if n := countItems(t, ctx, store, "biz-1", inv.ID); n != 1 {
		t.Fatalf("items = %d, want 1", n)
	}
}

func TestUpdateInvoice_DeleteItemsFailure(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	w := newWriter(store, config.StockReversalNone)
	inv, err := w.CreateInvoice(ctx, scenarioAInvoice())
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	items := store.InvoiceItems
	store.InvoiceItems = &failingTable[models.InvoiceItem]{Table: items, failDelete: true}
	_, err = w.UpdateInvoice(ctx, inv.ID, &models.NewInvoice{
		InvoiceNumber: "INV-001",
		Items:         []*models.NewInvoiceItem{{Quantity: 1, Price: dp("1.00")}, {Quantity: 1, Price: dp("1.00")}, {Quantity: 1, Price: dp("1.00")}},
	})
	var partial *utils.PartialWriteError
	if !errors.As(err, &partial) || partial.Step != utils.StepDeleteItems {
		t.Fatalf("err = %v, want partial delete_items", err)
	}
	// the old two items are still there and none of the three new ones
	if n := countItems(t, ctx, store, "biz-1", inv.ID); n != 2 {
		t.Fatalf("items = %d, want 2", n)
	}
}

func TestUpdateInvoice_ForeignOwnerIsUnauthorized(t *testing.T) {
	store := models.NewMemoryStore()
	owner := ownerCtx("biz-1")
	w := newWriter(store, config.StockReversalNone)
	inv, err := w.CreateInvoice(owner, scenarioAInvoice())
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	intruder := ownerCtx("biz-2")
	_, err = w.UpdateInvoice(intruder, inv.ID, &models.NewInvoice{
		InvoiceNumber: "HACKED",
		Items:         []*models.NewInvoiceItem{{Quantity: 1, Price: dp("0")}},
	})
	if !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("update err = %v, want ErrUnauthorized", err)
	}
	if err := w.DeleteInvoice(intruder, inv.ID); !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("delete err = %v, want ErrUnauthorized", err)
	}
	if _, err := models.GetInvoice(intruder, store, inv.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("foreign read err = %v, want not found", err)
	}

	got, err := models.GetInvoice(owner, store, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.InvoiceNumber != "INV-001" || len(got.Items) != 2 || !got.TotalAmount.Equal(d("27.00")) {
		t.Fatalf("document changed: %s items=%d total=%s", got.InvoiceNumber, len(got.Items), got.TotalAmount)
	}
}

func TestUpdateInvoice_MissingIsUnauthorized(t *testing.T) {
	w := newWriter(models.NewMemoryStore(), config.StockReversalNone)
	_, err := w.UpdateInvoice(ownerCtx("biz-1"), "nope", scenarioAInvoice())
	if !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestDeleteInvoice_CascadesItems(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	w := newWriter(store, config.StockReversalNone)
	inv, err := w.CreateInvoice(ctx, scenarioAInvoice())
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if err := w.DeleteInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("DeleteInvoice: %v", err)
	}
	if n := countItems(t, ctx, store, "biz-1", inv.ID); n != 0 {
		t.Fatalf("items = %d after delete", n)
	}
	if _, err := models.GetInvoice(ctx, store, inv.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestStockReversalPolicy(t *testing.T) {
	tests := []struct {
		policy    config.StockReversalPolicy
		afterEdit int
		afterDel  int
	}{
		// none: edit applies the new sale on top of the old one, delete gives nothing back
		{config.StockReversalNone, 5, 5},
		// restore: edit swaps 2 units for 3, delete gives the 3 back
		{config.StockReversalRestore, 7, 10},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			store := models.NewMemoryStore()
			ctx := ownerCtx("biz-1")
			pen := mustCreateProduct(t, ctx, store, "Pen", 10)
			w := newWriter(store, tt.policy)

			inv, err := w.CreateInvoice(ctx, &models.NewInvoice{
				InvoiceNumber: "INV-1",
				Items:         []*models.NewInvoiceItem{{ProductId: sp(pen.ID), Quantity: 2}},
			})
			if err != nil {
				t.Fatalf("CreateInvoice: %v", err)
			}
			if n := productStock(t, ctx, store, pen.ID); n != 8 {
				t.Fatalf("after create = %d, want 8", n)
			}
			_, err = w.UpdateInvoice(ctx, inv.ID, &models.NewInvoice{
				InvoiceNumber: "INV-1",
				Items:         []*models.NewInvoiceItem{{ProductId: sp(pen.ID), Quantity: 3}},
			})
			if err != nil {
				t.Fatalf("UpdateInvoice: %v", err)
			}
			if n := productStock(t, ctx, store, pen.ID); n != tt.afterEdit {
				t.Fatalf("after edit = %d, want %d", n, tt.afterEdit)
			}
			if err := w.DeleteInvoice(ctx, inv.ID); err != nil {
				t.Fatalf("DeleteInvoice: %v", err)
			}
			if n := productStock(t, ctx, store, pen.ID); n != tt.afterDel {
				t.Fatalf("after delete = %d, want %d", n, tt.afterDel)
			}
		})
	}
}

func TestDeletePurchase_RestoreRemovesStock(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	pen := mustCreateProduct(t, ctx, store, "Pen", 0)
	supplier := mustCreateSupplier(t, ctx, store, "Acme")
	w := newWriter(store, config.StockReversalRestore)

	p, err := w.CreatePurchase(ctx, &models.NewPurchase{
		SupplierId:     sp(supplier.ID),
		PurchaseNumber: "PO-1",
		Items:          []*models.NewPurchaseItem{{ProductId: sp(pen.ID), Quantity: 6}},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if !p.Items[0].CostPrice.Equal(d("6.00")) {
		t.Fatalf("cost snapshot = %s, want 6.00", p.Items[0].CostPrice)
	}
	if err := w.DeletePurchase(ctx, p.ID); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}
	if n := productStock(t, ctx, store, pen.ID); n != 0 {
		t.Fatalf("stock = %d, want 0", n)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	store := models.NewMemoryStore()
	pub := &recordingPublisher{err: errStoreDown}
	w := models.NewDocumentWriter(store, models.WithAtomicWrites(false), models.WithEventPublisher(pub))

	if _, err := w.CreateInvoice(ownerCtx("biz-1"), scenarioAInvoice()); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
}

func TestListInvoices_OwnerScoped(t *testing.T) {
	store := models.NewMemoryStore()
	w := newWriter(store, config.StockReversalNone)
	for _, biz := range []string{"biz-1", "biz-1", "biz-2"} {
		if _, err := w.CreateInvoice(ownerCtx(biz), scenarioAInvoice()); err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
	}
	rows, err := models.ListInvoices(ownerCtx("biz-1"), store, nil, nil)
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.BusinessId != "biz-1" {
			t.Fatalf("leaked row of %s", r.BusinessId)
		}
	}
}

func TestCreateDocument_RejectsForeignAndUnknownReferences(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	other := ownerCtx("biz-2")
	ownSupplier := mustCreateSupplier(t, ctx, store, "Acme")
	foreignSupplier := mustCreateSupplier(t, other, store, "Other Acme")
	foreignCustomer := mustCreateCustomer(t, other, store, "Other Asha")
	foreignProduct := mustCreateProduct(t, other, store, "Other Pen", 10)
	w := newWriter(store, config.StockReversalNone)

	tests := []struct {
		name   string
		write  func() error
		reason error
		field  string
	}{
		{"invoice with foreign customer", func() error {
			_, err := w.CreateInvoice(ctx, &models.NewInvoice{
				CustomerId:    sp(foreignCustomer.ID),
				InvoiceNumber: "INV-1",
				Items:         []*models.NewInvoiceItem{{Quantity: 1, Price: dp("10"), GstRate: dp("0")}},
			})
			return err
		}, utils.ErrUnknownCounterparty, "customer_id"},
		{"invoice with unknown customer", func() error {
			_, err := w.CreateInvoice(ctx, &models.NewInvoice{
				CustomerId:    sp("does-not-exist"),
				InvoiceNumber: "INV-1",
				Items:         []*models.NewInvoiceItem{{Quantity: 1, Price: dp("10"), GstRate: dp("0")}},
			})
			return err
		}, utils.ErrUnknownCounterparty, "customer_id"},
		{"invoice with priced foreign product", func() error {
			_, err := w.CreateInvoice(ctx, &models.NewInvoice{
				InvoiceNumber: "INV-1",
				Items:         []*models.NewInvoiceItem{{ProductId: sp(foreignProduct.ID), Quantity: 1, Price: dp("10"), GstRate: dp("0")}},
			})
			return err
		}, utils.ErrUnknownProduct, "items[0].product_id"},
		{"purchase with foreign supplier", func() error {
			_, err := w.CreatePurchase(ctx, &models.NewPurchase{
				SupplierId:     sp(foreignSupplier.ID),
				PurchaseNumber: "PO-1",
				Items:          []*models.NewPurchaseItem{{Quantity: 1, CostPrice: dp("4")}},
			})
			return err
		}, utils.ErrUnknownCounterparty, "supplier_id"},
		{"purchase with unknown supplier", func() error {
			_, err := w.CreatePurchase(ctx, &models.NewPurchase{
				SupplierId:     sp("does-not-exist"),
				PurchaseNumber: "PO-1",
				Items:          []*models.NewPurchaseItem{{Quantity: 1, CostPrice: dp("4")}},
			})
			return err
		}, utils.ErrUnknownCounterparty, "supplier_id"},
		{"purchase with priced unknown product", func() error {
			_, err := w.CreatePurchase(ctx, &models.NewPurchase{
				SupplierId:     sp(ownSupplier.ID),
				PurchaseNumber: "PO-1",
				Items: []*models.NewPurchaseItem{
					{Quantity: 1, CostPrice: dp("4")},
					{ProductId: sp("does-not-exist"), Quantity: 1, CostPrice: dp("4")},
				},
			})
			return err
		}, utils.ErrUnknownProduct, "items[1].product_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.write()
			var verr *utils.ValidationError
			if !errors.As(err, &verr) || !errors.Is(err, tt.reason) || verr.Field != tt.field {
				t.Fatalf("err = %v, want %v on %s", err, tt.reason, tt.field)
			}
		})
	}

	invoices, err := models.ListInvoices(ctx, store, nil, nil)
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	purchases, err := models.ListPurchases(ctx, store, nil, nil)
	if err != nil {
		t.Fatalf("ListPurchases: %v", err)
	}
	if len(invoices) != 0 || len(purchases) != 0 {
		t.Fatalf("rejected writes stored %d invoices and %d purchases", len(invoices), len(purchases))
	}
	if n := productStock(t, other, store, foreignProduct.ID); n != 10 {
		t.Fatalf("foreign stock = %d, want 10", n)
	}
}

func TestUpdateInvoice_RejectsForeignCustomer(t *testing.T) {
	store := models.NewMemoryStore()
	ctx := ownerCtx("biz-1")
	foreign := mustCreateCustomer(t, ownerCtx("biz-2"), store, "Other Asha")
	w := newWriter(store, config.StockReversalNone)

	inv, err := w.CreateInvoice(ctx, scenarioAInvoice())
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	input := scenarioAInvoice()
	input.CustomerId = sp(foreign.ID)
	if _, err := w.UpdateInvoice(ctx, inv.ID, input); !errors.Is(err, utils.ErrUnknownCounterparty) {
		t.Fatalf("err = %v, want ErrUnknownCounterparty", err)
	}
	got, err := models.GetInvoice(ctx, store, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.CustomerId != nil || len(got.Items) != 2 {
		t.Fatalf("invoice changed: customer=%v items=%d", got.CustomerId, len(got.Items))
	}
}

func TestCreateInvoice_ZeroValueLine(t *testing.T) {
	tests := []struct {
		name  string
		price *decimal.Decimal
		rate  *decimal.Decimal
	}{
		{"explicit zeros", dp("0"), dp("0")},
		{"zero price with tax", dp("0"), dp("18")},
		{"nil price and rate", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := models.NewMemoryStore()
			ctx := ownerCtx("biz-1")
			w := newWriter(store, config.StockReversalNone)
			inv, err := w.CreateInvoice(ctx, &models.NewInvoice{
				InvoiceNumber: "INV-0",
				Items:         []*models.NewInvoiceItem{{Quantity: 1, Price: tt.price, GstRate: tt.rate}},
			})
			if err != nil {
				t.Fatalf("CreateInvoice: %v", err)
			}
			if !inv.Subtotal.IsZero() || !inv.GstTotal.IsZero() || !inv.TotalAmount.IsZero() {
				t.Fatalf("totals = %s/%s/%s, want 0/0/0", inv.Subtotal, inv.GstTotal, inv.TotalAmount)
			}
			if len(inv.Items) != 1 || !inv.Items[0].Total.IsZero() {
				t.Fatalf("items = %+v", inv.Items)
			}
		})
	}
}

func TestCreatePurchase_RejectsInvalidLines(t *testing.T) {
	tests := []struct {
		name   string
		line   *models.NewPurchaseItem
		reason error
		field  string
	}{
		{"zero quantity", &models.NewPurchaseItem{Quantity: 0, CostPrice: dp("4")}, utils.ErrInvalidQuantity, "items[0].quantity"},
		{"negative quantity", &models.NewPurchaseItem{Quantity: -2, CostPrice: dp("4")}, utils.ErrInvalidQuantity, "items[0].quantity"},
		{"negative cost", &models.NewPurchaseItem{Quantity: 1, CostPrice: dp("-0.01")}, utils.ErrNegativePrice, "items[0].cost_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := models.NewMemoryStore()
			ctx := ownerCtx("biz-1")
			supplier := mustCreateSupplier(t, ctx, store, "Acme")
			w := newWriter(store, config.StockReversalNone)
			_, err := w.CreatePurchase(ctx, &models.NewPurchase{
				SupplierId:     sp(supplier.ID),
				PurchaseNumber: "PO-1",
				Items:          []*models.NewPurchaseItem{tt.line},
			})
			var verr *utils.ValidationError
			if !errors.As(err, &verr) || !errors.Is(err, tt.reason) || verr.Field != tt.field {
				t.Fatalf("err = %v, want %v on %s", err, tt.reason, tt.field)
			}
			purchases, err := models.ListPurchases(ctx, store, nil, nil)
			if err != nil {
				t.Fatalf("ListPurchases: %v", err)
			}
			if len(purchases) != 0 {
				t.Fatalf("rejected purchase stored")
			}
		})
	}
}
