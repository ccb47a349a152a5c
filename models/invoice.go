package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	BusinessId    string          `gorm:"index;not null;size:36" json:"business_id"`
	CustomerId    *string         `gorm:"index;size:36" json:"customer_id"`
	InvoiceNumber string          `gorm:"size:255;not null" json:"invoice_number"`
	PaymentStatus PaymentStatus   `gorm:"type:enum('pending','paid','overdue','cancelled');not null;default:pending" json:"payment_status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	GstTotal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"gst_total"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items         []*InvoiceItem  `gorm:"foreignKey:InvoiceId;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceItem keeps the price and gst rate the product had when the line was written.
type InvoiceItem struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	BusinessId string          `gorm:"index;not null;size:36" json:"business_id"`
	InvoiceId  string          `gorm:"index;not null;size:36" json:"invoice_id"`
	Position   int             `gorm:"not null;default:0" json:"position"`
	ProductId  *string         `gorm:"index;size:36" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	GstRate    decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"gst_rate"`
	Total      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewInvoice is the request shape. Subtotal, GstTotal, TotalAmount and item
// totals are accepted for compatibility and then ignored.
type NewInvoice struct {
	CustomerId    *string           `json:"customer_id"`
	InvoiceNumber string            `json:"invoice_number"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	GstTotal      decimal.Decimal   `json:"gst_total"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Items         []*NewInvoiceItem `json:"items"`
}

// NewInvoiceItem carries the price/gst pair picked when the product was
// selected. Either may be omitted to take the product's current value.
type NewInvoiceItem struct {
	ProductId *string          `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
	GstRate   *decimal.Decimal `json:"gst_rate"`
	Total     decimal.Decimal  `json:"total"`
}

func (i Invoice) GetId() string           { return i.ID }
func (i Invoice) GetBusinessId() string   { return i.BusinessId }
func (i Invoice) GetParentId() string     { return "" }
func (i Invoice) GetCreatedAt() time.Time { return i.CreatedAt }
func (i Invoice) GetUpdatedAt() time.Time { return i.UpdatedAt }

func (i InvoiceItem) GetId() string           { return i.ID }
func (i InvoiceItem) GetBusinessId() string   { return i.BusinessId }
func (i InvoiceItem) GetParentId() string     { return i.InvoiceId }
func (i InvoiceItem) GetCreatedAt() time.Time { return i.CreatedAt }

var invoiceDocument = documentSpec[Invoice, InvoiceItem]{
	kind:          DocumentKindInvoice,
	headers:       func(s *Store) Table[Invoice] { return s.Invoices },
	items:         func(s *Store) Table[InvoiceItem] { return s.InvoiceItems },
	updateColumns: []string{"customer_id", "invoice_number", "payment_status", "subtotal", "gst_total", "total_amount", "updated_at"},
	// a sale takes units out of stock
	stockEffect: func(item *InvoiceItem) (string, int) {
		return utils.DereferencePtr(item.ProductId), -item.Quantity
	},
}

func (w *DocumentWriter) CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	var invoice *Invoice
	err := w.observe(ctx, DocumentKindInvoice, documentOpCreate, func(ctx context.Context) error {
		businessId, err := utils.RequireBusinessId(ctx)
		if err != nil {
			return err
		}
		if err := ResolveInvoiceSnapshots(ctx, w.store, businessId, input); err != nil {
			return err
		}
		header, items, err := BuildInvoice(businessId, "", input)
		if err != nil {
			return err
		}
		if err := createDocument(ctx, w, invoiceDocument, header, items); err != nil {
			return err
		}
		header.Items = items
		invoice = header
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.publish(ctx, newDocumentEvent(DocumentKindInvoice, DocumentActionCreated, invoice.BusinessId, invoice.ID, invoice.InvoiceNumber, invoice.TotalAmount))
	return invoice, nil
}

// UpdateInvoice rewrites the header and replaces every item.
func (w *DocumentWriter) UpdateInvoice(ctx context.Context, id string, input *NewInvoice) (*Invoice, error) {
	var invoice *Invoice
	err := w.observe(ctx, DocumentKindInvoice, documentOpUpdate, func(ctx context.Context) error {
		businessId, err := utils.RequireBusinessId(ctx)
		if err != nil {
			return err
		}
		if id == "" {
			return utils.ErrUnauthorized
		}
		if err := ResolveInvoiceSnapshots(ctx, w.store, businessId, input); err != nil {
			return err
		}
		header, items, err := BuildInvoice(businessId, id, input)
		if err != nil {
			return err
		}
		updated, err := updateDocument(ctx, w, invoiceDocument, businessId, id, header, items)
		if err != nil {
			return err
		}
		updated.Items = items
		invoice = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.publish(ctx, newDocumentEvent(DocumentKindInvoice, DocumentActionUpdated, invoice.BusinessId, invoice.ID, invoice.InvoiceNumber, invoice.TotalAmount))
	return invoice, nil
}

func (w *DocumentWriter) DeleteInvoice(ctx context.Context, id string) error {
	var deleted *Invoice
	err := w.observe(ctx, DocumentKindInvoice, documentOpDelete, func(ctx context.Context) error {
		businessId, err := utils.RequireBusinessId(ctx)
		if err != nil {
			return err
		}
		deleted, err = deleteDocument(ctx, w, invoiceDocument, businessId, id)
		return err
	})
	if err != nil {
		return err
	}
	w.publish(ctx, newDocumentEvent(DocumentKindInvoice, DocumentActionDeleted, deleted.BusinessId, deleted.ID, deleted.InvoiceNumber, deleted.TotalAmount))
	return nil
}

// GetInvoice returns the invoice with its items (may return RecordNotFound).
// A reader racing an update can see an empty item list.
func GetInvoice(ctx context.Context, store *Store, id string) (*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	invoice, err := findOwned(ctx, store.Invoices, businessId, id, "find_invoice")
	if err != nil {
		return nil, err
	}
	items, err := store.InvoiceItems.Find(ctx, ByParent(businessId, id))
	if err != nil {
		return nil, utils.WrapStoreError("find_invoice_items", err)
	}
	invoice.Items = items
	return invoice, nil
}

// ListInvoices returns headers only, newest first, optionally within an inclusive window.
func ListInvoices(ctx context.Context, store *Store, from *time.Time, to *time.Time) ([]*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.Invoices.Find(ctx, Filter{BusinessId: businessId, From: from, To: to})
	if err != nil {
		return nil, utils.WrapStoreError("find_invoices", err)
	}
	return rows, nil
}
