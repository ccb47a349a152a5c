package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

// Purchase is a supplier bill. Purchases carry no tax, so Subtotal and
// TotalAmount are always equal.
type Purchase struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	BusinessId     string          `gorm:"index;not null;size:36" json:"business_id"`
	SupplierId     *string         `gorm:"index;size:36" json:"supplier_id"`
	PurchaseNumber string          `gorm:"size:255;not null" json:"purchase_number"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items          []*PurchaseItem `gorm:"foreignKey:PurchaseId;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type PurchaseItem struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	BusinessId string          `gorm:"index;not null;size:36" json:"business_id"`
	PurchaseId string          `gorm:"index;not null;size:36" json:"purchase_id"`
	Position   int             `gorm:"not null;default:0" json:"position"`
	ProductId  *string         `gorm:"index;size:36" json:"product_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	CostPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost_price"`
	Total      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

type NewPurchase struct {
	SupplierId     *string            `json:"supplier_id"`
	PurchaseNumber string             `json:"purchase_number"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Items          []*NewPurchaseItem `json:"items"`
}

type NewPurchaseItem struct {
	ProductId *string          `json:"product_id"`
	Quantity  int              `json:"quantity"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	Total     decimal.Decimal  `json:"total"`
}

func (p Purchase) GetId() string           { return p.ID }
func (p Purchase) GetBusinessId() string   { return p.BusinessId }
func (p Purchase) GetParentId() string     { return "" }
func (p Purchase) GetCreatedAt() time.Time { return p.CreatedAt }
func (p Purchase) GetUpdatedAt() time.Time { return p.UpdatedAt }

func (i PurchaseItem) GetId() string           { return i.ID }
func (i PurchaseItem) GetBusinessId() string   { return i.BusinessId }
func (i PurchaseItem) GetParentId() string     { return i.PurchaseId }
func (i PurchaseItem) GetCreatedAt() time.Time { return i.CreatedAt }

var purchaseDocument = documentSpec[Purchase, PurchaseItem]{
	kind:          DocumentKindPurchase,
	headers:       func(s *Store) Table[Purchase] { return s.Purchases },
	items:         func(s *Store) Table[PurchaseItem] { return s.PurchaseItems },
	updateColumns: []string{"supplier_id", "purchase_number", "subtotal", "total_amount", "updated_at"},
	stockEffect: func(item *PurchaseItem) (string, int) {
		return utils.DereferencePtr(item.ProductId), item.Quantity
	},
}

func (w *DocumentWriter) CreatePurchase(ctx context.Context, input *NewPurchase) (*Purchase, error) {
	var purchase *Purchase
	err := w.observe(ctx, DocumentKindPurchase, documentOpCreate, func(ctx context.Context) error {
		businessId, err := utils.RequireBusinessId(ctx)
		if err != nil {
			return err
		}
		if err := ResolvePurchaseSnapshots(ctx, w.store, businessId, input); err != nil {
			return err
		}
		header, items, err := BuildPurchase(businessId, "", input)
		if err != nil {
			return err
		}
		if err := createDocument(ctx, w, purchaseDocument, header, items); err != nil {
			return err
		}
		header.Items = items
		purchase = header
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.publish(ctx, newDocumentEvent(DocumentKindPurchase, DocumentActionCreated, purchase.BusinessId, purchase.ID, purchase.PurchaseNumber, purchase.TotalAmount))
	return purchase, nil
}

func (w *DocumentWriter) UpdatePurchase(ctx context.Context, id string, input *NewPurchase) (*Purchase, error) {
	var purchase *Purchase
	err := w.observe(ctx, DocumentKindPurchase, documentOpUpdate, func(ctx context.Context) error {
		businessId, err := utils.RequireBusinessId(ctx)
		if err != nil {
			return err
		}
		if id == "" {
			return utils.ErrUnauthorized
		}
		if err := ResolvePurchaseSnapshots(ctx, w.store, businessId, input); err != nil {
			return err
		}
		header, items, err := BuildPurchase(businessId, id, input)
		if err != nil {
			return err
		}
		updated, err := updateDocument(ctx, w, purchaseDocument, businessId, id, header, items)
		if err != nil {
			return err
		}
		updated.Items = items
		purchase = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.publish(ctx, newDocumentEvent(DocumentKindPurchase, DocumentActionUpdated, purchase.BusinessId, purchase.ID, purchase.PurchaseNumber, purchase.TotalAmount))
	return purchase, nil
}

func (w *DocumentWriter) DeletePurchase(ctx context.Context, id string) error {
	var deleted *Purchase
	err := w.observe(ctx, DocumentKindPurchase, documentOpDelete, func(ctx context.Context) error {
		businessId, err := utils.RequireBusinessId(ctx)
		if err != nil {
			return err
		}
		deleted, err = deleteDocument(ctx, w, purchaseDocument, businessId, id)
		return err
	})
	if err != nil {
		return err
	}
	w.publish(ctx, newDocumentEvent(DocumentKindPurchase, DocumentActionDeleted, deleted.BusinessId, deleted.ID, deleted.PurchaseNumber, deleted.TotalAmount))
	return nil
}

func GetPurchase(ctx context.Context, store *Store, id string) (*Purchase, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	purchase, err := findOwned(ctx, store.Purchases, businessId, id, "find_purchase")
	if err != nil {
		return nil, err
	}
	items, err := store.PurchaseItems.Find(ctx, ByParent(businessId, id))
	if err != nil {
		return nil, utils.WrapStoreError("find_purchase_items", err)
	}
	purchase.Items = items
	return purchase, nil
}

func ListPurchases(ctx context.Context, store *Store, from *time.Time, to *time.Time) ([]*Purchase, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.Purchases.Find(ctx, Filter{BusinessId: businessId, From: from, To: to})
	if err != nil {
		return nil, utils.WrapStoreError("find_purchases", err)
	}
	return rows, nil
}
