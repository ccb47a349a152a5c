package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

// Product owns the prices and tax rate that line items snapshot. Editing a
// product never rewrites existing line items.
type Product struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	BusinessId        string          `gorm:"index;not null;size:36" json:"business_id"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	Sku               string          `gorm:"size:100;index" json:"sku"`
	Category          string          `gorm:"size:100" json:"category"`
	PurchasePrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	GstRate           decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"gst_rate"`
	StockQuantity     int             `gorm:"not null;default:0" json:"stock_quantity"`
	LowStockThreshold int             `gorm:"not null;default:0" json:"low_stock_threshold"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type NewProduct struct {
	Name              string          `json:"name" validate:"required,max=255"`
	Sku               string          `json:"sku" validate:"max=100"`
	Category          string          `json:"category" validate:"max=100"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	GstRate           decimal.Decimal `json:"gst_rate"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold" validate:"gte=0"`
}

func (p Product) GetId() string           { return p.ID }
func (p Product) GetBusinessId() string   { return p.BusinessId }
func (p Product) GetParentId() string     { return "" }
func (p Product) GetCreatedAt() time.Time { return p.CreatedAt }

// stock_quantity is left out on purpose: it only moves through documents.
var productColumns = []string{"name", "sku", "category", "purchase_price", "selling_price", "gst_rate", "low_stock_threshold", "updated_at"}

func (input *NewProduct) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.PurchasePrice.IsNegative() {
		return utils.NewValidationError(utils.ErrNegativePrice, "purchase_price")
	}
	if input.SellingPrice.IsNegative() {
		return utils.NewValidationError(utils.ErrNegativePrice, "selling_price")
	}
	if input.GstRate.IsNegative() {
		return utils.NewValidationError(utils.ErrNegativeTaxRate, "gst_rate")
	}
	return nil
}

func CreateProduct(ctx context.Context, store *Store, input *NewProduct) (*Product, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	ts := now()
	product := Product{
		ID:                uuid.NewString(),
		BusinessId:        businessId,
		Name:              input.Name,
		Sku:               strings.TrimSpace(input.Sku),
		Category:          strings.TrimSpace(input.Category),
		PurchasePrice:     input.PurchasePrice,
		SellingPrice:      input.SellingPrice,
		GstRate:           input.GstRate,
		StockQuantity:     input.StockQuantity,
		LowStockThreshold: input.LowStockThreshold,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
	rows, err := store.Products.Insert(ctx, &product)
	if err != nil {
		return nil, utils.WrapStoreError("insert_product", err)
	}
	clearReportCache(ctx, businessId)
	return rows[0], nil
}

func UpdateProduct(ctx context.Context, store *Store, id string, input *NewProduct) (*Product, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	patch := Product{
		Name:              input.Name,
		Sku:               strings.TrimSpace(input.Sku),
		Category:          strings.TrimSpace(input.Category),
		PurchasePrice:     input.PurchasePrice,
		SellingPrice:      input.SellingPrice,
		GstRate:           input.GstRate,
		LowStockThreshold: input.LowStockThreshold,
		UpdatedAt:         now(),
	}
	row, err := updateOwned(ctx, store.Products, businessId, id, &patch, productColumns, "update_product")
	if err != nil {
		return nil, err
	}
	clearReportCache(ctx, businessId)
	return row, nil
}

func DeleteProduct(ctx context.Context, store *Store, id string) error {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return err
	}
	if err := deleteOwned(ctx, store.Products, businessId, id, "delete_product"); err != nil {
		return err
	}
	clearReportCache(ctx, businessId)
	return nil
}

func GetProduct(ctx context.Context, store *Store, id string) (*Product, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	return findOwned(ctx, store.Products, businessId, id, "find_product")
}

func ListProducts(ctx context.Context, store *Store) ([]*Product, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.Products.Find(ctx, ByOwner(businessId))
	if err != nil {
		return nil, utils.WrapStoreError("find_products", err)
	}
	return rows, nil
}

func (p *Product) IsOutOfStock() bool {
	return p.StockQuantity <= 0
}

func (p *Product) IsLowStock() bool {
	return p.StockQuantity > 0 && p.StockQuantity <= p.LowStockThreshold
}
