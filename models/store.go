package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/billing_backend/utils"
)

// Row is implemented by every persisted entity. GetParentId is the owning
// document id for item rows and "" for everything else.
type Row interface {
	GetId() string
	GetBusinessId() string
	GetParentId() string
	GetCreatedAt() time.Time
}

// Filter selects rows of one table. BusinessId is mandatory; a filter without
// it is rejected before reaching the store. From and To bound created_at
// inclusively. UpdatedTo bounds updated_at and only applies to document headers.
type Filter struct {
	BusinessId string
	Id         string
	Ids        []string
	ParentId   string
	From       *time.Time
	To         *time.Time
	UpdatedTo  *time.Time
}

// updatedRow is implemented by rows that carry updated_at.
type updatedRow interface {
	GetUpdatedAt() time.Time
}

func ByOwner(businessId string) Filter {
	return Filter{BusinessId: businessId}
}

func ById(businessId string, id string) Filter {
	return Filter{BusinessId: businessId, Id: id}
}

func ByParent(businessId string, parentId string) Filter {
	return Filter{BusinessId: businessId, ParentId: parentId}
}

// Table is the persistence contract for one logical table.
type Table[T Row] interface {
	Find(ctx context.Context, filter Filter) ([]*T, error)
	Insert(ctx context.Context, rows ...*T) ([]*T, error)
	// Update writes the named columns of patch to the single row matched by
	// filter and returns it. No match is utils.ErrorRecordNotFound.
	Update(ctx context.Context, filter Filter, patch *T, columns ...string) (*T, error)
	Delete(ctx context.Context, filter Filter) (int64, error)
}

// StockLedger moves product stock. Adjusting a product that no longer exists is a no-op.
type StockLedger interface {
	AdjustStock(ctx context.Context, businessId string, productId string, delta int) error
}

// Store is the handle every operation receives. Nothing in this package
// reaches for a global connection.
type Store struct {
	Customers        Table[Customer]
	Suppliers        Table[Supplier]
	Products         Table[Product]
	Invoices         Table[Invoice]
	InvoiceItems     Table[InvoiceItem]
	Purchases        Table[Purchase]
	PurchaseItems    Table[PurchaseItem]
	Expenses         Table[Expense]
	BusinessSettings Table[BusinessSettings]
	Stock            StockLedger

	transact func(ctx context.Context, fn func(tx *Store) error) error
}

// SupportsTransactions reports whether Transaction gives real atomicity.
func (s *Store) SupportsTransactions() bool {
	return s.transact != nil
}

// Transaction runs fn against a transactional view of the store. Without
// backend support fn runs directly against s.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.transact == nil {
		return fn(s)
	}
	return s.transact(ctx, fn)
}

func checkFilter(filter Filter) error {
	if filter.BusinessId == "" {
		return utils.ErrUnauthorized
	}
	return nil
}
