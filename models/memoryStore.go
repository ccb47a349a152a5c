package models

import (
	"context"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/mmdatafocus/billing_backend/utils"
	"gorm.io/gorm/schema"
)

// memoryTable keeps copies of rows in insertion order. It has no
// transactions, so document writes against it run step by step.
type memoryTable[T Row] struct {
	mu       sync.RWMutex
	rows     []*T
	less     func(a, b *T) bool
	unique   func(row *T) string
	onDelete func(ctx context.Context, deleted []*T)
}

var memoryNaming = schema.NamingStrategy{}

func (f Filter) matches(row Row) bool {
	if row.GetBusinessId() != f.BusinessId {
		return false
	}
	if f.Id != "" && row.GetId() != f.Id {
		return false
	}
	if len(f.Ids) > 0 && !slices.Contains(f.Ids, row.GetId()) {
		return false
	}
	if f.ParentId != "" && row.GetParentId() != f.ParentId {
		return false
	}
	created := row.GetCreatedAt()
	if f.From != nil && created.Before(*f.From) {
		return false
	}
	if f.To != nil && created.After(*f.To) {
		return false
	}
	if f.UpdatedTo != nil {
		u, ok := row.(updatedRow)
		if !ok || u.GetUpdatedAt().After(*f.UpdatedTo) {
			return false
		}
	}
	return true
}

func (t *memoryTable[T]) Find(ctx context.Context, filter Filter) ([]*T, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	var result []*T
	for _, r := range t.rows {
		if filter.matches(*r) {
			c := *r
			result = append(result, &c)
		}
	}
	if t.less != nil {
		sort.SliceStable(result, func(i, j int) bool { return t.less(result[i], result[j]) })
	}
	return result, nil
}

func (t *memoryTable[T]) Insert(ctx context.Context, rows ...*T) ([]*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[string]bool)
	for _, r := range rows {
		if (*r).GetBusinessId() == "" {
			return nil, utils.ErrUnauthorized
		}
		if t.unique == nil {
			continue
		}
		key := t.unique(r)
		if seen[key] {
			return nil, ErrDuplicateKey
		}
		seen[key] = true
		for _, existing := range t.rows {
			if t.unique(existing) == key {
				return nil, ErrDuplicateKey
			}
		}
	}
	for _, r := range rows {
		c := *r
		t.rows = append(t.rows, &c)
	}
	return rows, nil
}

func (t *memoryTable[T]) Update(ctx context.Context, filter Filter, patch *T, columns ...string) (*T, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	if filter.Id == "" {
		return nil, utils.ErrorRecordNotFound
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if filter.matches(*r) {
			copyColumns(r, patch, columns)
			c := *r
			return &c, nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func (t *memoryTable[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	if err := checkFilter(filter); err != nil {
		return 0, err
	}
	t.mu.Lock()
	kept := t.rows[:0]
	var deleted []*T
	for _, r := range t.rows {
		if filter.matches(*r) {
			deleted = append(deleted, r)
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	t.mu.Unlock()

	if len(deleted) > 0 && t.onDelete != nil {
		t.onDelete(ctx, deleted)
	}
	return int64(len(deleted)), nil
}

// modify applies fn to the row with the given id, reporting whether it was found.
func (t *memoryTable[T]) modify(businessId string, id string, fn func(row *T)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rows {
		if (*r).GetBusinessId() == businessId && (*r).GetId() == id {
			fn(r)
			return true
		}
	}
	return false
}

// copyColumns copies the fields of src whose gorm column name is listed into dst.
func copyColumns[T any](dst *T, src *T, columns []string) {
	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(src).Elem()
	typ := dv.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if want[memoryNaming.ColumnName("", field.Name)] {
			dv.Field(i).Set(sv.Field(i))
		}
	}
}

type memoryStockLedger struct {
	products *memoryTable[Product]
}

func (l *memoryStockLedger) AdjustStock(ctx context.Context, businessId string, productId string, delta int) error {
	if businessId == "" {
		return utils.ErrUnauthorized
	}
	l.products.modify(businessId, productId, func(p *Product) {
		p.StockQuantity += delta
	})
	return nil
}

// NewMemoryStore returns an in-process Store. Deleting an invoice or purchase
// removes its items the way the mysql foreign key cascade does.
func NewMemoryStore() *Store {
	invoiceItems := &memoryTable[InvoiceItem]{
		less: func(a, b *InvoiceItem) bool { return a.Position < b.Position },
	}
	purchaseItems := &memoryTable[PurchaseItem]{
		less: func(a, b *PurchaseItem) bool { return a.Position < b.Position },
	}
	products := &memoryTable[Product]{
		less: func(a, b *Product) bool { return a.Name < b.Name },
	}
	invoices := &memoryTable[Invoice]{
		less: func(a, b *Invoice) bool { return a.CreatedAt.After(b.CreatedAt) },
		onDelete: func(ctx context.Context, deleted []*Invoice) {
			for _, inv := range deleted {
				invoiceItems.Delete(ctx, ByParent(inv.BusinessId, inv.ID))
			}
		},
	}
	purchases := &memoryTable[Purchase]{
		less: func(a, b *Purchase) bool { return a.CreatedAt.After(b.CreatedAt) },
		onDelete: func(ctx context.Context, deleted []*Purchase) {
			for _, p := range deleted {
				purchaseItems.Delete(ctx, ByParent(p.BusinessId, p.ID))
			}
		},
	}

	return &Store{
		Customers:     &memoryTable[Customer]{less: func(a, b *Customer) bool { return a.Name < b.Name }},
		Suppliers:     &memoryTable[Supplier]{less: func(a, b *Supplier) bool { return a.Name < b.Name }},
		Products:      products,
		Invoices:      invoices,
		InvoiceItems:  invoiceItems,
		Purchases:     purchases,
		PurchaseItems: purchaseItems,
		Expenses:      &memoryTable[Expense]{less: func(a, b *Expense) bool { return a.CreatedAt.After(b.CreatedAt) }},
		BusinessSettings: &memoryTable[BusinessSettings]{
			unique: func(s *BusinessSettings) string { return s.BusinessId },
		},
		Stock: &memoryStockLedger{products: products},
	}
}
