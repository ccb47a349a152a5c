package models

import (
	"context"
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/billing_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormTable[T Row] struct {
	db           *gorm.DB
	parentColumn string
	order        string
}

// NewGormTable backs a Table with gorm. parentColumn is the item table's
// document foreign key ("" for non-item tables).
func NewGormTable[T Row](db *gorm.DB, parentColumn string, order string) Table[T] {
	return &gormTable[T]{db: db, parentColumn: parentColumn, order: order}
}

func (t *gormTable[T]) scoped(ctx context.Context, filter Filter) *gorm.DB {
	tx := t.db.WithContext(ctx).Model(new(T)).Where("business_id = ?", filter.BusinessId)
	if filter.Id != "" {
		tx = tx.Where("id = ?", filter.Id)
	}
	if len(filter.Ids) > 0 {
		tx = tx.Where("id IN ?", filter.Ids)
	}
	if filter.ParentId != "" && t.parentColumn != "" {
		tx = tx.Where(t.parentColumn+" = ?", filter.ParentId)
	}
	if filter.From != nil {
		tx = tx.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		tx = tx.Where("created_at <= ?", *filter.To)
	}
	if filter.UpdatedTo != nil {
		tx = tx.Where("updated_at <= ?", *filter.UpdatedTo)
	}
	return tx
}

func (t *gormTable[T]) Find(ctx context.Context, filter Filter) ([]*T, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	var rows []*T
	tx := t.scoped(ctx, filter)
	if t.order != "" {
		tx = tx.Order(t.order)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *gormTable[T]) Insert(ctx context.Context, rows ...*T) ([]*T, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	for _, r := range rows {
		if (*r).GetBusinessId() == "" {
			return nil, utils.ErrUnauthorized
		}
	}
	err := t.db.WithContext(ctx).Omit(clause.Associations).Create(rows).Error
	if isDuplicateKeyErr(err) {
		return nil, ErrDuplicateKey
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *gormTable[T]) Update(ctx context.Context, filter Filter, patch *T, columns ...string) (*T, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	if filter.Id == "" {
		return nil, utils.ErrorRecordNotFound
	}
	result := t.scoped(ctx, filter).Select(columns).Updates(patch)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	rows, err := t.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return rows[0], nil
}

func (t *gormTable[T]) Delete(ctx context.Context, filter Filter) (int64, error) {
	if err := checkFilter(filter); err != nil {
		return 0, err
	}
	result := t.scoped(ctx, filter).Delete(new(T))
	return result.RowsAffected, result.Error
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type gormStockLedger struct {
	db *gorm.DB
}

func (l *gormStockLedger) AdjustStock(ctx context.Context, businessId string, productId string, delta int) error {
	if businessId == "" {
		return utils.ErrUnauthorized
	}
	return l.db.WithContext(ctx).Model(&Product{}).
		Where("business_id = ? AND id = ?", businessId, productId).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error
}

// NewGormStore builds a Store over db. Transactions are real DB transactions.
func NewGormStore(db *gorm.DB) *Store {
	s := newGormStore(db)
	s.transact = func(ctx context.Context, fn func(tx *Store) error) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(newGormStore(tx))
		})
	}
	return s
}

func newGormStore(db *gorm.DB) *Store {
	return &Store{
		Customers:        NewGormTable[Customer](db, "", "name ASC"),
		Suppliers:        NewGormTable[Supplier](db, "", "name ASC"),
		Products:         NewGormTable[Product](db, "", "name ASC"),
		Invoices:         NewGormTable[Invoice](db, "", "created_at DESC"),
		InvoiceItems:     NewGormTable[InvoiceItem](db, "invoice_id", "position ASC"),
		Purchases:        NewGormTable[Purchase](db, "", "created_at DESC"),
		PurchaseItems:    NewGormTable[PurchaseItem](db, "purchase_id", "position ASC"),
		Expenses:         NewGormTable[Expense](db, "", "created_at DESC"),
		BusinessSettings: NewGormTable[BusinessSettings](db, "", ""),
		Stock:            &gormStockLedger{db: db},
	}
}
