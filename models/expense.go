package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	BusinessId string          `gorm:"index;not null;size:36" json:"business_id"`
	Category   ExpenseCategory `gorm:"size:32;not null" json:"category"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Note       string          `gorm:"type:text" json:"note"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type NewExpense struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

func (e Expense) GetId() string           { return e.ID }
func (e Expense) GetBusinessId() string   { return e.BusinessId }
func (e Expense) GetParentId() string     { return "" }
func (e Expense) GetCreatedAt() time.Time { return e.CreatedAt }

var expenseColumns = []string{"category", "amount", "note", "updated_at"}

func (input *NewExpense) validate() (ExpenseCategory, error) {
	category, ok := ParseExpenseCategory(input.Category)
	if !ok {
		return "", utils.NewValidationError(utils.ErrInvalidCategory, "category")
	}
	if !input.Amount.IsPositive() {
		return "", utils.NewValidationError(utils.ErrNonPositiveAmount, "amount")
	}
	return category, nil
}

func CreateExpense(ctx context.Context, store *Store, input *NewExpense) (*Expense, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	category, err := input.validate()
	if err != nil {
		return nil, err
	}
	ts := now()
	expense := Expense{
		ID:         uuid.NewString(),
		BusinessId: businessId,
		Category:   category,
		Amount:     utils.Round2(input.Amount),
		Note:       strings.TrimSpace(input.Note),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	rows, err := store.Expenses.Insert(ctx, &expense)
	if err != nil {
		return nil, utils.WrapStoreError("insert_expense", err)
	}
	clearReportCache(ctx, businessId)
	return rows[0], nil
}

func UpdateExpense(ctx context.Context, store *Store, id string, input *NewExpense) (*Expense, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	category, err := input.validate()
	if err != nil {
		return nil, err
	}
	patch := Expense{
		Category:  category,
		Amount:    utils.Round2(input.Amount),
		Note:      strings.TrimSpace(input.Note),
		UpdatedAt: now(),
	}
	row, err := updateOwned(ctx, store.Expenses, businessId, id, &patch, expenseColumns, "update_expense")
	if err != nil {
		return nil, err
	}
	clearReportCache(ctx, businessId)
	return row, nil
}

func DeleteExpense(ctx context.Context, store *Store, id string) error {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return err
	}
	if err := deleteOwned(ctx, store.Expenses, businessId, id, "delete_expense"); err != nil {
		return err
	}
	clearReportCache(ctx, businessId)
	return nil
}

// ListExpenses returns the caller's expenses, optionally within an inclusive created_at window.
func ListExpenses(ctx context.Context, store *Store, from *time.Time, to *time.Time) ([]*Expense, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.Expenses.Find(ctx, Filter{BusinessId: businessId, From: from, To: to})
	if err != nil {
		return nil, utils.WrapStoreError("find_expenses", err)
	}
	return rows, nil
}
