package models

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/mmdatafocus/billing_backend/utils"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusOverdue   PaymentStatus = "overdue"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue, PaymentStatusCancelled:
		return true
	}
	return false
}

// convert input to enum type; an empty value is left for the builder to default
func (s *PaymentStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("payment status must be string")
	}
	status := PaymentStatus(strings.ToLower(strings.TrimSpace(str)))
	if status != "" && !status.IsValid() {
		return utils.NewValidationError(utils.ErrInvalidStatus, "payment_status")
	}
	*s = status
	return nil
}

type ExpenseCategory string

const (
	ExpenseCategoryMarketing ExpenseCategory = "Marketing"
	ExpenseCategoryUtilities ExpenseCategory = "Utilities"
	ExpenseCategoryRent      ExpenseCategory = "Rent"
	ExpenseCategorySalary    ExpenseCategory = "Salary"
	ExpenseCategorySoftware  ExpenseCategory = "Software"
	ExpenseCategoryTravel    ExpenseCategory = "Travel"
	ExpenseCategorySupplies  ExpenseCategory = "Supplies"
	ExpenseCategoryTax       ExpenseCategory = "Tax"
	ExpenseCategoryOther     ExpenseCategory = "Other"
)

var expenseCategories = []ExpenseCategory{
	ExpenseCategoryMarketing, ExpenseCategoryUtilities, ExpenseCategoryRent,
	ExpenseCategorySalary, ExpenseCategorySoftware, ExpenseCategoryTravel,
	ExpenseCategorySupplies, ExpenseCategoryTax, ExpenseCategoryOther,
}

func ExpenseCategories() []ExpenseCategory {
	return append([]ExpenseCategory(nil), expenseCategories...)
}

// ParseExpenseCategory matches case-insensitively and returns the canonical value.
func ParseExpenseCategory(s string) (ExpenseCategory, bool) {
	s = strings.TrimSpace(s)
	for _, c := range expenseCategories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// DocumentKind names the two header+items documents.
type DocumentKind string

const (
	DocumentKindInvoice  DocumentKind = "invoice"
	DocumentKindPurchase DocumentKind = "purchase"
)

func (k DocumentKind) LineKind() utils.LineKind {
	if k == DocumentKindPurchase {
		return utils.LineKindPurchase
	}
	return utils.LineKindSales
}
