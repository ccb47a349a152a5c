package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/billing_backend/utils"
)

type Customer struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	BusinessId string    `gorm:"index;not null;size:36" json:"business_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255" json:"email"`
	Phone      string    `gorm:"size:32" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NewCustomer struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c Customer) GetId() string           { return c.ID }
func (c Customer) GetBusinessId() string   { return c.BusinessId }
func (c Customer) GetParentId() string     { return "" }
func (c Customer) GetCreatedAt() time.Time { return c.CreatedAt }

var customerColumns = []string{"name", "email", "phone", "address", "updated_at"}

// validate input for both create & update; returns the normalized phone
func (input *NewCustomer) validate() (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return "", err
	}
	return utils.NormalizePhoneNumber(input.Phone)
}

func CreateCustomer(ctx context.Context, store *Store, input *NewCustomer) (*Customer, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	phone, err := input.validate()
	if err != nil {
		return nil, err
	}
	ts := now()
	customer := Customer{
		ID:         uuid.NewString(),
		BusinessId: businessId,
		Name:       input.Name,
		Email:      strings.TrimSpace(input.Email),
		Phone:      phone,
		Address:    strings.TrimSpace(input.Address),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	rows, err := store.Customers.Insert(ctx, &customer)
	if err != nil {
		return nil, utils.WrapStoreError("insert_customer", err)
	}
	return rows[0], nil
}

func UpdateCustomer(ctx context.Context, store *Store, id string, input *NewCustomer) (*Customer, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	phone, err := input.validate()
	if err != nil {
		return nil, err
	}
	patch := Customer{
		Name:      input.Name,
		Email:     strings.TrimSpace(input.Email),
		Phone:     phone,
		Address:   strings.TrimSpace(input.Address),
		UpdatedAt: now(),
	}
	return updateOwned(ctx, store.Customers, businessId, id, &patch, customerColumns, "update_customer")
}

func DeleteCustomer(ctx context.Context, store *Store, id string) error {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return err
	}
	return deleteOwned(ctx, store.Customers, businessId, id, "delete_customer")
}

func GetCustomer(ctx context.Context, store *Store, id string) (*Customer, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	return findOwned(ctx, store.Customers, businessId, id, "find_customer")
}

func ListCustomers(ctx context.Context, store *Store) ([]*Customer, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.Customers.Find(ctx, ByOwner(businessId))
	if err != nil {
		return nil, utils.WrapStoreError("find_customers", err)
	}
	return rows, nil
}
