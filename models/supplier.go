package models

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/billing_backend/utils"
)

type Supplier struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	BusinessId string    `gorm:"index;not null;size:36" json:"business_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255" json:"email"`
	Phone      string    `gorm:"size:32" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NewSupplier struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c Supplier) GetId() string           { return c.ID }
func (c Supplier) GetBusinessId() string   { return c.BusinessId }
func (c Supplier) GetParentId() string     { return "" }
func (c Supplier) GetCreatedAt() time.Time { return c.CreatedAt }

var supplierColumns = []string{"name", "email", "phone", "address", "updated_at"}

// validate input for both create & update; returns the normalized phone
func (input *NewSupplier) validate() (string, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return "", err
	}
	return utils.NormalizePhoneNumber(input.Phone)
}

func CreateSupplier(ctx context.Context, store *Store, input *NewSupplier) (*Supplier, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	phone, err := input.validate()
	if err != nil {
		return nil, err
	}
	ts := now()
	supplier := Supplier{
		ID:         uuid.NewString(),
		BusinessId: businessId,
		Name:       input.Name,
		Email:      strings.TrimSpace(input.Email),
		Phone:      phone,
		Address:    strings.TrimSpace(input.Address),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	rows, err := store.Suppliers.Insert(ctx, &supplier)
	if err != nil {
		return nil, utils.WrapStoreError("insert_supplier", err)
	}
	return rows[0], nil
}

func UpdateSupplier(ctx context.Context, store *Store, id string, input *NewSupplier) (*Supplier, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	phone, err := input.validate()
	if err != nil {
		return nil, err
	}
	patch := Supplier{
		Name:      input.Name,
		Email:     strings.TrimSpace(input.Email),
		Phone:     phone,
		Address:   strings.TrimSpace(input.Address),
		UpdatedAt: now(),
	}
	return updateOwned(ctx, store.Suppliers, businessId, id, &patch, supplierColumns, "update_supplier")
}

func DeleteSupplier(ctx context.Context, store *Store, id string) error {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return err
	}
	return deleteOwned(ctx, store.Suppliers, businessId, id, "delete_supplier")
}

func GetSupplier(ctx context.Context, store *Store, id string) (*Supplier, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	return findOwned(ctx, store.Suppliers, businessId, id, "find_supplier")
}

func ListSuppliers(ctx context.Context, store *Store) ([]*Supplier, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.Suppliers.Find(ctx, ByOwner(businessId))
	if err != nil {
		return nil, utils.WrapStoreError("find_suppliers", err)
	}
	return rows, nil
}
