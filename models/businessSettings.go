package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/billing_backend/utils"
)

// BusinessSettings is one row per business, created with empty values on first read.
type BusinessSettings struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	BusinessId   string    `gorm:"uniqueIndex;not null;size:36" json:"business_id"`
	BusinessName string    `gorm:"size:255" json:"business_name"`
	GstNumber    string    `gorm:"size:32" json:"gst_number"`
	Address      string    `gorm:"type:text" json:"address"`
	Phone        string    `gorm:"size:32" json:"phone"`
	Email        string    `gorm:"size:255" json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type NewBusinessSettings struct {
	BusinessName string `json:"business_name" validate:"max=255"`
	GstNumber    string `json:"gst_number" validate:"max=32"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email" validate:"omitempty,email"`
}

func (s BusinessSettings) GetId() string           { return s.ID }
func (s BusinessSettings) GetBusinessId() string   { return s.BusinessId }
func (s BusinessSettings) GetParentId() string     { return "" }
func (s BusinessSettings) GetCreatedAt() time.Time { return s.CreatedAt }

var businessSettingsColumns = []string{"business_name", "gst_number", "address", "phone", "email", "updated_at"}

// ErrDuplicateKey is returned by a table insert that hits a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// GetBusinessSettings returns the caller's settings, creating the default row when missing.
func GetBusinessSettings(ctx context.Context, store *Store) (*BusinessSettings, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := findSettings(ctx, store, businessId)
	if err != nil || existing != nil {
		return existing, err
	}

	ts := now()
	settings := BusinessSettings{
		ID:         uuid.NewString(),
		BusinessId: businessId,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	rows, err := store.BusinessSettings.Insert(ctx, &settings)
	if errors.Is(err, ErrDuplicateKey) {
		// created concurrently
		return findSettings(ctx, store, businessId)
	}
	if err != nil {
		return nil, utils.WrapStoreError("insert_business_settings", err)
	}
	return rows[0], nil
}

// UpsertBusinessSettings writes the caller's settings row, keyed on business id.
func UpsertBusinessSettings(ctx context.Context, store *Store, input *NewBusinessSettings) (*BusinessSettings, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	phone, err := utils.NormalizePhoneNumber(input.Phone)
	if err != nil {
		return nil, err
	}
	ts := now()
	settings := BusinessSettings{
		BusinessName: strings.TrimSpace(input.BusinessName),
		GstNumber:    strings.ToUpper(strings.TrimSpace(input.GstNumber)),
		Address:      strings.TrimSpace(input.Address),
		Phone:        phone,
		Email:        strings.TrimSpace(input.Email),
		UpdatedAt:    ts,
	}

	existing, err := findSettings(ctx, store, businessId)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		settings.ID = uuid.NewString()
		settings.BusinessId = businessId
		settings.CreatedAt = ts
		rows, err := store.BusinessSettings.Insert(ctx, &settings)
		if err == nil {
			return rows[0], nil
		}
		if !errors.Is(err, ErrDuplicateKey) {
			return nil, utils.WrapStoreError("insert_business_settings", err)
		}
		if existing, err = findSettings(ctx, store, businessId); err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, &utils.StoreError{Op: "upsert_business_settings", Err: ErrDuplicateKey}
		}
	}
	row, err := store.BusinessSettings.Update(ctx, ById(businessId, existing.ID), &settings, businessSettingsColumns...)
	if err != nil {
		return nil, utils.WrapStoreError("update_business_settings", err)
	}
	return row, nil
}

func findSettings(ctx context.Context, store *Store, businessId string) (*BusinessSettings, error) {
	rows, err := store.BusinessSettings.Find(ctx, ByOwner(businessId))
	if err != nil {
		return nil, utils.WrapStoreError("find_business_settings", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
