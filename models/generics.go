package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/utils"
)

// nowFunc is swapped in tests that need fixed timestamps.
var nowFunc = func() time.Time { return time.Now().UTC() }

func now() time.Time {
	return nowFunc()
}

// findOwned loads one row of the caller's business (may return RecordNotFound)
func findOwned[T Row](ctx context.Context, table Table[T], businessId string, id string, op string) (*T, error) {
	if id == "" {
		return nil, utils.ErrorRecordNotFound
	}
	rows, err := table.Find(ctx, ById(businessId, id))
	if err != nil {
		return nil, utils.WrapStoreError(op, err)
	}
	if len(rows) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return rows[0], nil
}

// updateOwned patches one row. A row that is missing or belongs to another
// business is reported as ErrUnauthorized.
func updateOwned[T Row](ctx context.Context, table Table[T], businessId string, id string, patch *T, columns []string, op string) (*T, error) {
	if id == "" {
		return nil, utils.ErrUnauthorized
	}
	row, err := table.Update(ctx, ById(businessId, id), patch, columns...)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, utils.ErrUnauthorized
	}
	if err != nil {
		return nil, utils.WrapStoreError(op, err)
	}
	return row, nil
}

func deleteOwned[T Row](ctx context.Context, table Table[T], businessId string, id string, op string) error {
	if id == "" {
		return utils.ErrUnauthorized
	}
	n, err := table.Delete(ctx, ById(businessId, id))
	if err != nil {
		return utils.WrapStoreError(op, err)
	}
	if n == 0 {
		return utils.ErrUnauthorized
	}
	return nil
}

// clearReportCache drops the caller's cached reports after a successful write.
// A failure only costs staleness until the TTL, so it is logged, not returned.
func clearReportCache(ctx context.Context, businessId string) {
	if err := utils.ClearReportCache(ctx, businessId); err != nil {
		config.LogErrorCtx(ctx, config.GetLogger(), "models", "clearReportCache", "clear report cache", businessId, err)
	}
}
