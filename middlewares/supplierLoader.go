package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/billing_backend/models"
)

type supplierReader struct {
	store *models.Store
}

func (r *supplierReader) getSuppliers(ctx context.Context, ids []string) []*dataloader.Result[*models.Supplier] {
	return loadOwned(ctx, r.store.Suppliers, ids)
}

func GetSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	loaders := For(ctx)
	return loaders.supplierLoader.Load(ctx, id)()
}

func GetSuppliers(ctx context.Context, ids []string) ([]*models.Supplier, []error) {
	loaders := For(ctx)
	return loaders.supplierLoader.LoadMany(ctx, ids)()
}
