package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/billing_backend/models"
)

type customerReader struct {
	store *models.Store
}

func (r *customerReader) getCustomers(ctx context.Context, ids []string) []*dataloader.Result[*models.Customer] {
	return loadOwned(ctx, r.store.Customers, ids)
}

func GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	loaders := For(ctx)
	return loaders.customerLoader.Load(ctx, id)()
}

func GetCustomers(ctx context.Context, ids []string) ([]*models.Customer, []error) {
	loaders := For(ctx)
	return loaders.customerLoader.LoadMany(ctx, ids)()
}
