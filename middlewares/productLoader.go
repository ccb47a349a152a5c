package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/billing_backend/models"
)

type productReader struct {
	store *models.Store
}

func (r *productReader) getProducts(ctx context.Context, ids []string) []*dataloader.Result[*models.Product] {
	return loadOwned(ctx, r.store.Products, ids)
}

func GetProduct(ctx context.Context, id string) (*models.Product, error) {
	loaders := For(ctx)
	return loaders.productLoader.Load(ctx, id)()
}

func GetProducts(ctx context.Context, ids []string) ([]*models.Product, []error) {
	loaders := For(ctx)
	return loaders.productLoader.LoadMany(ctx, ids)()
}
