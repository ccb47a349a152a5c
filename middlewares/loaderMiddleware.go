package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders batch the counterparty and product lookups made while rendering document lists.
type Loaders struct {
	customerLoader *dataloader.Loader[string, *models.Customer]
	supplierLoader *dataloader.Loader[string, *models.Supplier]
	productLoader  *dataloader.Loader[string, *models.Product]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(store *models.Store) *Loaders {
	customerReader := &customerReader{store: store}
	supplierReader := &supplierReader{store: store}
	productReader := &productReader{store: store}

	return &Loaders{
		customerLoader: dataloader.NewBatchedLoader(customerReader.getCustomers, dataloader.WithWait[string, *models.Customer](time.Millisecond)),
		supplierLoader: dataloader.NewBatchedLoader(supplierReader.getSuppliers, dataloader.WithWait[string, *models.Supplier](time.Millisecond)),
		productLoader:  dataloader.NewBatchedLoader(productReader.getProducts, dataloader.WithWait[string, *models.Product](time.Millisecond)),
	}
}

func LoaderMiddleware(store *models.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(store)
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// loadOwned reads ids from table for the business in ctx. An id with no row
// (deleted, or another business's) yields a nil result, not an error.
func loadOwned[T models.Row](ctx context.Context, table models.Table[T], ids []string) []*dataloader.Result[*T] {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return handleError[*T](len(ids), err)
	}
	rows, err := table.Find(ctx, models.Filter{BusinessId: businessId, Ids: ids})
	if err != nil {
		return handleError[*T](len(ids), err)
	}
	return generateLoaderResults(rows, ids)
}

// turns results from the store into dataloader results, in key order
func generateLoaderResults[T models.Row](results []*T, ids []string) []*dataloader.Result[*T] {
	resultMap := make(map[string]*T, len(results))
	for _, result := range results {
		resultMap[(*result).GetId()] = result
	}
	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: resultMap[id]})
	}
	return loaderResults
}
