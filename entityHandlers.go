package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/billing_backend/models"
)

func registerEntityRoutes(r gin.IRouter, a *app) {
	r.GET("/customers", listHandler(a, models.ListCustomers))
	r.GET("/customers/:id", getHandler(a, models.GetCustomer))
	r.POST("/customers", createHandler(a, models.CreateCustomer))
	r.PUT("/customers/:id", updateHandler(a, models.UpdateCustomer))
	r.DELETE("/customers/:id", deleteHandler(a, models.DeleteCustomer))

	r.GET("/suppliers", listHandler(a, models.ListSuppliers))
	r.GET("/suppliers/:id", getHandler(a, models.GetSupplier))
	r.POST("/suppliers", createHandler(a, models.CreateSupplier))
	r.PUT("/suppliers/:id", updateHandler(a, models.UpdateSupplier))
	r.DELETE("/suppliers/:id", deleteHandler(a, models.DeleteSupplier))

	r.GET("/products", listHandler(a, models.ListProducts))
	r.GET("/products/:id", getHandler(a, models.GetProduct))
	r.POST("/products", createHandler(a, models.CreateProduct))
	r.PUT("/products/:id", updateHandler(a, models.UpdateProduct))
	r.DELETE("/products/:id", deleteHandler(a, models.DeleteProduct))

	r.GET("/expenses", a.listExpenses)
	r.POST("/expenses", createHandler(a, models.CreateExpense))
	r.PUT("/expenses/:id", updateHandler(a, models.UpdateExpense))
	r.DELETE("/expenses/:id", deleteHandler(a, models.DeleteExpense))

	r.GET("/settings", a.getSettings)
	r.PUT("/settings", createHandler(a, models.UpsertBusinessSettings))
}

func listHandler[T any](a *app, list func(context.Context, *models.Store) ([]*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := list(c.Request.Context(), a.store())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func getHandler[T any](a *app, get func(context.Context, *models.Store, string) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := get(c.Request.Context(), a.store(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

// createHandler also serves the settings upsert, which has the same shape.
func createHandler[In any, T any](a *app, create func(context.Context, *models.Store, *In) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if !bindJSON(c, &input) {
			return
		}
		row, err := create(c.Request.Context(), a.store(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		status := http.StatusCreated
		if c.Request.Method == http.MethodPut {
			status = http.StatusOK
		}
		c.JSON(status, row)
	}
}

func updateHandler[In any, T any](a *app, update func(context.Context, *models.Store, string, *In) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if !bindJSON(c, &input) {
			return
		}
		row, err := update(c.Request.Context(), a.store(), c.Param("id"), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	}
}

func deleteHandler(a *app, remove func(context.Context, *models.Store, string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := remove(c.Request.Context(), a.store(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (a *app) listExpenses(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	expenses, err := models.ListExpenses(c.Request.Context(), a.store(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (a *app) getSettings(c *gin.Context) {
	settings, err := models.GetBusinessSettings(c.Request.Context(), a.store())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
