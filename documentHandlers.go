package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/billing_backend/middlewares"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
)

func registerDocumentRoutes(r gin.IRouter, a *app) {
	r.GET("/invoices", a.listInvoices)
	r.GET("/invoices/:id", a.getInvoice)
	r.POST("/invoices", a.createInvoice)
	r.PUT("/invoices/:id", a.updateInvoice)
	r.DELETE("/invoices/:id", a.deleteInvoice)

	r.GET("/purchases", a.listPurchases)
	r.GET("/purchases/:id", a.getPurchase)
	r.POST("/purchases", a.createPurchase)
	r.PUT("/purchases/:id", a.updatePurchase)
	r.DELETE("/purchases/:id", a.deletePurchase)
}

type invoiceListItem struct {
	*models.Invoice
	CustomerName *string `json:"customer_name"`
}

type purchaseListItem struct {
	*models.Purchase
	SupplierName *string `json:"supplier_name"`
}

type invoiceItemView struct {
	*models.InvoiceItem
	ProductName *string `json:"product_name"`
}

type invoiceDetail struct {
	*models.Invoice
	Items []invoiceItemView `json:"items"`
}

type purchaseItemView struct {
	*models.PurchaseItem
	ProductName *string `json:"product_name"`
}

type purchaseDetail struct {
	*models.Purchase
	Items []purchaseItemView `json:"items"`
}

// productNames batch-loads the names of the referenced products. Products
// deleted since the document was written are left out.
func productNames(ctx context.Context, productIds []*string) (map[string]string, error) {
	var ids []string
	for _, id := range productIds {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	names := map[string]string{}
	if len(ids) == 0 {
		return names, nil
	}
	products, errs := middlewares.GetProducts(ctx, utils.UniqueSlice(ids))
	for i, product := range products {
		if errs != nil && errs[i] != nil {
			return nil, errs[i]
		}
		if product != nil {
			names[product.ID] = product.Name
		}
	}
	return names, nil
}

func nameOf(names map[string]string, id *string) *string {
	if id == nil {
		return nil
	}
	if name, ok := names[*id]; ok {
		return &name
	}
	return nil
}

// parseWindow reads ?from=&to= as a date (YYYY-MM-DD, in REPORT_TIMEZONE) or
// an RFC3339 timestamp. A date "to" covers the whole day.
func parseWindow(c *gin.Context) (*time.Time, *time.Time, bool) {
	from, ok := parseTimeParam(c, "from", false)
	if !ok {
		return nil, nil, false
	}
	to, ok := parseTimeParam(c, "to", true)
	if !ok {
		return nil, nil, false
	}
	return from, to, true
}

func parseTimeParam(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	if t, err := time.ParseInLocation("2006-01-02", v, utils.ReportLocation()); err == nil {
		if endOfDay {
			t = utils.EndOfDay(t)
		}
		return &t, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		badRequest(c, "invalid "+name+": expected YYYY-MM-DD or RFC3339")
		return nil, false
	}
	return &t, true
}

func (a *app) listInvoices(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	invoices, err := models.ListInvoices(ctx, a.store(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	var customerIds []string
	for _, inv := range invoices {
		if inv.CustomerId != nil {
			customerIds = append(customerIds, *inv.CustomerId)
		}
	}
	names := map[string]string{}
	if len(customerIds) > 0 {
		customerIds = utils.UniqueSlice(customerIds)
		customers, errs := middlewares.GetCustomers(ctx, customerIds)
		for i, customer := range customers {
			if errs != nil && errs[i] != nil {
				writeError(c, errs[i])
				return
			}
			if customer != nil {
				names[customer.ID] = customer.Name
			}
		}
	}

	out := make([]invoiceListItem, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceListItem{Invoice: inv, CustomerName: nameOf(names, inv.CustomerId)})
	}
	c.JSON(http.StatusOK, out)
}

func (a *app) getInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	invoice, err := models.GetInvoice(ctx, a.store(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	productIds := make([]*string, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		productIds = append(productIds, item.ProductId)
	}
	names, err := productNames(ctx, productIds)
	if err != nil {
		writeError(c, err)
		return
	}
	out := invoiceDetail{Invoice: invoice, Items: make([]invoiceItemView, 0, len(invoice.Items))}
	for _, item := range invoice.Items {
		out.Items = append(out.Items, invoiceItemView{InvoiceItem: item, ProductName: nameOf(names, item.ProductId)})
	}
	c.JSON(http.StatusOK, out)
}

func (a *app) createInvoice(c *gin.Context) {
	var input models.NewInvoice
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := a.writer().CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (a *app) updateInvoice(c *gin.Context) {
	var input models.NewInvoice
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := a.writer().UpdateInvoice(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (a *app) deleteInvoice(c *gin.Context) {
	if err := a.writer().DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) listPurchases(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	purchases, err := models.ListPurchases(ctx, a.store(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	var supplierIds []string
	for _, p := range purchases {
		if p.SupplierId != nil {
			supplierIds = append(supplierIds, *p.SupplierId)
		}
	}
	names := map[string]string{}
	if len(supplierIds) > 0 {
		supplierIds = utils.UniqueSlice(supplierIds)
		suppliers, errs := middlewares.GetSuppliers(ctx, supplierIds)
		for i, supplier := range suppliers {
			if errs != nil && errs[i] != nil {
				writeError(c, errs[i])
				return
			}
			if supplier != nil {
				names[supplier.ID] = supplier.Name
			}
		}
	}

	out := make([]purchaseListItem, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, purchaseListItem{Purchase: p, SupplierName: nameOf(names, p.SupplierId)})
	}
	c.JSON(http.StatusOK, out)
}

func (a *app) getPurchase(c *gin.Context) {
	ctx := c.Request.Context()
	purchase, err := models.GetPurchase(ctx, a.store(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	productIds := make([]*string, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		productIds = append(productIds, item.ProductId)
	}
	names, err := productNames(ctx, productIds)
	if err != nil {
		writeError(c, err)
		return
	}
	out := purchaseDetail{Purchase: purchase, Items: make([]purchaseItemView, 0, len(purchase.Items))}
	for _, item := range purchase.Items {
		out.Items = append(out.Items, purchaseItemView{PurchaseItem: item, ProductName: nameOf(names, item.ProductId)})
	}
	c.JSON(http.StatusOK, out)
}

func (a *app) createPurchase(c *gin.Context) {
	var input models.NewPurchase
	if !bindJSON(c, &input) {
		return
	}
	purchase, err := a.writer().CreatePurchase(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (a *app) updatePurchase(c *gin.Context) {
	var input models.NewPurchase
	if !bindJSON(c, &input) {
		return
	}
	purchase, err := a.writer().UpdatePurchase(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func (a *app) deletePurchase(c *gin.Context) {
	if err := a.writer().DeletePurchase(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
