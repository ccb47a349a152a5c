package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/billing_backend/models/reports"
	"github.com/mmdatafocus/billing_backend/utils"
)

func registerReportRoutes(r gin.IRouter, a *app) {
	r.GET("/reports/financial", a.financialReport)
	r.GET("/reports/financial/export", a.exportFinancialReport)
}

func (a *app) financialReport(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	report, err := reports.GetCachedFinancialReport(c.Request.Context(), a.store(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (a *app) exportFinancialReport(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	report, err := reports.GetCachedFinancialReport(c.Request.Context(), a.store(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	f, err := reports.ExportFinancialReport(report)
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		writeError(c, err)
		return
	}
	name := fmt.Sprintf("financial_%s_%s.xlsx", report.FromDate.Format("20060102"), report.ToDate.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, utils.ContentTypeXlsx, buf.Bytes())
}
