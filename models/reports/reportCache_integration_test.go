package reports_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/models/reports"
	"github.com/mmdatafocus/billing_backend/utils"
)

func TestCachedFinancialReportFollowsExpenseWrites(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires redis via REDIS_ADDRESS)")
	}
	t.Setenv("ENABLE_REPORT_CACHE", "true")
	config.ConnectRedisWithRetry()

	store := models.NewMemoryStore()
	ctx := utils.SetBusinessIdInContext(context.Background(), uuid.NewString())
	seedScenarioD(t, ctx, store)

	first, err := reports.GetCachedFinancialReport(ctx, store, nil, nil)
	if err != nil {
		t.Fatalf("GetCachedFinancialReport: %v", err)
	}
	if !first.Financials.NetProfit.Equal(d("45")) {
		t.Fatalf("net profit = %s, want 45", first.Financials.NetProfit)
	}

	expense, err := models.CreateExpense(ctx, store, &models.NewExpense{Category: "Marketing", Amount: d("5.00")})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	afterCreate, err := reports.GetCachedFinancialReport(ctx, store, nil, nil)
	if err != nil {
		t.Fatalf("GetCachedFinancialReport: %v", err)
	}
	if !afterCreate.Financials.NetProfit.Equal(d("40")) {
		t.Fatalf("net profit after create = %s, want 40", afterCreate.Financials.NetProfit)
	}

	if _, err := models.UpdateExpense(ctx, store, expense.ID, &models.NewExpense{Category: "Marketing", Amount: d("10.00")}); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	afterUpdate, err := reports.GetCachedFinancialReport(ctx, store, nil, nil)
	if err != nil {
		t.Fatalf("GetCachedFinancialReport: %v", err)
	}
	if !afterUpdate.Financials.NetProfit.Equal(d("35")) {
		t.Fatalf("net profit after update = %s, want 35", afterUpdate.Financials.NetProfit)
	}

	if err := models.DeleteExpense(ctx, store, expense.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	afterDelete, err := reports.GetCachedFinancialReport(ctx, store, nil, nil)
	if err != nil {
		t.Fatalf("GetCachedFinancialReport: %v", err)
	}
	if !afterDelete.Financials.NetProfit.Equal(d("45")) {
		t.Fatalf("net profit after delete = %s, want 45", afterDelete.Financials.NetProfit)
	}
}
