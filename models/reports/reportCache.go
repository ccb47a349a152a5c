package reports

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/billing_backend/config"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
	"github.com/sirupsen/logrus"
)

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	biz, _ := utils.GetBusinessIdFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"business_id":    biz,
		"correlation_id": cid,
	}).Warn("slow_report")
}

// reportCacheVersion is bumped by every write that changes report inputs.
func reportCacheVersion(ctx context.Context, businessId string) int64 {
	rdb := config.GetRedisDB()
	if rdb == nil {
		return 0
	}
	v, err := rdb.Get(ctx, utils.ReportVersionKey(businessId)).Int64()
	if err != nil {
		return 0
	}
	return v
}

func financialReportKey(businessId string, version int64, from time.Time, to time.Time) string {
	return fmt.Sprintf("report:financial:%s:v%d:%d:%d", businessId, version, from.Unix(), to.Unix())
}

// InvalidateFinancialReports drops every cached report of the business.
func InvalidateFinancialReports(ctx context.Context, businessId string) error {
	return utils.ClearReportCache(ctx, businessId)
}

// GetCachedFinancialReport serves the report from redis when ENABLE_REPORT_CACHE
// is set. Cache failures fall through to a fresh build.
func GetCachedFinancialReport(ctx context.Context, store *models.Store, from *time.Time, to *time.Time) (*FinancialReport, error) {
	started := time.Now()
	defer logSlowReport(ctx, "financial", started)

	if !config.ReportCacheEnabled() {
		return GetFinancialReport(ctx, store, from, to)
	}
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	start, end, err := ReportWindow(from, to)
	if err != nil {
		return nil, err
	}
	key := financialReportKey(businessId, reportCacheVersion(ctx, businessId), start, end)

	var cached FinancialReport
	found, err := config.GetRedisObject(ctx, key, &cached)
	if err != nil {
		config.LogErrorCtx(ctx, config.GetLogger(), "reports", "GetCachedFinancialReport", "cache get", key, err)
	}
	if found {
		config.ReportCacheHits.Inc()
		return &cached, nil
	}

	report, err := GetFinancialReport(ctx, store, &start, &end)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(ctx, key, report, reportCacheTTL()); err != nil {
		config.LogErrorCtx(ctx, config.GetLogger(), "reports", "GetCachedFinancialReport", "cache set", key, err)
	}
	return report, nil
}
