package utils

import (
	"context"

	"github.com/mmdatafocus/billing_backend/config"
)

// ReportVersionKey holds the cache generation of one business's financial reports.
func ReportVersionKey(businessId string) string {
	return "report:financial:version:" + businessId
}

// ClearReportCache moves the business to a new cache generation. Entries of
// older generations are never read again and expire by TTL.
func ClearReportCache(ctx context.Context, businessId string) error {
	rdb := config.GetRedisDB()
	if rdb == nil {
		return nil
	}
	return rdb.Incr(ctx, ReportVersionKey(businessId)).Err()
}
