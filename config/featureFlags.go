package config

import (
	"os"
	"strconv"
	"strings"
)

// StockReversalPolicy decides what happens to stock already moved by a
// document's items when those items are deleted or replaced.
type StockReversalPolicy string

const (
	// StockReversalNone leaves stock as is. Deleting a sale does not give the units back.
	StockReversalNone StockReversalPolicy = "none"
	// StockReversalRestore undoes the stock effect of removed items.
	StockReversalRestore StockReversalPolicy = "restore"
)

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// GetStockReversalPolicy reads STOCK_REVERSAL_POLICY (none|restore, default none).
func GetStockReversalPolicy() StockReversalPolicy {
	switch StockReversalPolicy(strings.ToLower(strings.TrimSpace(os.Getenv("STOCK_REVERSAL_POLICY")))) {
	case StockReversalRestore:
		return StockReversalRestore
	default:
		return StockReversalNone
	}
}

// AtomicDocumentWrites runs header and item writes in one DB transaction when
// the store supports it.
//
// Set via env:
// - ATOMIC_DOCUMENT_WRITES=true
func AtomicDocumentWrites() bool {
	return envBool("ATOMIC_DOCUMENT_WRITES")
}

// LowStockListLimit caps the low-stock product list in reports (LOW_STOCK_LIST_LIMIT, default 10).
func LowStockListLimit() int {
	if v := strings.TrimSpace(os.Getenv("LOW_STOCK_LIST_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 10
}

// StoreDriver is mysql unless STORE_DRIVER=memory.
func StoreDriver() string {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("STORE_DRIVER")), "memory") {
		return "memory"
	}
	return "mysql"
}

// ReportCacheEnabled turns on the redis report cache (ENABLE_REPORT_CACHE).
func ReportCacheEnabled() bool {
	return envBool("ENABLE_REPORT_CACHE") || strings.EqualFold(strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE")), "on")
}
