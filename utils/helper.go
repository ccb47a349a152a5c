package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/billing_backend/config"
)

func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

func NilIfEmpty[T comparable](ptr T) *T {
	var defaultZero T
	if ptr == defaultZero {
		return nil
	}
	return &ptr
}

// ReportLocation is the timezone report windows are computed in (REPORT_TIMEZONE, default UTC).
func ReportLocation() *time.Location {
	name := strings.TrimSpace(os.Getenv("REPORT_TIMEZONE"))
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetMonthRange returns the first and the last second of the month containing t.
func GetMonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// EndOfDay returns the last second of the calendar day starting at midnight
// day. Days are not always 24h long in zones with DST.
func EndOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Second)
}

// GetThisMonthRange returns the start and end dates of the current month.
func GetThisMonthRange() (time.Time, time.Time) {
	return GetMonthRange(time.Now().In(ReportLocation()))
}

// ObtainBusinessLock takes a redis lock named lockType:businessId. The caller
// must call the returned release func.
func ObtainBusinessLock(ctx context.Context, businessId string, lockType string, ttl time.Duration, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", businessId, errors.New("redis lock is nil"))
		return nil, errors.New("service not ready (redis lock not initialized)")
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, businessId)
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for businessID", businessId, err)
		return nil, errors.New("could not obtain lock for businessID")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for businessID", businessId, err)
		return nil, err
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
