package config

import (
	"context"
	"os"
	"strings"

	"github.com/mmdatafocus/billing_backend/appctx"
	"github.com/sirupsen/logrus"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logLevelFromEnv())
	logg.SetOutput(os.Stdout)
}

// LOG_LEVEL accepts any logrus level name; default error.
func logLevelFromEnv() logrus.Level {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if v == "" {
		return logrus.ErrorLevel
	}
	lvl, err := logrus.ParseLevel(v)
	if err != nil {
		return logrus.ErrorLevel
	}
	return lvl
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}

// LogErrorCtx is LogError plus the request's business and correlation ids.
func LogErrorCtx(ctx context.Context, logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	if v, ok := appctx.GetString(ctx, appctx.ContextKeyBusinessId); ok && v != "" {
		fields["business_id"] = v
	}
	if v, ok := appctx.GetString(ctx, appctx.ContextKeyCorrelationId); ok && v != "" {
		fields["correlation_id"] = v
	}
	logger.WithFields(fields).Error(err.Error())
}
