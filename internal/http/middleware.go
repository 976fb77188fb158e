package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/keyvault/internal/metrics"
	"github.com/allisson/keyvault/internal/operation"
)

// CustomLoggerMiddleware logs one line per request through slog. Request bodies
// are never logged since they carry secret values.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		attrs := []any{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		logger.Info("http request", attrs...)
	}
}

func metricsMiddleware(
	meterProvider metric.MeterProvider,
	namespace string,
	dispatcher *operation.Dispatcher,
) gin.HandlerFunc {
	var ops []string
	if dispatcher != nil {
		ops = dispatcher.Operations()
	}
	return metrics.HTTPMetricsMiddleware(meterProvider, namespace, ops)
}
