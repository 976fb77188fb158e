package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OperationParam is the route parameter carrying the operation name.
const OperationParam = "name"

// HTTPMetricsMiddleware records <namespace>_http_requests_total and
// <namespace>_http_request_duration_seconds labeled by method, route pattern,
// operation and status code. operations is the vocabulary of the operation label;
// any other name is recorded as "other". If the instruments cannot be created the
// middleware records nothing.
func HTTPMetricsMiddleware(
	meterProvider metric.MeterProvider,
	namespace string,
	operations []string,
) gin.HandlerFunc {
	meter := meterProvider.Meter(namespace)

	known := make(map[string]struct{}, len(operations))
	for _, op := range operations {
		known[op] = struct{}{}
	}

	requestCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return passthrough
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return passthrough
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", routePattern(c.FullPath())),
			attribute.String("operation", operationLabel(known, c.Param(OperationParam))),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)

		ctx := c.Request.Context()
		requestCounter.Add(ctx, 1, attrs)
		durationHisto.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

func passthrough(c *gin.Context) {
	c.Next()
}

// routePattern returns the matched route, or "unknown" for unmatched requests so
// arbitrary paths never become label values.
func routePattern(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func operationLabel(known map[string]struct{}, name string) string {
	if name == "" {
		return "none"
	}
	if _, ok := known[name]; ok {
		return name
	}
	return "other"
}
