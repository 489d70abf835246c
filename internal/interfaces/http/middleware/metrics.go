// Package middleware holds the gin middleware of the back office API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/telemetry"
)

// HTTPMetricsConfig enables request metrics on the given provider.
type HTTPMetricsConfig struct {
	MeterProvider metric.MeterProvider
	Enabled       bool
}

type httpMetrics struct {
	requests     *telemetry.Counter
	duration     *telemetry.Histogram
	requestSize  *telemetry.Histogram
	responseSize *telemetry.Histogram
	inFlight     metric.Int64UpDownCounter
}

// Upload bodies and PDF downloads reach the upper buckets.
var sizeBuckets = []float64{100, 1 << 10, 10 << 10, 100 << 10, 1 << 20, 5 << 20, 20 << 20, 50 << 20}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	m := &httpMetrics{}
	var err error
	if m.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests by route, status and caller role", "{request}"); err != nil {
		return nil, err
	}
	if m.duration, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_duration_seconds", Description: "HTTP request latency", Unit: "s",
		Boundaries: telemetry.HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.requestSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_size_bytes", Description: "HTTP request body size", Unit: "By",
		Boundaries: sizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.responseSize, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_response_size_bytes", Description: "HTTP response body size", Unit: "By",
		Boundaries: sizeBuckets,
	}); err != nil {
		return nil, err
	}
	m.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in progress"), metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// HTTPMetrics counts requests by method, route, status and caller role, and
// records latency and body sizes by method and route. Routes are gin
// patterns ("/api/v1/documents/:id"), never raw paths.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil {
		return passThrough
	}
	m, err := newHTTPMetrics(cfg.MeterProvider.Meter("http.server"))
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.inFlight.Add(ctx, 1)
		c.Next()
		m.inFlight.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		base := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		}
		counted := append(base[:len(base):len(base)], telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))
		if role := callerRole(c); role != "" {
			counted = append(counted, telemetry.AttrUserRole.String(role))
		}

		m.requests.Inc(ctx, counted...)
		m.duration.RecordDuration(ctx, time.Since(start), base...)
		if n := c.Request.ContentLength; n > 0 {
			m.requestSize.Record(ctx, float64(n), base...)
		}
		if n := c.Writer.Size(); n > 0 {
			m.responseSize.Record(ctx, float64(n), base...)
		}
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

// callerRole is the authenticated user's role, empty on public routes.
func callerRole(c *gin.Context) string {
	return string(CurrentRole(c))
}
