package telemetry

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, sampler(1.5).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "root:TraceIDRatioBased{0.25}")
}

func TestNilProviders(t *testing.T) {
	var p *Providers
	log := zap.NewNop()

	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NotNil(t, p.MeterFor("documents"))
	assert.Same(t, log, p.BridgeLogger(log, "letatchebois-api", zapcore.InfoLevel))
	assert.NotPanics(t, p.EnableSpanProfiles)
}

type memoryLogExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryLogExporter) ForceFlush(context.Context) error { return nil }

func TestBridgeLogger(t *testing.T) {
	exp := &memoryLogExporter{}
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	local, observed := observer.New(zapcore.DebugLevel)
	log := (&Providers{Logs: lp}).BridgeLogger(zap.New(local), "letatchebois-api", zapcore.InfoLevel)

	log.Debug("draft saved")
	log.Info("invoice issued", zap.String("number", "FA-2026-0001"))
	log.With(zap.String("role", "COMPTABLE")).Warn("payment exceeds balance")

	assert.Equal(t, 3, observed.Len(), "local output keeps its own level")
	exp.mu.Lock()
	defer exp.mu.Unlock()
	assert.Equal(t, []string{"invoice issued", "payment exceeds balance"}, exp.bodies)
}

func TestLabelPairs(t *testing.T) {
	pairs := labelPairs(map[string]string{
		ProfilingLabelRoute:      "/api/v1/documents/:id/pdf",
		ProfilingLabelMethod:     "GET",
		"document_id":            "6f1c1c40-5ae1-4c3e-9a7b-1b2f6f2b3e10",
		ProfilingLabelController: "",
		ProfilingLabelOperation:  strings.Repeat("x", MaxLabelValueLength+10),
	})

	require.Len(t, pairs, 6)
	assert.Equal(t, []string{"method", "GET", "operation"}, pairs[:3])
	assert.Len(t, pairs[3], MaxLabelValueLength)
	assert.Equal(t, []string{"route", "/api/v1/documents/:id/pdf"}, pairs[4:])
}

func TestRegionLabels(t *testing.T) {
	labels := RegionLabels("pdf_render", map[string]string{ProfilingLabelOperation: "FACTURE", ProfilingLabelRegion: "ignored"})
	assert.Equal(t, map[string]string{"region": "pdf_render", "operation": "FACTURE"}, labels)
}

func TestWithProfilingLabels_RunsFn(t *testing.T) {
	ran := 0
	WithProfilingLabels(context.Background(), nil, func(context.Context) { ran++ })
	WithProfilingLabels(context.Background(), RegionLabels("excel_export", nil), func(context.Context) { ran++ })
	assert.Equal(t, 2, ran)
}

func TestSQLOperation(t *testing.T) {
	cases := map[string]string{
		"select * from crm_documents":                 "SELECT",
		"  INSERT INTO audit_logs (id) VALUES ($1)":   "INSERT",
		"update catalog_items set stock_qty = $1":     "UPDATE",
		"DELETE FROM sessions":                        "DELETE",
		"WITH due AS (SELECT 1) SELECT * FROM due":    "SELECT",
		"SELECT setval('document_seq', 1)":            "SELECT",
		"CREATE INDEX idx_documents_number ON t (id)": "OTHER",
	}
	for stmt, want := range cases {
		assert.Equal(t, want, sqlOperation(stmt), stmt)
	}
}
