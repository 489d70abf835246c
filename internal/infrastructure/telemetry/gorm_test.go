package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sampleItem struct {
	ID    uint
	Label string
}

func newInstrumentedDB(t *testing.T, cfg telemetry.GormConfig) (*gorm.DB, *sdkmetric.ManualReader, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&sampleItem{}))

	cfg.DBSystem = "sqlite"
	inst, err := telemetry.InstrumentGorm(db, mp.Meter("db.client"), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(inst.Stop)
	return db, reader, recorder
}

func TestInstrumentGorm_CountsStatements(t *testing.T) {
	db, reader, _ := newInstrumentedDB(t, telemetry.GormConfig{SlowQuery: time.Hour})
	ctx := context.Background()

	require.NoError(t, db.WithContext(ctx).Create(&sampleItem{Label: "porte en cèdre"}).Error)
	var got sampleItem
	require.NoError(t, db.WithContext(ctx).First(&got).Error)
	require.NoError(t, db.WithContext(ctx).Model(&got).Update("label", "porte sculptée").Error)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byOp := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "db_query_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				op, _ := dp.Attributes.Value(telemetry.AttrDBOperation)
				byOp[op.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), byOp["INSERT"])
	assert.Equal(t, int64(1), byOp["SELECT"])
	assert.Equal(t, int64(1), byOp["UPDATE"])
	assert.Zero(t, sumOf(t, reader, "db_slow_query_total"))
}

func TestInstrumentGorm_FlagsSlowStatementsOnSpans(t *testing.T) {
	db, reader, recorder := newInstrumentedDB(t, telemetry.GormConfig{Tracing: true, SlowQuery: time.Nanosecond})

	require.NoError(t, db.Create(&sampleItem{Label: "table basse"}).Error)

	assert.Positive(t, sumOf(t, reader, "db_slow_query_total"))

	var flagged bool
	for _, span := range recorder.Ended() {
		for _, kv := range span.Attributes() {
			if kv == attribute.Bool("db.slow_query", true) {
				flagged = true
			}
		}
	}
	assert.True(t, flagged, "otelgorm span should carry the slow flag")
}

func TestInstrumentGorm_SamplesPool(t *testing.T) {
	_, reader, _ := newInstrumentedDB(t, telemetry.GormConfig{PoolInterval: 10 * time.Millisecond})

	assert.Eventually(t, func() bool {
		return sumOf(t, reader, "db_pool_connections_max") == 1
	}, time.Second, 10*time.Millisecond)
}

func TestGormInstrumentation_StopTwice(t *testing.T) {
	var nilInst *telemetry.GormInstrumentation
	nilInst.Stop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	inst, err := telemetry.InstrumentGorm(db, sdkmetric.NewMeterProvider().Meter("db"), telemetry.GormConfig{}, zap.NewNop())
	require.NoError(t, err)

	inst.Stop()
	inst.Stop()
}
