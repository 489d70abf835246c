package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormConfig selects the database instrumentation.
type GormConfig struct {
	// Tracing installs otelgorm so every statement gets a client span.
	Tracing bool
	// WithVariables keeps bound values in db.statement. Leave off outside dev.
	WithVariables bool
	DBSystem      string
	// SlowQuery flags statements at or over this duration, 200ms when zero.
	SlowQuery time.Duration
	// PoolInterval is the pool stats sampling period, 15s when zero.
	PoolInterval time.Duration
}

// GormInstrumentation records query counts, latency, slow statements and
// connection pool usage, and flags slow statements on the otelgorm spans.
type GormInstrumentation struct {
	cfg    GormConfig
	logger *zap.Logger

	queries  *Counter
	duration *Histogram
	slow     *Counter
	pool     *Gauge
	poolMax  *Gauge

	sqlDB    *sql.DB
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type queryStartKey struct{}

// InstrumentGorm registers tracing and metric callbacks on db and starts the
// pool sampler. Stop ends the sampler.
func InstrumentGorm(db *gorm.DB, meter metric.Meter, cfg GormConfig, logger *zap.Logger) (*GormInstrumentation, error) {
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = 200 * time.Millisecond
	}
	if cfg.PoolInterval <= 0 {
		cfg.PoolInterval = 15 * time.Second
	}
	g := &GormInstrumentation{cfg: cfg, logger: logger, stop: make(chan struct{})}

	if err := g.newInstruments(meter); err != nil {
		return nil, err
	}

	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem), otelgorm.WithoutMetrics()}
		if !cfg.WithVariables {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, err
		}
	}
	if err := g.register(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	g.sqlDB = sqlDB
	g.wg.Add(1)
	go g.samplePool()

	logger.Info("Database instrumented",
		zap.Bool("tracing", cfg.Tracing),
		zap.Duration("slow_query", cfg.SlowQuery))
	return g, nil
}

func (g *GormInstrumentation) newInstruments(meter metric.Meter) error {
	var err error
	if g.queries, err = NewCounter(meter, "db_query_total", "Database statements by operation", "{query}"); err != nil {
		return err
	}
	if g.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return err
	}
	if g.slow, err = NewCounter(meter, "db_slow_query_total", "Statements over the slow query threshold by table", "{query}"); err != nil {
		return err
	}
	if g.pool, err = NewGauge(meter, "db_pool_connections", "Pool connections by state", "{connection}"); err != nil {
		return err
	}
	g.poolMax, err = NewGauge(meter, "db_pool_connections_max", "Pool size limit", "{connection}")
	return err
}

type gormRegister interface {
	Register(name string, fn func(*gorm.DB)) error
}

// register stamps a start time before each gorm processor and observes the
// statement after it, ahead of otelgorm ending its span. Row and Raw
// statements are classified from their SQL.
func (g *GormInstrumentation) register(db *gorm.DB) error {
	cb := db.Callback()
	stamp := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	hooks := []struct {
		name          string
		before, after gormRegister
		op            string
	}{
		{"create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create").Before("otel:after:create"), "INSERT"},
		{"query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query").Before("otel:after:select"), "SELECT"},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update").Before("otel:after:update"), "UPDATE"},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete").Before("otel:after:delete"), "DELETE"},
		{"row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row").Before("otel:after:row"), ""},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw").Before("otel:after:raw"), ""},
	}

	var errs []error
	for _, h := range hooks {
		op := h.op
		errs = append(errs,
			h.before.Register("ltb:start_"+h.name, stamp),
			h.after.Register("ltb:observe_"+h.name, func(tx *gorm.DB) { g.observe(tx, op) }),
		)
	}
	return errors.Join(errs...)
}

func (g *GormInstrumentation) observe(tx *gorm.DB, op string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	if op == "" {
		op = sqlOperation(tx.Statement.SQL.String())
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}

	var elapsed time.Duration
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		elapsed = time.Since(start)
	}

	g.queries.Inc(ctx, AttrDBOperation.String(op))
	g.duration.RecordDuration(ctx, elapsed, AttrDBOperation.String(op))
	if elapsed < g.cfg.SlowQuery {
		return
	}
	g.slow.Inc(ctx, AttrDBTable.String(table))

	// otelgorm fills in table, rows and errors; only the slow flag is ours
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", g.cfg.SlowQuery.Milliseconds()),
		))
	}
}

func sqlOperation(stmt string) string {
	stmt = strings.ToUpper(strings.TrimSpace(stmt))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(stmt, op) {
			return op
		}
	}
	if strings.HasPrefix(stmt, "WITH") {
		return "SELECT"
	}
	return "OTHER"
}

func (g *GormInstrumentation) samplePool() {
	defer g.wg.Done()
	ticker := time.NewTicker(g.cfg.PoolInterval)
	defer ticker.Stop()

	for {
		g.recordPool(context.Background())
		select {
		case <-ticker.C:
		case <-g.stop:
			return
		}
	}
}

func (g *GormInstrumentation) recordPool(ctx context.Context) {
	stats := g.sqlDB.Stats()
	g.poolMax.Record(ctx, int64(stats.MaxOpenConnections))
	g.pool.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	g.pool.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	g.pool.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends the pool sampler. Safe to call more than once.
func (g *GormInstrumentation) Stop() {
	if g == nil {
		return
	}
	g.stopOnce.Do(func() {
		close(g.stop)
		g.wg.Wait()
	})
}
