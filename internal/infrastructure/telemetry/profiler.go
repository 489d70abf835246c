package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig points the continuous profiler at a Pyroscope server.
type ProfilerConfig struct {
	ServerAddress     string
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	// Contention adds mutex and block profiles on top of cpu, heap and goroutines.
	Contention bool
}

// Profiler is a running Pyroscope session.
type Profiler struct {
	session *pyroscope.Profiler
	logger  *zap.Logger
	once    sync.Once
}

// StartProfiler starts continuous profiling.
func StartProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	if cfg.ServerAddress == "" || cfg.ApplicationName == "" {
		return nil, errors.New("profiler needs a server address and an application name")
	}

	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}
	if cfg.Contention {
		runtime.SetMutexProfileFraction(5)
		runtime.SetBlockProfileRate(5)
		types = append(types,
			pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration)
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}

	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            logger.Named("pyroscope").Sugar(),
		Tags:              tags,
		ProfileTypes:      types,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("Continuous profiling started",
		zap.String("server", cfg.ServerAddress),
		zap.Int("profile_types", len(types)))
	return &Profiler{session: session, logger: logger}, nil
}

// Stop flushes pending profiles. Later calls are no-ops.
func (p *Profiler) Stop() error {
	if p == nil {
		return nil
	}
	var err error
	p.once.Do(func() {
		err = p.session.Stop()
	})
	return err
}

// Profiling label keys.
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelRole       = "role"
	ProfilingLabelOperation  = "operation"
	ProfilingLabelRegion     = "region"
)

// MaxLabelValueLength caps label values.
const MaxLabelValueLength = 128

// unboundedLabels never reach Pyroscope: one series per value would exhaust it.
var unboundedLabels = map[string]bool{
	"user_id":     true,
	"request_id":  true,
	"document_id": true,
	"client_id":   true,
	"trace_id":    true,
	"span_id":     true,
}

// WithProfilingLabels runs fn with labels attached to every profile sample
// it produces. Empty values and unbounded keys are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// RegionLabels labels a code region, e.g. "pdf_render", plus extra labels.
func RegionLabels(region string, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		labels[k] = v
	}
	labels[ProfilingLabelRegion] = region
	return labels
}

// labelPairs flattens labels into sorted key, value pairs.
func labelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k == "" || v == "" || unboundedLabels[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, strings.ToLower(k), v)
	}
	return pairs
}
