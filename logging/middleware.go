package logging

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap/zapcore"
)

type Middleware interface {
	Process(event *LogEvent) *LogEvent
	Order() int
	Name() string
}

func normalizeConfig(config map[string]any) map[string]any {
	if config == nil {
		return make(map[string]any)
	}
	return config
}

type MiddlewarePipeline struct {
	middleware []Middleware
}

func NewMiddlewarePipeline(middleware []Middleware) *MiddlewarePipeline {
	sorted := make([]Middleware, len(middleware))
	copy(sorted, middleware)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})

	return &MiddlewarePipeline{
		middleware: sorted,
	}
}

func (p *MiddlewarePipeline) Process(event *LogEvent) *LogEvent {
	current := event
	for _, m := range p.middleware {
		current = m.Process(current)
		if current == nil {
			return nil
		}
	}
	return current
}

type MiddlewareFactory func(config map[string]any) (Middleware, error)

type MiddlewareRegistry struct {
	mu        sync.RWMutex
	factories map[string]MiddlewareFactory
}

func NewMiddlewareRegistry() *MiddlewareRegistry {
	return &MiddlewareRegistry{
		factories: make(map[string]MiddlewareFactory),
	}
}

func (r *MiddlewareRegistry) Register(name string, factory MiddlewareFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

func (r *MiddlewareRegistry) Create(name string, config map[string]any) (Middleware, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("middleware %q not registered", name)
	}

	return factory(normalizeConfig(config))
}

var defaultRegistry = NewMiddlewareRegistry()

func DefaultRegistry() *MiddlewareRegistry {
	return defaultRegistry
}

// middlewareCore wraps a zapcore.Core so every write is routed through a
// MiddlewarePipeline first: the zap entry and fields are converted to a
// LogEvent, processed, and converted back before reaching the wrapped core.
// A middleware that drops an event (returns nil) suppresses the write.
type middlewareCore struct {
	zapcore.Core
	pipeline *MiddlewarePipeline
	config   *LoggerConfig
}

// wrapWithMiddleware returns core unchanged when the pipeline has no
// middleware configured, so the common case pays no extraction cost.
func wrapWithMiddleware(core zapcore.Core, pipeline *MiddlewarePipeline, config *LoggerConfig) zapcore.Core {
	if pipeline == nil || len(pipeline.middleware) == 0 {
		return core
	}
	return &middlewareCore{Core: core, pipeline: pipeline, config: config}
}

func (c *middlewareCore) With(fields []zapcore.Field) zapcore.Core {
	return &middlewareCore{Core: c.Core.With(fields), pipeline: c.pipeline, config: c.config}
}

func (c *middlewareCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *middlewareCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	event := NewLogEvent(entry, fields, c.config)
	processed := c.pipeline.Process(event)
	if processed == nil {
		return nil
	}
	return c.Core.Write(entry, processed.ToZapFields())
}
