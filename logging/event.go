package logging

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogEvent represents a structured log event
type LogEvent struct {
	Timestamp      time.Time      `json:"timestamp"`
	Severity       Severity       `json:"severity"`
	SeverityLevel  int            `json:"severityLevel,omitempty"`
	Message        string         `json:"message"`
	Logger         string         `json:"logger,omitempty"`
	Service        string         `json:"service"`
	Component      string         `json:"component,omitempty"`
	Environment    string         `json:"environment,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
	Error          *LogError      `json:"error,omitempty"`
	TraceID        string         `json:"traceId,omitempty"`
	SpanID         string         `json:"spanId,omitempty"`
	ParentSpanID   string         `json:"parentSpanId,omitempty"`
	CorrelationID  string         `json:"correlationId,omitempty"`
	RequestID      string         `json:"requestId,omitempty"`
	ContextID      string         `json:"contextId,omitempty"`
	UserID         string         `json:"userId,omitempty"`
	Operation      string         `json:"operation,omitempty"`
	DurationMs     *float64       `json:"durationMs,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	EventID        string         `json:"eventId,omitempty"`
	RedactionFlags []string       `json:"redactionFlags,omitempty"`
	ThrottleBucket string         `json:"throttleBucket,omitempty"`
}

// LogError represents error information in log events
type LogError struct {
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Stack   string         `json:"stack,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// FromZapLevel maps a zap level to the package's own Severity scale.
func FromZapLevel(level zapcore.Level) Severity {
	switch level {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.InfoLevel:
		return INFO
	case zapcore.WarnLevel:
		return WARN
	case zapcore.ErrorLevel:
		return ERROR
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return FATAL
	default:
		return INFO
	}
}

// wellKnownEventFields maps both the camelCase and snake_case spellings a
// field may arrive under to the LogEvent setter responsible for it.
var wellKnownEventFields = map[string]func(*LogEvent, string){
	"traceId":       func(e *LogEvent, v string) { e.TraceID = v },
	"trace_id":      func(e *LogEvent, v string) { e.TraceID = v },
	"spanId":        func(e *LogEvent, v string) { e.SpanID = v },
	"span_id":       func(e *LogEvent, v string) { e.SpanID = v },
	"parentSpanId":  func(e *LogEvent, v string) { e.ParentSpanID = v },
	"parent_span_id": func(e *LogEvent, v string) { e.ParentSpanID = v },
	"correlationId": func(e *LogEvent, v string) { e.CorrelationID = v },
	"correlation_id": func(e *LogEvent, v string) { e.CorrelationID = v },
	"requestId":     func(e *LogEvent, v string) { e.RequestID = v },
	"request_id":    func(e *LogEvent, v string) { e.RequestID = v },
	"contextId":     func(e *LogEvent, v string) { e.ContextID = v },
	"context_id":    func(e *LogEvent, v string) { e.ContextID = v },
	"userId":        func(e *LogEvent, v string) { e.UserID = v },
	"user_id":       func(e *LogEvent, v string) { e.UserID = v },
	"eventId":       func(e *LogEvent, v string) { e.EventID = v },
	"event_id":      func(e *LogEvent, v string) { e.EventID = v },
	"operation":     func(e *LogEvent, v string) { e.Operation = v },
}

// NewLogEvent builds a LogEvent from a zap entry and its fields, pulling
// well-known correlation/tracing fields (either camelCase or snake_case) into
// their own LogEvent members and leaving everything else in Context. A
// correlation ID is generated if the caller didn't supply one, so every event
// is correlatable even without the correlation middleware enabled.
func NewLogEvent(entry zapcore.Entry, fields []zapcore.Field, config *LoggerConfig) *LogEvent {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	raw := enc.Fields

	severity := FromZapLevel(entry.Level)
	event := &LogEvent{
		Timestamp:     entry.Time,
		Severity:      severity,
		SeverityLevel: severity.Level(),
		Message:       entry.Message,
		Logger:        entry.LoggerName,
		Context:       make(map[string]any),
	}
	if config != nil {
		event.Service = config.Service
		event.Component = config.Component
		event.Environment = config.Environment
	}

	for key, setter := range wellKnownEventFields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			setter(event, s)
		}
		delete(raw, key)
	}

	for _, key := range []string{"durationMs", "duration_ms"} {
		if v, ok := raw[key]; ok {
			if f, ok := v.(float64); ok {
				event.DurationMs = &f
			}
			delete(raw, key)
			break
		}
	}

	if v, ok := raw["tags"]; ok {
		event.Tags = toStringSlice(v)
		delete(raw, "tags")
	}

	if v, ok := raw["error"]; ok {
		if m, ok := v.(map[string]any); ok {
			event.Error = errorFromMap(m)
		}
		delete(raw, "error")
	}

	for k, v := range raw {
		event.Context[k] = v
	}

	if event.CorrelationID == "" {
		event.CorrelationID = generateCorrelationID()
	}

	return event
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func errorFromMap(m map[string]any) *LogError {
	le := &LogError{}
	if s, ok := m["message"].(string); ok {
		le.Message = s
	}
	if s, ok := m["type"].(string); ok {
		le.Type = s
	}
	if s, ok := m["stack"].(string); ok {
		le.Stack = s
	}
	if s, ok := m["code"].(string); ok {
		le.Code = s
	}
	if d, ok := m["details"].(map[string]any); ok {
		le.Details = d
	}
	return le
}

// ToJSON serializes the event using its cross-language field names.
func (e *LogEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// With returns a deep copy of the event with an additional context field,
// leaving the receiver untouched.
func (e *LogEvent) With(key string, value any) *LogEvent {
	clone := *e

	clone.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	clone.Context[key] = value

	if e.DurationMs != nil {
		d := *e.DurationMs
		clone.DurationMs = &d
	}
	if e.Error != nil {
		errCopy := *e.Error
		if e.Error.Details != nil {
			errCopy.Details = make(map[string]any, len(e.Error.Details))
			for k, v := range e.Error.Details {
				errCopy.Details[k] = v
			}
		}
		clone.Error = &errCopy
	}
	if e.Tags != nil {
		clone.Tags = append([]string(nil), e.Tags...)
	}
	if e.RedactionFlags != nil {
		clone.RedactionFlags = append([]string(nil), e.RedactionFlags...)
	}

	return &clone
}

// ToZapFields flattens the event back into zap fields, the inverse of
// NewLogEvent, for handing off to the wrapped zapcore.Core after middleware
// processing.
func (e *LogEvent) ToZapFields() []zap.Field {
	fields := make([]zap.Field, 0, 16+len(e.Context))

	if e.Service != "" {
		fields = append(fields, zap.String("service", e.Service))
	}
	if e.Environment != "" {
		fields = append(fields, zap.String("environment", e.Environment))
	}
	if e.Component != "" {
		fields = append(fields, zap.String("component", e.Component))
	}
	if e.TraceID != "" {
		fields = append(fields, zap.String("traceId", e.TraceID))
	}
	if e.SpanID != "" {
		fields = append(fields, zap.String("spanId", e.SpanID))
	}
	if e.ParentSpanID != "" {
		fields = append(fields, zap.String("parentSpanId", e.ParentSpanID))
	}
	if e.CorrelationID != "" {
		fields = append(fields, zap.String("correlationId", e.CorrelationID))
	}
	if e.RequestID != "" {
		fields = append(fields, zap.String("requestId", e.RequestID))
	}
	if e.ContextID != "" {
		fields = append(fields, zap.String("contextId", e.ContextID))
	}
	if e.UserID != "" {
		fields = append(fields, zap.String("userId", e.UserID))
	}
	if e.Operation != "" {
		fields = append(fields, zap.String("operation", e.Operation))
	}
	if e.DurationMs != nil {
		fields = append(fields, zap.Float64("durationMs", *e.DurationMs))
	}
	if e.EventID != "" {
		fields = append(fields, zap.String("eventId", e.EventID))
	}
	if len(e.Tags) > 0 {
		fields = append(fields, zap.Strings("tags", e.Tags))
	}
	if len(e.RedactionFlags) > 0 {
		fields = append(fields, zap.Strings("redactionFlags", e.RedactionFlags))
	}
	if e.ThrottleBucket != "" {
		fields = append(fields, zap.String("throttleBucket", e.ThrottleBucket))
	}
	if e.Error != nil {
		fields = append(fields, zap.Any("error", e.Error))
	}
	for k, v := range e.Context {
		fields = append(fields, zap.Any(k, v))
	}

	return fields
}
