package log

import "time"

// Field names shared by all components
const (
	FieldError     = "error"
	FieldComponent = "component"
	FieldService   = "service"
	FieldVersion   = "version"

	FieldTraceID = "trace_id"
	FieldSpanID  = "span_id"

	FieldMethod     = "method"
	FieldRoute      = "route"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration"
	FieldMechanism  = "mechanism"

	FieldAddress = "address"
	FieldURL     = "url"
	FieldMetric  = "metric"
)

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Error attaches err under FieldError
func Error(err error) Field { return Field{Key: FieldError, Value: err} }

