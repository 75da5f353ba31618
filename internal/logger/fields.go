package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through a job run.
const (
	FieldJobID      = "job_id"
	FieldRequestID  = "request_id"
	FieldCaseID     = "case_id"
	FieldSpace      = "space"
	FieldAnnotation = "annotation"
	FieldComponent  = "component"
	FieldStep       = "step"
)

// Metric fields, attached per record through Entry.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldRows       = "rows"
	FieldColumns    = "columns"
	FieldSize       = "size"
	FieldStatus     = "status"
)
