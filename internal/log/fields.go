package log

// Standard field names used across structured log records.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldUserAgent = "user_agent"
)

// Component names
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
