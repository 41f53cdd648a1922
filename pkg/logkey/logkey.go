package logkey

// Keys used for structured logging attributes so log queries stay consistent
// across handlers and stores.
const (
	TraceID = "TRACE ID"
	ERROR   = "ERROR"
)
