package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIdKey is the gin context key under which the logger middleware stores
// the per-request trace id.
const TraceIdKey = "trace_id"

// GetTraceIdOfRequest returns the trace id assigned to the request by the
// logger middleware. If the middleware did not run a fresh id is generated so
// log lines are never missing one.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Value(TraceIdKey).(string)
	if !ok || traceId == "" {
		return uuid.NewString()
	}
	return traceId
}
