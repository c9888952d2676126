package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "medledger/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace attaches correlation IDs to every request. Incoming header values
// are honored so a gateway's IDs survive into the logs; missing ones are
// generated. Both IDs are echoed back in the response headers.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = appctx.NewTraceID()
		}

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = appctx.NewTraceID()
		}

		ctx := appctx.WithTrace(c.Request.Context(), appctx.TraceContext{
			TraceID:   traceID,
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
