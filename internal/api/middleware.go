package api

import (
	"net/http"
	"time"

	"gomarkov/domain/core"
	"gomarkov/internal/analysis"

	"github.com/gin-gonic/gin"
)

const (
	// RequestIDHeader carries the analysis ID in both directions.
	RequestIDHeader = "X-Request-ID"

	analysisIDKey = "analysis_id"
)

// requestID reuses a caller-supplied UUID request ID or assigns a new one,
// and binds it to the request context so engine calls log and return it.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseAnalysisID(c.GetHeader(RequestIDHeader))
		if err != nil {
			id = core.NewAnalysisID()
		}
		c.Set(analysisIDKey, id)
		c.Header(RequestIDHeader, id.String())
		c.Request = c.Request.WithContext(analysis.WithAnalysisID(c.Request.Context(), id))
		c.Next()
	}
}

// observe counts requests by route and status and writes an access log line.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.ObserveRequest(route, status)
		s.logger.Debug("%s %s -> %d (%s) [%s]",
			c.Request.Method, c.Request.URL.Path, status, time.Since(start), analysisID(c))
	}
}

// limitBody caps every request body at limit bytes. Handlers report the
// overflow through bindError.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// analysisID returns the ID assigned by requestID.
func analysisID(c *gin.Context) core.AnalysisID {
	if v, ok := c.Get(analysisIDKey); ok {
		if id, ok := v.(core.AnalysisID); ok {
			return id
		}
	}
	return ""
}
