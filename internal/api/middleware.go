package api

import (
	"time"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one, echoes
// it in the response and logs the finished request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)

		start := time.Now()
		c.Next()

		logging.Debug("request", logging.Fields{
			constants.LogFieldRequestID: id,
			constants.LogFieldMethod:    c.Request.Method,
			constants.LogFieldPath:      c.Request.URL.Path,
			constants.LogFieldStatus:    c.Writer.Status(),
			constants.LogFieldLatencyMS: time.Since(start).Milliseconds(),
		})
	}
}
