package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pandeptwidyaop/hostbridge/internal/models"
)

// BodySizeLimit caps request bodies at maxBytes. Calls such as
// system_write_file carry whole file contents, so the limit is configurable.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet ||
			c.Request.Method == http.MethodHead ||
			c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.InvokeResponse{
				Error: "request body too large",
				Kind:  "invalid_args",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
