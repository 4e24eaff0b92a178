package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	if handler == nil {
		return func(c *gin.Context) {
			c.String(http.StatusServiceUnavailable, "metrics handler not initialized\n")
		}
	}
	return gin.WrapH(handler)
}
