package app

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/converter-smoke/internal/scenario"
)

// HealthChecker reports the outcome of the latest smoke run.
type HealthChecker struct {
	latest atomic.Pointer[scenario.Report]
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

func (h *HealthChecker) Update(report scenario.Report) {
	h.latest.Store(&report)
}

func (h *HealthChecker) Handler(c *gin.Context) {
	report := h.latest.Load()
	if report == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unknown",
		})
		return
	}

	failures := report.Failures()
	if len(failures) > 0 {
		errs := make([]gin.H, 0, len(failures))
		for _, f := range failures {
			errs = append(errs, gin.H{
				"scenario": f.Scenario,
				"kind":     f.Kind().String(),
				"error":    f.Err.Error(),
			})
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "fail",
			"run_id":   report.RunID,
			"failures": errs,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "pass",
		"run_id": report.RunID,
	})
}
