// controllers/health.go
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/services"
)

type transportReadiness interface {
	Ready() bool
}

type ledgerReadiness interface {
	Ready(ctx context.Context) bool
}

type HealthController struct {
	State     *services.SchedulerState
	Transport transportReadiness
	Ledger    ledgerReadiness
}

// Liveness probe; always 200 while the process is up.
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStats returns the scheduler counters plus transport and ledger
// readiness, the read-only introspection surface for operators.
func (hc *HealthController) GetStats(c *gin.Context) {
	snapshot := hc.State.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"stats":          snapshot,
		"transportReady": hc.Transport.Ready(),
		"ledgerReady":    hc.Ledger.Ready(c.Request.Context()),
	})
}
