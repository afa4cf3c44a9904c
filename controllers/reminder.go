// controllers/reminder.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/models"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/services"
	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/utils"
)

// ReminderRunner is what the admin surface needs from the scheduler.
type ReminderRunner interface {
	RunKind(ctx context.Context, kind models.ReminderKind) (*services.RunResult, error)
}

type ReminderController struct {
	Runner ReminderRunner
	Ledger services.ReminderLedger
}

// RunNow force-fires one reminder kind outside its schedule. It runs
// the same path as the cron triggers, so already-sent records make a
// repeat invocation a no-op.
func (rc *ReminderController) RunNow(c *gin.Context) {
	kind := models.ReminderKind(c.Param("kind"))
	if !kind.Valid() {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown reminder kind: "+string(kind))
		return
	}

	result, err := rc.Runner.RunKind(c.Request.Context(), kind)
	switch {
	case errors.Is(err, services.ErrRunInProgress):
		utils.RespondWithError(c, http.StatusConflict, "A run of this kind is already in progress")
		return
	case errors.Is(err, services.ErrTransportNotReady):
		utils.RespondWithError(c, http.StatusServiceUnavailable, "SMS transport is not configured")
		return
	case err != nil:
		utils.RespondWithError(c, http.StatusInternalServerError, "Run aborted: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLogs returns recent dedup-ledger rows, newest first.
func (rc *ReminderController) GetLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		utils.RespondWithError(c, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "offset must be >= 0")
		return
	}

	logs, err := rc.Ledger.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reminder logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
		"count":  len(logs),
	})
}
