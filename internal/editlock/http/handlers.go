package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/domain"
)

// ReportReader reads stored sweep reports
type ReportReader interface {
	Get(ctx context.Context, runID string) (*domain.SweepReport, error)
	Latest(ctx context.Context) (*domain.SweepReport, error)
	List(ctx context.Context, limit int) ([]domain.ReportSummary, error)
}

// Trigger starts a sweep on demand
type Trigger interface {
	Run(ctx context.Context) (*domain.SweepReport, error)
}

// SweepHandler serves sweep reports and on-demand runs
type SweepHandler struct {
	reports ReportReader
	trigger Trigger
	logger  *zap.Logger
}

// NewSweepHandler creates a new SweepHandler. reports may be nil when no
// history store is configured.
func NewSweepHandler(reports ReportReader, trigger Trigger, logger *zap.Logger) *SweepHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepHandler{reports: reports, trigger: trigger, logger: logger}
}

// Latest handles GET /sweeps/latest
func (h *SweepHandler) Latest(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	report, err := h.reports.Latest(c.Request.Context())
	h.respondReport(c, report, err)
}

// Get handles GET /sweeps/:id
func (h *SweepHandler) Get(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	h.respondReport(c, report, err)
}

// List handles GET /sweeps
func (h *SweepHandler) List(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	summaries, err := h.reports.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list sweep reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sweep reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sweeps": summaries})
}

// Trigger handles POST /sweeps
func (h *SweepHandler) Trigger(c *gin.Context) {
	report, err := h.trigger.Run(c.Request.Context())
	if errors.Is(err, domain.ErrSweepInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrStoreUnavailable) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error(), "report": report})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *SweepHandler) historyEnabled(c *gin.Context) bool {
	if h.reports == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "sweep history is not configured"})
		return false
	}
	return true
}

func (h *SweepHandler) respondReport(c *gin.Context, report *domain.SweepReport, err error) {
	if errors.Is(err, domain.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("failed to read sweep report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read sweep report"})
		return
	}

	c.JSON(http.StatusOK, report)
}
