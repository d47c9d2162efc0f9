package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// TrendHandler serves bucketed log volume reports.
type TrendHandler struct {
	trends *usecase.TrendService
}

// NewTrendHandler builds a new trend handler instance.
func NewTrendHandler(trends *usecase.TrendService) *TrendHandler {
	return &TrendHandler{trends: trends}
}

// RegisterRoutes wires the trend endpoints into the provided router group.
func (h *TrendHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.Aggregate)
}

var trendErrorCases = []ErrorCase{
	{Err: usecase.ErrInvalidArgument, Status: http.StatusBadRequest, Message: "invalid trend parameters"},
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
}

// Aggregate handles GET /trends. The period query parameter selects one of the
// supported reporting windows; application_ids narrows the report and is
// required for non-admin callers. view=summary collapses the time dimension
// into a single per-level count.
func (h *TrendHandler) Aggregate(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	appIDs, err := parseIDList(c.Query("application_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid application_ids"))
		return
	}

	switch view := c.DefaultQuery("view", "trends"); view {
	case "trends":
	case "summary":
		summary, err := h.trends.Summarize(c.Request.Context(), *user, c.Query("period"), appIDs)
		if err != nil {
			RespondWithMappedError(c, err, trendErrorCases, http.StatusInternalServerError, "failed to summarize logs")
			return
		}
		c.JSON(http.StatusOK, SummaryResponse{
			Period: summary.Period,
			From:   summary.From,
			To:     summary.To,
			Counts: levelCountsPayload(summary.Counts),
		})
		return
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid view"))
		return
	}

	report, err := h.trends.Aggregate(c.Request.Context(), *user, c.Query("period"), appIDs)
	if err != nil {
		RespondWithMappedError(c, err, trendErrorCases, http.StatusInternalServerError, "failed to aggregate trends")
		return
	}

	buckets := make([]TrendBucketPayload, 0, len(report.Buckets))
	for _, bucket := range report.Buckets {
		buckets = append(buckets, TrendBucketPayload{
			Start:  bucket.Start,
			End:    bucket.End,
			Counts: levelCountsPayload(bucket.Counts),
		})
	}

	c.JSON(http.StatusOK, TrendResponse{
		Period:  report.Period,
		From:    report.From,
		To:      report.To,
		Buckets: buckets,
		Totals:  levelCountsPayload(report.Totals),
	})
}
