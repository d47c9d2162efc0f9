package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// LogHandler serves scoped log searches.
type LogHandler struct {
	logs *usecase.LogQueryService
}

// NewLogHandler builds a new log handler instance.
func NewLogHandler(logs *usecase.LogQueryService) *LogHandler {
	return &LogHandler{logs: logs}
}

// RegisterRoutes wires the log endpoints into the provided router group.
func (h *LogHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.Search)
}

// Search handles GET /logs. Filters, sorting and pagination come from query
// parameters; results are restricted to the caller's accessible applications.
func (h *LogHandler) Search(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	filter := usecase.LogFilter{
		MessageContains: strings.TrimSpace(c.Query("message")),
	}

	appIDs, err := parseIDList(c.Query("application_ids"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid application_ids"))
		return
	}
	filter.ApplicationIDs = appIDs

	if raw := strings.TrimSpace(c.Query("levels")); raw != "" {
		for _, level := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(level); trimmed != "" {
				filter.Levels = append(filter.Levels, trimmed)
			}
		}
	}

	from, ok := parseTimeParam(c, "from")
	if !ok {
		return
	}
	filter.From = from

	to, ok := parseTimeParam(c, "to")
	if !ok {
		return
	}
	filter.To = to

	page, ok := parseIntParam(c, "page", 0)
	if !ok {
		return
	}
	size, ok := parseIntParam(c, "size", 0)
	if !ok {
		return
	}

	request := usecase.PageRequest{
		Page:     page,
		Size:     size,
		SortBy:   c.Query("sort_by"),
		SortDesc: strings.EqualFold(c.Query("order"), "desc"),
	}

	result, err := h.logs.Search(c.Request.Context(), *user, filter, request)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidArgument, Status: http.StatusBadRequest, Message: "invalid search parameters"},
			{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		}, http.StatusInternalServerError, "failed to search logs")
		return
	}

	records := make([]LogRecordPayload, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, newLogRecordPayload(record))
	}

	c.JSON(http.StatusOK, LogSearchResponse{
		Records:    records,
		Total:      result.Total,
		Page:       result.Page,
		Size:       result.Size,
		TotalPages: result.TotalPages,
	})
}

func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseTimeParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}

	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid "+name+" timestamp, expected RFC3339"))
		return nil, false
	}
	return &ts, true
}

func parseIntParam(c *gin.Context, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid "+name+" parameter"))
		return 0, false
	}
	return value, true
}
