package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
)

// PageBounds holds the pagination limits enforced on every log search.
type PageBounds struct {
	DefaultSize int
	MaxSize     int
}

// LogFilter captures the caller-facing search criteria. Zero values mean
// "no restriction" for the corresponding field. From is inclusive, To exclusive.
type LogFilter struct {
	ApplicationIDs  []int64
	Levels          []string
	From            *time.Time
	To              *time.Time
	MessageContains string
}

// PageRequest selects a page and ordering of the search result.
type PageRequest struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// LogPage is one page of search results with pagination metadata.
type LogPage struct {
	Records    []domain.LogRecord
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

// LogQueryService validates log searches, applies the caller's access scope and
// delegates the narrowed query to the log store.
type LogQueryService struct {
	store  port.LogStore
	scopes *ScopeResolver
	bounds PageBounds
	logger *zap.Logger
}

// NewLogQueryService constructs a LogQueryService.
func NewLogQueryService(store port.LogStore, scopes *ScopeResolver, bounds PageBounds, logger *zap.Logger) *LogQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bounds.DefaultSize <= 0 {
		bounds.DefaultSize = 50
	}
	if bounds.MaxSize <= 0 {
		bounds.MaxSize = 1000
	}
	return &LogQueryService{store: store, scopes: scopes, bounds: bounds, logger: logger}
}

var sortKeys = map[string]port.LogSortKey{
	"":          port.LogSortTimestamp,
	"timestamp": port.LogSortTimestamp,
	"level":     port.LogSortLevel,
	"id":        port.LogSortID,
}

// Search runs a scoped log search on behalf of the given user.
func (s *LogQueryService) Search(ctx context.Context, user domain.User, filter LogFilter, page PageRequest) (*LogPage, error) {
	if page.Page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", ErrInvalidArgument)
	}
	if page.Size < 0 || page.Size > s.bounds.MaxSize {
		return nil, fmt.Errorf("%w: size must be between 0 and %d", ErrInvalidArgument, s.bounds.MaxSize)
	}
	if page.Size == 0 {
		page.Size = s.bounds.DefaultSize
	}

	levels := make([]domain.Level, 0, len(filter.Levels))
	for _, raw := range filter.Levels {
		level, err := domain.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		levels = append(levels, level)
	}

	sortKey, ok := sortKeys[strings.ToLower(strings.TrimSpace(page.SortBy))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalidArgument, page.SortBy)
	}

	// An inverted window is an empty window, not an error.
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return &LogPage{Records: []domain.LogRecord{}, Page: page.Page, Size: page.Size}, nil
	}

	scope, err := s.scopes.Resolve(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}

	effective := scope.Restrict(filter.ApplicationIDs)
	if !scope.IsAdmin && len(effective) == 0 {
		return &LogPage{Records: []domain.LogRecord{}, Page: page.Page, Size: page.Size}, nil
	}

	records, total, err := s.store.Search(ctx, port.LogQuery{
		ApplicationIDs:  effective,
		Levels:          levels,
		From:            filter.From,
		To:              filter.To,
		MessageContains: filter.MessageContains,
		Sort:            port.LogSort{Key: sortKey, Descending: page.SortDesc},
		Offset:          page.Page * page.Size,
		Limit:           page.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("search logs: %w", err)
	}

	if records == nil {
		records = []domain.LogRecord{}
	}

	return &LogPage{
		Records:    records,
		Total:      total,
		Page:       page.Page,
		Size:       page.Size,
		TotalPages: totalPages(total, page.Size),
	}, nil
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
