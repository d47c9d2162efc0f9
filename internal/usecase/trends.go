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

// trendPeriod fixes the window length and bucket width for a named period.
type trendPeriod struct {
	window time.Duration
	width  time.Duration
}

var trendPeriods = map[string]trendPeriod{
	"last_hour":     {window: time.Hour, width: 5 * time.Minute},
	"last_24_hours": {window: 24 * time.Hour, width: time.Hour},
	"last_7_days":   {window: 7 * 24 * time.Hour, width: 24 * time.Hour},
	"last_30_days":  {window: 30 * 24 * time.Hour, width: 24 * time.Hour},
}

// TrendBucket is one time slice of the report. Counts carries an entry for
// every severity, zero-filled when no records fell into the slice.
type TrendBucket struct {
	Start  time.Time
	End    time.Time
	Counts map[domain.Level]int64
}

// TrendReport is a bucketed per-level breakdown over a named period.
type TrendReport struct {
	Period  string
	From    time.Time
	To      time.Time
	Buckets []TrendBucket
	Totals  map[domain.Level]int64
}

// SummaryReport is a per-level count over a named period with no time
// dimension. Levels absent from the data are omitted.
type SummaryReport struct {
	Period string
	From   time.Time
	To     time.Time
	Counts map[domain.Level]int64
}

// TrendService aggregates scoped log volumes into fixed-width buckets.
type TrendService struct {
	store  port.LogStore
	scopes *ScopeResolver
	logger *zap.Logger
	now    func() time.Time
}

// NewTrendService constructs a TrendService.
func NewTrendService(store port.LogStore, scopes *ScopeResolver, logger *zap.Logger) *TrendService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrendService{store: store, scopes: scopes, logger: logger, now: time.Now}
}

// resolveWindow validates the period and applies the scoping rules shared by
// both report modes. The window is the half-open interval [now-window, now),
// so a record stamped exactly now falls outside it. Unlike search, analytics
// requires non-admin callers to name their application ids explicitly.
func (s *TrendService) resolveWindow(ctx context.Context, user domain.User, period string, appIDs []int64) (trendPeriod, domain.AccessScope, []int64, time.Time, time.Time, error) {
	var zero trendPeriod

	p, ok := trendPeriods[strings.ToLower(strings.TrimSpace(period))]
	if !ok {
		return zero, domain.AccessScope{}, nil, time.Time{}, time.Time{}, fmt.Errorf("%w: unknown period %q", ErrInvalidArgument, period)
	}

	scope, err := s.scopes.Resolve(ctx, user)
	if err != nil {
		return zero, domain.AccessScope{}, nil, time.Time{}, time.Time{}, fmt.Errorf("resolve scope: %w", err)
	}

	if !scope.IsAdmin && len(appIDs) == 0 {
		return zero, domain.AccessScope{}, nil, time.Time{}, time.Time{}, fmt.Errorf("%w: application ids are required", ErrInvalidArgument)
	}

	effective := scope.Restrict(appIDs)

	to := s.now().UTC()
	from := to.Add(-p.window)

	return p, scope, effective, from, to, nil
}

// Aggregate builds the bucketed trend report for the named period, restricted
// to the applications the user may see. Every bucket is present even when empty.
func (s *TrendService) Aggregate(ctx context.Context, user domain.User, period string, appIDs []int64) (*TrendReport, error) {
	p, scope, effective, from, to, err := s.resolveWindow(ctx, user, period, appIDs)
	if err != nil {
		return nil, err
	}

	n := int(p.window / p.width)

	buckets := make([]TrendBucket, n)
	for i := range buckets {
		start := from.Add(time.Duration(i) * p.width)
		buckets[i] = TrendBucket{
			Start:  start,
			End:    start.Add(p.width),
			Counts: zeroCounts(),
		}
	}
	totals := zeroCounts()

	if scope.IsAdmin || len(effective) > 0 {
		rows, err := s.store.CountByBucket(ctx, effective, from, to, p.width)
		if err != nil {
			return nil, fmt.Errorf("aggregate log buckets: %w", err)
		}
		for _, row := range rows {
			if row.Bucket < 0 || row.Bucket >= n {
				s.logger.Warn("bucket index out of range", zap.Int("bucket", row.Bucket), zap.Int("buckets", n))
				continue
			}
			buckets[row.Bucket].Counts[row.Level] += row.Count
			totals[row.Level] += row.Count
		}
	}

	return &TrendReport{
		Period:  strings.ToLower(strings.TrimSpace(period)),
		From:    from,
		To:      to,
		Buckets: buckets,
		Totals:  totals,
	}, nil
}

// Summarize builds the per-level summary over the same window Aggregate uses,
// so summary counts always sum to the matching trend totals.
func (s *TrendService) Summarize(ctx context.Context, user domain.User, period string, appIDs []int64) (*SummaryReport, error) {
	_, scope, effective, from, to, err := s.resolveWindow(ctx, user, period, appIDs)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Level]int64)
	if scope.IsAdmin || len(effective) > 0 {
		rows, err := s.store.CountByLevel(ctx, effective, from, to)
		if err != nil {
			return nil, fmt.Errorf("summarize log levels: %w", err)
		}
		for _, row := range rows {
			counts[row.Level] += row.Count
		}
	}

	return &SummaryReport{
		Period: strings.ToLower(strings.TrimSpace(period)),
		From:   from,
		To:     to,
		Counts: counts,
	}, nil
}

func zeroCounts() map[domain.Level]int64 {
	return map[domain.Level]int64{
		domain.LevelError:   0,
		domain.LevelWarning: 0,
		domain.LevelInfo:    0,
		domain.LevelDebug:   0,
	}
}
