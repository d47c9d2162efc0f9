package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/core/domain"
	"github.com/mtaha2509/logging-platform/internal/core/port"
	"github.com/mtaha2509/logging-platform/internal/repository"
)

// EvalOutcome classifies the result of evaluating one alert rule.
type EvalOutcome string

const (
	// OutcomeTriggered means the threshold was newly crossed and a notification was recorded.
	OutcomeTriggered EvalOutcome = "triggered"
	// OutcomeFiring means the threshold is still crossed but the alert was already firing.
	OutcomeFiring EvalOutcome = "firing"
	// OutcomeQuiet means the threshold is not crossed.
	OutcomeQuiet EvalOutcome = "quiet"
	// OutcomeResolved means a previously firing alert dropped below its threshold.
	OutcomeResolved EvalOutcome = "resolved"
	// OutcomeSkipped means the alert or its application is disabled, or the
	// application no longer exists.
	OutcomeSkipped EvalOutcome = "skipped"
)

// EvalResult is the outcome of evaluating one alert rule plus the record count
// observed inside its window. ObservedCount is zero when evaluation was skipped
// before counting.
type EvalResult struct {
	Outcome       EvalOutcome
	ObservedCount int64
}

// EvaluatorConfig tunes the periodic sweep.
type EvaluatorConfig struct {
	Workers         int
	PerAlertTimeout time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
}

// SweepReport summarises one pass over the active alert rules.
type SweepReport struct {
	Evaluated int
	Triggered int
	Resolved  int
	Skipped   int
	Failed    int
}

// AlertEvaluator checks alert rules against recent log volume. A rule fires
// when the count of matching records inside its sliding window reaches the
// configured threshold; a notification is recorded only on the transition from
// quiet to firing, and the firing mark is cleared once the count drops back.
type AlertEvaluator struct {
	alerts       port.AlertRepository
	applications port.ApplicationRepository
	logs         port.LogStore
	events       port.EventPublisher
	cfg          EvaluatorConfig
	logger       *zap.Logger
	now          func() time.Time

	mu     sync.Mutex
	firing map[int64]struct{}
}

// NewAlertEvaluator constructs an AlertEvaluator.
func NewAlertEvaluator(alerts port.AlertRepository, applications port.ApplicationRepository, logs port.LogStore, events port.EventPublisher, cfg EvaluatorConfig, logger *zap.Logger) *AlertEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PerAlertTimeout <= 0 {
		cfg.PerAlertTimeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &AlertEvaluator{
		alerts:       alerts,
		applications: applications,
		logs:         logs,
		events:       events,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		firing:       make(map[int64]struct{}),
	}
}

// Evaluate checks a single alert rule against the log store.
func (e *AlertEvaluator) Evaluate(ctx context.Context, alert domain.Alert) (EvalResult, error) {
	if !alert.IsActive {
		return EvalResult{Outcome: OutcomeSkipped}, nil
	}

	app, err := e.applications.GetByID(ctx, alert.ApplicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			e.logger.Warn("alert references missing application",
				zap.Int64("alert_id", alert.ID),
				zap.Int64("application_id", alert.ApplicationID))
			return EvalResult{Outcome: OutcomeSkipped}, fmt.Errorf("%w: alert %d references application %d", ErrInconsistentState, alert.ID, alert.ApplicationID)
		}
		return EvalResult{Outcome: OutcomeSkipped}, fmt.Errorf("get application: %w", err)
	}
	if !app.IsActive {
		return EvalResult{Outcome: OutcomeSkipped}, nil
	}

	to := e.now().UTC()
	from := to.Add(-alert.TimeWindow)

	count, err := e.countWithRetry(ctx, alert, from, to)
	if err != nil {
		return EvalResult{Outcome: OutcomeSkipped}, err
	}

	if count < int64(alert.Count) {
		if e.clearFiring(alert.ID) {
			return EvalResult{Outcome: OutcomeResolved, ObservedCount: count}, nil
		}
		return EvalResult{Outcome: OutcomeQuiet, ObservedCount: count}, nil
	}

	if !e.markFiring(alert.ID) {
		return EvalResult{Outcome: OutcomeFiring, ObservedCount: count}, nil
	}

	notification := domain.Notification{
		RecipientID: alert.CreatedByID,
		Message: fmt.Sprintf("Alert for application %q: %d %s logs in the last %s (threshold %d)",
			app.Name, count, alert.Level, alert.TimeWindow, alert.Count),
		TriggeringAlertID: alert.ID,
	}

	notificationID, err := e.alerts.RecordTrigger(ctx, alert.ID, notification, to)
	if err != nil {
		// Allow a later sweep to retry the notification.
		e.clearFiring(alert.ID)
		return EvalResult{Outcome: OutcomeSkipped, ObservedCount: count}, fmt.Errorf("record trigger: %w", err)
	}

	if e.events != nil {
		event := domain.AlertTriggeredEvent{
			AlertID:        alert.ID,
			ApplicationID:  alert.ApplicationID,
			Level:          alert.Level,
			ObservedCount:  count,
			Threshold:      alert.Count,
			WindowSeconds:  int64(alert.TimeWindow / time.Second),
			NotificationID: notificationID,
			RecipientID:    alert.CreatedByID,
			TriggeredAt:    to,
		}
		if err := e.events.PublishAlertTriggered(ctx, event); err != nil {
			e.logger.Warn("publish alert triggered event failed", zap.Int64("alert_id", alert.ID), zap.Error(err))
		}
	}

	return EvalResult{Outcome: OutcomeTriggered, ObservedCount: count}, nil
}

// Sweep evaluates every active alert rule using a bounded worker pool.
func (e *AlertEvaluator) Sweep(ctx context.Context) (SweepReport, error) {
	alerts, err := e.alerts.ListActive(ctx)
	if err != nil {
		return SweepReport{}, fmt.Errorf("list active alerts: %w", err)
	}

	jobs := make(chan domain.Alert)
	var mu sync.Mutex
	report := SweepReport{}

	var wg sync.WaitGroup
	workers := e.cfg.Workers
	if workers > len(alerts) && len(alerts) > 0 {
		workers = len(alerts)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for alert := range jobs {
				evalCtx, cancel := context.WithTimeout(ctx, e.cfg.PerAlertTimeout)
				result, err := e.Evaluate(evalCtx, alert)
				cancel()

				mu.Lock()
				report.Evaluated++
				switch {
				case err != nil:
					report.Failed++
				case result.Outcome == OutcomeTriggered:
					report.Triggered++
				case result.Outcome == OutcomeResolved:
					report.Resolved++
				case result.Outcome == OutcomeSkipped:
					report.Skipped++
				}
				mu.Unlock()

				if err != nil {
					e.logger.Error("alert evaluation failed", zap.Int64("alert_id", alert.ID), zap.Error(err))
				}
			}
		}()
	}

	for _, alert := range alerts {
		select {
		case jobs <- alert:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return report, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	return report, nil
}

// IsFiring reports whether the alert is currently marked firing.
func (e *AlertEvaluator) IsFiring(alertID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.firing[alertID]
	return ok
}

func (e *AlertEvaluator) countWithRetry(ctx context.Context, alert domain.Alert, from, to time.Time) (int64, error) {
	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 && e.cfg.RetryDelay > 0 {
			select {
			case <-time.After(e.cfg.RetryDelay):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
		count, err := e.logs.CountInWindow(ctx, alert.ApplicationID, alert.Level, from, to)
		if err == nil {
			return count, nil
		}
		lastErr = err
		if !repository.IsTransient(err) {
			break
		}
	}
	return 0, fmt.Errorf("count logs in window: %w", lastErr)
}

// markFiring records the alert as firing and reports whether it was quiet before.
func (e *AlertEvaluator) markFiring(alertID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.firing[alertID]; ok {
		return false
	}
	e.firing[alertID] = struct{}{}
	return true
}

// clearFiring removes the firing mark and reports whether it was set.
func (e *AlertEvaluator) clearFiring(alertID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.firing[alertID]; !ok {
		return false
	}
	delete(e.firing, alertID)
	return true
}
