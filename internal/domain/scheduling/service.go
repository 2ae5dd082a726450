package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/telemetry"
)

// Notifier dispatches an action notice to whatever is registered for the
// event. Dispatch is fire-and-forget: the board never learns the outcome,
// the sink logs it.
type Notifier interface {
	Dispatch(event string, payload interface{})
}

// Alerter records operator-facing failures raised by the board.
type Alerter interface {
	Raise(severity, code, message string, details map[string]string)
}

// Service owns the dashboard state: the working set fetched from the
// repository, the reference time of that fetch cycle, the active window and
// the bucket selection. There is a single logical writer; all state changes
// happen under one lock and replace the collection wholesale, so the last
// writer wins on the collection reference and readers always see a complete
// cycle, never a partial mutation.
type Service struct {
	repo     Repository
	notifier Notifier
	alerts   Alerter
	logger   zerolog.Logger
	metrics  *telemetry.Provider
	clock    func() time.Time
	tsMode   TimestampMode

	mu           sync.Mutex
	appointments []Appointment
	refNow       time.Time
	window       Window
	selection    Selection
	loaded       bool
}

// ServiceOption configures optional service behavior.
type ServiceOption func(*Service)

// WithClock replaces the wall clock. The clock is read once per fetch cycle;
// every appointment in a cycle is judged against the same instant.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// WithWindow sets the initial window.
func WithWindow(w Window) ServiceOption {
	return func(s *Service) { s.window = w }
}

// WithMetrics attaches the telemetry provider.
func WithMetrics(p *telemetry.Provider) ServiceOption {
	return func(s *Service) { s.metrics = p }
}

// WithTimestampMode selects how action notices carry their timestamp.
func WithTimestampMode(mode TimestampMode) ServiceOption {
	return func(s *Service) { s.tsMode = mode }
}

// NewService wires the board together. The default window is twenty days and
// action notices carry per-action timestamp fields.
func NewService(repo Repository, notifier Notifier, alerts Alerter, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		notifier: notifier,
		alerts:   alerts,
		logger:   logger,
		clock:    time.Now,
		window:   WindowTwentyDays,
		tsMode:   TimestampPerAction,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BoardView is the operator-facing snapshot of the dashboard.
type BoardView struct {
	Window       string    `json:"window"`
	WindowDays   int       `json:"window_days"`
	ReferenceNow time.Time `json:"reference_now"`
	Buckets      []Bucket  `json:"buckets"`
	Selected     string    `json:"selected_bucket,omitempty"`
	Unparseable  int       `json:"unparseable_count"`
}

// ApplyResult reports what an action did. Applied is false when the operator
// declined at the confirmation step; nothing happened in that case.
type ApplyResult struct {
	Applied     bool
	Appointment Appointment
}

// Refresh runs one fetch cycle: capture the reference time, fetch the
// scheduled appointments and replace the working set. On the first
// successful cycle the chronologically first bucket is auto-selected; later
// cycles leave the selection alone. A failed fetch is logged, raises an
// alert, leaves the board empty and is not retried; the next scheduled cycle
// is the only recovery path.
func (s *Service) Refresh(ctx context.Context) error {
	now := s.clock()

	list, err := s.repo.FetchScheduled(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("appointment fetch failed")
		if s.metrics != nil {
			s.metrics.IncWith("clinicdesk_refresh_cycles_total", "result", "error")
		}
		s.alerts.Raise("error", "fetch_failed", "appointment fetch failed; showing empty board", map[string]string{
			"error": err.Error(),
		})
		s.mu.Lock()
		s.appointments = nil
		s.refNow = now
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	s.mu.Lock()
	s.appointments = list
	s.refNow = now
	if !s.loaded {
		s.selection.SelectFirst(BuildBuckets(list, now, s.window))
		s.loaded = true
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.IncWith("clinicdesk_refresh_cycles_total", "result", "ok")
		s.metrics.Add("clinicdesk_appointments_fetched_total", int64(len(list)))
		s.metrics.SetGauge("clinicdesk_unparseable_appointments", int64(CountUnparseable(list, now)))
	}
	s.logger.Info().Int("appointments", len(list)).Time("reference_now", now).Msg("fetch cycle complete")
	return nil
}

// Board returns the current view: windowed day buckets built fresh from the
// working set, the cycle's reference time and the selection.
func (s *Service) Board() BoardView {
	s.mu.Lock()
	appts := s.appointments
	now := s.refNow
	w := s.window
	selected, ok := s.selection.Current()
	s.mu.Unlock()

	view := BoardView{
		Window:       w.String(),
		WindowDays:   int(w),
		ReferenceNow: now,
		Buckets:      BuildBuckets(appts, now, w),
		Unparseable:  CountUnparseable(appts, now),
	}
	if ok {
		view.Selected = selected
	}
	return view
}

// SetWindow switches the board to another supported window.
func (s *Service) SetWindow(days int) error {
	w, err := ParseWindow(days)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.window = w
	s.mu.Unlock()
	s.logger.Info().Str("window", w.String()).Msg("window changed")
	return nil
}

// ToggleSelect applies the accordion rule to the given bucket key.
func (s *Service) ToggleSelect(key string) {
	s.mu.Lock()
	s.selection.Toggle(key)
	current, ok := s.selection.Current()
	s.mu.Unlock()
	s.logger.Debug().Str("key", key).Str("selected", current).Bool("active", ok).Msg("selection toggled")
}

// ApplyAction drives the four-phase status transition: confirmation gate,
// optimistic removal from the working set, persistence, then fire-and-forget
// notification.
//
// The removal happens before persistence and is unconditional; when the
// store rejects the update there is no point-wise rollback, the whole board
// reconciles through a full re-fetch and a still-scheduled row simply
// reappears. Notification only happens after the store accepted the update,
// and its outcome never surfaces here.
func (s *Service) ApplyAction(ctx context.Context, sel Selector, act Action, confirmed bool) (ApplyResult, error) {
	if !validActions[act] {
		return ApplyResult{}, ErrInvalidAction
	}
	if err := sel.Validate(); err != nil {
		return ApplyResult{}, err
	}
	if !confirmed {
		s.logger.Debug().Str("selector", sel.String()).Str("action", string(act)).Msg("action declined at confirmation")
		return ApplyResult{}, nil
	}

	s.mu.Lock()
	idx := -1
	for i, a := range s.appointments {
		if sel.Matches(a) {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ApplyResult{}, ErrAppointmentNotFound
	}
	appt := s.appointments[idx]
	next := make([]Appointment, 0, len(s.appointments)-1)
	next = append(next, s.appointments[:idx]...)
	next = append(next, s.appointments[idx+1:]...)
	s.appointments = next
	s.mu.Unlock()

	if err := s.repo.UpdateStatus(ctx, sel, act.TargetStatus()); err != nil {
		s.logger.Error().Err(err).
			Str("selector", sel.String()).
			Str("action", string(act)).
			Msg("status update failed, reconciling board")
		if s.metrics != nil {
			s.metrics.Inc("clinicdesk_action_persist_failures_total")
		}
		s.alerts.Raise("error", "persist_failed", "appointment status update failed; board reloaded", map[string]string{
			"selector": sel.String(),
			"action":   string(act),
			"error":    err.Error(),
		})
		if rerr := s.Refresh(ctx); rerr != nil {
			s.logger.Error().Err(rerr).Msg("reconciliation fetch failed")
		}
		if errors.Is(err, ErrAppointmentNotFound) {
			return ApplyResult{}, err
		}
		return ApplyResult{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	s.notifier.Dispatch(act.Event(), buildNotice(appt, act, s.clock(), s.tsMode))
	if s.metrics != nil {
		s.metrics.IncWith("clinicdesk_actions_applied_total", "action", string(act))
	}
	s.logger.Info().Str("patient", appt.PatientName).Str("action", string(act)).Msg("action applied")
	return ApplyResult{Applied: true, Appointment: appt}, nil
}
