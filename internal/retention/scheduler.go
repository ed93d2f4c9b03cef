package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/common/logger"
)

const (
	DefaultInterval   = 6 * time.Hour
	DefaultAuditGrace = 30 * day

	cronRetryDelay = 30 * time.Second
)

type SchedulerConfig struct {
	Interval   time.Duration
	Cron       string // takes precedence over Interval
	BatchSize  int
	MaxThreads int
	AuditGrace time.Duration
}

// StepResult is the outcome of one housekeeping pass.
type StepResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Count int64  `json:"count"`
}

type CycleReport struct {
	RunID      string       `json:"runId"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Purge      *PurgeResult `json:"purge,omitempty"`
	PurgeError string       `json:"purgeError,omitempty"`
	Archive    StepResult   `json:"archive"`
	GracePurge StepResult   `json:"gracePurge"`
}

func (r *CycleReport) outcome() string {
	switch {
	case r.PurgeError != "":
		return outcomeFailed
	case !r.Archive.OK || !r.GracePurge.OK:
		return outcomePartial
	case r.Purge == nil:
		return outcomeOK
	}
	for _, d := range r.Purge.Details {
		if d.Error != "" {
			return outcomePartial
		}
	}
	return outcomeOK
}

type Status struct {
	Started      bool         `json:"started"`
	Running      bool         `json:"running"`
	Schedule     string       `json:"schedule"`
	NextRunAt    *time.Time   `json:"nextRunAt,omitempty"`
	LastRun      *CycleReport `json:"lastRun,omitempty"`
	LastRunAge   string       `json:"lastRunAge,omitempty"`
	SkippedTicks int64        `json:"skippedTicks"`
	TotalDeleted string       `json:"totalDeleted"`
}

// Scheduler owns the retention timer. It runs at most one cycle at a time: a tick that
// finds a cycle in flight is skipped, not queued.
type Scheduler struct {
	purger  *Purger
	cfg     SchedulerConfig
	clock   clock.Clock
	metrics *Metrics

	mu           sync.Mutex
	started      bool
	running      bool
	cancel       context.CancelFunc
	done         chan struct{}
	nextRunAt    *time.Time
	last         *CycleReport
	skipped      int64
	totalDeleted int64
}

func NewScheduler(purger *Purger, cfg SchedulerConfig, clk clock.Clock, metrics *Metrics) (*Scheduler, error) {
	if cfg.Cron != "" && !gronx.IsValid(cfg.Cron) {
		return nil, fmt.Errorf("invalid retention cron expression %q", cfg.Cron)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.AuditGrace <= 0 {
		cfg.AuditGrace = DefaultAuditGrace
	}
	if clk == nil {
		clk = clock.Real()
	}
	if metrics == nil {
		metrics = purger.metrics
	}
	return &Scheduler{
		purger:  purger,
		cfg:     cfg,
		clock:   clk,
		metrics: metrics,
	}, nil
}

// Start launches the timer loop. It returns false when the scheduler is already started.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		slog.WarnContext(ctx, "retention scheduler already started")
		return false
	}

	loopCtx, cancel := context.WithCancel(ctx)
	loopCtx = logger.WithLogFields(loopCtx, logger.LogFields{
		Component: "courier.retention.scheduler",
	})
	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(loopCtx, s.done)

	slog.InfoContext(loopCtx, "retention scheduler started", "schedule", s.schedule())
	return true
}

// Stop cancels the timer and waits for an in-flight cycle to observe cancellation.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.started = false
	s.nextRunAt = nil
	s.mu.Unlock()

	cancel()
	<-done
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Started:      s.started,
		Running:      s.running,
		Schedule:     s.schedule(),
		NextRunAt:    s.nextRunAt,
		LastRun:      s.last,
		SkippedTicks: s.skipped,
		TotalDeleted: humanize.Comma(s.totalDeleted),
	}
	if s.last != nil {
		status.LastRunAge = humanize.RelTime(s.last.FinishedAt, s.clock.Now(), "ago", "from now")
	}
	return status
}

// RunNow runs a cycle immediately, subject to the same overlap rule as a timer tick.
func (s *Scheduler) RunNow(ctx context.Context) (*CycleReport, bool) {
	return s.Tick(ctx)
}

// Tick runs one retention cycle unless one is already running, in which case it logs,
// counts the skip and returns false.
func (s *Scheduler) Tick(ctx context.Context) (*CycleReport, bool) {
	s.mu.Lock()
	if s.running {
		s.skipped++
		s.mu.Unlock()
		s.metrics.skipped.Inc()
		slog.WarnContext(ctx, "retention cycle still running, skipping tick")
		return nil, false
	}
	s.running = true
	s.mu.Unlock()

	var report *CycleReport
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.running = false
		if report == nil {
			return
		}
		s.last = report
		if report.Purge != nil {
			s.totalDeleted += int64(report.Purge.TotalDeleted)
		}
	}()

	report = s.runCycle(ctx)
	return report, true
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		wait := s.nextWait()
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "retention scheduler stopped")
			return
		case <-s.clock.After(wait):
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) nextWait() time.Duration {
	now := s.clock.Now()
	next := now.Add(s.cfg.Interval)

	if s.cfg.Cron != "" {
		tick, err := gronx.NextTickAfter(s.cfg.Cron, now, false)
		if err != nil {
			slog.Error("retention next tick failed", "cron", s.cfg.Cron, "error", err)
			next = now.Add(cronRetryDelay)
		} else {
			next = tick
		}
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()

	return next.Sub(now)
}

func (s *Scheduler) schedule() string {
	if s.cfg.Cron != "" {
		return "cron " + s.cfg.Cron
	}
	return "every " + s.cfg.Interval.String()
}

func (s *Scheduler) runCycle(ctx context.Context) *CycleReport {
	runID := uuid.NewString()
	ctx = logger.WithLogFields(ctx, logger.LogFields{RunID: &runID})

	sc := logger.StartSpan(ctx, "retention.cycle")
	defer sc.End()
	ctx = sc.Context()

	report := &CycleReport{RunID: runID, StartedAt: s.clock.Now()}
	start := time.Now()

	slog.InfoContext(ctx, "retention cycle started")

	purge, err := s.purge(ctx, runID)
	report.Purge = purge
	if err != nil {
		sc.RecordError(err)
		report.PurgeError = err.Error()
		slog.ErrorContext(ctx, "retention purge failed", "error", err)
	}

	report.Archive = s.runStep(ctx, "archive", func() (int64, error) {
		return s.purger.ArchiveExpiredAudits(ctx, s.clock.Now())
	})
	report.GracePurge = s.runStep(ctx, "grace_purge", func() (int64, error) {
		return s.purger.DeleteArchivedAudits(ctx, s.clock.Now(), s.cfg.AuditGrace)
	})

	report.FinishedAt = s.clock.Now()

	outcome := report.outcome()
	s.metrics.cycles.WithLabelValues(outcome).Inc()
	s.metrics.duration.Observe(time.Since(start).Seconds())

	slog.InfoContext(ctx, "retention cycle finished",
		"outcome", outcome,
		"duration_ms", time.Since(start).Milliseconds(),
		"archived", report.Archive.Count,
		"grace_deleted", report.GracePurge.Count)

	return report
}

// purge turns a panic in the purge pass into a failed cycle instead of a crashed process.
func (s *Scheduler) purge(ctx context.Context, runID string) (result *PurgeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "retention purge panicked", "panic", r)
			result, err = nil, fmt.Errorf("purge panicked: %v", r)
		}
	}()

	return s.purger.PurgeExpiredMessages(ctx, PurgeOptions{
		BatchSize:  s.cfg.BatchSize,
		MaxThreads: s.cfg.MaxThreads,
		RunID:      runID,
	})
}

// runStep isolates a housekeeping pass so its failure never affects the purge result.
func (s *Scheduler) runStep(ctx context.Context, name string, fn func() (int64, error)) (result StepResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "retention step panicked", "step", name, "panic", r)
			result = StepResult{OK: false, Error: fmt.Sprint(r)}
		}
	}()

	count, err := fn()
	if err != nil {
		slog.ErrorContext(ctx, "retention step failed", "step", name, "error", err)
		return StepResult{OK: false, Error: err.Error()}
	}
	return StepResult{OK: true, Count: count}
}
