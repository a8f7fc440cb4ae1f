// Package scheduler fires the periodic watchlist refresh. Intervals are
// clock-aligned: a 15m schedule ticks at :00, :15, :30 and :45 rather than
// at whatever offset the process happened to start.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Job is the work the scheduler runs on every tick.
type Job func(ctx context.Context) error

// Config describes when and how the refresh job runs.
type Config struct {
	Interval       string         // duration ("15m") or cron expression ("*/15 * * * *")
	Timezone       *time.Location // cron evaluation timezone, nil means UTC
	RunImmediately bool           // fire once right away instead of waiting for the first tick
	Logger         *slog.Logger
}

// Scheduler owns a single recurring job on top of gocron.
type Scheduler struct {
	inner     gocron.Scheduler
	job       gocron.Job
	spec      string
	tz        *time.Location
	immediate bool
	log       *slog.Logger
}

var cronFields = regexp.MustCompile(`^(\S+\s+){4,5}\S+$`)

// New resolves cfg.Interval into a cron expression, registers job on a
// fresh gocron scheduler, and returns it not yet running.
func New(ctx context.Context, cfg Config, job Job) (*Scheduler, error) {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	expr := cfg.Interval
	if !IsCron(expr) {
		aligned, err := alignedCron(cfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("resolve interval: %w", err)
		}
		expr = aligned
	}

	inner, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.Timezone),
		gocron.WithLogger(slogAdapter{cfg.Logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		inner:     inner,
		spec:      cfg.Interval,
		tz:        cfg.Timezone,
		immediate: cfg.RunImmediately,
		log:       cfg.Logger,
	}

	s.job, err = inner.NewJob(
		gocron.CronJob(expr, len(strings.Fields(expr)) == 6),
		gocron.NewTask(func() {
			if err := job(ctx); err != nil {
				s.log.Error("Scheduled refresh failed", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("register refresh job: %w", err)
	}

	s.log.Info("Refresh job registered",
		"interval", cfg.Interval,
		"cron", expr,
		"timezone", cfg.Timezone.String())
	return s, nil
}

// Start begins ticking. With RunImmediately set the job fires once before
// the first scheduled slot; a failure there is logged, not fatal, since the
// scheduled runs still proceed.
func (s *Scheduler) Start() error {
	if s.immediate {
		s.log.Info("Running refresh before the first scheduled tick")
		if err := s.job.RunNow(); err != nil {
			s.log.Error("Immediate refresh failed", "error", err)
		}
	}

	s.inner.Start()

	if next, err := s.NextRun(); err == nil {
		s.log.Info("Scheduler started", "next_run", next.Format(time.RFC3339), "timezone", s.tz.String())
	} else {
		s.log.Info("Scheduler started")
	}
	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	s.log.Info("Stopping scheduler")
	return s.inner.Shutdown()
}

// NextRun reports when the job fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	next, err := s.job.NextRun()
	if err != nil {
		return time.Time{}, fmt.Errorf("next run: %w", err)
	}
	return next, nil
}

// LastRun reports when the job last fired.
func (s *Scheduler) LastRun() (time.Time, error) {
	last, err := s.job.LastRun()
	if err != nil {
		return time.Time{}, fmt.Errorf("last run: %w", err)
	}
	return last, nil
}

// ExpectedInterval is the nominal gap between runs; the health checker
// sizes its staleness grace period from it. Cron schedules may be
// irregular, so they report a conservative five minutes.
func (s *Scheduler) ExpectedInterval() time.Duration {
	if d, err := time.ParseDuration(s.spec); err == nil {
		return d
	}
	return 5 * time.Minute
}

// IsCron reports whether spec is a cron expression rather than a duration.
func IsCron(spec string) bool {
	return cronFields.MatchString(spec)
}

// ValidateInterval reports whether spec can drive the scheduler: empty
// (refresh disabled), a clock-aligned duration, or a 5/6-field cron
// expression.
func ValidateInterval(spec string) error {
	if spec == "" {
		return nil
	}
	if IsCron(spec) {
		// Field count is enforced by the cron pattern; gocron validates
		// the field contents at registration.
		return nil
	}
	_, err := alignedCron(spec)
	return err
}

// Describe renders the schedule for log lines and CLI output.
func Describe(spec string, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	if IsCron(spec) {
		return fmt.Sprintf("cron %q in %s", spec, tz)
	}
	expr, err := alignedCron(spec)
	if err != nil {
		return fmt.Sprintf("invalid interval %q", spec)
	}
	return fmt.Sprintf("every %s on clock boundaries (cron %q in %s)", spec, expr, tz)
}

// alignedCron converts a duration into a cron expression that fires on
// clock boundaries. Seconds and minutes must divide 60 and hours must
// divide 24, otherwise the "aligned" runs would drift across hour or day
// boundaries.
func alignedCron(spec string) (string, error) {
	d, err := time.ParseDuration(spec)
	if err != nil {
		return "", fmt.Errorf("unparseable duration %q: %w", spec, err)
	}

	switch {
	case d < time.Minute:
		if d%time.Second != 0 {
			return "", fmt.Errorf("sub-second precision is not supported (got %s)", spec)
		}
		return clockDivisor(int(d.Seconds()), 60, "second", "*/%d * * * * *")
	case d < time.Hour:
		if d%time.Minute != 0 {
			return "", fmt.Errorf("sub-minute precision is not supported (got %s)", spec)
		}
		return clockDivisor(int(d.Minutes()), 60, "minute", "*/%d * * * *")
	case d%time.Hour == 0:
		return clockDivisor(int(d.Hours()), 24, "hour", "0 */%d * * *")
	default:
		return "", fmt.Errorf("duration must be whole seconds, minutes, or hours (got %s)", spec)
	}
}

func clockDivisor(n, face int, unit, format string) (string, error) {
	if n == 0 || face%n != 0 {
		return "", fmt.Errorf("%s intervals must divide evenly into %d (got %d)", unit, face, n)
	}
	return fmt.Sprintf(format, n), nil
}

// slogAdapter exposes a slog.Logger through gocron's Logger interface.
type slogAdapter struct {
	log *slog.Logger
}

func (a slogAdapter) Debug(msg string, args ...any) { a.log.Debug(msg, args...) }
func (a slogAdapter) Info(msg string, args ...any)  { a.log.Info(msg, args...) }
func (a slogAdapter) Warn(msg string, args ...any)  { a.log.Warn(msg, args...) }
func (a slogAdapter) Error(msg string, args ...any) { a.log.Error(msg, args...) }
