package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	defaultSchedule  = "@hourly"
	defaultRetention = 24 * time.Hour
	jobTimeout       = time.Minute
)

// CodePurger removes reset codes whose expiry is older than cutoff.
type CodePurger interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionPurger removes sessions that expired or were revoked before cutoff.
type SessionPurger interface {
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Stats reports how many rows one cleanup pass removed.
type Stats struct {
	ResetCodes int64
	Sessions   int64
}

// Cleaner periodically purges reset codes and sessions that can no longer
// be used. Rows are kept for a retention window past expiry so a late
// submission still reports expired instead of no pending request.
type Cleaner struct {
	codes     CodePurger
	sessions  SessionPurger
	cron      *cron.Cron
	schedule  string
	retention time.Duration
	now       func() time.Time
	log       *zap.Logger
}

type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

func WithRetention(d time.Duration) Option {
	return func(cleaner *Cleaner) {
		if d > 0 {
			cleaner.retention = d
		}
	}
}

// NewCleaner builds a Cleaner. A nil purger skips that table.
func NewCleaner(codes CodePurger, sessions SessionPurger, log *zap.Logger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		codes:     codes,
		sessions:  sessions,
		schedule:  defaultSchedule,
		retention: defaultRetention,
		now:       time.Now,
		log:       log.With(zap.String("module", "maintenance")),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the purge job and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.codes == nil && c.sessions == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, c.run); err != nil {
		return err
	}

	c.cron.Start()
	c.log.Info("Cleanup scheduled",
		zap.String("schedule", c.schedule),
		zap.Duration("retention", c.retention),
	)
	return nil
}

// Stop halts the scheduler. The returned context is done once a running
// job has finished.
func (c *Cleaner) Stop() context.Context {
	return c.cron.Stop()
}

func (c *Cleaner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	stats, err := c.RunOnce(ctx)
	if err != nil {
		c.log.Warn("Cleanup failed", zap.Error(err))
	}
	c.log.Info("Cleanup finished",
		zap.Int64("reset_codes", stats.ResetCodes),
		zap.Int64("sessions", stats.Sessions),
	)
}

// RunOnce purges both tables. A failure on one table does not stop the
// other; errors are combined.
func (c *Cleaner) RunOnce(ctx context.Context) (Stats, error) {
	cutoff := c.now().Add(-c.retention)

	var (
		stats Stats
		errs  error
	)

	if c.codes != nil {
		n, err := c.codes.DeleteExpiredBefore(ctx, cutoff)
		errs = multierr.Append(errs, err)
		stats.ResetCodes = n
	}

	if c.sessions != nil {
		n, err := c.sessions.DeleteInactiveBefore(ctx, cutoff)
		errs = multierr.Append(errs, err)
		stats.Sessions = n
	}

	return stats, errs
}
