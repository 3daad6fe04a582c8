package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Uddesh-18/CropSmart/internal/domain/ports"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

const DefaultJobTimeout = 5 * time.Minute

// CronScheduler runs named housekeeping jobs. A job never overlaps with
// its own previous run.
type CronScheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	cancels []context.CancelFunc
	timeout time.Duration
	mu      sync.RWMutex
	logger  logger.Logger
}

func NewCronScheduler(timeout time.Duration, log logger.Logger) *CronScheduler {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	log = logger.Component(log, "cron_scheduler")
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	scheduler := &CronScheduler{
		cron:    c,
		jobs:    make(map[string]cron.EntryID),
		timeout: timeout,
		logger:  log,
	}

	c.Start()
	scheduler.logger.Info("Cron scheduler started")

	return scheduler
}

// Schedule registers task under name. Runs stop receiving a live context
// once ctx is cancelled or the scheduler stops.
func (c *CronScheduler) Schedule(ctx context.Context, name string, interval time.Duration, task ports.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.jobs[name]; exists {
		return fmt.Errorf("job with name '%s' already exists", name)
	}

	spec := intervalToCron(interval)
	c.logger.Infof("Scheduling job '%s' with interval %v (cron: %s)", name, interval, spec)

	jobCtx, cancel := context.WithCancel(ctx)
	entryID, err := c.cron.AddFunc(spec, func() {
		c.runTask(jobCtx, name, task)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule job '%s': %w", name, err)
	}

	c.jobs[name] = entryID
	c.cancels = append(c.cancels, cancel)
	c.logger.Debugf("Job '%s' scheduled with entry ID: %d", name, entryID)
	return nil
}

func (c *CronScheduler) runTask(ctx context.Context, name string, task ports.Task) {
	if ctx.Err() != nil {
		return
	}

	startTime := time.Now()
	c.logger.Debugf("Starting scheduled job: %s", name)

	taskCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := task(taskCtx); err != nil {
		c.logger.Errorf("Job '%s' failed after %v: %v", name, time.Since(startTime), err)
		return
	}

	c.logger.Debugf("Job '%s' completed in %v", name, time.Since(startTime))
}

// Jobs returns the registered job names.
func (c *CronScheduler) Jobs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.jobs))
	for name := range c.jobs {
		names = append(names, name)
	}
	return names
}

func (c *CronScheduler) Stop() {
	c.logger.Info("Stopping cron scheduler...")
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil

	ctx := c.cron.Stop()
	<-ctx.Done()

	c.jobs = make(map[string]cron.EntryID)
	c.logger.Info("Cron scheduler stopped")
}

func (c *CronScheduler) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, entryID := range c.jobs {
		if entry := c.cron.Entry(entryID); entry.ID != entryID {
			return fmt.Errorf("job '%s' not found in cron", name)
		}
	}

	return nil
}

func intervalToCron(interval time.Duration) string {
	if interval <= 0 {
		return "@every 1m"
	}
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}
	return "@every " + interval.Truncate(time.Second).String()
}
