package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/metrics"
)

// Default sweep cadences. The three sweeps are deliberately independent:
// their data-scan costs and staleness tolerances differ.
const (
	DefaultCronInterval  = time.Hour
	DefaultDateInterval  = 24 * time.Hour
	DefaultAgentInterval = 5 * time.Minute
)

// Scheduler drives the time-based rule sweeps. It is constructed once at
// startup by the composition root; each sweep is an ordinary method so
// tests invoke it directly instead of waiting on real time.
type Scheduler struct {
	rules    automation.RuleStore
	domain   automation.DomainStore
	exec     *automation.Executor
	notifier automation.NotificationSink

	cronInterval  time.Duration
	dateInterval  time.Duration
	agentInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(rules automation.RuleStore, domain automation.DomainStore, exec *automation.Executor, notifier automation.NotificationSink) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		rules:         rules,
		domain:        domain,
		exec:          exec,
		notifier:      notifier,
		cronInterval:  DefaultCronInterval,
		dateInterval:  DefaultDateInterval,
		agentInterval: DefaultAgentInterval,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start launches the three sweep loops. Each runs on its own ticker so a
// slow sweep never delays the others.
func (s *Scheduler) Start() {
	log.Println("Starting automation scheduler...")

	s.runLoop(s.cronInterval, "cron", s.RunCronSweep)
	s.runLoop(s.dateInterval, "date_arrival", s.RunDateArrivalSweep)
	s.runLoop(s.agentInterval, "agent", s.RunAgentSweep)
}

// Stop cancels all sweep loops and waits for them to exit.
func (s *Scheduler) Stop() {
	log.Println("Stopping automation scheduler...")
	s.cancel()
	s.wg.Wait()
	log.Println("Automation scheduler stopped")
}

func (s *Scheduler) runLoop(interval time.Duration, name string, sweep func(time.Time)) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case now := <-ticker.C:
				s.runSweep(name, sweep, now)
			}
		}
	}()
}

func (s *Scheduler) runSweep(name string, sweep func(time.Time), now time.Time) {
	start := time.Now()

	sweep(now)

	metrics.SweepRuns.WithLabelValues(name).Inc()
	metrics.SweepDuration.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
}
