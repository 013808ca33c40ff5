package automation

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/metrics"
	"github.com/craftdesk-dev/craftdesk/internal/models"
)

const defaultQueueSize = 256

type queuedEvent struct {
	ownerID uint
	ctx     EventContext
}

// Dispatcher is the immediate path. Request handlers hand it a domain
// event after the state change commits; evaluation and action execution
// happen on a background worker so the HTTP response never waits on an
// action. A full queue drops the event with a log line, never an error to
// the caller.
type Dispatcher struct {
	rules  RuleStore
	exec   *Executor
	queue  chan queuedEvent
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(rules RuleStore, exec *Executor, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Dispatcher{
		rules: rules,
		exec:  exec,
		queue: make(chan queuedEvent, queueSize),
	}
}

// Start launches the background worker.
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		d.run(ctx)
	}()
}

// Stop cancels the worker and waits for in-flight events to finish.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}

	d.wg.Wait()
}

// TriggerEvent enqueues a domain event for rule evaluation. It never
// blocks and never returns an error to the request layer.
func (d *Dispatcher) TriggerEvent(eventName string, ownerID uint, ctx EventContext) {
	ctx.EventType = eventName

	if ctx.Now.IsZero() {
		ctx.Now = time.Now()
	}

	select {
	case d.queue <- queuedEvent{ownerID: ownerID, ctx: ctx}:
		metrics.EventsEnqueued.Inc()
	default:
		metrics.EventsDropped.Inc()
		log.Printf("automation: event queue full, dropping %s for owner %d", eventName, ownerID)
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.queue:
			d.processEvent(ev)
			metrics.EventsProcessed.Inc()
		}
	}
}

// processEvent evaluates all enabled immediate-scope rules for the owner
// against a single event. One rule's failure never stops the rest.
func (d *Dispatcher) processEvent(ev queuedEvent) {
	rules, err := d.rules.ListEnabledRules(ev.ownerID)

	if err != nil {
		log.Printf("automation: failed to load rules for owner %d: %v", ev.ownerID, err)
		return
	}

	for _, rule := range rules {
		if rule.RunScope != models.RunScopeImmediate {
			continue
		}

		if !d.safeEvaluate(rule, ev.ctx) {
			continue
		}

		metrics.RulesMatched.WithLabelValues(rule.TriggerType).Inc()
		d.exec.Execute(rule, ev.ctx)
	}
}

func (d *Dispatcher) safeEvaluate(rule models.AutomationRule, ctx EventContext) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("automation: rule %d evaluation panicked: %v", rule.ID, r)
			matched = false
		}
	}()

	return Evaluate(rule, ctx)
}

// Package-level dispatcher wired once at startup, mirroring how the
// request handlers reach the engine without threading it through every
// call site.
var defaultDispatcher *Dispatcher

// Initialize builds and starts the default dispatcher.
func Initialize(rules RuleStore, exec *Executor) {
	defaultDispatcher = NewDispatcher(rules, exec, defaultQueueSize)
	defaultDispatcher.Start()
}

// Shutdown stops the default dispatcher.
func Shutdown() {
	if defaultDispatcher != nil {
		defaultDispatcher.Stop()
	}
}

// TriggerEvent forwards to the default dispatcher. Safe to call before
// Initialize; the event is dropped with a log line.
func TriggerEvent(eventName string, ownerID uint, ctx EventContext) {
	if defaultDispatcher == nil {
		log.Printf("automation: dispatcher not initialized, dropping %s", eventName)
		return
	}

	defaultDispatcher.TriggerEvent(eventName, ownerID, ctx)
}
