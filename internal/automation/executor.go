package automation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/metrics"
	"github.com/craftdesk-dev/craftdesk/internal/models"
	"github.com/google/uuid"
)

const (
	webhookTimeout  = 10 * time.Second
	defaultItemName = "New Item"
)

// Executor performs the side effect for a fired rule. Failures never
// escape Execute: every attempt, success or failure, lands in the
// automation log and comes back to the caller as a result value.
type Executor struct {
	rules    RuleStore
	domain   DomainStore
	notifier NotificationSink
	email    EmailSender
	client   *http.Client
}

func NewExecutor(rules RuleStore, domain DomainStore, notifier NotificationSink, email EmailSender) *Executor {
	return &Executor{
		rules:    rules,
		domain:   domain,
		notifier: notifier,
		email:    email,
		client:   &http.Client{Timeout: webhookTimeout},
	}
}

// Execute dispatches on the rule's action type and records one automation
// log entry for the attempt.
func (e *Executor) Execute(rule models.AutomationRule, ctx EventContext) (result ExecutionResult) {
	start := time.Now()

	result = ExecutionResult{
		RuleID:     rule.ID,
		ActionType: rule.ActionType,
		Status:     StatusSuccess,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = StatusFailed
			result.Message = fmt.Sprintf("panic: %v", r)
		}

		result.Duration = time.Since(start)
		e.logExecution(rule, ctx, result)
		metrics.ActionsExecuted.WithLabelValues(rule.ActionType, result.Status).Inc()
	}()

	if err := e.runAction(rule, ctx); err != nil {
		result.Status = StatusFailed
		result.Message = err.Error()
		log.Printf("automation: rule %d action %s failed: %v", rule.ID, rule.ActionType, err)
	}

	return result
}

func (e *Executor) runAction(rule models.AutomationRule, ctx EventContext) error {
	parsed, err := ParseActionConfig(rule.ActionType, rule.ActionConfig)

	if err != nil {
		return err
	}

	switch cfg := parsed.(type) {
	case NotifyConfig:
		return e.notifier.Notify(cfg.UserID, cfg.Message)
	case SetFieldConfig:
		return e.setFieldValue(cfg, ctx)
	case CreateItemConfig:
		return e.createItem(rule, cfg, ctx)
	case EmailConfig:
		return e.email.Send(cfg.To, cfg.Subject, cfg.Body)
	case WebhookConfig:
		return e.callWebhook(rule, cfg, ctx)
	default:
		return fmt.Errorf("unknown action type %q", rule.ActionType)
	}
}

func (e *Executor) setFieldValue(cfg SetFieldConfig, ctx EventContext) error {
	itemID := cfg.ItemID

	if itemID == 0 {
		itemID = ctx.EntityID
	}

	if itemID == 0 || cfg.FieldID == 0 {
		return fmt.Errorf("set_field_value: item id and field id are required")
	}

	return e.domain.SetFieldValue(itemID, cfg.FieldID, cfg.Value, ctx.ActorID)
}

func (e *Executor) createItem(rule models.AutomationRule, cfg CreateItemConfig, ctx EventContext) error {
	if ctx.ActorID == 0 {
		return fmt.Errorf("create_item: acting user id is required")
	}

	if rule.BoardID == nil {
		return fmt.Errorf("create_item: rule %d has no board", rule.ID)
	}

	name := cfg.ItemName

	if name == "" {
		name = defaultItemName
	}

	_, err := e.domain.CreateItem(*rule.BoardID, name, ctx.ActorID)
	return err
}

func (e *Executor) callWebhook(rule models.AutomationRule, cfg WebhookConfig, ctx EventContext) error {
	payload := map[string]interface{}{
		"rule_id":      rule.ID,
		"item_id":      ctx.EntityID,
		"timestamp":    ctx.Now.Format(time.RFC3339),
		"execution_id": uuid.NewString(),
	}

	if rule.BoardID != nil {
		payload["board_id"] = *rule.BoardID
	}

	for k, v := range cfg.Payload {
		payload[k] = v
	}

	body, err := json.Marshal(payload)

	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	method := cfg.Method

	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequest(method, cfg.URL, bytes.NewReader(body))

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := e.client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (e *Executor) logExecution(rule models.AutomationRule, ctx EventContext, result ExecutionResult) {
	logCtx, err := json.Marshal(map[string]interface{}{
		"event_type": ctx.EventType,
		"entity_id":  ctx.EntityID,
		"field_id":   ctx.FieldID,
		"actor_id":   ctx.ActorID,
	})

	if err != nil {
		logCtx = nil
	}

	entry := models.AutomationLog{
		RuleID:      rule.ID,
		ActionType:  rule.ActionType,
		Status:      result.Status,
		Message:     result.Message,
		ExecutionMs: result.Duration.Milliseconds(),
		Context:     logCtx,
		ExecutedAt:  time.Now(),
	}

	if err := e.rules.CreateAutomationLog(&entry); err != nil {
		log.Printf("automation: failed to store log for rule %d: %v", rule.ID, err)
	}
}
