package automation

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/craftdesk-dev/craftdesk/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
)

// Comparison operators for field_change triggers.
const (
	OpEquals      = "="
	OpNotEquals   = "!="
	OpContains    = "contains"
	OpNotContains = "not_contains"
)

// FieldChangeConfig configures a field_change trigger.
type FieldChangeConfig struct {
	FieldID  uint   `json:"field_id"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// DateArriveConfig configures an on_date_arrive trigger. OffsetDays shifts
// the item's date before comparing it to today, so -2 means "two days
// before the stored date".
type DateArriveConfig struct {
	FieldID    uint `json:"field_id"`
	OffsetDays int  `json:"offset_days"`
}

// CronConfig configures a cron_schedule trigger.
type CronConfig struct {
	Expression string `json:"expression"`
}

// AgentWindowConfig configures the domain agent triggers (task_overdue,
// booking_upcoming, invoice_unpaid, proposal_pending). Days is the window
// size where the trigger uses one; Message overrides the default
// notification text.
type AgentWindowConfig struct {
	Days    int    `json:"days"`
	Message string `json:"message"`
}

type NotifyConfig struct {
	UserID  uint   `json:"user_id"`
	Message string `json:"message"`
}

type SetFieldConfig struct {
	ItemID  uint   `json:"item_id"`
	FieldID uint   `json:"field_id"`
	Value   string `json:"value"`
}

type CreateItemConfig struct {
	ItemName string `json:"item_name"`
}

type EmailConfig struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type WebhookConfig struct {
	URL     string                 `json:"url"`
	Method  string                 `json:"method"`
	Headers map[string]string      `json:"headers"`
	Payload map[string]interface{} `json:"payload"`
}

// cronParser accepts standard five-field expressions plus the @every /
// @hourly style descriptors.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCronExpression reports whether expr parses as a cron schedule.
func ValidateCronExpression(expr string) error {
	if expr == "" {
		return fmt.Errorf("cron expression is empty")
	}

	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	return nil
}

// ParseTriggerConfig decodes and validates raw against the shape implied
// by triggerType. Unknown trigger types are rejected, never silently
// accepted.
func ParseTriggerConfig(triggerType string, raw datatypes.JSON) (interface{}, error) {
	switch triggerType {
	case models.TriggerFieldChange:
		var cfg FieldChangeConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.FieldID == 0 {
			return nil, fmt.Errorf("field_change: field_id is required")
		}
		switch cfg.Operator {
		case OpEquals, OpNotEquals, OpContains, OpNotContains:
		default:
			return nil, fmt.Errorf("field_change: unknown operator %q", cfg.Operator)
		}
		return cfg, nil

	case models.TriggerItemCreate:
		// No config required.
		return struct{}{}, nil

	case models.TriggerDateArrive:
		var cfg DateArriveConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.FieldID == 0 {
			return nil, fmt.Errorf("on_date_arrive: field_id is required")
		}
		return cfg, nil

	case models.TriggerCronSchedule:
		var cfg CronConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		if err := ValidateCronExpression(cfg.Expression); err != nil {
			return nil, err
		}
		return cfg, nil

	case models.TriggerTaskOverdue, models.TriggerBookingUpcoming,
		models.TriggerInvoiceUnpaid, models.TriggerProposalPending:
		var cfg AgentWindowConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.Days < 0 {
			return nil, fmt.Errorf("%s: days must not be negative", triggerType)
		}
		return cfg, nil

	default:
		return nil, fmt.Errorf("unknown trigger type %q", triggerType)
	}
}

// ParseActionConfig decodes and validates raw against the shape implied
// by actionType.
func ParseActionConfig(actionType string, raw datatypes.JSON) (interface{}, error) {
	switch actionType {
	case models.ActionNotifyUser:
		var cfg NotifyConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.UserID == 0 {
			return nil, fmt.Errorf("notify_user: user_id is required")
		}
		return cfg, nil

	case models.ActionSetFieldValue:
		var cfg SetFieldConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.FieldID == 0 {
			return nil, fmt.Errorf("set_field_value: field_id is required")
		}
		return cfg, nil

	case models.ActionCreateItem:
		var cfg CreateItemConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil

	case models.ActionSendEmail:
		var cfg EmailConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.To == "" {
			return nil, fmt.Errorf("send_email: to is required")
		}
		return cfg, nil

	case models.ActionCallWebhook:
		var cfg WebhookConfig
		if err := decodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		if cfg.URL == "" {
			return nil, fmt.Errorf("call_webhook: url is required")
		}
		if _, err := url.ParseRequestURI(cfg.URL); err != nil {
			return nil, fmt.Errorf("call_webhook: invalid url: %w", err)
		}
		return cfg, nil

	default:
		return nil, fmt.Errorf("unknown action type %q", actionType)
	}
}

// ValidateRule checks both config blobs against the rule's declared types.
// Called at the store boundary before a rule is persisted.
func ValidateRule(rule *models.AutomationRule) error {
	if _, err := ParseTriggerConfig(rule.TriggerType, rule.TriggerConfig); err != nil {
		return err
	}

	if _, err := ParseActionConfig(rule.ActionType, rule.ActionConfig); err != nil {
		return err
	}

	switch rule.RunScope {
	case models.RunScopeImmediate, models.RunScopeScheduled:
	default:
		return fmt.Errorf("unknown run scope %q", rule.RunScope)
	}

	return nil
}

func decodeConfig(raw datatypes.JSON, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
