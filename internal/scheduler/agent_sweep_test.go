package scheduler

import (
	"testing"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func agentRule(id, ownerID uint, triggerType string) models.AutomationRule {
	return models.AutomationRule{
		BaseModel:     models.BaseModel{ID: id},
		OwnerID:       ownerID,
		Name:          triggerType + " rule",
		TriggerType:   triggerType,
		TriggerConfig: datatypes.JSON(`{}`),
		ActionType:    models.ActionNotifyUser,
		ActionConfig:  datatypes.JSON(`{"user_id": 1, "message": "unused by agent sweep"}`),
		IsEnabled:     true,
		RunScope:      models.RunScopeScheduled,
	}
}

func overdueTask(id, ownerID uint, now time.Time) models.Task {
	due := now.Add(-48 * time.Hour)

	task := models.Task{
		OwnerID: ownerID,
		Title:   "write report",
		Status:  "todo",
		DueDate: &due,
	}
	task.ID = id
	return task
}

func TestAgentSweepFiresOncePerEntity(t *testing.T) {
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

	store := newMemStore()
	notifier := &recordingNotifier{}

	store.rules = []models.AutomationRule{agentRule(1, 1, models.TriggerTaskOverdue)}
	store.tasks = []models.Task{overdueTask(100, 1, now)}

	s := newTestScheduler(store, notifier)

	// Run the sweep three times over unchanged data: exactly one
	// notification and one ledger entry.
	s.RunAgentSweep(now)
	s.RunAgentSweep(now.Add(5 * time.Minute))
	s.RunAgentSweep(now.Add(10 * time.Minute))

	assert.Len(t, notifier.sent(), 1)

	ledger := store.ledgerEntries()
	require.Len(t, ledger, 1)
	assert.Equal(t, uint(1), ledger[0].RuleID)
	assert.Equal(t, uint(100), ledger[0].EntityID)
	assert.Equal(t, "task", ledger[0].EntityType)
	assert.Equal(t, "sent", ledger[0].Status)
}

func TestAgentSweepSkipsImmediateScope(t *testing.T) {
	now := time.Now()

	store := newMemStore()
	notifier := &recordingNotifier{}

	rule := agentRule(1, 1, models.TriggerTaskOverdue)
	rule.RunScope = models.RunScopeImmediate
	store.rules = []models.AutomationRule{rule}
	store.tasks = []models.Task{overdueTask(100, 1, now)}

	s := newTestScheduler(store, notifier)
	s.RunAgentSweep(now)

	assert.Empty(t, notifier.sent())
	assert.Empty(t, store.ledgerEntries())
}

func TestAgentSweepDisabledRulesNeverScanned(t *testing.T) {
	now := time.Now()

	store := newMemStore()
	notifier := &recordingNotifier{}

	rule := agentRule(1, 1, models.TriggerTaskOverdue)
	rule.IsEnabled = false
	store.rules = []models.AutomationRule{rule}
	store.tasks = []models.Task{overdueTask(100, 1, now)}

	s := newTestScheduler(store, notifier)
	s.RunAgentSweep(now)

	assert.Empty(t, notifier.sent())
	assert.Empty(t, store.scannedOwners)
}

func TestAgentSweepTenantIsolation(t *testing.T) {
	now := time.Now()

	store := newMemStore()
	notifier := &recordingNotifier{}

	store.rules = []models.AutomationRule{agentRule(1, 1, models.TriggerTaskOverdue)}
	store.tasks = []models.Task{
		overdueTask(100, 1, now),
		overdueTask(200, 2, now), // other tenant, must not fire
	}

	s := newTestScheduler(store, notifier)
	s.RunAgentSweep(now)

	require.Len(t, notifier.sent(), 1)
	assert.Equal(t, []uint{1}, notifier.users)

	for _, owner := range store.scannedOwners {
		assert.Equal(t, uint(1), owner)
	}

	ledger := store.ledgerEntries()
	require.Len(t, ledger, 1)
	assert.Equal(t, uint(100), ledger[0].EntityID)
}

func TestAgentSweepBookingWindow(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	store := newMemStore()
	notifier := &recordingNotifier{}

	rule := agentRule(1, 1, models.TriggerBookingUpcoming)
	rule.TriggerConfig = datatypes.JSON(`{"days": 2}`)
	store.rules = []models.AutomationRule{rule}

	inside := models.Booking{OwnerID: 1, Title: "shoot", Status: "confirmed", StartsAt: now.Add(24 * time.Hour)}
	inside.ID = 10

	outside := models.Booking{OwnerID: 1, Title: "later", Status: "confirmed", StartsAt: now.Add(96 * time.Hour)}
	outside.ID = 11

	store.bookings = []models.Booking{inside, outside}

	s := newTestScheduler(store, notifier)
	s.RunAgentSweep(now)

	ledger := store.ledgerEntries()
	require.Len(t, ledger, 1)
	assert.Equal(t, uint(10), ledger[0].EntityID)
	assert.Equal(t, "booking", ledger[0].EntityType)
}

func TestAgentSweepFailedNotificationStillLedgered(t *testing.T) {
	now := time.Now()

	store := newMemStore()
	notifier := &recordingNotifier{err: assert.AnError}

	store.rules = []models.AutomationRule{agentRule(1, 1, models.TriggerTaskOverdue)}
	store.tasks = []models.Task{overdueTask(100, 1, now)}

	s := newTestScheduler(store, notifier)
	s.RunAgentSweep(now)

	// A failed entry is written so a permanently failing rule does not
	// retry forever on every tick.
	ledger := store.ledgerEntries()
	require.Len(t, ledger, 1)
	assert.Equal(t, "failed", ledger[0].Status)

	s.RunAgentSweep(now.Add(5 * time.Minute))
	assert.Len(t, store.ledgerEntries(), 1)
}

func TestAgentSweepCustomMessage(t *testing.T) {
	now := time.Now()

	store := newMemStore()
	notifier := &recordingNotifier{}

	rule := agentRule(1, 1, models.TriggerTaskOverdue)
	rule.TriggerConfig = datatypes.JSON(`{"message": "chase this task"}`)
	store.rules = []models.AutomationRule{rule}
	store.tasks = []models.Task{overdueTask(100, 1, now)}

	s := newTestScheduler(store, notifier)
	s.RunAgentSweep(now)

	assert.Equal(t, []string{"chase this task"}, notifier.sent())
}

func TestAgentSweepStoreFailureAborts(t *testing.T) {
	store := newMemStore()
	store.listErr = assert.AnError
	notifier := &recordingNotifier{}

	s := newTestScheduler(store, notifier)

	assert.NotPanics(t, func() {
		s.RunAgentSweep(time.Now())
	})

	assert.Empty(t, notifier.sent())
}

func TestAgentSweepIsolatesPanickingRule(t *testing.T) {
	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)

	store := newMemStore()
	notifier := &recordingNotifier{panicMsg: "alert the owner"}

	// The first rule's notification panics mid-sweep; the second rule
	// must still run and be ledgered.
	broken := agentRule(1, 1, models.TriggerTaskOverdue)
	broken.TriggerConfig = datatypes.JSON(`{"message": "alert the owner"}`)

	healthy := agentRule(2, 1, models.TriggerTaskOverdue)

	store.rules = []models.AutomationRule{broken, healthy}
	store.tasks = []models.Task{overdueTask(100, 1, now)}

	s := newTestScheduler(store, notifier)

	assert.NotPanics(t, func() {
		s.RunAgentSweep(now)
	})

	require.Len(t, notifier.sent(), 1)

	ledger := store.ledgerEntries()
	require.Len(t, ledger, 1)
	assert.Equal(t, uint(2), ledger[0].RuleID)
	assert.Equal(t, uint(100), ledger[0].EntityID)
}
