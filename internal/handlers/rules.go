package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/craftdesk-dev/craftdesk/db"
	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/models"
	"github.com/craftdesk-dev/craftdesk/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateRuleRequest struct {
	Name          string                 `json:"name" binding:"required"`
	TriggerType   string                 `json:"trigger_type" binding:"required"`
	TriggerConfig map[string]interface{} `json:"trigger_config"`
	ActionType    string                 `json:"action_type" binding:"required"`
	ActionConfig  map[string]interface{} `json:"action_config"`
	RunScope      string                 `json:"run_scope"`
	IsEnabled     *bool                  `json:"is_enabled"`
}

type UpdateRuleRequest struct {
	Name          string                 `json:"name"`
	TriggerConfig map[string]interface{} `json:"trigger_config"`
	ActionConfig  map[string]interface{} `json:"action_config"`
	IsEnabled     *bool                  `json:"is_enabled"`
}

func CreateRule(ctx *gin.Context) {
	board, userID, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	var req CreateRuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	triggerConfig, err := json.Marshal(req.TriggerConfig)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trigger config"})
		return
	}

	actionConfig, err := json.Marshal(req.ActionConfig)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action config"})
		return
	}

	runScope := req.RunScope

	if runScope == "" {
		runScope = models.RunScopeImmediate
	}

	enabled := true

	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}

	rule := models.AutomationRule{
		OwnerID:       userID,
		BoardID:       &board.ID,
		Name:          req.Name,
		TriggerType:   req.TriggerType,
		TriggerConfig: triggerConfig,
		ActionType:    req.ActionType,
		ActionConfig:  actionConfig,
		IsEnabled:     enabled,
		RunScope:      runScope,
	}

	// Config shapes are validated before anything is persisted; an
	// unrecognized trigger or action type is rejected here, not at
	// evaluation time.
	if err := automation.ValidateRule(&rule); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := db.DB.Create(&rule).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"rule": rule})
}

func ListBoardRules(ctx *gin.Context) {
	board, _, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	var rules []models.AutomationRule

	if err := db.DB.Where("board_id = ?", board.ID).Find(&rules).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rules"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rules": rules})
}

func UpdateRule(ctx *gin.Context) {
	board, _, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rule models.AutomationRule

	if err := db.DB.Where("id = ? AND board_id = ?", ruleID, board.ID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rule"})
		}
		return
	}

	var req UpdateRuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		rule.Name = req.Name
	}

	if req.TriggerConfig != nil {
		raw, err := json.Marshal(req.TriggerConfig)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trigger config"})
			return
		}
		rule.TriggerConfig = raw
	}

	if req.ActionConfig != nil {
		raw, err := json.Marshal(req.ActionConfig)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action config"})
			return
		}
		rule.ActionConfig = raw
	}

	if req.IsEnabled != nil {
		rule.IsEnabled = *req.IsEnabled
	}

	if err := automation.ValidateRule(&rule); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := db.DB.Save(&rule).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rule"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rule": rule})
}

func DeleteRule(ctx *gin.Context) {
	board, _, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Where("id = ? AND board_id = ?", ruleID, board.ID).Delete(&models.AutomationRule{})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
}

func ListRuleLogs(ctx *gin.Context) {
	board, _, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rule models.AutomationRule

	if err := db.DB.Where("id = ? AND board_id = ?", ruleID, board.ID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rule"})
		}
		return
	}

	var logs []models.AutomationLog

	if err := db.DB.Where("rule_id = ?", rule.ID).Order("executed_at DESC").Limit(100).Find(&logs).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list logs"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"logs": logs})
}
