package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/craftdesk-dev/craftdesk/db"
	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/models"
	"github.com/craftdesk-dev/craftdesk/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// statusFieldID is the synthetic field id the engine uses for task status
// changes on the immediate path, since tasks are not board items with
// dynamic fields.
const statusFieldID = 1

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

func CreateTask(ctx *gin.Context) {
	var req CreateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task := models.Task{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      "todo",
		DueDate:     req.DueDate,
	}

	if err := db.DB.Create(&task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	automation.TriggerEvent(automation.EventItemCreated, userID, automation.EventContext{
		EntityID: task.ID,
		ActorID:  userID,
	})

	ctx.JSON(http.StatusCreated, gin.H{"task": task})
}

func ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var tasks []models.Task

	if err := db.DB.Where("owner_id = ?", userID).Find(&tasks).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func UpdateTask(ctx *gin.Context) {
	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var task models.Task

	if err := db.DB.Where("id = ? AND owner_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return
	}

	var req UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	oldStatus := task.Status

	if req.Title != "" {
		task.Title = req.Title
	}

	if req.Description != "" {
		task.Description = req.Description
	}

	if req.Status != "" {
		task.Status = req.Status
	}

	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := db.DB.Save(&task).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	if req.Status != "" && req.Status != oldStatus {
		automation.TriggerEvent(automation.EventFieldChanged, userID, automation.EventContext{
			EntityID: task.ID,
			FieldID:  statusFieldID,
			OldValue: oldStatus,
			NewValue: task.Status,
			ActorID:  userID,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"task": task})
}
