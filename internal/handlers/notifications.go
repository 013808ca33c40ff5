package handlers

import (
	"net/http"

	"github.com/craftdesk-dev/craftdesk/db"
	"github.com/craftdesk-dev/craftdesk/internal/models"
	"github.com/craftdesk-dev/craftdesk/internal/utils"
	"github.com/gin-gonic/gin"
)

func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notifications []models.Notification

	if err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
