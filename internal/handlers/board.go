package handlers

import (
	"errors"
	"net/http"

	"github.com/craftdesk-dev/craftdesk/db"
	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/models"
	"github.com/craftdesk-dev/craftdesk/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateBoardRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateFieldRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"` // "text", "date", "number", "status"
}

type CreateItemRequest struct {
	Name string `json:"name" binding:"required"`
}

type SetFieldValueRequest struct {
	FieldID uint   `json:"field_id" binding:"required"`
	Value   string `json:"value"`
}

// ownedBoard loads the board from the path param and enforces that it
// belongs to the requesting user.
func ownedBoard(ctx *gin.Context) (*models.Board, uint, bool) {
	boardID, err := utils.GetBoardID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, 0, false
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, 0, false
	}

	var board models.Board

	if err := db.DB.Where("id = ? AND owner_id = ?", boardID, userID).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		}
		return nil, 0, false
	}

	return &board, userID, true
}

func CreateBoard(ctx *gin.Context) {
	var req CreateBoardRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	board := models.Board{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	}

	if err := db.DB.Create(&board).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"board": board})
}

func ListBoards(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var boards []models.Board

	if err := db.DB.Where("owner_id = ?", userID).Find(&boards).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list boards"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"boards": boards})
}

func CreateField(ctx *gin.Context) {
	board, _, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	var req CreateFieldRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field := models.DynamicField{
		BoardID: board.ID,
		Name:    req.Name,
		Type:    req.Type,
	}

	if err := db.DB.Create(&field).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create field"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"field": field})
}

func CreateItem(ctx *gin.Context) {
	board, userID, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	var req CreateItemRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.DynamicItem{
		BoardID:     board.ID,
		Name:        req.Name,
		CreatedByID: userID,
	}

	if err := db.DB.Create(&item).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}

	// Hand the event to the engine after the write commits; the response
	// never waits on rule execution.
	automation.TriggerEvent(automation.EventItemCreated, userID, automation.EventContext{
		EntityID: item.ID,
		ActorID:  userID,
	})

	ctx.JSON(http.StatusCreated, gin.H{"item": item})
}

func ListItems(ctx *gin.Context) {
	board, _, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	var items []models.DynamicItem

	if err := db.DB.Preload("Values").Where("board_id = ?", board.ID).Find(&items).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

func SetItemFieldValue(ctx *gin.Context) {
	board, userID, ok := ownedBoard(ctx)

	if !ok {
		return
	}

	itemID, err := utils.GetItemID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item models.DynamicItem

	if err := db.DB.Where("id = ? AND board_id = ?", itemID, board.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve item"})
		}
		return
	}

	var req SetFieldValueRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var oldValue string
	var existing models.DynamicFieldValue

	err = db.DB.Where("item_id = ? AND field_id = ?", item.ID, req.FieldID).First(&existing).Error

	switch {
	case err == nil:
		oldValue = existing.Value
		existing.Value = req.Value
		existing.UpdatedBy = userID
		err = db.DB.Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = db.DB.Create(&models.DynamicFieldValue{
			ItemID:    item.ID,
			FieldID:   req.FieldID,
			Value:     req.Value,
			UpdatedBy: userID,
		}).Error
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set field value"})
		return
	}

	automation.TriggerEvent(automation.EventFieldChanged, userID, automation.EventContext{
		EntityID: item.ID,
		FieldID:  req.FieldID,
		OldValue: oldValue,
		NewValue: req.Value,
		ActorID:  userID,
	})

	ctx.JSON(http.StatusOK, gin.H{
		"item_id":  item.ID,
		"field_id": req.FieldID,
		"value":    req.Value,
	})
}
