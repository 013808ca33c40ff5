package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func paramUint(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(name + " not found")
	}

	value, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("invalid " + name)
	}

	return uint(value), nil
}

func GetBoardID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "board_id")
}

func GetRuleID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "rule_id")
}

func GetTaskID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "task_id")
}

func GetItemID(ctx *gin.Context) (uint, error) {
	return paramUint(ctx, "item_id")
}
