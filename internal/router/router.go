package router

import (
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/handlers"
	"github.com/craftdesk-dev/craftdesk/internal/middleware"
	"github.com/craftdesk-dev/craftdesk/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		boards := api.Group("/boards", middleware.AuthMiddleware())
		{
			boards.POST("", handlers.CreateBoard)
			boards.GET("", handlers.ListBoards)

			boards.POST("/:board_id/fields", handlers.CreateField)
			boards.POST("/:board_id/items", handlers.CreateItem)
			boards.GET("/:board_id/items", handlers.ListItems)
			boards.PUT("/:board_id/items/:item_id/values", handlers.SetItemFieldValue)

			// Automation rule management
			boards.POST("/:board_id/rules", handlers.CreateRule)
			boards.GET("/:board_id/rules", handlers.ListBoardRules)
			boards.PATCH("/:board_id/rules/:rule_id", handlers.UpdateRule)
			boards.DELETE("/:board_id/rules/:rule_id", handlers.DeleteRule)
			boards.GET("/:board_id/rules/:rule_id/logs", handlers.ListRuleLogs)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.POST("", handlers.CreateTask)
			tasks.GET("", handlers.ListTasks)
			tasks.PATCH("/:task_id", handlers.UpdateTask)
		}

		api.GET("/notifications", middleware.AuthMiddleware(), handlers.ListNotifications)
	}

	return r
}
