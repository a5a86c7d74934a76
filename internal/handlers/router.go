package handlers

import (
	"backoffice-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewRouter wires the operations API
func NewRouter(db *gorm.DB, taskHandler *TaskHandler, logger *logrus.Entry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.Logger(logger))

	router.GET("/health", HealthCheck)
	router.GET("/ready", ReadinessCheck(db))

	api := router.Group("/api/v1")
	{
		imports := api.Group("/imports")
		{
			imports.POST("", taskHandler.StartImport)
			imports.GET("", taskHandler.ListImports)
			imports.GET("/:id", taskHandler.GetImport)
		}

		api.POST("/emails", taskHandler.SendEmail)
		api.GET("/tasks/:id", taskHandler.GetTask)
	}

	return router
}
