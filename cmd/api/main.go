package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/solstice-ai/optimal-energy-storage/internal/api/handlers"
	"github.com/solstice-ai/optimal-energy-storage/internal/api/middleware"
)

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	solveHandler := handlers.NewSolveHandler()
	scheduleHandler := handlers.NewScheduleHandler()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/solve", solveHandler.Solve)
		api.POST("/schedule", scheduleHandler.Schedule)
		api.GET("/controllers", handlers.ListControllers)
	}

	addr := fmt.Sprintf(":%s", port)
	slog.Info("starting API server", "addr", addr)
	if err := router.Run(addr); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
