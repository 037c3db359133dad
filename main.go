package main

import (
	"log"
	"sessionpulse/config"
	"sessionpulse/handlers"
	"sessionpulse/middleware"
	"sessionpulse/models"
	"sessionpulse/routes"
	"sessionpulse/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Result{},
		&models.SurveyResponse{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	tokenService := services.NewParticipantTokenService(cfg.JWTSecret)
	authService := services.NewAuthService(db, cfg.JWTSecret)
	groupService := services.NewGroupService(db)
	pollService := services.NewPollService(db, redisClient, tokenService)
	resultService := services.NewResultService(db, tokenService)
	statsService := services.NewStatsService(db)

	// Initialize WebSocket hub
	hub := services.NewHub(pollService)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	groupHandler := handlers.NewGroupHandler(groupService)
	pollHandler := handlers.NewPollHandler(pollService, hub)
	resultHandler := handlers.NewResultHandler(resultService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, db, authHandler, groupHandler, pollHandler, resultHandler, statsHandler, hub, pollService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
