package routes

import (
	"log"
	"net/http"

	"sessionpulse/handlers"
	"sessionpulse/middleware"
	"sessionpulse/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	groupHandler *handlers.GroupHandler,
	pollHandler *handlers.PollHandler,
	resultHandler *handlers.ResultHandler,
	statsHandler *handlers.StatsHandler,
	hub *services.Hub,
	pollService *services.PollService,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/admin-login", authHandler.AdminLogin)
			auth.POST("/reset-token", authHandler.GetResetPasswordToken)
			auth.POST("/reset-password", authHandler.ResetPassword)
		}

		// Public participant routes: poll lookup, readiness, submissions.
		// Participants are identified by their poll token, not an account.
		polls := api.Group("/polls")
		{
			polls.GET("/:code", pollHandler.GetPollByCode)
			polls.GET("/:code/readiness", pollHandler.CheckReadiness)
			polls.POST("/:code/ready", pollHandler.MarkReady)
		}

		results := api.Group("/results")
		{
			results.GET("", resultHandler.GetResultByCode)
			results.POST("", resultHandler.SubmitResult)
			results.POST("/responses", resultHandler.AddSurveyResponse)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(db, jwtSecret))
		{
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.POST("/auth/upgrade", authHandler.UpgradeAccount)
			protected.DELETE("/auth/account", authHandler.DeleteAccount)

			groups := protected.Group("/groups")
			{
				groups.GET("", groupHandler.GetGroups)
				groups.POST("", groupHandler.CreateGroup)
				groups.GET("/:id", groupHandler.GetGroup)
				groups.PUT("/:id", groupHandler.EditGroup)
				groups.DELETE("/:id", groupHandler.DeleteGroup)
				groups.GET("/:id/stats", statsHandler.GetGroupStats)
			}

			protected.POST("/polls", pollHandler.OpenPoll)
			protected.POST("/polls/:code/initiated", pollHandler.SetInitiated)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminMiddleware(db, jwtSecret))
		{
			admin.GET("/users", authHandler.GetUsers)
			admin.GET("/users/:id", authHandler.GetUser)
			admin.PUT("/users/:id", authHandler.UpdateUser)
			admin.DELETE("/users/:id", authHandler.DeleteUser)

			admin.GET("/results", resultHandler.GetResults)
			admin.DELETE("/results/:id", resultHandler.DeleteResult)
			admin.GET("/responses", resultHandler.GetSurveyResponses)

			admin.GET("/stats/groups", statsHandler.GetPagedGroupStats)
			admin.GET("/stats/aggregate", statsHandler.GetAggregatedGroupStats)
			admin.GET("/stats/monthly", statsHandler.GetMonthlyGroupStats)
		}
	}

	// WebSocket endpoint for watching a poll code in real time
	router.GET("/ws/:code", func(c *gin.Context) {
		code := c.Param("code")

		// Only live codes get a socket
		if _, err := pollService.GetPollState(code); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for poll %s: %v", code, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		log.Printf("WebSocket connection established for poll %s", code)
		hub.RegisterClient(conn, code)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
