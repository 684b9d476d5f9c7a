package server

import (
	"net/http"
	"time"

	httpHandler "social-scheduler/interfaces/http"
	"social-scheduler/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{"http://localhost:4200", "http://localhost:4201", "https://localhost:4200", "https://localhost:4201"}

// RouterConfig carries the settings the router needs besides handlers.
type RouterConfig struct {
	SecretKey      string
	AllowedOrigins []string
}

func InitiateRouter(
	cfg RouterConfig,
	scheduleHandler httpHandler.IScheduleHandler,
	webhookHandler httpHandler.IWebhookHandler,
	statusStream gin.HandlerFunc,
) *gin.Engine {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Scheduler callbacks are authenticated by signature, not by bearer token.
	hooks := router.Group("/api/webhooks")
	{
		hooks.POST("/twitter", webhookHandler.Twitter)
		hooks.POST("/linkedin", webhookHandler.LinkedIn)
		hooks.POST("/youtube", webhookHandler.YouTube)
	}

	api := router.Group("/api")
	api.Use(middleware.Auth(cfg.SecretKey))

	schedules := api.Group("/schedules")
	{
		schedules.GET("", scheduleHandler.List)
		if statusStream != nil {
			schedules.GET("/stream", statusStream)
		}
		schedules.POST("/:kind", scheduleHandler.Create)
		schedules.GET("/:kind/:id", scheduleHandler.Get)
		schedules.DELETE("/:kind/:id", scheduleHandler.Cancel)
		schedules.GET("/:kind/:id/attempts", scheduleHandler.Attempts)
	}

	youtube := api.Group("/youtube")
	{
		youtube.GET("/videos", scheduleHandler.ListVideos)
		youtube.GET("/videos/:videoId", scheduleHandler.GetVideo)
	}

	return router
}
