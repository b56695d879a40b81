package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/handler"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/middleware"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/response"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
)

const (
	learnerRate       = 120
	learnerRateWindow = time.Minute
	leaderboardMaxAge = 30
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Learner     *handler.LearnerHandler
	Session     *handler.SessionHandler
	Leaderboard *handler.LeaderboardHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background middleware work such as rate limiter cleanup.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)
	router.GET("/status", handlers.System.Status)

	// ─── 1. Public ─────────────────────────────────────────────────────
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/leaderboard", middleware.CacheControl(leaderboardMaxAge), handlers.Leaderboard.Top)
	}

	// ─── 2. Learner Group (JWT + rate limit) ───────────────────────────
	limiter := middleware.NewRateLimiter(ctx, learnerRate, learnerRateWindow)
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(
		middleware.RequireLearnerJWT(authService),
		limiter.Middleware(),
	)
	{
		learnerAPI.GET("/exams", handlers.Learner.Lobby)
		learnerAPI.GET("/submissions", handlers.Learner.Submissions)

		sessionAPI := learnerAPI.Group("/exams/:exam_id/session")
		sessionAPI.Use(middleware.NoStore())
		{
			sessionAPI.POST("", handlers.Session.Start)
			sessionAPI.GET("", handlers.Session.View)
			sessionAPI.POST("/answers", handlers.Session.Answer)
			sessionAPI.POST("/finish", handlers.Session.Finish)
			sessionAPI.POST("/retry", handlers.Session.Retry)
		}
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireLearnerWSAuth(authService))
	{
		ws.GET("/learner/exams/:exam_id/stream", handlers.WS.ExamStream)
	}

	return router
}
