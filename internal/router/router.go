package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/certifex/certifex-backend/internal/config"
	"github.com/certifex/certifex-backend/internal/handler"
	"github.com/certifex/certifex-backend/internal/middleware"
	"github.com/certifex/certifex-backend/internal/response"
	"github.com/certifex/certifex-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Exam      *handler.ExamHandler
	Session   *handler.SessionHandler
	Content   *handler.ContentHandler
	Result    *handler.ResultHandler
	Code      *handler.CodeHandler
	User      *handler.UserHandler
	Registry  *handler.RegistryHandler
	Review    *handler.ReviewHandler
	Statement *handler.StatementHandler
	Dashboard *handler.DashboardHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	sessionService *service.SessionService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Session-Token"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for credential and code endpoints (15 requests per
	// minute per IP): access codes are short numeric strings, so the
	// redemption endpoint is the obvious brute-force target.
	authLimiter := middleware.NewRateLimiter(15, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/code", handlers.Auth.RedeemCode)
	}

	// ─── 2. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/exam/:id/config", handlers.Exam.GetConfig)
		publicAPI.POST("/exam/gate/verify", authLimiter.Middleware(), handlers.Exam.VerifyGate)

		// The registry tolerates short staleness; let clients cache it.
		publicAPI.GET("/registry", middleware.CacheControl(60), handlers.Registry.ListRegistry)
		publicAPI.GET("/users/:id/certificate", handlers.Registry.GetCertificate)
		publicAPI.GET("/users/:id/certificate/file", handlers.Registry.DownloadCertificate)
		publicAPI.GET("/users/:id/reviews", middleware.OptionalUserJWT(authService), handlers.Review.GetSummary)
	}

	// ─── 3. Session Group (Opaque Session Token) ───────────────────────
	// Candidates carry no JWT during the exam; the session token issued at
	// redemption is the only credential these routes accept.
	sessionAPI := router.Group("/api/v1/exam/session")
	{
		sessionAPI.POST("/start", handlers.Exam.StartSession)

		owned := sessionAPI.Group("/:sid")
		owned.Use(middleware.RequireSessionToken(sessionService))
		{
			owned.GET("/questions", handlers.Session.GetQuestions)
			owned.POST("/answer", handlers.Session.RecordAnswer)
			owned.POST("/finish", handlers.Session.Finish)
			owned.POST("/media", handlers.Session.UploadMedia)
		}
	}

	// ─── 4. User Group (JWT) ───────────────────────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireUserJWT(authService))
	{
		userAPI.GET("/auth/me", handlers.Auth.Me)

		userAPI.POST("/statements", handlers.Statement.Create)
		userAPI.GET("/statements", handlers.Statement.ListOwn)

		userAPI.PUT("/users/:id/rating", handlers.Review.SetRating)
		userAPI.POST("/users/:id/comments", handlers.Review.AddComment)
	}

	// ─── 5. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/exams/:id/monitor", handlers.WS.MonitorStream)
	}

	// ─── 6. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Exam content and settings
		adminAPI.GET("/exams/:id/blocks", handlers.Content.GetBlocks)
		adminAPI.PUT("/exams/:id/blocks", handlers.Content.PutBlocks)
		adminAPI.PATCH("/exams/:id/settings", handlers.Content.UpdateSettings)

		// Results review
		adminAPI.GET("/exams/:id/results", handlers.Result.ListResults)
		adminAPI.GET("/results/:sid", handlers.Result.GetResult)
		adminAPI.GET("/results/:sid/media", handlers.Result.GetResultMedia)
		adminAPI.POST("/results/:sid/close", handlers.Result.ForceClose)
		adminAPI.DELETE("/results/:sid", handlers.Result.Delete)

		// Access codes
		adminAPI.POST("/codes/generate", handlers.Code.Generate)
		adminAPI.GET("/exams/:id/codes", handlers.Code.List)
		adminAPI.PATCH("/codes/:id/disabled", handlers.Code.SetDisabled)

		// User management
		adminAPI.GET("/users", handlers.User.List)
		adminAPI.GET("/users/:id", handlers.User.Get)
		adminAPI.PUT("/users/:id", handlers.User.Update)
		adminAPI.PATCH("/users/:id/admin", handlers.User.SetAdmin)
		adminAPI.DELETE("/users/:id", handlers.User.Delete)

		// Certificates
		adminAPI.PUT("/users/:id/certificate", handlers.Registry.UpsertCertificate)
		adminAPI.PATCH("/users/:id/certificate/status", handlers.Registry.SetCertificateStatus)
		adminAPI.POST("/users/:id/certificate/file", handlers.Registry.UploadCertificateFile)

		// Statements inbox
		adminAPI.GET("/statements", handlers.Statement.ListAll)

		// Dashboard
		adminAPI.GET("/dashboard", handlers.Dashboard.GetSummary)
	}

	return router
}
