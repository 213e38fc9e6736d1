package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campuslink/campuslink/config"
	"github.com/campuslink/campuslink/controllers"
	"github.com/campuslink/campuslink/middleware"
	"github.com/campuslink/campuslink/store"
	"github.com/campuslink/campuslink/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, files *store.FileStore, content *store.ContentStore, votes *store.VoteLedger) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	accountController := controllers.NewAccountController(db)
	userController := controllers.NewUserController(db, files)
	postController := controllers.NewPostController(content, votes)
	replyController := controllers.NewReplyController(content, votes)
	tagController := controllers.NewTagController(db)
	collegeController := controllers.NewCollegeController(db)
	mediaController := controllers.NewMediaController(files)

	// Media paths contain slashes, so the wildcard route lives outside the
	// API group.
	r.GET("/media/*path", mediaController.Serve)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthOptional())

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/signup", accountController.RequestSignupCode)
	authGroup.POST("/signup/resend", accountController.RequestSignupCode)
	authGroup.POST("/register", accountController.CreateAccount)
	authGroup.POST("/login", accountController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), accountController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), accountController.Me)

	// Public reads; identity, when presented, scopes visibility.
	api.GET("/posts", postController.List)
	api.GET("/posts/:id", postController.Get)
	api.GET("/posts/:id/replies", postController.Replies)
	api.GET("/posts/:id/stats", postController.Stats)
	api.GET("/users/:id", userController.GetUser)
	api.GET("/users/:id/posts", postController.ByUser)
	api.GET("/users/:id/designations", userController.GetDesignations)
	api.GET("/tags", tagController.List)
	api.GET("/tags/search", tagController.Search)
	api.GET("/colleges", collegeController.List)
	api.GET("/colleges/:id", collegeController.Get)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/upload", mediaController.Upload)

	protected.POST("/posts", postController.Create)
	protected.PATCH("/posts/:id", postController.Update)
	protected.DELETE("/posts/:id", postController.Delete)
	protected.GET("/posts/filtered", postController.Filtered)
	protected.GET("/users/me/posts", postController.Current)
	protected.POST("/posts/:id/upvote", postController.Upvote)
	protected.POST("/posts/:id/downvote", postController.Downvote)
	protected.DELETE("/posts/:id/vote", postController.Unvote)

	protected.POST("/posts/:id/replies", replyController.Create)
	protected.DELETE("/replies/:id", replyController.Delete)
	protected.POST("/replies/:id/upvote", replyController.Upvote)
	protected.POST("/replies/:id/downvote", replyController.Downvote)
	protected.DELETE("/replies/:id/vote", replyController.Unvote)

	protected.PATCH("/users/me/profile", userController.UpdateProfile)
	protected.PUT("/users/me/picture", userController.UpdatePicture)
	protected.POST("/users/me/designations", userController.AddDesignation)

	protected.POST("/tags", tagController.Create)
	protected.POST("/tags/:id/subscribe", tagController.Subscribe)
	protected.DELETE("/tags/:id/subscribe", tagController.Unsubscribe)
	protected.GET("/users/me/tags", tagController.Subscriptions)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
