package router

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/clipshare/config"
	_ "github.com/d60-Lab/clipshare/docs"
	"github.com/d60-Lab/clipshare/internal/api/handler"
	"github.com/d60-Lab/clipshare/internal/api/middleware"
	"github.com/d60-Lab/clipshare/pkg/token"
)

// New 组装中间件与路由表
func New(cfg *config.Config, h *handler.Handler, codec *token.Codec) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/swagger"})))
	r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	r.Use(middleware.Auth(codec))

	Register(r, h)
	return r
}

// Register 路由表；是否需要登录由 middleware.Auth 的白名单决定
func Register(r gin.IRouter, h *handler.Handler) {
	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}
	r.GET("/oauth2/authorization/:provider", h.OAuthAuthorize)
	r.GET("/login/oauth2/code/:provider", h.OAuthCallback)

	users := r.Group("/users")
	{
		users.GET("/me", h.Me)
		users.PUT("/me", h.UpdateMe)
		users.DELETE("/me", h.DeleteMe)
		users.GET("/search", h.SearchUsers)
		users.GET("/:id/profile", h.Profile)
	}

	videos := r.Group("/videos")
	{
		videos.GET("", h.ListVideos)
		videos.POST("", h.CreateVideo)
		videos.GET("/search", h.SearchVideos)
		videos.GET("/my", h.MyVideos)
		videos.GET("/following", h.FollowingVideos)
		videos.GET("/:id", h.GetVideo)
		videos.PUT("/:id", h.UpdateVideo)
		videos.DELETE("/:id", h.DeleteVideo)

		videos.POST("/:id/likes", h.ToggleVideoLike)
		videos.GET("/:id/likes/me", h.VideoLikedByMe)

		videos.POST("/:id/comments", h.CreateComment)
		videos.GET("/:id/comments", h.ListComments)
		videos.GET("/:id/comments/liked", h.LikedComments)
		videos.GET("/:id/comments/:commentId/replies", h.ListReplies)
		videos.PUT("/:id/comments/:commentId", h.UpdateComment)
		videos.DELETE("/:id/comments/:commentId", h.DeleteComment)
	}
	r.POST("/comments/:id/likes", h.ToggleCommentLike)

	follow := r.Group("/follow")
	{
		follow.POST("/:followeeId", h.Follow)
		follow.DELETE("/:followeeId", h.Unfollow)
		follow.GET("/followers/:userId", h.ListFollowers)
		follow.GET("/followings/:userId", h.ListFollowing)
	}

	r.POST("/api/files/upload/:kind", h.UploadFile)
}
