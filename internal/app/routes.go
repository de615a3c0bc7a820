package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"github.com/EmptyEmeraldTablet/blankpage/internal/auth"
	"github.com/EmptyEmeraldTablet/blankpage/internal/cache"
	"github.com/EmptyEmeraldTablet/blankpage/internal/clip"
	"github.com/EmptyEmeraldTablet/blankpage/internal/config"
	"github.com/EmptyEmeraldTablet/blankpage/internal/dto"
	"github.com/EmptyEmeraldTablet/blankpage/internal/handlers"
	"github.com/EmptyEmeraldTablet/blankpage/internal/repo"
	"github.com/EmptyEmeraldTablet/blankpage/internal/service"
)

// Setup registers all routes on the given engine. The public API sits at
// the root: /login, /memos, /clip.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.CodeNotFound})
	})

	tokenStore := auth.NewStore(rdb, cfg.Auth.TokenTTL.Duration())
	secret := auth.Secret{Hash: cfg.Auth.PasswordHash, Plain: cfg.Auth.Password}
	authHandler := handlers.NewAuthHandler(tokenStore, secret)
	r.POST("/login", authHandler.Login)

	protected := r.Group("", auth.RequireToken(tokenStore))
	protected.POST("/logout", authHandler.Logout)

	memoRepo := repo.NewPGMemoRepo(db)
	memoCache := cache.NewMemoCache(rdb, cfg.Redis.DefaultTTL.Duration())
	memoSvc := service.NewMemoService(memoRepo, memoCache)
	registerMemoRoutes(protected, handlers.NewMemoHandler(memoSvc))

	clipStore := clip.NewStore(rdb, cfg.Clip.TTL.Duration())
	registerClipRoutes(protected, handlers.NewClipHandler(clipStore))
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerMemoRoutes(g *gin.RouterGroup, h *handlers.MemoHandler) {
	g.GET("/memos", h.List)
	g.POST("/memos", h.Create)
	g.GET("/memos/:id", h.GetByID)
	g.PUT("/memos/:id", h.Update)
	g.DELETE("/memos/:id", h.Delete)
}

func registerClipRoutes(g *gin.RouterGroup, h *handlers.ClipHandler) {
	g.GET("/clip", h.Get)
	g.POST("/clip", h.Save)
}
