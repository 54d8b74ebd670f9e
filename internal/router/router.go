package router

import (
	"net/http"
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nretrorsum/work-test/internal/auth"
	"github.com/nretrorsum/work-test/internal/config"
	"github.com/nretrorsum/work-test/internal/handler"
	"github.com/nretrorsum/work-test/internal/infra"
	"github.com/nretrorsum/work-test/internal/middleware"
	"github.com/nretrorsum/work-test/internal/model"
	"github.com/nretrorsum/work-test/internal/repository"
	"github.com/nretrorsum/work-test/internal/service"
)

// Repositories groups the stores the HTTP layer depends on.
type Repositories struct {
	Users        repository.UserRepository
	Products     repository.ProductRepository
	Transactions repository.TransactionRepository
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb may be nil, which disables the product cache.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	repos := Repositories{
		Users:        repository.NewUserRepository(db),
		Products:     repository.NewProductRepository(db),
		Transactions: repository.NewTransactionRepository(db),
	}
	var cache service.ProductCache
	if rdb != nil {
		cache = infra.NewProductCache(rdb, cfg.ProductCacheTTL())
	}
	return build(cfg, repos, cache, handler.Health(db, rdb))
}

func build(cfg *config.Config, repos Repositories, cache service.ProductCache, health gin.HandlerFunc) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	}

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(repos.Users, auth.NewTokenIssuer(cfg.JWTSecret), cfg)
	productSvc := service.NewProductService(repos.Products, cache)
	transactionSvc := service.NewTransactionService(repos.Transactions)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, handler.CookieOptions{Secure: cfg.CookieSecure, TTL: cfg.TokenTTL()})
	productsH := handler.NewProductsHandler(productSvc)
	transactionsH := handler.NewTransactionsHandler(transactionSvc)

	session := middleware.SessionAuth(authSvc)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", health)

	authG := r.Group("/api/auth")
	{
		authG.POST("/register", authH.Register)
		authG.POST("/login", loginLimiter(cfg), authH.Login)
		authG.POST("/logout", authH.Logout)
		authG.GET("/me", session, authH.Me)
	}

	products := r.Group("/api/product")
	{
		products.POST("/add_product", productsH.Add)
		products.GET("/", productsH.List)
		products.GET("/:id", productsH.Get)
		products.PUT("/update_product/:id", productsH.Replace)
		products.PATCH("/patch_product/:id", productsH.Patch)
		products.DELETE("/:id", productsH.Delete)
	}

	// Recording a sale is open; reading and editing history is admin only.
	tx := r.Group("/transactions")
	{
		tx.POST("/", transactionsH.Create)
		tx.GET("/", session, adminOnly, transactionsH.List)
		tx.GET("/:id", session, adminOnly, transactionsH.Get)
		tx.PATCH("/:id", session, adminOnly, transactionsH.Update)
		tx.DELETE("/:id", session, adminOnly, transactionsH.Delete)
	}

	// Swagger UI: only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})

	return r
}

func loginLimiter(cfg *config.Config) gin.HandlerFunc {
	if cfg.LoginRateLimitPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.LoginRateLimiter(cfg.LoginRateLimitPerMinute)
}
