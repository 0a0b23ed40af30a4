package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/valvequote/quote_api/internal/cache"
	"github.com/valvequote/quote_api/internal/config"
	"github.com/valvequote/quote_api/internal/database"
	"github.com/valvequote/quote_api/internal/handler"
	"github.com/valvequote/quote_api/internal/middleware"
	"github.com/valvequote/quote_api/internal/pricing"
	"github.com/valvequote/quote_api/internal/repository"
	"github.com/valvequote/quote_api/internal/service"
	"github.com/valvequote/quote_api/internal/sse"
	"github.com/valvequote/quote_api/internal/utils"
	"github.com/valvequote/quote_api/internal/worker"
)

// Failed bearer tokens allowed per client IP within authFailureWindow.
const (
	authFailureLimit  = 10
	authFailureWindow = time.Minute
)

// main is the entrypoint of the valve quote API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("quote_prefix", cfg.Quote.NumberPrefix).Msg("starting quote api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, "file://migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Initialize repositories
	referenceRepo := repository.NewReferenceRepository(db)
	marginRepo := repository.NewMarginRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)

	// 4a. Redis read-through caches in front of reference data and rates
	referenceCache := cache.NewReferenceCache(redisClient, referenceRepo, cfg.Cache.ReferenceTTL)
	rateCache := cache.NewExchangeRateCache(redisClient, rateRepo, cfg.Cache.ExchangeRateTTL)
	if n, err := referenceCache.Flush(context.Background()); err != nil {
		log.Warn().Err(err).Msg("reference cache flush failed, stale entries expire by TTL")
	} else {
		log.Info().Int("keys", n).Msg("reference cache flushed")
	}

	// 5. Initialize SSE hub
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)

	// 6. Initialize services
	engine := pricing.NewEngine(referenceCache)
	pricingSvc := service.NewPricingService(engine, marginRepo)
	allocator := service.NewQuoteNumberAllocator(quoteRepo, cfg.Quote.NumberPrefix, cfg.Quote.TimeZone)
	quoteSvc := service.NewQuoteService(pricingSvc, quoteRepo, customerRepo, rateCache, allocator, notifier, &cfg.Quote)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(db, handler.PingFunc(redisClient.Ping)),
		Pricing:  handler.NewPricingHandler(pricingSvc),
		Quote:    handler.NewQuoteHandler(quoteSvc),
		Margin:   handler.NewMarginHandler(pricingSvc),
		Material: handler.NewMaterialHandler(referenceRepo),
		SSE:      handler.NewSSEHandler(hub),
	}

	// 8. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 9. Initialize middleware
	utils.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	rateLimiter := middleware.NewInvalidAuthRateLimiter(ctx, authFailureLimit, authFailureWindow)
	jwtMw := middleware.NewJWTMiddleware(rateLimiter)

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 11. Start workers
	go worker.NewExchangeRateWorker(rateRepo, rateCache, cfg.Worker.ExchangeRateInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers and the rate limiter
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Pricing  *handler.PricingHandler
	Quote    *handler.QuoteHandler
	Margin   *handler.MarginHandler
	Material *handler.MaterialHandler
	SSE      *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// EventSource cannot send headers; the handler checks ?token= itself.
	router.GET("/v1/admin/sse", handlers.SSE.Stream)

	v1 := router.Group("/v1")
	v1.Use(jwtMiddleware.Handle())
	{
		// Stateless pricing
		v1.POST("/pricing/products", handlers.Pricing.PriceProduct)
		v1.POST("/pricing/sell-price", handlers.Pricing.SellPrice)
		v1.POST("/pricing/totals", handlers.Pricing.Totals)
		v1.GET("/margins", handlers.Margin.GetMargins)
		v1.GET("/materials", handlers.Material.ListMaterials)

		// Quotes
		v1.GET("/quote-numbers/next", handlers.Quote.NextQuoteNumber)
		v1.POST("/quotes", handlers.Quote.CreateQuote)
		v1.GET("/quotes", handlers.Quote.ListQuotes)
		v1.GET("/quotes/:quoteNumber", handlers.Quote.GetQuote)
		v1.PUT("/quotes/:quoteNumber/products", handlers.Quote.ReplaceProducts)
		v1.POST("/quotes/:quoteNumber/recompute", handlers.Quote.Recompute)
		v1.PATCH("/quotes/:quoteNumber/adjustments", handlers.Quote.Adjust)
		v1.PATCH("/quotes/:quoteNumber/status", handlers.Quote.UpdateStatus)
		v1.PATCH("/quotes/:quoteNumber/archive", handlers.Quote.SetArchived)
		v1.PATCH("/quotes/:quoteNumber/notes", handlers.Quote.UpdateNotes)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
