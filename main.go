package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	apirest "github.com/maeulmarket/server/api/rest"
	"github.com/maeulmarket/server/audit"
	"github.com/maeulmarket/server/cache"
	"github.com/maeulmarket/server/config"
	dbadapter "github.com/maeulmarket/server/db"
	"github.com/maeulmarket/server/market/catalog"
	"github.com/maeulmarket/server/market/negotiation"
	"github.com/maeulmarket/server/market/persona"
	"github.com/maeulmarket/server/market/replenish"
	"github.com/maeulmarket/server/market/resolver"
	"github.com/maeulmarket/server/market/resolver/groq"
	"github.com/maeulmarket/server/market/settlement"
	mw "github.com/maeulmarket/server/middleware"
	"github.com/maeulmarket/server/model"
	"github.com/maeulmarket/server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const seedListings = 20

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Provider.APIKey == "" {
		logger.Warn("provider.api_key is not set; negotiations will answer with an error message")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(nil)

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Market core ----
	store := catalog.NewStore(db, logger)
	provider := groq.New(cfg.Provider)
	priceResolver := resolver.New(provider, cfg.Provider, logger)
	settler := settlement.NewService(db, c, logger)
	manager := negotiation.NewManager(
		persona.NewSelector(nil), priceResolver, settler, cfg.Market.RotAfter, logger)

	replenisher := replenish.New(store, cfg.Market, logger)
	if err := replenisher.Seed(context.Background(), seedListings); err != nil {
		logger.Warn("catalog seed failed", zap.Error(err))
	}
	replenisher.Register(sched)

	// ---- HTTP server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(mw.TraceID())
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security, cfg.Market, auditSvc)
	marketH := apirest.NewMarketHandler(store, logger)
	invH := apirest.NewInventoryHandler(db, cfg.Market, logger)
	negoH := apirest.NewNegotiationHandler(db, manager, store, auditSvc, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.GET("/me", mw.Auth(cfg.Security, c), authH.Me)

		marketG := api.Group("/market")
		marketG.Use(mw.Auth(cfg.Security, c))
		marketG.GET("/listings", marketH.List)
		marketG.GET("/listings/:id", marketH.Detail)

		invG := api.Group("/inventory")
		invG.Use(mw.Auth(cfg.Security, c))
		invG.GET("", invH.List)
		invG.POST("/:id/clean", invH.Clean)

		negoG := api.Group("/negotiation")
		negoG.Use(mw.Auth(cfg.Security, c))
		negoG.GET("", negoH.Current)
		negoG.POST("/start", negoH.Start)
		negoG.POST("/message", negoH.Message)
		negoG.POST("/cancel", negoH.Cancel)
		negoG.POST("/exit", negoH.Exit)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
