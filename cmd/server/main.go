package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fidelipark/loyalty-backend/internal/config"
	"github.com/fidelipark/loyalty-backend/internal/database"
	"github.com/fidelipark/loyalty-backend/internal/handler"
	"github.com/fidelipark/loyalty-backend/internal/logger"
	"github.com/fidelipark/loyalty-backend/internal/queue"
	"github.com/fidelipark/loyalty-backend/internal/repository"
	"github.com/fidelipark/loyalty-backend/internal/router"
	queue_publisher "github.com/fidelipark/loyalty-backend/internal/service"

	mw "github.com/fidelipark/loyalty-backend/internal/middleware"
)

func main() {
	// Load .env when present so local runs need no exported variables.  In
	// deployed environments the file is absent and this is a no-op.
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.Init(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer db.Close()

	// Redis backs the token blacklist: logout cannot work without it, so a
	// failed connection aborts startup instead of degrading.
	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()

	clients := repository.NewClientRepo(db)
	merchants := repository.NewMerchantRepo(db)
	admins := repository.NewAdminRepo(db)
	coupons := repository.NewCouponRepo(db)
	blacklist := repository.NewBlacklistRepo(rdb)

	authH := handler.NewAuthHandler(cfg, clients, merchants, admins, blacklist)
	merchantH := handler.NewMerchantHandler(merchants, coupons)
	offerH := handler.NewOfferHandler(coupons, clients, queue_publisher.PublishCouponRedeemed)
	publicH := handler.NewPublicHandler(merchants, coupons)
	adminH := handler.NewAdminHandler(clients)

	limiter := mw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := mw.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, blacklist, limiter)
	router.RegisterMerchants(e, merchantH, cfg.JWTSecret, blacklist)
	router.RegisterOffers(e, offerH, cfg.JWTSecret, blacklist)
	router.RegisterPublic(e, publicH, cache)
	router.RegisterClients(e, adminH, cfg.JWTSecret, blacklist)

	// Background consumer writing redemption events to logs/loyalty.log.
	go func() {
		if err := queue.StartRedemptionConsumer(); err != nil {
			zl.Warn("redemption consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
