package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tgleech/teraboxbot/internal/cache"
	"github.com/tgleech/teraboxbot/internal/config"
	"github.com/tgleech/teraboxbot/internal/controllers"
	"github.com/tgleech/teraboxbot/internal/datasources"
	"github.com/tgleech/teraboxbot/internal/downloader"
	"github.com/tgleech/teraboxbot/internal/logging"
	"github.com/tgleech/teraboxbot/internal/metrics"
	"github.com/tgleech/teraboxbot/internal/repositories"
	"github.com/tgleech/teraboxbot/internal/services"
	"github.com/tgleech/teraboxbot/internal/terabox"
	"github.com/tgleech/teraboxbot/internal/verify"
)

func main() {
	envFlag := flag.String("env", "local", "environment to run in (local, prod)")
	flag.Parse()

	loadEnv(*envFlag)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting bot", zap.String("name", cfg.BotName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage: Mongo when configured, in-process store otherwise.
	var (
		userStore   services.UserStore
		verifyStore verify.Store
		statsRepo   *repositories.StatsRepository
	)
	if cfg.DatabaseURL != "" {
		client, db, err := datasources.NewMongoConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(disconnectCtx)
		}()
		userRepo := repositories.NewUserRepository(db)
		userStore, verifyStore = userRepo, userRepo
		statsRepo = repositories.NewStatsRepository(db)
		logger.Info("database connection established")
	} else {
		mem := verify.NewMemoryStore()
		userStore, verifyStore = mem, mem
		logger.Warn("no DATABASE_URL configured, counters are in-memory only")
	}

	// Resolve cache: Redis when configured, in-process otherwise.
	var linkCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		defer redisCache.Close()
		linkCache = redisCache
		logger.Info("redis link cache enabled", zap.String("addr", cfg.RedisAddr))
	} else {
		linkCache = cache.NewMemory()
	}

	bot, err := datasources.NewTelegramBot(cfg.BotToken)
	if err != nil {
		logger.Fatal("telegram bot init failed", zap.Error(err))
	}
	logger.Info("telegram bot initialized", zap.String("username", bot.Me.Username))

	collector := metrics.NewCollector()
	resolver := terabox.NewResolver(nil, terabox.DefaultEndpoints, linkCache, logger.Named("resolver"))
	dl := downloader.New(nil, cfg.DownloadDir, logger.Named("downloader"))

	shortener := verify.NewShortener(nil, cfg.ShortlinkAPI, cfg.ShortlinkURL, cfg.ShortlinkType, logger.Named("shortlink"))
	verifier := verify.NewManager(verifyStore, shortener, cfg.ShortlinkAPI,
		cfg.FreeLeechCount, cfg.VerifyValidity, cfg.VerifyBaseURL, cfg.VerificationEnabled,
		logger.Named("verify"))

	userService := services.NewUserService(userStore, statsRepo, cfg.OwnerID, cfg.AuthorizedChats, logger.Named("users"))
	forceSub := services.NewForceSubService(bot, cfg.OwnerID, cfg.EnableForceSub, cfg.ForceSubChannels, logger.Named("forcesub"))
	leechService := services.NewLeechService(bot, resolver, dl, userService, collector,
		cfg.BotName, cfg.MaxFileSize, cfg.LeechLogChannel, cfg.DumpChannel,
		logger.Named("leech"))

	teleCtrl := controllers.NewTelegramController(bot, userService, leechService, verifier, forceSub, cfg, logger.Named("telegram"))
	teleCtrl.SetupHandlers()

	httpCtrl := controllers.NewHTTPController(bot, verifier, collector, logger.Named("http"))
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: httpCtrl.Router(),
	}

	go func() {
		logger.Info("http server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	go bot.Start()
	logger.Info("telegram bot started")

	<-ctx.Done()
	logger.Info("shutdown signal received")

	bot.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", zap.Error(err))
	}

	logger.Info("bot stopped")
}

// loadEnv loads .env.<env> first, falling back to the default .env or the
// process environment.
func loadEnv(envName string) {
	envFile := ".env." + envName
	if err := godotenv.Load(envFile); err != nil {
		godotenv.Load()
	}
}
