package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"shopfront/internal/config"
	"shopfront/internal/db"
	"shopfront/internal/email"
	apihttp "shopfront/internal/http"
	"shopfront/internal/llm"
	"shopfront/internal/repository"
	"shopfront/internal/service"
	"shopfront/internal/session"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("db schema", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	otpTTL := time.Duration(cfg.OTPTTLMinutes) * time.Minute

	var (
		otpStore     service.OTPStore
		otpLimiter   service.OTPRateLimiter
		sessionStore scs.Store
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpStore = service.NewRedisOTPStore(redisClient)
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, otpTTL, 3)
			sessionStore = goredisstore.New(redisClient)
		}
		cancel()
	}

	sessions := session.NewManager(sessionStore)

	userSvc := service.NewUserService(logger, userRepo, emailSender, otpStore, otpLimiter, otpTTL)

	var chatClient llm.ChatClient
	if cfg.LLMAPIKey != "" {
		chatClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	} else {
		logger.Warn("llm api key not configured, chatbot disabled")
	}

	authHandler := apihttp.NewAuthHandler(logger, userSvc, sessions)
	cartHandler := apihttp.NewCartHandler(logger, sessions)
	chatHandler := apihttp.NewChatHandler(logger, sessions, chatClient)
	pagesHandler := apihttp.NewPagesHandler(logger, userSvc, sessions, cfg.MapsAPIKey)

	router := apihttp.NewRouter(logger, authHandler, cartHandler, chatHandler, pagesHandler)
	router.LoadHTMLGlob(cfg.TemplatesGlob)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           sessions.LoadAndSave(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
