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
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"localsphere-backend/internal/config"
	"localsphere-backend/internal/database"
	callHandler "localsphere-backend/internal/handler/http/call"
	messageHandler "localsphere-backend/internal/handler/http/message"
	reportHandler "localsphere-backend/internal/handler/http/report"
	userHandler "localsphere-backend/internal/handler/http/user"
	wsHandler "localsphere-backend/internal/handler/ws"
	"localsphere-backend/internal/middleware"
	"localsphere-backend/internal/repository/memory"
	redisRepo "localsphere-backend/internal/repository/redis"
	callService "localsphere-backend/internal/service/call"
	chatService "localsphere-backend/internal/service/chat"
	reportService "localsphere-backend/internal/service/report"
	userService "localsphere-backend/internal/service/user"
	"localsphere-backend/pkg/constants"
	"localsphere-backend/pkg/logger"
	"localsphere-backend/pkg/metrics"
)

func main() {
	cfg := config.Load()

	// 1. Logger
	if err := logger.Init(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout"}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2. In-memory stores
	userRepo := memory.NewUserRepository()
	messageRepo := memory.NewMessageRepository()
	callRepo := memory.NewCallRepository()
	reportRepo := memory.NewReportRepository()

	if cfg.SeedDemoData {
		memory.SeedDemoData(userRepo, messageRepo)
		logger.Info("demo data seeded")
	}

	// 3. Optional Redis presence mirror
	var presenceRepo *redisRepo.PresenceRepository
	var presence wsHandler.PresenceTracker
	if cfg.RedisAddr != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		presenceRepo = redisRepo.NewPresenceRepository(redisClient)
		presence = presenceRepo
		logger.Info("Redis presence mirror enabled", zap.String("addr", cfg.RedisAddr))
	}

	// 4. Services
	userSvc := userService.NewService(userRepo)
	chatSvc := chatService.NewService(messageRepo)
	callSvc := callService.NewService(callRepo, cfg.EnforceSingleActiveCall)
	reportSvc := reportService.NewService(reportRepo)

	// 5. WebSocket hub
	hub := wsHandler.NewHub(userSvc, chatSvc, callSvc, presence, middleware.AllowedOrigins())

	// 6. Hourly message eviction, on top of query-time expiry filtering
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every "+constants.MessageEvictionInterval.String(), func() {
		evicted, err := chatSvc.EvictExpired(context.Background())
		if err != nil {
			logger.Error("message eviction failed", zap.Error(err))
			return
		}
		metrics.MessagesEvictedTotal.Add(float64(evicted))
		metrics.MessageStoreSize.Set(float64(messageRepo.Count(context.Background())))
		if evicted > 0 {
			logger.Info("expired messages evicted", zap.Int("count", evicted))
		}
	}); err != nil {
		logger.Fatal("failed to schedule eviction", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 7. Handlers
	userHdlr := userHandler.NewHandler(userSvc)
	messageHdlr := messageHandler.NewHandler(chatSvc)
	callHdlr := callHandler.NewHandler(callSvc)
	reportHdlr := reportHandler.NewHandler(reportSvc)

	// 8. Router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.Prometheus())

	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":      "healthy",
			"service":     "relay-service",
			"connections": hub.ActiveConnections(),
			"time":        time.Now().UTC(),
		}
		if presenceRepo != nil {
			if online, err := presenceRepo.GetOnlineCount(c.Request.Context()); err == nil {
				body["online_users"] = online
			}
		}
		c.JSON(200, body)
	})
	router.GET("/metrics", middleware.MetricsHandler())

	api := router.Group("/api")
	{
		api.POST("/users", userHdlr.Create)
		api.GET("/users/:id", userHdlr.Get)
		api.GET("/users/:id/calls", callHdlr.UserCalls)
		api.GET("/nearby-users", userHdlr.Nearby)
		api.GET("/messages", messageHdlr.List)
		api.GET("/calls/:id", callHdlr.Get)
		api.POST("/reports", reportHdlr.Create)
		api.GET("/reports", reportHdlr.List)
	}

	// WebSocket endpoint (real-time relay)
	router.GET("/ws", hub.ServeWS)

	// 9. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("relay service starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
