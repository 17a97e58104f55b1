package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"gamerchat-backend/internal/config"
	"gamerchat-backend/internal/database"
	authHandler "gamerchat-backend/internal/handler/http/auth"
	callHandler "gamerchat-backend/internal/handler/http/call"
	chatHandler "gamerchat-backend/internal/handler/http/chat"
	friendHandler "gamerchat-backend/internal/handler/http/friend"
	userHandler "gamerchat-backend/internal/handler/http/user"
	wsHandler "gamerchat-backend/internal/handler/ws"
	"gamerchat-backend/internal/middleware"
	"gamerchat-backend/internal/repository/cassandra"
	"gamerchat-backend/internal/repository/cockroach"
	redisRepo "gamerchat-backend/internal/repository/redis"
	authService "gamerchat-backend/internal/service/auth"
	callService "gamerchat-backend/internal/service/call"
	chatService "gamerchat-backend/internal/service/chat"
	friendService "gamerchat-backend/internal/service/friend"
	userService "gamerchat-backend/internal/service/user"
	"gamerchat-backend/pkg/constants"
	"gamerchat-backend/pkg/env"
	"gamerchat-backend/pkg/jwt"
	"gamerchat-backend/pkg/logger"
	"gamerchat-backend/pkg/metrics"
)

func main() {
	ctx := context.Background()

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFormat := "text"
	if cfg.IsProduction() {
		logFormat = "json"
	}
	if err := logger.Init(&logger.Config{
		Level:  env.GetString("LOG_LEVEL", "info"),
		Format: logFormat,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Connect to CockroachDB with exponential backoff retry
	db, err := connectCockroach(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to CockroachDB: %v", err)
	}
	defer db.Close()
	log.Println("✅ Connected to CockroachDB")

	// 3. Connect to Cassandra for message history
	cassandraDB, err := database.NewCassandraDB(&database.CassandraConfig{
		Hosts:    cfg.CassandraHosts,
		Keyspace: cfg.CassandraKeyspace,
		Username: cfg.CassandraUser,
		Password: cfg.CassandraPassword,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	defer cassandraDB.Close()
	log.Println("✅ Connected to Cassandra")

	// 4. Connect to Redis with degraded mode support
	database.InitRedisMetrics()
	redisDB, err := database.NewRedisDB(&database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 10,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisDB.Close()
	go redisDB.StartHealthCheck(ctx, 10*time.Second)
	log.Println("✅ Connected to Redis")

	// 5. Repositories
	userRepo := cockroach.NewUserRepository(db.Pool)
	callRepo := cockroach.NewCallRepository(db.Pool)
	friendshipRepo := cockroach.NewFriendshipRepository(db.Pool)
	blockedRepo := cockroach.NewBlockedUserRepository(db.Pool)
	messageRepo := cassandra.NewMessageRepository(cassandraDB.Session)
	sessionRepo := redisRepo.NewSessionRepository(redisDB.Client)
	presenceRepo := redisRepo.NewPresenceRepository(redisDB)

	// 6. Services and signaling core
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.TokenExpiry)
	authSvc := authService.NewService(userRepo, sessionRepo, jwtManager)
	userSvc := userService.NewService(userRepo, presenceRepo)

	registry := wsHandler.NewRegistry()
	callMgr := callService.NewManager(registry, callRepo, cfg.CallRingTimeout)
	router := wsHandler.NewRouter(registry, callMgr)
	callMgr.SetNotifier(router)

	friendSvc := friendService.NewService(userRepo, friendshipRepo, blockedRepo, presenceRepo, router)
	chatSvc := chatService.NewService(messageRepo, userRepo, friendSvc, router)

	hub := wsHandler.NewHub(registry, router, authSvc, callMgr, presenceRepo, wsHandler.HubOptions{
		AuthGracePeriod:  cfg.WSAuthGracePeriod,
		HeartbeatTimeout: cfg.WSHeartbeatTimeout,
		AllowedOrigins:   cfg.AllowedOrigins,
	})

	// 7. Metrics
	appMetrics := metrics.NewMetrics("gamerchat-backend")
	prometheusMiddleware := middleware.NewPrometheusMiddleware(appMetrics)

	// 8. Handlers
	authHdlr := authHandler.NewHandler(authSvc)
	userHdlr := userHandler.NewHandler(userSvc)
	friendHdlr := friendHandler.NewHandler(friendSvc)
	chatHdlr := chatHandler.NewHandler(chatSvc)
	callHdlr := callHandler.NewHandler(callMgr, friendSvc)

	// 9. Router
	engine := gin.New()
	engine.SetTrustedProxies(nil)

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.CORS(cfg.AllowedOrigins))
	engine.Use(prometheusMiddleware.Handler())

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"redis_degraded": redisDB.IsDegraded(),
			"time":           time.Now().UTC(),
		})
	})
	engine.GET("/metrics", middleware.MetricsHandler())

	// WebSocket endpoint authenticates in-band, not via middleware
	engine.GET("/ws", hub.ServeWS)

	authLimiter := middleware.NewRateLimiter(redisDB.Client, 10, time.Minute)

	api := engine.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(authLimiter.Middleware())
		{
			authGroup.POST("/register", authHdlr.Register)
			authGroup.POST("/login", authHdlr.Login)
			authGroup.POST("/verify", authHdlr.Verify)
			authGroup.POST("/logout", middleware.Auth(authSvc), authHdlr.Logout)
		}

		protected := api.Group("")
		protected.Use(middleware.Auth(authSvc))
		{
			protected.GET("/users", userHdlr.List)
			protected.GET("/users/:userID", userHdlr.Get)

			protected.POST("/friends/request", friendHdlr.SendRequest)
			protected.POST("/friends/respond", friendHdlr.Respond)
			protected.GET("/friends", friendHdlr.List)
			protected.GET("/friends/requests", friendHdlr.ListRequests)
			protected.DELETE("/friends/:friendID", friendHdlr.Remove)
			protected.POST("/friends/:friendID/block", friendHdlr.Block)
			protected.DELETE("/friends/:friendID/block", friendHdlr.Unblock)

			protected.POST("/messages", chatHdlr.Send)
			protected.GET("/messages/:userID", chatHdlr.GetConversation)
			protected.PUT("/messages/:messageID", chatHdlr.Edit)
			protected.DELETE("/messages/:messageID", chatHdlr.Delete)

			protected.POST("/calls/start", callHdlr.Start)
			protected.GET("/calls/history", callHdlr.History)
			protected.GET("/calls/:callID", callHdlr.Get)
			protected.POST("/calls/:callID/respond", callHdlr.Respond)
			protected.POST("/calls/:callID/end", callHdlr.End)
		}
	}

	// 10. Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		log.Printf("🚀 GamerChat backend starting on port %s\n", cfg.Port)
		log.Println("📡 WebSocket signaling: /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// connectCockroach dials CockroachDB, retrying with exponential
// backoff since the database may still be starting.
func connectCockroach(ctx context.Context, cfg *config.Config) (*database.CockroachDB, error) {
	dbConfig := &database.CockroachConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}

	maxRetries := 5
	baseDelay := 1 * time.Second
	maxDelay := 30 * time.Second

	db, err := database.NewCockroachDB(ctx, dbConfig)
	for attempt := 2; err != nil && attempt <= maxRetries; attempt++ {
		delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt-1)))
		if delay > maxDelay {
			delay = maxDelay
		}
		log.Printf("⚠️  CockroachDB connection attempt %d failed: %v. Retrying in %v...", attempt-1, err, delay)
		time.Sleep(delay)

		db, err = database.NewCockroachDB(ctx, dbConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("after %d attempts: %w", maxRetries, err)
	}

	return db, nil
}
