package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gig-marketplace/internal/api/handlers"
	apimiddleware "gig-marketplace/internal/api/middleware"
	"gig-marketplace/internal/config"
	"gig-marketplace/internal/domain"
	"gig-marketplace/internal/infrastructure/mysql"
	redisrelay "gig-marketplace/internal/infrastructure/redis"
	ws "gig-marketplace/internal/infrastructure/websocket"
	"gig-marketplace/internal/services"
	"gig-marketplace/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting gig marketplace server")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}
	if err := mysql.EnsureSchema(ctx, db); err != nil {
		log.Error("Failed to ensure schema", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to MySQL")

	// Initialize repositories
	gigRepo := mysql.NewMySQLGigRepository(db)
	bidRepo := mysql.NewMySQLBidRepository(db)
	userRepo := mysql.NewMySQLUserRepository(db)
	txRunner := mysql.NewMySQLTxRunner(db)

	// Initialize the event hub; with redis enabled, publishes are relayed to
	// the other instances as well.
	hub := ws.NewHub(log)

	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()

	var bus domain.EventBus = hub
	if cfg.Redis.Enabled {
		rdb := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("Connected to Redis", "address", cfg.Redis.Address)

		relay := redisrelay.NewEventRelay(rdb, hub, cfg.Instance.ID, log)
		go func() {
			if err := relay.Start(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Event relay stopped unexpectedly", "error", err)
			}
		}()
		bus = relay
	}

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	gigService := services.NewGigService(gigRepo, bus, log)
	bidService := services.NewBidService(bidRepo, gigRepo, bus, log)
	hireService := services.NewHireService(txRunner, bus, log)
	reconciler := services.NewAssignmentReconciler(bidRepo, cfg.Reconciler.Spec, log)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}","status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			echo.GET, echo.HEAD, echo.PUT, echo.PATCH,
			echo.POST, echo.DELETE, echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, log)
	gigHandler := handlers.NewGigHandler(gigService, log)
	bidHandler := handlers.NewBidHandler(bidService, hireService, log)

	authn := apimiddleware.Authenticate(userService)

	// API routes
	api := e.Group("/api")
	api.POST("/auth/signup", userHandler.Signup)
	api.POST("/auth/login", userHandler.Login)
	api.GET("/auth/me", userHandler.Me, authn)

	api.POST("/gigs", gigHandler.CreateGig, authn)
	api.GET("/gigs", gigHandler.ListGigs, authn)
	api.GET("/gigs/:id", gigHandler.GetGig, authn)
	api.PUT("/gigs/:id", gigHandler.UpdateGig, authn)
	api.DELETE("/gigs/:id", gigHandler.DeleteGig, authn)

	api.POST("/bids", bidHandler.CreateBid, authn)
	api.GET("/bids/:gigId", bidHandler.ListBidsForGig, authn)
	api.PATCH("/bids/:gigId/hire", bidHandler.HireBid, authn)

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "gig-marketplace",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Realtime listener
	wsHandler := ws.NewWebSocketHandler(hub, userService, log)

	realtimeRouter := mux.NewRouter()
	realtimeRouter.HandleFunc("/ws", wsHandler.HandleConnection)
	realtimeRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	realtimeServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Realtime.Host, cfg.Realtime.Port),
		Handler: realtimeRouter,
	}

	// Start background services
	go func() {
		if err := reconciler.Start(context.Background()); err != nil {
			log.Error("Failed to start reconciler", "error", err)
		}
	}()

	go func() {
		log.Info("Starting realtime server", "address", realtimeServer.Addr)
		if err := realtimeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Realtime server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Info("Starting API server", "address", serverAddr)
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gig marketplace server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := reconciler.Stop(); err != nil {
		log.Error("Failed to stop reconciler", "error", err)
	}
	relayCancel()

	if err := realtimeServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Realtime server forced to shutdown", "error", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Gig marketplace server stopped")
}
