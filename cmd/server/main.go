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
	"github.com/stwalsh4118/agrireg/internal/clients"
	"github.com/stwalsh4118/agrireg/internal/config"
	"github.com/stwalsh4118/agrireg/internal/database"
	"github.com/stwalsh4118/agrireg/internal/handlers"
	"github.com/stwalsh4118/agrireg/internal/logger"
	"github.com/stwalsh4118/agrireg/internal/middleware"
	"github.com/stwalsh4118/agrireg/internal/repository"
	"github.com/stwalsh4118/agrireg/internal/services"
	"github.com/stwalsh4118/agrireg/internal/soil"
	"github.com/stwalsh4118/agrireg/internal/wizard"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting agrireg API", map[string]interface{}{
		"version":       handlers.APIVersion,
		"environment":   cfg.Server.Env,
		"port":          cfg.Server.Port,
		"registry_mode": cfg.Registration.RegistryMode,
	})

	ctx := context.Background()

	// Registry: either our own PostgreSQL farmers table or the remote backend
	var (
		db        *database.Database
		registrar services.Registrar
		farmers   services.FarmerService
	)
	if cfg.UsesPostgres() {
		db, err = database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare database schema", err, nil)
		}

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})

		farmers = services.NewFarmerService(repository.NewFarmerRepository(db), log)
		registrar = services.NewLocalRegistrar(farmers)
	} else {
		registrar = clients.NewFarmerClient(cfg.Upstream.FarmerAPIURL, cfg.Upstream.Timeout)
		log.Info("Forwarding registrations to farmer backend", map[string]interface{}{
			"url": cfg.Upstream.FarmerAPIURL,
		})
	}

	store := wizard.NewStore(cfg.Registration.SessionTTL, log)
	soilService := services.NewSoilService(soil.Default(), log)
	registrationService := services.NewRegistrationService(
		store,
		soilService,
		clients.NewMLClient(cfg.Upstream.MLAPIURL, cfg.Upstream.Timeout),
		registrar,
		services.RegistrationOptions{
			RedirectPath:  cfg.Registration.RedirectPath,
			RedirectDelay: cfg.Registration.RedirectDelay,
		},
		log,
	)

	weatherClient := clients.NewWeatherClient(cfg.Upstream.WeatherAPIURL, cfg.Upstream.WeatherAPIKey, cfg.Upstream.Timeout)
	if !weatherClient.Configured() {
		log.Warn("WEATHER_API_KEY is not set, weather endpoint will answer 503", nil)
	}
	weatherService := services.NewWeatherService(weatherClient, log)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.UseJSONFieldNames()
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	healthHandler := handlers.NewHealthHandler(pinger, store, cfg.Registration.RegistryMode, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	v1 := router.Group("/api/v1")
	handlers.NewRegistrationHandler(registrationService).RegisterRoutes(v1)
	handlers.NewSoilHandler(soilService).RegisterRoutes(v1)
	v1.GET("/weather", handlers.NewWeatherHandler(weatherService).Current)

	if farmers != nil {
		handlers.NewFarmerHandler(farmers).RegisterRoutes(router.Group("/api"))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", map[string]interface{}{
		"active_sessions": store.Count(),
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
