package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"clinic-scheduling-server/internal/calendarsync"
	"clinic-scheduling-server/internal/config"
	"clinic-scheduling-server/internal/middleware"
	"clinic-scheduling-server/internal/models"
	"clinic-scheduling-server/internal/repository"
	"clinic-scheduling-server/internal/repository/memory"
	"clinic-scheduling-server/internal/routes"
	"clinic-scheduling-server/internal/scheduling"
	"clinic-scheduling-server/internal/utils"
)

func main() {
	// Load environment variables; deployments may inject them directly.
	envErr := godotenv.Load()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.IsProduction())
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)
	if envErr != nil {
		logger.Warn("no .env file loaded, using process environment", zap.Error(envErr))
	}

	appointments, staff, clinics, guard, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}

	var calendar scheduling.CalendarSync
	var worker *calendarsync.Worker
	if cfg.CalendarSync.Enabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		calendar = calendarsync.NewDispatcher(client, cfg.CalendarSync.Queue, cfg.CalendarSync.MaxRetry, logger)

		if cfg.CalendarSync.RunWorker {
			provider := calendarsync.NewWebhookProvider(cfg.CalendarSync.WebhookURL)
			worker = calendarsync.NewWorker(redisOpt, cfg.CalendarSync.Queue, cfg.CalendarSync.Concurrency, provider, logger)
			if err := worker.Start(); err != nil {
				logger.Fatal("failed to start calendar sync worker", zap.Error(err))
			}
		}
	}

	scheduler := scheduling.NewService(appointments, staff, clinics, guard, calendar, logger, scheduling.Options{
		DefaultTimezone:     cfg.Scheduling.DefaultTimezone,
		DefaultWorkdayStart: cfg.Scheduling.WorkdayStart,
		DefaultWorkdayEnd:   cfg.Scheduling.WorkdayEnd,
		DefaultSlotMinutes:  cfg.Scheduling.DefaultSlotMinutes,
		ReassignPolicy:      scheduling.ReassignPolicy(cfg.Scheduling.ReassignPolicy),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, logger))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, scheduler, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server running", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("server is shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	logger.Info("server stopped gracefully")
}

// buildStorage selects the persistence backend. The memory backend is for
// local runs and demos; it starts empty.
func buildStorage(cfg *config.Config, logger *zap.Logger) (
	scheduling.AppointmentRepository,
	scheduling.StaffRepository,
	scheduling.ClinicRepository,
	scheduling.BookingGuard,
	error,
) {
	if cfg.StorageBackend == "memory" {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		if err := seedDemoClinic(store, cfg, logger); err != nil {
			return nil, nil, nil, nil, err
		}
		return store, store, store, memory.NewGuard(), nil
	}

	db, err := models.InitDB(models.DatabaseConfig{
		DSN:   cfg.Database.DSN,
		Debug: !cfg.IsProduction(),
	})
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	clinics := repository.NewCachedClinicRepository(
		repository.NewClinicRepository(db),
		cfg.ClinicCache.Size,
		cfg.ClinicCache.TTL,
	)
	return repository.NewAppointmentRepository(db),
		repository.NewStaffRepository(db),
		clinics,
		repository.NewBookingGuard(db),
		nil
}

// seedDemoClinic gives a fresh memory store one clinic with an admin and two
// professionals, and logs an admin token for local requests.
func seedDemoClinic(store *memory.Store, cfg *config.Config, logger *zap.Logger) error {
	clinic := store.AddClinic(models.Clinic{
		Name:               "Demo Clinic",
		Timezone:           cfg.Scheduling.DefaultTimezone,
		WorkdayStart:       cfg.Scheduling.WorkdayStart,
		WorkdayEnd:         cfg.Scheduling.WorkdayEnd,
		DefaultSlotMinutes: cfg.Scheduling.DefaultSlotMinutes,
	})
	admin := store.AddStaff(models.Staff{ClinicID: clinic.ID, Name: "Demo Admin", Role: models.RoleAdmin, Active: true})
	for _, name := range []string{"Dr. Demo One", "Dr. Demo Two"} {
		store.AddStaff(models.Staff{ClinicID: clinic.ID, Name: name, Role: models.RoleProfessional, IsProfessional: true, Active: true})
	}

	if cfg.IsProduction() {
		return nil
	}
	ttl := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	token, err := utils.GenerateAccessToken(&admin, cfg.JWTSecret, ttl)
	if err != nil {
		return fmt.Errorf("issue demo token: %w", err)
	}
	logger.Info("demo clinic seeded",
		zap.String("clinicID", clinic.ID),
		zap.String("adminToken", token),
		zap.Duration("tokenTTL", ttl),
	)
	return nil
}
