package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourstaff-service/internal/domain/repository"
	"tourstaff-service/internal/infrastructure/config"
	"tourstaff-service/internal/infrastructure/oauth"
	"tourstaff-service/internal/infrastructure/persistence"
	api "tourstaff-service/internal/interface/http"
	"tourstaff-service/internal/interface/push"
	repo "tourstaff-service/internal/interface/repository"
	"tourstaff-service/internal/interface/sheets"
	"tourstaff-service/internal/interface/xlsx"
	"tourstaff-service/internal/usecase"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Tourstaff Service", "version", cfg.AppVersion)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid timezone", "timezone", cfg.Timezone, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("tourstaff", prometheus.DefaultRegisterer)

	// MongoDB holds shifts, pickup statuses and the staff directory
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	shiftRepo := repo.NewMongoShiftRepository(db)
	pickupStatusRepo := repo.NewMongoPickupStatusRepository(db)
	staffRepo := repo.NewMongoStaffRepository(db)

	// Postgres fleet registry is optional; without it bus names are taken as given
	var busRepo repository.BusRepository
	if cfg.PostgresDSN != "" {
		gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		busRepo = repo.NewGormBusRepository(gormDB)
	} else {
		log.Warn("POSTGRES_DSN not set, bus capacities default", "capacity", cfg.DefaultBusCapacity)
	}

	bookingSource := repo.NewBookingProxyRepository(
		cfg.BookingProxyURL,
		cfg.BookingProxyToken,
		cfg.BookingProxyTimeout,
		loc,
		log,
		m,
	)

	googleOAuth := oauth.NewGoogleOAuth(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRefreshToken,
		log,
	)
	tokenSource := googleOAuth.GetTokenSource(ctx)

	var reportRepo repository.ReportRepository
	switch cfg.ReportSink {
	case config.ReportSinkSheets:
		if !googleOAuth.Configured() {
			log.Fatal("REPORT_SINK=sheets requires Google OAuth credentials")
		}
		reportRepo, err = sheets.NewSheetsReportRepository(ctx, tokenSource, cfg.SpreadsheetID, loc, log)
		if err != nil {
			log.Fatal("Failed to create Sheets service", "error", err)
		}
	default:
		reportRepo = xlsx.NewXLSXReportRepository(cfg.ReportDir, loc, log)
	}

	allocator := usecase.NewShiftBusAllocator(shiftRepo, busRepo, log, m, loc).
		WithDefaultBusCapacity(cfg.DefaultBusCapacity)
	pickups := usecase.NewPickupService(bookingSource, pickupStatusRepo, reportRepo, allocator, log, m, loc)

	var notifier *usecase.ShiftNotifier
	if googleOAuth.Configured() && cfg.FCMProjectID != "" {
		pushRepo, err := push.NewFCMPushRepository(ctx, tokenSource, cfg.FCMProjectID, log)
		if err != nil {
			log.Fatal("Failed to create FCM service", "error", err)
		}
		notifier = usecase.NewShiftNotifier(staffRepo, pushRepo, log, m, loc)
	} else {
		log.Warn("Push notifications disabled, FCM_PROJECT_ID or Google credentials missing")
	}

	// Complete yesterday's accepted shifts now and then on every tick
	go func() {
		runAutoComplete(ctx, allocator, log)

		ticker := time.NewTicker(cfg.AutoCompleteInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Auto-complete sweep stopped")
				return
			case <-ticker.C:
				runAutoComplete(ctx, allocator, log)
			}
		}
	}()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(allocator, pickups, notifier, log, loc)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handler, promhttp.Handler()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Tourstaff Service stopped")
}

func runAutoComplete(ctx context.Context, allocator *usecase.ShiftBusAllocator, log logger.Logger) {
	count, err := allocator.AutoCompletePastShifts(ctx)
	if err != nil {
		log.Error("Auto-complete sweep failed", "error", err)
		return
	}
	if count > 0 {
		log.Info("Auto-completed past shifts", "count", count)
	}
}
