package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"safeher/config"
	"safeher/controllers"
	"safeher/database"
	"safeher/interfaces"
	"safeher/models"
	"safeher/repositories"
	"safeher/routes"
	"safeher/services"
	"safeher/utils"
	"safeher/websocket"
	"safeher/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	setupLogger(cfg)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer db.Disconnect()

	redisClient := config.InitRedis(cfg)
	defer redisClient.Close()

	// Repositories
	eventRepo := repositories.NewEventRepository(db.DB)
	contactRepo := repositories.NewContactRepository(db.DB)
	journeyRepo := repositories.NewJourneyRepository(db.DB)
	recordingRepo := repositories.NewRecordingRepository(db.DB)

	// Device command hub
	hub := websocket.NewHub()
	go hub.Run()

	validator := utils.NewValidationService()

	// Services
	locationService := services.NewLocationService(redisClient)
	geocodeService := services.NewGeocodeService(cfg.MapsAPIKey)
	historyService := services.NewHistoryService(eventRepo, locationService, geocodeService, hub, hub)
	contactService := services.NewContactService(contactRepo, validator)

	senders := []interfaces.ContactSender{
		services.NewSMSService(cfg),
		services.NewEmailService(cfg),
		services.NewPushService(cfg),
	}
	broadcastWorker := workers.NewBroadcastWorker(cfg.BroadcastInterval, cfg.BroadcastMaxRuns)
	dispatchService := services.NewDispatchService(contactService, hub, senders, locationService, historyService, broadcastWorker)

	recorderService := services.NewRecorderService(cfg, recordingRepo, hub, locationService, historyService)
	sessionService := services.NewSessionService(cfg, hub, recorderService, dispatchService, locationService, historyService, hub)

	motionService := services.NewMotionService(cfg, historyService, sessionService)
	voiceService := services.NewVoiceService(historyService, sessionService, hub)
	sessionService.AttachWatchers(motionService, voiceService)
	sessionService.AttachStateStore(redisClient)

	geofenceService := services.NewGeofenceService(cfg, historyService, sessionService)
	journeyService := services.NewJourneyService(journeyRepo, geofenceService, locationService, historyService)
	checkinService := services.NewCheckInService(historyService, sessionService)

	// Background workers
	cleanupWorker := workers.NewCleanupWorker(cfg, eventRepo, recordingRepo)
	cleanupWorker.Start()
	defer cleanupWorker.Stop()

	// Controllers and routes
	router := gin.New()
	routes.SetupRoutes(router, routes.Controllers{
		SOS:       controllers.NewSOSController(sessionService),
		Sensor:    controllers.NewSensorController(motionService, voiceService),
		Location:  controllers.NewLocationController(locationService, dispatchService),
		Journey:   controllers.NewJourneyController(journeyService, checkinService),
		Contact:   controllers.NewContactController(contactService),
		History:   controllers.NewHistoryController(historyService),
		Recording: controllers.NewRecordingController(recorderService),
		WebSocket: controllers.NewWebSocketController(hub),
	})

	server := &http.Server{
		Addr:           "127.0.0.1:" + cfg.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Info("SafeHer safety core starting on ", server.Addr)
		logrus.Info("Device bridge: /ws")
		logrus.Info("Health check: /health")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		historyService.LogEvent(ctx, models.EventAppOpened, models.EventExtra{})
		cancel()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// An open evidence recording is flushed before exit.
	recorderService.Stop(shutdownCtx)
	broadcastWorker.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Shutdown complete")
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Environment == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
