package routes

import (
	"time"

	"safeher/controllers"
	"safeher/middleware"
	"safeher/models"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	SOS       *controllers.SOSController
	Sensor    *controllers.SensorController
	Location  *controllers.LocationController
	Journey   *controllers.JourneyController
	Contact   *controllers.ContactController
	History   *controllers.HistoryController
	Recording *controllers.RecordingController
	WebSocket *controllers.WebSocketController
}

var startTime = time.Now()

func SetupRoutes(router *gin.Engine, c Controllers) {
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Services:  map[string]string{"bridge": "up"},
			Version:   "1.0.0",
			Uptime:    time.Since(startTime).String(),
		})
	})

	router.GET("/ws", c.WebSocket.HandleWebSocket)

	v1 := router.Group("/api/v1")
	{
		sos := v1.Group("/sos")
		{
			sos.POST("/trigger", c.SOS.Trigger)
			sos.POST("/cancel", c.SOS.Cancel)
			sos.GET("/status", c.SOS.Status)
			sos.POST("/fake-call", c.SOS.FakeCall)
		}
		v1.POST("/countdown/cancel", c.SOS.Cancel)
		v1.POST("/safemode", c.SOS.SetSafeMode)

		sensors := v1.Group("/sensors")
		{
			sensors.POST("/motion", c.Sensor.IngestMotion)
			sensors.POST("/voice", c.Sensor.IngestTranscript)
			sensors.POST("/voice/error", c.Sensor.RecognizerError)
			sensors.GET("/voice/keywords", c.Sensor.GetKeywords)
			sensors.PUT("/voice/keywords", c.Sensor.SetKeywords)
		}

		location := v1.Group("/location")
		{
			location.POST("/fix", c.Location.IngestFix)
			location.GET("/last", c.Location.LastFix)
			location.POST("/share", c.Location.Share)
		}

		journey := v1.Group("/journey")
		{
			journey.GET("", c.Journey.Get)
			journey.POST("/waypoints", c.Journey.AddWaypoint)
			journey.DELETE("/waypoints/:id", c.Journey.RemoveWaypoint)
			journey.POST("/start", c.Journey.Start)
			journey.POST("/stop", c.Journey.Complete)
			journey.POST("/pause", c.Journey.Pause)
			journey.POST("/resume", c.Journey.Resume)
			journey.POST("/reset", c.Journey.Reset)
		}

		checkin := v1.Group("/checkin")
		{
			checkin.POST("/start", c.Journey.StartCheckIn)
			checkin.POST("/reset", c.Journey.CheckIn)
			checkin.POST("/stop", c.Journey.StopCheckIn)
			checkin.GET("/status", c.Journey.CheckInStatus)
		}

		contacts := v1.Group("/contacts")
		{
			contacts.GET("", c.Contact.List)
			contacts.POST("", c.Contact.Add)
			contacts.GET("/:id", c.Contact.Get)
			contacts.PUT("/:id", c.Contact.Update)
			contacts.DELETE("/:id", c.Contact.Delete)
		}

		history := v1.Group("/history")
		{
			history.GET("", c.History.Query)
			history.GET("/stats", c.History.Stats)
			history.GET("/export", c.History.Export)
			history.GET("/:id", c.History.Get)
			history.PUT("/:id/resolve", c.History.Resolve)
			history.DELETE("/:id", c.History.Delete)
			history.DELETE("", c.History.Clear)
		}

		recordings := v1.Group("/recordings")
		{
			recordings.POST("/start", c.Recording.Start)
			recordings.POST("/chunk", c.Recording.Chunk)
			recordings.POST("/stop", c.Recording.Stop)
			recordings.GET("/current", c.Recording.Current)
			recordings.GET("", c.Recording.List)
			recordings.GET("/:id/download", c.Recording.Download)
			recordings.DELETE("/:id", c.Recording.Delete)
		}
	}
}
