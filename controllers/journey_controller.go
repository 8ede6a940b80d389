package controllers

import (
	"time"

	"safeher/models"
	"safeher/services"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type JourneyController struct {
	journeyService *services.JourneyService
	checkinService *services.CheckInService
}

func NewJourneyController(journeyService *services.JourneyService, checkinService *services.CheckInService) *JourneyController {
	return &JourneyController{
		journeyService: journeyService,
		checkinService: checkinService,
	}
}

func (jc *JourneyController) Get(c *gin.Context) {
	utils.SuccessResponse(c, "Journey state", jc.journeyService.Get())
}

func (jc *JourneyController) AddWaypoint(c *gin.Context) {
	var req models.AddWaypointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid waypoint")
		return
	}

	wp, err := jc.journeyService.AddWaypoint(c.Request.Context(), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, "Waypoint added", wp)
}

func (jc *JourneyController) RemoveWaypoint(c *gin.Context) {
	id := c.Param("id")
	if err := jc.journeyService.RemoveWaypoint(c.Request.Context(), id); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Waypoint removed", nil)
}

func (jc *JourneyController) Start(c *gin.Context) {
	state, err := jc.journeyService.Start(c.Request.Context())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Journey started", state)
}

func (jc *JourneyController) Complete(c *gin.Context) {
	state, err := jc.journeyService.Complete(c.Request.Context())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Journey completed", state)
}

func (jc *JourneyController) Pause(c *gin.Context) {
	state, err := jc.journeyService.Pause(c.Request.Context())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Journey paused", state)
}

func (jc *JourneyController) Resume(c *gin.Context) {
	state, err := jc.journeyService.Resume(c.Request.Context())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Journey resumed", state)
}

func (jc *JourneyController) Reset(c *gin.Context) {
	if err := jc.journeyService.Reset(c.Request.Context()); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Journey reset", jc.journeyService.Get())
}

// Check-in timer endpoints

func (jc *JourneyController) StartCheckIn(c *gin.Context) {
	var req models.StartCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if req.IntervalMinutes <= 0 {
		utils.BadRequestResponse(c, "Interval must be positive")
		return
	}

	interval := time.Duration(req.IntervalMinutes) * time.Minute
	if err := jc.checkinService.Start(c.Request.Context(), interval); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Check-in timer started", jc.checkinService.Status())
}

func (jc *JourneyController) CheckIn(c *gin.Context) {
	if err := jc.checkinService.CheckIn(c.Request.Context()); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Checked in", jc.checkinService.Status())
}

func (jc *JourneyController) StopCheckIn(c *gin.Context) {
	jc.checkinService.Stop(c.Request.Context())
	utils.SuccessResponse(c, "Check-in timer stopped", jc.checkinService.Status())
}

func (jc *JourneyController) CheckInStatus(c *gin.Context) {
	utils.SuccessResponse(c, "Check-in status", jc.checkinService.Status())
}
