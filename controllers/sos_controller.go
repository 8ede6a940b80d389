package controllers

import (
	"safeher/models"
	"safeher/services"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type SOSController struct {
	sessionService *services.SessionService
}

func NewSOSController(sessionService *services.SessionService) *SOSController {
	return &SOSController{
		sessionService: sessionService,
	}
}

// Trigger is the panic button: escalates straight to an active session.
func (sc *SOSController) Trigger(c *gin.Context) {
	var req models.TriggerSOSRequest
	// Body is optional for the panic path.
	_ = c.ShouldBindJSON(&req)

	status := sc.sessionService.TriggerSOS(c.Request.Context())
	utils.SuccessResponse(c, "Emergency activated", status)
}

// Cancel ends a countdown or an active session ("I'm safe").
func (sc *SOSController) Cancel(c *gin.Context) {
	var req models.CancelRequest
	_ = c.ShouldBindJSON(&req)

	status, err := sc.sessionService.Cancel(c.Request.Context(), req.Reason)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Session cancelled", status)
}

func (sc *SOSController) Status(c *gin.Context) {
	utils.SuccessResponse(c, "Session status", sc.sessionService.Status())
}

func (sc *SOSController) SetSafeMode(c *gin.Context) {
	var req models.SafeModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	sc.sessionService.SetSafeMode(c.Request.Context(), req.Enabled)
	utils.SuccessResponse(c, "Safe mode updated", gin.H{"enabled": sc.sessionService.SafeMode()})
}

func (sc *SOSController) FakeCall(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	_ = c.ShouldBindJSON(&req)

	sc.sessionService.FakeCall(c.Request.Context(), req.Name, req.Phone)
	utils.SuccessResponse(c, "Fake call started", nil)
}
