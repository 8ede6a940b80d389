package controllers

import (
	"safeher/models"
	"safeher/services"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type LocationController struct {
	locationService *services.LocationService
	dispatchService *services.DispatchService
}

func NewLocationController(locationService *services.LocationService, dispatchService *services.DispatchService) *LocationController {
	return &LocationController{
		locationService: locationService,
		dispatchService: dispatchService,
	}
}

// IngestFix accepts a position report from the device's geolocation watch.
func (lc *LocationController) IngestFix(c *gin.Context) {
	var pos models.Position
	if err := c.ShouldBindJSON(&pos); err != nil {
		utils.BadRequestResponse(c, "Invalid position")
		return
	}

	if err := lc.locationService.IngestFix(c.Request.Context(), pos); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Fix accepted", nil)
}

func (lc *LocationController) LastFix(c *gin.Context) {
	fix := lc.locationService.LastFix()
	if fix == nil {
		utils.NotFoundResponse(c, "Location fix")
		return
	}
	utils.SuccessResponse(c, "Last fix", fix)
}

// Share is the one-shot "I'm here" share through a chosen channel.
func (lc *LocationController) Share(c *gin.Context) {
	var req models.ShareLocationRequest
	_ = c.ShouldBindJSON(&req)

	if err := lc.dispatchService.ShareLocation(c.Request.Context(), req.Channel); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Location shared", nil)
}
