package controllers

import (
	"net/http"

	"safeher/models"
	"safeher/services"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	historyService *services.HistoryService
}

func NewHistoryController(historyService *services.HistoryService) *HistoryController {
	return &HistoryController{
		historyService: historyService,
	}
}

func (hc *HistoryController) Query(c *gin.Context) {
	var query models.EventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}

	events, err := hc.historyService.Query(c.Request.Context(), query)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Events", events)
}

func (hc *HistoryController) Get(c *gin.Context) {
	event, err := hc.historyService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Event", event)
}

func (hc *HistoryController) Resolve(c *gin.Context) {
	var req models.ResolveEventRequest
	_ = c.ShouldBindJSON(&req)

	event, err := hc.historyService.ResolveEvent(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Event resolved", event)
}

func (hc *HistoryController) Stats(c *gin.Context) {
	stats, err := hc.historyService.Stats(c.Request.Context())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Event stats", stats)
}

// Export streams the filtered history as a CSV download.
func (hc *HistoryController) Export(c *gin.Context) {
	var query models.EventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}

	data, err := hc.historyService.ExportCSV(c.Request.Context(), query)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+services.ExportFilename())
	c.Data(http.StatusOK, "text/csv", data)
}

func (hc *HistoryController) Delete(c *gin.Context) {
	if err := hc.historyService.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Event deleted", nil)
}

func (hc *HistoryController) Clear(c *gin.Context) {
	if err := hc.historyService.ClearAll(c.Request.Context()); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "History cleared", nil)
}
