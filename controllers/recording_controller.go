package controllers

import (
	"encoding/base64"
	"net/http"

	"safeher/models"
	"safeher/services"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type RecordingController struct {
	recorderService *services.RecorderService
}

func NewRecordingController(recorderService *services.RecorderService) *RecordingController {
	return &RecordingController{
		recorderService: recorderService,
	}
}

// Start begins a manual evidence recording.
func (rc *RecordingController) Start(c *gin.Context) {
	var req models.StartRecordingRequest
	_ = c.ShouldBindJSON(&req)

	handle, err := rc.recorderService.Acquire(c.Request.Context(), models.ReasonManual, req.Video, false)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Recording started", handle)
}

// Chunk accepts one base64-encoded media chunk from the device capture.
func (rc *RecordingController) Chunk(c *gin.Context) {
	var req models.RecordingChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid chunk")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		utils.BadRequestResponse(c, "Chunk data is not valid base64")
		return
	}

	if err := rc.recorderService.IngestChunk(c.Request.Context(), data, req.MimeType); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Chunk accepted", nil)
}

func (rc *RecordingController) Stop(c *gin.Context) {
	rc.recorderService.Stop(c.Request.Context())
	utils.SuccessResponse(c, "Recording stopped", nil)
}

func (rc *RecordingController) Current(c *gin.Context) {
	handle := rc.recorderService.Current()
	utils.SuccessResponse(c, "Recorder state", gin.H{
		"recording": handle != nil,
		"handle":    handle,
	})
}

func (rc *RecordingController) List(c *gin.Context) {
	recordings, err := rc.recorderService.List(c.Request.Context())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Recordings", recordings)
}

// Download streams a stored recording's payload.
func (rc *RecordingController) Download(c *gin.Context) {
	recording, err := rc.recorderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+recording.Filename)
	c.Data(http.StatusOK, recording.MimeType, recording.Payload)
}

func (rc *RecordingController) Delete(c *gin.Context) {
	if err := rc.recorderService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Recording deleted", nil)
}
