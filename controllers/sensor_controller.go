package controllers

import (
	"safeher/models"
	"safeher/services"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

// SensorController ingests the raw sensor streams the device pushes up:
// accelerometer samples and speech transcripts.
type SensorController struct {
	motionService *services.MotionService
	voiceService  *services.VoiceService
}

func NewSensorController(motionService *services.MotionService, voiceService *services.VoiceService) *SensorController {
	return &SensorController{
		motionService: motionService,
		voiceService:  voiceService,
	}
}

func (sc *SensorController) IngestMotion(c *gin.Context) {
	var sample models.MotionSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		utils.BadRequestResponse(c, "Invalid motion sample")
		return
	}

	raised := sc.motionService.IngestSample(c.Request.Context(), sample)
	utils.SuccessResponse(c, "Sample processed", gin.H{"raised": raised})
}

func (sc *SensorController) IngestTranscript(c *gin.Context) {
	var batch models.TranscriptBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		utils.BadRequestResponse(c, "Invalid transcript")
		return
	}

	keyword := sc.voiceService.IngestTranscript(c.Request.Context(), batch)
	utils.SuccessResponse(c, "Transcript processed", gin.H{
		"matched": keyword != "",
		"keyword": keyword,
	})
}

func (sc *SensorController) RecognizerError(c *gin.Context) {
	var report models.RecognizerErrorReport
	if err := c.ShouldBindJSON(&report); err != nil {
		utils.BadRequestResponse(c, "Invalid error report")
		return
	}

	if err := sc.voiceService.HandleRecognizerError(c.Request.Context(), report); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Recognizer error handled", nil)
}

func (sc *SensorController) GetKeywords(c *gin.Context) {
	utils.SuccessResponse(c, "Trigger keywords", gin.H{"keywords": sc.voiceService.Keywords()})
}

func (sc *SensorController) SetKeywords(c *gin.Context) {
	var req struct {
		Keywords []string `json:"keywords"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	sc.voiceService.SetKeywords(req.Keywords)
	utils.SuccessResponse(c, "Trigger keywords updated", gin.H{"keywords": sc.voiceService.Keywords()})
}
