package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clutchjobs/interview"
	"clutchjobs/services"
)

type StoreAudioRequest struct {
	ApplicationID string `json:"application_id" binding:"required"`
	TimeRange     *struct {
		From time.Time `json:"from" binding:"required"`
		To   time.Time `json:"to" binding:"required"`
	} `json:"time_range"`
}

// StoreConversationAudio fetches the conversation audio for an application
// from the voice agent provider and stores it durably. Normally triggered
// automatically after submission; this endpoint allows a manual retry.
func StoreConversationAudio(audio *services.AudioStoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if audio == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "Audio storage is not configured",
			})
			return
		}

		var req StoreAudioRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data: " + err.Error(),
			})
			return
		}

		var timeRange *interview.TimeRange
		if req.TimeRange != nil {
			timeRange = &interview.TimeRange{From: req.TimeRange.From, To: req.TimeRange.To}
		}

		audioURL, err := audio.StoreConversationAudio(c.Request.Context(), req.ApplicationID, timeRange)
		if err != nil {
			log.Printf("Conversation audio storage failed for application %s: %v", req.ApplicationID, err)
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"message": "Failed to store conversation audio",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"audio_url": audioURL,
		})
	}
}
