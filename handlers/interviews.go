package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"clutchjobs/interview"
	"clutchjobs/models"
	"clutchjobs/services"
)

// StartInterviewSession bootstraps a conversational interview for a job:
// it builds the recruiter script from the job details and obtains a
// short-lived signed session URL from the voice agent provider.
func StartInterviewSession(db *sql.DB, agent *services.ElevenLabsService, pageSize int) gin.HandlerFunc {
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		if agent == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": "Interview sessions are not configured",
			})
			return
		}

		job, err := jobs.GetByID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Job not found",
			})
			return
		}

		jobContext := interview.JobContext{
			Title:            job.Title,
			Company:          job.CompanyName,
			Location:         job.Location,
			ExperienceLevel:  job.ExperienceLevel,
			Requirements:     job.Requirements,
			Responsibilities: job.Responsibilities,
		}

		signedURL, err := agent.GetSignedURL(c.Request.Context())
		if err != nil {
			log.Printf("Signed session URL request failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"message": "Failed to start interview session",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"signed_url":    signedURL,
			"agent_id":      agent.AgentID(),
			"prompt":        interview.BuildPrompt(jobContext),
			"first_message": interview.BuildFirstMessage(jobContext),
		})
	}
}
