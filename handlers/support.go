package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clutchjobs/services"
)

type SupportRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// SendSupportMessage records a support chat message and forwards it to the
// support inbox. The endpoint is public; a bearer token, when sent, links
// the message to the caller's profile.
func SendSupportMessage(db *sql.DB, email *services.EmailNotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SupportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data: " + err.Error(),
			})
			return
		}

		var profileID interface{}
		if userID := OptionalUserID(c); userID != "" {
			profileID = userID
		}

		_, err := db.Exec(`INSERT INTO support_messages (id, profile_id, email, message) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), profileID, req.Email, req.Message)
		if err != nil {
			log.Printf("Support message insert failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to record support message",
			})
			return
		}

		if email != nil {
			if err := email.SendSupportMessage(req.Email, req.Message); err != nil {
				log.Printf("Support email forwarding failed: %v", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Support message received",
		})
	}
}
