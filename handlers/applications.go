package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"clutchjobs/board"
	"clutchjobs/interview"
	"clutchjobs/models"
	"clutchjobs/services"
	"clutchjobs/utils"
)

// applicationStore adapts ApplicationModel to the finalizer's store
// contract.
type applicationStore struct {
	applications *models.ApplicationModel
}

func (s *applicationStore) Exists(candidateID, jobID string) (bool, error) {
	return s.applications.Exists(candidateID, jobID)
}

func (s *applicationStore) Create(ctx context.Context, record interview.ApplicationRecord) (string, error) {
	app, err := s.applications.Create(&models.Application{
		JobID:          record.JobID,
		CandidateID:    record.CandidateID,
		VideoURL:       record.VideoRef,
		VideoCompleted: record.VideoCompleted,
		ConversationID: record.ConversationID,
		Transcript:     record.Transcript,
		Metadata:       record.Metadata,
	})
	if err != nil {
		// The unique index on (job_id, candidate_id) catches inserts that
		// raced past the Exists pre-check.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", interview.ErrAlreadyApplied
		}
		return "", err
	}
	return app.ID, nil
}

// formFileBytes reads an optional multipart file field into a chunk buffer.
func formFileBytes(c *gin.Context, field string) (*interview.ChunkBuffer, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return interview.NewChunkBuffer(), nil
		}
		return nil, err
	}
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	buf := interview.NewChunkBuffer()
	buf.Append(data)
	return buf, nil
}

// SubmitApplication accepts the recorded interview as a multipart form and
// runs it through the finalization pipeline. The video and audio parts are
// optional; an application without media is still created.
func SubmitApplication(db *sql.DB, storage *services.StorageService, local *services.LocalStore,
	audio *services.AudioStoreService, email *services.EmailNotificationService,
	videoPrefix, audioPrefix string, pageSize int) gin.HandlerFunc {

	applications := models.NewApplicationModel(db)
	profiles := models.NewProfileModel(db)
	jobs := models.NewJobModel(db, pageSize)

	finalizer := &interview.Finalizer{
		Store:       &applicationStore{applications: applications},
		VideoPrefix: videoPrefix,
		AudioPrefix: audioPrefix,
	}
	if storage != nil {
		finalizer.Uploader = storage
	}
	if local != nil {
		finalizer.LocalSaver = local
	}
	if audio != nil {
		finalizer.Audio = audio
	}

	return func(c *gin.Context) {
		candidateID := c.GetString("user_id")
		jobID := c.PostForm("job_id")
		if jobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "job_id is required",
			})
			return
		}

		job, err := jobs.GetByID(jobID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Job not found",
			})
			return
		}

		videoChunks, err := formFileBytes(c, "video")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid video upload",
			})
			return
		}
		audioChunks, err := formFileBytes(c, "audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid audio upload",
			})
			return
		}

		result, err := finalizer.Finalize(c.Request.Context(), interview.Submission{
			JobID:          jobID,
			CandidateID:    candidateID,
			VideoChunks:    videoChunks,
			AudioChunks:    audioChunks,
			TranscriptLog:  c.PostForm("transcript"),
			ConversationID: c.PostForm("conversation_id"),
		})
		if err != nil {
			if errors.Is(err, interview.ErrAlreadyApplied) {
				c.JSON(http.StatusConflict, gin.H{
					"success": false,
					"message": "You have already applied to this job",
				})
				return
			}
			log.Printf("Application finalization failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to submit application",
			})
			return
		}

		if email != nil {
			if profile, perr := profiles.GetByID(candidateID); perr == nil {
				if merr := email.SendApplicationConfirmation(profile.Email, profile.FullName,
					job.Title, job.CompanyName); merr != nil {
					log.Printf("Application confirmation email failed: %v", merr)
				}
			}
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":        true,
			"application_id": result.ApplicationID,
			"video_url":      result.VideoRef,
			"state":          result.State,
			"notices":        result.Notices,
		})
	}
}

// CheckApplication reports whether the authenticated candidate has already
// applied to a job. It is a convenience pre-check; submission performs its
// own duplicate check.
func CheckApplication(db *sql.DB) gin.HandlerFunc {
	applications := models.NewApplicationModel(db)
	return func(c *gin.Context) {
		jobID := c.Query("job_id")
		if jobID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "job_id is required",
			})
			return
		}

		applied, err := applications.Exists(c.GetString("user_id"), jobID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to check application",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"applied": applied,
		})
	}
}

// ListApplications returns the caller's applications: their own submissions
// for candidates, applications against their postings for employers.
func ListApplications(db *sql.DB) gin.HandlerFunc {
	applications := models.NewApplicationModel(db)
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var (
			apps []models.Application
			err  error
		)
		if c.GetString("account_type") == models.AccountTypeEmployer {
			apps, err = applications.ListForEmployer(userID)
		} else {
			apps, err = applications.ListForCandidate(userID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load applications",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"applications": apps,
		})
	}
}

// GetApplicationBoard returns the employer's applications grouped into the
// fixed status columns.
func GetApplicationBoard(db *sql.DB) gin.HandlerFunc {
	applications := models.NewApplicationModel(db)
	return func(c *gin.Context) {
		b := board.New(applications, c.GetString("user_id"))
		if err := b.Load(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load board",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"columns": b.Columns(),
		})
	}
}

// UpdateApplicationStatus moves an application to another board column.
func UpdateApplicationStatus(db *sql.DB) gin.HandlerFunc {
	applications := models.NewApplicationModel(db)
	return func(c *gin.Context) {
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data: " + err.Error(),
			})
			return
		}
		if !models.ValidStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("Invalid status %q", req.Status),
			})
			return
		}

		b := board.New(applications, c.GetString("user_id"))
		if err := b.Load(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load board",
			})
			return
		}
		if err := b.Move(c.Param("id"), req.Status); err != nil {
			log.Printf("Board move failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update application status",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"columns": b.Columns(),
		})
	}
}

// DeleteApplication withdraws the authenticated candidate's application.
func DeleteApplication(db *sql.DB) gin.HandlerFunc {
	applications := models.NewApplicationModel(db)
	return func(c *gin.Context) {
		err := applications.Delete(c.Param("id"), c.GetString("user_id"))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Application not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to withdraw application",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Application withdrawn",
		})
	}
}

// canExportTranscript reports whether the caller may download an
// application's transcript. Employers only see applications to their own
// jobs, the same scoping ListForEmployer applies.
func canExportTranscript(app *models.Application, jobCompanyID, userID, accountType string) bool {
	if app.CandidateID == userID {
		return true
	}
	return accountType == models.AccountTypeEmployer && jobCompanyID != "" && jobCompanyID == userID
}

// ExportTranscript renders the normalized interview transcript as a Word
// document download.
func ExportTranscript(db *sql.DB, pageSize int) gin.HandlerFunc {
	applications := models.NewApplicationModel(db)
	profiles := models.NewProfileModel(db)
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		app, err := applications.GetByID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Application not found",
			})
			return
		}

		userID := c.GetString("user_id")
		var jobCompanyID string
		if app.CandidateID != userID {
			if job, jerr := jobs.GetByID(app.JobID); jerr == nil {
				jobCompanyID = job.CompanyID
			}
		}
		if !canExportTranscript(app, jobCompanyID, userID, c.GetString("account_type")) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Not authorized to view this transcript",
			})
			return
		}

		if app.Transcript == "" {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "No transcript recorded for this application",
			})
			return
		}

		candidateName := app.CandidateName
		if candidateName == "" {
			if profile, perr := profiles.GetByID(app.CandidateID); perr == nil {
				candidateName = profile.FullName
			}
		}

		entries := interview.Normalize(app.Transcript)
		outPath := filepath.Join(os.TempDir(), fmt.Sprintf("transcript_%s.docx", app.ID))
		if err := utils.GenerateTranscriptDoc(app.JobTitle, candidateName, entries, outPath); err != nil {
			log.Printf("Transcript document generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to generate transcript document",
			})
			return
		}
		defer os.Remove(outPath)

		c.FileAttachment(outPath, fmt.Sprintf("interview_transcript_%s.docx", app.ID))
	}
}
