package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"clutchjobs/models"
	"clutchjobs/services"
)

type JobRequest struct {
	Title            string   `json:"title" binding:"required"`
	Type             string   `json:"type" binding:"required"`
	Location         string   `json:"location" binding:"required"`
	WorkSchedule     string   `json:"work_schedule"`
	ExperienceLevel  string   `json:"experience_level"`
	SalaryMin        int      `json:"salary_min"`
	SalaryMax        int      `json:"salary_max"`
	SalaryCurrency   string   `json:"salary_currency"`
	SalaryPeriod     string   `json:"salary_period"`
	Overview         string   `json:"overview"`
	Requirements     []string `json:"requirements"`
	Responsibilities []string `json:"responsibilities"`
	Benefits         []string `json:"benefits"`
}

// splitParam turns a comma-separated query parameter into a slice,
// dropping empty segments.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SearchJobs lists active jobs with free-text search, facet filters and
// page-based pagination.
func SearchJobs(db *sql.DB, pageSize int) gin.HandlerFunc {
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}

		filters := models.JobFilters{
			Types:            splitParam(c.Query("types")),
			ExperienceLevels: splitParam(c.Query("experience_levels")),
			WorkSchedules:    splitParam(c.Query("work_schedules")),
			Location:         c.Query("location"),
		}

		results, hasMore, err := jobs.Search(c.Query("q"), filters, page)
		if err != nil {
			log.Printf("Job search failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to search jobs",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"jobs":     results,
			"page":     page,
			"has_more": hasMore,
		})
	}
}

// GetJob returns a single active job with its company details.
func GetJob(db *sql.DB, pageSize int) gin.HandlerFunc {
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		job, err := jobs.GetByID(c.Param("id"))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Job not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load job",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"job":     job,
		})
	}
}

// GetJobLocations returns the distinct locations of active jobs, used to
// populate the location filter.
func GetJobLocations(db *sql.DB, pageSize int) gin.HandlerFunc {
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		locations, err := jobs.Locations()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load locations",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"locations": locations,
		})
	}
}

// ListCompanyJobs returns every job posted by the authenticated employer,
// including inactive ones.
func ListCompanyJobs(db *sql.DB, pageSize int) gin.HandlerFunc {
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		results, err := jobs.ListByCompany(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load jobs",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"jobs":    results,
		})
	}
}

// CreateJob creates a job for the authenticated employer.
func CreateJob(db *sql.DB, pageSize int) gin.HandlerFunc {
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		var req JobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data: " + err.Error(),
			})
			return
		}

		job, err := jobs.Create(&models.Job{
			CompanyID:        c.GetString("user_id"),
			Title:            req.Title,
			Type:             req.Type,
			Location:         req.Location,
			WorkSchedule:     req.WorkSchedule,
			ExperienceLevel:  req.ExperienceLevel,
			SalaryMin:        req.SalaryMin,
			SalaryMax:        req.SalaryMax,
			SalaryCurrency:   req.SalaryCurrency,
			SalaryPeriod:     req.SalaryPeriod,
			Overview:         req.Overview,
			Requirements:     req.Requirements,
			Responsibilities: req.Responsibilities,
			Benefits:         req.Benefits,
		})
		if err != nil {
			log.Printf("Job creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create job",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"job":     job,
		})
	}
}

// UpdateJob updates a job owned by the authenticated employer.
func UpdateJob(db *sql.DB, pageSize int) gin.HandlerFunc {
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		var req JobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data: " + err.Error(),
			})
			return
		}

		err := jobs.Update(&models.Job{
			ID:               c.Param("id"),
			CompanyID:        c.GetString("user_id"),
			Title:            req.Title,
			Type:             req.Type,
			Location:         req.Location,
			WorkSchedule:     req.WorkSchedule,
			ExperienceLevel:  req.ExperienceLevel,
			SalaryMin:        req.SalaryMin,
			SalaryMax:        req.SalaryMax,
			SalaryCurrency:   req.SalaryCurrency,
			SalaryPeriod:     req.SalaryPeriod,
			Overview:         req.Overview,
			Requirements:     req.Requirements,
			Responsibilities: req.Responsibilities,
			Benefits:         req.Benefits,
		})
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Job not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to update job",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Job updated successfully",
		})
	}
}

// DeactivateJob soft-deletes a job so it no longer appears in search.
// Applications against it are preserved.
func DeactivateJob(db *sql.DB, pageSize int) gin.HandlerFunc {
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		err := jobs.Deactivate(c.Param("id"), c.GetString("user_id"))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Job not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to remove job",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Job removed successfully",
		})
	}
}

type JobPostingRequest struct {
	User struct {
		Email       string `json:"email" binding:"required,email"`
		FullName    string `json:"full_name"`
		CompanyName string `json:"company_name" binding:"required"`
		Website     string `json:"website"`
		Industry    string `json:"industry"`
	} `json:"user" binding:"required"`
	Job JobRequest `json:"job" binding:"required"`
}

// CreateJobPosting is the public intake endpoint for new employers. It
// creates the employer profile when the email is unknown, posts the job
// and emails a welcome message with a temporary password.
func CreateJobPosting(db *sql.DB, pageSize int, email *services.EmailNotificationService) gin.HandlerFunc {
	profiles := models.NewProfileModel(db)
	jobs := models.NewJobModel(db, pageSize)
	return func(c *gin.Context) {
		var req JobPostingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid request data: " + err.Error(),
			})
			return
		}

		tempPassword := ""
		profile, err := profiles.GetByEmail(req.User.Email)
		if err != nil {
			tempPassword = services.GenerateTempPassword()
			hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to create employer account",
				})
				return
			}
			profile, err = profiles.CreateWithCompany(req.User.Email, req.User.FullName, string(hashed),
				models.AccountTypeEmployer, "email", req.User.CompanyName, req.User.Website, req.User.Industry)
			if err != nil {
				log.Printf("Employer profile creation failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Failed to create employer account",
				})
				return
			}
		} else if profile.AccountType != models.AccountTypeEmployer {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "This email is registered as a candidate account",
			})
			return
		}

		job, err := jobs.Create(&models.Job{
			CompanyID:        profile.ID,
			Title:            req.Job.Title,
			Type:             req.Job.Type,
			Location:         req.Job.Location,
			WorkSchedule:     req.Job.WorkSchedule,
			ExperienceLevel:  req.Job.ExperienceLevel,
			SalaryMin:        req.Job.SalaryMin,
			SalaryMax:        req.Job.SalaryMax,
			SalaryCurrency:   req.Job.SalaryCurrency,
			SalaryPeriod:     req.Job.SalaryPeriod,
			Overview:         req.Job.Overview,
			Requirements:     req.Job.Requirements,
			Responsibilities: req.Job.Responsibilities,
			Benefits:         req.Job.Benefits,
		})
		if err != nil {
			log.Printf("Job posting creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to create job posting",
			})
			return
		}

		if email != nil && tempPassword != "" {
			if err := email.SendJobPostingWelcome(profile.Email, profile.FullName, job.Title, tempPassword); err != nil {
				log.Printf("Welcome email failed for %s: %v", profile.Email, err)
			}
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"job":     job,
		})
	}
}

// ListCompanies returns employer profiles with their active job counts.
func ListCompanies(db *sql.DB) gin.HandlerFunc {
	profiles := models.NewProfileModel(db)
	return func(c *gin.Context) {
		companies, err := profiles.ListCompanies()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load companies",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"companies": companies,
		})
	}
}
