package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"clutchjobs/config"
	"clutchjobs/database"
	"clutchjobs/handlers"
	"clutchjobs/middleware"
	"clutchjobs/models"
	"clutchjobs/services"
	"clutchjobs/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	appCfg := config.GetAppConfig()
	dbCfg := appCfg.Database

	db, err := database.Connect(dbCfg.Host, dbCfg.Port, dbCfg.User, dbCfg.Password, dbCfg.DBName, dbCfg.SSLMode)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	// Optional services degrade to nil when unconfigured; handlers answer
	// 503 for the features that need them.
	storage, err := services.NewStorageService(appCfg.Storage)
	if err != nil {
		log.Printf("Object storage unavailable: %v", err)
		storage = nil
	}

	agent, err := services.NewElevenLabsService(appCfg.Agent)
	if err != nil {
		log.Printf("Voice agent unavailable: %v", err)
		agent = nil
	}

	email := services.NewEmailNotificationService(appCfg.Email)
	local := services.NewLocalStore(appCfg.RecordingsDir)

	var audio *services.AudioStoreService
	if agent != nil && storage != nil {
		audio = &services.AudioStoreService{
			Applications: models.NewApplicationModel(db),
			Profiles:     models.NewProfileModel(db),
			Agent:        agent,
			Storage:      storage,
			Email:        email,
			AudioPrefix:  appCfg.Storage.AudioPrefix,
		}
	}

	r := gin.Default()
	r.Use(middleware.CORS(middleware.CORSConfigFromEnv()))
	r.Use(middleware.MaxRequestSize(100 << 20))
	r.Use(middleware.SanitizeInput())

	limiters := middleware.CreateRateLimiters()
	caches := middleware.CreateCaches()

	pageSize := appCfg.PageSize

	// Public job browsing
	r.GET("/api/jobs", caches["listings"].Cache(), handlers.SearchJobs(db, pageSize))
	r.GET("/api/jobs/locations", caches["listings"].Cache(), handlers.GetJobLocations(db, pageSize))
	r.GET("/api/jobs/:id", handlers.GetJob(db, pageSize))
	r.GET("/api/companies", caches["listings"].Cache(), handlers.ListCompanies(db))
	r.GET("/api/blogs", caches["listings"].Cache(), handlers.ListBlogs(db))
	r.GET("/api/blogs/:slug", caches["listings"].Cache(), handlers.GetBlogBySlug(db))

	// Employer intake and support chat are public
	r.POST("/api/job-postings", limiters["general"].Limit(), handlers.CreateJobPosting(db, pageSize, email))
	r.POST("/api/support", limiters["general"].Limit(), handlers.SendSupportMessage(db, email))

	// Auth
	auth := r.Group("/api/auth")
	auth.Use(limiters["auth"].Limit())
	{
		auth.POST("/register", handlers.RegisterUser(db))
		auth.POST("/login", handlers.LoginUser(db))
		auth.POST("/google", handlers.GoogleLogin(db))
		auth.POST("/logout", handlers.LogoutUser())
	}

	// Authenticated routes
	api := r.Group("/api")
	api.Use(handlers.AuthMiddleware())
	{
		api.GET("/profile", handlers.GetProfile(db))
		api.PUT("/profile", handlers.UpdateProfile(db))
		api.PUT("/profile/password", handlers.ChangePassword(db))

		api.GET("/jobs/:id/interview", limiters["interview"].Limit(), handlers.StartInterviewSession(db, agent, pageSize))

		api.POST("/applications", handlers.SubmitApplication(db, storage, local, audio, email,
			appCfg.Storage.VideoPrefix, appCfg.Storage.AudioPrefix, pageSize))
		api.GET("/applications", handlers.ListApplications(db))
		api.GET("/applications/check", handlers.CheckApplication(db))
		api.DELETE("/applications/:id", handlers.DeleteApplication(db))
		api.GET("/applications/:id/transcript", handlers.ExportTranscript(db, pageSize))

		api.POST("/audio/store", limiters["interview"].Limit(), handlers.StoreConversationAudio(audio))

		// Employer-only management
		employer := api.Group("")
		employer.Use(handlers.EmployerOnly())
		{
			employer.GET("/company/jobs", handlers.ListCompanyJobs(db, pageSize))
			employer.POST("/jobs", handlers.CreateJob(db, pageSize))
			employer.PUT("/jobs/:id", handlers.UpdateJob(db, pageSize))
			employer.DELETE("/jobs/:id", handlers.DeactivateJob(db, pageSize))
			employer.GET("/board", handlers.GetApplicationBoard(db))
			employer.PUT("/applications/:id/status", handlers.UpdateApplicationStatus(db))
		}
	}

	utils.LogInfo("Server starting", map[string]interface{}{"port": appCfg.Port})
	if err := r.Run(":" + appCfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
