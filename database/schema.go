package database

import (
	"database/sql"
	"fmt"
)

// Migrate creates the application tables and indexes if they do not exist yet.
func Migrate(db *sql.DB) error {
	schema := `
	-- Profiles table (one row per authenticated identity, candidates and employers)
	CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		full_name VARCHAR(255),
		account_type VARCHAR(20) NOT NULL DEFAULT 'candidates',
		auth_provider VARCHAR(50) NOT NULL DEFAULT 'email',
		avatar_url TEXT,
		company_name VARCHAR(255),
		website VARCHAR(255),
		industry VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Job postings table
	CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		company_id UUID REFERENCES profiles(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		type VARCHAR(50) NOT NULL,
		location VARCHAR(255) NOT NULL,
		work_schedule VARCHAR(50),
		experience_level VARCHAR(50),
		salary_min INTEGER,
		salary_max INTEGER,
		salary_currency VARCHAR(10) DEFAULT 'CAD',
		salary_period VARCHAR(20) DEFAULT 'Year',
		overview TEXT NOT NULL,
		requirements TEXT[] NOT NULL DEFAULT '{}',
		responsibilities TEXT[] NOT NULL DEFAULT '{}',
		benefits TEXT[] NOT NULL DEFAULT '{}',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Candidate applications table
	CREATE TABLE IF NOT EXISTS applications (
		id UUID PRIMARY KEY,
		job_id UUID REFERENCES jobs(id) ON DELETE CASCADE,
		candidate_id UUID REFERENCES profiles(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'Applied',
		video_url TEXT,
		video_completed BOOLEAN NOT NULL DEFAULT FALSE,
		video_completed_at TIMESTAMP,
		conversation_id VARCHAR(255),
		transcript TEXT,
		audio_url TEXT,
		metadata JSONB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Blog posts table
	CREATE TABLE IF NOT EXISTS blogs (
		id UUID PRIMARY KEY,
		slug VARCHAR(255) UNIQUE NOT NULL,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		excerpt TEXT,
		author VARCHAR(255),
		category VARCHAR(100),
		image_url TEXT,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Support chat messages table
	CREATE TABLE IF NOT EXISTS support_messages (
		id UUID PRIMARY KEY,
		profile_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
		email VARCHAR(255),
		message TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("error creating tables: %v", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email)",
		"CREATE INDEX IF NOT EXISTS idx_profiles_account_type ON profiles(account_type)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_company_id ON jobs(company_id)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_active_created ON jobs(active, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_location ON jobs(location)",
		"CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_candidate_id ON applications(candidate_id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_job_candidate ON applications(job_id, candidate_id)",
		"CREATE INDEX IF NOT EXISTS idx_blogs_published_created ON blogs(published, created_at DESC)",
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("error creating index: %v", err)
		}
	}

	return nil
}
