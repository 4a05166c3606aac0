package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	AccountTypeCandidate = "candidates"
	AccountTypeEmployer  = "employer"
)

type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Password     string    `json:"-"` // Don't include password in JSON
	AccountType  string    `json:"account_type"`
	AuthProvider string    `json:"auth_provider"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CompanyName  string    `json:"company_name,omitempty"`
	Website      string    `json:"website,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProfileModel struct {
	DB *sql.DB
}

func NewProfileModel(db *sql.DB) *ProfileModel {
	return &ProfileModel{DB: db}
}

func (m *ProfileModel) Create(email, fullName, password, accountType string) (*Profile, error) {
	return m.CreateWithCompany(email, fullName, password, accountType, "email", "", "", "")
}

func (m *ProfileModel) CreateWithCompany(email, fullName, password, accountType, authProvider, companyName, website, industry string) (*Profile, error) {
	profile := &Profile{}
	query := `
		INSERT INTO profiles (id, email, full_name, password, account_type, auth_provider, company_name, website, industry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, email, full_name, account_type, auth_provider,
			COALESCE(avatar_url, ''), COALESCE(company_name, ''), COALESCE(website, ''), COALESCE(industry, ''),
			created_at, updated_at
	`
	err := m.DB.QueryRow(query, uuid.NewString(), email, fullName, password, accountType, authProvider, companyName, website, industry, time.Now()).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.AccountType, &profile.AuthProvider,
		&profile.AvatarURL, &profile.CompanyName, &profile.Website, &profile.Industry,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (m *ProfileModel) GetByEmail(email string) (*Profile, error) {
	profile := &Profile{}
	query := `
		SELECT id, email, full_name, password, account_type, auth_provider,
			COALESCE(avatar_url, ''), COALESCE(company_name, ''), COALESCE(website, ''), COALESCE(industry, ''),
			created_at, updated_at
		FROM profiles WHERE email = $1
	`
	err := m.DB.QueryRow(query, email).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.Password, &profile.AccountType, &profile.AuthProvider,
		&profile.AvatarURL, &profile.CompanyName, &profile.Website, &profile.Industry,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (m *ProfileModel) GetByID(id string) (*Profile, error) {
	profile := &Profile{}
	query := `
		SELECT id, email, full_name, password, account_type, auth_provider,
			COALESCE(avatar_url, ''), COALESCE(company_name, ''), COALESCE(website, ''), COALESCE(industry, ''),
			created_at, updated_at
		FROM profiles WHERE id = $1
	`
	err := m.DB.QueryRow(query, id).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.Password, &profile.AccountType, &profile.AuthProvider,
		&profile.AvatarURL, &profile.CompanyName, &profile.Website, &profile.Industry,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (m *ProfileModel) Update(id, fullName, avatarURL, companyName, website, industry string) error {
	query := `
		UPDATE profiles
		SET full_name = $1, avatar_url = NULLIF($2, ''), company_name = NULLIF($3, ''),
			website = NULLIF($4, ''), industry = NULLIF($5, ''), updated_at = $6
		WHERE id = $7
	`
	_, err := m.DB.Exec(query, fullName, avatarURL, companyName, website, industry, time.Now(), id)
	return err
}

func (m *ProfileModel) UpdatePassword(id, hashedPassword string) error {
	_, err := m.DB.Exec("UPDATE profiles SET password = $1, updated_at = $2 WHERE id = $3", hashedPassword, time.Now(), id)
	return err
}

// Company is an employer profile together with its job posting count.
type Company struct {
	Profile
	JobCount int `json:"job_count"`
}

// ListCompanies returns employer profiles ordered by company name, with job counts.
func (m *ProfileModel) ListCompanies() ([]Company, error) {
	query := `
		SELECT p.id, p.email, p.full_name, p.account_type, p.auth_provider,
			COALESCE(p.avatar_url, ''), COALESCE(p.company_name, ''), COALESCE(p.website, ''), COALESCE(p.industry, ''),
			p.created_at, p.updated_at,
			(SELECT COUNT(*) FROM jobs j WHERE j.company_id = p.id AND j.active = TRUE)
		FROM profiles p
		WHERE p.account_type = $1
		ORDER BY p.company_name ASC
	`
	rows, err := m.DB.Query(query, AccountTypeEmployer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		var c Company
		err := rows.Scan(
			&c.ID, &c.Email, &c.FullName, &c.AccountType, &c.AuthProvider,
			&c.AvatarURL, &c.CompanyName, &c.Website, &c.Industry,
			&c.CreatedAt, &c.UpdatedAt, &c.JobCount,
		)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
