package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Job struct {
	ID               string    `json:"id"`
	CompanyID        string    `json:"company_id"`
	Title            string    `json:"title"`
	Type             string    `json:"type"`
	Location         string    `json:"location"`
	WorkSchedule     string    `json:"work_schedule,omitempty"`
	ExperienceLevel  string    `json:"experience_level,omitempty"`
	SalaryMin        int       `json:"salary_min,omitempty"`
	SalaryMax        int       `json:"salary_max,omitempty"`
	SalaryCurrency   string    `json:"salary_currency"`
	SalaryPeriod     string    `json:"salary_period"`
	Overview         string    `json:"overview"`
	Requirements     []string  `json:"requirements"`
	Responsibilities []string  `json:"responsibilities"`
	Benefits         []string  `json:"benefits"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Joined employer fields, populated on reads
	CompanyName   string `json:"company_name,omitempty"`
	CompanySite   string `json:"company_website,omitempty"`
	CompanyField  string `json:"company_industry,omitempty"`
	CompanyAvatar string `json:"company_avatar_url,omitempty"`
}

// JobFilters mirrors the search facets exposed by the jobs listing.
type JobFilters struct {
	Types            []string
	ExperienceLevels []string
	WorkSchedules    []string
	Location         string
}

type JobModel struct {
	DB       *sql.DB
	PageSize int
}

func NewJobModel(db *sql.DB, pageSize int) *JobModel {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &JobModel{DB: db, PageSize: pageSize}
}

// NormalizeQuery folds accents and trims a free-text search query so that
// "Développeur" and "developpeur" match the same rows.
func NormalizeQuery(q string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, q)
	if err != nil {
		folded = q
	}
	return strings.TrimSpace(folded)
}

const jobSelectColumns = `
	j.id, j.company_id, j.title, j.type, j.location,
	COALESCE(j.work_schedule, ''), COALESCE(j.experience_level, ''),
	COALESCE(j.salary_min, 0), COALESCE(j.salary_max, 0),
	j.salary_currency, j.salary_period, j.overview,
	j.requirements, j.responsibilities, j.benefits,
	j.active, j.created_at, j.updated_at,
	COALESCE(p.company_name, ''), COALESCE(p.website, ''), COALESCE(p.industry, ''), COALESCE(p.avatar_url, '')`

// BuildSearchQuery translates a text query plus facet filters into SQL.
// Only active jobs are ever visible to search.
func BuildSearchQuery(searchQuery string, filters JobFilters, page, pageSize int) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(jobSelectColumns)
	sb.WriteString(`
	FROM jobs j
	LEFT JOIN profiles p ON p.id = j.company_id
	WHERE j.active = TRUE`)

	args := []interface{}{}
	n := 1

	if q := NormalizeQuery(searchQuery); q != "" {
		sb.WriteString(fmt.Sprintf(" AND (j.title ILIKE $%d OR j.overview ILIKE $%d)", n, n))
		args = append(args, "%"+q+"%")
		n++
	}
	if len(filters.Types) > 0 {
		sb.WriteString(fmt.Sprintf(" AND j.type = ANY($%d)", n))
		args = append(args, pq.Array(filters.Types))
		n++
	}
	if len(filters.ExperienceLevels) > 0 {
		sb.WriteString(fmt.Sprintf(" AND j.experience_level = ANY($%d)", n))
		args = append(args, pq.Array(filters.ExperienceLevels))
		n++
	}
	if len(filters.WorkSchedules) > 0 {
		sb.WriteString(fmt.Sprintf(" AND j.work_schedule = ANY($%d)", n))
		args = append(args, pq.Array(filters.WorkSchedules))
		n++
	}
	if filters.Location != "" && filters.Location != "all" {
		sb.WriteString(fmt.Sprintf(" AND j.location = $%d", n))
		args = append(args, filters.Location)
		n++
	}

	if page < 1 {
		page = 1
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY j.created_at DESC LIMIT $%d OFFSET $%d", n, n+1))
	args = append(args, pageSize, (page-1)*pageSize)

	return sb.String(), args
}

func scanJob(scanner interface{ Scan(...interface{}) error }) (*Job, error) {
	job := &Job{}
	err := scanner.Scan(
		&job.ID, &job.CompanyID, &job.Title, &job.Type, &job.Location,
		&job.WorkSchedule, &job.ExperienceLevel,
		&job.SalaryMin, &job.SalaryMax,
		&job.SalaryCurrency, &job.SalaryPeriod, &job.Overview,
		pq.Array(&job.Requirements), pq.Array(&job.Responsibilities), pq.Array(&job.Benefits),
		&job.Active, &job.CreatedAt, &job.UpdatedAt,
		&job.CompanyName, &job.CompanySite, &job.CompanyField, &job.CompanyAvatar,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Search returns one page of matching active jobs plus a hasMore flag for
// infinite-scroll clients. A full page means there may be more.
func (m *JobModel) Search(searchQuery string, filters JobFilters, page int) ([]Job, bool, error) {
	query, args := BuildSearchQuery(searchQuery, filters, page, m.PageSize)
	rows, err := m.DB.Query(query, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, false, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return jobs, len(jobs) == m.PageSize, nil
}

func (m *JobModel) GetByID(id string) (*Job, error) {
	query := "SELECT " + jobSelectColumns + `
	FROM jobs j
	LEFT JOIN profiles p ON p.id = j.company_id
	WHERE j.id = $1 AND j.active = TRUE`
	return scanJob(m.DB.QueryRow(query, id))
}

// Locations returns the distinct locations of active jobs, sorted.
func (m *JobModel) Locations() ([]string, error) {
	rows, err := m.DB.Query("SELECT DISTINCT location FROM jobs WHERE active = TRUE ORDER BY location")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []string{}
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (m *JobModel) ListByCompany(companyID string) ([]Job, error) {
	query := "SELECT " + jobSelectColumns + `
	FROM jobs j
	LEFT JOIN profiles p ON p.id = j.company_id
	WHERE j.company_id = $1
	ORDER BY j.created_at DESC`
	rows, err := m.DB.Query(query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (m *JobModel) Create(job *Job) (*Job, error) {
	query := `
		INSERT INTO jobs (id, company_id, title, type, location, work_schedule, experience_level,
			salary_min, salary_max, salary_currency, salary_period, overview,
			requirements, responsibilities, benefits, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, 0), NULLIF($9, 0), $10, $11, $12, $13, $14, $15, TRUE, $16, $16)
		RETURNING id, created_at, updated_at
	`
	if job.SalaryCurrency == "" {
		job.SalaryCurrency = "CAD"
	}
	if job.SalaryPeriod == "" {
		job.SalaryPeriod = "Year"
	}
	id := uuid.NewString()
	err := m.DB.QueryRow(query, id, job.CompanyID, job.Title, job.Type, job.Location,
		job.WorkSchedule, job.ExperienceLevel, job.SalaryMin, job.SalaryMax,
		job.SalaryCurrency, job.SalaryPeriod, job.Overview,
		pq.Array(job.Requirements), pq.Array(job.Responsibilities), pq.Array(job.Benefits),
		time.Now()).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	job.Active = true
	return job, nil
}

func (m *JobModel) Update(job *Job) error {
	query := `
		UPDATE jobs SET title = $1, type = $2, location = $3, work_schedule = NULLIF($4, ''),
			experience_level = NULLIF($5, ''), salary_min = NULLIF($6, 0), salary_max = NULLIF($7, 0),
			salary_currency = $8, salary_period = $9, overview = $10,
			requirements = $11, responsibilities = $12, benefits = $13, updated_at = $14
		WHERE id = $15 AND company_id = $16
	`
	result, err := m.DB.Exec(query, job.Title, job.Type, job.Location, job.WorkSchedule,
		job.ExperienceLevel, job.SalaryMin, job.SalaryMax, job.SalaryCurrency, job.SalaryPeriod,
		job.Overview, pq.Array(job.Requirements), pq.Array(job.Responsibilities), pq.Array(job.Benefits),
		time.Now(), job.ID, job.CompanyID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a posting. The row stays for existing applications;
// the active flag gates all candidate-facing reads.
func (m *JobModel) Deactivate(id, companyID string) error {
	result, err := m.DB.Exec("UPDATE jobs SET active = FALSE, updated_at = $1 WHERE id = $2 AND company_id = $3",
		time.Now(), id, companyID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
