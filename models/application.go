package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	StatusApplied   = "Applied"
	StatusQualified = "Qualified"
	StatusInterview = "Interview"
	StatusRejected  = "Rejected"
)

// ApplicationStatuses is the fixed set of review columns, in board order.
var ApplicationStatuses = []string{StatusApplied, StatusQualified, StatusInterview, StatusRejected}

func ValidStatus(status string) bool {
	for _, s := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Application struct {
	ID               string                 `json:"id"`
	JobID            string                 `json:"job_id"`
	CandidateID      string                 `json:"candidate_id"`
	Status           string                 `json:"status"`
	VideoURL         string                 `json:"video_url,omitempty"`
	VideoCompleted   bool                   `json:"video_completed"`
	VideoCompletedAt *time.Time             `json:"video_completed_at,omitempty"`
	ConversationID   string                 `json:"conversation_id,omitempty"`
	Transcript       string                 `json:"transcript,omitempty"`
	AudioURL         string                 `json:"audio_url,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`

	// Joined fields, populated on reads
	JobTitle      string `json:"job_title,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	CandidateName string `json:"candidate_name,omitempty"`
	CandidateIcon string `json:"candidate_avatar_url,omitempty"`
}

type ApplicationModel struct {
	DB *sql.DB
}

func NewApplicationModel(db *sql.DB) *ApplicationModel {
	return &ApplicationModel{DB: db}
}

func (m *ApplicationModel) Create(app *Application) (*Application, error) {
	if app.Status == "" {
		app.Status = StatusApplied
	}
	var metadata []byte
	if len(app.Metadata) > 0 {
		metadata, _ = json.Marshal(app.Metadata)
	}
	var completedAt interface{}
	if app.VideoCompleted {
		now := time.Now()
		app.VideoCompletedAt = &now
		completedAt = now
	}
	query := `
		INSERT INTO applications (id, job_id, candidate_id, status, video_url, video_completed,
			video_completed_at, conversation_id, transcript, audio_url, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, $12, $12)
		RETURNING id, created_at, updated_at
	`
	err := m.DB.QueryRow(query, uuid.NewString(), app.JobID, app.CandidateID, app.Status,
		app.VideoURL, app.VideoCompleted, completedAt, app.ConversationID,
		app.Transcript, app.AudioURL, metadata, time.Now()).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Exists is the duplicate-application pre-check. It is a plain read with no
// transactional guarantee against a concurrent insert; two clients racing can
// still both pass it.
func (m *ApplicationModel) Exists(candidateID, jobID string) (bool, error) {
	var exists bool
	err := m.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM applications WHERE candidate_id = $1 AND job_id = $2)",
		candidateID, jobID).Scan(&exists)
	return exists, err
}

func (m *ApplicationModel) GetByID(id string) (*Application, error) {
	query := `
		SELECT a.id, a.job_id, a.candidate_id, a.status,
			COALESCE(a.video_url, ''), a.video_completed, a.video_completed_at,
			COALESCE(a.conversation_id, ''), COALESCE(a.transcript, ''), COALESCE(a.audio_url, ''),
			COALESCE(a.metadata, 'null'), a.created_at, a.updated_at,
			COALESCE(j.title, ''), COALESCE(p.company_name, '')
		FROM applications a
		LEFT JOIN jobs j ON j.id = a.job_id
		LEFT JOIN profiles p ON p.id = j.company_id
		WHERE a.id = $1
	`
	return m.scan(m.DB.QueryRow(query, id))
}

func (m *ApplicationModel) scan(scanner interface{ Scan(...interface{}) error }) (*Application, error) {
	app := &Application{}
	var completedAt sql.NullTime
	var metadata []byte
	err := scanner.Scan(
		&app.ID, &app.JobID, &app.CandidateID, &app.Status,
		&app.VideoURL, &app.VideoCompleted, &completedAt,
		&app.ConversationID, &app.Transcript, &app.AudioURL,
		&metadata, &app.CreatedAt, &app.UpdatedAt,
		&app.JobTitle, &app.CompanyName,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		app.VideoCompletedAt = &completedAt.Time
	}
	if len(metadata) > 0 && string(metadata) != "null" {
		json.Unmarshal(metadata, &app.Metadata)
	}
	return app, nil
}

// ListForCandidate returns the candidate's applications, newest first.
func (m *ApplicationModel) ListForCandidate(candidateID string) ([]Application, error) {
	query := `
		SELECT a.id, a.job_id, a.candidate_id, a.status,
			COALESCE(a.video_url, ''), a.video_completed, a.video_completed_at,
			COALESCE(a.conversation_id, ''), COALESCE(a.transcript, ''), COALESCE(a.audio_url, ''),
			COALESCE(a.metadata, 'null'), a.created_at, a.updated_at,
			COALESCE(j.title, ''), COALESCE(p.company_name, '')
		FROM applications a
		LEFT JOIN jobs j ON j.id = a.job_id
		LEFT JOIN profiles p ON p.id = j.company_id
		WHERE a.candidate_id = $1
		ORDER BY a.created_at DESC
	`
	return m.list(query, candidateID)
}

// ListForEmployer returns applications to the employer's job postings,
// with candidate display fields for the review board.
func (m *ApplicationModel) ListForEmployer(companyID string) ([]Application, error) {
	query := `
		SELECT a.id, a.job_id, a.candidate_id, a.status,
			COALESCE(a.video_url, ''), a.video_completed, a.video_completed_at,
			COALESCE(a.conversation_id, ''), COALESCE(a.transcript, ''), COALESCE(a.audio_url, ''),
			COALESCE(a.metadata, 'null'), a.created_at, a.updated_at,
			COALESCE(j.title, ''), COALESCE(c.full_name, ''), COALESCE(c.avatar_url, '')
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		LEFT JOIN profiles c ON c.id = a.candidate_id
		WHERE j.company_id = $1
		ORDER BY a.created_at DESC
	`
	rows, err := m.DB.Query(query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		app := Application{}
		var completedAt sql.NullTime
		var metadata []byte
		err := rows.Scan(
			&app.ID, &app.JobID, &app.CandidateID, &app.Status,
			&app.VideoURL, &app.VideoCompleted, &completedAt,
			&app.ConversationID, &app.Transcript, &app.AudioURL,
			&metadata, &app.CreatedAt, &app.UpdatedAt,
			&app.JobTitle, &app.CandidateName, &app.CandidateIcon,
		)
		if err != nil {
			return nil, err
		}
		if completedAt.Valid {
			app.VideoCompletedAt = &completedAt.Time
		}
		if len(metadata) > 0 && string(metadata) != "null" {
			json.Unmarshal(metadata, &app.Metadata)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (m *ApplicationModel) list(query string, args ...interface{}) ([]Application, error) {
	rows, err := m.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		app, err := m.scan(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

// UpdateStatus changes the review column of a single application.
func (m *ApplicationModel) UpdateStatus(id, status string) error {
	result, err := m.DB.Exec("UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now(), id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateAudio records the durable conversation-audio artifact after the
// asynchronous retrieval job finishes.
func (m *ApplicationModel) UpdateAudio(id, audioURL string) error {
	_, err := m.DB.Exec("UPDATE applications SET audio_url = $1, updated_at = $2 WHERE id = $3",
		audioURL, time.Now(), id)
	return err
}

func (m *ApplicationModel) Delete(id, candidateID string) error {
	result, err := m.DB.Exec("DELETE FROM applications WHERE id = $1 AND candidate_id = $2", id, candidateID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
