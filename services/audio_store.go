package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"clutchjobs/interview"
	"clutchjobs/models"
)

const audioFetchAttempts = 3

type conversationAudioFetcher interface {
	ConversationAudio(ctx context.Context, conversationID string, timeRange *interview.TimeRange) ([]byte, error)
}

type artifactUploader interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

type applicationAudioStore interface {
	GetByID(id string) (*models.Application, error)
	UpdateAudio(id, audioURL string) error
}

type audioNotifier interface {
	SendInterviewAudioStored(toEmail, candidateName, jobTitle string) error
}

// AudioStoreService fetches the finished conversation audio from the voice
// agent and stores it durably next to the application. It runs after the
// application record already exists; its failures are logged and must never
// affect the created application.
type AudioStoreService struct {
	Applications applicationAudioStore
	Profiles     *models.ProfileModel
	Agent        conversationAudioFetcher
	Storage      artifactUploader
	Email        audioNotifier
	AudioPrefix  string
}

// Trigger satisfies the finalization pipeline's audio-retrieval hook.
func (s *AudioStoreService) Trigger(ctx context.Context, applicationID string, timeRange interview.TimeRange) error {
	_, err := s.StoreConversationAudio(ctx, applicationID, &timeRange)
	return err
}

// StoreConversationAudio retrieves the conversation audio for an application
// and uploads it to object storage, updating the application's audio_url.
// The fetch is retried a bounded number of times with linear backoff.
func (s *AudioStoreService) StoreConversationAudio(ctx context.Context, applicationID string, timeRange *interview.TimeRange) (string, error) {
	app, err := s.Applications.GetByID(applicationID)
	if err != nil {
		return "", fmt.Errorf("application not found: %v", err)
	}
	if app.ConversationID == "" {
		return "", fmt.Errorf("application has no associated conversation")
	}

	log.Printf("Retrieving conversation audio for application %s (conversation %s)", applicationID, app.ConversationID)

	var audio []byte
	for attempt := 1; attempt <= audioFetchAttempts; attempt++ {
		audio, err = s.Agent.ConversationAudio(ctx, app.ConversationID, timeRange)
		if err == nil {
			break
		}
		log.Printf("Conversation audio fetch attempt %d/%d failed: %v", attempt, audioFetchAttempts, err)
		if attempt < audioFetchAttempts {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to retrieve conversation audio: %v", err)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("conversation audio is empty")
	}

	prefix := s.AudioPrefix
	if prefix == "" {
		prefix = "interview-audio"
	}
	path := fmt.Sprintf("%s/conversation_%s.mp3", prefix, app.ConversationID)
	url, err := s.Storage.Upload(ctx, path, "audio/mpeg", audio)
	if err != nil {
		return "", fmt.Errorf("failed to store conversation audio: %v", err)
	}

	if err := s.Applications.UpdateAudio(applicationID, url); err != nil {
		return "", fmt.Errorf("failed to update application audio reference: %v", err)
	}

	s.notifyCandidate(app)

	log.Printf("Conversation audio stored for application %s: %s", applicationID, url)
	return url, nil
}

func (s *AudioStoreService) notifyCandidate(app *models.Application) {
	if s.Email == nil || s.Profiles == nil {
		return
	}
	profile, err := s.Profiles.GetByID(app.CandidateID)
	if err != nil {
		log.Printf("Could not load candidate profile for audio notification: %v", err)
		return
	}
	if err := s.Email.SendInterviewAudioStored(profile.Email, profile.FullName, app.JobTitle); err != nil {
		log.Printf("Could not send audio notification email: %v", err)
	}
}
