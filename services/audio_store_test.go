package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"clutchjobs/interview"
	"clutchjobs/models"
)

type stubAppStore struct {
	app       *models.Application
	getErr    error
	audioURLs map[string]string
}

func (s *stubAppStore) GetByID(id string) (*models.Application, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.app, nil
}

func (s *stubAppStore) UpdateAudio(id, audioURL string) error {
	if s.audioURLs == nil {
		s.audioURLs = map[string]string{}
	}
	s.audioURLs[id] = audioURL
	return nil
}

type stubFetcher struct {
	audio    []byte
	failures int
	calls    int
}

func (f *stubFetcher) ConversationAudio(ctx context.Context, conversationID string, timeRange *interview.TimeRange) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient provider error")
	}
	return f.audio, nil
}

type stubUploader struct {
	paths []string
	err   error
}

func (u *stubUploader) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.paths = append(u.paths, path)
	return "https://cdn.example.com/" + path, nil
}

func testApplication() *models.Application {
	return &models.Application{
		ID:             "app-1",
		CandidateID:    "cand-1",
		ConversationID: "conv-1",
		JobTitle:       "Backend Engineer",
	}
}

func TestStoreConversationAudio(t *testing.T) {
	store := &stubAppStore{app: testApplication()}
	uploader := &stubUploader{}
	svc := &AudioStoreService{
		Applications: store,
		Agent:        &stubFetcher{audio: []byte("mp3")},
		Storage:      uploader,
		AudioPrefix:  "interview-audio",
	}

	url, err := svc.StoreConversationAudio(context.Background(), "app-1", nil)
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/interview-audio/conversation_conv-1.mp3", url)
	assert.Equal(t, url, store.audioURLs["app-1"])
	assert.Equal(t, []string{"interview-audio/conversation_conv-1.mp3"}, uploader.paths)
}

func TestStoreConversationAudio_RetriesTransientFailures(t *testing.T) {
	fetcher := &stubFetcher{audio: []byte("mp3"), failures: 2}
	svc := &AudioStoreService{
		Applications: &stubAppStore{app: testApplication()},
		Agent:        fetcher,
		Storage:      &stubUploader{},
	}

	_, err := svc.StoreConversationAudio(context.Background(), "app-1", nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, fetcher.calls)
}

func TestStoreConversationAudio_GivesUpAfterThreeAttempts(t *testing.T) {
	fetcher := &stubFetcher{audio: []byte("mp3"), failures: 3}
	svc := &AudioStoreService{
		Applications: &stubAppStore{app: testApplication()},
		Agent:        fetcher,
		Storage:      &stubUploader{},
	}

	_, err := svc.StoreConversationAudio(context.Background(), "app-1", nil)
	assert.Error(t, err)
	assert.Equal(t, 3, fetcher.calls)
}

func TestStoreConversationAudio_NoConversation(t *testing.T) {
	app := testApplication()
	app.ConversationID = ""
	svc := &AudioStoreService{
		Applications: &stubAppStore{app: app},
		Agent:        &stubFetcher{audio: []byte("mp3")},
		Storage:      &stubUploader{},
	}

	_, err := svc.StoreConversationAudio(context.Background(), "app-1", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no associated conversation")
}

func TestStoreConversationAudio_EmptyAudio(t *testing.T) {
	svc := &AudioStoreService{
		Applications: &stubAppStore{app: testApplication()},
		Agent:        &stubFetcher{audio: []byte{}},
		Storage:      &stubUploader{},
	}

	_, err := svc.StoreConversationAudio(context.Background(), "app-1", nil)
	assert.Error(t, err)
}

func TestStoreConversationAudio_ApplicationMissing(t *testing.T) {
	svc := &AudioStoreService{
		Applications: &stubAppStore{getErr: errors.New("not found")},
		Agent:        &stubFetcher{audio: []byte("mp3")},
		Storage:      &stubUploader{},
	}

	_, err := svc.StoreConversationAudio(context.Background(), "app-1", nil)
	assert.Error(t, err)
}

func TestTrigger_DelegatesWithTimeRange(t *testing.T) {
	store := &stubAppStore{app: testApplication()}
	svc := &AudioStoreService{
		Applications: store,
		Agent:        &stubFetcher{audio: []byte("mp3")},
		Storage:      &stubUploader{},
	}

	err := svc.Trigger(context.Background(), "app-1", interview.TimeRange{})
	assert.NoError(t, err)
	assert.NotEmpty(t, store.audioURLs["app-1"])
}

func TestGenerateTempPassword(t *testing.T) {
	first := GenerateTempPassword()
	second := GenerateTempPassword()
	assert.Len(t, first, 12)
	assert.NotEqual(t, first, second)
}
