package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeUploader struct {
	err     error
	uploads map[string][]byte
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: map[string][]byte{}}
}

func (u *fakeUploader) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.uploads[path] = data
	return "https://cdn.example.com/" + path, nil
}

type fakeSaver struct {
	err   error
	saved map[string][]byte
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{saved: map[string][]byte{}}
}

func (s *fakeSaver) Save(filename string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved[filename] = data
	return "recordings/" + filename, nil
}

type fakeAppStore struct {
	exists    bool
	existsErr error
	createErr error
	records   []ApplicationRecord
}

func (s *fakeAppStore) Exists(candidateID, jobID string) (bool, error) {
	return s.exists, s.existsErr
}

func (s *fakeAppStore) Create(ctx context.Context, record ApplicationRecord) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.records = append(s.records, record)
	return fmt.Sprintf("app-%d", len(s.records)), nil
}

type fakeAudioTrigger struct {
	fired chan TimeRange
	err   error
}

func newFakeAudioTrigger() *fakeAudioTrigger {
	return &fakeAudioTrigger{fired: make(chan TimeRange, 1)}
}

func (t *fakeAudioTrigger) Trigger(ctx context.Context, applicationID string, timeRange TimeRange) error {
	t.fired <- timeRange
	return t.err
}

func chunksOf(data string) *ChunkBuffer {
	buf := NewChunkBuffer()
	buf.Append([]byte(data))
	return buf
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
}

func newTestFinalizer(store *fakeAppStore) (*Finalizer, *fakeUploader, *fakeSaver, *[]SubmissionState) {
	uploader := newFakeUploader()
	saver := newFakeSaver()
	states := &[]SubmissionState{}
	f := &Finalizer{
		Uploader:    uploader,
		LocalSaver:  saver,
		Store:       store,
		VideoPrefix: "interviews",
		AudioPrefix: "interview-audio",
		Now:         fixedNow,
		OnState:     func(s SubmissionState) { *states = append(*states, s) },
	}
	return f, uploader, saver, states
}

func TestFinalize_FullSubmission(t *testing.T) {
	store := &fakeAppStore{}
	f, uploader, saver, states := newTestFinalizer(store)
	trigger := newFakeAudioTrigger()
	f.Audio = trigger

	result, err := f.Finalize(context.Background(), Submission{
		JobID:          "job-1",
		CandidateID:    "cand-1",
		VideoChunks:    chunksOf("videobytes"),
		AudioChunks:    chunksOf("audiobytes"),
		TranscriptLog:  FormatLine("ai", "Q1"),
		ConversationID: "conv-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "app-1", result.ApplicationID)
	assert.Equal(t, StateDone, result.State)

	expectedPath := fmt.Sprintf("interviews/interview_cand-1_%d.webm", fixedNow().UnixMilli())
	assert.Equal(t, "https://cdn.example.com/"+expectedPath, result.VideoRef)
	assert.Equal(t, []byte("videobytes"), uploader.uploads[expectedPath])

	// Local backup happens regardless of upload success.
	assert.Len(t, saver.saved, 1)

	assert.Len(t, store.records, 1)
	record := store.records[0]
	assert.True(t, record.VideoCompleted)
	assert.Equal(t, "conv-1", record.ConversationID)
	assert.NotEmpty(t, record.Metadata["audio_url"])

	select {
	case timeRange := <-trigger.fired:
		assert.Equal(t, fixedNow().Add(-time.Hour), timeRange.From)
		assert.Equal(t, fixedNow(), timeRange.To)
	case <-time.After(time.Second):
		t.Fatal("audio retrieval was not triggered")
	}

	assert.Equal(t, []SubmissionState{
		StateFinalizing, StateUploading, StateUploaded,
		StateApplicationCreated, StateAudioFetchTriggered, StateDone,
	}, *states)
}

func TestFinalize_DuplicateApplication(t *testing.T) {
	store := &fakeAppStore{exists: true}
	f, _, _, _ := newTestFinalizer(store)

	result, err := f.Finalize(context.Background(), Submission{JobID: "job-1", CandidateID: "cand-1"})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, StateError, result.State)
	assert.Empty(t, store.records)
}

func TestFinalize_ExistsCheckFailure(t *testing.T) {
	store := &fakeAppStore{existsErr: errors.New("db down")}
	f, _, _, _ := newTestFinalizer(store)

	result, err := f.Finalize(context.Background(), Submission{JobID: "job-1", CandidateID: "cand-1"})
	assert.Error(t, err)
	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, StateError, result.State)
}

func TestFinalize_UploadFailureWithLocalBackup(t *testing.T) {
	store := &fakeAppStore{}
	f, uploader, saver, states := newTestFinalizer(store)
	uploader.err = errors.New("s3 unreachable")

	result, err := f.Finalize(context.Background(), Submission{
		JobID:       "job-1",
		CandidateID: "cand-1",
		VideoChunks: chunksOf("videobytes"),
	})

	// Upload failure degrades, it does not fail the submission.
	assert.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, SentinelSavedLocally, result.VideoRef)
	assert.Len(t, saver.saved, 1)
	assert.NotEmpty(t, result.Notices)

	assert.Len(t, store.records, 1)
	assert.Equal(t, SentinelSavedLocally, store.records[0].VideoRef)
	assert.True(t, store.records[0].VideoCompleted)

	assert.Contains(t, *states, StateUploadFailed)
	assert.NotContains(t, *states, StateUploaded)
}

func TestFinalize_UploadFailureWithoutBackup(t *testing.T) {
	store := &fakeAppStore{}
	f, uploader, saver, _ := newTestFinalizer(store)
	uploader.err = errors.New("s3 unreachable")
	saver.err = errors.New("disk full")

	result, err := f.Finalize(context.Background(), Submission{
		JobID:       "job-1",
		CandidateID: "cand-1",
		VideoChunks: chunksOf("videobytes"),
	})

	assert.NoError(t, err)
	assert.Equal(t, SentinelUploadFailed, result.VideoRef)
	assert.Len(t, store.records, 1)
	assert.Equal(t, SentinelUploadFailed, store.records[0].VideoRef)
}

func TestFinalize_NoUploaderConfigured(t *testing.T) {
	store := &fakeAppStore{}
	f, _, saver, _ := newTestFinalizer(store)
	f.Uploader = nil

	result, err := f.Finalize(context.Background(), Submission{
		JobID:       "job-1",
		CandidateID: "cand-1",
		VideoChunks: chunksOf("videobytes"),
	})

	assert.NoError(t, err)
	assert.Equal(t, SentinelSavedLocally, result.VideoRef)
	assert.Len(t, saver.saved, 1)
	assert.Len(t, store.records, 1)
}

func TestFinalize_NoVideo(t *testing.T) {
	store := &fakeAppStore{}
	f, uploader, _, states := newTestFinalizer(store)

	result, err := f.Finalize(context.Background(), Submission{
		JobID:       "job-1",
		CandidateID: "cand-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, SentinelNoVideo, result.VideoRef)
	assert.Empty(t, uploader.uploads)
	assert.Len(t, store.records, 1)
	assert.False(t, store.records[0].VideoCompleted)

	// No conversation means the audio fetch is skipped, not triggered.
	assert.Contains(t, *states, StateSkipped)
	assert.NotContains(t, *states, StateAudioFetchTriggered)
	assert.NotContains(t, *states, StateUploading)
}

func TestFinalize_AudioArtifactFailureIsNonFatal(t *testing.T) {
	store := &fakeAppStore{}
	f, uploader, _, _ := newTestFinalizer(store)

	// Fail only the audio artifact by letting video pass first, then
	// breaking the uploader.
	calls := 0
	f.Uploader = uploadFunc(func(ctx context.Context, path, contentType string, data []byte) (string, error) {
		calls++
		if strings.HasPrefix(path, "interview-audio/") {
			return "", errors.New("audio rejected")
		}
		return uploader.Upload(ctx, path, contentType, data)
	})

	result, err := f.Finalize(context.Background(), Submission{
		JobID:       "job-1",
		CandidateID: "cand-1",
		VideoChunks: chunksOf("videobytes"),
		AudioChunks: chunksOf("audiobytes"),
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, StateDone, result.State)
	assert.Empty(t, result.AudioRef)
	assert.Len(t, store.records, 1)
	assert.Nil(t, store.records[0].Metadata["audio_url"])
}

type uploadFunc func(ctx context.Context, path, contentType string, data []byte) (string, error)

func (f uploadFunc) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	return f(ctx, path, contentType, data)
}

func TestFinalize_StoreCreateFailure(t *testing.T) {
	store := &fakeAppStore{createErr: errors.New("insert failed")}
	f, _, _, states := newTestFinalizer(store)

	result, err := f.Finalize(context.Background(), Submission{
		JobID:       "job-1",
		CandidateID: "cand-1",
		VideoChunks: chunksOf("videobytes"),
	})

	assert.Error(t, err)
	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, StateError, result.State)
	assert.Empty(t, result.ApplicationID)
	// The video had already been stored before the record failed.
	assert.Contains(t, *states, StateUploaded)
}

func TestSkip_CreatesApplicationWithoutMedia(t *testing.T) {
	store := &fakeAppStore{}
	f, _, _, _ := newTestFinalizer(store)

	result, err := f.Skip(context.Background(), "cand-1", "job-1")
	assert.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, SentinelNoVideo, result.VideoRef)
	assert.Len(t, store.records, 1)
	assert.False(t, store.records[0].VideoCompleted)
}

func TestLastHour(t *testing.T) {
	now := fixedNow()
	timeRange := LastHour(now)
	assert.Equal(t, now, timeRange.To)
	assert.Equal(t, time.Hour, timeRange.To.Sub(timeRange.From))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassPermission, Classify(fmt.Errorf("wrap: %w", ErrPermissionDenied)))
	assert.Equal(t, ClassDevice, Classify(ErrDeviceUnavailable))
	assert.Equal(t, ClassSession, Classify(ErrSessionUnavailable))
	assert.Equal(t, ClassUpload, Classify(&UploadError{Err: errors.New("x")}))
	assert.Equal(t, ClassStore, Classify(&StoreError{Err: errors.New("x")}))

	assert.True(t, Retriable(ClassPermission))
	assert.True(t, Retriable(ClassDevice))
	assert.True(t, Retriable(ClassStore))
	assert.False(t, Retriable(ClassUpload))
}
