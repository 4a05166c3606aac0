package interview

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Sentinel references stored in place of a real artifact URL.
const (
	SentinelNoVideo      = "no_video"
	SentinelUploadFailed = "upload_failed"
	SentinelSavedLocally = "video_saved_locally"
)

// SubmissionState tracks one submission attempt through finalization.
type SubmissionState string

const (
	StateCapturing           SubmissionState = "capturing"
	StateFinalizing          SubmissionState = "finalizing"
	StateUploading           SubmissionState = "uploading"
	StateUploaded            SubmissionState = "uploaded"
	StateUploadFailed        SubmissionState = "upload_failed"
	StateApplicationCreated  SubmissionState = "application_created"
	StateAudioFetchTriggered SubmissionState = "audio_fetch_triggered"
	StateSkipped             SubmissionState = "skipped"
	StateDone                SubmissionState = "done"
	StateError               SubmissionState = "error"
)

// TimeRange bounds the conversation-audio retrieval window.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// LastHour is the default retrieval window.
func LastHour(now time.Time) TimeRange {
	return TimeRange{From: now.Add(-time.Hour), To: now}
}

// Uploader stores a finalized artifact and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// LocalSaver writes a backup copy of an artifact to local disk so the
// candidate's recording never depends solely on network availability.
type LocalSaver interface {
	Save(filename string, data []byte) (string, error)
}

// ApplicationRecord is the persisted outcome of a submission.
type ApplicationRecord struct {
	JobID          string
	CandidateID    string
	VideoRef       string
	VideoCompleted bool
	ConversationID string
	Transcript     string
	Metadata       map[string]interface{}
}

// ApplicationStore persists application records.
type ApplicationStore interface {
	Exists(candidateID, jobID string) (bool, error)
	Create(ctx context.Context, record ApplicationRecord) (string, error)
}

// AudioTrigger starts the asynchronous job that fetches and durably stores
// the conversation audio for a created application.
type AudioTrigger interface {
	Trigger(ctx context.Context, applicationID string, timeRange TimeRange) error
}

// Submission carries everything accumulated during one interview attempt.
type Submission struct {
	JobID          string
	CandidateID    string
	VideoChunks    *ChunkBuffer
	AudioChunks    *ChunkBuffer
	TranscriptLog  string
	ConversationID string
}

// Result reports how a submission was finalized.
type Result struct {
	ApplicationID string
	VideoRef      string
	AudioRef      string
	State         SubmissionState
	Notices       []string
}

// Finalizer converts accumulated media into durable artifacts and persists
// the application record, tolerating storage failures without ever losing
// the candidate's submission.
type Finalizer struct {
	Uploader    Uploader
	LocalSaver  LocalSaver
	Store       ApplicationStore
	Audio       AudioTrigger
	VideoPrefix string
	AudioPrefix string

	// Now is overridable for deterministic artifact paths in tests.
	Now func() time.Time
	// OnState observes state transitions.
	OnState func(state SubmissionState)
}

func (f *Finalizer) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Finalizer) setState(result *Result, state SubmissionState) {
	result.State = state
	if f.OnState != nil {
		f.OnState(state)
	}
}

func (f *Finalizer) videoPath(candidateID string, ts time.Time) string {
	prefix := f.VideoPrefix
	if prefix == "" {
		prefix = "interviews"
	}
	return fmt.Sprintf("%s/interview_%s_%d.webm", prefix, candidateID, ts.UnixMilli())
}

func (f *Finalizer) audioPath(candidateID string, ts time.Time) string {
	prefix := f.AudioPrefix
	if prefix == "" {
		prefix = "interview-audio"
	}
	return fmt.Sprintf("%s/interview_%s_%d.webm", prefix, candidateID, ts.UnixMilli())
}

// upload stores one artifact. A missing uploader counts as an upload
// failure so unconfigured storage degrades instead of panicking.
func (f *Finalizer) upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if f.Uploader == nil {
		return "", &UploadError{Err: fmt.Errorf("no uploader configured")}
	}
	return f.Uploader.Upload(ctx, path, contentType, data)
}

// Finalize runs one submission to a terminal state. The only error it
// returns is a failed application creation (or a duplicate pre-check);
// upload failures degrade to sentinel references and the submission
// proceeds.
func (f *Finalizer) Finalize(ctx context.Context, sub Submission) (*Result, error) {
	result := &Result{State: StateCapturing}

	exists, err := f.Store.Exists(sub.CandidateID, sub.JobID)
	if err != nil {
		f.setState(result, StateError)
		return result, &StoreError{Err: err}
	}
	if exists {
		f.setState(result, StateError)
		return result, ErrAlreadyApplied
	}

	f.setState(result, StateFinalizing)
	ts := f.now()

	metadata := map[string]interface{}{}

	videoRef := SentinelNoVideo
	var video []byte
	if sub.VideoChunks != nil {
		video = sub.VideoChunks.Bytes()
	}
	if len(video) > 0 {
		// Local backup comes first so the recording survives any network
		// outcome.
		savedLocally := false
		if f.LocalSaver != nil {
			localName := fmt.Sprintf("interview_%d.webm", ts.UnixMilli())
			if path, err := f.LocalSaver.Save(localName, video); err != nil {
				log.Printf("interview: local video backup failed: %v", err)
			} else {
				savedLocally = true
				log.Printf("interview: video saved locally as backup: %s", path)
			}
		}

		f.setState(result, StateUploading)
		url, err := f.upload(ctx, f.videoPath(sub.CandidateID, ts), "video/webm", video)
		if err != nil {
			log.Printf("interview: cloud video upload failed: %v", err)
			f.setState(result, StateUploadFailed)
			if savedLocally {
				videoRef = SentinelSavedLocally
				result.Notices = append(result.Notices, "Cloud upload failed. Video saved to your device instead.")
			} else {
				videoRef = SentinelUploadFailed
				result.Notices = append(result.Notices, "Cloud upload failed. Your application will still be submitted.")
			}
		} else {
			f.setState(result, StateUploaded)
			videoRef = url
		}
	}
	result.VideoRef = videoRef

	var audioArtifact []byte
	if sub.AudioChunks != nil {
		audioArtifact = sub.AudioChunks.Bytes()
	}
	if len(audioArtifact) > 0 {
		url, err := f.upload(ctx, f.audioPath(sub.CandidateID, ts), "audio/webm", audioArtifact)
		if err != nil {
			// Audio loss never blocks the submission.
			log.Printf("interview: audio upload failed: %v", err)
			result.Notices = append(result.Notices, "Audio upload failed.")
		} else {
			result.AudioRef = url
			metadata["audio_url"] = url
		}
	}

	record := ApplicationRecord{
		JobID:          sub.JobID,
		CandidateID:    sub.CandidateID,
		VideoRef:       videoRef,
		VideoCompleted: videoRef != SentinelNoVideo,
		ConversationID: sub.ConversationID,
		Transcript:     sub.TranscriptLog,
		Metadata:       metadata,
	}

	applicationID, err := f.Store.Create(ctx, record)
	if err != nil {
		f.setState(result, StateError)
		return result, &StoreError{Err: err}
	}
	result.ApplicationID = applicationID
	f.setState(result, StateApplicationCreated)

	if sub.ConversationID != "" && f.Audio != nil {
		f.setState(result, StateAudioFetchTriggered)
		timeRange := LastHour(ts)
		// Fire and forget: a failed audio fetch is logged, never surfaced,
		// and never rolls back the created application.
		go func() {
			if err := f.Audio.Trigger(context.Background(), applicationID, timeRange); err != nil {
				log.Printf("interview: audio retrieval trigger failed for application %s: %v", applicationID, err)
			}
		}()
	} else {
		f.setState(result, StateSkipped)
	}

	f.setState(result, StateDone)
	return result, nil
}

// Skip creates the application with no media artifact at all, for
// candidates who decline the AI screening.
func (f *Finalizer) Skip(ctx context.Context, candidateID, jobID string) (*Result, error) {
	return f.Finalize(ctx, Submission{JobID: jobID, CandidateID: candidateID})
}
