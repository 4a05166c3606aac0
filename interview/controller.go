package interview

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

type CaptureState string

const (
	CapturePending CaptureState = "pending"
	CaptureGranted CaptureState = "granted"
	CaptureDenied  CaptureState = "denied"
	CaptureError   CaptureState = "error"
)

type SessionStatus string

const (
	SessionIdle       SessionStatus = "idle"
	SessionConnecting SessionStatus = "connecting"
	SessionConnected  SessionStatus = "connected"
	SessionFailed     SessionStatus = "failed"
)

const (
	defaultMonitorInterval = 2 * time.Second
	defaultFrameInterval   = 33 * time.Millisecond
	defaultFlushTimeout    = time.Second
)

// ControllerConfig wires the controller to its host equipment and agent.
type ControllerConfig struct {
	Devices     MediaDevices
	Agent       AgentClient
	AgentID     string
	NewRecorder RecorderFactory
	FrameSink   FrameSink

	// MonitorInterval is how often track health is checked. FlushTimeout
	// bounds the wait for the recorder's final chunk flush on stop.
	MonitorInterval time.Duration
	FrameInterval   time.Duration
	FlushTimeout    time.Duration

	// OnStreamStatus republishes the active/inactive signal when it changes.
	OnStreamStatus func(active bool)
	// OnNotice surfaces degraded-but-functioning conditions to the user.
	OnNotice func(notice string)
	// OnSessionStatus observes agent session transitions.
	OnSessionStatus func(status SessionStatus)
}

// Controller owns the camera/microphone streams and the conversational
// session for exactly one interview attempt. A new attempt needs a new
// controller; nothing is shared across attempts.
type Controller struct {
	cfg ControllerConfig

	mu sync.Mutex

	captureState CaptureState
	captureErr   string
	videoStream  *Stream
	audioStream  *Stream
	combined     *Stream
	micAvailable bool
	streamActive bool

	recorder     Recorder
	chunks       *ChunkBuffer
	recorderDone chan struct{}

	sessionStatus  SessionStatus
	session        AgentSession
	conversationID string

	transcript []string

	monitorStop chan struct{}
	mirrorStop  chan struct{}
	ended       bool
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.MonitorInterval <= 0 {
		cfg.MonitorInterval = defaultMonitorInterval
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = defaultFrameInterval
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = defaultFlushTimeout
	}
	return &Controller{
		cfg:           cfg,
		captureState:  CapturePending,
		sessionStatus: SessionIdle,
		streamActive:  true,
		chunks:        NewChunkBuffer(),
	}
}

func (c *Controller) CaptureState() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captureState
}

func (c *Controller) CaptureErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captureErr
}

func (c *Controller) SessionStatus() SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionStatus
}

// MicrophoneAvailable reports whether audio capture was acquired. False
// means the interview is running video-only.
func (c *Controller) MicrophoneAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.micAvailable
}

func (c *Controller) StreamActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streamActive
}

// Chunks exposes the accumulated recording for finalization.
func (c *Controller) Chunks() *ChunkBuffer {
	return c.chunks
}

func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// TranscriptLog returns the raw newline-delimited transcript log.
func (c *Controller) TranscriptLog() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.transcript, "\n")
}

// TranscriptEntries returns the normalized transcript.
func (c *Controller) TranscriptEntries() []Entry {
	return Normalize(c.TranscriptLog())
}

func (c *Controller) notice(message string) {
	log.Printf("interview: %s", message)
	if c.cfg.OnNotice != nil {
		c.cfg.OnNotice(message)
	}
}

func (c *Controller) setSessionStatus(status SessionStatus) {
	c.mu.Lock()
	changed := c.sessionStatus != status
	c.sessionStatus = status
	c.mu.Unlock()
	if changed && c.cfg.OnSessionStatus != nil {
		c.cfg.OnSessionStatus(status)
	}
}

func (c *Controller) appendTranscript(source, text string) {
	line := FormatLine(source, text)
	c.mu.Lock()
	c.transcript = append(c.transcript, line)
	c.mu.Unlock()
}

// EndSession tears down the attempt: it stops the recorder and waits for the
// final chunk flush bounded by a hard timeout, closes the agent session,
// stops the background loops and releases every track. It is idempotent and
// safe to call when some or all sub-resources were never acquired.
func (c *Controller) EndSession(ctx context.Context) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return
	}
	c.ended = true
	recorder := c.recorder
	recorderDone := c.recorderDone
	session := c.session
	monitorStop := c.monitorStop
	mirrorStop := c.mirrorStop
	video, audio, combined := c.videoStream, c.audioStream, c.combined
	c.recorder = nil
	c.session = nil
	c.monitorStop = nil
	c.mirrorStop = nil
	c.mu.Unlock()

	if recorder != nil {
		recorder.Stop()
		// The flush wait is bounded by a hard timeout, not a retry: a host
		// that never delivers the stop callback must not hang the submission.
		select {
		case <-recorderDone:
		case <-time.After(c.cfg.FlushTimeout):
			log.Printf("interview: recorder flush timed out after %s", c.cfg.FlushTimeout)
		case <-ctx.Done():
		}
	}

	if monitorStop != nil {
		close(monitorStop)
	}
	if mirrorStop != nil {
		close(mirrorStop)
	}

	if session != nil {
		if err := session.EndSession(); err != nil {
			log.Printf("interview: error ending agent session: %v", err)
		}
	}
	c.setSessionStatus(SessionIdle)

	for _, stream := range []*Stream{video, audio, combined} {
		if stream != nil {
			stream.Stop()
		}
	}
}
