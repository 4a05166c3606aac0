package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// RequestCapture acquires camera and microphone streams for the attempt.
// Video is requested first, on its own, so a combined prompt cannot take
// both down at once. A microphone failure degrades to video-only capture
// with a notice instead of aborting. The returned error is terminal for the
// attempt but recoverable by calling RequestCapture again on a fresh try.
func (c *Controller) RequestCapture(ctx context.Context) error {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return fmt.Errorf("capture controller already ended")
	}
	c.captureState = CapturePending
	c.captureErr = ""
	c.mu.Unlock()

	c.releaseStreams()

	video, err := c.cfg.Devices.OpenVideo(ctx)
	if err != nil {
		return c.failCapture(err)
	}

	videoTracks := video.VideoTracks()
	if len(videoTracks) == 0 {
		video.Stop()
		return c.failCapture(fmt.Errorf("no video track available: %w", ErrDeviceUnavailable))
	}
	for _, t := range videoTracks {
		t.SetEnabled(true)
	}

	c.mu.Lock()
	c.videoStream = video
	c.mu.Unlock()

	c.startFrameMirror(video)

	combined := NewStream()
	for _, t := range videoTracks {
		combined.AddTrack(t)
	}

	audio, err := c.cfg.Devices.OpenAudio(ctx)
	if err != nil {
		// Service continues without a microphone.
		c.notice("could not access microphone, the video will be recorded without audio")
		c.mu.Lock()
		c.micAvailable = false
		c.mu.Unlock()
	} else {
		for _, t := range audio.AudioTracks() {
			combined.AddTrack(t)
		}
		c.mu.Lock()
		c.audioStream = audio
		c.micAvailable = true
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.combined = combined
	c.captureState = CaptureGranted
	c.mu.Unlock()

	if err := c.startRecording(combined); err != nil {
		log.Printf("interview: error initializing recording: %v", err)
	}

	c.startTrackMonitor(video)
	return nil
}

func (c *Controller) failCapture(err error) error {
	c.mu.Lock()
	if errors.Is(err, ErrPermissionDenied) {
		c.captureState = CaptureDenied
		c.captureErr = "Camera access was denied. Please grant permission and try again."
	} else {
		c.captureState = CaptureError
		c.captureErr = fmt.Sprintf("Camera error: %v", err)
	}
	c.mu.Unlock()
	return err
}

func (c *Controller) releaseStreams() {
	c.mu.Lock()
	video, audio := c.videoStream, c.audioStream
	mirrorStop, monitorStop := c.mirrorStop, c.monitorStop
	c.videoStream = nil
	c.audioStream = nil
	c.combined = nil
	c.mirrorStop = nil
	c.monitorStop = nil
	c.mu.Unlock()

	if mirrorStop != nil {
		close(mirrorStop)
	}
	if monitorStop != nil {
		close(monitorStop)
	}
	if video != nil {
		video.Stop()
	}
	if audio != nil {
		audio.Stop()
	}
}

func (c *Controller) startRecording(stream *Stream) error {
	if c.cfg.NewRecorder == nil {
		return nil
	}
	recorder, err := c.cfg.NewRecorder(stream)
	if err != nil {
		return err
	}
	if err := recorder.Start(); err != nil {
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.recorder = recorder
	c.recorderDone = done
	c.mu.Unlock()

	go func() {
		for chunk := range recorder.Chunks() {
			c.chunks.Append(chunk)
		}
		close(done)
	}()
	return nil
}

// startFrameMirror continuously copies frames from the video stream to the
// configured sink so the preview survives intermittent surface detachment.
func (c *Controller) startFrameMirror(video *Stream) {
	if c.cfg.FrameSink == nil {
		return
	}
	grabber := video.Grabber()
	if grabber == nil {
		return
	}

	stop := make(chan struct{})
	c.mu.Lock()
	c.mirrorStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.cfg.FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !c.StreamActive() {
					continue
				}
				frame, err := grabber.Grab()
				if err != nil {
					continue
				}
				c.cfg.FrameSink.Draw(frame)
			}
		}
	}()
}

// startTrackMonitor re-enables any video track the host silently disabled
// and republishes the active/inactive status signal on change.
func (c *Controller) startTrackMonitor(video *Stream) {
	stop := make(chan struct{})
	c.mu.Lock()
	c.monitorStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.cfg.MonitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.checkTracks(video)
			}
		}
	}()
}

func (c *Controller) checkTracks(video *Stream) {
	tracks := video.VideoTracks()
	allActive := len(tracks) > 0
	for _, t := range tracks {
		if !t.Enabled() || !t.Live() {
			allActive = false
		}
	}

	c.mu.Lock()
	changed := c.streamActive != allActive
	c.streamActive = allActive
	c.mu.Unlock()
	if changed && c.cfg.OnStreamStatus != nil {
		c.cfg.OnStreamStatus(allActive)
	}

	for _, t := range tracks {
		if t.Live() && !t.Enabled() {
			log.Printf("interview: re-enabling disabled video track")
			t.SetEnabled(true)
		}
	}
}

// ForceRestartVideo is the user-initiated recovery action: it re-enables
// every track and restarts the frame mirror.
func (c *Controller) ForceRestartVideo() {
	c.mu.Lock()
	video := c.videoStream
	mirrorStop := c.mirrorStop
	c.mirrorStop = nil
	state := c.captureState
	c.mu.Unlock()

	if state != CaptureGranted || video == nil {
		return
	}
	for _, t := range video.Tracks() {
		t.SetEnabled(true)
	}
	if mirrorStop != nil {
		close(mirrorStop)
	}
	c.startFrameMirror(video)
}
