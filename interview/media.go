package interview

import (
	"context"
	"sync"
)

type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
)

// Track is a single capture track. The controller owns track state for the
// duration of one interview attempt; only the health monitor may flip
// enabled back on after the host disables it.
type Track struct {
	Kind TrackKind

	mu      sync.Mutex
	enabled bool
	ended   bool
}

func NewTrack(kind TrackKind) *Track {
	return &Track{Kind: kind, enabled: true}
}

func (t *Track) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Track) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

// Live reports whether the track is still producing data.
func (t *Track) Live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.ended
}

// Stop ends the track and releases the underlying device.
func (t *Track) Stop() {
	t.mu.Lock()
	t.ended = true
	t.enabled = false
	t.mu.Unlock()
}

// Frame is one captured video frame in the host's native encoding.
type Frame []byte

// FrameGrabber pulls the most recent frame from a live video stream.
type FrameGrabber interface {
	Grab() (Frame, error)
}

// FrameSink receives mirrored frames. The redundant render path keeps the
// preview alive even when the primary display surface detaches.
type FrameSink interface {
	Draw(Frame)
}

// Stream is an ordered set of tracks from one device acquisition, with an
// optional frame source for video streams.
type Stream struct {
	mu      sync.Mutex
	tracks  []*Track
	grabber FrameGrabber
}

func NewStream(tracks ...*Track) *Stream {
	return &Stream{tracks: tracks}
}

func (s *Stream) SetGrabber(g FrameGrabber) {
	s.mu.Lock()
	s.grabber = g
	s.mu.Unlock()
}

func (s *Stream) Grabber() FrameGrabber {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grabber
}

func (s *Stream) AddTrack(t *Track) {
	s.mu.Lock()
	s.tracks = append(s.tracks, t)
	s.mu.Unlock()
}

func (s *Stream) Tracks() []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *Stream) TracksOfKind(kind TrackKind) []*Track {
	tracks := []*Track{}
	for _, t := range s.Tracks() {
		if t.Kind == kind {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

func (s *Stream) VideoTracks() []*Track { return s.TracksOfKind(TrackVideo) }
func (s *Stream) AudioTracks() []*Track { return s.TracksOfKind(TrackAudio) }

// Stop ends every track on the stream.
func (s *Stream) Stop() {
	for _, t := range s.Tracks() {
		t.Stop()
	}
}

// MediaDevices acquires capture streams. Video and audio are requested
// independently so one denied permission does not take down the other.
type MediaDevices interface {
	OpenVideo(ctx context.Context) (*Stream, error)
	OpenAudio(ctx context.Context) (*Stream, error)
}
