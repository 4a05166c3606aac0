package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"clutchjobs/config"
	"clutchjobs/interview"
)

// ElevenLabsService talks to the ElevenLabs conversational-AI REST API: it
// issues signed session URLs for clients and retrieves finished conversation
// audio.
type ElevenLabsService struct {
	apiKey     string
	agentID    string
	baseURL    string
	httpClient *http.Client
}

func NewElevenLabsService(cfg config.AgentConfig) (*ElevenLabsService, error) {
	if cfg.APIKey == "" || cfg.AgentID == "" {
		return nil, fmt.Errorf("ElevenLabs credentials not configured")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	return &ElevenLabsService{
		apiKey:     cfg.APIKey,
		agentID:    cfg.AgentID,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *ElevenLabsService) AgentID() string {
	return s.agentID
}

// GetSignedURL returns a short-lived signed websocket URL the client uses to
// open the voice session against the configured agent.
func (s *ElevenLabsService) GetSignedURL(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/convai/conversation/get-signed-url?agent_id=%s", s.baseURL, url.QueryEscape(s.agentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting signed URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("signed URL request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var payload struct {
		SignedURL string `json:"signed_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding signed URL response: %v", err)
	}
	if payload.SignedURL == "" {
		return "", fmt.Errorf("signed URL response missing signed_url")
	}
	return payload.SignedURL, nil
}

// ConversationAudio fetches the recorded audio of a finished conversation,
// optionally bounded to a time range.
func (s *ElevenLabsService) ConversationAudio(ctx context.Context, conversationID string, timeRange *interview.TimeRange) ([]byte, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation ID is required")
	}

	endpoint := fmt.Sprintf("%s/v1/convai/conversations/%s/audio", s.baseURL, url.PathEscape(conversationID))
	if timeRange != nil {
		params := url.Values{}
		params.Set("from", timeRange.From.UTC().Format(time.RFC3339))
		params.Set("to", timeRange.To.UTC().Format(time.RFC3339))
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting conversation audio: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("conversation audio request failed (status %d): %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading conversation audio: %v", err)
	}
	return audio, nil
}
