package interview

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	id    string
	sent  []string
	ended bool
}

func (s *fakeSession) ConversationID() string { return s.id }

func (s *fakeSession) SendTextMessage(text string) error {
	s.sent = append(s.sent, text)
	return nil
}

func (s *fakeSession) EndSession() error {
	s.ended = true
	return nil
}

type fakeAgent struct {
	session *fakeSession
	err     error
	calls   int
	lastReq SessionRequest
}

func (a *fakeAgent) StartSession(ctx context.Context, req SessionRequest) (AgentSession, error) {
	a.calls++
	a.lastReq = req
	if a.err != nil {
		return nil, a.err
	}
	return a.session, nil
}

func testJob() JobContext {
	return JobContext{
		Title:            "Backend Engineer",
		Company:          "Acme Robotics",
		Location:         "Toronto",
		ExperienceLevel:  "Senior",
		Requirements:     []string{"Go", "PostgreSQL"},
		Responsibilities: []string{"Build APIs"},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(testJob())
	assert.Contains(t, prompt, "Backend Engineer position at Acme Robotics")
	assert.Contains(t, prompt, "- Location: Toronto")
	assert.Contains(t, prompt, "- Experience Level: Senior")
	assert.Contains(t, prompt, "- Go")
	assert.Contains(t, prompt, "- Build APIs")
}

func TestBuildPrompt_CompanyFallback(t *testing.T) {
	job := testJob()
	job.Company = ""
	prompt := BuildPrompt(job)
	assert.Contains(t, prompt, "position at our company")
}

func TestBuildFirstMessage(t *testing.T) {
	msg := BuildFirstMessage(testJob())
	assert.Contains(t, msg, "I'm your AI interviewer from Acme Robotics")
	assert.Contains(t, msg, "Backend Engineer position")
}

func TestStartConversationalSession_Success(t *testing.T) {
	agent := &fakeAgent{session: &fakeSession{id: "conv-42"}}
	var statuses []SessionStatus
	c := NewController(ControllerConfig{
		Agent:           agent,
		AgentID:         "agent-1",
		OnSessionStatus: func(s SessionStatus) { statuses = append(statuses, s) },
	})

	err := c.StartConversationalSession(context.Background(), testJob())
	assert.NoError(t, err)
	assert.Equal(t, 1, agent.calls)
	assert.Equal(t, "agent-1", agent.lastReq.AgentID)
	assert.Equal(t, "conv-42", c.ConversationID())
	assert.Equal(t, []SessionStatus{SessionConnecting}, statuses)

	agent.lastReq.Callbacks.OnConnect()
	assert.Equal(t, SessionConnected, c.SessionStatus())
}

func TestStartConversationalSession_Reentrant(t *testing.T) {
	agent := &fakeAgent{session: &fakeSession{id: "conv-1"}}
	c := NewController(ControllerConfig{Agent: agent})

	assert.NoError(t, c.StartConversationalSession(context.Background(), testJob()))
	agent.lastReq.Callbacks.OnConnect()

	// The second call while connected is a no-op.
	assert.NoError(t, c.StartConversationalSession(context.Background(), testJob()))
	assert.Equal(t, 1, agent.calls)
}

func TestStartConversationalSession_FailureDegrades(t *testing.T) {
	agent := &fakeAgent{err: fmt.Errorf("network down")}
	var notices []string
	c := NewController(ControllerConfig{
		Agent:    agent,
		OnNotice: func(n string) { notices = append(notices, n) },
	})

	err := c.StartConversationalSession(context.Background(), testJob())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionUnavailable))
	assert.Equal(t, SessionFailed, c.SessionStatus())
	assert.Len(t, notices, 1)
	assert.Contains(t, notices[0], "the video will still be recorded")
	assert.Empty(t, c.ConversationID())
}

func TestStartConversationalSession_AfterEnd(t *testing.T) {
	c := NewController(ControllerConfig{Agent: &fakeAgent{session: &fakeSession{}}})
	c.EndSession(context.Background())

	err := c.StartConversationalSession(context.Background(), testJob())
	assert.Error(t, err)
}

func TestHandleAgentMessage_Shapes(t *testing.T) {
	agent := &fakeAgent{session: &fakeSession{id: "conv-9"}}
	c := NewController(ControllerConfig{Agent: agent})
	assert.NoError(t, c.StartConversationalSession(context.Background(), testJob()))

	onMessage := agent.lastReq.Callbacks.OnMessage
	onMessage(AgentMessage{Kind: MessageStructured, Source: "user", Text: "my answer"})
	onMessage(AgentMessage{Kind: MessageStructured, Text: "defaults to ai"})
	onMessage(AgentMessage{Kind: MessageText, Text: "bare text"})
	onMessage(AgentMessage{Kind: MessageUnknown, Raw: "opaque payload"})
	onMessage(AgentMessage{Kind: MessageUnknown})

	entries := c.TranscriptEntries()
	assert.Len(t, entries, 4)
	assert.Equal(t, Entry{Speaker: "user", Text: "my answer"}, entries[0])
	assert.Equal(t, Entry{Speaker: "ai", Text: "defaults to ai"}, entries[1])
	assert.Equal(t, Entry{Speaker: "ai", Text: "bare text"}, entries[2])
	assert.Equal(t, "opaque payload", entries[3].Text)
}

func TestSendUserText_ForwardsWhenConnected(t *testing.T) {
	session := &fakeSession{id: "conv-5"}
	agent := &fakeAgent{session: session}
	c := NewController(ControllerConfig{Agent: agent})
	assert.NoError(t, c.StartConversationalSession(context.Background(), testJob()))
	agent.lastReq.Callbacks.OnConnect()

	assert.NoError(t, c.SendUserText("hello"))
	assert.Equal(t, []string{"hello"}, session.sent)

	entries := c.TranscriptEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, Entry{Speaker: "user", Text: "hello"}, entries[0])
}

func TestSendUserText_LoggedWithoutSession(t *testing.T) {
	c := NewController(ControllerConfig{})

	assert.NoError(t, c.SendUserText("recording only"))
	entries := c.TranscriptEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "user", entries[0].Speaker)

	assert.NoError(t, c.SendUserText(""))
	assert.Len(t, c.TranscriptEntries(), 1)
}

func TestEndSession_ClosesAgentSession(t *testing.T) {
	session := &fakeSession{id: "conv-7"}
	agent := &fakeAgent{session: session}
	c := NewController(ControllerConfig{Agent: agent})
	assert.NoError(t, c.StartConversationalSession(context.Background(), testJob()))

	c.EndSession(context.Background())
	assert.True(t, session.ended)
	assert.Equal(t, SessionIdle, c.SessionStatus())
}
