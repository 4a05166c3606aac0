package interview

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// MessageKind tags the shape of an incoming agent payload.
type MessageKind int

const (
	// MessageUnknown is a payload whose shape could not be determined.
	MessageUnknown MessageKind = iota
	// MessageText is a bare text payload.
	MessageText
	// MessageStructured carries explicit source and text fields.
	MessageStructured
)

// AgentMessage is one event payload from the voice agent. The agent does not
// guarantee a uniform shape, so unknown variants keep their raw form and are
// resolved later by the transcript normalizer.
type AgentMessage struct {
	Kind   MessageKind
	Source string
	Text   string
	Raw    string
}

// SessionCallbacks receive the agent session's event stream.
type SessionCallbacks struct {
	OnConnect      func()
	OnDisconnect   func(reason string)
	OnMessage      func(msg AgentMessage)
	OnError        func(err error)
	OnStatusChange func(status string)
	OnModeChange   func(mode string)
}

// SessionRequest seeds a conversational session with the interview script.
type SessionRequest struct {
	AgentID      string
	Prompt       string
	FirstMessage string
	Callbacks    SessionCallbacks
}

// AgentSession is a live conversation handle.
type AgentSession interface {
	ConversationID() string
	SendTextMessage(text string) error
	EndSession() error
}

// AgentClient opens sessions against the external voice agent.
type AgentClient interface {
	StartSession(ctx context.Context, req SessionRequest) (AgentSession, error)
}

// JobContext is the job data the interview script is generated from.
type JobContext struct {
	Title            string
	Company          string
	Location         string
	ExperienceLevel  string
	Requirements     []string
	Responsibilities []string
}

func orCompany(company string) string {
	if company == "" {
		return "our company"
	}
	return company
}

// BuildPrompt generates the recruiter system prompt for a job.
func BuildPrompt(job JobContext) string {
	var sb strings.Builder
	company := orCompany(job.Company)
	fmt.Fprintf(&sb, "You are an AI recruiter conducting a video screening interview for a %s position at %s.\n\n", job.Title, company)
	sb.WriteString("Job Details:\n")
	fmt.Fprintf(&sb, "- Position: %s\n", job.Title)
	fmt.Fprintf(&sb, "- Company: %s\n", company)
	fmt.Fprintf(&sb, "- Location: %s\n", job.Location)
	fmt.Fprintf(&sb, "- Experience Level: %s\n", job.ExperienceLevel)
	sb.WriteString("\nKey Requirements:\n")
	for _, req := range job.Requirements {
		fmt.Fprintf(&sb, "- %s\n", req)
	}
	sb.WriteString("\nKey Responsibilities:\n")
	for _, resp := range job.Responsibilities {
		fmt.Fprintf(&sb, "- %s\n", resp)
	}
	sb.WriteString("\nYour task is to interview the candidate in a professional, friendly manner. ")
	sb.WriteString("Ask relevant screening questions about their experience, skills, and fit for this specific role. ")
	sb.WriteString("Focus on their qualifications related to the job requirements. Ask one question at a time and wait for their response.\n\n")
	fmt.Fprintf(&sb, "Begin the interview by introducing yourself as an AI recruiter for %s, welcoming them, ", company)
	fmt.Fprintf(&sb, "and explaining this is a preliminary screening for the %s position. Then ask your first question.\n", job.Title)
	return sb.String()
}

// BuildFirstMessage generates the agent's opening utterance for a job.
func BuildFirstMessage(job JobContext) string {
	company := orCompany(job.Company)
	return fmt.Sprintf("Hello! I'm your AI interviewer from %s. Welcome to this video screening for the %s position. "+
		"I'll be asking you a few questions to learn more about your experience and how you might fit with the role. "+
		"Let's start: Could you briefly introduce yourself and tell me about your relevant experience for this %s position?",
		company, job.Title, job.Title)
}

// StartConversationalSession opens the voice-agent session seeded with the
// job's interview script. At most one session may be open per attempt:
// re-entrant calls while initializing or connected are no-ops. On failure
// the interview continues in recording-only mode; the returned error is
// classified ClassSession so callers surface the degradation instead of
// aborting.
func (c *Controller) StartConversationalSession(ctx context.Context, job JobContext) error {
	c.mu.Lock()
	if c.sessionStatus == SessionConnecting || c.sessionStatus == SessionConnected {
		c.mu.Unlock()
		log.Printf("interview: agent session already initializing or connected")
		return nil
	}
	if c.ended {
		c.mu.Unlock()
		return fmt.Errorf("capture controller already ended")
	}
	c.mu.Unlock()

	c.setSessionStatus(SessionConnecting)

	req := SessionRequest{
		AgentID:      c.cfg.AgentID,
		Prompt:       BuildPrompt(job),
		FirstMessage: BuildFirstMessage(job),
		Callbacks: SessionCallbacks{
			OnConnect: func() {
				c.setSessionStatus(SessionConnected)
			},
			OnDisconnect: func(reason string) {
				log.Printf("interview: agent disconnected: %s", reason)
				c.setSessionStatus(SessionIdle)
			},
			OnMessage: c.handleAgentMessage,
			OnError: func(err error) {
				log.Printf("interview: agent error: %v", err)
				c.notice("an error occurred with the AI interviewer")
			},
			OnStatusChange: func(status string) {
				log.Printf("interview: agent status changed: %s", status)
			},
			OnModeChange: func(mode string) {
				log.Printf("interview: agent mode changed: %s", mode)
			},
		},
	}

	session, err := c.cfg.Agent.StartSession(ctx, req)
	if err != nil {
		c.setSessionStatus(SessionFailed)
		c.notice("the AI interviewer could not be initialized, the video will still be recorded")
		return fmt.Errorf("starting agent session: %w: %v", ErrSessionUnavailable, err)
	}

	c.mu.Lock()
	c.session = session
	c.conversationID = session.ConversationID()
	c.mu.Unlock()
	return nil
}

// handleAgentMessage folds one incoming payload into the transcript log as a
// canonical {"source","message"} line. Unknown shapes are logged verbatim so
// the normalizer can still make a best-effort pass later.
func (c *Controller) handleAgentMessage(msg AgentMessage) {
	switch msg.Kind {
	case MessageStructured:
		source := msg.Source
		if source == "" {
			source = SpeakerAI
		}
		c.appendTranscript(source, msg.Text)
	case MessageText:
		c.appendTranscript(SpeakerAI, msg.Text)
	default:
		if msg.Raw != "" {
			c.mu.Lock()
			c.transcript = append(c.transcript, msg.Raw)
			c.mu.Unlock()
		}
	}
}

// SendUserText records a candidate utterance and forwards it to the agent
// when connected. Without a session the utterance is still logged, keeping
// the recording-only mode useful.
func (c *Controller) SendUserText(text string) error {
	if text == "" {
		return nil
	}
	c.appendTranscript(SpeakerUser, text)

	c.mu.Lock()
	session := c.session
	status := c.sessionStatus
	c.mu.Unlock()

	if session == nil || status != SessionConnected {
		log.Printf("interview: cannot forward message, agent not connected")
		return nil
	}
	if err := session.SendTextMessage(text); err != nil {
		log.Printf("interview: error sending message to agent: %v", err)
		return err
	}
	return nil
}
