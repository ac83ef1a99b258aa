// Package chat implements the mentor chat session: transcript, session id
// and the single in-flight request lifecycle.
//
// The Controller is a plain state machine driven from one goroutine (the
// TUI update loop). Send hands back a Request to perform elsewhere; the
// outcome is fed back through Resolve.
package chat

import (
	"context"
	"strings"

	"internpath/internal/api"
	"internpath/internal/logging"
)

// Role identifies who authored a message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	if r == RoleUser {
		return "user"
	}
	return "assistant"
}

// Message is one transcript entry. A Pending message is the placeholder for
// the reply currently in flight.
type Message struct {
	Role    Role
	Content string
	Pending bool
}

// State is the send lifecycle state.
type State int

const (
	Idle State = iota
	Sending
)

func (s State) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// Advisory texts shown in place of the reply when a send fails.
const (
	AdvisoryAuth    = "Please log in to chat with your AI mentor."
	AdvisoryServer  = "The mentor is having trouble right now. Please try again later."
	AdvisoryGeneric = "Could not reach the mentor. Check your connection and try again."
)

// Greeting is shown by views while the transcript is empty. It is never part of the transcript.
const Greeting = "Hello 👋, I'm your AI internship Mentor. Ask me anything about internships, skills, or resumes"

// Sender is the slice of the API client the chat needs.
type Sender interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

// Request is the single outbound message produced by Send.
type Request struct {
	Seq       uint64
	Message   string
	SessionID *api.SessionID
}

// Result is the completion of a Request.
type Result struct {
	Seq       uint64
	Reply     string
	SessionID api.SessionID
	Err       error
}

// Do performs the request. It blocks; run it off the update loop.
func (r Request) Do(ctx context.Context, s Sender) Result {
	resp, err := s.Chat(ctx, api.ChatRequest{Message: r.Message, SessionID: r.SessionID})
	if err != nil {
		return Result{Seq: r.Seq, Err: err}
	}
	return Result{Seq: r.Seq, Reply: resp.Response, SessionID: resp.SessionID}
}

// Snapshot is a render-ready copy of the controller state.
type Snapshot struct {
	SessionID *api.SessionID
	Messages  []Message
	State     State
}

// Controller owns one chat session.
type Controller struct {
	id       *api.SessionID
	messages []Message
	state    State
	seq      uint64 // seq of the in-flight request while Sending
	log      *logging.Logger
}

// NewController returns an idle controller with an empty transcript and no session.
func NewController() *Controller {
	return &Controller{log: logging.Get(logging.CategoryChat)}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// SessionID returns the current session id, nil before the first reply.
func (c *Controller) SessionID() *api.SessionID {
	if c.id == nil {
		return nil
	}
	id := *c.id
	return &id
}

// Send starts a round trip for text. It returns false, changing nothing,
// when text is blank or a request is already in flight.
func (c *Controller) Send(text string) (Request, bool) {
	if c.state != Idle {
		return Request{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, false
	}

	c.messages = append(c.messages,
		Message{Role: RoleUser, Content: text},
		Message{Role: RoleAssistant, Pending: true},
	)
	c.state = Sending
	c.seq++

	c.log.Debug("send seq=%d session=%s", c.seq, describe(c.id))
	return Request{Seq: c.seq, Message: text, SessionID: c.SessionID()}, true
}

// Resolve applies the outcome of the in-flight request. Results that do not
// belong to it are ignored and Resolve returns false.
func (c *Controller) Resolve(res Result) bool {
	if c.state != Sending || res.Seq != c.seq {
		c.log.Debug("ignoring result seq=%d (state=%s current=%d)", res.Seq, c.state, c.seq)
		return false
	}

	reply := Message{Role: RoleAssistant, Content: res.Reply}
	if res.Err != nil {
		reply.Content = advisoryFor(res.Err)
		c.log.Warn("chat failed (%s): %v", api.CategoryOf(res.Err), res.Err)
	} else if c.id == nil && !res.SessionID.IsZero() {
		id := res.SessionID
		c.id = &id
		c.log.Info("session started: %s", id)
	}

	// Replace the placeholder rather than mutating it.
	last := len(c.messages) - 1
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	msgs[last] = reply
	c.messages = msgs
	c.state = Idle
	return true
}

// NewChat clears the transcript and session id. Only legal while Idle.
// The backend is not told; the old session simply stops being used.
func (c *Controller) NewChat() bool {
	if c.state != Idle {
		return false
	}
	c.id = nil
	c.messages = nil
	c.log.Info("new chat")
	return true
}

// Resume replaces the session with a stored one. Only legal while Idle.
// Stored roles "user" and "ai" map to user and assistant.
func (c *Controller) Resume(id api.SessionID, history []api.StoredMessage) bool {
	if c.state != Idle {
		return false
	}
	msgs := make([]Message, 0, len(history))
	for _, m := range history {
		role := RoleAssistant
		if strings.EqualFold(m.Role, "user") {
			role = RoleUser
		}
		msgs = append(msgs, Message{Role: role, Content: m.Content})
	}
	c.id = &id
	c.messages = msgs
	c.log.Info("resumed session %s with %d messages", id, len(msgs))
	return true
}

// Snapshot returns a copy safe to hand to a renderer.
func (c *Controller) Snapshot() Snapshot {
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return Snapshot{SessionID: c.SessionID(), Messages: msgs, State: c.state}
}

func advisoryFor(err error) string {
	switch api.CategoryOf(err) {
	case api.CategoryAuthRequired:
		return AdvisoryAuth
	case api.CategoryServerError:
		return AdvisoryServer
	default:
		return AdvisoryGeneric
	}
}

func describe(id *api.SessionID) string {
	if id == nil {
		return "none"
	}
	return id.String()
}
