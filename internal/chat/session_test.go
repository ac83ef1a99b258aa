package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internpath/internal/api"
	"internpath/internal/api/apitest"
)

func sid(t *testing.T, raw string) api.SessionID {
	t.Helper()
	var id api.SessionID
	require.NoError(t, json.Unmarshal([]byte(raw), &id))
	return id
}

var sessionIDComparer = cmp.Comparer(func(a, b api.SessionID) bool { return a.Equal(b) })

// classified returns the error a real client produces for status.
func classified(t *testing.T, status int) error {
	t.Helper()
	srv := apitest.New(t)
	srv.Fail["/ai/chat"] = status
	_, err := api.NewClient(srv.URL).Chat(context.Background(), api.ChatRequest{Message: "x"})
	require.Error(t, err)
	return err
}

// MockSender records requests and answers from a script.
type MockSender struct {
	mu       sync.Mutex
	requests []api.ChatRequest
	reply    func(api.ChatRequest) (*api.ChatResponse, error)
}

func (m *MockSender) Chat(_ context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.reply(req)
}

func TestSendAppendsUserAndPlaceholder(t *testing.T) {
	c := NewController()

	req, ok := c.Send("  hi  ")
	require.True(t, ok)
	assert.Equal(t, "hi", req.Message)
	assert.Nil(t, req.SessionID)
	assert.Equal(t, Sending, c.State())

	want := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Pending: true},
	}
	if diff := cmp.Diff(want, c.Snapshot().Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSendNoopCases(t *testing.T) {
	t.Run("blank text", func(t *testing.T) {
		c := NewController()
		for _, text := range []string{"", "   ", "\n\t"} {
			_, ok := c.Send(text)
			assert.False(t, ok)
		}
		assert.Empty(t, c.Snapshot().Messages)
		assert.Equal(t, Idle, c.State())
	})

	t.Run("while sending", func(t *testing.T) {
		c := NewController()
		first, ok := c.Send("one")
		require.True(t, ok)
		before := c.Snapshot()

		_, ok = c.Send("two")
		assert.False(t, ok)
		if diff := cmp.Diff(before, c.Snapshot(), sessionIDComparer); diff != "" {
			t.Errorf("state changed on re-entrant send (-before +after):\n%s", diff)
		}
		assert.True(t, c.Resolve(Result{Seq: first.Seq, Reply: "r", SessionID: sid(t, "1")}))
	})
}

func TestTranscriptGrowsByTwoAndNeverKeepsPending(t *testing.T) {
	c := NewController()
	outcomes := []error{nil, api.ErrServer, nil, errors.New("dial: refused"), api.ErrAuth}

	for i, outcome := range outcomes {
		req, ok := c.Send("msg")
		require.True(t, ok)
		res := Result{Seq: req.Seq, Reply: "reply", SessionID: sid(t, "5"), Err: outcome}
		require.True(t, c.Resolve(res))

		snap := c.Snapshot()
		assert.Equal(t, Idle, snap.State)
		assert.Len(t, snap.Messages, 2*(i+1))
		for _, m := range snap.Messages {
			assert.False(t, m.Pending, "pending message left after resolution")
		}
	}
}

func TestSessionIDAdoptedOnceAndReused(t *testing.T) {
	c := NewController()

	req, _ := c.Send("hi")
	require.True(t, c.Resolve(Result{Seq: req.Seq, Reply: "hello", SessionID: sid(t, `"abc"`)}))
	require.NotNil(t, c.SessionID())
	assert.Equal(t, "abc", c.SessionID().String())

	req, _ = c.Send("more")
	require.NotNil(t, req.SessionID)
	assert.True(t, req.SessionID.Equal(sid(t, `"abc"`)))

	// A different id in a later reply does not replace the adopted one.
	require.True(t, c.Resolve(Result{Seq: req.Seq, Reply: "ok", SessionID: sid(t, `"zzz"`)}))
	assert.Equal(t, "abc", c.SessionID().String())
}

func TestFailureKeepsNoSessionAndShowsAdvisory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth sentinel", api.ErrAuth, AdvisoryAuth},
		{"server sentinel", api.ErrServer, AdvisoryServer},
		{"validation", api.ErrValidation, AdvisoryGeneric},
		{"transport", errors.New("connection reset"), AdvisoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			req, _ := c.Send("hi")
			require.True(t, c.Resolve(Result{Seq: req.Seq, Err: tt.err}))

			snap := c.Snapshot()
			assert.Nil(t, snap.SessionID)
			assert.Equal(t, Message{Role: RoleAssistant, Content: tt.want}, snap.Messages[1])
		})
	}
}

func TestAdvisoryFromClassifiedErrors(t *testing.T) {
	srvErr := classified(t, 500)
	authErr := classified(t, 401)

	assert.Equal(t, AdvisoryServer, advisoryFor(srvErr))
	assert.Equal(t, AdvisoryAuth, advisoryFor(authErr))
}

func TestResolveIgnoresForeignResults(t *testing.T) {
	c := NewController()
	assert.False(t, c.Resolve(Result{Seq: 1, Reply: "x"}), "idle controller accepted a result")

	req, _ := c.Send("hi")
	assert.False(t, c.Resolve(Result{Seq: req.Seq + 1, Reply: "x"}))
	assert.Equal(t, Sending, c.State())

	assert.True(t, c.Resolve(Result{Seq: req.Seq, Reply: "ok", SessionID: sid(t, "1")}))
	assert.False(t, c.Resolve(Result{Seq: req.Seq, Reply: "dup"}), "duplicate result applied twice")
	assert.Equal(t, "ok", c.Snapshot().Messages[1].Content)
}

func TestNewChat(t *testing.T) {
	c := NewController()
	req, _ := c.Send("hi")

	assert.False(t, c.NewChat(), "new chat allowed while sending")
	assert.Len(t, c.Snapshot().Messages, 2)

	require.True(t, c.Resolve(Result{Seq: req.Seq, Reply: "hello", SessionID: sid(t, "9")}))
	require.True(t, c.NewChat())

	snap := c.Snapshot()
	assert.Nil(t, snap.SessionID)
	assert.Empty(t, snap.Messages)

	req, _ = c.Send("again")
	assert.Nil(t, req.SessionID)
}

func TestResume(t *testing.T) {
	c := NewController()
	history := []api.StoredMessage{
		{Role: "user", Content: "q"},
		{Role: "ai", Content: "a"},
	}
	require.True(t, c.Resume(sid(t, "3"), history))

	want := []Message{{Role: RoleUser, Content: "q"}, {Role: RoleAssistant, Content: "a"}}
	if diff := cmp.Diff(want, c.Snapshot().Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}

	req, _ := c.Send("next")
	require.NotNil(t, req.SessionID)
	assert.Equal(t, "3", req.SessionID.String())
	assert.False(t, c.Resume(sid(t, "4"), nil), "resume allowed while sending")
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewController()
	req, _ := c.Send("hi")
	require.True(t, c.Resolve(Result{Seq: req.Seq, Reply: "hello", SessionID: sid(t, "1")}))

	snap := c.Snapshot()
	snap.Messages[0].Content = "tampered"
	assert.Equal(t, "hi", c.Snapshot().Messages[0].Content)
}

func TestRequestDoAgainstSender(t *testing.T) {
	sender := &MockSender{reply: func(req api.ChatRequest) (*api.ChatResponse, error) {
		var id api.SessionID
		_ = json.Unmarshal([]byte(`"abc"`), &id)
		return &api.ChatResponse{Response: "hello", SessionID: id}, nil
	}}
	c := NewController()
	ctx := context.Background()

	req, _ := c.Send("hi")
	require.True(t, c.Resolve(req.Do(ctx, sender)))
	req, _ = c.Send("more")
	require.True(t, c.Resolve(req.Do(ctx, sender)))

	require.Len(t, sender.requests, 2)
	assert.Nil(t, sender.requests[0].SessionID)
	body, err := json.Marshal(sender.requests[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"more","session_id":"abc"}`, string(body))
}

func TestRequestDoFailure(t *testing.T) {
	sender := &MockSender{reply: func(api.ChatRequest) (*api.ChatResponse, error) {
		return nil, api.ErrServer
	}}
	req := Request{Seq: 7, Message: "hi"}
	res := req.Do(context.Background(), sender)
	assert.Equal(t, uint64(7), res.Seq)
	assert.ErrorIs(t, res.Err, api.ErrServer)
}
