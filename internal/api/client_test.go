package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internpath/internal/api"
	"internpath/internal/api/apitest"
)

type recorder struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (r *recorder) Record(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string][]string)
	}
	r.outcomes[op] = append(r.outcomes[op], outcome)
}

func TestBearerTokenAttachedOnlyWhenPresent(t *testing.T) {
	srv := apitest.New(t)
	ctx := context.Background()

	anon := api.NewClient(srv.URL)
	_, err := anon.ListInternships(ctx)
	require.NoError(t, err)

	authed := api.NewClient(srv.URL, api.WithTokenSource(api.StaticToken("tok")))
	_, err = authed.ListInternships(ctx)
	require.NoError(t, err)

	reqs := srv.RequestsTo("/jobs/")
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Authorization)
	assert.Equal(t, "Bearer tok", reqs[1].Authorization)
}

func TestChatSessionIDRoundTrip(t *testing.T) {
	srv := apitest.New(t)
	c := api.NewClient(srv.URL)
	ctx := context.Background()

	first, err := c.Chat(ctx, api.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", first.Response)
	require.False(t, first.SessionID.IsZero())

	_, err = c.Chat(ctx, api.ChatRequest{Message: "more", SessionID: &first.SessionID})
	require.NoError(t, err)

	reqs := srv.RequestsTo("/ai/chat")
	require.Len(t, reqs, 2)
	assert.JSONEq(t, `{"message":"hi","session_id":null}`, reqs[0].Body)
	assert.JSONEq(t, `{"message":"more","session_id":1}`, reqs[1].Body)
}

func TestChatUnknownSessionIsNotFound(t *testing.T) {
	srv := apitest.New(t)
	c := api.NewClient(srv.URL)

	id, err := api.ParseSessionID("42")
	require.NoError(t, err)
	_, err = c.Chat(context.Background(), api.ChatRequest{Message: "x", SessionID: &id})
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, api.CategoryNetworkOrUnknown, api.CategoryOf(err))
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		status   int
		want     api.Category
		sentinel error
	}{
		{http.StatusUnauthorized, api.CategoryAuthRequired, api.ErrAuth},
		{http.StatusInternalServerError, api.CategoryServerError, api.ErrServer},
		{http.StatusBadGateway, api.CategoryServerError, api.ErrServer},
		{http.StatusBadRequest, api.CategoryValidationRejected, api.ErrValidation},
		{http.StatusConflict, api.CategoryValidationRejected, api.ErrValidation},
		{http.StatusUnprocessableEntity, api.CategoryValidationRejected, api.ErrValidation},
		{http.StatusTeapot, api.CategoryNetworkOrUnknown, api.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := apitest.New(t)
			srv.Fail["/ai/chat"] = tt.status
			c := api.NewClient(srv.URL)

			_, err := c.Chat(context.Background(), api.ChatRequest{Message: "hi"})
			require.Error(t, err)
			assert.Equal(t, tt.want, api.CategoryOf(err))
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.NotEmpty(t, apiErr.RequestID)
		})
	}
}

func TestTransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := api.NewClient(url).ListInternships(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.CategoryNetworkOrUnknown, api.CategoryOf(err))
	assert.ErrorIs(t, err, api.ErrNetwork)
}

func TestTimeoutIsNetwork(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := api.NewClient(srv.URL, api.WithTimeout(20*time.Millisecond))
	_, err := c.Recommendations(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.CategoryNetworkOrUnknown, api.CategoryOf(err))
}

func TestContextCancelIsNetwork(t *testing.T) {
	srv := apitest.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.NewClient(srv.URL).ListInternships(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, api.CategoryNetworkOrUnknown, api.CategoryOf(err))
}

func TestSearchAndFilterQueryEncoding(t *testing.T) {
	srv := apitest.New(t)
	srv.Internships = []api.Internship{
		{ID: 1, Title: "Frontend Developer", SkillsCSV: "HTML, CSS, React"},
		{ID: 2, Title: "Data Science Intern", SkillsCSV: "Python, Pandas"},
	}
	c := api.NewClient(srv.URL)
	ctx := context.Background()

	got, err := c.SearchInternships(ctx, "data science")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	got, err = c.FilterInternships(ctx, "web")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"HTML", "CSS", "React"}, got[0].Skills())

	assert.Equal(t, "q=data+science", srv.RequestsTo("/jobs/search")[0].RawQuery)
	assert.Equal(t, "domain=web", srv.RequestsTo("/jobs/filter")[0].RawQuery)
}

func TestRecommendationsDecode(t *testing.T) {
	srv := apitest.New(t)
	srv.Recommendations = []api.RecommendationEntry{
		{Internship: api.Internship{ID: 1, Title: "A", SkillGap: []string{"Go"}}, MatchPercentage: 90},
		{Internship: api.Internship{ID: 2, Title: "B"}, MatchPercentage: 60},
	}

	got, err := api.NewClient(srv.URL).Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, 90.0, got[0].MatchPercentage)
	assert.Equal(t, []string{"Go"}, got[0].SkillGap)
}

func TestAuthRequiredWithoutToken(t *testing.T) {
	srv := apitest.New(t)
	srv.Token = "secret"

	_, err := api.NewClient(srv.URL).Recommendations(context.Background())
	assert.Equal(t, api.CategoryAuthRequired, api.CategoryOf(err))

	_, err = api.NewClient(srv.URL, api.WithTokenSource(api.StaticToken("secret"))).Recommendations(context.Background())
	assert.NoError(t, err)
}

func TestLoginSignupAndProfile(t *testing.T) {
	srv := apitest.New(t)
	srv.Token = "jwt"
	c := api.NewClient(srv.URL, api.WithTokenSource(api.StaticToken("jwt")))
	ctx := context.Background()

	tok, err := c.Signup(ctx, api.SignupRequest{FirstName: "A", SecondName: "B", Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok.AccessToken)

	_, err = c.Signup(ctx, api.SignupRequest{Email: "a@b.c", Password: "pw"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.CategoryValidationRejected, apiErr.Category())
	assert.Equal(t, "Email already registered", apiErr.Detail)

	_, err = c.Login(ctx, api.Credentials{Email: "a@b.c", Password: "wrong"})
	assert.Equal(t, api.CategoryAuthRequired, api.CategoryOf(err))

	_, err = c.GetProfile(ctx)
	assert.True(t, api.IsNotFound(err))

	p := api.Profile{Year: 3, Semester: 5, College: "X", Course: "CS", Skills: []string{"Go"}}
	_, err = c.CreateProfile(ctx, p)
	require.NoError(t, err)
	_, err = c.CreateProfile(ctx, p)
	assert.ErrorIs(t, err, api.ErrValidation)

	p.Skills = append(p.Skills, "SQL")
	_, err = c.UpdateProfile(ctx, p)
	require.NoError(t, err)

	got, err := c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
}

func TestSessionsListShowDelete(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedSession(7, []api.StoredMessage{{Role: "user", Content: "q"}, {Role: "ai", Content: "a"}})
	c := api.NewClient(srv.URL)
	ctx := context.Background()

	sessions, err := c.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "7", sessions[0].ID.String())

	msgs, err := c.SessionMessages(ctx, sessions[0].ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	require.NoError(t, c.DeleteSession(ctx, sessions[0].ID))
	_, err = c.SessionMessages(ctx, sessions[0].ID)
	assert.True(t, api.IsNotFound(err))
}

func TestFakeCheckAndHealth(t *testing.T) {
	srv := apitest.New(t)
	srv.FakeReports["https://scam.example"] = api.FakeReport{RiskLevel: "High Risk", RiskScore: 80, Reasons: []string{"asks for fee"}}
	c := api.NewClient(srv.URL)
	ctx := context.Background()

	report, err := c.CheckFakeInternship(ctx, "https://scam.example")
	require.NoError(t, err)
	assert.Equal(t, "High Risk", report.RiskLevel)
	assert.Equal(t, []string{"asks for fee"}, report.Reasons)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestRecorderSeesOutcomes(t *testing.T) {
	srv := apitest.New(t)
	srv.Fail["/jobs/search"] = http.StatusInternalServerError
	rec := &recorder{}
	c := api.NewClient(srv.URL, api.WithRecorder(rec))

	_, _ = c.ListInternships(context.Background())
	_, _ = c.SearchInternships(context.Background(), "x")

	assert.Equal(t, []string{"ok"}, rec.outcomes["list internships"])
	assert.Equal(t, []string{"server_error"}, rec.outcomes["search internships"])
}

func TestSessionIDMarshalling(t *testing.T) {
	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal([]byte(`{"session_id":12,"response":"r"}`), &resp))
	assert.Equal(t, "12", resp.SessionID.String())

	out, err := json.Marshal(api.ChatRequest{Message: "m", SessionID: &resp.SessionID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"m","session_id":12}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"session_id":"abc","response":"r"}`), &resp))
	assert.Equal(t, "abc", resp.SessionID.String())
	out, err = json.Marshal(api.ChatRequest{Message: "m", SessionID: &resp.SessionID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"m","session_id":"abc"}`, string(out))

	parsed, err := api.ParseSessionID("abc")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(resp.SessionID))

	_, err = api.ParseSessionID("  ")
	assert.Error(t, err)
}
