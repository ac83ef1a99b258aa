// Package apitest provides an in-process fake of the internship platform backend.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"internpath/internal/api"
)

// DomainKeywords is how the fake matches /jobs/filter?domain= against titles and skills.
var DomainKeywords = map[string][]string{
	"ai":     {"ai", "machine learning", "ml", "deep learning"},
	"web":    {"web", "frontend", "backend", "react", "html"},
	"data":   {"data", "analytics", "sql", "pandas"},
	"mobile": {"mobile", "android", "ios", "flutter"},
}

// Recorded is one request the fake received.
type Recorded struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	Body          string
}

// Server is a chi-routed fake backend. Exported fields may be set before
// requests are made; use Lock/Unlock when changing them afterwards.
type Server struct {
	*httptest.Server

	sync.Mutex
	Internships     []api.Internship
	Recommendations []api.RecommendationEntry
	FakeReports     map[string]api.FakeReport
	// Token, when non-empty, is required on authenticated routes.
	Token string
	// Users maps email to password for /login.
	Users map[string]string
	// Fail forces a status code for a route path (e.g. "/ai/chat": 500).
	Fail map[string]int
	// Reply computes the mentor's answer. Defaults to echoing.
	Reply func(message string) string

	requests    []Recorded
	sessions    map[int64][]api.StoredMessage
	nextSession int64
	profile     *api.Profile
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		FakeReports: make(map[string]api.FakeReport),
		Users:       make(map[string]string),
		Fail:        make(map[string]int),
		sessions:    make(map[int64][]api.StoredMessage),
		nextSession: 1,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Recorded {
	s.Lock()
	defer s.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// RequestsTo returns the recorded requests for one path.
func (s *Server) RequestsTo(path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// SeedSession stores a transcript under id.
func (s *Server) SeedSession(id int64, msgs []api.StoredMessage) {
	s.Lock()
	defer s.Unlock()
	s.sessions[id] = msgs
	if id >= s.nextSession {
		s.nextSession = id + 1
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.failures)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/login", s.login)
	r.Post("/signup", s.signup)
	r.Post("/detect-fake-internship", s.fakeCheck)

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.listJobs)
		r.Get("/search", s.searchJobs)
		r.Get("/filter", s.filterJobs)
		r.With(s.requireAuth).Get("/recommendation", s.recommendations)
	})

	r.Route("/ai", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/chat", s.chat)
		r.Get("/session", s.listSessions)
		r.Get("/session/{id}/messages", s.sessionMessages)
		r.Delete("/session/{id}", s.deleteSession)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.getProfile)
		r.Post("/", s.createProfile)
		r.Put("/", s.updateProfile)
	})

	return r
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		s.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		s.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		code, ok := s.Fail[r.URL.Path]
		s.Unlock()
		if ok {
			writeJSON(w, code, map[string]string{"detail": http.StatusText(code)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		token := s.Token
		s.Unlock()
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.Lock()
	pw, ok := s.Users[creds.Email]
	token := s.Token
	s.Unlock()
	if !ok || pw != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.Lock()
	defer s.Unlock()
	if _, exists := s.Users[req.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
		return
	}
	s.Users[req.Email] = req.Password
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: s.Token, TokenType: "bearer"})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	data := append([]api.Internship(nil), s.Internships...)
	s.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func (s *Server) searchJobs(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": s.matching([]string{q})})
}

func (s *Server) filterJobs(w http.ResponseWriter, r *http.Request) {
	keywords, ok := DomainKeywords[r.URL.Query().Get("domain")]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Unknown domain"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": s.matching(keywords)})
}

func (s *Server) matching(keywords []string) []api.Internship {
	s.Lock()
	defer s.Unlock()
	out := []api.Internship{}
	for _, in := range s.Internships {
		hay := strings.ToLower(in.Title + " " + in.Company + " " + in.SkillsCSV)
		for _, k := range keywords {
			if k != "" && strings.Contains(hay, k) {
				out = append(out, in)
				break
			}
		}
	}
	return out
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	data := append([]api.RecommendationEntry{}, s.Recommendations...)
	s.Unlock()
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) fakeCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.Lock()
	report, ok := s.FakeReports[req.URL]
	s.Unlock()
	if !ok {
		report = api.FakeReport{RiskLevel: "Low Risk", RiskScore: 5, ConfidencePercentage: 80, Reasons: []string{}}
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		SessionID *int64 `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	s.Lock()
	defer s.Unlock()

	var id int64
	if req.SessionID == nil || *req.SessionID == 0 {
		id = s.nextSession
		s.nextSession++
		s.sessions[id] = nil
	} else {
		id = *req.SessionID
		if _, ok := s.sessions[id]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Session not found or you don't have access"})
			return
		}
	}

	reply := "echo: " + req.Message
	if s.Reply != nil {
		reply = s.Reply(req.Message)
	}
	s.sessions[id] = append(s.sessions[id],
		api.StoredMessage{Role: "user", Content: req.Message},
		api.StoredMessage{Role: "ai", Content: reply},
	)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": id,
		"response":   reply,
		"timestamp":  "2025-01-01T00:00:00",
	})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	defer s.Unlock()
	out := []map[string]interface{}{}
	for id := s.nextSession - 1; id >= 1; id-- {
		if _, ok := s.sessions[id]; ok {
			out = append(out, map[string]interface{}{"id": id, "created_at": "2025-01-01T00:00:00"})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) sessionMessages(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid session id"})
		return
	}
	s.Lock()
	msgs, ok := s.sessions[id]
	s.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Session not found or you don't have access"})
		return
	}
	writeJSON(w, http.StatusOK, append([]api.StoredMessage{}, msgs...))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid session id"})
		return
	}
	s.Lock()
	defer s.Unlock()
	if _, ok := s.sessions[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Session not found or you don't have access"})
		return
	}
	delete(s.sessions, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	p := s.profile
	s.Unlock()
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var p api.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.Lock()
	defer s.Unlock()
	if s.profile != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "User Profile already exits"})
		return
	}
	s.profile = &p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var p api.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	s.Lock()
	defer s.Unlock()
	if s.profile == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Profile not found"})
		return
	}
	s.profile = &p
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, `{"error":%q}`, err.Error())
	}
}
