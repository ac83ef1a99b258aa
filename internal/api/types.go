package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionID is the opaque chat session token issued by the backend.
// It keeps the raw JSON value so it is sent back exactly as received.
type SessionID struct {
	raw json.RawMessage
}

// ParseSessionID builds a SessionID from user input (e.g. a CLI argument).
// Integers are kept numeric; anything else becomes a JSON string.
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SessionID{}, fmt.Errorf("empty session id")
	}
	var n json.Number
	if err := json.Unmarshal([]byte(s), &n); err == nil {
		return SessionID{raw: json.RawMessage(s)}, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID{raw: b}, nil
}

// String renders the id for display and URL paths.
func (id SessionID) String() string {
	var s string
	if err := json.Unmarshal(id.raw, &s); err == nil {
		return s
	}
	return string(id.raw)
}

// Equal compares raw tokens.
func (id SessionID) Equal(other SessionID) bool {
	return bytes.Equal(id.raw, other.raw)
}

func (id SessionID) MarshalJSON() ([]byte, error) {
	if len(id.raw) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

func (id *SessionID) UnmarshalJSON(data []byte) error {
	id.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

// IsZero reports whether the id is absent (missing or JSON null).
func (id SessionID) IsZero() bool {
	return len(id.raw) == 0 || string(id.raw) == "null"
}

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is the body of POST /ai/chat. A nil SessionID is sent as null.
type ChatRequest struct {
	Message   string     `json:"message"`
	SessionID *SessionID `json:"session_id"`
}

// ChatResponse is the mentor's reply.
type ChatResponse struct {
	SessionID SessionID `json:"session_id"`
	Response  string    `json:"response"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// SessionSummary is one entry of GET /ai/session.
type SessionSummary struct {
	ID        SessionID `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt string    `json:"created_at,omitempty"`
}

// StoredMessage is one message of a stored session. Role is "user" or "ai".
type StoredMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// =============================================================================
// INTERNSHIPS
// =============================================================================

// Internship is a listing as returned by the backend. Treated as immutable.
type Internship struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	Duration  string   `json:"duration"`
	Stipend   string   `json:"stipend"`
	ApplyLink string   `json:"link"`
	SkillsCSV string   `json:"skills"`
	SkillGap  []string `json:"skill_gap,omitempty"`
	Source    string   `json:"source,omitempty"`
	ApplyBy   string   `json:"apply_by,omitempty"`
}

// Skills splits SkillsCSV, dropping blanks.
func (in Internship) Skills() []string {
	var out []string
	for _, s := range strings.Split(in.SkillsCSV, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RecommendationEntry is an internship with its profile match score (0..100).
type RecommendationEntry struct {
	Internship
	MatchPercentage float64 `json:"match_percentage"`
}

type listEnvelope struct {
	Source string       `json:"source,omitempty"`
	Data   []Internship `json:"data"`
}

// =============================================================================
// FAKE CHECK
// =============================================================================

// FakeReport is the backend's risk analysis for a listing URL.
type FakeReport struct {
	RiskLevel            string   `json:"risk_level"`
	RiskScore            float64  `json:"risk_score"`
	ConfidencePercentage float64  `json:"confidence_percentage"`
	Reasons              []string `json:"reasons"`
}

type fakeCheckRequest struct {
	URL string `json:"url"`
}

// =============================================================================
// AUTH & PROFILE
// =============================================================================

// Credentials for POST /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest for POST /signup.
type SignupRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// TokenResponse is returned by login and signup.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Profile is the student's academic profile used for matching.
type Profile struct {
	Year     int      `json:"year"`
	Semester int      `json:"semester"`
	College  string   `json:"college"`
	Course   string   `json:"course"`
	Skills   []string `json:"skills"`
	Projects []string `json:"projects"`
}

// HealthResponse is GET /.
type HealthResponse struct {
	Status string `json:"status"`
}

// ParseTimestamp parses backend timestamps (RFC 3339 or naive ISO 8601).
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
