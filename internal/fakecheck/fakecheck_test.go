package fakecheck

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internpath/internal/api"
	"internpath/internal/api/apitest"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://internshala.com/internship/detail/1", "https://internshala.com/internship/detail/1", false},
		{"  internshala.com/x  ", "https://internshala.com/x", false},
		{"HTTP://Example.COM/Path", "http://example.com/Path", false},
		{"", "", true},
		{"ftp://example.com/file", "", true},
		{"https://", "", true},
		{"localhost", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSite(t *testing.T) {
	assert.Equal(t, "internshala.com", Site("https://jobs.internshala.com/a"))
	assert.Equal(t, "example.co.uk", Site("https://careers.example.co.uk/"))
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, ParseSeverity("High Risk"))
	assert.Equal(t, SeverityMedium, ParseSeverity("medium risk"))
	assert.Equal(t, SeverityLow, ParseSeverity("Low"))
	assert.Equal(t, SeverityUnknown, ParseSeverity("???"))
}

func TestCheckAgainstBackend(t *testing.T) {
	srv := apitest.New(t)
	srv.FakeReports["https://scam.example.com/apply"] = api.FakeReport{
		RiskLevel: "High Risk", RiskScore: 85, ConfidencePercentage: 90,
		Reasons: []string{"Asks for registration fee"},
	}

	report, err := Check(context.Background(), api.NewClient(srv.URL), "scam.example.com/apply")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, report.Severity)
	assert.Equal(t, "example.com", report.Site)
	assert.Equal(t, []string{"Asks for registration fee"}, report.Reasons)
	assert.JSONEq(t, `{"url":"https://scam.example.com/apply"}`, srv.RequestsTo("/detect-fake-internship")[0].Body)
}

func TestCheckInvalidURLIssuesNoRequest(t *testing.T) {
	srv := apitest.New(t)
	_, err := Check(context.Background(), api.NewClient(srv.URL), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
	assert.Empty(t, srv.Requests())
}

type failingChecker struct{}

func (failingChecker) CheckFakeInternship(context.Context, string) (*api.FakeReport, error) {
	return nil, errors.New("boom")
}

func TestCheckFailureMessage(t *testing.T) {
	_, err := Check(context.Background(), failingChecker{}, "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), FailedMessage)
}
