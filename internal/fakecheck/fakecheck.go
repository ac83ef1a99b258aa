// Package fakecheck prepares listing URLs for the backend's fake-internship
// analysis and turns its answer into something displayable.
package fakecheck

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"internpath/internal/api"
	"internpath/internal/logging"
)

// FailedMessage is shown for any failed analysis.
const FailedMessage = "failed to analyse"

// ErrInvalidURL is returned for input that is not an http(s) URL with a host.
var ErrInvalidURL = errors.New("invalid listing url")

// Severity is the parsed risk level.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	}
	return "unknown"
}

// ParseSeverity reads "High Risk", "Medium Risk", "Low Risk" (and bare high/medium/low).
func ParseSeverity(level string) Severity {
	l := strings.ToLower(strings.TrimSpace(level))
	l = strings.TrimSuffix(l, " risk")
	switch l {
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	}
	return SeverityUnknown
}

// Checker is the slice of the API client the check needs.
type Checker interface {
	CheckFakeInternship(ctx context.Context, rawURL string) (*api.FakeReport, error)
}

// Report is a displayable analysis.
type Report struct {
	URL        string
	Site       string // registrable domain, e.g. internshala.com
	Severity   Severity
	RiskLevel  string
	RiskScore  float64
	Confidence float64
	Reasons    []string
}

// Normalize trims raw, defaults the scheme to https and rejects anything that
// is not an http(s) URL with a host.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" || !strings.Contains(u.Hostname(), ".") {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	u.Host = strings.ToLower(u.Host)
	return u.String(), nil
}

// Site returns the registrable domain of a normalized URL, or its host when
// the public suffix list has no answer.
func Site(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if site, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return site
	}
	return host
}

// Check normalizes raw and asks the backend to analyse it. Every error it
// returns displays as FailedMessage.
func Check(ctx context.Context, c Checker, raw string) (*Report, error) {
	log := logging.Get(logging.CategoryCheck)

	normalized, err := Normalize(raw)
	if err != nil {
		log.Warn("rejected url %q: %v", raw, err)
		return nil, err
	}

	res, err := c.CheckFakeInternship(ctx, normalized)
	if err != nil {
		log.Error("analysis of %s failed: %v", normalized, err)
		return nil, fmt.Errorf("%s: %w", FailedMessage, err)
	}

	report := &Report{
		URL:        normalized,
		Site:       Site(normalized),
		Severity:   ParseSeverity(res.RiskLevel),
		RiskLevel:  res.RiskLevel,
		RiskScore:  res.RiskScore,
		Confidence: res.ConfidencePercentage,
		Reasons:    append([]string(nil), res.Reasons...),
	}
	log.Info("%s: %s (score %.0f)", report.Site, report.Severity, report.RiskScore)
	return report, nil
}
