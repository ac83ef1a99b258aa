package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"internpath/internal/discovery"
	"internpath/internal/fakecheck"
)

func TestThemeFor(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	assert.True(t, ThemeFor("dark").IsDark)
	assert.False(t, ThemeFor("light").IsDark)
	assert.False(t, ThemeFor("auto").IsDark)
}

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, DetectTheme().IsDark)
}

func TestBandAndSeverityColors(t *testing.T) {
	assert.Equal(t, High, BandColor(discovery.BandHigh))
	assert.Equal(t, Medium, BandColor(discovery.BandMedium))
	assert.Equal(t, Low, BandColor(discovery.BandLow))

	// A high risk listing is shown in the "bad" colour.
	assert.Equal(t, Low, SeverityColor(fakecheck.SeverityHigh))
	assert.Equal(t, Info, SeverityColor(fakecheck.SeverityUnknown))
}

func TestMatchBadgeContainsPercentage(t *testing.T) {
	s := NewStyles(LightTheme())
	assert.Contains(t, s.MatchBadge(89.6, discovery.BandHigh), "90% match")
}
