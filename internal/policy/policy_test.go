package policy

import (
	"testing"
	"time"

	"github.com/harunnryd/chatdesk/internal/domain"
	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 6, 1, hour, minute, 0, 0, time.UTC)
}

func TestOfficeHoursHalfOpen(t *testing.T) {
	hours, err := NewOfficeHours("09:00", "18:00", "UTC")
	require.NoError(t, err)

	assert.False(t, hours.Contains(at(8, 59)))
	assert.True(t, hours.Contains(at(9, 0)))
	assert.True(t, hours.Contains(at(17, 59)))
	assert.False(t, hours.Contains(at(18, 0)))
	assert.False(t, hours.Contains(at(23, 30)))
}

func TestOfficeHoursConvertsToLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	hours := OfficeHours{Start: 9 * time.Hour, End: 18 * time.Hour, Location: loc}

	// 07:00 UTC is 10:00 in UTC+3.
	assert.True(t, hours.Contains(at(7, 0)))
	assert.False(t, hours.Contains(at(16, 0)))
}

func TestOfficeHoursInvertedWindowNeverMatches(t *testing.T) {
	hours, err := NewOfficeHours("22:00", "06:00", "UTC")
	require.NoError(t, err)
	for h := 0; h < 24; h++ {
		assert.False(t, hours.Contains(at(h, 0)), "hour %d", h)
	}
}

func TestNewOfficeHoursRejectsBadInput(t *testing.T) {
	_, err := NewOfficeHours("9am", "18:00", "UTC")
	assert.ErrorIs(t, err, chatdeskErrors.ErrInvalidInput)

	_, err = NewOfficeHours("09:00", "18:00", "Mars/Olympus")
	assert.ErrorIs(t, err, chatdeskErrors.ErrInvalidInput)

	hours, err := NewOfficeHours("09:00:30", "18:00", "local")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Second, hours.Start)
	assert.Equal(t, time.Local, hours.Location)
}

func TestSelectMainTeam(t *testing.T) {
	hours, err := NewOfficeHours("09:00", "18:00", "UTC")
	require.NoError(t, err)
	r := NewTeamRouter(hours, domain.TeamA, domain.TeamC)

	assert.Equal(t, domain.TeamA, r.SelectMainTeam(at(10, 0), false))
	assert.Equal(t, domain.TeamC, r.SelectMainTeam(at(20, 0), false))
	assert.Equal(t, domain.TeamA, r.SelectMainTeam(at(20, 0), true))

	assert.True(t, r.BusinessHours(at(3, 0), true))
	assert.False(t, r.BusinessHours(at(3, 0), false))
}
