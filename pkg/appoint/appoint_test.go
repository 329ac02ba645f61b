package appoint

import (
	"strings"
	"testing"
	"time"

	"github.com/canvasops/canvasctl/pkg/canvas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDates(t *testing.T) {
	input := `# spring class days
2026-01-12

2026-01-14
  2026-01-16
`
	dates, err := ParseDates(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), dates[2])
}

func TestParseDatesRejectsBadLines(t *testing.T) {
	_, err := ParseDates(strings.NewReader("01/12/2026\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad class date")
}

func TestGroupSlices15MinuteSlots(t *testing.T) {
	plan := DefaultPlan([]int{101, 102}, "Building 15, Room 2107")
	day := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	group := plan.Group(day)

	assert.Equal(t, "Office Hours 2026-01-12", group.Title)
	assert.Equal(t, []string{"course_101", "course_102"}, group.ContextCodes)
	assert.Equal(t, "Building 15, Room 2107", group.LocationName)
	assert.Equal(t, "private", group.ParticipantVisibility)
	assert.Equal(t, 1, group.ParticipantsPerAppointment)
	assert.True(t, group.Publish)

	// Sign-up opens a week ahead and the group spans the four slots.
	assert.Equal(t, "2026-01-05T00:00:00Z", group.StartAt)
	assert.Equal(t, "2026-01-12T10:00:00Z", group.EndAt)

	require.Len(t, group.NewAppointments, 4)
	assert.Equal(t, [2]string{"2026-01-12T09:00:00Z", "2026-01-12T09:15:00Z"}, group.NewAppointments[0])
	assert.Equal(t, [2]string{"2026-01-12T09:45:00Z", "2026-01-12T10:00:00Z"}, group.NewAppointments[3])
}

func TestGroupCustomSchedule(t *testing.T) {
	plan := DefaultPlan([]int{7}, "Zoom")
	plan.StartHour = 13
	plan.StartMinute = 30
	plan.SlotCount = 2
	plan.SlotLength = 20 * time.Minute

	group := plan.Group(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))

	require.Len(t, group.NewAppointments, 2)
	assert.Equal(t, [2]string{"2026-02-02T13:30:00Z", "2026-02-02T13:50:00Z"}, group.NewAppointments[0])
	assert.Equal(t, [2]string{"2026-02-02T13:50:00Z", "2026-02-02T14:10:00Z"}, group.NewAppointments[1])
	assert.Equal(t, "2026-02-02T14:10:00Z", group.EndAt)
}

func TestFutureWithPrefix(t *testing.T) {
	today := time.Date(2026, 1, 14, 11, 0, 0, 0, time.UTC)
	groups := []canvas.AppointmentGroup{
		{ID: 1, Title: "Office Hours 2026-01-12", StartAt: "2026-01-12T09:00:00Z"},
		{ID: 2, Title: "Office Hours 2026-01-14", StartAt: "2026-01-14T09:00:00Z"},
		{ID: 3, Title: "Office Hours 2026-01-16", StartAt: "2026-01-16T09:00:00Z"},
		{ID: 4, Title: "Exam Review", StartAt: "2026-01-20T09:00:00Z"},
		{ID: 5, Title: "Office Hours 2026-01-21", StartAt: ""},
	}

	future := FutureWithPrefix(groups, "Office Hours", today)
	require.Len(t, future, 1)
	assert.Equal(t, 3, future[0].ID)
}
