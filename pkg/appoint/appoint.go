// Package appoint plans recurring office-hours appointment groups: one group
// per class day, pre-sliced into individual sign-up slots, released to
// students a fixed lead time before the day.
package appoint

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/canvasops/canvasctl/pkg/canvas"
)

const dateLayout = "2006-01-02"

// Plan describes the office-hours pattern shared by every class day.
type Plan struct {
	CourseIDs   []int
	Title       string // title prefix, date is appended
	Description string
	Location    string // room or meeting URL
	StartHour   int    // first slot start, local clock hour
	StartMinute int
	SlotLength  time.Duration
	SlotCount   int
	ReleaseLead time.Duration // how long before the day sign-up opens
}

// DefaultPlan matches the standing pattern: four 15-minute slots from 9:00,
// released one week ahead.
func DefaultPlan(courseIDs []int, location string) Plan {
	return Plan{
		CourseIDs:   courseIDs,
		Title:       "Office Hours",
		Description: "15-minute individual office hour slots",
		Location:    location,
		StartHour:   9,
		SlotLength:  15 * time.Minute,
		SlotCount:   4,
		ReleaseLead: 7 * 24 * time.Hour,
	}
}

// ParseDates reads class dates, one YYYY-MM-DD per line. Blank lines and
// #-comments are skipped.
func ParseDates(r io.Reader) ([]time.Time, error) {
	var dates []time.Time
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		day, err := time.Parse(dateLayout, line)
		if err != nil {
			return nil, fmt.Errorf("bad class date %q: %w", line, err)
		}
		dates = append(dates, day)
	}
	return dates, scanner.Err()
}

// Group builds the appointment-group request for a single class day.
func (p Plan) Group(day time.Time) canvas.AppointmentGroupRequest {
	contextCodes := make([]string, len(p.CourseIDs))
	for i, id := range p.CourseIDs {
		contextCodes[i] = fmt.Sprintf("course_%d", id)
	}

	first := day.Add(time.Duration(p.StartHour)*time.Hour + time.Duration(p.StartMinute)*time.Minute)
	slots := make([][2]string, p.SlotCount)
	for i := 0; i < p.SlotCount; i++ {
		start := first.Add(time.Duration(i) * p.SlotLength)
		end := start.Add(p.SlotLength)
		slots[i] = [2]string{start.Format(time.RFC3339), end.Format(time.RFC3339)}
	}

	return canvas.AppointmentGroupRequest{
		Title:                         fmt.Sprintf("%s %s", p.Title, day.Format(dateLayout)),
		ContextCodes:                  contextCodes,
		SubContextCodes:               contextCodes,
		Description:                   p.Description,
		LocationName:                  p.Location,
		MaxAppointmentsPerParticipant: 1,
		MinAppointmentsPerParticipant: 1,
		ParticipantsPerAppointment:    1,
		ParticipantVisibility:         "private",
		StartAt:                       day.Add(-p.ReleaseLead).Format(time.RFC3339),
		EndAt:                         first.Add(time.Duration(p.SlotCount) * p.SlotLength).Format(time.RFC3339),
		NewAppointments:               slots,
		Publish:                       true,
	}
}

// FutureWithPrefix filters groups to those titled with prefix and starting
// strictly after today.
func FutureWithPrefix(groups []canvas.AppointmentGroup, prefix string, today time.Time) []canvas.AppointmentGroup {
	day := today.Truncate(24 * time.Hour)
	var out []canvas.AppointmentGroup
	for _, g := range groups {
		if !strings.HasPrefix(g.Title, prefix) || g.StartAt == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, g.StartAt)
		if err != nil {
			continue
		}
		if start.Truncate(24 * time.Hour).After(day) {
			out = append(out, g)
		}
	}
	return out
}
