package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// AppointmentGroupRequest is the create payload for an appointment group.
// NewAppointments carries [start, end] ISO8601 pairs so the group and its
// slots are created in a single call.
type AppointmentGroupRequest struct {
	Title                         string      `json:"title"`
	ContextCodes                  []string    `json:"context_codes"`
	SubContextCodes               []string    `json:"sub_context_codes"`
	Description                   string      `json:"description"`
	LocationName                  string      `json:"location_name"`
	MaxAppointmentsPerParticipant int         `json:"max_appointments_per_participant"`
	MinAppointmentsPerParticipant int         `json:"min_appointments_per_participant"`
	ParticipantsPerAppointment    int         `json:"participants_per_appointment"`
	ParticipantVisibility         string      `json:"participant_visibility"`
	StartAt                       string      `json:"start_at"`
	EndAt                         string      `json:"end_at"`
	NewAppointments               [][2]string `json:"new_appointments"`
	Publish                       bool        `json:"publish"`
}

type AppointmentGroup struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

func (c *Client) CreateAppointmentGroup(ctx context.Context, req AppointmentGroupRequest) (*AppointmentGroup, error) {
	payload := map[string]AppointmentGroupRequest{"appointment_group": req}
	var group AppointmentGroup
	if err := c.postJSON(ctx, "api/v1/appointment_groups", payload, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ManageableAppointmentGroups lists every appointment group the token owner
// can manage, past and future.
func (c *Client) ManageableAppointmentGroups(ctx context.Context) ([]AppointmentGroup, error) {
	q := url.Values{}
	q.Set("scope", "manageable")
	var groups []AppointmentGroup
	err := c.paginate(ctx, "api/v1/appointment_groups", q, func(body []byte) error {
		var page []AppointmentGroup
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		groups = append(groups, page...)
		return nil
	})
	return groups, err
}

func (c *Client) DeleteAppointmentGroup(ctx context.Context, groupID int) error {
	return c.delete(ctx, fmt.Sprintf("api/v1/appointment_groups/%d", groupID))
}
