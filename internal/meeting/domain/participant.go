package domain

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

// ParticipantRole describes a participant's role within a meeting.
type ParticipantRole int

const (
	// ParticipantRoleUnspecified represents an invalid participant role.
	ParticipantRoleUnspecified ParticipantRole = iota
	// ParticipantRoleHost indicates the participant is the meeting host.
	ParticipantRoleHost
	// ParticipantRoleAttendee indicates a regular participant.
	ParticipantRoleAttendee
)

// ParticipantState describes whether a participant is currently in the meeting.
type ParticipantState int

const (
	// ParticipantStateUnspecified represents an invalid participant state.
	ParticipantStateUnspecified ParticipantState = iota
	// ParticipantStateJoined indicates the participant is in the meeting.
	ParticipantStateJoined
	// ParticipantStateLeft indicates the participant has left the meeting.
	ParticipantStateLeft
)

var (
	// ErrEmptyParticipantEmail indicates a missing participant email.
	ErrEmptyParticipantEmail = apperrors.New(apperrors.CodeParticipantEmptyEmail, "participant email is required")
)

// Participant represents a user's membership in one meeting. The key is the
// (MeetingID, Email) pair; there is never more than one row per pair.
type Participant struct {
	MeetingID string
	Email     string
	Role      ParticipantRole
	State     ParticipantState
	JoinedAt  time.Time
	UpdatedAt time.Time
}

// AdmitParticipantInput describes the data needed to admit a participant.
type AdmitParticipantInput struct {
	Meeting Meeting
	Email   string
}

// AdmitParticipant builds the joined participant row for a meeting. The role
// is derived from the meeting's host email so host status cannot drift from
// the aggregate root.
func AdmitParticipant(input AdmitParticipantInput, now func() time.Time) (Participant, error) {
	if now == nil {
		now = time.Now
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return Participant{}, ErrEmptyParticipantEmail
	}

	role := ParticipantRoleAttendee
	if email == input.Meeting.HostEmail {
		role = ParticipantRoleHost
	}

	joinedAt := now().UTC()
	return Participant{
		MeetingID: input.Meeting.ID,
		Email:     email,
		Role:      role,
		State:     ParticipantStateJoined,
		JoinedAt:  joinedAt,
		UpdatedAt: joinedAt,
	}, nil
}

// RoleLabel returns the string label for a participant role.
func RoleLabel(role ParticipantRole) string {
	switch role {
	case ParticipantRoleHost:
		return "HOST"
	case ParticipantRoleAttendee:
		return "ATTENDEE"
	default:
		return "UNSPECIFIED"
	}
}

// RoleFromLabel converts a role label to a ParticipantRole value.
func RoleFromLabel(label string) ParticipantRole {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "HOST":
		return ParticipantRoleHost
	case "ATTENDEE":
		return ParticipantRoleAttendee
	default:
		return ParticipantRoleUnspecified
	}
}

// StateLabel returns the string label for a participant state.
func StateLabel(state ParticipantState) string {
	switch state {
	case ParticipantStateJoined:
		return "JOINED"
	case ParticipantStateLeft:
		return "LEFT"
	default:
		return "UNSPECIFIED"
	}
}

// StateFromLabel converts a state label to a ParticipantState value.
func StateFromLabel(label string) ParticipantState {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "JOINED":
		return ParticipantStateJoined
	case "LEFT":
		return ParticipantStateLeft
	default:
		return ParticipantStateUnspecified
	}
}
