// Package invite provides meeting invitation management.
package invite

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/huddle.space/internal/id"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

var (
	// ErrEmptyMeetingID indicates a missing meeting ID.
	ErrEmptyMeetingID = apperrors.New(apperrors.CodeInviteEmptyMeetingID, "meeting id is required")
	// ErrEmptyInvitee indicates a missing invitee email.
	ErrEmptyInvitee = apperrors.New(apperrors.CodeInviteEmptyInvitee, "invitee email is required")
)

// Status represents the lifecycle status of an invitation.
type Status int

const (
	// StatusUnspecified represents an invalid invitation status.
	StatusUnspecified Status = iota
	// StatusPending indicates the invitee has not responded yet.
	StatusPending
	// StatusAccepted indicates the invitee accepted the invitation.
	StatusAccepted
	// StatusDeclined indicates the invitee declined the invitation.
	StatusDeclined
)

// Invitation represents one invitation of a user to a meeting. Accepting or
// declining is terminal; a fresh invitation is required to ask again.
type Invitation struct {
	ID           string
	MeetingID    string
	InviteeEmail string
	Status       Status
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateInvitationInput describes the metadata needed to create an invitation.
type CreateInvitationInput struct {
	MeetingID    string
	InviteeEmail string
	CreatedBy    string
}

// CreateInvitation creates a new pending invitation with a generated ID and
// timestamps. Prior invitations to the same address are left untouched.
func CreateInvitation(input CreateInvitationInput, now func() time.Time, idGenerator func() (string, error)) (Invitation, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateInvitationInput(input)
	if err != nil {
		return Invitation{}, err
	}

	inviteID, err := idGenerator()
	if err != nil {
		return Invitation{}, fmt.Errorf("generate invitation id: %w", err)
	}

	createdAt := now().UTC()
	return Invitation{
		ID:           inviteID,
		MeetingID:    normalized.MeetingID,
		InviteeEmail: normalized.InviteeEmail,
		Status:       StatusPending,
		CreatedBy:    normalized.CreatedBy,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// NormalizeCreateInvitationInput trims and validates invitation input metadata.
func NormalizeCreateInvitationInput(input CreateInvitationInput) (CreateInvitationInput, error) {
	input.MeetingID = strings.TrimSpace(input.MeetingID)
	if input.MeetingID == "" {
		return CreateInvitationInput{}, ErrEmptyMeetingID
	}
	input.InviteeEmail = strings.ToLower(strings.TrimSpace(input.InviteeEmail))
	if input.InviteeEmail == "" {
		return CreateInvitationInput{}, ErrEmptyInvitee
	}
	input.CreatedBy = strings.ToLower(strings.TrimSpace(input.CreatedBy))
	return input, nil
}

// StatusLabel returns the string label for an invitation status.
func StatusLabel(status Status) string {
	switch status {
	case StatusPending:
		return "PENDING"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusDeclined:
		return "DECLINED"
	default:
		return "UNSPECIFIED"
	}
}

// StatusFromLabel converts a status label to a Status value.
func StatusFromLabel(label string) Status {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PENDING":
		return StatusPending
	case "ACCEPTED":
		return StatusAccepted
	case "DECLINED":
		return StatusDeclined
	default:
		return StatusUnspecified
	}
}
