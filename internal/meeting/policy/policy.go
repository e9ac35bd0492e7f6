// Package policy centralizes authorization decisions for meeting operations.
// Decisions are pure functions over already-loaded records so they can be
// evaluated anywhere without touching storage.
package policy

import (
	"strings"

	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/invite"
)

// Action identifies an operation an actor may attempt against a meeting.
type Action int

const (
	// ActionUnspecified represents an invalid action.
	ActionUnspecified Action = iota
	// ActionStart starts a scheduled meeting.
	ActionStart
	// ActionEnd ends a running meeting.
	ActionEnd
	// ActionUpdate edits meeting metadata.
	ActionUpdate
	// ActionInvite creates invitations for a meeting.
	ActionInvite
	// ActionJoin joins a meeting as a participant.
	ActionJoin
	// ActionLeave marks the actor as having left the meeting.
	ActionLeave
	// ActionPostMessage posts a chat message to the meeting feed.
	ActionPostMessage
	// ActionAppendTranscript appends a transcript segment to the feed.
	ActionAppendTranscript
)

// hostOnly lists actions restricted to the meeting host.
var hostOnly = map[Action]bool{
	ActionStart:  true,
	ActionEnd:    true,
	ActionUpdate: true,
	ActionInvite: true,
}

// Can reports whether actor may perform action against meeting. participant
// is the actor's roster record when one exists, nil otherwise. Lifecycle
// checks (meeting not started, meeting ended) are enforced separately by the
// services; Can only answers the identity question.
func Can(actor string, action Action, meeting domain.Meeting, participant *domain.Participant) bool {
	actor = strings.ToLower(strings.TrimSpace(actor))
	if actor == "" {
		return false
	}

	if hostOnly[action] {
		return actor == meeting.HostEmail
	}

	switch action {
	case ActionJoin:
		// Anyone with the meeting in hand may attempt to join; the service
		// layer gates on meeting status and invitations.
		return true
	case ActionLeave:
		return participant != nil && participant.Email == actor
	case ActionPostMessage, ActionAppendTranscript:
		// Hosts get no bypass here: starting a meeting seats the host, so a
		// host without a joined seat has left and cannot contribute.
		return participant != nil && participant.Email == actor && participant.State == domain.ParticipantStateJoined
	default:
		return false
	}
}

// CanRespond reports whether actor may accept or decline invitation. Only the
// invitee may respond, and only while the invitation is pending.
func CanRespond(actor string, invitation invite.Invitation) bool {
	actor = strings.ToLower(strings.TrimSpace(actor))
	if actor == "" {
		return false
	}
	return actor == invitation.InviteeEmail && invitation.Status == invite.StatusPending
}

// ActionLabel returns the string label for an action, used in error metadata.
func ActionLabel(action Action) string {
	switch action {
	case ActionStart:
		return "START"
	case ActionEnd:
		return "END"
	case ActionUpdate:
		return "UPDATE"
	case ActionInvite:
		return "INVITE"
	case ActionJoin:
		return "JOIN"
	case ActionLeave:
		return "LEAVE"
	case ActionPostMessage:
		return "POST_MESSAGE"
	case ActionAppendTranscript:
		return "APPEND_TRANSCRIPT"
	default:
		return "UNSPECIFIED"
	}
}
