// Package storage defines the persistence interfaces for meetings,
// participants, invitations, and the collaboration feed.
package storage

import (
	"context"
	"errors"
	"time"

	feeddomain "github.com/louisbranch/huddle.space/internal/feed/domain"
	"github.com/louisbranch/huddle.space/internal/feed/filter"
	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/invite"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("not found")

// Stores aggregates the persistence interfaces used by the services.
type Stores struct {
	Meetings     MeetingStore
	Participants ParticipantStore
	Invites      InviteStore
	Messages     MessageStore
	Transcripts  TranscriptStore
}

// MeetingStore persists meeting records.
type MeetingStore interface {
	// PutMeeting inserts or replaces a meeting record.
	PutMeeting(ctx context.Context, meeting domain.Meeting) error

	// GetMeeting retrieves a meeting by ID. Returns ErrNotFound when the
	// meeting does not exist.
	GetMeeting(ctx context.Context, meetingID string) (domain.Meeting, error)

	// UpdateMeeting replaces mutable metadata (topic, start time, duration,
	// description) and bumps UpdatedAt. Returns ErrNotFound when the meeting
	// does not exist.
	UpdateMeeting(ctx context.Context, meeting domain.Meeting) error

	// TransitionMeetingStatus atomically moves a meeting from one status to
	// another, recording at as the transition instant. The boolean reports
	// whether the transition applied; false means the meeting was not in the
	// expected from status. Returns ErrNotFound when the meeting does not
	// exist.
	TransitionMeetingStatus(ctx context.Context, meetingID string, from, to domain.MeetingStatus, at time.Time) (domain.Meeting, bool, error)

	// EndMeeting atomically transitions a running meeting to ended and marks
	// every joined participant as left, all at the same instant. The boolean
	// reports whether the transition applied.
	EndMeeting(ctx context.Context, meetingID string, at time.Time) (domain.Meeting, bool, error)
}

// ParticipantStore persists meeting roster records.
type ParticipantStore interface {
	// UpsertParticipantJoined inserts a participant or, when a record already
	// exists for (meeting, email), restores it to the joined state. The
	// existing JoinedAt is preserved on re-join.
	UpsertParticipantJoined(ctx context.Context, participant domain.Participant) (domain.Participant, error)

	// GetParticipant retrieves a roster record. Returns ErrNotFound when no
	// record exists for (meeting, email).
	GetParticipant(ctx context.Context, meetingID, email string) (domain.Participant, error)

	// SetParticipantState moves a roster record to state, recording at as the
	// update instant. The boolean reports whether the record changed; false
	// means it was already in that state. Returns ErrNotFound when no record
	// exists.
	SetParticipantState(ctx context.Context, meetingID, email string, state domain.ParticipantState, at time.Time) (domain.Participant, bool, error)

	// ListParticipants returns the full roster for a meeting ordered by
	// (JoinedAt, Email).
	ListParticipants(ctx context.Context, meetingID string) ([]domain.Participant, error)
}

// InviteStore persists invitation records.
type InviteStore interface {
	// PutInvite inserts an invitation record.
	PutInvite(ctx context.Context, invitation invite.Invitation) error

	// GetInvite retrieves an invitation by ID. Returns ErrNotFound when the
	// invitation does not exist.
	GetInvite(ctx context.Context, inviteID string) (invite.Invitation, error)

	// TransitionInviteStatus atomically moves an invitation from one status to
	// another, recording at as the update instant. The boolean reports whether
	// the transition applied; false means the invitation was not in the
	// expected from status. Returns ErrNotFound when the invitation does not
	// exist.
	TransitionInviteStatus(ctx context.Context, inviteID string, from, to invite.Status, at time.Time) (invite.Invitation, bool, error)

	// ListInvitesByMeeting returns all invitations for a meeting ordered by
	// creation time.
	ListInvitesByMeeting(ctx context.Context, meetingID string) ([]invite.Invitation, error)

	// ListInvitesByInvitee returns all invitations addressed to an email
	// ordered by creation time.
	ListInvitesByInvitee(ctx context.Context, inviteeEmail string) ([]invite.Invitation, error)
}

// MessageStore persists chat messages.
type MessageStore interface {
	// AppendMessage appends a message to a meeting feed. The store assigns
	// Seq and clamps SentAt so timestamps never run backwards within a
	// meeting; the stored record is returned.
	AppendMessage(ctx context.Context, message feeddomain.Message) (feeddomain.Message, error)

	// ListMessages returns a meeting's messages ordered by (SentAt, Seq).
	ListMessages(ctx context.Context, meetingID string) ([]feeddomain.Message, error)

	// ListMessagesMatching returns a meeting's messages matching condition,
	// ordered by (SentAt, Seq). An empty condition matches everything.
	ListMessagesMatching(ctx context.Context, meetingID string, condition filter.SQLCondition) ([]feeddomain.Message, error)
}

// TranscriptStore persists transcript segments.
type TranscriptStore interface {
	// AppendSegment appends a segment to a meeting transcript. The store
	// assigns Seq; the stored record is returned.
	AppendSegment(ctx context.Context, segment feeddomain.Segment) (feeddomain.Segment, error)

	// ListSegments returns a meeting's segments ordered by (Start, Seq).
	ListSegments(ctx context.Context, meetingID string) ([]feeddomain.Segment, error)
}
