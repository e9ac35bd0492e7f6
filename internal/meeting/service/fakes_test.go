package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	feeddomain "github.com/louisbranch/huddle.space/internal/feed/domain"
	"github.com/louisbranch/huddle.space/internal/feed/filter"
	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/invite"
	"github.com/louisbranch/huddle.space/internal/storage"
)

// fakeStore is an in-memory storage.Stores implementation honoring the same
// contracts as the SQLite store: single-fire transitions, stable roster
// ordering, and store-assigned message sequence numbers.
type fakeStore struct {
	meetings     map[string]domain.Meeting
	participants map[string]domain.Participant
	invites      map[string]invite.Invitation
	messages     []feeddomain.Message
	segments     []feeddomain.Segment
	nextSeq      int64

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		meetings:     make(map[string]domain.Meeting),
		participants: make(map[string]domain.Participant),
		invites:      make(map[string]invite.Invitation),
	}
}

func (f *fakeStore) stores() storage.Stores {
	return storage.Stores{
		Meetings:     f,
		Participants: f,
		Invites:      f,
		Messages:     f,
		Transcripts:  f,
	}
}

func participantKey(meetingID, email string) string {
	return meetingID + "|" + email
}

func (f *fakeStore) PutMeeting(_ context.Context, meeting domain.Meeting) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.meetings[meeting.ID] = meeting
	return nil
}

func (f *fakeStore) GetMeeting(_ context.Context, meetingID string) (domain.Meeting, error) {
	if f.failWith != nil {
		return domain.Meeting{}, f.failWith
	}
	meeting, ok := f.meetings[meetingID]
	if !ok {
		return domain.Meeting{}, storage.ErrNotFound
	}
	return meeting, nil
}

func (f *fakeStore) UpdateMeeting(_ context.Context, meeting domain.Meeting) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.meetings[meeting.ID]; !ok {
		return storage.ErrNotFound
	}
	f.meetings[meeting.ID] = meeting
	return nil
}

func (f *fakeStore) TransitionMeetingStatus(_ context.Context, meetingID string, from, to domain.MeetingStatus, at time.Time) (domain.Meeting, bool, error) {
	if f.failWith != nil {
		return domain.Meeting{}, false, f.failWith
	}
	meeting, ok := f.meetings[meetingID]
	if !ok {
		return domain.Meeting{}, false, storage.ErrNotFound
	}
	if meeting.Status != from {
		return meeting, false, nil
	}
	meeting.Status = to
	meeting.UpdatedAt = at
	switch to {
	case domain.MeetingStatusRunning:
		meeting.StartedAt = &at
	case domain.MeetingStatusEnded:
		meeting.EndedAt = &at
	}
	f.meetings[meetingID] = meeting
	return meeting, true, nil
}

func (f *fakeStore) EndMeeting(_ context.Context, meetingID string, at time.Time) (domain.Meeting, bool, error) {
	if f.failWith != nil {
		return domain.Meeting{}, false, f.failWith
	}
	meeting, applied, err := f.TransitionMeetingStatus(context.Background(), meetingID, domain.MeetingStatusRunning, domain.MeetingStatusEnded, at)
	if err != nil || !applied {
		return meeting, applied, err
	}
	for key, participant := range f.participants {
		if participant.MeetingID == meetingID && participant.State == domain.ParticipantStateJoined {
			participant.State = domain.ParticipantStateLeft
			participant.UpdatedAt = at
			f.participants[key] = participant
		}
	}
	return meeting, true, nil
}

func (f *fakeStore) UpsertParticipantJoined(_ context.Context, participant domain.Participant) (domain.Participant, error) {
	if f.failWith != nil {
		return domain.Participant{}, f.failWith
	}
	key := participantKey(participant.MeetingID, participant.Email)
	if existing, ok := f.participants[key]; ok {
		existing.Role = participant.Role
		existing.State = domain.ParticipantStateJoined
		existing.UpdatedAt = participant.UpdatedAt
		f.participants[key] = existing
		return existing, nil
	}
	participant.State = domain.ParticipantStateJoined
	f.participants[key] = participant
	return participant, nil
}

func (f *fakeStore) GetParticipant(_ context.Context, meetingID, email string) (domain.Participant, error) {
	if f.failWith != nil {
		return domain.Participant{}, f.failWith
	}
	participant, ok := f.participants[participantKey(meetingID, email)]
	if !ok {
		return domain.Participant{}, storage.ErrNotFound
	}
	return participant, nil
}

func (f *fakeStore) SetParticipantState(_ context.Context, meetingID, email string, state domain.ParticipantState, at time.Time) (domain.Participant, bool, error) {
	if f.failWith != nil {
		return domain.Participant{}, false, f.failWith
	}
	key := participantKey(meetingID, email)
	participant, ok := f.participants[key]
	if !ok {
		return domain.Participant{}, false, storage.ErrNotFound
	}
	if participant.State == state {
		return participant, false, nil
	}
	participant.State = state
	participant.UpdatedAt = at
	f.participants[key] = participant
	return participant, true, nil
}

func (f *fakeStore) ListParticipants(_ context.Context, meetingID string) ([]domain.Participant, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var roster []domain.Participant
	for _, participant := range f.participants {
		if participant.MeetingID == meetingID {
			roster = append(roster, participant)
		}
	}
	sort.Slice(roster, func(i, j int) bool {
		if !roster[i].JoinedAt.Equal(roster[j].JoinedAt) {
			return roster[i].JoinedAt.Before(roster[j].JoinedAt)
		}
		return roster[i].Email < roster[j].Email
	})
	return roster, nil
}

func (f *fakeStore) PutInvite(_ context.Context, invitation invite.Invitation) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.invites[invitation.ID] = invitation
	return nil
}

func (f *fakeStore) GetInvite(_ context.Context, inviteID string) (invite.Invitation, error) {
	if f.failWith != nil {
		return invite.Invitation{}, f.failWith
	}
	invitation, ok := f.invites[inviteID]
	if !ok {
		return invite.Invitation{}, storage.ErrNotFound
	}
	return invitation, nil
}

func (f *fakeStore) TransitionInviteStatus(_ context.Context, inviteID string, from, to invite.Status, at time.Time) (invite.Invitation, bool, error) {
	if f.failWith != nil {
		return invite.Invitation{}, false, f.failWith
	}
	invitation, ok := f.invites[inviteID]
	if !ok {
		return invite.Invitation{}, false, storage.ErrNotFound
	}
	if invitation.Status != from {
		return invitation, false, nil
	}
	invitation.Status = to
	invitation.UpdatedAt = at
	f.invites[inviteID] = invitation
	return invitation, true, nil
}

func (f *fakeStore) ListInvitesByMeeting(_ context.Context, meetingID string) ([]invite.Invitation, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var invitations []invite.Invitation
	for _, invitation := range f.invites {
		if invitation.MeetingID == meetingID {
			invitations = append(invitations, invitation)
		}
	}
	sort.Slice(invitations, func(i, j int) bool {
		return invitations[i].CreatedAt.Before(invitations[j].CreatedAt)
	})
	return invitations, nil
}

func (f *fakeStore) ListInvitesByInvitee(_ context.Context, inviteeEmail string) ([]invite.Invitation, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var invitations []invite.Invitation
	for _, invitation := range f.invites {
		if invitation.InviteeEmail == inviteeEmail {
			invitations = append(invitations, invitation)
		}
	}
	sort.Slice(invitations, func(i, j int) bool {
		return invitations[i].CreatedAt.Before(invitations[j].CreatedAt)
	})
	return invitations, nil
}

func (f *fakeStore) AppendMessage(_ context.Context, message feeddomain.Message) (feeddomain.Message, error) {
	if f.failWith != nil {
		return feeddomain.Message{}, f.failWith
	}
	for _, existing := range f.messages {
		if existing.MeetingID == message.MeetingID && message.SentAt.Before(existing.SentAt) {
			message.SentAt = existing.SentAt
		}
	}
	f.nextSeq++
	message.Seq = f.nextSeq
	f.messages = append(f.messages, message)
	return message, nil
}

func (f *fakeStore) ListMessages(_ context.Context, meetingID string) ([]feeddomain.Message, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var messages []feeddomain.Message
	for _, message := range f.messages {
		if message.MeetingID == meetingID {
			messages = append(messages, message)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].SentAt.Equal(messages[j].SentAt) {
			return messages[i].SentAt.Before(messages[j].SentAt)
		}
		return messages[i].Seq < messages[j].Seq
	})
	return messages, nil
}

func (f *fakeStore) ListMessagesMatching(ctx context.Context, meetingID string, condition filter.SQLCondition) ([]feeddomain.Message, error) {
	if condition.Clause != "" {
		return nil, fmt.Errorf("fake store does not evaluate SQL conditions")
	}
	return f.ListMessages(ctx, meetingID)
}

func (f *fakeStore) AppendSegment(_ context.Context, segment feeddomain.Segment) (feeddomain.Segment, error) {
	if f.failWith != nil {
		return feeddomain.Segment{}, f.failWith
	}
	f.nextSeq++
	segment.Seq = f.nextSeq
	f.segments = append(f.segments, segment)
	return segment, nil
}

func (f *fakeStore) ListSegments(_ context.Context, meetingID string) ([]feeddomain.Segment, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var segments []feeddomain.Segment
	for _, segment := range f.segments {
		if segment.MeetingID == meetingID {
			segments = append(segments, segment)
		}
	}
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].Start != segments[j].Start {
			return segments[i].Start < segments[j].Start
		}
		return segments[i].Seq < segments[j].Seq
	})
	return segments, nil
}
