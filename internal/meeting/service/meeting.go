package service

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/policy"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
	"github.com/louisbranch/huddle.space/internal/storage"
)

// ScheduleInput describes a meeting to schedule.
type ScheduleInput struct {
	HostEmail       string
	Topic           string
	StartTime       *time.Time
	DurationMinutes int
	Description     string
}

// UpdateInput describes metadata changes to an existing meeting. Nil fields
// are left unchanged.
type UpdateInput struct {
	Topic           *string
	StartTime       *time.Time
	DurationMinutes *int
	Description     *string
}

// Schedule creates a meeting in the scheduled state.
func (s *MeetingService) Schedule(ctx context.Context, input ScheduleInput) (domain.Meeting, error) {
	meeting, err := domain.ScheduleMeeting(domain.ScheduleMeetingInput{
		HostEmail:       input.HostEmail,
		Topic:           input.Topic,
		StartTime:       input.StartTime,
		DurationMinutes: input.DurationMinutes,
		Description:     input.Description,
	}, s.clock, s.idGenerator)
	if err != nil {
		return domain.Meeting{}, err
	}

	if err := s.stores.Meetings.PutMeeting(ctx, meeting); err != nil {
		return domain.Meeting{}, storeError("schedule meeting", err)
	}
	return meeting, nil
}

// QuickStart schedules a meeting and immediately starts it with the host on
// the roster, covering the ad-hoc "start a call now" path.
func (s *MeetingService) QuickStart(ctx context.Context, input ScheduleInput) (domain.Meeting, domain.Participant, error) {
	meeting, err := s.Schedule(ctx, input)
	if err != nil {
		return domain.Meeting{}, domain.Participant{}, err
	}

	meeting, err = s.Start(ctx, meeting.HostEmail, meeting.ID)
	if err != nil {
		return domain.Meeting{}, domain.Participant{}, err
	}

	host, err := s.Join(ctx, meeting.HostEmail, meeting.ID)
	if err != nil {
		return domain.Meeting{}, domain.Participant{}, err
	}
	return meeting, host, nil
}

// Start moves a scheduled meeting to running and seats the host on the
// roster. Only the host may start. Starting an already-running meeting is an
// idempotent success; an ended meeting cannot be restarted.
func (s *MeetingService) Start(ctx context.Context, actor, meetingID string) (domain.Meeting, error) {
	actor = normalizeActor(actor)

	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return domain.Meeting{}, err
	}
	if !policy.Can(actor, policy.ActionStart, meeting, nil) {
		return domain.Meeting{}, unauthorized(actor, policy.ActionStart)
	}

	updated, applied, err := s.stores.Meetings.TransitionMeetingStatus(
		ctx, meeting.ID, domain.MeetingStatusScheduled, domain.MeetingStatusRunning, s.clock().UTC(),
	)
	if err != nil {
		return domain.Meeting{}, storeError("start meeting", err)
	}
	if !applied && updated.Status != domain.MeetingStatusRunning {
		if updated.Status == domain.MeetingStatusEnded {
			return domain.Meeting{}, apperrors.WithMetadata(
				apperrors.CodeMeetingEnded,
				"ended meetings cannot be restarted",
				map[string]string{"MeetingID": updated.ID},
			)
		}
		return domain.Meeting{}, invalidTransition(updated, domain.MeetingStatusRunning)
	}

	host, err := domain.AdmitParticipant(domain.AdmitParticipantInput{
		Meeting: updated,
		Email:   actor,
	}, s.clock)
	if err != nil {
		return domain.Meeting{}, err
	}
	if _, err := s.stores.Participants.UpsertParticipantJoined(ctx, host); err != nil {
		return domain.Meeting{}, storeError("start meeting", err)
	}
	return updated, nil
}

// End moves a running meeting to ended and marks every joined participant as
// left. Only the host may end, and only from the running state; a scheduled
// meeting cannot skip straight to ended.
func (s *MeetingService) End(ctx context.Context, actor, meetingID string) (domain.Meeting, error) {
	actor = normalizeActor(actor)

	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return domain.Meeting{}, err
	}
	if !policy.Can(actor, policy.ActionEnd, meeting, nil) {
		return domain.Meeting{}, unauthorized(actor, policy.ActionEnd)
	}

	updated, applied, err := s.stores.Meetings.EndMeeting(ctx, meeting.ID, s.clock().UTC())
	if err != nil {
		return domain.Meeting{}, storeError("end meeting", err)
	}
	if !applied {
		if updated.Status == domain.MeetingStatusEnded {
			return domain.Meeting{}, apperrors.WithMetadata(
				apperrors.CodeMeetingEnded,
				"meeting has already ended",
				map[string]string{"MeetingID": updated.ID},
			)
		}
		return domain.Meeting{}, invalidTransition(updated, domain.MeetingStatusEnded)
	}
	return updated, nil
}

// Update edits meeting metadata. Only the host may update, and only before
// the meeting has ended.
func (s *MeetingService) Update(ctx context.Context, actor, meetingID string, input UpdateInput) (domain.Meeting, error) {
	actor = normalizeActor(actor)

	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return domain.Meeting{}, err
	}
	if !policy.Can(actor, policy.ActionUpdate, meeting, nil) {
		return domain.Meeting{}, unauthorized(actor, policy.ActionUpdate)
	}
	if meeting.Status == domain.MeetingStatusEnded {
		return domain.Meeting{}, apperrors.WithMetadata(
			apperrors.CodeMeetingEnded,
			"ended meetings cannot be edited",
			map[string]string{"MeetingID": meeting.ID},
		)
	}

	if input.Topic != nil {
		meeting.Topic = *input.Topic
	}
	if input.StartTime != nil {
		startTime := input.StartTime.UTC()
		meeting.StartTime = &startTime
	}
	if input.DurationMinutes != nil {
		meeting.DurationMinutes = *input.DurationMinutes
		if meeting.DurationMinutes < 0 {
			meeting.DurationMinutes = 0
		}
	}
	if input.Description != nil {
		meeting.Description = *input.Description
	}
	meeting.UpdatedAt = s.clock().UTC()

	if err := s.stores.Meetings.UpdateMeeting(ctx, meeting); err != nil {
		return domain.Meeting{}, storeError("update meeting", err)
	}
	return meeting, nil
}

// Join adds actor to a running meeting's roster, or restores their seat when
// they had previously left. Joining is idempotent.
func (s *MeetingService) Join(ctx context.Context, actor, meetingID string) (domain.Participant, error) {
	actor = normalizeActor(actor)

	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return domain.Participant{}, err
	}
	if !policy.Can(actor, policy.ActionJoin, meeting, nil) {
		return domain.Participant{}, unauthorized(actor, policy.ActionJoin)
	}

	switch meeting.Status {
	case domain.MeetingStatusScheduled:
		return domain.Participant{}, apperrors.WithMetadata(
			apperrors.CodeMeetingNotStarted,
			"meeting has not started",
			map[string]string{"MeetingID": meeting.ID},
		)
	case domain.MeetingStatusEnded:
		return domain.Participant{}, apperrors.WithMetadata(
			apperrors.CodeMeetingEnded,
			"meeting has ended",
			map[string]string{"MeetingID": meeting.ID},
		)
	}

	participant, err := domain.AdmitParticipant(domain.AdmitParticipantInput{
		Meeting: meeting,
		Email:   actor,
	}, s.clock)
	if err != nil {
		return domain.Participant{}, err
	}

	stored, err := s.stores.Participants.UpsertParticipantJoined(ctx, participant)
	if err != nil {
		return domain.Participant{}, storeError("join meeting", err)
	}
	return stored, nil
}

// Leave marks actor as having left the meeting. Leaving twice is a no-op,
// but an actor with no roster record cannot leave.
func (s *MeetingService) Leave(ctx context.Context, actor, meetingID string) (domain.Participant, error) {
	actor = normalizeActor(actor)

	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return domain.Participant{}, err
	}

	participant, err := s.stores.Participants.GetParticipant(ctx, meeting.ID, actor)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Participant{}, unauthorized(actor, policy.ActionLeave)
		}
		return domain.Participant{}, storeError("leave meeting", err)
	}
	if !policy.Can(actor, policy.ActionLeave, meeting, &participant) {
		return domain.Participant{}, unauthorized(actor, policy.ActionLeave)
	}

	updated, _, err := s.stores.Participants.SetParticipantState(
		ctx, meeting.ID, actor, domain.ParticipantStateLeft, s.clock().UTC(),
	)
	if err != nil {
		return domain.Participant{}, storeError("leave meeting", err)
	}
	return updated, nil
}

// Get retrieves a meeting by ID.
func (s *MeetingService) Get(ctx context.Context, meetingID string) (domain.Meeting, error) {
	meeting, err := s.stores.Meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return domain.Meeting{}, storeError("get meeting", err)
	}
	return meeting, nil
}

// Roster returns a meeting's full participant list ordered by join time.
func (s *MeetingService) Roster(ctx context.Context, meetingID string) ([]domain.Participant, error) {
	if _, err := s.Get(ctx, meetingID); err != nil {
		return nil, err
	}
	participants, err := s.stores.Participants.ListParticipants(ctx, meetingID)
	if err != nil {
		return nil, storeError("list participants", err)
	}
	return participants, nil
}
