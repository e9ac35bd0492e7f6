package service

import (
	"context"
	"time"

	"github.com/louisbranch/huddle.space/internal/id"
	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/invite"
	"github.com/louisbranch/huddle.space/internal/meeting/policy"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
	"github.com/louisbranch/huddle.space/internal/storage"
)

// InvitationService coordinates invitation operations.
type InvitationService struct {
	stores      storage.Stores
	clock       func() time.Time
	idGenerator func() (string, error)
	signer      *invite.JoinGrantSignerConfig
}

// NewInvitationService creates an InvitationService with default dependencies.
func NewInvitationService(stores storage.Stores) *InvitationService {
	return &InvitationService{
		stores:      stores,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// NewInvitationServiceWithClock creates an InvitationService with injected
// time and ID generation, used by tests.
func NewInvitationServiceWithClock(stores storage.Stores, clock func() time.Time, idGenerator func() (string, error)) *InvitationService {
	service := NewInvitationService(stores)
	if clock != nil {
		service.clock = clock
	}
	if idGenerator != nil {
		service.idGenerator = idGenerator
	}
	return service
}

// WithJoinGrantSigner equips the service to mint join grants.
func (s *InvitationService) WithJoinGrantSigner(signer invite.JoinGrantSignerConfig) *InvitationService {
	s.signer = &signer
	return s
}

// Invite creates a pending invitation to a meeting. Only the host may
// invite, and not after the meeting has ended.
func (s *InvitationService) Invite(ctx context.Context, actor, meetingID, inviteeEmail string) (invite.Invitation, error) {
	actor = normalizeActor(actor)

	meeting, err := s.stores.Meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return invite.Invitation{}, storeError("get meeting", err)
	}
	if !policy.Can(actor, policy.ActionInvite, meeting, nil) {
		return invite.Invitation{}, unauthorized(actor, policy.ActionInvite)
	}
	if meeting.Status == domain.MeetingStatusEnded {
		return invite.Invitation{}, apperrors.WithMetadata(
			apperrors.CodeMeetingEnded,
			"ended meetings cannot be invited to",
			map[string]string{"MeetingID": meeting.ID},
		)
	}

	invitation, err := invite.CreateInvitation(invite.CreateInvitationInput{
		MeetingID:    meeting.ID,
		InviteeEmail: inviteeEmail,
		CreatedBy:    actor,
	}, s.clock, s.idGenerator)
	if err != nil {
		return invite.Invitation{}, err
	}

	if err := s.stores.Invites.PutInvite(ctx, invitation); err != nil {
		return invite.Invitation{}, storeError("put invite", err)
	}
	return invitation, nil
}

// Accept marks a pending invitation as accepted. Responses are single-fire:
// once an invitation is resolved, later responses fail.
func (s *InvitationService) Accept(ctx context.Context, actor, inviteID string) (invite.Invitation, error) {
	return s.respond(ctx, actor, inviteID, invite.StatusAccepted)
}

// Decline marks a pending invitation as declined.
func (s *InvitationService) Decline(ctx context.Context, actor, inviteID string) (invite.Invitation, error) {
	return s.respond(ctx, actor, inviteID, invite.StatusDeclined)
}

func (s *InvitationService) respond(ctx context.Context, actor, inviteID string, to invite.Status) (invite.Invitation, error) {
	actor = normalizeActor(actor)

	invitation, err := s.stores.Invites.GetInvite(ctx, inviteID)
	if err != nil {
		return invite.Invitation{}, storeError("get invite", err)
	}
	if actor != invitation.InviteeEmail {
		return invite.Invitation{}, apperrors.WithMetadata(
			apperrors.CodeUnauthorized,
			"only the invitee may respond to an invitation",
			map[string]string{"Actor": actor, "InviteID": invitation.ID},
		)
	}
	if !policy.CanRespond(actor, invitation) {
		return invite.Invitation{}, notPending(invitation)
	}

	updated, applied, err := s.stores.Invites.TransitionInviteStatus(
		ctx, invitation.ID, invite.StatusPending, to, s.clock().UTC(),
	)
	if err != nil {
		return invite.Invitation{}, storeError("respond to invite", err)
	}
	if !applied {
		return invite.Invitation{}, notPending(updated)
	}
	return updated, nil
}

func notPending(invitation invite.Invitation) error {
	return apperrors.WithMetadata(
		apperrors.CodeInviteNotPending,
		"invitation has already been resolved",
		map[string]string{
			"InviteID": invitation.ID,
			"Status":   invite.StatusLabel(invitation.Status),
		},
	)
}

// Get retrieves an invitation by ID.
func (s *InvitationService) Get(ctx context.Context, inviteID string) (invite.Invitation, error) {
	invitation, err := s.stores.Invites.GetInvite(ctx, inviteID)
	if err != nil {
		return invite.Invitation{}, storeError("get invite", err)
	}
	return invitation, nil
}

// ListForMeeting returns a meeting's invitations. Only the host may list.
func (s *InvitationService) ListForMeeting(ctx context.Context, actor, meetingID string) ([]invite.Invitation, error) {
	actor = normalizeActor(actor)

	meeting, err := s.stores.Meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, storeError("get meeting", err)
	}
	if !policy.Can(actor, policy.ActionInvite, meeting, nil) {
		return nil, unauthorized(actor, policy.ActionInvite)
	}

	invitations, err := s.stores.Invites.ListInvitesByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, storeError("list invites", err)
	}
	return invitations, nil
}

// ListForInvitee returns the invitations addressed to actor.
func (s *InvitationService) ListForInvitee(ctx context.Context, actor string) ([]invite.Invitation, error) {
	actor = normalizeActor(actor)
	if actor == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "actor is required")
	}

	invitations, err := s.stores.Invites.ListInvitesByInvitee(ctx, actor)
	if err != nil {
		return nil, storeError("list invites", err)
	}
	return invitations, nil
}

// IssueJoinGrant mints a signed join grant for an invitation. The meeting
// host or the invitee may request a grant while the invitation is pending or
// accepted.
func (s *InvitationService) IssueJoinGrant(ctx context.Context, actor, inviteID string) (string, error) {
	if s.signer == nil {
		return "", apperrors.New(apperrors.CodeInviteJoinGrantInvalid, "join grant signer is not configured")
	}
	actor = normalizeActor(actor)

	invitation, err := s.stores.Invites.GetInvite(ctx, inviteID)
	if err != nil {
		return "", storeError("get invite", err)
	}
	meeting, err := s.stores.Meetings.GetMeeting(ctx, invitation.MeetingID)
	if err != nil {
		return "", storeError("get meeting", err)
	}
	if actor != meeting.HostEmail && actor != invitation.InviteeEmail {
		return "", apperrors.WithMetadata(
			apperrors.CodeUnauthorized,
			"only the host or the invitee may request a join grant",
			map[string]string{"Actor": actor, "InviteID": invitation.ID},
		)
	}
	if invitation.Status == invite.StatusDeclined {
		return "", notPending(invitation)
	}

	signer := *s.signer
	if signer.Now == nil {
		signer.Now = s.clock
	}
	return invite.IssueJoinGrant(invitation, signer)
}
