package service

import (
	"context"

	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/invite"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

// WithJoinGrantVerifier equips the service to validate join grants.
// JoinWithGrant fails closed without it.
func (s *MeetingService) WithJoinGrantVerifier(verifier invite.JoinGrantVerifierConfig) *MeetingService {
	s.verifier = &verifier
	return s
}

// JoinWithGrant validates a join grant against the invitation it was minted
// for and then joins the bearer to the meeting. The grant must name the same
// meeting, invitation, and invitee that the caller presents.
func (s *MeetingService) JoinWithGrant(ctx context.Context, actor, meetingID, inviteID, grant string) (domain.Participant, error) {
	if s.verifier == nil {
		return domain.Participant{}, apperrors.New(apperrors.CodeInviteJoinGrantInvalid, "join grant verifier is not configured")
	}
	actor = normalizeActor(actor)

	verifier := *s.verifier
	if verifier.Now == nil {
		verifier.Now = s.clock
	}
	claims, err := invite.ValidateJoinGrant(grant, invite.JoinGrantExpectation{
		MeetingID:    meetingID,
		InviteID:     inviteID,
		InviteeEmail: actor,
	}, verifier)
	if err != nil {
		return domain.Participant{}, err
	}

	return s.Join(ctx, claims.InviteeEmail, claims.MeetingID)
}
