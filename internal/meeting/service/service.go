// Package service implements the meeting lifecycle and invitation
// operations on top of the persistence interfaces.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/huddle.space/internal/id"
	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/invite"
	"github.com/louisbranch/huddle.space/internal/meeting/policy"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
	"github.com/louisbranch/huddle.space/internal/storage"
)

// MeetingService coordinates meeting lifecycle operations.
type MeetingService struct {
	stores      storage.Stores
	clock       func() time.Time
	idGenerator func() (string, error)
	verifier    *invite.JoinGrantVerifierConfig
}

// NewMeetingService creates a MeetingService with default dependencies.
func NewMeetingService(stores storage.Stores) *MeetingService {
	return &MeetingService{
		stores:      stores,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// NewMeetingServiceWithClock creates a MeetingService with injected time and
// ID generation, used by tests.
func NewMeetingServiceWithClock(stores storage.Stores, clock func() time.Time, idGenerator func() (string, error)) *MeetingService {
	service := NewMeetingService(stores)
	if clock != nil {
		service.clock = clock
	}
	if idGenerator != nil {
		service.idGenerator = idGenerator
	}
	return service
}

func normalizeActor(actor string) string {
	return strings.ToLower(strings.TrimSpace(actor))
}

// storeError maps persistence failures onto the service error taxonomy.
func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeNotFound, op+": record not found")
	}
	return apperrors.Wrap(apperrors.CodeStoreUnavailable, op, err)
}

func unauthorized(actor string, action policy.Action) error {
	return apperrors.WithMetadata(
		apperrors.CodeUnauthorized,
		fmt.Sprintf("actor is not allowed to %s", strings.ToLower(policy.ActionLabel(action))),
		map[string]string{
			"Actor":  actor,
			"Action": policy.ActionLabel(action),
		},
	)
}

func invalidTransition(meeting domain.Meeting, to domain.MeetingStatus) error {
	return apperrors.WithMetadata(
		apperrors.CodeMeetingInvalidStatusTransition,
		fmt.Sprintf("meeting cannot move from %s to %s",
			strings.ToLower(domain.StatusLabel(meeting.Status)),
			strings.ToLower(domain.StatusLabel(to))),
		map[string]string{
			"MeetingID": meeting.ID,
			"From":      domain.StatusLabel(meeting.Status),
			"To":        domain.StatusLabel(to),
		},
	)
}
