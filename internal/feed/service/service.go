// Package service implements the collaboration feed operations: chat
// messages, transcript segments, and caption resolution.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	feeddomain "github.com/louisbranch/huddle.space/internal/feed/domain"
	"github.com/louisbranch/huddle.space/internal/feed/filter"
	"github.com/louisbranch/huddle.space/internal/id"
	meetingdomain "github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/policy"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
	"github.com/louisbranch/huddle.space/internal/storage"
)

// FeedService coordinates the collaboration feed for meetings.
type FeedService struct {
	stores      storage.Stores
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewFeedService creates a FeedService with default dependencies.
func NewFeedService(stores storage.Stores) *FeedService {
	return &FeedService{
		stores:      stores,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// NewFeedServiceWithClock creates a FeedService with injected time and ID
// generation, used by tests.
func NewFeedServiceWithClock(stores storage.Stores, clock func() time.Time, idGenerator func() (string, error)) *FeedService {
	service := NewFeedService(stores)
	if clock != nil {
		service.clock = clock
	}
	if idGenerator != nil {
		service.idGenerator = idGenerator
	}
	return service
}

func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.New(apperrors.CodeNotFound, op+": record not found")
	}
	return apperrors.Wrap(apperrors.CodeStoreUnavailable, op, err)
}

// loadRunningMeeting loads a meeting and checks the actor may contribute to
// its feed. Contributions require a running meeting and a joined seat.
func (s *FeedService) loadRunningMeeting(ctx context.Context, actor, meetingID string, action policy.Action) (meetingdomain.Meeting, error) {
	meeting, err := s.stores.Meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return meetingdomain.Meeting{}, storeError("get meeting", err)
	}

	switch meeting.Status {
	case meetingdomain.MeetingStatusScheduled:
		return meetingdomain.Meeting{}, apperrors.WithMetadata(
			apperrors.CodeMeetingNotStarted,
			"meeting has not started",
			map[string]string{"MeetingID": meeting.ID},
		)
	case meetingdomain.MeetingStatusEnded:
		return meetingdomain.Meeting{}, apperrors.WithMetadata(
			apperrors.CodeMeetingEnded,
			"meeting has ended",
			map[string]string{"MeetingID": meeting.ID},
		)
	}

	var participant *meetingdomain.Participant
	seat, err := s.stores.Participants.GetParticipant(ctx, meeting.ID, actor)
	if err == nil {
		participant = &seat
	} else if !errors.Is(err, storage.ErrNotFound) {
		return meetingdomain.Meeting{}, storeError("get participant", err)
	}

	if !policy.Can(actor, action, meeting, participant) {
		return meetingdomain.Meeting{}, apperrors.WithMetadata(
			apperrors.CodeUnauthorized,
			fmt.Sprintf("actor is not allowed to %s", strings.ToLower(policy.ActionLabel(action))),
			map[string]string{"Actor": actor, "Action": policy.ActionLabel(action)},
		)
	}
	return meeting, nil
}

// PostMessage appends a chat message to a running meeting's feed. The store
// assigns the sequence number and keeps feed time monotone.
func (s *FeedService) PostMessage(ctx context.Context, actor, meetingID, content string) (feeddomain.Message, error) {
	actor = strings.ToLower(strings.TrimSpace(actor))

	meeting, err := s.loadRunningMeeting(ctx, actor, meetingID, policy.ActionPostMessage)
	if err != nil {
		return feeddomain.Message{}, err
	}

	message, err := feeddomain.ComposeMessage(feeddomain.ComposeMessageInput{
		MeetingID:   meeting.ID,
		SenderEmail: actor,
		Content:     content,
	}, s.clock, s.idGenerator)
	if err != nil {
		return feeddomain.Message{}, err
	}

	stored, err := s.stores.Messages.AppendMessage(ctx, message)
	if err != nil {
		return feeddomain.Message{}, storeError("append message", err)
	}
	return stored, nil
}

// ListMessages returns a meeting's chat feed ordered by (sent-at, seq).
func (s *FeedService) ListMessages(ctx context.Context, meetingID string) ([]feeddomain.Message, error) {
	if _, err := s.stores.Meetings.GetMeeting(ctx, meetingID); err != nil {
		return nil, storeError("get meeting", err)
	}
	messages, err := s.stores.Messages.ListMessages(ctx, meetingID)
	if err != nil {
		return nil, storeError("list messages", err)
	}
	return messages, nil
}

// ListMessagesFiltered returns the chat feed narrowed by an AIP-160 filter
// expression over sender_email and ts.
func (s *FeedService) ListMessagesFiltered(ctx context.Context, meetingID, filterStr string) ([]feeddomain.Message, error) {
	if _, err := s.stores.Meetings.GetMeeting(ctx, meetingID); err != nil {
		return nil, storeError("get meeting", err)
	}

	condition, err := filter.ParseMessageFilter(filterStr)
	if err != nil {
		return nil, err
	}

	messages, err := s.stores.Messages.ListMessagesMatching(ctx, meetingID, condition)
	if err != nil {
		return nil, storeError("list messages", err)
	}
	return messages, nil
}

// AppendSegment appends a transcript segment to a running meeting's feed.
func (s *FeedService) AppendSegment(ctx context.Context, actor, meetingID string, start, end time.Duration, content string) (feeddomain.Segment, error) {
	actor = strings.ToLower(strings.TrimSpace(actor))

	meeting, err := s.loadRunningMeeting(ctx, actor, meetingID, policy.ActionAppendTranscript)
	if err != nil {
		return feeddomain.Segment{}, err
	}

	segment, err := feeddomain.ComposeSegment(feeddomain.ComposeSegmentInput{
		MeetingID: meeting.ID,
		Start:     start,
		End:       end,
		Speaker:   actor,
		Content:   content,
	}, s.clock, s.idGenerator)
	if err != nil {
		return feeddomain.Segment{}, err
	}

	stored, err := s.stores.Transcripts.AppendSegment(ctx, segment)
	if err != nil {
		return feeddomain.Segment{}, storeError("append segment", err)
	}
	return stored, nil
}

// ListSegments returns a meeting's transcript ordered by (start, seq).
func (s *FeedService) ListSegments(ctx context.Context, meetingID string) ([]feeddomain.Segment, error) {
	if _, err := s.stores.Meetings.GetMeeting(ctx, meetingID); err != nil {
		return nil, storeError("get meeting", err)
	}
	segments, err := s.stores.Transcripts.ListSegments(ctx, meetingID)
	if err != nil {
		return nil, storeError("list segments", err)
	}
	return segments, nil
}

// CaptionAt resolves the caption to display at playhead, or nil when no
// segment covers it.
func (s *FeedService) CaptionAt(ctx context.Context, meetingID string, playhead time.Duration) (*feeddomain.Segment, error) {
	segments, err := s.ListSegments(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return feeddomain.ResolveCaption(segments, playhead), nil
}
