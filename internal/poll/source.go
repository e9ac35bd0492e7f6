package poll

import (
	"context"

	feeddomain "github.com/louisbranch/huddle.space/internal/feed/domain"
	feedservice "github.com/louisbranch/huddle.space/internal/feed/service"
	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	meetingservice "github.com/louisbranch/huddle.space/internal/meeting/service"
)

// serviceSource adapts the meeting and feed services to the Source interface.
type serviceSource struct {
	meetings *meetingservice.MeetingService
	feed     *feedservice.FeedService
}

// NewServiceSource builds a Source backed by the meeting and feed services.
func NewServiceSource(meetings *meetingservice.MeetingService, feed *feedservice.FeedService) Source {
	return &serviceSource{meetings: meetings, feed: feed}
}

func (s *serviceSource) GetMeeting(ctx context.Context, meetingID string) (domain.Meeting, error) {
	return s.meetings.Get(ctx, meetingID)
}

func (s *serviceSource) ListParticipants(ctx context.Context, meetingID string) ([]domain.Participant, error) {
	return s.meetings.Roster(ctx, meetingID)
}

func (s *serviceSource) ListMessages(ctx context.Context, meetingID string) ([]feeddomain.Message, error) {
	return s.feed.ListMessages(ctx, meetingID)
}

func (s *serviceSource) ListSegments(ctx context.Context, meetingID string) ([]feeddomain.Segment, error) {
	return s.feed.ListSegments(ctx, meetingID)
}
