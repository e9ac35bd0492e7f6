package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/huddle.space/internal/id"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

// Segment is one transcript segment covering [Start, End] of meeting media
// time. Seq is assigned by the store on append and breaks ties between
// segments sharing the same Start offset.
type Segment struct {
	ID        string
	Seq       int64
	MeetingID string
	Start     time.Duration
	End       time.Duration
	Speaker   string
	Content   string
	CreatedAt time.Time
}

// ComposeSegmentInput describes the metadata needed to compose a segment.
type ComposeSegmentInput struct {
	MeetingID string
	Start     time.Duration
	End       time.Duration
	Speaker   string
	Content   string
}

// ComposeSegment builds a transcript segment with a generated ID. The segment
// range must be well-formed: non-negative start, end strictly after start.
func ComposeSegment(input ComposeSegmentInput, now func() time.Time, idGenerator func() (string, error)) (Segment, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	if input.Start < 0 || input.End <= input.Start {
		return Segment{}, apperrors.WithMetadata(
			apperrors.CodeTranscriptInvalidRange,
			"segment range must satisfy 0 <= start < end",
			map[string]string{
				"Start": input.Start.String(),
				"End":   input.End.String(),
			},
		)
	}

	segmentID, err := idGenerator()
	if err != nil {
		return Segment{}, fmt.Errorf("generate segment id: %w", err)
	}

	return Segment{
		ID:        segmentID,
		MeetingID: strings.TrimSpace(input.MeetingID),
		Start:     input.Start,
		End:       input.End,
		Speaker:   strings.ToLower(strings.TrimSpace(input.Speaker)),
		Content:   strings.TrimSpace(input.Content),
		CreatedAt: now().UTC(),
	}, nil
}

// ResolveCaption returns the segment to display as the caption at playhead,
// or nil when no segment covers it. Segments may overlap; the segment with
// the latest Start wins, and among segments sharing that Start the one
// appended first (lowest Seq) wins.
func ResolveCaption(segments []Segment, playhead time.Duration) *Segment {
	var winner *Segment
	for i := range segments {
		segment := &segments[i]
		if playhead < segment.Start || playhead > segment.End {
			continue
		}
		if winner == nil ||
			segment.Start > winner.Start ||
			(segment.Start == winner.Start && segment.Seq < winner.Seq) {
			winner = segment
		}
	}
	return winner
}
