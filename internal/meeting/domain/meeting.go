package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/huddle.space/internal/id"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

// MeetingStatus describes the lifecycle state of a meeting.
type MeetingStatus int

const (
	// MeetingStatusUnspecified represents an invalid meeting status value.
	MeetingStatusUnspecified MeetingStatus = iota
	// MeetingStatusScheduled indicates the meeting exists but has not started.
	MeetingStatusScheduled
	// MeetingStatusRunning indicates the meeting is in progress.
	MeetingStatusRunning
	// MeetingStatusEnded indicates the meeting has ended.
	MeetingStatusEnded
)

var (
	// ErrEmptyHost indicates a missing host email.
	ErrEmptyHost = apperrors.New(apperrors.CodeMeetingEmptyHost, "host email is required")
)

// Meeting represents metadata and lifecycle state for one meeting.
type Meeting struct {
	ID              string
	Topic           string
	HostEmail       string
	Status          MeetingStatus
	StartTime       *time.Time // nil when the meeting has no planned start
	DurationMinutes int        // 0 when no duration was given
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       *time.Time // nil until the host starts the meeting
	EndedAt         *time.Time // nil until the host ends the meeting
}

// ScheduleMeetingInput describes the metadata needed to schedule a meeting.
type ScheduleMeetingInput struct {
	HostEmail       string
	Topic           string
	StartTime       *time.Time
	DurationMinutes int
	Description     string
}

// ScheduleMeeting creates a new meeting in SCHEDULED status with a generated
// ID and timestamps.
func ScheduleMeeting(input ScheduleMeetingInput, now func() time.Time, idGenerator func() (string, error)) (Meeting, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeScheduleMeetingInput(input)
	if err != nil {
		return Meeting{}, err
	}

	meetingID, err := idGenerator()
	if err != nil {
		return Meeting{}, fmt.Errorf("generate meeting id: %w", err)
	}

	createdAt := now().UTC()
	return Meeting{
		ID:              meetingID,
		Topic:           normalized.Topic,
		HostEmail:       normalized.HostEmail,
		Status:          MeetingStatusScheduled,
		StartTime:       normalized.StartTime,
		DurationMinutes: normalized.DurationMinutes,
		Description:     normalized.Description,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// NormalizeScheduleMeetingInput trims and validates meeting input metadata.
func NormalizeScheduleMeetingInput(input ScheduleMeetingInput) (ScheduleMeetingInput, error) {
	input.HostEmail = strings.ToLower(strings.TrimSpace(input.HostEmail))
	if input.HostEmail == "" {
		return ScheduleMeetingInput{}, ErrEmptyHost
	}
	input.Topic = strings.TrimSpace(input.Topic)
	input.Description = strings.TrimSpace(input.Description)
	if input.DurationMinutes < 0 {
		input.DurationMinutes = 0
	}
	if input.StartTime != nil {
		utc := input.StartTime.UTC()
		input.StartTime = &utc
	}
	return input, nil
}

// CanTransition reports whether a meeting status may move from one value to
// another. Statuses only move forward: scheduled, running, ended.
func CanTransition(from, to MeetingStatus) bool {
	switch from {
	case MeetingStatusScheduled:
		return to == MeetingStatusRunning
	case MeetingStatusRunning:
		return to == MeetingStatusEnded
	default:
		return false
	}
}

// StatusLabel returns the string label for a meeting status.
func StatusLabel(status MeetingStatus) string {
	switch status {
	case MeetingStatusScheduled:
		return "SCHEDULED"
	case MeetingStatusRunning:
		return "RUNNING"
	case MeetingStatusEnded:
		return "ENDED"
	default:
		return "UNSPECIFIED"
	}
}

// StatusFromLabel converts a status label to a MeetingStatus value.
func StatusFromLabel(label string) MeetingStatus {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "SCHEDULED":
		return MeetingStatusScheduled
	case "RUNNING":
		return MeetingStatusRunning
	case "ENDED":
		return MeetingStatusEnded
	default:
		return MeetingStatusUnspecified
	}
}
