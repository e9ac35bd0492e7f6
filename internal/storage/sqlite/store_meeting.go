package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/storage"
)

const meetingColumns = `id, topic, host_email, status, start_time_ms, duration_minutes,
	 description, created_at, updated_at, started_at, ended_at`

type meetingRowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row meetingRowScanner) (domain.Meeting, error) {
	var (
		meeting   domain.Meeting
		status    string
		startTime sql.NullInt64
		createdAt int64
		updatedAt int64
		startedAt sql.NullInt64
		endedAt   sql.NullInt64
	)
	err := row.Scan(
		&meeting.ID,
		&meeting.Topic,
		&meeting.HostEmail,
		&status,
		&startTime,
		&meeting.DurationMinutes,
		&meeting.Description,
		&createdAt,
		&updatedAt,
		&startedAt,
		&endedAt,
	)
	if err != nil {
		return domain.Meeting{}, err
	}
	meeting.Status = domain.StatusFromLabel(status)
	meeting.StartTime = fromMillisPtr(startTime)
	meeting.CreatedAt = fromMillis(createdAt)
	meeting.UpdatedAt = fromMillis(updatedAt)
	meeting.StartedAt = fromMillisPtr(startedAt)
	meeting.EndedAt = fromMillisPtr(endedAt)
	return meeting, nil
}

// PutMeeting inserts or replaces a meeting record.
func (s *Store) PutMeeting(ctx context.Context, meeting domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(meeting.ID) == "" {
		return fmt.Errorf("meeting id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO meetings (id, topic, host_email, status, start_time_ms, duration_minutes,
		   description, created_at, updated_at, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   topic = excluded.topic,
		   host_email = excluded.host_email,
		   status = excluded.status,
		   start_time_ms = excluded.start_time_ms,
		   duration_minutes = excluded.duration_minutes,
		   description = excluded.description,
		   updated_at = excluded.updated_at,
		   started_at = excluded.started_at,
		   ended_at = excluded.ended_at`,
		meeting.ID,
		meeting.Topic,
		meeting.HostEmail,
		domain.StatusLabel(meeting.Status),
		toMillisPtr(meeting.StartTime),
		meeting.DurationMinutes,
		meeting.Description,
		toMillis(meeting.CreatedAt),
		toMillis(meeting.UpdatedAt),
		toMillisPtr(meeting.StartedAt),
		toMillisPtr(meeting.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("put meeting: %w", err)
	}
	return nil
}

// GetMeeting retrieves a meeting by ID.
func (s *Store) GetMeeting(ctx context.Context, meetingID string) (domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meeting{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Meeting{}, fmt.Errorf("storage is not configured")
	}
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return domain.Meeting{}, fmt.Errorf("meeting id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = ?`,
		meetingID,
	)
	meeting, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Meeting{}, storage.ErrNotFound
		}
		return domain.Meeting{}, fmt.Errorf("get meeting: %w", err)
	}
	return meeting, nil
}

// UpdateMeeting replaces mutable metadata on an existing meeting.
func (s *Store) UpdateMeeting(ctx context.Context, meeting domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(meeting.ID) == "" {
		return fmt.Errorf("meeting id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE meetings SET
		   topic = ?,
		   start_time_ms = ?,
		   duration_minutes = ?,
		   description = ?,
		   updated_at = ?
		 WHERE id = ?`,
		meeting.Topic,
		toMillisPtr(meeting.StartTime),
		meeting.DurationMinutes,
		meeting.Description,
		toMillis(meeting.UpdatedAt),
		meeting.ID,
	)
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// TransitionMeetingStatus atomically moves a meeting between statuses. The
// conditional UPDATE makes concurrent transitions single-fire: only one
// caller observes an applied transition.
func (s *Store) TransitionMeetingStatus(ctx context.Context, meetingID string, from, to domain.MeetingStatus, at time.Time) (domain.Meeting, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meeting{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Meeting{}, false, fmt.Errorf("storage is not configured")
	}
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return domain.Meeting{}, false, fmt.Errorf("meeting id is required")
	}

	atMillis := toMillis(at)
	var startedAtClause string
	switch to {
	case domain.MeetingStatusRunning:
		startedAtClause = ", started_at = ?"
	case domain.MeetingStatusEnded:
		startedAtClause = ", ended_at = ?"
	}

	query := `UPDATE meetings SET status = ?, updated_at = ?` + startedAtClause + ` WHERE id = ? AND status = ?`
	args := []any{domain.StatusLabel(to), atMillis}
	if startedAtClause != "" {
		args = append(args, atMillis)
	}
	args = append(args, meetingID, domain.StatusLabel(from))

	result, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Meeting{}, false, fmt.Errorf("transition meeting status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Meeting{}, false, fmt.Errorf("transition meeting status: %w", err)
	}

	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return domain.Meeting{}, false, err
	}
	return meeting, affected > 0, nil
}

// EndMeeting atomically ends a running meeting and marks every joined
// participant as left at the same instant.
func (s *Store) EndMeeting(ctx context.Context, meetingID string, at time.Time) (domain.Meeting, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meeting{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Meeting{}, false, fmt.Errorf("storage is not configured")
	}
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return domain.Meeting{}, false, fmt.Errorf("meeting id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Meeting{}, false, fmt.Errorf("end meeting: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	atMillis := toMillis(at)
	result, err := tx.ExecContext(
		ctx,
		`UPDATE meetings SET status = ?, ended_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusLabel(domain.MeetingStatusEnded),
		atMillis,
		atMillis,
		meetingID,
		domain.StatusLabel(domain.MeetingStatusRunning),
	)
	if err != nil {
		return domain.Meeting{}, false, fmt.Errorf("end meeting: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Meeting{}, false, fmt.Errorf("end meeting: %w", err)
	}

	if affected > 0 {
		_, err = tx.ExecContext(
			ctx,
			`UPDATE participants SET state = ?, updated_at = ?
			 WHERE meeting_id = ? AND state = ?`,
			domain.StateLabel(domain.ParticipantStateLeft),
			atMillis,
			meetingID,
			domain.StateLabel(domain.ParticipantStateJoined),
		)
		if err != nil {
			return domain.Meeting{}, false, fmt.Errorf("end meeting participants: %w", err)
		}
	}

	row := tx.QueryRowContext(
		ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = ?`,
		meetingID,
	)
	meeting, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Meeting{}, false, storage.ErrNotFound
		}
		return domain.Meeting{}, false, fmt.Errorf("end meeting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Meeting{}, false, fmt.Errorf("end meeting: %w", err)
	}
	return meeting, affected > 0, nil
}
