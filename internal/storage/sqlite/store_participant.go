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

const participantColumns = `meeting_id, email, role, state, joined_at, updated_at`

func scanParticipant(row meetingRowScanner) (domain.Participant, error) {
	var (
		participant domain.Participant
		role        string
		state       string
		joinedAt    int64
		updatedAt   int64
	)
	err := row.Scan(
		&participant.MeetingID,
		&participant.Email,
		&role,
		&state,
		&joinedAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Participant{}, err
	}
	participant.Role = domain.RoleFromLabel(role)
	participant.State = domain.StateFromLabel(state)
	participant.JoinedAt = fromMillis(joinedAt)
	participant.UpdatedAt = fromMillis(updatedAt)
	return participant, nil
}

// UpsertParticipantJoined inserts a participant or restores an existing
// record to the joined state. The original JoinedAt survives a re-join so
// roster ordering stays stable.
func (s *Store) UpsertParticipantJoined(ctx context.Context, participant domain.Participant) (domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Participant{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Participant{}, fmt.Errorf("storage is not configured")
	}
	meetingID := strings.TrimSpace(participant.MeetingID)
	email := strings.TrimSpace(participant.Email)
	if meetingID == "" {
		return domain.Participant{}, fmt.Errorf("meeting id is required")
	}
	if email == "" {
		return domain.Participant{}, fmt.Errorf("participant email is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO participants (meeting_id, email, role, state, joined_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(meeting_id, email) DO UPDATE SET
		   role = excluded.role,
		   state = excluded.state,
		   updated_at = excluded.updated_at`,
		meetingID,
		email,
		domain.RoleLabel(participant.Role),
		domain.StateLabel(domain.ParticipantStateJoined),
		toMillis(participant.JoinedAt),
		toMillis(participant.UpdatedAt),
	)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("upsert participant: %w", err)
	}
	return s.GetParticipant(ctx, meetingID, email)
}

// GetParticipant retrieves a roster record.
func (s *Store) GetParticipant(ctx context.Context, meetingID, email string) (domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Participant{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Participant{}, fmt.Errorf("storage is not configured")
	}
	meetingID = strings.TrimSpace(meetingID)
	email = strings.TrimSpace(email)
	if meetingID == "" {
		return domain.Participant{}, fmt.Errorf("meeting id is required")
	}
	if email == "" {
		return domain.Participant{}, fmt.Errorf("participant email is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+participantColumns+` FROM participants
		 WHERE meeting_id = ? AND email = ?`,
		meetingID,
		email,
	)
	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Participant{}, storage.ErrNotFound
		}
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return participant, nil
}

// SetParticipantState moves a roster record to state. The conditional UPDATE
// makes the change idempotent: a record already in the target state reports
// no change.
func (s *Store) SetParticipantState(ctx context.Context, meetingID, email string, state domain.ParticipantState, at time.Time) (domain.Participant, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Participant{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Participant{}, false, fmt.Errorf("storage is not configured")
	}
	meetingID = strings.TrimSpace(meetingID)
	email = strings.TrimSpace(email)
	if meetingID == "" {
		return domain.Participant{}, false, fmt.Errorf("meeting id is required")
	}
	if email == "" {
		return domain.Participant{}, false, fmt.Errorf("participant email is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE participants SET state = ?, updated_at = ?
		 WHERE meeting_id = ? AND email = ? AND state != ?`,
		domain.StateLabel(state),
		toMillis(at),
		meetingID,
		email,
		domain.StateLabel(state),
	)
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("set participant state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Participant{}, false, fmt.Errorf("set participant state: %w", err)
	}

	participant, err := s.GetParticipant(ctx, meetingID, email)
	if err != nil {
		return domain.Participant{}, false, err
	}
	return participant, affected > 0, nil
}

// ListParticipants returns the full roster ordered by (joined_at, email).
func (s *Store) ListParticipants(ctx context.Context, meetingID string) ([]domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return nil, fmt.Errorf("meeting id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+participantColumns+` FROM participants
		 WHERE meeting_id = ?
		 ORDER BY joined_at ASC, email ASC`,
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("list participants: %w", err)
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}
