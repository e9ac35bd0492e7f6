package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/huddle.space/internal/meeting/invite"
	"github.com/louisbranch/huddle.space/internal/storage"
)

const inviteColumns = `id, meeting_id, invitee_email, status, created_by, created_at, updated_at`

func scanInvite(row meetingRowScanner) (invite.Invitation, error) {
	var (
		invitation invite.Invitation
		status     string
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(
		&invitation.ID,
		&invitation.MeetingID,
		&invitation.InviteeEmail,
		&status,
		&invitation.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return invite.Invitation{}, err
	}
	invitation.Status = invite.StatusFromLabel(status)
	invitation.CreatedAt = fromMillis(createdAt)
	invitation.UpdatedAt = fromMillis(updatedAt)
	return invitation, nil
}

// PutInvite inserts an invitation record.
func (s *Store) PutInvite(ctx context.Context, invitation invite.Invitation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(invitation.ID) == "" {
		return fmt.Errorf("invitation id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO invites (id, meeting_id, invitee_email, status, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		invitation.ID,
		invitation.MeetingID,
		invitation.InviteeEmail,
		invite.StatusLabel(invitation.Status),
		invitation.CreatedBy,
		toMillis(invitation.CreatedAt),
		toMillis(invitation.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put invite: %w", err)
	}
	return nil
}

// GetInvite retrieves an invitation by ID.
func (s *Store) GetInvite(ctx context.Context, inviteID string) (invite.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return invite.Invitation{}, err
	}
	if s == nil || s.sqlDB == nil {
		return invite.Invitation{}, fmt.Errorf("storage is not configured")
	}
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return invite.Invitation{}, fmt.Errorf("invitation id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = ?`,
		inviteID,
	)
	invitation, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invite.Invitation{}, storage.ErrNotFound
		}
		return invite.Invitation{}, fmt.Errorf("get invite: %w", err)
	}
	return invitation, nil
}

// TransitionInviteStatus atomically moves an invitation between statuses.
// The conditional UPDATE makes responses single-fire: once an invitation
// leaves pending, no later transition applies.
func (s *Store) TransitionInviteStatus(ctx context.Context, inviteID string, from, to invite.Status, at time.Time) (invite.Invitation, bool, error) {
	if err := ctx.Err(); err != nil {
		return invite.Invitation{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return invite.Invitation{}, false, fmt.Errorf("storage is not configured")
	}
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return invite.Invitation{}, false, fmt.Errorf("invitation id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE invites SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		invite.StatusLabel(to),
		toMillis(at),
		inviteID,
		invite.StatusLabel(from),
	)
	if err != nil {
		return invite.Invitation{}, false, fmt.Errorf("transition invite status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return invite.Invitation{}, false, fmt.Errorf("transition invite status: %w", err)
	}

	invitation, err := s.GetInvite(ctx, inviteID)
	if err != nil {
		return invite.Invitation{}, false, err
	}
	return invitation, affected > 0, nil
}

// ListInvitesByMeeting returns a meeting's invitations ordered by creation.
func (s *Store) ListInvitesByMeeting(ctx context.Context, meetingID string) ([]invite.Invitation, error) {
	meetingID = strings.TrimSpace(meetingID)
	if meetingID == "" {
		return nil, fmt.Errorf("meeting id is required")
	}
	return s.listInvites(ctx, `meeting_id = ?`, meetingID)
}

// ListInvitesByInvitee returns an invitee's invitations ordered by creation.
func (s *Store) ListInvitesByInvitee(ctx context.Context, inviteeEmail string) ([]invite.Invitation, error) {
	inviteeEmail = strings.TrimSpace(inviteeEmail)
	if inviteeEmail == "" {
		return nil, fmt.Errorf("invitee email is required")
	}
	return s.listInvites(ctx, `invitee_email = ?`, inviteeEmail)
}

func (s *Store) listInvites(ctx context.Context, where string, arg any) ([]invite.Invitation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+inviteColumns+` FROM invites
		 WHERE `+where+`
		 ORDER BY created_at ASC, id ASC`,
		arg,
	)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	var invitations []invite.Invitation
	for rows.Next() {
		invitation, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("list invites: %w", err)
		}
		invitations = append(invitations, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invitations, nil
}
