package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	feeddomain "github.com/louisbranch/huddle.space/internal/feed/domain"
	"github.com/louisbranch/huddle.space/internal/feed/filter"
)

const messageColumns = `seq, id, meeting_id, sender_email, content, sent_at_ms`

const segmentColumns = `seq, id, meeting_id, start_ms, end_ms, speaker, content, created_at`

func scanMessage(row meetingRowScanner) (feeddomain.Message, error) {
	var (
		message feeddomain.Message
		sentAt  int64
	)
	err := row.Scan(
		&message.Seq,
		&message.ID,
		&message.MeetingID,
		&message.SenderEmail,
		&message.Content,
		&sentAt,
	)
	if err != nil {
		return feeddomain.Message{}, err
	}
	message.SentAt = fromMillis(sentAt)
	return message, nil
}

func scanSegment(row meetingRowScanner) (feeddomain.Segment, error) {
	var (
		segment   feeddomain.Segment
		startMs   int64
		endMs     int64
		createdAt int64
	)
	err := row.Scan(
		&segment.Seq,
		&segment.ID,
		&segment.MeetingID,
		&startMs,
		&endMs,
		&segment.Speaker,
		&segment.Content,
		&createdAt,
	)
	if err != nil {
		return feeddomain.Segment{}, err
	}
	segment.Start = time.Duration(startMs) * time.Millisecond
	segment.End = time.Duration(endMs) * time.Millisecond
	segment.CreatedAt = fromMillis(createdAt)
	return segment, nil
}

// AppendMessage appends a message to a meeting feed. The insert clamps the
// sent-at timestamp against the feed's high-water mark inside one
// transaction, so feed time never runs backwards within a meeting.
func (s *Store) AppendMessage(ctx context.Context, message feeddomain.Message) (feeddomain.Message, error) {
	if err := ctx.Err(); err != nil {
		return feeddomain.Message{}, err
	}
	if s == nil || s.sqlDB == nil {
		return feeddomain.Message{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(message.ID) == "" {
		return feeddomain.Message{}, fmt.Errorf("message id is required")
	}
	if strings.TrimSpace(message.MeetingID) == "" {
		return feeddomain.Message{}, fmt.Errorf("meeting id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return feeddomain.Message{}, fmt.Errorf("append message: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var highWater sql.NullInt64
	err = tx.QueryRowContext(
		ctx,
		`SELECT MAX(sent_at_ms) FROM messages WHERE meeting_id = ?`,
		message.MeetingID,
	).Scan(&highWater)
	if err != nil {
		return feeddomain.Message{}, fmt.Errorf("append message: %w", err)
	}

	sentAtMs := toMillis(message.SentAt)
	if highWater.Valid && sentAtMs < highWater.Int64 {
		sentAtMs = highWater.Int64
	}

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO messages (id, meeting_id, sender_email, content, sent_at_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		message.ID,
		message.MeetingID,
		message.SenderEmail,
		message.Content,
		sentAtMs,
	)
	if err != nil {
		return feeddomain.Message{}, fmt.Errorf("append message: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return feeddomain.Message{}, fmt.Errorf("append message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return feeddomain.Message{}, fmt.Errorf("append message: %w", err)
	}

	message.Seq = seq
	message.SentAt = fromMillis(sentAtMs)
	return message, nil
}

// ListMessages returns a meeting's messages ordered by (sent_at, seq).
func (s *Store) ListMessages(ctx context.Context, meetingID string) ([]feeddomain.Message, error) {
	return s.ListMessagesMatching(ctx, meetingID, filter.SQLCondition{})
}

// ListMessagesMatching returns a meeting's messages matching condition,
// ordered by (sent_at, seq).
func (s *Store) ListMessagesMatching(ctx context.Context, meetingID string, condition filter.SQLCondition) ([]feeddomain.Message, error) {
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

	query := `SELECT ` + messageColumns + ` FROM messages WHERE meeting_id = ?`
	args := []any{meetingID}
	if condition.Clause != "" {
		query += ` AND ` + condition.Clause
		args = append(args, condition.Params...)
	}
	query += ` ORDER BY sent_at_ms ASC, seq ASC`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []feeddomain.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// AppendSegment appends a transcript segment to a meeting feed.
func (s *Store) AppendSegment(ctx context.Context, segment feeddomain.Segment) (feeddomain.Segment, error) {
	if err := ctx.Err(); err != nil {
		return feeddomain.Segment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return feeddomain.Segment{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(segment.ID) == "" {
		return feeddomain.Segment{}, fmt.Errorf("segment id is required")
	}
	if strings.TrimSpace(segment.MeetingID) == "" {
		return feeddomain.Segment{}, fmt.Errorf("meeting id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO transcript_segments (id, meeting_id, start_ms, end_ms, speaker, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		segment.ID,
		segment.MeetingID,
		segment.Start.Milliseconds(),
		segment.End.Milliseconds(),
		segment.Speaker,
		segment.Content,
		toMillis(segment.CreatedAt),
	)
	if err != nil {
		return feeddomain.Segment{}, fmt.Errorf("append segment: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return feeddomain.Segment{}, fmt.Errorf("append segment: %w", err)
	}

	segment.Seq = seq
	return segment, nil
}

// ListSegments returns a meeting's segments ordered by (start, seq).
func (s *Store) ListSegments(ctx context.Context, meetingID string) ([]feeddomain.Segment, error) {
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
		`SELECT `+segmentColumns+` FROM transcript_segments
		 WHERE meeting_id = ?
		 ORDER BY start_ms ASC, seq ASC`,
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segments []feeddomain.Segment
	for rows.Next() {
		segment, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("list segments: %w", err)
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	return segments, nil
}
