// Package domain holds the collaboration feed records: chat messages and
// transcript segments attached to a meeting.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/huddle.space/internal/id"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

// ErrEmptyContent indicates a chat message with no content.
var ErrEmptyContent = apperrors.New(apperrors.CodeMessageEmptyContent, "message content is required")

// Message is one chat message in a meeting feed. Seq is assigned by the store
// on append and breaks ties between messages sharing the same SentAt instant.
type Message struct {
	ID          string
	Seq         int64
	MeetingID   string
	SenderEmail string
	Content     string
	SentAt      time.Time
}

// ComposeMessageInput describes the metadata needed to compose a message.
type ComposeMessageInput struct {
	MeetingID   string
	SenderEmail string
	Content     string
}

// ComposeMessage builds a chat message with a generated ID and timestamp. The
// store assigns Seq on append.
func ComposeMessage(input ComposeMessageInput, now func() time.Time, idGenerator func() (string, error)) (Message, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return Message{}, ErrEmptyContent
	}

	messageID, err := idGenerator()
	if err != nil {
		return Message{}, fmt.Errorf("generate message id: %w", err)
	}

	return Message{
		ID:          messageID,
		MeetingID:   strings.TrimSpace(input.MeetingID),
		SenderEmail: strings.ToLower(strings.TrimSpace(input.SenderEmail)),
		Content:     content,
		SentAt:      now().UTC(),
	}, nil
}
