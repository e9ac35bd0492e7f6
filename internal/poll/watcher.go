// Package poll implements the client-side sync loop. A Watcher periodically
// pulls full snapshots of a meeting's roster, chat feed, and transcript, and
// reports a snapshot whenever anything changed since the last poll. There are
// no cursors or deltas: every poll fetches everything and the watcher diffs
// locally.
package poll

import (
	"context"
	"log"
	"time"

	feeddomain "github.com/louisbranch/huddle.space/internal/feed/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 2 * time.Second

// Snapshot is one full view of a meeting at poll time.
type Snapshot struct {
	Meeting  domain.Meeting
	Roster   []domain.Participant
	Messages []feeddomain.Message
	Segments []feeddomain.Segment
	PolledAt time.Time
}

// Source is the read surface the watcher polls. Both the meeting and feed
// services satisfy it together; tests can stub it directly.
type Source interface {
	GetMeeting(ctx context.Context, meetingID string) (domain.Meeting, error)
	ListParticipants(ctx context.Context, meetingID string) ([]domain.Participant, error)
	ListMessages(ctx context.Context, meetingID string) ([]feeddomain.Message, error)
	ListSegments(ctx context.Context, meetingID string) ([]feeddomain.Segment, error)
}

// Watcher polls one meeting for changes.
type Watcher struct {
	source    Source
	meetingID string
	interval  time.Duration
	clock     func() time.Time
	logf      func(format string, args ...any)

	last fingerprint
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the poll cadence.
func WithInterval(interval time.Duration) Option {
	return func(w *Watcher) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// WithClock injects the watcher's clock, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(w *Watcher) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithLogf injects the watcher's log function, used by tests.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(w *Watcher) {
		if logf != nil {
			w.logf = logf
		}
	}
}

// NewWatcher creates a watcher for one meeting.
func NewWatcher(source Source, meetingID string, opts ...Option) *Watcher {
	watcher := &Watcher{
		source:    source,
		meetingID: meetingID,
		interval:  DefaultInterval,
		clock:     time.Now,
		logf:      log.Printf,
	}
	for _, opt := range opts {
		opt(watcher)
	}
	return watcher
}

// fingerprint condenses a snapshot into a comparable change marker: the
// meeting status and update time, every roster seat's state, and the highest
// sequence number seen in each feed.
type fingerprint struct {
	status        domain.MeetingStatus
	updatedAt     time.Time
	rosterStates  string
	maxMessageSeq int64
	maxSegmentSeq int64
}

func fingerprintOf(snapshot Snapshot) fingerprint {
	fp := fingerprint{
		status:    snapshot.Meeting.Status,
		updatedAt: snapshot.Meeting.UpdatedAt,
	}
	for _, participant := range snapshot.Roster {
		fp.rosterStates += participant.Email + "=" + domain.StateLabel(participant.State) + ";"
	}
	for _, message := range snapshot.Messages {
		if message.Seq > fp.maxMessageSeq {
			fp.maxMessageSeq = message.Seq
		}
	}
	for _, segment := range snapshot.Segments {
		if segment.Seq > fp.maxSegmentSeq {
			fp.maxSegmentSeq = segment.Seq
		}
	}
	return fp
}

// Poll fetches one full snapshot and reports whether it differs from the
// previous poll. The first poll always reports a change.
func (w *Watcher) Poll(ctx context.Context) (Snapshot, bool, error) {
	meeting, err := w.source.GetMeeting(ctx, w.meetingID)
	if err != nil {
		return Snapshot{}, false, err
	}
	roster, err := w.source.ListParticipants(ctx, w.meetingID)
	if err != nil {
		return Snapshot{}, false, err
	}
	messages, err := w.source.ListMessages(ctx, w.meetingID)
	if err != nil {
		return Snapshot{}, false, err
	}
	segments, err := w.source.ListSegments(ctx, w.meetingID)
	if err != nil {
		return Snapshot{}, false, err
	}

	snapshot := Snapshot{
		Meeting:  meeting,
		Roster:   roster,
		Messages: messages,
		Segments: segments,
		PolledAt: w.clock().UTC(),
	}

	fp := fingerprintOf(snapshot)
	changed := fp != w.last || w.last == (fingerprint{})
	w.last = fp
	return snapshot, changed, nil
}

// Watch polls until ctx is canceled or the meeting ends, invoking onChange
// for every snapshot that differs from the previous one. Transient store
// failures are logged and retried on the next tick; any other error stops
// the loop.
func (w *Watcher) Watch(ctx context.Context, onChange func(Snapshot)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		snapshot, changed, err := w.Poll(ctx)
		switch {
		case err == nil:
			if changed && onChange != nil {
				onChange(snapshot)
			}
			if snapshot.Meeting.Status == domain.MeetingStatusEnded {
				return nil
			}
		case apperrors.GetCode(err).Retryable():
			w.logf("poll meeting %s: %v (retrying)", w.meetingID, err)
		default:
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
