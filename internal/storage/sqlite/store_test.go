package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	feeddomain "github.com/louisbranch/huddle.space/internal/feed/domain"
	"github.com/louisbranch/huddle.space/internal/feed/filter"
	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/invite"
	"github.com/louisbranch/huddle.space/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "huddle.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func testMeeting(id string) domain.Meeting {
	createdAt := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	return domain.Meeting{
		ID:        id,
		Topic:     "Standup",
		HostEmail: "host@example.com",
		Status:    domain.MeetingStatusScheduled,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCloseNilStore(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestMeetingPutGetUpdate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meeting := testMeeting("mtg1")
	start := time.Date(2026, 8, 21, 14, 0, 0, 0, time.UTC)
	meeting.StartTime = &start
	meeting.DurationMinutes = 30

	if err := store.PutMeeting(ctx, meeting); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	got, err := store.GetMeeting(ctx, "mtg1")
	if err != nil {
		t.Fatalf("get meeting: %v", err)
	}
	if got.Topic != "Standup" || got.HostEmail != "host@example.com" {
		t.Fatalf("unexpected meeting: %+v", got)
	}
	if got.StartTime == nil || !got.StartTime.Equal(start) {
		t.Fatalf("unexpected start time: %v", got.StartTime)
	}
	if got.StartedAt != nil || got.EndedAt != nil {
		t.Fatal("expected nil started/ended timestamps")
	}

	got.Topic = "Retro"
	got.UpdatedAt = got.UpdatedAt.Add(time.Minute)
	if err := store.UpdateMeeting(ctx, got); err != nil {
		t.Fatalf("update meeting: %v", err)
	}
	updated, err := store.GetMeeting(ctx, "mtg1")
	if err != nil {
		t.Fatalf("get meeting: %v", err)
	}
	if updated.Topic != "Retro" {
		t.Fatalf("expected updated topic, got %q", updated.Topic)
	}
}

func TestGetMeetingNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetMeeting(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestUpdateMeetingNotFound(t *testing.T) {
	store := openTestStore(t)
	if err := store.UpdateMeeting(context.Background(), testMeeting("missing")); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestTransitionMeetingStatusSingleFire(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMeeting(ctx, testMeeting("mtg1")); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	at := time.Date(2026, 8, 21, 14, 0, 0, 0, time.UTC)
	meeting, applied, err := store.TransitionMeetingStatus(ctx, "mtg1", domain.MeetingStatusScheduled, domain.MeetingStatusRunning, at)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !applied {
		t.Fatal("expected transition to apply")
	}
	if meeting.Status != domain.MeetingStatusRunning {
		t.Fatalf("status = %v, want running", meeting.Status)
	}
	if meeting.StartedAt == nil || !meeting.StartedAt.Equal(at) {
		t.Fatalf("started-at = %v, want %v", meeting.StartedAt, at)
	}

	_, applied, err = store.TransitionMeetingStatus(ctx, "mtg1", domain.MeetingStatusScheduled, domain.MeetingStatusRunning, at.Add(time.Minute))
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}
	if applied {
		t.Fatal("expected second transition to report no change")
	}
}

func TestTransitionMeetingStatusNotFound(t *testing.T) {
	store := openTestStore(t)
	_, _, err := store.TransitionMeetingStatus(context.Background(), "missing", domain.MeetingStatusScheduled, domain.MeetingStatusRunning, time.Now())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestEndMeetingCascadesRoster(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meeting := testMeeting("mtg1")
	meeting.Status = domain.MeetingStatusRunning
	if err := store.PutMeeting(ctx, meeting); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	joinedAt := time.Date(2026, 8, 21, 14, 5, 0, 0, time.UTC)
	for _, email := range []string{"host@example.com", "bob@example.com"} {
		_, err := store.UpsertParticipantJoined(ctx, domain.Participant{
			MeetingID: "mtg1",
			Email:     email,
			Role:      domain.ParticipantRoleAttendee,
			State:     domain.ParticipantStateJoined,
			JoinedAt:  joinedAt,
			UpdatedAt: joinedAt,
		})
		if err != nil {
			t.Fatalf("upsert participant: %v", err)
		}
	}

	endedAt := joinedAt.Add(time.Hour)
	ended, applied, err := store.EndMeeting(ctx, "mtg1", endedAt)
	if err != nil {
		t.Fatalf("end meeting: %v", err)
	}
	if !applied {
		t.Fatal("expected end to apply")
	}
	if ended.Status != domain.MeetingStatusEnded {
		t.Fatalf("status = %v, want ended", ended.Status)
	}
	if ended.EndedAt == nil || !ended.EndedAt.Equal(endedAt) {
		t.Fatalf("ended-at = %v, want %v", ended.EndedAt, endedAt)
	}

	roster, err := store.ListParticipants(ctx, "mtg1")
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	for _, participant := range roster {
		if participant.State != domain.ParticipantStateLeft {
			t.Fatalf("participant %s state = %v, want left", participant.Email, participant.State)
		}
		if !participant.UpdatedAt.Equal(endedAt) {
			t.Fatalf("participant %s updated-at = %v, want %v", participant.Email, participant.UpdatedAt, endedAt)
		}
	}

	_, applied, err = store.EndMeeting(ctx, "mtg1", endedAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("second end: %v", err)
	}
	if applied {
		t.Fatal("expected second end to report no change")
	}
}

func TestParticipantRejoinPreservesJoinedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMeeting(ctx, testMeeting("mtg1")); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	joinedAt := time.Date(2026, 8, 21, 14, 5, 0, 0, time.UTC)
	participant := domain.Participant{
		MeetingID: "mtg1",
		Email:     "bob@example.com",
		Role:      domain.ParticipantRoleAttendee,
		State:     domain.ParticipantStateJoined,
		JoinedAt:  joinedAt,
		UpdatedAt: joinedAt,
	}
	if _, err := store.UpsertParticipantJoined(ctx, participant); err != nil {
		t.Fatalf("upsert participant: %v", err)
	}

	leftAt := joinedAt.Add(10 * time.Minute)
	_, changed, err := store.SetParticipantState(ctx, "mtg1", "bob@example.com", domain.ParticipantStateLeft, leftAt)
	if err != nil {
		t.Fatalf("set state: %v", err)
	}
	if !changed {
		t.Fatal("expected state change")
	}

	// Leaving again is a no-op.
	_, changed, err = store.SetParticipantState(ctx, "mtg1", "bob@example.com", domain.ParticipantStateLeft, leftAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("set state again: %v", err)
	}
	if changed {
		t.Fatal("expected idempotent leave to report no change")
	}

	rejoinAt := leftAt.Add(20 * time.Minute)
	participant.JoinedAt = rejoinAt
	participant.UpdatedAt = rejoinAt
	got, err := store.UpsertParticipantJoined(ctx, participant)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if got.State != domain.ParticipantStateJoined {
		t.Fatalf("state = %v, want joined", got.State)
	}
	if !got.JoinedAt.Equal(joinedAt) {
		t.Fatalf("joined-at = %v, want original %v", got.JoinedAt, joinedAt)
	}
}

func TestSetParticipantStateNotFound(t *testing.T) {
	store := openTestStore(t)
	_, _, err := store.SetParticipantState(context.Background(), "mtg1", "ghost@example.com", domain.ParticipantStateLeft, time.Now())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListParticipantsOrdered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMeeting(ctx, testMeeting("mtg1")); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	base := time.Date(2026, 8, 21, 14, 0, 0, 0, time.UTC)
	seats := []struct {
		email    string
		joinedAt time.Time
	}{
		{"carol@example.com", base.Add(2 * time.Minute)},
		{"bob@example.com", base},
		{"alice@example.com", base},
	}
	for _, seat := range seats {
		_, err := store.UpsertParticipantJoined(ctx, domain.Participant{
			MeetingID: "mtg1",
			Email:     seat.email,
			Role:      domain.ParticipantRoleAttendee,
			State:     domain.ParticipantStateJoined,
			JoinedAt:  seat.joinedAt,
			UpdatedAt: seat.joinedAt,
		})
		if err != nil {
			t.Fatalf("upsert %s: %v", seat.email, err)
		}
	}

	roster, err := store.ListParticipants(ctx, "mtg1")
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	want := []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	if len(roster) != len(want) {
		t.Fatalf("roster len = %d, want %d", len(roster), len(want))
	}
	for i, email := range want {
		if roster[i].Email != email {
			t.Fatalf("roster[%d] = %s, want %s", i, roster[i].Email, email)
		}
	}
}

func TestInviteTransitionSingleFire(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMeeting(ctx, testMeeting("mtg1")); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	createdAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	invitation := invite.Invitation{
		ID:           "inv1",
		MeetingID:    "mtg1",
		InviteeEmail: "bob@example.com",
		Status:       invite.StatusPending,
		CreatedBy:    "host@example.com",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := store.PutInvite(ctx, invitation); err != nil {
		t.Fatalf("put invite: %v", err)
	}

	accepted, applied, err := store.TransitionInviteStatus(ctx, "inv1", invite.StatusPending, invite.StatusAccepted, createdAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !applied || accepted.Status != invite.StatusAccepted {
		t.Fatalf("expected accepted invite, got applied=%v status=%v", applied, accepted.Status)
	}

	_, applied, err = store.TransitionInviteStatus(ctx, "inv1", invite.StatusPending, invite.StatusDeclined, createdAt.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("decline after accept: %v", err)
	}
	if applied {
		t.Fatal("expected resolved invite to reject second response")
	}
}

func TestListInvites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMeeting(ctx, testMeeting("mtg1")); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i, invitee := range []string{"bob@example.com", "carol@example.com", "bob@example.com"} {
		invitation := invite.Invitation{
			ID:           string(rune('a' + i)),
			MeetingID:    "mtg1",
			InviteeEmail: invitee,
			Status:       invite.StatusPending,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.PutInvite(ctx, invitation); err != nil {
			t.Fatalf("put invite: %v", err)
		}
	}

	byMeeting, err := store.ListInvitesByMeeting(ctx, "mtg1")
	if err != nil {
		t.Fatalf("list by meeting: %v", err)
	}
	if len(byMeeting) != 3 {
		t.Fatalf("expected 3 invites, got %d", len(byMeeting))
	}

	byInvitee, err := store.ListInvitesByInvitee(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("list by invitee: %v", err)
	}
	if len(byInvitee) != 2 {
		t.Fatalf("expected 2 invites for bob, got %d", len(byInvitee))
	}
}

func TestAppendMessageAssignsSeqAndClampsTime(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMeeting(ctx, testMeeting("mtg1")); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	base := time.Date(2026, 8, 21, 14, 10, 0, 0, time.UTC)
	first, err := store.AppendMessage(ctx, feeddomain.Message{
		ID: "msg1", MeetingID: "mtg1", SenderEmail: "bob@example.com", Content: "hello", SentAt: base,
	})
	if err != nil {
		t.Fatalf("append first: %v", err)
	}
	if first.Seq == 0 {
		t.Fatal("expected non-zero seq")
	}

	// A message stamped in the past is clamped to the feed high-water mark.
	second, err := store.AppendMessage(ctx, feeddomain.Message{
		ID: "msg2", MeetingID: "mtg1", SenderEmail: "carol@example.com", Content: "hi", SentAt: base.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("append second: %v", err)
	}
	if second.Seq <= first.Seq {
		t.Fatalf("seq = %d, want > %d", second.Seq, first.Seq)
	}
	if second.SentAt.Before(first.SentAt) {
		t.Fatalf("sent-at %v runs before %v", second.SentAt, first.SentAt)
	}

	messages, err := store.ListMessages(ctx, "mtg1")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != "msg1" || messages[1].ID != "msg2" {
		t.Fatalf("unexpected order: %s, %s", messages[0].ID, messages[1].ID)
	}
}

func TestListMessagesMatching(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMeeting(ctx, testMeeting("mtg1")); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	base := time.Date(2026, 8, 21, 14, 10, 0, 0, time.UTC)
	for i, sender := range []string{"bob@example.com", "carol@example.com", "bob@example.com"} {
		_, err := store.AppendMessage(ctx, feeddomain.Message{
			ID:          string(rune('a' + i)),
			MeetingID:   "mtg1",
			SenderEmail: sender,
			Content:     "hello",
			SentAt:      base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("append message: %v", err)
		}
	}

	condition, err := filter.ParseMessageFilter(`sender_email = "bob@example.com"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	matching, err := store.ListMessagesMatching(ctx, "mtg1", condition)
	if err != nil {
		t.Fatalf("list matching: %v", err)
	}
	if len(matching) != 2 {
		t.Fatalf("expected 2 matching messages, got %d", len(matching))
	}
	for _, message := range matching {
		if message.SenderEmail != "bob@example.com" {
			t.Fatalf("unexpected sender %s", message.SenderEmail)
		}
	}
}

func TestAppendAndListSegments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMeeting(ctx, testMeeting("mtg1")); err != nil {
		t.Fatalf("put meeting: %v", err)
	}

	createdAt := time.Date(2026, 8, 21, 14, 10, 0, 0, time.UTC)
	inputs := []feeddomain.Segment{
		{ID: "seg2", MeetingID: "mtg1", Start: 2 * time.Second, End: 6 * time.Second, Speaker: "carol@example.com", Content: "b", CreatedAt: createdAt},
		{ID: "seg1", MeetingID: "mtg1", Start: 0, End: 5 * time.Second, Speaker: "bob@example.com", Content: "a", CreatedAt: createdAt},
	}
	for _, segment := range inputs {
		if _, err := store.AppendSegment(ctx, segment); err != nil {
			t.Fatalf("append segment: %v", err)
		}
	}

	segments, err := store.ListSegments(ctx, "mtg1")
	if err != nil {
		t.Fatalf("list segments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].ID != "seg1" || segments[1].ID != "seg2" {
		t.Fatalf("unexpected order: %s, %s", segments[0].ID, segments[1].ID)
	}
	if segments[1].Start != 2*time.Second || segments[1].End != 6*time.Second {
		t.Fatalf("unexpected range: %v-%v", segments[1].Start, segments[1].End)
	}
}
