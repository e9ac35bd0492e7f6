package domain

import (
	"errors"
	"testing"
	"time"
)

func meetingFixture() Meeting {
	return Meeting{
		ID:        "mtg123",
		HostEmail: "host@example.com",
		Status:    MeetingStatusRunning,
	}
}

func TestAdmitParticipantDerivesHostRole(t *testing.T) {
	fixedTime := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	participant, err := AdmitParticipant(AdmitParticipantInput{
		Meeting: meetingFixture(),
		Email:   " HOST@example.com ",
	}, func() time.Time { return fixedTime })
	if err != nil {
		t.Fatalf("admit participant: %v", err)
	}

	if participant.Role != ParticipantRoleHost {
		t.Fatalf("expected host role, got %v", participant.Role)
	}
	if participant.State != ParticipantStateJoined {
		t.Fatalf("expected joined state, got %v", participant.State)
	}
	if participant.Email != "host@example.com" {
		t.Fatalf("expected normalized email, got %q", participant.Email)
	}
	if !participant.JoinedAt.Equal(fixedTime) {
		t.Fatal("expected joined-at to match fixed time")
	}
}

func TestAdmitParticipantAttendeeRole(t *testing.T) {
	participant, err := AdmitParticipant(AdmitParticipantInput{
		Meeting: meetingFixture(),
		Email:   "bob@example.com",
	}, nil)
	if err != nil {
		t.Fatalf("admit participant: %v", err)
	}
	if participant.Role != ParticipantRoleAttendee {
		t.Fatalf("expected attendee role, got %v", participant.Role)
	}
}

func TestAdmitParticipantRequiresEmail(t *testing.T) {
	_, err := AdmitParticipant(AdmitParticipantInput{Meeting: meetingFixture(), Email: "   "}, nil)
	if !errors.Is(err, ErrEmptyParticipantEmail) {
		t.Fatalf("err = %v, want %v", err, ErrEmptyParticipantEmail)
	}
}

func TestParticipantLabelRoundTrips(t *testing.T) {
	for _, role := range []ParticipantRole{ParticipantRoleHost, ParticipantRoleAttendee} {
		if got := RoleFromLabel(RoleLabel(role)); got != role {
			t.Errorf("role round trip for %v returned %v", role, got)
		}
	}
	for _, state := range []ParticipantState{ParticipantStateJoined, ParticipantStateLeft} {
		if got := StateFromLabel(StateLabel(state)); got != state {
			t.Errorf("state round trip for %v returned %v", state, got)
		}
	}
}
