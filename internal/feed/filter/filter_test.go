package filter

import (
	"reflect"
	"testing"
	"time"

	apperrors "github.com/louisbranch/huddle.space/internal/platform/errors"
)

func TestParseMessageFilter_SenderEquals(t *testing.T) {
	cond, err := ParseMessageFilter(`sender_email = "bob@example.com"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "sender_email = ?" {
		t.Errorf("expected 'sender_email = ?', got %q", cond.Clause)
	}
	if !reflect.DeepEqual(cond.Params, []any{"bob@example.com"}) {
		t.Errorf("Params = %v", cond.Params)
	}
}

func TestParseMessageFilter_Empty(t *testing.T) {
	cond, err := ParseMessageFilter(" ")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "" || cond.Params != nil {
		t.Fatalf("expected empty condition, got %+v", cond)
	}
}

func TestParseMessageFilter_AndOr(t *testing.T) {
	cond, err := ParseMessageFilter(`sender_email = "bob@example.com" AND ts > timestamp("2026-08-01T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(sender_email = ? AND sent_at_ms > ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	wantMillis := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if !reflect.DeepEqual(cond.Params, []any{"bob@example.com", wantMillis}) {
		t.Fatalf("Params = %v", cond.Params)
	}

	cond, err = ParseMessageFilter(`sender_email = "bob@example.com" OR sender_email = "carol@example.com"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(sender_email = ? OR sender_email = ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
}

func TestParseMessageFilter_TimestampRange(t *testing.T) {
	cond, err := ParseMessageFilter(`ts >= timestamp("2026-08-01T00:00:00Z") AND ts < timestamp("2026-08-02T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(sent_at_ms >= ? AND sent_at_ms < ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	if len(cond.Params) != 2 {
		t.Fatalf("Params len = %d", len(cond.Params))
	}
}

func TestParseMessageFilter_InvalidField(t *testing.T) {
	_, err := ParseMessageFilter(`unknown = "x"`)
	if !apperrors.IsCode(err, apperrors.CodeFeedInvalidFilter) {
		t.Fatalf("err = %v, want invalid filter", err)
	}
}

func TestParseMessageFilter_InvalidTimestamp(t *testing.T) {
	_, err := ParseMessageFilter(`ts = timestamp("not-a-time")`)
	if !apperrors.IsCode(err, apperrors.CodeFeedInvalidFilter) {
		t.Fatalf("err = %v, want invalid filter", err)
	}
}
