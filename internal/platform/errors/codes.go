// Package errors provides structured error handling for the meeting core.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Meeting errors
	CodeMeetingEmptyHost               Code = "MEETING_EMPTY_HOST"
	CodeMeetingNotStarted              Code = "MEETING_NOT_STARTED"
	CodeMeetingEnded                   Code = "MEETING_ENDED"
	CodeMeetingInvalidStatusTransition Code = "MEETING_INVALID_STATUS_TRANSITION"

	// Participant errors
	CodeParticipantEmptyEmail Code = "PARTICIPANT_EMPTY_EMAIL"

	// Invitation errors
	CodeInviteEmptyMeetingID Code = "INVITE_EMPTY_MEETING_ID"
	CodeInviteEmptyInvitee   Code = "INVITE_EMPTY_INVITEE"
	CodeInviteNotPending     Code = "INVITE_NOT_PENDING"

	// Join grant errors
	CodeInviteJoinGrantInvalid  Code = "INVITE_JOIN_GRANT_INVALID"
	CodeInviteJoinGrantExpired  Code = "INVITE_JOIN_GRANT_EXPIRED"
	CodeInviteJoinGrantMismatch Code = "INVITE_JOIN_GRANT_MISMATCH"

	// Feed errors
	CodeMessageEmptyContent    Code = "MESSAGE_EMPTY_CONTENT"
	CodeTranscriptInvalidRange Code = "TRANSCRIPT_INVALID_RANGE"
	CodeFeedInvalidFilter      Code = "FEED_INVALID_FILTER"

	// Authorization errors
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeMeetingEmptyHost,
		CodeParticipantEmptyEmail,
		CodeInviteEmptyMeetingID,
		CodeInviteEmptyInvitee,
		CodeMessageEmptyContent,
		CodeTranscriptInvalidRange,
		CodeFeedInvalidFilter:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeMeetingNotStarted,
		CodeMeetingEnded,
		CodeMeetingInvalidStatusTransition,
		CodeInviteNotPending:
		return codes.FailedPrecondition

	// PermissionDenied - actor lacks the required role or relationship
	case CodeUnauthorized,
		CodeInviteJoinGrantMismatch:
		return codes.PermissionDenied

	// Unauthenticated - credential is missing, malformed, or expired
	case CodeInviteJoinGrantInvalid,
		CodeInviteJoinGrantExpired:
		return codes.Unauthenticated

	case CodeNotFound:
		return codes.NotFound

	case CodeStoreUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

// Retryable reports whether a caller may retry the failed operation without
// changing its input. Everything except transient storage failures is a
// permanent outcome.
func (c Code) Retryable() bool {
	switch c {
	case CodeStoreUnavailable, CodeUnknown:
		return true
	default:
		return false
	}
}
