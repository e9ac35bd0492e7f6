// Package domain defines the entities and lifecycle state for meetings.
//
// A Meeting is the aggregate root for one collaborative session. Participants,
// invitations, chat messages, and transcript segments all hang off a meeting
// and share its lifetime.
//
// # Meeting Lifecycle
//
// Meetings move forward through three statuses and never backward:
//   - Scheduled: The meeting exists but nobody can join yet.
//   - Running: The host started the meeting and participants may join.
//   - Ended: The meeting is over; joining fails and the roster is frozen.
package domain
