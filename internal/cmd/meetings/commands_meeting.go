package meetings

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	meetingservice "github.com/louisbranch/huddle.space/internal/meeting/service"
	platformcmd "github.com/louisbranch/huddle.space/internal/platform/cmd"
)

func printMeeting(rt *runtime, meeting domain.Meeting) {
	fmt.Fprintf(rt.out, "meeting %s status=%s host=%s topic=%q\n",
		meeting.ID, domain.StatusLabel(meeting.Status), meeting.HostEmail, meeting.Topic)
}

func printParticipant(rt *runtime, participant domain.Participant) {
	fmt.Fprintf(rt.out, "participant %s role=%s state=%s joined=%s\n",
		participant.Email,
		domain.RoleLabel(participant.Role),
		domain.StateLabel(participant.State),
		participant.JoinedAt.Format(time.RFC3339))
}

func parseStartTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	return &parsed, nil
}

func runSchedule(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	host := fs.String("host", "", "host email")
	topic := fs.String("topic", "", "meeting topic")
	start := fs.String("start", "", "scheduled start time (RFC3339)")
	duration := fs.Int("duration", 0, "planned duration in minutes")
	description := fs.String("description", "", "meeting description")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	startTime, err := parseStartTime(*start)
	if err != nil {
		return err
	}

	meeting, err := rt.meetings.Schedule(ctx, meetingservice.ScheduleInput{
		HostEmail:       *host,
		Topic:           *topic,
		StartTime:       startTime,
		DurationMinutes: *duration,
		Description:     *description,
	})
	if err != nil {
		return err
	}
	printMeeting(rt, meeting)
	return nil
}

func runQuickStart(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("quickstart", flag.ContinueOnError)
	host := fs.String("host", "", "host email")
	topic := fs.String("topic", "", "meeting topic")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	meeting, participant, err := rt.meetings.QuickStart(ctx, meetingservice.ScheduleInput{
		HostEmail: *host,
		Topic:     *topic,
	})
	if err != nil {
		return err
	}
	printMeeting(rt, meeting)
	printParticipant(rt, participant)
	return nil
}

func runStart(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	meeting, err := rt.meetings.Start(ctx, *actor, *meetingID)
	if err != nil {
		return err
	}
	printMeeting(rt, meeting)
	return nil
}

func runEnd(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("end", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	meeting, err := rt.meetings.End(ctx, *actor, *meetingID)
	if err != nil {
		return err
	}
	printMeeting(rt, meeting)
	return nil
}

func runUpdate(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id")
	topic := fs.String("topic", "", "meeting topic")
	start := fs.String("start", "", "scheduled start time (RFC3339)")
	duration := fs.Int("duration", -1, "planned duration in minutes")
	description := fs.String("description", "", "meeting description")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	var input meetingservice.UpdateInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "topic":
			input.Topic = topic
		case "duration":
			input.DurationMinutes = duration
		case "description":
			input.Description = description
		}
	})
	if *start != "" {
		startTime, err := parseStartTime(*start)
		if err != nil {
			return err
		}
		input.StartTime = startTime
	}

	meeting, err := rt.meetings.Update(ctx, *actor, *meetingID, input)
	if err != nil {
		return err
	}
	printMeeting(rt, meeting)
	return nil
}

func runGet(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	meetingID := fs.String("meeting", "", "meeting id")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	meeting, err := rt.meetings.Get(ctx, *meetingID)
	if err != nil {
		return err
	}
	printMeeting(rt, meeting)
	return nil
}

func runRoster(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("roster", flag.ContinueOnError)
	meetingID := fs.String("meeting", "", "meeting id")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	roster, err := rt.meetings.Roster(ctx, *meetingID)
	if err != nil {
		return err
	}
	for _, participant := range roster {
		printParticipant(rt, participant)
	}
	return nil
}

func runJoin(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("join", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id")
	inviteID := fs.String("invite", "", "invitation id for grant-based join")
	grant := fs.String("grant", "", "signed join grant")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	var participant domain.Participant
	var err error
	if *grant != "" {
		participant, err = rt.meetings.JoinWithGrant(ctx, *actor, *meetingID, *inviteID, *grant)
	} else {
		participant, err = rt.meetings.Join(ctx, *actor, *meetingID)
	}
	if err != nil {
		return err
	}
	printParticipant(rt, participant)
	return nil
}

func runLeave(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("leave", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	participant, err := rt.meetings.Leave(ctx, *actor, *meetingID)
	if err != nil {
		return err
	}
	printParticipant(rt, participant)
	return nil
}
