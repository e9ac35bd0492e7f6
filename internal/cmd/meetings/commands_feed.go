package meetings

import (
	"context"
	"flag"
	"fmt"
	"time"

	feeddomain "github.com/louisbranch/huddle.space/internal/feed/domain"
	"github.com/louisbranch/huddle.space/internal/meeting/domain"
	platformcmd "github.com/louisbranch/huddle.space/internal/platform/cmd"
	"github.com/louisbranch/huddle.space/internal/poll"
)

func printMessage(rt *runtime, message feeddomain.Message) {
	fmt.Fprintf(rt.out, "[%s] %s: %s\n",
		message.SentAt.Format(time.RFC3339), message.SenderEmail, message.Content)
}

func printSegment(rt *runtime, segment feeddomain.Segment) {
	fmt.Fprintf(rt.out, "[%s - %s] %s: %s\n",
		segment.Start, segment.End, segment.Speaker, segment.Content)
}

func runPost(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id")
	content := fs.String("content", "", "message content")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	message, err := rt.feed.PostMessage(ctx, *actor, *meetingID, *content)
	if err != nil {
		return err
	}
	printMessage(rt, message)
	return nil
}

func runChat(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	meetingID := fs.String("meeting", "", "meeting id")
	filterStr := fs.String("filter", "", "AIP-160 filter over sender_email and ts")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	messages, err := rt.feed.ListMessagesFiltered(ctx, *meetingID, *filterStr)
	if err != nil {
		return err
	}
	for _, message := range messages {
		printMessage(rt, message)
	}
	return nil
}

func runSay(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("say", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id")
	start := fs.Duration("start", 0, "segment start offset")
	end := fs.Duration("end", 0, "segment end offset")
	content := fs.String("content", "", "segment content")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	segment, err := rt.feed.AppendSegment(ctx, *actor, *meetingID, *start, *end, *content)
	if err != nil {
		return err
	}
	printSegment(rt, segment)
	return nil
}

func runTranscript(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("transcript", flag.ContinueOnError)
	meetingID := fs.String("meeting", "", "meeting id")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	segments, err := rt.feed.ListSegments(ctx, *meetingID)
	if err != nil {
		return err
	}
	for _, segment := range segments {
		printSegment(rt, segment)
	}
	return nil
}

func runCaption(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("caption", flag.ContinueOnError)
	meetingID := fs.String("meeting", "", "meeting id")
	at := fs.Duration("at", 0, "playhead offset")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	caption, err := rt.feed.CaptionAt(ctx, *meetingID, *at)
	if err != nil {
		return err
	}
	if caption == nil {
		fmt.Fprintln(rt.out, "no caption")
		return nil
	}
	printSegment(rt, *caption)
	return nil
}

func runWatch(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	meetingID := fs.String("meeting", "", "meeting id")
	interval := fs.Duration("interval", rt.config.PollInterval, "poll interval")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	watcher := poll.NewWatcher(
		poll.NewServiceSource(rt.meetings, rt.feed),
		*meetingID,
		poll.WithInterval(*interval),
	)
	return watcher.Watch(ctx, func(snapshot poll.Snapshot) {
		fmt.Fprintf(rt.out, "--- %s status=%s roster=%d messages=%d segments=%d\n",
			snapshot.PolledAt.Format(time.RFC3339),
			domain.StatusLabel(snapshot.Meeting.Status),
			len(snapshot.Roster),
			len(snapshot.Messages),
			len(snapshot.Segments))
		for _, message := range snapshot.Messages {
			printMessage(rt, message)
		}
	})
}
