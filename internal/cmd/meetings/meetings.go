// Package meetings implements the meetings command-line interface. Every
// subcommand drives the core services against the shared SQLite store, so
// multiple invocations on the same database act like clients of one meeting.
package meetings

import (
	"context"
	"fmt"
	"io"
	"time"

	feedservice "github.com/louisbranch/huddle.space/internal/feed/service"
	"github.com/louisbranch/huddle.space/internal/meeting/invite"
	meetingservice "github.com/louisbranch/huddle.space/internal/meeting/service"
	platformcmd "github.com/louisbranch/huddle.space/internal/platform/cmd"
	"github.com/louisbranch/huddle.space/internal/storage/sqlite"
)

// Config holds meetings CLI configuration.
type Config struct {
	DBPath       string        `env:"HUDDLE_SPACE_DB_PATH" envDefault:"huddle.db"`
	PollInterval time.Duration `env:"HUDDLE_SPACE_POLL_INTERVAL" envDefault:"2s"`
}

// runtime bundles the opened store and services behind the subcommands.
type runtime struct {
	config   Config
	out      io.Writer
	store    *sqlite.Store
	meetings *meetingservice.MeetingService
	invites  *meetingservice.InvitationService
	feed     *feedservice.FeedService
}

type command struct {
	name    string
	usage   string
	run     func(ctx context.Context, rt *runtime, args []string) error
}

func commands() []command {
	return []command{
		{"schedule", "schedule -host EMAIL [-topic T] [-start RFC3339] [-duration MIN] [-description D]", runSchedule},
		{"quickstart", "quickstart -host EMAIL [-topic T]", runQuickStart},
		{"start", "start -actor EMAIL -meeting ID", runStart},
		{"end", "end -actor EMAIL -meeting ID", runEnd},
		{"update", "update -actor EMAIL -meeting ID [-topic T] [-start RFC3339] [-duration MIN] [-description D]", runUpdate},
		{"get", "get -meeting ID", runGet},
		{"roster", "roster -meeting ID", runRoster},
		{"join", "join -actor EMAIL -meeting ID [-invite ID -grant TOKEN]", runJoin},
		{"leave", "leave -actor EMAIL -meeting ID", runLeave},
		{"invite", "invite -actor EMAIL -meeting ID -invitee EMAIL", runInvite},
		{"accept", "accept -actor EMAIL -invite ID", runAccept},
		{"decline", "decline -actor EMAIL -invite ID", runDecline},
		{"invites", "invites -actor EMAIL [-meeting ID]", runInvites},
		{"grant", "grant -actor EMAIL -invite ID", runGrant},
		{"post", "post -actor EMAIL -meeting ID -content TEXT", runPost},
		{"chat", "chat -meeting ID [-filter EXPR]", runChat},
		{"say", "say -actor EMAIL -meeting ID -start DUR -end DUR -content TEXT", runSay},
		{"transcript", "transcript -meeting ID", runTranscript},
		{"caption", "caption -meeting ID -at DUR", runCaption},
		{"watch", "watch -meeting ID [-interval DUR]", runWatch},
	}
}

// Run executes one meetings subcommand.
func Run(ctx context.Context, out io.Writer, args []string) error {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return err
	}
	return RunWithConfig(ctx, out, cfg, args)
}

// RunWithConfig executes one meetings subcommand with explicit configuration.
func RunWithConfig(ctx context.Context, out io.Writer, cfg Config, args []string) error {
	if len(args) == 0 {
		printUsage(out)
		return fmt.Errorf("subcommand is required")
	}

	name := args[0]
	var selected *command
	for _, candidate := range commands() {
		if candidate.name == name {
			selected = &candidate
			break
		}
	}
	if selected == nil {
		printUsage(out)
		return fmt.Errorf("unknown subcommand %q", name)
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	stores := store.Stores()
	rt := &runtime{
		config:   cfg,
		out:      out,
		store:    store,
		meetings: meetingservice.NewMeetingService(stores),
		invites:  meetingservice.NewInvitationService(stores),
		feed:     feedservice.NewFeedService(stores),
	}

	if signer, err := invite.LoadJoinGrantSignerFromEnv(nil); err == nil {
		rt.invites = rt.invites.WithJoinGrantSigner(signer)
	}
	if verifier, err := invite.LoadJoinGrantVerifierFromEnv(nil); err == nil {
		rt.meetings = rt.meetings.WithJoinGrantVerifier(verifier)
	}

	return selected.run(ctx, rt, args[1:])
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "usage: meetings SUBCOMMAND [flags]")
	for _, candidate := range commands() {
		fmt.Fprintf(out, "  %s\n", candidate.usage)
	}
}
