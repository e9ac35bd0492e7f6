package meetings

import (
	"context"
	"flag"
	"fmt"

	"github.com/louisbranch/huddle.space/internal/meeting/invite"
	platformcmd "github.com/louisbranch/huddle.space/internal/platform/cmd"
)

func printInvitation(rt *runtime, invitation invite.Invitation) {
	fmt.Fprintf(rt.out, "invite %s meeting=%s invitee=%s status=%s\n",
		invitation.ID, invitation.MeetingID, invitation.InviteeEmail,
		invite.StatusLabel(invitation.Status))
}

func runInvite(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("invite", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id")
	invitee := fs.String("invitee", "", "invitee email")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	invitation, err := rt.invites.Invite(ctx, *actor, *meetingID, *invitee)
	if err != nil {
		return err
	}
	printInvitation(rt, invitation)
	return nil
}

func runAccept(ctx context.Context, rt *runtime, args []string) error {
	return runRespond(ctx, rt, args, "accept", rt.invites.Accept)
}

func runDecline(ctx context.Context, rt *runtime, args []string) error {
	return runRespond(ctx, rt, args, "decline", rt.invites.Decline)
}

func runRespond(ctx context.Context, rt *runtime, args []string, name string, respond func(context.Context, string, string) (invite.Invitation, error)) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	inviteID := fs.String("invite", "", "invitation id")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	invitation, err := respond(ctx, *actor, *inviteID)
	if err != nil {
		return err
	}
	printInvitation(rt, invitation)
	return nil
}

func runInvites(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("invites", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	meetingID := fs.String("meeting", "", "meeting id; lists the actor's own invitations when empty")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	var invitations []invite.Invitation
	var err error
	if *meetingID != "" {
		invitations, err = rt.invites.ListForMeeting(ctx, *actor, *meetingID)
	} else {
		invitations, err = rt.invites.ListForInvitee(ctx, *actor)
	}
	if err != nil {
		return err
	}
	for _, invitation := range invitations {
		printInvitation(rt, invitation)
	}
	return nil
}

func runGrant(ctx context.Context, rt *runtime, args []string) error {
	fs := flag.NewFlagSet("grant", flag.ContinueOnError)
	actor := fs.String("actor", "", "acting email")
	inviteID := fs.String("invite", "", "invitation id")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return err
	}

	grant, err := rt.invites.IssueJoinGrant(ctx, *actor, *inviteID)
	if err != nil {
		return err
	}
	fmt.Fprintln(rt.out, grant)
	return nil
}
