// Package main provides the meetings command-line interface.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/huddle.space/internal/cmd/meetings"
	platformcmd "github.com/louisbranch/huddle.space/internal/platform/cmd"
	"github.com/louisbranch/huddle.space/internal/platform/config"
)

func main() {
	log.SetPrefix("meetings: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMeetings, func(ctx context.Context) error {
		return meetings.Run(ctx, os.Stdout, os.Args[1:])
	})
	if err != nil && ctx.Err() == nil {
		config.Exitf("meetings: %v", err)
	}
}
