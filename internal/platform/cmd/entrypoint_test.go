package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

func TestParseConfigRequiresTarget(t *testing.T) {
	if err := ParseConfig[struct{}](nil); err == nil {
		t.Fatal("expected error for nil config target")
	}
}

func TestParseConfigFromArgs(t *testing.T) {
	type cfg struct {
		DBPath string `env:"HUDDLE_SPACE_DB_PATH" envDefault:"huddle.db"`
	}
	t.Setenv("HUDDLE_SPACE_DB_PATH", "/tmp/test.db")

	var c cfg
	fs := flag.NewFlagSet("meetings", flag.ContinueOnError)
	fs.StringVar(&c.DBPath, "db", c.DBPath, "database path")
	if err := ParseConfigFromArgs(&c, fs, []string{"-db", "/tmp/flag.db"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.DBPath != "/tmp/flag.db" {
		t.Fatalf("db path = %q, want flag override", c.DBPath)
	}
}

func TestRunWithTelemetryRequiresService(t *testing.T) {
	err := RunWithTelemetry(context.Background(), "  ", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing service name")
	}
}

func TestRunWithTelemetryPropagatesRunError(t *testing.T) {
	want := errors.New("boom")
	err := RunWithTelemetry(context.Background(), "meetings", func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
