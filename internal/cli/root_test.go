package cli

import (
	"context"
	"testing"
)

func TestNewRootDefaultsToServe(t *testing.T) {
	var ran bool
	root := NewRoot(func(ctx context.Context) error {
		ran = true
		return nil
	})

	root.SetArgs([]string{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !ran {
		t.Error("running the root command with no subcommand should invoke serveRunE")
	}
}

func TestNewRootServeSubcommand(t *testing.T) {
	var ran bool
	root := NewRoot(func(ctx context.Context) error {
		ran = true
		return nil
	})

	root.SetArgs([]string{"serve"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !ran {
		t.Error("`serve` subcommand should invoke serveRunE")
	}
}

func TestNewRootHasCacheCommand(t *testing.T) {
	root := NewRoot(func(ctx context.Context) error { return nil })

	cmd, _, err := root.Find([]string{"cache", "path"})
	if err != nil {
		t.Fatalf("Find(cache path) error: %v", err)
	}
	if cmd.Use != "path" {
		t.Errorf("Find(cache path) = %q, want %q", cmd.Use, "path")
	}
}
