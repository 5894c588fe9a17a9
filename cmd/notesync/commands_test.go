package main

import (
	"strings"
	"testing"
)

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"serve", "reprocess", "import", "mcp"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err = %v)", name, err)
		}
	}
}

func TestReprocessCommand_RequiresKey(t *testing.T) {
	reprocessCmd.SetContext(t.Context())
	if err := reprocessCmd.Flags().Set("app", "app1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	t.Cleanup(func() { _ = reprocessCmd.Flags().Set("app", "") })

	err := reprocessCmd.RunE(reprocessCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "user id is required") {
		t.Errorf("RunE() error = %v, want missing user id", err)
	}
}

func TestImportCommand_RequiresFlags(t *testing.T) {
	importCmd.SetContext(t.Context())
	err := importCmd.RunE(importCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "--dir, --app and --user are required") {
		t.Errorf("RunE() error = %v", err)
	}
}
