package main

import (
	"bytes"
	"testing"
)

func TestScheduleCmdRejectsBadCron(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"schedule", "--cron", "not a cron expression"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("invalid cron expression must fail before scheduling")
	}
}
