package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a pitwall.yaml pointing every path at the
// test's temp dir and returns its path.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	yaml := fmt.Sprintf(`paths:
  raw_data: %s
  interim_data: %s
  processed_data: %s
  sql_dir: %s
`,
		filepath.Join(dir, "raw"),
		filepath.Join(dir, "interim"),
		filepath.Join(dir, "processed"),
		filepath.Join(dir, "sql"))
	path := filepath.Join(dir, "pitwall.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestCleanCmd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	rawDir := filepath.Join(dir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatalf("mkdir raw: %v", err)
	}
	statusCSV := "statusId,status\n1,Finished\n2,Engine\n3,\\N\n"
	if err := os.WriteFile(filepath.Join(rawDir, "status.csv"), []byte(statusCSV), 0o644); err != nil {
		t.Fatalf("write raw status: %v", err)
	}

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"clean", "-c", cfgPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("clean command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "status") {
		t.Errorf("expected summary for status table, got: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "interim", "status_clean.csv")); err != nil {
		t.Errorf("expected cleaned status artifact: %v", err)
	}
}

func TestMergeCmdMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"merge", "-c", cfgPath})

	if err := cmd.Execute(); err == nil {
		t.Fatal("merge without cleaned artifacts must fail")
	}
}

func TestBuildCmdMissingMerged(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"build", "-c", cfgPath})

	if err := cmd.Execute(); err == nil {
		t.Fatal("build without the merged artifact must fail")
	}
}
