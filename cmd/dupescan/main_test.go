package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dupescan/dupescan/internal/testutil"
)

// resetCommandState returns every flag to its default value and clears
// its Changed mark, so executions within the same test binary do not
// leak state into each other.
func resetCommandState() {
	for _, c := range []*cobra.Command{rootCmd, scanCmd, reviewCmd, configCmd, configInitCmd} {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
}

// runCommand executes the CLI with args, capturing stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, string) {
	t.Helper()
	resetCommandState()

	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create stdout pipe: %v", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create stderr pipe: %v", err)
	}

	oldOut, oldErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	outW.Close()
	errW.Close()
	os.Stdout, os.Stderr = oldOut, oldErr

	outData, _ := io.ReadAll(outR)
	errData, _ := io.ReadAll(errR)

	if execErr != nil {
		t.Fatalf("command %v failed: %v", args, execErr)
	}
	return string(outData), string(errData)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestScanOutputFromConfigFile(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDuplicateSet([]byte("same bytes"), "a.txt", "b.txt")

	cfgPath := writeConfigFile(t, "output: json\n")

	stdout, _ := runCommand(t, "scan", "--config", cfgPath, f.RootDir)

	start := strings.Index(stdout, "{")
	if start < 0 {
		t.Fatalf("no JSON payload in output:\n%s", stdout)
	}

	var payload struct {
		GroupCount     int `json:"group_count"`
		DuplicateFiles int `json:"duplicate_files"`
	}
	if err := json.Unmarshal([]byte(stdout[start:]), &payload); err != nil {
		t.Fatalf("failed to decode JSON report: %v", err)
	}
	if payload.GroupCount != 1 {
		t.Errorf("group_count = %d, want 1", payload.GroupCount)
	}
	if payload.DuplicateFiles != 1 {
		t.Errorf("duplicate_files = %d, want 1", payload.DuplicateFiles)
	}
}

func TestScanOutputFlagOverridesConfigFile(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDuplicateSet([]byte("same bytes"), "a.txt", "b.txt")

	cfgPath := writeConfigFile(t, "output: json\n")

	stdout, _ := runCommand(t, "scan", "--config", cfgPath, "--output", "summary", f.RootDir)

	if strings.Contains(stdout, "\"group_count\"") {
		t.Errorf("flag override ignored, got JSON output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Group 1 - ") {
		t.Errorf("expected summary group listing, got:\n%s", stdout)
	}
}

func TestScanVerboseResolution(t *testing.T) {
	testutil.SkipIfRoot(t)

	tests := []struct {
		name        string
		configYAML  string
		extraArgs   []string
		wantWarning bool
	}{
		{"config file enables verbose", "verbose: true\n", nil, true},
		{"flag enables verbose", "", []string{"--verbose"}, true},
		{"flag disables verbose from file", "verbose: true\n", []string{"--verbose=false"}, false},
		{"quiet by default", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFixture(t)
			f.CreateDuplicateSet([]byte("same bytes"), "a.txt", "b.txt")
			f.CreateNoPermissionDir("locked")

			cfgPath := writeConfigFile(t, tt.configYAML)

			args := append([]string{"scan", "--config", cfgPath}, tt.extraArgs...)
			args = append(args, f.RootDir)
			_, stderr := runCommand(t, args...)

			gotWarning := strings.Contains(stderr, "warning:")
			if gotWarning != tt.wantWarning {
				t.Errorf("warning printed = %v, want %v, stderr:\n%s", gotWarning, tt.wantWarning, stderr)
			}
		})
	}
}
