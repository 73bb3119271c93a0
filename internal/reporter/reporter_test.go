package reporter

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dupescan/dupescan/internal/dedup"
)

func sampleReport() *dedup.Report {
	return dedup.NewReport("/scan/root", []dedup.Group{
		{
			Digest:  "aaaa1111",
			Size:    2048,
			Members: []string{"/scan/root/a.bin", "/scan/root/sub/b.bin"},
		},
		{
			Digest:  "bbbb2222",
			Size:    100,
			Members: []string{"/scan/root/x", "/scan/root/y", "/scan/root/z"},
		},
	}, 10, []dedup.Warning{
		{Path: "/scan/root/locked", Err: errors.New("permission denied")},
	})
}

func TestReportSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatSummary).Report(sampleReport()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"DUPLICATE FILE SCAN RESULTS",
		"Found 2 duplicate group(s), 3 duplicate file(s)",
		"Space that can be recovered: 2.20 KB",
		"Group 1 - 2.00 KB (2 files)",
		"Group 2 - 100 B (3 files)",
		"  /scan/root/sub/b.bin",
		"Warnings: 1 file(s) skipped",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestReportSummaryNoDuplicates(t *testing.T) {
	var buf bytes.Buffer
	report := dedup.NewReport("/scan/root", nil, 5, nil)

	if err := New(&buf, FormatSummary).Report(report); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No duplicate files found.") {
		t.Errorf("summary missing empty notice:\n%s", buf.String())
	}
}

func TestReportTable(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatTable).Report(sampleReport()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Group") || !strings.Contains(out, "Digest") {
		t.Errorf("table missing header:\n%s", out)
	}
	if !strings.Contains(out, "/scan/root/a.bin") {
		t.Errorf("table missing member row:\n%s", out)
	}
	if !strings.Contains(out, "Total: 2 group(s), recoverable 2.20 KB") {
		t.Errorf("table missing total line:\n%s", out)
	}
}

func TestReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatJSON).Report(sampleReport()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var decoded serializable
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.GroupCount != 2 {
		t.Errorf("group_count = %d, want 2", decoded.GroupCount)
	}
	if decoded.DuplicateFiles != 3 {
		t.Errorf("duplicate_files = %d, want 3", decoded.DuplicateFiles)
	}
	if decoded.RecoverableBytes != 2248 {
		t.Errorf("recoverable_bytes = %d, want 2248", decoded.RecoverableBytes)
	}
	if len(decoded.Groups) != 2 || decoded.Groups[0].Digest != "aaaa1111" {
		t.Errorf("groups not serialized: %+v", decoded.Groups)
	}
	if len(decoded.Warnings) != 1 {
		t.Errorf("warnings = %v, want 1 entry", decoded.Warnings)
	}
}

func TestReportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, FormatYAML).Report(sampleReport()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	var decoded serializable
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Root != "/scan/root" {
		t.Errorf("root = %s, want /scan/root", decoded.Root)
	}
	if decoded.TotalFiles != 10 {
		t.Errorf("total_files = %d, want 10", decoded.TotalFiles)
	}
}

func TestReportUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, OutputFormat("csv")).Report(sampleReport()); err == nil {
		t.Error("Report() expected error for unsupported format")
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := SaveToFile(sampleReport(), path, FormatJSON); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved report: %v", err)
	}
	var decoded serializable
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved report is not valid JSON: %v", err)
	}
	if decoded.GroupCount != 2 {
		t.Errorf("group_count = %d, want 2", decoded.GroupCount)
	}
}
