package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dupescan/dupescan/internal/dedup"
	"github.com/dupescan/dupescan/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatSummary OutputFormat = "summary"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
)

const dividerWidth = 60

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report renders a scan report in the reporter's format.
func (r *Reporter) Report(report *dedup.Report) error {
	switch r.format {
	case FormatSummary:
		return r.reportSummary(report)
	case FormatTable:
		return r.reportTable(report)
	case FormatJSON:
		return r.reportJSON(report)
	case FormatYAML:
		return r.reportYAML(report)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportSummary prints the scan banner, aggregate statistics and the
// per-group listing with members in discovery order.
func (r *Reporter) reportSummary(report *dedup.Report) error {
	rule := strings.Repeat("=", dividerWidth)
	divider := strings.Repeat("-", dividerWidth)

	fmt.Fprintf(r.writer, "\n%s\n", rule)
	fmt.Fprintln(r.writer, "DUPLICATE FILE SCAN RESULTS")
	fmt.Fprintln(r.writer, rule)

	if len(report.Groups) == 0 {
		fmt.Fprintln(r.writer, "\nNo duplicate files found.")
		return nil
	}

	fmt.Fprintf(r.writer, "\nFound %d duplicate group(s), %d duplicate file(s)\n",
		len(report.Groups), report.DuplicateFileCount())
	fmt.Fprintf(r.writer, "Space that can be recovered: %s\n",
		utils.FormatBytes(report.RecoverableBytes))

	for i := range report.Groups {
		group := &report.Groups[i]
		fmt.Fprintf(r.writer, "\n%s\n", divider)
		fmt.Fprintf(r.writer, "\nGroup %d - %s (%d files)\n",
			i+1, utils.FormatBytes(group.Size), len(group.Members))
		for _, path := range group.Members {
			fmt.Fprintf(r.writer, "  %s\n", path)
		}
	}
	fmt.Fprintf(r.writer, "\n%s\n", divider)

	if len(report.Warnings) > 0 {
		fmt.Fprintf(r.writer, "\nWarnings: %d file(s) skipped\n", len(report.Warnings))
	}

	return nil
}

// reportTable prints one row per duplicate file.
func (r *Reporter) reportTable(report *dedup.Report) error {
	fmt.Fprintf(r.writer, "%-5s | %-60s | %-12s | %s\n", "Group", "Path", "Size", "Digest")
	fmt.Fprintln(r.writer, strings.Repeat("-", 120))

	for i := range report.Groups {
		group := &report.Groups[i]
		for _, path := range group.Members {
			display := path
			if len(display) > 60 {
				display = "..." + display[len(display)-57:]
			}
			fmt.Fprintf(r.writer, "%-5d | %-60s | %-12s | %s\n",
				i+1, display, utils.FormatBytes(group.Size), group.Digest)
		}
	}

	fmt.Fprintln(r.writer, strings.Repeat("-", 120))
	fmt.Fprintf(r.writer, "Total: %d group(s), recoverable %s\n",
		len(report.Groups), utils.FormatBytes(report.RecoverableBytes))

	return nil
}

// serializable is the wire shape shared by the JSON and YAML formats.
type serializable struct {
	Timestamp            string        `json:"timestamp" yaml:"timestamp"`
	Root                 string        `json:"root" yaml:"root"`
	TotalFiles           int           `json:"total_files" yaml:"total_files"`
	GroupCount           int           `json:"group_count" yaml:"group_count"`
	DuplicateFiles       int           `json:"duplicate_files" yaml:"duplicate_files"`
	RecoverableBytes     int64         `json:"recoverable_bytes" yaml:"recoverable_bytes"`
	RecoverableFormatted string        `json:"recoverable_formatted" yaml:"recoverable_formatted"`
	Groups               []groupRecord `json:"groups" yaml:"groups"`
	Warnings             []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type groupRecord struct {
	Digest  string   `json:"digest" yaml:"digest"`
	Size    int64    `json:"size" yaml:"size"`
	Members []string `json:"members" yaml:"members"`
}

func toSerializable(report *dedup.Report) serializable {
	out := serializable{
		Timestamp:            time.Now().Format(time.RFC3339),
		Root:                 report.Root,
		TotalFiles:           report.TotalFiles,
		GroupCount:           len(report.Groups),
		DuplicateFiles:       report.DuplicateFileCount(),
		RecoverableBytes:     report.RecoverableBytes,
		RecoverableFormatted: utils.FormatBytes(report.RecoverableBytes),
		Groups:               make([]groupRecord, 0, len(report.Groups)),
	}
	for i := range report.Groups {
		group := &report.Groups[i]
		out.Groups = append(out.Groups, groupRecord{
			Digest:  group.Digest,
			Size:    group.Size,
			Members: group.Members,
		})
	}
	for _, w := range report.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}

func (r *Reporter) reportJSON(report *dedup.Report) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toSerializable(report))
}

func (r *Reporter) reportYAML(report *dedup.Report) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(toSerializable(report))
}

// SaveToFile saves the report to a file
func SaveToFile(report *dedup.Report, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return New(file, format).Report(report)
}
