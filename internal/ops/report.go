package ops

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/util"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how the headless scan prints its result.
type OutputFormat string

const (
	FormatSummary OutputFormat = "summary"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSummary, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want summary, table, json or yaml)", s)
	}
}

// Reporter writes scan documents in one output format.
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// NewReporter creates a reporter.
func NewReporter(w io.Writer, format OutputFormat) *Reporter {
	return &Reporter{writer: w, format: format}
}

// Report writes doc.
func (r *Reporter) Report(doc ScanDocument) error {
	switch r.format {
	case FormatSummary:
		return r.reportSummary(doc)
	case FormatTable:
		return r.reportTable(doc)
	case FormatJSON:
		enc := json.NewEncoder(r.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(r.writer)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Reporter) reportSummary(doc ScanDocument) error {
	ew := &errWriter{w: r.writer}
	ew.printf("=== Empty Folder Scan ===\n")
	ew.printf("Root:    %s\n", doc.Root)
	ew.printf("Scanned: %s directories in %s\n", util.FormatCount(doc.Scanned), doc.Duration)
	ew.printf("Found:   %s empty folder(s)\n", util.FormatCount(int64(len(doc.Entries))))
	if doc.Cancelled {
		ew.printf("Status:  cancelled, results are partial\n")
	}
	if len(doc.Errors) > 0 {
		ew.printf("Errors:  %d directories could not be read\n", len(doc.Errors))
	}

	if len(doc.Entries) > 0 {
		ew.printf("\n")
		for _, e := range doc.Entries {
			ew.printf("  %s\n", e.Path)
		}
	}

	if doc.Relocation != nil {
		ew.printf("\n")
		ew.WriteString(Summary(*doc.Relocation) + "\n")
	}
	return ew.err
}

const tablePathWidth = 64

func (r *Reporter) reportTable(doc ScanDocument) error {
	ew := &errWriter{w: r.writer}
	ew.printf("%-*s | %5s | %5s\n", tablePathWidth, "Path", "Depth", "Noise")
	ew.printf("%s\n", strings.Repeat("-", tablePathWidth+16))

	for _, e := range doc.Entries {
		ew.printf("%-*s | %5d | %5d\n", tablePathWidth, util.TruncateLeft(e.Path, tablePathWidth), e.Depth, e.NoiseCount)
	}

	ew.printf("%s\n", strings.Repeat("-", tablePathWidth+16))
	ew.printf("Total: %d empty folder(s), %d noise file(s)\n", len(doc.Entries), model.TotalNoise(doc.Entries))

	if doc.Relocation != nil {
		ew.printf("\n")
		for _, o := range doc.Relocation.Outcomes() {
			if o.Status == model.StatusMoved {
				ew.printf("%-6s %s\n", o.Status, o.Path)
				continue
			}
			ew.printf("%-6s %s: %s\n", o.Status, o.Path, o.Reason)
		}
	}
	return ew.err
}
