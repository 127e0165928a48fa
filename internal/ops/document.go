package ops

import (
	"time"

	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/noise"
	"github.com/sadopc/voidfinder/internal/scanner"
)

// DocumentFormat is bumped when ScanDocument changes incompatibly.
const DocumentFormat = 1

// ScanError is a directory that could not be listed, in serializable form.
type ScanError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// ScanDocument is the serialized form of a scan, optionally with the
// outcome of relocating its entries.
type ScanDocument struct {
	Format     int                     `json:"format" yaml:"format"`
	Program    string                  `json:"program" yaml:"program"`
	Version    string                  `json:"version" yaml:"version"`
	Timestamp  time.Time               `json:"timestamp" yaml:"timestamp"`
	Root       string                  `json:"root" yaml:"root"`
	Noise      []string                `json:"noise" yaml:"noise"`
	Cancelled  bool                    `json:"cancelled" yaml:"cancelled"`
	Scanned    int64                   `json:"scanned" yaml:"scanned"`
	Duration   string                  `json:"duration" yaml:"duration"`
	Errors     []ScanError             `json:"errors,omitempty" yaml:"errors,omitempty"`
	Entries    []model.DirectoryEntry  `json:"entries" yaml:"entries"`
	Relocation *model.RelocationReport `json:"relocation,omitempty" yaml:"relocation,omitempty"`
}

// NewScanDocument captures res. version defaults to "dev".
func NewScanDocument(res scanner.Result, rules *noise.Rules, version string) ScanDocument {
	if version == "" {
		version = "dev"
	}
	doc := ScanDocument{
		Format:    DocumentFormat,
		Program:   "voidfinder",
		Version:   version,
		Timestamp: res.StartTime,
		Root:      res.Root,
		Noise:     rules.Names(),
		Cancelled: res.Cancelled,
		Scanned:   res.Scanned,
		Duration:  res.Duration.Round(time.Millisecond).String(),
		Entries:   res.Entries,
	}
	if doc.Timestamp.IsZero() {
		doc.Timestamp = time.Now()
	}
	if doc.Entries == nil {
		doc.Entries = []model.DirectoryEntry{}
	}
	if doc.Noise == nil {
		doc.Noise = []string{}
	}
	for _, e := range res.Errors {
		doc.Errors = append(doc.Errors, ScanError{Path: e.Path, Error: e.Err.Error()})
	}
	return doc
}

// Result rebuilds a scan result. Listing errors come back as plain errors.
func (d ScanDocument) Result() scanner.Result {
	dur, _ := time.ParseDuration(d.Duration)
	res := scanner.Result{
		Root:      d.Root,
		Entries:   d.Entries,
		Cancelled: d.Cancelled,
		Scanned:   d.Scanned,
		StartTime: d.Timestamp,
		Duration:  dur,
	}
	for _, e := range d.Errors {
		res.Errors = append(res.Errors, scanner.ScanError{Path: e.Path, Err: importedError(e.Error)})
	}
	return res
}

// Rules returns the noise rules the scan used.
func (d ScanDocument) Rules() *noise.Rules {
	return noise.New(d.Noise...)
}

type importedError string

func (e importedError) Error() string { return string(e) }
