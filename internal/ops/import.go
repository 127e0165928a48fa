package ops

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportJSON reads a document written by ExportJSON.
func ImportJSON(path string) (ScanDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScanDocument{}, fmt.Errorf("cannot open import file: %w", err)
	}

	var doc ScanDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ScanDocument{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if doc.Program != "voidfinder" {
		return ScanDocument{}, fmt.Errorf("not a voidfinder export (program %q)", doc.Program)
	}
	if doc.Format < 1 || doc.Format > DocumentFormat {
		return ScanDocument{}, fmt.Errorf("unsupported export format %d", doc.Format)
	}
	if doc.Root == "" {
		return ScanDocument{}, fmt.Errorf("export has no root")
	}
	return doc, nil
}
