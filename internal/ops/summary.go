package ops

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/voidfinder/internal/model"
)

const summaryRule = 50

// Summary renders the "Move to Trash Summary" block for a batch.
func Summary(rep model.RelocationReport) string {
	var lines []string
	lines = append(lines, strings.Repeat("=", summaryRule))
	lines = append(lines, "Move to Trash Summary")
	lines = append(lines, strings.Repeat("-", summaryRule))

	if len(rep.Succeeded) > 0 {
		lines = append(lines, fmt.Sprintf("Successfully moved %d folder(s) to Trash:", len(rep.Succeeded)))
		for _, p := range rep.Succeeded {
			lines = append(lines, "  - "+p)
		}
	}

	if len(rep.Failed) > 0 {
		if len(rep.Succeeded) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, fmt.Sprintf("Failed to move %d folder(s):", len(rep.Failed)))
		for _, f := range rep.Failed {
			lines = append(lines, fmt.Sprintf("  - %s: %s", f.Path, f.Reason))
		}
	}

	if rep.Total() == 0 {
		lines = append(lines, "No folders were moved.")
	}

	lines = append(lines, strings.Repeat("=", summaryRule))
	return strings.Join(lines, "\n")
}

// WriteSummary writes Summary(rep) followed by a newline.
func WriteSummary(w io.Writer, rep model.RelocationReport) error {
	_, err := io.WriteString(w, Summary(rep)+"\n")
	return err
}
