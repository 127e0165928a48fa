package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/ops"
	"github.com/sadopc/voidfinder/internal/scanner"
	"github.com/sadopc/voidfinder/internal/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	outputFmt  string
	scanExport string
	scanTrash  bool
	assumeYes  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path|user@host [remote-path]]",
	Short: "Scan for empty folders without the TUI",
	Long: `Scans a folder tree and prints the empty folders it finds. With --trash the
folders are checked again and moved to the trash after confirmation.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&outputFmt, "format", "summary", "output format (summary, table, json, yaml)")
	scanCmd.Flags().StringVar(&scanExport, "export", "", "also write the results as JSON to this file (\"-\" for stdout)")
	scanCmd.Flags().BoolVar(&scanTrash, "trash", false, "move the empty folders to the trash")
	scanCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask before moving folders")
}

func runScan(cmd *cobra.Command, args []string) error {
	format, err := ops.ParseFormat(outputFmt)
	if err != nil {
		return err
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	target, err := resolveScanTarget(args)
	if err != nil {
		return err
	}
	backend, root, err := env.open(ctx, target)
	if err != nil {
		return err
	}

	scanCtx, cancel := ctx, context.CancelFunc(func() {})
	if backend.ScanContext != nil {
		scanCtx, cancel = backend.ScanContext(ctx)
	}
	defer cancel()

	stderr := cmd.ErrOrStderr()
	res, err := scanWithProgress(scanCtx, backend.Scanner, root, stderr)
	if err != nil {
		return err
	}
	doc := ops.NewScanDocument(res, env.rules, version)

	// JSON on stdout leaves no room for a report.
	out := cmd.OutOrStdout()
	reportOut := out
	if scanExport == "-" {
		reportOut = io.Discard
	}
	machine := format == ops.FormatJSON || format == ops.FormatYAML

	if !machine {
		if err := ops.NewReporter(reportOut, format).Report(doc); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
	}

	var relocErr error
	if scanTrash {
		switch {
		case res.Cancelled:
			fmt.Fprintln(stderr, "Scan was stopped; nothing was moved to the trash.")
		case len(res.Entries) == 0:
			fmt.Fprintln(stderr, "No empty folders to move.")
		case !assumeYes && !confirm(cmd.InOrStdin(), stderr, len(res.Entries)):
			fmt.Fprintln(stderr, "Nothing was moved.")
		default:
			runner := ops.NewRunner(backend.Trasher, backend.Lister, env.rules, res.Root, env.logger)
			rep := runner.Relocate(ctx, model.Paths(res.Entries))
			doc.Relocation = &rep
			if !machine {
				if err := ops.WriteSummary(reportOut, rep); err != nil {
					return err
				}
			}
			if len(rep.Failed) > 0 {
				relocErr = fmt.Errorf("%d folder(s) could not be moved", len(rep.Failed))
			}
		}
	}

	if machine {
		if err := ops.NewReporter(reportOut, format).Report(doc); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
	}

	if scanExport != "" {
		if err := ops.ExportJSON(doc, scanExport); err != nil {
			return fmt.Errorf("export error: %w", err)
		}
		if scanExport != "-" {
			fmt.Fprintf(stderr, "Exported to %s\n", scanExport)
		}
	}
	return relocErr
}

// scanWithProgress runs one session. A live progress line goes to w when
// it is a terminal.
func scanWithProgress(ctx context.Context, s *scanner.Scanner, root string, w io.Writer) (scanner.Result, error) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return s.Scan(ctx, root, nil)
	}

	progressCh := make(chan scanner.Progress, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range progressCh {
			line := fmt.Sprintf("Scanning: %s folders, %s empty, %d errors",
				util.FormatCount(p.Scanned), util.FormatCount(p.Found), p.Errors)
			if r := p.Ratio(); r >= 0 {
				line += fmt.Sprintf(" (%.0f%%)", r*100)
			}
			fmt.Fprintf(w, "\r%s\033[K", line)
			if p.Done {
				fmt.Fprintln(w)
			}
		}
	}()

	res, err := s.Scan(ctx, root, progressCh)
	close(progressCh)
	wg.Wait()
	return res, err
}

func confirm(in io.Reader, out io.Writer, n int) bool {
	fmt.Fprintf(out, "\nMove %d folder(s) to the trash? (y/N): ", n)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
