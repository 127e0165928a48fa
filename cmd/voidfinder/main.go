package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/voidfinder/internal/ui"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath   string
	noiseNames   []string
	trashDir     string
	logFile      string
	logLevel     string
	noPreCount   bool
	sshPort      int
	sshBatch     bool
	sshTimeout   time.Duration
	sshScanLimit time.Duration

	importPath string
	exportPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "voidfinder [path|user@host [remote-path]]",
	Short: "Find empty folders and move them to the trash",
	Long: `voidfinder scans a folder tree for folders that are empty, or hold nothing
but ignorable files such as .DS_Store, and lets you move them to the trash.

Remote hosts are scanned over SSH/SFTP when the target is user@host.`,
	Example: `  voidfinder .                          Scan the current directory
  voidfinder ~/Projects                 Scan a folder
  voidfinder --import scan.json         Browse an exported scan
  voidfinder alice@10.0.0.5 /srv/data   Scan a remote folder over SSH
  voidfinder scan --format table .      Print results without the TUI`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.SetVersionTemplate("voidfinder {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file path (default ~/.config/voidfinder/config.yaml)")
	pf.StringSliceVar(&noiseNames, "noise", nil, "comma-separated file names that do not make a folder non-empty")
	pf.StringVar(&trashDir, "trash-dir", "", "move folders into this directory instead of the platform trash")
	pf.StringVar(&logFile, "log-file", "", "write a diagnostic log to this file (\"-\" for stderr)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&noPreCount, "no-precount", false, "skip counting folders before the scan")
	pf.IntVar(&sshPort, "ssh-port", 22, "SSH port for remote scans")
	pf.BoolVar(&sshBatch, "ssh-batch", false, "disable SSH password and host key prompts (key/agent auth only)")
	pf.DurationVar(&sshTimeout, "ssh-timeout", 15*time.Second, "SSH connection timeout")
	pf.DurationVar(&sshScanLimit, "ssh-scan-timeout", 0, "stop remote scans after this long (0 = no limit)")

	rootCmd.Flags().StringVar(&importPath, "import", "", "browse scan results from a JSON export")
	rootCmd.Flags().StringVar(&exportPath, "export", "", "file the E key exports to")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(configCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	var app *ui.App
	if importPath != "" {
		if len(args) > 0 {
			return fmt.Errorf("--import cannot be used with scan targets")
		}
		app = ui.NewAppFromImport(importPath, env.localBackend())
	} else {
		target, err := resolveScanTarget(args)
		if err != nil {
			return err
		}
		backend, root, err := env.open(cmd.Context(), target)
		if err != nil {
			return err
		}
		app = ui.NewApp(root, backend)
	}

	app.ExportPath = env.cfg.Export.Path
	if exportPath != "" {
		app.ExportPath = exportPath
	}
	app.Version = version

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return app.FatalError()
}
