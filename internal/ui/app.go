package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/noise"
	"github.com/sadopc/voidfinder/internal/ops"
	"github.com/sadopc/voidfinder/internal/scanner"
	"github.com/sadopc/voidfinder/internal/ui/components"
	"github.com/sadopc/voidfinder/internal/ui/style"
)

// DefaultExportPath is where E writes when no export path is configured.
const DefaultExportPath = "voidfinder-export.json"

// AppState represents the application state.
type AppState int

const (
	StateScanning AppState = iota
	StateBrowsing
	StateDetails
	StateConfirmTrash
	StateRelocating
	StateSummary
	StateHelp
	StateExporting
)

// ScanDoneMsg is sent when a scan or an import completes.
type ScanDoneMsg struct {
	Result scanner.Result
	Rules  *noise.Rules
	Err    error
}

// DetailsMsg carries the inspection of one folder.
type DetailsMsg struct {
	Details ops.Details
	Err     error
}

// RelocateDoneMsg is sent when a relocation batch completes.
type RelocateDoneMsg struct {
	Report model.RelocationReport
}

// ExportDoneMsg is sent when export completes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// OpenDoneMsg is sent after asking the file manager to show a folder.
type OpenDoneMsg struct {
	Path string
	Err  error
}

type tickMsg time.Time

// App is the root Bubble Tea model.
type App struct {
	ScanPath   string
	ImportPath string
	ExportPath string
	Version    string

	backend Backend

	state  AppState
	width  int
	height int

	result     scanner.Result
	rules      *noise.Rules
	entries    []model.DirectoryEntry
	sortConfig model.SortConfig
	imported   bool
	loaded     bool

	cursor int
	offset int
	marked map[string]bool

	confirmItems []components.ConfirmItem
	report       model.RelocationReport
	summary      viewport.Model

	details       ops.Details
	detailsLoaded bool

	spinner        spinner.Model
	stopping       bool
	scanProgress   scanner.Progress
	progressMu     sync.Mutex
	latestProgress scanner.Progress

	sessionMu     sync.Mutex
	session       *scanner.Session
	cancelPending bool
	startCancel   context.CancelFunc // aborts a Start still resolving the root

	theme  style.Theme
	keys   KeyMap
	layout style.Layout

	statusMsg string
	fatalErr  error
}

// NewApp creates an App that scans scanPath through backend.
func NewApp(scanPath string, backend Backend) *App {
	return &App{
		ScanPath:   scanPath,
		backend:    backend,
		rules:      backend.Rules,
		state:      StateScanning,
		sortConfig: model.DefaultSort(),
		marked:     make(map[string]bool),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		theme:      style.DefaultTheme(),
		keys:       DefaultKeyMap(),
	}
}

// NewAppFromImport creates an App that loads a previously exported scan.
// Relocation stays disabled until the folder is scanned again.
func NewAppFromImport(importPath string, backend Backend) *App {
	a := NewApp("", backend)
	a.ImportPath = importPath
	a.imported = true
	return a
}

func (a *App) Init() tea.Cmd {
	if a.ImportPath != "" {
		return a.importCmd()
	}
	return tea.Batch(a.scanCmd(), a.tickCmd(), a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = style.NewLayout(msg.Width, msg.Height)
		if a.state == StateSummary {
			a.summary.Width, a.summary.Height = a.summarySize()
		}
		return a, nil

	case ScanDoneMsg:
		if msg.Err != nil && a.loaded {
			// A rescan can fail when the root itself was moved to the trash.
			a.loadResult(scanner.Result{Root: a.result.Root})
			a.statusMsg = fmt.Sprintf("Rescan failed: %v", msg.Err)
			return a, tea.ClearScreen
		}
		if msg.Err != nil {
			a.fatalErr = msg.Err
			return a, tea.Quit
		}
		a.fatalErr = nil
		a.loaded = true
		if msg.Rules != nil {
			a.rules = msg.Rules
		}
		a.loadResult(msg.Result)
		return a, tea.ClearScreen

	case tickMsg:
		if a.state == StateScanning {
			a.progressMu.Lock()
			a.scanProgress = a.latestProgress
			a.progressMu.Unlock()
			return a, a.tickCmd()
		}
		return a, nil

	case spinner.TickMsg:
		if a.state != StateScanning && a.state != StateRelocating {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case DetailsMsg:
		if a.state != StateDetails || msg.Details.Path != a.details.Path {
			return a, nil
		}
		if msg.Err != nil {
			a.state = StateBrowsing
			a.statusMsg = fmt.Sprintf("Cannot inspect folder: %v", msg.Err)
			return a, tea.ClearScreen
		}
		a.details = msg.Details
		a.detailsLoaded = true
		return a, nil

	case RelocateDoneMsg:
		a.report = msg.Report
		a.clearMarks()
		a.state = StateSummary
		w, h := a.summarySize()
		a.summary = viewport.New(w, h)
		a.summary.SetContent(ops.Summary(msg.Report))
		return a, tea.ClearScreen

	case ExportDoneMsg:
		a.state = StateBrowsing
		if msg.Err != nil {
			a.statusMsg = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			a.statusMsg = fmt.Sprintf("Exported to %s", msg.Path)
		}
		return a, nil

	case OpenDoneMsg:
		if msg.Err != nil {
			a.statusMsg = fmt.Sprintf("Cannot open %s: %v", msg.Path, msg.Err)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.state == StateSummary {
		var cmd tea.Cmd
		a.summary, cmd = a.summary.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		a.cancelScan()
		return a, tea.Quit
	}

	switch a.state {
	case StateScanning:
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.cancelScan()
			return a, tea.Quit
		case key.Matches(msg, a.keys.Cancel):
			if !a.stopping {
				a.stopping = true
				a.cancelScan()
			}
		}
		return a, nil

	case StateHelp:
		if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Cancel) {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateConfirmTrash:
		if key.Matches(msg, a.keys.ConfirmYes) {
			paths := make([]string, len(a.confirmItems))
			for i, item := range a.confirmItems {
				paths[i] = item.Path
			}
			a.state = StateRelocating
			return a, tea.Batch(tea.ClearScreen, a.relocateCmd(paths), a.spinner.Tick)
		}
		if key.Matches(msg, a.keys.ConfirmNo) {
			a.state = StateBrowsing
			return a, tea.ClearScreen
		}
		return a, nil

	case StateDetails:
		switch {
		case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.Details), key.Matches(msg, a.keys.Quit):
			a.state = StateBrowsing
			return a, tea.ClearScreen
		case key.Matches(msg, a.keys.Open):
			return a, a.openCmd(a.details.Path)
		}
		return a, nil

	case StateSummary:
		if key.Matches(msg, a.keys.Cancel) || key.Matches(msg, a.keys.Details) || key.Matches(msg, a.keys.Quit) {
			// The listing is stale after a batch.
			return a, a.startScan()
		}
		var cmd tea.Cmd
		a.summary, cmd = a.summary.Update(msg)
		return a, cmd

	case StateBrowsing:
		return a.handleBrowsingKey(msg)
	}

	return a, nil
}

func (a *App) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.statusMsg = ""
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.state = StateHelp
		return a, tea.ClearScreen

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.PageUp):
		a.moveCursor(-a.layout.ContentHeight())
	case key.Matches(msg, a.keys.PageDown):
		a.moveCursor(a.layout.ContentHeight())
	case key.Matches(msg, a.keys.Top):
		a.cursor = 0
	case key.Matches(msg, a.keys.Bottom):
		a.moveCursor(len(a.entries))

	case key.Matches(msg, a.keys.Sort):
		a.sortConfig.Field = a.sortConfig.Field.Next()
		a.resort()
	case key.Matches(msg, a.keys.Reverse):
		if a.sortConfig.Order == model.SortDesc {
			a.sortConfig.Order = model.SortAsc
		} else {
			a.sortConfig.Order = model.SortDesc
		}
		a.resort()

	case key.Matches(msg, a.keys.Mark):
		a.toggleMark()
	case key.Matches(msg, a.keys.MarkAll):
		a.toggleMarkAll()

	case key.Matches(msg, a.keys.Trash):
		if a.prepareTrash() {
			return a, tea.ClearScreen
		}

	case key.Matches(msg, a.keys.Details):
		if e, ok := a.current(); ok {
			a.state = StateDetails
			a.details = ops.Details{Path: e.Path}
			a.detailsLoaded = false
			return a, tea.Batch(tea.ClearScreen, a.detailsCmd(e.Path))
		}

	case key.Matches(msg, a.keys.Open):
		if e, ok := a.current(); ok {
			return a, a.openCmd(e.Path)
		}

	case key.Matches(msg, a.keys.Export):
		return a, a.exportCmd()

	case key.Matches(msg, a.keys.Rescan):
		return a, a.startScan()
	}

	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.state {
	case StateScanning:
		return components.RenderScanProgress(a.theme, a.scanProgress, a.spinner.View(), a.stopping, a.width, a.height)

	case StateHelp:
		return components.RenderHelp(a.theme, a.width, a.height)

	case StateConfirmTrash:
		return components.RenderConfirmDialog(a.theme, a.confirmItems, a.result.Root, a.width, a.height)

	case StateRelocating:
		return components.RenderBusy(a.theme, a.spinner.View(),
			fmt.Sprintf("Moving %d folder(s) to Trash...", len(a.confirmItems)), a.width, a.height)

	case StateSummary:
		return components.RenderSummary(a.theme, a.summary.View(), a.width, a.height)

	case StateDetails:
		return components.RenderDetails(a.theme, a.details, a.detailsLoaded, a.width, a.height)

	case StateBrowsing, StateExporting:
		return a.renderBrowsing()
	}

	return ""
}

func (a *App) renderBrowsing() string {
	header := components.RenderHeader(a.theme, components.HeaderInfo{
		Root:      a.result.Root,
		Target:    a.backend.Target,
		Found:     len(a.entries),
		Noise:     model.TotalNoise(a.entries),
		Cancelled: a.result.Cancelled,
		Imported:  a.imported,
	}, a.width)
	info := components.RenderInfoLine(a.theme, a.result.Scanned, len(a.result.Errors), a.rules.Names(), a.width)
	columns := components.RenderColumns(a.theme, a.layout, a.sortConfig)

	list := &components.EntryList{
		Theme:  a.theme,
		Layout: a.layout,
		Root:   a.result.Root,
		Items:  a.entries,
		Cursor: a.cursor,
		Offset: a.offset,
		Marked: a.marked,
	}
	list.EnsureVisible()
	a.offset = list.Offset
	content := list.Render()

	var markedNoise int
	for _, e := range a.entries {
		if a.marked[e.Path] {
			markedNoise += e.NoiseCount
		}
	}
	statusBar := components.RenderStatusBar(a.theme, components.StatusInfo{
		Cursor:      a.cursor,
		ItemCount:   len(a.entries),
		MarkedCount: len(a.marked),
		MarkedNoise: markedNoise,
		Message:     a.statusMsg,
	}, a.width)

	return header + "\n" + info + "\n" + columns + "\n" + content + "\n" + statusBar
}

// loadResult replaces the listing with a finished scan.
func (a *App) loadResult(res scanner.Result) {
	a.result = res
	a.entries = append([]model.DirectoryEntry(nil), res.Entries...)
	model.SortEntries(a.entries, a.sortConfig)
	a.cursor = 0
	a.offset = 0
	a.stopping = false
	a.clearMarks()
	a.state = StateBrowsing

	switch {
	case res.Cancelled:
		a.statusMsg = fmt.Sprintf("Scan stopped: showing %d folder(s) found so far", len(res.Entries))
	case len(res.Errors) > 0:
		a.statusMsg = fmt.Sprintf("%d folder(s) could not be read and were treated as not empty", len(res.Errors))
	default:
		a.statusMsg = ""
	}
}

func (a *App) current() (model.DirectoryEntry, bool) {
	if a.cursor < 0 || a.cursor >= len(a.entries) {
		return model.DirectoryEntry{}, false
	}
	return a.entries[a.cursor], true
}

func (a *App) moveCursor(delta int) {
	a.cursor += delta
	if a.cursor >= len(a.entries) {
		a.cursor = len(a.entries) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// resort keeps the cursor on the same folder.
func (a *App) resort() {
	cur, ok := a.current()
	model.SortEntries(a.entries, a.sortConfig)
	if !ok {
		return
	}
	for i, e := range a.entries {
		if e.Path == cur.Path {
			a.cursor = i
			return
		}
	}
}

func (a *App) toggleMark() {
	e, ok := a.current()
	if !ok {
		return
	}
	if a.marked[e.Path] {
		delete(a.marked, e.Path)
	} else {
		a.marked[e.Path] = true
	}
	a.moveCursor(1)
}

func (a *App) toggleMarkAll() {
	if len(a.entries) > 0 && len(a.marked) == len(a.entries) {
		a.clearMarks()
		return
	}
	for _, e := range a.entries {
		a.marked[e.Path] = true
	}
}

func (a *App) clearMarks() {
	a.marked = make(map[string]bool)
}

// prepareTrash collects the marked folders, or the one under the cursor,
// in listing order and opens the confirmation dialog.
func (a *App) prepareTrash() bool {
	if a.imported {
		a.statusMsg = "Trash is disabled for imported results (press r to rescan)"
		return false
	}

	var items []components.ConfirmItem
	for _, e := range a.entries {
		if a.marked[e.Path] {
			items = append(items, components.ConfirmItem{Path: e.Path, Noise: e.NoiseCount})
		}
	}
	if len(items) == 0 {
		e, ok := a.current()
		if !ok {
			return false
		}
		items = append(items, components.ConfirmItem{Path: e.Path, Noise: e.NoiseCount})
	}

	a.confirmItems = items
	a.state = StateConfirmTrash
	return true
}

func (a *App) summarySize() (int, int) {
	return max(min(a.width-4, 100), 10), max(a.height-4, 3)
}

func (a *App) setSession(sess *scanner.Session) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	a.session = sess
	if sess != nil && a.cancelPending {
		sess.Cancel()
	}
}

// cancelScan stops the running scan, or the one about to start.
func (a *App) cancelScan() {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	a.cancelPending = true
	if a.session != nil {
		a.session.Cancel()
	}
	if a.startCancel != nil {
		a.startCancel()
	}
}

func (a *App) startScan() tea.Cmd {
	if a.imported {
		a.ScanPath = a.result.Root
		a.imported = false
	}
	a.sessionMu.Lock()
	a.cancelPending = false
	a.sessionMu.Unlock()
	a.progressMu.Lock()
	a.latestProgress = scanner.Progress{}
	a.progressMu.Unlock()

	a.scanProgress = scanner.Progress{}
	a.stopping = false
	a.clearMarks()
	a.state = StateScanning
	return tea.Batch(tea.ClearScreen, a.scanCmd(), a.tickCmd(), a.spinner.Tick)
}

// scanCmd runs a scan session in a background goroutine.
// Progress is communicated via a.latestProgress (mutex-protected).
func (a *App) scanCmd() tea.Cmd {
	path := a.ScanPath
	backend := a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		if backend.ScanContext != nil {
			ctx, cancel = backend.ScanContext(context.Background())
		}
		defer cancel()

		a.sessionMu.Lock()
		if a.cancelPending {
			cancel()
		}
		a.startCancel = cancel
		a.sessionMu.Unlock()

		sess, err := backend.Scanner.Start(ctx, path)

		a.sessionMu.Lock()
		a.startCancel = nil
		stopped := a.cancelPending
		a.sessionMu.Unlock()

		if err != nil {
			if stopped && (errors.Is(err, context.Canceled) || ctx.Err() != nil) {
				return ScanDoneMsg{Result: scanner.Result{Root: path, Cancelled: true}, Rules: backend.Rules}
			}
			return ScanDoneMsg{Err: err}
		}
		a.setSession(sess)
		defer a.setSession(nil)

		for p := range sess.Progress() {
			a.progressMu.Lock()
			a.latestProgress = p
			a.progressMu.Unlock()
		}
		return ScanDoneMsg{Result: sess.Await(), Rules: backend.Rules}
	}
}

func (a *App) importCmd() tea.Cmd {
	path := a.ImportPath
	return func() tea.Msg {
		doc, err := ops.ImportJSON(path)
		if err != nil {
			return ScanDoneMsg{Err: err}
		}
		return ScanDoneMsg{Result: doc.Result(), Rules: doc.Rules()}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) detailsCmd(path string) tea.Cmd {
	inspector := ops.NewInspector(a.backend.Lister, a.rules, a.backend.Stat)
	return func() tea.Msg {
		d, err := inspector.Inspect(context.Background(), path)
		if err != nil {
			return DetailsMsg{Details: ops.Details{Path: path}, Err: err}
		}
		return DetailsMsg{Details: d}
	}
}

func (a *App) relocateCmd(paths []string) tea.Cmd {
	runner := ops.NewRunner(a.backend.Trasher, a.backend.Lister, a.rules, a.result.Root, a.backend.Logger)
	return func() tea.Msg {
		return RelocateDoneMsg{Report: runner.Relocate(context.Background(), paths)}
	}
}

func (a *App) openCmd(path string) tea.Cmd {
	open := a.backend.Open
	if open == nil {
		a.statusMsg = "Opening folders is only available for local scans"
		return nil
	}
	return func() tea.Msg {
		return OpenDoneMsg{Path: path, Err: open(path)}
	}
}

func (a *App) exportCmd() tea.Cmd {
	if a.state != StateBrowsing {
		return nil
	}

	exportPath := a.ExportPath
	if exportPath == "" {
		exportPath = DefaultExportPath
	}

	a.state = StateExporting
	doc := ops.NewScanDocument(a.result, a.rules, a.Version)
	return func() tea.Msg {
		err := ops.ExportJSON(doc, exportPath)
		return ExportDoneMsg{Path: exportPath, Err: err}
	}
}

// FatalError returns a fatal scan/import error, if any.
func (a *App) FatalError() error { return a.fatalErr }
