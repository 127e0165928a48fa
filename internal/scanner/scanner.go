package scanner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sadopc/voidfinder/internal/model"
	"github.com/sadopc/voidfinder/internal/noise"
)

// ErrNotDirectory is returned when a scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// CountFunc pre-counts directories so progress can show a total.
type CountFunc func(ctx context.Context, root string, token *Token) (int64, error)

// Options configures the scanner behavior.
type Options struct {
	// Rules selects the noise files. Nil means nothing is noise.
	Rules *noise.Rules
	// ProgressEvery is the number of directories between progress snapshots.
	ProgressEvery int
	// Counter, when set, runs before the walk to fill Progress.Total.
	Counter CountFunc
	// Logger receives session events. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults for local scans.
func DefaultOptions() Options {
	return Options{
		Rules:         noise.Default(),
		ProgressEvery: DefaultProgressEvery,
		Counter:       CountDirs,
	}
}

// Result is what a session delivers. Cancellation is a normal outcome:
// Entries then holds whatever was found before the walk stopped.
type Result struct {
	Root      string
	Entries   []model.DirectoryEntry
	Cancelled bool
	Errors    []ScanError
	Scanned   int64
	StartTime time.Time
	Duration  time.Duration
}

// Scanner starts scan sessions over a Lister.
type Scanner struct {
	lister Lister
	opts   Options
	logger *slog.Logger
}

// New creates a scanner.
func New(lister Lister, opts Options) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{lister: lister, opts: opts, logger: logger}
}

// Session is one running scan. Exactly one walker goroutine belongs to it.
type Session struct {
	root     string
	token    *Token
	reporter *Reporter
	done     chan struct{}
	result   Result
}

// Start validates root and launches the walk in the background. A root that
// does not exist or is not a directory is reported here and nothing starts.
// Cancelling ctx is equivalent to calling Cancel.
func (s *Scanner) Start(ctx context.Context, root string) (*Session, error) {
	resolved, err := s.lister.Resolve(ctx, root)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		root:     resolved,
		token:    NewToken(),
		reporter: NewReporter(),
		done:     make(chan struct{}),
	}
	stop := context.AfterFunc(ctx, sess.token.RequestCancel)

	s.logger.Info("scan started", "root", resolved)
	go func() {
		defer close(sess.done)
		defer stop()
		sess.result = s.run(ctx, sess)
	}()
	return sess, nil
}

func (s *Scanner) run(ctx context.Context, sess *Session) Result {
	start := time.Now()

	var total int64
	if s.opts.Counter != nil {
		n, err := s.opts.Counter(ctx, sess.root, sess.token)
		if err != nil {
			s.logger.Warn("directory pre-count failed", "root", sess.root, "err", err)
		}
		total = n
	}

	w := NewWalker(s.lister, s.opts.Rules, s.opts.ProgressEvery, s.logger)
	wr := w.Walk(ctx, sess.root, sess.token, func(p Progress) {
		p.Total = total
		p.StartTime = start
		p.Duration = time.Since(start)
		sess.reporter.Publish(p)
	})

	res := Result{
		Root:      sess.root,
		Entries:   wr.Entries,
		Cancelled: wr.Cancelled,
		Errors:    wr.Errors,
		Scanned:   wr.Scanned,
		StartTime: start,
		Duration:  time.Since(start),
	}

	// The final snapshot goes out only after the entry list is complete.
	sess.reporter.Finish(Progress{
		CurrentPath: sess.root,
		Scanned:     res.Scanned,
		Found:       int64(len(res.Entries)),
		Total:       total,
		Errors:      int64(len(res.Errors)),
		Cancelled:   res.Cancelled,
		StartTime:   start,
		Duration:    res.Duration,
	})

	s.logger.Info("scan finished",
		"root", sess.root,
		"found", len(res.Entries),
		"scanned", res.Scanned,
		"errors", len(res.Errors),
		"cancelled", res.Cancelled,
		"duration", res.Duration,
	)
	return res
}

// Root returns the resolved scan root.
func (s *Session) Root() string { return s.root }

// Cancel requests cancellation. It is idempotent.
func (s *Session) Cancel() { s.token.RequestCancel() }

// State returns the token state.
func (s *Session) State() TokenState { return s.token.State() }

// Progress returns the snapshot stream. It closes after the final snapshot.
func (s *Session) Progress() <-chan Progress { return s.reporter.C() }

// Done is closed once the walker goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Await blocks until the walker goroutine has exited and returns its result.
// No progress or entries are produced after Await returns.
func (s *Session) Await() Result {
	<-s.done
	return s.result
}

// Scan runs a session to completion. Intermediate snapshots are forwarded to
// progress when it has room and dropped otherwise; the final snapshot is
// always sent, so the caller must keep receiving until it sees Done.
func (s *Scanner) Scan(ctx context.Context, root string, progress chan<- Progress) (Result, error) {
	sess, err := s.Start(ctx, root)
	if err != nil {
		return Result{}, err
	}
	if progress != nil {
		for p := range sess.Progress() {
			if p.Done {
				progress <- p
				continue
			}
			select {
			case progress <- p:
			default:
			}
		}
	}
	return sess.Await(), nil
}
