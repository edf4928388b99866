package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Suffixes appended to inbox files once they have been handled.
const (
	ImportedSuffix = ".imported"
	RejectedSuffix = ".rejected"
)

// DefaultDebounce is how long an inbox file must stay unchanged before import.
const DefaultDebounce = 100 * time.Millisecond

// Importer imports a JSON quotes file and returns how many quotes were added.
type Importer interface {
	ImportFile(ctx context.Context, path string) (int, error)
}

// ImportFunc adapts a function to the Importer interface.
type ImportFunc func(ctx context.Context, path string) (int, error)

// ImportFile calls f.
func (f ImportFunc) ImportFile(ctx context.Context, path string) (int, error) { return f(ctx, path) }

// InboxConfig holds configuration for an Inbox.
type InboxConfig struct {
	// Debounce batches rapid writes to the same file.
	Debounce time.Duration

	// Logger for inbox activity
	Logger *slog.Logger
}

// Inbox imports *.json files dropped into a directory.
type Inbox struct {
	dir      string
	importer Importer
	config   *InboxConfig

	watcher *fsnotify.Watcher

	pending   map[string]time.Time // path -> last event
	pendingMu sync.Mutex

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewInbox creates an inbox over dir. The directory is created if needed.
func NewInbox(dir string, importer Importer, config *InboxConfig) (*Inbox, error) {
	if dir == "" {
		return nil, fmt.Errorf("inbox dir cannot be empty")
	}
	if importer == nil {
		return nil, fmt.Errorf("importer cannot be nil")
	}
	if config == nil {
		config = &InboxConfig{}
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = slog.Default().With("component", "inbox")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve inbox dir: %w", err)
	}

	return &Inbox{
		dir:      abs,
		importer: importer,
		config:   config,
		pending:  make(map[string]time.Time),
	}, nil
}

// Dir returns the absolute inbox directory.
func (in *Inbox) Dir() string {
	return in.dir
}

// Start begins watching. Files already present are queued immediately.
func (in *Inbox) Start(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.running {
		return fmt.Errorf("inbox already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(in.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch inbox %s: %w", in.dir, err)
	}

	entries, err := os.ReadDir(in.dir)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to read inbox %s: %w", in.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && isInboxFile(e.Name()) {
			in.queue(filepath.Join(in.dir, e.Name()))
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	in.watcher = watcher
	in.cancel = cancel
	in.running = true

	in.wg.Add(2)
	go in.watchEvents(runCtx)
	go in.processPending(runCtx)

	return nil
}

// Stop stops watching and waits for the event loops to exit.
func (in *Inbox) Stop() error {
	in.mu.Lock()
	if !in.running {
		in.mu.Unlock()
		return nil
	}
	in.running = false
	in.mu.Unlock()

	in.cancel()
	err := in.watcher.Close()
	in.wg.Wait()

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// IsRunning returns true if the inbox is currently watching.
func (in *Inbox) IsRunning() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.running
}

func (in *Inbox) watchEvents(ctx context.Context) {
	defer in.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if filepath.Dir(event.Name) != in.dir || !isInboxFile(filepath.Base(event.Name)) {
				continue
			}
			in.config.Logger.Debug("inbox event", "op", event.Op.String(), "path", event.Name)
			in.queue(event.Name)

		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			in.config.Logger.Warn("watcher error", "error", err)
		}
	}
}

func (in *Inbox) queue(path string) {
	in.pendingMu.Lock()
	defer in.pendingMu.Unlock()

	in.pending[path] = time.Now()
}

func (in *Inbox) processPending(ctx context.Context) {
	defer in.wg.Done()

	ticker := time.NewTicker(in.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			for _, path := range in.settled() {
				in.importFile(ctx, path)
			}
		}
	}
}

// settled removes and returns the queued paths that have been quiet for the
// debounce interval.
func (in *Inbox) settled() []string {
	in.pendingMu.Lock()
	defer in.pendingMu.Unlock()

	now := time.Now()
	var ready []string
	for path, at := range in.pending {
		if now.Sub(at) < in.config.Debounce {
			continue
		}
		ready = append(ready, path)
		delete(in.pending, path)
	}
	return ready
}

func (in *Inbox) importFile(ctx context.Context, path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}

	added, err := in.importer.ImportFile(ctx, path)
	suffix := ImportedSuffix
	if err != nil {
		in.config.Logger.Warn("inbox import failed", "path", path, "error", err)
		suffix = RejectedSuffix
	} else {
		in.config.Logger.Info("imported inbox file", "path", path, "count", added)
	}

	if err := os.Rename(path, path+suffix); err != nil {
		in.config.Logger.Error("failed to mark inbox file", "path", path, "error", err)
	}
}

func isInboxFile(name string) bool {
	return strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".")
}
