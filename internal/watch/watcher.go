// Package watch re-parses entry files whenever an IDL source under the watched
// root changes.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/idlunify/internal/debug"
	"github.com/standardbeagle/idlunify/internal/loader"
	"github.com/standardbeagle/idlunify/internal/types"
	"github.com/standardbeagle/idlunify/internal/unify"
	"github.com/standardbeagle/idlunify/pkg/pathutil"
)

// DefaultDebounce is used when Config.Debounce is zero
const DefaultDebounce = 300 * time.Millisecond

// Config describes what to watch
type Config struct {
	Root     string
	Entries  []string // doublestar patterns relative to Root
	Exclude  []string // doublestar patterns of logical paths to ignore
	Debounce time.Duration
	Options  unify.Options
}

// Batch is the result of parsing every entry once
type Batch struct {
	// Changed lists the logical paths that triggered the batch. It is empty
	// for the initial parse.
	Changed   []string
	Entries   []string
	Documents []*types.UnifyDocument
	Err       error
	Duration  time.Duration
}

// Watcher monitors Config.Root and reports a Batch after each burst of changes
type Watcher struct {
	watcher *fsnotify.Watcher
	parser  *unify.Parser
	cfg     Config
	onBatch func(Batch)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	pending map[string]fsnotify.Op

	statsMu       sync.RWMutex
	batches       int64
	failedBatches int64
	eventsSeen    int64
	lastBatchTime time.Time
}

// New creates a watcher. onBatch is called from the watcher goroutine.
func New(p *unify.Parser, cfg Config, onBatch func(Batch)) (*Watcher, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root %s: %w", cfg.Root, err)
	}
	cfg.Root = root
	cfg.Options.Root = root
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher: fw,
		parser:  p,
		cfg:     cfg,
		onBatch: onBatch,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]fsnotify.Op),
	}, nil
}

// Start parses every entry once, then watches for changes until Stop
func (w *Watcher) Start() error {
	debug.LogWatch("Starting watcher for directory: %s\n", w.cfg.Root)

	if err := w.addWatches(w.cfg.Root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.cfg.Root, err)
	}

	w.runBatch(nil)

	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop ends the watch and waits for the event loop to exit
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	debug.LogWatch("Watcher stopped\n")
	return err
}

// Run starts the watcher and blocks until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[resolved] {
			return filepath.SkipDir
		}
		visited[resolved] = true

		if path != root && w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) logical(path string) string {
	return pathutil.ToPosix(pathutil.ToRelative(path, w.cfg.Root))
}

func (w *Watcher) excluded(path string) bool {
	logical := w.logical(path)
	return pathutil.Match(w.cfg.Exclude, logical) || pathutil.Match(w.cfg.Exclude, logical+"/")
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handleEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleEvent records event and reports whether it should trigger a batch
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	debug.LogWatch("received event %v for path %s\n", event.Op, event.Name)
	if w.excluded(event.Name) {
		return false
	}

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			if err := w.addWatches(event.Name); err != nil {
				log.Printf("Warning: failed to add watch for new directory %s: %v", event.Name, err)
			}
		}
		return false
	}

	if _, ok := loader.SyntaxOf(event.Name); !ok {
		return false
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	w.pending[w.logical(event.Name)] |= event.Op
	w.statsMu.Lock()
	w.eventsSeen++
	w.statsMu.Unlock()
	return true
}

func (w *Watcher) flush() {
	if len(w.pending) == 0 {
		return
	}
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	sort.Strings(changed)
	w.pending = make(map[string]fsnotify.Op)

	// cached documents of changed files would be served again
	if w.cfg.Options.Cache {
		w.parser.Cache().Purge()
	}
	log.Printf("Re-parsing after %d changed files", len(changed))
	w.runBatch(changed)
}

func (w *Watcher) runBatch(changed []string) {
	start := time.Now()
	batch := Batch{Changed: changed}

	batch.Entries, batch.Err = pathutil.GlobFunc(w.cfg.Root, w.cfg.Entries, loader.IsIDL)
	if batch.Err == nil {
		batch.Documents, batch.Err = w.parser.ParseAll(w.ctx, batch.Entries, w.cfg.Options, nil)
	}
	batch.Duration = time.Since(start)

	w.statsMu.Lock()
	w.batches++
	if batch.Err != nil {
		w.failedBatches++
	}
	w.lastBatchTime = time.Now()
	w.statsMu.Unlock()

	debug.LogWatch("parsed %d entries in %v (err=%v)\n", len(batch.Entries), batch.Duration, batch.Err)
	if w.onBatch != nil {
		w.onBatch(batch)
	}
}

// Stats summarizes watcher activity
type Stats struct {
	Batches       int64
	FailedBatches int64
	EventsSeen    int64
	LastBatchTime time.Time
	IsActive      bool
}

// Stats returns current watcher statistics
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return Stats{
		Batches:       w.batches,
		FailedBatches: w.failedBatches,
		EventsSeen:    w.eventsSeen,
		LastBatchTime: w.lastBatchTime,
		IsActive:      w.ctx.Err() == nil,
	}
}
