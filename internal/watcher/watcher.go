// Package watcher observes one source directory and reports files that
// have finished arriving. Create and write events restart a per-file
// settle timer; once a file stays quiet for the settle delay it is probed
// for readability, with retries, before a discovery is emitted. Files
// still being written by slow producers are neither announced early nor
// lost.
package watcher

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Discovery announces one file that settled and passed the readiness
// probe. ModTime is captured at probe time and gates acceptance against
// the tracking baseline downstream.
type Discovery struct {
	Path    string
	ModTime time.Time
}

// Options tunes the settle and readiness behavior. Zero values select the
// defaults.
type Options struct {
	// SettleDelay is how long a file must stay quiet after its last
	// write before it is probed.
	SettleDelay time.Duration
	// ReadyRetries is how many probe attempts a file gets before it is
	// reported as unreadable.
	ReadyRetries int
	// ReadyDelay is the pause between probe attempts.
	ReadyDelay time.Duration
}

const (
	// DefaultSettleDelay matches typical camera and scanner tethering
	// software, which writes files in bursts shorter than half a second.
	DefaultSettleDelay = 500 * time.Millisecond

	DefaultReadyRetries = 3
	DefaultReadyDelay   = time.Second
)

func (o Options) withDefaults() Options {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.ReadyRetries <= 0 {
		o.ReadyRetries = DefaultReadyRetries
	}
	if o.ReadyDelay <= 0 {
		o.ReadyDelay = DefaultReadyDelay
	}
	return o
}

// Watcher watches a single directory, not its subdirectories; discovery
// is flat by contract.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan Discovery
	errors  chan error
	done    chan struct{}
	dir     string
	opts    Options

	mu        sync.Mutex
	settleMap map[string]*time.Timer
	closed    bool
}

// New starts watching dir. The directory must exist; a watcher on a
// missing source would silently discover nothing.
func New(dir string, opts Options) (*Watcher, error) {
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, dir[1:])
	}
	dir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:   fsw,
		events:    make(chan Discovery, 100),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
		dir:       dir,
		opts:      opts.withDefaults(),
		settleMap: make(map[string]*time.Timer),
	}
	go w.processEvents()
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Events returns the channel of settled, readable files.
func (w *Watcher) Events() <-chan Discovery {
	return w.events
}

// Errors returns the channel of watch and probe errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only arrivals matter. Remove, rename, and chmod never make a file
	// newly available.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	w.settle(event.Name)
}

// settle restarts the quiet-period timer for path. Every further write
// pushes the probe out again, so a file is only probed once its producer
// has let go of it for the full delay.
func (w *Watcher) settle(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, exists := w.settleMap[path]; exists {
		timer.Stop()
	}
	w.settleMap[path] = time.AfterFunc(w.opts.SettleDelay, func() {
		w.mu.Lock()
		delete(w.settleMap, path)
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		w.probe(path)
	})
}

// probe verifies path is a readable regular file, retrying while the
// producer may still hold it open exclusively. A file that disappeared is
// dropped silently; one that never becomes readable is reported once on
// the error channel.
func (w *Watcher) probe(path string) {
	var lastErr error
	for attempt := 0; attempt < w.opts.ReadyRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-w.done:
				return
			case <-time.After(w.opts.ReadyDelay):
			}
		}

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			lastErr = err
			continue
		}
		if info.IsDir() {
			return
		}

		if err := readCheck(path); err != nil {
			lastErr = err
			continue
		}

		w.send(Discovery{Path: path, ModTime: info.ModTime()})
		return
	}
	w.sendError(fmt.Errorf("file never became readable: %s: %w", path, lastErr))
}

// readCheck opens the file and reads one byte. EOF is fine; an empty file
// is ready too.
func readCheck(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (w *Watcher) send(d Discovery) {
	select {
	case w.events <- d:
	case <-w.done:
	default:
		// Channel full; the consumer is not keeping up. Dropping is the
		// lesser evil next to blocking the watch loop.
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// Close stops the watcher, cancels pending settle timers, and releases
// the fsnotify handle. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, timer := range w.settleMap {
		timer.Stop()
	}
	w.settleMap = nil
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
