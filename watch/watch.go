// Package watch converts community charts to the native format as they
// change on disk. It watches a directory tree and writes a .rox file next
// to every chart it can decode.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/openrhythm/rox/codec"
)

// debounceDelay is how long a file must stay quiet before it is converted.
// Editors and download managers write in bursts; half a second outlasts them.
const debounceDelay = 500 * time.Millisecond

// communityExtensions lists the source formats worth converting. Native
// files are skipped so the watcher never feeds on its own output.
var communityExtensions = map[string]bool{
	"osu":  true,
	"sm":   true,
	"qua":  true,
	"json": true,
	"mid":  true,
	"midi": true,
}

type Watcher struct {
	root string
	fs   *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]func(f func())
}

// New builds a watcher over the tree rooted at root. Every directory in
// the tree is registered, including ones created later.
func New(root string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "could not create watcher")
	}
	w := &Watcher{
		root:    root,
		fs:      fs,
		pending: make(map[string]func(f func())),
	}
	if err := w.addTree(root); err != nil {
		fs.Close()
		return nil, errors.Wrapf(err, "could not watch %v", root)
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

// Run processes filesystem events until ctx is cancelled. Conversion
// failures are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	log.Info("watching for charts", "root", w.root)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Error("watch failed", "err", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fs.Add(event.Name); err != nil {
				log.Error("could not watch new directory", "path", event.Name, "err", err)
			}
			return
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(event.Name)), ".")
	if !communityExtensions[ext] {
		return
	}
	w.debouncerFor(event.Name)(func() { convert(event.Name) })
}

// debouncerFor returns the per-path debouncer, so rapid saves of one chart
// collapse into a single conversion without delaying other charts.
func (w *Watcher) debouncerFor(path string) func(f func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.pending[path]
	if !ok {
		d = debounce.New(debounceDelay)
		w.pending[path] = d
	}
	return d
}

func convert(path string) {
	chart, err := codec.DecodeFile(path)
	if err != nil {
		log.Error("could not decode chart", "path", path, "err", err)
		return
	}
	target := strings.TrimSuffix(path, filepath.Ext(path)) + ".rox"
	if err := codec.EncodeFile(chart, target); err != nil {
		log.Error("could not write chart", "path", target, "err", err)
		return
	}
	log.Info("converted chart", "from", filepath.Base(path), "to", filepath.Base(target))
}
