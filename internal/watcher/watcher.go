// Package watcher polls the OS clipboard and records changes as history
// entries.
package watcher

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Cail-Gainey/MacPin/internal/clipboard"
	"github.com/Cail-Gainey/MacPin/internal/core"
	"github.com/Cail-Gainey/MacPin/internal/entry"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 1500 * time.Millisecond

// Watcher polls the clipboard on a fixed interval. macOS has no clipboard
// change callback; the darwin backend at least exposes a cheap changeCount
// probe so ticks with nothing new skip reading content.
type Watcher struct {
	core     *core.Core
	backend  clipboard.Backend
	interval time.Duration

	mu        sync.Mutex
	lastText  string
	lastImage []byte
}

// New creates a watcher polling backend every interval. The watcher
// registers itself as c's write listener so clipboard writes made for paste
// and copy are not re-recorded on the next tick.
func New(c *core.Core, backend clipboard.Backend, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &Watcher{core: c, backend: backend, interval: interval}
	c.SetWriteListener(w)
	return w
}

// ClipboardWritten implements core.WriteListener: it remembers bytes the
// daemon itself just placed on the clipboard so the next tick skips them.
func (w *Watcher) ClipboardWritten(kind entry.Kind, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch kind {
	case entry.KindText:
		w.lastText = string(data)
	case entry.KindImage:
		w.lastImage = bytes.Clone(data)
	}
}

// Run polls until ctx is cancelled. Call in a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	slog.Info("clipboard watcher started", "backend", w.backend.Name(), "interval", w.interval)
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("clipboard watcher stopped")
			return
		case <-t.C:
			w.Tick()
		}
	}
}

// Tick runs one poll cycle. The text and image paths each run once, and a
// failure in one is logged and never stops the other or future ticks.
// Exported so tests can drive the watcher without the ticker.
func (w *Watcher) Tick() {
	if !w.backend.Changed() {
		return
	}
	w.tickText()
	w.tickImage()
}

func (w *Watcher) tickText() {
	text := w.backend.ReadText()
	if len(text) == 0 {
		return
	}
	w.mu.Lock()
	if string(text) == w.lastText {
		w.mu.Unlock()
		return
	}
	w.lastText = string(text)
	w.mu.Unlock()

	e := w.core.RecordText(string(text))
	slog.Debug("captured clipboard text", "entry", e.ID, "chars", len(text))
}

func (w *Watcher) tickImage() {
	img := w.backend.ReadImage()
	if len(img) == 0 {
		return
	}
	w.mu.Lock()
	same := bytes.Equal(img, w.lastImage)
	w.mu.Unlock()
	if same {
		return
	}

	e, created, err := w.core.RecordImage(img)
	if err != nil {
		// lastImage stays unset so the next tick retries these bytes.
		slog.Error("could not record clipboard image", "error", err)
		return
	}

	w.mu.Lock()
	w.lastImage = bytes.Clone(img)
	w.mu.Unlock()

	if created {
		slog.Debug("captured clipboard image", "entry", e.ID, "bytes", len(img))
	}
}
