// Package core funnels every history mutation through one place. Poll ticks,
// IPC requests and the cleanup timer all call into Core, whose mutex keeps
// them from interleaving read-modify-write cycles on the history file, and
// subscribers receive the full ordered list after each change.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Cail-Gainey/MacPin/internal/blob"
	"github.com/Cail-Gainey/MacPin/internal/clipboard"
	"github.com/Cail-Gainey/MacPin/internal/entry"
	"github.com/Cail-Gainey/MacPin/internal/history"
	"github.com/Cail-Gainey/MacPin/internal/paste"
)

// Update is a history-changed event carrying the new ordered list.
type Update struct {
	Entries []entry.Entry
}

// Subscriber is anything that wants to hear about history changes.
type Subscriber interface {
	ID() string
	// Send delivers an update to the subscriber. Must be non-blocking.
	Send(Update)
}

// WriteListener is told whenever the core writes to the OS clipboard (paste
// and copy), so the poll loop can skip re-recording what it already knows.
type WriteListener interface {
	ClipboardWritten(kind entry.Kind, data []byte)
}

// Stats is a point-in-time summary of the daemon's stores.
type Stats struct {
	Entries    int   `json:"entries"`
	Pinned     int   `json:"pinned"`
	Images     int   `json:"images"`
	ImageFiles int   `json:"imageFiles"`
	ImageBytes int64 `json:"imageBytes"`
	MaxItems   int   `json:"maxItems"`
}

// Core owns the history store, the image store and the clipboard backend.
type Core struct {
	mu       sync.Mutex
	hist     *history.Store
	images   *blob.Store
	backend  clipboard.Backend
	exec     *paste.Executor
	maxItems int

	subMu sync.RWMutex
	subs  map[string]Subscriber

	writeMu       sync.RWMutex
	writeListener WriteListener
}

// New wires the stores and boundaries into the single mutation funnel that
// every transport talks to. maxItems of zero or less means unlimited.
func New(hist *history.Store, images *blob.Store, backend clipboard.Backend, exec *paste.Executor, maxItems int) *Core {
	return &Core{
		hist:     hist,
		images:   images,
		backend:  backend,
		exec:     exec,
		maxItems: maxItems,
		subs:     make(map[string]Subscriber),
	}
}

// SetWriteListener registers the listener told about clipboard writes. Only
// one listener is supported; calling again replaces it.
func (c *Core) SetWriteListener(l WriteListener) {
	c.writeMu.Lock()
	c.writeListener = l
	c.writeMu.Unlock()
}

// Subscribe adds s and immediately delivers the current list so new
// observers start in sync.
func (c *Core) Subscribe(s Subscriber) {
	c.subMu.Lock()
	c.subs[s.ID()] = s
	total := len(c.subs)
	c.subMu.Unlock()

	slog.Info("observer subscribed", "observer", s.ID(), "total", total)
	s.Send(Update{Entries: c.hist.Entries()})
}

// Unsubscribe removes s.
func (c *Core) Unsubscribe(s Subscriber) {
	c.subMu.Lock()
	delete(c.subs, s.ID())
	total := len(c.subs)
	c.subMu.Unlock()

	slog.Info("observer unsubscribed", "observer", s.ID(), "total", total)
}

// RecordText inserts a new text entry at the head and applies the capacity
// limit. Deduplication against the last observed clipboard text is the
// caller's job.
func (c *Core) RecordText(text string) entry.Entry {
	e := entry.NewText(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist.InsertAtHead(e)
	c.hist.EvictOver(c.maxItems)
	c.notifyLocked()
	return e
}

// RecordImage stores png in the image store and inserts an image entry,
// unless an entry with the same content hash already exists — then it is a
// no-op against history even though the file may already be on disk. The
// bool reports whether a new entry was created.
func (c *Core) RecordImage(png []byte) (entry.Entry, bool, error) {
	hash := blob.Hash(png)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hist.ContainsImageHash(hash) {
		return entry.Entry{}, false, nil
	}
	ref, err := c.images.Put(png)
	if err != nil {
		return entry.Entry{}, false, err
	}
	e := entry.NewImage(hash, ref)
	c.hist.InsertAtHead(e)
	c.hist.EvictOver(c.maxItems)
	c.notifyLocked()
	return e, true, nil
}

// Entries returns the current ordered list.
func (c *Core) Entries() []entry.Entry {
	return c.hist.Entries()
}

// Get returns the entry with the given id.
func (c *Core) Get(id string) (entry.Entry, error) {
	return c.hist.Get(id)
}

// Delete removes the entry with the given id.
func (c *Core) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hist.Delete(id); err != nil {
		return err
	}
	c.notifyLocked()
	return nil
}

// TogglePin flips the pinned flag and returns the reordered list.
func (c *Core) TogglePin(id string) ([]entry.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, err := c.hist.TogglePinned(id)
	if err != nil {
		return nil, err
	}
	c.notifyLocked()
	return list, nil
}

// ClearKeepPinned drops every unpinned entry and returns what remains.
func (c *Core) ClearKeepPinned() []entry.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.hist.ClearKeepPinned()
	c.notifyLocked()
	return kept
}

// Reload re-reads the history file, replacing in-memory state.
func (c *Core) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.hist.Load(); err != nil {
		return err
	}
	c.notifyLocked()
	return nil
}

// PasteEntry writes the entry's payload back to the OS clipboard and, when
// keystroke is set, simulates Cmd-V in the frontmost app. History is not
// mutated — entries keep their position on paste.
func (c *Core) PasteEntry(ctx context.Context, id string, keystroke bool) error {
	e, err := c.hist.Get(id)
	if err != nil {
		return err
	}
	kind, data, err := c.exec.Restore(e)
	if err != nil {
		return err
	}
	c.markWritten(kind, data)
	if !keystroke {
		return nil
	}
	return c.exec.SendKeystroke(ctx)
}

// CopyText puts text on the OS clipboard and records it as the newest entry
// right away instead of waiting for the next poll tick.
func (c *Core) CopyText(text string) (entry.Entry, error) {
	data := []byte(text)
	if err := c.backend.WriteText(data); err != nil {
		return entry.Entry{}, fmt.Errorf("write clipboard: %w", err)
	}
	c.markWritten(entry.KindText, data)
	return c.RecordText(text), nil
}

// SetMaxItems applies a new capacity limit (zero or less means unlimited)
// and evicts immediately when the history no longer fits.
func (c *Core) SetMaxItems(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n == c.maxItems {
		return
	}
	c.maxItems = n
	if c.hist.EvictOver(n) > 0 {
		c.notifyLocked()
	}
}

// MaxItems returns the current capacity limit.
func (c *Core) MaxItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxItems
}

// CollectGarbage removes image files no longer referenced by any entry. The
// mutex keeps a concurrent insert from storing a file between the live-set
// snapshot and the directory sweep.
func (c *Core) CollectGarbage() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.GarbageCollect(c.hist.LiveImageRefs())
}

// RunGC collects garbage immediately and then on every interval tick until
// ctx is cancelled.
func (c *Core) RunGC(ctx context.Context, interval time.Duration) {
	slog.Info("image garbage collector started", "interval", interval)
	t := time.NewTicker(interval)
	defer t.Stop()

	collect := func() {
		removed, err := c.CollectGarbage()
		if err != nil {
			slog.Error("image garbage collection failed", "error", err)
			return
		}
		if removed > 0 {
			slog.Info("removed unreferenced images", "count", removed)
		}
	}

	collect()
	for {
		select {
		case <-ctx.Done():
			slog.Info("image garbage collector stopped")
			return
		case <-t.C:
			collect()
		}
	}
}

// Stats summarizes the stores for the status command.
func (c *Core) Stats() (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Stats{MaxItems: c.maxItems}
	for _, e := range c.hist.Entries() {
		st.Entries++
		if e.Pinned {
			st.Pinned++
		}
		if e.Kind == entry.KindImage {
			st.Images++
		}
	}
	files, bytes, err := c.images.Size()
	if err != nil {
		return st, err
	}
	st.ImageFiles, st.ImageBytes = files, bytes
	return st, nil
}

// notifyLocked fans the current ordered list out to every subscriber.
// Subscriber.Send is non-blocking by contract, so holding the mutex here
// keeps updates arriving in mutation order.
func (c *Core) notifyLocked() {
	list := c.hist.Entries()
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, s := range c.subs {
		s.Send(Update{Entries: list})
	}
}

// markWritten tells the registered listener about a clipboard write.
func (c *Core) markWritten(kind entry.Kind, data []byte) {
	c.writeMu.RLock()
	l := c.writeListener
	c.writeMu.RUnlock()
	if l != nil {
		l.ClipboardWritten(kind, data)
	}
}
