// Package history holds the ordered clipboard history and its persistence.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Cail-Gainey/MacPin/internal/blob"
	"github.com/Cail-Gainey/MacPin/internal/entry"
)

// ErrNotFound reports an id with no matching entry.
var ErrNotFound = errors.New("entry not found")

// Store is the authoritative ordered collection of history entries plus the
// JSON file backing it. The mutex keeps poll ticks, IPC requests and the
// cleanup timer from interleaving a read-modify-write cycle on the file.
type Store struct {
	mu      sync.Mutex
	path    string
	images  *blob.Store
	entries []entry.Entry
}

// New creates a store persisting to path, with image bytes managed by
// images. Call Load to pick up an existing file.
func New(path string, images *blob.Store) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &Store{path: path, images: images}, nil
}

// Path returns the history file location.
func (s *Store) Path() string { return s.path }

// Load replaces the in-memory state with the contents of the history file,
// coercing pinned flags to booleans and restoring canonical order. A missing
// file means an empty history, not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.entries = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	var entries []entry.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse history: %w", err)
	}
	entry.SortCanonical(entries)
	s.entries = entries
	return nil
}

// Save writes the full list to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked rewrites the history file wholesale: marshal, write a temp file
// in the same directory, rename over the target so readers never see a
// partial write.
func (s *Store) saveLocked() error {
	list := s.entries
	if list == nil {
		list = []entry.Entry{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// persistLocked saves best-effort: failures are logged, not returned, since
// the in-memory list stays authoritative and the next successful save
// reconciles the file.
func (s *Store) persistLocked() {
	if err := s.saveLocked(); err != nil {
		slog.Error("could not persist history", "path", s.path, "error", err)
	}
}

// InsertAtHead adds e as the newest entry and persists. Deduplication
// against the current clipboard or existing hashes is the caller's job.
func (s *Store) InsertAtHead(e entry.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]entry.Entry{e}, s.entries...)
	entry.SortCanonical(s.entries)
	s.persistLocked()
}

// Delete removes the entry with the given id and persists. When the last
// entry referencing an image file goes away, the file goes with it.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	victim := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.releaseImageLocked(victim)
	s.persistLocked()
	return nil
}

// releaseImageLocked removes the backing file of an image entry once no
// remaining entry references it.
func (s *Store) releaseImageLocked(victim entry.Entry) {
	if victim.Kind != entry.KindImage || victim.ImageRef == "" {
		return
	}
	for _, e := range s.entries {
		if e.ImageRef == victim.ImageRef {
			return
		}
	}
	if err := s.images.Remove(victim.ImageRef); err != nil {
		slog.Warn("could not remove image file", "file", victim.ImageRef, "error", err)
	}
}

// TogglePinned flips the pinned flag on the entry with the given id,
// restores canonical order, persists and returns the new ordered list.
func (s *Store) TogglePinned(id string) ([]entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("pin %s: %w", id, ErrNotFound)
	}
	s.entries[idx].Pinned = !s.entries[idx].Pinned
	entry.SortCanonical(s.entries)
	s.persistLocked()
	return s.snapshotLocked(), nil
}

// ClearKeepPinned drops every unpinned entry, persists and returns what
// remains. Image files are not touched here; the periodic garbage collection
// reclaims them.
func (s *Store) ClearKeepPinned() []entry.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]entry.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Pinned {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.persistLocked()
	return s.snapshotLocked()
}

// Entries returns a copy of the current ordered list.
func (s *Store) Entries() []entry.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.entries[idx], nil
	}
	return entry.Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ContainsImageHash reports whether any image entry carries the given
// content hash.
func (s *Store) ContainsImageHash(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Kind == entry.KindImage && e.Content == hash {
			return true
		}
	}
	return false
}

// LiveImageRefs returns the set of image filenames referenced by the current
// entries.
func (s *Store) LiveImageRefs() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := make(map[string]struct{})
	for _, e := range s.entries {
		if e.ImageRef != "" {
			live[e.ImageRef] = struct{}{}
		}
	}
	return live
}

func (s *Store) snapshotLocked() []entry.Entry {
	out := make([]entry.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
