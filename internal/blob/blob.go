// Package blob stores clipboard image bytes on disk, one file per distinct
// content hash.
package blob

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrNotFound reports a file that is not in the store.
var ErrNotFound = errors.New("not found")

// Store is a flat directory of <hash>.png files.
type Store struct {
	dir string
}

// New opens the store directory, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Hash returns the hex content hash that keys image bytes.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// Filename derives the stored filename for a content hash.
func Filename(hash string) string { return hash + ".png" }

// Put stores data under its hash-derived filename, skipping the write when a
// file with that name already exists. The filename is returned either way.
func (s *Store) Put(data []byte) (string, error) {
	name := Filename(Hash(data))
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return name, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	return name, nil
}

// Get reads the bytes stored under name.
func (s *Store) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("image %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", name, err)
	}
	return data, nil
}

// Remove deletes the file stored under name. Removing an absent file is not
// an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image %s: %w", name, err)
	}
	return nil
}

// GarbageCollect deletes every file whose name is not in live and returns
// how many files it removed. Individual removal failures are logged and
// skipped so one stubborn file does not abort the sweep.
func (s *Store) GarbageCollect(live map[string]struct{}) (int, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("scan image dir: %w", err)
	}
	removed := 0
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		if _, ok := live[d.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, d.Name())); err != nil {
			slog.Warn("could not remove unreferenced image", "file", d.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Size reports the number of stored files and their total bytes.
func (s *Store) Size() (files int, bytes int64, err error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("scan image dir: %w", err)
	}
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		files++
		bytes += info.Size()
	}
	return files, bytes, nil
}

// LiveRefs collects the image filenames referenced by the history file at
// path, decoding only the reference field so garbage collection can run
// without loading the full history into memory. A missing history file
// yields an empty set.
func LiveRefs(historyPath string) (map[string]struct{}, error) {
	raw, err := os.ReadFile(historyPath)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	var refs []struct {
		ImageRef string `json:"imageRef"`
	}
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("parse history file: %w", err)
	}
	live := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		if r.ImageRef != "" {
			live[r.ImageRef] = struct{}{}
		}
	}
	return live, nil
}
