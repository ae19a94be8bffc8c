// Package entry defines the clipboard history entry model shared by the
// history store, the watcher and the IPC layer.
package entry

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates what a history entry holds.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// PreviewLimit is the number of leading runes of a text entry kept as its
// display preview.
const PreviewLimit = 100

// ImagePreview is the fixed preview label for image entries.
const ImagePreview = "[Image]"

// Entry is a single recorded clipboard snapshot. For text entries Content
// holds the literal string; for image entries it holds the hex content hash
// that keys the image store, never the raw bytes.
type Entry struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Preview   string    `json:"preview"`
	Pinned    bool      `json:"pinned"`

	// ImageRef is the on-disk filename of an image entry's bytes. History
	// files written by old releases may instead carry the bytes inline,
	// base64-encoded, in Data.
	ImageRef string `json:"imageRef,omitempty"`
	Data     string `json:"data,omitempty"`
}

// NewText builds a text entry for the given clipboard string.
func NewText(text string) Entry {
	return Entry{
		ID:        newID(),
		Kind:      KindText,
		Content:   text,
		CreatedAt: time.Now(),
		Preview:   previewOf(text),
	}
}

// NewImage builds an image entry whose bytes are stored under ref, keyed by
// the hex content hash.
func NewImage(hash, ref string) Entry {
	return Entry{
		ID:        newID(),
		Kind:      KindImage,
		Content:   hash,
		CreatedAt: time.Now(),
		Preview:   ImagePreview,
		ImageRef:  ref,
	}
}

// newID returns a time-ordered unique id so ids roughly sort by creation.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func previewOf(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLimit {
		return text
	}
	return string(runes[:PreviewLimit])
}

// UnmarshalJSON decodes an entry, coercing pinned to a strict boolean.
// Old history files carry pinned as a bool, a number, a string or null.
func (e *Entry) UnmarshalJSON(b []byte) error {
	type plain Entry
	aux := struct {
		*plain
		Pinned json.RawMessage `json:"pinned"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.Pinned = truthy(aux.Pinned)
	return nil
}

// truthy applies loose boolean coercion: absent and null are false, numbers
// compare against zero, strings are true when non-empty.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s != ""
	}
	return true
}

// PayloadSource says where an image entry's bytes live.
type PayloadSource int

const (
	// PayloadFile means the bytes live in the image store under Payload.File.
	PayloadFile PayloadSource = iota
	// PayloadInline means the bytes were stored inline and are decoded into
	// Payload.Data.
	PayloadInline
)

// Payload is the resolved byte source of an image entry.
type Payload struct {
	Source PayloadSource
	File   string
	Data   []byte
}

// ErrNoPayload reports an entry with no resolvable image bytes.
var ErrNoPayload = errors.New("no image payload")

// ErrDecode reports inline image data that is not valid base64.
var ErrDecode = errors.New("malformed inline image data")

const dataURLMarker = ";base64,"

// ImagePayload resolves where the entry's image bytes live: a file reference
// when present, otherwise inline base64 data from old history files. Inline
// data may be a bare base64 string or a full data: URL.
func (e Entry) ImagePayload() (Payload, error) {
	if e.Kind != KindImage {
		return Payload{}, fmt.Errorf("entry %s: %w: kind %q", e.ID, ErrNoPayload, e.Kind)
	}
	if e.ImageRef != "" {
		return Payload{Source: PayloadFile, File: e.ImageRef}, nil
	}
	if e.Data != "" {
		enc := e.Data
		if strings.HasPrefix(enc, "data:") {
			if i := strings.Index(enc, dataURLMarker); i >= 0 {
				enc = enc[i+len(dataURLMarker):]
			}
		}
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return Payload{}, fmt.Errorf("entry %s: %w: %w", e.ID, ErrDecode, err)
		}
		return Payload{Source: PayloadInline, Data: raw}, nil
	}
	return Payload{}, fmt.Errorf("entry %s: %w", e.ID, ErrNoPayload)
}

// SortCanonical orders entries pinned-first, newest-first within each group.
// The sort is stable so entries with equal timestamps keep their relative
// order.
func SortCanonical(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Pinned != entries[j].Pinned {
			return entries[i].Pinned
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
