package entry

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewTextPreview(t *testing.T) {
	short := NewText("hello")
	if short.Preview != "hello" {
		t.Errorf("NewText() preview = %q, want %q", short.Preview, "hello")
	}
	if short.Kind != KindText {
		t.Errorf("NewText() kind = %q, want %q", short.Kind, KindText)
	}
	if short.Content != "hello" {
		t.Errorf("NewText() content = %q, want %q", short.Content, "hello")
	}

	long := NewText(strings.Repeat("x", 250))
	if got := len([]rune(long.Preview)); got != PreviewLimit {
		t.Errorf("NewText() long preview length = %v runes, want %v", got, PreviewLimit)
	}
	if long.Content != strings.Repeat("x", 250) {
		t.Error("NewText() must keep the full content untruncated")
	}

	// Multibyte runes must not be split mid-sequence.
	wide := NewText(strings.Repeat("日", 150))
	if got := len([]rune(wide.Preview)); got != PreviewLimit {
		t.Errorf("NewText() multibyte preview length = %v runes, want %v", got, PreviewLimit)
	}
	if !strings.HasPrefix(wide.Content, wide.Preview) {
		t.Error("NewText() preview is not a prefix of the content")
	}
}

func TestNewImage(t *testing.T) {
	e := NewImage("abc123", "abc123.png")
	if e.Kind != KindImage {
		t.Errorf("NewImage() kind = %q, want %q", e.Kind, KindImage)
	}
	if e.Content != "abc123" {
		t.Errorf("NewImage() content = %q, want hash %q", e.Content, "abc123")
	}
	if e.ImageRef != "abc123.png" {
		t.Errorf("NewImage() imageRef = %q, want %q", e.ImageRef, "abc123.png")
	}
	if e.Preview != ImagePreview {
		t.Errorf("NewImage() preview = %q, want %q", e.Preview, ImagePreview)
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		e := NewText("x")
		if e.ID == "" {
			t.Fatal("NewText() produced an empty id")
		}
		if seen[e.ID] {
			t.Fatalf("NewText() produced duplicate id %q", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestPinnedCoercion(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want bool
	}{
		{"bool true", `{"id":"a","kind":"text","content":"x","pinned":true}`, true},
		{"bool false", `{"pinned":false}`, false},
		{"absent", `{}`, false},
		{"null", `{"pinned":null}`, false},
		{"number one", `{"pinned":1}`, true},
		{"number zero", `{"pinned":0}`, false},
		{"non-empty string", `{"pinned":"yes"}`, true},
		{"empty string", `{"pinned":""}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var e Entry
			if err := json.Unmarshal([]byte(tc.doc), &e); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tc.doc, err)
			}
			if e.Pinned != tc.want {
				t.Errorf("pinned = %v, want %v", e.Pinned, tc.want)
			}
		})
	}
}

func TestUnmarshalKeepsOtherFields(t *testing.T) {
	doc := `{"id":"e1","kind":"image","content":"deadbeef","createdAt":"2026-01-02T15:04:05Z","preview":"[Image]","pinned":1,"imageRef":"deadbeef.png"}`
	var e Entry
	if err := json.Unmarshal([]byte(doc), &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if e.ID != "e1" || e.Kind != KindImage || e.Content != "deadbeef" || e.ImageRef != "deadbeef.png" {
		t.Errorf("Unmarshal dropped fields: %+v", e)
	}
	if !e.Pinned {
		t.Error("pinned = false, want true")
	}
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if !e.CreatedAt.Equal(want) {
		t.Errorf("createdAt = %v, want %v", e.CreatedAt, want)
	}
}

func TestImagePayload(t *testing.T) {
	t.Run("file reference", func(t *testing.T) {
		e := Entry{ID: "a", Kind: KindImage, ImageRef: "h.png"}
		p, err := e.ImagePayload()
		if err != nil {
			t.Fatalf("ImagePayload() failed: %v", err)
		}
		if p.Source != PayloadFile || p.File != "h.png" {
			t.Errorf("ImagePayload() = %+v, want file h.png", p)
		}
	})

	t.Run("file reference wins over inline data", func(t *testing.T) {
		e := Entry{ID: "a", Kind: KindImage, ImageRef: "h.png", Data: "aGk="}
		p, err := e.ImagePayload()
		if err != nil {
			t.Fatalf("ImagePayload() failed: %v", err)
		}
		if p.Source != PayloadFile {
			t.Errorf("ImagePayload() source = %v, want PayloadFile", p.Source)
		}
	})

	t.Run("inline base64", func(t *testing.T) {
		raw := []byte{0x89, 'P', 'N', 'G'}
		e := Entry{ID: "a", Kind: KindImage, Data: base64.StdEncoding.EncodeToString(raw)}
		p, err := e.ImagePayload()
		if err != nil {
			t.Fatalf("ImagePayload() failed: %v", err)
		}
		if p.Source != PayloadInline || string(p.Data) != string(raw) {
			t.Errorf("ImagePayload() = %+v, want inline %v", p, raw)
		}
	})

	t.Run("inline data URL", func(t *testing.T) {
		raw := []byte{0x89, 'P', 'N', 'G'}
		e := Entry{ID: "a", Kind: KindImage, Data: "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)}
		p, err := e.ImagePayload()
		if err != nil {
			t.Fatalf("ImagePayload() failed: %v", err)
		}
		if string(p.Data) != string(raw) {
			t.Errorf("ImagePayload() data = %v, want %v", p.Data, raw)
		}
	})

	t.Run("malformed inline data", func(t *testing.T) {
		e := Entry{ID: "a", Kind: KindImage, Data: "%%% not base64 %%%"}
		if _, err := e.ImagePayload(); !errors.Is(err, ErrDecode) {
			t.Errorf("ImagePayload() error = %v, want ErrDecode", err)
		}
	})

	t.Run("text entry", func(t *testing.T) {
		e := Entry{ID: "a", Kind: KindText, Content: "hi"}
		_, err := e.ImagePayload()
		if !errors.Is(err, ErrNoPayload) {
			t.Errorf("ImagePayload() error = %v, want ErrNoPayload", err)
		}
	})

	t.Run("no source at all", func(t *testing.T) {
		e := Entry{ID: "a", Kind: KindImage}
		_, err := e.ImagePayload()
		if !errors.Is(err, ErrNoPayload) {
			t.Errorf("ImagePayload() error = %v, want ErrNoPayload", err)
		}
	})
}

func TestSortCanonical(t *testing.T) {
	at := func(sec int) time.Time {
		return time.Date(2026, 3, 1, 10, 0, sec, 0, time.UTC)
	}
	entries := []Entry{
		{ID: "old", CreatedAt: at(1)},
		{ID: "pinned-old", CreatedAt: at(2), Pinned: true},
		{ID: "new", CreatedAt: at(4)},
		{ID: "pinned-new", CreatedAt: at(3), Pinned: true},
	}
	SortCanonical(entries)

	want := []string{"pinned-new", "pinned-old", "new", "old"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Fatalf("SortCanonical() order[%d] = %q, want %q (full: %v)", i, entries[i].ID, id, ids(entries))
		}
	}
}

func TestSortCanonicalStableOnTies(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "first", CreatedAt: ts},
		{ID: "second", CreatedAt: ts},
		{ID: "third", CreatedAt: ts},
	}
	SortCanonical(entries)
	if entries[0].ID != "first" || entries[1].ID != "second" || entries[2].ID != "third" {
		t.Errorf("SortCanonical() reordered equal timestamps: %v", ids(entries))
	}
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
