package blob

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPutIsIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	data := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	first, err := s.Put(data)
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	second, err := s.Put(data)
	if err != nil {
		t.Fatalf("second Put() failed: %v", err)
	}
	if first != second {
		t.Errorf("Put() returned %q then %q for identical bytes", first, second)
	}
	if first != Filename(Hash(data)) {
		t.Errorf("Put() filename = %q, want %q", first, Filename(Hash(data)))
	}

	files, _, err := s.Size()
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if files != 1 {
		t.Errorf("store holds %v files after double Put(), want 1", files)
	}
}

func TestGetRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	data := []byte("image bytes")
	name, err := s.Put(data)
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	got, err := s.Get(name)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}
}

func TestGetMissing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := s.Get("nope.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestRemoveMissingIsQuiet(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := s.Remove("nope.png"); err != nil {
		t.Errorf("Remove() on absent file = %v, want nil", err)
	}
}

func TestGarbageCollect(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	keep, err := s.Put([]byte("keep me"))
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	drop, err := s.Put([]byte("drop me"))
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	removed, err := s.GarbageCollect(map[string]struct{}{keep: {}})
	if err != nil {
		t.Fatalf("GarbageCollect() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("GarbageCollect() removed %v files, want 1", removed)
	}
	if _, err := s.Get(keep); err != nil {
		t.Errorf("GarbageCollect() removed a live file: %v", err)
	}
	if _, err := s.Get(drop); !errors.Is(err, ErrNotFound) {
		t.Errorf("GarbageCollect() left dead file %q in place", drop)
	}
}

func TestGarbageCollectEmptyLiveSetClearsStore(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := s.Put([]byte("a")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if _, err := s.Put([]byte("b")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	removed, err := s.GarbageCollect(map[string]struct{}{})
	if err != nil {
		t.Fatalf("GarbageCollect() failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("GarbageCollect() removed %v files, want 2", removed)
	}
	files, _, err := s.Size()
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if files != 0 {
		t.Errorf("store holds %v files after full sweep, want 0", files)
	}
}

func TestLiveRefs(t *testing.T) {
	dir := t.TempDir()
	historyPath := filepath.Join(dir, "clipboard-history.json")
	doc := `[
		{"id":"1","kind":"image","content":"aaa","imageRef":"aaa.png"},
		{"id":"2","kind":"text","content":"hello"},
		{"id":"3","kind":"image","content":"bbb","imageRef":"bbb.png"},
		{"id":"4","kind":"image","content":"legacy","data":"aGk="}
	]`
	if err := os.WriteFile(historyPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write history file: %v", err)
	}

	live, err := LiveRefs(historyPath)
	if err != nil {
		t.Fatalf("LiveRefs() failed: %v", err)
	}
	if len(live) != 2 {
		t.Fatalf("LiveRefs() = %v entries, want 2: %v", len(live), live)
	}
	for _, want := range []string{"aaa.png", "bbb.png"} {
		if _, ok := live[want]; !ok {
			t.Errorf("LiveRefs() missing %q", want)
		}
	}
}

func TestLiveRefsMissingFile(t *testing.T) {
	live, err := LiveRefs(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LiveRefs() on missing file = %v, want empty set", err)
	}
	if len(live) != 0 {
		t.Errorf("LiveRefs() = %v, want empty set", live)
	}
}
