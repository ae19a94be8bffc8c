package paste

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/Cail-Gainey/MacPin/internal/blob"
	"github.com/Cail-Gainey/MacPin/internal/entry"
)

type fakeBackend struct {
	text  []byte
	image []byte
}

func (f *fakeBackend) Name() string              { return "fake" }
func (f *fakeBackend) Changed() bool             { return true }
func (f *fakeBackend) ReadText() []byte          { return f.text }
func (f *fakeBackend) ReadImage() []byte         { return f.image }
func (f *fakeBackend) WriteText(d []byte) error  { f.text = d; return nil }
func (f *fakeBackend) WriteImage(d []byte) error { f.image = d; return nil }
func (f *fakeBackend) Close()                    {}

func newExecutor(t *testing.T, run RunFunc) (*Executor, *fakeBackend, *blob.Store) {
	t.Helper()
	images, err := blob.New(t.TempDir())
	if err != nil {
		t.Fatalf("blob.New() failed: %v", err)
	}
	backend := &fakeBackend{}
	return NewWithRunner(backend, images, run), backend, images
}

func TestRestoreText(t *testing.T) {
	x, backend, _ := newExecutor(t, nil)
	kind, data, err := x.Restore(entry.Entry{ID: "a", Kind: entry.KindText, Content: "hello"})
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if kind != entry.KindText || string(data) != "hello" {
		t.Errorf("Restore() = (%q, %q), want (text, hello)", kind, data)
	}
	if string(backend.text) != "hello" {
		t.Errorf("clipboard text = %q, want %q", backend.text, "hello")
	}
}

func TestRestoreImageFromStore(t *testing.T) {
	x, backend, images := newExecutor(t, nil)
	png := []byte{0x89, 'P', 'N', 'G', 7}
	ref, err := images.Put(png)
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	kind, data, err := x.Restore(entry.Entry{ID: "a", Kind: entry.KindImage, Content: blob.Hash(png), ImageRef: ref})
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if kind != entry.KindImage || string(data) != string(png) {
		t.Errorf("Restore() returned wrong payload: kind=%q len=%d", kind, len(data))
	}
	if string(backend.image) != string(png) {
		t.Error("clipboard image does not match stored bytes")
	}
}

func TestRestoreLegacyInlineImage(t *testing.T) {
	x, backend, _ := newExecutor(t, nil)
	png := []byte{0x89, 'P', 'N', 'G', 3}
	e := entry.Entry{ID: "a", Kind: entry.KindImage, Data: base64.StdEncoding.EncodeToString(png)}

	_, data, err := x.Restore(e)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if string(data) != string(png) || string(backend.image) != string(png) {
		t.Error("legacy inline image not decoded onto the clipboard")
	}
}

func TestRestoreMissingImageFile(t *testing.T) {
	x, _, _ := newExecutor(t, nil)
	e := entry.Entry{ID: "a", Kind: entry.KindImage, Content: "gone", ImageRef: "gone.png"}
	if _, _, err := x.Restore(e); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("Restore() error = %v, want blob.ErrNotFound", err)
	}
}

func TestRestoreMalformedInlineImage(t *testing.T) {
	x, _, _ := newExecutor(t, nil)
	e := entry.Entry{ID: "a", Kind: entry.KindImage, Data: "*** definitely not base64 ***"}
	if _, _, err := x.Restore(e); !errors.Is(err, entry.ErrDecode) {
		t.Errorf("Restore() error = %v, want entry.ErrDecode", err)
	}
}

func TestSendKeystroke(t *testing.T) {
	var gotScript string
	x, _, _ := newExecutor(t, func(_ context.Context, script string) ([]byte, error) {
		gotScript = script
		return nil, nil
	})
	if err := x.SendKeystroke(context.Background()); err != nil {
		t.Fatalf("SendKeystroke() failed: %v", err)
	}
	if gotScript != keystrokeScript {
		t.Errorf("SendKeystroke() ran %q, want %q", gotScript, keystrokeScript)
	}
}

func TestSendKeystrokePermissionDenied(t *testing.T) {
	denied := []byte("osascript is not allowed assistive access. (-25211)")
	x, _, _ := newExecutor(t, func(context.Context, string) ([]byte, error) {
		return denied, errors.New("exit status 1")
	})
	err := x.SendKeystroke(context.Background())
	if !errors.Is(err, ErrPermission) {
		t.Errorf("SendKeystroke() error = %v, want ErrPermission", err)
	}
}

func TestSendKeystrokeNotAuthorized(t *testing.T) {
	denied := []byte("Not authorized to send Apple events to System Events. (-1743)")
	x, _, _ := newExecutor(t, func(context.Context, string) ([]byte, error) {
		return denied, errors.New("exit status 1")
	})
	if err := x.SendKeystroke(context.Background()); !errors.Is(err, ErrPermission) {
		t.Errorf("SendKeystroke() error = %v, want ErrPermission", err)
	}
}

func TestSendKeystrokeOtherFailure(t *testing.T) {
	x, _, _ := newExecutor(t, func(context.Context, string) ([]byte, error) {
		return []byte("some unrelated failure"), errors.New("exit status 2")
	})
	err := x.SendKeystroke(context.Background())
	if err == nil {
		t.Fatal("SendKeystroke() succeeded, want error")
	}
	if errors.Is(err, ErrPermission) {
		t.Errorf("SendKeystroke() error = %v, misclassified as ErrPermission", err)
	}
}
