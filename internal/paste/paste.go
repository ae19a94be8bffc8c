// Package paste restores history entries to the system clipboard and
// simulates the paste keystroke via System Events.
package paste

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Cail-Gainey/MacPin/internal/blob"
	"github.com/Cail-Gainey/MacPin/internal/clipboard"
	"github.com/Cail-Gainey/MacPin/internal/entry"
)

// ErrPermission reports that macOS denied the keystroke simulation, meaning
// the app lacks Accessibility permission.
var ErrPermission = errors.New("keystroke simulation not permitted")

// keystrokeScript asks System Events to press Cmd-V in the frontmost app.
const keystrokeScript = `tell application "System Events" to keystroke "v" using command down`

// RunFunc executes an osascript snippet and returns its combined output.
// Injected so tests can fake the System Events boundary.
type RunFunc func(ctx context.Context, script string) ([]byte, error)

// Executor writes entries back to the clipboard and triggers the paste
// keystroke through an external osascript call.
type Executor struct {
	backend clipboard.Backend
	images  *blob.Store
	run     RunFunc
}

// New returns an executor that shells out to osascript for keystrokes.
func New(backend clipboard.Backend, images *blob.Store) *Executor {
	return &Executor{backend: backend, images: images, run: runOsascript}
}

// NewWithRunner is New with a custom keystroke runner, for tests.
func NewWithRunner(backend clipboard.Backend, images *blob.Store, run RunFunc) *Executor {
	return &Executor{backend: backend, images: images, run: run}
}

// Restore writes the entry's payload to the system clipboard and returns the
// kind and the exact bytes written, so the caller can mark them as already
// observed before the next poll tick.
func (x *Executor) Restore(e entry.Entry) (entry.Kind, []byte, error) {
	switch e.Kind {
	case entry.KindText:
		data := []byte(e.Content)
		if err := x.backend.WriteText(data); err != nil {
			return "", nil, fmt.Errorf("write clipboard text: %w", err)
		}
		return entry.KindText, data, nil
	case entry.KindImage:
		p, err := e.ImagePayload()
		if err != nil {
			return "", nil, err
		}
		data := p.Data
		if p.Source == entry.PayloadFile {
			data, err = x.images.Get(p.File)
			if err != nil {
				return "", nil, err
			}
		}
		if err := x.backend.WriteImage(data); err != nil {
			return "", nil, fmt.Errorf("write clipboard image: %w", err)
		}
		return entry.KindImage, data, nil
	default:
		return "", nil, fmt.Errorf("entry %s: unknown kind %q", e.ID, e.Kind)
	}
}

// SendKeystroke simulates Cmd-V in the frontmost application. A denied
// Accessibility permission surfaces as ErrPermission so callers can point
// the user at System Settings; any other failure is an ordinary error.
func (x *Executor) SendKeystroke(ctx context.Context) error {
	out, err := x.run(ctx, keystrokeScript)
	if err == nil {
		return nil
	}
	if deniedOutput(out) {
		return fmt.Errorf("%w: %s", ErrPermission, strings.TrimSpace(string(out)))
	}
	return fmt.Errorf("keystroke simulation failed: %w", err)
}

func runOsascript(ctx context.Context, script string) ([]byte, error) {
	return exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
}

// deniedOutput recognizes the messages System Events emits when the caller
// lacks Accessibility permission.
func deniedOutput(out []byte) bool {
	s := strings.ToLower(string(out))
	return strings.Contains(s, "assistive access") || strings.Contains(s, "not authorized")
}
