//go:build darwin

package clipboard

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
//
// NSInteger macpin_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
import "C"

import (
	"log/slog"

	"golang.design/x/clipboard"
)

type darwinBackend struct {
	lastChange C.NSInteger
}

// New returns the macOS pasteboard backend.
// clipboard.Init is called here rather than in init() so that CLI
// sub-commands that never construct a Backend don't log spurious warnings
// inside SSH sessions.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard init failed, running headless", "err", err)
		return headlessBackend{}
	}
	return &darwinBackend{lastChange: -1}
}

func (b *darwinBackend) Name() string { return "macOS NSPasteboard" }

// Changed compares NSPasteboard's changeCount, which increments on every
// pasteboard write, so ticks with nothing new skip reading content entirely.
func (b *darwinBackend) Changed() bool {
	cc := C.macpin_changeCount()
	if cc == b.lastChange {
		return false
	}
	b.lastChange = cc
	return true
}

func (b *darwinBackend) ReadText() []byte  { return clipboard.Read(clipboard.FmtText) }
func (b *darwinBackend) ReadImage() []byte { return clipboard.Read(clipboard.FmtImage) }

func (b *darwinBackend) WriteText(data []byte) error {
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

func (b *darwinBackend) WriteImage(data []byte) error {
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (b *darwinBackend) Close() {}
