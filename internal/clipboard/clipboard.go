// Package clipboard provides access to the macOS pasteboard. Build
// constraints select the implementation:
//
//	clipboard_darwin.go — macOS via golang.design/x/clipboard + cgo changeCount
//	clipboard_other.go  — headless stub for CI and non-mac development hosts
package clipboard

// Backend is the interface both platform implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Changed reports whether the pasteboard may hold new content since the
	// last call. The first call after startup always reports true so content
	// present before the daemon started is still observed. The headless stub
	// always reports false: there is nothing to read.
	Changed() bool

	// ReadText returns the current clipboard text, or nil when the clipboard
	// holds no text.
	ReadText() []byte

	// ReadImage returns the current clipboard image as PNG bytes, or nil
	// when the clipboard holds no image.
	ReadImage() []byte

	// WriteText replaces the clipboard contents with text.
	WriteText(data []byte) error

	// WriteImage replaces the clipboard contents with a PNG image.
	WriteImage(data []byte) error

	// Close releases any resources held by the backend.
	Close()
}
