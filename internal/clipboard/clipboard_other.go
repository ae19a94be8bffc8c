//go:build !darwin

package clipboard

// New returns the no-op backend. MacPin targets macOS; other platforms get
// the stub so the daemon and its tests still build and run.
func New() Backend {
	return headlessBackend{}
}
