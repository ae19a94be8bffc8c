package clipboard

// headlessBackend is a no-op backend for environments without a pasteboard
// (CI, containers). Reads see an empty clipboard and writes are discarded.
type headlessBackend struct{}

func (headlessBackend) Name() string              { return "headless (no-op)" }
func (headlessBackend) Changed() bool             { return false }
func (headlessBackend) ReadText() []byte          { return nil }
func (headlessBackend) ReadImage() []byte         { return nil }
func (headlessBackend) WriteText(_ []byte) error  { return nil }
func (headlessBackend) WriteImage(_ []byte) error { return nil }
func (headlessBackend) Close()                    {}
