// Package ipc provides helpers for the local Unix-socket channel the CLI
// sub-commands (list/paste/pin/...) use to talk to a running macpin daemon.
//
// The channel carries newline-delimited JSON messages (see internal/message
// and internal/wire). The daemon listens on the socket; sub-commands probe
// for it, and read-only commands fall back to the history file on disk when
// no daemon is up.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// EnvSocket names the environment variable that overrides the socket path.
const EnvSocket = "MACPIN_SOCKET"

// SocketPath returns the path of the daemon's IPC socket:
// $TMPDIR/macpin.sock unless $MACPIN_SOCKET overrides it.
func SocketPath() string {
	if s := os.Getenv(EnvSocket); s != "" {
		return s
	}
	return filepath.Join(os.TempDir(), "macpin.sock")
}

// IsRunning reports whether a macpin daemon appears to be listening on the
// IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a net.Listener on the IPC socket path, removing any stale
// socket file first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	// Remove stale socket from a previous (crashed) run.
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the daemon's IPC socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
