// macpin: clipboard history for macOS.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cail-Gainey/MacPin/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "macpin",
		Short: "Clipboard history for macOS",
		Long: `macpin keeps a persistent history of everything you copy.

Run "macpin serve" once per login session: it polls the system clipboard,
records new text and images, and answers requests on a local Unix socket.
The other sub-commands talk to that daemon; list, gc and status fall back
to the files on disk when no daemon is running.

History lives in ~/Library/Application Support/MacPin (override with
--data-dir). Settings are read from settings.json in the same directory;
the menu-bar app owns that file, the daemon only reads it.

All settings keys can be overridden via MACPIN_<KEY> env vars or flags.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newPinCmd(),
		newDeleteCmd(),
		newClearCmd(),
		newWatchCmd(),
		newReloadCmd(),
		newGCCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("macpin %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
