package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cail-Gainey/MacPin/internal/clipboard"
	"github.com/Cail-Gainey/MacPin/internal/ipc"
	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy [text]",
		Short: "Put text on the clipboard and into the history (like pbcopy)",
		Long: `Copies the argument — or stdin when no argument is given — to the
system clipboard. With a running daemon the text is also recorded as the
newest history entry right away; otherwise it is a plain clipboard write,
picked up on the first poll once a daemon starts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCopy,
	}
}

func runCopy(_ *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if text == "" {
		return nil
	}

	// Try the daemon first so the entry lands in history immediately.
	if ipc.IsRunning() {
		resp, err := roundTrip(&message.Message{Type: message.TypeCopy, Text: text})
		if err == nil {
			return respErr(resp)
		}
		slog.Warn("ipc copy failed, writing clipboard directly", "err", err)
	}

	backend := clipboard.New()
	defer backend.Close()
	return backend.WriteText([]byte(text))
}
