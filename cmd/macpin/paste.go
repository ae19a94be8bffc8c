package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newPasteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paste <id>",
		Short: "Restore an entry to the clipboard and paste it (Cmd-V)",
		Long: `Writes the entry's content back to the system clipboard, then asks
System Events to press Cmd-V in the frontmost application. The entry keeps
its place in the history.

Requires a running daemon. The keystroke needs Accessibility permission;
grant it under System Settings → Privacy & Security → Accessibility.`,
		Args: cobra.ExactArgs(1),
		RunE: runPaste,
	}
	cmd.Flags().Bool("no-keystroke", false, "only restore the clipboard, skip the Cmd-V keystroke")
	return cmd
}

func runPaste(cmd *cobra.Command, args []string) error {
	noKeystroke, _ := cmd.Flags().GetBool("no-keystroke")

	resp, err := roundTrip(&message.Message{
		Type:        message.TypePaste,
		ID:          args[0],
		NoKeystroke: noKeystroke,
	})
	if err != nil {
		return err
	}
	if resp.Type == message.TypeError && resp.ErrorKind == message.ErrKindPermission {
		return fmt.Errorf("%s\ngrant macpin Accessibility access under System Settings → Privacy & Security → Accessibility and retry", resp.Error)
	}
	return respErr(resp)
}
