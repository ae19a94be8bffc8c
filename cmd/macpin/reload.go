package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Make the daemon re-read the history file",
		Long: `Tells the daemon to replace its in-memory history with whatever the
history file on disk currently says. Useful after editing the file by hand
or restoring it from a backup.`,
		Args: cobra.NoArgs,
		RunE: runReload,
	}
}

func runReload(_ *cobra.Command, _ []string) error {
	resp, err := roundTrip(&message.Message{Type: message.TypeReload})
	if err != nil {
		return err
	}
	if err := respErr(resp); err != nil {
		return err
	}
	fmt.Println("history reloaded")
	return nil
}
