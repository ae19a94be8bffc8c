package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every unpinned entry",
		Long: `Drops all unpinned entries from the history. Pinned entries stay.
Image files are left alone until the next gc sweep.`,
		Args: cobra.NoArgs,
		RunE: runClear,
	}
}

func runClear(_ *cobra.Command, _ []string) error {
	resp, err := roundTrip(&message.Message{Type: message.TypeClear})
	if err != nil {
		return err
	}
	if err := respErr(resp); err != nil {
		return err
	}
	fmt.Printf("removed %d entries, kept %d pinned\n", resp.Removed, len(resp.Entries))
	return nil
}
