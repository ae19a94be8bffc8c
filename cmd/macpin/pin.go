package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle an entry's pinned flag",
		Long: `Pins the entry: pinned entries sort before everything else, survive
"macpin clear", and are never evicted by the capacity limit. Pinning an
already pinned entry unpins it.`,
		Args: cobra.ExactArgs(1),
		RunE: runPin,
	}
}

func runPin(_ *cobra.Command, args []string) error {
	resp, err := roundTrip(&message.Message{Type: message.TypePin, ID: args[0]})
	if err != nil {
		return err
	}
	if err := respErr(resp); err != nil {
		return err
	}

	state := "pinned"
	if len(resp.Entries) == 1 && !resp.Entries[0].Pinned {
		state = "unpinned"
	}
	fmt.Printf("%s %s\n", state, args[0])
	return nil
}
