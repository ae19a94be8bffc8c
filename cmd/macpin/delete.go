package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry from the history",
		Long: `Removes the entry. When it was the last entry referencing an image
file, the file is removed from the image directory as well.`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}
}

func runDelete(_ *cobra.Command, args []string) error {
	resp, err := roundTrip(&message.Message{Type: message.TypeDelete, ID: args[0]})
	if err != nil {
		return err
	}
	if err := respErr(resp); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
