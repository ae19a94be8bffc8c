package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Cail-Gainey/MacPin/internal/blob"
	"github.com/Cail-Gainey/MacPin/internal/ipc"
	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newGCCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Remove image files no longer referenced by any entry",
		Long: `Sweeps the image directory and deletes files whose hash no history
entry references. The daemon does the same on a timer; run it manually
after editing the history file by hand.

Goes through the running daemon when there is one, otherwise works on the
files directly.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runGC(cmd, v) },
	}
	addDataFlags(cmd)
	return cmd
}

func runGC(cmd *cobra.Command, v *viper.Viper) error {
	if ipc.IsRunning() {
		resp, err := roundTrip(&message.Message{Type: message.TypeGC})
		if err != nil {
			return err
		}
		if err := respErr(resp); err != nil {
			return err
		}
		fmt.Printf("removed %d unreferenced image files\n", resp.Removed)
		return nil
	}

	settings, err := loadSettings(cmd, v)
	if err != nil {
		return err
	}
	live, err := blob.LiveRefs(settings.HistoryPath())
	if err != nil {
		return err
	}
	images, err := blob.New(settings.ImageDir())
	if err != nil {
		return err
	}
	removed, err := images.GarbageCollect(live)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d unreferenced image files\n", removed)
	return nil
}
