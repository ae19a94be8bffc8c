package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream history updates as they happen",
		Long: `Subscribes to the daemon and prints a line whenever the history
changes, starting with the current state. With --json each update is the
full entry list as one JSON array per line, which is what UI integrations
consume.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	cmd.Flags().Bool("json", false, "print each update as a JSON array on one line")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")

	wc, err := dialDaemon()
	if err != nil {
		return err
	}
	defer wc.Close()

	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for {
		msg, err := wc.ReadMsg()
		if err != nil {
			return fmt.Errorf("stream closed: %w", err)
		}
		if msg.Type != message.TypeUpdated {
			continue
		}

		if jsonOut {
			enc, err := json.Marshal(msg.Entries)
			if err != nil {
				return err
			}
			fmt.Println(string(enc))
			continue
		}

		pinned := 0
		for _, e := range msg.Entries {
			if e.Pinned {
				pinned++
			}
		}
		fmt.Printf("%s  %d entries (%d pinned)\n",
			time.Now().Format("15:04:05"), len(msg.Entries), pinned)
	}
}
