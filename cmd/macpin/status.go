package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Cail-Gainey/MacPin/internal/blob"
	"github.com/Cail-Gainey/MacPin/internal/config"
	"github.com/Cail-Gainey/MacPin/internal/entry"
	"github.com/Cail-Gainey/MacPin/internal/history"
	"github.com/Cail-Gainey/MacPin/internal/ipc"
	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and storage status",
		Long: `Displays entry counts, image store size and daemon details.

With a running daemon the numbers come from its in-memory state; otherwise
they are computed from the files on disk.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd, v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addDataFlags(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	jsonOut := v.GetBool("json")

	var (
		st      *message.Status
		running bool
	)
	if ipc.IsRunning() {
		resp, err := roundTrip(&message.Message{Type: message.TypeStatus})
		if err != nil {
			return err
		}
		if err := respErr(resp); err != nil {
			return err
		}
		if resp.Status == nil {
			return fmt.Errorf("malformed status response")
		}
		st, running = resp.Status, true
	} else {
		var err error
		st, err = offlineStatus(cmd, v)
		if err != nil {
			return err
		}
	}

	if jsonOut {
		enc, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
		return nil
	}

	printStatus(st, running)
	return nil
}

// offlineStatus computes the storage numbers straight from the files.
func offlineStatus(cmd *cobra.Command, v *viper.Viper) (*message.Status, error) {
	settings, err := loadSettings(cmd, v)
	if err != nil {
		return nil, err
	}
	images, err := blob.New(settings.ImageDir())
	if err != nil {
		return nil, err
	}
	hist, err := history.New(settings.HistoryPath(), images)
	if err != nil {
		return nil, err
	}
	if err := hist.Load(); err != nil {
		return nil, err
	}

	st := &message.Status{MaxItems: settings.MaxItems, DataDir: settings.DataDir}
	for _, e := range hist.Entries() {
		st.Entries++
		if e.Pinned {
			st.Pinned++
		}
		if e.Kind == entry.KindImage {
			st.Images++
		}
	}
	st.ImageFiles, st.ImageBytes, err = images.Size()
	if err != nil {
		return nil, err
	}
	return st, nil
}

func printStatus(st *message.Status, running bool) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	if running {
		fmt.Fprintf(w, "Daemon:\trunning (%s)\n", st.Version)
		fmt.Fprintf(w, "Socket:\t%s\n", st.Socket)
		if !st.StartedAt.IsZero() {
			fmt.Fprintf(w, "Started:\t%s (%s)\n",
				st.StartedAt.Format(time.RFC3339), humanize.Time(st.StartedAt))
		}
	} else {
		fmt.Fprintf(w, "Daemon:\tnot running\n")
	}
	writeStorageRows(w, st)
	_ = w.Flush()
}

func writeStorageRows(w io.Writer, st *message.Status) {
	fmt.Fprintf(w, "Data dir:\t%s\n", st.DataDir)
	fmt.Fprintf(w, "Entries:\t%d (%d pinned, %d images)\n", st.Entries, st.Pinned, st.Images)
	fmt.Fprintf(w, "Image files:\t%d (%s)\n", st.ImageFiles, humanize.Bytes(uint64(st.ImageBytes)))
	fmt.Fprintf(w, "Max items:\t%s\n", config.LimitString(st.MaxItems))
}
