package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Cail-Gainey/MacPin/internal/blob"
	"github.com/Cail-Gainey/MacPin/internal/entry"
	"github.com/Cail-Gainey/MacPin/internal/history"
	"github.com/Cail-Gainey/MacPin/internal/ipc"
	"github.com/Cail-Gainey/MacPin/internal/message"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the clipboard history (pinned first, then newest first)",
		Long: `Prints every history entry in the order the daemon keeps them:
pinned entries first, then the rest, newest first.

With a running daemon the list comes over the IPC socket; otherwise it is
read straight from the history file.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runList(cmd, v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	f.IntP("limit", "n", 0, "show at most n entries (0 = all)")
	addDataFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, v *viper.Viper) error {
	entries, err := fetchEntries(cmd, v)
	if err != nil {
		return err
	}
	if n := v.GetInt("limit"); n > 0 && len(entries) > n {
		entries = entries[:n]
	}

	if v.GetBool("json") {
		enc, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
		return nil
	}

	printEntries(entries)
	return nil
}

// fetchEntries prefers the daemon (authoritative, in memory) and falls back
// to the history file on disk.
func fetchEntries(cmd *cobra.Command, v *viper.Viper) ([]entry.Entry, error) {
	if ipc.IsRunning() {
		resp, err := roundTrip(&message.Message{Type: message.TypeList})
		if err != nil {
			return nil, err
		}
		if err := respErr(resp); err != nil {
			return nil, err
		}
		return resp.Entries, nil
	}
	return loadEntriesFromDisk(cmd, v)
}

func loadEntriesFromDisk(cmd *cobra.Command, v *viper.Viper) ([]entry.Entry, error) {
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
	return hist.Entries(), nil
}

func printEntries(entries []entry.Entry) {
	if len(entries) == 0 {
		fmt.Println("History is empty.")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "\tID\tTYPE\tAGE\tPREVIEW\n")
	_, _ = fmt.Fprintf(tw, "\t--\t----\t---\t-------\n")
	for _, e := range entries {
		marker := ""
		if e.Pinned {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			marker, e.ID, e.Kind, fmtAge(e.CreatedAt), oneLine(e.Preview))
	}
	_ = tw.Flush()
}

// oneLine flattens a preview for table output.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}
