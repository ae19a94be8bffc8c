package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Cail-Gainey/MacPin/internal/blob"
	"github.com/Cail-Gainey/MacPin/internal/clipboard"
	"github.com/Cail-Gainey/MacPin/internal/config"
	"github.com/Cail-Gainey/MacPin/internal/core"
	"github.com/Cail-Gainey/MacPin/internal/entry"
	"github.com/Cail-Gainey/MacPin/internal/history"
	"github.com/Cail-Gainey/MacPin/internal/ipc"
	"github.com/Cail-Gainey/MacPin/internal/message"
	"github.com/Cail-Gainey/MacPin/internal/paste"
	"github.com/Cail-Gainey/MacPin/internal/watcher"
	"github.com/Cail-Gainey/MacPin/internal/wire"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipboard-history daemon",
		Long: `Starts the macpin daemon: polls the system clipboard, records new
text and images into the history file, and answers CLI requests on a local
Unix socket.

Settings come from settings.json in the data directory. Changes to
maxHistoryItems are picked up live; other settings need a restart.

Precedence (lowest → highest): defaults → settings.json → MACPIN_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runServe(cmd, v) },
	}

	f := cmd.Flags()
	f.String("max-items", "", `history capacity: a number or "unlimited" (default 50)`)
	f.Duration("poll-interval", config.DefaultPollInterval, "clipboard poll interval")
	f.Duration("gc-interval", config.DefaultGCInterval, "unreferenced-image sweep interval")
	addDataFlags(cmd)
	addLoggingFlags(cmd)

	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	setupLogging(v)

	settings, err := loadSettings(cmd, v)
	if err != nil {
		return err
	}

	slog.Info("macpin daemon starting",
		"version", Version,
		"data_dir", settings.DataDir,
		"max_items", config.LimitString(settings.MaxItems),
		"poll_interval", settings.PollInterval,
	)

	images, err := blob.New(settings.ImageDir())
	if err != nil {
		return fmt.Errorf("image store: %w", err)
	}
	hist, err := history.New(settings.HistoryPath(), images)
	if err != nil {
		return fmt.Errorf("history store: %w", err)
	}
	if err := hist.Load(); err != nil {
		return fmt.Errorf("history load: %w", err)
	}
	slog.Info("history loaded", "entries", hist.Len(), "path", hist.Path())

	backend := clipboard.New()
	defer backend.Close()
	slog.Info("clipboard backend", "name", backend.Name())

	c := core.New(hist, images, backend, paste.New(backend, images), settings.MaxItems)
	w := watcher.New(c, backend, settings.PollInterval)

	if ipc.IsRunning() {
		return fmt.Errorf("another macpin daemon is already listening on %s", ipc.SocketPath())
	}
	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("ipc listen: %w", err)
	}
	defer os.Remove(ipc.SocketPath())
	slog.Info("listening", "socket", ipc.SocketPath())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchSettings(cmd, v, c)

	go c.RunGC(ctx, settings.GCInterval)
	go w.Run(ctx)
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	d := &daemon{core: c, startedAt: time.Now(), dataDir: settings.DataDir}
	d.serve(ctx, ln)
	slog.Info("macpin daemon stopped")
	return nil
}

// watchSettings re-applies maxHistoryItems when settings.json changes on
// disk. An explicit --max-items flag wins over the file, so reloads are
// skipped then.
func watchSettings(cmd *cobra.Command, v *viper.Viper, c *core.Core) {
	if v.ConfigFileUsed() == "" {
		slog.Debug("no settings.json found, live reload disabled")
		return
	}
	flagged := cmd.Flags().Changed("max-items")
	v.OnConfigChange(func(fsnotify.Event) {
		if flagged {
			return
		}
		s, err := config.FromViper(v)
		if err != nil {
			slog.Warn("settings reload failed", "err", err)
			return
		}
		if s.MaxItems != c.MaxItems() {
			slog.Info("settings changed", "max_items", config.LimitString(s.MaxItems))
			c.SetMaxItems(s.MaxItems)
		}
	})
	v.WatchConfig()
}

type daemon struct {
	core      *core.Core
	startedAt time.Time
	dataDir   string
	watchSeq  atomic.Int64
}

func (d *daemon) serve(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("accept failed", "err", err)
			continue
		}
		go d.handleConn(ctx, conn)
	}
}

// handleConn serves one request-response exchange. WATCH is the exception:
// it turns the connection into an update stream until the client hangs up.
func (d *daemon) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	msg, err := wc.ReadMsg()
	if err != nil {
		return
	}

	if msg.Type == message.TypeWatch {
		d.streamUpdates(ctx, wc)
		return
	}

	resp := d.dispatch(ctx, msg)
	if err := wc.WriteMsg(resp); err != nil {
		slog.Warn("ipc write failed", "type", msg.Type, "err", err)
	}
}

func (d *daemon) dispatch(ctx context.Context, msg *message.Message) *message.Message {
	switch msg.Type {
	case message.TypeList:
		return &message.Message{Type: message.TypeHistory, Entries: d.core.Entries()}

	case message.TypeCopy:
		if _, err := d.core.CopyText(msg.Text); err != nil {
			return message.Err("", err)
		}
		return &message.Message{Type: message.TypeAck}

	case message.TypePaste:
		err := d.core.PasteEntry(ctx, msg.ID, !msg.NoKeystroke)
		switch {
		case err == nil:
			return &message.Message{Type: message.TypeAck, ID: msg.ID}
		case errors.Is(err, history.ErrNotFound), errors.Is(err, blob.ErrNotFound):
			return message.Err(message.ErrKindNotFound, err)
		case errors.Is(err, entry.ErrDecode):
			return message.Err(message.ErrKindDecode, err)
		case errors.Is(err, paste.ErrPermission):
			return message.Err(message.ErrKindPermission, err)
		default:
			return message.Err("", err)
		}

	case message.TypePin:
		list, err := d.core.TogglePin(msg.ID)
		if err != nil {
			if errors.Is(err, history.ErrNotFound) {
				return message.Err(message.ErrKindNotFound, err)
			}
			return message.Err("", err)
		}
		resp := &message.Message{Type: message.TypeAck, ID: msg.ID}
		for _, e := range list {
			if e.ID == msg.ID {
				resp.Entries = []entry.Entry{e}
				break
			}
		}
		return resp

	case message.TypeDelete:
		if err := d.core.Delete(msg.ID); err != nil {
			if errors.Is(err, history.ErrNotFound) {
				return message.Err(message.ErrKindNotFound, err)
			}
			return message.Err("", err)
		}
		return &message.Message{Type: message.TypeAck, ID: msg.ID}

	case message.TypeClear:
		before := len(d.core.Entries())
		kept := d.core.ClearKeepPinned()
		return &message.Message{Type: message.TypeAck, Removed: before - len(kept), Entries: kept}

	case message.TypeReload:
		if err := d.core.Reload(); err != nil {
			return message.Err("", err)
		}
		return &message.Message{Type: message.TypeAck}

	case message.TypeGC:
		removed, err := d.core.CollectGarbage()
		if err != nil {
			return message.Err("", err)
		}
		return &message.Message{Type: message.TypeAck, Removed: removed}

	case message.TypeStatus:
		st, err := d.core.Stats()
		if err != nil {
			return message.Err("", err)
		}
		return &message.Message{Type: message.TypeStatusResponse, Status: &message.Status{
			Entries:    st.Entries,
			Pinned:     st.Pinned,
			Images:     st.Images,
			ImageFiles: st.ImageFiles,
			ImageBytes: st.ImageBytes,
			MaxItems:   st.MaxItems,
			StartedAt:  d.startedAt,
			Version:    Version,
			Socket:     ipc.SocketPath(),
			DataDir:    d.dataDir,
		}}

	default:
		return message.Err("", fmt.Errorf("unknown message type %q", msg.Type))
	}
}

// watchPeer adapts a WATCH connection into a core subscriber. Send drops
// when the buffer is full; every update carries the full list, so a missed
// intermediate state is made up for by the next one.
type watchPeer struct {
	id string
	ch chan core.Update
}

func (p *watchPeer) ID() string { return p.id }

func (p *watchPeer) Send(u core.Update) {
	select {
	case p.ch <- u:
	default:
		slog.Warn("watch peer slow, dropping update", "observer", p.id)
	}
}

func (d *daemon) streamUpdates(ctx context.Context, wc *wire.Conn) {
	p := &watchPeer{
		id: fmt.Sprintf("ipc:watch-%d", d.watchSeq.Add(1)),
		ch: make(chan core.Update, 8),
	}
	d.core.Subscribe(p) // delivers the current list right away
	defer d.core.Unsubscribe(p)

	// Clients never send after WATCH; a read result of any kind means they
	// hung up.
	readerGone := make(chan struct{})
	go func() {
		defer close(readerGone)
		_, _ = wc.ReadMsg()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readerGone:
			return
		case u := <-p.ch:
			if err := wc.WriteMsg(&message.Message{Type: message.TypeUpdated, Entries: u.Entries}); err != nil {
				return
			}
		}
	}
}
