package wire

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Cail-Gainey/MacPin/internal/entry"
	"github.com/Cail-Gainey/MacPin/internal/message"
)

func pipe(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return New(client), New(server)
}

func TestRoundTrip(t *testing.T) {
	client, server := pipe(t)

	sent := &message.Message{
		Type: message.TypeHistory,
		Entries: []entry.Entry{
			{ID: "a", Kind: entry.KindText, Content: "hello", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
			{ID: "b", Kind: entry.KindImage, Content: "cafe", ImageRef: "cafe.png", Pinned: true},
		},
	}

	errCh := make(chan error, 1)
	go func() { errCh <- client.WriteMsg(sent) }()

	got, err := server.ReadMsg()
	if err != nil {
		t.Fatalf("ReadMsg() failed: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("WriteMsg() failed: %v", err)
	}

	if got.Type != message.TypeHistory || len(got.Entries) != 2 {
		t.Fatalf("ReadMsg() = %+v, want HISTORY with 2 entries", got)
	}
	if got.Entries[0].Content != "hello" || !got.Entries[1].Pinned {
		t.Errorf("entries did not survive the trip: %+v", got.Entries)
	}
}

func TestSequentialMessages(t *testing.T) {
	client, server := pipe(t)

	go func() {
		_ = client.WriteMsg(&message.Message{Type: message.TypeUpdated})
		_ = client.WriteMsg(&message.Message{Type: message.TypeAck, Removed: 3})
	}()

	first, err := server.ReadMsg()
	if err != nil {
		t.Fatalf("first ReadMsg() failed: %v", err)
	}
	second, err := server.ReadMsg()
	if err != nil {
		t.Fatalf("second ReadMsg() failed: %v", err)
	}
	if first.Type != message.TypeUpdated || second.Type != message.TypeAck || second.Removed != 3 {
		t.Errorf("messages out of order or mangled: %v then %v", first.Type, second.Type)
	}
}

func TestReadMsgGarbage(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	go func() {
		client.Write([]byte("this is not json\n"))
	}()

	if _, err := New(server).ReadMsg(); err == nil {
		t.Error("ReadMsg() succeeded on garbage input")
	}
}

func TestReadMsgRejectsOversize(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	go func() {
		chunk := make([]byte, 64*1024)
		for i := range chunk {
			chunk[i] = 'a'
		}
		written := 0
		for written <= MaxMessageSize {
			n, err := client.Write(chunk)
			if err != nil {
				return
			}
			written += n
		}
		_, _ = client.Write([]byte{'\n'})
	}()

	if _, err := New(server).ReadMsg(); err == nil {
		t.Errorf("ReadMsg() accepted a line over %d bytes", MaxMessageSize)
	}
}

func TestReadMsgClosedConn(t *testing.T) {
	client, server := net.Pipe()
	client.Close()

	_, err := New(server).ReadMsg()
	if err == nil {
		t.Error("ReadMsg() succeeded on closed pipe")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Error("ReadMsg() reported a timeout for a closed pipe")
	}
}
