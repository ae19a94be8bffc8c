package main

import (
	"fmt"
	"time"

	"github.com/Cail-Gainey/MacPin/internal/ipc"
	"github.com/Cail-Gainey/MacPin/internal/message"
	"github.com/Cail-Gainey/MacPin/internal/wire"
)

// dialDaemon connects to the daemon's IPC socket.
func dialDaemon() (*wire.Conn, error) {
	conn, err := ipc.Dial()
	if err != nil {
		return nil, fmt.Errorf(`macpin daemon is not running (start it with "macpin serve")`)
	}
	return wire.New(conn), nil
}

// roundTrip sends one request to the daemon and reads one response.
func roundTrip(req *message.Message) (*message.Message, error) {
	wc, err := dialDaemon()
	if err != nil {
		return nil, err
	}
	defer wc.Close()

	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	return resp, nil
}

// respErr converts an ERROR response into a Go error, nil otherwise.
func respErr(resp *message.Message) error {
	if resp.Type != message.TypeError {
		return nil
	}
	return fmt.Errorf("%s", resp.Error)
}

// fmtAge renders how long ago t was, compactly.
func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	}
	return t.Format("2006-01-02")
}
