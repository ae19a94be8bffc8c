// Package message defines the macpin IPC protocol.
//
// All messages are newline-delimited JSON: each message is exactly one line,
// <json>\n, exchanged over the daemon's local Unix socket. Requests carry a
// Type plus the fields that type needs; the daemon answers with HISTORY,
// STATUS_RESPONSE, ACK or ERROR, and streams UPDATED events to WATCH
// connections.
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Cail-Gainey/MacPin/internal/entry"
)

// Type identifies the kind of message.
type Type string

const (
	// Requests.
	TypeList   Type = "LIST"
	TypeCopy   Type = "COPY"
	TypePaste  Type = "PASTE"
	TypePin    Type = "PIN"
	TypeDelete Type = "DELETE"
	TypeClear  Type = "CLEAR"
	TypeReload Type = "RELOAD"
	TypeWatch  Type = "WATCH"
	TypeStatus Type = "STATUS"
	TypeGC     Type = "GC"

	// Responses and stream events.
	TypeHistory        Type = "HISTORY"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeUpdated        Type = "UPDATED"
	TypeAck            Type = "ACK"
	TypeError          Type = "ERROR"
)

// Error kinds let clients react to specific failures — a permission error
// should point the user at System Settings, a not-found error should not.
const (
	ErrKindNotFound   = "not_found"
	ErrKindPermission = "permission"
	ErrKindDecode     = "decode"
)

// Status is the payload of a STATUS_RESPONSE.
type Status struct {
	Entries    int       `json:"entries"`
	Pinned     int       `json:"pinned"`
	Images     int       `json:"images"`
	ImageFiles int       `json:"imageFiles"`
	ImageBytes int64     `json:"imageBytes"`
	MaxItems   int       `json:"maxItems"`
	StartedAt  time.Time `json:"startedAt"`
	Version    string    `json:"version"`
	Socket     string    `json:"socket"`
	DataDir    string    `json:"dataDir"`
}

// Message is the top-level wire envelope.
type Message struct {
	// Always present.
	Type Type `json:"type"`

	// PASTE, PIN, DELETE — the target entry.
	ID string `json:"id,omitempty"`

	// PASTE — set to suppress the Cmd-V keystroke after the clipboard write.
	NoKeystroke bool `json:"noKeystroke,omitempty"`

	// COPY — the text to place on the clipboard.
	Text string `json:"text,omitempty"`

	// HISTORY, UPDATED — the full ordered list.
	Entries []entry.Entry `json:"entries,omitempty"`

	// STATUS_RESPONSE.
	Status *Status `json:"status,omitempty"`

	// ACK after GC or CLEAR — how many files or entries were removed.
	Removed int `json:"removed,omitempty"`

	// ERROR.
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Err builds an ERROR message with an optional kind.
func Err(kind string, err error) *Message {
	return &Message{Type: TypeError, Error: err.Error(), ErrorKind: kind}
}
