// Package config loads macpin settings. settings.json lives in the data
// directory and is owned by the preferences UI — the daemon consumes it and
// never writes it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when settings.json is absent or partial.
const (
	DefaultMaxHistoryItems = 50
	DefaultPollInterval    = 1500 * time.Millisecond
	DefaultGCInterval      = time.Hour
)

// Unlimited is the sentinel users write for maxHistoryItems to disable
// capacity eviction.
const Unlimited = "unlimited"

// Settings is the decoded configuration.
type Settings struct {
	// MaxItems is the history capacity; zero means unlimited.
	MaxItems int
	// PollInterval is how often the watcher polls the clipboard.
	PollInterval time.Duration
	// GCInterval is how often unreferenced image files are swept.
	GCInterval time.Duration
	// DataDir holds clipboard-history.json, clipboard-images/ and
	// settings.json.
	DataDir string
}

// HistoryPath returns the history file location.
func (s Settings) HistoryPath() string {
	return filepath.Join(s.DataDir, "clipboard-history.json")
}

// ImageDir returns the image store location.
func (s Settings) ImageDir() string {
	return filepath.Join(s.DataDir, "clipboard-images")
}

// DefaultDataDir returns the per-user application data directory,
// ~/Library/Application Support/MacPin on macOS.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return ".macpin"
		}
		return filepath.Join(home, ".macpin")
	}
	return filepath.Join(base, "MacPin")
}

// FromViper decodes settings from v, applying defaults for anything unset.
func FromViper(v *viper.Viper) (Settings, error) {
	s := Settings{
		MaxItems:     DefaultMaxHistoryItems,
		PollInterval: DefaultPollInterval,
		GCInterval:   DefaultGCInterval,
		DataDir:      DefaultDataDir(),
	}
	if dir := v.GetString("dataDir"); dir != "" {
		s.DataDir = dir
	}
	if raw := v.Get("maxHistoryItems"); raw != nil {
		max, err := ParseLimit(raw)
		if err != nil {
			return Settings{}, err
		}
		s.MaxItems = max
	}
	if ms := v.GetInt("pollIntervalMs"); ms > 0 {
		s.PollInterval = time.Duration(ms) * time.Millisecond
	}
	if min := v.GetInt("gcIntervalMinutes"); min > 0 {
		s.GCInterval = time.Duration(min) * time.Minute
	}
	return s, nil
}

// ParseLimit turns a maxHistoryItems value into a capacity of zero
// (unlimited) or more. The JSON file carries a number or the string
// sentinel; environment overrides are always strings.
func ParseLimit(raw any) (int, error) {
	switch val := raw.(type) {
	case int:
		return normalizeLimit(val), nil
	case int64:
		return normalizeLimit(int(val)), nil
	case float64:
		return normalizeLimit(int(val)), nil
	case string:
		t := strings.ToLower(strings.TrimSpace(val))
		if t == Unlimited {
			return 0, nil
		}
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("maxHistoryItems: %q is neither a number nor %q", val, Unlimited)
		}
		return normalizeLimit(n), nil
	default:
		return 0, fmt.Errorf("maxHistoryItems: unsupported type %T", raw)
	}
}

// LimitString renders a capacity limit for display.
func LimitString(n int) string {
	if n <= 0 {
		return Unlimited
	}
	return strconv.Itoa(n)
}

func normalizeLimit(n int) int {
	if n <= 0 {
		return 0
	}
	return n
}
