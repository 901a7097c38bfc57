// Package whisper obtains timestamp-tagged transcripts from whisper.cpp,
// either by managing and running a local build or by calling a remote
// whisper.cpp server. Providers return raw recognizer output: one
// timestamped fragment per line.
package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Common errors
var (
	ErrProviderUnavailable = errors.New("whisper provider unavailable")
	ErrNotInstalled        = errors.New("whisper.cpp not installed")
	ErrMissingDependency   = errors.New("missing build dependency")
	ErrAudioNotFound       = errors.New("audio file not found")
)

// Provider is the interface all transcription providers implement
type Provider interface {
	// Name returns the provider identifier (e.g., "whisper-local")
	Name() string

	// Transcribe runs word-level transcription on an audio file and
	// returns the raw timestamp-tagged output
	Transcribe(ctx context.Context, audioPath string) (string, error)

	// Health checks if the provider is ready to transcribe
	Health(ctx context.Context) error
}

// Config holds whisper configuration
type Config struct {
	InstallPath string        `json:"install_path"` // Where whisper.cpp lives (local provider)
	Model       string        `json:"model"`        // Model name (e.g., "base.en")
	ServerURL   string        `json:"server_url"`   // whisper.cpp server base URL (server provider)
	Timeout     time.Duration `json:"timeout"`      // Per-transcription timeout
	Threads     int           `json:"threads"`      // 0 keeps the binary's default
	Language    string        `json:"language"`     // Empty keeps the binary's default
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		InstallPath: filepath.Join(home, ".lipsyncd", "whisper.cpp"),
		Model:       "base.en",
		ServerURL:   "http://localhost:8080",
		Timeout:     5 * time.Minute,
	}
}
