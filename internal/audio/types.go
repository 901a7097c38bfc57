// Package audio validates and inspects WAV files before transcription.
package audio

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrUnsupportedAudio = errors.New("unsupported audio format")
	ErrInvalidWAV       = errors.New("invalid wav data")
	ErrEmptyAudio       = errors.New("audio contains no samples")
)

// Info describes a decoded WAV stream
type Info struct {
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Precision  int           `json:"precision"` // Bytes per sample per channel
	Frames     int           `json:"frames"`
	Duration   time.Duration `json:"duration"`
}
