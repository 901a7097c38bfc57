package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/wav"
)

// IsWAVPath reports whether the filename carries a .wav extension
func IsWAVPath(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wav")
}

// Probe decodes the WAV header of the file and reports its stream
// parameters. Only .wav files are accepted.
func Probe(path string) (*Info, error) {
	if !IsWAVPath(path) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAudio, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	defer streamer.Close()

	frames := streamer.Len()
	if frames == 0 {
		return nil, ErrEmptyAudio
	}

	return &Info{
		SampleRate: int(format.SampleRate),
		Channels:   format.NumChannels,
		Precision:  format.Precision,
		Frames:     frames,
		Duration:   format.SampleRate.D(frames),
	}, nil
}

// Validate checks that the file is a readable, non-empty WAV
func Validate(path string) error {
	_, err := Probe(path)
	return err
}
