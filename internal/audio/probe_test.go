package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeWAV produces a 16-bit PCM WAV of silence at path
func writeWAV(t *testing.T, path string, sampleRate, channels, frames int) {
	t.Helper()

	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8
	dataLen := frames * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIsWAVPath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"speech.wav", true},
		{"SPEECH.WAV", true},
		{"clip.Wav", true},
		{"song.mp3", false},
		{"audio.webm", false},
		{"noext", false},
		{"trailing.wav.bak", false},
	}

	for _, tt := range tests {
		if got := IsWAVPath(tt.name); got != tt.want {
			t.Errorf("IsWAVPath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one_second.wav")
	writeWAV(t, path, 16000, 1, 16000)

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Channels = %d, want 1", info.Channels)
	}
	if info.Frames != 16000 {
		t.Errorf("Frames = %d, want 16000", info.Frames)
	}
	if info.Duration != time.Second {
		t.Errorf("Duration = %v, want 1s", info.Duration)
	}
}

func TestProbe_Stereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeWAV(t, path, 44100, 2, 22050)

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Channels != 2 {
		t.Errorf("Channels = %d, want 2", info.Channels)
	}
	if info.Duration != 500*time.Millisecond {
		t.Errorf("Duration = %v, want 500ms", info.Duration)
	}
}

func TestProbe_RejectsExtension(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "audio.mp3"))
	if !errors.Is(err, ErrUnsupportedAudio) {
		t.Errorf("Probe() error = %v, want ErrUnsupportedAudio", err)
	}
}

func TestProbe_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("not a riff header at all"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Probe(path)
	if !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("Probe() error = %v, want ErrInvalidWAV", err)
	}
}

func TestProbe_MissingFile(t *testing.T) {
	if _, err := Probe(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("Probe() = nil error for missing file")
	}
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.wav")
	writeWAV(t, path, 16000, 1, 800)

	if err := Validate(path); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
