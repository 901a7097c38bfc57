// Package testutil provides shared helpers for lipsyncd tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// GenerateTestAudio generates a silent 16 kHz mono 16-bit PCM WAV of the
// given duration
func GenerateTestAudio(t *testing.T, duration time.Duration) []byte {
	t.Helper()

	const (
		sampleRate    = 16000
		channels      = 1
		bitsPerSample = 16
	)

	frames := int(duration.Seconds() * float64(sampleRate))
	blockAlign := channels * bitsPerSample / 8
	dataSize := frames * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	return buf.Bytes()
}

// WriteTestWAV writes a silent WAV into dir and returns its path
func WriteTestWAV(t *testing.T, dir string, duration time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, "test.wav")
	if err := os.WriteFile(path, GenerateTestAudio(t, duration), 0644); err != nil {
		t.Fatalf("write test wav: %v", err)
	}
	return path
}

// MockWhisperServer serves a whisper.cpp-style /inference endpoint that
// answers every upload with the given SRT body
func MockWhisperServer(t *testing.T, srt string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inference":
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				http.Error(w, "failed to parse multipart form", http.StatusBadRequest)
				return
			}
			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file field is required", http.StatusBadRequest)
				return
			}
			file.Close()

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(srt))

		case "/":
			w.WriteHeader(http.StatusOK)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

// MultipartWAV builds a multipart body carrying wav under the given field
// and filename, returning the body and its content type
func MultipartWAV(t *testing.T, field, filename string, wav []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(wav); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return &body, writer.FormDataContentType()
}
