package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// srtCue matches an SRT timing line, e.g. "00:00:00,000 --> 00:00:00,420"
var srtCue = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2},\d{3}) --> (\d{2}:\d{2}:\d{2},\d{3})`)

// ServerProvider transcribes by uploading audio to a running whisper.cpp
// server (examples/server). It requests SRT output with one word per cue
// and converts the cues to the same line format the local binary prints.
type ServerProvider struct {
	logger zerolog.Logger
	config *Config
	client *http.Client
}

// NewServerProvider creates a provider backed by a whisper.cpp server
func NewServerProvider(logger zerolog.Logger, config *Config) *ServerProvider {
	if config == nil {
		config = DefaultConfig()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &ServerProvider{
		logger: logger.With().Str("provider", "whisper-server").Logger(),
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier
func (p *ServerProvider) Name() string {
	return "whisper-server"
}

// Transcribe uploads the audio file to the server's /inference endpoint
// and returns timestamp-tagged output, one word per line
func (p *ServerProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrAudioNotFound, audioPath)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	writer.WriteField("response_format", "srt")
	writer.WriteField("max_len", "1")
	if p.config.Language != "" {
		writer.WriteField("language", p.config.Language)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	url := strings.TrimRight(p.config.ServerURL, "/") + "/inference"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	p.logger.Debug().Str("url", url).Str("audio", audioPath).Msg("uploading audio")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("server rejected request")
		return "", fmt.Errorf("whisper server returned status %d", resp.StatusCode)
	}

	return srtToTimestampLines(string(body)), nil
}

// Health checks the server answers at all
func (p *ServerProvider) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// srtToTimestampLines rewrites SRT cues as "[start --> end] text" lines
// with dot-separated milliseconds
func srtToTimestampLines(srt string) string {
	lines := strings.Split(strings.ReplaceAll(srt, "\r\n", "\n"), "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		m := srtCue.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		start := strings.Replace(m[1], ",", ".", 1)
		end := strings.Replace(m[2], ",", ".", 1)

		var text []string
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			i++
			text = append(text, strings.TrimSpace(lines[i]))
		}
		out = append(out, fmt.Sprintf("[%s --> %s]  %s", start, end, strings.Join(text, " ")))
	}
	return strings.Join(out, "\n")
}
