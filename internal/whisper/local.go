package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// LocalProvider transcribes by running a locally installed whisper.cpp
// binary with word-level segmentation (-ml 1)
type LocalProvider struct {
	logger    zerolog.Logger
	config    *Config
	installer *Installer
}

// NewLocalProvider creates a provider backed by a local whisper.cpp build
func NewLocalProvider(logger zerolog.Logger, config *Config) *LocalProvider {
	if config == nil {
		config = DefaultConfig()
	}
	return &LocalProvider{
		logger:    logger.With().Str("provider", "whisper-local").Logger(),
		config:    config,
		installer: NewInstaller(logger, config),
	}
}

// Name returns the provider identifier
func (p *LocalProvider) Name() string {
	return "whisper-local"
}

// Transcribe runs whisper.cpp on the audio file and returns its
// timestamp-tagged output, one word per line
func (p *LocalProvider) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrAudioNotFound, audioPath)
	}

	install, err := p.installer.EnsureInstalled(ctx)
	if err != nil {
		return "", err
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	args := []string{"-m", install.ModelPath, "-f", audioPath, "-ml", "1"}
	if p.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(p.config.Threads))
	}
	if p.config.Language != "" {
		args = append(args, "-l", p.config.Language)
	}

	p.logger.Debug().Str("audio", audioPath).Str("model", install.ModelPath).Msg("running whisper.cpp")

	cmd := exec.CommandContext(ctx, install.ExecutablePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.logger.Error().Err(err).Str("stderr", stderr.String()).Msg("whisper.cpp failed")
		return "", fmt.Errorf("whisper.cpp failed: %w", err)
	}

	out := extractTimestampLines(stdout.String())
	p.logger.Debug().Int("lines", strings.Count(out, "\n")+1).Msg("transcription complete")
	return out, nil
}

// Health reports whether a runnable build and model are present
func (p *LocalProvider) Health(ctx context.Context) error {
	if err := p.installer.checkDependencies(); err != nil {
		return err
	}
	if !p.installer.IsInstalled() {
		return ErrNotInstalled
	}
	return nil
}

// extractTimestampLines strips whisper.cpp's startup banner: everything
// before the first line opening with '[' is dropped, blank lines after
// it are skipped
func extractTimestampLines(out string) string {
	var kept []string
	started := false
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "[") {
			started = true
		}
		if started && strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
