package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const whisperRepo = "https://github.com/ggerganov/whisper.cpp.git"

// Installation describes a verified local whisper.cpp build
type Installation struct {
	BasePath       string
	ExecutablePath string
	ModelPath      string
}

// Installer clones, builds, and verifies a local whisper.cpp checkout.
// EnsureInstalled is idempotent: an existing checkout is reused and only
// missing pieces (build, model) are produced.
type Installer struct {
	logger zerolog.Logger
	config *Config

	mu        sync.Mutex
	installed *Installation
}

// NewInstaller creates a whisper.cpp installer
func NewInstaller(logger zerolog.Logger, config *Config) *Installer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Installer{
		logger: logger.With().Str("component", "whisper-installer").Logger(),
		config: config,
	}
}

// EnsureInstalled makes sure a runnable whisper.cpp build and model exist,
// installing whatever is missing, and returns the verified paths
func (in *Installer) EnsureInstalled(ctx context.Context) (*Installation, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.installed != nil {
		return in.installed, nil
	}

	if err := in.checkDependencies(); err != nil {
		return nil, err
	}

	base := in.config.InstallPath
	if err := in.cloneRepo(ctx, base); err != nil {
		return nil, err
	}

	exe, err := in.build(ctx, base)
	if err != nil {
		return nil, err
	}

	model, err := in.downloadModel(ctx, base)
	if err != nil {
		return nil, err
	}

	in.installed = &Installation{
		BasePath:       base,
		ExecutablePath: exe,
		ModelPath:      model,
	}

	in.logger.Info().
		Str("executable", exe).
		Str("model", model).
		Msg("whisper.cpp ready")

	return in.installed, nil
}

// IsInstalled reports whether a built binary and model are already present,
// without installing anything
func (in *Installer) IsInstalled() bool {
	if _, err := findExecutable(in.config.InstallPath); err != nil {
		return false
	}
	_, err := os.Stat(in.modelPath(in.config.InstallPath))
	return err == nil
}

// checkDependencies verifies the build toolchain is on PATH
func (in *Installer) checkDependencies() error {
	var missing []string
	for _, tool := range []string{"git", "make", "gcc"} {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingDependency, strings.Join(missing, ", "))
	}
	return nil
}

func (in *Installer) cloneRepo(ctx context.Context, base string) error {
	if _, err := os.Stat(base); err == nil {
		in.logger.Debug().Str("path", base).Msg("whisper.cpp checkout exists")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return fmt.Errorf("failed to create install directory: %w", err)
	}

	in.logger.Info().Str("repo", whisperRepo).Str("path", base).Msg("cloning whisper.cpp")

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", whisperRepo, base)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		in.logger.Error().Err(err).Str("stderr", stderr.String()).Msg("git clone failed")
		return fmt.Errorf("failed to clone whisper.cpp: %w", err)
	}
	return nil
}

func (in *Installer) build(ctx context.Context, base string) (string, error) {
	if exe, err := findExecutable(base); err == nil {
		in.logger.Debug().Str("executable", exe).Msg("whisper.cpp already built")
		return exe, nil
	}

	in.logger.Info().Str("path", base).Msg("building whisper.cpp")

	cmd := exec.CommandContext(ctx, "make", "-j")
	cmd.Dir = base
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		in.logger.Error().Err(err).Str("stderr", stderr.String()).Msg("make failed")
		return "", fmt.Errorf("failed to build whisper.cpp: %w", err)
	}

	exe, err := findExecutable(base)
	if err != nil {
		return "", fmt.Errorf("%w: build produced no binary", ErrNotInstalled)
	}
	return exe, nil
}

func (in *Installer) downloadModel(ctx context.Context, base string) (string, error) {
	model := in.modelPath(base)
	if _, err := os.Stat(model); err == nil {
		in.logger.Debug().Str("model", model).Msg("model already downloaded")
		return model, nil
	}

	in.logger.Info().Str("model", in.config.Model).Msg("downloading whisper model")

	script := filepath.Join(base, "models", "download-ggml-model.sh")
	cmd := exec.CommandContext(ctx, "sh", script, in.config.Model)
	cmd.Dir = base
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		in.logger.Error().Err(err).Str("stderr", stderr.String()).Msg("model download failed")
		return "", fmt.Errorf("failed to download model %s: %w", in.config.Model, err)
	}

	if _, err := os.Stat(model); err != nil {
		return "", fmt.Errorf("%w: model file missing after download", ErrNotInstalled)
	}
	return model, nil
}

func (in *Installer) modelPath(base string) string {
	return filepath.Join(base, "models", fmt.Sprintf("ggml-%s.bin", in.config.Model))
}

// findExecutable locates the whisper.cpp main binary. Older builds place it
// at the checkout root, newer cmake builds under build/bin.
func findExecutable(base string) (string, error) {
	candidates := []string{
		filepath.Join(base, "main"),
		filepath.Join(base, "build", "bin", "main"),
		filepath.Join(base, "build", "bin", "whisper-cli"),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no binary under %s", ErrNotInstalled, base)
}
