package whisper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestInstaller_IsInstalledEmptyDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InstallPath = t.TempDir()

	in := NewInstaller(zerolog.Nop(), cfg)
	if in.IsInstalled() {
		t.Error("IsInstalled() = true for empty directory")
	}
}

func TestInstaller_IsInstalledWithBinaryAndModel(t *testing.T) {
	base := t.TempDir()
	cfg := DefaultConfig()
	cfg.InstallPath = base
	cfg.Model = "base.en"

	if err := os.MkdirAll(filepath.Join(base, "models"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "main"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "models", "ggml-base.en.bin"), []byte("model"), 0644); err != nil {
		t.Fatal(err)
	}

	in := NewInstaller(zerolog.Nop(), cfg)
	if !in.IsInstalled() {
		t.Error("IsInstalled() = false with binary and model present")
	}
}

func TestFindExecutable(t *testing.T) {
	base := t.TempDir()
	if _, err := findExecutable(base); err == nil {
		t.Error("findExecutable() = nil error for empty directory")
	}

	binDir := filepath.Join(base, "build", "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "whisper-cli"), []byte("bin"), 0755); err != nil {
		t.Fatal(err)
	}

	exe, err := findExecutable(base)
	if err != nil {
		t.Fatalf("findExecutable() error = %v", err)
	}
	if exe != filepath.Join(binDir, "whisper-cli") {
		t.Errorf("findExecutable() = %q", exe)
	}
}

func TestInstaller_ModelPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = "tiny.en"
	in := NewInstaller(zerolog.Nop(), cfg)

	got := in.modelPath("/opt/whisper.cpp")
	want := filepath.Join("/opt/whisper.cpp", "models", "ggml-tiny.en.bin")
	if got != want {
		t.Errorf("modelPath() = %q, want %q", got, want)
	}
}
