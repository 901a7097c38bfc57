// Package watcher converts speech files dropped into watched directories.
// New .wav files run through the full transcription pipeline; .txt files
// holding timestamped transcripts are converted directly. Each input gets
// a .timing file written next to it.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/normanking/lipsyncd/internal/audio"
	"github.com/normanking/lipsyncd/internal/engine"
	"github.com/normanking/lipsyncd/internal/viseme"
)

// settleDelay gives the producing process time to finish writing a file
// before we attempt to read it
const settleDelay = 200 * time.Millisecond

// Watcher watches directories for new speech files and writes timing
// files next to them
type Watcher struct {
	watcher *fsnotify.Watcher
	engine  *engine.Engine
	logger  zerolog.Logger
	done    chan struct{}

	mu       sync.Mutex
	inflight map[string]bool
}

// New creates a watcher that processes files through eng
func New(logger zerolog.Logger, eng *engine.Engine) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		engine:   eng,
		logger:   logger.With().Str("component", "watcher").Logger(),
		done:     make(chan struct{}),
		inflight: make(map[string]bool),
	}

	go w.watchLoop()

	return w, nil
}

// Watch adds a directory to be watched for new audio and transcript files
func (w *Watcher) Watch(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.logger.Info().Str("dir", dir).Msg("watching directory")
	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.handle(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("watch error")
		}
	}
}

// handle dedupes Create/Write pairs for the same file and processes
// each input at most once at a time
func (w *Watcher) handle(path string) {
	if !audio.IsWAVPath(path) && !isTranscriptPath(path) {
		return
	}

	w.mu.Lock()
	if w.inflight[path] {
		w.mu.Unlock()
		return
	}
	w.inflight[path] = true
	w.mu.Unlock()

	go func() {
		defer func() {
			w.mu.Lock()
			delete(w.inflight, path)
			w.mu.Unlock()
		}()

		time.Sleep(settleDelay)
		w.process(path)
	}()
}

func (w *Watcher) process(path string) {
	out := engine.TimingPath(path)
	if _, err := os.Stat(out); err == nil {
		w.logger.Debug().Str("path", path).Msg("timing file already exists")
		return
	}

	var events []viseme.Event
	if audio.IsWAVPath(path) {
		result, err := w.engine.ProcessFile(context.Background(), path)
		if err != nil {
			w.logger.Error().Err(err).Str("path", path).Msg("processing failed")
			return
		}
		events = result.Events
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			w.logger.Error().Err(err).Str("path", path).Msg("failed to read transcript")
			return
		}
		events = w.engine.ConvertTranscript(string(data))
	}

	if err := engine.WriteTimingFile(out, events); err != nil {
		w.logger.Error().Err(err).Str("path", path).Msg("failed to write timing file")
		return
	}

	w.logger.Info().
		Str("input", path).
		Str("output", out).
		Int("events", len(events)).
		Msg("timing file written")
}

func isTranscriptPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
