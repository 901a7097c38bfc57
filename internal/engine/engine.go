// Package engine orchestrates audio-to-viseme conversion jobs: probe the
// upload, transcribe it, build the event timeline, then record and announce
// the outcome.
package engine

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/normanking/lipsyncd/internal/audio"
	"github.com/normanking/lipsyncd/internal/bus"
	"github.com/normanking/lipsyncd/internal/journal"
	"github.com/normanking/lipsyncd/internal/metrics"
	"github.com/normanking/lipsyncd/internal/transcript"
	"github.com/normanking/lipsyncd/internal/viseme"
	"github.com/normanking/lipsyncd/internal/whisper"
)

// Options configures an Engine. Journal and Bus may be nil, in which
// case jobs are neither persisted nor announced.
type Options struct {
	Provider whisper.Provider
	Journal  *journal.Store
	Bus      *bus.EventBus
	MergeGap time.Duration // 0 keeps the parser default
}

// Result is the outcome of one completed job
type Result struct {
	JobID    string         `json:"job_id"`
	Source   string         `json:"source"`
	Provider string         `json:"provider"`
	Audio    *audio.Info    `json:"audio"`
	Words    int            `json:"words"`
	Events   []viseme.Event `json:"events"`
	Elapsed  time.Duration  `json:"elapsed"`
}

// Engine runs conversion jobs
type Engine struct {
	logger   zerolog.Logger
	provider whisper.Provider
	journal  *journal.Store
	bus      *bus.EventBus
	parser   *transcript.Parser
}

// New creates an engine
func New(logger zerolog.Logger, opts Options) *Engine {
	parser := transcript.NewParser()
	if opts.MergeGap > 0 {
		parser = transcript.NewParserWithMerge(transcript.MergeWithin(opts.MergeGap))
	}
	return &Engine{
		logger:   logger.With().Str("component", "engine").Logger(),
		provider: opts.Provider,
		journal:  opts.Journal,
		bus:      opts.Bus,
		parser:   parser,
	}
}

// ProcessFile converts one audio file into a viseme timeline. Failures
// are journaled and announced before the error is returned.
func (e *Engine) ProcessFile(ctx context.Context, audioPath string) (*Result, error) {
	return e.process(ctx, audioPath, filepath.Base(audioPath))
}

// ProcessUpload is ProcessFile with the job recorded under the uploaded
// filename rather than the temp path it was buffered to
func (e *Engine) ProcessUpload(ctx context.Context, audioPath, source string) (*Result, error) {
	if source == "" {
		source = filepath.Base(audioPath)
	}
	return e.process(ctx, audioPath, source)
}

func (e *Engine) process(ctx context.Context, audioPath, source string) (*Result, error) {
	jobID := uuid.NewString()
	log := e.logger.With().Str("job_id", jobID).Str("source", source).Logger()

	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	started := time.Now()
	e.publish(bus.EventTypeJobStarted, map[string]any{"job_id": jobID, "source": source})
	log.Info().Msg("job started")

	info, err := audio.Probe(audioPath)
	if err != nil {
		return nil, e.fail(log, jobID, source, started, err)
	}

	transcribeStart := time.Now()
	raw, err := e.provider.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, e.fail(log, jobID, source, started, err)
	}
	metrics.TranscriptionLatency.Observe(time.Since(transcribeStart).Seconds())

	words := e.parser.Parse(raw)
	events := viseme.BuildTimeline(words)
	metrics.EventsEmitted.Add(float64(len(events)))

	elapsed := time.Since(started)
	result := &Result{
		JobID:    jobID,
		Source:   source,
		Provider: e.provider.Name(),
		Audio:    info,
		Words:    len(words),
		Events:   events,
		Elapsed:  elapsed,
	}

	if e.journal != nil {
		job := &journal.Job{
			ID:        jobID,
			Source:    source,
			Provider:  e.provider.Name(),
			Status:    journal.StatusCompleted,
			AudioMs:   info.Duration.Milliseconds(),
			Words:     len(words),
			ElapsedMs: elapsed.Milliseconds(),
		}
		if err := e.journal.Record(job, events); err != nil {
			log.Error().Err(err).Msg("failed to journal job")
		}
	}

	metrics.JobsProcessed.WithLabelValues(e.provider.Name(), journal.StatusCompleted).Inc()
	e.publish(bus.EventTypeJobCompleted, map[string]any{
		"job_id": jobID,
		"source": source,
		"words":  len(words),
		"events": len(events),
	})

	log.Info().
		Int("words", len(words)).
		Int("events", len(events)).
		Dur("elapsed", elapsed).
		Msg("job completed")

	return result, nil
}

// ConvertTranscript builds a timeline straight from recognizer output,
// skipping audio probing and transcription
func (e *Engine) ConvertTranscript(raw string) []viseme.Event {
	return viseme.BuildTimeline(e.parser.Parse(raw))
}

// Provider exposes the engine's transcription provider
func (e *Engine) Provider() whisper.Provider {
	return e.provider
}

// Journal exposes the engine's journal store, nil when disabled
func (e *Engine) Journal() *journal.Store {
	return e.journal
}

func (e *Engine) fail(log zerolog.Logger, jobID, source string, started time.Time, cause error) error {
	log.Error().Err(cause).Msg("job failed")

	if e.journal != nil {
		job := &journal.Job{
			ID:        jobID,
			Source:    source,
			Provider:  e.provider.Name(),
			Status:    journal.StatusFailed,
			Error:     cause.Error(),
			ElapsedMs: time.Since(started).Milliseconds(),
		}
		if err := e.journal.Record(job, nil); err != nil {
			log.Error().Err(err).Msg("failed to journal job")
		}
	}

	metrics.JobsProcessed.WithLabelValues(e.provider.Name(), journal.StatusFailed).Inc()
	e.publish(bus.EventTypeJobFailed, map[string]any{
		"job_id": jobID,
		"source": source,
		"error":  cause.Error(),
	})

	return cause
}

func (e *Engine) publish(eventType bus.EventType, data map[string]any) {
	if e.bus == nil {
		return
	}
	e.bus.PublishSync(bus.Event{Type: eventType, Data: data})
}
