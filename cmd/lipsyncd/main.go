// Package main provides the CLI entry point for lipsyncd.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/normanking/lipsyncd/internal/bus"
	"github.com/normanking/lipsyncd/internal/config"
	"github.com/normanking/lipsyncd/internal/engine"
	"github.com/normanking/lipsyncd/internal/journal"
	"github.com/normanking/lipsyncd/internal/logging"
	"github.com/normanking/lipsyncd/internal/server"
	"github.com/normanking/lipsyncd/internal/viseme"
	"github.com/normanking/lipsyncd/internal/watcher"
	"github.com/normanking/lipsyncd/internal/whisper"
)

// Version information (set at build time)
var version = "1.0.0"

// loadConfig loads configuration, falling back to defaults on error
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config, using defaults: %v\n", err)
	}
	return cfg
}

// newLogger builds the shared logger from config
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(&logging.Config{
		LogDir:  cfg.Logging.Dir,
		Level:   logging.LogLevel(cfg.Logging.Level),
		Console: cfg.Logging.Console,
	})
}

// whisperConfig maps application config onto the provider config
func whisperConfig(cfg *config.Config) *whisper.Config {
	return &whisper.Config{
		InstallPath: cfg.Whisper.InstallPath,
		Model:       cfg.Whisper.Model,
		ServerURL:   cfg.Whisper.ServerURL,
		Timeout:     cfg.Whisper.Timeout,
		Threads:     cfg.Whisper.Threads,
		Language:    cfg.Whisper.Language,
	}
}

func usesLocalWhisper(cfg *config.Config) bool {
	return cfg.Whisper.Provider == "" || cfg.Whisper.Provider == "local"
}

// buildEngine wires the provider, journal, and bus into an engine
func buildEngine(cfg *config.Config, log *logging.Logger, b *bus.EventBus) (*engine.Engine, error) {
	provider, err := whisper.NewProvider(log.Zerolog(), cfg.Whisper.Provider, whisperConfig(cfg))
	if err != nil {
		return nil, err
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.NewStore(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
	}

	return engine.New(log.Zerolog(), engine.Options{
		Provider: provider,
		Journal:  store,
		Bus:      b,
		MergeGap: cfg.Pipeline.MergeGap,
	}), nil
}

func closeJournal(eng *engine.Engine) {
	if store := eng.Journal(); store != nil {
		store.Close()
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "lipsyncd",
		Short:   "lipsyncd converts speech audio into viseme timing events",
		Long:    "lipsyncd transcribes WAV audio with whisper.cpp and converts the\nword timings into mouth-shape (viseme) events for lip-sync animation.",
		Version: version,
	}

	// serve command - run the HTTP processing server
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP processing server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			b := bus.NewEventBus()
			eng, err := buildEngine(cfg, log, b)
			if err != nil {
				return err
			}
			defer closeJournal(eng)

			// Prepare whisper.cpp before accepting uploads
			if usesLocalWhisper(cfg) {
				installer := whisper.NewInstaller(log.Zerolog(), whisperConfig(cfg))
				if _, err := installer.EnsureInstalled(cmd.Context()); err != nil {
					return fmt.Errorf("prepare whisper.cpp: %w", err)
				}
			}

			srv := server.New(cfg, eng, b, log.Zerolog())

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				errChan <- srv.Start()
			}()

			select {
			case err := <-errChan:
				return err
			case sig := <-sigChan:
				zl := log.Zerolog()
				zl.Info().Str("signal", sig.String()).Msg("shutting down")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	// process command - one-shot conversion of a WAV file
	processCmd := &cobra.Command{
		Use:   "process [audio-file]",
		Short: "Convert one WAV file into a viseme timing file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			cfg := loadConfig()
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			eng, err := buildEngine(cfg, log, nil)
			if err != nil {
				return err
			}
			defer closeJournal(eng)

			result, err := eng.ProcessFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = engine.TimingPath(args[0])
			}
			if err := engine.WriteTimingFile(output, result.Events); err != nil {
				return err
			}

			fmt.Printf("Timing file created: %s (%d events from %d words)\n",
				output, len(result.Events), result.Words)
			return nil
		},
	}
	processCmd.Flags().StringP("output", "o", "", "Output timing file path (default: input with .timing extension)")

	// convert command - transcript text in, event stream out
	convertCmd := &cobra.Command{
		Use:   "convert [transcript-file]",
		Short: "Convert timestamped transcript text into viseme events",
		Long:  "Reads whisper.cpp timestamp lines from a file or stdin and writes\nviseme events to stdout, one JSON object per line.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asArray, _ := cmd.Flags().GetBool("array")

			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}

			events := viseme.Convert(string(data))
			if asArray {
				enc := json.NewEncoder(os.Stdout)
				return enc.Encode(events)
			}
			return viseme.WriteJSONLines(os.Stdout, events)
		},
	}
	convertCmd.Flags().Bool("array", false, "Emit a single JSON array instead of one object per line")

	// install command - set up whisper.cpp ahead of time
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Clone, build, and download models for whisper.cpp",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			installer := whisper.NewInstaller(log.Zerolog(), whisperConfig(cfg))
			inst, err := installer.EnsureInstalled(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("whisper.cpp ready at %s\n", inst.BasePath)
			fmt.Printf("  executable: %s\n", inst.ExecutablePath)
			fmt.Printf("  model:      %s\n", inst.ModelPath)
			return nil
		},
	}

	// watch command - convert files as they land in directories
	watchCmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Watch directories and convert new speech files",
		Long:  "Watches directories for new .wav and .txt files and writes a .timing\nfile next to each one as it appears.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			eng, err := buildEngine(cfg, log, nil)
			if err != nil {
				return err
			}
			defer closeJournal(eng)

			if usesLocalWhisper(cfg) {
				installer := whisper.NewInstaller(log.Zerolog(), whisperConfig(cfg))
				if _, err := installer.EnsureInstalled(cmd.Context()); err != nil {
					return fmt.Errorf("prepare whisper.cpp: %w", err)
				}
			}

			w, err := watcher.New(log.Zerolog(), eng)
			if err != nil {
				return err
			}
			defer w.Close()

			for _, dir := range args {
				if err := w.Watch(dir); err != nil {
					return fmt.Errorf("watch %s: %w", dir, err)
				}
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
