package whisper

import (
	"fmt"

	"github.com/rs/zerolog"
)

// NewProvider constructs a transcription provider by name.
// Supported names are "local" (default) and "server".
func NewProvider(logger zerolog.Logger, name string, config *Config) (Provider, error) {
	switch name {
	case "", "local":
		return NewLocalProvider(logger, config), nil
	case "server":
		return NewServerProvider(logger, config), nil
	default:
		return nil, fmt.Errorf("unknown whisper provider: %s", name)
	}
}
