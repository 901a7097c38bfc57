package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/normanking/lipsyncd/internal/viseme"
)

// TimingPath returns the timing-file path for an input: the input path
// with its extension replaced by .timing
func TimingPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".timing"
}

// WriteTimingFile writes events to path, one JSON object per line
func WriteTimingFile(path string, events []viseme.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create timing file: %w", err)
	}

	if err := viseme.WriteJSONLines(f, events); err != nil {
		f.Close()
		return fmt.Errorf("write timing file: %w", err)
	}
	return f.Close()
}
