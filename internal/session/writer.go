package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const transcriptSuffix = "-disappility.transcript"

// Writer persists one session transcript to a uniquely named, timestamped
// file for offline inspection.
type Writer struct {
	fs  afero.Fs
	dir string

	// now is injectable for deterministic filenames in tests.
	now func() time.Time
}

// NewWriter builds a transcript writer. An empty dir falls back to the
// system temp directory.
func NewWriter(fs afero.Fs, dir string) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	return &Writer{fs: fs, dir: dir, now: time.Now}
}

// Persist writes the rendered transcript and returns the file path. An empty
// transcript is still written; an empty file is evidence the session ran.
func (w *Writer) Persist(content string) (string, error) {
	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure transcript dir %q: %w", w.dir, err)
	}

	name := w.now().Format("20060102150405") + transcriptSuffix
	path := filepath.Join(w.dir, name)

	if err := afero.WriteFile(w.fs, path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write transcript %q: %w", path, err)
	}
	return path, nil
}
