package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestWriterPersistsTimestampedTranscript(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writer := NewWriter(fs, "/var/lib/disappility")
	writer.now = func() time.Time {
		return time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	}

	path, err := writer.Persist("open the door\nclose the window")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/var/lib/disappility", "20250314092653-disappility.transcript"), path)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	require.Equal(t, "open the door\nclose the window", string(content))
}

func TestWriterCreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writer := NewWriter(fs, "/deep/nested/transcripts")

	path, err := writer.Persist("hello")
	require.NoError(t, err)

	exists, err := afero.DirExists(fs, "/deep/nested/transcripts")
	require.NoError(t, err)
	require.True(t, exists)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestWriterDefaultsToTempDirWhenUnconfigured(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writer := NewWriter(fs, "")
	require.NotEmpty(t, writer.dir)

	path, err := writer.Persist("text")
	require.NoError(t, err)
	require.Equal(t, writer.dir, filepath.Dir(path))
}

func TestWriterPersistsEmptyTranscript(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writer := NewWriter(fs, "/t")

	path, err := writer.Persist("")
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	require.Empty(t, content)
}
