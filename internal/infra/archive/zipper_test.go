package archive

import (
	"archive/zip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

func writeFrameFiles(t *testing.T, dir string, names ...string) []extraction.FrameInfo {
	t.Helper()
	frames := make([]extraction.FrameInfo, 0, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes-"+name), 0644))
		frames = append(frames, extraction.FrameInfo{
			FrameNumber: i,
			Timestamp:   float64(i) / 2.0,
			Path:        path,
		})
	}
	return frames
}

func TestCreateArchive(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrameFiles(t, dir, "frame_000001.jpg", "frame_000002.jpg", "frame_000003.jpg")
	outputPath := filepath.Join(dir, "frames.zip")

	archiver := NewZipArchiver()
	require.NoError(t, archiver.CreateArchive(context.Background(), frames, outputPath))

	reader, err := zip.OpenReader(outputPath)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 4)
	assert.Equal(t, manifestName, reader.File[0].Name)

	manifestFile, err := reader.File[0].Open()
	require.NoError(t, err)
	defer manifestFile.Close()

	var entries []manifestEntry
	require.NoError(t, json.NewDecoder(manifestFile).Decode(&entries))
	require.Len(t, entries, 3)
	assert.Equal(t, 0, entries[0].FrameNumber)
	assert.Equal(t, "frame_000001.jpg", entries[0].FileName)
	assert.Equal(t, 1.0, entries[2].Timestamp)

	frameFile, err := reader.File[1].Open()
	require.NoError(t, err)
	defer frameFile.Close()
	content, err := io.ReadAll(frameFile)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes-frame_000001.jpg", string(content))
}

func TestCreateArchiveWithNoFramesStillWritesManifest(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "empty.zip")

	require.NoError(t, NewZipArchiver().CreateArchive(context.Background(), nil, outputPath))

	reader, err := zip.OpenReader(outputPath)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 1)
	assert.Equal(t, manifestName, reader.File[0].Name)
}

func TestCreateArchiveFailsOnMissingFrame(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "frames.zip")

	err := NewZipArchiver().CreateArchive(context.Background(), []extraction.FrameInfo{
		{FrameNumber: 0, Timestamp: 0, Path: filepath.Join(dir, "missing.jpg")},
	}, outputPath)
	assert.Error(t, err)
}

func TestCreateArchiveHonoursCancellation(t *testing.T) {
	dir := t.TempDir()
	frames := writeFrameFiles(t, dir, "frame_000001.jpg")
	outputPath := filepath.Join(dir, "frames.zip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewZipArchiver().CreateArchive(ctx, frames, outputPath)
	assert.ErrorIs(t, err, context.Canceled)
}
