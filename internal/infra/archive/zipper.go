package archive

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/framelift/extraction-service/internal/domain/extraction"
)

const manifestName = "manifest.json"

// manifestEntry mirrors one frame in the manifest shipped inside every
// archive, so consumers can place frames on the timeline without re-probing
// the source video.
type manifestEntry struct {
	FrameNumber int     `json:"frame_number"`
	Timestamp   float64 `json:"timestamp"`
	FileName    string  `json:"file_name"`
}

type ZipArchiver struct{}

func NewZipArchiver() *ZipArchiver {
	return &ZipArchiver{}
}

// CreateArchive writes a zip containing manifest.json followed by every
// frame, stored under its base name.
func (z *ZipArchiver) CreateArchive(ctx context.Context, frames []extraction.FrameInfo, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	if err := writeManifest(zipWriter, frames); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for _, frame := range frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := addFileToZip(zipWriter, frame.Path); err != nil {
			return fmt.Errorf("add %s to archive: %w", frame.Path, err)
		}
	}

	return nil
}

func writeManifest(zw *zip.Writer, frames []extraction.FrameInfo) error {
	entries := make([]manifestEntry, 0, len(frames))
	for _, frame := range frames {
		entries = append(entries, manifestEntry{
			FrameNumber: frame.FrameNumber,
			Timestamp:   frame.Timestamp,
			FileName:    filepath.Base(frame.Path),
		})
	}

	writer, err := zw.Create(manifestName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func addFileToZip(zw *zip.Writer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(filename)
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
