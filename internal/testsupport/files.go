package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MediaFiles holds placeholder inputs for a render and an output path
// inside the same temp directory.
type MediaFiles struct {
	Image  string
	Audio  string
	Output string
}

// NewMediaFiles writes placeholder image and audio files under dir. The
// stub engines never decode them, so their content is irrelevant.
func NewMediaFiles(t testing.TB, dir string) MediaFiles {
	t.Helper()

	files := MediaFiles{
		Image:  filepath.Join(dir, "media", "cover.png"),
		Audio:  filepath.Join(dir, "media", "song.mp3"),
		Output: filepath.Join(dir, "out", "video.mp4"),
	}
	WriteFile(t, files.Image, 128)
	WriteFile(t, files.Audio, 256)
	if err := os.MkdirAll(filepath.Dir(files.Output), 0o755); err != nil {
		t.Fatalf("mkdir output dir: %v", err)
	}
	return files
}
