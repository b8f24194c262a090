package logs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			t.Fatalf("write log: %v", err)
		}
	}
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stillcast.log")
	writeLog(t, path, "one", "two", "three", "four")

	lines, offset, err := Last(path, 2, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if strings.Join(lines, ",") != "three,four" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	info, _ := os.Stat(path)
	if offset != info.Size() {
		t.Fatalf("offset = %d, want %d", offset, info.Size())
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := Last(filepath.Join(t.TempDir(), "none.log"), 10, nil)
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("Last missing = %v, %d, %v", lines, offset, err)
	}
}

func TestJobFilterMatchesConsoleAndJSON(t *testing.T) {
	id := "0123456789abcdef"
	filter := JobFilter(id)
	path := filepath.Join(t.TempDir(), "stillcast.log")
	writeLog(t, path,
		"2026-01-02 10:00:00 INFO [encoding] Job 01234567 – encode started",
		"    - Output: /tmp/video.mp4",
		`{"ts":"2026-01-02T10:00:01Z","level":"info","msg":"encode progress","job_id":"0123456789abcdef"}`,
		"2026-01-02 10:00:02 INFO [encoding] Job ffffffff – encode started",
		"    - Output: /tmp/other.mp4",
	)

	lines, _, err := Last(path, 10, filter)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 3 || lines[1] != "    - Output: /tmp/video.mp4" {
		t.Fatalf("expected 3 matching lines, got %v", lines)
	}
	if JobFilter("  ") != nil {
		t.Fatal("blank id should not filter")
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stillcast.log")
	writeLog(t, path, "old")
	_, offset, err := Last(path, 1, nil)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	var (
		mu  sync.Mutex
		got []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, offset, 10*time.Millisecond, nil, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	writeLog(t, path, "new")
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if strings.Join(got, ",") != "new" {
		t.Fatalf("followed lines = %v", got)
	}
}

func TestScanLinesLeavesPartialLine(t *testing.T) {
	var lines []string
	n, err := scanLines(strings.NewReader("a\r\nb\npart"), func(s string) { lines = append(lines, s) })
	if err != nil {
		t.Fatalf("scanLines: %v", err)
	}
	if n != 5 || strings.Join(lines, ",") != "a,b" {
		t.Fatalf("scanLines = %d %v", n, lines)
	}
}
