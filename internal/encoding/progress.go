package encoding

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strings"

	"stillcast/internal/ffmpeg"
)

const stderrTailLines = 8

// scanStatusLines splits engine diagnostics on either \r or \n. The engine
// rewrites its status line with bare carriage returns, so a newline-only
// scanner would hold every update until the encode ends.
func scanStatusLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// percentOf converts elapsed encoded seconds into a whole percentage of total.
func percentOf(elapsed float64, total int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Floor(100 * elapsed / float64(total)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// progressReader tracks the latest percentage and a short tail of
// non-progress diagnostics for failure messages.
type progressReader struct {
	total     int
	last      int
	tail      []string
	onPercent func(percent int)
}

func newProgressReader(total int, onPercent func(int)) *progressReader {
	return &progressReader{total: total, last: -1, onPercent: onPercent}
}

// consume reads r to EOF. Lines split across reads are reassembled by the
// scanner before markers are matched.
func (p *progressReader) consume(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	scanner.Split(scanStatusLines)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	err := scanner.Err()
	// Keep draining so the engine never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
	return err
}

func (p *progressReader) line(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	elapsed, ok := ffmpeg.ParseTimeMarker(text)
	if !ok {
		p.tail = append(p.tail, text)
		if len(p.tail) > stderrTailLines {
			p.tail = p.tail[len(p.tail)-stderrTailLines:]
		}
		return
	}
	pct := percentOf(elapsed, p.total)
	if pct <= p.last {
		return
	}
	p.last = pct
	if p.onPercent != nil {
		p.onPercent(pct)
	}
}

// detail returns the most recent diagnostic line, typically the engine's
// own error summary.
func (p *progressReader) detail() string {
	if len(p.tail) == 0 {
		return ""
	}
	return p.tail[len(p.tail)-1]
}
