package testsupport

import (
	"fmt"
	"strings"
)

// ProbeScript mimics inspect mode: the input summary goes to stderr and the
// engine exits 1 because no output file was named.
func ProbeScript(duration string) string {
	return fmt.Sprintf(`echo "Input #0, mp3, from '$4':" >&2
echo "  Duration: %s, start: 0.000000, bitrate: 128 kb/s" >&2
echo "At least one output file must be specified" >&2
exit 1
`, duration)
}

// SilentProbeScript mimics an engine that prints no duration marker.
const SilentProbeScript = `echo "Invalid data found when processing input" >&2
exit 1
`

// HangingScript never finishes on its own.
const HangingScript = "exec sleep 30\n"

// EncodeScript mimics an encode: each progress time is written to stderr as a
// carriage-return terminated status line, then the last argument is created
// as the output file.
func EncodeScript(times ...string) string {
	var b strings.Builder
	b.WriteString("for last; do :; done\n")
	for i, ts := range times {
		fmt.Fprintf(&b, "printf 'frame=%4d fps=25 q=28.0 size=%6dkB time=%s bitrate=128.0kbits/s speed=1x\\r' >&2\n", i*25, i*64, ts)
	}
	b.WriteString("echo done > \"$last\"\nexit 0\n")
	return b.String()
}

// FailingEncodeScript exits with the given status after one progress line.
func FailingEncodeScript(status int) string {
	return fmt.Sprintf("printf 'size=0kB time=00:00:01.00 bitrate=N/A\\n' >&2\necho 'Conversion failed!' >&2\nexit %d\n", status)
}

// SlowEncodeScript writes progress and then blocks until killed.
func SlowEncodeScript() string {
	return "for last; do :; done\nprintf 'size=0kB time=00:00:01.00 bitrate=N/A\\r' >&2\necho partial > \"$last\"\nexec sleep 30\n"
}

// EngineScript answers both modes: invocations carrying -loop behave like
// EncodeScript(times...), everything else like ProbeScript(duration).
func EngineScript(duration string, times ...string) string {
	return "case \" $* \" in\n*\" -loop \"*)\n" + EncodeScript(times...) + ";;\n*)\n" + ProbeScript(duration) + ";;\nesac\n"
}
