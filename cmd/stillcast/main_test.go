package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stillcast/internal/services"
	"stillcast/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, "exit 0\n")

	out, _, err := runCLI(t, env, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Effects order")
	requireContains(t, out, "wobble, dim")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestRenderDryRunPrintsCommand(t *testing.T) {
	env := setupCLITestEnv(t, "exit 0\n")
	m := env.media

	out, _, err := runCLI(t, env, "", "render",
		"--image", m.Image, "--audio", m.Audio, "--output", m.Output,
		"--start", "5", "--end", "00:00:30", "--dim", "--dry-run")
	if err != nil {
		t.Fatalf("render --dry-run: %v", err)
	}
	requireContains(t, out, env.cfg.Engine.FFmpegBinary+" -hide_banner -nostdin -y -loop 1 -i "+m.Image)
	requireContains(t, out, "-ss 00:00:05 -to 00:00:30 -i "+m.Audio)
	requireContains(t, out, "-vf eq=brightness=-0.25 "+m.Output)
	if _, err := os.Stat(m.Output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run must not create output, stat err=%v", err)
	}
}

func TestRenderRejectsIncompleteJob(t *testing.T) {
	env := setupCLITestEnv(t, "exit 0\n")

	_, _, err := runCLI(t, env, "", "render", "--audio", env.media.Audio, "--end", "10")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(formatError(err), "hint:") {
		t.Fatalf("expected hint in %q", formatError(err))
	}
}

func TestRenderProbesLengthAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.EngineScript("00:01:00.00", "00:00:15.00", "00:00:45.00"))
	m := env.media

	out, _, err := runCLI(t, env, "", "render", "--image", m.Image, "--audio", m.Audio, "--output", m.Output)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	requireContains(t, out, "succeeded: "+m.Output)
	if _, err := os.Stat(m.Output); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	id := jobIDFromReport(t, out)

	out, _, err = runCLI(t, env, "", "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, id)
	requireContains(t, out, "Succeeded")
	requireContains(t, out, "00:00:00-00:01:00")

	out, _, err = runCLI(t, env, "", "history", "show", id)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "100%")
	requireContains(t, out, "-to 00:01:00")

	if _, _, err := runCLI(t, env, "", "history", "show", "zzzz"); err == nil {
		t.Fatal("expected unknown id to fail")
	}
}

func TestHistoryRerunReplaysRecordedJob(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.EngineScript("00:01:00.00", "00:00:05.00"))
	m := env.media

	out, _, err := runCLI(t, env, "", "render", "--image", m.Image, "--audio", m.Audio, "--output", m.Output,
		"--start", "10", "--end", "20", "--wobble")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	id := jobIDFromReport(t, out)

	replay := filepath.Join(filepath.Dir(m.Output), "replay.mp4")
	out, _, err = runCLI(t, env, "", "history", "rerun", id, "--output", replay)
	if err != nil {
		t.Fatalf("history rerun: %v", err)
	}
	requireContains(t, out, "succeeded: "+replay)

	out, _, err = runCLI(t, env, "", "history", "show", jobIDFromReport(t, out))
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "00:00:10-00:00:20")
	requireContains(t, out, "zoompan")
}

func TestRenderFailureReportsReason(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.FailingEncodeScript(3))
	m := env.media

	out, _, err := runCLI(t, env, "", "render", "--image", m.Image, "--audio", m.Audio, "--output", m.Output, "--end", "10")
	if err == nil {
		t.Fatal("expected render failure")
	}
	requireContains(t, out, "failed (exit status)")

	out, _, err = runCLI(t, env, "", "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "Failed")
}

func TestHistoryPrune(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.EngineScript("00:00:30.00", "00:00:10.00"))
	m := env.media

	if _, _, err := runCLI(t, env, "", "render", "--image", m.Image, "--audio", m.Audio, "--output", m.Output); err != nil {
		t.Fatalf("render: %v", err)
	}
	out, _, err := runCLI(t, env, "", "history", "prune", "--older-than", "0s")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 1 job(s)")

	out, _, err = runCLI(t, env, "", "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No jobs recorded")
}

func TestProbeCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.ProbeScript("00:03:07.50"))

	out, _, err := runCLI(t, env, "", "probe", env.media.Audio)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "00:03:07")
	requireContains(t, out, "187")

	_, _, err = runCLI(t, env, "", "probe", filepath.Join(env.baseDir, "missing.mp3"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t, "echo 'ffmpeg version 7.1-test'\n")

	out, _, err := runCLI(t, env, "", "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "[OK] ffmpeg version 7.1-test")
	requireContains(t, out, "[WARN] optional:")
}

func TestSessionScriptRendersTrimmedRange(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.EngineScript("00:02:00.00", "00:00:05.00", "00:00:10.00"))
	m := env.media

	script := strings.Join([]string{
		"audio " + m.Audio,
		"start 30",
		"end 45",
		"nudge end +5",
		"image " + m.Image,
		"output " + m.Output,
		"dim on",
		"submit",
	}, "\n") + "\n"

	out, stderr, err := runCLI(t, env, script, "session")
	if err != nil {
		t.Fatalf("session: %v\n%s", err, stderr)
	}
	requireContains(t, out, "range: 00:00:00-00:02:00")
	requireContains(t, out, "range: 00:00:30-00:00:50")
	requireContains(t, out, "started: "+m.Output)
	requireContains(t, out, "succeeded: "+m.Output)
	if _, err := os.Stat(m.Output); err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	out, _, err = runCLI(t, env, "", "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "00:00:30-00:00:50")
}

func TestSessionReportsBadInput(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.SilentProbeScript)

	script := "audio " + env.media.Audio + "\nplay\nfrobnicate\nwobble maybe\nsubmit\nquit\n"
	out, stderr, err := runCLI(t, env, script, "session")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	requireContains(t, out, "audio unavailable")
	requireContains(t, out, "submit rejected")
	requireContains(t, stderr, `unknown command "frobnicate"`)
	requireContains(t, stderr, "usage: wobble on|off")
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "42", want: 42},
		{in: "00:01:30.9", want: 90},
		{in: "-3", wantErr: true},
		{in: "soon", wantErr: true},
		{in: "1:2", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseSeconds(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseSeconds(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("parseSeconds(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestShellJoin(t *testing.T) {
	got := shellJoin([]string{"ffmpeg", "-i", "my song.mp3", "-vf", "eq=brightness=-0.25", "it's"})
	want := `ffmpeg -i 'my song.mp3' -vf eq=brightness=-0.25 'it'\''s'`
	if got != want {
		t.Fatalf("shellJoin = %s, want %s", got, want)
	}
}

func TestStateLabel(t *testing.T) {
	if got := stateLabel("exit_status"); got != "Exit Status" {
		t.Fatalf("stateLabel = %q", got)
	}
	if got := stateLabel(""); got != "-" {
		t.Fatalf("stateLabel empty = %q", got)
	}
}

func TestLogsCommandFiltersByJob(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.EngineScript("00:00:30.00", "00:00:10.00"))
	m := env.media

	out, _, err := runCLI(t, env, "", "render", "--image", m.Image, "--audio", m.Audio, "--output", m.Output)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	id := jobIDFromReport(t, out)

	out, _, err = runCLI(t, env, "", "logs", "--job", id, "-n", "100")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "Job "+id)
	requireContains(t, out, "encode finished")
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.HasPrefix(line, " ") && !strings.Contains(line, id) {
			t.Fatalf("unfiltered line %q", line)
		}
	}
}

func TestRenderWarnsWhenEndPassesAudio(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.EngineScript("00:00:30.00", "00:00:10.00"))
	m := env.media
	logPath := filepath.Join(env.cfg.Paths.LogDir, "stillcast.log")

	if _, _, err := runCLI(t, env, "", "render", "--image", m.Image, "--audio", m.Audio, "--output", m.Output, "--end", "20"); err != nil {
		t.Fatalf("render within audio: %v", err)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(content), "extends past the end of the audio") {
		t.Fatalf("unexpected range warning in %q", content)
	}

	if _, _, err := runCLI(t, env, "", "render", "--image", m.Image, "--audio", m.Audio, "--output", m.Output, "--end", "90"); err != nil {
		t.Fatalf("render past audio: %v", err)
	}
	content, err = os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	requireContains(t, string(content), "WARN [render] – trim range extends past the end of the audio")
	requireContains(t, string(content), "Audio Seconds: 30")
	requireContains(t, string(content), "Range End Seconds: 90")
}
