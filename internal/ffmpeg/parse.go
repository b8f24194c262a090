package ffmpeg

import (
	"fmt"
	"math"
	"strings"

	"stillcast/internal/jobspec"
)

var (
	flagsWithValue = map[string]bool{
		"-loop": true, "-c:v": true, "-c:a": true, "-b:a": true,
		"-pix_fmt": true, "-strict": true,
	}
	standaloneFlags = map[string]bool{
		"-hide_banner": true, "-nostdin": true, "-y": true, "-n": true, "-shortest": true,
	}
)

// ParseArgs recovers the job spec from an argument list produced by Build.
// The first input is the looped image and the second is the trimmed audio.
func ParseArgs(args []string) (jobspec.JobSpec, error) {
	var (
		spec     jobspec.JobSpec
		inputs   []string
		sawStart bool
		sawEnd   bool
	)

	if len(args) == 0 {
		return jobspec.JobSpec{}, fmt.Errorf("parse args: empty argument list")
	}
	// The output is always last and may itself look like a flag.
	spec.OutputPath = outputPath(args[len(args)-1])
	flags := args[:len(args)-1]

	value := func(i int) (string, error) {
		if i+1 >= len(flags) {
			return "", fmt.Errorf("parse args: %s is missing its value", flags[i])
		}
		return flags[i+1], nil
	}

	for i := 0; i < len(flags); i++ {
		arg := flags[i]
		switch {
		case arg == "-i":
			v, err := value(i)
			if err != nil {
				return jobspec.JobSpec{}, err
			}
			inputs = append(inputs, v)
			i++
		case arg == "-ss" || arg == "-to":
			v, err := value(i)
			if err != nil {
				return jobspec.JobSpec{}, err
			}
			secs, err := ParseClock(v)
			if err != nil {
				return jobspec.JobSpec{}, fmt.Errorf("parse args: %s: %w", arg, err)
			}
			if arg == "-ss" {
				spec.Range.Start = int(math.Floor(secs))
				sawStart = true
			} else {
				spec.Range.End = int(math.Floor(secs))
				sawEnd = true
			}
			i++
		case arg == "-vf":
			v, err := value(i)
			if err != nil {
				return jobspec.JobSpec{}, err
			}
			spec.Wobble = strings.Contains(v, "zoompan=")
			spec.Dim = strings.Contains(v, "eq=brightness=")
			i++
		case flagsWithValue[arg]:
			i++
		case standaloneFlags[arg]:
		case strings.HasPrefix(arg, "-"):
			return jobspec.JobSpec{}, fmt.Errorf("parse args: unrecognized flag %q", arg)
		default:
			return jobspec.JobSpec{}, fmt.Errorf("parse args: unexpected positional %q", arg)
		}
	}

	if len(inputs) != 2 {
		return jobspec.JobSpec{}, fmt.Errorf("parse args: expected 2 inputs, found %d", len(inputs))
	}
	if !sawStart || !sawEnd {
		return jobspec.JobSpec{}, fmt.Errorf("parse args: trim range flags missing")
	}
	if spec.OutputPath == "" || knownFlag(args[len(args)-1]) {
		return jobspec.JobSpec{}, fmt.Errorf("parse args: output path missing")
	}
	spec.ImagePath = inputs[0]
	spec.AudioPath = inputs[1]
	return spec, nil
}

func outputPath(arg string) string {
	if rest, ok := strings.CutPrefix(arg, fileProtocol); ok && strings.HasPrefix(rest, "-") {
		return rest
	}
	return arg
}

func knownFlag(arg string) bool {
	switch arg {
	case "-i", "-ss", "-to", "-vf":
		return true
	}
	return flagsWithValue[arg] || standaloneFlags[arg]
}
