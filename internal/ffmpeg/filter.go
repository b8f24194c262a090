package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"stillcast/internal/config"
	"stillcast/internal/jobspec"
)

// FilterChain composes every requested effect into one comma separated chain
// following opts.EffectOrder. Effects missing from the order are appended in
// their default position so a request is never dropped.
func FilterChain(spec jobspec.JobSpec, opts Options) string {
	requested := map[string]bool{
		config.EffectWobble: spec.Wobble,
		config.EffectDim:    spec.Dim,
	}

	order := append([]string(nil), opts.EffectOrder...)
	for _, name := range []string{config.EffectWobble, config.EffectDim} {
		if !containsString(order, name) {
			order = append(order, name)
		}
	}

	var filters []string
	for _, name := range order {
		if !requested[name] {
			continue
		}
		requested[name] = false
		switch name {
		case config.EffectWobble:
			filters = append(filters, wobbleFilter(opts))
		case config.EffectDim:
			filters = append(filters, dimFilter(opts))
		}
	}
	return strings.Join(filters, ",")
}

func wobbleFilter(opts Options) string {
	period := opts.WobblePeriodFrames
	if period <= 0 {
		period = 1
	}
	return fmt.Sprintf(
		"zoompan=z='1+%s*sin(2*PI*on/%d)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=1:s=%dx%d:fps=%d",
		formatFloat(opts.WobbleZoom), period, opts.Width, opts.Height, opts.FrameRate,
	)
}

func dimFilter(opts Options) string {
	return "eq=brightness=" + formatFloat(opts.DimBrightness)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
