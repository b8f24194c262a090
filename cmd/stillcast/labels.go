package main

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stillcast/internal/encoding"
)

var titleCaser = cases.Title(language.Und)

// stateLabel renders a job state for humans, e.g. "exit_status" -> "Exit Status".
func stateLabel[T ~string](value T) string {
	raw := strings.TrimSpace(strings.ReplaceAll(string(value), "_", " "))
	if raw == "" {
		return "-"
	}
	return titleCaser.String(raw)
}

func jobOutcome(job encoding.Job) string {
	switch job.State {
	case encoding.StateFailed:
		return stateLabel(job.State) + " (" + stateLabel(job.Reason) + ")"
	default:
		return stateLabel(job.State)
	}
}
