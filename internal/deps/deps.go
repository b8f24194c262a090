package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external binary stillcast runs.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional binaries only back auxiliary commands.
	Optional bool
}

// Status is the outcome of resolving one Requirement. Command holds the
// resolved path when the binary was found.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// Check resolves a single requirement against PATH.
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}

	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// CheckBinaries resolves every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}

// MissingRequired lists the names of unavailable non-optional binaries.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
