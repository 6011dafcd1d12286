// Package deps reports whether the external binaries StringPuller shells out
// to can be found.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency StringPuller relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Available commands are reported by their resolved path.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// FFmpeg returns the requirement entry for the transcoder binary. It is
// optional unless WAV conversion is enabled.
func FFmpeg(binary string, required bool) Requirement {
	return Requirement{
		Name:        "FFmpeg",
		Command:     binary,
		Description: "Converts extracted AC3 streams to WAV",
		Optional:    !required,
	}
}
