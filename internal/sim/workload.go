package sim

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Workload is the YAML script a simulation runs: one entry per
// bootstrap process, in creation order, so the first entry becomes
// pid 1.
type Workload struct {
	Processes []ProcessSpec `yaml:"processes"`
}

// ProcessSpec describes one simulated process.
type ProcessSpec struct {
	Priority int    `yaml:"priority"`
	Extra    string `yaml:"extra,omitempty"`
	Steps    []Step `yaml:"steps"`
}

// Step is one item of a process script. Exactly one field should be
// set; an empty step (or running off the end of the script) exits the
// process.
type Step struct {
	Run    int64        `yaml:"run,omitempty"`    // burn this many ticks of CPU
	Sleep  int64        `yaml:"sleep,omitempty"`  // sleep syscall
	Wait   *int64       `yaml:"wait,omitempty"`   // block on this event
	Signal *int64       `yaml:"signal,omitempty"` // fire this event
	Fork   *ProcessSpec `yaml:"fork,omitempty"`   // spawn a child running its own steps
	Exit   bool         `yaml:"exit,omitempty"`
}

// LoadWorkload reads a workload script. Unlike the scheduler config
// there are no useful defaults, so a missing or empty script is an
// error.
func LoadWorkload(path string) (Workload, error) {
	var w Workload
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read workload: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parse workload: %w", err)
	}
	if len(w.Processes) == 0 {
		return w, fmt.Errorf("workload %s defines no processes", path)
	}
	return w, nil
}
