package sched

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Policy names accepted by Config.Policy.
const (
	PolicyRoundRobin         = "rr"
	PolicyPriorityRoundRobin = "prr"
	PolicyFair               = "cfs"
)

// Config mirrors the scheduler section of the YAML config file.
// All durations are virtual ticks.
type Config struct {
	Policy         string `yaml:"policy"`          // "rr", "prr" or "cfs"
	Timeslice      int64  `yaml:"timeslice"`       // round-robin family slice
	MinRemaining   int64  `yaml:"min_remaining"`   // reschedule threshold
	TargetLatency  int64  `yaml:"target_latency"`  // cfs: latency window split across ready procs
	MinGranularity int64  `yaml:"min_granularity"` // cfs: slice floor
}

// If the config file is not found, we use default values.
func defaultConfig() Config {
	return Config{
		Policy:         PolicyRoundRobin,
		Timeslice:      5,
		MinRemaining:   2,
		TargetLatency:  20,
		MinGranularity: 2,
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.Policy == "" {
		cfg.Policy = PolicyRoundRobin
	}
	if cfg.Timeslice <= 0 {
		cfg.Timeslice = 5
	}
	if cfg.MinRemaining < 0 {
		cfg.MinRemaining = 0
	}
	if cfg.TargetLatency <= 0 {
		cfg.TargetLatency = 20
	}
	if cfg.MinGranularity <= 0 {
		cfg.MinGranularity = 1
	}

	return cfg
}

// New builds the scheduler selected by cfg.Policy.
func New(cfg Config) (Scheduler, error) {
	switch cfg.Policy {
	case PolicyRoundRobin:
		return NewRoundRobin(cfg.Timeslice, cfg.MinRemaining), nil
	case PolicyPriorityRoundRobin:
		return NewPriorityRoundRobin(cfg.Timeslice, cfg.MinRemaining), nil
	case PolicyFair:
		return NewFair(cfg.TargetLatency, cfg.MinGranularity), nil
	default:
		return nil, fmt.Errorf("unknown scheduling policy %q", cfg.Policy)
	}
}
