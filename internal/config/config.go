// Package config loads the daemon's YAML policy/configuration file and
// hosts the Config Cache: an atomically-swapped pointer to the currently
// active, immutable Config.
package config

import (
	"fmt"
	"os"

	"github.com/System233/poudriered/internal/policy"
	"github.com/System233/poudriered/internal/wire"
	"gopkg.in/yaml.v3"
)

// ScheduleEntry is a (format, when, cmd) triple plus the last-fired
// dedupe state the Scheduler needs to re-arm a recurring entry.
type ScheduleEntry struct {
	Format string
	When   string
	Cmd    wire.Node

	lastFired string
}

// LastFired reports the formatted value recorded by the tick that last
// fired this entry, or "" once a later tick has stopped matching `when`,
// for the Scheduler's dedupe check.
func (e *ScheduleEntry) LastFired() string { return e.lastFired }

// SetLastFired records the formatted value produced by a firing tick, or
// "" to clear it.
func (e *ScheduleEntry) SetLastFired(v string) { e.lastFired = v }

// Config is the fully parsed, immutable-once-loaded policy tree plus the
// ambient daemon settings (socket, pidfile, log_level, metrics_addr).
type Config struct {
	Socket      string
	PidFile     string
	Policy      policy.Policy
	Schedule    []*ScheduleEntry
	LogLevel    string
	MetricsAddr string
}

// Load parses the YAML file at path into a Config. A malformed file, or one
// missing the required `socket`/`pidfile` keys, is a Config-load failure:
// fatal at startup, non-fatal on reload (the caller decides which by
// choosing whether to keep the old Cache value on error).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if raw.Socket == "" {
		return nil, fmt.Errorf("config: %s: 'socket' not found in the configuration file", path)
	}
	if raw.PidFile == "" {
		return nil, fmt.Errorf("config: %s: 'pidfile' not found in the configuration file", path)
	}

	cfg := &Config{
		Socket:      raw.Socket,
		PidFile:     raw.PidFile,
		Policy:      policy.Policy{Operation: policy.Section(raw.Operation), Command: policy.Section(raw.Command)},
		LogLevel:    raw.LogLevel,
		MetricsAddr: raw.MetricsAddr,
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	for _, s := range raw.Schedule {
		if s.Format == "" || s.When == "" || isEmptyYAMLNode(s.Cmd) {
			// Entries missing any of format/when/cmd are skipped silently.
			continue
		}
		var raw interface{}
		if err := s.Cmd.Decode(&raw); err != nil {
			continue
		}
		cfg.Schedule = append(cfg.Schedule, &ScheduleEntry{
			Format: s.Format,
			When:   s.When,
			Cmd:    wire.FromGeneric(raw),
		})
	}
	return cfg, nil
}

func isEmptyYAMLNode(n yaml.Node) bool {
	return n.Kind == 0
}
