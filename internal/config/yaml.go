package config

import (
	"fmt"

	"github.com/System233/poudriered/internal/policy"
	"gopkg.in/yaml.v3"
)

// rawCredential mirrors the {user: [...], group: [...]} shape a rule-map's
// value takes in the YAML config: a rule-map is keyed by the subject and
// maps to { user: [principal...], group: [principal...] }.
type rawCredential struct {
	User     []rawPrincipal `yaml:"user"`
	Group    []rawPrincipal `yaml:"group"`
	Argument rawSection     `yaml:"argument"`
}

// rawPrincipal decodes either a YAML scalar string or integer into a
// policy.Principal, preserving its three-way (wildcard/name/id) shape.
type rawPrincipal policy.Principal

func (p *rawPrincipal) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!str":
		s := value.Value
		if s == "*" {
			*p = rawPrincipal{Wildcard: true}
			return nil
		}
		*p = rawPrincipal{Name: s}
		return nil
	case "!!int":
		var i int
		if err := value.Decode(&i); err != nil {
			return err
		}
		*p = rawPrincipal{ID: &i}
		return nil
	default:
		return fmt.Errorf("config: principal must be a string or integer, got %s", value.Tag)
	}
}

// rawSection decodes a YAML sequence of single-key maps (subject -> rawCredential)
// into an ordered policy.Section, preserving encounter order for the
// exact-then-wildcard lookup in internal/policy.
type rawSection policy.Section

func (s *rawSection) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("config: expected a sequence of rule-maps, got kind %d", value.Kind)
	}
	out := make(policy.Section, 0, len(value.Content))
	for _, entryNode := range value.Content {
		if entryNode.Kind != yaml.MappingNode {
			return fmt.Errorf("config: rule-map entries must be mappings")
		}
		for i := 0; i+1 < len(entryNode.Content); i += 2 {
			subjectNode := entryNode.Content[i]
			credNode := entryNode.Content[i+1]
			var cred rawCredential
			if err := credNode.Decode(&cred); err != nil {
				return fmt.Errorf("config: rule %q: %w", subjectNode.Value, err)
			}
			out = append(out, policy.Rule{
				Subject:    subjectNode.Value,
				Credential: toCredential(cred),
				Arguments:  policy.Section(cred.Argument),
			})
		}
	}
	*s = rawSection(out)
	return nil
}

func toCredential(c rawCredential) policy.Credential {
	users := make([]policy.Principal, 0, len(c.User))
	for _, u := range c.User {
		users = append(users, policy.Principal(u))
	}
	groups := make([]policy.Principal, 0, len(c.Group))
	for _, g := range c.Group {
		groups = append(groups, policy.Principal(g))
	}
	return policy.Credential{Users: users, Groups: groups}
}

// rawScheduleEntry mirrors a Schedule entry's (format, when, cmd) triple.
type rawScheduleEntry struct {
	Format string    `yaml:"format"`
	When   string    `yaml:"when"`
	Cmd    yaml.Node `yaml:"cmd"`
}

// rawConfig is the top-level decode target for the YAML config file.
type rawConfig struct {
	Socket      string             `yaml:"socket"`
	PidFile     string             `yaml:"pidfile"`
	Operation   rawSection         `yaml:"operation"`
	Command     rawSection         `yaml:"command"`
	Schedule    []rawScheduleEntry `yaml:"schedule"`
	LogLevel    string             `yaml:"log_level"`
	MetricsAddr string             `yaml:"metrics_addr"`
}
