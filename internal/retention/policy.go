package retention

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"basegraph.app/courier/internal/model"
)

const (
	MinDays = 30
	MaxDays = 3650
)

// Policy is the effective retention of a thread: a named policy and a message lifetime in days.
type Policy struct {
	Name string `yaml:"policy" json:"policy"`
	Days int    `yaml:"days" json:"days"`
}

// Policies maps each channel type to its default policy.
type Policies struct {
	defaults map[model.ChannelType]Policy
}

func DefaultPolicies() *Policies {
	return &Policies{defaults: map[model.ChannelType]Policy{
		model.ChannelTypeDirect:   {Name: "standard", Days: 365},
		model.ChannelTypeGroup:    {Name: "standard", Days: 365},
		model.ChannelTypeSupport:  {Name: "support_extended", Days: 1095},
		model.ChannelTypeProject:  {Name: "project", Days: 730},
		model.ChannelTypeContract: {Name: "legal_hold", Days: 3650},
	}}
}

type policyFile struct {
	Channels map[string]Policy `yaml:"channels"`
}

// LoadPolicies reads channel defaults from a YAML file on top of DefaultPolicies:
//
//	channels:
//	  support:
//	    policy: support_extended
//	    days: 1095
//
// An empty path returns the built-in defaults.
func LoadPolicies(path string) (*Policies, error) {
	policies := DefaultPolicies()
	if path == "" {
		return policies, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading retention policy file: %w", err)
	}
	return policies, policies.merge(raw)
}

func (p *Policies) merge(raw []byte) error {
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing retention policy file: %w", err)
	}

	for name, policy := range file.Channels {
		channel := model.ChannelType(name)
		if !channel.Valid() {
			return fmt.Errorf("retention policy file: unknown channel type %q", name)
		}
		if policy.Name == "" {
			policy.Name = p.defaults[channel].Name
		}
		if policy.Days == 0 {
			policy.Days = p.defaults[channel].Days
		}
		policy.Days = Clamp(policy.Days)
		p.defaults[channel] = policy
	}
	return nil
}

// Clamp bounds days to [MinDays, MaxDays].
func Clamp(days int) int {
	switch {
	case days < MinDays:
		return MinDays
	case days > MaxDays:
		return MaxDays
	}
	return days
}

// Default returns the channel's default policy. Unknown channels get the direct-message default.
func (p *Policies) Default(channel model.ChannelType) Policy {
	if policy, ok := p.defaults[channel]; ok {
		return policy
	}
	return p.defaults[model.ChannelTypeDirect]
}

// Resolve returns the effective policy for a new thread. Explicit values win over the
// channel default, and days are always clamped.
func (p *Policies) Resolve(channel model.ChannelType, name *string, days *int) Policy {
	policy := p.Default(channel)
	if name != nil && *name != "" {
		policy.Name = *name
	}
	if days != nil {
		policy.Days = Clamp(*days)
	}
	return policy
}

// IsOverride reports whether the thread's policy or days deviate from its channel default.
func (p *Policies) IsOverride(thread model.Thread) bool {
	def := p.Default(thread.ChannelType)
	return thread.RetentionPolicy != def.Name || thread.RetentionDays != def.Days
}
