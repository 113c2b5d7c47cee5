package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// AlarmLevel pairs an alarm level name with its target exceedance
// probability.
type AlarmLevel struct {
	Name      string  `yaml:"name"`
	Threshold float64 `yaml:"threshold"`
}

// AlarmProfile is the ordered set of alarm levels a curve set is resolved at.
// The naming follows the adaptive traffic-light convention used by induced
// seismicity monitoring: each level's threshold is the exceedance probability
// at which that level's intensity limit is read off the hazard curve.
type AlarmProfile struct {
	Levels []AlarmLevel `yaml:"levels"`
}

// DefaultAlarmProfile returns the built-in three-level traffic-light profile
// used when no profile file is configured.
func DefaultAlarmProfile() AlarmProfile {
	return AlarmProfile{Levels: []AlarmLevel{
		{Name: "green", Threshold: 0.5},
		{Name: "amber", Threshold: 0.1},
		{Name: "red", Threshold: 0.01},
	}}
}

// LoadAlarmProfile reads and validates an alarm profile from a YAML file.
// An empty path yields the default profile.
func LoadAlarmProfile(path string) (AlarmProfile, error) {
	if path == "" {
		return DefaultAlarmProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AlarmProfile{}, fmt.Errorf("read alarm profile: %w", err)
	}

	var p AlarmProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return AlarmProfile{}, fmt.Errorf("parse alarm profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return AlarmProfile{}, fmt.Errorf("alarm profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks that the profile has at least one level and that level
// names are unique and thresholds finite.
func (p AlarmProfile) Validate() error {
	if len(p.Levels) == 0 {
		return fmt.Errorf("no alarm levels defined")
	}
	seen := make(map[string]bool, len(p.Levels))
	for i, l := range p.Levels {
		if l.Name == "" {
			return fmt.Errorf("level %d: name is empty", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("level %d: duplicate name %q", i, l.Name)
		}
		seen[l.Name] = true
		if math.IsNaN(l.Threshold) || math.IsInf(l.Threshold, 0) {
			return fmt.Errorf("level %q: threshold is not finite", l.Name)
		}
	}
	return nil
}
