package profile

import (
	"bytes"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a custom profile from a YAML file and validates it.
// Unknown keys are rejected so a typo cannot silently drop a penalty rule.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, eris.Wrapf(err, "profile: read %s", path)
	}

	p := Profile{
		Scale:          DefaultScale,
		TargetSteps:    DefaultTargetSteps,
		TargetFallback: DefaultTargetFallback,
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Profile{}, eris.Wrapf(err, "profile: parse %s", path)
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
