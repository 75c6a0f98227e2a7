package rig

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the retarget configuration loaded from a YAML file.
type Config struct {
	// Renames maps BVH joint names to rig node names.
	Renames map[string]string `yaml:"renames"`
	// LooseMatching ignores case, spaces and underscores when no exact
	// match exists.
	LooseMatching bool `yaml:"looseMatching"`
	// Scale is the rig's uniform scale, applied to the skeleton with
	// Node.ApplyScale before decoding; 0 means 1.
	Scale float32 `yaml:"scale"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	if conf.Scale == 0 {
		conf.Scale = 1
	}
	return &conf, nil
}

// Resolver returns a name resolver configured from c.
func (c *Config) Resolver() *Resolver {
	return &Resolver{Renames: c.Renames, Loose: c.LooseMatching}
}
