// Package config loads the YAML list of known IXP looking-glass endpoints.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pgossip/pgossip/pkg/lg"
)

type file struct {
	IXPs []entry `yaml:"ixps"`
}

// entry accepts either a bare URL string (flavor defaults to alice, the
// most common deployment) or a {url, flavor} mapping.
type entry struct {
	URL    string `yaml:"url"`
	Flavor string `yaml:"flavor"`
}

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&e.URL)
	}
	type plain entry
	return node.Decode((*plain)(e))
}

// Load reads the endpoint list. An empty or malformed list is a
// configuration error, fatal to the run that needed it.
func Load(path string) ([]lg.Endpoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if len(f.IXPs) == 0 {
		return nil, fmt.Errorf("config %s lists no IXPs", path)
	}

	endpoints := make([]lg.Endpoint, 0, len(f.IXPs))
	for i, e := range f.IXPs {
		if e.URL == "" {
			return nil, fmt.Errorf("config %s: ixps[%d] has no URL", path, i)
		}
		flavor := lg.FlavorAlice
		if e.Flavor != "" {
			flavor, err = lg.ParseFlavor(e.Flavor)
			if err != nil {
				return nil, fmt.Errorf("config %s: ixps[%d]: %w", path, i, err)
			}
		}
		endpoints = append(endpoints, lg.Endpoint{URL: e.URL, Flavor: flavor})
	}
	return endpoints, nil
}
