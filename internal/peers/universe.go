// Package peers maps a company's sector and industry to a curated list of
// candidate peer tickers.
package peers

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed universe.yaml
var embeddedUniverse []byte

// Sector is a named group of peer tickers.
type Sector struct {
	Name    string   `yaml:"name"`
	Tickers []string `yaml:"tickers"`
}

// Vertical is a specialised peer group overlaid on the sector list. It is
// included on request or when any keyword appears in the industry.
type Vertical struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Tickers  []string `yaml:"tickers"`
}

// Universe is the versioned, read-only peer table. Sector order is
// significant: it decides which sector wins when several match.
type Universe struct {
	Version   string     `yaml:"version"`
	Sectors   []Sector   `yaml:"sectors"`
	Verticals []Vertical `yaml:"verticals"`
}

var (
	defaultOnce     sync.Once
	defaultUniverse *Universe
	defaultErr      error
)

// Default returns the embedded universe, parsed once per process.
func Default() (*Universe, error) {
	defaultOnce.Do(func() {
		defaultUniverse, defaultErr = Parse(embeddedUniverse)
	})
	return defaultUniverse, defaultErr
}

// Load reads a universe from path, or returns the embedded one when path is empty.
func Load(path string) (*Universe, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "peers: read universe %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML universe document.
func Parse(data []byte) (*Universe, error) {
	var u Universe
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, eris.Wrap(err, "peers: parse universe")
	}
	if err := u.validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

func (u *Universe) validate() error {
	var errs []string
	if len(u.Sectors) == 0 {
		errs = append(errs, "at least one sector is required")
	}
	seen := make(map[string]bool, len(u.Sectors))
	for i, s := range u.Sectors {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Sprintf("sector %d: name is required", i))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, "duplicate sector "+s.Name)
		}
		seen[s.Name] = true
	}
	for i, v := range u.Verticals {
		if strings.TrimSpace(v.Name) == "" {
			errs = append(errs, fmt.Sprintf("vertical %d: name is required", i))
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("peers: invalid universe: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SectorNames lists the sector names in match order.
func (u *Universe) SectorNames() []string {
	names := make([]string, len(u.Sectors))
	for i, s := range u.Sectors {
		names[i] = s.Name
	}
	return names
}
