// Package pipeline loads named constructor expressions from configuration
// sources and builds them against a registry. Two sources are supported: a
// YAML file and a SQLite catalog. Both store raw expression text only — the
// parsed trees and the constructed instances live purely in memory.
package pipeline

import (
	"database/sql"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/funvibe/ctorex/pkg/ctorex"
)

// Config is the top-level pipelines file.
type Config struct {
	Pipelines []Definition `yaml:"pipelines"`
}

// Definition is one named pipeline: an expression plus an optional
// capability the built root instance must implement.
type Definition struct {
	// Name identifies the pipeline; must be unique within a config.
	Name string `yaml:"name"`

	// Expression is the raw constructor expression, e.g.
	// Resample(Momentum(SMA,[100,50,20],[0.2,0.3,0.5]),900).
	Expression string `yaml:"expression"`

	// Capability, when set, is required of the root instance's type.
	Capability string `yaml:"capability,omitempty"`
}

// Load reads a YAML pipelines file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML pipeline definitions.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid pipelines config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadCatalog reads pipeline definitions from a SQLite catalog. The
// catalog schema is a single table:
//
//	CREATE TABLE pipelines (
//	    name       TEXT PRIMARY KEY,
//	    expression TEXT NOT NULL,
//	    capability TEXT NOT NULL DEFAULT ''
//	);
//
// Rows are read in name order so repeated loads build in the same order.
func LoadCatalog(path string) (*Config, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name, expression, capability FROM pipelines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline catalog: %w", err)
	}
	defer rows.Close()

	var cfg Config
	for rows.Next() {
		var def Definition
		if err := rows.Scan(&def.Name, &def.Expression, &def.Capability); err != nil {
			return nil, err
		}
		cfg.Pipelines = append(cfg.Pipelines, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Pipelines))
	for i, def := range c.Pipelines {
		if def.Name == "" {
			return fmt.Errorf("pipeline #%d: name is required", i+1)
		}
		if def.Expression == "" {
			return fmt.Errorf("pipeline %q: expression is required", def.Name)
		}
		if seen[def.Name] {
			return fmt.Errorf("duplicate pipeline name %q", def.Name)
		}
		seen[def.Name] = true
	}
	return nil
}

// Build instantiates every definition against the registry. The first
// failure aborts the whole build; no partial result is returned.
func (c *Config) Build(reg *ctorex.Registry) (map[string]*ctorex.Instance, error) {
	out := make(map[string]*ctorex.Instance, len(c.Pipelines))
	for _, def := range c.Pipelines {
		var inst *ctorex.Instance
		var err error
		if def.Capability != "" {
			inst, err = reg.Create(def.Expression, def.Capability)
		} else {
			inst, err = reg.Create(def.Expression)
		}
		if err != nil {
			return nil, fmt.Errorf("pipeline %q: %w", def.Name, err)
		}
		out[def.Name] = inst
	}
	return out, nil
}
