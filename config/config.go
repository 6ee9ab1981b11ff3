// Package config loads .textops.yaml and overlays TEXTOPS__ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"textops/dispatcher"
	"textops/sources"
	"textops/transformations"
)

const (
	DefaultPath            = ".textops.yaml"
	DefaultServerAddr      = ":8470"
	DefaultOutputDirectory = "generated"

	envPrefix = "TEXTOPS__"
	envDelim  = "__"
)

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type ExecutionOutput struct {
	Directory string `koanf:"directory"`
	// Suffix is appended to each document name to form its file name.
	Suffix string `koanf:"suffix"`
}

// Execution is a named, repeatable task: gather documents from the sources that match
// Contexts, run Transformations over each and write the results to Output.Directory.
type Execution struct {
	Name            string                   `koanf:"name"`
	Output          ExecutionOutput          `koanf:"output"`
	Contexts        []string                 `koanf:"contexts"`
	KubeContext     string                   `koanf:"kube-context"`
	Transformations []transformations.Config `koanf:"transformations"`
}

type Config struct {
	Strict     bool             `koanf:"strict"`
	Log        LogConfig        `koanf:"log"`
	Server     ServerConfig     `koanf:"server"`
	Contexts   []string         `koanf:"contexts"`
	Sources    []sources.Source `koanf:"sources"`
	Executions []Execution      `koanf:"executions"`
}

// Load reads path when it exists and overlays the environment. A missing file is not
// an error; the defaults and environment still apply.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, envDelim, func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode configuration: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	for i := range c.Executions {
		if c.Executions[i].Output.Directory == "" {
			c.Executions[i].Output.Directory = DefaultOutputDirectory
		}
	}
}

// Validate checks execution names and source types.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Executions))
	for i, exec := range c.Executions {
		if exec.Name == "" {
			return fmt.Errorf("execution %d has no name", i+1)
		}
		if seen[exec.Name] {
			return fmt.Errorf("execution %q is defined more than once", exec.Name)
		}
		seen[exec.Name] = true
	}
	for _, source := range c.Sources {
		if source.Type == "" {
			return fmt.Errorf("type is required for source %q", source.Name)
		}
		if !sources.IsKnownType(source.Type) {
			return fmt.Errorf("unknown source type %q for source %q", source.Type, source.Name)
		}
	}
	return nil
}

// Policy returns the unknown-identifier policy for dispatchers built from c.
func (c *Config) Policy() dispatcher.Policy {
	if c.Strict {
		return dispatcher.Strict
	}
	return dispatcher.PassThrough
}

// Execution returns the execution called name.
func (c *Config) Execution(name string) (Execution, bool) {
	for _, exec := range c.Executions {
		if exec.Name == name {
			return exec, true
		}
	}
	return Execution{}, false
}

// ExecutionNames lists executions in file order.
func (c *Config) ExecutionNames() []string {
	names := make([]string, 0, len(c.Executions))
	for _, exec := range c.Executions {
		names = append(names, exec.Name)
	}
	return names
}
