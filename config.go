// Copyright (C) 2022  Shanhu Tech Inc.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package vrbuild

import (
	"path"
	"path/filepath"
	"sort"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonx"
)

// Target is a program that can be compiled and packaged into an image.
type Target struct {
	Name   string
	Source string // Go package or directory to build.
	Output string // Output binary.
	Dir    string // Build context directory, where the Dockerfile is.
	Image  string
	Tag    string
}

// Config provides the configuration to start a builder.
type Config struct {
	Root     string // Root directory; relative paths resolve against it.
	Registry string // Docker registry for output tagging.

	GoBin        string
	GoBuildFlags []string `json:",omitempty"`
	GoEnv        []string `json:",omitempty"`

	DockerBin string

	// Engine selects how images are listed, removed and pushed. "cli"
	// runs the docker command, "api" talks to the docker engine.
	Engine string

	// SumDir is where image sums are saved. Empty disables image sums.
	SumDir string `json:",omitempty"`

	// Verbose logs the captured output of successful commands.
	Verbose bool `json:",omitempty"`

	Targets map[string]*Target
}

// Image engines.
const (
	EngineCLI = "cli"
	EngineAPI = "api"
)

const (
	defaultRegistry = "10.0.0.4:5000"
	defaultTag      = "0.0.1"
)

func defaultTarget(name string) *Target {
	bin := "virtualrouter-" + name
	dir := path.Join("build", name)
	return &Target{
		Name:   name,
		Source: "./" + path.Join("cmd", name),
		Output: path.Join(dir, bin),
		Dir:    dir,
		Image:  bin,
		Tag:    defaultTag,
	}
}

// DefaultConfig returns the built-in configuration, which builds the
// virtual router daemon and controller.
func DefaultConfig() *Config {
	return &Config{
		Root:         ".",
		Registry:     defaultRegistry,
		GoBin:        "go",
		GoBuildFlags: []string{"-a"},
		GoEnv:        []string{"CGO_ENABLED=0", "GOOS=linux"},
		DockerBin:    "docker",
		Engine:       EngineCLI,
		Targets: map[string]*Target{
			"daemon":     defaultTarget("daemon"),
			"controller": defaultTarget("controller"),
		},
	}
}

// ReadConfig reads a config file on top of the default config. The file
// uses jsonx syntax, not plain JSON. A target listed in the file replaces
// the default one of the same name.
func ReadConfig(f string) (*Config, error) {
	c := DefaultConfig()
	if err := jsonx.ReadFile(f, c); err != nil {
		return nil, errcode.Annotate(err, "read config")
	}
	for name, t := range c.Targets {
		if t == nil {
			delete(c.Targets, name)
			continue
		}
		if t.Name == "" {
			t.Name = name
		}
	}
	return c, nil
}

// TargetNames returns the sorted names of the configured targets.
func (c *Config) TargetNames() []string {
	var names []string
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target looks up a target by name.
func (c *Config) Target(name string) (*Target, error) {
	if name == "" {
		return nil, errcode.InvalidArgf("program not specified")
	}
	t, ok := c.Targets[name]
	if !ok {
		return nil, errcode.InvalidArgf(
			"unknown program %q, want one of %q", name, c.TargetNames(),
		)
	}
	return t, nil
}

// ImageRepo returns the image repository of a target, including the
// registry.
func (c *Config) ImageRepo(t *Target) string {
	if c.Registry == "" {
		return t.Image
	}
	return path.Join(c.Registry, t.Image)
}

// ImageRef returns the fully-qualified image reference of a target.
func (c *Config) ImageRef(t *Target) string {
	repo := c.ImageRepo(t)
	if t.Tag == "" {
		return repo
	}
	return repo + ":" + t.Tag
}

func (c *Config) path(p string) string {
	if filepath.IsAbs(p) || c.Root == "" {
		return filepath.FromSlash(p)
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}
