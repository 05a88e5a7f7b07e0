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
	"log"

	"shanhu.io/misc/errcode"
)

// Builder builds the targets of a config.
type Builder struct {
	config *Config
	runner Runner
	images imageStore
	sums   *imageSummer
}

// NewBuilder creates a new builder that runs the go and docker commands
// as child processes.
func NewBuilder(config *Config) (*Builder, error) {
	b := NewRunnerBuilder(config, new(ExecRunner))

	switch config.Engine {
	case "", EngineCLI:
	case EngineAPI:
		images, err := newEngineImages()
		if err != nil {
			return nil, err
		}
		b.images = images
	default:
		return nil, errcode.InvalidArgf(
			"unknown image engine %q", config.Engine,
		)
	}

	if config.SumDir != "" {
		sums, err := newImageSummer(config.path(config.SumDir))
		if err != nil {
			return nil, err
		}
		b.sums = sums
	}
	return b, nil
}

// NewRunnerBuilder creates a builder that runs every external command,
// including image listing, removal and pushing, with r. It saves no image
// sums.
func NewRunnerBuilder(config *Config, r Runner) *Builder {
	return &Builder{
		config: config,
		runner: r,
		images: newCLIImages(r, config.DockerBin),
	}
}

// Config returns the builder's config.
func (b *Builder) Config() *Config { return b.config }

// Run runs the given actions on a target, in the fixed action order. It
// stops at the first failing step.
func (b *Builder) Run(t *Target, actions []string) ([]*StepResult, error) {
	steps, err := b.Steps(t, actions)
	if err != nil {
		return nil, err
	}
	log.Printf("build %s", t.Name)
	results, err := RunSteps(steps)
	if b.config.Verbose {
		for _, r := range results {
			if r.Err == nil {
				logOutput(r.Name, r.Output)
			}
		}
	}
	return results, err
}

func logOutput(name string, out *Output) {
	if out.Empty() {
		return
	}
	if out.Stdout != "" {
		log.Printf("%s stdout:\n%s", name, out.Stdout)
	}
	if out.Stderr != "" {
		log.Printf("%s stderr:\n%s", name, out.Stderr)
	}
}
