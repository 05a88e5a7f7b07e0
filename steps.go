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

// Actions that can be run on a target.
const (
	ActionBuild  = "build"  // Compile the binary.
	ActionDocker = "docker" // Build the image.
	ActionPush   = "push"   // Push the image to the registry.
	ActionClean  = "clean"  // Remove the local image.
)

// Actions lists all actions in the order that they run.
var Actions = []string{
	ActionBuild,
	ActionDocker,
	ActionPush,
	ActionClean,
}

// Step is a named step of a build.
type Step struct {
	Name string
	Run  func() (*Output, error)
}

// StepResult is the result of running a step.
type StepResult struct {
	Name   string
	Output *Output
	Err    error
}

func (b *Builder) step(action string, t *Target) *Step {
	var f func(t *Target) (*Output, error)
	switch action {
	case ActionBuild:
		f = b.GoBuild
	case ActionDocker:
		f = b.BuildDocker
	case ActionPush:
		f = b.Push
	case ActionClean:
		f = b.CleanImage
	default:
		return nil
	}
	return &Step{
		Name: action,
		Run:  func() (*Output, error) { return f(t) },
	}
}

// Steps returns the steps for running the actions on a target. The steps
// are always in the order of Actions, no matter the order of the given
// actions.
func (b *Builder) Steps(t *Target, actions []string) ([]*Step, error) {
	want := make(map[string]bool)
	for _, a := range actions {
		if b.step(a, t) == nil {
			return nil, errcode.InvalidArgf("unknown action %q", a)
		}
		want[a] = true
	}
	if len(want) == 0 {
		return nil, errcode.InvalidArgf("no action specified")
	}

	var steps []*Step
	for _, a := range Actions {
		if want[a] {
			steps = append(steps, b.step(a, t))
		}
	}
	return steps, nil
}

// RunSteps runs the steps one by one, and stops at the first step that
// fails. It returns the results of the steps that have run, the failed one
// included.
func RunSteps(steps []*Step) ([]*StepResult, error) {
	var results []*StepResult
	for _, step := range steps {
		out, err := step.Run()
		results = append(results, &StepResult{
			Name:   step.Name,
			Output: out,
			Err:    err,
		})
		if err != nil {
			return results, errcode.Annotatef(err, "step %s", step.Name)
		}
		log.Printf("%s done", step.Name)
	}
	return results, nil
}
