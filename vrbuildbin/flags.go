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

package vrbuildbin

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"shanhu.io/vrbuild"
)

type options struct {
	program string
	config  string
	root    string

	all         bool
	goBuild     bool
	dockerBuild bool
	dockerPush  bool
	clean       bool

	registry string
	engine   string
	sums     string
	verbose  bool
}

// Flags are all registered with a name and a long name. The flag package
// takes both "-name" and "--name".
func declareFlags(flags *flag.FlagSet, opts *options) {
	programs := strings.Join(vrbuild.DefaultConfig().TargetNames(), " or ")
	programUsage := "program to build: " + programs
	flags.StringVar(&opts.program, "p", "", programUsage)
	flags.StringVar(&opts.program, "program", "", programUsage)

	allUsage := "build, build docker, push and clean"
	flags.BoolVar(&opts.all, "a", false, allUsage)
	flags.BoolVar(&opts.all, "all", false, allUsage)

	flags.BoolVar(&opts.goBuild, "gobuild", false, "compile the binary")
	flags.BoolVar(
		&opts.dockerBuild, "dockerbuild", false, "build the docker image",
	)
	flags.BoolVar(
		&opts.dockerPush, "dockerpush", false,
		"push the docker image to the registry",
	)
	flags.BoolVar(&opts.clean, "clean", false, "remove the local image")

	flags.StringVar(&opts.config, "config", "", "config file, optional")
	flags.StringVar(&opts.root, "root", "", "overrides the root directory")
	flags.StringVar(
		&opts.registry, "registry", "", "overrides the docker registry",
	)
	flags.StringVar(
		&opts.engine, "engine", "",
		`overrides how images are managed: "cli" or "api"`,
	)
	flags.StringVar(
		&opts.sums, "sums", "", "directory to save image sums, optional",
	)
	flags.BoolVar(
		&opts.verbose, "v", false, "print the output of successful commands",
	)
}

func (o *options) actions() []string {
	if o.all {
		return vrbuild.Actions
	}

	var actions []string
	for _, a := range []struct {
		on     bool
		action string
	}{
		{o.goBuild, vrbuild.ActionBuild},
		{o.dockerBuild, vrbuild.ActionDocker},
		{o.dockerPush, vrbuild.ActionPush},
		{o.clean, vrbuild.ActionClean},
	} {
		if a.on {
			actions = append(actions, a.action)
		}
	}
	return actions
}

func (o *options) apply(c *vrbuild.Config) {
	if o.root != "" {
		c.Root = o.root
	}
	if o.registry != "" {
		c.Registry = o.registry
	}
	if o.engine != "" {
		c.Engine = o.engine
	}
	if o.sums != "" {
		c.SumDir = o.sums
	}
	if o.verbose {
		c.Verbose = true
	}
}

func printUsage(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "usage: vrbuild -p <program> <action flags...>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "examples:")
	fmt.Fprintln(w, "  vrbuild -p daemon --all")
	fmt.Fprintln(w, "  vrbuild -p controller --gobuild --dockerbuild")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	flags.SetOutput(w)
	flags.PrintDefaults()
}
