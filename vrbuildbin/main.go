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
	"os"

	"shanhu.io/misc/errcode"
	"shanhu.io/vrbuild"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1 // A step failed.
	exitUsage = 2 // Invalid arguments; nothing was run.
)

type newBuilderFunc func(c *vrbuild.Config) (*vrbuild.Builder, error)

func loadConfig(opts *options) (*vrbuild.Config, error) {
	if opts.config == "" {
		return vrbuild.DefaultConfig(), nil
	}
	return vrbuild.ReadConfig(opts.config)
}

func printFailure(w io.Writer, err error, results []*vrbuild.StepResult) {
	fmt.Fprintln(w, "error:", err)
	if len(results) == 0 {
		return
	}
	last := results[len(results)-1]
	if last.Err == nil || last.Output.Empty() {
		return
	}
	if s := last.Output.Stdout; s != "" {
		fmt.Fprintf(w, "--- %s stdout ---\n%s", last.Name, s)
	}
	if s := last.Output.Stderr; s != "" {
		fmt.Fprintf(w, "--- %s stderr ---\n%s", last.Name, s)
	}
}

func run(
	args []string, stdout, stderr io.Writer, newBuilder newBuilderFunc,
) int {
	flags := flag.NewFlagSet("vrbuild", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {}
	opts := new(options)
	declareFlags(flags, opts)

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printUsage(stdout, flags)
			return exitOK
		}
		printUsage(stderr, flags)
		return exitUsage
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %q\n", flags.Args())
		printUsage(stderr, flags)
		return exitUsage
	}

	config, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}
	opts.apply(config)

	t, err := config.Target(opts.program)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		printUsage(stderr, flags)
		return exitUsage
	}
	actions := opts.actions()
	if len(actions) == 0 {
		fmt.Fprintln(stderr, "error: choose at least one action")
		printUsage(stderr, flags)
		return exitUsage
	}

	b, err := newBuilder(config)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if errcode.IsInvalidArg(err) {
			return exitUsage
		}
		return exitFail
	}

	results, err := b.Run(t, actions)
	if err != nil {
		printFailure(stderr, err, results)
		return exitFail
	}
	return exitOK
}

// Main is the entrance for the vrbuild binary.
func Main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, vrbuild.NewBuilder))
}
