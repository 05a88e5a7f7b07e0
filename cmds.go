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
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"shanhu.io/misc/osutil"
)

// Command is an external command to run.
type Command struct {
	Dir  string
	Bin  string
	Args []string
	Env  []string // Extra environment variables.
}

func (c *Command) String() string {
	return strings.Join(append([]string{c.Bin}, c.Args...), " ")
}

// Output is the captured output of a command.
type Output struct {
	Stdout string
	Stderr string
}

// Empty checks if the command printed nothing.
func (o *Output) Empty() bool {
	return o == nil || (o.Stdout == "" && o.Stderr == "")
}

// Runner runs external commands to completion.
type Runner interface {
	// Run returns the captured output even when the command fails.
	// Failure is decided by the exit status only.
	Run(c *Command) (*Output, error)
}

var copyEnvs = []string{
	"HOME",
	"PATH",
	"SSH_AUTH_SOCK",
	"GOPATH",
	"GOCACHE",
	"GOPROXY",
	"GOPRIVATE",
	"GOFLAGS",
	"DOCKER_HOST",
	"DOCKER_CONFIG",
	"DOCKER_CERT_PATH",
	"DOCKER_TLS_VERIFY",
}

type execJob struct {
	c      *Command
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newExecJob(c *Command) *execJob {
	return &execJob{
		c:      c,
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
	}
}

func (j *execJob) command() *exec.Cmd {
	cmd := exec.Command(j.c.Bin, j.c.Args...)
	cmd.Dir = j.c.Dir
	cmd.Stdout = j.stdout
	cmd.Stderr = j.stderr
	cmd.Env = []string{}
	for _, k := range copyEnvs {
		osutil.CmdCopyEnv(cmd, k)
	}
	cmd.Env = append(cmd.Env, j.c.Env...)
	return cmd
}

func (j *execJob) output() *Output {
	return &Output{
		Stdout: j.stdout.String(),
		Stderr: j.stderr.String(),
	}
}

// ExecRunner runs commands as child processes, with only a small set of
// environment variables passed through.
type ExecRunner struct{}

// Run runs the command and waits for it to exit.
func (r *ExecRunner) Run(c *Command) (*Output, error) {
	j := newExecJob(c)
	if err := j.command().Run(); err != nil {
		if exit, ok := err.(*exec.ExitError); ok {
			return j.output(), fmt.Errorf(
				"%q: exit with code: %d", c.String(), exit.ExitCode(),
			)
		}
		return j.output(), fmt.Errorf("%q: %w", c.String(), err)
	}
	return j.output(), nil
}
