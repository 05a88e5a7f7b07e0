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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecRunner(t *testing.T) {
	r := new(ExecRunner)
	out, err := r.Run(&Command{
		Bin:  "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("printing to stdout and stderr is not a failure: %s", err)
	}
	if out.Stdout != "out\n" {
		t.Errorf("got stdout %q", out.Stdout)
	}
	if out.Stderr != "err\n" {
		t.Errorf("got stderr %q", out.Stderr)
	}
}

func TestExecRunnerExitCode(t *testing.T) {
	r := new(ExecRunner)
	out, err := r.Run(&Command{
		Bin:  "sh",
		Args: []string{"-c", "echo oops >&2; exit 3"},
	})
	if err == nil {
		t.Fatal("got no error for exit code 3")
	}
	if !strings.Contains(err.Error(), "exit with code: 3") {
		t.Errorf("got error %q", err)
	}
	if out == nil || out.Stderr != "oops\n" {
		t.Errorf("want output kept on failure, got %+v", out)
	}
}

func TestExecRunnerSilentFailure(t *testing.T) {
	r := new(ExecRunner)
	out, err := r.Run(&Command{Bin: "sh", Args: []string{"-c", "exit 1"}})
	if err == nil {
		t.Fatal("got no error for a silent failure")
	}
	if !out.Empty() {
		t.Errorf("got output %+v", out)
	}
}

func TestExecRunnerDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	if err := os.WriteFile(marker, []byte("here"), 0600); err != nil {
		t.Fatal(err)
	}

	r := new(ExecRunner)
	out, err := r.Run(&Command{
		Dir:  dir,
		Bin:  "sh",
		Args: []string{"-c", `cat marker; echo " $VRBUILD_TEST"`},
		Env:  []string{"VRBUILD_TEST=hello"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := "here hello\n"; out.Stdout != want {
		t.Errorf("got %q, want %q", out.Stdout, want)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := new(ExecRunner)
	if _, err := r.Run(&Command{Bin: "vrbuild-no-such-binary"}); err == nil {
		t.Error("got no error for a missing binary")
	}
}

func TestExecRunnerEnvAllowList(t *testing.T) {
	t.Setenv("VRBUILD_SECRET", "leaked")
	for _, k := range copyEnvs {
		v, ok := os.LookupEnv(k)
		if !ok {
			continue
		}
		k := k
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Setenv(k, v) })
	}

	r := new(ExecRunner)
	out, err := r.Run(&Command{
		Bin:  "/bin/sh",
		Args: []string{"-c", `echo "[$VRBUILD_SECRET]"`},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := "[]\n"; out.Stdout != want {
		t.Errorf("got %q, want %q", out.Stdout, want)
	}
}
