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
	"os"
	"path/filepath"

	"shanhu.io/misc/errcode"
)

func (c *Config) goBuildArgs(t *Target) []string {
	args := []string{"build"}
	args = append(args, c.GoBuildFlags...)
	return append(args, "-o", t.Output, t.Source)
}

// GoBuild compiles the binary of a target.
func (b *Builder) GoBuild(t *Target) (*Output, error) {
	c := b.config
	outDir := filepath.Dir(c.path(t.Output))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errcode.Annotate(err, "make output dir")
	}

	log.Printf("go build %s -> %s", t.Source, t.Output)
	out, err := b.runner.Run(&Command{
		Dir:  c.path(""),
		Bin:  c.GoBin,
		Args: c.goBuildArgs(t),
		Env:  c.GoEnv,
	})
	if err != nil {
		return out, errcode.Annotate(err, "go build")
	}
	return out, nil
}
