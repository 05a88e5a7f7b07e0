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
	"path/filepath"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/osutil"
)

const dockerfileName = "Dockerfile"

func checkBuildContext(dir string) error {
	isDir, err := osutil.IsDir(dir)
	if err != nil {
		return errcode.Annotate(err, "check build context")
	}
	if !isDir {
		return errcode.NotFoundf("build context %q not found", dir)
	}

	f := filepath.Join(dir, dockerfileName)
	isFile, err := osutil.IsRegular(f)
	if err != nil {
		return errcode.Annotate(err, "check Dockerfile")
	}
	if !isFile {
		return errcode.NotFoundf("%q not found", f)
	}
	return nil
}

// BuildDocker builds the image of a target from its build context. A
// stale local image of the same reference is removed first, on a best
// effort basis.
func (b *Builder) BuildDocker(t *Target) (*Output, error) {
	c := b.config
	dir := c.path(t.Dir)
	if err := checkBuildContext(dir); err != nil {
		return nil, err
	}

	if _, err := b.CleanImage(t); err != nil {
		log.Printf("clean old image: %s", err)
	}

	ref := c.ImageRef(t)
	log.Printf("docker build %s", ref)
	out, err := b.runner.Run(&Command{
		Dir:  dir,
		Bin:  c.DockerBin,
		Args: []string{"build", "-t", ref, "."},
	})
	if err != nil {
		return out, errcode.Annotate(err, "docker build")
	}

	if b.sums != nil {
		if err := b.sums.save(t, c.ImageRepo(t), ref); err != nil {
			return out, errcode.Annotate(err, "save image sum")
		}
	}
	return out, nil
}
