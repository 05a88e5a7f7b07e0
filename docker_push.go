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

// Push pushes the image of a target to the registry.
func (b *Builder) Push(t *Target) (*Output, error) {
	c := b.config
	ref := c.ImageRef(t)
	log.Printf("docker push %s", ref)
	out, err := b.images.push(ref)
	if err != nil {
		return out, errcode.Annotate(err, "docker push")
	}

	// Pushing fills in the registry digest.
	if b.sums != nil {
		if err := b.sums.save(t, c.ImageRepo(t), ref); err != nil {
			return out, errcode.Annotate(err, "save image sum")
		}
	}
	return out, nil
}
