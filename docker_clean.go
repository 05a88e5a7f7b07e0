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
	"strings"

	"shanhu.io/misc/errcode"
)

// CleanImage removes the local image of a target, if there is one.
func (b *Builder) CleanImage(t *Target) (*Output, error) {
	ref := b.config.ImageRef(t)
	ids, err := b.images.list(ref)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		log.Printf("there is no image %s", ref)
		return nil, nil
	}

	log.Printf("deleting %s (%s)", ref, strings.Join(ids, " "))
	out, err := b.images.remove(ids)
	if err != nil {
		return out, errcode.Annotate(err, "remove image")
	}
	return out, nil
}
