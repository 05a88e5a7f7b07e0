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
	"strings"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/strutil"
)

// imageStore manages images in the local docker daemon.
type imageStore interface {
	// list returns the IDs of the local images matching ref.
	list(ref string) ([]string, error)
	remove(ids []string) (*Output, error)
	push(ref string) (*Output, error)
}

// cliImages manages images with the docker command line tool.
type cliImages struct {
	runner Runner
	bin    string
}

func newCLIImages(r Runner, bin string) *cliImages {
	return &cliImages{runner: r, bin: bin}
}

func (s *cliImages) docker(args ...string) (*Output, error) {
	return s.runner.Run(&Command{Bin: s.bin, Args: args})
}

func (s *cliImages) list(ref string) ([]string, error) {
	out, err := s.docker("images", "-f", "reference="+ref, "-q")
	if err != nil {
		return nil, errcode.Annotate(err, "list images")
	}
	return uniqueIDs(strings.Fields(out.Stdout)), nil
}

func (s *cliImages) remove(ids []string) (*Output, error) {
	args := append([]string{"rmi"}, ids...)
	return s.docker(args...)
}

func (s *cliImages) push(ref string) (*Output, error) {
	return s.docker("push", ref)
}

// uniqueIDs dedups image IDs. An image tagged more than once is listed
// once per tag.
func uniqueIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return strutil.SortedList(strutil.MakeSet(ids))
}
