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
	"strings"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonutil"
	"shanhu.io/virgo/dock"
)

// ImageSum records the identity of a built image.
type ImageSum struct {
	Ref    string
	ID     string
	Digest string `json:",omitempty"` // Registry digest, once pushed.
}

func newImageSum(info *dock.ImageInfo, ref, repo string) *ImageSum {
	sum := &ImageSum{Ref: ref, ID: info.ID}
	digestPrefix := repo + "@"
	for _, d := range info.RepoDigests {
		if strings.HasPrefix(d, digestPrefix) {
			sum.Digest = strings.TrimPrefix(d, digestPrefix)
			break
		}
	}
	return sum
}

func imageSumFile(dir string, t *Target) string {
	return filepath.Join(dir, t.Name+".dockersum")
}

// ReadImageSum reads the image sum saved for a target.
func ReadImageSum(dir string, t *Target) (*ImageSum, error) {
	sum := new(ImageSum)
	if err := jsonutil.ReadFile(imageSumFile(dir, t), sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// imageInspector looks up an image in the docker daemon.
type imageInspector interface {
	inspect(ref string) (*dock.ImageInfo, error)
}

type dockInspector struct {
	client *dock.Client
}

func (d *dockInspector) inspect(ref string) (*dock.ImageInfo, error) {
	return dock.InspectImage(d.client, ref)
}

// dockerSocket returns the unix socket path of a DOCKER_HOST value. An
// empty host is the default socket.
func dockerSocket(host string) (string, error) {
	if host == "" {
		return "", nil
	}
	const prefix = "unix://"
	if !strings.HasPrefix(host, prefix) {
		return "", errcode.InvalidArgf(
			"image sums need a unix socket docker host, got %q", host,
		)
	}
	return strings.TrimPrefix(host, prefix), nil
}

type imageSummer struct {
	dir       string
	inspector imageInspector
}

// newImageSummer creates an image summer that inspects images on the same
// daemon as the docker command and the engine client, following
// DOCKER_HOST.
func newImageSummer(dir string) (*imageSummer, error) {
	sock, err := dockerSocket(os.Getenv("DOCKER_HOST"))
	if err != nil {
		return nil, err
	}
	return &imageSummer{
		dir:       dir,
		inspector: &dockInspector{client: dock.NewUnixClient(sock)},
	}, nil
}

func (s *imageSummer) save(t *Target, repo, ref string) error {
	info, err := s.inspector.inspect(ref)
	if err != nil {
		return errcode.Annotate(err, "inspect image")
	}
	sum := newImageSum(info, ref, repo)

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return errcode.Annotate(err, "make sum dir")
	}
	f := imageSumFile(s.dir, t)
	if err := jsonutil.WriteFile(f, sum); err != nil {
		return errcode.Annotate(err, "write image sum")
	}
	log.Printf("image %s is %s", ref, sum.ID)
	return nil
}
