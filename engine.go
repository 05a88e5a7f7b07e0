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
	"context"
	"io"
	"strings"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"shanhu.io/misc/errcode"
)

// engineAPI is the part of the docker engine client used for managing
// images.
type engineAPI interface {
	ImageList(ctx context.Context, opts image.ListOptions) (
		[]image.Summary, error,
	)
	ImageRemove(ctx context.Context, id string, opts image.RemoveOptions) (
		[]image.DeleteResponse, error,
	)
	ImagePush(ctx context.Context, ref string, opts image.PushOptions) (
		io.ReadCloser, error,
	)
}

// Base64 of "{}". The engine wants an auth header even for registries
// that take none.
const emptyRegistryAuth = "e30="

// engineImages manages images over the docker engine API.
type engineImages struct {
	api engineAPI
}

func newEngineImages() (*engineImages, error) {
	c, err := client.NewClientWithOpts(
		client.FromEnv, client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, errcode.Annotate(err, "create docker client")
	}
	return &engineImages{api: c}, nil
}

func (s *engineImages) list(ref string) ([]string, error) {
	ctx := context.Background()
	images, err := s.api.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return nil, errcode.Annotate(err, "list images")
	}
	var ids []string
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return uniqueIDs(ids), nil
}

func (s *engineImages) remove(ids []string) (*Output, error) {
	ctx := context.Background()
	out := new(strings.Builder)
	for _, id := range ids {
		resps, err := s.api.ImageRemove(ctx, id, image.RemoveOptions{
			PruneChildren: true,
		})
		for _, resp := range resps {
			if resp.Untagged != "" {
				out.WriteString("Untagged: " + resp.Untagged + "\n")
			}
			if resp.Deleted != "" {
				out.WriteString("Deleted: " + resp.Deleted + "\n")
			}
		}
		if err != nil {
			return &Output{Stdout: out.String()}, errcode.Annotatef(
				err, "remove image %q", id,
			)
		}
	}
	return &Output{Stdout: out.String()}, nil
}

func (s *engineImages) push(ref string) (*Output, error) {
	ctx := context.Background()
	rc, err := s.api.ImagePush(ctx, ref, image.PushOptions{
		RegistryAuth: emptyRegistryAuth,
	})
	if err != nil {
		return nil, errcode.Annotatef(err, "push %q", ref)
	}
	defer rc.Close()

	out := new(bytes.Buffer)
	if err := jsonmessage.DisplayJSONMessagesStream(
		rc, out, 0, false, nil,
	); err != nil {
		return &Output{Stdout: out.String()}, errcode.Annotatef(
			err, "push %q", ref,
		)
	}
	return &Output{Stdout: out.String()}, nil
}
