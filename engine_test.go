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
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/docker/docker/api/types/image"
)

type fakeEngine struct {
	images  []image.Summary
	listErr error
	listed  []string

	removed []string

	pushed     []string
	pushStream string
}

func (e *fakeEngine) ImageList(_ context.Context, opts image.ListOptions) (
	[]image.Summary, error,
) {
	e.listed = append(e.listed, opts.Filters.Get("reference")...)
	return e.images, e.listErr
}

func (e *fakeEngine) ImageRemove(
	_ context.Context, id string, _ image.RemoveOptions,
) ([]image.DeleteResponse, error) {
	e.removed = append(e.removed, id)
	return []image.DeleteResponse{{Deleted: id}}, nil
}

func (e *fakeEngine) ImagePush(
	_ context.Context, ref string, opts image.PushOptions,
) (io.ReadCloser, error) {
	if opts.RegistryAuth == "" {
		return nil, errors.New("missing registry auth")
	}
	e.pushed = append(e.pushed, ref)
	return io.NopCloser(strings.NewReader(e.pushStream)), nil
}

func engineBuilder(t *testing.T, e *fakeEngine) (*Builder, *fakeRunner) {
	c := testConfig(t)
	c.Engine = EngineAPI
	r := new(fakeRunner)
	b := NewRunnerBuilder(c, r)
	b.images = &engineImages{api: e}
	return b, r
}

func TestEngineCleanImage(t *testing.T) {
	e := &fakeEngine{
		images: []image.Summary{
			{ID: "sha256:bb"},
			{ID: "sha256:aa"},
			{ID: "sha256:bb"},
		},
	}
	b, r := engineBuilder(t, e)

	out, err := b.CleanImage(mustTarget(t, b.Config(), "daemon"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{daemonRef}; !reflect.DeepEqual(e.listed, want) {
		t.Errorf("listed %q, want %q", e.listed, want)
	}
	if want := []string{"sha256:aa", "sha256:bb"}; !reflect.DeepEqual(e.removed, want) {
		t.Errorf("removed %q, want %q", e.removed, want)
	}
	if !strings.Contains(out.Stdout, "Deleted: sha256:aa") {
		t.Errorf("got output %q", out.Stdout)
	}
	if len(r.cmds) != 0 {
		t.Errorf("ran commands %q", r.lines())
	}
}

func TestEngineCleanImageNoImage(t *testing.T) {
	e := new(fakeEngine)
	b, _ := engineBuilder(t, e)

	if _, err := b.CleanImage(mustTarget(t, b.Config(), "daemon")); err != nil {
		t.Fatal(err)
	}
	if len(e.removed) != 0 {
		t.Errorf("removed %q", e.removed)
	}
}

func TestEnginePush(t *testing.T) {
	e := &fakeEngine{
		pushStream: `{"status":"The push refers to repository"}` + "\n" +
			`{"status":"0.0.1: digest: sha256:cc size: 528"}` + "\n",
	}
	b, _ := engineBuilder(t, e)

	if _, err := b.Push(mustTarget(t, b.Config(), "daemon")); err != nil {
		t.Fatal(err)
	}
	if want := []string{daemonRef}; !reflect.DeepEqual(e.pushed, want) {
		t.Errorf("pushed %q, want %q", e.pushed, want)
	}
}

func TestEnginePushError(t *testing.T) {
	e := &fakeEngine{
		pushStream: `{"errorDetail":{"message":"denied"},"error":"denied"}` + "\n",
	}
	b, _ := engineBuilder(t, e)

	_, err := b.Push(mustTarget(t, b.Config(), "daemon"))
	if err == nil {
		t.Fatal("got no error")
	}
	if !strings.Contains(err.Error(), "denied") {
		t.Errorf("got error %q", err)
	}
}
