/*
Copyright © 2026 the runccam authors.
This file is part of runccam.

runccam is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

runccam is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with runccam.  If not, see <http://www.gnu.org/licenses/>.
*/

package tools

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ccam-tools/runccam"
)

func TestRegenerate(t *testing.T) {
	ctx := context.Background()
	t.Run("cable", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		if err := tl.Preparer.Regenerate(ctx, runccam.Stale); err != nil {
			t.Fatal(err)
		}
		want := []string{
			"terread",
			"igbpveg -s 1000",
			"ocnbath -s 1000",
			"casafield -t topout" + domain + " -i " +
				filepath.Join(c.Dirs.Install, "vegin", "casaNP_gridinfo_1dx1d.nc") + " -o casa" + domain,
		}
		if got := readCalls(t, dir); !reflect.DeepEqual(got, want) {
			t.Errorf("calls:\n%v\n!=\n%v", strings.Join(got, "\n"), strings.Join(want, "\n"))
		}
		for _, f := range runccam.RequiredArtifacts(domain) {
			checkExists(t, filepath.Join(c.VegDir(), f))
			checkMissing(t, filepath.Join(c.Dirs.Work, f))
		}
		checkExists(t, filepath.Join(c.Dirs.Work, "top.nml"), filepath.Join(c.Dirs.Work, "igbpveg.nml"))
	})
	t.Run("modis", func(t *testing.T) {
		dir, c, _ := setup(t)
		defer os.RemoveAll(dir)
		c.LandSurface = runccam.MODIS
		tl := New(c, nil, nil)
		if err := tl.Preparer.Regenerate(ctx, runccam.Stale); err != nil {
			t.Fatal(err)
		}
		calls := readCalls(t, dir)
		if len(calls) != 4 || calls[1] != "sibveg -s 1000" {
			t.Errorf("calls: %v", calls)
		}

		c.LandSurface = runccam.CABLE
		c.Machine = runccam.Cray
		os.Remove(filepath.Join(dir, "calls.log"))
		tl = New(c, nil, nil)
		tl.Launcher.Srun = filepath.Join(dir, "bin", "mpirun")
		if err := tl.Preparer.Regenerate(ctx, runccam.Stale); err != nil {
			t.Fatal(err)
		}
		// Every tool runs under srun on a Cray.
		if calls = readCalls(t, dir); len(calls) != 8 || calls[3] != "igbpveg -s 500" {
			t.Errorf("calls: %v", calls)
		}
	})
	t.Run("land use", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		if err := tl.Preparer.Regenerate(ctx, runccam.LandUseStale); !errors.Is(err, runccam.ErrMissingArtifact) {
			t.Fatalf("missing topography: %v", err)
		}
		if err := os.MkdirAll(c.VegDir(), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		touch(t,
			filepath.Join(c.VegDir(), "topout"+domain),
			filepath.Join(c.VegDir(), "bath"+domain),
			filepath.Join(c.VegDir(), "casa"+domain),
		)
		if err := tl.Preparer.Regenerate(ctx, runccam.LandUseStale); err != nil {
			t.Fatal(err)
		}
		want := []string{"igbpveg -s 1000"}
		if got := readCalls(t, dir); !reflect.DeepEqual(got, want) {
			t.Errorf("%v != %v", got, want)
		}
		for _, f := range runccam.RequiredArtifacts(domain) {
			checkExists(t, filepath.Join(c.VegDir(), f))
		}
	})
	t.Run("failure", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		if err := ioutil.WriteFile(c.Tools.Ocnbath, []byte("#!/bin/sh\nexit 1\n"), 0755); err != nil {
			t.Fatal(err)
		}
		err := tl.Preparer.Regenerate(ctx, runccam.Stale)
		var ce *runccam.CollaboratorError
		if !errors.As(err, &ce) || ce.Name != "ocnbath" {
			t.Fatalf("got %v", err)
		}
		checkMissing(t, filepath.Join(c.VegDir(), "topout"+domain))
	})
}
