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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/ccam-tools/runccam"
	"github.com/ccam-tools/runccam/archive"
)

// reconfigure returns tools for c that share the store and fake
// launchers of tl.
func reconfigure(c runccam.RunConfig, tl *Tools) *Tools {
	n := New(c, tl.Extractor.Store, nil)
	n.Launcher.Mpirun = tl.Launcher.Mpirun
	return n
}

func rawOutput(t *testing.T, dir, base string) {
	touch(t, filepath.Join(dir, base+".000000"), filepath.Join(dir, base+".000001"))
}

// toolNames returns the names of the programs recorded in calls,
// ignoring the parallel launcher.
func toolNames(calls []string) []string {
	var o []string
	for _, c := range calls {
		name := strings.Fields(c)[0]
		if name != "mpirun" {
			o = append(o, name)
		}
	}
	return o
}

func TestExtract(t *testing.T) {
	ctx := context.Background()
	t.Run("tar", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		work, home := c.Dirs.Work, c.Dirs.Home
		rawOutput(t, work, "test.202001")
		rawOutput(t, work, "Resttest.201912")
		rawOutput(t, work, "Resttest.202001")

		if err := tl.Extractor.Extract(ctx, unit(t, c, jan)); err != nil {
			t.Fatal(err)
		}
		checkExists(t,
			filepath.Join(home, archive.Daily, "test.202001.nc"),
			filepath.Join(home, archive.Output, "test.202001.tar"),
			filepath.Join(work, "Resttest.202001.000000"),
		)
		checkMissing(t,
			filepath.Join(work, "test.202001.000000"),
			filepath.Join(work, "test.202001.tar"),
			filepath.Join(work, "Resttest.201912.000000"),
			filepath.Join(work, "Resttest.201912.000001"),
		)
		files, err := archive.Extract(ctx, filepath.Join(home, archive.Output, "test.202001.tar"), filepath.Join(dir, "x"))
		if err != nil {
			t.Fatal(err)
		}
		sort.Strings(files)
		if len(files) != 2 || filepath.Base(files[1]) != "test.202001.000001" {
			t.Errorf("archive contents: %v", files)
		}
	})
	t.Run("keep", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		c.Archive = runccam.KeepRaw
		c.OutputFormat = runccam.CORDEXOutput
		c.SurfaceOutput = runccam.LatLonSurfaceOutput
		c.KtcSurf = 60
		tl = reconfigure(c, tl)
		work, home := c.Dirs.Work, c.Dirs.Home
		rawOutput(t, work, "test.202001")
		rawOutput(t, work, "surf.test.202001")

		if err := tl.Extractor.Extract(ctx, unit(t, c, jan)); err != nil {
			t.Fatal(err)
		}
		calls := readCalls(t, dir)
		if len(calls) != 4 || calls[0] != "mpirun -np 2 "+c.Tools.Pcc2hist+" --cordex" {
			t.Errorf("calls: %v", calls)
		}
		checkExists(t,
			filepath.Join(home, archive.Daily, "test.202001.nc"),
			filepath.Join(home, archive.Daily, "surf.test.202001.nc"),
			filepath.Join(home, archive.Output, "test.202001.000000"),
			filepath.Join(home, archive.Output, "test.202001.000001"),
		)
		checkMissing(t,
			filepath.Join(work, "test.202001.000000"),
			filepath.Join(work, "surf.test.202001.000000"),
		)
	})
	t.Run("delete raw surface", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		c.Archive = runccam.DeleteRaw
		c.SurfaceOutput = runccam.RawSurfaceOutput
		c.KtcSurf = 60
		tl = reconfigure(c, tl)
		work, home := c.Dirs.Work, c.Dirs.Home
		rawOutput(t, work, "test.202001")
		rawOutput(t, work, "surf.test.202001")

		if err := tl.Extractor.Extract(ctx, unit(t, c, jan)); err != nil {
			t.Fatal(err)
		}
		checkMissing(t,
			filepath.Join(work, "test.202001.000000"),
			filepath.Join(work, "surf.test.202001.000001"),
			filepath.Join(home, archive.Output, "test.202001.tar"),
		)
		names, err := filepath.Glob(filepath.Join(home, archive.Output, "*"))
		if err != nil {
			t.Fatal(err)
		}
		if len(names) != 0 {
			t.Errorf("output directory: %v", names)
		}
	})
	t.Run("ctm", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		c.OutputFormat = runccam.CTMOutput
		tl = reconfigure(c, tl)
		work, home := c.Dirs.Work, c.Dirs.Home
		rawOutput(t, work, "test.202002")

		feb := runccam.Date{Year: 2020, Month: 2, Day: 1}
		if err := tl.Extractor.Extract(ctx, unit(t, c, feb)); err != nil {
			t.Fatal(err)
		}
		if n := len(toolNames(readCalls(t, dir))); n != 29 {
			t.Errorf("%d != 29 post-processor runs", n)
		}
		tar := filepath.Join(home, archive.Daily, "ctm_202002.tar")
		checkExists(t, tar)
		checkMissing(t,
			filepath.Join(work, "ccam_20200201.nc"),
			filepath.Join(work, "ccam_20200229.nc"),
		)
		files, err := archive.Extract(ctx, tar, filepath.Join(dir, "x"))
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 29 {
			t.Errorf("%d != 29 daily files", len(files))
		}
	})
	t.Run("december", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		work, home := c.Dirs.Work, c.Dirs.Home
		dec := runccam.Date{Year: 2020, Month: 12, Day: 1}
		rawOutput(t, work, "test.202012")
		rawOutput(t, work, "Resttest.202003")
		rawOutput(t, work, "Resttest.202011")
		rawOutput(t, work, "Resttest.202012")
		touch(t, filepath.Join(work, "prnew.20201101.test"), filepath.Join(work, "prnew.20201201.test"))

		if err := tl.Extractor.Extract(ctx, unit(t, c, dec)); err != nil {
			t.Fatal(err)
		}
		checkExists(t,
			filepath.Join(home, archive.Restart, "Resttest.202012.tar"),
			filepath.Join(work, "Resttest.202012.000000"),
			filepath.Join(work, "Resttest.202012.000001"),
		)
		checkMissing(t,
			filepath.Join(work, "Resttest.202003.000000"),
			filepath.Join(work, "Resttest.202011.000001"),
			filepath.Join(work, "prnew.20201101.test"),
			filepath.Join(work, "prnew.20201201.test"),
			filepath.Join(work, "Resttest.202012.tar"),
		)
	})
	t.Run("missing", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		err := tl.Extractor.Extract(ctx, unit(t, c, jan))
		if !errors.Is(err, runccam.ErrMissingArtifact) {
			t.Errorf("got %v", err)
		}

		c.Mode = runccam.LandSurfaceOnly
		tl = reconfigure(c, tl)
		if err = tl.Extractor.Extract(ctx, unit(t, c, jan)); err != nil {
			t.Error(err)
		}
		if calls := readCalls(t, dir); len(calls) != 0 {
			t.Errorf("calls: %v", calls)
		}
	})
}

func TestExtractPostprocessOnly(t *testing.T) {
	ctx := context.Background()
	t.Run("tar", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		c.Mode = runccam.PostprocessOnly
		tl = reconfigure(c, tl)
		work, home := c.Dirs.Work, c.Dirs.Home

		rawOutput(t, c.Dirs.Boundary, "test.202001")
		files := []string{
			filepath.Join(c.Dirs.Boundary, "test.202001.000000"),
			filepath.Join(c.Dirs.Boundary, "test.202001.000001"),
		}
		tar := filepath.Join(home, archive.Output, "test.202001.tar")
		if err := archive.Bundle(ctx, tar, files); err != nil {
			t.Fatal(err)
		}

		if err := tl.Extractor.Extract(ctx, unit(t, c, jan)); err != nil {
			t.Fatal(err)
		}
		checkExists(t,
			tar,
			filepath.Join(home, archive.Daily, "test.202001.nc"),
			// The raw output belongs to an earlier run and is left alone.
			filepath.Join(work, "test.202001.000000"),
			filepath.Join(work, "test.202001.000001"),
		)
		checkMissing(t, filepath.Join(work, "test.202001.tar"))

		err := tl.Extractor.Extract(ctx, unit(t, c, runccam.Date{Year: 2020, Month: 2, Day: 1}))
		if !errors.Is(err, runccam.ErrMissingArtifact) || !strings.Contains(err.Error(), "test.202002.000000") {
			t.Errorf("got %v", err)
		}
	})
	t.Run("daily", func(t *testing.T) {
		dir, c, tl := setup(t)
		defer os.RemoveAll(dir)
		c.Mode = runccam.PostprocessOnly
		c.DailyPostprocess = true
		tl = reconfigure(c, tl)
		work, home := c.Dirs.Work, c.Dirs.Home
		rawOutput(t, filepath.Join(home, archive.Output), "test.202001")

		u := unit(t, c, runccam.Date{Year: 2020, Month: 1, Day: 3})
		u.Daily = true
		if err := tl.Extractor.Extract(ctx, u); err != nil {
			t.Fatal(err)
		}
		checkExists(t, filepath.Join(home, archive.Daily, "test.20200103.nc"))
		for _, f := range []string{"test.202001.000000", "test.202001.000001"} {
			if _, err := os.Readlink(filepath.Join(work, f)); err != nil {
				t.Errorf("%s should be staged: %v", f, err)
			}
		}
		nml := readFile(t, filepath.Join(work, "cc.nml"))
		if !strings.Contains(nml, "kta=2880   ktb=4320") {
			t.Errorf("cc.nml:\n%s", nml)
		}
	})
}
