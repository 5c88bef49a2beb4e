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
	"os"
	"path/filepath"
	"testing"

	"github.com/ccam-tools/runccam"
)

func TestProbeAttributes(t *testing.T) {
	dir, c, tl := setup(t)
	defer os.RemoveAll(dir)
	ctx := context.Background()
	p := tl.Probe

	ccam := filepath.Join(c.Dirs.Boundary, "ccam")
	gcm := filepath.Join(c.Dirs.Boundary, "gcm")
	writeNetCDF(t, ccam, "noleap", "version", "cableversion")
	writeNetCDF(t, gcm, "")

	for _, test := range []struct {
		path, name string
		want       bool
	}{
		{ccam, "version", true},
		{ccam, "cableversion", true},
		{ccam, "sibvegversion", false},
		{gcm, "version", false},
	} {
		have, err := p.HasGlobalAttribute(ctx, test.path, test.name)
		if err != nil {
			t.Fatal(err)
		}
		if have != test.want {
			t.Errorf("%s %s: %v != %v", filepath.Base(test.path), test.name, have, test.want)
		}
	}
	if ok, err := p.IsCCAM(ctx, gcm); err != nil || ok {
		t.Errorf("gcm: %v %v", ok, err)
	}

	cal, err := p.Calendar(ccam)
	if err != nil {
		t.Fatal(err)
	}
	if cal != "noleap" {
		t.Errorf("calendar: %q", cal)
	}
	if cal, err = p.Calendar(gcm); err != nil || cal != "" {
		t.Errorf("no calendar: %q %v", cal, err)
	}

	notCDF := filepath.Join(dir, "not.nc")
	touch(t, notCDF)
	if _, err := p.HasGlobalAttribute(ctx, notCDF, "version"); err == nil {
		t.Error("expected an error for an empty file")
	}
	if _, err := p.HasGlobalAttribute(ctx, filepath.Join(dir, "missing.nc"), "version"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestProbeCalendar(t *testing.T) {
	dir, c, tl := setup(t)
	defer os.RemoveAll(dir)
	ctx := context.Background()
	p := tl.Probe
	d := runccam.Date{Year: 2020, Month: 1, Day: 1}

	if _, err := p.ProbeCalendar(ctx, d); err == nil {
		t.Error("expected an error with no forcing data")
	}

	// The first host file found without a calendar is skipped.
	writeNetCDF(t, filepath.Join(c.Dirs.Boundary, "ccam_.202001"), "")
	if _, err := p.ProbeCalendar(ctx, d); err == nil {
		t.Error("expected an error with no calendar attribute")
	}
	writeNetCDF(t, filepath.Join(c.Dirs.Work, "ccam_.202001.000000"), "360_day")
	cal, err := p.ProbeCalendar(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	if cal != "360_day" {
		t.Errorf("%s != 360_day", cal)
	}

	t.Run("sst", func(t *testing.T) {
		p := &Probe{Config: c}
		p.Config.Mode = runccam.SSTOnly
		writeNetCDF(t, filepath.Join(c.Dirs.SST, c.SSTFile), "noleap")
		cal, err := p.ProbeCalendar(ctx, d)
		if err != nil {
			t.Fatal(err)
		}
		if cal != "noleap" {
			t.Errorf("%s != noleap", cal)
		}
	})
	t.Run("postprocess", func(t *testing.T) {
		p := &Probe{Config: c}
		p.Config.Mode = runccam.PostprocessOnly
		writeNetCDF(t, filepath.Join(c.Dirs.Home, "OUTPUT", "test.202003.000000"), "gregorian")
		cal, err := p.ProbeCalendar(ctx, runccam.Date{Year: 2020, Month: 3, Day: 15})
		if err != nil {
			t.Fatal(err)
		}
		if cal != "gregorian" {
			t.Errorf("%s != gregorian", cal)
		}
	})
}
