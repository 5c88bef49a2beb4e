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

package runccam

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

// testConfig returns a valid monthly configuration rooted at dir.
func testConfig(dir string) RunConfig {
	return RunConfig{
		Name:          "test",
		NProc:         4,
		Domain:        Domain{MidLon: 135, MidLat: -25, GridRes: 45, GridSize: 96, Levels: 35},
		Start:         Date{2020, 1, 1},
		End:           Date{2020, 3, 1},
		Calendar:      Gregorian,
		MaxIterations: 1,
		Ktc:           360,
		Window:        OutputWindow{MinLat: -45, MaxLat: -5, MinLon: 110, MaxLon: 160, Res: 0.5, PLevels: "1000, 850, 500"},
		Mode:          NudgedGCM,
		LandSurface:   CABLE,
		Convection:    3,
		Cloud:         2,
		BoundaryLayer: 1,
		OutputFormat:  CCAMOutput,
		CMIP:          "CMIP6",
		Scenario:      "ssp245",

		BoundaryPrefix: "ccam_",
		SSTInit:        "sstinit.nc",
		Dirs: Dirs{
			Home:   filepath.Join(dir, "home"),
			Work:   filepath.Join(dir, "work"),
			Static: "/stdat",
		},
	}
}

func TestDomainName(t *testing.T) {
	c := testConfig("")
	if have, want := c.DomainName(), "96_135.0_-25.0_45.0km"; have != want {
		t.Errorf("%s != %s", have, want)
	}
	c.Domain.GridRes = 12.5
	c.Domain.MidLon = 147.25
	if have, want := c.DomainName(), "96_147.25_-25.0_12.5km"; have != want {
		t.Errorf("%s != %s", have, want)
	}
}

func TestNormalize(t *testing.T) {
	const tolerance = 1.e-9
	similar := func(a, b float64) bool { return math.Abs(a-b) < tolerance }

	t.Run("global", func(t *testing.T) {
		c := testConfig("")
		c.Domain.GridRes = Unset
		c.Window = OutputWindow{MinLat: Unset, MaxLat: Unset, MinLon: Unset, MaxLon: Unset, Res: Unset}
		c.Start.Day = 0
		n, err := c.Normalize()
		if err != nil {
			t.Fatal(err)
		}
		if !similar(n.Domain.GridRes, 105) {
			t.Errorf("gridres: %g != 105", n.Domain.GridRes)
		}
		if n.Window.MinLat != -90 || n.Window.MaxLat != 90 || n.Window.MinLon != 0 || n.Window.MaxLon != 360 {
			t.Errorf("window: %+v", n.Window)
		}
		if !similar(n.Window.Res, 105000./112000.) {
			t.Errorf("res: %g", n.Window.Res)
		}
		if n.Start.Day != 1 {
			t.Errorf("start day: %d", n.Start.Day)
		}
	})
	t.Run("regional", func(t *testing.T) {
		c := testConfig("")
		c.Window = OutputWindow{MinLat: Unset, MaxLat: Unset, MinLon: Unset, MaxLon: -100, Res: Unset}
		n, err := c.Normalize()
		if err != nil {
			t.Fatal(err)
		}
		const half = 21.6
		if !similar(n.Window.MinLat, -25-half) || !similar(n.Window.MaxLat, -25+half) ||
			!similar(n.Window.MinLon, 135-half) {
			t.Errorf("window: %+v", n.Window)
		}
		if n.Window.MaxLon != -100 {
			t.Errorf("explicit maxlon was changed to %g", n.Window.MaxLon)
		}
	})
}

func TestValidate(t *testing.T) {
	if err := testConfig("").Validate(); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		modify func(c *RunConfig)
		is     error
	}{
		{name: "no name", modify: func(c *RunConfig) { c.Name = "" }},
		{name: "no hdir", modify: func(c *RunConfig) { c.Dirs.Home = "" }},
		{name: "mode", modify: func(c *RunConfig) { c.Mode = 42 }, is: ErrUnknownMode},
		{name: "calendar", modify: func(c *RunConfig) { c.Calendar = 7 }, is: ErrInvalidCalendar},
		{name: "levels", modify: func(c *RunConfig) { c.Domain.Levels = 40 }},
		{name: "nproc", modify: func(c *RunConfig) { c.NProc = 0 }},
		{name: "iterations", modify: func(c *RunConfig) { c.MaxIterations = 0 }},
		{name: "month", modify: func(c *RunConfig) { c.End.Month = 13 }},
		{name: "gridres nan", modify: func(c *RunConfig) { c.Domain.GridRes = math.NaN() }},
		{name: "midlat inf", modify: func(c *RunConfig) { c.Domain.MidLat = math.Inf(1) }},
		{name: "cloud", modify: func(c *RunConfig) { c.Cloud = 3 }},
		{name: "ocean", modify: func(c *RunConfig) { c.Ocean = true }},
		{name: "modis casa", modify: func(c *RunConfig) { c.LandSurface = MODIS; c.CarbonCycle = 1 }},
		{name: "ktc_surf", modify: func(c *RunConfig) { c.SurfaceOutput = LatLonSurfaceOutput }},
		{name: "daily", modify: func(c *RunConfig) { c.DailyPostprocess = true }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := testConfig("")
			test.modify(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if test.is != nil && !errors.Is(err, test.is) {
				t.Errorf("%v is not %v", err, test.is)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	c := testConfig("")
	a := c.Fingerprint()
	c.Scenario = "ssp585"
	b := c.Fingerprint()
	if a == b {
		t.Error("scenario should change the fingerprint")
	}
	if a.Digest() == b.Digest() {
		t.Error("scenario should change the digest")
	}
	c = testConfig("")
	c.NProc = 128
	c.Ktc = 60
	if c.Fingerprint() != a {
		t.Error("the fingerprint should only depend on the surface configuration")
	}
}
