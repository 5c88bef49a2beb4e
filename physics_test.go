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
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

func TestResolvePhysics(t *testing.T) {
	c := testConfig("")
	p, err := ResolvePhysics(c)
	if err != nil {
		t.Fatal(err)
	}
	want := Physics{
		Eigenv:      "eigenv.35b",
		OceanLevels: 30,
		Nmr:         1,
		Bcon:        0.02,
		Nudging:     nudgingTable[0],
		Downscaling: Downscaling{NudP: 1, NudT: 1, NudUV: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, Mbd: 20, MhBs: 4},
		Ncloud:      3,
		Ocean:       interpolatedSST,
		Land:        LandPhysics{Nsib: 7, Proglai: -1},
		Mixing:      Mixing{Nvmix: 6, Nlocal: 7, Amxlsq: 9},
		GravityWave: strongGWD,
		SulfFile:    "none",
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("physics differ:\n%v", pretty.Diff(p, want))
	}
}

func TestResolvePhysicsOptions(t *testing.T) {
	t.Run("sst", func(t *testing.T) {
		c := testConfig("")
		c.Mode = SSTOnly
		p, err := ResolvePhysics(c)
		if err != nil {
			t.Fatal(err)
		}
		if p.Downscaling.Mbd != 0 || p.Downscaling.Namip != 14 || p.Downscaling.Method != 1 {
			t.Errorf("%+v", p.Downscaling)
		}
	})
	t.Run("strong nudging", func(t *testing.T) {
		c := testConfig("")
		c.NudgeStrength = 1
		p, err := ResolvePhysics(c)
		if err != nil {
			t.Fatal(err)
		}
		if p.Nudging.MbdMaxGrid != 24 || p.Nudging.KbotDav != 1 {
			t.Errorf("%+v", p.Nudging)
		}
	})
	t.Run("ccam ocean", func(t *testing.T) {
		c := testConfig("")
		c.Mode = NudgedSelf
		c.Ocean, c.Rivers = true, true
		p, err := ResolvePhysics(c)
		if err != nil {
			t.Fatal(err)
		}
		if p.Ocean != dynamicalOceanCCAM {
			t.Errorf("%+v", p.Ocean)
		}
		if p.Nriver != -1 {
			t.Errorf("nriver: %d", p.Nriver)
		}
	})
	t.Run("modis", func(t *testing.T) {
		c := testConfig("")
		c.LandSurface = MODIS
		p, err := ResolvePhysics(c)
		if err != nil {
			t.Fatal(err)
		}
		if p.Land.Nsib != 5 {
			t.Errorf("nsib: %d", p.Land.Nsib)
		}
		c.CarbonCycle = 2
		if _, err := ResolvePhysics(c); err == nil {
			t.Error("MODIS with CASA should fail")
		}
	})
	t.Run("sli", func(t *testing.T) {
		c := testConfig("")
		c.LandSurface = CABLESLI
		c.CarbonCycle = 3
		p, err := ResolvePhysics(c)
		if err != nil {
			t.Fatal(err)
		}
		want := LandPhysics{Nsib: 7, SoilStruc: 1, FwsoilSwitch: 3, Ccycle: 2, Proglai: 1, Progvcmax: 1,
			CablePop: 1, GsSwitch: 1, CableLitter: 1, CableClimate: 1}
		if p.Land != want {
			t.Errorf("%+v != %+v", p.Land, want)
		}
	})
	t.Run("aerosols", func(t *testing.T) {
		c := testConfig("")
		c.Aerosols = true
		c.Convection = 0
		p, err := ResolvePhysics(c)
		if err != nil {
			t.Fatal(err)
		}
		if p.Iaero != -2 || p.SulfFile != "aero.nc" {
			t.Errorf("iaero %d, sulffile %s", p.Iaero, p.SulfFile)
		}
		if p.GravityWave != defaultGWD {
			t.Errorf("%+v", p.GravityWave)
		}
	})
	t.Run("aquaplanet", func(t *testing.T) {
		c := testConfig("")
		c.Mode = Aquaplanet6
		p, err := ResolvePhysics(c)
		if err != nil {
			t.Fatal(err)
		}
		if p.Downscaling.Nhstest != -6 || p.Downscaling.Mbd != 0 {
			t.Errorf("%+v", p.Downscaling)
		}
	})
}
