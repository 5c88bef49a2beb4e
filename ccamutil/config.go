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

package ccamutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ccam-tools/runccam"
	"github.com/spf13/cast"
)

// getter reads typed configuration values, keeping the first
// conversion error.
type getter struct {
	cfg *Cfg
	err error
}

func (g *getter) fail(name string, err error) {
	if g.err == nil {
		g.err = fmt.Errorf("ccamutil: invalid value for %s: %v", name, err)
	}
}

func (g *getter) intVal(name string) int {
	v, err := cast.ToIntE(g.cfg.Get(name))
	if err != nil {
		g.fail(name, err)
	}
	return v
}

func (g *getter) floatVal(name string) float64 {
	v, err := cast.ToFloat64E(g.cfg.Get(name))
	if err != nil {
		g.fail(name, err)
	}
	return v
}

func (g *getter) boolVal(name string) bool {
	v, err := cast.ToBoolE(g.cfg.Get(name))
	if err != nil {
		g.fail(name, err)
	}
	return v
}

func (g *getter) stringVal(name string) string {
	v, err := cast.ToStringE(g.cfg.Get(name))
	if err != nil {
		g.fail(name, err)
	}
	return v
}

// path returns the named option as an absolute path with environment
// variables expanded, or def if the option is empty.
func (g *getter) path(name, def string) string {
	p := os.ExpandEnv(g.stringVal(name))
	if p == "" {
		p = def
	}
	if p == "" {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		g.fail(name, err)
	}
	return abs
}

// path returns the named path option.
func (cfg *Cfg) path(name string) (string, error) {
	g := &getter{cfg: cfg}
	p := g.path(name, "")
	return p, g.err
}

func parseMachine(s string) (runccam.MachineType, error) {
	switch s {
	case "generic", "0":
		return runccam.Generic, nil
	case "cray", "1":
		return runccam.Cray, nil
	}
	return runccam.Generic, fmt.Errorf("ccamutil: invalid machine type %q", s)
}

// RunConfig builds the run configuration from the configuration
// options, fills in the derived defaults and validates it.
func (cfg *Cfg) RunConfig() (runccam.RunConfig, error) {
	g := &getter{cfg: cfg}
	c := runccam.RunConfig{
		Name:  g.stringVal("name"),
		NProc: g.intVal("nproc"),
		Domain: runccam.Domain{
			MidLon:   g.floatVal("midlon"),
			MidLat:   g.floatVal("midlat"),
			GridRes:  g.floatVal("gridres"),
			GridSize: g.intVal("gridsize"),
			Levels:   g.intVal("mlev"),
		},
		Start:         runccam.MonthOf(g.intVal("iys"), g.intVal("ims")),
		End:           runccam.MonthOf(g.intVal("iye"), g.intVal("ime")),
		MaxIterations: g.intVal("ncountmax"),
		Ktc:           g.intVal("ktc"),
		Window: runccam.OutputWindow{
			MinLat:       g.floatVal("minlat"),
			MaxLat:       g.floatVal("maxlat"),
			MinLon:       g.floatVal("minlon"),
			MaxLon:       g.floatVal("maxlon"),
			Res:          g.floatVal("reqres"),
			HeightLevels: g.intVal("outlevmode") == 1,
			PLevels:      g.stringVal("plevs"),
			MLevels:      g.stringVal("mlevs"),
		},
		NudgeStrength:    g.intVal("nstrength"),
		LandSurface:      runccam.LandSurface(g.intVal("sib")),
		CarbonCycle:      g.intVal("casa"),
		Aerosols:         g.boolVal("aero"),
		Convection:       g.intVal("conv"),
		Cloud:            g.intVal("cloud"),
		BoundaryLayer:    g.intVal("bmix"),
		Rivers:           g.boolVal("river"),
		Ocean:            g.boolVal("mlo"),
		OutputFormat:     runccam.OutputFormat(g.intVal("ncout")),
		Archive:          runccam.ArchiveMode(g.intVal("nctar")),
		SurfaceOutput:    runccam.SurfaceOutput(g.intVal("ncsurf")),
		KtcSurf:          g.intVal("ktc_surf"),
		DailyPostprocess: g.boolVal("dailypp"),
		LegacyCheckpoint: g.boolVal("legacyqm"),
		CMIP:             g.stringVal("cmip"),
		Scenario:         g.stringVal("rcp"),
		VegInput:         g.stringVal("vegin"),
		SoilInput:        g.stringVal("soilin"),
		BoundaryPrefix:   g.stringVal("bcdom"),
		SSTFile:          g.stringVal("sstfile"),
		SSTInit:          os.ExpandEnv(g.stringVal("sstinit")),
		Store:            os.ExpandEnv(g.stringVal("rstore")),
	}
	d := &c.Dirs
	d.Install = g.path("insdir", "")
	d.Home = g.path("hdir", "")
	d.Work = g.path("wdir", filepath.Join(d.Home, "wdir"))
	d.Boundary = g.path("bcdir", "")
	d.SST = g.path("sstdir", "")
	d.Static = g.path("stdat", filepath.Join(d.Install, "ccamdata"))

	t := &c.Tools
	for _, tool := range []struct {
		name string
		dst  *string
	}{
		{"terread", &t.Terread}, {"igbpveg", &t.Igbpveg}, {"sibveg", &t.Sibveg},
		{"ocnbath", &t.Ocnbath}, {"casafield", &t.Casafield}, {"aeroemiss", &t.Aeroemiss},
		{"model", &t.Model}, {"pcc2hist", &t.Pcc2hist},
	} {
		*tool.dst = os.ExpandEnv(g.stringVal(tool.name))
	}
	if g.err != nil {
		return c, g.err
	}

	var err error
	if c.Machine, err = parseMachine(g.stringVal("machinetype")); err != nil {
		return c, err
	}
	if c.Calendar, err = runccam.ParseCalendar(g.stringVal("calendar")); err != nil {
		return c, err
	}
	if c.Mode, err = runccam.ParseStageMode(g.stringVal("dmode")); err != nil {
		return c, err
	}
	return c.Normalize()
}
