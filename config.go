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
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// Unset marks a numeric option whose value is derived from the domain.
const Unset = -999.

// MachineType selects how parallel jobs are launched.
type MachineType int

// These are the supported machine types.
const (
	Generic MachineType = iota // mpirun
	Cray                       // srun
)

// LandSurface is the land-surface scheme (the sib option).
type LandSurface int

// These are the land-surface schemes.
const (
	CABLE    LandSurface = 1
	MODIS    LandSurface = 2
	CABLESLI LandSurface = 3
)

// OutputFormat is the standard output format (the ncout option).
type OutputFormat int

// These are the standard output formats.
const (
	NoOutput OutputFormat = iota
	CCAMOutput
	CORDEXOutput
	CTMOutput
	NearestOutput
)

// SurfaceOutput is the high-frequency output mode (the ncsurf option).
type SurfaceOutput int

// These are the high-frequency output modes.
const (
	NoSurfaceOutput SurfaceOutput = iota
	LatLonSurfaceOutput
	RawSurfaceOutput
)

// ArchiveMode selects what happens to raw model output (the nctar option).
type ArchiveMode int

// These are the archive modes.
const (
	KeepRaw   ArchiveMode = iota // move raw output to the OUTPUT directory
	TarRaw                       // bundle raw output into one tar file per month
	DeleteRaw                    // delete raw output after post-processing
)

// Domain describes the conformal-cubic grid.
type Domain struct {
	MidLon, MidLat float64
	GridRes        float64 // km; Unset derives it from GridSize
	GridSize       int
	Levels         int
}

// OutputWindow describes the region and levels that are extracted.
type OutputWindow struct {
	MinLat, MaxLat, MinLon, MaxLon float64
	Res                            float64 // degrees
	HeightLevels                   bool    // use MLevels instead of PLevels
	PLevels, MLevels               string
}

// Dirs are the directories used by a run.
type Dirs struct {
	Install  string // CCAM install directory
	Home     string // run directory holding checkpoints and output
	Work     string // scratch directory the tools run in
	Boundary string // host atmospheric data
	SST      string // SST data
	Static   string // eigenvector, radiation and emission datasets
}

// Tools are the paths of the external executables.
type Tools struct {
	Terread, Igbpveg, Sibveg, Ocnbath, Casafield, Aeroemiss string
	Model, Pcc2hist                                         string
}

// RunConfig is the immutable configuration of a run.
type RunConfig struct {
	Name     string
	NProc    int
	Machine  MachineType
	Domain   Domain
	Start    Date
	End      Date
	Calendar Calendar

	// MaxIterations is the number of months (or days in daily
	// postprocess-only mode) processed per invocation.
	MaxIterations int

	Ktc    int // standard output period [minutes]
	Window OutputWindow

	Mode          StageMode
	NudgeStrength int // 0 normal, 1 strong
	LandSurface   LandSurface
	CarbonCycle   int // 0 off, 1 CASA-CNP, 2 CASA-CN+POP, 3 CASA-CN+POP+CLIM
	Aerosols      bool
	Convection    int // 0 to 3
	Cloud         int // 0 to 2
	BoundaryLayer int // 0 Ri, 1 TKE-eps, 2 HBG
	Rivers        bool
	Ocean         bool // dynamical ocean rather than interpolated SSTs

	OutputFormat     OutputFormat
	Archive          ArchiveMode
	SurfaceOutput    SurfaceOutput
	KtcSurf          int // high-frequency output period [minutes]
	DailyPostprocess bool

	CMIP, Scenario      string
	VegInput, SoilInput string // land-use and soil input overrides
	BoundaryPrefix      string
	SSTFile, SSTInit    string
	Store               string // "local" or a bucket URL
	LegacyCheckpoint    bool
	Dirs                Dirs
	Tools               Tools
}

// GridResMeters returns the grid spacing in meters.
func (c RunConfig) GridResMeters() float64 { return c.Domain.GridRes * 1000 }

// DomainName returns the name used for the generated surface datasets.
func (c RunConfig) DomainName() string {
	return fmt.Sprintf("%d_%s_%s_%skm", c.Domain.GridSize, nameFloat(c.Domain.MidLon),
		nameFloat(c.Domain.MidLat), nameFloat(c.Domain.GridRes))
}

// VegDir returns the directory holding the generated surface datasets.
func (c RunConfig) VegDir() string { return filepath.Join(c.Dirs.Home, "vegdata") }

// LocalStore reports whether output stays on the local file system.
func (c RunConfig) LocalStore() bool { return c.Store == "" || c.Store == "local" }

// InvSchmidt returns the inverse Schmidt stretching factor of the grid.
func (c RunConfig) InvSchmidt() float64 {
	return c.Domain.GridRes * float64(c.Domain.GridSize) / (112. * 90.)
}

// Fingerprint returns the configuration fields that determine the
// generated surface datasets.
func (c RunConfig) Fingerprint() Fingerprint {
	return Fingerprint{
		Domain:      c.DomainName(),
		LandSurface: strconv.Itoa(int(c.LandSurface)),
		CarbonCycle: strconv.Itoa(c.CarbonCycle),
		VegInput:    c.VegInput,
		SoilInput:   c.SoilInput,
		Scenario:    c.Scenario,
	}
}

// nameFloat formats f the way the surface dataset names have always been
// formatted: integral values keep a trailing ".0".
func nameFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

var eigenvFiles = map[int]string{27: "eigenv27-10.300", 35: "eigenv.35b", 54: "eigenv.54b",
	72: "eigenv.72b", 108: "eigenv.108b", 144: "eigenv.144b"}

var oceanLevels = map[int]int{27: 20, 35: 30, 54: 40, 72: 60, 108: 80, 144: 100}

// Normalize returns a copy of c with derived defaults filled in:
// the grid resolution from the grid size, and the output window and
// resolution from the domain extent. The result is validated.
func (c RunConfig) Normalize() (RunConfig, error) {
	if c.Domain.GridRes == Unset || c.Domain.GridRes <= 0 {
		if c.Domain.GridSize <= 0 {
			return c, fmt.Errorf("runccam: invalid grid size %d", c.Domain.GridSize)
		}
		c.Domain.GridRes = 112. * 90. / float64(c.Domain.GridSize)
		// A global grid: extract the whole globe unless told otherwise.
		if c.Window.MinLat == Unset {
			c.Window.MinLat = -90
		}
		if c.Window.MaxLat == Unset {
			c.Window.MaxLat = 90
		}
		if c.Window.MinLon == Unset {
			c.Window.MinLon = 0
		}
		if c.Window.MaxLon == Unset {
			c.Window.MaxLon = 360
		}
	}
	gridresM := c.GridResMeters()
	half := gridresM * float64(c.Domain.GridSize) / 200000.
	if c.Window.Res == Unset || c.Window.Res <= 0 {
		c.Window.Res = gridresM / 112000.
	}
	if c.Window.MinLat == Unset {
		c.Window.MinLat = c.Domain.MidLat - half
	}
	if c.Window.MaxLat == Unset {
		c.Window.MaxLat = c.Domain.MidLat + half
	}
	if c.Window.MinLon == Unset {
		c.Window.MinLon = c.Domain.MidLon - half
	}
	if c.Window.MaxLon == Unset {
		c.Window.MaxLon = c.Domain.MidLon + half
	}
	if c.Start.Day == 0 {
		c.Start.Day = 1
	}
	if c.End.Day == 0 {
		c.End.Day = 1
	}
	return c, c.Validate()
}

// Validate checks that c is complete and internally consistent.
func (c RunConfig) Validate() error {
	required := []struct{ name, val string }{
		{"name", c.Name},
		{"hdir", c.Dirs.Home},
		{"wdir", c.Dirs.Work},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("runccam: missing configuration variable %s", r.name)
		}
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownMode, c.Mode)
	}
	if c.Calendar != AutoDetect && !c.Calendar.Resolved() {
		return fmt.Errorf("%w: %v", ErrInvalidCalendar, c.Calendar)
	}
	if c.NProc < 1 {
		return fmt.Errorf("runccam: nproc must be at least 1, not %d", c.NProc)
	}
	if c.Machine != Generic && c.Machine != Cray {
		return fmt.Errorf("runccam: invalid machine type %d", c.Machine)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("runccam: the number of iterations per invocation must be at least 1, not %d", c.MaxIterations)
	}
	for _, d := range []Date{c.Start, c.End} {
		if d.Month < 1 || d.Month > 12 {
			return fmt.Errorf("runccam: invalid month in date %v", d)
		}
	}
	if _, ok := eigenvFiles[c.Domain.Levels]; !ok {
		return fmt.Errorf("runccam: unsupported number of model levels %d", c.Domain.Levels)
	}
	coords := []struct {
		name string
		val  float64
	}{
		{"midlon", c.Domain.MidLon}, {"midlat", c.Domain.MidLat}, {"gridres", c.Domain.GridRes},
		{"minlat", c.Window.MinLat}, {"maxlat", c.Window.MaxLat},
		{"minlon", c.Window.MinLon}, {"maxlon", c.Window.MaxLon}, {"reqres", c.Window.Res},
	}
	for _, v := range coords {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("runccam: %s must be a finite number, not %g", v.name, v.val)
		}
	}
	if c.Domain.GridSize <= 0 || c.Domain.GridRes <= 0 {
		return fmt.Errorf("runccam: invalid grid (size %d, resolution %g km)", c.Domain.GridSize, c.Domain.GridRes)
	}
	if c.Ktc <= 0 {
		return fmt.Errorf("runccam: ktc must be positive, not %d", c.Ktc)
	}
	if c.SurfaceOutput != NoSurfaceOutput && c.KtcSurf <= 0 {
		return fmt.Errorf("runccam: ktc_surf must be positive when high-frequency output is enabled")
	}
	ranges := []struct {
		name          string
		val, min, max int
	}{
		{"nstrength", c.NudgeStrength, 0, 1},
		{"sib", int(c.LandSurface), 1, 3},
		{"casa", c.CarbonCycle, 0, 3},
		{"conv", c.Convection, 0, 3},
		{"cloud", c.Cloud, 0, 2},
		{"bmix", c.BoundaryLayer, 0, 2},
		{"ncout", int(c.OutputFormat), 0, 4},
		{"nctar", int(c.Archive), 0, 2},
		{"ncsurf", int(c.SurfaceOutput), 0, 2},
	}
	for _, r := range ranges {
		if r.val < r.min || r.val > r.max {
			return fmt.Errorf("runccam: invalid choice %d for %s", r.val, r.name)
		}
	}
	if c.Ocean && !c.Rivers {
		return fmt.Errorf("runccam: rivers are a requirement for the dynamical ocean")
	}
	if c.LandSurface == MODIS && c.CarbonCycle != 0 {
		return fmt.Errorf("runccam: casa=%d requires sib=1 or sib=3", c.CarbonCycle)
	}
	if c.DailyPostprocess && c.Mode != PostprocessOnly {
		return fmt.Errorf("runccam: daily post-processing requires mode %v", PostprocessOnly)
	}
	return nil
}
