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
	"fmt"
	"path/filepath"

	"github.com/ccam-tools/runccam"
	"github.com/ccam-tools/runccam/archive"
	"github.com/ccam-tools/runccam/namelist"
)

// InputNamelist is the name of the model namelist in the work directory.
const InputNamelist = "input"

// PrepareMonth creates the aerosol forcing and stages the host and
// initial-condition files for one month, checks that every model input
// exists and writes the model namelist.
func (p *Preparer) PrepareMonth(ctx context.Context, u runccam.WorkUnit) error {
	c := p.Config
	if c.Aerosols {
		if err := p.aerosols(ctx, u); err != nil {
			return err
		}
	}
	if c.Mode.NeedsHost() {
		if err := p.stageHost(ctx, u.Plan); err != nil {
			return err
		}
	}
	if u.Plan.IFile == c.SSTInit && !c.Mode.InitFromHost() {
		src := p.sstInit()
		if !exists(src) {
			return runccam.MissingArtifact(src)
		}
		if err := link(src, p.Launcher.Dir); err != nil {
			return err
		}
	}
	if err := p.checkInputs(u); err != nil {
		return err
	}
	if c.Mode.HostChecked() {
		if err := p.checkHost(ctx, u.Plan); err != nil {
			return err
		}
	}
	in := namelist.Input{
		Config:  c,
		Plan:    u.Plan,
		Timing:  u.Timing,
		Physics: u.Physics,
		VegDir:  c.VegDir(),
		Surf:    c.SurfaceOutput != runccam.NoSurfaceOutput,
	}
	return p.writeNamelist(InputNamelist, in.Render)
}

func (p *Preparer) sstInit() string {
	if filepath.IsAbs(p.Config.SSTInit) {
		return p.Config.SSTInit
	}
	return filepath.Join(p.Config.Dirs.SST, p.Config.SSTInit)
}

// aerosols writes the aerosol forcing file for the month from the
// newest version of each emission dataset.
func (p *Preparer) aerosols(ctx context.Context, u runccam.WorkUnit) error {
	c := p.Config
	a := namelist.Aeroemiss{
		Month:    u.Plan.Date.Month,
		Topofile: filepath.Join(c.VegDir(), "topout"+c.DomainName()),
	}
	for _, in := range append(u.Plan.AerosolInputs(c), runccam.AerosolFixedInputs(c)...) {
		f, err := newest(in.Pattern)
		if err != nil {
			return err
		}
		a.Files = append(a.Files, namelist.AerosolFile{Key: in.Key, Path: f})
	}
	if err := p.writeNamelist("aeroemiss.nml", a.Render); err != nil {
		return err
	}
	sulf := p.Launcher.path(u.Physics.SulfFile)
	if err := removeAll(sulf); err != nil {
		return err
	}
	p.logger().WithField("month", u.Plan.Date.Month).Info("creating aerosol forcing")
	err := p.Launcher.Run(ctx, Command{
		Name:   "aeroemiss",
		Path:   c.Tools.Aeroemiss,
		Args:   []string{"-o", u.Physics.SulfFile},
		Stdin:  "aeroemiss.nml",
		Stdout: "aero.log",
	})
	if err != nil {
		return err
	}
	// aeroemiss doesn't report completion; its output is the evidence.
	if !exists(sulf) {
		return &runccam.CollaboratorError{Name: "aeroemiss", LogPath: p.Launcher.path("aero.log")}
	}
	return nil
}

// stageHost makes the host fields for the month available in the work
// directory, either as links or by unpacking a tar archive.
func (p *Preparer) stageHost(ctx context.Context, plan runccam.MonthPlan) error {
	c := p.Config
	work := p.Launcher.Dir
	src := filepath.Join(c.Dirs.Boundary, plan.Mesonest)
	switch {
	case c.BoundaryPrefix == runccam.EraInterimPrefix:
		if !exists(src) {
			return runccam.MissingArtifact(src)
		}
		return link(src, work)
	case exists(src + ".000000"):
		files, err := rawFiles(c.Dirs.Boundary, plan.Mesonest)
		if err != nil {
			return err
		}
		for _, f := range files {
			if err := link(f, work); err != nil {
				return err
			}
		}
		return nil
	case exists(src):
		return link(src, work)
	}
	tar := src + ".tar"
	if !exists(tar) {
		return runccam.MissingArtifact(tar)
	}
	p.logger().WithField("file", tar).Info("unpacking host fields")
	_, err := archive.Extract(ctx, tar, work)
	return err
}

func (p *Preparer) inWork(f string) string {
	if filepath.IsAbs(f) {
		return f
	}
	return p.Launcher.path(f)
}

// checkInputs checks that the files read by the model exist.
func (p *Preparer) checkInputs(u runccam.WorkUnit) error {
	c := p.Config
	ifile := p.inWork(u.Plan.IFile)
	if !existsRaw(ifile) {
		return fmt.Errorf("%w: cannot locate %s or %s.000000; if this is the start of a new run, use the reset command",
			runccam.ErrMissingArtifact, ifile, ifile)
	}
	if c.Mode.NeedsHost() {
		if f := p.inWork(u.Plan.Mesonest); !existsRaw(f) {
			return fmt.Errorf("%w: cannot locate %s or %s.000000", runccam.ErrMissingArtifact, f, f)
		}
	}
	domain := c.DomainName()
	veg := []string{"topout" + domain, u.Plan.VegPrev, u.Plan.VegFile, u.Plan.VegNext, u.Plan.VegNextNext}
	if u.Physics.Ocean.Nmlo != 0 {
		veg = append(veg, "bath"+domain)
	}
	for _, f := range veg {
		if f := filepath.Join(c.VegDir(), f); !exists(f) {
			return runccam.MissingArtifact(f)
		}
	}
	if c.Aerosols {
		if f := p.inWork(u.Physics.SulfFile); !exists(f) {
			return runccam.MissingArtifact(f)
		}
	}
	if c.Mode.NeedsSST() {
		if f := filepath.Join(c.Dirs.SST, c.SSTFile); !exists(f) {
			return runccam.MissingArtifact(f)
		}
	}
	return nil
}

// checkHost checks that the host fields were written by the kind of
// model the stage mode expects.
func (p *Preparer) checkHost(ctx context.Context, plan runccam.MonthPlan) error {
	f := p.inWork(plan.Mesonest)
	if !exists(f) {
		f += ".000000"
	}
	isCCAM, err := p.Probe.IsCCAM(ctx, f)
	if err != nil {
		return err
	}
	return p.Config.Mode.CheckHost(isCCAM)
}

var _ runccam.Preparer = (*Preparer)(nil)
