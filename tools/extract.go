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
	"regexp"
	"strings"

	"github.com/ccam-tools/runccam"
	"github.com/ccam-tools/runccam/archive"
	"github.com/ccam-tools/runccam/namelist"
	"github.com/sirupsen/logrus"
)

// Store keeps the files produced by post-processing.
// *archive.Store implements it.
type Store interface {
	// Put moves the local file src into the output directory dir.
	Put(ctx context.Context, src, dir string) error

	// Get makes dir/name available at the local path dst.
	Get(ctx context.Context, dir, name, dst string) (bool, error)

	// List returns the names of the files in dir that start with prefix.
	List(ctx context.Context, dir, prefix string) ([]string, error)

	// Location describes where dir/name is kept.
	Location(dir, name string) string
}

// Extractor post-processes the model output with pcc2hist, archives the
// raw output and bundles the year-end restart files.
// It implements runccam.Extractor.
type Extractor struct {
	Config   runccam.RunConfig
	Launcher *Launcher
	Store    Store
	Log      logrus.FieldLogger
}

func (e *Extractor) logger() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

// Extract post-processes the output of one work unit.
func (e *Extractor) Extract(ctx context.Context, u runccam.WorkUnit) error {
	c := e.Config
	ofile := u.Plan.OFile
	switch {
	case c.Mode == runccam.PostprocessOnly:
		if err := e.stageRaw(ctx, ofile); err != nil {
			return err
		}
		if c.SurfaceOutput == runccam.LatLonSurfaceOutput {
			if err := e.stageRaw(ctx, "surf."+ofile); err != nil {
				return err
			}
		}
	case !existsRaw(e.Launcher.path(ofile)):
		if c.Mode == runccam.LandSurfaceOnly {
			e.logger().WithField("file", ofile).Info("no model output to post-process")
			return nil
		}
		return runccam.MissingArtifact(e.Launcher.path(ofile + ".000000"))
	}

	if u.Daily {
		return e.daily(ctx, u)
	}
	if err := e.standard(ctx, u); err != nil {
		return err
	}
	if err := e.surface(ctx, u); err != nil {
		return err
	}
	if c.Mode == runccam.PostprocessOnly {
		// The raw output belongs to an earlier run.
		return nil
	}
	if err := e.archiveRaw(ctx, ofile); err != nil {
		return err
	}
	return e.restarts(ctx, u.Plan)
}

var rawName = regexp.MustCompile(`^\.[0-9]{6}$`)

// stageRaw makes the raw model output base available in the work
// directory, from the raw files or the tar archive in the output store.
func (e *Extractor) stageRaw(ctx context.Context, base string) error {
	if existsRaw(e.Launcher.path(base)) {
		return nil
	}
	names, err := e.Store.List(ctx, archive.Output, base+".")
	if err != nil {
		return err
	}
	var raw []string
	var tar bool
	for _, n := range names {
		switch {
		case rawName.MatchString(strings.TrimPrefix(n, base)):
			raw = append(raw, n)
		case n == base+".tar":
			tar = true
		}
	}
	if len(raw) > 0 {
		for _, n := range raw {
			if _, err := e.Store.Get(ctx, archive.Output, n, e.Launcher.path(n)); err != nil {
				return err
			}
		}
		return nil
	}
	if !tar {
		return runccam.MissingArtifact(e.Store.Location(archive.Output, base+".000000"))
	}
	dst := e.Launcher.path(base + ".tar")
	if _, err := e.Store.Get(ctx, archive.Output, base+".tar", dst); err != nil {
		return err
	}
	e.logger().WithField("file", base+".tar").Info("unpacking model output")
	if _, err := archive.Extract(ctx, dst, e.Launcher.Dir); err != nil {
		return err
	}
	return removeAll(dst)
}

// pcc2hist writes the post-processor namelist and runs the
// post-processor.
func (e *Extractor) pcc2hist(ctx context.Context, h namelist.History, log string, args ...string) error {
	if err := namelist.WriteFile(e.Launcher.path("cc.nml"), h.Render); err != nil {
		return err
	}
	return e.Launcher.Run(ctx, Command{
		Name:   "pcc2hist",
		Path:   e.Config.Tools.Pcc2hist,
		Args:   args,
		NProc:  e.Config.NProc,
		Stdout: log,
		Marker: true,
	})
}

// formatArgs returns the post-processor arguments for output format f.
func formatArgs(f runccam.OutputFormat) []string {
	switch f {
	case runccam.CORDEXOutput:
		return []string{"--cordex"}
	case runccam.NearestOutput:
		return []string{"--interp=nearest"}
	}
	return nil
}

func (e *Extractor) standard(ctx context.Context, u runccam.WorkUnit) error {
	c := e.Config
	switch c.OutputFormat {
	case runccam.NoOutput:
		return nil
	case runccam.CTMOutput:
		return e.ctm(ctx, u)
	}
	out := u.Plan.OFile + ".nc"
	h := namelist.NewStandardHistory(c, u.Plan.OFile, out)
	if err := e.pcc2hist(ctx, h, "pcc2hist.log", formatArgs(c.OutputFormat)...); err != nil {
		return err
	}
	return e.Store.Put(ctx, e.Launcher.path(out), archive.Daily)
}

// ctm extracts one file of hourly CTM forcing per day and bundles the
// month into a single archive.
func (e *Extractor) ctm(ctx context.Context, u runccam.WorkUnit) error {
	c := e.Config
	d := u.Plan.Date
	var files []string
	for day := 1; day <= u.Plan.Days; day++ {
		out := fmt.Sprintf("ccam_%04d%02d%02d.nc", d.Year, d.Month, day)
		h := namelist.NewCTMHistory(c, u.Plan.OFile, out, day)
		if err := e.pcc2hist(ctx, h, "pcc2hist_ctm.log"); err != nil {
			return err
		}
		files = append(files, e.Launcher.path(out))
	}
	tar := e.Launcher.path(fmt.Sprintf("ctm_%04d%02d.tar", d.Year, d.Month))
	if err := archive.Bundle(ctx, tar, files); err != nil {
		return err
	}
	if err := e.Store.Put(ctx, tar, archive.Daily); err != nil {
		return err
	}
	return removeAll(files...)
}

func (e *Extractor) surface(ctx context.Context, u runccam.WorkUnit) error {
	c := e.Config
	switch c.SurfaceOutput {
	case runccam.LatLonSurfaceOutput:
		out := "surf." + u.Plan.OFile + ".nc"
		h := namelist.NewSurfaceHistory(c, u.Plan.OFile, out, u.Timing.KtcSurf)
		if err := e.pcc2hist(ctx, h, "surf.pcc2hist.log"); err != nil {
			return err
		}
		if err := e.Store.Put(ctx, e.Launcher.path(out), archive.Daily); err != nil {
			return err
		}
		if c.Mode == runccam.PostprocessOnly {
			return nil
		}
		return removeAll(e.Launcher.path("surf." + u.Plan.OFile + rawSuffix))
	case runccam.RawSurfaceOutput:
		if c.Mode == runccam.PostprocessOnly {
			return nil
		}
		return e.archiveRaw(ctx, "surf."+u.Plan.OFile)
	}
	return nil
}

// daily extracts one day of standard output.
func (e *Extractor) daily(ctx context.Context, u runccam.WorkUnit) error {
	c := e.Config
	day := u.Clock.Day
	out := fmt.Sprintf("%s.%s.nc", c.Name, u.Clock.Date.Stamp())
	h := namelist.NewStandardHistory(c, u.Plan.OFile, out)
	h.Kta, h.Ktb = (day-1)*1440, day*1440
	if err := e.pcc2hist(ctx, h, "pcc2hist.log", formatArgs(c.OutputFormat)...); err != nil {
		return err
	}
	return e.Store.Put(ctx, e.Launcher.path(out), archive.Daily)
}

// archiveRaw keeps, bundles or deletes the raw files of base according
// to the archive mode.
func (e *Extractor) archiveRaw(ctx context.Context, base string) error {
	files, err := rawFiles(e.Launcher.Dir, base)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return runccam.MissingArtifact(e.Launcher.path(base + ".000000"))
	}
	switch e.Config.Archive {
	case runccam.KeepRaw:
		for _, f := range files {
			if err := e.Store.Put(ctx, f, archive.Output); err != nil {
				return err
			}
		}
		return nil
	case runccam.TarRaw:
		tar := e.Launcher.path(base + ".tar")
		if err := archive.Bundle(ctx, tar, files); err != nil {
			return err
		}
		if err := e.Store.Put(ctx, tar, archive.Output); err != nil {
			return err
		}
	}
	return removeAll(files...)
}

// restarts bundles the December restart files and removes the restart
// files that are no longer needed.
func (e *Extractor) restarts(ctx context.Context, p runccam.MonthPlan) error {
	c := e.Config
	year := p.Date.Year
	switch {
	case p.Date.Month == 12:
		dec := c.RestartName(p.Date)
		files, err := rawFiles(e.Launcher.Dir, dec)
		if err != nil {
			return err
		}
		if len(files) > 0 {
			tar := e.Launcher.path(dec + ".tar")
			if err = archive.Bundle(ctx, tar, files); err != nil {
				return err
			}
			if err = e.Store.Put(ctx, tar, archive.Restart); err != nil {
				return err
			}
		}
		// December's restart files start the next month.
		var old []string
		for m := 1; m < 12; m++ {
			old = append(old, e.Launcher.path(c.RestartName(runccam.MonthOf(year, m))+rawSuffix))
		}
		old = append(old, e.Launcher.path(fmt.Sprintf("prnew.%04d*", year)))
		return removeAll(old...)
	case p.Date.Month <= 10:
		prev := c.RestartName(runccam.MonthOf(year-1, 12))
		return removeAll(e.Launcher.path(prev + rawSuffix))
	}
	return nil
}

var (
	_ runccam.Extractor = (*Extractor)(nil)
	_ Store             = (*archive.Store)(nil)
)
