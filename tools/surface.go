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
	"io"
	"os"
	"path/filepath"

	"github.com/ccam-tools/runccam"
	"github.com/ccam-tools/runccam/archive"
	"github.com/ccam-tools/runccam/namelist"
	"github.com/sirupsen/logrus"
)

// Preparer generates the surface datasets and the monthly model inputs.
// It implements runccam.Preparer.
type Preparer struct {
	Config   runccam.RunConfig
	Launcher *Launcher
	Probe    *Probe
	Log      logrus.FieldLogger
}

func (p *Preparer) logger() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

func (p *Preparer) writeNamelist(name string, fn func(io.Writer) error) error {
	return namelist.WriteFile(p.Launcher.path(name), fn)
}

// runWithNamelist renders a namelist and runs a tool that reads it
// from standard input.
func (p *Preparer) runWithNamelist(ctx context.Context, nml string, render func(io.Writer, runccam.RunConfig) error, cmd Command) error {
	err := p.writeNamelist(nml, func(w io.Writer) error { return render(w, p.Config) })
	if err != nil {
		return err
	}
	cmd.Stdin = nml
	cmd.Marker = true
	return p.Launcher.Run(ctx, cmd)
}

// Regenerate rebuilds the surface datasets in the vegetation data
// directory. With runccam.LandUseStale only the land-use datasets are
// rebuilt, from the topography generated before.
func (p *Preparer) Regenerate(ctx context.Context, st runccam.Staleness) error {
	c := p.Config
	log := p.logger()
	domain := c.DomainName()
	vegDir := c.VegDir()
	topout := "topout" + domain
	if err := os.MkdirAll(vegDir, os.ModePerm); err != nil {
		return fmt.Errorf("tools: %v", err)
	}

	if st == runccam.LandUseStale {
		src := filepath.Join(vegDir, topout)
		if !exists(src) {
			return runccam.MissingArtifact(src)
		}
		if err := copyFile(src, p.Launcher.path(topout)); err != nil {
			return fmt.Errorf("tools: %v", err)
		}
	} else {
		log.Info("generating topography file")
		err := p.runWithNamelist(ctx, "top.nml", namelist.Top, Command{
			Name: "terread", Path: c.Tools.Terread,
		})
		if err != nil {
			return err
		}
	}

	if c.LandSurface == runccam.MODIS {
		log.Info("generating MODIS land-use data")
		err := p.runWithNamelist(ctx, "sibveg.nml", namelist.Sibveg, Command{
			Name: "sibveg", Path: c.Tools.Sibveg, Args: []string{"-s", "1000"},
		})
		if err != nil {
			return err
		}
	} else {
		log.Info("generating CABLE land-use data")
		tile := "1000"
		if c.Machine == runccam.Cray {
			tile = "500"
		}
		err := p.runWithNamelist(ctx, "igbpveg.nml", namelist.Igbpveg, Command{
			Name: "igbpveg", Path: c.Tools.Igbpveg, Args: []string{"-s", tile},
		})
		if err != nil {
			return err
		}
	}
	// The land-use generators write the topography with the new land
	// mask under a different name.
	if err := os.Rename(p.Launcher.path("topsib"+domain), p.Launcher.path(topout)); err != nil {
		return fmt.Errorf("tools: %v", err)
	}

	outputs := append([]string{topout}, runccam.LandUseArtifacts(domain)...)
	if st != runccam.LandUseStale {
		log.Info("processing bathymetry data")
		err := p.runWithNamelist(ctx, "ocnbath.nml", namelist.Ocnbath, Command{
			Name: "ocnbath", Path: c.Tools.Ocnbath, Args: []string{"-s", "1000"},
		})
		if err != nil {
			return err
		}

		log.Info("processing CASA data")
		err = p.Launcher.Run(ctx, Command{
			Name: "casafield",
			Path: c.Tools.Casafield,
			Args: []string{"-t", topout,
				"-i", filepath.Join(c.Dirs.Install, "vegin", "casaNP_gridinfo_1dx1d.nc"),
				"-o", "casa" + domain},
			Marker: true,
		})
		if err != nil {
			return err
		}
		outputs = append(outputs, "bath"+domain, "casa"+domain)
	}

	for _, f := range outputs {
		src := p.Launcher.path(f)
		if !exists(src) {
			return runccam.MissingArtifact(src)
		}
		if err := archive.Move(src, filepath.Join(vegDir, f)); err != nil {
			return err
		}
	}
	return nil
}
