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
	"os"
	"path/filepath"
	"strings"

	"github.com/ccam-tools/runccam"
	"github.com/ctessum/cdf"
)

// Probe reads attributes from the headers of netCDF files.
type Probe struct {
	// Config locates the forcing data for ProbeCalendar.
	Config runccam.RunConfig
}

func readHeader(path string) (*cdf.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tools: %v", err)
	}
	defer f.Close()
	h, err := cdf.ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("tools: reading netCDF header of %s: %v", path, err)
	}
	return h, nil
}

// Attribute returns attribute name of variable v in the file at path,
// or of the file itself if v is empty. The result is nil if there is
// no such attribute.
func (p *Probe) Attribute(path, v, name string) (interface{}, error) {
	h, err := readHeader(path)
	if err != nil {
		return nil, err
	}
	return h.GetAttribute(v, name), nil
}

// HasGlobalAttribute reports whether the file at path has the global
// attribute name.
func (p *Probe) HasGlobalAttribute(ctx context.Context, path, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a, err := p.Attribute(path, "", name)
	return a != nil, err
}

// IsCCAM reports whether the file at path was written by CCAM.
func (p *Probe) IsCCAM(ctx context.Context, path string) (bool, error) {
	return p.HasGlobalAttribute(ctx, path, "version")
}

// Calendar returns the calendar attribute of the time variable in the
// file at path, or "" if there is none.
func (p *Probe) Calendar(path string) (string, error) {
	a, err := p.Attribute(path, "time", "calendar")
	if err != nil {
		return "", err
	}
	s, _ := a.(string)
	return strings.Trim(s, "\x00 "), nil
}

// calendarSources returns the files that may carry the calendar of
// month d, in order of preference.
func (p *Probe) calendarSources(d runccam.Date) []string {
	c := p.Config
	var o []string
	if c.Mode.NeedsHost() {
		mesonest := c.Mesonest(d)
		o = append(o,
			filepath.Join(c.Dirs.Boundary, mesonest),
			filepath.Join(c.Dirs.Boundary, mesonest+".000000"),
			filepath.Join(c.Dirs.Work, mesonest),
			filepath.Join(c.Dirs.Work, mesonest+".000000"))
	}
	if c.Mode.NeedsSST() && c.SSTFile != "" {
		o = append(o, filepath.Join(c.Dirs.SST, c.SSTFile))
	}
	ofile := c.OutputName(runccam.MonthOf(d.Year, d.Month))
	return append(o,
		filepath.Join(c.Dirs.Work, ofile+".000000"),
		filepath.Join(c.Dirs.Work, ofile),
		filepath.Join(c.Dirs.Home, "OUTPUT", ofile+".000000"))
}

// ProbeCalendar returns the calendar of the forcing data for month d:
// the host fields, the SST file, or the model output in
// postprocess-only runs.
func (p *Probe) ProbeCalendar(ctx context.Context, d runccam.Date) (string, error) {
	var found []string
	for _, f := range p.calendarSources(d) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !exists(f) {
			continue
		}
		found = append(found, f)
		cal, err := p.Calendar(f)
		if err != nil {
			return "", err
		}
		if cal != "" {
			return cal, nil
		}
	}
	if len(found) == 0 {
		return "", fmt.Errorf("tools: no forcing data found for %v", d)
	}
	return "", fmt.Errorf("tools: no calendar attribute in %s", strings.Join(found, ", "))
}
