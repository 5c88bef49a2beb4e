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

package namelist

import (
	"io"

	"github.com/ccam-tools/runccam"
)

// HistoryKind selects the kind of post-processed output.
type HistoryKind int

// These are the kinds of post-processed output.
const (
	StandardHistory HistoryKind = iota // all variables on pressure or height levels
	CTMHistory                         // hourly chemical transport model forcing
	SurfaceHistory                     // high-frequency surface variables
)

// History holds the values of the post-processor namelist (cc.nml).
type History struct {
	Kind          HistoryKind
	IFile, OFile  string
	Window        runccam.OutputWindow
	Kta, Ktb, Ktc int
	Names         []string // empty for all variables
}

// Levels reports whether vertical levels are written for h.
func (h History) Levels() bool { return h.Kind == StandardHistory }

// PressureOnly reports whether h is restricted to the model's native
// levels.
func (h History) PressureOnly() bool { return h.Kind == CTMHistory }

var historyTemplate = parse("cc.nml", `{{$w := .Window}} &input
  ifile = "{{.IFile}}"
  ofile = "{{.OFile}}"
  hres  = {{real $w.Res}}
  kta={{.Kta}}   ktb={{.Ktb}}   ktc={{.Ktc}}
  minlat = {{real $w.MinLat}}, maxlat = {{real $w.MaxLat}}, minlon = {{real $w.MinLon}},  maxlon = {{real $w.MaxLon}}
{{- if .Levels}}
  use_plevs = {{logical (not $w.HeightLevels)}}
  use_meters = {{logical $w.HeightLevels}}
  plevs = {{$w.PLevels}}
  mlevs = {{$w.MLevels}}
{{- else if .PressureOnly}}
  use_plevs = F
{{- end}}
 &end
 &histnl
  htype="inst"
  hnames= {{if .Names}}{{range $i, $n := .Names}}{{if $i}},{{end}}{{quote $n}}{{end}}{{else}}"all"{{end}}
  hfreq = 1
 &end
`)

// Render writes the post-processor namelist.
func (h History) Render(w io.Writer) error { return render(w, historyTemplate, h) }

// ctmVariables are the variables extracted for CTM forcing. The stomatal
// resistance variable is inserted by CTMVariables.
var ctmVariables = []string{"land_mask", "vegt", "soilt", "lai", "zolnd", "zs", "sigmf", "tscr_ave",
	"temp", "u", "v", "omega", "mixr", "qlg", "qfg", "ps", "rnd", "rnc", "pblh", "fg", "eg",
	"taux", "tauy", "cld", "qgscrn", "tsu", "wb1_ave", "wb2_ave", "wb3_ave", "wb4_ave",
	"wb5_ave", "wb6_ave", "tgg1", "tgg2", "tgg3", "tgg4", "tgg5", "tgg6", "ustar"}

// CTMVariables returns the variables extracted for CTM forcing with
// land-surface scheme s.
func CTMVariables(s runccam.LandSurface) []string {
	o := append([]string{}, ctmVariables...)
	if s == runccam.MODIS {
		o = append(o, "rsmin")
	} else {
		o = append(o, "rs")
	}
	return append(o, "cbas_ave", "ctop_ave", "u10")
}

// SurfaceVariables are the variables of the high-frequency output.
var SurfaceVariables = []string{"uas", "vas", "tscrn", "rhscrn", "psl", "rnd", "sno", "grpl", "d10", "u10"}

// NewStandardHistory returns the namelist that extracts the standard
// output of model file ofile into out.
func NewStandardHistory(c runccam.RunConfig, ofile, out string) History {
	return History{
		Kind:   StandardHistory,
		IFile:  ofile,
		OFile:  out,
		Window: c.Window,
		Kta:    c.Ktc,
		Ktb:    999999,
		Ktc:    c.Ktc,
	}
}

// NewCTMHistory returns the namelist that extracts hourly CTM forcing
// for day (starting at 1) of the month.
func NewCTMHistory(c runccam.RunConfig, ofile, out string, day int) History {
	return History{
		Kind:   CTMHistory,
		IFile:  ofile,
		OFile:  out,
		Window: c.Window,
		Kta:    (day - 1) * 1440,
		Ktb:    day * 1440,
		Ktc:    60,
		Names:  CTMVariables(c.LandSurface),
	}
}

// NewSurfaceHistory returns the namelist that extracts the high-frequency
// output written every ktcSurf minutes.
func NewSurfaceHistory(c runccam.RunConfig, ofile, out string, ktcSurf int) History {
	return History{
		Kind:   SurfaceHistory,
		IFile:  "surf." + ofile,
		OFile:  out,
		Window: c.Window,
		Kta:    ktcSurf * 60,
		Ktb:    2999999,
		Ktc:    ktcSurf * 60,
		Names:  SurfaceVariables,
	}
}
