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

var topTemplate = parse("top.nml", ` &topnml
  il={{.Domain.GridSize}}
  debug=t idia=29 jdia=48 id=2 jd=4
  fileout="topout{{.DomainName}}" luout=50
  rlong0={{real .Domain.MidLon}} rlat0={{real .Domain.MidLat}} schmidt={{printf "%.4f" .InvSchmidt}}
  dosrtm=f do1km=t do250=t netout=t topfilt=t
  filepath10km="{{.Dirs.Install}}/vegin"
  filepath1km="{{.Dirs.Install}}/vegin"
  filepath250m="{{.Dirs.Install}}/vegin"
  filepathsrtm="{{.Dirs.Install}}/vegin"
 &end
`)

var igbpvegTemplate = parse("igbpveg.nml", `{{$vegin := print .Dirs.Install "/vegin" -}}
 &vegnml
  month=0
  topofile="topout{{.DomainName}}"
  newtopofile="topsib{{.DomainName}}"
  landtypeout="veg{{.DomainName}}"
  veginput="{{.VegInput | default (print $vegin "/gigbp2_0ll.img")}}"
  soilinput="{{.SoilInput | default (print $vegin "/usda4.img")}}"
  laiinput="{{$vegin}}"
  albvisinput="{{$vegin}}/salbvis223.img"
  albnirinput="{{$vegin}}/salbnir223.img"
  fastigbp=t
  igbplsmask=t
  ozlaipatch=f
  binlimit=2
  tile=t
  outputmode="cablepft"
 &end
`)

var sibvegTemplate = parse("sibveg.nml", ` &vegnml
  month=0
  topofile="topout{{.DomainName}}"
  newtopofile="topsib{{.DomainName}}"
  landtypeout="veg{{.DomainName}}"
  datapath="{{.Dirs.Install}}/vegin"
  fastsib=t
  siblsmask=t
  ozlaipatch=f
  binlimit=2
  zmin=20.
  usedean=t
 &end
`)

var ocnbathTemplate = parse("ocnbath.nml", ` &ocnnml
  topofile="topout{{.DomainName}}"
  bathout="bath{{.DomainName}}"
  bathdatafile="{{.Dirs.Install}}/vegin/etopo1_ice_c.flt"
  riverdatapath="{{.Dirs.Install}}/vegin"
  fastocn=t
  bathfilt=t
  binlimit=4
 &end
`)

// Top renders the terread namelist.
func Top(w io.Writer, c runccam.RunConfig) error { return render(w, topTemplate, c) }

// Igbpveg renders the namelist of the CABLE land-use generator.
func Igbpveg(w io.Writer, c runccam.RunConfig) error { return render(w, igbpvegTemplate, c) }

// Sibveg renders the namelist of the MODIS land-use generator.
func Sibveg(w io.Writer, c runccam.RunConfig) error { return render(w, sibvegTemplate, c) }

// Ocnbath renders the bathymetry namelist.
func Ocnbath(w io.Writer, c runccam.RunConfig) error { return render(w, ocnbathTemplate, c) }

// AerosolFile is one resolved aerosol emission dataset.
type AerosolFile struct {
	Key, Path string
}

// Aeroemiss holds the values of the aerosol emission namelist.
type Aeroemiss struct {
	Month    int
	Topofile string
	Files    []AerosolFile
}

var aeroemissTemplate = parse("aeroemiss.nml", ` &aero
  month={{mm .Month}}
  topofile='{{.Topofile}}'
{{- range .Files}}
  {{.Key}}='{{.Path}}'
{{- end}}
 &end
`)

// Render writes the aerosol emission namelist.
func (a Aeroemiss) Render(w io.Writer) error { return render(w, aeroemissTemplate, a) }
