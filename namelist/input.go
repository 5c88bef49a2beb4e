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
	"fmt"
	"io"

	"github.com/ccam-tools/runccam"
)

// Input holds everything written to the model's "input" namelist.
type Input struct {
	Config  runccam.RunConfig
	Plan    runccam.MonthPlan
	Timing  runccam.Timing
	Physics runccam.Physics

	VegDir string // directory holding the surface datasets
	Surf   bool   // write the high-frequency surface file
}

var inputTemplate = parse("input", `{{with .Physics}}{{$v := $.VegDir}}{{$d := $.Config.DomainName}} &defaults &end
 &cardin
  COMMENT='date and runlength'
  kdate_s={{$.Plan.Date.Stamp}} ktime_s=0000 leap={{$.Plan.Leap}}
  dt={{$.Timing.Dt}} nwt={{$.Timing.StepsBetweenOutput}} ntau={{$.Timing.Steps $.Plan.Days}}
  nmaxpr=999999 newtop=1 nrungcm={{$.Plan.Nrungcm}}
  namip={{.Downscaling.Namip}} rescrn=1
  maxtilesize=96
{{- if .Downscaling.Nhstest}}
  nhstest={{.Downscaling.Nhstest}}
{{- end}}

  COMMENT='dynamical core'
  epsp=0.1 epsu=0.1 epsh=1.
  precon=-10000 restol=2.e-7 nh=5 knh=9
  nstagu=1 khor=0 nhorps=-1 nhorjlm=0
  mh_bs={{.Downscaling.MhBs}}

  COMMENT='mass fixer'
  mfix_qg={{.Downscaling.MfixQG}} mfix={{.Downscaling.Mfix}} mfix_aero={{.Downscaling.MfixAero}}

  COMMENT='nudging'
  nbd={{.Downscaling.Nbd}} mbd={{.Downscaling.Mbd}} mbd_maxscale={{.Nudging.MbdMaxScale}} mbd_maxgrid={{.Nudging.MbdMaxGrid}}
  nud_p={{.Downscaling.NudP}} nud_q={{.Downscaling.NudQ}} nud_t={{.Downscaling.NudT}} nud_uv={{.Downscaling.NudUV}}
  nud_aero={{.Downscaling.NudAero}} nud_hrs=1
  nud_period=60
  kbotdav={{.Nudging.KbotDav}} ktopdav=-10 sigramplow={{real .Nudging.SigRampLow}}
  mbd_maxscale_mlo=500 mbd_mlo={{.Ocean.MbdMlo}}
  nud_sst={{.Ocean.NudSST}} nud_sss={{.Ocean.NudSSS}} nud_ouv={{.Ocean.NudOUV}} nud_sfh={{.Ocean.NudSFH}}
  ktopmlo=1 kbotmlo={{.Ocean.KbotMlo}} mloalpha=0

  COMMENT='ocean, lakes and rivers'
  nmlo={{.Ocean.Nmlo}} ol={{.OceanLevels}} tss_sh=0.3 nriver={{.Nriver}}

  COMMENT='land, urban and carbon'
  nsib={{.Land.Nsib}} nurban=1 vmodmin=0.1 nsigmf=0 jalbfix=0

  COMMENT='radiation and aerosols'
  nrad=5 iaero={{.Iaero}}

  COMMENT='boundary layer'
  nvmix={{.Mixing.Nvmix}} nlocal={{.Mixing.Nlocal}}
  cgmap_offset=600. cgmap_scale=200.

  COMMENT='station'
  mstn=0 nstn=0

  COMMENT='file'
  localhist=.true. unlimitedhist=.true. synchist=.false.
  procformat=.true. compression=1
  tbave={{$.Timing.Tbave}} tblock={{$.Timing.Tblock}}
 &end
 &skyin
  mins_rad=-1 qgmin=2.E-7
  ch_dust=3.E-10
 &end
 &datafile
  ifile=      '{{$.Plan.IFile}}'
  mesonest=   '{{$.Plan.Mesonest}}'
  topofile=   '{{$v}}/topout{{$d}}'
  vegprev=    '{{$v}}/{{$.Plan.VegPrev}}'
  vegfile=    '{{$v}}/{{$.Plan.VegFile}}'
  vegnext=    '{{$v}}/{{$.Plan.VegNext}}'
  vegnext2=   '{{$v}}/{{$.Plan.VegNextNext}}'
  bathfile=   '{{$v}}/bath{{$d}}'
  cnsdir=     '{{$.Config.Dirs.Static}}'
  radfile=    '{{$.Plan.CO2}}'
  eigenv=     '{{$.Config.Dirs.Static}}/{{.Eigenv}}'
  o3file=     '{{$.Plan.Ozone}}'
  so4tfile=   '{{.SulfFile}}'
  oxidantfile='{{$.Config.Dirs.Static}}/oxidants.nc'
  ofile=      '{{$.Plan.OFile}}'
  restfile=   '{{$.Plan.RestFile}}'
  sstfile=    '{{$.Config.Dirs.SST}}/{{$.Config.SSTFile}}'
  casafile=   '{{$v}}/casa{{$d}}'
  phenfile=   '{{$.Config.Dirs.Static}}/modis_phenology_csiro.txt'
{{- if $.Surf}}
  surfile=    'surf.{{$.Plan.OFile}}'
{{- end}}
 &end
{{template "convection" $}}
 &turbnml
  buoymeth=1 mineps=1.e-11 qcmf=1.e-4 amxlsq={{real .Mixing.Amxlsq}} ezmin=10.
  ent0=0.5 ent1=0. ent_min=0.001
  be=1. b1=1. b2=2.
  ngwd={{.GravityWave.Ngwd}} helim={{real .GravityWave.Helim}} fc2={{real .GravityWave.Fc2}}
  sigbot_gwd={{real .GravityWave.SigbotGwd}} alphaj={{.GravityWave.Alphaj}}
 &end
 &landnml
  proglai={{.Land.Proglai}} progvcmax={{.Land.Progvcmax}} ccycle={{.Land.Ccycle}}
  soil_struc={{.Land.SoilStruc}} fwsoil_switch={{.Land.FwsoilSwitch}}
  cable_pop={{.Land.CablePop}} gs_switch={{.Land.GsSwitch}}
  cable_litter={{.Land.CableLitter}} cable_climate={{.Land.CableClimate}}
 &end
 &mlonml
  mlodiff=0 mlomfix=2 otaumode=1
  rivermd=1
 &end
 &tin &end
 &soilin &end
{{end}}
{{- define "convection"}} &kuonml
{{convection .Config.Convection}}
  nmr={{.Physics.Nmr}}
  nevapls=0 ncloud={{.Physics.Ncloud}} acon={{real .Physics.Acon}} bcon={{real .Physics.Bcon}}
 &end
{{- end}}`)

// convectionSchemes holds the cumulus parameters of each convection
// option, in option order.
var convectionSchemes = []string{
	// 2014
	`  alfsea=1.10 alflnd=1.25
  convfact=1.05 convtime=-2030.60
  tied_con=0.85 mdelay=0
  fldown=-0.3
  iterconv=3
  ksc=0 kscsea=0 kscmom=1 dsig2=0.1
  mbase=0 nbase=10
  methprec=5 detrain=0.15 methdetr=3
  ncvcloud=0
  nevapcc=0 entrain=0.1
  nuvconv=-3
  rhcv=0.1 rhmois=0. tied_over=-26.`,
	// 2015a
	`  alfsea=1.05 alflnd=1.20
  convfact=1.05 convtime=-2030.60
  fldown=-0.3
  iterconv=3
  ksc=0 kscsea=0 kscmom=1 dsig2=0.1
  mbase=4 nbase=-2
  methprec=5 detrain=0.1 methdetr=-2
  mdelay=0
  ncvcloud=0
  nevapcc=0 entrain=-0.5
  nuvconv=-3
  rhmois=0. rhcv=0.1
  tied_con=0. tied_over=2626.
  nclddia=12`,
	// 2015b
	`  nkuo=23 sig_ct=1. rhcv=0.1 rhmois=0. convfact=1.05 convtime=-2030.60
  alflnd=1.2 alfsea=1.10 fldown=-0.3 iterconv=3 ncvcloud=0 nevapcc=0
  nuvconv=-3
  mbase=4 mdelay=0 methprec=5 nbase=-10 detrain=0.1 entrain=-0.5
  methdetr=-1 detrainx=0. dsig2=0.1 dsig4=1.
  ksc=0 kscsea=0 sigkscb=0.95 sigksct=0.8 tied_con=0. tied_over=2626.
  ldr=1 nclddia=12 nstab_cld=0 nrhcrit=10 sigcll=0.95`,
	// 2017
	`  nkuo=21 iterconv=3 ksc=0 kscsea=0 mdelay=0
  alflnd=1.10 alfsea=1.10 convfact=1.05 convtime=-3030.60
  detrain=0.15 detrainx=0. dsig4=1. entrain=-0.5 fldown=-0.3
  mbase=1 nbase=3
  methdetr=-1 methprec=5 ncvcloud=0 nevapcc=0 nuvconv=-3
  rhcv=0. rhmois=0. tied_con=0. tied_over=2626.
  ldr=1 nclddia=12 nstab_cld=0 nrhcrit=10 sigcll=0.95
  dsig2=0.1 kscmom=0 sig_ct=1. sigkscb=0.95 sigksct=0.8 tied_rh=0.`,
}

// Render writes the model namelist.
func (in Input) Render(w io.Writer) error {
	if in.Config.Convection < 0 || in.Config.Convection >= len(convectionSchemes) {
		return fmt.Errorf("namelist: invalid convection option %d", in.Config.Convection)
	}
	return render(w, inputTemplate, in)
}
