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

import "fmt"

// Nudging holds the spectral nudging strength parameters.
type Nudging struct {
	MbdBase, MbdMaxGrid, MbdMaxScale, KbotDav int
	SigRampLow                                float64
}

var nudgingTable = map[int]Nudging{
	0: {MbdBase: 20, MbdMaxGrid: 999999, MbdMaxScale: 3000, KbotDav: -900, SigRampLow: 0.05},
	1: {MbdBase: 20, MbdMaxGrid: 24, MbdMaxScale: 500, KbotDav: 1, SigRampLow: 0},
}

// Downscaling holds the forcing parameters that depend on the stage mode.
type Downscaling struct {
	Method                   int
	NudP, NudQ, NudT, NudUV  int
	Mfix, MfixQG, MfixAero   int
	Nbd, Mbd, Namip, NudAero int
	MhBs                     int
	Nhstest                  int // negative for aquaplanet experiments
}

// downscalingTable is total over the stage modes. Mbd is filled in from
// the nudging strength for modes that nudge toward a host.
var downscalingTable = [numStageModes]struct {
	d       Downscaling
	hostMbd bool
}{
	NudgedGCM:        {Downscaling{Method: 0, NudP: 1, NudT: 1, NudUV: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4}, true},
	SSTOnly:          {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, Namip: 14, MhBs: 4}, false},
	NudgedSelf:       {Downscaling{Method: 0, NudP: 1, NudQ: 1, NudT: 1, NudUV: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, NudAero: 1, MhBs: 3}, true},
	HighFrequencySST: {Downscaling{Method: 0, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4}, true},
	LandSurfaceOnly:  {Downscaling{Method: 0, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4}, false},
	PostprocessOnly:  {Downscaling{Method: 0, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4}, false},
	HybridGCMSST:     {Downscaling{Method: 0, NudP: 1, NudT: 1, NudUV: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, Namip: 14, MhBs: 4}, true},
	Aquaplanet1:      {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4, Nhstest: -1}, false},
	Aquaplanet2:      {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4, Nhstest: -2}, false},
	Aquaplanet3:      {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4, Nhstest: -3}, false},
	Aquaplanet4:      {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4, Nhstest: -4}, false},
	Aquaplanet5:      {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4, Nhstest: -5}, false},
	Aquaplanet6:      {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4, Nhstest: -6}, false},
	Aquaplanet7:      {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4, Nhstest: -7}, false},
	Aquaplanet8:      {Downscaling{Method: 1, Mfix: 3, MfixQG: 1, MfixAero: 1, MhBs: 4, Nhstest: -8}, false},
}

// OceanPhysics holds the ocean and ocean nudging parameters.
type OceanPhysics struct {
	Nmlo, MbdMlo                   int
	NudSST, NudSSS, NudOUV, NudSFH int
	KbotMlo                        int
}

var (
	interpolatedSST = OceanPhysics{KbotMlo: -1000}

	// dynamicalOcean nudges the ocean surface toward the host SSTs.
	dynamicalOcean = OceanPhysics{Nmlo: -3, MbdMlo: 20, NudSST: 1, KbotMlo: -100}

	// dynamicalOceanCCAM nudges the full ocean state toward a CCAM host.
	dynamicalOceanCCAM = OceanPhysics{Nmlo: -3, MbdMlo: 20, NudSST: 1, NudSSS: 1, NudOUV: 1, NudSFH: 1, KbotMlo: -1000}
)

// LandPhysics holds the land-surface and carbon-cycle parameters.
type LandPhysics struct {
	Nsib, SoilStruc, FwsoilSwitch                 int
	Ccycle, Proglai, Progvcmax                    int
	CablePop, GsSwitch, CableLitter, CableClimate int
}

// carbonTable is indexed by the carbon cycle option.
var carbonTable = [4]LandPhysics{
	{Ccycle: 0, Proglai: -1, Progvcmax: 0},
	{Ccycle: 3, Proglai: 1, Progvcmax: 1},
	{Ccycle: 2, Proglai: 1, Progvcmax: 1, CablePop: 1, GsSwitch: 1},
	{Ccycle: 2, Proglai: 1, Progvcmax: 1, CablePop: 1, GsSwitch: 1, CableClimate: 1},
}

// Mixing holds the boundary-layer parameters.
type Mixing struct {
	Nvmix, Nlocal int
	Amxlsq        float64
}

var mixingTable = [3]Mixing{
	{Nvmix: 3, Nlocal: 6, Amxlsq: 100},
	{Nvmix: 6, Nlocal: 7, Amxlsq: 9},
	{Nvmix: 7, Nlocal: 6, Amxlsq: 9},
}

// GravityWave holds the gravity-wave drag parameters.
type GravityWave struct {
	Ngwd                  int
	Helim, Fc2, SigbotGwd float64
	Alphaj                string
}

var (
	defaultGWD = GravityWave{Ngwd: -5, Helim: 800, Fc2: 1, SigbotGwd: 0, Alphaj: "0.000001"}

	// strongGWD is used with the 2015b and 2017 convection schemes.
	strongGWD = GravityWave{Ngwd: -20, Helim: 1600, Fc2: -0.5, SigbotGwd: 1, Alphaj: "0.025"}
)

// Physics holds every physical parameter written to the model namelist.
type Physics struct {
	Eigenv      string
	OceanLevels int
	Nmr         int
	Acon, Bcon  float64

	Nudging     Nudging
	Downscaling Downscaling
	Ncloud      int
	Nriver      int
	Ocean       OceanPhysics
	Land        LandPhysics
	Mixing      Mixing
	GravityWave GravityWave

	Iaero    int
	SulfFile string
}

// ResolvePhysics derives the physical parameters of the model from c.
func ResolvePhysics(c RunConfig) (Physics, error) {
	p := Physics{Nmr: 1, Acon: 0, Bcon: 0.02}
	var ok bool
	if p.Eigenv, ok = eigenvFiles[c.Domain.Levels]; !ok {
		return p, fmt.Errorf("runccam: unsupported number of model levels %d", c.Domain.Levels)
	}
	p.OceanLevels = oceanLevels[c.Domain.Levels]

	if p.Nudging, ok = nudgingTable[c.NudgeStrength]; !ok {
		return p, fmt.Errorf("runccam: invalid nudging strength %d", c.NudgeStrength)
	}

	if !c.Mode.Valid() {
		return p, fmt.Errorf("%w: %v", ErrUnknownMode, c.Mode)
	}
	ds := downscalingTable[c.Mode]
	p.Downscaling = ds.d
	if ds.hostMbd {
		p.Downscaling.Mbd = p.Nudging.MbdBase
	}

	switch c.Cloud {
	case 0:
		p.Ncloud = 0
	case 1:
		p.Ncloud = 2
	case 2:
		p.Ncloud = 3
	default:
		return p, fmt.Errorf("runccam: invalid cloud option %d", c.Cloud)
	}

	if c.Rivers {
		p.Nriver = -1
	}

	p.Ocean = interpolatedSST
	if c.Ocean {
		if !c.Rivers {
			return p, fmt.Errorf("runccam: rivers are a requirement for the dynamical ocean")
		}
		p.Ocean = dynamicalOcean
		if c.Mode == NudgedSelf {
			p.Ocean = dynamicalOceanCCAM
		}
	}

	if c.CarbonCycle < 0 || c.CarbonCycle >= len(carbonTable) {
		return p, fmt.Errorf("runccam: invalid carbon cycle option %d", c.CarbonCycle)
	}
	switch c.LandSurface {
	case CABLE:
		p.Land = carbonTable[c.CarbonCycle]
		p.Land.Nsib = 7
	case MODIS:
		if c.CarbonCycle != 0 {
			return p, fmt.Errorf("runccam: casa=%d requires sib=1 or sib=3", c.CarbonCycle)
		}
		p.Land = carbonTable[0]
		p.Land.Nsib = 5
	case CABLESLI:
		p.Land = carbonTable[c.CarbonCycle]
		p.Land.Nsib = 7
		p.Land.SoilStruc = 1
		p.Land.FwsoilSwitch = 3
		p.Land.CableLitter = 1
	default:
		return p, fmt.Errorf("runccam: invalid land surface option %d", c.LandSurface)
	}

	if c.BoundaryLayer < 0 || c.BoundaryLayer >= len(mixingTable) {
		return p, fmt.Errorf("runccam: invalid boundary layer option %d", c.BoundaryLayer)
	}
	p.Mixing = mixingTable[c.BoundaryLayer]

	switch c.Convection {
	case 0, 1:
		p.GravityWave = defaultGWD
	case 2, 3:
		p.GravityWave = strongGWD
	default:
		return p, fmt.Errorf("runccam: invalid convection option %d", c.Convection)
	}

	p.SulfFile = "none"
	if c.Aerosols {
		p.Iaero = -2
		p.SulfFile = "aero.nc"
	}
	return p, nil
}
