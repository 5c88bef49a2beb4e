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
	"strings"
)

// StageMode selects how the model is forced and which stages run.
type StageMode int

// These are the stage modes. The first four correspond to the
// downscaling modes (dmode 0 to 3) of older run scripts.
const (
	NudgedGCM        StageMode = iota // spectral nudging toward a GCM host
	SSTOnly                           // forced by sea surface temperatures only
	NudgedSelf                        // spectral nudging toward a CCAM host
	HighFrequencySST                  // six-hourly SST forcing from a host
	LandSurfaceOnly                   // regenerate surface datasets only
	PostprocessOnly                   // post-process existing model output only
	HybridGCMSST                      // GCM host nudging with prescribed SSTs
	Aquaplanet1
	Aquaplanet2
	Aquaplanet3
	Aquaplanet4
	Aquaplanet5
	Aquaplanet6
	Aquaplanet7
	Aquaplanet8

	numStageModes
)

var stageModeNames = [numStageModes]string{
	NudgedGCM:        "gcm",
	SSTOnly:          "sst",
	NudgedSelf:       "ccam",
	HighFrequencySST: "sst6hr",
	LandSurfaceOnly:  "landsurface",
	PostprocessOnly:  "postprocess",
	HybridGCMSST:     "gcm-sst",
	Aquaplanet1:      "aqua1",
	Aquaplanet2:      "aqua2",
	Aquaplanet3:      "aqua3",
	Aquaplanet4:      "aqua4",
	Aquaplanet5:      "aqua5",
	Aquaplanet6:      "aqua6",
	Aquaplanet7:      "aqua7",
	Aquaplanet8:      "aqua8",
}

// AllStageModes returns every stage mode in declaration order.
func AllStageModes() []StageMode {
	o := make([]StageMode, numStageModes)
	for i := range o {
		o[i] = StageMode(i)
	}
	return o
}

// Valid reports whether m is a member of the enumeration.
func (m StageMode) Valid() bool { return m >= 0 && m < numStageModes }

func (m StageMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("StageMode(%d)", int(m))
	}
	return stageModeNames[m]
}

// Aquaplanet returns the aquaplanet experiment number (1 to 8), or 0 if
// m is not an aquaplanet mode.
func (m StageMode) Aquaplanet() int {
	if m >= Aquaplanet1 && m <= Aquaplanet8 {
		return int(m-Aquaplanet1) + 1
	}
	return 0
}

// ParseStageMode parses a stage mode name. The numeric downscaling
// mode codes 0 to 3 are accepted as well.
func ParseStageMode(s string) (StageMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "0":
		return NudgedGCM, nil
	case "1":
		return SSTOnly, nil
	case "2":
		return NudgedSelf, nil
	case "3":
		return HighFrequencySST, nil
	}
	for i, name := range stageModeNames {
		if s == name {
			return StageMode(i), nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// StageActivation records which of the three stages run.
type StageActivation struct {
	Prepare, Simulate, Postprocess bool
}

var allStages = StageActivation{Prepare: true, Simulate: true, Postprocess: true}

// hostKind describes the host atmospheric forcing a mode nudges toward.
type hostKind int

const (
	noHost   hostKind = iota
	gcmHost           // the host must not be a CCAM run
	ccamHost          // the host must be a CCAM run
	anyHost           // the host model is not checked
)

// modeTraits is the per-mode decision table. Every mode has an entry.
type modeTraits struct {
	stages StageActivation
	host   hostKind

	// sst is true when the run is forced by an SST file.
	sst bool

	// initFromHost is true when the first month starts from the host
	// fields rather than from the SST initial-conditions file.
	initFromHost bool
}

var modeTable = [numStageModes]modeTraits{
	NudgedGCM:        {stages: allStages, host: gcmHost, initFromHost: true},
	SSTOnly:          {stages: allStages, sst: true},
	NudgedSelf:       {stages: allStages, host: ccamHost, initFromHost: true},
	HighFrequencySST: {stages: allStages, host: anyHost, initFromHost: true},
	LandSurfaceOnly:  {stages: StageActivation{Prepare: true, Postprocess: true}},
	PostprocessOnly:  {stages: StageActivation{Postprocess: true}},
	HybridGCMSST:     {stages: allStages, host: gcmHost, sst: true, initFromHost: true},
	Aquaplanet1:      {stages: allStages},
	Aquaplanet2:      {stages: allStages},
	Aquaplanet3:      {stages: allStages},
	Aquaplanet4:      {stages: allStages},
	Aquaplanet5:      {stages: allStages},
	Aquaplanet6:      {stages: allStages},
	Aquaplanet7:      {stages: allStages},
	Aquaplanet8:      {stages: allStages},
}

func traits(m StageMode) (modeTraits, error) {
	if !m.Valid() {
		return modeTraits{}, fmt.Errorf("%w: %v", ErrUnknownMode, m)
	}
	return modeTable[m], nil
}

// ResolveStages returns the stages that are active in mode m.
func ResolveStages(m StageMode) (StageActivation, error) {
	t, err := traits(m)
	if err != nil {
		return StageActivation{}, err
	}
	return t.stages, nil
}

// NeedsHost reports whether mode m is forced by host atmospheric fields.
func (m StageMode) NeedsHost() bool {
	t, err := traits(m)
	return err == nil && t.host != noHost
}

// NeedsSST reports whether mode m is forced by an SST file.
func (m StageMode) NeedsSST() bool {
	t, err := traits(m)
	return err == nil && t.sst
}

// CheckHost checks that the kind of host model matches mode m.
// isCCAM reports whether the host files were written by CCAM.
func (m StageMode) CheckHost(isCCAM bool) error {
	t, err := traits(m)
	if err != nil {
		return err
	}
	switch {
	case t.host == gcmHost && isCCAM:
		return fmt.Errorf("runccam: CCAM is the host model; use mode %v", NudgedSelf)
	case t.host == ccamHost && !isCCAM:
		return fmt.Errorf("runccam: CCAM is not the host model; use mode %v", NudgedGCM)
	}
	return nil
}

// InitFromHost reports whether the first month of mode m starts from
// the host fields rather than from the SST initial conditions.
func (m StageMode) InitFromHost() bool {
	t, err := traits(m)
	return err == nil && t.initFromHost
}

// HostChecked reports whether the kind of host model must be checked
// before running mode m.
func (m StageMode) HostChecked() bool {
	t, err := traits(m)
	return err == nil && (t.host == gcmHost || t.host == ccamHost)
}
