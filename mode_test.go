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
	"errors"
	"testing"
)

func TestStageModesTotal(t *testing.T) {
	for _, m := range AllStageModes() {
		stages, err := ResolveStages(m)
		if err != nil {
			t.Errorf("%v: %v", m, err)
		}
		if !stages.Prepare && !stages.Simulate && !stages.Postprocess {
			t.Errorf("%v: no active stages", m)
		}
		parsed, err := ParseStageMode(m.String())
		if err != nil {
			t.Errorf("%v: %v", m, err)
		}
		if parsed != m {
			t.Errorf("%v != %v", parsed, m)
		}
		ds := downscalingTable[m]
		if ds.hostMbd != m.NeedsHost() {
			t.Errorf("%v: nudging (%v) doesn't match host forcing (%v)", m, ds.hostMbd, m.NeedsHost())
		}
		if -ds.d.Nhstest != m.Aquaplanet() {
			t.Errorf("%v: nhstest %d doesn't match aquaplanet %d", m, ds.d.Nhstest, m.Aquaplanet())
		}
	}
}

func TestResolveStages(t *testing.T) {
	tests := []struct {
		m    StageMode
		want StageActivation
	}{
		{NudgedGCM, StageActivation{true, true, true}},
		{SSTOnly, StageActivation{true, true, true}},
		{NudgedSelf, StageActivation{true, true, true}},
		{HighFrequencySST, StageActivation{true, true, true}},
		{LandSurfaceOnly, StageActivation{Prepare: true, Postprocess: true}},
		{PostprocessOnly, StageActivation{Postprocess: true}},
		{Aquaplanet5, StageActivation{true, true, true}},
	}
	for _, test := range tests {
		have, err := ResolveStages(test.m)
		if err != nil {
			t.Fatal(err)
		}
		if have != test.want {
			t.Errorf("%v: %+v != %+v", test.m, have, test.want)
		}
	}
	if _, err := ResolveStages(StageMode(99)); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("mode 99: %v", err)
	}
	if _, err := ResolveStages(StageMode(-1)); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("mode -1: %v", err)
	}
}

func TestParseStageMode(t *testing.T) {
	for s, want := range map[string]StageMode{
		"0": NudgedGCM, "1": SSTOnly, "2": NudgedSelf, "3": HighFrequencySST,
		"GCM": NudgedGCM, " aqua8 ": Aquaplanet8,
	} {
		have, err := ParseStageMode(s)
		if err != nil {
			t.Errorf("%q: %v", s, err)
			continue
		}
		if have != want {
			t.Errorf("%q: %v != %v", s, have, want)
		}
	}
	if _, err := ParseStageMode("4"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("4: %v", err)
	}
}

func TestCheckHost(t *testing.T) {
	tests := []struct {
		m      StageMode
		isCCAM bool
		ok     bool
	}{
		{NudgedGCM, false, true},
		{NudgedGCM, true, false},
		{NudgedSelf, true, true},
		{NudgedSelf, false, false},
		{HighFrequencySST, true, true},
		{HighFrequencySST, false, true},
		{HybridGCMSST, true, false},
		{SSTOnly, true, true},
	}
	for _, test := range tests {
		err := test.m.CheckHost(test.isCCAM)
		if (err == nil) != test.ok {
			t.Errorf("%v ccam=%v: %v", test.m, test.isCCAM, err)
		}
	}
}

func TestHostTraits(t *testing.T) {
	for _, m := range AllStageModes() {
		if m.HostChecked() && !m.NeedsHost() {
			t.Errorf("%v: host is checked but not needed", m)
		}
		if m.InitFromHost() && !m.NeedsHost() {
			t.Errorf("%v: initialized from a host it doesn't have", m)
		}
	}
	if HighFrequencySST.HostChecked() {
		t.Errorf("%v should accept any host", HighFrequencySST)
	}
	if !NudgedSelf.HostChecked() || !HybridGCMSST.HostChecked() {
		t.Error("nudged modes should check the host")
	}
	if SSTOnly.InitFromHost() {
		t.Errorf("%v should start from the SST initial conditions", SSTOnly)
	}
}
