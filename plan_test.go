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
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

func TestNewMonthPlan(t *testing.T) {
	c := testConfig("")
	clock, err := NewClock(c.Start, Gregorian)
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewMonthPlan(c, clock)
	if err != nil {
		t.Fatal(err)
	}
	const veg = "veg96_135.0_-25.0_45.0km"
	want := MonthPlan{
		Date:        Date{2020, 1, 1},
		Days:        31,
		Leap:        1,
		Scenario:    "ssp245",
		DecadeStart: 2020,
		DecadeEnd:   2029,
		Prev:        Date{2019, 12, 1},
		Next:        Date{2020, 2, 1},
		NextNext:    Date{2020, 3, 1},
		Nrungcm:     -1,
		IFile:       "ccam_.202001",
		OFile:       "test.202001",
		Mesonest:    "ccam_.202001",
		RestFile:    "Resttest.202001",
		Ozone:       "/stdat/CMIP6/ssp245/pp.Ozone_CMIP5_ACC_SPARC_2020-2029_ssp245_T3M_O3.nc",
		CO2:         "/stdat/CMIP6/ssp245_MIDYR_CONC.DAT",
		VegPrev:     veg + ".12",
		VegFile:     veg + ".01",
		VegNext:     veg + ".02",
		VegNextNext: veg + ".03",
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("plans differ:\n%v", pretty.Diff(p, want))
	}

	p, err = NewMonthPlan(c, clock.AdvanceMonth())
	if err != nil {
		t.Fatal(err)
	}
	if p.Nrungcm != 0 || p.IFile != "Resttest.202001" || p.Days != 29 {
		t.Errorf("second month: nrungcm %d, ifile %s, days %d", p.Nrungcm, p.IFile, p.Days)
	}
}

func TestNewMonthPlanOptions(t *testing.T) {
	t.Run("sst start", func(t *testing.T) {
		c := testConfig("")
		c.Mode = SSTOnly
		p, err := NewMonthPlan(c, Clock{Date: c.Start, Calendar: NoLeap})
		if err != nil {
			t.Fatal(err)
		}
		if p.IFile != "sstinit.nc" || p.Leap != 0 {
			t.Errorf("ifile %s, leap %d", p.IFile, p.Leap)
		}
	})
	t.Run("historic", func(t *testing.T) {
		c := testConfig("")
		c.Start = Date{2005, 7, 1}
		p, err := NewMonthPlan(c, Clock{Date: Date{2005, 7, 15}, Calendar: Fixed360})
		if err != nil {
			t.Fatal(err)
		}
		if p.Scenario != HistoricScenario {
			t.Errorf("scenario %s", p.Scenario)
		}
		if want := "/stdat/CMIP6/historic/pp.Ozone_CMIP5_ACC_SPARC_2000-2009_historic_T3M_O3.nc"; p.Ozone != want {
			t.Errorf("%s != %s", p.Ozone, want)
		}
		if p.Date != (Date{2005, 7, 1}) || p.Days != 30 || p.Leap != 2 {
			t.Errorf("date %v, days %d, leap %d", p.Date, p.Days, p.Leap)
		}
	})
	t.Run("era-interim", func(t *testing.T) {
		c := testConfig("")
		c.BoundaryPrefix = "ccam_eraint_"
		if have, want := c.Mesonest(Date{1990, 3, 1}), "ccam_eraint_199003.nc"; have != want {
			t.Errorf("%s != %s", have, want)
		}
	})
	t.Run("unresolved calendar", func(t *testing.T) {
		c := testConfig("")
		if _, err := NewMonthPlan(c, Clock{Date: c.Start, Calendar: AutoDetect}); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestAerosolInputs(t *testing.T) {
	c := testConfig("")
	historic := MonthPlan{Date: Date{2000, 1, 1}, Scenario: HistoricScenario, DecadeStart: 2000}
	future := MonthPlan{Date: Date{2020, 1, 1}, Scenario: "ssp245", DecadeStart: 2020}

	tests := []struct {
		p    MonthPlan
		key  string
		want string
	}{
		{historic, "so2_anth", "IPCC_emissions_SO2_anthropogenic_2000*.nc"},
		{historic, "bc_ship", "IPCC_emissions_BC_ships_2000*.nc"},
		{historic, "oc_biom", "IPCC_GriddedBiomassBurningEmissions_OC_decadalmonthlymean2000*.nc"},
		{future, "so2_biom", "IPCC_emissions_ssp245_SO2_biomassburning_2020*.nc"},
		{future, "bc_anth", "IPCC_emissions_ssp245_BC_anthropogenic_2020*.nc"},
	}
	for _, test := range tests {
		inputs := test.p.AerosolInputs(c)
		if len(inputs) != 9 {
			t.Fatalf("%d inputs", len(inputs))
		}
		var found bool
		for _, in := range inputs {
			if in.Key != test.key {
				continue
			}
			found = true
			dir := filepath.Join("/stdat", "CMIP6", test.p.Scenario)
			if want := filepath.Join(dir, test.want); in.Pattern != want {
				t.Errorf("%s: %s != %s", test.key, in.Pattern, want)
			}
		}
		if !found {
			t.Errorf("missing %s", test.key)
		}
	}
}
