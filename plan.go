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
	"path/filepath"
	"strings"
)

// HistoricScenario is the emission scenario used before 2010.
const HistoricScenario = "historic"

// EraInterimPrefix is the host prefix of the ERA-Interim driven CCAM
// files, which are stored as single netCDF files.
const EraInterimPrefix = "ccam_eraint_"

// MonthPlan holds the dates and file names used by one simulated month.
type MonthPlan struct {
	Date Date // first day of the month
	Days int
	Leap int

	Scenario               string
	DecadeStart, DecadeEnd int

	Prev, Next, NextNext Date

	// Nrungcm is -1 for the first month of a run, when the model starts
	// from IFile rather than from its own restart file.
	Nrungcm int

	IFile    string // initial conditions or restart file
	OFile    string // model output
	Mesonest string // host fields
	RestFile string // restart file written by this month

	Ozone, CO2 string

	VegPrev, VegFile, VegNext, VegNextNext string
}

// Mesonest returns the name of the host forcing file for month d.
func (c RunConfig) Mesonest(d Date) string {
	if c.BoundaryPrefix == EraInterimPrefix {
		return fmt.Sprintf("%s%04d%02d.nc", c.BoundaryPrefix, d.Year, d.Month)
	}
	return fmt.Sprintf("%s.%04d%02d", c.BoundaryPrefix, d.Year, d.Month)
}

// OutputName returns the name of the model output for month d.
func (c RunConfig) OutputName(d Date) string {
	return fmt.Sprintf("%s.%04d%02d", c.Name, d.Year, d.Month)
}

// RestartName returns the name of the restart file written at the end
// of month d.
func (c RunConfig) RestartName(d Date) string {
	return fmt.Sprintf("Rest%s.%04d%02d", c.Name, d.Year, d.Month)
}

// NewMonthPlan returns the plan for the month containing the clock.
// The clock's calendar must be resolved.
func NewMonthPlan(c RunConfig, clock Clock) (MonthPlan, error) {
	m := MonthOf(clock.Year, clock.Month)
	days, err := DaysInMonth(m.Year, m.Month, clock.Calendar)
	if err != nil {
		return MonthPlan{}, err
	}
	leap, err := clock.Calendar.LeapCode()
	if err != nil {
		return MonthPlan{}, err
	}
	t, err := traits(c.Mode)
	if err != nil {
		return MonthPlan{}, err
	}
	p := MonthPlan{
		Date:        m,
		Days:        days,
		Leap:        leap,
		Scenario:    c.Scenario,
		DecadeStart: m.Year / 10 * 10,
		Prev:        m.PrevMonth(),
		Next:        m.NextMonth(),
		NextNext:    m.NextMonth().NextMonth(),
		OFile:       c.OutputName(m),
		Mesonest:    c.Mesonest(m),
		RestFile:    c.RestartName(m),
	}
	p.DecadeEnd = p.DecadeStart + 9
	if m.Year < 2010 {
		p.Scenario = HistoricScenario
	}

	p.IFile = c.RestartName(p.Prev)
	if m.YearMonth() == c.Start.YearMonth() {
		p.Nrungcm = -1
		if t.initFromHost {
			p.IFile = p.Mesonest
		} else {
			p.IFile = c.SSTInit
		}
	}

	stdat := c.Dirs.Static
	if p.Scenario == HistoricScenario || m.Year < 2005 {
		p.Ozone = filepath.Join(stdat, c.CMIP, HistoricScenario, fmt.Sprintf(
			"pp.Ozone_CMIP5_ACC_SPARC_%d-%d_historic_T3M_O3.nc", p.DecadeStart, p.DecadeEnd))
	} else {
		p.Ozone = filepath.Join(stdat, c.CMIP, p.Scenario, fmt.Sprintf(
			"pp.Ozone_CMIP5_ACC_SPARC_%d-%d_%s_T3M_O3.nc", p.DecadeStart, p.DecadeEnd, p.Scenario))
	}
	p.CO2 = filepath.Join(stdat, c.CMIP, p.Scenario+"_MIDYR_CONC.DAT")

	domain := c.DomainName()
	veg := func(d Date) string { return fmt.Sprintf("veg%s.%02d", domain, d.Month) }
	p.VegPrev, p.VegFile = veg(p.Prev), veg(m)
	p.VegNext, p.VegNextNext = veg(p.Next), veg(p.NextNext)
	return p, nil
}

// AerosolInput is an emission dataset read by the aerosol emission
// generator. Pattern may match several versions of the dataset; the
// newest one is used.
type AerosolInput struct {
	Key, Pattern string
}

// AerosolInputs returns the emission datasets for the plan's decade.
func (p MonthPlan) AerosolInputs(c RunConfig) []AerosolInput {
	dir := filepath.Join(c.Dirs.Static, c.CMIP, p.Scenario)
	var name func(species, source string) string
	switch {
	case p.Scenario != HistoricScenario && p.Date.Year >= 2010:
		name = func(species, source string) string {
			if source == "biom" {
				source = "biomassburning"
			}
			return fmt.Sprintf("IPCC_emissions_%s_%s_%s_%d*.nc", p.Scenario, species, sourceName(source), p.DecadeStart)
		}
	default:
		dir = filepath.Join(c.Dirs.Static, c.CMIP, HistoricScenario)
		name = func(species, source string) string {
			if source == "biom" {
				return fmt.Sprintf("IPCC_GriddedBiomassBurningEmissions_%s_decadalmonthlymean%d*.nc", species, p.DecadeStart)
			}
			return fmt.Sprintf("IPCC_emissions_%s_%s_%d*.nc", species, sourceName(source), p.DecadeStart)
		}
	}
	var o []AerosolInput
	for _, species := range []string{"SO2", "BC", "OC"} {
		for _, source := range []string{"anth", "ship", "biom"} {
			o = append(o, AerosolInput{
				Key:     fmt.Sprintf("%s_%s", strings.ToLower(species), source),
				Pattern: filepath.Join(dir, name(species, source)),
			})
		}
	}
	return o
}

// AerosolFixedInputs returns the emission datasets that don't depend on
// the date.
func AerosolFixedInputs(c RunConfig) []AerosolInput {
	return []AerosolInput{
		{Key: "volcano", Pattern: filepath.Join(c.Dirs.Static, "contineous_volc.nc")},
		{Key: "dmsfile", Pattern: filepath.Join(c.Dirs.Static, "dmsemiss.nc")},
		{Key: "dustfile", Pattern: filepath.Join(c.Dirs.Static, "ginoux.nc")},
	}
}

func sourceName(source string) string {
	switch source {
	case "anth":
		return "anthropogenic"
	case "ship":
		return "ships"
	}
	return source
}
