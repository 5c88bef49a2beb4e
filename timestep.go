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

// timestepTable relates grid spacing [m] to model timestep [s].
// It must stay sorted by increasing spacing.
var timestepTable = []struct {
	dx float64
	dt int
}{
	{50, 1}, {100, 2}, {200, 4}, {500, 10}, {1000, 20}, {2000, 40},
	{3000, 60}, {4000, 80}, {4500, 90}, {6000, 120}, {9000, 180},
	{12000, 240}, {15000, 300}, {18000, 360}, {30000, 600},
	{36000, 720}, {45000, 900}, {60000, 1200},
}

// MinGridSpacing is the finest supported grid spacing [m].
const MinGridSpacing = 50.

// ResolveTimestep returns the model timestep in seconds for grid spacing
// dx [m]. Every non-zero cadence [minutes] must be a multiple of the
// timestep. The table is scanned in full and the last qualifying entry
// wins, so a larger spacing can replace a timestep chosen earlier in
// the scan.
func ResolveTimestep(dx float64, cadences ...int) (int, error) {
	if !(dx >= MinGridSpacing) {
		return 0, ErrResolutionTooFine
	}
	var dt int
	for _, e := range timestepTable {
		if e.dx > dx {
			continue
		}
		ok := true
		for _, c := range cadences {
			if c != 0 && (60*c)%e.dt != 0 {
				ok = false
				break
			}
		}
		if ok {
			dt = e.dt
		}
	}
	return dt, nil
}

// Timing holds the time-step related parameters of a run.
type Timing struct {
	Dt      int // model timestep [s]
	Dtout   int // raw model output period [minutes]
	KtcSurf int // high-frequency output period [minutes]

	// Surface averaging window [steps] and number of averages per
	// raw output period, both zero when high-frequency output is off.
	Tbave, Tblock int
}

// ResolveTiming derives the timestep and output periods for c.
func ResolveTiming(c RunConfig) (Timing, error) {
	t := Timing{Dtout: 360}
	if c.OutputFormat == CTMOutput {
		t.Dtout = 60 // hourly output is needed for the CTM files
	}
	if c.Ktc < t.Dtout {
		t.Dtout = c.Ktc
	}
	t.KtcSurf = c.KtcSurf
	if c.SurfaceOutput == NoSurfaceOutput {
		t.KtcSurf = t.Dtout
	}

	dt, err := ResolveTimestep(c.GridResMeters(), t.Dtout, t.KtcSurf)
	if err != nil {
		return t, err
	}
	t.Dt = dt

	if c.Ktc%t.Dtout != 0 {
		return t, &CadenceMismatchError{Outer: "ktc", Inner: "dtout",
			OuterMinutes: c.Ktc, InnerMinutes: t.Dtout}
	}
	if c.SurfaceOutput != NoSurfaceOutput {
		if t.Dtout%t.KtcSurf != 0 {
			return t, &CadenceMismatchError{Outer: "dtout", Inner: "ktc_surf",
				OuterMinutes: t.Dtout, InnerMinutes: t.KtcSurf}
		}
		t.Tbave = t.KtcSurf * 60 / t.Dt
		t.Tblock = t.Dtout / t.KtcSurf
	}
	return t, nil
}

// StepsBetweenOutput returns the number of model steps per raw output.
func (t Timing) StepsBetweenOutput() int { return t.Dtout * 60 / t.Dt }

// Steps returns the number of model steps in the given number of days.
func (t Timing) Steps(days int) int { return days * 86400 / t.Dt }
