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
	"github.com/ccam-tools/runccam"
	"github.com/sirupsen/logrus"
)

// Tools are the external collaborators of a run, sharing one launcher.
type Tools struct {
	Launcher  *Launcher
	Probe     *Probe
	Preparer  *Preparer
	Model     *Model
	Extractor *Extractor
}

// New returns the collaborators for c. Output is kept in store.
func New(c runccam.RunConfig, store Store, log logrus.FieldLogger) *Tools {
	l := NewLauncher(c, log)
	p := &Probe{Config: c}
	return &Tools{
		Launcher:  l,
		Probe:     p,
		Preparer:  &Preparer{Config: c, Launcher: l, Probe: p, Log: log},
		Model:     &Model{Config: c, Launcher: l, Log: log},
		Extractor: &Extractor{Config: c, Launcher: l, Store: store, Log: log},
	}
}

// Scheduler returns a scheduler that runs c with these tools.
func (t *Tools) Scheduler(c runccam.RunConfig, log logrus.FieldLogger) *runccam.Scheduler {
	store := runccam.NewCheckpointStore(c.Dirs.Home)
	store.Legacy = c.LegacyCheckpoint
	return &runccam.Scheduler{
		Config: c,
		Store:  store,
		Staleness: &runccam.StalenessDetector{
			Dir:   c.VegDir(),
			Tag:   runccam.LandUseTag(c.LandSurface),
			Probe: t.Probe,
		},
		Preparer:  t.Preparer,
		Model:     t.Model,
		Extractor: t.Extractor,
		Calendar:  t.Probe,
		Log:       log,
	}
}
