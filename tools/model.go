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
	"context"
	"fmt"

	"github.com/ccam-tools/runccam"
	"github.com/sirupsen/logrus"
)

// Model runs CCAM. It implements runccam.ModelRunner.
type Model struct {
	Config   runccam.RunConfig
	Launcher *Launcher
	Log      logrus.FieldLogger
}

// RunMonth runs the model for one month and removes the host fields
// it consumed.
func (m *Model) RunMonth(ctx context.Context, u runccam.WorkUnit) error {
	c := m.Config
	stdout := fmt.Sprintf("prnew.%s.%s", u.Plan.Date.Stamp(), c.Name)
	err := m.Launcher.Run(ctx, Command{
		Name:   "globpea",
		Path:   c.Tools.Model,
		NProc:  c.NProc,
		Stdout: stdout,
		Stderr: fmt.Sprintf("err.%04d", u.Plan.Date.Year),
		Marker: true,
	})
	if err != nil {
		return err
	}
	m.logger().WithField("log", stdout).Debug("model month complete")
	if !c.Mode.NeedsHost() {
		return nil
	}
	mesonest := m.Launcher.path(u.Plan.Mesonest)
	return removeAll(mesonest, mesonest+rawSuffix)
}

func (m *Model) logger() logrus.FieldLogger {
	if m.Log == nil {
		return logrus.StandardLogger()
	}
	return m.Log
}

var _ runccam.ModelRunner = (*Model)(nil)
