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

// Package tools runs the external programs that prepare the model
// inputs, run the model and post-process its output.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/ccam-tools/runccam"
	"github.com/sirupsen/logrus"
)

// Launcher runs external programs in a working directory.
type Launcher struct {
	Machine runccam.MachineType
	Dir     string

	// Mpirun and Srun are the parallel job launchers.
	// They default to "mpirun" and "srun".
	Mpirun, Srun string

	Log logrus.FieldLogger
}

// Command is one invocation of an external program.
type Command struct {
	// Name is the name the program reports itself by in its
	// completion message.
	Name string
	Path string
	Args []string

	// NProc is the number of processes of a parallel program, or 0
	// for a serial one.
	NProc int

	// Stdin is a file fed to the program's standard input. Stdout and
	// Stderr are the files its output is written to. Relative paths
	// are relative to the launcher's directory. Stdout defaults to
	// Name.log and Stderr defaults to Stdout.
	Stdin, Stdout, Stderr string

	// Marker requires the completion message in Stdout.
	Marker bool
}

// NewLauncher returns a launcher for c's machine that runs programs in
// c's work directory.
func NewLauncher(c runccam.RunConfig, log logrus.FieldLogger) *Launcher {
	return &Launcher{Machine: c.Machine, Dir: c.Dirs.Work, Log: log}
}

func (l *Launcher) logger() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

func (l *Launcher) path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.Dir, name)
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// commandLine returns the program and arguments that run c. On Cray
// machines every program goes through srun.
func (l *Launcher) commandLine(c Command) (string, []string) {
	switch {
	case l.Machine == runccam.Cray:
		n := c.NProc
		if n < 1 {
			n = 1
		}
		return or(l.Srun, "srun"), append([]string{"-n", strconv.Itoa(n), c.Path}, c.Args...)
	case c.NProc > 0:
		return or(l.Mpirun, "mpirun"), append([]string{"-np", strconv.Itoa(c.NProc), c.Path}, c.Args...)
	}
	return c.Path, c.Args
}

// Run runs c and waits for it to finish. A non-zero exit status or a
// missing completion message is reported as a *runccam.CollaboratorError
// naming the log file.
func (l *Launcher) Run(ctx context.Context, c Command) error {
	stdout := l.path(or(c.Stdout, c.Name+".log"))
	name, args := l.commandLine(c)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = l.Dir
	cmd.Env = append(cmd.Env, os.Environ()...)

	out, err := os.Create(stdout)
	if err != nil {
		return fmt.Errorf("tools: %v", err)
	}
	defer out.Close()
	cmd.Stdout, cmd.Stderr = out, out
	if c.Stderr != "" {
		e, err := os.Create(l.path(c.Stderr))
		if err != nil {
			return fmt.Errorf("tools: %v", err)
		}
		defer e.Close()
		cmd.Stderr = e
	}
	if c.Stdin != "" {
		in, err := os.Open(l.path(c.Stdin))
		if err != nil {
			return fmt.Errorf("tools: %v", err)
		}
		defer in.Close()
		cmd.Stdin = in
	}

	l.logger().WithFields(logrus.Fields{
		"tool": c.Name,
		"cmd":  append([]string{name}, args...),
	}).Debug("running")
	if err = cmd.Run(); err != nil {
		return &runccam.CollaboratorError{Name: c.Name, LogPath: stdout, Err: err}
	}
	if !c.Marker {
		return nil
	}
	ok, err := completed(stdout, c.Name)
	if err != nil {
		return fmt.Errorf("tools: %v", err)
	}
	if !ok {
		return &runccam.CollaboratorError{Name: c.Name, LogPath: stdout}
	}
	return nil
}

// completed reports whether the log file contains the completion
// message of program name.
func completed(log, name string) (bool, error) {
	b, err := ioutil.ReadFile(log)
	if err != nil {
		return false, err
	}
	return bytes.Contains(b, []byte(name+" completed successfully")), nil
}
