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

package ccamutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ccam-tools/runccam"
	"github.com/ccam-tools/runccam/archive"
	"github.com/ccam-tools/runccam/tools"
	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
)

// newLogger returns a logger writing to standard error and, if LogFile
// is set, to a file in the run directory. The returned function closes
// the log file.
func (cfg *Cfg) newLogger(c runccam.RunConfig) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	lvl, err := logrus.ParseLevel(cfg.GetString("LogLevel"))
	if err != nil {
		return nil, nil, fmt.Errorf("ccamutil: %v", err)
	}
	if cfg.GetBool("verbose") {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)

	noop := func() error { return nil }
	name := os.ExpandEnv(cfg.GetString("LogFile"))
	if name == "" {
		return log, noop, nil
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(c.Dirs.Home, name)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("ccamutil: problem creating log file: %v", err)
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return log, f.Close, nil
}

// Run runs one batch of the configured simulation.
func (cfg *Cfg) Run(ctx context.Context) (runccam.Result, error) {
	c, err := cfg.RunConfig()
	if err != nil {
		return runccam.Result{}, err
	}
	if err = archive.MakeDirs(c); err != nil {
		return runccam.Result{}, err
	}
	logger, closeLog, err := cfg.newLogger(c)
	if err != nil {
		return runccam.Result{}, err
	}
	defer closeLog()
	log := logger.WithFields(logrus.Fields{
		"run":        c.Name,
		"invocation": uuid.New().String(),
	})
	log.WithFields(logrus.Fields{
		"mode":     c.Mode,
		"calendar": c.Calendar,
		"domain":   c.DomainName(),
	}).Infof("runccam v%s starting", runccam.Version)

	store, err := archive.NewStore(ctx, c, log)
	if err != nil {
		return runccam.Result{}, err
	}
	defer store.Close()

	r, err := tools.New(c, store, log).Scheduler(c, log).Run(ctx)
	if err != nil {
		var ce *runccam.CollaboratorError
		if errors.As(err, &ce) && ce.LogPath != "" {
			log = log.WithField("log", ce.LogPath)
		}
		log.WithError(err).WithField("state", r.State).Error("run stopped")
		return r, err
	}
	log.WithFields(logrus.Fields{
		"state":      r.State,
		"flag":       r.Flag,
		"iterations": r.Iterations,
	}).Info("run finished")
	return r, nil
}

// current returns the clock of the next work unit.
func current(ctx context.Context, c runccam.RunConfig) (runccam.Clock, error) {
	d, ok, err := loadCheckpoint(runccam.NewCheckpointStore(c.Dirs.Home), c.Calendar)
	if err != nil {
		return runccam.Clock{}, err
	}
	if !ok {
		d = c.Start
	}
	clock, err := runccam.NewClock(d, c.Calendar)
	if err != nil || c.Calendar.Resolved() {
		return clock, err
	}
	p := &tools.Probe{Config: c}
	cal, err := p.ProbeCalendar(ctx, clock.Date)
	if err != nil {
		return clock, fmt.Errorf("%w: %v", runccam.ErrCalendarUnresolved, err)
	}
	return clock.Resolve(cal)
}

// loadCheckpoint loads the checkpoint and checks that its date exists
// in cal, when cal is known.
func loadCheckpoint(store *runccam.CheckpointStore, cal runccam.Calendar) (runccam.Date, bool, error) {
	d, ok, err := store.Load()
	if err != nil || !ok || !cal.Resolved() {
		return d, ok, err
	}
	if _, err = runccam.NewClock(d, cal); err != nil {
		return d, ok, fmt.Errorf("%w: %v", runccam.ErrCorruptCheckpoint, err)
	}
	return d, ok, nil
}

// Status writes the progress of the simulation to w.
func (cfg *Cfg) Status(ctx context.Context, w io.Writer) error {
	c, err := cfg.RunConfig()
	if err != nil {
		return err
	}
	store := runccam.NewCheckpointStore(c.Dirs.Home)
	d, ok, err := loadCheckpoint(store, c.Calendar)
	if err != nil {
		return err
	}
	flag, err := store.LoadContinuation()
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(w, "next date:        %v\n", d)
	} else {
		fmt.Fprintf(w, "next date:        %v (not started)\n", c.Start)
	}
	fmt.Fprintf(w, "end date:         %v\n", c.End)
	fmt.Fprintf(w, "continuation:     %v\n", flag)

	s := &runccam.StalenessDetector{
		Dir:   c.VegDir(),
		Tag:   runccam.LandUseTag(c.LandSurface),
		Probe: &tools.Probe{Config: c},
	}
	st, err := s.Check(ctx, c.Fingerprint())
	if err != nil {
		fmt.Fprintf(w, "surface datasets: %v (%v)\n", st, err)
	} else {
		fmt.Fprintf(w, "surface datasets: %v\n", st)
	}
	return nil
}

// Plan writes what the next invocation will do in its first work unit
// to w.
func (cfg *Cfg) Plan(ctx context.Context, w io.Writer) error {
	c, err := cfg.RunConfig()
	if err != nil {
		return err
	}
	stages, err := runccam.ResolveStages(c.Mode)
	if err != nil {
		return err
	}
	clock, err := current(ctx, c)
	if err != nil {
		return err
	}
	plan, err := runccam.NewMonthPlan(c, clock)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v (%v calendar)\n", clock.Date, clock.Calendar)
	pretty.Fprintf(w, "%# v\n", stages)
	if stages.Simulate || stages.Postprocess {
		t, err := runccam.ResolveTiming(c)
		if err != nil {
			return err
		}
		pretty.Fprintf(w, "%# v\n", t)
	}
	if stages.Simulate {
		p, err := runccam.ResolvePhysics(c)
		if err != nil {
			return err
		}
		pretty.Fprintf(w, "%# v\n", p)
	}
	pretty.Fprintf(w, "%# v\n", plan)
	return nil
}
