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
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// WorkUnit is the unit of work handed to the stage collaborators: one
// month, or one day in daily postprocess-only mode.
type WorkUnit struct {
	Clock   Clock
	Daily   bool
	Plan    MonthPlan
	Timing  Timing  // zero if neither simulation nor post-processing is active
	Physics Physics // zero if simulation is not active
}

// Preparer generates the surface datasets and the monthly model inputs.
type Preparer interface {
	// Regenerate rebuilds the surface datasets. s is Stale to rebuild
	// all of them or LandUseStale to rebuild the land-use datasets only.
	Regenerate(ctx context.Context, s Staleness) error

	// PrepareMonth creates the forcing and parameter files for one month
	// of simulation and checks that every model input exists.
	PrepareMonth(ctx context.Context, u WorkUnit) error
}

// ModelRunner runs the model for one month.
type ModelRunner interface {
	RunMonth(ctx context.Context, u WorkUnit) error
}

// Extractor post-processes the model output of one work unit.
type Extractor interface {
	Extract(ctx context.Context, u WorkUnit) error
}

// CalendarProbe returns the calendar attribute of the forcing data for
// the given month.
type CalendarProbe interface {
	ProbeCalendar(ctx context.Context, d Date) (string, error)
}

// State is the state of a Scheduler.
type State int

// These are the scheduler states.
const (
	Idle State = iota
	ClockLoaded
	StageCheck
	BatchExhausted
	TerminalReached
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case ClockLoaded:
		return "ClockLoaded"
	case StageCheck:
		return "StageCheck"
	case BatchExhausted:
		return "BatchExhausted"
	case TerminalReached:
		return "TerminalReached"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result summarizes one invocation of the scheduler.
type Result struct {
	State      State
	Flag       Continuation
	Clock      Clock
	Iterations int
}

// Scheduler runs the stages of a simulation one work unit at a time,
// persisting progress after every unit so an interrupted invocation can
// be resubmitted.
type Scheduler struct {
	Config    RunConfig
	Store     *CheckpointStore
	Staleness *StalenessDetector
	Preparer  Preparer
	Model     ModelRunner
	Extractor Extractor
	Calendar  CalendarProbe
	Log       logrus.FieldLogger

	state   State
	stages  *StageActivation
	timing  *Timing
	physics *Physics
}

// State returns the current state of the scheduler.
func (s *Scheduler) State() State { return s.state }

func (s *Scheduler) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// Run processes up to Config.MaxIterations work units. Collaborator
// failures are returned immediately without advancing the checkpoint.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	s.state = Idle
	log := s.logger()
	cfg := s.Config

	flag, err := s.Store.LoadContinuation()
	if err != nil {
		return Result{State: s.state}, err
	}
	if flag == Complete {
		log.Warn("the simulation has already been completed; no work will be done")
		return s.terminate(Result{Flag: Complete})
	}

	start, ok, err := s.Store.Load()
	if err != nil {
		return Result{State: s.state}, err
	}
	if ok {
		log.WithField("date", start).Infof("simulation start date taken from %s; use the reset command if this is incorrect",
			s.Store.datePath())
	} else {
		start = cfg.Start
	}
	clock, err := NewClock(start, cfg.Calendar)
	if err != nil {
		return Result{State: s.state}, s.checkpointError(err, ok)
	}
	if err = s.Store.ClearContinuation(); err != nil {
		return Result{State: s.state}, err
	}
	s.state = ClockLoaded
	r := Result{State: s.state, Clock: clock, Flag: Absent}

	stages, err := s.activation()
	if err != nil {
		return r, err
	}
	daily := cfg.DailyPostprocess && cfg.Mode == PostprocessOnly

	for r.Iterations < cfg.MaxIterations {
		if clock.MonthAfter(cfg.End) {
			if cfg.Mode == PostprocessOnly && r.Iterations == 0 {
				return r, ErrAlreadyComplete
			}
			return s.terminate(r)
		}
		s.state = StageCheck
		r.State = s.state
		if clock, err = s.resolveCalendar(ctx, clock); err != nil {
			return r, s.checkpointError(err, ok && r.Iterations == 0)
		}
		r.Clock = clock
		if err = s.iterate(ctx, clock, stages, daily); err != nil {
			return r, err
		}
		if daily {
			if clock, err = clock.AdvanceDay(); err != nil {
				return r, err
			}
		} else {
			clock = clock.AdvanceMonth()
		}
		if err = s.Store.Save(clock.Date); err != nil {
			return r, err
		}
		r.Iterations++
		r.Clock = clock
	}

	if clock.MonthAfter(cfg.End) {
		return s.terminate(r)
	}
	s.state = BatchExhausted
	r.State, r.Flag = s.state, Continue
	log.WithField("date", clock.Date).Info("batch finished; the run should be resubmitted")
	return r, s.Store.SaveContinuation(Continue)
}

// checkpointError reports an impossible date read from the checkpoint
// as a corrupt checkpoint.
func (s *Scheduler) checkpointError(err error, loaded bool) error {
	if loaded && errors.Is(err, ErrInvalidDate) {
		return fmt.Errorf("%w: %s: %v", ErrCorruptCheckpoint, s.Store.datePath(), err)
	}
	return err
}

// terminate marks the run as complete.
func (s *Scheduler) terminate(r Result) (Result, error) {
	s.state = TerminalReached
	r.State, r.Flag = s.state, Complete
	s.logger().Info("the simulation is complete")
	return r, s.Store.SaveContinuation(Complete)
}

func (s *Scheduler) activation() (StageActivation, error) {
	if s.stages == nil {
		a, err := ResolveStages(s.Config.Mode)
		if err != nil {
			return a, err
		}
		s.stages = &a
	}
	return *s.stages, nil
}

func (s *Scheduler) resolveTiming() (Timing, error) {
	if s.timing == nil {
		t, err := ResolveTiming(s.Config)
		if err != nil {
			return t, err
		}
		s.logger().WithFields(logrus.Fields{
			"dt":       t.Dt,
			"dtout":    t.Dtout,
			"ktc_surf": t.KtcSurf,
		}).Debug("resolved model timestep")
		s.timing = &t
	}
	return *s.timing, nil
}

func (s *Scheduler) resolvePhysics() (Physics, error) {
	if s.physics == nil {
		p, err := ResolvePhysics(s.Config)
		if err != nil {
			return p, err
		}
		s.physics = &p
	}
	return *s.physics, nil
}

// resolveCalendar resolves an AutoDetect calendar from the forcing data.
func (s *Scheduler) resolveCalendar(ctx context.Context, c Clock) (Clock, error) {
	if c.Calendar.Resolved() {
		return c, nil
	}
	if s.Calendar == nil {
		return c, fmt.Errorf("%w: no calendar probe is available", ErrCalendarUnresolved)
	}
	probe, err := s.Calendar.ProbeCalendar(ctx, c.Date)
	if err != nil {
		return c, fmt.Errorf("%w: %v", ErrCalendarUnresolved, err)
	}
	c, err = c.Resolve(probe)
	if err != nil {
		return c, err
	}
	s.logger().WithField("calendar", c.Calendar).Info("detected calendar from forcing data")
	return c, nil
}

func (s *Scheduler) iterate(ctx context.Context, clock Clock, stages StageActivation, daily bool) error {
	u := WorkUnit{Clock: clock, Daily: daily}
	var err error
	if u.Plan, err = NewMonthPlan(s.Config, clock); err != nil {
		return err
	}
	if stages.Simulate || stages.Postprocess {
		if u.Timing, err = s.resolveTiming(); err != nil {
			return err
		}
	}
	if stages.Simulate {
		if u.Physics, err = s.resolvePhysics(); err != nil {
			return err
		}
	}
	log := s.logger().WithField("date", clock.Date)

	if stages.Prepare {
		log.WithField("stage", "prepare").Info("preparing input files")
		if err = s.prepare(ctx, u, stages.Simulate); err != nil {
			return err
		}
	}
	if stages.Simulate {
		log.WithField("stage", "simulate").Info("running model")
		if err = s.Model.RunMonth(ctx, u); err != nil {
			return err
		}
	}
	if stages.Postprocess {
		log.WithField("stage", "postprocess").Info("post-processing model output")
		if err = s.Extractor.Extract(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) prepare(ctx context.Context, u WorkUnit, simulate bool) error {
	fp := s.Config.Fingerprint()
	log := s.logger().WithFields(logrus.Fields{"stage": "prepare", "fingerprint": fp.Digest()})
	st, err := s.Staleness.Check(ctx, fp)
	if err != nil {
		log.WithError(err).Warn("could not check land-use datasets; regenerating surface datasets")
	}
	if st != Fresh {
		log.WithField("staleness", st).Info("regenerating surface datasets")
		if err = s.Preparer.Regenerate(ctx, st); err != nil {
			return err
		}
		if err = s.Staleness.Commit(fp); err != nil {
			return err
		}
	}
	if simulate {
		return s.Preparer.PrepareMonth(ctx, u)
	}
	return nil
}
