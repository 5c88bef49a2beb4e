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
	"fmt"
)

// These errors are fatal to the current iteration. None of them cause the
// checkpoint to advance, so a failed invocation can always be resubmitted.
var (
	// ErrInvalidCalendar is returned when day-length arithmetic is
	// requested for a calendar that has not been resolved.
	ErrInvalidCalendar = errors.New("runccam: invalid calendar")

	// ErrCalendarUnresolved is returned when a calendar probe result is not
	// recognized, or when a clock is advanced before its calendar is known.
	ErrCalendarUnresolved = errors.New("runccam: calendar could not be resolved")

	// ErrInvalidDate is returned for a date that does not exist in the
	// clock's calendar.
	ErrInvalidDate = errors.New("runccam: invalid date")

	// ErrCorruptCheckpoint is returned when a persisted marker can't be decoded.
	ErrCorruptCheckpoint = errors.New("runccam: corrupt checkpoint")

	// ErrUnknownMode is returned for stage modes outside of the enumeration.
	ErrUnknownMode = errors.New("runccam: unknown stage mode")

	// ErrResolutionTooFine is returned when the grid spacing is smaller
	// than the finest entry of the timestep table.
	ErrResolutionTooFine = errors.New("runccam: grid resolution is finer than 50 m")

	// ErrCadenceMismatch is matched by *CadenceMismatchError.
	ErrCadenceMismatch = errors.New("runccam: output cadence mismatch")

	// ErrAlreadyComplete is returned in postprocess-only mode when the
	// checkpoint is already past the configured end date.
	ErrAlreadyComplete = errors.New("runccam: simulation already completed; use the reset command to start again")

	// ErrMissingArtifact is returned when a required input or generated
	// file does not exist.
	ErrMissingArtifact = errors.New("runccam: missing artifact")

	// ErrCollaboratorFailed is matched by *CollaboratorError.
	ErrCollaboratorFailed = errors.New("runccam: collaborator failed")
)

// CadenceMismatchError names the pair of output cadences (in minutes)
// that are not integer multiples of each other.
type CadenceMismatchError struct {
	Outer, Inner               string
	OuterMinutes, InnerMinutes int
}

func (e *CadenceMismatchError) Error() string {
	return fmt.Sprintf("runccam: %s (%d min) must be a multiple of %s (%d min)",
		e.Outer, e.OuterMinutes, e.Inner, e.InnerMinutes)
}

// Is allows errors.Is(err, ErrCadenceMismatch).
func (e *CadenceMismatchError) Is(target error) bool { return target == ErrCadenceMismatch }

// CollaboratorError reports that an external tool did not report success.
// LogPath is the file the operator should inspect.
type CollaboratorError struct {
	Name    string
	LogPath string
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("runccam: an error occurred while running %s (%v); check %s for details",
			e.Name, e.Err, e.LogPath)
	}
	return fmt.Sprintf("runccam: an error occurred while running %s; check %s for details",
		e.Name, e.LogPath)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrCollaboratorFailed).
func (e *CollaboratorError) Is(target error) bool { return target == ErrCollaboratorFailed }

// MissingArtifact returns an error wrapping ErrMissingArtifact for path.
func MissingArtifact(path string) error {
	return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
}

// IsTransient reports whether err belongs to the class of failures that
// may succeed when the invocation is simply resubmitted.
func IsTransient(err error) bool {
	return errors.Is(err, ErrMissingArtifact) || errors.Is(err, ErrCollaboratorFailed)
}
