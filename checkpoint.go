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
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Names of the files kept by CheckpointStore.
const (
	CheckpointFile   = "year.qm"
	ContinuationFile = "restart.qm"
)

// Continuation is the marker that tells an external resubmission loop
// whether the run should be submitted again.
type Continuation int

// These are the continuation states.
const (
	Absent   Continuation = iota // no marker; the previous invocation did not finish
	Continue                     // resubmit
	Complete                     // the end date has been reached
)

func (c Continuation) String() string {
	switch c {
	case Continue:
		return "Continue"
	case Complete:
		return "Complete"
	default:
		return "Absent"
	}
}

// CheckpointStore persists simulation progress in Dir.
type CheckpointStore struct {
	Dir string

	// Legacy causes month-granularity checkpoints to be written
	// as YYYYMM rather than YYYYMMDD.
	Legacy bool
}

// NewCheckpointStore returns a store that keeps its files in dir.
func NewCheckpointStore(dir string) *CheckpointStore {
	return &CheckpointStore{Dir: dir}
}

func (s *CheckpointStore) datePath() string { return filepath.Join(s.Dir, CheckpointFile) }
func (s *CheckpointStore) flagPath() string { return filepath.Join(s.Dir, ContinuationFile) }

// Load returns the checkpointed date. ok is false if there is no checkpoint.
func (s *CheckpointStore) Load() (d Date, ok bool, err error) {
	b, err := ioutil.ReadFile(s.datePath())
	if os.IsNotExist(err) {
		return Date{}, false, nil
	} else if err != nil {
		return Date{}, false, fmt.Errorf("runccam: reading checkpoint: %v", err)
	}
	d, err = ParseCheckpoint(string(b))
	if err != nil {
		return Date{}, false, fmt.Errorf("%w (%s)", err, s.datePath())
	}
	return d, true, nil
}

// Save replaces the checkpoint with d.
func (s *CheckpointStore) Save(d Date) error {
	return WriteFileAtomic(s.datePath(), []byte(FormatCheckpoint(d, s.Legacy)))
}

// Reset removes both the checkpoint and the continuation marker so the
// next invocation starts from the configured start date.
func (s *CheckpointStore) Reset() error {
	for _, p := range []string{s.datePath(), s.flagPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("runccam: resetting checkpoint: %v", err)
		}
	}
	return nil
}

// LoadContinuation returns the persisted continuation marker.
func (s *CheckpointStore) LoadContinuation() (Continuation, error) {
	b, err := ioutil.ReadFile(s.flagPath())
	if os.IsNotExist(err) {
		return Absent, nil
	} else if err != nil {
		return Absent, fmt.Errorf("runccam: reading continuation flag: %v", err)
	}
	switch strings.TrimSpace(string(b)) {
	case "True":
		return Continue, nil
	case "Complete":
		return Complete, nil
	default:
		return Absent, fmt.Errorf("%w: invalid continuation flag %q in %s",
			ErrCorruptCheckpoint, string(b), s.flagPath())
	}
}

// SaveContinuation persists c. Saving Absent removes the marker.
func (s *CheckpointStore) SaveContinuation(c Continuation) error {
	switch c {
	case Continue:
		return WriteFileAtomic(s.flagPath(), []byte("True"))
	case Complete:
		return WriteFileAtomic(s.flagPath(), []byte("Complete"))
	default:
		return s.ClearContinuation()
	}
}

// ClearContinuation removes the continuation marker.
func (s *CheckpointStore) ClearContinuation() error {
	if err := os.Remove(s.flagPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("runccam: clearing continuation flag: %v", err)
	}
	return nil
}

// FormatCheckpoint encodes d. Dates that fall on the first of the month
// are written as YYYYMM when legacy is true.
func FormatCheckpoint(d Date, legacy bool) string {
	if legacy && d.Day == 1 {
		return fmt.Sprintf("%04d%02d", d.Year, d.Month)
	}
	return d.Stamp()
}

// ParseCheckpoint decodes a checkpoint record. Both the legacy YYYYMM
// encoding and the YYYYMMDD encoding are accepted.
func ParseCheckpoint(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if r < '0' || r > '9' {
			return Date{}, fmt.Errorf("%w: %q is not numeric", ErrCorruptCheckpoint, s)
		}
	}
	var d Date
	switch len(s) {
	case 6:
		d = Date{Year: atoi(s[0:4]), Month: atoi(s[4:6]), Day: 1}
	case 8:
		d = Date{Year: atoi(s[0:4]), Month: atoi(s[4:6]), Day: atoi(s[6:8])}
	default:
		return Date{}, fmt.Errorf("%w: %q has %d digits, want 6 or 8", ErrCorruptCheckpoint, s, len(s))
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > maxMonthDays[d.Month-1] {
		return Date{}, fmt.Errorf("%w: %q is not a valid date", ErrCorruptCheckpoint, s)
	}
	return d, nil
}

// maxMonthDays is the longest each month gets in any supported calendar.
// February has 30 days in the 360-day calendar; the exact length is
// checked once the calendar is known.
var maxMonthDays = [12]int{31, 30, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// atoi is only called on strings already checked to be digits.
func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

// WriteFileAtomic writes data to a temporary file in the same directory
// as path and then renames it over path, so readers never observe a
// partially written record.
func WriteFileAtomic(path string, data []byte) error {
	f, err := ioutil.TempFile(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("runccam: writing %s: %v", path, err)
	}
	tmp := f.Name()
	if _, err = f.Write(data); err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("runccam: writing %s: %v", path, err)
	}
	return nil
}
