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
	"strings"
)

// Calendar is a calendar system used for simulation date arithmetic.
// The numeric values of the resolved calendars are the values of the
// model's "leap" namelist parameter.
type Calendar int

// These are the supported calendars.
const (
	NoLeap     Calendar = iota // 365-day years
	Gregorian                  // leap years following the Gregorian rule
	Fixed360                   // twelve 30-day months
	AutoDetect                 // resolved from the host forcing files
)

var calendarNames = map[Calendar]string{
	NoLeap:     "noleap",
	Gregorian:  "gregorian",
	Fixed360:   "360_day",
	AutoDetect: "auto",
}

func (c Calendar) String() string {
	if s, ok := calendarNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Calendar(%d)", int(c))
}

// Resolved reports whether c can be used for day-length arithmetic.
func (c Calendar) Resolved() bool {
	return c == NoLeap || c == Gregorian || c == Fixed360
}

// LeapCode returns the value of the model's leap parameter for c.
func (c Calendar) LeapCode() (int, error) {
	if !c.Resolved() {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCalendar, c)
	}
	return int(c), nil
}

// ParseCalendar parses a user calendar request. The numeric forms
// accepted by older run scripts ("0" and "1" for the leap flag) are
// also recognized.
func ParseCalendar(s string) (Calendar, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noleap", "365_day", "0":
		return NoLeap, nil
	case "gregorian", "leap", "standard", "1":
		return Gregorian, nil
	case "360_day", "360", "2":
		return Fixed360, nil
	case "auto", "":
		return AutoDetect, nil
	default:
		return AutoDetect, fmt.Errorf("%w: %q", ErrInvalidCalendar, s)
	}
}

// ResolveCalendar maps the calendar attribute of a date-stamped file
// to a calendar.
func ResolveCalendar(probe string) (Calendar, error) {
	switch strings.ToLower(strings.TrimSpace(probe)) {
	case "noleap", "no_leap", "365_day":
		return NoLeap, nil
	case "360_day":
		return Fixed360, nil
	case "gregorian", "standard", "proleptic_gregorian":
		return Gregorian, nil
	default:
		return AutoDetect, fmt.Errorf("%w: unrecognized calendar attribute %q", ErrCalendarUnresolved, probe)
	}
}

// IsLeapYear reports whether year is a leap year under the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int, cal Calendar) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("runccam: invalid month %d", month)
	}
	switch cal {
	case Fixed360:
		return 30, nil
	case NoLeap, Gregorian:
		switch month {
		case 2:
			if cal == Gregorian && IsLeapYear(year) {
				return 29, nil
			}
			return 28, nil
		case 4, 6, 9, 11:
			return 30, nil
		default:
			return 31, nil
		}
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidCalendar, cal)
	}
}

// Date is a simulation date. Day is 1 for month-granularity work.
type Date struct {
	Year, Month, Day int
}

// MonthOf returns the first day of the given month.
func MonthOf(year, month int) Date { return Date{Year: year, Month: month, Day: 1} }

func (d Date) String() string { return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day) }

// YearMonth returns d encoded as YYYYMM.
func (d Date) YearMonth() int { return d.Year*100 + d.Month }

// Stamp returns d encoded as YYYYMMDD.
func (d Date) Stamp() string { return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day) }

// MonthAfter reports whether the month of d is later than the month of end.
func (d Date) MonthAfter(end Date) bool { return d.YearMonth() > end.YearMonth() }

// PrevMonth returns the first day of the month before d.
func (d Date) PrevMonth() Date {
	if d.Month == 1 {
		return MonthOf(d.Year-1, 12)
	}
	return MonthOf(d.Year, d.Month-1)
}

// NextMonth returns the first day of the month after d.
func (d Date) NextMonth() Date {
	if d.Month == 12 {
		return MonthOf(d.Year+1, 1)
	}
	return MonthOf(d.Year, d.Month+1)
}

// Clock is the simulation clock.
type Clock struct {
	Date
	Calendar Calendar
}

// NewClock returns a clock at d after checking that d is a valid date.
// While cal is AutoDetect the day is only checked against 31.
func NewClock(d Date, cal Calendar) (Clock, error) {
	if d.Month < 1 || d.Month > 12 {
		return Clock{}, fmt.Errorf("%w: bad month in %v", ErrInvalidDate, d)
	}
	last := 31
	if cal.Resolved() {
		var err error
		if last, err = DaysInMonth(d.Year, d.Month, cal); err != nil {
			return Clock{}, err
		}
	} else if cal != AutoDetect {
		return Clock{}, fmt.Errorf("%w: %v", ErrInvalidCalendar, cal)
	}
	if d.Day < 1 || d.Day > last {
		return Clock{}, fmt.Errorf("%w: %v does not exist in the %v calendar", ErrInvalidDate, d, cal)
	}
	return Clock{Date: d, Calendar: cal}, nil
}

// DaysInMonth returns the length of the clock's current month.
func (c Clock) DaysInMonth() (int, error) {
	return DaysInMonth(c.Year, c.Month, c.Calendar)
}

// AdvanceDay returns the clock one day later, rolling over the month and
// year as needed.
func (c Clock) AdvanceDay() (Clock, error) {
	if !c.Calendar.Resolved() {
		return c, ErrCalendarUnresolved
	}
	n, err := c.DaysInMonth()
	if err != nil {
		return c, err
	}
	if c.Day < n {
		c.Day++
		return c, nil
	}
	c.Date = c.Date.NextMonth()
	return c, nil
}

// AdvanceMonth returns the clock at the first day of the next month.
func (c Clock) AdvanceMonth() Clock {
	c.Date = c.Date.NextMonth()
	return c
}

// Resolve returns the clock with its calendar resolved from probe. A clock
// whose calendar is already resolved is returned unchanged.
func (c Clock) Resolve(probe string) (Clock, error) {
	if c.Calendar.Resolved() {
		return c, nil
	}
	cal, err := ResolveCalendar(probe)
	if err != nil {
		return c, err
	}
	return NewClock(c.Date, cal)
}
