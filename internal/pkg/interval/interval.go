// Package interval implements half-open wall-clock intervals on a single calendar date.
package interval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"

	minutesPerDay = 24 * 60
)

var (
	ErrInvalidClock = errors.New("invalid clock value, expected HH:MM")
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmpty        = errors.New("interval start and end must differ")
)

// Clock is a wall-clock time as minutes since midnight.
type Clock int

func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(h*60 + m), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Interval is [Start, End). End <= Start means the interval runs past midnight.
type Interval struct {
	Start Clock
	End   Clock
}

func New(start, end Clock) (Interval, error) {
	if start == end {
		return Interval{}, ErrEmpty
	}
	return Interval{Start: start, End: end}, nil
}

// Parse builds an interval from two "HH:MM" strings.
func Parse(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return New(s, e)
}

func (iv Interval) WrapsMidnight() bool {
	return iv.End <= iv.Start
}

// endMinutes returns End on the same axis as Start, adding a day for wrapped intervals.
func (iv Interval) endMinutes() int {
	if iv.WrapsMidnight() {
		return int(iv.End) + minutesPerDay
	}
	return int(iv.End)
}

func (iv Interval) Minutes() int {
	return iv.endMinutes() - int(iv.Start)
}

// Duration returns the length in hours rounded to two decimals.
func (iv Interval) Duration() decimal.Decimal {
	return Duration(iv.Start, iv.End)
}

func Duration(start, end Clock) decimal.Decimal {
	mins := int(end) - int(start)
	if end <= start {
		mins += minutesPerDay
	}
	return decimal.NewFromInt(int64(mins)).Div(decimal.NewFromInt(60)).Round(2)
}

// Overlaps reports whether a and b share any instant. Touching endpoints do not overlap.
func Overlaps(a, b Interval) bool {
	return int(a.Start) < b.endMinutes() && int(b.Start) < a.endMinutes()
}

func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv, other)
}

// Contains reports whether inner lies fully inside block.
func Contains(block, inner Interval) bool {
	return block.Start <= inner.Start && inner.endMinutes() <= block.endMinutes()
}

func (iv Interval) String() string {
	return iv.Start.String() + "-" + iv.End.String()
}

// Span is an interval pinned to a calendar date, in minutes since the Unix epoch.
// Spans let intervals on neighbouring dates be compared, e.g. a 22:00-02:00
// booking against an 01:00-03:00 booking on the following day.
type Span struct {
	Start int64
	End   int64
}

func (iv Interval) On(day time.Time) Span {
	base := day.UTC().Truncate(24*time.Hour).Unix() / 60
	start := base + int64(iv.Start)
	return Span{Start: start, End: start + int64(iv.Minutes())}
}

func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}
