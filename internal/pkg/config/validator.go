package config

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the five standard fields: minute hour day month weekday.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule accepts five-field cron expressions such as
// "0 7 * * 1-5" (weekdays at 7:00).
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("cron schedule is empty")
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone accepts IANA names known to the system, e.g. "Asia/Tokyo".
func ValidateTimezone(name string) error {
	if name == "" {
		return errors.New("timezone is empty")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("timezone %q: %w", name, err)
	}
	return nil
}

// between checks lo <= v <= hi. An inverted range is a programming error and
// is reported as such.
func between[T cmp.Ordered](v, lo, hi T) error {
	switch {
	case lo > hi:
		return fmt.Errorf("empty range [%v, %v]", lo, hi)
	case v < lo:
		return fmt.Errorf("%v is below minimum %v", v, lo)
	case v > hi:
		return fmt.Errorf("%v exceeds maximum %v", v, hi)
	}
	return nil
}

// ValidateDuration accepts durations in [lo, hi].
func ValidateDuration(d, lo, hi time.Duration) error { return between(d, lo, hi) }

// ValidateIntRange accepts integers in [lo, hi].
func ValidateIntRange(v, lo, hi int) error { return between(v, lo, hi) }

// ValidateFloatRange accepts floats in (lo, hi]: the lower bound is
// exclusive so that a ratio of 0 can be rejected. NaN never passes.
func ValidateFloatRange(v, lo, hi float64) error {
	if math.IsNaN(v) {
		return errors.New("value is NaN")
	}
	if err := between(v, lo, hi); err != nil {
		return err
	}
	if v == lo {
		return fmt.Errorf("%v must be greater than %v", v, lo)
	}
	return nil
}

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}
