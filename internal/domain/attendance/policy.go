package attendance

import (
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock accepts "HH:MM" or "HH:MM:SS"; seconds are dropped.
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid clock %q: expected HH:MM", s)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On places the clock on the given calendar day in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// AttendancePolicy holds the per-branch rules applied during reconciliation.
type AttendancePolicy struct {
	ID                   string
	CompanyID            string
	BranchID             string
	WorkStart            Clock
	WorkEnd              Clock
	LateThresholdMinutes int
	HalfDayHours         int
	WeekendDays          []time.Weekday
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

const (
	DefaultLateThresholdMinutes = 15
	DefaultHalfDayHours         = 4
)

// DefaultPolicy is used for branches without a configured policy.
func DefaultPolicy() AttendancePolicy {
	return AttendancePolicy{
		WorkStart:            Clock{Hour: 9},
		WorkEnd:              Clock{Hour: 17},
		LateThresholdMinutes: DefaultLateThresholdMinutes,
		HalfDayHours:         DefaultHalfDayHours,
		WeekendDays:          []time.Weekday{time.Sunday, time.Saturday},
	}
}

func (p AttendancePolicy) IsWeekend(day time.Weekday) bool {
	return slices.Contains(p.WeekendDays, day)
}

func (p AttendancePolicy) LateThreshold() time.Duration {
	return time.Duration(p.LateThresholdMinutes) * time.Minute
}

func (p AttendancePolicy) HalfDayDuration() time.Duration {
	return time.Duration(p.HalfDayHours) * time.Hour
}

func (p AttendancePolicy) Validate() error {
	var errs validator.ValidationErrors

	if p.WorkEnd.Minutes() <= p.WorkStart.Minutes() {
		errs = append(errs, validator.ValidationError{
			Field:   "work_end",
			Message: "work_end must be after work_start",
		})
	}

	if p.LateThresholdMinutes < 0 || p.LateThresholdMinutes > 240 {
		errs = append(errs, validator.ValidationError{
			Field:   "late_threshold_minutes",
			Message: "late_threshold_minutes must be between 0 and 240",
		})
	}

	if p.HalfDayHours < 1 || p.HalfDayHours > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "half_day_hours",
			Message: "half_day_hours must be between 1 and 12",
		})
	}

	seen := make(map[time.Weekday]bool, len(p.WeekendDays))
	for _, d := range p.WeekendDays {
		if d < time.Sunday || d > time.Saturday {
			errs = append(errs, validator.ValidationError{
				Field:   "weekend_days",
				Message: "weekend_days must contain values between 0 (Sunday) and 6 (Saturday)",
			})
			break
		}
		if seen[d] {
			errs = append(errs, validator.ValidationError{
				Field:   "weekend_days",
				Message: "weekend_days must not contain duplicates",
			})
			break
		}
		seen[d] = true
	}
	if len(p.WeekendDays) > 6 {
		errs = append(errs, validator.ValidationError{
			Field:   "weekend_days",
			Message: "at least one working day is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
