package attendance

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

// futureSkew is how far ahead of the server clock a punch may be before it
// is rejected. Terminal clocks drift.
const futureSkew = 5 * time.Minute

var earliestPunch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// TimezoneResolver resolves a branch's IANA timezone name.
type TimezoneResolver interface {
	GetTimezone(ctx context.Context, id string, companyID string) (string, error)
}

// Reconciler turns raw punches into one attendance record per employee per
// working day, applying the branch's attendance policy.
type Reconciler struct {
	policies  attendance.PolicyRepository
	timezones TimezoneResolver
	records   attendance.AttendanceRepository
	tx        database.Transactor
	now       func() time.Time
}

func NewReconciler(
	policies attendance.PolicyRepository,
	timezones TimezoneResolver,
	records attendance.AttendanceRepository,
	tx database.Transactor,
) *Reconciler {
	return &Reconciler{
		policies:  policies,
		timezones: timezones,
		records:   records,
		tx:        tx,
		now:       time.Now,
	}
}

type groupKey struct {
	employeeID string
	date       time.Time
}

type punchGroup struct {
	checkIn       *time.Time
	checkOut      *time.Time
	checkInDevice string
}

// bounds returns the earliest check-in and latest check-out. Without a
// check-in both are nil. A check-out earlier than the check-in is kept; the
// negative worked time makes the day a half day.
func (g *punchGroup) bounds() (checkIn, checkOut *time.Time) {
	if g.checkIn == nil {
		return nil, nil
	}
	return g.checkIn, g.checkOut
}

// DetermineStatus derives the day status. Half-day takes precedence over
// late: an employee who arrives late and leaves early is half-day.
func DetermineStatus(checkIn, checkOut *time.Time, policy attendance.AttendancePolicy, loc *time.Location) attendance.Status {
	if checkIn == nil {
		return attendance.StatusAbsent
	}
	if loc == nil {
		loc = time.UTC
	}

	isHalfDay := checkOut != nil && checkOut.Sub(*checkIn) < policy.HalfDayDuration()

	workStart := policy.WorkStart.On(checkIn.In(loc), loc)
	isLate := checkIn.After(workStart) && checkIn.Sub(workStart) > policy.LateThreshold()

	switch {
	case isHalfDay:
		return attendance.StatusHalfDay
	case isLate:
		return attendance.StatusLate
	default:
		return attendance.StatusPresent
	}
}

// ResolvePolicy returns the branch policy, or the default policy when none is
// configured, along with the branch location (UTC when unknown).
func (r *Reconciler) ResolvePolicy(ctx context.Context, companyID, branchID string) (attendance.AttendancePolicy, *time.Location, error) {
	policy := attendance.DefaultPolicy()
	stored, err := r.policies.GetByBranchID(ctx, branchID, companyID)
	if err != nil {
		return attendance.AttendancePolicy{}, nil, fmt.Errorf("failed to get attendance policy: %w", err)
	}
	if stored != nil {
		policy = *stored
	}

	loc := time.UTC
	tz, err := r.timezones.GetTimezone(ctx, branchID, companyID)
	if err != nil {
		slog.Warn("branch timezone unavailable, using UTC", "branch_id", branchID, "error", err)
	} else if l, err := time.LoadLocation(tz); err == nil {
		loc = l
	}

	return policy, loc, nil
}

func (r *Reconciler) rejectReason(p attendance.PunchEvent, now time.Time) string {
	switch {
	case p.EmployeeID == "":
		return attendance.RejectMissingEmployee
	case p.Timestamp.IsZero():
		return attendance.RejectZeroTimestamp
	case p.Kind != attendance.PunchCheckIn && p.Kind != attendance.PunchCheckOut:
		return attendance.RejectUnknownKind
	case p.Timestamp.After(now.Add(futureSkew)):
		return attendance.RejectFutureTimestamp
	case p.Timestamp.Before(earliestPunch):
		return attendance.RejectAncientTimestamp
	}
	return ""
}

// Reconcile groups punches by employee and calendar day, derives a status for
// every working day and upserts one record per (employee, date). Running it
// twice with the same input leaves the same rows.
func (r *Reconciler) Reconcile(ctx context.Context, in attendance.ReconcileInput) (attendance.ReconcileResult, error) {
	var result attendance.ReconcileResult

	policy, loc, err := r.ResolvePolicy(ctx, in.CompanyID, in.BranchID)
	if err != nil {
		return result, err
	}

	windowed := !in.From.IsZero() && !in.To.IsZero()
	from, to := attendance.CivilDate(in.From), attendance.CivilDate(in.To)
	now := r.now()

	groups := make(map[groupKey]*punchGroup)
	for i, p := range in.Punches {
		if reason := r.rejectReason(p, now); reason != "" {
			result.Rejected = append(result.Rejected, attendance.RejectedPunch{
				Index:      i,
				EmployeeID: p.EmployeeID,
				Timestamp:  p.Timestamp.Format(time.RFC3339),
				Reason:     reason,
			})
			continue
		}

		ts := p.Timestamp.In(loc)
		key := groupKey{employeeID: p.EmployeeID, date: attendance.CivilDate(ts)}
		if windowed && (key.date.Before(from) || key.date.After(to)) {
			continue
		}

		g, ok := groups[key]
		if !ok {
			g = &punchGroup{}
			groups[key] = g
		}

		switch p.Kind {
		case attendance.PunchCheckIn:
			if g.checkIn == nil || ts.Before(*g.checkIn) {
				g.checkIn = &ts
				g.checkInDevice = p.DeviceID
			}
		case attendance.PunchCheckOut:
			if g.checkOut == nil || ts.After(*g.checkOut) {
				g.checkOut = &ts
			}
		}
	}

	if windowed {
		today := attendance.CivilDate(now.In(loc))
		for day := from; !day.After(to) && day.Before(today); day = day.AddDate(0, 0, 1) {
			for _, e := range in.Roster {
				if !e.HireDate.IsZero() && attendance.CivilDate(e.HireDate).After(day) {
					continue
				}
				key := groupKey{employeeID: e.EmployeeID, date: day}
				if _, ok := groups[key]; !ok {
					groups[key] = &punchGroup{}
				}
			}
		}
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b groupKey) int {
		if c := a.date.Compare(b.date); c != 0 {
			return c
		}
		return cmp.Compare(a.employeeID, b.employeeID)
	})

	err = r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, key := range keys {
			if policy.IsWeekend(key.date.Weekday()) {
				result.SkippedWeekend++
				continue
			}

			g := groups[key]
			checkIn, checkOut := g.bounds()
			status := DetermineStatus(checkIn, checkOut, policy, loc)

			deviceID := in.DeviceID
			if g.checkInDevice != "" {
				deviceID = g.checkInDevice
			}

			created, err := r.upsert(ctx, in.CompanyID, key, checkIn, checkOut, status, deviceID)
			if err != nil {
				return err
			}
			result.Processed++
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return attendance.ReconcileResult{}, err
	}

	slog.Info("attendance reconciled",
		"company_id", in.CompanyID,
		"branch_id", in.BranchID,
		"processed", result.Processed,
		"skipped_weekend", result.SkippedWeekend,
		"rejected", len(result.Rejected),
	)
	return result, nil
}

// upsert writes only the fields sync owns; notes and manual edits on an
// existing row are left alone. A day already marked on leave is not
// downgraded to absent. When punches turn an on_leave day into a worked
// day the leave link is cleared.
func (r *Reconciler) upsert(
	ctx context.Context,
	companyID string,
	key groupKey,
	checkIn, checkOut *time.Time,
	status attendance.Status,
	deviceID string,
) (bool, error) {
	var device *string
	if deviceID != "" {
		device = &deviceID
	}

	existing, err := r.records.GetByEmployeeAndDate(ctx, key.employeeID, key.date, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to get attendance for %s on %s: %w", key.employeeID, key.date.Format("2006-01-02"), err)
	}

	if existing != nil {
		if existing.Status == attendance.StatusOnLeave {
			if status == attendance.StatusAbsent {
				status = attendance.StatusOnLeave
			} else {
				existing.LeaveApplicationID = nil
			}
		}
		existing.CheckIn = utcPtr(checkIn)
		existing.CheckOut = utcPtr(checkOut)
		existing.Status = status
		existing.DeviceID = device
		if err := r.records.Update(ctx, *existing); err != nil {
			return false, fmt.Errorf("failed to update attendance %s: %w", existing.ID, err)
		}
		return false, nil
	}

	_, err = r.records.Create(ctx, attendance.Attendance{
		CompanyID:  companyID,
		EmployeeID: key.employeeID,
		Date:       key.date,
		CheckIn:    utcPtr(checkIn),
		CheckOut:   utcPtr(checkOut),
		Status:     status,
		DeviceID:   device,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create attendance for %s on %s: %w", key.employeeID, key.date.Format("2006-01-02"), err)
	}
	return true, nil
}

// LeaveStamp marks an approved leave range on the attendance sheet.
type LeaveStamp struct {
	CompanyID          string
	BranchID           string
	EmployeeID         string
	LeaveApplicationID string
	From               time.Time
	To                 time.Time
}

// MarkOnLeave sets every working day of the range to on_leave, keeping any
// punches already recorded. It returns the number of days stamped.
func (r *Reconciler) MarkOnLeave(ctx context.Context, s LeaveStamp) (int, error) {
	policy, _, err := r.ResolvePolicy(ctx, s.CompanyID, s.BranchID)
	if err != nil {
		return 0, err
	}

	stamped := 0
	leaveID := s.LeaveApplicationID
	err = r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for day := attendance.CivilDate(s.From); !day.After(attendance.CivilDate(s.To)); day = day.AddDate(0, 0, 1) {
			if policy.IsWeekend(day.Weekday()) {
				continue
			}

			existing, err := r.records.GetByEmployeeAndDate(ctx, s.EmployeeID, day, s.CompanyID)
			if err != nil {
				return fmt.Errorf("failed to get attendance: %w", err)
			}

			if existing != nil {
				existing.Status = attendance.StatusOnLeave
				existing.LeaveApplicationID = &leaveID
				if err := r.records.Update(ctx, *existing); err != nil {
					return fmt.Errorf("failed to update attendance: %w", err)
				}
			} else {
				_, err := r.records.Create(ctx, attendance.Attendance{
					CompanyID:          s.CompanyID,
					EmployeeID:         s.EmployeeID,
					Date:               day,
					Status:             attendance.StatusOnLeave,
					LeaveApplicationID: &leaveID,
				})
				if err != nil {
					return fmt.Errorf("failed to create attendance: %w", err)
				}
			}
			stamped++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stamped, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
