package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBranchID = "branch-1"
	tuesday      = "2024-06-04"
	friday       = "2024-06-07"
	saturday     = "2024-06-08"
	monday       = "2024-06-10"
)

func at(t *testing.T, day, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	require.NoError(t, err)
	return ts
}

func date(t *testing.T, day string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	return d
}

func roster(ids ...string) []attendance.RosterEntry {
	entries := make([]attendance.RosterEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, attendance.RosterEntry{EmployeeID: id})
	}
	return entries
}

func checkIn(emp string, ts time.Time) attendance.PunchEvent {
	return attendance.PunchEvent{EmployeeID: emp, Timestamp: ts, Kind: attendance.PunchCheckIn}
}

func checkOut(emp string, ts time.Time) attendance.PunchEvent {
	return attendance.PunchEvent{EmployeeID: emp, Timestamp: ts, Kind: attendance.PunchCheckOut}
}

type reconcilerFixture struct {
	reconciler *Reconciler
	records    *fakeAttendanceRepo
	policies   *fakePolicyRepo
}

func newReconcilerFixture(t *testing.T, tz fakeTimezones) reconcilerFixture {
	t.Helper()
	if tz == nil {
		tz = fakeTimezones{testBranchID: "UTC"}
	}
	records := newFakeAttendanceRepo()
	policies := &fakePolicyRepo{}
	r := NewReconciler(policies, tz, records, noopTx{})
	r.now = func() time.Time { return at(t, monday, "12:00") }
	return reconcilerFixture{reconciler: r, records: records, policies: policies}
}

func (f reconcilerFixture) reconcile(t *testing.T, in attendance.ReconcileInput) attendance.ReconcileResult {
	t.Helper()
	if in.CompanyID == "" {
		in.CompanyID = testCompanyID
	}
	if in.BranchID == "" {
		in.BranchID = testBranchID
	}
	result, err := f.reconciler.Reconcile(context.Background(), in)
	require.NoError(t, err)
	return result
}

func TestDetermineStatus(t *testing.T) {
	policy := attendance.DefaultPolicy()
	ptr := func(ts time.Time) *time.Time { return &ts }

	tests := []struct {
		name     string
		checkIn  *time.Time
		checkOut *time.Time
		want     attendance.Status
	}{
		{"no check-in", nil, nil, attendance.StatusAbsent},
		{"on time full day", ptr(at(t, tuesday, "08:55")), ptr(at(t, tuesday, "17:05")), attendance.StatusPresent},
		{"late full day", ptr(at(t, tuesday, "09:20")), ptr(at(t, tuesday, "18:00")), attendance.StatusLate},
		{"short day", ptr(at(t, tuesday, "09:05")), ptr(at(t, tuesday, "11:00")), attendance.StatusHalfDay},
		{"late and short is half day", ptr(at(t, tuesday, "10:00")), ptr(at(t, tuesday, "12:00")), attendance.StatusHalfDay},
		{"at late threshold", ptr(at(t, tuesday, "09:15")), ptr(at(t, tuesday, "17:00")), attendance.StatusPresent},
		{"past late threshold", ptr(at(t, tuesday, "09:16")), ptr(at(t, tuesday, "17:00")), attendance.StatusLate},
		{"late without check-out", ptr(at(t, tuesday, "09:30")), nil, attendance.StatusLate},
		{"on time without check-out", ptr(at(t, tuesday, "09:00")), nil, attendance.StatusPresent},
		{"exactly half day hours", ptr(at(t, tuesday, "09:00")), ptr(at(t, tuesday, "13:00")), attendance.StatusPresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineStatus(tt.checkIn, tt.checkOut, policy, time.UTC)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetermineStatus_UsesLocalWorkStart(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 02:20 UTC is 09:20 in Jakarta.
	in := at(t, tuesday, "02:20")
	out := at(t, tuesday, "11:00")
	assert.Equal(t, attendance.StatusLate, DetermineStatus(&in, &out, attendance.DefaultPolicy(), jakarta))
	assert.Equal(t, attendance.StatusPresent, DetermineStatus(&in, &out, attendance.DefaultPolicy(), time.UTC))
}

func TestReconcile_LateArrival(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	result := f.reconcile(t, attendance.ReconcileInput{
		DeviceID: "dev-1",
		Punches: []attendance.PunchEvent{
			checkIn("emp-1", at(t, tuesday, "09:20")),
			checkOut("emp-1", at(t, tuesday, "18:00")),
		},
	})

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Rejected)

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusLate, rec.Status)
	require.NotNil(t, rec.CheckIn)
	require.NotNil(t, rec.CheckOut)
	assert.True(t, rec.CheckIn.Equal(at(t, tuesday, "09:20")))
	assert.True(t, rec.CheckOut.Equal(at(t, tuesday, "18:00")))
	require.NotNil(t, rec.DeviceID)
	assert.Equal(t, "dev-1", *rec.DeviceID)
}

func TestReconcile_HalfDay(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			checkIn("emp-1", at(t, tuesday, "09:05")),
			checkOut("emp-1", at(t, tuesday, "11:00")),
		},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusHalfDay, rec.Status)
}

func TestReconcile_RosterWithoutPunchesIsAbsent(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	result := f.reconcile(t, attendance.ReconcileInput{
		Roster: roster("emp-1"),
		From:   date(t, tuesday),
		To:     date(t, tuesday),
	})

	assert.Equal(t, 1, result.Processed)
	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.Nil(t, rec.CheckIn)
	assert.Nil(t, rec.CheckOut)
}

func TestReconcile_WeekendProducesNoRecord(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	result := f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			checkIn("emp-1", at(t, saturday, "09:00")),
			checkOut("emp-1", at(t, saturday, "17:00")),
		},
		Roster: roster("emp-2"),
		From:   date(t, saturday),
		To:     date(t, saturday),
	})

	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 2, result.SkippedWeekend)
	assert.Empty(t, f.records.all())
}

func TestReconcile_CustomWeekendDays(t *testing.T) {
	f := newReconcilerFixture(t, nil)
	policy := attendance.DefaultPolicy()
	policy.BranchID = testBranchID
	policy.WeekendDays = []time.Weekday{time.Friday}
	_, err := f.policies.Upsert(context.Background(), policy)
	require.NoError(t, err)

	result := f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			checkIn("emp-1", at(t, friday, "09:00")),
			checkIn("emp-1", at(t, saturday, "09:00")),
		},
	})

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.SkippedWeekend)
	assert.Nil(t, f.records.find("emp-1", date(t, friday)))
	assert.NotNil(t, f.records.find("emp-1", date(t, saturday)))
}

func TestReconcile_Idempotent(t *testing.T) {
	f := newReconcilerFixture(t, nil)
	in := attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			checkIn("emp-1", at(t, tuesday, "09:20")),
			checkOut("emp-1", at(t, tuesday, "18:00")),
			checkIn("emp-2", at(t, tuesday, "08:50")),
		},
		Roster: roster("emp-1", "emp-2", "emp-3"),
		From:   date(t, tuesday),
		To:     date(t, tuesday),
	}

	first := f.reconcile(t, in)
	snapshot := f.records.all()

	second := f.reconcile(t, in)
	again := f.records.all()

	assert.Equal(t, 3, first.Created)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 3, second.Updated)
	require.Len(t, again, len(snapshot))
	for i := range snapshot {
		assert.Equal(t, snapshot[i].ID, again[i].ID)
		assert.Equal(t, snapshot[i].Status, again[i].Status)
		assert.Equal(t, snapshot[i].CheckIn, again[i].CheckIn)
		assert.Equal(t, snapshot[i].CheckOut, again[i].CheckOut)
	}
}

func TestReconcile_EarliestCheckInLatestCheckOut(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			checkIn("emp-1", at(t, tuesday, "09:10")),
			checkOut("emp-1", at(t, tuesday, "12:00")),
			checkIn("emp-1", at(t, tuesday, "08:45")),
			checkOut("emp-1", at(t, tuesday, "17:30")),
			checkIn("emp-1", at(t, tuesday, "13:00")),
		},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.True(t, rec.CheckIn.Equal(at(t, tuesday, "08:45")))
	assert.True(t, rec.CheckOut.Equal(at(t, tuesday, "17:30")))
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestReconcile_CheckOutWithoutCheckInIsAbsent(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{checkOut("emp-1", at(t, tuesday, "17:00"))},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.Nil(t, rec.CheckIn)
	assert.Nil(t, rec.CheckOut)
}

func TestReconcile_CheckOutBeforeCheckInIsHalfDay(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			checkOut("emp-1", at(t, tuesday, "08:00")),
			checkIn("emp-1", at(t, tuesday, "09:00")),
		},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	require.NotNil(t, rec.CheckOut)
	assert.True(t, rec.CheckOut.Equal(at(t, tuesday, "08:00")))
	assert.Equal(t, attendance.StatusHalfDay, rec.Status)
}

func TestReconcile_RejectsInvalidPunches(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	result := f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			checkIn("", at(t, tuesday, "09:00")),
			{EmployeeID: "emp-1", Kind: attendance.PunchCheckIn},
			{EmployeeID: "emp-1", Timestamp: at(t, tuesday, "09:00"), Kind: "break_out"},
			checkIn("emp-1", at(t, "2024-06-11", "09:00")),
			checkIn("emp-1", at(t, "1999-12-31", "09:00")),
			checkIn("emp-2", at(t, tuesday, "09:00")),
		},
	})

	require.Len(t, result.Rejected, 5)
	reasons := make(map[int]string)
	for _, r := range result.Rejected {
		reasons[r.Index] = r.Reason
	}
	assert.Equal(t, attendance.RejectMissingEmployee, reasons[0])
	assert.Equal(t, attendance.RejectZeroTimestamp, reasons[1])
	assert.Equal(t, attendance.RejectUnknownKind, reasons[2])
	assert.Equal(t, attendance.RejectFutureTimestamp, reasons[3])
	assert.Equal(t, attendance.RejectAncientTimestamp, reasons[4])

	assert.Equal(t, 1, result.Processed)
	assert.Nil(t, f.records.find("emp-1", date(t, tuesday)))
	assert.NotNil(t, f.records.find("emp-2", date(t, tuesday)))
}

func TestReconcile_KeepsOnLeaveAndManualFields(t *testing.T) {
	f := newReconcilerFixture(t, nil)
	leaveID := "leave-1"
	notes := "annual leave"
	_, err := f.records.Create(context.Background(), attendance.Attendance{
		CompanyID:          testCompanyID,
		EmployeeID:         "emp-1",
		Date:               date(t, tuesday),
		Status:             attendance.StatusOnLeave,
		LeaveApplicationID: &leaveID,
		Notes:              &notes,
	})
	require.NoError(t, err)

	result := f.reconcile(t, attendance.ReconcileInput{
		Roster: roster("emp-1"),
		From:   date(t, tuesday),
		To:     date(t, tuesday),
	})

	assert.Equal(t, 1, result.Updated)
	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusOnLeave, rec.Status)
	require.NotNil(t, rec.LeaveApplicationID)
	assert.Equal(t, leaveID, *rec.LeaveApplicationID)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, notes, *rec.Notes)
}

func TestReconcile_PunchOverridesOnLeave(t *testing.T) {
	f := newReconcilerFixture(t, nil)
	leaveID := "leave-1"
	_, err := f.records.Create(context.Background(), attendance.Attendance{
		CompanyID:          testCompanyID,
		EmployeeID:         "emp-1",
		Date:               date(t, tuesday),
		Status:             attendance.StatusOnLeave,
		LeaveApplicationID: &leaveID,
	})
	require.NoError(t, err)

	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{checkIn("emp-1", at(t, tuesday, "09:00"))},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Nil(t, rec.LeaveApplicationID)
}

func TestReconcile_RosterSkipsDayInProgress(t *testing.T) {
	f := newReconcilerFixture(t, nil)
	// Monday 06:00, before the work day starts.
	f.reconciler.now = func() time.Time { return at(t, monday, "06:00") }

	result := f.reconcile(t, attendance.ReconcileInput{
		Roster: roster("emp-1"),
		From:   date(t, friday),
		To:     date(t, monday),
	})

	assert.Equal(t, 1, result.Processed)
	assert.NotNil(t, f.records.find("emp-1", date(t, friday)))
	assert.Nil(t, f.records.find("emp-1", date(t, monday)))
}

func TestReconcile_RosterDayInProgressUsesBranchTimezone(t *testing.T) {
	f := newReconcilerFixture(t, fakeTimezones{testBranchID: "Asia/Jakarta"})
	// Monday 20:00 UTC is already Tuesday 03:00 in Jakarta, so Monday is over.
	f.reconciler.now = func() time.Time { return at(t, monday, "20:00") }

	f.reconcile(t, attendance.ReconcileInput{
		Roster: roster("emp-1"),
		From:   date(t, monday),
		To:     date(t, monday),
	})

	rec := f.records.find("emp-1", date(t, monday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
}

func TestReconcile_RosterSkipsDaysBeforeHire(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	f.reconcile(t, attendance.ReconcileInput{
		Roster: []attendance.RosterEntry{{EmployeeID: "emp-1", HireDate: date(t, "2024-06-05")}},
		From:   date(t, tuesday),
		To:     date(t, friday),
	})

	assert.Nil(t, f.records.find("emp-1", date(t, tuesday)))
	assert.NotNil(t, f.records.find("emp-1", date(t, "2024-06-05")))
	assert.NotNil(t, f.records.find("emp-1", date(t, friday)))
}

func TestReconcile_GroupsByBranchTimezone(t *testing.T) {
	f := newReconcilerFixture(t, fakeTimezones{testBranchID: "Asia/Jakarta"})

	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			// 09:20 and 18:00 in Jakarta.
			checkIn("emp-1", at(t, tuesday, "02:20")),
			checkOut("emp-1", at(t, tuesday, "11:00")),
			// 06:30 on Wednesday in Jakarta.
			checkIn("emp-2", at(t, tuesday, "23:30")),
		},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusLate, rec.Status)
	assert.Equal(t, time.UTC, rec.CheckIn.Location())

	assert.Nil(t, f.records.find("emp-2", date(t, tuesday)))
	wed := f.records.find("emp-2", date(t, "2024-06-05"))
	require.NotNil(t, wed)
	assert.Equal(t, attendance.StatusPresent, wed.Status)
}

func TestReconcile_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	f := newReconcilerFixture(t, fakeTimezones{testBranchID: "Mars/Olympus"})

	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{checkIn("emp-1", at(t, tuesday, "09:20"))},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusLate, rec.Status)
}

func TestReconcile_UsesBranchPolicy(t *testing.T) {
	f := newReconcilerFixture(t, nil)
	policy := attendance.DefaultPolicy()
	policy.BranchID = testBranchID
	policy.LateThresholdMinutes = 30
	_, err := f.policies.Upsert(context.Background(), policy)
	require.NoError(t, err)

	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{checkIn("emp-1", at(t, tuesday, "09:20"))},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestReconcile_WindowFiltersPunches(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	result := f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{
			checkIn("emp-1", at(t, "2024-06-03", "09:00")),
			checkIn("emp-1", at(t, tuesday, "09:00")),
		},
		From: date(t, tuesday),
		To:   date(t, tuesday),
	})

	assert.Equal(t, 1, result.Processed)
	assert.Nil(t, f.records.find("emp-1", date(t, "2024-06-03")))
}

func TestReconcile_StampsCheckInDevice(t *testing.T) {
	f := newReconcilerFixture(t, nil)

	early := checkIn("emp-1", at(t, tuesday, "08:50"))
	early.DeviceID = "dev-2"
	later := checkIn("emp-1", at(t, tuesday, "09:10"))
	later.DeviceID = "dev-3"

	f.reconcile(t, attendance.ReconcileInput{
		DeviceID: "dev-1",
		Punches:  []attendance.PunchEvent{later, early},
	})

	rec := f.records.find("emp-1", date(t, tuesday))
	require.NotNil(t, rec)
	require.NotNil(t, rec.DeviceID)
	assert.Equal(t, "dev-2", *rec.DeviceID)
}

func TestMarkOnLeave(t *testing.T) {
	f := newReconcilerFixture(t, nil)
	f.reconcile(t, attendance.ReconcileInput{
		Punches: []attendance.PunchEvent{checkIn("emp-1", at(t, friday, "09:00"))},
	})

	stamped, err := f.reconciler.MarkOnLeave(context.Background(), LeaveStamp{
		CompanyID:          testCompanyID,
		BranchID:           testBranchID,
		EmployeeID:         "emp-1",
		LeaveApplicationID: "leave-1",
		From:               date(t, friday),
		To:                 date(t, monday),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stamped)

	fri := f.records.find("emp-1", date(t, friday))
	require.NotNil(t, fri)
	assert.Equal(t, attendance.StatusOnLeave, fri.Status)
	assert.NotNil(t, fri.CheckIn)
	require.NotNil(t, fri.LeaveApplicationID)
	assert.Equal(t, "leave-1", *fri.LeaveApplicationID)

	assert.Nil(t, f.records.find("emp-1", date(t, saturday)))
	assert.Nil(t, f.records.find("emp-1", date(t, "2024-06-09")))

	mon := f.records.find("emp-1", date(t, monday))
	require.NotNil(t, mon)
	assert.Equal(t, attendance.StatusOnLeave, mon.Status)
}
