package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
)

const testCompanyID = "company-1"

type noopTx struct{}

func (noopTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePolicyRepo struct {
	policies map[string]attendance.AttendancePolicy
}

func (f *fakePolicyRepo) GetByBranchID(ctx context.Context, branchID string, companyID string) (*attendance.AttendancePolicy, error) {
	p, ok := f.policies[branchID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePolicyRepo) Upsert(ctx context.Context, policy attendance.AttendancePolicy) (attendance.AttendancePolicy, error) {
	if f.policies == nil {
		f.policies = make(map[string]attendance.AttendancePolicy)
	}
	f.policies[policy.BranchID] = policy
	return policy, nil
}

type fakeTimezones map[string]string

func (f fakeTimezones) GetTimezone(ctx context.Context, id string, companyID string) (string, error) {
	tz, ok := f[id]
	if !ok {
		return "", errors.New("branch not found")
	}
	return tz, nil
}

type fakeAttendanceRepo struct {
	mu   sync.Mutex
	rows map[string]attendance.Attendance
	seq  int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{rows: make(map[string]attendance.Attendance)}
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.EmployeeID == a.EmployeeID && row.Date.Equal(a.Date) && row.CompanyID == a.CompanyID {
			return attendance.Attendance{}, attendance.ErrDuplicateRecord
		}
	}
	f.seq++
	a.ID = fmt.Sprintf("att-%d", f.seq)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok || row.CompanyID != companyID {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return row, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.EmployeeID == employeeID && row.Date.Equal(date) && row.CompanyID == companyID {
			r := row
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, a attendance.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rows[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	a.UpdatedAt = time.Now()
	f.rows[a.ID] = a
	return nil
}

func (f *fakeAttendanceRepo) Delete(ctx context.Context, id string, companyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rows[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	var out []attendance.Attendance
	for _, row := range f.all() {
		if row.CompanyID != companyID {
			continue
		}
		if filter.EmployeeID != nil && row.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

// all returns rows sorted by date then employee.
func (f *fakeAttendanceRepo) all() []attendance.Attendance {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]attendance.Attendance, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

func (f *fakeAttendanceRepo) find(employeeID string, date time.Time) *attendance.Attendance {
	row, _ := f.GetByEmployeeAndDate(context.Background(), employeeID, date, testCompanyID)
	return row
}

type fakePunchLogRepo struct {
	mu     sync.Mutex
	logs   []attendance.PunchLog
	failOn map[string]error
}

func (f *fakePunchLogRepo) BulkInsert(ctx context.Context, logs []attendance.PunchLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logs...)
	return int64(len(logs)), nil
}

func (f *fakePunchLogRepo) ListByDevice(ctx context.Context, deviceID string, from, to time.Time) ([]attendance.PunchLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failOn[deviceID]; ok {
		return nil, err
	}
	var out []attendance.PunchLog
	for _, l := range f.logs {
		if l.DeviceID == deviceID && !l.Timestamp.Before(from) && l.Timestamp.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeDeviceRepo struct {
	devices map[string]device.Device
	synced  map[string]time.Time
	seen    map[string]time.Time
}

func (f *fakeDeviceRepo) GetBySerialNumber(ctx context.Context, serialNumber string) (device.Device, error) {
	for _, d := range f.devices {
		if d.SerialNumber == serialNumber {
			return d, nil
		}
	}
	return device.Device{}, device.ErrDeviceNotFound
}

func (f *fakeDeviceRepo) MarkSeen(ctx context.Context, id string, at time.Time) error {
	if f.seen == nil {
		f.seen = make(map[string]time.Time)
	}
	f.seen[id] = at
	return nil
}

func (f *fakeDeviceRepo) ListActive(ctx context.Context, companyID string, ids []string) ([]device.Device, error) {
	var out []device.Device
	for _, d := range f.devices {
		if d.CompanyID != companyID || d.Status != device.StatusActive {
			continue
		}
		if len(ids) > 0 && !contains(ids, d.ID) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDeviceRepo) MarkSynced(ctx context.Context, id string, at time.Time) error {
	if f.synced == nil {
		f.synced = make(map[string]time.Time)
	}
	f.synced[id] = at
	return nil
}

type fakeEmployeeDirectory struct {
	employees []employee.Employee
}

func (f *fakeEmployeeDirectory) ListByCodes(ctx context.Context, companyID string, codes []string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && contains(codes, e.EmployeeCode) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeDirectory) ListActiveByBranch(ctx context.Context, companyID string, branchID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && e.BranchID == branchID && e.Status == employee.StatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
