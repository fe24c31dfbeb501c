package attendance

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPushFixture() (*PushReceiver, *fakeDeviceRepo, *fakePunchLogRepo) {
	jakarta := "Asia/Jakarta"
	devices := &fakeDeviceRepo{devices: map[string]device.Device{
		"dev-1": {ID: "dev-1", CompanyID: testCompanyID, SerialNumber: "CQZ7224460246", Status: device.StatusActive, Timezone: &jakarta},
		"dev-2": {ID: "dev-2", CompanyID: testCompanyID, SerialNumber: "OFFLINE01", Status: device.StatusInactive},
	}}
	logs := &fakePunchLogRepo{}
	p := NewPushReceiver(devices, logs)
	p.now = func() time.Time { return time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC) }
	return p, devices, logs
}

func TestPushReceiver_ReceiveAttLog(t *testing.T) {
	p, devices, logs := newPushFixture()

	body := strings.Join([]string{
		"1001\t2026-03-03 08:55:00\t0\t1\t0\t0",
		"1001\t2026-03-03 12:00:00\t2\t1\t0\t0",
		"garbage",
		"1001\t2026-03-03 17:05:00\t1\t1\t0\t0",
	}, "\n")

	n, err := p.ReceiveAttLog(context.Background(), "CQZ7224460246", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, logs.logs, 2)
	first := logs.logs[0]
	assert.Equal(t, "dev-1", first.DeviceID)
	assert.Equal(t, testCompanyID, first.CompanyID)
	assert.Equal(t, attendance.PunchCheckIn, first.Kind)
	assert.Equal(t, attendance.PunchSourceADMS, first.Source)
	// 08:55 in Jakarta is 01:55 UTC.
	assert.True(t, first.Timestamp.Equal(time.Date(2026, 3, 3, 1, 55, 0, 0, time.UTC)))
	assert.Equal(t, attendance.PunchCheckOut, logs.logs[1].Kind)

	assert.Contains(t, devices.seen, "dev-1")
}

func TestPushReceiver_UnknownOrInactive(t *testing.T) {
	p, _, logs := newPushFixture()

	_, err := p.ReceiveAttLog(context.Background(), "NOPE", strings.NewReader("1\t2026-03-03 08:00:00\t0"))
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)

	_, err = p.Handshake(context.Background(), "OFFLINE01")
	assert.ErrorIs(t, err, device.ErrDeviceInactive)

	assert.Empty(t, logs.logs)
}

func TestPushReceiver_Handshake(t *testing.T) {
	p, _, _ := newPushFixture()

	reply, err := p.Handshake(context.Background(), "CQZ7224460246")
	require.NoError(t, err)
	assert.Contains(t, reply, "GET OPTION FROM: CQZ7224460246")
	assert.Contains(t, reply, "TimeZone=7")

	require.NoError(t, p.Poll(context.Background(), "CQZ7224460246"))
}
