package attendance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/adms"
)

// TerminalRegistry identifies terminals by the serial number they push with.
type TerminalRegistry interface {
	GetBySerialNumber(ctx context.Context, serialNumber string) (device.Device, error)
	MarkSeen(ctx context.Context, id string, at time.Time) error
}

// PushReceiver stages punches pushed by terminals. Reconciliation happens
// later in the device sync.
type PushReceiver struct {
	terminals TerminalRegistry
	punchLogs attendance.PunchLogRepository
	now       func() time.Time
}

func NewPushReceiver(terminals TerminalRegistry, punchLogs attendance.PunchLogRepository) *PushReceiver {
	return &PushReceiver{terminals: terminals, punchLogs: punchLogs, now: time.Now}
}

// terminal resolves an active terminal and records that it checked in.
func (p *PushReceiver) terminal(ctx context.Context, serialNumber string) (device.Device, *time.Location, error) {
	d, err := p.terminals.GetBySerialNumber(ctx, serialNumber)
	if err != nil {
		return device.Device{}, nil, err
	}
	if d.Status != device.StatusActive {
		return device.Device{}, nil, device.ErrDeviceInactive
	}
	if err := p.terminals.MarkSeen(ctx, d.ID, p.now()); err != nil {
		slog.Warn("failed to mark device seen", "device_id", d.ID, "error", err)
	}

	loc := time.UTC
	if d.Timezone != nil {
		if l, err := time.LoadLocation(*d.Timezone); err == nil {
			loc = l
		}
	}
	return d, loc, nil
}

// Handshake returns the option block for a terminal's first request.
func (p *PushReceiver) Handshake(ctx context.Context, serialNumber string) (string, error) {
	_, loc, err := p.terminal(ctx, serialNumber)
	if err != nil {
		return "", err
	}
	return adms.HandshakeReply(serialNumber, loc, p.now()), nil
}

// Poll answers a terminal asking for queued commands. None are ever queued.
func (p *PushReceiver) Poll(ctx context.Context, serialNumber string) error {
	_, _, err := p.terminal(ctx, serialNumber)
	return err
}

// ReceiveAttLog stages an ATTLOG body and returns how many lines were
// accepted. Duplicate punches count as accepted so the terminal does not
// resend them.
func (p *PushReceiver) ReceiveAttLog(ctx context.Context, serialNumber string, body io.Reader) (int, error) {
	d, loc, err := p.terminal(ctx, serialNumber)
	if err != nil {
		return 0, err
	}

	parsed, err := adms.ParseAttLog(body, loc)
	if err != nil {
		return 0, err
	}
	if len(parsed.Malformed) > 0 {
		slog.Warn("skipped malformed attlog lines",
			"device_id", d.ID,
			"serial_number", serialNumber,
			"lines", parsed.Malformed,
		)
	}

	receivedAt := p.now()
	logs := make([]attendance.PunchLog, 0, len(parsed.Records))
	for _, rec := range parsed.Records {
		logs = append(logs, attendance.PunchLog{
			CompanyID:     d.CompanyID,
			DeviceID:      d.ID,
			DeviceUserPIN: rec.PIN,
			Timestamp:     rec.Timestamp,
			Kind:          rec.Kind,
			VerifyMode:    rec.VerifyMode,
			Source:        attendance.PunchSourceADMS,
			ReceivedAt:    receivedAt,
		})
	}

	inserted, err := p.punchLogs.BulkInsert(ctx, logs)
	if err != nil {
		return 0, fmt.Errorf("failed to stage punch logs: %w", err)
	}

	slog.Info("attlog received",
		"device_id", d.ID,
		"records", len(parsed.Records),
		"inserted", inserted,
		"ignored", parsed.Ignored,
		"malformed", len(parsed.Malformed),
	)
	return len(parsed.Records) + parsed.Ignored, nil
}
