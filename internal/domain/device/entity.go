package device

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var StatusValues = []string{string(StatusActive), string(StatusInactive)}

// Device is a biometric terminal installed at a branch. SerialNumber is what
// the terminal reports as SN when it pushes logs.
type Device struct {
	ID           string
	CompanyID    string
	BranchID     string
	SerialNumber string
	Name         string
	IPAddress    *string
	Status       Status
	LastSyncedAt *time.Time
	LastSeenAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO
	BranchName *string
	Timezone   *string
}
