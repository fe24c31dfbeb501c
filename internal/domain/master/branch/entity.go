package branch

import "time"

// Branch is a physical site. Its timezone decides which calendar day a
// punch belongs to.
type Branch struct {
	ID        string
	CompanyID string
	Name      string
	Address   *string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const DefaultTimezone = "UTC"
