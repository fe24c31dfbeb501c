package user

import "time"

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	EmployeeID    *string `json:"employee_id,omitempty"`
	OAuthProvider *string `json:"oauth_provider,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		CompanyID:     u.CompanyID,
		Email:         u.Email,
		Role:          string(u.Role),
		EmployeeID:    u.EmployeeID,
		OAuthProvider: u.OAuthProvider,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
	}
}
