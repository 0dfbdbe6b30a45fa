package dto

import "github.com/spec-kit/taskboard/internal/repository"

// CreateUserRequest payload.
type CreateUserRequest struct {
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// UpdateUserRequest carries optional field updates; absent fields are
// left untouched.
type UpdateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

// UserWithTenantResponse is a listing row joined with tenant info.
type UserWithTenantResponse struct {
	UserResponse
	TenantName *string `json:"tenantName,omitempty"`
	Subdomain  *string `json:"tenantSubdomain,omitempty"`
}

// NewUserWithTenantResponse maps a listing row.
func NewUserWithTenantResponse(row repository.UserWithTenant) UserWithTenantResponse {
	return UserWithTenantResponse{
		UserResponse: NewUserResponse(&row.User),
		TenantName:   row.TenantName,
		Subdomain:    row.Subdomain,
	}
}
