package dto

import (
	"time"

	"github.com/spec-kit/taskboard/internal/domain"
)

// RegisterTenantRequest payload for self-service tenant signup.
type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
	AdminFullName string `json:"adminFullName"`
}

// LoginRequest payload. The tenant may be referenced by id or subdomain.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	TenantID  string `json:"tenantId"`
	Subdomain string `json:"subdomain"`
}

// AuthResponse is the issued session.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	ExpiresIn int          `json:"expiresIn"`
	User      UserResponse `json:"user"`
}

// MeResponse is the authenticated caller plus their tenant and the
// tenant's current resource usage against its plan limits.
type MeResponse struct {
	User   UserResponse         `json:"user"`
	Tenant *TenantResponse      `json:"tenant,omitempty"`
	Usage  *TenantStatsResponse `json:"usage,omitempty"`
}

// RegisterTenantResponse is the newly provisioned tenant and admin.
type RegisterTenantResponse struct {
	Tenant TenantResponse `json:"tenant"`
	Admin  UserResponse   `json:"admin"`
}

// UserResponse is the public view of a user. Password hashes never leave
// the service layer.
type UserResponse struct {
	ID        string      `json:"id"`
	TenantID  string      `json:"tenantId"`
	Email     string      `json:"email"`
	FullName  string      `json:"fullName"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewUserResponse maps a domain user onto the wire shape.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
