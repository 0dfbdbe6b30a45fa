package domain

import "time"

// AuditEntry records a notable action against a tenant-scoped entity.
type AuditEntry struct {
	ID         string
	TenantID   *string
	UserID     *string
	Action     string
	EntityType string
	EntityID   string
	IPAddress  *string
	CreatedAt  time.Time
}
