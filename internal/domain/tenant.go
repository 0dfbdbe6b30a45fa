package domain

import "time"

// TenantStatus represents lifecycle states for a tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusTrial     TenantStatus = "trial"
)

// Valid reports whether the status is a known value.
func (s TenantStatus) Valid() bool {
	switch s {
	case TenantStatusActive, TenantStatusSuspended, TenantStatusTrial:
		return true
	}
	return false
}

// SubscriptionPlan enumerates billing plans.
type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanPro        SubscriptionPlan = "pro"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

// Valid reports whether the plan is a known value.
func (p SubscriptionPlan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// PlanLimits returns the default quota ceilings for a plan.
func PlanLimits(plan SubscriptionPlan) (maxUsers, maxProjects int) {
	switch plan {
	case PlanPro:
		return 25, 15
	case PlanEnterprise:
		return 100, 50
	default:
		return 5, 3
	}
}

// Tenant is an isolated organization account. Every other entity carries
// the id of its owning tenant.
type Tenant struct {
	ID          string
	Name        string
	Subdomain   string
	Status      TenantStatus
	Plan        SubscriptionPlan
	MaxUsers    *int
	MaxProjects *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TenantStats aggregates per-tenant resource counts.
type TenantStats struct {
	TotalUsers    int
	TotalProjects int
	TotalTasks    int
}
