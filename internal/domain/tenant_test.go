package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanLimits(t *testing.T) {
	cases := []struct {
		plan        SubscriptionPlan
		maxUsers    int
		maxProjects int
	}{
		{PlanFree, 5, 3},
		{PlanPro, 25, 15},
		{PlanEnterprise, 100, 50},
		{SubscriptionPlan("unknown"), 5, 3},
	}

	for _, tc := range cases {
		users, projects := PlanLimits(tc.plan)
		assert.Equal(t, tc.maxUsers, users, "plan %s", tc.plan)
		assert.Equal(t, tc.maxProjects, projects, "plan %s", tc.plan)
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TenantStatusActive.Valid())
	assert.True(t, TenantStatusTrial.Valid())
	assert.False(t, TenantStatus("paused").Valid())

	assert.True(t, PlanEnterprise.Valid())
	assert.False(t, SubscriptionPlan("platinum").Valid())

	assert.True(t, RoleSuperAdmin.Valid())
	assert.False(t, Role("owner").Valid())
}
