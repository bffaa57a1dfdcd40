package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"available to in use", StatusAvailable, StatusInUse, true},
		{"available to maintenance", StatusAvailable, StatusMaintenance, true},
		{"available to available (depot move)", StatusAvailable, StatusAvailable, true},
		{"in use to in use (reassignment)", StatusInUse, StatusInUse, true},
		{"in use to maintenance", StatusInUse, StatusMaintenance, true},
		{"maintenance to available", StatusMaintenance, StatusAvailable, true},
		{"maintenance to decommissioned", StatusMaintenance, StatusDecommissioned, true},
		{"maintenance to in use is forbidden", StatusMaintenance, StatusInUse, false},
		{"maintenance to unavailable is forbidden", StatusMaintenance, StatusUnavailable, false},
		{"unavailable back to available", StatusUnavailable, StatusAvailable, true},
		{"decommissioned is terminal", StatusDecommissioned, StatusAvailable, false},
		{"decommissioned stays decommissioned", StatusDecommissioned, StatusDecommissioned, false},
		{"unknown status has no transitions", Status("quebrado"), StatusAvailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestEveryStatusHasTransitionEntry(t *testing.T) {
	for _, s := range []Status{StatusAvailable, StatusInUse, StatusMaintenance, StatusUnavailable, StatusDecommissioned} {
		_, ok := AllowTransition[s]
		assert.True(t, ok, "status %s missing from transition table", s)
	}
}

func TestStatusForHolder(t *testing.T) {
	assert.Equal(t, StatusAvailable, StatusForHolder(HolderDepot))
	assert.Equal(t, StatusInUse, StatusForHolder(HolderTechnician))
	assert.Equal(t, StatusInUse, StatusForHolder(HolderClient))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusAvailable))
	assert.True(t, ValidStatus(StatusDecommissioned))
	assert.False(t, ValidStatus(Status("available")))
	assert.False(t, ValidStatus(Status("")))
}

func TestValidHolderKind(t *testing.T) {
	assert.True(t, ValidHolderKind(HolderNone))
	assert.True(t, ValidHolderKind(HolderClient))
	assert.False(t, ValidHolderKind(HolderKind("warehouse")))
}
