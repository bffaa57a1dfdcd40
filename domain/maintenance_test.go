package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaintenanceTicket(t *testing.T) {
	ticket, err := NewMaintenanceTicket("co-1", "asset-1", "actor-1", "  screen flickers  ")
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, TicketOpened, ticket.State)
	assert.Equal(t, "screen flickers", ticket.DefectReport)
	assert.Equal(t, "actor-1", ticket.OpenedBy)
	assert.True(t, ticket.Open())
}

func TestNewMaintenanceTicketRequiresDefectReport(t *testing.T) {
	_, err := NewMaintenanceTicket("co-1", "asset-1", "actor-1", "   ")
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "defect_report", vErr.Field)
}

func TestTicketOpen(t *testing.T) {
	ticket := &MaintenanceTicket{State: TicketDiagnosed}
	assert.True(t, ticket.Open())

	ticket.State = TicketClosed
	assert.False(t, ticket.Open())
}

func TestValidOutcome(t *testing.T) {
	assert.True(t, ValidOutcome(OutcomeRepaired))
	assert.True(t, ValidOutcome(OutcomeScrapped))
	assert.False(t, ValidOutcome(MaintenanceOutcome("lost")))
	assert.False(t, ValidOutcome(MaintenanceOutcome("")))
}
