package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// buildHistory produces a well-formed event sequence:
// CREATED -> TRANSFERRED(technician) -> OBSERVATION -> TRANSFERRED(depot).
func buildHistory(t *testing.T) []*AuditEvent {
	t.Helper()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	company, asset := "co-1", "asset-1"

	created := NewAuditEvent(company, asset, 1, EventCreated, "actor-1",
		StateSnapshot{HolderKind: HolderNone},
		StateSnapshot{Status: StatusAvailable, HolderKind: HolderDepot, HolderID: strPtr("depot-1")},
		EventPayload{Notes: "registered"})
	created.CreatedAt = base

	toTech := NewAuditEvent(company, asset, 2, EventTransferred, "actor-1",
		created.To,
		StateSnapshot{Status: StatusInUse, HolderKind: HolderTechnician, HolderID: strPtr("tech-1")},
		EventPayload{Reason: "field job"})
	toTech.CreatedAt = base.Add(time.Hour)

	note := NewAuditEvent(company, asset, 3, EventObservation, "actor-2",
		toTech.To, toTech.To,
		EventPayload{Notes: "scratched casing"})
	note.CreatedAt = base.Add(2 * time.Hour)

	back := NewAuditEvent(company, asset, 4, EventTransferred, "actor-2",
		toTech.To,
		StateSnapshot{Status: StatusAvailable, HolderKind: HolderDepot, HolderID: strPtr("depot-1")},
		EventPayload{Reason: "returned"})
	back.CreatedAt = base.Add(3 * time.Hour)

	return []*AuditEvent{created, toTech, note, back}
}

func TestReplayReproducesProjection(t *testing.T) {
	events := buildHistory(t)

	state, err := Replay(events)
	require.NoError(t, err)

	assert.Equal(t, "asset-1", state.AssetID)
	assert.Equal(t, StatusAvailable, state.Status)
	assert.Equal(t, HolderDepot, state.HolderKind)
	require.NotNil(t, state.HolderID)
	assert.Equal(t, "depot-1", *state.HolderID)
	assert.Equal(t, int64(4), state.Version)
}

func TestReplayEveryPrefixIsValid(t *testing.T) {
	events := buildHistory(t)

	for i := 1; i <= len(events); i++ {
		state, err := Replay(events[:i])
		require.NoError(t, err, "prefix of length %d", i)
		assert.Equal(t, int64(i), state.Version)
		assert.Equal(t, events[i-1].To.Status, state.Status)
	}
}

func TestReplayMatchesIncrementalNext(t *testing.T) {
	events := buildHistory(t)

	// Walk the same history through Next, the write-time path.
	incremental := &LifecycleState{
		AssetID:    "asset-1",
		CompanyID:  "co-1",
		Status:     events[0].To.Status,
		HolderKind: events[0].To.HolderKind,
		HolderID:   events[0].To.HolderID,
		Version:    1,
	}
	for _, e := range events[1:] {
		incremental = incremental.Next(e.To, e.CreatedAt)
	}

	replayed, err := Replay(events)
	require.NoError(t, err)
	assert.True(t, replayed.Equivalent(incremental))
	assert.True(t, incremental.Equivalent(replayed))
}

func TestReplayRejectsCorruptedHistory(t *testing.T) {
	t.Run("empty sequence", func(t *testing.T) {
		_, err := Replay(nil)
		assert.ErrorIs(t, err, ErrCorruptedHistory)
	})

	t.Run("missing created event", func(t *testing.T) {
		events := buildHistory(t)[1:]
		_, err := Replay(events)
		assert.ErrorIs(t, err, ErrCorruptedHistory)
	})

	t.Run("sequence gap", func(t *testing.T) {
		events := buildHistory(t)
		events[2].Sequence = 5
		_, err := Replay(events)
		assert.ErrorIs(t, err, ErrCorruptedHistory)
	})

	t.Run("foreign asset event", func(t *testing.T) {
		events := buildHistory(t)
		events[1].AssetID = "asset-other"
		_, err := Replay(events)
		assert.ErrorIs(t, err, ErrCorruptedHistory)
	})
}

func TestEquivalentIgnoresUpdatedAt(t *testing.T) {
	a := &LifecycleState{AssetID: "x", Status: StatusInUse, HolderKind: HolderClient, HolderID: strPtr("c1"), Version: 3, UpdatedAt: time.Now()}
	b := &LifecycleState{AssetID: "x", Status: StatusInUse, HolderKind: HolderClient, HolderID: strPtr("c1"), Version: 3, UpdatedAt: time.Now().Add(time.Hour)}
	assert.True(t, a.Equivalent(b))

	b.Version = 4
	assert.False(t, a.Equivalent(b))

	b.Version = 3
	b.HolderID = nil
	assert.False(t, a.Equivalent(b))
}

func TestInitialState(t *testing.T) {
	withDepot := InitialState("co-1", "a-1", strPtr("depot-9"))
	assert.Equal(t, StatusAvailable, withDepot.Status)
	assert.Equal(t, HolderDepot, withDepot.HolderKind)
	assert.Equal(t, int64(1), withDepot.Version)

	bare := InitialState("co-1", "a-2", nil)
	assert.Equal(t, HolderNone, bare.HolderKind)
	assert.Nil(t, bare.HolderID)
}

func TestStateChanging(t *testing.T) {
	events := buildHistory(t)
	assert.True(t, events[0].StateChanging())
	assert.True(t, events[1].StateChanging())
	assert.False(t, events[2].StateChanging(), "observation must not change state")
}
