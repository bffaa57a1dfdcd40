package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/domain"
	"github.com/ativus/ativus/infrastructure/service/logger"
)

type stubWorkOrderResolver struct {
	refs map[string]*outbound.WorkOrderRef
	err  error
}

func (r *stubWorkOrderResolver) Resolve(ctx context.Context, companyID, workOrderID string) (*outbound.WorkOrderRef, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.refs[workOrderID], nil
}

func newHistoryFixture(t *testing.T, resolver outbound.WorkOrderResolver) (*lifecycleFixture, *HistoryUseCase) {
	t.Helper()
	f := newLifecycleFixture(t)
	huc := NewHistoryUseCase(f.store.Audit(), f.store.Lifecycle(), f.store.Holders(), resolver, logger.NewNopLogger())
	return f, huc
}

func TestGetHistoryPaging(t *testing.T) {
	f, huc := newHistoryFixture(t, nil)
	ctx := context.Background()
	asset := f.register(t, "HS-01").Asset

	for i := 0; i < 4; i++ {
		_, err := f.uc.RecordObservation(ctx, inbound.ObservationRequest{
			CompanyID: testCompany, ActorID: testActor, AssetID: asset.ID,
			Note: "checkup",
		})
		require.NoError(t, err)
	}

	page1, err := huc.GetHistory(ctx, inbound.HistoryRequest{
		CompanyID: testCompany, AssetID: asset.ID, Page: 1, Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, page1.Total)
	require.Len(t, page1.Events, 2)
	assert.Equal(t, int64(1), page1.Events[0].Sequence)

	page3, err := huc.GetHistory(ctx, inbound.HistoryRequest{
		CompanyID: testCompany, AssetID: asset.ID, Page: 3, Limit: 2,
	})
	require.NoError(t, err)
	require.Len(t, page3.Events, 1)
	assert.Equal(t, int64(5), page3.Events[0].Sequence)
}

func TestGetSummary(t *testing.T) {
	f, huc := newHistoryFixture(t, nil)
	ctx := context.Background()
	asset := f.register(t, "HS-02").Asset

	_, err := f.uc.Transfer(ctx, inbound.TransferRequest{
		CompanyID: testCompany, ActorID: testActor, AssetID: asset.ID,
		DestinationKind: domain.HolderTechnician, DestinationID: f.technicianID,
		WorkOrderID: "WO-1",
	})
	require.NoError(t, err)

	_, err = f.uc.StartMaintenance(ctx, inbound.StartMaintenanceRequest{
		CompanyID: testCompany, ActorID: testActor, AssetID: asset.ID,
		DefectReport: "noisy fan", WorkOrderID: "WO-1",
	})
	require.NoError(t, err)

	_, err = f.uc.EndMaintenance(ctx, inbound.EndMaintenanceRequest{
		CompanyID: testCompany, ActorID: testActor, AssetID: asset.ID,
		Outcome: domain.OutcomeRepaired,
	})
	require.NoError(t, err)

	summary, err := huc.GetSummary(ctx, testCompany, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.EventCount)
	assert.Equal(t, 1, summary.WorkOrderCount, "same work order referenced twice counts once")
	assert.Equal(t, 1, summary.MaintenanceCycles)
	require.NotNil(t, summary.LastEventAt)
}

func TestGetSummaryUnknownAsset(t *testing.T) {
	_, huc := newHistoryFixture(t, nil)
	_, err := huc.GetSummary(context.Background(), testCompany, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestTimelineResolvesHoldersAndWorkOrders(t *testing.T) {
	resolver := &stubWorkOrderResolver{refs: map[string]*outbound.WorkOrderRef{
		"WO-9": {ID: "WO-9", Number: "2026/0009", Title: "Troca de peça"},
	}}
	f, huc := newHistoryFixture(t, resolver)
	ctx := context.Background()
	asset := f.register(t, "HS-03").Asset

	_, err := f.uc.Transfer(ctx, inbound.TransferRequest{
		CompanyID: testCompany, ActorID: testActor, AssetID: asset.ID,
		DestinationKind: domain.HolderTechnician, DestinationID: f.technicianID,
		WorkOrderID: "WO-9",
	})
	require.NoError(t, err)

	timeline, err := huc.GetTimeline(ctx, testCompany, asset.ID)
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 2)

	transfer := timeline.Entries[1]
	assert.Equal(t, "Carlos Pereira", transfer.HolderName)
	require.NotNil(t, transfer.WorkOrder)
	assert.Equal(t, "2026/0009", transfer.WorkOrder.Number)
}

// A holder that no longer resolves must not break the timeline; the entry
// degrades to a placeholder name.
func TestTimelineUnknownHolderFallback(t *testing.T) {
	f, huc := newHistoryFixture(t, nil)
	ctx := context.Background()
	asset := f.register(t, "HS-04").Asset

	// fabricate history referencing a holder id that was never created
	ghost := uuid.NewString()
	state, err := f.store.Lifecycle().GetState(ctx, testCompany, asset.ID)
	require.NoError(t, err)

	to := domain.StateSnapshot{Status: domain.StatusInUse, HolderKind: domain.HolderTechnician, HolderID: &ghost}
	next := state.Next(to, state.UpdatedAt)
	event := domain.NewAuditEvent(testCompany, asset.ID, next.Version, domain.EventTransferred, testActor, state.Snapshot(), to, domain.EventPayload{})
	require.NoError(t, f.store.Lifecycle().Apply(ctx, outbound.TransitionWrite{
		Event: event, State: next, ExpectedVersion: state.Version,
	}))

	timeline, err := huc.GetTimeline(ctx, testCompany, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "unknown holder", timeline.Entries[1].HolderName)
}

func TestTimelineWorkOrderLookupFailureIsSoft(t *testing.T) {
	resolver := &stubWorkOrderResolver{err: errors.New("upstream down")}
	f, huc := newHistoryFixture(t, resolver)
	ctx := context.Background()
	asset := f.register(t, "HS-05").Asset

	_, err := f.uc.RecordObservation(ctx, inbound.ObservationRequest{
		CompanyID: testCompany, ActorID: testActor, AssetID: asset.ID,
		Note: "linked to order", WorkOrderID: "WO-404",
	})
	require.NoError(t, err)

	timeline, err := huc.GetTimeline(ctx, testCompany, asset.ID)
	require.NoError(t, err)
	assert.Nil(t, timeline.Entries[1].WorkOrder)
}

func TestVerifyProjectionConsistent(t *testing.T) {
	f, huc := newHistoryFixture(t, nil)
	ctx := context.Background()
	asset := f.register(t, "HS-06").Asset

	_, err := f.uc.Transfer(ctx, inbound.TransferRequest{
		CompanyID: testCompany, ActorID: testActor, AssetID: asset.ID,
		DestinationKind: domain.HolderClient, DestinationID: f.clientID,
	})
	require.NoError(t, err)

	report, err := huc.VerifyProjection(ctx, testCompany, asset.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, report.Stored.Version, report.Replayed.Version)
}
