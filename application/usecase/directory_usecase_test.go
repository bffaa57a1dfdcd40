package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/domain"
	"github.com/ativus/ativus/infrastructure/adapter/memory"
	"github.com/ativus/ativus/infrastructure/service/logger"
)

func TestCreateHolder(t *testing.T) {
	store := memory.NewStore()
	uc := NewDirectoryUseCase(store.Holders(), logger.NewNopLogger())
	ctx := context.Background()

	res, err := uc.CreateHolder(ctx, inbound.CreateHolderRequest{
		CompanyID: testCompany, Kind: "technician", Name: "  Ana Souza  ",
		Email: "ana@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", res.Holder.Name)
	assert.Equal(t, domain.HolderTechnician, res.Holder.Kind)
	assert.True(t, res.Holder.Active)

	fetched, err := uc.GetHolder(ctx, testCompany, res.Holder.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Holder.ID, fetched.Holder.ID)
}

func TestCreateHolderValidation(t *testing.T) {
	store := memory.NewStore()
	uc := NewDirectoryUseCase(store.Holders(), logger.NewNopLogger())

	var vErr *domain.ValidationError

	_, err := uc.CreateHolder(context.Background(), inbound.CreateHolderRequest{
		CompanyID: testCompany, Kind: "warehouse", Name: "X",
	})
	assert.ErrorAs(t, err, &vErr)

	_, err = uc.CreateHolder(context.Background(), inbound.CreateHolderRequest{
		CompanyID: testCompany, Kind: "depot", Name: "   ",
	})
	assert.ErrorAs(t, err, &vErr)
}

func TestListHoldersByKind(t *testing.T) {
	store := memory.NewStore()
	uc := NewDirectoryUseCase(store.Holders(), logger.NewNopLogger())
	ctx := context.Background()

	for _, h := range []struct{ kind, name string }{
		{"depot", "Depósito Sul"},
		{"depot", "Depósito Norte"},
		{"client", "Mercado Azul"},
	} {
		_, err := uc.CreateHolder(ctx, inbound.CreateHolderRequest{
			CompanyID: testCompany, Kind: h.kind, Name: h.name,
		})
		require.NoError(t, err)
	}

	depot := domain.HolderDepot
	res, err := uc.ListHolders(ctx, testCompany, &depot)
	require.NoError(t, err)
	assert.Len(t, res.Holders, 2)

	all, err := uc.ListHolders(ctx, testCompany, nil)
	require.NoError(t, err)
	assert.Len(t, all.Holders, 3)
}
