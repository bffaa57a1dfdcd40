package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/domain"
	"github.com/ativus/ativus/infrastructure/service/logger"
)

type fakeCache struct {
	values map[string][]byte
	sets   int
	fail   bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.fail {
		return false, errors.New("cache unavailable")
	}
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.fail {
		return errors.New("cache unavailable")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	c.sets++
	return nil
}

func TestDashboardCounts(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	f.register(t, "DB-01")
	f.register(t, "DB-02")
	a3 := f.register(t, "DB-03").Asset
	_, err := f.uc.Transfer(ctx, inbound.TransferRequest{
		CompanyID: testCompany, ActorID: testActor, AssetID: a3.ID,
		DestinationKind: domain.HolderClient, DestinationID: f.clientID,
	})
	require.NoError(t, err)

	cache := newFakeCache()
	duc := NewDashboardUseCase(f.store.Assets(), cache, time.Minute, logger.NewNopLogger())

	res, err := duc.GetDashboard(ctx, testCompany)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.ByStatus[string(domain.StatusAvailable)])
	assert.Equal(t, 1, res.ByStatus[string(domain.StatusInUse)])
	assert.Equal(t, 3, res.ByType["notebook"])
	assert.Equal(t, 1, cache.sets)

	// second call is served from cache
	again, err := duc.GetDashboard(ctx, testCompany)
	require.NoError(t, err)
	assert.Equal(t, res.CachedAt.Unix(), again.CachedAt.Unix())
	assert.Equal(t, 1, cache.sets)
}

func TestDashboardDegradesWithoutCache(t *testing.T) {
	f := newLifecycleFixture(t)
	f.register(t, "DB-10")

	cache := newFakeCache()
	cache.fail = true
	duc := NewDashboardUseCase(f.store.Assets(), cache, time.Minute, logger.NewNopLogger())

	res, err := duc.GetDashboard(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	nilCacheUC := NewDashboardUseCase(f.store.Assets(), nil, time.Minute, logger.NewNopLogger())
	res, err = nilCacheUC.GetDashboard(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}
