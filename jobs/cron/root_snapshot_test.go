package cron

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/root"
	"github.com/zsmartex/nftex/types"
)

const (
	sellAddress types.Address = "0:5e11000000000000000000000000000000000000000000000000000000000001"
	owner       types.Address = "0:0e0e000000000000000000000000000000000000000000000000000000000001"
	withdrawal  types.Address = "0:fe00000000000000000000000000000000000000000000000000000000000000"
)

type snapshots struct {
	infos   []root.Info
	configs []offers.FeeConfig
	err     error
}

func (s *snapshots) PutRoot(info root.Info) {
	s.infos = append(s.infos, info)
}

func (s *snapshots) SaveRootConfig(info root.Info) error {
	s.configs = append(s.configs, info.Fees)

	return s.err
}

func testRoot(t *testing.T) *root.Root {
	feeConfig := offers.FeeConfig{
		DeploymentFee:          decimal.NewFromInt(1),
		CreationPrice:          decimal.RequireFromString("0.5"),
		MinimalGasAmount:       decimal.RequireFromString("0.1"),
		NftGasAmount:           decimal.RequireFromString("0.1"),
		NftTransferFee:         decimal.RequireFromString("0.2"),
		MethodsCallsFee:        decimal.RequireFromString("0.1"),
		LeftOnOfferAfterFinish: decimal.RequireFromString("0.05"),
		MarketFee:              fees.MarketFee{Value: 5},
		WithdrawalAddress:      withdrawal,
	}

	r, err := root.New(sellAddress, types.KindSell, owner, feeConfig, root.Deps{
		Publisher: events.NewLog(),
		Clock:     types.SystemClock{},
	})
	require.NoError(t, err)

	return r
}

func TestRootSnapshotJob(t *testing.T) {
	r := testRoot(t)
	store := &snapshots{}
	job := &RootSnapshotJob{Roots: []*root.Root{r}, Cache: store, Store: store}

	job.Process()
	require.NoError(t, r.SetDeploymentFee(owner, decimal.NewFromInt(2)))
	store.err = errors.New("database down")
	job.Process()

	if assert.Len(t, store.infos, 2) {
		assert.Equal(t, owner, store.infos[0].Owner)
		assert.Equal(t, "1", store.infos[0].Fees.DeploymentFee.String())
		assert.Equal(t, "2", store.infos[1].Fees.DeploymentFee.String())
		assert.Len(t, store.infos[1].CodeHash, 64)
		assert.Equal(t, uint64(1), store.infos[1].NextID)
	}
	assert.Len(t, store.configs, 2)
}
