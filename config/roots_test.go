package config

import (
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRootsConfig(t *testing.T) {
	buf, err := ioutil.ReadFile("roots.yml")
	require.NoError(t, err)

	roots, err := ParseRootsConfig(buf)
	require.NoError(t, err)

	require.Equal(t, "1", roots.Sell.DeploymentFee)
	require.Equal(t, uint32(5), roots.Sell.MarketFee)
	require.Equal(t, "10", roots.Auction.BidDelta)
	require.Equal(t, uint64(5), roots.Auction.ExtraSecondsAmount)
	require.Empty(t, roots.Sell.BidDelta)
}

func TestParseRootsConfigRequiresOwner(t *testing.T) {
	_, err := ParseRootsConfig([]byte("sell:\n  address: \"0:01\"\nauction:\n  address: \"0:02\"\n  owner: \"0:03\"\n"))
	require.Error(t, err)
}
