package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

var Roots *RootsConfig

// RootConfig is the initial fee configuration of one root. Amounts are decimal strings.
type RootConfig struct {
	Address                string `yaml:"address"`
	Owner                  string `yaml:"owner"`
	WithdrawalAddress      string `yaml:"withdrawal_address"`
	DeploymentFee          string `yaml:"deployment_fee"`
	CreationPrice          string `yaml:"creation_price"`
	MinimalGasAmount       string `yaml:"minimal_gas_amount"`
	NftGasAmount           string `yaml:"nft_gas_amount"`
	NftTransferFee         string `yaml:"nft_transfer_fee"`
	MethodsCallsFee        string `yaml:"methods_calls_fee"`
	LeftOnOfferAfterFinish string `yaml:"left_on_offer_after_finish"`
	MarketFee              uint32 `yaml:"market_fee"`
	MarketFeeDecimals      uint8  `yaml:"market_fee_decimals"`
	BidDelta               string `yaml:"bid_delta"`
	ExtraSecondsAmount     uint64 `yaml:"extra_seconds_amount"`
}

type RootsConfig struct {
	Collection string     `yaml:"collection"`
	Sell       RootConfig `yaml:"sell"`
	Auction    RootConfig `yaml:"auction"`
}

func RootsConfigPath() string {
	if path := os.Getenv("ROOTS_CONFIG"); path != "" {
		return path
	}

	return "config/roots.yml"
}

func ParseRootsConfig(buf []byte) (*RootsConfig, error) {
	c := &RootsConfig{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, err
	}

	for name, root := range map[string]RootConfig{"sell": c.Sell, "auction": c.Auction} {
		if root.Address == "" || root.Owner == "" {
			return nil, fmt.Errorf("roots config: %s root needs an address and an owner", name)
		}
	}

	return c, nil
}

func LoadRootsConfig(path string) error {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	c, err := ParseRootsConfig(buf)
	if err != nil {
		return err
	}

	Roots = c
	return nil
}
