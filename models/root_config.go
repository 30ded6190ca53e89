package models

import (
	"encoding/json"
	"time"

	"github.com/zsmartex/nftex/offers"
)

type RootConfig struct {
	Address   string    `json:"address" gorm:"primaryKey"`
	Kind      string    `json:"kind"`
	Owner     string    `json:"owner"`
	Version   uint64    `json:"version"`
	NextID    uint64    `json:"next_id"`
	Fees      string    `json:"fees"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *RootConfig) FeeConfig() (offers.FeeConfig, error) {
	var feeConfig offers.FeeConfig
	err := json.Unmarshal([]byte(c.Fees), &feeConfig)

	return feeConfig, err
}
