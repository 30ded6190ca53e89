package cron

import (
	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/root"
)

type RootInfoCache interface {
	PutRoot(info root.Info)
}

type RootConfigStore interface {
	SaveRootConfig(info root.Info) error
}

// RootSnapshotJob publishes every root's current configuration and offer index to the info
// cache and stores the configuration and next offer id for readers outside the engine process
// and for the next engine start.
type RootSnapshotJob struct {
	Roots []*root.Root
	Cache RootInfoCache
	Store RootConfigStore
}

func (j *RootSnapshotJob) Process() {
	for _, r := range j.Roots {
		info := r.Info()

		if j.Cache != nil {
			j.Cache.PutRoot(info)
		}

		if j.Store != nil {
			if err := j.Store.SaveRootConfig(info); err != nil {
				config.Logger.Errorf("[nftex.cron] failed to store %s root config: %v", info.Kind, err)
			}
		}
	}
}
