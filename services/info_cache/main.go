// Package info_cache keeps offer and root snapshots close to the readers. Writes go to a local
// go-cache and, when configured, to redis so API processes see what the engine process publishes.
package info_cache

import (
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/root"
	"github.com/zsmartex/nftex/types"
)

type Remote interface {
	GetKey(key string, src interface{}) error
	SetKey(key string, value interface{}, expiration time.Duration) error
	DeleteKey(key string) error
}

type InfoCache struct {
	local  *cache.Cache
	remote Remote
	ttl    time.Duration
}

// New returns a cache whose local entries live for ttl. remote may be nil.
func New(remote Remote, ttl time.Duration) *InfoCache {
	return &InfoCache{
		local:  cache.New(ttl, 2*ttl),
		remote: remote,
		ttl:    ttl,
	}
}

func OfferKey(address types.Address) string {
	return "nftex:offer:" + address.String()
}

func RootKey(kind types.OfferKind) string {
	return "nftex:root:" + string(kind)
}

func (c *InfoCache) put(key string, value interface{}) {
	c.local.Set(key, value, cache.DefaultExpiration)

	if c.remote == nil {
		return
	}
	// Remote entries do not expire. Offers in a terminal state keep their last snapshot.
	if err := c.remote.SetKey(key, value, 0); err != nil {
		config.Logger.Errorf("[nftex.cache] set %s: %v", key, err)
	}
}

func (c *InfoCache) get(key string, dst interface{}, assign func(value interface{})) bool {
	if value, found := c.local.Get(key); found {
		assign(value)
		return true
	}

	if c.remote == nil {
		return false
	}

	if err := c.remote.GetKey(key, dst); err != nil {
		if !errors.Is(err, redis.Nil) {
			config.Logger.Errorf("[nftex.cache] get %s: %v", key, err)
		}
		return false
	}

	return true
}

// PutOffer stores the latest snapshot of an offer. It has the shape of offers.Deps.OnUpdate.
func (c *InfoCache) PutOffer(offer offers.Offer) {
	c.put(OfferKey(offer.Address), offer)
}

func (c *InfoCache) Offer(address types.Address) (offers.Offer, bool) {
	var offer offers.Offer
	found := c.get(OfferKey(address), &offer, func(value interface{}) {
		offer = value.(offers.Offer)
	})
	if found && c.remote != nil {
		c.local.Set(OfferKey(address), offer, cache.DefaultExpiration)
	}

	return offer, found
}

func (c *InfoCache) PutRoot(info root.Info) {
	c.put(RootKey(info.Kind), info)
}

func (c *InfoCache) Root(kind types.OfferKind) (root.Info, bool) {
	var info root.Info
	found := c.get(RootKey(kind), &info, func(value interface{}) {
		info = value.(root.Info)
	})

	return info, found
}
