// Package nft is an in-process registry of unique items and their manager capabilities.
package nft

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/fees"
	"github.com/zsmartex/nftex/types"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrNotManager   = errors.New("caller is not the item manager")
	ErrItemExists   = errors.New("item already exists")
)

type Item struct {
	Address   types.Address  `json:"address"`
	Owner     types.Address  `json:"owner"`
	Manager   types.Address  `json:"manager"`
	Royalties []fees.Royalty `json:"royalties"`
	JSON      string         `json:"json"`
}

// Callback is delivered to Target after a successful hand-off, carrying Value out of the
// caller's balance.
type Callback struct {
	Target  types.Address
	Value   decimal.Decimal
	Payload []byte
}

type ManagerChanged struct {
	Item       Item
	OldManager types.Address
	NewManager types.Address
	SendGasTo  types.Address
	Value      decimal.Decimal
	Payload    []byte
}

type Receiver interface {
	OnManagerChanged(ctx context.Context, change ManagerChanged) error
}

type Ledger interface {
	Transfer(from, to types.Address, amount decimal.Decimal, memo string) error
}

type Collection struct {
	mutex     sync.RWMutex
	Address   types.Address
	ledger    Ledger
	items     map[types.Address]*Item
	receivers map[types.Address]Receiver
	sequence  uint64
}

func NewCollection(address types.Address, ledger Ledger) *Collection {
	return &Collection{
		Address:   address,
		ledger:    ledger,
		items:     make(map[types.Address]*Item),
		receivers: make(map[types.Address]Receiver),
	}
}

// Bind routes callbacks targeting address to receiver.
func (c *Collection) Bind(address types.Address, receiver Receiver) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.receivers[address] = receiver
}

func (c *Collection) Unbind(address types.Address) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.receivers, address)
}

// Mint creates an item owned and managed by owner.
func (c *Collection) Mint(owner types.Address, json string, royalties []fees.Royalty) (Item, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, royalty := range royalties {
		if royalty.Percent.IsNegative() || royalty.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return Item{}, fmt.Errorf("royalty %s%% for %s is out of range", royalty.Percent, royalty.Recipient)
		}
	}

	address := types.DeriveAddress(c.Address, c.sequence, types.Hash([]byte(json)))
	c.sequence++

	if _, found := c.items[address]; found {
		return Item{}, ErrItemExists
	}

	item := &Item{
		Address:   address,
		Owner:     owner,
		Manager:   owner,
		Royalties: append([]fees.Royalty(nil), royalties...),
		JSON:      json,
	}
	c.items[address] = item

	return *item, nil
}

// Restore puts back an item loaded from storage as it is, without minting it again.
func (c *Collection) Restore(item Item) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !item.Address.Valid() {
		return fmt.Errorf("item address %q is invalid", item.Address)
	}
	if _, found := c.items[item.Address]; found {
		return fmt.Errorf("%s: %w", item.Address, ErrItemExists)
	}

	item.Royalties = append([]fees.Royalty(nil), item.Royalties...)
	c.items[item.Address] = &item

	return nil
}

func (c *Collection) Get(address types.Address) (Item, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, found := c.items[address]
	if !found {
		return Item{}, fmt.Errorf("%s: %w", address, ErrItemNotFound)
	}

	return *item, nil
}

// Items lists the items owned by owner, ordered by address.
func (c *Collection) Items(owner types.Address) []Item {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var items []Item
	for _, item := range c.items {
		if item.Owner == owner {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Address < items[j].Address })

	return items
}

// ChangeManager hands the manager capability of item from caller to newManager. gas is paid by
// caller to sendGasTo, then every callback is delivered in order.
func (c *Collection) ChangeManager(ctx context.Context, item, caller, newManager, sendGasTo types.Address, gas decimal.Decimal, callbacks ...Callback) error {
	return c.handOff(ctx, item, caller, newManager, sendGasTo, gas, false, callbacks)
}

// Transfer moves ownership and the manager capability of item to newOwner.
func (c *Collection) Transfer(ctx context.Context, item, caller, newOwner, sendGasTo types.Address, gas decimal.Decimal, callbacks ...Callback) error {
	return c.handOff(ctx, item, caller, newOwner, sendGasTo, gas, true, callbacks)
}

func (c *Collection) handOff(ctx context.Context, address, caller, to, sendGasTo types.Address, gas decimal.Decimal, withOwner bool, callbacks []Callback) error {
	c.mutex.Lock()

	item, found := c.items[address]
	if !found {
		c.mutex.Unlock()
		return fmt.Errorf("%s: %w", address, ErrItemNotFound)
	}
	if item.Manager != caller {
		c.mutex.Unlock()
		return fmt.Errorf("%s is managed by %s, not %s: %w", address, item.Manager, caller, ErrNotManager)
	}

	if sendGasTo != caller && gas.IsPositive() {
		if err := c.ledger.Transfer(caller, sendGasTo, gas, "gas"); err != nil {
			c.mutex.Unlock()
			return err
		}
	}

	for i, callback := range callbacks {
		if err := c.ledger.Transfer(caller, callback.Target, callback.Value, "callback"); err != nil {
			for _, paid := range callbacks[:i] {
				c.ledger.Transfer(paid.Target, caller, paid.Value, "callback refund")
			}
			c.mutex.Unlock()
			return err
		}
	}

	oldManager := item.Manager
	item.Manager = to
	if withOwner {
		item.Owner = to
	}
	snapshot := *item

	receivers := make([]Receiver, len(callbacks))
	for i, callback := range callbacks {
		receivers[i] = c.receivers[callback.Target]
	}
	c.mutex.Unlock()

	var errs []error
	for i, callback := range callbacks {
		receiver := receivers[i]
		if receiver == nil {
			continue
		}

		if err := receiver.OnManagerChanged(ctx, ManagerChanged{
			Item:       snapshot,
			OldManager: oldManager,
			NewManager: to,
			SendGasTo:  sendGasTo,
			Value:      callback.Value,
			Payload:    callback.Payload,
		}); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
