package offers

import (
	"context"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/nft"
	"github.com/zsmartex/nftex/types"
)

type Ledger interface {
	Transfer(from, to types.Address, amount decimal.Decimal, memo string) error
	Balance(address types.Address) decimal.Decimal
	Close(address, beneficiary types.Address) (decimal.Decimal, error)
}

type Items interface {
	ChangeManager(ctx context.Context, item, caller, newManager, sendGasTo types.Address, gas decimal.Decimal, callbacks ...nft.Callback) error
	Transfer(ctx context.Context, item, caller, newOwner, sendGasTo types.Address, gas decimal.Decimal, callbacks ...nft.Callback) error
}

type Deps struct {
	Ledger    Ledger
	Items     Items
	Publisher events.Publisher
	Clock     types.Clock
	// OnUpdate, when set, sees the offer after every applied message.
	OnUpdate func(offer Offer)
}

type envelope struct {
	ctx   context.Context
	msg   Message
	reply chan error
	stop  bool
}

func (e envelope) respond(err error) {
	if e.reply != nil {
		e.reply <- err
	}
}

// Engine owns one offer. Messages are applied strictly one at a time in arrival order.
type Engine struct {
	OfferMutex sync.RWMutex
	offer      Offer
	address    types.Address
	deps       Deps

	queueMutex sync.Mutex
	queueCond  *sync.Cond
	queue      *linkedlistqueue.Queue
	closed     bool
	done       chan struct{}
}

func NewEngine(offer Offer, deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = types.SystemClock{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Fanout{}
	}

	engine := &Engine{
		offer:   offer,
		address: offer.Address,
		deps:    deps,
		queue:   linkedlistqueue.New(),
		done:    make(chan struct{}),
	}
	engine.queueCond = sync.NewCond(&engine.queueMutex)

	if offer.State.Terminal() {
		engine.closed = true
		close(engine.done)
	}

	return engine
}

// Start runs the mailbox loop. Engines of terminal offers never start.
func (e *Engine) Start() {
	e.queueMutex.Lock()
	closed := e.closed
	e.queueMutex.Unlock()

	if closed {
		return
	}

	go e.run()
}

// Stop halts the engine without touching the offer. Pending messages bounce.
func (e *Engine) Stop() {
	e.enqueue(envelope{stop: true})
}

func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) Offer() Offer {
	e.OfferMutex.RLock()
	defer e.OfferMutex.RUnlock()

	return e.offer
}

func (e *Engine) Address() types.Address {
	return e.address
}

// Send queues msg and returns at once. It fails only when the offer no longer exists.
func (e *Engine) Send(msg Message) error {
	return e.enqueue(envelope{ctx: context.Background(), msg: msg})
}

// Call queues msg and waits until it has been applied, returning its outcome.
func (e *Engine) Call(ctx context.Context, msg Message) error {
	reply := make(chan error, 1)
	if err := e.enqueue(envelope{ctx: ctx, msg: msg, reply: reply}); err != nil {
		return err
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) enqueue(env envelope) error {
	e.queueMutex.Lock()
	defer e.queueMutex.Unlock()

	if e.closed {
		return fmt.Errorf("offer %s is destroyed: %w", e.address, ErrInvalidState)
	}

	e.queue.Enqueue(env)
	e.queueCond.Signal()
	return nil
}

func (e *Engine) next() envelope {
	e.queueMutex.Lock()
	defer e.queueMutex.Unlock()

	for e.queue.Empty() {
		e.queueCond.Wait()
	}

	value, _ := e.queue.Dequeue()
	return value.(envelope)
}

func (e *Engine) run() {
	defer close(e.done)

	for {
		env := e.next()
		if env.stop {
			e.shutdown()
			return
		}

		if destroyed := e.apply(env); destroyed {
			e.shutdown()
			return
		}
	}
}

func (e *Engine) shutdown() {
	e.queueMutex.Lock()
	defer e.queueMutex.Unlock()

	e.closed = true
	for !e.queue.Empty() {
		value, _ := e.queue.Dequeue()
		env := value.(envelope)
		env.respond(fmt.Errorf("offer %s is destroyed: %w", e.address, ErrInvalidState))
	}
}

func (e *Engine) apply(env envelope) bool {
	ctx := env.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	offer := e.Offer()
	msg := env.msg

	if value := msg.Attached(); value.IsPositive() {
		if err := e.deps.Ledger.Transfer(msg.Sender(), offer.Address, value, "deposit"); err != nil {
			env.respond(fmt.Errorf("%s cannot attach %s: %v: %w", msg.Sender(), value, err, ErrInsufficientValue))
			return false
		}
	}

	now := e.deps.Clock.Now()
	next, effects, err := Reduce(offer, msg, now)

	if err == nil {
		if handErr := e.handOver(ctx, offer, effects); handErr != nil {
			config.Logger.Errorf("[nftex.offer] %s kept %s active, hand-off failed: %v", offer.Address, offer.State, handErr)
			e.execute(offer, refund(msg, "refund"))
			env.respond(fmt.Errorf("%s cannot hand %s over: %v: %w", offer.Address, offer.Item, handErr, ErrInvalidState))
			return false
		}
	}

	e.OfferMutex.Lock()
	e.offer = next
	e.OfferMutex.Unlock()

	if err != nil {
		config.Logger.Debugf("[nftex.offer] %s rejected %T from %s: %v", offer.Address, msg, msg.Sender(), err)
	} else {
		config.Logger.Infof("[nftex.offer] %s applied %T from %s, state: %s", offer.Address, msg, msg.Sender(), next.State)
	}

	destroyed := e.execute(next, effects)

	if e.deps.OnUpdate != nil {
		e.deps.OnUpdate(next)
	}

	env.respond(err)
	return destroyed
}

// handOver runs the item hand-off of effects before anything else moves. A failed hand-off
// leaves the offer untouched. Gas comes out of whatever the payouts leave on the offer.
func (e *Engine) handOver(ctx context.Context, offer Offer, effects []Effect) error {
	for _, effect := range effects {
		handOver, ok := effect.(HandOver)
		if !ok {
			continue
		}

		if handOver.Ownership {
			gas := decimal.Min(offer.Fees.NftTransferFee, e.spare(offer, effects))
			return e.deps.Items.Transfer(ctx, offer.Item, offer.Address, handOver.To, offer.Seller, gas)
		}

		gas := decimal.Min(offer.Fees.NftGasAmount, e.spare(offer, effects))
		return e.deps.Items.ChangeManager(ctx, offer.Item, offer.Address, handOver.To, offer.Seller, gas)
	}

	return nil
}

func (e *Engine) spare(offer Offer, effects []Effect) decimal.Decimal {
	spare := e.deps.Ledger.Balance(offer.Address)
	for _, effect := range effects {
		if pay, ok := effect.(Pay); ok && pay.Amount.IsPositive() {
			spare = spare.Sub(pay.Amount)
		}
	}

	return decimal.Max(spare, decimal.Zero)
}

func (e *Engine) execute(offer Offer, effects []Effect) bool {
	destroyed := false
	now := e.deps.Clock.Now()

	for _, effect := range effects {
		switch effect := effect.(type) {
		case Pay:
			if !effect.Amount.IsPositive() {
				continue
			}
			if err := e.deps.Ledger.Transfer(offer.Address, effect.To, effect.Amount, effect.Memo); err != nil {
				config.Logger.Errorf("[nftex.offer] %s failed to pay %s %s (%s): %v", offer.Address, effect.To, effect.Amount, effect.Memo, err)
			}
		case Emit:
			event := events.New(effect.Name, offer.Address, effect.Data, now)
			event.Offer = offer.Address
			event.Kind = offer.Kind
			e.deps.Publisher.Publish(event)
			if effect.Mirror {
				e.deps.Publisher.Publish(event.At(offer.Root))
			}
		case Destroy:
			destroyed = true
		}
	}

	if destroyed {
		e.destroy(offer)
	}

	return destroyed
}

// destroy keeps LeftOnOfferAfterFinish for the market and returns the rest of the balance to
// the seller.
func (e *Engine) destroy(offer Offer) {
	left := e.deps.Ledger.Balance(offer.Address)
	if keep := decimal.Min(left, offer.Fees.LeftOnOfferAfterFinish); keep.IsPositive() {
		if err := e.deps.Ledger.Transfer(offer.Address, offer.Fees.WithdrawalAddress, keep, "left on offer"); err != nil {
			config.Logger.Errorf("[nftex.offer] %s failed to keep %s for the market: %v", offer.Address, keep, err)
		}
	}

	returned, err := e.deps.Ledger.Close(offer.Address, offer.Seller)
	if err != nil {
		config.Logger.Errorf("[nftex.offer] %s failed to close: %v", offer.Address, err)
		return
	}

	config.Logger.Infof("[nftex.offer] %s destroyed as %s, %s returned to %s", offer.Address, offer.State, returned, offer.Seller)
}
