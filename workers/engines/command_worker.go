package engines

import (
	"context"
	"time"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/market"
)

type CommandWorker struct {
	market  *market.Market
	timeout time.Duration
}

// NewCommandWorker applies queued commands to m. Each command waits at most timeout for the
// offer it targets to apply it.
func NewCommandWorker(m *market.Market, timeout time.Duration) *CommandWorker {
	return &CommandWorker{market: m, timeout: timeout}
}

func (w *CommandWorker) Process(payload []byte) error {
	command, err := market.DecodeCommand(payload)
	if err != nil {
		config.Logger.Errorf("[nftex.worker] %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.market.Execute(ctx, command); err != nil {
		config.Logger.Infof("[nftex.worker] command %s %s from %s failed: %v", command.ID, command.Action, command.Caller, err)
		return err
	}

	config.Logger.Debugf("[nftex.worker] command %s %s applied", command.ID, command.Action)

	return nil
}
