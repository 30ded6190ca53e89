// Package settlement_metrics writes one influx point per offer that reaches a terminal state.
package settlement_metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
)

const Measurement = "offer_settlements"

type Writer interface {
	NewPoint(name string, tags map[string]string, fields map[string]interface{}, at time.Time) error
}

type Recorder struct {
	writer Writer
}

func NewRecorder(writer Writer) *Recorder {
	return &Recorder{writer: writer}
}

func amount(data map[string]string, keys ...string) float64 {
	for _, key := range keys {
		if value, err := decimal.NewFromString(data[key]); err == nil {
			f, _ := value.Float64()
			return f
		}
	}

	return 0
}

// Publish implements events.Publisher. Root copies of mirrored events are skipped so each
// settlement is counted once.
func (r *Recorder) Publish(event events.Event) {
	if !event.Terminal() || event.Address != event.Offer {
		return
	}

	tags := map[string]string{
		"kind":  string(event.Kind),
		"state": string(event.Name),
	}
	fields := map[string]interface{}{
		"offer": event.Offer.String(),
		"value": amount(event.Data, "price", "final_value"),
	}

	if err := r.writer.NewPoint(Measurement, tags, fields, event.CreatedAt); err != nil {
		config.Logger.Errorf("[nftex.metrics] %s %s: %v", event.Offer, event.Name, err)
	}
}
