package mq_client

import (
	"encoding/json"
	"strings"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
)

type Conn interface {
	Publish(subject string, data []byte) error
}

func Enqueue(conn Conn, subject string, payload []byte) error {
	return conn.Publish(subject, payload)
}

// EventSubject is "<prefix>.<kind>.<address>.<event>", addresses keep their ':' separator.
func EventSubject(prefix string, event events.Event) string {
	kind := string(event.Kind)
	if kind == "" {
		kind = "root"
	}

	return strings.Join([]string{prefix, kind, event.Address.String(), string(event.Name)}, ".")
}

type EventPublisher struct {
	conn   Conn
	prefix string
}

func NewEventPublisher(conn Conn, prefix string) *EventPublisher {
	return &EventPublisher{conn: conn, prefix: prefix}
}

func (p *EventPublisher) Publish(event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		config.Logger.Errorf("[nftex.mq] failed to encode event %s: %v", event.ID, err)
		return
	}

	if err := Enqueue(p.conn, EventSubject(p.prefix, event), payload); err != nil {
		config.Logger.Errorf("[nftex.mq] failed to publish event %s: %v", event.ID, err)
	}
}
