package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null"

	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/types"
)

type Event struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	Name      string      `json:"name"`
	Address   string      `json:"address"`
	Offer     null.String `json:"offer"`
	Kind      string      `json:"kind"`
	Data      string      `json:"data"`
	CreatedAt time.Time   `json:"created_at"`
}

func EventFrom(event events.Event) (*Event, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}

	record := &Event{
		ID:        event.ID.String(),
		Name:      string(event.Name),
		Address:   event.Address.String(),
		Kind:      string(event.Kind),
		Data:      string(data),
		CreatedAt: event.CreatedAt,
	}
	if event.Offer != "" {
		record.Offer = null.StringFrom(event.Offer.String())
	}

	return record, nil
}

func (e *Event) ToEvent() (events.Event, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return events.Event{}, err
	}

	data := map[string]string{}
	if err := json.Unmarshal([]byte(e.Data), &data); err != nil {
		return events.Event{}, err
	}

	return events.Event{
		ID:        id,
		Name:      events.Name(e.Name),
		Address:   types.Address(e.Address),
		Offer:     types.Address(e.Offer.String),
		Kind:      types.OfferKind(e.Kind),
		Data:      data,
		CreatedAt: e.CreatedAt,
	}, nil
}
