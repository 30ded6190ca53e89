package models

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/events"
	"github.com/zsmartex/nftex/offers"
	"github.com/zsmartex/nftex/root"
	"github.com/zsmartex/nftex/types"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Offer{}, &Event{}, &RootConfig{})
}

func upsert(column string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: column}},
		UpdateAll: true,
	}
}

func (r *Repository) SaveOffer(offer offers.Offer) error {
	record, err := OfferFrom(offer)
	if err != nil {
		return err
	}

	return r.db.Clauses(upsert("address")).Create(record).Error
}

func (r *Repository) FindOffer(address types.Address) (offers.Offer, error) {
	var record Offer
	if err := r.db.First(&record, "address = ?", address.String()).Error; err != nil {
		return offers.Offer{}, err
	}

	return record.ToOffer()
}

// ActiveOffers loads every offer that has not reached a terminal state, in deployment order.
func (r *Repository) ActiveOffers() ([]offers.Offer, error) {
	var records []Offer
	if err := r.db.Where("state = ?", string(offers.StateActive)).Order("root_address, sequence").Find(&records).Error; err != nil {
		return nil, err
	}

	result := make([]offers.Offer, 0, len(records))
	for _, record := range records {
		offer, err := record.ToOffer()
		if err != nil {
			return nil, err
		}
		result = append(result, offer)
	}

	return result, nil
}

func (r *Repository) SaveEvent(event events.Event) error {
	record, err := EventFrom(event)
	if err != nil {
		return err
	}

	return r.db.Create(record).Error
}

// Events returns the stored events of address, oldest first unless orderBy is desc. An empty
// name matches every event.
func (r *Repository) Events(address types.Address, name events.Name, limit int, orderBy types.OrderBy) ([]events.Event, error) {
	if orderBy != types.OrderByDesc {
		orderBy = types.OrderByAsc
	}

	tx := r.db.Where("address = ?", address.String())
	if name != "" {
		tx = tx.Where("name = ?", string(name))
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var records []Event
	if err := tx.Order("created_at " + orderBy).Find(&records).Error; err != nil {
		return nil, err
	}

	result := make([]events.Event, 0, len(records))
	for _, record := range records {
		event, err := record.ToEvent()
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}

	return result, nil
}

func (r *Repository) SaveRootConfig(info root.Info) error {
	fees, err := json.Marshal(info.Fees)
	if err != nil {
		return err
	}

	return r.db.Clauses(upsert("address")).Create(&RootConfig{
		Address: info.Address.String(),
		Kind:    string(info.Kind),
		Owner:   info.Owner.String(),
		Version: info.Fees.Version,
		NextID:  info.NextID,
		Fees:    string(fees),
	}).Error
}

// RootState loads what the root at address stored before a restart. NextID is pushed past
// every stored offer of the root, terminal ones included. A root with nothing stored gets an
// empty state.
func (r *Repository) RootState(address types.Address) (root.State, error) {
	var state root.State

	var record RootConfig
	err := r.db.Where("address = ?", address.String()).Take(&record).Error
	switch {
	case err == nil:
		feeConfig, err := record.FeeConfig()
		if err != nil {
			return root.State{}, err
		}
		state = root.State{Owner: types.Address(record.Owner), Fees: feeConfig, NextID: record.NextID}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return root.State{}, err
	}

	var sequences []uint64
	if err := r.db.Model(&Offer{}).Where("root_address = ?", address.String()).Order("sequence desc").Limit(1).Pluck("sequence", &sequences).Error; err != nil {
		return root.State{}, err
	}
	if len(sequences) > 0 && sequences[0]+1 > state.NextID {
		state.NextID = sequences[0] + 1
	}

	return state, nil
}

// Publish stores event. Failures are logged, never returned to the emitter.
func (r *Repository) Publish(event events.Event) {
	if err := r.SaveEvent(event); err != nil {
		config.Logger.Errorf("[nftex.models] failed to store event %s %s: %v", event.Name, event.ID, err)
	}
}

// OfferUpdated stores offer after every applied message.
func (r *Repository) OfferUpdated(offer offers.Offer) {
	if err := r.SaveOffer(offer); err != nil {
		config.Logger.Errorf("[nftex.models] failed to store offer %s: %v", offer.Address, err)
	}
}
