package model

import "time"

// StateEntry is one logical record of the key-value state store.
type StateEntry struct {
	Key       string    `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StateEntry) TableName() string {
	return "ledger_state"
}
