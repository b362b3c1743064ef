package model

import "time"

// Snapshot is the whole ledger state bundle, the unit of persistence round-trips and
// remote sync.
type Snapshot struct {
	Products    []Product          `json:"products"`
	Orders      []Order            `json:"orders"`
	Productions []ProductionRecord `json:"productions"`
	OrderSeq    int                `json:"orderSeq"`
	Pin         string             `json:"pin"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewerThan reports whether s was written strictly after other.
func (s *Snapshot) NewerThan(other *Snapshot) bool {
	if other == nil {
		return true
	}
	return s.UpdatedAt.After(other.UpdatedAt)
}
