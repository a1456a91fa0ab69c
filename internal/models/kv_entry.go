package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one durable JSON blob keyed by name.
type KVEntry struct {
	Key       string         `gorm:"primaryKey;size:191" json:"key"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
