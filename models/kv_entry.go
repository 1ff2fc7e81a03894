package models

import "time"

// KVEntry is the single Postgres-backed table every document lives in:
// one JSON document per key, with a version counter bumped on every write.
// The version is what CompareAndSwap guards on.
type KVEntry struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     []byte    `gorm:"type:jsonb;not null" json:"value"`
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
