package models

import (
	"time"

	"gorm.io/datatypes"
)

type FeedSnapshot struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	MatchCount  int `gorm:"not null;default:0"`
	PricedCount int `gorm:"not null;default:0"`
	Synthesized int `gorm:"not null;default:0"`

	Payload datatypes.JSON `gorm:"type:jsonb;not null"`

	TakenAt   time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (FeedSnapshot) TableName() string {
	return "feed_snapshots"
}
