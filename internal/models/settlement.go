package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Settlement struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	MatchID int64  `gorm:"not null;uniqueIndex"`

	WinnerLabel string `gorm:"type:varchar(200)"`
	WinnerCode  string `gorm:"type:varchar(20)"`

	PositionCount int             `gorm:"not null;default:0"`
	TotalPayout   decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	// Rows carries the per-position payout breakdown as JSON.
	Rows datatypes.JSON `gorm:"type:jsonb"`

	SettledAt time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Settlement) TableName() string {
	return "settlements"
}
