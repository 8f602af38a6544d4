package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Position struct {
	// ID is assigned by the ledger, not the database, so restarts resume
	// the same sequence.
	ID     int64  `gorm:"primaryKey"`
	UserID string `gorm:"type:varchar(100);not null;index"`

	MatchID     int64  `gorm:"not null;index"`
	MarketID    int    `gorm:"not null"`
	MarketTitle string `gorm:"type:varchar(100)"`
	OptionLabel string `gorm:"type:varchar(200);not null"`
	Side        string `gorm:"type:varchar(10);not null"`
	Price       int    `gorm:"not null"`

	Shares          decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	SharesRemaining decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	Stake           decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	StakeRemaining  decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	Status  string          `gorm:"type:varchar(20);not null;default:'open';index"`
	Outcome string          `gorm:"type:varchar(20)"`
	Payout  decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	OpenedAt  time.Time  `gorm:"type:timestamptz;not null"`
	ClosedAt  *time.Time `gorm:"type:timestamptz"`
	SettledAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}
